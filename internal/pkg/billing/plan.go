package billing

import (
	"strings"

	"github.com/invoiceflow/zerodue/internal/pkg/entitlements"
)

const subscriptionPlanMetadataKey = "plan"

func isEntitlingStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "active", "trialing":
		return true
	default:
		return false
	}
}

// metadataPlan returns the subscription's explicit plan value. An empty or
// whitespace-only value counts as absent so the product-name fallback stays
// reachable.
func metadataPlan(sub *Subscription) (string, bool) {
	if sub == nil {
		return "", false
	}
	raw := strings.TrimSpace(sub.Metadata[subscriptionPlanMetadataKey])
	return raw, raw != ""
}

// tierFromSubscription derives the internal tier for a processor
// subscription: the metadata plan key wins, otherwise the product display
// name is matched case-insensitively.
func tierFromSubscription(sub *Subscription, product *Product) entitlements.Tier {
	if raw, ok := metadataPlan(sub); ok {
		return entitlements.NormalizeTier(raw)
	}
	if product != nil {
		name := strings.ToLower(product.Name)
		if strings.Contains(name, "enterprise") {
			return entitlements.TierEnterprise
		}
		if strings.Contains(name, "professional") {
			return entitlements.TierProfessional
		}
	}
	return entitlements.TierFree
}

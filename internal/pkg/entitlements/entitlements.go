package entitlements

import "strings"

type Tier string

const (
	TierFree         Tier = "free_user"
	TierProfessional Tier = "professional"
	TierEnterprise   Tier = "enterprise"
)

// Unlimited marks a per-tier limit with no ceiling.
const Unlimited = -1

// NormalizeTier maps arbitrary plan input to one of the three canonical
// tiers. Legacy aliases "free" and "pro" are still accepted; everything
// else falls back to the free tier.
func NormalizeTier(raw string) Tier {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(TierEnterprise):
		return TierEnterprise
	case string(TierProfessional), "pro":
		return TierProfessional
	default:
		return TierFree
	}
}

// BusinessLimit returns how many business profiles a tier may own.
func BusinessLimit(tier Tier) int {
	switch tier {
	case TierEnterprise:
		return Unlimited
	case TierProfessional:
		return 3
	default:
		return 1
	}
}

// MonthlyInvoiceLimit returns how many invoices a tier may create per
// calendar month.
func MonthlyInvoiceLimit(tier Tier) int {
	switch tier {
	case TierEnterprise:
		return Unlimited
	case TierProfessional:
		return 10
	default:
		return 2
	}
}

// LimitCheck is the result of an entitlement evaluation.
type LimitCheck struct {
	Allowed bool `json:"allowed"`
	Limit   int  `json:"limit"`
	Current int  `json:"current"`
}

// CheckLimit decides whether one more item may be created. The comparison
// is strict: reaching the limit blocks the next creation, it never blocks
// display of existing items.
func CheckLimit(limit, current int) LimitCheck {
	if limit == Unlimited {
		return LimitCheck{Allowed: true, Limit: limit, Current: current}
	}
	return LimitCheck{Allowed: current < limit, Limit: limit, Current: current}
}

// CanCreateBusiness checks the business-profile ceiling for a tier.
func CanCreateBusiness(tier Tier, current int) LimitCheck {
	return CheckLimit(BusinessLimit(tier), current)
}

// CanCreateInvoice checks the monthly invoice ceiling for a tier.
// Purchased extra invoice credits raise the ceiling for the business.
func CanCreateInvoice(tier Tier, current, extraCredits int) LimitCheck {
	limit := MonthlyInvoiceLimit(tier)
	if limit != Unlimited && extraCredits > 0 {
		limit += extraCredits
	}
	return CheckLimit(limit, current)
}

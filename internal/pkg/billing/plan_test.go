package billing

import (
	"testing"

	"github.com/invoiceflow/zerodue/internal/pkg/entitlements"
)

func TestIsEntitlingStatus(t *testing.T) {
	for _, status := range []string{"active", "trialing", "ACTIVE", " trialing "} {
		if !isEntitlingStatus(status) {
			t.Fatalf("expected status %q to be entitling", status)
		}
	}
	for _, status := range []string{"canceled", "past_due", "incomplete", "paused", ""} {
		if isEntitlingStatus(status) {
			t.Fatalf("expected status %q to be non-entitling", status)
		}
	}
}

func TestTierFromSubscriptionMetadataWins(t *testing.T) {
	sub := &Subscription{Metadata: map[string]string{"plan": "enterprise"}}
	product := &Product{Name: "Professional Monthly"}
	if got := tierFromSubscription(sub, product); got != entitlements.TierEnterprise {
		t.Fatalf("expected metadata plan to win, got %q", got)
	}
}

func TestTierFromSubscriptionProductName(t *testing.T) {
	tests := []struct {
		name string
		want entitlements.Tier
	}{
		{name: "ZeroDue Enterprise (annual)", want: entitlements.TierEnterprise},
		{name: "professional plan", want: entitlements.TierProfessional},
		{name: "Starter", want: entitlements.TierFree},
	}
	for _, tt := range tests {
		sub := &Subscription{Metadata: map[string]string{}}
		if got := tierFromSubscription(sub, &Product{Name: tt.name}); got != tt.want {
			t.Fatalf("tierFromSubscription(product=%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestMetadataPlanIgnoresBlankValues(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t"} {
		sub := &Subscription{Metadata: map[string]string{"plan": raw}}
		if _, ok := metadataPlan(sub); ok {
			t.Fatalf("expected metadata plan %q to count as absent", raw)
		}
		if got := tierFromSubscription(sub, &Product{Name: "Enterprise Yearly"}); got != entitlements.TierEnterprise {
			t.Fatalf("expected product fallback for blank metadata plan, got %q", got)
		}
	}
	if raw, ok := metadataPlan(&Subscription{Metadata: map[string]string{"plan": " pro "}}); !ok || raw != "pro" {
		t.Fatalf("expected trimmed metadata plan, got %q (ok=%v)", raw, ok)
	}
}

func TestTierFromSubscriptionNilInputs(t *testing.T) {
	if got := tierFromSubscription(nil, nil); got != entitlements.TierFree {
		t.Fatalf("expected free tier for nil inputs, got %q", got)
	}
}

package entitlements

import "testing"

func TestNormalizeTier(t *testing.T) {
	tests := []struct {
		in   string
		want Tier
	}{
		{in: "free_user", want: TierFree},
		{in: "professional", want: TierProfessional},
		{in: "enterprise", want: TierEnterprise},
		{in: "FREE", want: TierFree},
		{in: "Pro", want: TierProfessional},
		{in: "  Enterprise  ", want: TierEnterprise},
		{in: "garbage", want: TierFree},
		{in: "", want: TierFree},
	}

	for _, tt := range tests {
		if got := NormalizeTier(tt.in); got != tt.want {
			t.Fatalf("NormalizeTier(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeTierIdempotent(t *testing.T) {
	for _, in := range []string{"free", "pro", "enterprise", "nonsense", ""} {
		once := NormalizeTier(in)
		twice := NormalizeTier(string(once))
		if once != twice {
			t.Fatalf("NormalizeTier not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestCheckLimitStrict(t *testing.T) {
	// Reaching the limit blocks the next creation.
	res := CanCreateBusiness(TierFree, 1)
	if res.Allowed {
		t.Fatalf("free_user with 1 business should be blocked, got %+v", res)
	}
	if res.Limit != 1 || res.Current != 1 {
		t.Fatalf("unexpected limit/current: %+v", res)
	}

	if !CanCreateBusiness(TierFree, 0).Allowed {
		t.Fatalf("free_user with 0 businesses should be allowed")
	}
}

func TestEnterpriseUnlimited(t *testing.T) {
	for _, current := range []int{0, 1, 1000, 1 << 20} {
		if !CanCreateBusiness(TierEnterprise, current).Allowed {
			t.Fatalf("enterprise should always be allowed (current=%d)", current)
		}
		if !CanCreateInvoice(TierEnterprise, current, 0).Allowed {
			t.Fatalf("enterprise invoices should always be allowed (current=%d)", current)
		}
	}
}

func TestInvoiceLimits(t *testing.T) {
	if CanCreateInvoice(TierFree, 2, 0).Allowed {
		t.Fatalf("free_user at 2 invoices this month should be blocked")
	}
	if !CanCreateInvoice(TierProfessional, 9, 0).Allowed {
		t.Fatalf("professional at 9 invoices should be allowed")
	}
	if CanCreateInvoice(TierProfessional, 10, 0).Allowed {
		t.Fatalf("professional at 10 invoices should be blocked")
	}
}

func TestExtraInvoiceCreditsRaiseCeiling(t *testing.T) {
	if CanCreateInvoice(TierFree, 2, 0).Allowed {
		t.Fatalf("expected block without credits")
	}
	res := CanCreateInvoice(TierFree, 2, 3)
	if !res.Allowed || res.Limit != 5 {
		t.Fatalf("expected credits to raise limit to 5, got %+v", res)
	}
}

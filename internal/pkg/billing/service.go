package billing

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/invoiceflow/zerodue/internal/pkg/entitlements"
)

// Service resolves and reconciles subscription tiers. The profile store is
// the system of record; the payment processor is only consulted to re-derive
// the stored tier.
type Service struct {
	repo      Repository
	processor Processor
}

// NewService creates a billing service from injected dependencies.
func NewService(repo Repository, processor Processor) *Service {
	return &Service{repo: repo, processor: processor}
}

// NewServiceFromDB creates a billing service from a GORM DB handle and the
// environment-configured processor client.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db), NewProcessorClientFromEnv())
}

// ResolveTier reads the stored plan for a user, fresh from the profile store
// rather than any session-cached copy. It never fails: any lookup problem
// degrades to the most restrictive tier, which is the safe default for an
// entitlement check.
func (s *Service) ResolveTier(ctx context.Context, userID uint) entitlements.Tier {
	_ = ctx
	if userID == 0 {
		return entitlements.TierFree
	}
	profile, err := s.repo.GetOrCreateProfile(userID)
	if err != nil {
		return entitlements.TierFree
	}
	return entitlements.NormalizeTier(profile.Plan)
}

// Reconcile re-derives the stored tier from the processor's live
// subscription state and persists it together with the billing linkage and a
// sync timestamp. Re-running with unchanged subscriptions produces the same
// stored state.
func (s *Service) Reconcile(ctx context.Context, userID uint) (*SyncResult, error) {
	if userID == 0 {
		return nil, errors.New("user_id is required")
	}

	user, err := s.repo.GetUser(userID)
	if err != nil {
		return nil, err
	}

	customer, err := s.processor.FindCustomerByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		// No billing customer: the user is on the free tier and no
		// subscription fields are written.
		return &SyncResult{Plan: string(entitlements.TierFree)}, nil
	}

	subs, err := s.processor.ListSubscriptions(ctx, customer.ID)
	if err != nil {
		return nil, err
	}

	var selected *Subscription
	for i := range subs {
		if isEntitlingStatus(subs[i].Status) {
			selected = &subs[i]
			break
		}
	}

	tier := entitlements.TierFree
	subscriptionID := ""
	subscriptionStatus := ""
	if selected != nil {
		var product *Product
		if _, hasPlan := metadataPlan(selected); !hasPlan && selected.ProductID != "" {
			product, err = s.processor.GetProduct(ctx, selected.ProductID)
			if err != nil {
				return nil, err
			}
		}
		tier = tierFromSubscription(selected, product)
		subscriptionID = selected.ID
		subscriptionStatus = strings.ToLower(strings.TrimSpace(selected.Status))
	}

	profile, err := s.repo.GetOrCreateProfile(userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	profile.Plan = string(tier)
	profile.BillingCustomerID = customer.ID
	profile.SubscriptionID = subscriptionID
	profile.SubscriptionStatus = subscriptionStatus
	profile.PlanSyncedAt = &now
	if err := s.repo.SaveProfile(profile); err != nil {
		return nil, err
	}

	return &SyncResult{
		Plan:               string(tier),
		SubscriptionStatus: subscriptionStatus,
		CustomerID:         customer.ID,
		SubscriptionID:     subscriptionID,
		SyncedAt:           &now,
	}, nil
}

// ConfirmSubscription records the plan chosen at checkout, ahead of any
// reconciliation. A trial confirms as trialing, otherwise active.
func (s *Service) ConfirmSubscription(ctx context.Context, userID uint, plan, subscriptionID string, hasTrial bool) (entitlements.Tier, error) {
	_ = ctx
	if userID == 0 {
		return entitlements.TierFree, errors.New("user_id is required")
	}

	tier := entitlements.NormalizeTier(plan)
	profile, err := s.repo.GetOrCreateProfile(userID)
	if err != nil {
		return entitlements.TierFree, err
	}

	now := time.Now()
	profile.Plan = string(tier)
	if sid := strings.TrimSpace(subscriptionID); sid != "" {
		profile.SubscriptionID = sid
	}
	if hasTrial {
		profile.SubscriptionStatus = "trialing"
	} else {
		profile.SubscriptionStatus = "active"
	}
	profile.PlanSyncedAt = &now
	if err := s.repo.SaveProfile(profile); err != nil {
		return entitlements.TierFree, err
	}
	return tier, nil
}

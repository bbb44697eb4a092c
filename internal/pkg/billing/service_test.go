package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/invoiceflow/zerodue/app/models"
	"github.com/invoiceflow/zerodue/internal/pkg/entitlements"
)

type fakeRepo struct {
	user      *models.User
	userErr   error
	profile   *models.UserProfile
	profErr   error
	saved     []*models.UserProfile
	saveCalls int
}

func (f *fakeRepo) GetUser(userID uint) (*models.User, error) {
	if f.userErr != nil {
		return nil, f.userErr
	}
	return f.user, nil
}

func (f *fakeRepo) GetOrCreateProfile(userID uint) (*models.UserProfile, error) {
	if f.profErr != nil {
		return nil, f.profErr
	}
	if f.profile == nil {
		f.profile = &models.UserProfile{UserID: userID, Plan: "free_user"}
	}
	return f.profile, nil
}

func (f *fakeRepo) SaveProfile(profile *models.UserProfile) error {
	f.saveCalls++
	cp := *profile
	f.saved = append(f.saved, &cp)
	return nil
}

type fakeProcessor struct {
	customer *Customer
	custErr  error
	subs     []Subscription
	subsErr  error
	products map[string]*Product
	prodErr  error
}

func (f *fakeProcessor) FindCustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	return f.customer, f.custErr
}

func (f *fakeProcessor) ListSubscriptions(ctx context.Context, customerID string) ([]Subscription, error) {
	return f.subs, f.subsErr
}

func (f *fakeProcessor) GetProduct(ctx context.Context, productID string) (*Product, error) {
	if f.prodErr != nil {
		return nil, f.prodErr
	}
	return f.products[productID], nil
}

func TestResolveTierNormalizesStoredPlan(t *testing.T) {
	repo := &fakeRepo{profile: &models.UserProfile{UserID: 7, Plan: "pro"}}
	svc := NewService(repo, &fakeProcessor{})

	assert.Equal(t, entitlements.TierProfessional, svc.ResolveTier(context.Background(), 7))
}

func TestResolveTierDegradesToFree(t *testing.T) {
	repo := &fakeRepo{profErr: errors.New("db down")}
	svc := NewService(repo, &fakeProcessor{})

	assert.Equal(t, entitlements.TierFree, svc.ResolveTier(context.Background(), 7))
	assert.Equal(t, entitlements.TierFree, svc.ResolveTier(context.Background(), 0))
}

func TestReconcileNoCustomer(t *testing.T) {
	repo := &fakeRepo{user: &models.User{ID: 7, Email: "owner@example.com"}}
	svc := NewService(repo, &fakeProcessor{customer: nil})

	res, err := svc.Reconcile(context.Background(), 7)
	assert.NoError(t, err)
	assert.Equal(t, "free_user", res.Plan)
	assert.Empty(t, res.SubscriptionStatus)
	// No subscription fields are written when no billing customer exists.
	assert.Zero(t, repo.saveCalls)
}

func TestReconcileMetadataPlan(t *testing.T) {
	repo := &fakeRepo{user: &models.User{ID: 7, Email: "owner@example.com"}}
	proc := &fakeProcessor{
		customer: &Customer{ID: "cus_123", Email: "owner@example.com"},
		subs: []Subscription{
			{ID: "sub_old", Status: "canceled", Metadata: map[string]string{"plan": "enterprise"}},
			{ID: "sub_1", Status: "active", Metadata: map[string]string{"plan": "enterprise"}},
		},
	}
	svc := NewService(repo, proc)

	res, err := svc.Reconcile(context.Background(), 7)
	assert.NoError(t, err)
	assert.Equal(t, "enterprise", res.Plan)
	assert.Equal(t, "active", res.SubscriptionStatus)
	assert.Equal(t, "cus_123", res.CustomerID)
	assert.Equal(t, "sub_1", res.SubscriptionID)
	assert.NotNil(t, res.SyncedAt)

	assert.Equal(t, 1, repo.saveCalls)
	saved := repo.saved[0]
	assert.Equal(t, "enterprise", saved.Plan)
	assert.Equal(t, "cus_123", saved.BillingCustomerID)
	assert.Equal(t, "sub_1", saved.SubscriptionID)
	assert.Equal(t, "active", saved.SubscriptionStatus)
	assert.NotNil(t, saved.PlanSyncedAt)
}

func TestReconcileProductNameInference(t *testing.T) {
	repo := &fakeRepo{user: &models.User{ID: 7, Email: "owner@example.com"}}
	proc := &fakeProcessor{
		customer: &Customer{ID: "cus_123"},
		subs: []Subscription{
			{ID: "sub_1", Status: "trialing", ProductID: "prod_9", Metadata: map[string]string{}},
		},
		products: map[string]*Product{
			"prod_9": {ID: "prod_9", Name: "ZeroDue Professional"},
		},
	}
	svc := NewService(repo, proc)

	res, err := svc.Reconcile(context.Background(), 7)
	assert.NoError(t, err)
	assert.Equal(t, "professional", res.Plan)
	assert.Equal(t, "trialing", res.SubscriptionStatus)
}

func TestReconcileEmptyMetadataPlanFallsBackToProduct(t *testing.T) {
	repo := &fakeRepo{user: &models.User{ID: 7, Email: "owner@example.com"}}
	proc := &fakeProcessor{
		customer: &Customer{ID: "cus_123"},
		subs: []Subscription{
			{ID: "sub_1", Status: "active", ProductID: "prod_9", Metadata: map[string]string{"plan": ""}},
		},
		products: map[string]*Product{
			"prod_9": {ID: "prod_9", Name: "ZeroDue Professional"},
		},
	}
	svc := NewService(repo, proc)

	res, err := svc.Reconcile(context.Background(), 7)
	assert.NoError(t, err)
	// A blank metadata plan is no plan at all, so the product name decides.
	assert.Equal(t, "professional", res.Plan)
	assert.Equal(t, "professional", repo.saved[0].Plan)
}

func TestReconcileCustomerWithoutEntitlingSubscription(t *testing.T) {
	repo := &fakeRepo{user: &models.User{ID: 7, Email: "owner@example.com"}}
	proc := &fakeProcessor{
		customer: &Customer{ID: "cus_123"},
		subs:     []Subscription{{ID: "sub_1", Status: "canceled"}},
	}
	svc := NewService(repo, proc)

	res, err := svc.Reconcile(context.Background(), 7)
	assert.NoError(t, err)
	assert.Equal(t, "free_user", res.Plan)
	assert.Empty(t, res.SubscriptionID)
	assert.Equal(t, 1, repo.saveCalls)
	assert.Equal(t, "cus_123", repo.saved[0].BillingCustomerID)
}

func TestReconcileIdempotent(t *testing.T) {
	repo := &fakeRepo{user: &models.User{ID: 7, Email: "owner@example.com"}}
	proc := &fakeProcessor{
		customer: &Customer{ID: "cus_123"},
		subs: []Subscription{
			{ID: "sub_1", Status: "active", Metadata: map[string]string{"plan": "professional"}},
		},
	}
	svc := NewService(repo, proc)

	first, err := svc.Reconcile(context.Background(), 7)
	assert.NoError(t, err)
	second, err := svc.Reconcile(context.Background(), 7)
	assert.NoError(t, err)

	assert.Equal(t, first.Plan, second.Plan)
	assert.Equal(t, first.SubscriptionID, second.SubscriptionID)
	assert.Equal(t, first.SubscriptionStatus, second.SubscriptionStatus)
	assert.Equal(t, "professional", repo.profile.Plan)
}

func TestReconcileUpstreamFailureSurfaces(t *testing.T) {
	repo := &fakeRepo{user: &models.User{ID: 7, Email: "owner@example.com"}}
	proc := &fakeProcessor{custErr: errors.New("processor unavailable")}
	svc := NewService(repo, proc)

	_, err := svc.Reconcile(context.Background(), 7)
	assert.Error(t, err)
	assert.Zero(t, repo.saveCalls)
}

func TestConfirmSubscription(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, &fakeProcessor{})

	tier, err := svc.ConfirmSubscription(context.Background(), 7, "Professional", "sub_42", true)
	assert.NoError(t, err)
	assert.Equal(t, entitlements.TierProfessional, tier)
	assert.Equal(t, "trialing", repo.profile.SubscriptionStatus)
	assert.Equal(t, "sub_42", repo.profile.SubscriptionID)

	tier, err = svc.ConfirmSubscription(context.Background(), 7, "enterprise", "", false)
	assert.NoError(t, err)
	assert.Equal(t, entitlements.TierEnterprise, tier)
	assert.Equal(t, "active", repo.profile.SubscriptionStatus)
	// An empty subscription id does not clear a previously confirmed one.
	assert.Equal(t, "sub_42", repo.profile.SubscriptionID)
}

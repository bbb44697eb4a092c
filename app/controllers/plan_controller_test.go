package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoiceflow/zerodue/app/models"
	"github.com/invoiceflow/zerodue/internal/pkg/billing"
	"github.com/invoiceflow/zerodue/internal/pkg/usercontext"
)

type stubBillingRepo struct {
	profile *models.UserProfile
}

func (s *stubBillingRepo) GetUser(userID uint) (*models.User, error) {
	return &models.User{ID: userID, Email: "owner@example.com"}, nil
}

func (s *stubBillingRepo) GetOrCreateProfile(userID uint) (*models.UserProfile, error) {
	if s.profile == nil {
		s.profile = &models.UserProfile{UserID: userID, Plan: "free_user"}
	}
	return s.profile, nil
}

func (s *stubBillingRepo) SaveProfile(profile *models.UserProfile) error {
	s.profile = profile
	return nil
}

type stubProcessor struct {
	customer *billing.Customer
	subs     []billing.Subscription
	err      error
}

func (s *stubProcessor) FindCustomerByEmail(ctx context.Context, email string) (*billing.Customer, error) {
	return s.customer, s.err
}

func (s *stubProcessor) ListSubscriptions(ctx context.Context, customerID string) ([]billing.Subscription, error) {
	return s.subs, s.err
}

func (s *stubProcessor) GetProduct(ctx context.Context, productID string) (*billing.Product, error) {
	return nil, s.err
}

func planTestApp(t *testing.T, svc *billing.Service) *fiber.App {
	t.Helper()
	orig := newBillingService
	newBillingService = func() *billing.Service { return svc }
	t.Cleanup(func() { newBillingService = orig })

	app := fiber.New()
	loggedIn := func(handler fiber.Handler) fiber.Handler {
		return func(c *fiber.Ctx) error {
			c.Locals("USER_CONTEXT", usercontext.UserContext{UserID: 7, IsLoggedIn: true})
			return handler(c)
		}
	}
	app.Get("/api/v1/plan", loggedIn(HandleGetPlan))
	app.Post("/api/v1/plan/sync", loggedIn(HandleSyncPlan))
	return app
}

func TestGetPlanReturnsStoredTier(t *testing.T) {
	repo := &stubBillingRepo{profile: &models.UserProfile{UserID: 7, Plan: "pro"}}
	app := planTestApp(t, billing.NewService(repo, &stubProcessor{}))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/plan", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"plan":"professional","user_id":7}`, string(body))
}

func TestSyncPlanSurfacesProcessorError(t *testing.T) {
	proc := &stubProcessor{err: errors.New("processor unavailable")}
	app := planTestApp(t, billing.NewService(&stubBillingRepo{}, proc))

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/plan/sync", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	// The upstream failure reason belongs in the response body.
	assert.Contains(t, string(body), "processor unavailable")
}

func TestSyncPlanWritesReconciledTier(t *testing.T) {
	repo := &stubBillingRepo{}
	proc := &stubProcessor{
		customer: &billing.Customer{ID: "cus_123", Email: "owner@example.com"},
		subs: []billing.Subscription{
			{ID: "sub_1", Status: "active", Metadata: map[string]string{"plan": "enterprise"}},
		},
	}
	app := planTestApp(t, billing.NewService(repo, proc))

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/plan/sync", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"plan":"enterprise","subscription_status":"active"}`, string(body))
	assert.Equal(t, "enterprise", repo.profile.Plan)
}

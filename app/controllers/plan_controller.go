package controllers

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/invoiceflow/zerodue/app/repository"
	"github.com/invoiceflow/zerodue/internal/pkg/billing"
	"github.com/invoiceflow/zerodue/internal/pkg/database"
	"github.com/invoiceflow/zerodue/internal/pkg/entitlements"
	"github.com/invoiceflow/zerodue/internal/pkg/session"
	"github.com/invoiceflow/zerodue/internal/pkg/usercontext"
)

// newBillingService builds the billing service the plan handlers use; it is a
// variable so tests can substitute fakes.
var newBillingService = func() *billing.Service {
	return billing.NewServiceFromDB(database.GetDB())
}

type confirmSubscriptionRequest struct {
	Plan           string `json:"plan"`
	SubscriptionID string `json:"subscription_id"`
	HasTrial       bool   `json:"has_trial"`
}

// HandleGetPlan returns the authenticated user's current tier, read fresh
// from the profile store.
func HandleGetPlan(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return unauthorized(c)
	}

	svc := newBillingService()
	tier := svc.ResolveTier(c.Context(), userCtx.UserID)

	return c.JSON(fiber.Map{
		"plan":    string(tier),
		"user_id": userCtx.UserID,
	})
}

// HandleConfirmSubscription records the plan chosen at checkout, ahead of the
// next reconciliation against the payment processor.
func HandleConfirmSubscription(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return unauthorized(c)
	}

	var req confirmSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Plan == "" {
		return badRequest(c, "plan is required")
	}

	svc := newBillingService()
	tier, err := svc.ConfirmSubscription(c.Context(), userCtx.UserID, req.Plan, req.SubscriptionID, req.HasTrial)
	if err != nil {
		return internalError(c, "Failed to confirm subscription")
	}

	_ = session.SetSessionValue(c, usercontext.KeyUserPlan, string(tier))

	return c.JSON(fiber.Map{
		"success": true,
		"plan":    string(tier),
	})
}

// HandleSyncPlan re-derives the stored tier from the payment processor's live
// subscription state.
func HandleSyncPlan(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return unauthorized(c)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	svc := newBillingService()
	res, err := svc.Reconcile(ctx, userCtx.UserID)
	if err != nil {
		// The processor's failure reason matters when debugging a stuck
		// sync, so it travels up in the response body.
		return internalError(c, fmt.Sprintf("Plan sync failed: %v", err))
	}

	_ = session.SetSessionValue(c, usercontext.KeyUserPlan, res.Plan)

	return c.JSON(fiber.Map{
		"plan":                res.Plan,
		"subscription_status": res.SubscriptionStatus,
	})
}

// HandleGetPlanSync returns the stored billing linkage for diagnostics
// without contacting the payment processor.
func HandleGetPlanSync(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return unauthorized(c)
	}

	profile, err := repository.GetGlobalFactory().GetUserRepository().GetProfile(userCtx.UserID)
	if err != nil {
		return internalError(c, "Failed to load billing profile")
	}

	return c.JSON(fiber.Map{
		"plan":                string(entitlements.NormalizeTier(profile.Plan)),
		"subscription_status": profile.SubscriptionStatus,
		"billing_customer_id": profile.BillingCustomerID,
		"subscription_id":     profile.SubscriptionID,
		"plan_synced_at":      profile.PlanSyncedAt,
		"user_id":             userCtx.UserID,
	})
}

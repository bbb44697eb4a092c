package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/invoiceflow/zerodue/internal/pkg/billing"
	"github.com/invoiceflow/zerodue/internal/pkg/database"
	"github.com/invoiceflow/zerodue/internal/pkg/session"
	"github.com/invoiceflow/zerodue/internal/pkg/usercontext"
)

// HandleCheckoutSuccess is the browser return URL after a completed checkout.
// It reconciles the plan against the payment processor so the new tier is
// live before the user lands back in the app.
func HandleCheckoutSuccess(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	svc := billing.NewServiceFromDB(database.GetDB())
	res, err := svc.Reconcile(ctx, userCtx.UserID)
	if err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": "Your payment went through but the plan sync failed. Please retry from your account page.",
		}
		return flash.WithError(c, fm).Redirect("/")
	}

	_ = session.SetSessionValue(c, usercontext.KeyUserPlan, res.Plan)

	return c.Render("checkout_success", fiber.Map{
		"Title":    "Checkout complete",
		"Plan":     res.Plan,
		"Status":   res.SubscriptionStatus,
		"Username": userCtx.Username,
	})
}

// HandleCheckoutCancel is the browser return URL for an abandoned checkout.
func HandleCheckoutCancel(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	return c.Render("checkout_cancel", fiber.Map{
		"Title":    "Checkout cancelled",
		"Username": userCtx.Username,
	})
}

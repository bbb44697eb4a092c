package controllers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/invoiceflow/zerodue/app/models"
	"github.com/invoiceflow/zerodue/app/repository"
	"github.com/invoiceflow/zerodue/internal/pkg/billing"
	"github.com/invoiceflow/zerodue/internal/pkg/database"
	"github.com/invoiceflow/zerodue/internal/pkg/docarchive"
	"github.com/invoiceflow/zerodue/internal/pkg/entitlements"
	"github.com/invoiceflow/zerodue/internal/pkg/mail"
	"github.com/invoiceflow/zerodue/internal/pkg/money"
	"github.com/invoiceflow/zerodue/internal/pkg/usercontext"
)

type invoiceRequest struct {
	ClientID        uint             `json:"client_id"`
	LineItems       []money.LineItem `json:"line_items"`
	DiscountPercent *float64         `json:"discount_percent"`
	Shipping        *float64         `json:"shipping"`
	Notes           *string          `json:"notes"`
	DueAt           *time.Time       `json:"due_at"`
}

// HandleListInvoices returns the invoices of an owned business. Sent invoices
// past their due date flip to overdue on this read; there is no scheduler.
func HandleListInvoices(c *fiber.Ctx) error {
	if !isLoggedIn(c) {
		return unauthorized(c)
	}
	businessID, err := paramID(c, "businessId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if _, ferr := ownedBusiness(c, businessID); ferr != nil {
		return ferr
	}

	repo := repository.GetGlobalFactory().GetInvoiceRepository()
	offset, limit := pagination(c)
	invoices, err := repo.GetByBusinessID(businessID, offset, limit)
	if err != nil {
		return internalError(c, "Failed to load invoices")
	}

	now := time.Now()
	for i := range invoices {
		if invoices[i].IsPastDue(now) {
			invoices[i].Status = models.InvoiceStatusOverdue
			if err := repo.Update(&invoices[i]); err != nil {
				log.Errorf("failed to persist overdue flip for invoice %d: %v", invoices[i].ID, err)
			}
		}
	}

	return c.JSON(fiber.Map{"invoices": invoices})
}

// HandleCreateInvoice creates a draft invoice. The monthly ceiling is checked
// here for messaging and re-checked inside the insert transaction.
func HandleCreateInvoice(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return unauthorized(c)
	}
	businessID, err := paramID(c, "businessId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	business, ferr := ownedBusiness(c, businessID)
	if ferr != nil {
		return ferr
	}

	var req invoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.ClientID == 0 {
		return badRequest(c, "client_id is required")
	}
	if _, err := clientInBusiness(req.ClientID, businessID); err != nil {
		return badRequest(c, "Client does not belong to this business")
	}

	repo := repository.GetGlobalFactory().GetInvoiceRepository()
	tier := billing.NewServiceFromDB(database.GetDB()).ResolveTier(c.Context(), userCtx.UserID)

	current, err := repo.CountCreatedSince(businessID, startOfMonth(time.Now()))
	if err != nil {
		return internalError(c, "Failed to count invoices")
	}
	check := entitlements.CanCreateInvoice(tier, int(current), business.ExtraInvoiceCredits)
	if !check.Allowed {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":            "Monthly invoice limit reached for your plan",
			"plan":             string(tier),
			"limit":            check.Limit,
			"current":          check.Current,
			"upgrade_required": true,
		})
	}

	number, err := repo.NextNumber(businessID)
	if err != nil {
		return internalError(c, "Failed to allocate invoice number")
	}

	invoice := &models.Invoice{
		BusinessID: businessID,
		ClientID:   req.ClientID,
		Number:     number,
		Status:     models.InvoiceStatusDraft,
		DueAt:      req.DueAt,
	}
	if req.DiscountPercent != nil {
		invoice.DiscountPercent = *req.DiscountPercent
	}
	if req.Shipping != nil {
		invoice.Shipping = *req.Shipping
	}
	if req.Notes != nil {
		invoice.Notes = *req.Notes
	}
	invoice.SetLineItems(req.LineItems)

	limit := entitlements.MonthlyInvoiceLimit(tier)
	if limit != entitlements.Unlimited && business.ExtraInvoiceCredits > 0 {
		limit += business.ExtraInvoiceCredits
	}
	if err := repo.CreateWithLimit(invoice, limit); err != nil {
		if errors.Is(err, repository.ErrLimitExceeded) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":            "Monthly invoice limit reached for your plan",
				"plan":             string(tier),
				"upgrade_required": true,
			})
		}
		return internalError(c, "Failed to create invoice")
	}

	logActivity(c, businessID, "invoice", invoice.ID, models.ActivityActionCreated, invoice.Number)

	return c.Status(fiber.StatusCreated).JSON(invoice)
}

// HandleGetInvoice returns one invoice with its decoded line items.
func HandleGetInvoice(c *fiber.Ctx) error {
	if !isLoggedIn(c) {
		return unauthorized(c)
	}
	invoice, ferr := ownedInvoice(c)
	if ferr != nil {
		return ferr
	}
	return c.JSON(fiber.Map{
		"invoice":    invoice,
		"line_items": invoice.LineItems(),
	})
}

// HandleUpdateInvoice updates a draft or sent invoice. Any change to line
// items, discount or shipping recomputes the stored totals.
func HandleUpdateInvoice(c *fiber.Ctx) error {
	if !isLoggedIn(c) {
		return unauthorized(c)
	}
	invoice, ferr := ownedInvoice(c)
	if ferr != nil {
		return ferr
	}
	if invoice.Status == models.InvoiceStatusPaid {
		return badRequest(c, "Paid invoices cannot be edited")
	}

	var req invoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if req.DiscountPercent != nil {
		invoice.DiscountPercent = *req.DiscountPercent
	}
	if req.Shipping != nil {
		invoice.Shipping = *req.Shipping
	}
	if req.Notes != nil {
		invoice.Notes = *req.Notes
	}
	if req.DueAt != nil {
		invoice.DueAt = req.DueAt
	}
	if req.LineItems != nil {
		invoice.SetLineItems(req.LineItems)
	} else {
		invoice.RecalculateTotals()
	}

	if err := repository.GetGlobalFactory().GetInvoiceRepository().Update(invoice); err != nil {
		return internalError(c, "Failed to update invoice")
	}

	logActivity(c, invoice.BusinessID, "invoice", invoice.ID, models.ActivityActionUpdated, invoice.Number)

	return c.JSON(invoice)
}

// HandleDeleteInvoice removes an invoice.
func HandleDeleteInvoice(c *fiber.Ctx) error {
	if !isLoggedIn(c) {
		return unauthorized(c)
	}
	invoice, ferr := ownedInvoice(c)
	if ferr != nil {
		return ferr
	}

	if err := repository.GetGlobalFactory().GetInvoiceRepository().Delete(invoice.ID); err != nil {
		return internalError(c, "Failed to delete invoice")
	}

	logActivity(c, invoice.BusinessID, "invoice", invoice.ID, models.ActivityActionDeleted, invoice.Number)

	return c.JSON(fiber.Map{"success": true})
}

// HandleSendInvoice emails the invoice to its client. On success a draft
// moves to sent, the send is counted, and a snapshot is archived when the
// document archive is enabled.
func HandleSendInvoice(c *fiber.Ctx) error {
	if !isLoggedIn(c) {
		return unauthorized(c)
	}
	invoice, ferr := ownedInvoice(c)
	if ferr != nil {
		return ferr
	}
	business, ferr := ownedBusiness(c, invoice.BusinessID)
	if ferr != nil {
		return ferr
	}

	client, err := repository.GetGlobalFactory().GetClientRepository().GetByID(invoice.ClientID)
	if err != nil {
		return internalError(c, "Failed to load client")
	}

	if err := mail.SendInvoiceEmail(business, client, invoice); err != nil {
		return internalError(c, fmt.Sprintf("Failed to send invoice email: %v", err))
	}

	now := time.Now()
	invoice.MarkSent(now)
	if err := repository.GetGlobalFactory().GetInvoiceRepository().Update(invoice); err != nil {
		return internalError(c, "Failed to record send")
	}

	logActivity(c, invoice.BusinessID, "invoice", invoice.ID, models.ActivityActionSent, client.Email)

	// Archive the sent snapshot in the background; a failed upload never
	// fails the send.
	go func(b models.Business, cl models.Client, inv models.Invoice, sentAt time.Time) {
		archive, err := docarchive.NewClientFromEnv()
		if err != nil || archive == nil {
			if err != nil {
				log.Errorf("document archive unavailable: %v", err)
			}
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := archive.ArchiveInvoice(ctx, &b, &cl, &inv, sentAt); err != nil {
			log.Errorf("failed to archive invoice %s: %v", inv.Number, err)
		}
	}(*business, *client, *invoice, now)

	return c.JSON(fiber.Map{
		"success": true,
		"invoice": invoice,
	})
}

// HandleMarkInvoicePaid records payment on an invoice.
func HandleMarkInvoicePaid(c *fiber.Ctx) error {
	if !isLoggedIn(c) {
		return unauthorized(c)
	}
	invoice, ferr := ownedInvoice(c)
	if ferr != nil {
		return ferr
	}

	invoice.MarkPaid(time.Now())
	if err := repository.GetGlobalFactory().GetInvoiceRepository().Update(invoice); err != nil {
		return internalError(c, "Failed to mark invoice paid")
	}

	logActivity(c, invoice.BusinessID, "invoice", invoice.ID, models.ActivityActionPaid, invoice.Number)

	return c.JSON(invoice)
}

// ownedInvoice loads the :id invoice and verifies ownership through its business.
func ownedInvoice(c *fiber.Ctx) (*models.Invoice, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, badRequest(c, err.Error())
	}

	invoice, err := repository.GetGlobalFactory().GetInvoiceRepository().GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(c, "Invoice not found")
		}
		return nil, internalError(c, "Failed to load invoice")
	}
	if _, ferr := ownedBusiness(c, invoice.BusinessID); ferr != nil {
		return nil, ferr
	}
	return invoice, nil
}

// clientInBusiness verifies the client belongs to the business.
func clientInBusiness(clientID, businessID uint) (*models.Client, error) {
	client, err := repository.GetGlobalFactory().GetClientRepository().GetByID(clientID)
	if err != nil {
		return nil, err
	}
	if client.BusinessID != businessID {
		return nil, errors.New("client belongs to a different business")
	}
	return client, nil
}

// invoiceLimitForBusiness computes the effective monthly invoice ceiling for
// a business, combining the owner's tier with purchased extra credits.
func invoiceLimitForBusiness(c *fiber.Ctx, businessID uint) (int, error) {
	business, ferr := ownedBusiness(c, businessID)
	if ferr != nil {
		return 0, ferr
	}
	userCtx := usercontext.GetUserContext(c)
	tier := billing.NewServiceFromDB(database.GetDB()).ResolveTier(c.Context(), userCtx.UserID)
	limit := entitlements.MonthlyInvoiceLimit(tier)
	if limit != entitlements.Unlimited && business.ExtraInvoiceCredits > 0 {
		limit += business.ExtraInvoiceCredits
	}
	return limit, nil
}

// startOfMonth returns the first instant of the calendar month containing t,
// in UTC.
func startOfMonth(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

package controllers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/invoiceflow/zerodue/app/models"
	"github.com/invoiceflow/zerodue/app/repository"
	"github.com/invoiceflow/zerodue/internal/pkg/mail"
	"github.com/invoiceflow/zerodue/internal/pkg/money"
)

type estimateRequest struct {
	ClientID        uint             `json:"client_id"`
	LineItems       []money.LineItem `json:"line_items"`
	DiscountPercent *float64         `json:"discount_percent"`
	Shipping        *float64         `json:"shipping"`
	Notes           *string          `json:"notes"`
	ExpiresAt       *time.Time       `json:"expires_at"`
}

type estimateResponseRequest struct {
	Accepted *bool  `json:"accepted"`
	Notes    string `json:"notes"`
}

// HandleListEstimates returns the estimates of an owned business.
func HandleListEstimates(c *fiber.Ctx) error {
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

	offset, limit := pagination(c)
	estimates, err := repository.GetGlobalFactory().GetEstimateRepository().GetByBusinessID(businessID, offset, limit)
	if err != nil {
		return internalError(c, "Failed to load estimates")
	}
	return c.JSON(fiber.Map{"estimates": estimates})
}

// HandleCreateEstimate creates a draft estimate with a fresh share token.
// Estimates have no monthly ceiling; only invoices are limited.
func HandleCreateEstimate(c *fiber.Ctx) error {
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

	var req estimateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.ClientID == 0 {
		return badRequest(c, "client_id is required")
	}
	if _, err := clientInBusiness(req.ClientID, businessID); err != nil {
		return badRequest(c, "Client does not belong to this business")
	}

	estimate := &models.Estimate{
		BusinessID: businessID,
		ClientID:   req.ClientID,
		Status:     models.EstimateStatusDraft,
		ShareToken: uuid.New().String(),
		ExpiresAt:  req.ExpiresAt,
	}
	if req.DiscountPercent != nil {
		estimate.DiscountPercent = *req.DiscountPercent
	}
	if req.Shipping != nil {
		estimate.Shipping = *req.Shipping
	}
	if req.Notes != nil {
		estimate.Notes = *req.Notes
	}
	estimate.SetLineItems(req.LineItems)

	if err := repository.GetGlobalFactory().GetEstimateRepository().Create(estimate); err != nil {
		return internalError(c, "Failed to create estimate")
	}

	logActivity(c, businessID, "estimate", estimate.ID, models.ActivityActionCreated, estimate.Number)

	return c.Status(fiber.StatusCreated).JSON(estimate)
}

// HandleGetEstimate returns one estimate with its decoded line items.
func HandleGetEstimate(c *fiber.Ctx) error {
	if !isLoggedIn(c) {
		return unauthorized(c)
	}
	estimate, ferr := ownedEstimate(c)
	if ferr != nil {
		return ferr
	}
	return c.JSON(fiber.Map{
		"estimate":   estimate,
		"line_items": estimate.LineItems(),
	})
}

// HandleUpdateEstimate updates a non-terminal estimate.
func HandleUpdateEstimate(c *fiber.Ctx) error {
	if !isLoggedIn(c) {
		return unauthorized(c)
	}
	estimate, ferr := ownedEstimate(c)
	if ferr != nil {
		return ferr
	}
	if estimate.IsTerminal() {
		return badRequest(c, "Responded estimates cannot be edited")
	}

	var req estimateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if req.DiscountPercent != nil {
		estimate.DiscountPercent = *req.DiscountPercent
	}
	if req.Shipping != nil {
		estimate.Shipping = *req.Shipping
	}
	if req.Notes != nil {
		estimate.Notes = *req.Notes
	}
	if req.ExpiresAt != nil {
		estimate.ExpiresAt = req.ExpiresAt
	}
	if req.LineItems != nil {
		estimate.SetLineItems(req.LineItems)
	} else {
		estimate.SetLineItems(estimate.LineItems())
	}

	if err := repository.GetGlobalFactory().GetEstimateRepository().Update(estimate); err != nil {
		return internalError(c, "Failed to update estimate")
	}

	logActivity(c, estimate.BusinessID, "estimate", estimate.ID, models.ActivityActionUpdated, estimate.Number)

	return c.JSON(estimate)
}

// HandleDeleteEstimate removes an estimate.
func HandleDeleteEstimate(c *fiber.Ctx) error {
	if !isLoggedIn(c) {
		return unauthorized(c)
	}
	estimate, ferr := ownedEstimate(c)
	if ferr != nil {
		return ferr
	}

	if err := repository.GetGlobalFactory().GetEstimateRepository().Delete(estimate.ID); err != nil {
		return internalError(c, "Failed to delete estimate")
	}

	logActivity(c, estimate.BusinessID, "estimate", estimate.ID, models.ActivityActionDeleted, estimate.Number)

	return c.JSON(fiber.Map{"success": true})
}

// HandleSendEstimate emails the estimate's public link to the client and
// moves a draft to sent.
func HandleSendEstimate(c *fiber.Ctx) error {
	if !isLoggedIn(c) {
		return unauthorized(c)
	}
	estimate, ferr := ownedEstimate(c)
	if ferr != nil {
		return ferr
	}
	if estimate.IsTerminal() {
		return badRequest(c, "Responded estimates cannot be re-sent")
	}
	business, ferr := ownedBusiness(c, estimate.BusinessID)
	if ferr != nil {
		return ferr
	}

	client, err := repository.GetGlobalFactory().GetClientRepository().GetByID(estimate.ClientID)
	if err != nil {
		return internalError(c, "Failed to load client")
	}

	if err := mail.SendEstimateEmail(business, client, estimate); err != nil {
		return internalError(c, fmt.Sprintf("Failed to send estimate email: %v", err))
	}

	estimate.MarkSent()
	if err := repository.GetGlobalFactory().GetEstimateRepository().Update(estimate); err != nil {
		return internalError(c, "Failed to record send")
	}

	logActivity(c, estimate.BusinessID, "estimate", estimate.ID, models.ActivityActionSent, client.Email)

	return c.JSON(fiber.Map{
		"success":  true,
		"estimate": estimate,
	})
}

// HandleConvertEstimate turns an accepted estimate into a draft invoice with
// the same line items, discount and shipping. The monthly invoice ceiling
// applies to the new invoice.
func HandleConvertEstimate(c *fiber.Ctx) error {
	if !isLoggedIn(c) {
		return unauthorized(c)
	}
	estimate, ferr := ownedEstimate(c)
	if ferr != nil {
		return ferr
	}

	if err := estimate.MarkConverted(); err != nil {
		return badRequest(c, err.Error())
	}

	repo := repository.GetGlobalFactory().GetInvoiceRepository()
	number, err := repo.NextNumber(estimate.BusinessID)
	if err != nil {
		return internalError(c, "Failed to allocate invoice number")
	}

	invoice := &models.Invoice{
		BusinessID:      estimate.BusinessID,
		ClientID:        estimate.ClientID,
		Number:          number,
		Status:          models.InvoiceStatusDraft,
		LineItemsJSON:   estimate.LineItemsJSON,
		DiscountPercent: estimate.DiscountPercent,
		Shipping:        estimate.Shipping,
		Notes:           estimate.Notes,
	}
	invoice.RecalculateTotals()

	limit, lerr := invoiceLimitForBusiness(c, estimate.BusinessID)
	if lerr != nil {
		return lerr
	}
	if err := repo.CreateWithLimit(invoice, limit); err != nil {
		if errors.Is(err, repository.ErrLimitExceeded) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":            "Monthly invoice limit reached for your plan",
				"upgrade_required": true,
			})
		}
		return internalError(c, "Failed to create invoice")
	}

	if err := repository.GetGlobalFactory().GetEstimateRepository().Update(estimate); err != nil {
		return internalError(c, "Failed to record conversion")
	}

	logActivity(c, estimate.BusinessID, "estimate", estimate.ID, models.ActivityActionConverted, invoice.Number)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"estimate": estimate,
		"invoice":  invoice,
	})
}

// HandlePublicEstimateView serves the estimate to the client via its share
// token. The first view of a sent estimate flips it to viewed.
func HandlePublicEstimateView(c *fiber.Ctx) error {
	estimate, ferr := estimateByToken(c)
	if ferr != nil {
		return ferr
	}

	if estimate.Status == models.EstimateStatusSent {
		estimate.MarkViewed()
		_ = repository.GetGlobalFactory().GetEstimateRepository().Update(estimate)
	}

	business, err := repository.GetGlobalFactory().GetBusinessRepository().GetByID(estimate.BusinessID)
	if err != nil {
		return internalError(c, "Failed to load business")
	}

	return c.JSON(fiber.Map{
		"business_name": business.Name,
		"currency":      business.Currency,
		"estimate":      estimate,
		"line_items":    estimate.LineItems(),
	})
}

// HandlePublicEstimateRespond records the client's accept/reject decision.
// A terminal estimate rejects further responses and stays unchanged.
func HandlePublicEstimateRespond(c *fiber.Ctx) error {
	estimate, ferr := estimateByToken(c)
	if ferr != nil {
		return ferr
	}

	var req estimateResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Accepted == nil {
		return badRequest(c, "accepted is required")
	}

	if err := estimate.ApplyClientResponse(*req.Accepted, req.Notes, time.Now()); err != nil {
		if errors.Is(err, models.ErrEstimateAlreadyResponded) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":  "This estimate has already been responded to",
				"status": estimate.Status,
			})
		}
		return badRequest(c, err.Error())
	}

	if err := repository.GetGlobalFactory().GetEstimateRepository().Update(estimate); err != nil {
		return internalError(c, "Failed to record response")
	}

	entry := &models.ActivityLog{
		BusinessID: estimate.BusinessID,
		UserID:     0, // client response, no authenticated actor
		EntityType: "estimate",
		EntityID:   estimate.ID,
		Action:     models.ActivityActionResponded,
		Detail:     estimate.Status,
	}
	_ = repository.GetGlobalFactory().GetActivityRepository().Append(entry)

	return c.JSON(fiber.Map{
		"success": true,
		"status":  estimate.Status,
	})
}

// ownedEstimate loads the :id estimate and verifies ownership through its business.
func ownedEstimate(c *fiber.Ctx) (*models.Estimate, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, badRequest(c, err.Error())
	}

	estimate, err := repository.GetGlobalFactory().GetEstimateRepository().GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(c, "Estimate not found")
		}
		return nil, internalError(c, "Failed to load estimate")
	}
	if _, ferr := ownedBusiness(c, estimate.BusinessID); ferr != nil {
		return nil, ferr
	}
	return estimate, nil
}

// estimateByToken loads an estimate by its public share token.
func estimateByToken(c *fiber.Ctx) (*models.Estimate, error) {
	token := strings.TrimSpace(c.Params("token"))
	if token == "" {
		return nil, badRequest(c, "invalid token")
	}

	estimate, err := repository.GetGlobalFactory().GetEstimateRepository().GetByShareToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(c, "Estimate not found")
		}
		return nil, internalError(c, "Failed to load estimate")
	}
	return estimate, nil
}

package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/invoiceflow/zerodue/app/models"
	"github.com/invoiceflow/zerodue/app/repository"
	"github.com/invoiceflow/zerodue/internal/pkg/billing"
	"github.com/invoiceflow/zerodue/internal/pkg/database"
	"github.com/invoiceflow/zerodue/internal/pkg/entitlements"
	"github.com/invoiceflow/zerodue/internal/pkg/usercontext"
)

type businessRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	TaxNumber string `json:"tax_number"`
	Currency  string `json:"currency"`
}

// HandleListBusinesses returns every business owned by the authenticated user
// together with the creation entitlement, so the client can render an upgrade
// prompt instead of a create button when the ceiling is reached.
func HandleListBusinesses(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return unauthorized(c)
	}

	repo := repository.GetGlobalFactory().GetBusinessRepository()
	businesses, err := repo.GetByUserID(userCtx.UserID)
	if err != nil {
		return internalError(c, "Failed to load businesses")
	}

	tier := billing.NewServiceFromDB(database.GetDB()).ResolveTier(c.Context(), userCtx.UserID)
	check := entitlements.CanCreateBusiness(tier, len(businesses))

	return c.JSON(fiber.Map{
		"businesses": businesses,
		"plan":       string(tier),
		"can_create": check,
	})
}

// HandleCreateBusiness creates a business. The entitlement ceiling is checked
// here for messaging and re-checked inside the insert transaction, so two
// concurrent creates cannot both slip under the limit.
func HandleCreateBusiness(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return unauthorized(c)
	}

	var req businessRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	repo := repository.GetGlobalFactory().GetBusinessRepository()
	count, err := repo.CountByUserID(userCtx.UserID)
	if err != nil {
		return internalError(c, "Failed to count businesses")
	}

	tier := billing.NewServiceFromDB(database.GetDB()).ResolveTier(c.Context(), userCtx.UserID)
	check := entitlements.CanCreateBusiness(tier, int(count))
	if !check.Allowed {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":           "Business limit reached for your plan",
			"plan":            string(tier),
			"limit":           check.Limit,
			"current":         check.Current,
			"upgrade_required": true,
		})
	}

	business := &models.Business{
		UserID:    userCtx.UserID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		TaxNumber: req.TaxNumber,
		Currency:  req.Currency,
	}
	if business.Currency == "" {
		business.Currency = "USD"
	}
	if err := business.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	if err := repo.CreateWithLimit(business, entitlements.BusinessLimit(tier)); err != nil {
		if errors.Is(err, repository.ErrLimitExceeded) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":           "Business limit reached for your plan",
				"plan":            string(tier),
				"upgrade_required": true,
			})
		}
		return internalError(c, "Failed to create business")
	}

	logActivity(c, business.ID, "business", business.ID, models.ActivityActionCreated, business.Name)

	return c.Status(fiber.StatusCreated).JSON(business)
}

// HandleGetBusiness returns one owned business.
func HandleGetBusiness(c *fiber.Ctx) error {
	if !isLoggedIn(c) {
		return unauthorized(c)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	business, ferr := ownedBusiness(c, id)
	if ferr != nil {
		return ferr
	}
	return c.JSON(business)
}

// HandleUpdateBusiness updates contact fields on an owned business.
func HandleUpdateBusiness(c *fiber.Ctx) error {
	if !isLoggedIn(c) {
		return unauthorized(c)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	business, ferr := ownedBusiness(c, id)
	if ferr != nil {
		return ferr
	}

	var req businessRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if req.Name != "" {
		business.Name = req.Name
	}
	business.Email = req.Email
	business.Phone = req.Phone
	business.Address = req.Address
	business.TaxNumber = req.TaxNumber
	if req.Currency != "" {
		business.Currency = req.Currency
	}
	if err := business.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	if err := repository.GetGlobalFactory().GetBusinessRepository().Update(business); err != nil {
		return internalError(c, "Failed to update business")
	}

	logActivity(c, business.ID, "business", business.ID, models.ActivityActionUpdated, business.Name)

	return c.JSON(business)
}

// HandleDeleteBusiness removes a business and everything scoped to it.
func HandleDeleteBusiness(c *fiber.Ctx) error {
	if !isLoggedIn(c) {
		return unauthorized(c)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	business, ferr := ownedBusiness(c, id)
	if ferr != nil {
		return ferr
	}

	if err := repository.GetGlobalFactory().GetBusinessRepository().DeleteCascade(business.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Business not found")
		}
		return internalError(c, "Failed to delete business")
	}

	return c.JSON(fiber.Map{"success": true})
}

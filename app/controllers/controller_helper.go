package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/invoiceflow/zerodue/app/models"
	"github.com/invoiceflow/zerodue/app/repository"
	"github.com/invoiceflow/zerodue/internal/pkg/usercontext"
)

func isLoggedIn(c *fiber.Ctx) bool {
	return usercontext.GetUserContext(c).IsLoggedIn
}

// unauthorized is the single JSON shape for a missing or invalid session.
func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
}

func notFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": message})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}

func internalError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": message})
}

// paramID parses a numeric path parameter.
func paramID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return uint(id), nil
}

// pagination reads offset/limit query parameters with sane bounds.
func pagination(c *fiber.Ctx) (int, int) {
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return offset, limit
}

// ownedBusiness loads a business and verifies the authenticated user owns it.
// Foreign businesses come back as not-found so route probing reveals nothing.
func ownedBusiness(c *fiber.Ctx, businessID uint) (*models.Business, error) {
	userCtx := usercontext.GetUserContext(c)
	business, err := repository.GetGlobalFactory().GetBusinessRepository().GetByID(businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(c, "Business not found")
		}
		return nil, internalError(c, "Failed to load business")
	}
	if business.UserID != userCtx.UserID {
		return nil, notFound(c, "Business not found")
	}
	return business, nil
}

// logActivity appends to the business activity log. Failures are swallowed;
// the log is display-only and must never fail the main operation.
func logActivity(c *fiber.Ctx, businessID uint, entityType string, entityID uint, action, detail string) {
	userCtx := usercontext.GetUserContext(c)
	entry := &models.ActivityLog{
		BusinessID: businessID,
		UserID:     userCtx.UserID,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Detail:     detail,
	}
	_ = repository.GetGlobalFactory().GetActivityRepository().Append(entry)
}

package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/invoiceflow/zerodue/app/repository"
)

// HandleListActivity returns the append-only activity log of an owned
// business, newest first.
func HandleListActivity(c *fiber.Ctx) error {
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
	entries, err := repository.GetGlobalFactory().GetActivityRepository().GetByBusinessID(businessID, offset, limit)
	if err != nil {
		return internalError(c, "Failed to load activity")
	}
	return c.JSON(fiber.Map{"activity": entries})
}

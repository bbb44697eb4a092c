package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/invoiceflow/zerodue/app/models"
	"github.com/invoiceflow/zerodue/app/repository"
)

type clientRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

// HandleListClients returns the clients of an owned business.
func HandleListClients(c *fiber.Ctx) error {
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
	clients, err := repository.GetGlobalFactory().GetClientRepository().GetByBusinessID(businessID, offset, limit)
	if err != nil {
		return internalError(c, "Failed to load clients")
	}
	return c.JSON(fiber.Map{"clients": clients})
}

// HandleCreateClient adds a client to an owned business.
func HandleCreateClient(c *fiber.Ctx) error {
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

	var req clientRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	client := &models.Client{
		BusinessID: businessID,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		Notes:      req.Notes,
	}
	if err := client.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	if err := repository.GetGlobalFactory().GetClientRepository().Create(client); err != nil {
		return internalError(c, "Failed to create client")
	}

	logActivity(c, businessID, "client", client.ID, models.ActivityActionCreated, client.Name)

	return c.Status(fiber.StatusCreated).JSON(client)
}

// HandleGetClient returns a client with its invoice statistics, aggregated
// on read.
func HandleGetClient(c *fiber.Ctx) error {
	if !isLoggedIn(c) {
		return unauthorized(c)
	}
	client, ferr := ownedClient(c)
	if ferr != nil {
		return ferr
	}

	stats, err := repository.GetGlobalFactory().GetClientRepository().GetStats(client.ID)
	if err != nil {
		return internalError(c, "Failed to load client statistics")
	}

	return c.JSON(fiber.Map{
		"client": client,
		"stats":  stats,
	})
}

// HandleUpdateClient updates contact fields.
func HandleUpdateClient(c *fiber.Ctx) error {
	if !isLoggedIn(c) {
		return unauthorized(c)
	}
	client, ferr := ownedClient(c)
	if ferr != nil {
		return ferr
	}

	var req clientRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if req.Name != "" {
		client.Name = req.Name
	}
	client.Email = req.Email
	client.Phone = req.Phone
	client.Address = req.Address
	client.Notes = req.Notes
	if err := client.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	if err := repository.GetGlobalFactory().GetClientRepository().Update(client); err != nil {
		return internalError(c, "Failed to update client")
	}

	logActivity(c, client.BusinessID, "client", client.ID, models.ActivityActionUpdated, client.Name)

	return c.JSON(client)
}

// HandleDeleteClient removes a client.
func HandleDeleteClient(c *fiber.Ctx) error {
	if !isLoggedIn(c) {
		return unauthorized(c)
	}
	client, ferr := ownedClient(c)
	if ferr != nil {
		return ferr
	}

	if err := repository.GetGlobalFactory().GetClientRepository().Delete(client.ID); err != nil {
		return internalError(c, "Failed to delete client")
	}

	logActivity(c, client.BusinessID, "client", client.ID, models.ActivityActionDeleted, client.Name)

	return c.JSON(fiber.Map{"success": true})
}

// ownedClient loads the :id client and verifies ownership through its business.
func ownedClient(c *fiber.Ctx) (*models.Client, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, badRequest(c, err.Error())
	}

	client, err := repository.GetGlobalFactory().GetClientRepository().GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(c, "Client not found")
		}
		return nil, internalError(c, "Failed to load client")
	}
	if _, ferr := ownedBusiness(c, client.BusinessID); ferr != nil {
		return nil, ferr
	}
	return client, nil
}

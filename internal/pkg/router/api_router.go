package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/invoiceflow/zerodue/app/controllers"
	"github.com/invoiceflow/zerodue/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	v1 := api.Group("/v1", middleware.RequireAPISessionAuth)

	// Plan surface
	v1.Get("/plan", controllers.HandleGetPlan)
	v1.Post("/plan/confirm-subscription", controllers.HandleConfirmSubscription)
	v1.Post("/plan/sync", controllers.HandleSyncPlan)
	v1.Get("/plan/sync", controllers.HandleGetPlanSync)

	// Businesses
	v1.Get("/businesses", controllers.HandleListBusinesses)
	v1.Post("/businesses", controllers.HandleCreateBusiness)
	v1.Get("/businesses/:id", controllers.HandleGetBusiness)
	v1.Put("/businesses/:id", controllers.HandleUpdateBusiness)
	v1.Delete("/businesses/:id", controllers.HandleDeleteBusiness)

	// Clients, scoped to a business for list/create
	v1.Get("/businesses/:businessId/clients", controllers.HandleListClients)
	v1.Post("/businesses/:businessId/clients", controllers.HandleCreateClient)
	v1.Get("/clients/:id", controllers.HandleGetClient)
	v1.Put("/clients/:id", controllers.HandleUpdateClient)
	v1.Delete("/clients/:id", controllers.HandleDeleteClient)

	// Invoices
	v1.Get("/businesses/:businessId/invoices", controllers.HandleListInvoices)
	v1.Post("/businesses/:businessId/invoices", controllers.HandleCreateInvoice)
	v1.Get("/invoices/:id", controllers.HandleGetInvoice)
	v1.Put("/invoices/:id", controllers.HandleUpdateInvoice)
	v1.Delete("/invoices/:id", controllers.HandleDeleteInvoice)
	v1.Post("/invoices/:id/send", controllers.HandleSendInvoice)
	v1.Post("/invoices/:id/mark-paid", controllers.HandleMarkInvoicePaid)

	// Estimates
	v1.Get("/businesses/:businessId/estimates", controllers.HandleListEstimates)
	v1.Post("/businesses/:businessId/estimates", controllers.HandleCreateEstimate)
	v1.Get("/estimates/:id", controllers.HandleGetEstimate)
	v1.Put("/estimates/:id", controllers.HandleUpdateEstimate)
	v1.Delete("/estimates/:id", controllers.HandleDeleteEstimate)
	v1.Post("/estimates/:id/send", controllers.HandleSendEstimate)
	v1.Post("/estimates/:id/convert", controllers.HandleConvertEstimate)

	// Activity
	v1.Get("/businesses/:businessId/activity", controllers.HandleListActivity)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/invoiceflow/zerodue/app/controllers"
	"github.com/invoiceflow/zerodue/internal/pkg/middleware"
	"github.com/invoiceflow/zerodue/internal/pkg/oauth"
	"github.com/invoiceflow/zerodue/internal/pkg/session"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// init oauth providers
	oauth.Setup()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	h.registerPublicRoutes(app)
	h.registerBrowserRoutes(app)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

// registerPublicRoutes wires everything reachable without a session.
func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	// Local account lifecycle
	app.Post("/register", controllers.HandleRegister)
	app.Post("/login", controllers.HandleLogin)
	app.Post("/logout", controllers.HandleLogout)
	app.Get("/activate/:token", controllers.HandleActivate)

	// OAuth login
	app.Get("/auth/:provider", controllers.HandleOAuthStart)
	app.Get("/auth/:provider/callback", controllers.HandleOAuthCallback)
	app.Get("/auth/logout", controllers.HandleOAuthLogout)

	// Client-facing estimate view and response, keyed by share token
	app.Get("/e/:token", controllers.HandlePublicEstimateView)
	app.Post("/e/:token/respond", controllers.HandlePublicEstimateRespond)

	// Email provider delivery events
	app.Post("/webhooks/email", controllers.HandleEmailWebhook)
}

// registerBrowserRoutes wires the session-authenticated browser pages.
func (h HttpRouter) registerBrowserRoutes(app *fiber.App) {
	billing := app.Group("/billing", middleware.RequireAuth)
	billing.Get("/checkout/success", controllers.HandleCheckoutSuccess)
	billing.Get("/checkout/cancel", controllers.HandleCheckoutCancel)
}

package router

import (
	"github.com/ManuelReschke/SubSync/app/controllers"
	"github.com/gofiber/fiber/v2"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// Initialize billing controller with its service dependencies
	controllers.InitializeBillingController()

	// Billing provider webhooks (no CSRF, signature-verified in controller)
	app.Post("/webhooks/stripe", controllers.HandleStripeWebhook)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

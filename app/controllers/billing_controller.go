package controllers

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ManuelReschke/SubSync/internal/pkg/billing"
	"github.com/ManuelReschke/SubSync/internal/pkg/database"
	"github.com/ManuelReschke/SubSync/internal/pkg/env"
	"github.com/gofiber/fiber/v2"
)

// StripeWebhookController handles inbound Stripe webhook deliveries using an
// injected billing service so tests can substitute fakes.
type StripeWebhookController struct {
	svc *billing.Service
}

// NewStripeWebhookController creates a webhook controller around a billing service.
func NewStripeWebhookController(svc *billing.Service) *StripeWebhookController {
	return &StripeWebhookController{svc: svc}
}

var stripeWebhookController *StripeWebhookController

// InitializeBillingController wires the production billing service. The price
// catalog and webhook secret are validated here, at startup, not per request.
func InitializeBillingController() {
	catalog, err := billing.NewPriceCatalogFromEnv()
	if err != nil {
		log.Fatalf("billing price catalog misconfigured: %v", err)
	}

	webhookSecret := env.GetEnv("STRIPE_WEBHOOK_SECRET", "")
	if webhookSecret == "" {
		log.Fatal("STRIPE_WEBHOOK_SECRET is not configured")
	}

	provider := billing.NewStripeClient(env.GetEnv("STRIPE_SECRET_KEY", ""), webhookSecret)
	svc := billing.NewServiceFromDB(database.GetDB(), provider, catalog)
	stripeWebhookController = NewStripeWebhookController(svc)
}

// HandleStripeWebhook is the route target for POST /webhooks/stripe.
func HandleStripeWebhook(c *fiber.Ctx) error {
	return stripeWebhookController.HandleWebhook(c)
}

// HandleWebhook verifies, records and dispatches one delivery. Verification
// failure rejects the request before anything is written. Dispatch errors are
// logged and answered with a generic failure; writes that already happened
// stay in place and Stripe's redelivery is the recovery path.
func (wc *StripeWebhookController) HandleWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := strings.TrimSpace(c.Get("Stripe-Signature"))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	event, err := wc.svc.VerifyEvent(rawBody, signature)
	if err != nil {
		log.Printf("[billing] webhook signature verification failed: %v", err)
		return c.Status(fiber.StatusBadRequest).SendString(fmt.Sprintf("Webhook Error: %v", err))
	}

	stored, err := wc.svc.RecordWebhookEvent(ctx, event.ID, string(event.Type), rawBody, true)
	if err != nil {
		// Audit bookkeeping must not block event processing.
		log.Printf("[billing] failed to record webhook event %s: %v", event.ID, err)
	}

	if err := wc.svc.ProcessEvent(ctx, event); err != nil {
		log.Printf("[billing] failed to process %s event %s: %v", event.Type, event.ID, err)
		if stored != nil {
			_ = wc.svc.MarkWebhookProcessed(ctx, stored.ID, err)
		}
		return c.Status(fiber.StatusBadRequest).SendString("Webhook handler failed")
	}

	if stored != nil {
		_ = wc.svc.MarkWebhookProcessed(ctx, stored.ID, nil)
	}
	return c.Status(fiber.StatusOK).SendString("Webhook received")
}

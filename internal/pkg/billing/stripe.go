package billing

import (
	"context"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

// ProviderClient is the slice of the payment provider's API the billing
// service depends on. Kept small so tests can substitute a fake.
type ProviderClient interface {
	// ConstructEvent verifies the signature header over payload and returns
	// the parsed event. Verification failure means the delivery must be
	// rejected without touching any state.
	ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error)

	// GetCheckoutSession re-fetches the full session with line items
	// expanded. Webhook payloads may arrive truncated.
	GetCheckoutSession(ctx context.Context, id string) (*stripe.CheckoutSession, error)

	// GetSubscription re-fetches a subscription to resolve its customer.
	GetSubscription(ctx context.Context, id string) (*stripe.Subscription, error)
}

// StripeClient implements ProviderClient on top of stripe-go.
type StripeClient struct {
	api           *client.API
	webhookSecret string
}

// NewStripeClient creates a Stripe-backed provider client.
func NewStripeClient(apiKey, webhookSecret string) *StripeClient {
	api := &client.API{}
	api.Init(apiKey, nil)
	return &StripeClient{
		api:           api,
		webhookSecret: webhookSecret,
	}
}

func (c *StripeClient) ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, sigHeader, c.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}

func (c *StripeClient) GetCheckoutSession(ctx context.Context, id string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("line_items")
	return c.api.CheckoutSessions.Get(id, params)
}

func (c *StripeClient) GetSubscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	return c.api.Subscriptions.Get(id, params)
}

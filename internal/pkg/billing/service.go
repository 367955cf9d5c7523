package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ManuelReschke/SubSync/app/models"
	"github.com/ManuelReschke/SubSync/internal/pkg/entitlements"
	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"
)

// Service reconciles local subscription state from verified provider events.
type Service struct {
	repo     Repository
	provider ProviderClient
	catalog  PriceCatalog

	// now is injected so tests can pin the subscription start date.
	now func() time.Time
}

// NewService creates a billing service from injected dependencies.
func NewService(repo Repository, provider ProviderClient, catalog PriceCatalog) *Service {
	return &Service{
		repo:     repo,
		provider: provider,
		catalog:  catalog,
		now:      time.Now,
	}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, provider ProviderClient, catalog PriceCatalog) *Service {
	return NewService(NewRepository(db), provider, catalog)
}

// VerifyEvent validates the provider signature over the raw payload. No
// state is touched here; a verification failure must leave the DB unchanged.
func (s *Service) VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return s.provider.ConstructEvent(payload, sigHeader)
}

// RecordWebhookEvent persists an audit row for a verified delivery. The row
// never gates dispatch: replayed deliveries are reprocessed, not skipped.
func (s *Service) RecordWebhookEvent(ctx context.Context, eventID, eventType string, payload []byte, signatureValid bool) (*models.BillingWebhookEvent, error) {
	_ = ctx
	id := strings.TrimSpace(eventID)
	if id == "" {
		id = "local:" + uuid.NewString()
	}

	event := &models.BillingWebhookEvent{
		ProviderEventID: id,
		EventType:       strings.TrimSpace(eventType),
		PayloadJSON:     string(payload),
		SignatureValid:  signatureValid,
	}
	if err := s.repo.CreateWebhookEvent(event); err != nil {
		return nil, err
	}
	return event, nil
}

// MarkWebhookProcessed marks an audit row as processed with an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("billing: webhook event id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}

// ProcessEvent dispatches a verified event by type. Unknown event types are
// acknowledged without doing anything. Writes are independent point
// operations; an error partway through leaves earlier writes in place and
// relies on the provider's redelivery for recovery.
func (s *Service) ProcessEvent(ctx context.Context, event stripe.Event) error {
	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		return s.handleCheckoutCompleted(ctx, event)
	case stripe.EventTypeCustomerSubscriptionDeleted:
		return s.handleSubscriptionDeleted(ctx, event)
	default:
		return nil
	}
}

func (s *Service) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var payload stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &payload); err != nil {
		return fmt.Errorf("parse checkout session payload: %w", err)
	}

	session, err := s.provider.GetCheckoutSession(ctx, payload.ID)
	if err != nil {
		return fmt.Errorf("fetch checkout session %s: %w", payload.ID, err)
	}

	email := checkoutEmail(session)
	if email == "" {
		// Nothing to reconcile without a customer email.
		return nil
	}

	user, err := s.repo.FindUserByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: email %s", ErrUserNotFound, email)
		}
		return err
	}

	// First completed checkout binds the customer id; it stays immutable
	// afterwards.
	if customerID := checkoutCustomerID(session); customerID != "" && !user.HasStripeCustomer() {
		user.StripeCustomerID = &customerID
		if err := s.repo.SaveUser(user); err != nil {
			return err
		}
	}

	if session.LineItems == nil {
		return nil
	}

	for _, item := range session.LineItems.Data {
		if item.Price == nil || item.Price.Recurring == nil {
			// One-time purchases are not handled yet.
			continue
		}

		period, ok := s.catalog.PeriodFor(item.Price.ID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownPrice, item.Price.ID)
		}

		start := s.now()
		sub := &models.Subscription{
			UserID:    user.ID,
			Plan:      models.PLAN_PREMIUM,
			Period:    string(period),
			StartDate: start,
			EndDate:   entitlements.PeriodEnd(start, period),
		}
		if err := s.repo.UpsertSubscription(sub); err != nil {
			return err
		}

		user.Plan = models.PLAN_PREMIUM
		if err := s.repo.SaveUser(user); err != nil {
			return err
		}
	}

	return nil
}

func (s *Service) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	var payload stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &payload); err != nil {
		return fmt.Errorf("parse subscription payload: %w", err)
	}

	sub, err := s.provider.GetSubscription(ctx, payload.ID)
	if err != nil {
		return fmt.Errorf("fetch subscription %s: %w", payload.ID, err)
	}
	if sub.Customer == nil || sub.Customer.ID == "" {
		return fmt.Errorf("subscription %s carries no customer", payload.ID)
	}

	user, err := s.repo.FindUserByCustomerID(sub.Customer.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: customer %s", ErrUserNotFound, sub.Customer.ID)
		}
		return err
	}

	// Soft downgrade: the subscription row stays in place.
	user.Plan = models.PLAN_FREE
	return s.repo.SaveUser(user)
}

func checkoutEmail(session *stripe.CheckoutSession) string {
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		return session.CustomerDetails.Email
	}
	return session.CustomerEmail
}

func checkoutCustomerID(session *stripe.CheckoutSession) string {
	if session.Customer == nil {
		return ""
	}
	return session.Customer.ID
}

package billing

import (
	"errors"
	"strings"

	"github.com/ManuelReschke/SubSync/internal/pkg/entitlements"
	"github.com/ManuelReschke/SubSync/internal/pkg/env"
)

// PriceCatalog maps Stripe price ids to the billing period they bill in.
// It is built once at startup and validated there, so event dispatch can
// treat an unknown price id as a hard processing error.
type PriceCatalog map[string]entitlements.BillingPeriod

// NewPriceCatalog builds a catalog from the two known price ids.
func NewPriceCatalog(monthlyPriceID, yearlyPriceID string) (PriceCatalog, error) {
	monthly := strings.TrimSpace(monthlyPriceID)
	yearly := strings.TrimSpace(yearlyPriceID)

	if monthly == "" || yearly == "" {
		return nil, errors.New("billing: monthly and yearly price ids are required")
	}
	if monthly == yearly {
		return nil, errors.New("billing: monthly and yearly price ids must differ")
	}

	return PriceCatalog{
		monthly: entitlements.PeriodMonthly,
		yearly:  entitlements.PeriodYearly,
	}, nil
}

// NewPriceCatalogFromEnv builds the catalog from STRIPE_PRICE_ID_MONTHLY and
// STRIPE_PRICE_ID_YEARLY.
func NewPriceCatalogFromEnv() (PriceCatalog, error) {
	return NewPriceCatalog(
		env.GetEnv("STRIPE_PRICE_ID_MONTHLY", ""),
		env.GetEnv("STRIPE_PRICE_ID_YEARLY", ""),
	)
}

// PeriodFor resolves a price id to its billing period.
func (c PriceCatalog) PeriodFor(priceID string) (entitlements.BillingPeriod, bool) {
	period, ok := c[priceID]
	return period, ok
}

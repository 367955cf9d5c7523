package entitlements

import (
	"strings"
	"time"
)

type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// BillingPeriod is the recurring interval a subscription is billed in.
type BillingPeriod string

const (
	PeriodMonthly BillingPeriod = "monthly"
	PeriodYearly  BillingPeriod = "yearly"
)

// NormalizePlan maps arbitrary input to a known plan, defaulting to free.
func NormalizePlan(plan string) Plan {
	switch strings.ToLower(strings.TrimSpace(plan)) {
	case string(PlanPremium):
		return PlanPremium
	default:
		return PlanFree
	}
}

// ValidPeriod reports whether p is a supported billing period.
func ValidPeriod(p BillingPeriod) bool {
	return p == PeriodMonthly || p == PeriodYearly
}

// PeriodEnd computes the end of a billing period that starts at start.
// Monthly subscriptions run one calendar month, yearly ones one calendar year.
func PeriodEnd(start time.Time, p BillingPeriod) time.Time {
	if p == PeriodYearly {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}

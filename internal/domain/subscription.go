package domain

import (
	"fmt"
	"time"
)

type SubscriptionDuration string

const (
	Duration6Months SubscriptionDuration = "6months"
	Duration1Year   SubscriptionDuration = "1year"
	Duration2Years  SubscriptionDuration = "2years"
)

func ParseSubscriptionDuration(s string) (SubscriptionDuration, bool) {
	switch SubscriptionDuration(s) {
	case Duration6Months, Duration1Year, Duration2Years:
		return SubscriptionDuration(s), true
	}
	return "", false
}

func (d SubscriptionDuration) months() int {
	switch d {
	case Duration6Months:
		return 6
	case Duration1Year:
		return 12
	case Duration2Years:
		return 24
	}
	return 0
}

// EndDate computes start + duration with calendar arithmetic. When the
// start day does not exist in the target month the day clamps to the
// month's last day, so 2024-02-29 + 1year = 2025-02-28.
func (d SubscriptionDuration) EndDate(start time.Time) (time.Time, error) {
	months := d.months()
	if months == 0 {
		return time.Time{}, fmt.Errorf("%w: unknown duration %q", ErrValidation, string(d))
	}
	return addMonthsClamped(start, months), nil
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	h, min, sec := t.Clock()
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, h, min, sec, t.Nanosecond(), t.Location())
}

type SubscriptionStatus string

const (
	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

type Subscription struct {
	ID            int32                `json:"id"`
	OrgID         int32                `json:"org_id"`
	Duration      SubscriptionDuration `json:"duration"`
	StartDate     time.Time            `json:"start_date"`
	EndDate       time.Time            `json:"end_date"`
	Status        SubscriptionStatus   `json:"status"`
	AmountCents   int32                `json:"amount_cents"`
	PaymentMethod string               `json:"payment_method"`
	ReceiptRef    string               `json:"receipt_ref,omitempty"`
	VerifiedBy    *int32               `json:"verified_by,omitempty"`
	VerifiedAt    *time.Time           `json:"verified_at,omitempty"`
	Notes         string               `json:"notes,omitempty"`
	CreatedOn     time.Time            `json:"created_on"`
	UpdatedOn     time.Time            `json:"updated_on"`
}

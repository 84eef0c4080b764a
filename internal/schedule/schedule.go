// Package schedule derives billing cycle amounts and due dates from a
// policy's annual premium and payment frequency.  Like pricing, it is
// pure arithmetic; the repository layer owns the conditional inserts
// that keep cycles unique.
package schedule

import (
	"errors"
	"math"
	"time"

	"github.com/adilbk/assurauto-backend/internal/model"
)

// ErrInvalidFrequency is returned for a frequency outside the
// supported set.
var ErrInvalidFrequency = errors.New("invalid payment frequency")

// AtRiskThreshold is the number of consecutive failed or overdue
// premium cycles after which a policy.at_risk signal is emitted.  The
// scheduler only signals; suspension is decided elsewhere.
const AtRiskThreshold = 3

// CycleAmountCents returns the per-installment amount for the given
// annual premium: premium/12 for monthly, premium/4 for quarterly, the
// full premium for annual billing.  Division is rounded to the cent;
// the resulting drift over a year is accepted, not corrected.
func CycleAmountCents(premiumCents int64, f model.PaymentFrequency) (int64, error) {
	switch f {
	case model.FrequencyMonthly:
		return int64(math.Round(float64(premiumCents) / 12)), nil
	case model.FrequencyQuarterly:
		return int64(math.Round(float64(premiumCents) / 4)), nil
	case model.FrequencyAnnually:
		return premiumCents, nil
	}
	return 0, ErrInvalidFrequency
}

// NextDueDate advances a due date by one billing cycle: one month,
// three months or one year.  Day-of-month is clamped to the target
// month's last day, so a policy issued on January 31st bills on
// February 28th rather than March 3rd.
func NextDueDate(from time.Time, f model.PaymentFrequency) (time.Time, error) {
	switch f {
	case model.FrequencyMonthly:
		return addMonthsClamped(from, 1), nil
	case model.FrequencyQuarterly:
		return addMonthsClamped(from, 3), nil
	case model.FrequencyAnnually:
		return addMonthsClamped(from, 12), nil
	}
	return time.Time{}, ErrInvalidFrequency
}

// CyclesPerYear returns how many premium installments a coverage year
// has under the given frequency.
func CyclesPerYear(f model.PaymentFrequency) (int, error) {
	switch f {
	case model.FrequencyMonthly:
		return 12, nil
	case model.FrequencyQuarterly:
		return 4, nil
	case model.FrequencyAnnually:
		return 1, nil
	}
	return 0, ErrInvalidFrequency
}

// addMonthsClamped adds n months keeping the day of month, clamped to
// the last day of the target month.  time.AddDate is not used directly
// because it normalizes overflow days into the following month.
func addMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m, 1, 0, 0, 0, 0, t.Location()).AddDate(0, n, 0)
	last := daysIn(firstOfTarget.Year(), firstOfTarget.Month())
	if d > last {
		d = last
	}
	h, min, sec := t.Clock()
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, h, min, sec, t.Nanosecond(), t.Location())
}

// daysIn returns the number of days in the given month.
func daysIn(year int, m time.Month) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

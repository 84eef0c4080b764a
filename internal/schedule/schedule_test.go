package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adilbk/assurauto-backend/internal/model"
)

func TestCycleAmountCents(t *testing.T) {
	// 3150.00 annual premium
	monthly, err := CycleAmountCents(315_000, model.FrequencyMonthly)
	require.NoError(t, err)
	assert.Equal(t, int64(26_250), monthly)

	quarterly, err := CycleAmountCents(315_000, model.FrequencyQuarterly)
	require.NoError(t, err)
	assert.Equal(t, int64(78_750), quarterly)

	annual, err := CycleAmountCents(315_000, model.FrequencyAnnually)
	require.NoError(t, err)
	assert.Equal(t, int64(315_000), annual)

	_, err = CycleAmountCents(315_000, model.PaymentFrequency("weekly"))
	assert.ErrorIs(t, err, ErrInvalidFrequency)
}

func TestCycleAmountRoundsToCent(t *testing.T) {
	// 1000.00 / 12 = 83.333… → 83.33
	monthly, err := CycleAmountCents(100_000, model.FrequencyMonthly)
	require.NoError(t, err)
	assert.Equal(t, int64(8_333), monthly)

	// drift over a year stays under 12 cents
	drift := monthly*12 - 100_000
	if drift < 0 {
		drift = -drift
	}
	assert.Less(t, drift, int64(12))
}

func TestNextDueDate(t *testing.T) {
	day := time.Date(2025, time.April, 15, 0, 0, 0, 0, time.UTC)

	next, err := NextDueDate(day, model.FrequencyMonthly)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.May, 15, 0, 0, 0, 0, time.UTC), next)

	next, err = NextDueDate(day, model.FrequencyQuarterly)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC), next)

	next, err = NextDueDate(day, model.FrequencyAnnually)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.April, 15, 0, 0, 0, 0, time.UTC), next)

	_, err = NextDueDate(day, model.PaymentFrequency(""))
	assert.ErrorIs(t, err, ErrInvalidFrequency)
}

// Day-of-month overflow clamps to the end of the target month instead
// of spilling into the next one.
func TestNextDueDateEndOfMonth(t *testing.T) {
	jan31 := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)
	next, err := NextDueDate(jan31, model.FrequencyMonthly)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), next)

	// leap year
	jan31 = time.Date(2028, time.January, 31, 0, 0, 0, 0, time.UTC)
	next, err = NextDueDate(jan31, model.FrequencyMonthly)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2028, time.February, 29, 0, 0, 0, 0, time.UTC), next)

	mar31 := time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)
	next, err = NextDueDate(mar31, model.FrequencyMonthly)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC), next)

	// quarterly from Nov 30 lands on Feb 28, not Mar 2
	nov30 := time.Date(2025, time.November, 30, 0, 0, 0, 0, time.UTC)
	next, err = NextDueDate(nov30, model.FrequencyQuarterly)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC), next)
}

func TestCyclesPerYear(t *testing.T) {
	n, err := CyclesPerYear(model.FrequencyMonthly)
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	n, err = CyclesPerYear(model.FrequencyQuarterly)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	n, err = CyclesPerYear(model.FrequencyAnnually)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, err = CyclesPerYear(model.PaymentFrequency("biweekly"))
	assert.ErrorIs(t, err, ErrInvalidFrequency)
}

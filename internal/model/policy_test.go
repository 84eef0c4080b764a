package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testPolicy(status PolicyStatus) Policy {
	start := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	return Policy{
		Status:    status,
		StartDate: start,
		EndDate:   start.AddDate(1, 0, 0),
	}
}

func TestPolicyCoversIncidentWindow(t *testing.T) {
	p := testPolicy(PolicyActive)

	assert.True(t, p.CoversIncident(p.StartDate))
	assert.True(t, p.CoversIncident(p.StartDate.AddDate(0, 6, 0)))
	assert.True(t, p.CoversIncident(p.EndDate))

	// outside the window fails regardless of status
	for _, st := range []PolicyStatus{PolicyActive, PolicyExpired, PolicySuspended, PolicyCancelled} {
		p := testPolicy(st)
		assert.False(t, p.CoversIncident(p.StartDate.AddDate(0, 0, -1)), "status %s", st)
		assert.False(t, p.CoversIncident(p.EndDate.AddDate(0, 0, 1)), "status %s", st)
	}
}

func TestPolicyCoversIncidentStatus(t *testing.T) {
	at := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

	assert.True(t, testPolicy(PolicyActive).CoversIncident(at))
	// expired policies still cover incidents inside their original window
	assert.True(t, testPolicy(PolicyExpired).CoversIncident(at))
	assert.False(t, testPolicy(PolicySuspended).CoversIncident(at))
	assert.False(t, testPolicy(PolicyCancelled).CoversIncident(at))
}

func TestPolicyStatusCanTransition(t *testing.T) {
	cases := []struct {
		from, to PolicyStatus
		ok       bool
	}{
		{PolicyActive, PolicyExpired, true},
		{PolicyActive, PolicySuspended, true},
		{PolicyActive, PolicyCancelled, true},
		{PolicySuspended, PolicyActive, true},
		{PolicySuspended, PolicyCancelled, true},
		{PolicySuspended, PolicyExpired, true},
		{PolicyExpired, PolicyActive, false},
		{PolicyCancelled, PolicyActive, false},
		{PolicyExpired, PolicyCancelled, false},
		{PolicyActive, PolicyActive, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestPaymentFrequencyValid(t *testing.T) {
	assert.True(t, FrequencyMonthly.Valid())
	assert.True(t, FrequencyQuarterly.Valid())
	assert.True(t, FrequencyAnnually.Valid())
	assert.False(t, PaymentFrequency("weekly").Valid())
	assert.False(t, PaymentFrequency("").Valid())
}

func TestPolicyEndIsCalendarYear(t *testing.T) {
	// term crossing 2024-02-29 still ends on the anniversary day
	start := time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)
	end := PolicyEnd(start)
	assert.Equal(t, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), end)

	p := Policy{Status: PolicyActive, StartDate: start, EndDate: end}
	assert.True(t, p.CoversIncident(end))

	assert.Equal(t,
		time.Date(2026, time.April, 15, 0, 0, 0, 0, time.UTC),
		PolicyEnd(time.Date(2025, time.April, 15, 0, 0, 0, 0, time.UTC)))
}

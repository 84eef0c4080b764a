package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuoteStatusCanTransition(t *testing.T) {
	cases := []struct {
		from, to QuoteStatus
		ok       bool
	}{
		{QuotePending, QuoteApproved, true},
		{QuotePending, QuoteRejected, true},
		{QuotePending, QuoteExpired, true},
		{QuotePending, QuotePending, false},
		{QuoteApproved, QuoteRejected, false},
		{QuoteApproved, QuotePending, false},
		{QuoteRejected, QuoteApproved, false},
		{QuoteRejected, QuotePending, false},
		{QuoteExpired, QuoteApproved, false},
		{QuoteExpired, QuotePending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestQuoteStatusTerminal(t *testing.T) {
	assert.False(t, QuotePending.Terminal())
	assert.True(t, QuoteApproved.Terminal())
	assert.True(t, QuoteRejected.Terminal())
	assert.True(t, QuoteExpired.Terminal())
}

// Once terminal, no target status is ever accepted again.
func TestQuoteTerminalStatesAcceptNothing(t *testing.T) {
	terminals := []QuoteStatus{QuoteApproved, QuoteRejected, QuoteExpired}
	targets := []QuoteStatus{QuotePending, QuoteApproved, QuoteRejected, QuoteExpired}
	for _, from := range terminals {
		for _, to := range targets {
			assert.False(t, from.CanTransition(to), "%s -> %s must be illegal", from, to)
		}
	}
}

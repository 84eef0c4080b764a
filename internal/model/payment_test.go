package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentStatusCanTransition(t *testing.T) {
	cases := []struct {
		from, to PaymentStatus
		ok       bool
	}{
		{PaymentPending, PaymentPaid, true},
		{PaymentPending, PaymentFailed, true},
		{PaymentPending, PaymentOverdue, true},
		{PaymentOverdue, PaymentPaid, true},
		{PaymentOverdue, PaymentFailed, true},
		{PaymentPaid, PaymentRefunded, true},
		// no going back
		{PaymentPaid, PaymentPending, false},
		{PaymentFailed, PaymentPending, false},
		{PaymentFailed, PaymentPaid, false},
		{PaymentOverdue, PaymentPending, false},
		{PaymentRefunded, PaymentPaid, false},
		{PaymentRefunded, PaymentPending, false},
		{PaymentPending, PaymentRefunded, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

// refunded is final: nothing is reachable from it.
func TestPaymentRefundedIsFinal(t *testing.T) {
	for _, to := range []PaymentStatus{PaymentPending, PaymentPaid, PaymentFailed, PaymentOverdue, PaymentRefunded} {
		assert.False(t, PaymentRefunded.CanTransition(to))
	}
}

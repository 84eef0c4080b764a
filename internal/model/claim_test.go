package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// The only legal claim edges are pending→in_review, in_review→approved,
// in_review→rejected and approved→settled.  Everything else, including
// skips like pending→settled, must be refused.
func TestClaimStatusCanTransition(t *testing.T) {
	all := []ClaimStatus{ClaimPending, ClaimInReview, ClaimApproved, ClaimRejected, ClaimSettled}
	legal := map[[2]ClaimStatus]bool{
		{ClaimPending, ClaimInReview}:  true,
		{ClaimInReview, ClaimApproved}: true,
		{ClaimInReview, ClaimRejected}: true,
		{ClaimApproved, ClaimSettled}:  true,
	}
	for _, from := range all {
		for _, to := range all {
			want := legal[[2]ClaimStatus{from, to}]
			assert.Equal(t, want, from.CanTransition(to), "%s -> %s", from, to)
		}
	}
}

func TestClaimStatusTerminal(t *testing.T) {
	assert.True(t, ClaimRejected.Terminal())
	assert.True(t, ClaimSettled.Terminal())
	assert.False(t, ClaimPending.Terminal())
	assert.False(t, ClaimInReview.Terminal())
	assert.False(t, ClaimApproved.Terminal())
}

func TestClaimStatusAllowsInvestigator(t *testing.T) {
	assert.True(t, ClaimPending.AllowsInvestigator())
	assert.True(t, ClaimInReview.AllowsInvestigator())
	assert.False(t, ClaimApproved.AllowsInvestigator())
	assert.False(t, ClaimRejected.AllowsInvestigator())
	assert.False(t, ClaimSettled.AllowsInvestigator())
}

// Package queue defines message payloads exchanged over the message broker.
package queue

// Event kinds published to the notifications queue.  Consumers switch on
// the kind; unknown kinds are logged verbatim so adding a kind never
// breaks an older consumer.
const (
	KindQuoteReady     = "quote.ready"
	KindQuoteApproved  = "quote.approved"
	KindQuoteRejected  = "quote.rejected"
	KindQuoteExpired   = "quote.expired"
	KindPolicyIssued   = "policy.issued"
	KindPolicyExpired  = "policy.expired"
	KindPolicyAtRisk   = "policy.at_risk"
	KindPaymentPaid    = "payment.paid"
	KindPaymentFailed  = "payment.failed"
	KindPaymentOverdue = "payment.overdue"
	KindClaimFiled     = "claim.filed"
	KindClaimApproved  = "claim.approved"
	KindClaimRejected  = "claim.rejected"
	KindClaimSettled   = "claim.settled"
)

// NotificationEvent is published whenever a quote, policy, payment or claim
// crosses a state the policyholder should hear about.  It carries enough
// information for downstream consumers to log, email or trigger analytics
// without querying the primary database.
type NotificationEvent struct {
	Kind        string `json:"kind"`
	UserID      uint64 `json:"user_id"`
	Reference   string `json:"reference"`
	AmountCents int64  `json:"amount_cents,omitempty"`
	Detail      string `json:"detail,omitempty"`
	OccurredAt  string `json:"occurred_at"`
}

package model

import "time"

// PaymentStatus is the state of one billing installment or payout.
// Transitions are forward-only; paid→refunded is the single
// backward-looking edge and refunded is final.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentOverdue  PaymentStatus = "overdue"
	PaymentRefunded PaymentStatus = "refunded"
)

// CanTransition reports whether moving from s to next is a legal
// payment transition.
func (s PaymentStatus) CanTransition(next PaymentStatus) bool {
	switch s {
	case PaymentPending:
		return next == PaymentPaid || next == PaymentFailed || next == PaymentOverdue
	case PaymentOverdue:
		// a late installment may still be collected or written off
		return next == PaymentPaid || next == PaymentFailed
	case PaymentPaid:
		return next == PaymentRefunded
	}
	return false
}

// PaymentType distinguishes premium installments from fees and claim
// payouts.  Claim payouts never count against the annual premium.
type PaymentType string

const (
	PaymentTypePremium     PaymentType = "premium"
	PaymentTypeFee         PaymentType = "fee"
	PaymentTypeClaimPayout PaymentType = "claim_payout"
)

// Payment represents a row in the `payments` table.  Premium rows are
// materialized one per billing cycle; the (policy_id, cycle_start)
// pair is unique so concurrent scheduling retries cannot double-bill a
// cycle.
//
// Fields:
//  ID              – primary key identifier.
//  PolicyID        – policy this payment belongs to.
//  UserID          – payer (the policyholder).
//  Type            – premium, fee or claim_payout.
//  AmountCents     – amount in cents.
//  Status          – payment state.
//  Method          – payment method label (card, sepa, ...).
//  TransactionID   – gateway transaction identifier, if any.
//  GatewayResponse – raw gateway response payload (JSON column).
//  CycleStart      – first day of the billing cycle covered.
//  DueDate         – date the installment is due.
//  PaidDate        – when the payment was settled (nullable).
//  RefundReason    – mandatory reason recorded on refund (nullable).
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Payment struct {
	ID              uint64        // payments.id
	PolicyID        uint64        // payments.policy_id
	UserID          uint64        // payments.user_id
	Type            PaymentType   // payments.type
	AmountCents     int64         // payments.amount_cents
	Status          PaymentStatus // payments.status
	Method          string        // payments.method
	TransactionID   *string       // payments.transaction_id (nullable)
	GatewayResponse *string       // payments.gateway_response (JSON, nullable)
	CycleStart      time.Time     // payments.cycle_start
	DueDate         time.Time     // payments.due_date
	PaidDate        *time.Time    // payments.paid_date (nullable)
	RefundReason    *string       // payments.refund_reason (nullable)
	CreatedAt       time.Time     // payments.created_at
	UpdatedAt       time.Time     // payments.updated_at
}

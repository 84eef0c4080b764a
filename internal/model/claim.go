package model

import "time"

// ClaimStatus is the adjudication state of a claim.  rejected and
// settled are terminal.
type ClaimStatus string

const (
	ClaimPending  ClaimStatus = "pending"
	ClaimInReview ClaimStatus = "in_review"
	ClaimApproved ClaimStatus = "approved"
	ClaimRejected ClaimStatus = "rejected"
	ClaimSettled  ClaimStatus = "settled"
)

// CanTransition reports whether moving from s to next is a legal claim
// transition.  The only legal edges are pending→in_review,
// in_review→approved, in_review→rejected and approved→settled; any
// skip is illegal.
func (s ClaimStatus) CanTransition(next ClaimStatus) bool {
	switch s {
	case ClaimPending:
		return next == ClaimInReview
	case ClaimInReview:
		return next == ClaimApproved || next == ClaimRejected
	case ClaimApproved:
		return next == ClaimSettled
	}
	return false
}

// Terminal reports whether no further transition is accepted from this
// status.
func (s ClaimStatus) Terminal() bool {
	return s == ClaimRejected || s == ClaimSettled
}

// AllowsInvestigator reports whether an investigator may still be
// assigned while the claim is in this status.
func (s ClaimStatus) AllowsInvestigator() bool {
	return s == ClaimPending || s == ClaimInReview
}

// Claim represents a row in the `claims` table.  A claim is filed
// against a policy whose coverage window contains the incident date.
// ApprovedAmountCents is set if and only if the claim is approved or
// settled; a settled claim always carries the payout payment
// reference.
//
// Fields:
//  ID                  – primary key identifier.
//  Reference           – human-readable claim number (CLM-YEAR-SEQ).
//  PolicyID            – policy the claim is filed against.
//  UserID              – policyholder who filed the claim.
//  Type                – claim type (accident, vol, incendie, ...).
//  IncidentDate        – when the incident happened.
//  IncidentLocation    – where the incident happened.
//  Description         – free-text description of the incident.
//  EstimatedCents      – claimant's damage estimate in cents.
//  ApprovedCents       – amount granted on approval (nullable).
//  Status              – adjudication state.
//  AdminNotes          – adjuster notes accumulated across transitions.
//  InvestigationNeeded – whether an investigation was opened.
//  InvestigatorID      – assigned investigator, if any.
//  PayoutPaymentID     – payout payment row created at settlement.
//  CreatedAt           – creation timestamp.
//  UpdatedAt           – last update timestamp.
type Claim struct {
	ID                  uint64      // claims.id
	Reference           string      // claims.reference
	PolicyID            uint64      // claims.policy_id
	UserID              uint64      // claims.user_id
	Type                string      // claims.type
	IncidentDate        time.Time   // claims.incident_date
	IncidentLocation    string      // claims.incident_location
	Description         string      // claims.description
	EstimatedCents      int64       // claims.estimated_cents
	ApprovedCents       *int64      // claims.approved_cents (nullable)
	Status              ClaimStatus // claims.status
	AdminNotes          *string     // claims.admin_notes (nullable)
	InvestigationNeeded bool        // claims.investigation_needed
	InvestigatorID      *uint64     // claims.investigator_id (nullable)
	PayoutPaymentID     *uint64     // claims.payout_payment_id (nullable)
	CreatedAt           time.Time   // claims.created_at
	UpdatedAt           time.Time   // claims.updated_at
}

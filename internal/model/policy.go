package model

import "time"

// PolicyStatus is the servicing state of an issued policy.
type PolicyStatus string

const (
	PolicyActive    PolicyStatus = "active"
	PolicyExpired   PolicyStatus = "expired"
	PolicySuspended PolicyStatus = "suspended"
	PolicyCancelled PolicyStatus = "cancelled"
)

// CanTransition reports whether moving from s to next is a legal policy
// transition.  A suspended policy may be reactivated once payment is
// regularised; expired and cancelled are terminal.
func (s PolicyStatus) CanTransition(next PolicyStatus) bool {
	switch s {
	case PolicyActive:
		return next == PolicyExpired || next == PolicySuspended || next == PolicyCancelled
	case PolicySuspended:
		return next == PolicyActive || next == PolicyExpired || next == PolicyCancelled
	}
	return false
}

// PaymentFrequency determines how a policy's annual premium is split
// into billing cycles.
type PaymentFrequency string

const (
	FrequencyMonthly   PaymentFrequency = "monthly"
	FrequencyQuarterly PaymentFrequency = "quarterly"
	FrequencyAnnually  PaymentFrequency = "annually"
)

// Valid reports whether the frequency is one of the supported billing
// frequencies.
func (f PaymentFrequency) Valid() bool {
	return f == FrequencyMonthly || f == FrequencyQuarterly || f == FrequencyAnnually
}

// PolicyEnd returns the end of the coverage period for a policy
// starting on the given date: one calendar year later.  Calendar
// arithmetic keeps the anniversary day covered when the term spans a
// February 29.
func PolicyEnd(start time.Time) time.Time {
	return start.AddDate(1, 0, 0)
}

// Policy represents a row in the `policies` table.  A policy is issued
// from exactly one approved quote and snapshots the quote's coverage at
// issuance time; the snapshot never changes afterwards.
//
// Fields:
//  ID                 – primary key identifier.
//  Reference          – human-readable policy number (POL-YEAR-SEQ).
//  UserID             – policyholder.
//  VehicleID          – insured vehicle.
//  QuoteID            – source quote (one-to-one).
//  VehicleType        – product line snapshot.
//  Tier               – coverage tier copied from the quote.
//  Coverage           – expanded peril snapshot (JSON column).
//  PremiumCents       – annual premium copied from the quote.
//  Status             – servicing state.
//  PaymentFrequency   – billing cycle length.
//  StartDate          – first day of coverage.
//  EndDate            – last day of coverage (start + 1 year).
//  NextPaymentDue     – due date of the next expected installment.
//  AutoRenew          – whether the policy renews automatically.
//  CreatedAt          – creation timestamp.
//  UpdatedAt          – last update timestamp.
type Policy struct {
	ID               uint64           // policies.id
	Reference        string           // policies.reference
	UserID           uint64           // policies.user_id
	VehicleID        uint64           // policies.vehicle_id
	QuoteID          uint64           // policies.quote_id
	VehicleType      VehicleType      // policies.vehicle_type
	Tier             CoverageTier     // policies.tier
	Coverage         CoverageDetails  // policies.coverage (JSON)
	PremiumCents     int64            // policies.premium_cents
	Status           PolicyStatus     // policies.status
	PaymentFrequency PaymentFrequency // policies.payment_frequency
	StartDate        time.Time        // policies.start_date
	EndDate          time.Time        // policies.end_date
	NextPaymentDue   time.Time        // policies.next_payment_due
	AutoRenew        bool             // policies.auto_renew
	CreatedAt        time.Time        // policies.created_at
	UpdatedAt        time.Time        // policies.updated_at
}

// CoversIncident reports whether a claim with the given incident date
// can be filed against this policy.  The incident must fall inside the
// coverage window, and the policy must have been active at that date:
// cancelled and suspended policies do not cover incidents, while an
// expired policy still covers incidents that happened inside its
// original window.
func (p Policy) CoversIncident(incident time.Time) bool {
	if incident.Before(p.StartDate) || incident.After(p.EndDate) {
		return false
	}
	return p.Status == PolicyActive || p.Status == PolicyExpired
}

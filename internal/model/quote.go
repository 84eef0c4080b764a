package model

import "time"

// QuoteStatus is the underwriting state of a quote.  A quote leaves
// pending exactly once; approved, rejected and expired are all
// terminal.
type QuoteStatus string

const (
	QuotePending  QuoteStatus = "pending"
	QuoteApproved QuoteStatus = "approved"
	QuoteRejected QuoteStatus = "rejected"
	QuoteExpired  QuoteStatus = "expired"
)

// Terminal reports whether no further transition is accepted from this
// status.
func (s QuoteStatus) Terminal() bool {
	return s == QuoteApproved || s == QuoteRejected || s == QuoteExpired
}

// CanTransition reports whether moving from s to next is a legal quote
// transition.  The only legal edges are pending→approved,
// pending→rejected and pending→expired.
func (s QuoteStatus) CanTransition(next QuoteStatus) bool {
	if s != QuotePending {
		return false
	}
	return next == QuoteApproved || next == QuoteRejected || next == QuoteExpired
}

// QuoteValidity is how long a freshly created quote stays open for an
// underwriting decision before the expiry sweep closes it.
const QuoteValidity = 30 * 24 * time.Hour

// Quote represents a row in the `quotes` table.  A quote snapshots the
// premium computed for a (vehicle, tier, risk inputs) triple and owns
// the underwriting state machine.  At most one policy is ever issued
// from a quote; the back-reference PolicyID records consumption.
//
// Fields:
//  ID                – primary key identifier.
//  Reference         – human-readable quote number (QUO-YEAR-SEQ).
//  UserID            – policyholder who requested the quote.
//  VehicleID         – vehicle being quoted.
//  VehicleType       – product line snapshot (car or moto).
//  Tier              – requested coverage tier.
//  BasePremiumCents  – table base premium before risk adjustment.
//  RiskFactors       – named signed adjustments applied (JSON column).
//  FinalPremiumCents – base * (1 + sum of factors), rounded to cents.
//  MonthlyPremiumCents – final / 12, rounded to cents.
//  RatingVersion     – rating configuration version used.
//  MinimumApplied    – whether the minimum-premium clamp was applied.
//  Status            – underwriting state.
//  DecisionNote      – admin comment or mandatory rejection reason.
//  ValidUntil        – deadline after which a pending quote expires.
//  PolicyID          – policy issued from this quote, if any.
//  CreatedAt         – creation timestamp.
//  UpdatedAt         – last update timestamp.
type Quote struct {
	ID                  uint64             // quotes.id
	Reference           string             // quotes.reference
	UserID              uint64             // quotes.user_id
	VehicleID           uint64             // quotes.vehicle_id
	VehicleType         VehicleType        // quotes.vehicle_type
	Tier                CoverageTier       // quotes.tier
	BasePremiumCents    int64              // quotes.base_premium_cents
	RiskFactors         map[string]float64 // quotes.risk_factors (JSON)
	FinalPremiumCents   int64              // quotes.final_premium_cents
	MonthlyPremiumCents int64              // quotes.monthly_premium_cents
	RatingVersion       string             // quotes.rating_version
	MinimumApplied      bool               // quotes.minimum_applied
	Status              QuoteStatus        // quotes.status
	DecisionNote        *string            // quotes.decision_note (nullable)
	ValidUntil          time.Time          // quotes.valid_until
	PolicyID            *uint64            // quotes.policy_id (nullable)
	CreatedAt           time.Time          // quotes.created_at
	UpdatedAt           time.Time          // quotes.updated_at
}

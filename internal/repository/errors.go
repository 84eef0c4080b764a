// Package repository implements data access for the insurance schema
// using raw parameterized SQL.  State transitions are expressed as
// conditional updates (compare-and-swap on the current status) so the
// single-writer invariants hold under concurrent requests without
// explicit locking.
//
// This file defines the sentinel error values shared across
// repositories.  Handlers translate them into HTTP responses and,
// importantly, into the retryable-or-not classification: validation
// errors mean the request itself is wrong, state-conflict errors mean
// someone else won the race and blind retries are pointless.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource owned by someone else.  Handlers translate this into 403.
var ErrForbidden = errors.New("forbidden")

// ErrIllegalTransition is returned when a conditional status update
// matches no row because the entity is no longer in the expected
// state: a decided quote, a settled claim, a payment that already
// moved on.  This is a state conflict, not a validation failure; the
// losing caller must re-read and re-evaluate, never blindly retry.
var ErrIllegalTransition = errors.New("illegal state transition")

// ErrVehicleInUse is returned when deleting a vehicle that is still
// referenced by a quote or policy.  Referenced vehicles are archived,
// never deleted.
var ErrVehicleInUse = errors.New("vehicle is referenced by a quote or policy")

// ErrQuoteNotApproved is returned by issuance when the source quote is
// not in the approved state.  Terminal: retrying cannot succeed until
// the quote itself changes.
var ErrQuoteNotApproved = errors.New("quote is not approved")

// ErrQuoteAlreadyIssued is returned by issuance when the quote's
// policy back-reference is already set.  Terminal: a quote yields at
// most one policy.
var ErrQuoteAlreadyIssued = errors.New("quote already issued")

// ErrPolicyOverlap is returned when issuing a policy for a vehicle
// that already has an active or suspended policy covering the same
// period.  A conflict, never an overwrite.
var ErrPolicyOverlap = errors.New("vehicle already has a policy for this period")

// ErrIncidentOutsideCoverage is returned when a claim's incident date
// falls outside the policy's coverage window or the policy was not
// active at that date.  Nothing is stored in that case.
var ErrIncidentOutsideCoverage = errors.New("incident not covered by policy")

// ErrDuplicateCycle is returned when a billing cycle row already
// exists for the (policy, cycle start) pair.  Safe to treat as a
// no-op: a concurrent retry simply lost a benign race.
var ErrDuplicateCycle = errors.New("billing cycle already scheduled")

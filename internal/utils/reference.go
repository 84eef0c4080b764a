package utils

import (
	"fmt"
	"time"
)

// Reference prefixes for the three numbered entities.
const (
	PrefixQuote  = "QUO"
	PrefixPolicy = "POL"
	PrefixClaim  = "CLM"
)

// FormatReference builds a human-readable entity number in the
// PREFIX-YEAR-SEQUENCE form, e.g. POL-2025-005000.  The sequence is the
// row's auto-increment id, zero-padded to six digits; uniqueness comes
// from the id, the year is purely for legibility.
func FormatReference(prefix string, at time.Time, seq uint64) string {
	return fmt.Sprintf("%s-%d-%06d", prefix, at.UTC().Year(), seq)
}

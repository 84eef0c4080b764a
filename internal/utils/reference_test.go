package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatReference(t *testing.T) {
	at := time.Date(2025, time.July, 4, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "QUO-2025-000001", FormatReference(PrefixQuote, at, 1))
	assert.Equal(t, "POL-2025-005000", FormatReference(PrefixPolicy, at, 5000))
	assert.Equal(t, "CLM-2025-123456", FormatReference(PrefixClaim, at, 123456))

	// sequences beyond six digits keep growing rather than truncating
	assert.Equal(t, "POL-2025-1234567", FormatReference(PrefixPolicy, at, 1234567))
}

func TestFormatReferenceUsesUTCYear(t *testing.T) {
	// Dec 31 23:30 in UTC+2 is already the next year locally; the
	// reference uses the UTC year.
	loc := time.FixedZone("UTC+2", 2*3600)
	at := time.Date(2026, time.January, 1, 1, 30, 0, 0, loc)
	assert.Equal(t, "QUO-2025-000010", FormatReference(PrefixQuote, at, 10))
}

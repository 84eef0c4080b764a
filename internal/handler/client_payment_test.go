package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adilbk/assurauto-backend/internal/repository"
)

var paymentCols = []string{
	"id", "policy_id", "user_id", "type", "amount_cents", "status", "method",
	"transaction_id", "gateway_response", "cycle_start", "due_date", "paid_date",
	"refund_reason", "created_at", "updated_at",
}

var policyCols = []string{
	"id", "reference", "user_id", "vehicle_id", "quote_id", "vehicle_type", "tier",
	"coverage", "premium_cents", "status", "payment_frequency", "start_date",
	"end_date", "next_payment_due", "auto_renew", "created_at", "updated_at",
}

func paymentRow(status string, cycleStart, dueDate, now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(paymentCols).AddRow(
		int64(11), int64(3), int64(9), "premium", int64(26_250), status, "card",
		nil, nil, cycleStart, dueDate, nil, nil, now, now)
}

func policyRow(start, end, nextDue, now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(policyCols).AddRow(
		int64(3), "POL-2025-000003", int64(9), int64(4), int64(5), "car", "standard",
		[]byte(`{}`), int64(315_000), "active", "monthly", start, end, nextDue,
		true, now, now)
}

// A failed verdict must not stall the billing calendar: the successor
// cycle is still scheduled inside the transaction, and a miss streak at
// the threshold triggers the at-risk check.
func TestRecordFailedOutcomeAdvancesCalendar(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, time.June, 2, 12, 0, 0, 0, time.UTC)
	start := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	cycleStart := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
	dueDate := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM payments WHERE id").
		WillReturnRows(paymentRow("overdue", cycleStart, dueDate, now))
	mock.ExpectExec("UPDATE payments SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM policies WHERE id").
		WillReturnRows(policyRow(start, end, dueDate, now))
	mock.ExpectExec("INSERT INTO payments").
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectExec("UPDATE policies SET next_payment_due").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// streak check after the failed verdict
	statuses := sqlmock.NewRows([]string{"status"}).
		AddRow("pending").AddRow("failed").AddRow("overdue").AddRow("failed")
	mock.ExpectQuery("SELECT status FROM payments").
		WillReturnRows(statuses)

	mock.ExpectQuery("FROM payments WHERE id").
		WillReturnRows(paymentRow("failed", cycleStart, dueDate, now))

	h := NewPaymentHandler(db, repository.NewPaymentRepo(db), repository.NewPolicyRepo(db))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/",
		strings.NewReader(`{"success":false,"transaction_id":"txn-1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("11")
	c.Set("user_id", uint64(9))

	require.NoError(t, h.Record(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStartOfDayUTC(t *testing.T) {
	// a non-UTC instant maps onto its UTC calendar day, not a 24h multiple
	at := time.Date(2026, time.March, 5, 17, 30, 0, 0, time.FixedZone("UTC+5", 5*3600))
	got := startOfDayUTC(at)
	assert.Equal(t, time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC), got)

	// an instant before UTC midnight in local terms still lands on its UTC day
	late := time.Date(2026, time.March, 5, 22, 0, 0, 0, time.FixedZone("UTC-5", -5*3600))
	assert.Equal(t, time.Date(2026, time.March, 6, 0, 0, 0, 0, time.UTC), startOfDayUTC(late))
}

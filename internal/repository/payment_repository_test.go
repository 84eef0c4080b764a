package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adilbk/assurauto-backend/internal/model"
)

func missRows(statuses ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"status"})
	for _, s := range statuses {
		rows.AddRow(s)
	}
	return rows
}

// The streak counts every failed or overdue cycle back from the newest,
// looks past unresolved pending ones and stops at the last paid one, so
// three missed cycles in a row reach the at-risk threshold.
func TestConsecutiveMissesReachesThreshold(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPaymentRepo(db)

	mock.ExpectQuery("SELECT status FROM payments").
		WithArgs(uint64(9)).
		WillReturnRows(missRows("pending", "overdue", "failed", "overdue", "paid", "failed"))

	misses, err := repo.ConsecutiveMisses(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, 3, misses)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsecutiveMissesBrokenByPayment(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPaymentRepo(db)

	mock.ExpectQuery("SELECT status FROM payments").
		WithArgs(uint64(9)).
		WillReturnRows(missRows("pending", "paid", "failed", "overdue"))

	misses, err := repo.ConsecutiveMisses(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, 0, misses)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A concurrent scheduling race collapses into ErrDuplicateCycle, which
// callers treat as already scheduled.
func TestCreateCycleDuplicateIsSentinel(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPaymentRepo(db)

	mock.ExpectExec("INSERT INTO payments").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	day := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
	p := model.Payment{
		PolicyID:    3,
		UserID:      9,
		AmountCents: 26_250,
		Method:      "card",
		CycleStart:  day,
		DueDate:     day.AddDate(0, 1, 0),
	}
	assert.ErrorIs(t, repo.CreateCycle(context.Background(), &p), ErrDuplicateCycle)
	assert.NoError(t, mock.ExpectationsWereMet())
}

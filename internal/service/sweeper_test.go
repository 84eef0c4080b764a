package service

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adilbk/assurauto-backend/internal/model"
	"github.com/adilbk/assurauto-backend/internal/repository"
)

func sweptFixture(freq model.PaymentFrequency, cycleStart time.Time) (model.Payment, model.Policy) {
	start := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	payment := model.Payment{
		ID:          11,
		PolicyID:    3,
		UserID:      9,
		AmountCents: 26_250,
		Method:      "card",
		CycleStart:  cycleStart,
		DueDate:     cycleStart.AddDate(0, 1, 0),
	}
	policy := model.Policy{
		ID:               3,
		UserID:           9,
		Status:           model.PolicyActive,
		PaymentFrequency: freq,
		StartDate:        start,
		EndDate:          start.AddDate(1, 0, 0),
	}
	return payment, policy
}

// An overdue cycle gets its successor scheduled so an unresponsive
// policyholder still accrues one miss per elapsed cycle.
func TestScheduleSuccessorOnOverdueCycle(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := NewSweeper(nil, repository.NewPolicyRepo(db), repository.NewPaymentRepo(db), time.Hour)

	mock.ExpectExec("INSERT INTO payments").
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectExec("UPDATE policies SET next_payment_due").
		WillReturnResult(sqlmock.NewResult(0, 1))

	payment, policy := sweptFixture(model.FrequencyMonthly,
		time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC))
	s.scheduleSuccessor(context.Background(), payment, policy)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleSuccessorStopsAtTermEnd(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := NewSweeper(nil, repository.NewPolicyRepo(db), repository.NewPaymentRepo(db), time.Hour)

	// final cycle of the coverage year: nothing scheduled
	payment, policy := sweptFixture(model.FrequencyMonthly,
		time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC))
	s.scheduleSuccessor(context.Background(), payment, policy)

	// annual policies have no successor either
	payment, policy = sweptFixture(model.FrequencyAnnually,
		time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC))
	s.scheduleSuccessor(context.Background(), payment, policy)

	assert.NoError(t, mock.ExpectationsWereMet())
}

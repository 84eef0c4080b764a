package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A quote's policy back-reference is consumed by a conditional update;
// zero matched rows are disambiguated by re-reading the row under the
// same lock.
func TestMarkIssuedConsumesQuoteOnce(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewQuoteRepo(db)
	ctx := context.Background()

	// first issuance wins the conditional update
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE quotes SET policy_id").
		WithArgs(uint64(77), uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	assert.NoError(t, repo.MarkIssuedTx(ctx, tx, 5, 77))
	_ = tx.Rollback()

	// second issuance matches nothing; the back-reference is set
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE quotes SET policy_id").
		WithArgs(uint64(78), uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT status, policy_id FROM quotes").
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "policy_id"}).
			AddRow("approved", int64(77)))
	mock.ExpectRollback()

	tx, err = db.Begin()
	require.NoError(t, err)
	assert.ErrorIs(t, repo.MarkIssuedTx(ctx, tx, 5, 78), ErrQuoteAlreadyIssued)
	_ = tx.Rollback()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkIssuedRejectsUnapprovedQuote(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewQuoteRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE quotes SET policy_id").
		WithArgs(uint64(77), uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT status, policy_id FROM quotes").
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "policy_id"}).
			AddRow("pending", nil))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	assert.ErrorIs(t, repo.MarkIssuedTx(context.Background(), tx, 5, 77), ErrQuoteNotApproved)
	_ = tx.Rollback()

	assert.NoError(t, mock.ExpectationsWereMet())
}

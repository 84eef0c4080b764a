package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/adilbk/assurauto-backend/internal/model"
	"github.com/adilbk/assurauto-backend/internal/utils"
)

// QuoteRepo provides access to the quotes table and owns the
// underwriting state machine at the persistence level.  Every
// transition is a conditional update on the current status, so two
// concurrent decisions on the same quote cannot both succeed.
type QuoteRepo struct{ DB *sql.DB }

func NewQuoteRepo(db *sql.DB) *QuoteRepo { return &QuoteRepo{DB: db} }

const quoteColumns = `id, reference, user_id, vehicle_id, vehicle_type, tier,
	base_premium_cents, risk_factors, final_premium_cents, monthly_premium_cents,
	rating_version, minimum_applied, status, decision_note, valid_until, policy_id,
	created_at, updated_at`

// Create inserts a pending quote and assigns its reference number from
// the generated id, all within one transaction.  The passed struct is
// populated with id, reference and timestamps.
func (r *QuoteRepo) Create(ctx context.Context, q *model.Quote) error {
	factors, err := json.Marshal(q.RiskFactors)
	if err != nil {
		return err
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO quotes (reference, user_id, vehicle_id, vehicle_type, tier,
		 base_premium_cents, risk_factors, final_premium_cents, monthly_premium_cents,
		 rating_version, minimum_applied, status, valid_until)
		 VALUES ('', ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'pending', ?)`,
		q.UserID, q.VehicleID, q.VehicleType, q.Tier,
		q.BasePremiumCents, factors, q.FinalPremiumCents, q.MonthlyPremiumCents,
		q.RatingVersion, q.MinimumApplied, q.ValidUntil.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	q.ID = uint64(id)
	q.Reference = utils.FormatReference(utils.PrefixQuote, time.Now(), q.ID)
	q.Status = model.QuotePending
	if _, err := tx.ExecContext(ctx,
		`UPDATE quotes SET reference = ? WHERE id = ?`, q.Reference, q.ID); err != nil {
		return err
	}
	if err := tx.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM quotes WHERE id = ?`, q.ID).
		Scan(&q.CreatedAt, &q.UpdatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID returns a quote without ownership checks, for admin use.
func (r *QuoteRepo) GetByID(ctx context.Context, quoteID uint64) (model.Quote, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = ?`, quoteID)
	return scanQuote(row)
}

// GetByIDForUser returns a quote when it belongs to the given user;
// one owned by someone else yields ErrForbidden.
func (r *QuoteRepo) GetByIDForUser(ctx context.Context, quoteID, userID uint64) (model.Quote, error) {
	q, err := r.GetByID(ctx, quoteID)
	if err != nil {
		return model.Quote{}, err
	}
	if q.UserID != userID {
		return model.Quote{}, ErrForbidden
	}
	return q, nil
}

// ListByUser returns a user's quotes, newest first.
func (r *QuoteRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Quote, error) {
	return r.list(ctx, `WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

// ListPending returns the underwriting queue, oldest first so the
// longest-waiting clients are decided first.
func (r *QuoteRepo) ListPending(ctx context.Context) ([]model.Quote, error) {
	return r.list(ctx, `WHERE status = 'pending' ORDER BY created_at ASC`)
}

func (r *QuoteRepo) list(ctx context.Context, tail string, args ...interface{}) ([]model.Quote, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+quoteColumns+` FROM quotes `+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Quote, 0)
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// Decide moves a pending quote to approved or rejected.  The update is
// conditional on status still being pending: when zero rows match, the
// quote either does not exist (sql.ErrNoRows) or has already left
// pending (ErrIllegalTransition).  Exactly one of two concurrent
// decisions can ever succeed.
func (r *QuoteRepo) Decide(ctx context.Context, quoteID uint64, next model.QuoteStatus, note *string) (model.Quote, error) {
	if !model.QuotePending.CanTransition(next) || next == model.QuoteExpired {
		return model.Quote{}, ErrIllegalTransition
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE quotes SET status = ?, decision_note = ?, updated_at = NOW() WHERE id = ? AND status = 'pending'`,
		next, note, quoteID)
	if err != nil {
		return model.Quote{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Quote{}, err
	}
	if n == 0 {
		// lost the race or wrong id; look at the row to tell which
		if _, err := r.GetByID(ctx, quoteID); err != nil {
			return model.Quote{}, err
		}
		return model.Quote{}, ErrIllegalTransition
	}
	return r.GetByID(ctx, quoteID)
}

// ExpireStale transitions every pending quote whose validity deadline
// has passed to expired and returns their ids for notification.  The
// sweep is idempotent: a second run over the same instant matches
// nothing.
func (r *QuoteRepo) ExpireStale(ctx context.Context, now time.Time) ([]uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM quotes WHERE status = 'pending' AND valid_until < ? FOR UPDATE`, now.UTC())
	if err != nil {
		return nil, err
	}
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		committed = true
		return []uint64{}, tx.Commit()
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE quotes SET status = 'expired', updated_at = NOW() WHERE status = 'pending' AND valid_until < ?`,
		now.UTC()); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return ids, nil
}

// GetForIssuanceTx loads a quote with a row lock inside the issuance
// transaction.
func (r *QuoteRepo) GetForIssuanceTx(ctx context.Context, tx *sql.Tx, quoteID uint64) (model.Quote, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = ? FOR UPDATE`, quoteID)
	return scanQuote(row)
}

// MarkIssuedTx sets the quote's policy back-reference, conditional on
// the quote being approved and not yet consumed.  When zero rows
// match, the row is inspected to report the precise terminal error:
// ErrQuoteAlreadyIssued when the back-reference is set,
// ErrQuoteNotApproved otherwise.
func (r *QuoteRepo) MarkIssuedTx(ctx context.Context, tx *sql.Tx, quoteID, policyID uint64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE quotes SET policy_id = ?, updated_at = NOW()
		 WHERE id = ? AND status = 'approved' AND policy_id IS NULL`,
		policyID, quoteID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	var status model.QuoteStatus
	var existing sql.NullInt64
	if err := tx.QueryRowContext(ctx,
		`SELECT status, policy_id FROM quotes WHERE id = ?`, quoteID).
		Scan(&status, &existing); err != nil {
		return err
	}
	if existing.Valid {
		return ErrQuoteAlreadyIssued
	}
	return ErrQuoteNotApproved
}

// scannable covers both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...interface{}) error
}

func scanQuote(row scannable) (model.Quote, error) {
	var (
		q        model.Quote
		factors  []byte
		note     sql.NullString
		policyID sql.NullInt64
	)
	err := row.Scan(
		&q.ID, &q.Reference, &q.UserID, &q.VehicleID, &q.VehicleType, &q.Tier,
		&q.BasePremiumCents, &factors, &q.FinalPremiumCents, &q.MonthlyPremiumCents,
		&q.RatingVersion, &q.MinimumApplied, &q.Status, &note, &q.ValidUntil, &policyID,
		&q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return model.Quote{}, err
	}
	if len(factors) > 0 {
		if err := json.Unmarshal(factors, &q.RiskFactors); err != nil {
			return model.Quote{}, err
		}
	}
	if note.Valid {
		s := note.String
		q.DecisionNote = &s
	}
	if policyID.Valid {
		id := uint64(policyID.Int64)
		q.PolicyID = &id
	}
	return q, nil
}

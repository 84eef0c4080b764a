package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/adilbk/assurauto-backend/internal/model"
	"github.com/adilbk/assurauto-backend/internal/utils"
)

// PolicyRepo provides access to the policies table.  Policies are only
// created through CreateTx inside the issuance transaction, so a
// policy row can never exist without its first billing cycle.
type PolicyRepo struct{ DB *sql.DB }

func NewPolicyRepo(db *sql.DB) *PolicyRepo { return &PolicyRepo{DB: db} }

const policyColumns = `id, reference, user_id, vehicle_id, quote_id, vehicle_type, tier,
	coverage, premium_cents, status, payment_frequency, start_date, end_date,
	next_payment_due, auto_renew, created_at, updated_at`

// CreateTx inserts an active policy within the issuance transaction.
// It first checks that the vehicle has no other live (active or
// suspended) policy overlapping the new coverage period and returns
// ErrPolicyOverlap when it does.  The passed struct is populated with
// id and reference.
func (r *PolicyRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Policy) error {
	var overlapping int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM policies
		 WHERE vehicle_id = ? AND status IN ('active', 'suspended')
		   AND start_date <= ? AND end_date >= ?
		 FOR UPDATE`,
		p.VehicleID, p.EndDate.UTC(), p.StartDate.UTC()).Scan(&overlapping)
	if err != nil {
		return err
	}
	if overlapping > 0 {
		return ErrPolicyOverlap
	}

	coverage, err := json.Marshal(p.Coverage)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO policies (reference, user_id, vehicle_id, quote_id, vehicle_type, tier,
		 coverage, premium_cents, status, payment_frequency, start_date, end_date,
		 next_payment_due, auto_renew)
		 VALUES ('', ?, ?, ?, ?, ?, ?, ?, 'active', ?, ?, ?, ?, ?)`,
		p.UserID, p.VehicleID, p.QuoteID, p.VehicleType, p.Tier,
		coverage, p.PremiumCents, p.PaymentFrequency,
		p.StartDate.UTC(), p.EndDate.UTC(), p.NextPaymentDue.UTC(), p.AutoRenew)
	if err != nil {
		if isDuplicate(err) {
			// unique key on quote_id: the quote was consumed concurrently
			return ErrQuoteAlreadyIssued
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	p.Reference = utils.FormatReference(utils.PrefixPolicy, time.Now(), p.ID)
	p.Status = model.PolicyActive
	_, err = tx.ExecContext(ctx, `UPDATE policies SET reference = ? WHERE id = ?`, p.Reference, p.ID)
	return err
}

// GetByID returns a policy without ownership checks, for admin use.
func (r *PolicyRepo) GetByID(ctx context.Context, policyID uint64) (model.Policy, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+policyColumns+` FROM policies WHERE id = ?`, policyID)
	return scanPolicy(row)
}

// GetByIDForUser returns a policy when it belongs to the given user;
// one owned by someone else yields ErrForbidden.
func (r *PolicyRepo) GetByIDForUser(ctx context.Context, policyID, userID uint64) (model.Policy, error) {
	p, err := r.GetByID(ctx, policyID)
	if err != nil {
		return model.Policy{}, err
	}
	if p.UserID != userID {
		return model.Policy{}, ErrForbidden
	}
	return p, nil
}

// GetTx loads a policy with a row lock inside a transaction.
func (r *PolicyRepo) GetTx(ctx context.Context, tx *sql.Tx, policyID uint64) (model.Policy, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+policyColumns+` FROM policies WHERE id = ? FOR UPDATE`, policyID)
	return scanPolicy(row)
}

// ListByUser returns a user's policies, newest first.
func (r *PolicyRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Policy, error) {
	return r.list(ctx, `WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

// ListByStatus returns all policies in the given status for the back
// office, oldest first.
func (r *PolicyRepo) ListByStatus(ctx context.Context, status model.PolicyStatus) ([]model.Policy, error) {
	return r.list(ctx, `WHERE status = ? ORDER BY created_at ASC`, status)
}

func (r *PolicyRepo) list(ctx context.Context, tail string, args ...interface{}) ([]model.Policy, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+policyColumns+` FROM policies `+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Policy, 0)
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateStatus moves a policy from one status to another with a
// conditional update.  The transition is validated against the model
// table first; a zero-row update means the policy either does not
// exist or left the expected state concurrently.
func (r *PolicyRepo) UpdateStatus(ctx context.Context, policyID uint64, from, to model.PolicyStatus) error {
	if !from.CanTransition(to) {
		return ErrIllegalTransition
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE policies SET status = ?, updated_at = NOW() WHERE id = ? AND status = ?`,
		to, policyID, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, policyID); err != nil {
			return err
		}
		return ErrIllegalTransition
	}
	return nil
}

// SetNextPaymentDueTx records the due date of the next expected
// installment after a cycle is scheduled.
func (r *PolicyRepo) SetNextPaymentDueTx(ctx context.Context, tx *sql.Tx, policyID uint64, due time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE policies SET next_payment_due = ?, updated_at = NOW() WHERE id = ?`,
		due.UTC(), policyID)
	return err
}

// SetNextPaymentDue is SetNextPaymentDueTx without a caller
// transaction, for the overdue sweep.
func (r *PolicyRepo) SetNextPaymentDue(ctx context.Context, policyID uint64, due time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE policies SET next_payment_due = ?, updated_at = NOW() WHERE id = ?`,
		due.UTC(), policyID)
	return err
}

// ExpireEnded transitions every live policy whose end date has passed
// to expired and returns their ids.  Idempotent.
func (r *PolicyRepo) ExpireEnded(ctx context.Context, now time.Time) ([]uint64, error) {
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
		`SELECT id FROM policies WHERE status IN ('active', 'suspended') AND end_date < ? FOR UPDATE`,
		now.UTC())
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
		`UPDATE policies SET status = 'expired', updated_at = NOW()
		 WHERE status IN ('active', 'suspended') AND end_date < ?`,
		now.UTC()); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return ids, nil
}

func scanPolicy(row scannable) (model.Policy, error) {
	var (
		p        model.Policy
		coverage []byte
	)
	err := row.Scan(
		&p.ID, &p.Reference, &p.UserID, &p.VehicleID, &p.QuoteID, &p.VehicleType, &p.Tier,
		&coverage, &p.PremiumCents, &p.Status, &p.PaymentFrequency, &p.StartDate, &p.EndDate,
		&p.NextPaymentDue, &p.AutoRenew, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Policy{}, err
	}
	if len(coverage) > 0 {
		if err := json.Unmarshal(coverage, &p.Coverage); err != nil {
			return model.Policy{}, err
		}
	}
	return p, nil
}

package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/adilbk/assurauto-backend/internal/model"
)

// PaymentRepo provides access to the payments table.  Premium rows are
// unique per (policy, cycle start), enforced by a database constraint,
// so concurrent scheduling retries collapse into one row.  The repo
// never touches policies.status; three missed cycles only produce a
// signal for the caller.
type PaymentRepo struct{ DB *sql.DB }

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{DB: db} }

const paymentColumns = `id, policy_id, user_id, type, amount_cents, status, method,
	transaction_id, gateway_response, cycle_start, due_date, paid_date, refund_reason,
	created_at, updated_at`

// CreateCycleTx inserts the next pending premium installment inside an
// existing transaction.  A duplicate (policy, cycle start) insert
// returns ErrDuplicateCycle; callers treat it as "already scheduled"
// and move on.
func (r *PaymentRepo) CreateCycleTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	return r.createCycle(ctx, tx, p)
}

// CreateCycle is CreateCycleTx without a caller transaction, for the
// overdue sweep.  Same duplicate semantics.
func (r *PaymentRepo) CreateCycle(ctx context.Context, p *model.Payment) error {
	return r.createCycle(ctx, r.DB, p)
}

// execer covers both *sql.DB and *sql.Tx for shared write paths.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (r *PaymentRepo) createCycle(ctx context.Context, ex execer, p *model.Payment) error {
	res, err := ex.ExecContext(ctx,
		`INSERT INTO payments (policy_id, user_id, type, amount_cents, status, method, cycle_start, due_date)
		 VALUES (?, ?, 'premium', ?, 'pending', ?, ?, ?)`,
		p.PolicyID, p.UserID, p.AmountCents, p.Method, p.CycleStart.UTC(), p.DueDate.UTC())
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicateCycle
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	p.Type = model.PaymentTypePremium
	p.Status = model.PaymentPending
	return nil
}

// CreatePayoutTx inserts a settled claim payout row inside the
// settlement transaction.  Payouts are created already paid; they are
// money leaving the insurer, not an installment to collect.
func (r *PaymentRepo) CreatePayoutTx(ctx context.Context, tx *sql.Tx, p *model.Payment, paidAt time.Time) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO payments (policy_id, user_id, type, amount_cents, status, method, cycle_start, due_date, paid_date)
		 VALUES (?, ?, 'claim_payout', ?, 'paid', ?, ?, ?, ?)`,
		p.PolicyID, p.UserID, p.AmountCents, p.Method,
		paidAt.UTC(), paidAt.UTC(), paidAt.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	p.Type = model.PaymentTypeClaimPayout
	p.Status = model.PaymentPaid
	return nil
}

// GetByID returns a payment without ownership checks.
func (r *PaymentRepo) GetByID(ctx context.Context, paymentID uint64) (model.Payment, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = ?`, paymentID)
	return scanPayment(row)
}

// GetTx loads a payment with a row lock inside a transaction.
func (r *PaymentRepo) GetTx(ctx context.Context, tx *sql.Tx, paymentID uint64) (model.Payment, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = ? FOR UPDATE`, paymentID)
	return scanPayment(row)
}

// ListByPolicy returns all payments of a policy, oldest first, so the
// installment history reads chronologically.
func (r *PaymentRepo) ListByPolicy(ctx context.Context, policyID uint64) ([]model.Payment, error) {
	return r.list(ctx, `WHERE policy_id = ? ORDER BY due_date ASC, id ASC`, policyID)
}

// ListByUser returns all payments of a user, newest first.
func (r *PaymentRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Payment, error) {
	return r.list(ctx, `WHERE user_id = ? ORDER BY due_date DESC, id DESC`, userID)
}

func (r *PaymentRepo) list(ctx context.Context, tail string, args ...interface{}) ([]model.Payment, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+paymentColumns+` FROM payments `+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// RecordOutcomeTx moves a pending or overdue installment to paid or
// failed with a conditional update, stamping the paid date and storing
// the gateway response verbatim.  Zero rows matched means the payment
// already moved on (ErrIllegalTransition) or does not exist.
func (r *PaymentRepo) RecordOutcomeTx(ctx context.Context, tx *sql.Tx, paymentID uint64, to model.PaymentStatus, txnID *string, gatewayResponse *string, now time.Time) error {
	if to != model.PaymentPaid && to != model.PaymentFailed {
		return ErrIllegalTransition
	}
	var paidDate interface{}
	if to == model.PaymentPaid {
		paidDate = now.UTC()
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE payments SET status = ?, transaction_id = ?, gateway_response = ?, paid_date = ?, updated_at = NOW()
		 WHERE id = ? AND status IN ('pending', 'overdue')`,
		to, txnID, gatewayResponse, paidDate, paymentID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetTx(ctx, tx, paymentID); err != nil {
			return err
		}
		return ErrIllegalTransition
	}
	return nil
}

// Refund moves a paid payment to refunded.  Refunds are manual and
// explicitly reasoned; the reason is mandatory and the transition is
// final.
func (r *PaymentRepo) Refund(ctx context.Context, paymentID uint64, reason string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE payments SET status = 'refunded', refund_reason = ?, updated_at = NOW()
		 WHERE id = ? AND status = 'paid'`,
		reason, paymentID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, paymentID); err != nil {
			return err
		}
		return ErrIllegalTransition
	}
	return nil
}

// OverduePayment pairs a swept payment with its policy for the at-risk
// follow-up.
type OverduePayment struct {
	PaymentID uint64
	PolicyID  uint64
}

// MarkOverdue transitions every pending installment whose due date has
// passed to overdue and returns the affected (payment, policy) pairs.
// Idempotent: rows already overdue never match again.
func (r *PaymentRepo) MarkOverdue(ctx context.Context, now time.Time) ([]OverduePayment, error) {
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
		`SELECT id, policy_id FROM payments WHERE status = 'pending' AND due_date < ? FOR UPDATE`,
		now.UTC())
	if err != nil {
		return nil, err
	}
	var swept []OverduePayment
	for rows.Next() {
		var o OverduePayment
		if err := rows.Scan(&o.PaymentID, &o.PolicyID); err != nil {
			rows.Close()
			return nil, err
		}
		swept = append(swept, o)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if len(swept) == 0 {
		committed = true
		return []OverduePayment{}, tx.Commit()
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE payments SET status = 'overdue', updated_at = NOW() WHERE status = 'pending' AND due_date < ?`,
		now.UTC()); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return swept, nil
}

// ConsecutiveMisses counts how many of the policy's most recent
// resolved premium cycles failed or went overdue, stopping at the
// first paid one.  Cycles still pending do not break the streak.
func (r *PaymentRepo) ConsecutiveMisses(ctx context.Context, policyID uint64) (int, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT status FROM payments
		 WHERE policy_id = ? AND type = 'premium'
		 ORDER BY due_date DESC, id DESC LIMIT 24`,
		policyID)
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	misses := 0
	for rows.Next() {
		var status model.PaymentStatus
		if err := rows.Scan(&status); err != nil {
			return 0, err
		}
		switch status {
		case model.PaymentFailed, model.PaymentOverdue:
			misses++
		case model.PaymentPending:
			// unresolved cycle, keep looking back
		default:
			return misses, rows.Err()
		}
	}
	return misses, rows.Err()
}

// Overpayment reports a policy whose collected premium for the
// coverage year exceeds its annual premium.  Reconciliation reports
// these; nothing ever auto-corrects money figures.
type Overpayment struct {
	PolicyID     uint64 `json:"policy_id"`
	Reference    string `json:"reference"`
	PremiumCents int64  `json:"premium_cents"`
	PaidCents    int64  `json:"paid_cents"`
}

// Overpayments returns every policy whose non-refunded paid premium
// total inside the coverage window exceeds the annual premium.
func (r *PaymentRepo) Overpayments(ctx context.Context) ([]Overpayment, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT p.id, p.reference, p.premium_cents, SUM(pay.amount_cents)
		 FROM policies p
		 JOIN payments pay ON pay.policy_id = p.id
		 WHERE pay.type = 'premium' AND pay.status = 'paid'
		   AND pay.cycle_start >= p.start_date AND pay.cycle_start <= p.end_date
		 GROUP BY p.id, p.reference, p.premium_cents
		 HAVING SUM(pay.amount_cents) > p.premium_cents`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Overpayment, 0)
	for rows.Next() {
		var o Overpayment
		if err := rows.Scan(&o.PolicyID, &o.Reference, &o.PremiumCents, &o.PaidCents); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanPayment(row scannable) (model.Payment, error) {
	var (
		p        model.Payment
		txnID    sql.NullString
		gateway  sql.NullString
		paidDate sql.NullTime
		reason   sql.NullString
	)
	err := row.Scan(
		&p.ID, &p.PolicyID, &p.UserID, &p.Type, &p.AmountCents, &p.Status, &p.Method,
		&txnID, &gateway, &p.CycleStart, &p.DueDate, &paidDate, &reason,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Payment{}, err
	}
	if txnID.Valid {
		s := txnID.String
		p.TransactionID = &s
	}
	if gateway.Valid {
		s := gateway.String
		p.GatewayResponse = &s
	}
	if paidDate.Valid {
		t := paidDate.Time
		p.PaidDate = &t
	}
	if reason.Valid {
		s := reason.String
		p.RefundReason = &s
	}
	return p, nil
}

package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/adilbk/assurauto-backend/internal/model"
	"github.com/adilbk/assurauto-backend/internal/utils"
)

// ClaimRepo provides access to the claims table.  Every status change
// is a conditional update keyed on the current status, so two admins
// racing on the same claim cannot both win.
type ClaimRepo struct{ DB *sql.DB }

func NewClaimRepo(db *sql.DB) *ClaimRepo { return &ClaimRepo{DB: db} }

const claimColumns = `id, reference, policy_id, user_id, type, incident_date, incident_location,
	description, estimated_cents, approved_cents, status, admin_notes,
	investigation_needed, investigator_id, payout_payment_id, created_at, updated_at`

// Create files a new pending claim and assigns its reference from the
// generated id.  Coverage-window validation happens in the handler
// before this is called; the repo only persists.
func (r *ClaimRepo) Create(ctx context.Context, c *model.Claim) error {
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
		`INSERT INTO claims (policy_id, user_id, type, incident_date, incident_location, description, estimated_cents, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 'pending')`,
		c.PolicyID, c.UserID, c.Type, c.IncidentDate.UTC(), c.IncidentLocation, c.Description, c.EstimatedCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	c.Reference = utils.FormatReference(utils.PrefixClaim, time.Now(), c.ID)
	if _, err := tx.ExecContext(ctx,
		`UPDATE claims SET reference = ? WHERE id = ?`, c.Reference, c.ID); err != nil {
		return err
	}
	if err := tx.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM claims WHERE id = ?`, c.ID).
		Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	c.Status = model.ClaimPending
	return nil
}

// GetByID returns a claim without ownership checks.
func (r *ClaimRepo) GetByID(ctx context.Context, claimID uint64) (model.Claim, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+claimColumns+` FROM claims WHERE id = ?`, claimID)
	return scanClaim(row)
}

// GetByIDForUser returns a claim only if it belongs to the given user.
// A claim that exists but belongs to someone else yields ErrForbidden.
func (r *ClaimRepo) GetByIDForUser(ctx context.Context, claimID, userID uint64) (model.Claim, error) {
	c, err := r.GetByID(ctx, claimID)
	if err != nil {
		return model.Claim{}, err
	}
	if c.UserID != userID {
		return model.Claim{}, ErrForbidden
	}
	return c, nil
}

// ListByUser returns all claims filed by a user, newest first.
func (r *ClaimRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Claim, error) {
	return r.list(ctx, `WHERE user_id = ? ORDER BY id DESC`, userID)
}

// ListByStatus returns all claims in a given status, oldest first, so
// the adjudication queue is worked in filing order.
func (r *ClaimRepo) ListByStatus(ctx context.Context, status model.ClaimStatus) ([]model.Claim, error) {
	return r.list(ctx, `WHERE status = ? ORDER BY id ASC`, status)
}

func (r *ClaimRepo) list(ctx context.Context, tail string, args ...interface{}) ([]model.Claim, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+claimColumns+` FROM claims `+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Claim, 0)
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// StartReview moves a pending claim to in_review, appending the
// reviewer's note if present.
func (r *ClaimRepo) StartReview(ctx context.Context, claimID uint64, note *string) error {
	return r.advance(ctx, claimID,
		`UPDATE claims SET status = 'in_review', admin_notes = COALESCE(?, admin_notes), updated_at = NOW()
		 WHERE id = ? AND status = 'pending'`,
		note, claimID)
}

// Approve grants an amount on a claim under review.  The handler
// enforces that a grant above the estimate carries a justification
// note; here the conditional update only guards the state machine.
func (r *ClaimRepo) Approve(ctx context.Context, claimID uint64, approvedCents int64, note *string) error {
	return r.advance(ctx, claimID,
		`UPDATE claims SET status = 'approved', approved_cents = ?, admin_notes = COALESCE(?, admin_notes), updated_at = NOW()
		 WHERE id = ? AND status = 'in_review'`,
		approvedCents, note, claimID)
}

// Reject closes a claim under review with a mandatory reason.
func (r *ClaimRepo) Reject(ctx context.Context, claimID uint64, reason string) error {
	return r.advance(ctx, claimID,
		`UPDATE claims SET status = 'rejected', admin_notes = ?, updated_at = NOW()
		 WHERE id = ? AND status = 'in_review'`,
		reason, claimID)
}

// AssignInvestigator attaches an investigator while the claim is still
// open for investigation (pending or in_review).
func (r *ClaimRepo) AssignInvestigator(ctx context.Context, claimID, investigatorID uint64) error {
	return r.advance(ctx, claimID,
		`UPDATE claims SET investigation_needed = 1, investigator_id = ?, updated_at = NOW()
		 WHERE id = ? AND status IN ('pending', 'in_review')`,
		investigatorID, claimID)
}

// SettleTx finalizes an approved claim inside the settlement
// transaction, linking the payout payment row created in the same
// transaction.  A settled claim always knows which payment paid it.
func (r *ClaimRepo) SettleTx(ctx context.Context, tx *sql.Tx, claimID, payoutPaymentID uint64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE claims SET status = 'settled', payout_payment_id = ?, updated_at = NOW()
		 WHERE id = ? AND status = 'approved'`,
		payoutPaymentID, claimID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		row := tx.QueryRowContext(ctx, `SELECT `+claimColumns+` FROM claims WHERE id = ?`, claimID)
		if _, err := scanClaim(row); err != nil {
			return err
		}
		return ErrIllegalTransition
	}
	return nil
}

// advance runs a conditional update and translates "zero rows matched"
// into ErrIllegalTransition, or sql.ErrNoRows when the claim does not
// exist at all.
func (r *ClaimRepo) advance(ctx context.Context, claimID uint64, query string, args ...interface{}) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, claimID); err != nil {
			return err
		}
		return ErrIllegalTransition
	}
	return nil
}

func scanClaim(row scannable) (model.Claim, error) {
	var (
		c            model.Claim
		approved     sql.NullInt64
		notes        sql.NullString
		investigator sql.NullInt64
		payout       sql.NullInt64
	)
	err := row.Scan(
		&c.ID, &c.Reference, &c.PolicyID, &c.UserID, &c.Type, &c.IncidentDate, &c.IncidentLocation,
		&c.Description, &c.EstimatedCents, &approved, &c.Status, &notes,
		&c.InvestigationNeeded, &investigator, &payout, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return model.Claim{}, err
	}
	if approved.Valid {
		v := approved.Int64
		c.ApprovedCents = &v
	}
	if notes.Valid {
		s := notes.String
		c.AdminNotes = &s
	}
	if investigator.Valid {
		v := uint64(investigator.Int64)
		c.InvestigatorID = &v
	}
	if payout.Valid {
		v := uint64(payout.Int64)
		c.PayoutPaymentID = &v
	}
	return c, nil
}

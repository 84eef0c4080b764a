package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adilbk/assurauto-backend/internal/model"
	q "github.com/adilbk/assurauto-backend/internal/queue"
	"github.com/adilbk/assurauto-backend/internal/repository"
	"github.com/adilbk/assurauto-backend/internal/service"
)

// AdminClaimHandler is the adjudication back office: review queue,
// approve/reject decisions, investigator assignment and settlement.
type AdminClaimHandler struct {
	DB       *sql.DB
	Claims   *repository.ClaimRepo
	Payments *repository.PaymentRepo
	Policies *repository.PolicyRepo
}

func NewAdminClaimHandler(db *sql.DB, claims *repository.ClaimRepo, payments *repository.PaymentRepo, policies *repository.PolicyRepo) *AdminClaimHandler {
	if db == nil || claims == nil || payments == nil || policies == nil {
		panic("nil dependency passed to NewAdminClaimHandler")
	}
	return &AdminClaimHandler{DB: db, Claims: claims, Payments: payments, Policies: policies}
}

type reviewClaimReq struct {
	Note string `json:"note"`
}
type approveClaimReq struct {
	ApprovedCents int64  `json:"approved_cents"`
	Note          string `json:"note"`
}
type rejectClaimReq struct {
	Reason string `json:"reason"`
}
type assignInvestigatorReq struct {
	InvestigatorID uint64 `json:"investigator_id"`
}

// ListByStatus returns the adjudication queue filtered by ?status=
// (default pending), oldest first.
func (h *AdminClaimHandler) ListByStatus(c echo.Context) error {
	status := model.ClaimStatus(strings.ToLower(strings.TrimSpace(c.QueryParam("status"))))
	if status == "" {
		status = model.ClaimPending
	}
	switch status {
	case model.ClaimPending, model.ClaimInReview, model.ClaimApproved, model.ClaimRejected, model.ClaimSettled:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	claims, err := h.Claims.ListByStatus(ctx, status)
	if err != nil {
		return respondRepoError(c, err, "list claims failed")
	}
	return c.JSON(http.StatusOK, claims)
}

// StartReview takes a pending claim into review.
func (h *AdminClaimHandler) StartReview(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req reviewClaimReq
	_ = c.Bind(&req)
	var note *string
	if n := strings.TrimSpace(req.Note); n != "" {
		note = &n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Claims.StartReview(ctx, id, note); err != nil {
		return respondRepoError(c, err, "start review failed")
	}
	return h.respondClaim(c, ctx, id)
}

// Approve grants an amount on a claim under review.  Granting more than
// the claimant's estimate requires an explicit note so the decision is
// auditable; the amount is never clamped silently.
func (h *AdminClaimHandler) Approve(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req approveClaimReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ApprovedCents <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "approved_cents must be positive"})
	}
	req.Note = strings.TrimSpace(req.Note)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	claim, err := h.Claims.GetByID(ctx, id)
	if err != nil {
		return respondRepoError(c, err, "load claim failed")
	}
	if req.ApprovedCents > claim.EstimatedCents && req.Note == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "granting above the estimate requires a note"})
	}

	var note *string
	if req.Note != "" {
		note = &req.Note
	}
	if err := h.Claims.Approve(ctx, id, req.ApprovedCents, note); err != nil {
		return respondRepoError(c, err, "approve claim failed")
	}

	_ = service.PublishNotification(ctx, q.NotificationEvent{
		Kind:        q.KindClaimApproved,
		UserID:      claim.UserID,
		Reference:   claim.Reference,
		AmountCents: req.ApprovedCents,
	})
	return h.respondClaim(c, ctx, id)
}

// Reject closes a claim under review with a mandatory reason.
func (h *AdminClaimHandler) Reject(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req rejectClaimReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Reason) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reason required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Claims.Reject(ctx, id, strings.TrimSpace(req.Reason)); err != nil {
		return respondRepoError(c, err, "reject claim failed")
	}
	claim, err := h.Claims.GetByID(ctx, id)
	if err != nil {
		return respondRepoError(c, err, "load claim failed")
	}
	_ = service.PublishNotification(ctx, q.NotificationEvent{
		Kind:      q.KindClaimRejected,
		UserID:    claim.UserID,
		Reference: claim.Reference,
		Detail:    strings.TrimSpace(req.Reason),
	})
	return c.JSON(http.StatusOK, claim)
}

// AssignInvestigator attaches an investigator to an open claim.
func (h *AdminClaimHandler) AssignInvestigator(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req assignInvestigatorReq
	if err := c.Bind(&req); err != nil || req.InvestigatorID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "investigator_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Claims.AssignInvestigator(ctx, id, req.InvestigatorID); err != nil {
		return respondRepoError(c, err, "assign investigator failed")
	}
	return h.respondClaim(c, ctx, id)
}

// Settle pays out an approved claim: the payout payment row and the
// claim's settled status with the payout link commit in one transaction.
func (h *AdminClaimHandler) Settle(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	row := tx.QueryRowContext(ctx, `SELECT status, user_id, policy_id, approved_cents FROM claims WHERE id = ? FOR UPDATE`, id)
	var (
		status   model.ClaimStatus
		userID   uint64
		policyID uint64
		approved sql.NullInt64
	)
	if err := row.Scan(&status, &userID, &policyID, &approved); err != nil {
		return respondRepoError(c, err, "load claim failed")
	}
	if status != model.ClaimApproved || !approved.Valid {
		return respondRepoError(c, repository.ErrIllegalTransition, "")
	}

	now := time.Now().UTC()
	payout := model.Payment{
		PolicyID:    policyID,
		UserID:      userID,
		AmountCents: approved.Int64,
		Method:      "virement",
	}
	if err := h.Payments.CreatePayoutTx(ctx, tx, &payout, now); err != nil {
		return respondRepoError(c, err, "create payout failed")
	}
	if err := h.Claims.SettleTx(ctx, tx, id, payout.ID); err != nil {
		return respondRepoError(c, err, "settle claim failed")
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	claim, err := h.Claims.GetByID(ctx, id)
	if err != nil {
		return respondRepoError(c, err, "load claim failed")
	}
	_ = service.PublishNotification(ctx, q.NotificationEvent{
		Kind:        q.KindClaimSettled,
		UserID:      claim.UserID,
		Reference:   claim.Reference,
		AmountCents: approved.Int64,
	})
	return c.JSON(http.StatusOK, claim)
}

func (h *AdminClaimHandler) respondClaim(c echo.Context, ctx context.Context, id uint64) error {
	claim, err := h.Claims.GetByID(ctx, id)
	if err != nil {
		return respondRepoError(c, err, "load claim failed")
	}
	return c.JSON(http.StatusOK, claim)
}

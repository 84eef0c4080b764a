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
	"github.com/adilbk/assurauto-backend/internal/schedule"
	"github.com/adilbk/assurauto-backend/internal/service"
)

// AdminPolicyHandler issues policies from approved quotes and manages the
// policy lifecycle.  Issuance is one transaction covering the policy row,
// the quote's issuance mark and the first billing cycle; either all three
// commit or none do.
type AdminPolicyHandler struct {
	DB       *sql.DB
	Quotes   *repository.QuoteRepo
	Policies *repository.PolicyRepo
	Payments *repository.PaymentRepo
}

func NewAdminPolicyHandler(db *sql.DB, quotes *repository.QuoteRepo, policies *repository.PolicyRepo, payments *repository.PaymentRepo) *AdminPolicyHandler {
	if db == nil || quotes == nil || policies == nil || payments == nil {
		panic("nil dependency passed to NewAdminPolicyHandler")
	}
	return &AdminPolicyHandler{DB: db, Quotes: quotes, Policies: policies, Payments: payments}
}

type issuePolicyReq struct {
	PaymentFrequency string `json:"payment_frequency"`
	StartDate        string `json:"start_date"` // optional, YYYY-MM-DD, defaults to today
	AutoRenew        bool   `json:"auto_renew"`
	Method           string `json:"method"` // payment method label for the first cycle
}

// Issue turns an approved, unexpired quote into an active policy.
func (h *AdminPolicyHandler) Issue(c echo.Context) error {
	quoteID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req issuePolicyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	frequency := model.PaymentFrequency(strings.ToLower(strings.TrimSpace(req.PaymentFrequency)))
	if !frequency.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment_frequency must be monthly, quarterly or annually"})
	}

	now := time.Now().UTC()
	start := startOfDayUTC(now)
	if s := strings.TrimSpace(req.StartDate); s != "" {
		parsed, err := time.ParseInLocation("2006-01-02", s, time.UTC)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date must be YYYY-MM-DD"})
		}
		if parsed.Before(start) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date is in the past"})
		}
		start = parsed
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

	quote, err := h.Quotes.GetForIssuanceTx(ctx, tx, quoteID)
	if err != nil {
		return respondRepoError(c, err, "load quote failed")
	}
	if quote.Status != model.QuoteApproved {
		if quote.PolicyID != nil {
			return respondRepoError(c, repository.ErrQuoteAlreadyIssued, "")
		}
		return respondRepoError(c, repository.ErrQuoteNotApproved, "")
	}
	if now.After(quote.ValidUntil) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "quote validity elapsed"})
	}

	coverage, err := model.CoverageForTier(quote.VehicleType, quote.Tier)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "coverage snapshot failed"})
	}
	amount, err := schedule.CycleAmountCents(quote.FinalPremiumCents, frequency)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cycle amount failed"})
	}
	firstDue, err := schedule.NextDueDate(start, frequency)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cycle due date failed"})
	}

	policy := model.Policy{
		UserID:           quote.UserID,
		VehicleID:        quote.VehicleID,
		QuoteID:          quote.ID,
		VehicleType:      quote.VehicleType,
		Tier:             quote.Tier,
		Coverage:         coverage,
		PremiumCents:     quote.FinalPremiumCents,
		Status:           model.PolicyActive,
		PaymentFrequency: frequency,
		StartDate:        start,
		EndDate:          model.PolicyEnd(start),
		NextPaymentDue:   firstDue,
		AutoRenew:        req.AutoRenew,
	}
	if err := h.Policies.CreateTx(ctx, tx, &policy); err != nil {
		return respondRepoError(c, err, "create policy failed")
	}
	if err := h.Quotes.MarkIssuedTx(ctx, tx, quote.ID, policy.ID); err != nil {
		return respondRepoError(c, err, "mark quote issued failed")
	}

	first := model.Payment{
		PolicyID:    policy.ID,
		UserID:      policy.UserID,
		AmountCents: amount,
		Method:      strings.ToLower(strings.TrimSpace(req.Method)),
		CycleStart:  start,
		DueDate:     firstDue,
	}
	if err := h.Payments.CreateCycleTx(ctx, tx, &first); err != nil {
		return respondRepoError(c, err, "schedule first cycle failed")
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	_ = service.PublishNotification(ctx, q.NotificationEvent{
		Kind:        q.KindPolicyIssued,
		UserID:      policy.UserID,
		Reference:   policy.Reference,
		AmountCents: policy.PremiumCents,
	})

	return c.JSON(http.StatusCreated, policy)
}

// ListByStatus filters the portfolio by policy status via the ?status=
// query parameter (default active).
func (h *AdminPolicyHandler) ListByStatus(c echo.Context) error {
	status := model.PolicyStatus(strings.ToLower(strings.TrimSpace(c.QueryParam("status"))))
	if status == "" {
		status = model.PolicyActive
	}
	switch status {
	case model.PolicyActive, model.PolicyExpired, model.PolicySuspended, model.PolicyCancelled:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	policies, err := h.Policies.ListByStatus(ctx, status)
	if err != nil {
		return respondRepoError(c, err, "list policies failed")
	}
	return c.JSON(http.StatusOK, policies)
}

// Suspend moves an active policy to suspended.
func (h *AdminPolicyHandler) Suspend(c echo.Context) error {
	return h.transition(c, model.PolicyActive, model.PolicySuspended)
}

// Reactivate moves a suspended policy back to active.
func (h *AdminPolicyHandler) Reactivate(c echo.Context) error {
	return h.transition(c, model.PolicySuspended, model.PolicyActive)
}

// Cancel terminates an active or suspended policy.
func (h *AdminPolicyHandler) Cancel(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	policy, err := h.Policies.GetByID(ctx, id)
	if err != nil {
		return respondRepoError(c, err, "load policy failed")
	}
	if err := h.Policies.UpdateStatus(ctx, id, policy.Status, model.PolicyCancelled); err != nil {
		return respondRepoError(c, err, "cancel policy failed")
	}
	policy, err = h.Policies.GetByID(ctx, id)
	if err != nil {
		return respondRepoError(c, err, "load policy failed")
	}
	return c.JSON(http.StatusOK, policy)
}

// ExpireEnded runs the policy expiry sweep on demand.
func (h *AdminPolicyHandler) ExpireEnded(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	ids, err := h.Policies.ExpireEnded(ctx, time.Now().UTC())
	if err != nil {
		return respondRepoError(c, err, "expire policies failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"expired": len(ids)})
}

func (h *AdminPolicyHandler) transition(c echo.Context, from, to model.PolicyStatus) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Policies.UpdateStatus(ctx, id, from, to); err != nil {
		return respondRepoError(c, err, "update policy failed")
	}
	policy, err := h.Policies.GetByID(ctx, id)
	if err != nil {
		return respondRepoError(c, err, "load policy failed")
	}
	return c.JSON(http.StatusOK, policy)
}

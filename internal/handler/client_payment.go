package handler

import (
	"context"
	"database/sql"
	"log"
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

// PaymentHandler records installment outcomes reported by the payment
// gateway and exposes the client's payment history.  Recording an
// outcome schedules the next billing cycle in the same transaction, so a
// crash between the two can never leave a live policy without its next
// installment.
type PaymentHandler struct {
	DB       *sql.DB
	Payments *repository.PaymentRepo
	Policies *repository.PolicyRepo
}

func NewPaymentHandler(db *sql.DB, payments *repository.PaymentRepo, policies *repository.PolicyRepo) *PaymentHandler {
	if db == nil || payments == nil || policies == nil {
		panic("nil dependency passed to NewPaymentHandler")
	}
	return &PaymentHandler{DB: db, Payments: payments, Policies: policies}
}

type recordPaymentReq struct {
	Success         bool   `json:"success"`
	Method          string `json:"method"`
	TransactionID   string `json:"transaction_id"`
	GatewayResponse string `json:"gateway_response"`
}

// List returns all of the authenticated client's payments, newest first.
func (h *PaymentHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	payments, err := h.Payments.ListByUser(ctx, uid)
	if err != nil {
		return respondRepoError(c, err, "list payments failed")
	}
	return c.JSON(http.StatusOK, payments)
}

// Record settles one installment with the gateway's verdict.  Monthly
// and quarterly policies get their successor cycle materialized
// atomically whatever the verdict; the final cycle of the coverage year
// does not roll over past the policy's end date.  A failed verdict that
// brings the policy to the miss threshold emits an at-risk signal.
func (h *PaymentHandler) Record(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req recordPaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.TransactionID) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "transaction_id required"})
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

	payment, err := h.Payments.GetTx(ctx, tx, id)
	if err != nil {
		return respondRepoError(c, err, "load payment failed")
	}
	if payment.UserID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if payment.Type != model.PaymentTypePremium {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "only premium installments can be recorded"})
	}

	outcome := model.PaymentFailed
	if req.Success {
		outcome = model.PaymentPaid
	}
	now := time.Now().UTC()
	txnID := strings.TrimSpace(req.TransactionID)
	var gateway *string
	if g := strings.TrimSpace(req.GatewayResponse); g != "" {
		gateway = &g
	}
	if err := h.Payments.RecordOutcomeTx(ctx, tx, id, outcome, &txnID, gateway, now); err != nil {
		return respondRepoError(c, err, "record payment failed")
	}

	policy, err := h.Policies.GetTx(ctx, tx, payment.PolicyID)
	if err != nil {
		return respondRepoError(c, err, "load policy failed")
	}

	// The billing calendar advances on any recorded outcome; a failed
	// installment does not stall the schedule, it accrues as a miss.
	if policy.PaymentFrequency != model.FrequencyAnnually {
		nextStart, err := schedule.NextDueDate(payment.CycleStart, policy.PaymentFrequency)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "schedule next cycle failed"})
		}
		if nextStart.Before(policy.EndDate) {
			nextDue, err := schedule.NextDueDate(payment.DueDate, policy.PaymentFrequency)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "schedule next cycle failed"})
			}
			next := model.Payment{
				PolicyID:    policy.ID,
				UserID:      policy.UserID,
				AmountCents: payment.AmountCents,
				Method:      payment.Method,
				CycleStart:  nextStart,
				DueDate:     nextDue,
			}
			switch err := h.Payments.CreateCycleTx(ctx, tx, &next); err {
			case nil:
				if err := h.Policies.SetNextPaymentDueTx(ctx, tx, policy.ID, nextDue); err != nil {
					return respondRepoError(c, err, "advance next payment due failed")
				}
			case repository.ErrDuplicateCycle:
				// already scheduled by a concurrent retry
			default:
				return respondRepoError(c, err, "schedule next cycle failed")
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	kind := q.KindPaymentFailed
	if outcome == model.PaymentPaid {
		kind = q.KindPaymentPaid
	}
	_ = service.PublishNotification(ctx, q.NotificationEvent{
		Kind:        kind,
		UserID:      uid,
		Reference:   policy.Reference,
		AmountCents: payment.AmountCents,
	})

	if outcome == model.PaymentFailed && policy.Status == model.PolicyActive {
		misses, err := h.Payments.ConsecutiveMisses(ctx, policy.ID)
		if err != nil {
			log.Printf("payments: count misses for policy %d failed: %v", policy.ID, err)
		} else if misses >= schedule.AtRiskThreshold {
			_ = service.PublishNotification(ctx, q.NotificationEvent{
				Kind:      q.KindPolicyAtRisk,
				UserID:    policy.UserID,
				Reference: policy.Reference,
				Detail:    "consecutive missed premium payments",
			})
		}
	}

	updated, err := h.Payments.GetByID(ctx, id)
	if err != nil {
		return respondRepoError(c, err, "load payment failed")
	}
	return c.JSON(http.StatusOK, updated)
}

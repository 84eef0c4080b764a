package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adilbk/assurauto-backend/internal/repository"
)

// AdminPaymentHandler covers the money back office: refunds, the overdue
// sweep trigger and the reconciliation report.
type AdminPaymentHandler struct {
	Payments *repository.PaymentRepo
}

func NewAdminPaymentHandler(payments *repository.PaymentRepo) *AdminPaymentHandler {
	if payments == nil {
		panic("nil repository passed to NewAdminPaymentHandler")
	}
	return &AdminPaymentHandler{Payments: payments}
}

type refundReq struct {
	Reason string `json:"reason"`
}

// Refund moves a paid payment to refunded with a mandatory reason.
func (h *AdminPaymentHandler) Refund(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req refundReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Reason) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reason required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Payments.Refund(ctx, id, strings.TrimSpace(req.Reason)); err != nil {
		return respondRepoError(c, err, "refund failed")
	}
	payment, err := h.Payments.GetByID(ctx, id)
	if err != nil {
		return respondRepoError(c, err, "load payment failed")
	}
	return c.JSON(http.StatusOK, payment)
}

// MarkOverdue runs the overdue sweep on demand and reports how many
// installments it moved.
func (h *AdminPaymentHandler) MarkOverdue(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	swept, err := h.Payments.MarkOverdue(ctx, time.Now().UTC())
	if err != nil {
		return respondRepoError(c, err, "overdue sweep failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"overdue": len(swept)})
}

// Reconcile reports policies whose collected premium exceeds the annual
// premium.  The report is informational; nothing is corrected.
func (h *AdminPaymentHandler) Reconcile(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	report, err := h.Payments.Overpayments(ctx)
	if err != nil {
		return respondRepoError(c, err, "reconciliation failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"overpayments": report})
}

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adilbk/assurauto-backend/internal/model"
	"github.com/adilbk/assurauto-backend/internal/repository"
)

// PolicyHandler exposes the client's view of their policies.
type PolicyHandler struct {
	Policies     *repository.PolicyRepo
	PaymentsRepo *repository.PaymentRepo
}

func NewPolicyHandler(policies *repository.PolicyRepo, payments *repository.PaymentRepo) *PolicyHandler {
	if policies == nil || payments == nil {
		panic("nil repository passed to NewPolicyHandler")
	}
	return &PolicyHandler{Policies: policies, PaymentsRepo: payments}
}

// List returns the authenticated client's policies, newest first.
func (h *PolicyHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	policies, err := h.Policies.ListByUser(ctx, uid)
	if err != nil {
		return respondRepoError(c, err, "list policies failed")
	}
	return c.JSON(http.StatusOK, policies)
}

// Get returns one policy, enforcing ownership.
func (h *PolicyHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	policy, err := h.Policies.GetByIDForUser(ctx, id, uid)
	if err != nil {
		return respondRepoError(c, err, "load policy failed")
	}
	return c.JSON(http.StatusOK, policy)
}

// Payments returns the installment history of one of the client's
// policies, oldest first.
func (h *PolicyHandler) Payments(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// ownership check happens on the policy, not per payment row
	if _, err := h.Policies.GetByIDForUser(ctx, id, uid); err != nil {
		return respondRepoError(c, err, "load policy failed")
	}
	payments, err := h.PaymentsRepo.ListByPolicy(ctx, id)
	if err != nil {
		return respondRepoError(c, err, "list payments failed")
	}
	return c.JSON(http.StatusOK, payments)
}

// Cancel lets the policyholder cancel their own active or suspended
// policy.  Cancellation is final; the coverage snapshot stays on record
// for past incidents but future incidents are no longer covered.
func (h *PolicyHandler) Cancel(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	policy, err := h.Policies.GetByIDForUser(ctx, id, uid)
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

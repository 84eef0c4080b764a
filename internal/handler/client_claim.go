package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adilbk/assurauto-backend/internal/model"
	q "github.com/adilbk/assurauto-backend/internal/queue"
	"github.com/adilbk/assurauto-backend/internal/repository"
	"github.com/adilbk/assurauto-backend/internal/service"
)

// ClaimHandler lets policyholders file claims against their policies and
// follow the adjudication.
type ClaimHandler struct {
	Claims   *repository.ClaimRepo
	Policies *repository.PolicyRepo
}

func NewClaimHandler(claims *repository.ClaimRepo, policies *repository.PolicyRepo) *ClaimHandler {
	if claims == nil || policies == nil {
		panic("nil repository passed to NewClaimHandler")
	}
	return &ClaimHandler{Claims: claims, Policies: policies}
}

type fileClaimReq struct {
	PolicyID         uint64 `json:"policy_id"`
	Type             string `json:"type"`
	IncidentDate     string `json:"incident_date"` // YYYY-MM-DD
	IncidentLocation string `json:"incident_location"`
	Description      string `json:"description"`
	EstimatedCents   int64  `json:"estimated_cents"`
}

// File validates the incident against the policy's coverage window and
// stores a pending claim.  Nothing is persisted when the incident falls
// outside coverage.
func (h *ClaimHandler) File(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req fileClaimReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Type = strings.ToLower(strings.TrimSpace(req.Type))
	req.Description = strings.TrimSpace(req.Description)
	if req.Type == "" || req.Description == "" || req.EstimatedCents <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type/description/estimated_cents required"})
	}
	incident, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(req.IncidentDate), time.UTC)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "incident_date must be YYYY-MM-DD"})
	}
	if incident.After(time.Now().UTC()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "incident_date is in the future"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	policy, err := h.Policies.GetByIDForUser(ctx, req.PolicyID, uid)
	if err != nil {
		return respondRepoError(c, err, "load policy failed")
	}
	if !policy.CoversIncident(incident) {
		return respondRepoError(c, repository.ErrIncidentOutsideCoverage, "")
	}

	claim := model.Claim{
		PolicyID:         policy.ID,
		UserID:           uid,
		Type:             req.Type,
		IncidentDate:     incident,
		IncidentLocation: strings.TrimSpace(req.IncidentLocation),
		Description:      req.Description,
		EstimatedCents:   req.EstimatedCents,
	}
	if err := h.Claims.Create(ctx, &claim); err != nil {
		return respondRepoError(c, err, "create claim failed")
	}

	_ = service.PublishNotification(ctx, q.NotificationEvent{
		Kind:        q.KindClaimFiled,
		UserID:      uid,
		Reference:   claim.Reference,
		AmountCents: claim.EstimatedCents,
	})

	return c.JSON(http.StatusCreated, claim)
}

// List returns the authenticated client's claims, newest first.
func (h *ClaimHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	claims, err := h.Claims.ListByUser(ctx, uid)
	if err != nil {
		return respondRepoError(c, err, "list claims failed")
	}
	return c.JSON(http.StatusOK, claims)
}

// Get returns one claim, enforcing ownership.
func (h *ClaimHandler) Get(c echo.Context) error {
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

	claim, err := h.Claims.GetByIDForUser(ctx, id, uid)
	if err != nil {
		return respondRepoError(c, err, "load claim failed")
	}
	return c.JSON(http.StatusOK, claim)
}

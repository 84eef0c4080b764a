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

// AdminQuoteHandler is the underwriting queue: list pending quotes and
// decide them.  A decision is a compare-and-set on the pending status, so
// two underwriters racing on the same quote cannot both win.
type AdminQuoteHandler struct {
	Quotes *repository.QuoteRepo
}

func NewAdminQuoteHandler(quotes *repository.QuoteRepo) *AdminQuoteHandler {
	if quotes == nil {
		panic("nil repository passed to NewAdminQuoteHandler")
	}
	return &AdminQuoteHandler{Quotes: quotes}
}

type decideQuoteReq struct {
	Decision string `json:"decision"` // approve | reject
	Note     string `json:"note"`
}

// ListPending returns the underwriting queue, oldest first.
func (h *AdminQuoteHandler) ListPending(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	quotes, err := h.Quotes.ListPending(ctx)
	if err != nil {
		return respondRepoError(c, err, "list pending quotes failed")
	}
	return c.JSON(http.StatusOK, quotes)
}

// Decide approves or rejects a pending quote.  Rejection requires a
// reason; an approval note is optional.
func (h *AdminQuoteHandler) Decide(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req decideQuoteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Note = strings.TrimSpace(req.Note)

	var next model.QuoteStatus
	var kind string
	switch strings.ToLower(strings.TrimSpace(req.Decision)) {
	case "approve":
		next = model.QuoteApproved
		kind = q.KindQuoteApproved
	case "reject":
		if req.Note == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "rejection requires a note"})
		}
		next = model.QuoteRejected
		kind = q.KindQuoteRejected
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "decision must be approve or reject"})
	}

	var note *string
	if req.Note != "" {
		note = &req.Note
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	quote, err := h.Quotes.Decide(ctx, id, next, note)
	if err != nil {
		return respondRepoError(c, err, "decide quote failed")
	}

	_ = service.PublishNotification(ctx, q.NotificationEvent{
		Kind:        kind,
		UserID:      quote.UserID,
		Reference:   quote.Reference,
		AmountCents: quote.FinalPremiumCents,
		Detail:      req.Note,
	})

	return c.JSON(http.StatusOK, quote)
}

// ExpireStale runs the quote expiry sweep on demand and reports how many
// quotes expired.  The background sweeper runs the same pass on a timer.
func (h *AdminQuoteHandler) ExpireStale(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	ids, err := h.Quotes.ExpireStale(ctx, time.Now().UTC())
	if err != nil {
		return respondRepoError(c, err, "expire quotes failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"expired": len(ids)})
}

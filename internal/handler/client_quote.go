package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adilbk/assurauto-backend/internal/model"
	"github.com/adilbk/assurauto-backend/internal/pricing"
	q "github.com/adilbk/assurauto-backend/internal/queue"
	"github.com/adilbk/assurauto-backend/internal/repository"
	"github.com/adilbk/assurauto-backend/internal/service"
)

// QuoteHandler runs the quote half of the underwriting pipeline: price a
// (vehicle, tier, risk profile) triple and persist the result as a pending
// quote.  The rating configuration is fixed at construction so every quote
// records which version priced it.
type QuoteHandler struct {
	Quotes   *repository.QuoteRepo
	Vehicles *repository.VehicleRepo
	Rating   pricing.RatingConfig
}

func NewQuoteHandler(quotes *repository.QuoteRepo, vehicles *repository.VehicleRepo, rating pricing.RatingConfig) *QuoteHandler {
	if quotes == nil || vehicles == nil {
		panic("nil repository passed to NewQuoteHandler")
	}
	return &QuoteHandler{Quotes: quotes, Vehicles: vehicles, Rating: rating}
}

type requestQuoteReq struct {
	VehicleID     uint64 `json:"vehicle_id"`
	Tier          string `json:"tier"`
	DriverAge     int    `json:"driver_age"`
	YearsLicensed int    `json:"years_licensed"`
	CityZone      string `json:"city_zone"`
}

type quoteResp struct {
	Quote     model.Quote       `json:"quote"`
	Breakdown pricing.Breakdown `json:"breakdown"`
}

// Request prices and stores a new quote for one of the client's vehicles.
// The vehicle's engine size and age feed the risk factors; the caller only
// supplies the driver profile.
func (h *QuoteHandler) Request(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req requestQuoteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.DriverAge < 18 || req.DriverAge > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "driver_age out of range"})
	}
	if req.YearsLicensed < 0 || req.YearsLicensed > req.DriverAge-14 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "years_licensed out of range"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	vehicle, err := h.Vehicles.GetByIDForOwner(ctx, req.VehicleID, uid)
	if err != nil {
		return respondRepoError(c, err, "load vehicle failed")
	}

	tier := model.CoverageTier(strings.ToLower(strings.TrimSpace(req.Tier)))
	if !model.ValidTier(vehicle.Type, tier) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tier does not match vehicle type"})
	}

	now := time.Now().UTC()
	breakdown, err := pricing.ComputePremium(h.Rating, vehicle.Type, tier, pricing.RiskInputs{
		DriverAge:     req.DriverAge,
		YearsLicensed: req.YearsLicensed,
		CityZone:      strings.ToLower(strings.TrimSpace(req.CityZone)),
		VehicleAge:    now.Year() - vehicle.Year,
		EngineCC:      vehicle.EngineCC,
	})
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	quote := model.Quote{
		UserID:              uid,
		VehicleID:           vehicle.ID,
		VehicleType:         vehicle.Type,
		Tier:                tier,
		BasePremiumCents:    breakdown.BasePremiumCents,
		RiskFactors:         breakdown.RiskFactors,
		FinalPremiumCents:   breakdown.FinalPremiumCents,
		MonthlyPremiumCents: breakdown.MonthlyPremiumCents,
		RatingVersion:       breakdown.RatingVersion,
		MinimumApplied:      breakdown.MinimumApplied,
		ValidUntil:          now.Add(model.QuoteValidity),
	}
	if err := h.Quotes.Create(ctx, &quote); err != nil {
		return respondRepoError(c, err, "create quote failed")
	}

	_ = service.PublishNotification(ctx, q.NotificationEvent{
		Kind:        q.KindQuoteReady,
		UserID:      uid,
		Reference:   quote.Reference,
		AmountCents: quote.FinalPremiumCents,
	})

	return c.JSON(http.StatusCreated, quoteResp{Quote: quote, Breakdown: breakdown})
}

// List returns the authenticated client's quotes, newest first.
func (h *QuoteHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	quotes, err := h.Quotes.ListByUser(ctx, uid)
	if err != nil {
		return respondRepoError(c, err, "list quotes failed")
	}
	return c.JSON(http.StatusOK, quotes)
}

// Get returns one quote, enforcing ownership.
func (h *QuoteHandler) Get(c echo.Context) error {
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

	quote, err := h.Quotes.GetByIDForUser(ctx, id, uid)
	if err != nil {
		return respondRepoError(c, err, "load quote failed")
	}
	return c.JSON(http.StatusOK, quote)
}

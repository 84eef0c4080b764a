package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/adilbk/assurauto-backend/internal/model"
	"github.com/adilbk/assurauto-backend/internal/pricing"
)

// CatalogHandler serves the public coverage catalog.  The catalog is
// derived from the current rating configuration, so it changes only when
// a new rating version ships.
type CatalogHandler struct {
	Rating pricing.RatingConfig
}

func NewCatalogHandler(rating pricing.RatingConfig) *CatalogHandler {
	return &CatalogHandler{Rating: rating}
}

type catalogTier struct {
	VehicleType   model.VehicleType     `json:"vehicle_type"`
	Tier          model.CoverageTier    `json:"tier"`
	BaseRateCents int64                 `json:"base_rate_cents"`
	Coverage      model.CoverageDetails `json:"coverage"`
}

type catalogResp struct {
	RatingVersion string        `json:"rating_version"`
	Tiers         []catalogTier `json:"tiers"`
}

// Tiers lists every (vehicle type, tier) combination with its peril
// bundle and annual base rate.  No authentication required; prospects
// browse this before registering.
func (h *CatalogHandler) Tiers(c echo.Context) error {
	combos := []struct {
		vt   model.VehicleType
		tier model.CoverageTier
	}{
		{model.VehicleCar, model.TierBasique},
		{model.VehicleCar, model.TierStandard},
		{model.VehicleCar, model.TierPremium},
		{model.VehicleMoto, model.TierEssentiel},
		{model.VehicleMoto, model.TierConfort},
		{model.VehicleMoto, model.TierUltimate},
	}

	resp := catalogResp{RatingVersion: h.Rating.Version}
	for _, combo := range combos {
		coverage, err := model.CoverageForTier(combo.vt, combo.tier)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "catalog build failed"})
		}
		rate, ok := h.Rating.BaseRate(combo.vt, combo.tier)
		if !ok {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "catalog build failed"})
		}
		resp.Tiers = append(resp.Tiers, catalogTier{
			VehicleType:   combo.vt,
			Tier:          combo.tier,
			BaseRateCents: rate,
			Coverage:      coverage,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

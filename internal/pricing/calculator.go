// Package pricing computes premiums from a versioned rating
// configuration and driver/vehicle risk attributes.  Everything in this
// package is a pure input→output function: no persistence, no clock
// reads, safe to call repeatedly and concurrently.
package pricing

import (
	"errors"
	"math"

	"github.com/adilbk/assurauto-backend/internal/model"
)

// Sentinel errors returned for out-of-domain inputs.
var (
	ErrInvalidVehicleType  = errors.New("invalid vehicle type")
	ErrInvalidCoverageTier = errors.New("invalid coverage tier")
)

// RiskInputs are the driver and vehicle attributes that feed the risk
// factors.  VehicleAge is supplied by the caller rather than derived
// from a clock so that a fixed input always yields a fixed premium.
type RiskInputs struct {
	DriverAge     int    `json:"driver_age"`
	YearsLicensed int    `json:"years_licensed"`
	CityZone      string `json:"city_zone"` // urbain_dense, urbain, rural
	VehicleAge    int    `json:"vehicle_age"`
	EngineCC      int    `json:"engine_cc"`
}

// Breakdown is the result of a premium calculation.  RiskFactors holds
// only the factors that actually contributed; a band with zero
// adjustment is omitted.  MonthlyPremiumCents*12 is not guaranteed to
// equal FinalPremiumCents; the per-month rounding drift is accepted and
// bounded by one cent per month.
type Breakdown struct {
	BasePremiumCents    int64              `json:"base_premium_cents"`
	RiskFactors         map[string]float64 `json:"risk_factors"`
	AdjustmentSum       float64            `json:"adjustment_sum"`
	FinalPremiumCents   int64              `json:"final_premium_cents"`
	MonthlyPremiumCents int64              `json:"monthly_premium_cents"`
	MinimumApplied      bool               `json:"minimum_applied"`
	RatingVersion       string             `json:"rating_version"`
}

// ComputePremium prices a (vehicle type, coverage tier, risk inputs)
// triple under the given rating configuration.  The base premium
// always comes from the configuration table, never from a previous
// quote.  When the summed adjustments would drive the premium to zero
// or below, the result is clamped to the configured minimum premium
// and flagged instead of going non-positive.
func ComputePremium(cfg RatingConfig, vt model.VehicleType, tier model.CoverageTier, in RiskInputs) (Breakdown, error) {
	if !vt.Valid() {
		return Breakdown{}, ErrInvalidVehicleType
	}
	base, ok := cfg.BaseRate(vt, tier)
	if !ok {
		return Breakdown{}, ErrInvalidCoverageTier
	}

	factors := riskFactors(vt, in)
	sum := 0.0
	for _, f := range factors {
		sum += f
	}

	final := int64(math.Round(float64(base) * (1 + sum)))
	minApplied := false
	if final <= 0 {
		final = cfg.MinimumPremiumCents
		minApplied = true
	}
	monthly := int64(math.Round(float64(final) / 12))

	return Breakdown{
		BasePremiumCents:    base,
		RiskFactors:         factors,
		AdjustmentSum:       sum,
		FinalPremiumCents:   final,
		MonthlyPremiumCents: monthly,
		MinimumApplied:      minApplied,
		RatingVersion:       cfg.Version,
	}, nil
}

// riskFactors maps the inputs onto named signed adjustments.  Bands
// that contribute nothing are left out of the map so the stored factor
// list names only what moved the price.
func riskFactors(vt model.VehicleType, in RiskInputs) map[string]float64 {
	factors := make(map[string]float64)

	switch {
	case in.DriverAge < 21:
		factors["driver_age"] = 0.30
	case in.DriverAge < 25:
		factors["driver_age"] = 0.20
	case in.DriverAge < 30:
		factors["driver_age"] = 0.10
	case in.DriverAge >= 60:
		factors["driver_age"] = 0.08
	}

	switch {
	case in.YearsLicensed < 2:
		factors["years_licensed"] = 0.15
	case in.YearsLicensed < 5:
		factors["years_licensed"] = 0.08
	case in.YearsLicensed >= 10:
		factors["years_licensed"] = -0.05
	}

	switch in.CityZone {
	case "urbain_dense":
		factors["city_zone"] = 0.12
	case "urbain":
		factors["city_zone"] = 0.05
	case "rural":
		factors["city_zone"] = -0.03
	}

	switch {
	case in.VehicleAge >= 15:
		factors["vehicle_age"] = 0.10
	case in.VehicleAge >= 10:
		factors["vehicle_age"] = 0.05
	case in.VehicleAge <= 2:
		factors["vehicle_age"] = -0.02
	}

	switch vt {
	case model.VehicleCar:
		if in.EngineCC >= 2500 {
			factors["engine_size"] = 0.10
		}
	case model.VehicleMoto:
		switch {
		case in.EngineCC >= 1000:
			factors["engine_size"] = 0.15
		case in.EngineCC >= 600:
			factors["engine_size"] = 0.08
		}
	}

	return factors
}

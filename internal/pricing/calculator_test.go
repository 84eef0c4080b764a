package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adilbk/assurauto-backend/internal/model"
)

// Scenario from the commercial sign-off: car, tier standard, base rate
// 3000.00, aggregate adjustment +0.05 → final 3150.00, monthly 262.50.
func TestComputePremiumStandardCar(t *testing.T) {
	in := RiskInputs{
		DriverAge:     35,
		YearsLicensed: 6,
		CityZone:      "urbain",
		VehicleAge:    5,
		EngineCC:      1800,
	}
	bd, err := ComputePremium(DefaultRating(), model.VehicleCar, model.TierStandard, in)
	require.NoError(t, err)

	assert.Equal(t, int64(300_000), bd.BasePremiumCents)
	assert.InDelta(t, 0.05, bd.AdjustmentSum, 1e-9)
	assert.Equal(t, map[string]float64{"city_zone": 0.05}, bd.RiskFactors)
	assert.Equal(t, int64(315_000), bd.FinalPremiumCents)
	assert.Equal(t, int64(26_250), bd.MonthlyPremiumCents)
	assert.False(t, bd.MinimumApplied)
	assert.Equal(t, "2025-01", bd.RatingVersion)
}

func TestComputePremiumRejectsBadInputs(t *testing.T) {
	cfg := DefaultRating()

	_, err := ComputePremium(cfg, model.VehicleType("truck"), model.TierBasique, RiskInputs{})
	assert.ErrorIs(t, err, ErrInvalidVehicleType)

	// moto tier on a car is out of domain, not a zero-price fallback
	_, err = ComputePremium(cfg, model.VehicleCar, model.TierUltimate, RiskInputs{})
	assert.ErrorIs(t, err, ErrInvalidCoverageTier)

	_, err = ComputePremium(cfg, model.VehicleMoto, model.CoverageTier("gold"), RiskInputs{})
	assert.ErrorIs(t, err, ErrInvalidCoverageTier)
}

// Fixed inputs always price identically.
func TestComputePremiumDeterministic(t *testing.T) {
	cfg := DefaultRating()
	in := RiskInputs{DriverAge: 22, YearsLicensed: 1, CityZone: "urbain_dense", VehicleAge: 12, EngineCC: 2600}

	first, err := ComputePremium(cfg, model.VehicleCar, model.TierPremium, in)
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		again, err := ComputePremium(cfg, model.VehicleCar, model.TierPremium, in)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

// The accumulated monthly rounding drift stays under one cent per month.
func TestComputePremiumRoundingBound(t *testing.T) {
	cfg := DefaultRating()
	inputs := []RiskInputs{
		{DriverAge: 19, YearsLicensed: 0, CityZone: "urbain_dense", VehicleAge: 1, EngineCC: 999},
		{DriverAge: 27, YearsLicensed: 3, CityZone: "urbain", VehicleAge: 8, EngineCC: 1200},
		{DriverAge: 45, YearsLicensed: 20, CityZone: "rural", VehicleAge: 16, EngineCC: 2800},
		{DriverAge: 63, YearsLicensed: 40, CityZone: "", VehicleAge: 3, EngineCC: 650},
	}
	for vt, tiers := range cfg.BaseRatesCents {
		for tier := range tiers {
			for _, in := range inputs {
				bd, err := ComputePremium(cfg, vt, tier, in)
				require.NoError(t, err)
				drift := bd.MonthlyPremiumCents*12 - bd.FinalPremiumCents
				if drift < 0 {
					drift = -drift
				}
				assert.Less(t, drift, int64(12), "%s/%s %+v", vt, tier, in)
				assert.Positive(t, bd.FinalPremiumCents)
			}
		}
	}
}

// A rating table that would price at or below zero is clamped to the
// configured minimum and flagged, never returned non-positive.
func TestComputePremiumMinimumClamp(t *testing.T) {
	cfg := RatingConfig{
		Version: "test",
		BaseRatesCents: map[model.VehicleType]map[model.CoverageTier]int64{
			model.VehicleCar: {model.TierBasique: 0},
		},
		MinimumPremiumCents: 50_000,
	}
	bd, err := ComputePremium(cfg, model.VehicleCar, model.TierBasique, RiskInputs{DriverAge: 40, YearsLicensed: 8, VehicleAge: 5})
	require.NoError(t, err)
	assert.True(t, bd.MinimumApplied)
	assert.Equal(t, int64(50_000), bd.FinalPremiumCents)
	assert.Equal(t, int64(4_167), bd.MonthlyPremiumCents)
}

func TestRiskFactorsBands(t *testing.T) {
	f := riskFactors(model.VehicleMoto, RiskInputs{DriverAge: 20, YearsLicensed: 1, CityZone: "urbain_dense", VehicleAge: 20, EngineCC: 1100})
	assert.Equal(t, map[string]float64{
		"driver_age":     0.30,
		"years_licensed": 0.15,
		"city_zone":      0.12,
		"vehicle_age":    0.10,
		"engine_size":    0.15,
	}, f)

	// mid-band driver with no surcharges contributes nothing
	f = riskFactors(model.VehicleCar, RiskInputs{DriverAge: 40, YearsLicensed: 7, CityZone: "inconnu", VehicleAge: 6, EngineCC: 1500})
	assert.Empty(t, f)
}

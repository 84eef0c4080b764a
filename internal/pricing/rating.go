package pricing

import "github.com/adilbk/assurauto-backend/internal/model"

// RatingConfig is an explicit, versioned snapshot of the commercial
// rating values.  It is passed into ComputePremium on every call and
// never read from a global, so quotes computed under an older version
// stay reproducible after the rates change.  The version string is
// stored on each quote.
type RatingConfig struct {
	Version             string
	BaseRatesCents      map[model.VehicleType]map[model.CoverageTier]int64
	MinimumPremiumCents int64
}

// BaseRate returns the table base premium for the pair, or false when
// the tier does not belong to the vehicle type's tier set.
func (c RatingConfig) BaseRate(vt model.VehicleType, tier model.CoverageTier) (int64, bool) {
	tiers, ok := c.BaseRatesCents[vt]
	if !ok {
		return 0, false
	}
	rate, ok := tiers[tier]
	return rate, ok
}

// DefaultRating returns the rating configuration currently in force.
// Amounts are annual premiums in cents.
func DefaultRating() RatingConfig {
	return RatingConfig{
		Version: "2025-01",
		BaseRatesCents: map[model.VehicleType]map[model.CoverageTier]int64{
			model.VehicleCar: {
				model.TierBasique:  220_000,
				model.TierStandard: 300_000,
				model.TierPremium:  410_000,
			},
			model.VehicleMoto: {
				model.TierEssentiel: 90_000,
				model.TierConfort:   140_000,
				model.TierUltimate:  210_000,
			},
		},
		MinimumPremiumCents: 50_000,
	}
}

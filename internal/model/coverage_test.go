package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidTier(t *testing.T) {
	assert.True(t, ValidTier(VehicleCar, TierBasique))
	assert.True(t, ValidTier(VehicleCar, TierStandard))
	assert.True(t, ValidTier(VehicleCar, TierPremium))
	assert.True(t, ValidTier(VehicleMoto, TierEssentiel))
	assert.True(t, ValidTier(VehicleMoto, TierConfort))
	assert.True(t, ValidTier(VehicleMoto, TierUltimate))

	// tiers never cross product lines
	assert.False(t, ValidTier(VehicleCar, TierEssentiel))
	assert.False(t, ValidTier(VehicleMoto, TierPremium))
	assert.False(t, ValidTier(VehicleType("truck"), TierBasique))
	assert.False(t, ValidTier(VehicleCar, CoverageTier("gold")))
}

func TestCoverageForTierCar(t *testing.T) {
	det, err := CoverageForTier(VehicleCar, TierStandard)
	require.NoError(t, err)
	require.NotNil(t, det.Car)
	assert.Nil(t, det.Moto)
	assert.True(t, det.Car.ResponsabiliteCivile)
	assert.True(t, det.Car.Vol)
	assert.True(t, det.Car.BrisDeGlace)
	assert.False(t, det.Car.TousRisques)

	full, err := CoverageForTier(VehicleCar, TierPremium)
	require.NoError(t, err)
	assert.True(t, full.Car.TousRisques)
	assert.True(t, full.Car.VehiculeRemplacement)
}

func TestCoverageForTierMoto(t *testing.T) {
	det, err := CoverageForTier(VehicleMoto, TierEssentiel)
	require.NoError(t, err)
	require.NotNil(t, det.Moto)
	assert.Nil(t, det.Car)
	assert.True(t, det.Moto.ResponsabiliteCivile)
	assert.False(t, det.Moto.Vol)

	top, err := CoverageForTier(VehicleMoto, TierUltimate)
	require.NoError(t, err)
	assert.True(t, top.Moto.EquipementPilote)
	assert.True(t, top.Moto.TousRisques)
}

func TestCoverageForTierRejectsMismatch(t *testing.T) {
	_, err := CoverageForTier(VehicleCar, TierUltimate)
	assert.Error(t, err)
	_, err = CoverageForTier(VehicleMoto, TierBasique)
	assert.Error(t, err)
}

package model

import "fmt"

// CoverageTier names a bundle of insured perils for a product line.
// Cars use basique/standard/premium; motorcycles use
// essentiel/confort/ultimate.  The tier string is stored on quotes and
// policies and must always be validated against the vehicle type.
type CoverageTier string

// Car tiers.
const (
	TierBasique  CoverageTier = "basique"
	TierStandard CoverageTier = "standard"
	TierPremium  CoverageTier = "premium"
)

// Motorcycle tiers.
const (
	TierEssentiel CoverageTier = "essentiel"
	TierConfort   CoverageTier = "confort"
	TierUltimate  CoverageTier = "ultimate"
)

// ValidTier reports whether tier belongs to the tier set of the given
// vehicle type.
func ValidTier(vt VehicleType, tier CoverageTier) bool {
	switch vt {
	case VehicleCar:
		return tier == TierBasique || tier == TierStandard || tier == TierPremium
	case VehicleMoto:
		return tier == TierEssentiel || tier == TierConfort || tier == TierUltimate
	}
	return false
}

// CarPerils is the closed set of peril flags for car coverage.  Adding
// or removing a peril is a compile-time-checked change; coverage is
// never an open map.
type CarPerils struct {
	ResponsabiliteCivile bool `json:"responsabilite_civile"`
	Vol                  bool `json:"vol"`
	Incendie             bool `json:"incendie"`
	BrisDeGlace          bool `json:"bris_de_glace"`
	TousRisques          bool `json:"tous_risques"`
	AssistanceRoute      bool `json:"assistance_route"`
	VehiculeRemplacement bool `json:"vehicule_remplacement"`
}

// MotoPerils is the closed set of peril flags for motorcycle coverage.
type MotoPerils struct {
	ResponsabiliteCivile bool `json:"responsabilite_civile"`
	Vol                  bool `json:"vol"`
	Incendie             bool `json:"incendie"`
	EquipementPilote     bool `json:"equipement_pilote"`
	TousRisques          bool `json:"tous_risques"`
	AssistanceRoute      bool `json:"assistance_route"`
}

// CoverageDetails is the snapshot copied from a quote onto a policy at
// issuance.  Exactly one of Car/Moto is set, matching VehicleType.  The
// snapshot never changes after issuance; adjusting coverage requires a
// new quote/policy pair.
type CoverageDetails struct {
	VehicleType VehicleType  `json:"vehicle_type"`
	Tier        CoverageTier `json:"tier"`
	Car         *CarPerils   `json:"car,omitempty"`
	Moto        *MotoPerils  `json:"moto,omitempty"`
}

// CoverageForTier expands a (vehicle type, tier) pair into its peril
// set.  It returns an error when the tier does not belong to the
// vehicle type's tier set.
func CoverageForTier(vt VehicleType, tier CoverageTier) (CoverageDetails, error) {
	if !ValidTier(vt, tier) {
		return CoverageDetails{}, fmt.Errorf("tier %q is not valid for vehicle type %q", tier, vt)
	}
	det := CoverageDetails{VehicleType: vt, Tier: tier}
	switch vt {
	case VehicleCar:
		p := &CarPerils{ResponsabiliteCivile: true}
		switch tier {
		case TierStandard:
			p.Vol = true
			p.Incendie = true
			p.BrisDeGlace = true
		case TierPremium:
			p.Vol = true
			p.Incendie = true
			p.BrisDeGlace = true
			p.TousRisques = true
			p.AssistanceRoute = true
			p.VehiculeRemplacement = true
		}
		det.Car = p
	case VehicleMoto:
		p := &MotoPerils{ResponsabiliteCivile: true}
		switch tier {
		case TierConfort:
			p.Vol = true
			p.Incendie = true
		case TierUltimate:
			p.Vol = true
			p.Incendie = true
			p.EquipementPilote = true
			p.TousRisques = true
			p.AssistanceRoute = true
		}
		det.Moto = p
	}
	return det, nil
}

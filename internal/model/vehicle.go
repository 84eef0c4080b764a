package model

import "time"

// VehicleType distinguishes the two insured product lines.  Each type
// carries its own coverage tier set and base rate table.
type VehicleType string

const (
	VehicleCar  VehicleType = "car"
	VehicleMoto VehicleType = "moto"
)

// Valid reports whether the vehicle type is one of the supported
// product lines.
func (v VehicleType) Valid() bool {
	return v == VehicleCar || v == VehicleMoto
}

// Vehicle represents a row in the `vehicles` table.  A vehicle belongs
// to exactly one owner and is immutable once referenced by a quote or
// policy, except for valuation refreshes handled elsewhere.  Vehicles
// are never deleted while a quote or policy references them.
//
// Fields:
//  ID                – primary key identifier.
//  OwnerID           – user who owns the vehicle.
//  Type              – product line (car or moto).
//  Make              – manufacturer name.
//  Model             – model name.
//  Year              – model year.
//  FuelType          – fuel type (essence, diesel, hybride, electrique).
//  EngineCC          – engine displacement in cubic centimetres.
//  PurchaseValueCents – purchase price in cents.
//  CurrentValueCents  – current estimated value in cents.
//  CreatedAt         – creation timestamp.
//  UpdatedAt         – last update timestamp.
type Vehicle struct {
	ID                 uint64      // vehicles.id
	OwnerID            uint64      // vehicles.owner_id
	Type               VehicleType // vehicles.type
	Make               string      // vehicles.make
	Model              string      // vehicles.model
	Year               int         // vehicles.year
	FuelType           string      // vehicles.fuel_type
	EngineCC           int         // vehicles.engine_cc
	PurchaseValueCents int64       // vehicles.purchase_value_cents
	CurrentValueCents  int64       // vehicles.current_value_cents
	CreatedAt          time.Time   // vehicles.created_at
	UpdatedAt          time.Time   // vehicles.updated_at
}

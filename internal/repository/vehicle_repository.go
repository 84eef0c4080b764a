package repository

import (
	"context"
	"database/sql"

	"github.com/adilbk/assurauto-backend/internal/model"
)

// VehicleRepo provides access to the vehicles table.  Vehicles belong
// to exactly one owner; every accessor that acts on behalf of a client
// enforces ownership inside the query.
type VehicleRepo struct{ DB *sql.DB }

func NewVehicleRepo(db *sql.DB) *VehicleRepo { return &VehicleRepo{DB: db} }

const vehicleColumns = `id, owner_id, type, make, model, year, fuel_type, engine_cc,
	purchase_value_cents, current_value_cents, created_at, updated_at`

// Create inserts a vehicle and populates its generated id and
// timestamps on the passed struct.
func (r *VehicleRepo) Create(ctx context.Context, v *model.Vehicle) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO vehicles (owner_id, type, make, model, year, fuel_type, engine_cc,
		 purchase_value_cents, current_value_cents) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.OwnerID, v.Type, v.Make, v.Model, v.Year, v.FuelType, v.EngineCC,
		v.PurchaseValueCents, v.CurrentValueCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	return r.DB.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM vehicles WHERE id = ?`, v.ID).
		Scan(&v.CreatedAt, &v.UpdatedAt)
}

// GetByIDForOwner returns the vehicle when it exists and belongs to
// the given owner.  A vehicle owned by someone else yields
// ErrForbidden, a missing one sql.ErrNoRows.
func (r *VehicleRepo) GetByIDForOwner(ctx context.Context, vehicleID, ownerID uint64) (model.Vehicle, error) {
	v, err := r.getByID(ctx, vehicleID)
	if err != nil {
		return model.Vehicle{}, err
	}
	if v.OwnerID != ownerID {
		return model.Vehicle{}, ErrForbidden
	}
	return v, nil
}

// GetByID returns a vehicle without ownership checks, for admin use.
func (r *VehicleRepo) GetByID(ctx context.Context, vehicleID uint64) (model.Vehicle, error) {
	return r.getByID(ctx, vehicleID)
}

func (r *VehicleRepo) getByID(ctx context.Context, vehicleID uint64) (model.Vehicle, error) {
	var v model.Vehicle
	err := r.DB.QueryRowContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE id = ?`, vehicleID).Scan(
		&v.ID, &v.OwnerID, &v.Type, &v.Make, &v.Model, &v.Year, &v.FuelType, &v.EngineCC,
		&v.PurchaseValueCents, &v.CurrentValueCents, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

// ListByOwner returns all vehicles of a user, newest first.
func (r *VehicleRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Vehicle, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Vehicle, 0)
	for rows.Next() {
		var v model.Vehicle
		if err := rows.Scan(
			&v.ID, &v.OwnerID, &v.Type, &v.Make, &v.Model, &v.Year, &v.FuelType, &v.EngineCC,
			&v.PurchaseValueCents, &v.CurrentValueCents, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Delete removes a vehicle owned by the caller.  A vehicle referenced
// by any quote or policy is never deleted; ErrVehicleInUse is returned
// instead.
func (r *VehicleRepo) Delete(ctx context.Context, vehicleID, ownerID uint64) error {
	if _, err := r.GetByIDForOwner(ctx, vehicleID, ownerID); err != nil {
		return err
	}
	var refs int
	err := r.DB.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM quotes WHERE vehicle_id = ?) +
		        (SELECT COUNT(*) FROM policies WHERE vehicle_id = ?)`,
		vehicleID, vehicleID).Scan(&refs)
	if err != nil {
		return err
	}
	if refs > 0 {
		return ErrVehicleInUse
	}
	_, err = r.DB.ExecContext(ctx, `DELETE FROM vehicles WHERE id = ? AND owner_id = ?`, vehicleID, ownerID)
	return err
}

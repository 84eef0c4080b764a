package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adilbk/assurauto-backend/internal/model"
	"github.com/adilbk/assurauto-backend/internal/repository"
)

// VehicleHandler exposes the policyholder's garage: the vehicles a client
// can request quotes for.
type VehicleHandler struct {
	Vehicles *repository.VehicleRepo
}

func NewVehicleHandler(vehicles *repository.VehicleRepo) *VehicleHandler {
	if vehicles == nil {
		panic("nil repository passed to NewVehicleHandler")
	}
	return &VehicleHandler{Vehicles: vehicles}
}

type createVehicleReq struct {
	Type               string `json:"type"`
	Make               string `json:"make"`
	Model              string `json:"model"`
	Year               int    `json:"year"`
	FuelType           string `json:"fuel_type"`
	EngineCC           int    `json:"engine_cc"`
	PurchaseValueCents int64  `json:"purchase_value_cents"`
	CurrentValueCents  int64  `json:"current_value_cents"`
}

// Create registers a vehicle under the authenticated client.
func (h *VehicleHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createVehicleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	vt := model.VehicleType(strings.ToLower(strings.TrimSpace(req.Type)))
	if !vt.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type must be car or moto"})
	}
	req.Make = strings.TrimSpace(req.Make)
	req.Model = strings.TrimSpace(req.Model)
	if req.Make == "" || req.Model == "" || req.Year < 1950 || req.Year > time.Now().Year()+1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "make/model/year invalid"})
	}
	if req.EngineCC <= 0 || req.CurrentValueCents <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "engine_cc and current_value_cents must be positive"})
	}

	v := model.Vehicle{
		OwnerID:            uid,
		Type:               vt,
		Make:               req.Make,
		Model:              req.Model,
		Year:               req.Year,
		FuelType:           strings.ToLower(strings.TrimSpace(req.FuelType)),
		EngineCC:           req.EngineCC,
		PurchaseValueCents: req.PurchaseValueCents,
		CurrentValueCents:  req.CurrentValueCents,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Vehicles.Create(ctx, &v); err != nil {
		return respondRepoError(c, err, "create vehicle failed")
	}
	return c.JSON(http.StatusCreated, v)
}

// List returns the authenticated client's vehicles.
func (h *VehicleHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	vehicles, err := h.Vehicles.ListByOwner(ctx, uid)
	if err != nil {
		return respondRepoError(c, err, "list vehicles failed")
	}
	return c.JSON(http.StatusOK, vehicles)
}

// Get returns one vehicle, enforcing ownership.
func (h *VehicleHandler) Get(c echo.Context) error {
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

	v, err := h.Vehicles.GetByIDForOwner(ctx, id, uid)
	if err != nil {
		return respondRepoError(c, err, "load vehicle failed")
	}
	return c.JSON(http.StatusOK, v)
}

// Delete removes a vehicle that is not referenced by any quote or policy.
func (h *VehicleHandler) Delete(c echo.Context) error {
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

	if err := h.Vehicles.Delete(ctx, id, uid); err != nil {
		return respondRepoError(c, err, "delete vehicle failed")
	}
	return c.NoContent(http.StatusNoContent)
}

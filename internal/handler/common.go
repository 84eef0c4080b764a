package handler // handler defines http handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adilbk/assurauto-backend/internal/repository"
)

// getUserID extracts the user_id from echo.Context and converts it to
// uint64.  JWT numeric claims arrive as float64; some clients encode the
// subject as a string.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// startOfDayUTC returns midnight UTC of the instant's UTC calendar day.
func startOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// respondRepoError maps repository sentinel errors onto HTTP responses.
// Unknown errors become a 500 with the given fallback message so internal
// details never leak to clients.
func respondRepoError(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrIllegalTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": "illegal status transition"})
	case errors.Is(err, repository.ErrVehicleInUse):
		return c.JSON(http.StatusConflict, echo.Map{"error": "vehicle referenced by quotes or policies"})
	case errors.Is(err, repository.ErrQuoteNotApproved):
		return c.JSON(http.StatusConflict, echo.Map{"error": "quote is not approved"})
	case errors.Is(err, repository.ErrQuoteAlreadyIssued):
		return c.JSON(http.StatusConflict, echo.Map{"error": "quote already issued"})
	case errors.Is(err, repository.ErrPolicyOverlap):
		return c.JSON(http.StatusConflict, echo.Map{"error": "vehicle already covered by an active policy"})
	case errors.Is(err, repository.ErrIncidentOutsideCoverage):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "incident outside coverage window"})
	case errors.Is(err, repository.ErrDuplicateCycle):
		return c.JSON(http.StatusConflict, echo.Map{"error": "billing cycle already scheduled"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": fallback})
}

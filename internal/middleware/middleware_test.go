package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adilbk/assurauto-backend/internal/model"
	"github.com/adilbk/assurauto-backend/internal/utils"
)

const testSecret = "test-secret"

func invoke(t *testing.T, mw echo.MiddlewareFunc, req *http.Request, setup func(echo.Context)) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if setup != nil {
		setup(c)
	}
	handler := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	require.NoError(t, handler(c))
	return rec
}

func TestJWTAuthAcceptsIssuedToken(t *testing.T) {
	access, err := utils.NewAccessToken(testSecret, 42, model.RoleClient, 15)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/quotes", nil)
	req.Header.Set("Authorization", "Bearer "+access.Token)

	var gotUser, gotRole interface{}
	mw := JWTAuth(testSecret)
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	handler := mw(func(c echo.Context) error {
		gotUser = c.Get("user_id")
		gotRole = c.Get("role")
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 42, gotUser)
	assert.Equal(t, model.RoleClient, gotRole)
}

func TestJWTAuthRejectsMissingAndGarbageTokens(t *testing.T) {
	mw := JWTAuth(testSecret)

	rec := invoke(t, mw, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec = invoke(t, mw, req, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	access, err := utils.NewAccessToken("other-secret", 1, model.RoleAdmin, 15)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+access.Token)
	rec := invoke(t, JWTAuth(testSecret), req, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	mw := RequireRole(model.RoleAdmin)

	rec := invoke(t, mw, httptest.NewRequest(http.MethodGet, "/", nil), func(c echo.Context) {
		c.Set("role", model.RoleAdmin)
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = invoke(t, mw, httptest.NewRequest(http.MethodGet, "/", nil), func(c echo.Context) {
		c.Set("role", model.RoleClient)
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// no role at all
	rec = invoke(t, mw, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

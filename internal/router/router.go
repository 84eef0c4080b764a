package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/adilbk/assurauto-backend/internal/handler"
	"github.com/adilbk/assurauto-backend/internal/middleware"
	"github.com/adilbk/assurauto-backend/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance: the health check and the public coverage
// catalog.  The catalog middleware (Redis cache) is passed in so the
// wiring stays in main.
func RegisterRoutes(e *echo.Echo, catalog *handler.CatalogHandler, cacheMW echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)
	e.GET("/v1/catalog/tiers", catalog.Tiers, cacheMW)
}

// RegisterAuth registers all authentication-related routes.
// Unauthenticated operations live under /v1/auth; /v1/me requires a
// valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// ClientHandlers groups the policyholder-facing handlers so the register
// call stays readable.
type ClientHandlers struct {
	Vehicles *handler.VehicleHandler
	Quotes   *handler.QuoteHandler
	Policies *handler.PolicyHandler
	Payments *handler.PaymentHandler
	Claims   *handler.ClaimHandler
}

// RegisterClient registers the policyholder portal under /v1, protected
// by JWT and the CLIENT or ADMIN role.  The rate limiter guards the two
// submission endpoints (quote requests and claim filing).
func RegisterClient(e *echo.Echo, h ClientHandlers, jwtSecret string, limitMW echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleClient, model.RoleAdmin))

	g.POST("/vehicles", h.Vehicles.Create)
	g.GET("/vehicles", h.Vehicles.List)
	g.GET("/vehicles/:id", h.Vehicles.Get)
	g.DELETE("/vehicles/:id", h.Vehicles.Delete)

	g.POST("/quotes", h.Quotes.Request, limitMW)
	g.GET("/quotes", h.Quotes.List)
	g.GET("/quotes/:id", h.Quotes.Get)

	g.GET("/policies", h.Policies.List)
	g.GET("/policies/:id", h.Policies.Get)
	g.GET("/policies/:id/payments", h.Policies.Payments)
	g.POST("/policies/:id/cancel", h.Policies.Cancel)

	g.GET("/payments", h.Payments.List)
	g.POST("/payments/:id/record", h.Payments.Record)

	g.POST("/claims", h.Claims.File, limitMW)
	g.GET("/claims", h.Claims.List)
	g.GET("/claims/:id", h.Claims.Get)
}

// AdminHandlers groups the back-office handlers.
type AdminHandlers struct {
	Quotes   *handler.AdminQuoteHandler
	Policies *handler.AdminPolicyHandler
	Claims   *handler.AdminClaimHandler
	Payments *handler.AdminPaymentHandler
}

// RegisterAdmin registers the back office under /v1/admin, restricted to
// the ADMIN role.
func RegisterAdmin(e *echo.Echo, h AdminHandlers, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin))

	g.GET("/quotes/pending", h.Quotes.ListPending)
	g.POST("/quotes/:id/decide", h.Quotes.Decide)
	g.POST("/quotes/sweep", h.Quotes.ExpireStale)
	g.POST("/quotes/:id/issue", h.Policies.Issue)

	g.GET("/policies", h.Policies.ListByStatus)
	g.POST("/policies/:id/suspend", h.Policies.Suspend)
	g.POST("/policies/:id/reactivate", h.Policies.Reactivate)
	g.POST("/policies/:id/cancel", h.Policies.Cancel)
	g.POST("/policies/sweep", h.Policies.ExpireEnded)

	g.GET("/claims", h.Claims.ListByStatus)
	g.POST("/claims/:id/review", h.Claims.StartReview)
	g.POST("/claims/:id/approve", h.Claims.Approve)
	g.POST("/claims/:id/reject", h.Claims.Reject)
	g.POST("/claims/:id/investigator", h.Claims.AssignInvestigator)
	g.POST("/claims/:id/settle", h.Claims.Settle)

	g.POST("/payments/:id/refund", h.Payments.Refund)
	g.POST("/payments/sweep", h.Payments.MarkOverdue)
	g.GET("/payments/reconciliation", h.Payments.Reconcile)
}

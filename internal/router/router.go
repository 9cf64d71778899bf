// Package router registers the HTTP API.  Every route under /v1 that
// needs a caller carries JWTAuth and a capability check as route-level
// middleware, so public and protected routes can share path prefixes.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/handler"
	"github.com/iliyamo/hotel-booking/internal/middleware"
)

// Handlers groups everything the API needs.
type Handlers struct {
	Auth     *handler.AuthHandler
	Hotels   *handler.HotelHandler
	Bookings *handler.BookingHandler
	Reviews  *handler.ReviewHandler
	Finance  *handler.FinanceHandler
	DB       handler.Pinger

	JWTSecret string
	// Cache wraps public listing routes.  Nil disables caching.
	Cache echo.MiddlewareFunc
}

// Register wires all route groups onto e.
func Register(e *echo.Echo, h Handlers) {
	jwt := middleware.JWTAuth(h.JWTSecret)
	cache := h.Cache
	if cache == nil {
		cache = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	RegisterRoutes(e, h.DB)
	RegisterAuth(e, h.Auth, jwt)
	RegisterPublic(e, h.Hotels, h.Reviews, cache)
	RegisterClient(e, h.Bookings, h.Reviews, jwt)
	RegisterHotelAdmin(e, h.Hotels, h.Reviews, jwt)
	RegisterFinance(e, h.Finance, jwt)
	RegisterSystemAdmin(e, h.Hotels, jwt)
}

// RegisterRoutes registers the health probes.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	if db != nil {
		e.GET("/readyz", handler.Ready(db))
	}
}

// RegisterAuth registers account routes.  Sign-up, verification, password
// reset, login and refresh need no session; /v1/me does.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwt echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/verify-email", a.VerifyEmail)
	g.POST("/resend-otp", a.ResendOTP)
	g.POST("/password-reset", a.PasswordReset)
	g.POST("/set-new-password", a.SetNewPassword)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// logout accepts either a refresh token in the body or a bearer token
	g.POST("/logout", a.Logout)

	e.GET("/v1/me", a.Me, jwt)
}

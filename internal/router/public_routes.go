package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/handler"
)

// RegisterPublic registers the unauthenticated browse endpoints.  Only
// approved hotels are visible.  Responses go through the Redis cache.
func RegisterPublic(e *echo.Echo, h *handler.HotelHandler, r *handler.ReviewHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.GET("/hotels", h.List, cache)
	g.GET("/hotels/:id", h.Get, cache)
	g.GET("/hotels/:id/categories", h.Categories, cache)
	g.GET("/hotels/:id/rooms", h.Rooms, cache)
	g.GET("/hotels/:id/reviews", r.List, cache)
}

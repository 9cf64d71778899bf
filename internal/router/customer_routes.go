package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/handler"
	"github.com/iliyamo/hotel-booking/internal/middleware"
	"github.com/iliyamo/hotel-booking/internal/model"
)

// RegisterClient registers booking and review routes.  Creating a booking
// needs book_room; pay, cancel, checkout and reads are authorized per
// booking by the lifecycle manager (owner, hotel admin or system admin).
func RegisterClient(e *echo.Echo, b *handler.BookingHandler, r *handler.ReviewHandler, jwt echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.POST("/bookings", b.Create, jwt, middleware.RequireCapability(model.CapBookRoom))
	g.GET("/bookings", b.Mine, jwt)
	g.GET("/bookings/:id", b.Get, jwt)
	g.POST("/bookings/:id/pay", b.Pay, jwt)
	g.POST("/bookings/:id/cancel", b.Cancel, jwt)
	g.POST("/bookings/:id/checkout", b.Checkout, jwt)

	g.POST("/hotels/:id/reviews", r.Create, jwt, middleware.RequireCapability(model.CapWriteReview))
}

package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/handler"
	"github.com/iliyamo/hotel-booking/internal/middleware"
	"github.com/iliyamo/hotel-booking/internal/model"
)

// RegisterSystemAdmin registers the approval workflow and hotel deletion.
func RegisterSystemAdmin(e *echo.Echo, h *handler.HotelHandler, jwt echo.MiddlewareFunc) {
	approve := middleware.RequireCapability(model.CapApproveHotel)
	g := e.Group("/v1")
	g.GET("/pending-hotels", h.Pending, jwt, approve)
	g.POST("/hotels/:id/approve", h.Approve, jwt, approve)
	g.POST("/hotels/:id/decline", h.Decline, jwt, approve)
	g.DELETE("/hotels/:id", h.Delete, jwt, middleware.RequireCapability(model.CapDeleteHotel))
}

package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/handler"
	"github.com/iliyamo/hotel-booking/internal/middleware"
	"github.com/iliyamo/hotel-booking/internal/model"
)

// RegisterHotelAdmin registers the routes of hotel admins.  Ownership of
// the target hotel is checked by the services.
func RegisterHotelAdmin(e *echo.Echo, h *handler.HotelHandler, r *handler.ReviewHandler, jwt echo.MiddlewareFunc) {
	manage := middleware.RequireCapability(model.CapManageHotel)
	g := e.Group("/v1")
	g.POST("/hotels", h.Create, jwt, manage)
	g.GET("/my/hotels", h.Mine, jwt, manage)
	g.POST("/hotels/:id/categories", h.CreateCategory, jwt, manage)
	g.PATCH("/categories/:id", h.UpdateCategory, jwt, manage)
	g.POST("/hotels/:id/rooms", h.CreateRoom, jwt, manage)

	g.POST("/reviews/:id/respond", r.Respond, jwt, middleware.RequireCapability(model.CapRespondReview))
}

// RegisterFinance registers finance report routes for hotel admins and
// system admins.
func RegisterFinance(e *echo.Echo, f *handler.FinanceHandler, jwt echo.MiddlewareFunc) {
	view := middleware.RequireAnyCapability(model.CapViewFinance, model.CapViewAllFinance)
	g := e.Group("/v1")
	g.POST("/hotels/:id/finance-reports", f.Generate, jwt, view)
	g.GET("/hotels/:id/finance-reports/export", f.Export, jwt, view)
	g.GET("/finance-reports", f.List, jwt, view)
}

package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/service"
)

// BookingHandler exposes the booking lifecycle.
type BookingHandler struct {
	Bookings *service.BookingService
}

func NewBookingHandler(s *service.BookingService) *BookingHandler {
	return &BookingHandler{Bookings: s}
}

type createBookingReq struct {
	RoomID   uint64 `json:"room_id" validate:"required"`
	CheckIn  string `json:"check_in" validate:"required"`
	CheckOut string `json:"check_out" validate:"required"`
}

type payReq struct {
	PaymentAmount *model.Cents `json:"payment_amount" validate:"required"`
}

// transitionError answers a refused state change with the operation's own
// status message and defers everything else to writeServiceError.
func transitionError(c echo.Context, err error, msg string) error {
	if errors.Is(err, service.ErrInvalidTransition) {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": msg})
	}
	return writeServiceError(c, err)
}

// Create reserves a room for the caller.
func (h *BookingHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req createBookingReq
	if err := bind(c, &req); err != nil {
		return err
	}
	in, err := model.ParseDate(req.CheckIn)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_in must be YYYY-MM-DD"})
	}
	out, err := model.ParseDate(req.CheckOut)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_out must be YYYY-MM-DD"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	b, err := h.Bookings.CreateBooking(ctx, p, req.RoomID, in, out)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// Pay settles a reserved booking.
func (h *BookingHandler) Pay(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c)
	}
	var req payReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	b, err := h.Bookings.Pay(ctx, p, id, *req.PaymentAmount)
	if err != nil {
		return transitionError(c, err, "payment not allowed")
	}
	return c.JSON(http.StatusOK, b)
}

// Cancel cancels a reserved booking and frees its room.
func (h *BookingHandler) Cancel(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	b, err := h.Bookings.Cancel(ctx, p, id)
	if err != nil {
		return transitionError(c, err, "cancellation not allowed")
	}
	return c.JSON(http.StatusOK, b)
}

// Checkout marks a paid booking as checked out.
func (h *BookingHandler) Checkout(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	b, err := h.Bookings.Checkout(ctx, p, id)
	if err != nil {
		return transitionError(c, err, "checkout not allowed")
	}
	return c.JSON(http.StatusOK, b)
}

// Get returns one booking visible to the caller.
func (h *BookingHandler) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	b, err := h.Bookings.Get(ctx, p, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Mine lists the caller's bookings.
func (h *BookingHandler) Mine(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	bs, err := h.Bookings.ListMine(ctx, p)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": bs})
}

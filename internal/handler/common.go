package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/middleware"
	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/service"
)

// requestTimeout bounds the database work of a single request.
const requestTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func badID(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
}

// httpError carries an {"error": msg} body through echo's error handler.
func httpError(code int, msg string) error {
	return echo.NewHTTPError(code, echo.Map{"error": msg})
}

// principal returns the authenticated caller.  Routes using it are behind
// JWTAuth, so a missing principal is a wiring bug reported as 401.
func principal(c echo.Context) (model.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return model.Principal{}, httpError(http.StatusUnauthorized, "unauthorized")
	}
	return p, nil
}

// bind decodes and validates the request body.  The returned error is an
// *echo.HTTPError ready to be returned from the handler.
func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return httpError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(v); err != nil {
		return httpError(http.StatusBadRequest, validationMessage(err))
	}
	return nil
}

// writeServiceError translates domain errors into responses.  Booking
// lifecycle outcomes use the {"status": ...} body; everything else uses
// {"error": ...}.
func writeServiceError(c echo.Context, err error) error {
	if !service.IsDomainError(err) {
		// the cause travels as the internal error so the request logger records it
		return echo.NewHTTPError(http.StatusInternalServerError, echo.Map{"error": "internal error"}).SetInternal(err)
	}
	switch {
	case errors.Is(err, service.ErrUnavailable):
		return c.JSON(http.StatusConflict, echo.Map{"status": "room not available"})
	case errors.Is(err, service.ErrInsufficientPayment):
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "insufficient payment amount"})
	case errors.Is(err, service.ErrInvalidTransition):
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "invalid status transition"})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, service.ErrHotelNotApproved):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "hotel is not approved"})
	case errors.Is(err, service.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "already exists"})
	case errors.Is(err, service.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	case errors.Is(err, service.ErrNotVerified):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account is not verified"})
	case errors.Is(err, service.ErrInvalidCode):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired code"})
	case errors.Is(err, service.ErrInvalidResetToken):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "the reset link is invalid or expired"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/service"
)

// ReviewHandler serves hotel reviews.
type ReviewHandler struct {
	Reviews *service.ReviewService
}

func NewReviewHandler(s *service.ReviewService) *ReviewHandler { return &ReviewHandler{Reviews: s} }

type reviewReq struct {
	Text string `json:"text" validate:"required"`
}

type respondReq struct {
	Response string `json:"response"`
}

// Create posts a review on an approved hotel.
func (h *ReviewHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	hotelID, ok := parseID(c, "id")
	if !ok {
		return badID(c)
	}
	var req reviewReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	rv, err := h.Reviews.Create(ctx, p, hotelID, req.Text)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, rv)
}

// List returns the reviews of an approved hotel.
func (h *ReviewHandler) List(c echo.Context) error {
	hotelID, ok := parseID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	rvs, err := h.Reviews.List(ctx, hotelID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": rvs})
}

// Respond answers a review of one of the caller's hotels.
func (h *ReviewHandler) Respond(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c)
	}
	var req respondReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if _, err := h.Reviews.Respond(ctx, p, id, req.Response); err != nil {
		if errors.Is(err, service.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"status": "not authorized"})
		}
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "response added"})
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/service"
)

// HotelHandler serves hotels, the approval workflow, categories and rooms.
type HotelHandler struct {
	Hotels *service.HotelService
}

func NewHotelHandler(s *service.HotelService) *HotelHandler { return &HotelHandler{Hotels: s} }

type hotelReq struct {
	Name    string `json:"name" validate:"required,max=255"`
	Address string `json:"address" validate:"required"`
}

type categoryReq struct {
	Name  string      `json:"name" validate:"required,max=100"`
	Price model.Cents `json:"price" validate:"gt=0"`
}

type priceReq struct {
	Price model.Cents `json:"price" validate:"gt=0"`
}

type roomReq struct {
	CategoryID uint64 `json:"category_id" validate:"required"`
	Number     string `json:"number" validate:"required,max=10"`
}

// hotelView adds the derived approval state to the stored flags.
type hotelView struct {
	model.Hotel
	State model.HotelState `json:"state"`
}

func viewHotels(hs []model.Hotel) []hotelView {
	out := make([]hotelView, 0, len(hs))
	for _, h := range hs {
		out = append(out, hotelView{Hotel: h, State: h.State()})
	}
	return out
}

// Create registers a pending hotel owned by the caller.
func (h *HotelHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req hotelReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	hotel, err := h.Hotels.Register(ctx, p, req.Name, req.Address)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, hotelView{Hotel: hotel, State: hotel.State()})
}

// Mine lists the caller's hotels in every state.
func (h *HotelHandler) Mine(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	hs, err := h.Hotels.Mine(ctx, p)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": viewHotels(hs)})
}

// List returns approved hotels.
func (h *HotelHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	hs, err := h.Hotels.ListApproved(ctx)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": viewHotels(hs)})
}

// Get returns one approved hotel.
func (h *HotelHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	hotel, err := h.Hotels.GetApproved(ctx, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, hotelView{Hotel: hotel, State: hotel.State()})
}

// Pending lists hotels awaiting a decision.
func (h *HotelHandler) Pending(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	hs, err := h.Hotels.ListPending(ctx, p)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": viewHotels(hs)})
}

// Approve approves a hotel.
func (h *HotelHandler) Approve(c echo.Context) error {
	return h.decide(c, true)
}

// Decline declines a hotel.
func (h *HotelHandler) Decline(c echo.Context) error {
	return h.decide(c, false)
}

func (h *HotelHandler) decide(c echo.Context, approve bool) error {
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
	if approve {
		err = h.Hotels.Approve(ctx, p, id)
	} else {
		err = h.Hotels.Decline(ctx, p, id)
	}
	if err != nil {
		return writeServiceError(c, err)
	}
	status := "hotel declined"
	if approve {
		status = "hotel approved"
	}
	return c.JSON(http.StatusOK, echo.Map{"status": status})
}

// Delete removes a hotel and everything attached to it.
func (h *HotelHandler) Delete(c echo.Context) error {
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
	if err := h.Hotels.Delete(ctx, p, id); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateCategory adds a room category to the caller's approved hotel.
func (h *HotelHandler) CreateCategory(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	hotelID, ok := parseID(c, "id")
	if !ok {
		return badID(c)
	}
	var req categoryReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	cat, err := h.Hotels.AddCategory(ctx, p, hotelID, req.Name, req.Price)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, cat)
}

// UpdateCategory changes a category's price.
func (h *HotelHandler) UpdateCategory(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c)
	}
	var req priceReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	cat, err := h.Hotels.UpdateCategoryPrice(ctx, p, id, req.Price)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, cat)
}

// Categories lists the categories of an approved hotel.
func (h *HotelHandler) Categories(c echo.Context) error {
	hotelID, ok := parseID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	cats, err := h.Hotels.ListCategories(ctx, hotelID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": cats})
}

// CreateRoom registers a room on the caller's approved hotel.
func (h *HotelHandler) CreateRoom(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	hotelID, ok := parseID(c, "id")
	if !ok {
		return badID(c)
	}
	var req roomReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	room, err := h.Hotels.AddRoom(ctx, p, hotelID, req.CategoryID, req.Number)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, room)
}

// Rooms lists the rooms of an approved hotel; ?available=true filters to
// bookable rooms.
func (h *HotelHandler) Rooms(c echo.Context) error {
	hotelID, ok := parseID(c, "id")
	if !ok {
		return badID(c)
	}
	onlyAvailable := c.QueryParam("available") == "true" || c.QueryParam("available") == "1"
	ctx, cancel := reqCtx(c)
	defer cancel()
	rooms, err := h.Hotels.ListRooms(ctx, hotelID, onlyAvailable)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": rooms})
}

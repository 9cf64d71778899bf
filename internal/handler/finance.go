package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/report"
	"github.com/iliyamo/hotel-booking/internal/service"
)

// FinanceHandler serves finance reports.
type FinanceHandler struct {
	Finance *service.FinanceService
}

func NewFinanceHandler(s *service.FinanceService) *FinanceHandler { return &FinanceHandler{Finance: s} }

// Generate computes and stores a report for one hotel.
func (h *FinanceHandler) Generate(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	hotelID, ok := parseID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	r, err := h.Finance.Generate(ctx, p, hotelID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}

// List returns the reports the caller may see.
func (h *FinanceHandler) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	rs, err := h.Finance.List(ctx, p)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": rs})
}

// Export downloads a hotel's reports as an XLSX workbook.
func (h *FinanceHandler) Export(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	hotelID, ok := parseID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	data, err := h.Finance.Export(ctx, p, hotelID)
	if err != nil {
		return writeServiceError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="hotel-%d-finance.xlsx"`, hotelID))
	return c.Blob(http.StatusOK, report.ContentType, data)
}

package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/report"
)

// FinanceService produces finance snapshots from paid bookings.
type FinanceService struct {
	Reports  FinanceStore
	Hotels   HotelStore
	Bookings BookingStore
	Log      *zap.Logger
}

// hotelFor loads a hotel whose finances p may see.  System admins see all
// hotels; hotel admins see their own.
func (s *FinanceService) hotelFor(ctx context.Context, p model.Principal, hotelID uint64) (model.Hotel, error) {
	if !p.Can(model.CapViewFinance) && !p.Can(model.CapViewAllFinance) {
		return model.Hotel{}, ErrForbidden
	}
	h, err := s.Hotels.GetByID(ctx, hotelID)
	if err != nil {
		return model.Hotel{}, fromRepo(err)
	}
	if !p.Can(model.CapViewAllFinance) && !h.OwnedBy(p.UserID) {
		return model.Hotel{}, ErrForbidden
	}
	return h, nil
}

// Generate counts the hotel's PAID bookings, sums their reserved prices
// and stores the result as a new report.
func (s *FinanceService) Generate(ctx context.Context, p model.Principal, hotelID uint64) (model.FinanceReport, error) {
	h, err := s.hotelFor(ctx, p, hotelID)
	if err != nil {
		return model.FinanceReport{}, err
	}
	n, earned, err := s.Bookings.PaidTotalsByHotel(ctx, h.ID)
	if err != nil {
		return model.FinanceReport{}, fromRepo(err)
	}
	r, err := s.Reports.Create(ctx, h.ID, n, earned)
	if err != nil {
		return model.FinanceReport{}, fromRepo(err)
	}
	s.Log.Info("finance report generated",
		zap.Uint64("hotel_id", h.ID), zap.Int("rooms_paid", n), zap.Stringer("money_earned", earned))
	return r, nil
}

// List returns every report to system admins and the reports of their
// own hotels to hotel admins.
func (s *FinanceService) List(ctx context.Context, p model.Principal) ([]model.FinanceReport, error) {
	switch {
	case p.Can(model.CapViewAllFinance):
		out, err := s.Reports.ListAll(ctx)
		return out, fromRepo(err)
	case p.Can(model.CapViewFinance):
		out, err := s.Reports.ListByAdmin(ctx, p.UserID)
		return out, fromRepo(err)
	}
	return nil, ErrForbidden
}

// Export renders the hotel's reports as an XLSX workbook.
func (s *FinanceService) Export(ctx context.Context, p model.Principal, hotelID uint64) ([]byte, error) {
	h, err := s.hotelFor(ctx, p, hotelID)
	if err != nil {
		return nil, err
	}
	reports, err := s.Reports.ListByHotel(ctx, h.ID)
	if err != nil {
		return nil, fromRepo(err)
	}
	return report.FinanceXLSX(h, reports)
}

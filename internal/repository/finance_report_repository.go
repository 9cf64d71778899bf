package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// FinanceReportRepo stores finance snapshots.
type FinanceReportRepo struct{ DB *sql.DB }

func NewFinanceReportRepo(db *sql.DB) *FinanceReportRepo { return &FinanceReportRepo{DB: db} }

const financeSelect = "SELECT f.id, f.hotel_id, f.rooms_paid, f.money_earned_cents, f.created_at FROM finance_reports f"

func scanReport(s rowScanner) (model.FinanceReport, error) {
	var (
		f     model.FinanceReport
		money int64
	)
	if err := s.Scan(&f.ID, &f.HotelID, &f.RoomsPaid, &money, &f.CreatedAt); err != nil {
		return model.FinanceReport{}, err
	}
	f.MoneyEarned = model.Cents(money)
	return f, nil
}

// Create persists a report and returns it with its generated fields.
func (r *FinanceReportRepo) Create(ctx context.Context, hotelID uint64, roomsPaid int, earned model.Cents) (model.FinanceReport, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO finance_reports (hotel_id, rooms_paid, money_earned_cents) VALUES (?,?,?)",
		hotelID, roomsPaid, int64(earned))
	if err != nil {
		return model.FinanceReport{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.FinanceReport{}, err
	}
	f, err := scanReport(r.DB.QueryRowContext(ctx, financeSelect+" WHERE f.id=?", id))
	if err != nil {
		return model.FinanceReport{}, notFound(err)
	}
	return f, nil
}

// ListAll returns every report, newest first.
func (r *FinanceReportRepo) ListAll(ctx context.Context) ([]model.FinanceReport, error) {
	return r.list(ctx, financeSelect+" ORDER BY f.id DESC")
}

// ListByAdmin returns the reports of hotels owned by adminID.
func (r *FinanceReportRepo) ListByAdmin(ctx context.Context, adminID uint64) ([]model.FinanceReport, error) {
	return r.list(ctx, financeSelect+" JOIN hotels h ON h.id = f.hotel_id WHERE h.admin_id=? ORDER BY f.id DESC", adminID)
}

// ListByHotel returns the reports of one hotel, newest first.
func (r *FinanceReportRepo) ListByHotel(ctx context.Context, hotelID uint64) ([]model.FinanceReport, error) {
	return r.list(ctx, financeSelect+" WHERE f.hotel_id=? ORDER BY f.id DESC", hotelID)
}

func (r *FinanceReportRepo) list(ctx context.Context, q string, args ...any) ([]model.FinanceReport, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.FinanceReport{}
	for rows.Next() {
		f, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

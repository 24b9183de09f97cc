package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/takasakimo/kirei/internal/model"
)

type BookingStore struct {
	db *sql.DB
}

func NewBookingStore(db *sql.DB) *BookingStore {
	return &BookingStore{db: db}
}

func scanBooking(scanner interface{ Scan(...any) error }) (*model.Booking, error) {
	var b model.Booking
	var status string
	err := scanner.Scan(&b.ID, &b.TenantID, &b.CustomerID, &b.ServiceID, &b.StaffID,
		&b.StartsAt, &b.EndsAt, &status, &b.Note, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.Status = model.BookingStatus(status)
	return &b, nil
}

const bookingCols = `id, tenant_id, customer_id, service_id, staff_id, starts_at, ends_at, status, note, created_at, updated_at`

func (s *BookingStore) Create(tenantID, customerID, serviceID int64, staffID *int64, startsAt, endsAt time.Time, note string) (*model.Booking, error) {
	result, err := s.db.Exec(
		`INSERT INTO bookings (tenant_id, customer_id, service_id, staff_id, starts_at, ends_at, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tenantID, customerID, serviceID, staffID, startsAt.UTC(), endsAt.UTC(), note,
	)
	if err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(tenantID, id)
}

// GetByID is tenant-scoped: a booking id from another tenant is a miss.
func (s *BookingStore) GetByID(tenantID, id int64) (*model.Booking, error) {
	row := s.db.QueryRow(`SELECT `+bookingCols+` FROM bookings WHERE tenant_id = ? AND id = ?`, tenantID, id)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

// ListByTenant returns bookings overlapping [from, to), newest first.
func (s *BookingStore) ListByTenant(tenantID int64, from, to time.Time) ([]*model.Booking, error) {
	rows, err := s.db.Query(
		`SELECT `+bookingCols+` FROM bookings
		 WHERE tenant_id = ? AND starts_at < ? AND ends_at > ?
		 ORDER BY starts_at DESC`,
		tenantID, to.UTC(), from.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (s *BookingStore) ListByCustomer(tenantID, customerID int64) ([]*model.Booking, error) {
	rows, err := s.db.Query(
		`SELECT `+bookingCols+` FROM bookings WHERE tenant_id = ? AND customer_id = ? ORDER BY starts_at DESC`,
		tenantID, customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list bookings by customer: %w", err)
	}
	defer rows.Close()
	return collectBookings(rows)
}

// CountStaffOverlap counts live bookings for one stylist that overlap
// [startsAt, endsAt). Cancelled and no-show rows do not block a slot.
func (s *BookingStore) CountStaffOverlap(tenantID, staffID int64, startsAt, endsAt time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM bookings
		 WHERE tenant_id = ? AND staff_id = ? AND status = 'booked'
		   AND starts_at < ? AND ends_at > ?`,
		tenantID, staffID, endsAt.UTC(), startsAt.UTC(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count staff overlap: %w", err)
	}
	return count, nil
}

func (s *BookingStore) UpdateStatus(tenantID, id int64, status model.BookingStatus) (*model.Booking, error) {
	_, err := s.db.Exec(
		`UPDATE bookings SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE tenant_id = ? AND id = ?`,
		string(status), tenantID, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update booking status: %w", err)
	}
	return s.GetByID(tenantID, id)
}

func collectBookings(rows *sql.Rows) ([]*model.Booking, error) {
	var bookings []*model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

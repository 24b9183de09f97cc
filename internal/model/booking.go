package model

import "time"

// BookingStatus is the booking lifecycle state.
type BookingStatus string

const (
	BookingBooked    BookingStatus = "booked"
	BookingDone      BookingStatus = "done"
	BookingCancelled BookingStatus = "cancelled"
	BookingNoShow    BookingStatus = "no_show"
)

// Valid reports whether s is a known status.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingBooked, BookingDone, BookingCancelled, BookingNoShow:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s BookingStatus) Terminal() bool {
	return s != BookingBooked
}

// Booking is an appointment for one service, optionally with a preferred
// stylist. StartsAt/EndsAt are derived from the service duration at creation.
type Booking struct {
	ID         int64         `json:"id"`
	TenantID   int64         `json:"tenant_id"`
	CustomerID int64         `json:"customer_id"`
	ServiceID  int64         `json:"service_id"`
	StaffID    *int64        `json:"staff_id"`
	StartsAt   time.Time     `json:"starts_at"`
	EndsAt     time.Time     `json:"ends_at"`
	Status     BookingStatus `json:"status"`
	Note       string        `json:"note"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

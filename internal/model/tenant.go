package model

import "time"

// Tenant is a single salon. All customer and booking data is partitioned by
// tenant; Code is the customer-facing short code used at login.
type Tenant struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	SalonName string    `json:"salon_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

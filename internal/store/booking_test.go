package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/takasakimo/kirei/internal/database"
	"github.com/takasakimo/kirei/internal/model"
)

type bookingFixture struct {
	db       *sql.DB
	tenants  *TenantStore
	bookings *BookingStore
	tenant   *model.Tenant
	customer *model.Customer
	service  *model.Service
	stylist  *model.Staff
}

func setupBookings(t *testing.T) *bookingFixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tenants := NewTenantStore(db)
	tenant, err := tenants.Create("SALON1", "Salon One")
	if err != nil {
		t.Fatalf("seed tenant: %v", err)
	}
	customer, err := NewCustomerStore(db).Create(tenant.ID, "Alice", "a@x.com", "", "hash")
	if err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	service, err := NewServiceStore(db).Create(tenant.ID, "Cut", 60, 5000)
	if err != nil {
		t.Fatalf("seed service: %v", err)
	}
	stylist, err := NewStaffStore(db).Create(tenant.ID, "Yuki")
	if err != nil {
		t.Fatalf("seed staff: %v", err)
	}

	return &bookingFixture{
		db:       db,
		tenants:  tenants,
		bookings: NewBookingStore(db),
		tenant:   tenant,
		customer: customer,
		service:  service,
		stylist:  stylist,
	}
}

func TestBookingCreateAndGet(t *testing.T) {
	f := setupBookings(t)
	startsAt := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	endsAt := startsAt.Add(time.Hour)

	b, err := f.bookings.Create(f.tenant.ID, f.customer.ID, f.service.ID, &f.stylist.ID, startsAt, endsAt, "first visit")
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if b.Status != model.BookingBooked {
		t.Errorf("status = %s, want booked", b.Status)
	}
	if b.Note != "first visit" {
		t.Errorf("note = %q", b.Note)
	}

	got, err := f.bookings.GetByID(f.tenant.ID, b.ID)
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	if got == nil || got.ID != b.ID {
		t.Fatalf("got %+v, want id %d", got, b.ID)
	}
}

func TestBookingGetCrossTenantMiss(t *testing.T) {
	f := setupBookings(t)
	other := seedTenant(t, f.tenants, "SALON2")

	startsAt := time.Now().Add(24 * time.Hour)
	b, err := f.bookings.Create(f.tenant.ID, f.customer.ID, f.service.ID, nil, startsAt, startsAt.Add(time.Hour), "")
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	// The other salon asking for this id gets nothing.
	got, err := f.bookings.GetByID(other.ID, b.ID)
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	if got != nil {
		t.Error("booking visible across tenants")
	}
}

func TestBookingCountStaffOverlap(t *testing.T) {
	f := setupBookings(t)
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	if _, err := f.bookings.Create(f.tenant.ID, f.customer.ID, f.service.ID, &f.stylist.ID, base, base.Add(time.Hour), ""); err != nil {
		t.Fatalf("create booking: %v", err)
	}

	tests := []struct {
		name   string
		starts time.Time
		ends   time.Time
		want   int
	}{
		{"same slot", base, base.Add(time.Hour), 1},
		{"overlaps start", base.Add(-30 * time.Minute), base.Add(30 * time.Minute), 1},
		{"overlaps end", base.Add(30 * time.Minute), base.Add(90 * time.Minute), 1},
		{"contained", base.Add(15 * time.Minute), base.Add(45 * time.Minute), 1},
		{"adjacent before", base.Add(-time.Hour), base, 0},
		{"adjacent after", base.Add(time.Hour), base.Add(2 * time.Hour), 0},
		{"disjoint", base.Add(3 * time.Hour), base.Add(4 * time.Hour), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.bookings.CountStaffOverlap(f.tenant.ID, f.stylist.ID, tt.starts, tt.ends)
			if err != nil {
				t.Fatalf("count overlap: %v", err)
			}
			if got != tt.want {
				t.Errorf("overlap = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBookingCancelledDoesNotBlock(t *testing.T) {
	f := setupBookings(t)
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	b, err := f.bookings.Create(f.tenant.ID, f.customer.ID, f.service.ID, &f.stylist.ID, base, base.Add(time.Hour), "")
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if _, err := f.bookings.UpdateStatus(f.tenant.ID, b.ID, model.BookingCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	got, err := f.bookings.CountStaffOverlap(f.tenant.ID, f.stylist.ID, base, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("count overlap: %v", err)
	}
	if got != 0 {
		t.Errorf("overlap = %d, want 0 after cancel", got)
	}
}

func TestBookingUpdateStatus(t *testing.T) {
	f := setupBookings(t)
	startsAt := time.Now().Add(24 * time.Hour)

	b, err := f.bookings.Create(f.tenant.ID, f.customer.ID, f.service.ID, nil, startsAt, startsAt.Add(time.Hour), "")
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	updated, err := f.bookings.UpdateStatus(f.tenant.ID, b.ID, model.BookingDone)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != model.BookingDone {
		t.Errorf("status = %s, want done", updated.Status)
	}
}

func TestBookingListByTenantWindow(t *testing.T) {
	f := setupBookings(t)
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	inWindow, err := f.bookings.Create(f.tenant.ID, f.customer.ID, f.service.ID, nil, base, base.Add(time.Hour), "")
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if _, err := f.bookings.Create(f.tenant.ID, f.customer.ID, f.service.ID, nil, base.Add(48*time.Hour), base.Add(49*time.Hour), ""); err != nil {
		t.Fatalf("create booking: %v", err)
	}

	list, err := f.bookings.ListByTenant(f.tenant.ID, base.Add(-time.Hour), base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len = %d, want 1", len(list))
	}
	if list[0].ID != inWindow.ID {
		t.Errorf("id = %d, want %d", list[0].ID, inWindow.ID)
	}
}

func TestBookingListByCustomer(t *testing.T) {
	f := setupBookings(t)
	other, err := NewCustomerStore(f.db).Create(f.tenant.ID, "Bob", "b@x.com", "", "hash")
	if err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	startsAt := time.Now().Add(24 * time.Hour)

	if _, err := f.bookings.Create(f.tenant.ID, f.customer.ID, f.service.ID, nil, startsAt, startsAt.Add(time.Hour), ""); err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if _, err := f.bookings.Create(f.tenant.ID, other.ID, f.service.ID, nil, startsAt, startsAt.Add(time.Hour), ""); err != nil {
		t.Fatalf("create booking: %v", err)
	}

	mine, err := f.bookings.ListByCustomer(f.tenant.ID, f.customer.ID)
	if err != nil {
		t.Fatalf("list by customer: %v", err)
	}
	if len(mine) != 1 {
		t.Errorf("len = %d, want 1", len(mine))
	}
}

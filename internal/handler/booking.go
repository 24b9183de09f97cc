package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/takasakimo/kirei/internal/auth"
	"github.com/takasakimo/kirei/internal/email"
	"github.com/takasakimo/kirei/internal/model"
	"github.com/takasakimo/kirei/internal/store"
	ws "github.com/takasakimo/kirei/internal/websocket"
)

type BookingHandler struct {
	bookings  *store.BookingStore
	services  *store.ServiceStore
	staff     *store.StaffStore
	customers *store.CustomerStore
	tenants   *store.TenantStore
	hub       *ws.Hub
	email     *email.Client
	logger    *slog.Logger
}

func NewBookingHandler(
	bs *store.BookingStore,
	sv *store.ServiceStore,
	st *store.StaffStore,
	cs *store.CustomerStore,
	ts *store.TenantStore,
	hub *ws.Hub,
	ec *email.Client,
	logger *slog.Logger,
) *BookingHandler {
	return &BookingHandler{
		bookings:  bs,
		services:  sv,
		staff:     st,
		customers: cs,
		tenants:   ts,
		hub:       hub,
		email:     ec,
		logger:    logger,
	}
}

// Create books an appointment for the authenticated customer. The tenant and
// customer come from the session; the body only chooses what and when.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	tenantID := ac.TenantID

	var req struct {
		ServiceID int64  `json:"service_id"`
		StaffID   *int64 `json:"staff_id"`
		StartsAt  string `json:"starts_at"`
		Note      string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "starts_at must be RFC 3339")
		return
	}
	if startsAt.Before(time.Now()) {
		writeError(w, http.StatusBadRequest, "starts_at must be in the future")
		return
	}

	service, err := h.services.GetByID(tenantID, req.ServiceID)
	if err != nil {
		h.logger.Error("get service", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if service == nil || !service.IsActive {
		writeError(w, http.StatusBadRequest, "unknown service")
		return
	}

	endsAt := startsAt.Add(time.Duration(service.DurationMin) * time.Minute)

	if req.StaffID != nil {
		stylist, err := h.staff.GetByID(tenantID, *req.StaffID)
		if err != nil {
			h.logger.Error("get staff", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if stylist == nil || !stylist.IsActive {
			writeError(w, http.StatusBadRequest, "unknown staff member")
			return
		}
		overlap, err := h.bookings.CountStaffOverlap(tenantID, *req.StaffID, startsAt, endsAt)
		if err != nil {
			h.logger.Error("check overlap", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if overlap > 0 {
			writeError(w, http.StatusConflict, "staff member is already booked for that time")
			return
		}
	}

	booking, err := h.bookings.Create(tenantID, ac.ActorID, service.ID, req.StaffID, startsAt, endsAt, req.Note)
	if err != nil {
		h.logger.Error("create booking", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.hub.Broadcast(tenantID, ws.NewMessage("booking", "created", booking.ID, map[string]any{
		"starts_at": booking.StartsAt,
		"service":   service.Name,
	}))
	h.notify(booking, false)

	writeJSON(w, http.StatusCreated, booking)
}

// ListMine returns the authenticated customer's own bookings.
func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	bookings, err := h.bookings.ListByCustomer(ac.TenantID, ac.ActorID)
	if err != nil {
		h.logger.Error("list bookings", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

// Cancel lets a customer cancel their own future booking.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	booking, err := h.bookings.GetByID(ac.TenantID, id)
	if err != nil {
		h.logger.Error("get booking", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	// A booking of another customer in the same salon is not the caller's to
	// see; report it exactly like a missing one.
	if booking == nil || booking.CustomerID != ac.ActorID {
		writeError(w, http.StatusNotFound, "booking not found")
		return
	}
	if booking.Status.Terminal() {
		writeError(w, http.StatusConflict, "booking is already "+string(booking.Status))
		return
	}

	updated, err := h.bookings.UpdateStatus(ac.TenantID, id, model.BookingCancelled)
	if err != nil {
		h.logger.Error("cancel booking", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.hub.Broadcast(ac.TenantID, ws.NewMessage("booking", "cancelled", updated.ID, nil))
	h.notify(updated, true)

	writeJSON(w, http.StatusOK, updated)
}

// AdminList returns the tenant's bookings in a date window (default: the
// coming week).
func (h *BookingHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	tenantID := auth.TenantID(r.Context())

	from := time.Now().Truncate(24 * time.Hour)
	to := from.Add(7 * 24 * time.Hour)
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "from must be RFC 3339")
			return
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "to must be RFC 3339")
			return
		}
		to = parsed
	}

	bookings, err := h.bookings.ListByTenant(tenantID, from, to)
	if err != nil {
		h.logger.Error("list bookings", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

// AdminUpdateStatus moves a booking through its lifecycle
// (booked → done | cancelled | no_show).
func (h *BookingHandler) AdminUpdateStatus(w http.ResponseWriter, r *http.Request) {
	tenantID := auth.TenantID(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	var req struct {
		Status model.BookingStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, "status must be one of booked, done, cancelled, no_show")
		return
	}

	booking, err := h.bookings.GetByID(tenantID, id)
	if err != nil {
		h.logger.Error("get booking", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if booking == nil {
		writeError(w, http.StatusNotFound, "booking not found")
		return
	}
	if booking.Status.Terminal() && req.Status != booking.Status {
		writeError(w, http.StatusConflict, "booking is already "+string(booking.Status))
		return
	}

	updated, err := h.bookings.UpdateStatus(tenantID, id, req.Status)
	if err != nil {
		h.logger.Error("update booking status", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.hub.Broadcast(tenantID, ws.NewMessage("booking", string(req.Status), updated.ID, nil))
	if req.Status == model.BookingCancelled {
		h.notify(updated, true)
	}

	writeJSON(w, http.StatusOK, updated)
}

// notify emails the customer about a confirmed or cancelled booking.
// Best-effort: failures are logged and never fail the request.
func (h *BookingHandler) notify(b *model.Booking, cancelled bool) {
	if h.email == nil || !h.email.Configured() {
		return
	}

	customer, err := h.customers.GetByID(b.CustomerID)
	if err != nil || customer == nil || customer.Email == "" {
		return
	}
	tenant, err := h.tenants.GetByID(b.TenantID)
	if err != nil || tenant == nil {
		return
	}

	if cancelled {
		err = h.email.SendBookingCancellation(customer.Email, tenant.SalonName, b)
	} else {
		err = h.email.SendBookingConfirmation(customer.Email, tenant.SalonName, b)
	}
	if err != nil {
		h.logger.Warn("booking email", "booking_id", b.ID, "error", err)
	}
}

package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/takasakimo/kirei/internal/auth"
	"github.com/takasakimo/kirei/internal/email"
	"github.com/takasakimo/kirei/internal/handler"
	"github.com/takasakimo/kirei/internal/middleware"
	"github.com/takasakimo/kirei/internal/store"
	ws "github.com/takasakimo/kirei/internal/websocket"
)

// Config holds the knobs main reads from the environment.
type Config struct {
	SecureCookies bool
	PostmarkToken string
	FromEmail     string
}

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	authSvc      *auth.Service
	sessionStore *store.SessionStore
	adminStore   *store.AdminStore
	tenantStore  *store.TenantStore
	authH        *handler.AuthHandler
	tenantH      *handler.TenantHandler
	customerH    *handler.CustomerHandler
	catalogH     *handler.CatalogHandler
	bookingH     *handler.BookingHandler
	logger       *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	sessionStore := store.NewSessionStore(db)
	tenantStore := store.NewTenantStore(db)
	customerStore := store.NewCustomerStore(db)
	adminStore := store.NewAdminStore(db)
	serviceStore := store.NewServiceStore(db)
	staffStore := store.NewStaffStore(db)
	bookingStore := store.NewBookingStore(db)

	authSvc := auth.NewService(sessionStore, tenantStore, customerStore, adminStore, logger.With("component", "auth"))

	var emailClient *email.Client
	if cfg.PostmarkToken != "" {
		emailClient = email.NewClient(cfg.PostmarkToken, cfg.FromEmail)
	}

	return &Server{
		db:           db,
		hub:          hub,
		authSvc:      authSvc,
		sessionStore: sessionStore,
		adminStore:   adminStore,
		tenantStore:  tenantStore,
		authH:        handler.NewAuthHandler(authSvc, cfg.SecureCookies, logger.With("component", "auth_handler")),
		tenantH:      handler.NewTenantHandler(tenantStore, adminStore, sessionStore, logger.With("component", "tenant")),
		customerH:    handler.NewCustomerHandler(tenantStore, customerStore, logger.With("component", "customer")),
		catalogH:     handler.NewCatalogHandler(serviceStore, staffStore, logger.With("component", "catalog")),
		bookingH:     handler.NewBookingHandler(bookingStore, serviceStore, staffStore, customerStore, tenantStore, hub, emailClient, logger.With("component", "booking")),
		logger:       logger,
	}
}

// SessionStore returns the session store for the expiry sweep in main.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// AdminStore returns the admin store for the super-admin bootstrap in main.
func (s *Server) AdminStore() *store.AdminStore {
	return s.adminStore
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Public routes — no session, tenant comes from the salon code when needed
	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /api/tenants/{code}", s.tenantH.Lookup)
	mux.HandleFunc("POST /api/tenants/{code}/customers", s.customerH.Signup)
	mux.HandleFunc("POST /api/auth/customer/login", s.authH.CustomerLogin)
	mux.HandleFunc("POST /api/auth/staff/login", s.authH.StaffLogin)

	// Logout is public so a second call after the session is gone still
	// succeeds instead of bouncing off the auth middleware.
	mux.HandleFunc("POST /api/auth/customer/logout", s.authH.CustomerLogout)
	mux.HandleFunc("POST /api/auth/staff/logout", s.authH.StaffLogout)

	// Customer routes — customer cookie, tenant bound by the session
	customerMux := http.NewServeMux()
	customerMux.HandleFunc("GET /api/me", s.authH.Me)
	customerMux.HandleFunc("GET /api/services", s.catalogH.ListServices)
	customerMux.HandleFunc("GET /api/staff", s.catalogH.ListStaff)
	customerMux.HandleFunc("GET /api/bookings", s.bookingH.ListMine)
	customerMux.HandleFunc("POST /api/bookings", s.bookingH.Create)
	customerMux.HandleFunc("DELETE /api/bookings/{id}", s.bookingH.Cancel)
	requireCustomer := middleware.RequireCustomer(s.authSvc)
	for _, route := range []string{
		"GET /api/me",
		"GET /api/services",
		"GET /api/staff",
		"GET /api/bookings",
		"POST /api/bookings",
		"DELETE /api/bookings/{id}",
	} {
		mux.Handle(route, requireCustomer(customerMux))
	}

	// Staff routes — staff cookie; admins are tenant-bound, super-admins must
	// name a tenant explicitly
	staffMux := http.NewServeMux()
	staffMux.HandleFunc("GET /api/admin/me", s.authH.Me)
	staffMux.HandleFunc("GET /api/admin/services", s.catalogH.AdminListServices)
	staffMux.HandleFunc("POST /api/admin/services", s.catalogH.CreateService)
	staffMux.HandleFunc("PUT /api/admin/services/{id}", s.catalogH.UpdateService)
	staffMux.HandleFunc("DELETE /api/admin/services/{id}", s.catalogH.DeleteService)
	staffMux.HandleFunc("GET /api/admin/staff", s.catalogH.AdminListStaff)
	staffMux.HandleFunc("POST /api/admin/staff", s.catalogH.CreateStaff)
	staffMux.HandleFunc("PUT /api/admin/staff/{id}", s.catalogH.UpdateStaff)
	staffMux.HandleFunc("GET /api/admin/customers", s.customerH.List)
	staffMux.HandleFunc("GET /api/admin/bookings", s.bookingH.AdminList)
	staffMux.HandleFunc("PUT /api/admin/bookings/{id}/status", s.bookingH.AdminUpdateStatus)
	staffMux.HandleFunc("GET /api/admin/ws", ws.Handler(s.hub, s.logger.With("component", "websocket")))
	requireStaff := middleware.RequireStaff(s.authSvc)
	for _, route := range []string{
		"GET /api/admin/me",
		"GET /api/admin/services",
		"POST /api/admin/services",
		"PUT /api/admin/services/{id}",
		"DELETE /api/admin/services/{id}",
		"GET /api/admin/staff",
		"POST /api/admin/staff",
		"PUT /api/admin/staff/{id}",
		"GET /api/admin/customers",
		"GET /api/admin/bookings",
		"PUT /api/admin/bookings/{id}/status",
		"GET /api/admin/ws",
	} {
		mux.Handle(route, requireStaff(staffMux))
	}

	// Platform routes — super-admin only, no tenant scope
	platformMux := http.NewServeMux()
	platformMux.HandleFunc("GET /api/admin/tenants", s.tenantH.List)
	platformMux.HandleFunc("POST /api/admin/tenants", s.tenantH.Create)
	platformMux.HandleFunc("PUT /api/admin/tenants/{id}", s.tenantH.Update)
	platformMux.HandleFunc("POST /api/admin/admins", s.tenantH.CreateAdmin)
	requireSuperAdmin := middleware.RequireSuperAdmin(s.authSvc)
	for _, route := range []string{
		"GET /api/admin/tenants",
		"POST /api/admin/tenants",
		"PUT /api/admin/tenants/{id}",
		"POST /api/admin/admins",
	} {
		mux.Handle(route, requireSuperAdmin(platformMux))
	}

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/takasakimo/kirei/internal/auth"
	"github.com/takasakimo/kirei/internal/database"
	"github.com/takasakimo/kirei/internal/logging"
	"github.com/takasakimo/kirei/internal/model"
	"github.com/takasakimo/kirei/internal/server"
	"github.com/takasakimo/kirei/internal/store"
)

const sessionSweepInterval = time.Hour

func main() {
	logger := logging.Setup(os.Getenv("KIREI_LOG_LEVEL"), os.Getenv("KIREI_LOG_FORMAT"))

	port := os.Getenv("KIREI_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("KIREI_DB_PATH")
	if dbPath == "" {
		dbPath = "kirei.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	cfg := server.Config{
		SecureCookies: os.Getenv("KIREI_SECURE_COOKIES") == "true",
		PostmarkToken: os.Getenv("KIREI_POSTMARK_TOKEN"),
		FromEmail:     os.Getenv("KIREI_FROM_EMAIL"),
	}

	srv := server.New(db, cfg, logger)

	if err := bootstrapSuperAdmin(srv.AdminStore(), logger); err != nil {
		logger.Error("bootstrap super admin", "error", err)
		os.Exit(1)
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sweepSessions(sweepCtx, srv.SessionStore(), logger.With("component", "session_sweep"))

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("kirei listening", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "error", err)
		os.Exit(1)
	}
}

// bootstrapSuperAdmin creates the first platform operator from the
// environment when none exists yet, so a fresh deployment can be reached.
func bootstrapSuperAdmin(admins *store.AdminStore, logger *slog.Logger) error {
	count, err := admins.CountSuperAdmins()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	username := os.Getenv("KIREI_SUPERADMIN_USER")
	password := os.Getenv("KIREI_SUPERADMIN_PASSWORD")
	if username == "" || password == "" {
		logger.Warn("no super admin exists and KIREI_SUPERADMIN_USER/PASSWORD are unset; platform endpoints are unreachable")
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if _, err := admins.Create(username, hash, model.ActorSuperAdmin, nil); err != nil {
		return err
	}
	logger.Info("created bootstrap super admin", "username", username)
	return nil
}

// sweepSessions periodically removes expired session rows. Correctness never
// depends on the sweep; authentication checks expiry on every lookup.
func sweepSessions(ctx context.Context, sessions *store.SessionStore, logger *slog.Logger) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := sessions.DeleteExpired()
			if err != nil {
				logger.Warn("sweep", "error", err)
				continue
			}
			if n > 0 {
				logger.Debug("sweep", "deleted", n)
			}
		case <-ctx.Done():
			return
		}
	}
}

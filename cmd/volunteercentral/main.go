package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cltvc/volunteercentral/internal/database"
	"github.com/cltvc/volunteercentral/internal/email"
	"github.com/cltvc/volunteercentral/internal/logging"
	"github.com/cltvc/volunteercentral/internal/server"
	"github.com/cltvc/volunteercentral/internal/token"
)

func main() {
	logger := logging.Setup(os.Getenv("VC_LOG_LEVEL"), os.Getenv("VC_LOG_FORMAT"))

	port := os.Getenv("VC_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("VC_DB_PATH")
	if dbPath == "" {
		dbPath = "volunteercentral.db"
	}

	baseURL := os.Getenv("VC_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:" + port
	}

	// The signing secret has no default. Refusing to start beats issuing
	// tokens under a guessable key.
	secret := os.Getenv("VC_TOKEN_SECRET")
	if secret == "" {
		logger.Error("VC_TOKEN_SECRET is required")
		os.Exit(1)
	}
	tokens := token.NewService([]byte(secret))

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	emailClient, err := email.NewClient(email.Config{
		Host:        os.Getenv("VC_SMTP_HOST"),
		User:        os.Getenv("VC_SMTP_USER"),
		Password:    os.Getenv("VC_SMTP_PASSWORD"),
		FromAddress: os.Getenv("VC_SMTP_FROM"),
		SkipVerify:  os.Getenv("VC_SMTP_SKIP_VERIFY") == "true",
	})
	if err != nil {
		logger.Error("configure email client", "error", err)
		os.Exit(1)
	}
	if !emailClient.Enabled() {
		logger.Warn("email sending disabled: set VC_SMTP_HOST, VC_SMTP_USER, VC_SMTP_PASSWORD, VC_SMTP_FROM")
	}

	srv := server.New(db, tokens, emailClient, baseURL, logger)

	// Background housekeeping: expired sessions and stale rate limit
	// entries.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if n, err := srv.SessionStore().DeleteExpired(); err != nil {
				logger.Error("delete expired sessions", "error", err)
			} else if n > 0 {
				logger.Info("deleted expired sessions", "count", n)
			}
			srv.RateLimiter().Cleanup()
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("volunteer central listening", "addr", httpServer.Addr, "base_url", baseURL)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
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
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

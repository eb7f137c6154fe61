package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/cltvc/volunteercentral/internal/auth"
	"github.com/cltvc/volunteercentral/internal/email"
	"github.com/cltvc/volunteercentral/internal/handler"
	"github.com/cltvc/volunteercentral/internal/identity"
	"github.com/cltvc/volunteercentral/internal/middleware"
	"github.com/cltvc/volunteercentral/internal/store"
	"github.com/cltvc/volunteercentral/internal/token"
)

type Server struct {
	db             *sql.DB
	authH          *handler.AuthHandler
	categoryH      *handler.CategoryHandler
	opportunityH   *handler.OpportunityHandler
	registrationH  *handler.RegistrationHandler
	volunteerLogH  *handler.VolunteerLogHandler
	adminH         *handler.AdminHandler
	users          *identity.SQLiteProvider
	sessionStore   *store.SessionStore
	rateLimiter    *middleware.RateLimiter
	logger         *slog.Logger
}

func New(db *sql.DB, tokens *token.Service, emailClient *email.Client, baseURL string, logger *slog.Logger) *Server {
	users := identity.NewSQLiteProvider(db)
	sessionStore := store.NewSessionStore(db)
	categoryStore := store.NewCategoryStore(db)
	opportunityStore := store.NewOpportunityStore(db)
	registrationStore := store.NewRegistrationStore(db)
	volunteerLogStore := store.NewVolunteerLogStore(db)
	emailLogStore := store.NewEmailLogStore(db)

	mailer := email.NewMailer(emailClient, emailLogStore, baseURL, logger.With("component", "mailer"))
	flows := auth.NewFlows(tokens, users, mailer, sessionStore, logger.With("component", "auth"))

	return &Server{
		db:            db,
		authH:         handler.NewAuthHandler(flows, logger.With("component", "auth_handler")),
		categoryH:     handler.NewCategoryHandler(categoryStore, logger.With("component", "category")),
		opportunityH:  handler.NewOpportunityHandler(opportunityStore, logger.With("component", "opportunity")),
		registrationH: handler.NewRegistrationHandler(registrationStore, opportunityStore, users, mailer, logger.With("component", "registration")),
		volunteerLogH: handler.NewVolunteerLogHandler(volunteerLogStore, logger.With("component", "volunteer_log")),
		adminH:        handler.NewAdminHandler(emailLogStore, mailer, logger.With("component", "admin")),
		users:         users,
		sessionStore:  sessionStore,
		rateLimiter:   middleware.NewRateLimiter(),
		logger:        logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required). The email-sending endpoints are
	// rate limited by client IP.
	outerMux.HandleFunc("POST /api/auth/signup", s.rateLimitedHandler(s.authH.Signup))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("POST /api/auth/magic-link", s.rateLimitedHandler(s.authH.MagicLink))
	outerMux.HandleFunc("POST /api/auth/reset-password", s.rateLimitedHandler(s.authH.PasswordReset))
	outerMux.HandleFunc("POST /api/auth/resend-verification", s.rateLimitedHandler(s.authH.ResendVerification))
	outerMux.HandleFunc("POST /auth/reset-password/confirm", s.authH.ResetPasswordConfirm)
	outerMux.HandleFunc("GET /auth/verify", s.authH.Verify)
	outerMux.HandleFunc("GET /auth/callback", s.authH.Callback)

	// Opportunity browsing is public.
	outerMux.HandleFunc("GET /api/opportunities", s.opportunityH.List)
	outerMux.HandleFunc("GET /api/opportunities/{id}", s.opportunityH.Get)
	outerMux.HandleFunc("GET /api/categories", s.categoryH.List)

	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.users)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/me", s.authH.Me)

	mux.HandleFunc("POST /api/opportunities/{id}/register", s.registrationH.Register)
	mux.HandleFunc("GET /api/registrations", s.registrationH.ListMine)
	mux.HandleFunc("DELETE /api/registrations/{id}", s.registrationH.Cancel)

	mux.HandleFunc("POST /api/volunteer-logs", s.volunteerLogH.Create)
	mux.HandleFunc("GET /api/volunteer-logs", s.volunteerLogH.ListMine)
	mux.HandleFunc("GET /api/volunteer-logs/hours", s.volunteerLogH.Hours)

	// Admin routes
	adminMux := http.NewServeMux()
	adminMux.HandleFunc("POST /api/admin/categories", s.categoryH.Create)
	adminMux.HandleFunc("PUT /api/admin/categories/{id}", s.categoryH.Update)
	adminMux.HandleFunc("DELETE /api/admin/categories/{id}", s.categoryH.Delete)

	adminMux.HandleFunc("POST /api/admin/opportunities", s.opportunityH.Create)
	adminMux.HandleFunc("PUT /api/admin/opportunities/{id}", s.opportunityH.Update)
	adminMux.HandleFunc("DELETE /api/admin/opportunities/{id}", s.opportunityH.Delete)
	adminMux.HandleFunc("GET /api/admin/opportunities/{id}/registrations", s.registrationH.ListByOpportunity)
	adminMux.HandleFunc("PUT /api/admin/registrations/{id}/status", s.registrationH.UpdateStatus)

	adminMux.HandleFunc("GET /api/admin/volunteer-logs", s.volunteerLogH.ListByStatus)
	adminMux.HandleFunc("POST /api/admin/volunteer-logs/{id}/review", s.volunteerLogH.Review)

	adminMux.HandleFunc("GET /api/admin/email-logs", s.adminH.ListEmailLogs)
	adminMux.HandleFunc("POST /api/admin/email-test", s.adminH.TestEmail)

	mux.Handle("/api/admin/", middleware.RequireAdmin(adminMux))
}

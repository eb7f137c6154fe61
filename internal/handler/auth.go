package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/cltvc/volunteercentral/internal/auth"
	"github.com/cltvc/volunteercentral/internal/middleware"
	"github.com/cltvc/volunteercentral/internal/model"
)

const sessionMaxAge = 30 * 24 * 60 * 60 // matches session row expiry

type AuthHandler struct {
	flows  *auth.Flows
	logger *slog.Logger
}

func NewAuthHandler(flows *auth.Flows, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{flows: flows, logger: logger}
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email and password are required"})
		return
	}

	res := h.flows.SignUp(r.Context(), req.Email, req.Password, strings.TrimSpace(req.FullName))
	writeResult(w, res)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	res, sess := h.flows.PasswordLogin(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if !res.Success {
		writeJSON(w, http.StatusUnauthorized, res)
		return
	}

	h.setSessionCookie(w, r, sess)
	writeJSON(w, http.StatusOK, res)
}

type emailRequest struct {
	Email string `json:"email"`
}

// MagicLink handles a passwordless sign-in request. The response is the
// same whether or not the address belongs to an account.
func (h *AuthHandler) MagicLink(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	res := h.flows.RequestMagicLink(r.Context(), strings.TrimSpace(req.Email))
	writeResult(w, res)
}

// PasswordReset handles a reset request. Same anti-enumeration contract as
// MagicLink.
func (h *AuthHandler) PasswordReset(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	res := h.flows.RequestPasswordReset(r.Context(), strings.TrimSpace(req.Email))
	writeResult(w, res)
}

func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	res := h.flows.ResendVerification(r.Context(), strings.TrimSpace(req.Email))
	writeResult(w, res)
}

// Verify consumes a signup-verification link.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	res := h.flows.VerifyEmail(r.Context(), r.URL.Query().Get("token"))
	writeResult(w, res)
}

// Callback consumes a magic-link token from the emailed link. On success
// the session cookie is set and the browser is sent to the dashboard.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	res, sess := h.flows.MagicLinkLogin(r.Context(), r.URL.Query().Get("token"))
	if !res.Success {
		http.Redirect(w, r, "/login?error="+url.QueryEscape(res.Message), http.StatusSeeOther)
		return
	}

	h.setSessionCookie(w, r, sess)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

type resetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (h *AuthHandler) ResetPasswordConfirm(w http.ResponseWriter, r *http.Request) {
	var req resetConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	res := h.flows.ResetPassword(r.Context(), req.Token, req.NewPassword)
	writeResult(w, res)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		h.flows.Logout(r.Context(), cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Me returns the authenticated user's identity from the session.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id": ac.UserID,
		"email":   ac.Email,
		"role":    ac.Role,
	})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, r *http.Request, sess *model.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
}

// writeResult maps a flow outcome to a status code: failures are client
// errors, never 500s, so the body's generic message is all a caller sees.
func writeResult(w http.ResponseWriter, res auth.Result) {
	if res.Success {
		writeJSON(w, http.StatusOK, res)
		return
	}
	writeJSON(w, http.StatusBadRequest, res)
}

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/mail"
	"strconv"
	"time"

	"github.com/cltvc/volunteercentral/internal/email"
	"github.com/cltvc/volunteercentral/internal/model"
	"github.com/cltvc/volunteercentral/internal/store"
)

const defaultEmailLogLimit = 50

// AdminHandler serves the admin console's email tooling: the delivery log
// and a template tester that sends real mail with sample data.
type AdminHandler struct {
	emailLogs *store.EmailLogStore
	mailer    *email.Mailer
	logger    *slog.Logger
}

func NewAdminHandler(els *store.EmailLogStore, mailer *email.Mailer, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{emailLogs: els, mailer: mailer, logger: logger}
}

func (h *AdminHandler) ListEmailLogs(w http.ResponseWriter, r *http.Request) {
	limit := defaultEmailLogLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	entries, err := h.emailLogs.ListRecent(limit)
	if err != nil {
		h.logger.Error("list email logs", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list email logs"})
		return
	}
	if entries == nil {
		entries = []*model.EmailLog{}
	}
	writeJSON(w, http.StatusOK, entries)
}

type emailTestRequest struct {
	Recipient string `json:"recipient"`
	Template  string `json:"template"`
}

// TestEmail sends the named template to the given address with sample
// data, so an admin can inspect rendering and delivery end to end.
func (h *AdminHandler) TestEmail(w http.ResponseWriter, r *http.Request) {
	var req emailTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if _, err := mail.ParseAddress(req.Recipient); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid recipient address"})
		return
	}
	if !h.mailer.Enabled() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "email sending is not configured"})
		return
	}

	ctx := r.Context()
	var err error
	switch req.Template {
	case email.TemplateVerification:
		err = h.mailer.SendVerification(ctx, req.Recipient, "Test Volunteer", "sample-token")
	case email.TemplateMagicLink:
		err = h.mailer.SendMagicLink(ctx, req.Recipient, "sample-token")
	case email.TemplatePasswordReset:
		err = h.mailer.SendPasswordReset(ctx, req.Recipient, "sample-token")
	case email.TemplateRegistrationConfirmation:
		err = h.mailer.SendRegistrationConfirmation(ctx, req.Recipient, "Test Volunteer", &model.Opportunity{
			Title:    "Community Garden Workday",
			Date:     time.Now().AddDate(0, 0, 7),
			Location: "Main Street Community Garden",
		})
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown template"})
		return
	}

	if err != nil {
		h.logger.Error("test email", "template", req.Template, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "delivery failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent", "template": req.Template})
}

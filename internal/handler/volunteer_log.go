package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cltvc/volunteercentral/internal/auth"
	"github.com/cltvc/volunteercentral/internal/model"
	"github.com/cltvc/volunteercentral/internal/store"
)

type VolunteerLogHandler struct {
	logs   *store.VolunteerLogStore
	logger *slog.Logger
}

func NewVolunteerLogHandler(ls *store.VolunteerLogStore, logger *slog.Logger) *VolunteerLogHandler {
	return &VolunteerLogHandler{logs: ls, logger: logger}
}

type volunteerLogRequest struct {
	OpportunityID *int64  `json:"opportunity_id"`
	Hours         float64 `json:"hours"`
	Date          string  `json:"date"` // RFC 3339
	Description   string  `json:"description"`
}

// Create records a pending hours entry for the authenticated user.
func (h *VolunteerLogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req volunteerLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if req.Hours <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "hours must be positive"})
		return
	}
	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be RFC 3339"})
		return
	}

	entry, err := h.logs.Create(auth.UserID(r.Context()), req.OpportunityID, req.Hours, date, strings.TrimSpace(req.Description))
	if err != nil {
		h.logger.Error("create volunteer log", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to log hours"})
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// ListMine returns the authenticated user's hour entries.
func (h *VolunteerLogHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	entries, err := h.logs.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list volunteer logs", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list hours"})
		return
	}
	if entries == nil {
		entries = []*model.VolunteerLog{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// Hours returns the authenticated user's approved hour total.
func (h *VolunteerLogHandler) Hours(w http.ResponseWriter, r *http.Request) {
	total, err := h.logs.ApprovedHours(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("sum approved hours", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to total hours"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"approved_hours": total})
}

// ListByStatus is the admin review queue, defaulting to pending entries.
func (h *VolunteerLogHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	status := model.VolunteerLogPending
	if v := r.URL.Query().Get("status"); v != "" {
		parsed, err := model.ParseVolunteerLogStatus(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
			return
		}
		status = parsed
	}

	entries, err := h.logs.ListByStatus(status)
	if err != nil {
		h.logger.Error("list volunteer logs", "status", status, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list hours"})
		return
	}
	if entries == nil {
		entries = []*model.VolunteerLog{}
	}
	writeJSON(w, http.StatusOK, entries)
}

type reviewRequest struct {
	Status string `json:"status"` // approved or rejected
}

// Review approves or rejects a pending entry, stamping the reviewing admin.
func (h *VolunteerLogHandler) Review(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	status, err := model.ParseVolunteerLogStatus(req.Status)
	if err != nil || status == model.VolunteerLogPending {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status must be approved or rejected"})
		return
	}

	entry, err := h.logs.Review(id, auth.UserID(r.Context()), status)
	if err != nil {
		h.logger.Error("review volunteer log", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to review entry"})
		return
	}
	if entry == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "entry not found"})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

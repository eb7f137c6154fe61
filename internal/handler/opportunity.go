package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cltvc/volunteercentral/internal/model"
	"github.com/cltvc/volunteercentral/internal/store"
)

type OpportunityHandler struct {
	opportunities *store.OpportunityStore
	logger        *slog.Logger
}

func NewOpportunityHandler(os *store.OpportunityStore, logger *slog.Logger) *OpportunityHandler {
	return &OpportunityHandler{opportunities: os, logger: logger}
}

type opportunityRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CategoryID  *int64 `json:"category_id"`
	Location    string `json:"location"`
	Date        string `json:"date"` // RFC 3339
	Spots       int    `json:"spots"`
	Featured    bool   `json:"featured"`
}

func (r opportunityRequest) validate() (time.Time, string) {
	if strings.TrimSpace(r.Title) == "" {
		return time.Time{}, "title is required"
	}
	if r.Spots < 0 {
		return time.Time{}, "spots must be non-negative"
	}
	date, err := time.Parse(time.RFC3339, r.Date)
	if err != nil {
		return time.Time{}, "date must be RFC 3339"
	}
	return date, ""
}

func (h *OpportunityHandler) List(w http.ResponseWriter, r *http.Request) {
	var f store.ListFilter
	q := r.URL.Query()
	if v := q.Get("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category_id"})
			return
		}
		f.CategoryID = id
	}
	f.UpcomingOnly = q.Get("upcoming") == "true"
	f.FeaturedOnly = q.Get("featured") == "true"

	opps, err := h.opportunities.List(f)
	if err != nil {
		h.logger.Error("list opportunities", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list opportunities"})
		return
	}
	if opps == nil {
		opps = []*model.Opportunity{}
	}
	writeJSON(w, http.StatusOK, opps)
}

func (h *OpportunityHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	opp, err := h.opportunities.GetByID(id)
	if err != nil {
		h.logger.Error("get opportunity", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get opportunity"})
		return
	}
	if opp == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "opportunity not found"})
		return
	}
	writeJSON(w, http.StatusOK, opp)
}

func (h *OpportunityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req opportunityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	date, errMsg := req.validate()
	if errMsg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": errMsg})
		return
	}

	opp, err := h.opportunities.Create(strings.TrimSpace(req.Title), req.Description, req.CategoryID, req.Location, date, req.Spots, req.Featured)
	if err != nil {
		h.logger.Error("create opportunity", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create opportunity"})
		return
	}
	writeJSON(w, http.StatusCreated, opp)
}

func (h *OpportunityHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.opportunities.GetByID(id)
	if err != nil {
		h.logger.Error("get opportunity", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get opportunity"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "opportunity not found"})
		return
	}

	var req opportunityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	date, errMsg := req.validate()
	if errMsg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": errMsg})
		return
	}

	opp, err := h.opportunities.Update(id, strings.TrimSpace(req.Title), req.Description, req.CategoryID, req.Location, date, req.Spots, req.Featured)
	if err != nil {
		h.logger.Error("update opportunity", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update opportunity"})
		return
	}
	writeJSON(w, http.StatusOK, opp)
}

func (h *OpportunityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.opportunities.Delete(id); err != nil {
		h.logger.Error("delete opportunity", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete opportunity"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

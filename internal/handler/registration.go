package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cltvc/volunteercentral/internal/auth"
	"github.com/cltvc/volunteercentral/internal/model"
	"github.com/cltvc/volunteercentral/internal/store"
)

// ConfirmationMailer sends the registration confirmation email.
// Implemented by email.Mailer.
type ConfirmationMailer interface {
	Enabled() bool
	SendRegistrationConfirmation(ctx context.Context, to, name string, opp *model.Opportunity) error
}

// UserFinder resolves the registering user's name for the confirmation
// email. Implemented by identity.SQLiteProvider.
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

type RegistrationHandler struct {
	registrations *store.RegistrationStore
	opportunities *store.OpportunityStore
	users         UserFinder
	mailer        ConfirmationMailer
	logger        *slog.Logger
}

func NewRegistrationHandler(rs *store.RegistrationStore, os *store.OpportunityStore, users UserFinder, mailer ConfirmationMailer, logger *slog.Logger) *RegistrationHandler {
	return &RegistrationHandler{
		registrations: rs,
		opportunities: os,
		users:         users,
		mailer:        mailer,
		logger:        logger,
	}
}

// Register signs the authenticated user up for an opportunity and sends a
// confirmation email. The registration stands even if the email fails.
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	oppID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	userID := auth.UserID(r.Context())

	opp, err := h.opportunities.GetByID(oppID)
	if err != nil {
		h.logger.Error("get opportunity", "id", oppID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to register"})
		return
	}
	if opp == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "opportunity not found"})
		return
	}
	if opp.Spots > 0 && opp.SpotsFilled >= opp.Spots {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "opportunity is full"})
		return
	}

	existing, err := h.registrations.GetByUserAndOpportunity(userID, oppID)
	if err != nil {
		h.logger.Error("check registration", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to register"})
		return
	}
	if existing != nil && existing.Status != model.RegistrationCancelled {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "already registered"})
		return
	}

	var reg *model.Registration
	if existing != nil {
		reg, err = h.registrations.UpdateStatus(existing.ID, model.RegistrationConfirmed)
	} else {
		reg, err = h.registrations.Create(userID, oppID)
	}
	if err != nil {
		h.logger.Error("create registration", "user_id", userID, "opportunity_id", oppID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to register"})
		return
	}

	h.sendConfirmation(r.Context(), userID, opp)
	writeJSON(w, http.StatusCreated, reg)
}

func (h *RegistrationHandler) sendConfirmation(ctx context.Context, userID int64, opp *model.Opportunity) {
	if !h.mailer.Enabled() {
		return
	}
	user, err := h.users.FindByID(ctx, userID)
	if err != nil {
		h.logger.Error("confirmation lookup", "user_id", userID, "error", err)
		return
	}
	if err := h.mailer.SendRegistrationConfirmation(ctx, user.Email, user.FullName, opp); err != nil {
		h.logger.Error("send registration confirmation", "user_id", userID, "error", err)
	}
}

// ListMine returns the authenticated user's registrations.
func (h *RegistrationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	regs, err := h.registrations.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list registrations", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list registrations"})
		return
	}
	if regs == nil {
		regs = []*model.Registration{}
	}
	writeJSON(w, http.StatusOK, regs)
}

// ListByOpportunity is the admin roster view for one opportunity.
func (h *RegistrationHandler) ListByOpportunity(w http.ResponseWriter, r *http.Request) {
	oppID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	regs, err := h.registrations.ListByOpportunity(oppID)
	if err != nil {
		h.logger.Error("list registrations", "opportunity_id", oppID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list registrations"})
		return
	}
	if regs == nil {
		regs = []*model.Registration{}
	}
	writeJSON(w, http.StatusOK, regs)
}

// UpdateStatus is the admin override for a registration's lifecycle.
func (h *RegistrationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	status, err := model.ParseRegistrationStatus(req.Status)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	reg, err := h.registrations.UpdateStatus(id, status)
	if err != nil {
		h.logger.Error("update registration status", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update registration"})
		return
	}
	if reg == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "registration not found"})
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

// Cancel marks the authenticated user's registration cancelled. Users can
// only cancel their own rows.
func (h *RegistrationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	reg, err := h.registrations.GetByID(id)
	if err != nil {
		h.logger.Error("get registration", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to cancel"})
		return
	}
	if reg == nil || reg.UserID != auth.UserID(r.Context()) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "registration not found"})
		return
	}

	updated, err := h.registrations.UpdateStatus(id, model.RegistrationCancelled)
	if err != nil {
		h.logger.Error("cancel registration", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to cancel"})
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

package store

import (
	"testing"
	"time"

	"github.com/cltvc/volunteercentral/internal/model"
)

func TestRegistrationLifecycle(t *testing.T) {
	db := setupTestDB(t)
	os := NewOpportunityStore(db)
	rs := NewRegistrationStore(db)

	userID := insertTestUser(t, db, "volunteer@example.com")
	opp, err := os.Create("Shelter Shift", "", nil, "Uptown Shelter", time.Now().UTC().Add(24*time.Hour), 4, false)
	if err != nil {
		t.Fatalf("create opportunity: %v", err)
	}

	reg, err := rs.Create(userID, opp.ID)
	if err != nil {
		t.Fatalf("create registration: %v", err)
	}
	if reg.Status != model.RegistrationConfirmed {
		t.Errorf("status = %q, want confirmed", reg.Status)
	}

	// Duplicate registration violates the unique constraint.
	if _, err := rs.Create(userID, opp.ID); err == nil {
		t.Error("expected error registering twice")
	}

	found, err := rs.GetByUserAndOpportunity(userID, opp.ID)
	if err != nil {
		t.Fatalf("get by user and opportunity: %v", err)
	}
	if found == nil || found.ID != reg.ID {
		t.Fatalf("found = %v, want id %d", found, reg.ID)
	}

	byUser, err := rs.ListByUser(userID)
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(byUser) != 1 {
		t.Errorf("len(byUser) = %d, want 1", len(byUser))
	}

	cancelled, err := rs.UpdateStatus(reg.ID, model.RegistrationCancelled)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != model.RegistrationCancelled {
		t.Errorf("status = %q, want cancelled", cancelled.Status)
	}
}

func TestRegistrationMissing(t *testing.T) {
	db := setupTestDB(t)
	rs := NewRegistrationStore(db)

	reg, err := rs.GetByUserAndOpportunity(42, 42)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if reg != nil {
		t.Error("expected nil for missing registration")
	}
}

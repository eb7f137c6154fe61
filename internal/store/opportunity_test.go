package store

import (
	"testing"
	"time"

	"github.com/cltvc/volunteercentral/internal/model"
)

func TestCategorySeedData(t *testing.T) {
	db := setupTestDB(t)
	cs := NewCategoryStore(db)

	categories, err := cs.List()
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(categories) != 6 {
		t.Fatalf("expected 6 seed categories, got %d", len(categories))
	}
}

func TestOpportunityCRUD(t *testing.T) {
	db := setupTestDB(t)
	os := NewOpportunityStore(db)
	cs := NewCategoryStore(db)

	cat, err := cs.Create("Disaster Relief", "shield")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	date := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	opp, err := os.Create("Park Cleanup", "Bring gloves", &cat.ID, "Freedom Park", date, 20, true)
	if err != nil {
		t.Fatalf("create opportunity: %v", err)
	}
	if opp.Title != "Park Cleanup" {
		t.Errorf("title = %q, want %q", opp.Title, "Park Cleanup")
	}
	if opp.CategoryID == nil || *opp.CategoryID != cat.ID {
		t.Errorf("category_id = %v, want %d", opp.CategoryID, cat.ID)
	}
	if opp.SpotsFilled != 0 {
		t.Errorf("spots_filled = %d, want 0", opp.SpotsFilled)
	}

	got, err := os.GetByID(opp.ID)
	if err != nil {
		t.Fatalf("get opportunity: %v", err)
	}
	if got.Location != "Freedom Park" {
		t.Errorf("location = %q", got.Location)
	}

	updated, err := os.Update(opp.ID, "Park Cleanup Day", "Bring gloves and water", &cat.ID, "Freedom Park", date, 25, false)
	if err != nil {
		t.Fatalf("update opportunity: %v", err)
	}
	if updated.Spots != 25 {
		t.Errorf("spots = %d, want 25", updated.Spots)
	}
	if updated.Featured {
		t.Error("featured should be false after update")
	}

	if err := os.Delete(opp.ID); err != nil {
		t.Fatalf("delete opportunity: %v", err)
	}
	gone, err := os.GetByID(opp.ID)
	if err != nil {
		t.Fatalf("get deleted: %v", err)
	}
	if gone != nil {
		t.Error("expected nil after delete")
	}
}

func TestOpportunityListFilters(t *testing.T) {
	db := setupTestDB(t)
	os := NewOpportunityStore(db)
	cs := NewCategoryStore(db)

	cat, _ := cs.Create("Cleanup", "broom")
	past := time.Now().UTC().Add(-48 * time.Hour)
	future := time.Now().UTC().Add(48 * time.Hour)

	if _, err := os.Create("Old Drive", "", nil, "Uptown", past, 5, false); err != nil {
		t.Fatalf("create past: %v", err)
	}
	if _, err := os.Create("River Sweep", "", &cat.ID, "Riverside", future, 10, true); err != nil {
		t.Fatalf("create future: %v", err)
	}

	upcoming, err := os.List(ListFilter{UpcomingOnly: true})
	if err != nil {
		t.Fatalf("list upcoming: %v", err)
	}
	if len(upcoming) != 1 || upcoming[0].Title != "River Sweep" {
		t.Errorf("upcoming = %v", titles(upcoming))
	}

	byCategory, err := os.List(ListFilter{CategoryID: cat.ID})
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if len(byCategory) != 1 || byCategory[0].Title != "River Sweep" {
		t.Errorf("byCategory = %v", titles(byCategory))
	}

	featured, err := os.List(ListFilter{FeaturedOnly: true})
	if err != nil {
		t.Fatalf("list featured: %v", err)
	}
	if len(featured) != 1 || featured[0].Title != "River Sweep" {
		t.Errorf("featured = %v", titles(featured))
	}
}

func TestOpportunitySpotsFilled(t *testing.T) {
	db := setupTestDB(t)
	os := NewOpportunityStore(db)
	rs := NewRegistrationStore(db)

	opp, err := os.Create("Food Drive", "", nil, "Community Center", time.Now().UTC().Add(24*time.Hour), 10, false)
	if err != nil {
		t.Fatalf("create opportunity: %v", err)
	}

	alice := insertTestUser(t, db, "alice@example.com")
	bob := insertTestUser(t, db, "bob@example.com")

	reg, err := rs.Create(alice, opp.ID)
	if err != nil {
		t.Fatalf("register alice: %v", err)
	}
	if _, err := rs.Create(bob, opp.ID); err != nil {
		t.Fatalf("register bob: %v", err)
	}

	got, _ := os.GetByID(opp.ID)
	if got.SpotsFilled != 2 {
		t.Errorf("spots_filled = %d, want 2", got.SpotsFilled)
	}

	if _, err := rs.UpdateStatus(reg.ID, model.RegistrationCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	got, _ = os.GetByID(opp.ID)
	if got.SpotsFilled != 1 {
		t.Errorf("spots_filled after cancel = %d, want 1", got.SpotsFilled)
	}
}

func titles(opps []*model.Opportunity) []string {
	out := make([]string, len(opps))
	for i, o := range opps {
		out[i] = o.Title
	}
	return out
}

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/cltvc/volunteercentral/internal/model"
)

type OpportunityStore struct {
	db *sql.DB
}

func NewOpportunityStore(db *sql.DB) *OpportunityStore {
	return &OpportunityStore{db: db}
}

func scanOpportunity(scanner interface{ Scan(...any) error }) (*model.Opportunity, error) {
	var o model.Opportunity
	var categoryID sql.NullInt64

	err := scanner.Scan(
		&o.ID, &o.Title, &o.Description, &categoryID, &o.Location,
		&o.Date, &o.Spots, &o.SpotsFilled, &o.Featured, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if categoryID.Valid {
		o.CategoryID = &categoryID.Int64
	}
	return &o, nil
}

// spots_filled counts confirmed registrations so list pages never race a
// separately maintained counter.
const opportunityCols = `o.id, o.title, o.description, o.category_id, o.location, o.date, o.spots,
	(SELECT COUNT(*) FROM registrations r WHERE r.opportunity_id = o.id AND r.status = 'confirmed') AS spots_filled,
	o.featured, o.created_at, o.updated_at`

func (s *OpportunityStore) Create(title, description string, categoryID *int64, location string, date time.Time, spots int, featured bool) (*model.Opportunity, error) {
	var cID sql.NullInt64
	if categoryID != nil {
		cID = sql.NullInt64{Int64: *categoryID, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO opportunities (title, description, category_id, location, date, spots, featured)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		title, description, cID, location, date.UTC(), spots, featured,
	)
	if err != nil {
		return nil, fmt.Errorf("insert opportunity: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *OpportunityStore) GetByID(id int64) (*model.Opportunity, error) {
	row := s.db.QueryRow(`SELECT `+opportunityCols+` FROM opportunities o WHERE o.id = ?`, id)
	o, err := scanOpportunity(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get opportunity: %w", err)
	}
	return o, nil
}

// ListFilter narrows List results. Zero values mean no filtering.
type ListFilter struct {
	CategoryID   int64
	UpcomingOnly bool
	FeaturedOnly bool
}

func (s *OpportunityStore) List(f ListFilter) ([]*model.Opportunity, error) {
	query := `SELECT ` + opportunityCols + ` FROM opportunities o WHERE 1=1`
	var args []any

	if f.CategoryID != 0 {
		query += ` AND o.category_id = ?`
		args = append(args, f.CategoryID)
	}
	if f.UpcomingOnly {
		query += ` AND o.date >= datetime('now')`
	}
	if f.FeaturedOnly {
		query += ` AND o.featured = 1`
	}
	query += ` ORDER BY o.date`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list opportunities: %w", err)
	}
	defer rows.Close()

	var opportunities []*model.Opportunity
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan opportunity: %w", err)
		}
		opportunities = append(opportunities, o)
	}
	return opportunities, rows.Err()
}

func (s *OpportunityStore) Update(id int64, title, description string, categoryID *int64, location string, date time.Time, spots int, featured bool) (*model.Opportunity, error) {
	var cID sql.NullInt64
	if categoryID != nil {
		cID = sql.NullInt64{Int64: *categoryID, Valid: true}
	}

	_, err := s.db.Exec(
		`UPDATE opportunities SET title = ?, description = ?, category_id = ?, location = ?,
		 date = ?, spots = ?, featured = ?, updated_at = datetime('now') WHERE id = ?`,
		title, description, cID, location, date.UTC(), spots, featured, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update opportunity: %w", err)
	}
	return s.GetByID(id)
}

func (s *OpportunityStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM opportunities WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete opportunity: %w", err)
	}
	return nil
}

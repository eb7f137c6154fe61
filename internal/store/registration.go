package store

import (
	"database/sql"
	"fmt"

	"github.com/cltvc/volunteercentral/internal/model"
)

type RegistrationStore struct {
	db *sql.DB
}

func NewRegistrationStore(db *sql.DB) *RegistrationStore {
	return &RegistrationStore{db: db}
}

func scanRegistration(scanner interface{ Scan(...any) error }) (*model.Registration, error) {
	var r model.Registration
	var status string

	err := scanner.Scan(&r.ID, &r.UserID, &r.OpportunityID, &status, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}

	r.Status, err = model.ParseRegistrationStatus(status)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

const registrationCols = `id, user_id, opportunity_id, status, created_at, updated_at`

func (s *RegistrationStore) Create(userID, opportunityID int64) (*model.Registration, error) {
	result, err := s.db.Exec(
		`INSERT INTO registrations (user_id, opportunity_id, status) VALUES (?, ?, ?)`,
		userID, opportunityID, string(model.RegistrationConfirmed),
	)
	if err != nil {
		return nil, fmt.Errorf("insert registration: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *RegistrationStore) GetByID(id int64) (*model.Registration, error) {
	row := s.db.QueryRow(`SELECT `+registrationCols+` FROM registrations WHERE id = ?`, id)
	r, err := scanRegistration(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return r, nil
}

// GetByUserAndOpportunity returns the registration, or nil when the user
// has not registered for the opportunity.
func (s *RegistrationStore) GetByUserAndOpportunity(userID, opportunityID int64) (*model.Registration, error) {
	row := s.db.QueryRow(
		`SELECT `+registrationCols+` FROM registrations WHERE user_id = ? AND opportunity_id = ?`,
		userID, opportunityID,
	)
	r, err := scanRegistration(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get registration by user and opportunity: %w", err)
	}
	return r, nil
}

func (s *RegistrationStore) ListByUser(userID int64) ([]*model.Registration, error) {
	return s.list(`SELECT `+registrationCols+` FROM registrations WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

func (s *RegistrationStore) ListByOpportunity(opportunityID int64) ([]*model.Registration, error) {
	return s.list(`SELECT `+registrationCols+` FROM registrations WHERE opportunity_id = ? ORDER BY created_at`, opportunityID)
}

func (s *RegistrationStore) list(query string, args ...any) ([]*model.Registration, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var registrations []*model.Registration
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		registrations = append(registrations, r)
	}
	return registrations, rows.Err()
}

func (s *RegistrationStore) UpdateStatus(id int64, status model.RegistrationStatus) (*model.Registration, error) {
	_, err := s.db.Exec(
		`UPDATE registrations SET status = ?, updated_at = datetime('now') WHERE id = ?`,
		string(status), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update registration status: %w", err)
	}
	return s.GetByID(id)
}

func (s *RegistrationStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM registrations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	return nil
}

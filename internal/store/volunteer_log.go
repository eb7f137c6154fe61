package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/cltvc/volunteercentral/internal/model"
)

type VolunteerLogStore struct {
	db *sql.DB
}

func NewVolunteerLogStore(db *sql.DB) *VolunteerLogStore {
	return &VolunteerLogStore{db: db}
}

func scanVolunteerLog(scanner interface{ Scan(...any) error }) (*model.VolunteerLog, error) {
	var vl model.VolunteerLog
	var opportunityID, reviewedBy sql.NullInt64
	var reviewedAt sql.NullTime
	var status string

	err := scanner.Scan(
		&vl.ID, &vl.UserID, &opportunityID, &vl.Hours, &vl.Date, &vl.Description,
		&status, &reviewedBy, &reviewedAt, &vl.CreatedAt, &vl.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if opportunityID.Valid {
		vl.OpportunityID = &opportunityID.Int64
	}
	if reviewedBy.Valid {
		vl.ReviewedBy = &reviewedBy.Int64
	}
	if reviewedAt.Valid {
		vl.ReviewedAt = &reviewedAt.Time
	}
	vl.Status, err = model.ParseVolunteerLogStatus(status)
	if err != nil {
		return nil, err
	}
	return &vl, nil
}

const volunteerLogCols = `id, user_id, opportunity_id, hours, date, description, status, reviewed_by, reviewed_at, created_at, updated_at`

func (s *VolunteerLogStore) Create(userID int64, opportunityID *int64, hours float64, date time.Time, description string) (*model.VolunteerLog, error) {
	var oID sql.NullInt64
	if opportunityID != nil {
		oID = sql.NullInt64{Int64: *opportunityID, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO volunteer_logs (user_id, opportunity_id, hours, date, description) VALUES (?, ?, ?, ?, ?)`,
		userID, oID, hours, date.UTC(), description,
	)
	if err != nil {
		return nil, fmt.Errorf("insert volunteer log: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *VolunteerLogStore) GetByID(id int64) (*model.VolunteerLog, error) {
	row := s.db.QueryRow(`SELECT `+volunteerLogCols+` FROM volunteer_logs WHERE id = ?`, id)
	vl, err := scanVolunteerLog(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get volunteer log: %w", err)
	}
	return vl, nil
}

func (s *VolunteerLogStore) ListByUser(userID int64) ([]*model.VolunteerLog, error) {
	return s.list(`SELECT `+volunteerLogCols+` FROM volunteer_logs WHERE user_id = ? ORDER BY date DESC`, userID)
}

func (s *VolunteerLogStore) ListByStatus(status model.VolunteerLogStatus) ([]*model.VolunteerLog, error) {
	return s.list(`SELECT `+volunteerLogCols+` FROM volunteer_logs WHERE status = ? ORDER BY created_at`, string(status))
}

func (s *VolunteerLogStore) list(query string, args ...any) ([]*model.VolunteerLog, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list volunteer logs: %w", err)
	}
	defer rows.Close()

	var logs []*model.VolunteerLog
	for rows.Next() {
		vl, err := scanVolunteerLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan volunteer log: %w", err)
		}
		logs = append(logs, vl)
	}
	return logs, rows.Err()
}

// Review sets the admin decision on a pending entry.
func (s *VolunteerLogStore) Review(id, reviewerID int64, status model.VolunteerLogStatus) (*model.VolunteerLog, error) {
	if status != model.VolunteerLogApproved && status != model.VolunteerLogRejected {
		return nil, fmt.Errorf("review status must be approved or rejected, got %q", status)
	}

	_, err := s.db.Exec(
		`UPDATE volunteer_logs SET status = ?, reviewed_by = ?, reviewed_at = datetime('now'),
		 updated_at = datetime('now') WHERE id = ?`,
		string(status), reviewerID, id,
	)
	if err != nil {
		return nil, fmt.Errorf("review volunteer log: %w", err)
	}
	return s.GetByID(id)
}

// ApprovedHours sums a user's approved hours for the dashboard.
func (s *VolunteerLogStore) ApprovedHours(userID int64) (float64, error) {
	var total float64
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(hours), 0) FROM volunteer_logs WHERE user_id = ? AND status = 'approved'`,
		userID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum approved hours: %w", err)
	}
	return total, nil
}

func (s *VolunteerLogStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM volunteer_logs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete volunteer log: %w", err)
	}
	return nil
}

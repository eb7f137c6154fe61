package store

import (
	"database/sql"
	"fmt"

	"github.com/cltvc/volunteercentral/internal/model"
)

// EmailLogStore is the append-only record of send attempts. Rows are
// created pending before the transport attempt and transitioned to sent or
// failed afterward.
type EmailLogStore struct {
	db *sql.DB
}

func NewEmailLogStore(db *sql.DB) *EmailLogStore {
	return &EmailLogStore{db: db}
}

func scanEmailLog(scanner interface{ Scan(...any) error }) (*model.EmailLog, error) {
	var e model.EmailLog
	var sentAt sql.NullTime
	var status string

	err := scanner.Scan(
		&e.ID, &e.Recipient, &e.Template, &e.Subject, &e.Payload,
		&status, &e.Error, &e.CreatedAt, &sentAt,
	)
	if err != nil {
		return nil, err
	}

	if sentAt.Valid {
		e.SentAt = &sentAt.Time
	}
	e.Status, err = model.ParseEmailStatus(status)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

const emailLogCols = `id, recipient, template, subject, payload, status, error, created_at, sent_at`

func (s *EmailLogStore) Create(recipient, template, subject, payload string) (*model.EmailLog, error) {
	result, err := s.db.Exec(
		`INSERT INTO email_logs (recipient, template, subject, payload, status) VALUES (?, ?, ?, ?, ?)`,
		recipient, template, subject, payload, string(model.EmailPending),
	)
	if err != nil {
		return nil, fmt.Errorf("insert email log: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *EmailLogStore) GetByID(id int64) (*model.EmailLog, error) {
	row := s.db.QueryRow(`SELECT `+emailLogCols+` FROM email_logs WHERE id = ?`, id)
	e, err := scanEmailLog(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get email log: %w", err)
	}
	return e, nil
}

func (s *EmailLogStore) MarkSent(id int64) error {
	_, err := s.db.Exec(
		`UPDATE email_logs SET status = ?, sent_at = datetime('now') WHERE id = ?`,
		string(model.EmailSent), id,
	)
	if err != nil {
		return fmt.Errorf("mark email log sent: %w", err)
	}
	return nil
}

func (s *EmailLogStore) MarkFailed(id int64, reason string) error {
	_, err := s.db.Exec(
		`UPDATE email_logs SET status = ?, error = ? WHERE id = ?`,
		string(model.EmailFailed), reason, id,
	)
	if err != nil {
		return fmt.Errorf("mark email log failed: %w", err)
	}
	return nil
}

// ListRecent returns the newest entries for the admin console.
func (s *EmailLogStore) ListRecent(limit int) ([]*model.EmailLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT `+emailLogCols+` FROM email_logs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list email logs: %w", err)
	}
	defer rows.Close()

	var entries []*model.EmailLog
	for rows.Next() {
		e, err := scanEmailLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan email log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

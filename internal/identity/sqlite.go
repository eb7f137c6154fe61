package identity

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/cltvc/volunteercentral/internal/model"
)

// SQLiteProvider implements Provider on the application database.
type SQLiteProvider struct {
	db *sql.DB
}

func NewSQLiteProvider(db *sql.DB) *SQLiteProvider {
	return &SQLiteProvider{db: db}
}

const userCols = `id, email, full_name, role, email_confirmed, confirmed_at, created_at, updated_at`

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var confirmedAt sql.NullTime

	err := scanner.Scan(
		&u.ID, &u.Email, &u.FullName, &u.Role,
		&u.EmailConfirmed, &confirmedAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if confirmedAt.Valid {
		u.ConfirmedAt = &confirmedAt.Time
	}
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p *SQLiteProvider) CreateUser(ctx context.Context, email, password, fullName string) (*model.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("create user: empty email")
	}

	existing, err := p.FindByEmail(ctx, email)
	if err != nil && err != ErrNotFound {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	result, err := p.db.ExecContext(ctx,
		`INSERT INTO users (email, full_name, password_hash) VALUES (?, ?, ?)`,
		email, fullName, string(hash),
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := p.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("get created user: %w", err)
	}
	return u, nil
}

// FindByID is used by the session middleware; it is not part of the
// Provider interface the auth flows dispatch through.
func (p *SQLiteProvider) FindByID(ctx context.Context, id int64) (*model.User, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

func (p *SQLiteProvider) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE email = ?`, normalizeEmail(email))
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

func (p *SQLiteProvider) ConfirmEmail(ctx context.Context, email string) error {
	result, err := p.db.ExecContext(ctx,
		`UPDATE users SET email_confirmed = 1, confirmed_at = datetime('now'), updated_at = datetime('now')
		 WHERE email = ?`,
		normalizeEmail(email),
	)
	if err != nil {
		return fmt.Errorf("confirm email: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *SQLiteProvider) UpdatePassword(ctx context.Context, email, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	result, err := p.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = datetime('now') WHERE email = ?`,
		string(hash), normalizeEmail(email),
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *SQLiteProvider) VerifyPassword(ctx context.Context, email, password string) (*model.User, error) {
	var hash string
	row := p.db.QueryRowContext(ctx,
		`SELECT password_hash FROM users WHERE email = ?`, normalizeEmail(email))
	if err := row.Scan(&hash); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBadCredentials
		}
		return nil, fmt.Errorf("lookup credentials: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}

	return p.FindByEmail(ctx, email)
}

package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/coursewave/service-auth-go/internal/auth/entity"
)

// ErrDuplicateEmail is returned by Create when the email unique index
// rejects the insert. The index is the sole guard against concurrent
// registrations with the same address.
var ErrDuplicateEmail = errors.New("duplicate email")

// uniqueViolation is the Postgres error code for unique_violation.
const uniqueViolation = "23505"

// UserRepo provides data access for the users table using sqlx.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// EnsureTable creates the users table if not exists (idempotent).
// This is a convenience for early development; prefer migrations in production.
func (r *UserRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE EXTENSION IF NOT EXISTS citext;
CREATE TABLE IF NOT EXISTS users (
  id BIGINT PRIMARY KEY,
  first_name VARCHAR(100) NOT NULL,
  last_name VARCHAR(100),
  email CITEXT NOT NULL UNIQUE,
  password_hash VARCHAR(255) NOT NULL,
  role VARCHAR(50) NOT NULL DEFAULT 'student',
  bio TEXT,
  profile_picture_url VARCHAR(255),
  reset_code VARCHAR(6),
  reset_code_expires_at TIMESTAMPTZ,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Create inserts a new user row. The caller assigns the ID. Returns
// ErrDuplicateEmail when the unique index rejects the email.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	const q = `INSERT INTO users (id, first_name, last_name, email, password_hash, role)
		VALUES (:id, :first_name, :last_name, :email, :password_hash, :role)`
	_, err := r.db.NamedExecContext(ctx, q, u)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// GetByEmail returns a user matched by email (case-insensitive due to citext)
// or sql.ErrNoRows.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	const q = `SELECT id, first_name, last_name, email, password_hash, role, bio,
		profile_picture_url, reset_code, reset_code_expires_at, created_at, updated_at
	  FROM users WHERE email=$1`
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, email); err != nil {
		return nil, err
	}
	return &row, nil
}

// GetByID fetches a full user row.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	const q = `SELECT id, first_name, last_name, email, password_hash, role, bio,
		profile_picture_url, reset_code, reset_code_expires_at, created_at, updated_at
	  FROM users WHERE id=$1`
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// SetResetCode stores a password-reset code and its expiry on the user row.
func (r *UserRepo) SetResetCode(ctx context.Context, id int64, code string, expiresAt time.Time) error {
	const q = `UPDATE users SET reset_code=$2, reset_code_expires_at=$3, updated_at=NOW() WHERE id=$1`
	_, err := r.db.ExecContext(ctx, q, id, code, expiresAt)
	return err
}

// GetByResetCode returns the user whose stored reset code matches, or
// sql.ErrNoRows. Expiry is checked by the caller.
func (r *UserRepo) GetByResetCode(ctx context.Context, code string) (*entity.User, error) {
	const q = `SELECT id, first_name, last_name, email, password_hash, role, bio,
		profile_picture_url, reset_code, reset_code_expires_at, created_at, updated_at
	  FROM users WHERE reset_code=$1`
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, code); err != nil {
		return nil, err
	}
	return &row, nil
}

// UpdatePasswordAndClearResetCode writes the new hash and clears the reset
// code in one statement so a used code cannot be replayed. Returns false
// when the row no longer carries the given code.
func (r *UserRepo) UpdatePasswordAndClearResetCode(ctx context.Context, id int64, hash, code string) (bool, error) {
	const q = `UPDATE users SET password_hash=$2, reset_code=NULL, reset_code_expires_at=NULL, updated_at=NOW()
		WHERE id=$1 AND reset_code=$3 RETURNING 1`
	var one int
	err := r.db.GetContext(ctx, &one, q, id, hash, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/urban-reports/internal/apperror"
	"github.com/sakif/urban-reports/internal/model"
	"github.com/sakif/urban-reports/internal/repository"
)

// UserRepo implements repository.UserRepository on the shared DB handle.
type UserRepo struct {
	db *DB
}

// Compile-time check that *UserRepo implements repository.UserRepository.
var _ repository.UserRepository = (*UserRepo)(nil)

func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts a new user row. The ID and timestamps are generated here
// and written back into the caller's struct.
//
// The UNIQUE constraint on email is the source of truth for duplicate
// registrations. The service does a pre-check for a friendlier fast path,
// but two concurrent registrations with the same email can both pass that
// check — the second INSERT then fails here and is translated to the same
// Conflict error the pre-check would have produced.
func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, photo_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.PhotoURL,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("email is already registered")
		}
		return fmt.Errorf("sqlite: inserting user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by internal ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getUser(ctx, "id", id)
}

// GetByEmail retrieves a user by email address.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getUser(ctx, "email", email)
}

func (r *UserRepo) getUser(ctx context.Context, column, value string) (*model.User, error) {
	var u model.User

	// column is one of two package-internal constants, never user input.
	query := fmt.Sprintf(
		`SELECT id, name, email, password_hash, photo_url, created_at, updated_at
		 FROM users WHERE %s = ?`, column)

	err := r.db.conn.QueryRowContext(ctx, query, value).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.PhotoURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", value)
		}
		return nil, fmt.Errorf("sqlite: getting user by %s: %w", column, err)
	}

	return &u, nil
}

// UpdateProfile persists the mutable profile fields (name, photo reference).
// Email, password hash and timestamps of creation are never touched here.
func (r *UserRepo) UpdateProfile(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now()

	result, err := r.db.conn.ExecContext(ctx,
		`UPDATE users SET name = ?, photo_url = ?, updated_at = ? WHERE id = ?`,
		user.Name,
		user.PhotoURL,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", user.ID)
	}

	return nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. modernc.org/sqlite exposes no typed error for this, so we match
// the stable message prefix the engine emits.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

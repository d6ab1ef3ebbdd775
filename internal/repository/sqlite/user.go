package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/miniblog/internal/apperror"
	"github.com/sakif/miniblog/internal/model"
	"github.com/sakif/miniblog/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// Create inserts a new user.
//
// The caller (AuthService.Register) pre-checks username availability, but
// two registrations can race between that check and this insert. The UNIQUE
// constraint on username is the authoritative guard: when the driver reports
// a violation we translate it into the same Conflict error the pre-check
// would have produced, so the caller sees one consistent failure mode.
func (db *DB) Create(ctx context.Context, user *model.User) error {
	q, err := db.querier(ctx)
	if err != nil {
		return err
	}

	user.ID = xid.New().String()
	user.CreatedAt = time.Now()

	_, err = q.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at)
		 VALUES (?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict(fmt.Sprintf("User %s is already registered.", user.Username))
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	return nil
}

// GetByUsername retrieves a user by their unique username.
// Returns apperror.ErrNotFound if no such user exists.
func (db *DB) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	q, err := db.querier(ctx)
	if err != nil {
		return nil, err
	}

	var u model.User
	err = q.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at
		 FROM users WHERE username = ?`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("sqlite: getting user by username %q: %w", username, err)
	}

	return &u, nil
}

// GetByID retrieves a user by their internal ID. Called once per
// authenticated request by the session middleware, so the account state a
// handler sees is never staler than the current request.
func (db *DB) GetByID(ctx context.Context, id string) (*model.User, error) {
	q, err := db.querier(ctx)
	if err != nil {
		return nil, err
	}

	var u model.User
	err = q.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at
		 FROM users WHERE id = ?`,
		id,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}

	return &u, nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. modernc.org/sqlite doesn't export a stable error type for this,
// so we match the constraint message the engine has emitted since 3.8
// ("UNIQUE constraint failed: table.column").
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/news-curator/internal/apperror"
	"github.com/sakif/news-curator/internal/model"
	"github.com/sakif/news-curator/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// EnsureByEmail returns the user with the given email, creating it on first sight.
//
// INSERT ... ON CONFLICT DO NOTHING + SELECT:
// Two requests for a brand-new user can arrive at once. The INSERT either creates the
// row or silently loses to the one that did; the SELECT then reads whichever row won.
// Either way the caller gets the single canonical record.
func (db *DB) EnsureByEmail(ctx context.Context, email string) (*model.User, error) {
	now := time.Now().UTC()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, created_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(email) DO NOTHING`,
		xid.New().String(), email, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: ensuring user %s: %w", email, err)
	}

	return db.GetByEmail(ctx, email)
}

// GetByEmail retrieves a user by email.
// Returns apperror.ErrNotFound if no user exists with that email.
func (db *DB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, email, created_at, updated_at FROM users WHERE email = ?`,
		email,
	).Scan(&u.ID, &u.Email, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", email, err)
	}

	return &u, nil
}

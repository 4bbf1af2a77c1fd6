package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/news-curator/internal/model"
	"github.com/sakif/news-curator/internal/repository"
)

var _ repository.FavoriteRepository = (*DB)(nil)

// qualifiedDocumentColumns is documentColumns prefixed with the "d." table alias.
const qualifiedDocumentColumns = `d.id, d.url, d.title, d.published, d.published_ts, d.summary,
	d.thumbnail_url, d.sentiment, d.category, d.source, d.created_at, d.updated_at`

// ListFavorites returns the documents a user favorited, oldest favorite first.
func (db *DB) ListFavorites(ctx context.Context, userID string) ([]model.Document, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+qualifiedDocumentColumns+`
		 FROM favorites f
		 JOIN documents d ON d.id = f.document_id
		 WHERE f.user_id = ?
		 ORDER BY f.created_at ASC, f.rowid ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing favorites of %s: %w", userID, err)
	}
	defer rows.Close()

	docs := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning favorite row: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating favorites: %w", err)
	}

	return docs, nil
}

// IsFavorite reports whether the (user, document) edge exists.
func (db *DB) IsFavorite(ctx context.Context, userID, documentID string) (bool, error) {
	var n int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM favorites WHERE user_id = ? AND document_id = ?`,
		userID, documentID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking favorite %s/%s: %w", userID, documentID, err)
	}
	return n > 0, nil
}

// SetFavorite adds (on=true) or removes (on=false) the edge.
//
// Each direction is a single statement, so it's atomic per record:
//   - INSERT OR IGNORE never creates a second row for the same pair
//   - DELETE of a missing pair simply affects zero rows
//
// The returned bool tells the caller whether anything changed; the service layer
// uses it to tell "already favorited" (fine) from "was never favorited" (an error).
func (db *DB) SetFavorite(ctx context.Context, userID, documentID string, on bool) (bool, error) {
	var (
		query string
		args  []any
	)
	if on {
		query = `INSERT OR IGNORE INTO favorites (user_id, document_id, created_at) VALUES (?, ?, ?)`
		args = []any{userID, documentID, time.Now().UTC()}
	} else {
		query = `DELETE FROM favorites WHERE user_id = ? AND document_id = ?`
		args = []any{userID, documentID}
	}

	result, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("sqlite: setting favorite %s/%s=%t: %w", userID, documentID, on, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/news-curator/internal/apperror"
	"github.com/sakif/news-curator/internal/model"
	"github.com/sakif/news-curator/internal/repository"
)

// COMPILE-TIME INTERFACE CHECK:
// If *DB stops implementing DocumentRepository, this line fails to compile.
var _ repository.DocumentRepository = (*DB)(nil)

const documentColumns = `id, url, title, published, published_ts, summary, thumbnail_url,
	sentiment, category, source, created_at, updated_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(s rowScanner) (model.Document, error) {
	var (
		d           model.Document
		publishedTS sql.NullInt64
		category    string
	)
	err := s.Scan(
		&d.ID, &d.URL, &d.Title, &d.Published, &publishedTS, &d.Summary, &d.ThumbnailURL,
		&d.Sentiment, &category, &d.Source, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return model.Document{}, err
	}
	d.Category = model.Category(category)
	if publishedTS.Valid {
		t := time.Unix(publishedTS.Int64, 0).UTC()
		d.PublishedAt = &t
	}
	return d, nil
}

// whereClause turns a Filter into a SQL WHERE fragment plus its arguments.
func whereClause(f repository.Filter) (string, []any) {
	if f.Category == "" {
		return "", nil
	}
	return " WHERE category = ?", []any{string(f.Category)}
}

// FindByURL looks a document up by its canonical URL.
// A miss is not an error here: the aggregator asks this question for every
// scraped item and most of the time the honest answer is "not stored yet".
func (db *DB) FindByURL(ctx context.Context, url string) (*model.Document, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE url = ?`, url)

	d, err := scanDocument(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: finding document by url %s: %w", url, err)
	}
	return &d, nil
}

// GetByID retrieves a single document by its ID.
// Returns apperror.ErrNotFound when no such document exists.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Document, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)

	d, err := scanDocument(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("document", id)
		}
		return nil, fmt.Errorf("sqlite: getting document %s: %w", id, err)
	}
	return &d, nil
}

// Insert stores a new document and fills in its ID and timestamps.
//
// ATOMIC CHECK-THEN-INSERT:
// The aggregator checks FindByURL first, but two concurrent ingestion calls can both
// see "absent" for the same URL. ON CONFLICT(url) DO NOTHING lets the database settle
// the race: the loser affects zero rows and gets apperror.ErrConflict back, which the
// aggregator treats as "already exists".
func (db *DB) Insert(ctx context.Context, doc *model.Document) error {
	now := time.Now().UTC()
	id := xid.New().String()

	var publishedTS sql.NullInt64
	if doc.PublishedAt != nil {
		publishedTS = sql.NullInt64{Int64: doc.PublishedAt.Unix(), Valid: true}
	}
	sentiment := doc.Sentiment
	if sentiment == "" {
		sentiment = model.DefaultSentiment
	}

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO documents (`+documentColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(url) DO NOTHING`,
		id, doc.URL, doc.Title, doc.Published, publishedTS, doc.Summary, doc.ThumbnailURL,
		sentiment, string(doc.Category), doc.Source, now, now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting document %s: %w", doc.URL, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.Conflict("document", doc.URL)
	}

	doc.ID = id
	doc.Sentiment = sentiment
	doc.CreatedAt = now
	doc.UpdatedAt = now
	return nil
}

// List returns documents in insertion order (rowid ascending).
// A stable order matters: the recommender builds its vocabulary from this slice
// and the same corpus must always produce the same vectors.
func (db *DB) List(ctx context.Context, f repository.Filter) ([]model.Document, error) {
	where, args := whereClause(f)
	query := `SELECT ` + documentColumns + ` FROM documents` + where + ` ORDER BY rowid ASC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing documents: %w", err)
	}
	defer rows.Close()

	docs := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning document row: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating documents: %w", err)
	}

	return docs, nil
}

// Count returns how many documents match the filter. Limit is ignored.
func (db *DB) Count(ctx context.Context, f repository.Filter) (int, error) {
	where, args := whereClause(f)

	var n int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting documents: %w", err)
	}
	return n, nil
}

// DeleteOldest hard-deletes the n oldest documents matching the filter and reports
// how many rows went away.
//
// EVICTION ORDER:
//   - documents whose publish time is unknown go first (they cannot prove they are recent)
//   - then ascending publish time
//   - ties broken by rowid, i.e. the order the store created them
//
// The whole selection runs in one DELETE statement, so it is atomic; favorite edges of
// evicted documents are removed by ON DELETE CASCADE.
func (db *DB) DeleteOldest(ctx context.Context, n int, f repository.Filter) (int, error) {
	if n <= 0 {
		return 0, nil
	}

	where, args := whereClause(f)
	var b strings.Builder
	b.WriteString(`DELETE FROM documents WHERE id IN (SELECT id FROM documents`)
	b.WriteString(where)
	b.WriteString(` ORDER BY published_ts IS NOT NULL, published_ts ASC, rowid ASC LIMIT ?)`)
	args = append(args, n)

	result, err := db.conn.ExecContext(ctx, b.String(), args...)
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting %d oldest documents: %w", n, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return int(rowsAffected), nil
}

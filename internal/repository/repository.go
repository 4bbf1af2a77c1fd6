// Package repository declares the storage contracts the core depends on.
// Implementations live in sub-packages (see repository/sqlite).
package repository

import (
	"context"

	"github.com/sakif/news-curator/internal/model"
)

// Filter narrows a document query. The zero value matches every document.
type Filter struct {
	Category model.Category // empty = all categories
	Limit    int            // <= 0 = no limit
}

// DocumentRepository is the corpus store.
//
// Insert must be atomic per record: when another writer stored the same URL first,
// it returns an error matching apperror.ErrConflict instead of creating a duplicate.
// FindByURL returns (nil, nil) when no document has that URL.
type DocumentRepository interface {
	FindByURL(ctx context.Context, url string) (*model.Document, error)
	GetByID(ctx context.Context, id string) (*model.Document, error)
	Insert(ctx context.Context, doc *model.Document) error
	List(ctx context.Context, f Filter) ([]model.Document, error)
	Count(ctx context.Context, f Filter) (int, error)
	DeleteOldest(ctx context.Context, n int, f Filter) (int, error)
}

type UserRepository interface {
	EnsureByEmail(ctx context.Context, email string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// FavoriteRepository manages the user/document join table with set semantics.
// SetFavorite reports whether a row was actually added or removed.
type FavoriteRepository interface {
	ListFavorites(ctx context.Context, userID string) ([]model.Document, error)
	IsFavorite(ctx context.Context, userID, documentID string) (bool, error)
	SetFavorite(ctx context.Context, userID, documentID string, on bool) (bool, error)
}

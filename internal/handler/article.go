// Package handler contains the HTTP handlers. Handlers only parse requests,
// call the service, and write responses; every rule lives in the service.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/news-curator/internal/apperror"
	"github.com/sakif/news-curator/internal/middleware"
	"github.com/sakif/news-curator/internal/model"
)

// Curator is the slice of the curation service the handlers need.
// Accepting an interface lets the tests pass a mock.
type Curator interface {
	Ingest(ctx context.Context, category string, sampleSize int) ([]model.Document, error)
	Recommend(ctx context.Context, email string, topN int) ([]model.Document, error)
	Favorite(ctx context.Context, email, documentID string) ([]model.Document, error)
	Unfavorite(ctx context.Context, email, documentID string) ([]model.Document, error)
	Favorites(ctx context.Context, email string) ([]model.Document, error)
	RecipeCategories(ctx context.Context, parentName string) ([]model.RecipeCategory, error)
}

// ArticleHandler serves the /api routes.
type ArticleHandler struct {
	curator Curator
	logger  *slog.Logger
}

// NewArticleHandler creates an ArticleHandler.
func NewArticleHandler(curator Curator, logger *slog.Logger) *ArticleHandler {
	return &ArticleHandler{curator: curator, logger: logger}
}

// HandleIngest handles GET /api/articles/{category}?sample=N
func (h *ArticleHandler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	sample, err := queryInt(r, "sample")
	if err != nil {
		writeError(w, err)
		return
	}

	docs, err := h.curator.Ingest(r.Context(), chi.URLParam(r, "category"), sample)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// HandleRecommendations handles GET /api/articles/me/recommendations?top=N
func (h *ArticleHandler) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	top, err := queryInt(r, "top")
	if err != nil {
		writeError(w, err)
		return
	}

	docs, err := h.curator.Recommend(r.Context(), middleware.UserEmailFromContext(r.Context()), top)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// HandleFavorites handles GET /api/articles/me/favorites
func (h *ArticleHandler) HandleFavorites(w http.ResponseWriter, r *http.Request) {
	docs, err := h.curator.Favorites(r.Context(), middleware.UserEmailFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// HandleFavorite handles POST /api/articles/{id}/favorite and returns the
// updated favorites list.
func (h *ArticleHandler) HandleFavorite(w http.ResponseWriter, r *http.Request) {
	docs, err := h.curator.Favorite(r.Context(), middleware.UserEmailFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// HandleUnfavorite handles DELETE /api/articles/{id}/favorite.
func (h *ArticleHandler) HandleUnfavorite(w http.ResponseWriter, r *http.Request) {
	docs, err := h.curator.Unfavorite(r.Context(), middleware.UserEmailFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// HandleCategories handles GET /api/categories/{parent}
func (h *ArticleHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.curator.RecipeCategories(r.Context(), chi.URLParam(r, "parent"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

// queryInt reads an optional integer query parameter. Missing means 0.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperror.ValidationFailed(name, name+" must be a non-negative integer")
	}
	return n, nil
}

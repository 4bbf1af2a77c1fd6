package server_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/news-curator/internal/middleware"
	"github.com/sakif/news-curator/internal/model"
	"github.com/sakif/news-curator/internal/server"
)

// recordingCurator remembers which method the router reached.
type recordingCurator struct {
	called string
	arg    string
}

func (c *recordingCurator) Ingest(_ context.Context, category string, _ int) ([]model.Document, error) {
	c.called, c.arg = "Ingest", category
	return []model.Document{}, nil
}

func (c *recordingCurator) Recommend(_ context.Context, email string, _ int) ([]model.Document, error) {
	c.called, c.arg = "Recommend", email
	return []model.Document{}, nil
}

func (c *recordingCurator) Favorite(_ context.Context, _, id string) ([]model.Document, error) {
	c.called, c.arg = "Favorite", id
	return []model.Document{}, nil
}

func (c *recordingCurator) Unfavorite(_ context.Context, _, id string) ([]model.Document, error) {
	c.called, c.arg = "Unfavorite", id
	return []model.Document{}, nil
}

func (c *recordingCurator) Favorites(_ context.Context, email string) ([]model.Document, error) {
	c.called, c.arg = "Favorites", email
	return []model.Document{}, nil
}

func (c *recordingCurator) RecipeCategories(_ context.Context, parent string) ([]model.RecipeCategory, error) {
	c.called, c.arg = "RecipeCategories", parent
	return []model.RecipeCategory{}, nil
}

type fakeStore struct{ pingErr error }

func (s fakeStore) Ping() error  { return s.pingErr }
func (s fakeStore) Close() error { return nil }

func newTestServer(c *recordingCurator) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return server.New(server.Config{Port: 0}, c, fakeStore{}, logger).Handler()
}

func TestRoutes(t *testing.T) {
	tests := []struct {
		method string
		path   string
		called string
		arg    string
	}{
		{http.MethodGet, "/api/articles/programming", "Ingest", "programming"},
		{http.MethodGet, "/api/articles/me/recommendations", "Recommend", "reader@example.com"},
		{http.MethodGet, "/api/articles/me/favorites", "Favorites", "reader@example.com"},
		{http.MethodPost, "/api/articles/abc123/favorite", "Favorite", "abc123"},
		{http.MethodDelete, "/api/articles/abc123/favorite", "Unfavorite", "abc123"},
		{http.MethodGet, "/api/categories/coffee", "RecipeCategories", "coffee"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			c := &recordingCurator{}
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set(middleware.UserEmailHeader, "reader@example.com")
			rr := httptest.NewRecorder()

			newTestServer(c).ServeHTTP(rr, req)

			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			assert.Equal(t, tt.called, c.called)
			assert.Equal(t, tt.arg, c.arg)
		})
	}
}

func TestRoutes_APIRequiresIdentity(t *testing.T) {
	c := &recordingCurator{}
	rr := httptest.NewRecorder()

	newTestServer(c).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/articles/soccer", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Empty(t, c.called)
}

func TestRoutes_HealthAndMetricsArePublic(t *testing.T) {
	h := newTestServer(&recordingCurator{})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "curator_http_requests_total")
}

func TestRoutes_UnknownPath(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestServer(&recordingCurator{}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

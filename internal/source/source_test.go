package source

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =========================================================================
// FIXTURES
// =========================================================================

const zennPage = `<!DOCTYPE html><html><head>
<script id="__NEXT_DATA__" type="application/json">
{"props":{"pageProps":{"articles":[
  {"title":"Go の context 入門","path":"/alice/articles/ctx","publishedAt":"2025-09-06T10:00:00+09:00","user":{"avatarSmallUrl":"https://img/a.png"}},
  {"title":"","path":"/bob/articles/untitled","publishedAt":"","user":{}},
  {"title":"no path","path":""}
]}}}
</script></head><body></body></html>`

const qiitaPage = `<html><body>
<script type="application/json" data-component-name="HomeTrendPage">
{"trend":{"edges":[
  {"node":{"title":"Rust と Go","linkUrl":"https://qiita.com/x/items/1","createdAt":"2025-09-05T08:00:00Z","author":{"profileImageUrl":"https://img/x.png"}}},
  {"node":{"title":"missing link","linkUrl":""}}
]}}
</script></body></html>`

const gekisakaFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
<channel><title>ゲキサカ</title>
<item>
  <title>代表メンバー発表</title>
  <link>https://web.gekisaka.jp/news/1</link>
  <description>&lt;p&gt;日本代表の&lt;b&gt;メンバー&lt;/b&gt;&lt;/p&gt;</description>
  <pubDate>Sat, 06 Sep 2025 10:00:00 +0900</pubDate>
  <media:thumbnail url="https://img.gekisaka.jp/1.jpg"/>
</item>
<item>
  <title>no link</title>
</item>
</channel></rss>`

func serve(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "Mozilla/5.0" {
			http.Error(w, "bot", http.StatusForbidden)
			return
		}
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testClient() *Client {
	return NewClient(ClientConfig{Timeout: 2 * time.Second})
}

// =========================================================================
// ADAPTER TESTS
// =========================================================================

func TestZenn_Fetch(t *testing.T) {
	srv := serve(t, zennPage)

	items, err := NewZenn(testClient(), srv.URL).Fetch(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Go の context 入門", items[0].Title)
	assert.Equal(t, srv.URL+"/alice/articles/ctx", items[0].URL)
	assert.Equal(t, "2025-09-06T10:00:00+09:00", items[0].Published)
	assert.Equal(t, "https://img/a.png", items[0].ThumbnailURL)
	assert.Empty(t, items[1].Title)
}

func TestZenn_MissingScriptIsParseFailure(t *testing.T) {
	srv := serve(t, "<html><body>maintenance</body></html>")

	_, err := NewZenn(testClient(), srv.URL).Fetch(context.Background(), "")
	require.Error(t, err)

	var f *Failure
	require.True(t, errors.As(err, &f))
	assert.Equal(t, "zenn", f.Source)
	assert.Equal(t, "parse", f.Op)
}

func TestQiita_Fetch(t *testing.T) {
	srv := serve(t, qiitaPage)

	items, err := NewQiita(testClient(), srv.URL).Fetch(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, RawItem{
		Title:        "Rust と Go",
		URL:          "https://qiita.com/x/items/1",
		Published:    "2025-09-05T08:00:00Z",
		ThumbnailURL: "https://img/x.png",
	}, items[0])
}

func TestGekisaka_Fetch(t *testing.T) {
	srv := serve(t, gekisakaFeed)

	items, err := NewGekisaka(testClient(), srv.URL).Fetch(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, items, 1)

	it := items[0]
	assert.Equal(t, "代表メンバー発表", it.Title)
	assert.Equal(t, "https://web.gekisaka.jp/news/1", it.URL)
	assert.Equal(t, "2025-09-06T01:00:00Z", it.Published)
	assert.Equal(t, "https://img.gekisaka.jp/1.jpg", it.ThumbnailURL)
	assert.Contains(t, it.Summary, "メンバー")
	assert.NotContains(t, it.Summary, "<p>")
}

func TestRakuten_Fetch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		assert.Equal(t, "/CategoryRanking/20170426", r.URL.Path)
		io.WriteString(w, `{"result":[
			{"recipeTitle":"水出しコーヒー","recipeUrl":"https://recipe.rakuten.co.jp/recipe/1/","recipePublishday":"2025/09/01 10:00:00","recipeDescription":"簡単","foodImageUrl":"https://img/r1.jpg"},
			{"recipeTitle":"no url","recipeUrl":""}
		]}`)
	}))
	t.Cleanup(srv.Close)

	items, err := NewRakuten(testClient(), srv.URL, "app-123").Fetch(context.Background(), "27-266")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "水出しコーヒー", items[0].Title)
	assert.Equal(t, "簡単", items[0].Summary)
	assert.Contains(t, gotQuery, "applicationId=app-123")
	assert.Contains(t, gotQuery, "categoryId=27-266")
}

func TestRakuten_NoAppID(t *testing.T) {
	_, err := NewRakuten(testClient(), "", "").Fetch(context.Background(), "30")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoAppID))
}

func TestRakuten_Categories(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/CategoryList/20170426", r.URL.Path)
		io.WriteString(w, `{"result":{"medium":[
			{"categoryId":266,"categoryName":"コーヒー","categoryUrl":"https://recipe.rakuten.co.jp/category/27-266/","parentCategoryId":"27"},
			{"categoryId":"101","categoryName":"other","categoryUrl":"u","parentCategoryId":"10"}
		]}}`)
	}))
	t.Cleanup(srv.Close)

	cats, err := NewRakuten(testClient(), srv.URL, "app").Categories(context.Background(), "27")
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "27-266", cats[0].ID)
	assert.Equal(t, "コーヒー", cats[0].Name)
}

// =========================================================================
// CLIENT TESTS
// =========================================================================

func TestClient_NonOKIsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	_, err := testClient().Get(context.Background(), srv.URL)
	var he *HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusServiceUnavailable, he.StatusCode)
}

func TestClient_BodyCap(t *testing.T) {
	srv := serve(t, "0123456789")
	c := NewClient(ClientConfig{MaxBodyBytes: 4})

	_, err := c.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	c := NewClient(ClientConfig{Timeout: 50 * time.Millisecond})
	_, err := c.Get(context.Background(), srv.URL)
	require.Error(t, err)
}

// =========================================================================
// GUARD TESTS
// =========================================================================

func TestGuard_OpensAfterConsecutiveFailures(t *testing.T) {
	broken := &Static{ID: "broken", Err: errors.New("connection refused")}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	g := NewGuard(broken, BreakerConfig{ConsecutiveFailures: 2, Cooldown: time.Hour}, logger)

	for i := 0; i < 2; i++ {
		_, err := g.Fetch(context.Background(), "")
		require.Error(t, err)
		assert.False(t, IsOpen(err))
	}
	assert.Equal(t, gobreaker.StateOpen, g.State())

	_, err := g.Fetch(context.Background(), "")
	require.Error(t, err)
	assert.True(t, IsOpen(err))
	assert.Equal(t, 2, broken.Calls(), "open breaker must not call the adapter")
}

func TestGuard_PassesThroughSuccess(t *testing.T) {
	ok := &Static{ID: "ok", Items: []RawItem{{URL: "https://a"}}}
	g := NewGuard(ok, BreakerConfig{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	items, err := g.Fetch(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, "ok", g.Name())
}

func TestGuard_BudgetExpiryDoesNotCountAgainstSite(t *testing.T) {
	slow := &Static{ID: "slow", Items: []RawItem{{URL: "https://a"}}, Delay: time.Second}
	g := NewGuard(slow, BreakerConfig{ConsecutiveFailures: 1, Cooldown: time.Hour}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithTimeoutCause(context.Background(), 10*time.Millisecond, ErrBudgetExceeded)
	defer cancel()

	_, err := g.Fetch(ctx, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBudgetExceeded)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, gobreaker.StateClosed, g.State())
}

func TestGuard_OwnDeadlineCountsAgainstSite(t *testing.T) {
	slow := &Static{ID: "slow", Items: []RawItem{{URL: "https://a"}}, Delay: time.Second}
	g := NewGuard(slow, BreakerConfig{ConsecutiveFailures: 1, Cooldown: time.Hour}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := g.Fetch(ctx, "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBudgetExceeded)
	assert.Equal(t, gobreaker.StateOpen, g.State())
}

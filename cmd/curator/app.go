package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/news-curator/internal/config"
	"github.com/sakif/news-curator/internal/ingest"
	"github.com/sakif/news-curator/internal/model"
	"github.com/sakif/news-curator/internal/recommend"
	"github.com/sakif/news-curator/internal/repository/sqlite"
	"github.com/sakif/news-curator/internal/service"
	"github.com/sakif/news-curator/internal/source"
	"github.com/sakif/news-curator/internal/tokenize"
	"github.com/sakif/news-curator/internal/vectorspace"
)

// Recipe ranking categories on the recipe site. Coffee lives under drinks.
const (
	coffeeRanking  = "27-266"
	cookingRanking = "30"
)

// app is the fully wired object graph. The caller owns db and must Close it.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	db      *sqlite.DB
	curator *service.CurationService
}

// buildApp loads the config and wires every dependency.
//
// DEPENDENCY GRAPH:
//
//	config ─┬─ sqlite.DB ──────────────┬─ Aggregator ─┐
//	        ├─ Client→Adapter→Guard ───┘              ├─ CurationService
//	        └─ Tokenizer→Builder ──────── Engine ─────┘
func buildApp(path string) (*app, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	// === 1. LOGGING ===
	// Logs go to stderr so `curator ingest ... | jq` only sees the JSON.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Logging.SlogLevel(),
	}))
	slog.SetDefault(logger)

	// === 2. DATABASE ===
	// os.MkdirAll is `mkdir -p`: a fresh checkout has no data/ directory yet.
	dbDir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory %s: %w", dbDir, err)
	}
	db, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// === 3. SOURCES ===
	// Every site gets its own Client so each has its own rate limiter, and its
	// own breaker so one dead site never slows down the others.
	src := cfg.Sources
	newClient := func() *source.Client {
		return source.NewClient(source.ClientConfig{
			UserAgent:     src.UserAgent,
			Timeout:       cfg.Ingest.PerSourceTimeout(),
			RatePerSecond: src.RatePerSecond,
			Burst:         src.Burst,
		})
	}
	breaker := source.BreakerConfig{
		ConsecutiveFailures: src.BreakerFailures,
		Cooldown:            src.BreakerCooldown(),
	}
	guard := func(a source.Adapter) source.Adapter {
		return source.NewGuard(a, breaker, logger)
	}

	zenn := guard(source.NewZenn(newClient(), src.ZennBaseURL))
	qiita := guard(source.NewQiita(newClient(), src.QiitaBaseURL))
	gekisaka := guard(source.NewGekisaka(newClient(), src.GekisakaFeedURL))
	rakuten := source.NewRakuten(newClient(), src.RakutenBaseURL, src.RakutenAppID)
	recipes := guard(rakuten)

	routes := ingest.Routes{
		model.CategoryProgramming: {{Adapter: zenn}, {Adapter: qiita}},
		model.CategorySoccer:      {{Adapter: gekisaka}},
		model.CategoryCoffee:      {{Adapter: recipes, Selector: coffeeRanking}},
		model.CategoryCooking:     {{Adapter: recipes, Selector: cookingRanking}},
	}

	var categories service.CategoryLister
	if src.RakutenAppID != "" {
		categories = rakuten
	} else {
		logger.Warn("RAKUTEN_APP_ID not set; coffee, cooking and /api/categories will be unavailable")
	}

	aggregator := ingest.NewAggregator(routes, db, ingest.Config{
		PerSourceTimeout: cfg.Ingest.PerSourceTimeout(),
		Budget:           cfg.Ingest.Budget(),
		SampleSize:       cfg.Ingest.SampleSize,
		MaxCorpusSize:    cfg.Ingest.MaxCorpusSize,
		Parallelism:      cfg.Ingest.Parallelism,
	}, logger)

	// === 4. RECOMMENDER ===
	// Loading the IPA dictionary takes a moment; do it once at startup.
	tok, err := tokenize.NewDefault()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}
	engine := recommend.NewEngine(db, db, vectorspace.NewBuilder(tok), logger)

	// === 5. SERVICE ===
	curator := service.NewCurationService(service.Deps{
		Ingester:    aggregator,
		Recommender: engine,
		Documents:   db,
		Users:       db,
		Favorites:   db,
		Categories:  categories,
	}, cfg.Ingest.SampleSize, cfg.Recommend.TopN, logger)

	return &app{cfg: cfg, logger: logger, db: db, curator: curator}, nil
}

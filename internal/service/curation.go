// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler / CLI (outer layer) → parses input, writes output
//	Service (business layer)    → validates, enforces rules, orchestrates
//	Ingest / Recommend / Store  → the actual work
//
// CurationService is the single entry point both the HTTP handlers and the
// CLI commands call. It speaks in primitives (category names, emails, IDs)
// and returns domain errors from apperror; callers translate those into
// status codes or exit codes.
//
// DEPENDENCY INJECTION:
// Every collaborator is an interface. In tests we pass hand-written mocks
// (see curation_test.go); main.go passes the real aggregator, engine and
// SQLite store.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/news-curator/internal/apperror"
	"github.com/sakif/news-curator/internal/model"
	"github.com/sakif/news-curator/internal/repository"
)

// Request limits.
const (
	DefaultSampleSize = 15
	MaxSampleSize     = 200
	DefaultTopN       = 10
	MaxTopN           = 100
)

// recipeParents maps a live category to its Rakuten parent category ID.
var recipeParents = map[model.Category]string{
	model.CategoryCoffee:  "27",
	model.CategoryCooking: "38",
}

// Ingester runs one ingestion for a category.
type Ingester interface {
	Ingest(ctx context.Context, category model.Category, sampleSize int) ([]model.Document, error)
}

// Recommender ranks documents for a user.
type Recommender interface {
	Recommend(ctx context.Context, userID string, topN int) ([]model.Document, error)
}

// CategoryLister lists recipe sub-categories under a parent ID.
type CategoryLister interface {
	Categories(ctx context.Context, parentID string) ([]model.RecipeCategory, error)
}

// CurationService handles ingestion, recommendations and favorites.
type CurationService struct {
	ingester    Ingester
	recommender Recommender
	docs        repository.DocumentRepository
	users       repository.UserRepository
	favorites   repository.FavoriteRepository
	categories  CategoryLister // nil when the recipe API is not configured
	logger      *slog.Logger

	sampleSize int
	topN       int
	validate   *validator.Validate
}

// Deps groups the collaborators. A struct keeps NewCurationService readable
// as the list grows.
type Deps struct {
	Ingester    Ingester
	Recommender Recommender
	Documents   repository.DocumentRepository
	Users       repository.UserRepository
	Favorites   repository.FavoriteRepository
	Categories  CategoryLister
}

// NewCurationService creates a CurationService.
// sampleSize and topN are the defaults used when a caller passes zero.
func NewCurationService(deps Deps, sampleSize, topN int, logger *slog.Logger) *CurationService {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &CurationService{
		ingester:    deps.Ingester,
		recommender: deps.Recommender,
		docs:        deps.Documents,
		users:       deps.Users,
		favorites:   deps.Favorites,
		categories:  deps.Categories,
		logger:      logger,
		sampleSize:  sampleSize,
		topN:        topN,
		validate:    validator.New(),
	}
}

// Ingest pulls fresh items for categoryName and returns a sample.
func (s *CurationService) Ingest(ctx context.Context, categoryName string, sampleSize int) ([]model.Document, error) {
	category, err := model.ParseCategory(categoryName)
	if err != nil {
		return nil, apperror.ValidationFailed("category", err.Error())
	}

	if sampleSize <= 0 {
		sampleSize = s.sampleSize
	}
	if sampleSize > MaxSampleSize {
		return nil, apperror.ValidationFailed("sampleSize",
			fmt.Sprintf("sample size must be %d or less", MaxSampleSize))
	}

	docs, err := s.ingester.Ingest(ctx, category, sampleSize)
	if err != nil {
		s.logger.Error("ingest failed",
			slog.String("category", category.String()),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("ingesting %s: %w", category, err)
	}
	return docs, nil
}

// Recommend returns up to topN documents for the user with this email.
func (s *CurationService) Recommend(ctx context.Context, email string, topN int) ([]model.Document, error) {
	if topN <= 0 {
		topN = s.topN
	}
	if topN > MaxTopN {
		return nil, apperror.ValidationFailed("topN",
			fmt.Sprintf("topN must be %d or less", MaxTopN))
	}

	user, err := s.user(ctx, email)
	if err != nil {
		return nil, err
	}

	docs, err := s.recommender.Recommend(ctx, user.ID, topN)
	if err != nil {
		s.logger.Error("recommend failed",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("recommending for %s: %w", user.ID, err)
	}
	return docs, nil
}

// Favorite adds documentID to the user's favorites and returns the updated list.
//
// IDEMPOTENT:
// Favoriting twice is not an error; the second call changes nothing and
// returns the same list.
func (s *CurationService) Favorite(ctx context.Context, email, documentID string) ([]model.Document, error) {
	user, err := s.user(ctx, email)
	if err != nil {
		return nil, err
	}

	documentID, err = s.storedDocumentID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	added, err := s.favorites.SetFavorite(ctx, user.ID, documentID, true)
	if err != nil {
		return nil, fmt.Errorf("adding favorite: %w", err)
	}
	if added {
		s.logger.Info("favorite added",
			slog.String("user_id", user.ID),
			slog.String("document_id", documentID),
		)
	}

	return s.listFavorites(ctx, user.ID)
}

// Unfavorite removes documentID from the user's favorites.
// Removing something that was never favorited is a not-found error.
func (s *CurationService) Unfavorite(ctx context.Context, email, documentID string) ([]model.Document, error) {
	user, err := s.user(ctx, email)
	if err != nil {
		return nil, err
	}

	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return nil, apperror.ValidationFailed("id", "document ID is required")
	}

	removed, err := s.favorites.SetFavorite(ctx, user.ID, documentID, false)
	if err != nil {
		return nil, fmt.Errorf("removing favorite: %w", err)
	}
	if !removed {
		return nil, apperror.NotFavorited(documentID)
	}

	s.logger.Info("favorite removed",
		slog.String("user_id", user.ID),
		slog.String("document_id", documentID),
	)
	return s.listFavorites(ctx, user.ID)
}

// Favorites lists the user's favorites, oldest first.
func (s *CurationService) Favorites(ctx context.Context, email string) ([]model.Document, error) {
	user, err := s.user(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.listFavorites(ctx, user.ID)
}

// RecipeCategories lists the recipe sub-categories of a live category.
// A name with no recipe parent yields an empty list, not an error.
func (s *CurationService) RecipeCategories(ctx context.Context, parentName string) ([]model.RecipeCategory, error) {
	category, err := model.ParseCategory(parentName)
	if err != nil {
		return []model.RecipeCategory{}, nil
	}
	parentID, ok := recipeParents[category]
	if !ok {
		return []model.RecipeCategory{}, nil
	}

	if s.categories == nil {
		return nil, apperror.Unavailable("recipe categories are not configured")
	}

	cats, err := s.categories.Categories(ctx, parentID)
	if err != nil {
		s.logger.Error("listing recipe categories failed",
			slog.String("parent", parentID),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Unavailable("recipe categories are temporarily unavailable")
	}
	return cats, nil
}

// user validates the email and returns its user, creating it on first sight.
func (s *CurationService) user(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return nil, apperror.ValidationFailed("email", "email is not valid")
	}

	user, err := s.users.EnsureByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("resolving user: %w", err)
	}
	return user, nil
}

// storedDocumentID checks that id names a stored document.
// Live items only exist inside one response and cannot be favorited.
func (s *CurationService) storedDocumentID(ctx context.Context, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", apperror.ValidationFailed("id", "document ID is required")
	}
	if strings.HasPrefix(id, model.LivePrefix) {
		return "", apperror.ValidationFailed("id", "live items cannot be favorited")
	}

	if _, err := s.docs.GetByID(ctx, id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *CurationService) listFavorites(ctx context.Context, userID string) ([]model.Document, error) {
	docs, err := s.favorites.ListFavorites(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing favorites: %w", err)
	}
	return docs, nil
}

package service

import (
	"context"
	"net/http"

	"github.com/journey-feed-api/internal/config"
	"github.com/journey-feed-api/internal/models"
	"github.com/journey-feed-api/internal/repository"
	"github.com/journey-feed-api/internal/storage"
	"github.com/journey-feed-api/internal/validation"
	"github.com/rs/zerolog"
)

// ArticleService defines the article feed operations. Reads never return
// errors: failures are logged, counted and degraded to an empty result.
type ArticleService interface {
	GetAll(ctx context.Context) []models.Article
	GetByID(ctx context.Context, id string) *models.ArticleWithProfile
	GetAllIDs(ctx context.Context) []string
	GetByAuthor(ctx context.Context, authorID string) []models.Article
	GetPublished(ctx context.Context) []models.Article
	GetTrending(ctx context.Context, limit int) []models.Article
	GetLatest(ctx context.Context, limit int) []models.Article
	GetPopular(ctx context.Context, limit int) []models.Article
	GetRelated(ctx context.Context, id string, limit int) []models.Article
	GetTimeline(ctx context.Context, authorID, currentID string) models.Timeline
	Create(ctx context.Context, authorID string, req *models.CreateArticleRequest) *models.CreateArticleResult
}

// ProfileService defines profile read and self-service edit
type ProfileService interface {
	Get(ctx context.Context, id string) *models.ProfileDetails
	Upsert(ctx context.Context, id string, req *models.UpsertProfileRequest) *models.ProfileResult
}

// UploadService stores user images
type UploadService interface {
	Upload(ctx context.Context, userID string, kind models.UploadKind, file *models.UploadFile) *models.UploadResult
}

// ExportService defines the interface for export operations
type ExportService interface {
	StreamArticles(ctx context.Context, w http.ResponseWriter, format string) error
	GetCount(ctx context.Context, resource string) (int, error)
}

// Services holds all service interfaces
type Services struct {
	Article ArticleService
	Profile ProfileService
	Upload  UploadService
	Export  ExportService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, store storage.ObjectStore, cfg *config.Config, log zerolog.Logger) *Services {
	v := validation.NewValidator()

	return &Services{
		Article: newArticleService(repos, v, cfg.Feed, log),
		Profile: newProfileService(repos.Profile, v, log),
		Upload:  newUploadService(store, cfg.Upload, log),
		Export:  newExportService(repos, log),
	}
}

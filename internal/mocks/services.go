package mocks

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/journey-feed-api/internal/models"
	"github.com/journey-feed-api/internal/service"
	"github.com/journey-feed-api/internal/storage"
)

// Verify interface compliance
var (
	_ service.ArticleService = (*MockArticleService)(nil)
	_ service.ProfileService = (*MockProfileService)(nil)
	_ service.UploadService  = (*MockUploadService)(nil)
	_ service.ExportService  = (*MockExportService)(nil)
	_ storage.ObjectStore    = (*MockObjectStore)(nil)
)

// MockArticleService is a mock implementation of ArticleService. Unset
// functions return empty results.
type MockArticleService struct {
	Articles []models.Article

	GetByIDFunc     func(ctx context.Context, id string) *models.ArticleWithProfile
	GetTrendingFunc func(ctx context.Context, limit int) []models.Article
	GetLatestFunc   func(ctx context.Context, limit int) []models.Article
	GetPopularFunc  func(ctx context.Context, limit int) []models.Article
	GetRelatedFunc  func(ctx context.Context, id string, limit int) []models.Article
	GetTimelineFunc func(ctx context.Context, authorID, currentID string) models.Timeline
	CreateFunc      func(ctx context.Context, authorID string, req *models.CreateArticleRequest) *models.CreateArticleResult

	// Limits records the limit passed to the limited feeds
	Limits []int
}

func NewMockArticleService(articles ...models.Article) *MockArticleService {
	return &MockArticleService{Articles: articles}
}

func (m *MockArticleService) GetAll(ctx context.Context) []models.Article {
	return append([]models.Article{}, m.Articles...)
}

func (m *MockArticleService) GetByID(ctx context.Context, id string) *models.ArticleWithProfile {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	for _, a := range m.Articles {
		if a.ID == id {
			return &models.ArticleWithProfile{Article: a}
		}
	}
	return nil
}

func (m *MockArticleService) GetAllIDs(ctx context.Context) []string {
	ids := make([]string, 0, len(m.Articles))
	for _, a := range m.Articles {
		ids = append(ids, a.ID)
	}
	return ids
}

func (m *MockArticleService) GetByAuthor(ctx context.Context, authorID string) []models.Article {
	out := []models.Article{}
	for _, a := range m.Articles {
		if a.AuthorID != nil && *a.AuthorID == authorID {
			out = append(out, a)
		}
	}
	return out
}

func (m *MockArticleService) GetPublished(ctx context.Context) []models.Article {
	out := []models.Article{}
	for _, a := range m.Articles {
		if a.IsPublished != nil && *a.IsPublished {
			out = append(out, a)
		}
	}
	return out
}

func (m *MockArticleService) GetTrending(ctx context.Context, limit int) []models.Article {
	m.Limits = append(m.Limits, limit)
	if m.GetTrendingFunc != nil {
		return m.GetTrendingFunc(ctx, limit)
	}
	return []models.Article{}
}

func (m *MockArticleService) GetLatest(ctx context.Context, limit int) []models.Article {
	m.Limits = append(m.Limits, limit)
	if m.GetLatestFunc != nil {
		return m.GetLatestFunc(ctx, limit)
	}
	return []models.Article{}
}

func (m *MockArticleService) GetPopular(ctx context.Context, limit int) []models.Article {
	m.Limits = append(m.Limits, limit)
	if m.GetPopularFunc != nil {
		return m.GetPopularFunc(ctx, limit)
	}
	return []models.Article{}
}

func (m *MockArticleService) GetRelated(ctx context.Context, id string, limit int) []models.Article {
	m.Limits = append(m.Limits, limit)
	if m.GetRelatedFunc != nil {
		return m.GetRelatedFunc(ctx, id, limit)
	}
	return []models.Article{}
}

func (m *MockArticleService) GetTimeline(ctx context.Context, authorID, currentID string) models.Timeline {
	if m.GetTimelineFunc != nil {
		return m.GetTimelineFunc(ctx, authorID, currentID)
	}
	return models.Timeline{}
}

func (m *MockArticleService) Create(ctx context.Context, authorID string, req *models.CreateArticleRequest) *models.CreateArticleResult {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, authorID, req)
	}
	return &models.CreateArticleResult{Success: true, Message: "article published", ID: "test-article-id"}
}

// MockProfileService is a mock implementation of ProfileService
type MockProfileService struct {
	Profiles   map[string]*models.ProfileDetails
	UpsertFunc func(ctx context.Context, id string, req *models.UpsertProfileRequest) *models.ProfileResult
}

func NewMockProfileService() *MockProfileService {
	return &MockProfileService{Profiles: make(map[string]*models.ProfileDetails)}
}

func (m *MockProfileService) Get(ctx context.Context, id string) *models.ProfileDetails {
	return m.Profiles[id]
}

func (m *MockProfileService) Upsert(ctx context.Context, id string, req *models.UpsertProfileRequest) *models.ProfileResult {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, id, req)
	}
	d := &models.ProfileDetails{Profile: models.Profile{ID: id}}
	m.Profiles[id] = d
	return &models.ProfileResult{Success: true, Message: "profile saved", Profile: d}
}

// MockUploadService is a mock implementation of UploadService
type MockUploadService struct {
	UploadFunc func(ctx context.Context, userID string, kind models.UploadKind, file *models.UploadFile) *models.UploadResult
	Uploads    []*models.UploadFile
}

func NewMockUploadService() *MockUploadService {
	return &MockUploadService{}
}

func (m *MockUploadService) Upload(ctx context.Context, userID string, kind models.UploadKind, file *models.UploadFile) *models.UploadResult {
	m.Uploads = append(m.Uploads, file)
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, userID, kind, file)
	}
	return &models.UploadResult{Success: true, URL: "https://cdn.example.com/" + string(kind) + "/test.jpg", Message: "image uploaded"}
}

// MockExportService is a mock implementation of ExportService
type MockExportService struct {
	StreamArticlesFunc func(ctx context.Context, w http.ResponseWriter, format string) error
	Counts             map[string]int
	CountError         error
}

func NewMockExportService() *MockExportService {
	return &MockExportService{
		Counts: map[string]int{
			"articles": 0,
			"profiles": 0,
		},
	}
}

func (m *MockExportService) StreamArticles(ctx context.Context, w http.ResponseWriter, format string) error {
	if m.StreamArticlesFunc != nil {
		return m.StreamArticlesFunc(ctx, w, format)
	}
	return nil
}

func (m *MockExportService) GetCount(ctx context.Context, resource string) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	return m.Counts[resource], nil
}

// MockObjectStore keeps uploaded objects in memory
type MockObjectStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Types   map[string]string
	PutErr  error
}

func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{
		Objects: make(map[string][]byte),
		Types:   make(map[string]string),
	}
}

func (m *MockObjectStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	if m.PutErr != nil {
		return m.PutErr
	}
	if body == nil {
		return errors.New("nil body")
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[key] = buf.Bytes()
	m.Types[key] = contentType
	return nil
}

func (m *MockObjectStore) PublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/journey-feed-api/internal/metrics"
	"github.com/journey-feed-api/internal/models"
	"github.com/journey-feed-api/internal/validation"
)

// Create validates and stores a new article for authorID. Failures come back
// as an unsuccessful result, never as an error.
func (s *articleService) Create(ctx context.Context, authorID string, req *models.CreateArticleRequest) *models.CreateArticleResult {
	if authorID == "" {
		metrics.ArticlesCreated.WithLabelValues("unauthorized").Inc()
		return &models.CreateArticleResult{Success: false, Message: "login required"}
	}

	s.validator.NormalizeArticle(req)
	if errs := s.validator.ValidateArticle(req); len(errs) > 0 {
		metrics.ArticlesCreated.WithLabelValues("invalid").Inc()
		return &models.CreateArticleResult{
			Success: false,
			Message: "please fill in the required fields: " + errs[0].Message,
			Errors:  errs,
		}
	}

	// Validated above
	eventDate, _ := validation.ParseDate(req.ActualEventDate)
	now := time.Now()
	published := true
	if req.Publish != nil {
		published = *req.Publish
	}

	row := &models.ArticleRow{
		ID:              uuid.New().String(),
		Title:           req.Title,
		Summary:         req.Summary,
		Content:         req.Content,
		AuthorID:        &authorID,
		Phase:           req.Phase,
		Outcome:         req.Outcome,
		Categories:      req.Categories,
		Date:            now,
		ActualEventDate: &eventDate,
		CreatedAt:       now,
		IsPublished:     &published,
	}
	if req.ImageURL != "" {
		row.ImageURL = &req.ImageURL
	}

	// The display name is denormalized so the article survives a missing profile
	profile, err := s.profiles.GetByID(ctx, authorID)
	if err != nil {
		s.log.Warn().Err(err).Str("author_id", authorID).Msg("Author profile unavailable, storing article without author name")
	}
	if name := displayName(profile); name != "" {
		row.Author = &name
	}

	if err := s.articles.Create(ctx, row); err != nil {
		metrics.ArticlesCreated.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Str("author_id", authorID).Msg("Failed to create article")
		return &models.CreateArticleResult{Success: false, Message: "failed to save the article, please try again later"}
	}

	metrics.ArticlesCreated.WithLabelValues("success").Inc()
	s.log.Info().Str("article_id", row.ID).Str("author_id", authorID).Bool("published", published).Msg("Article created")
	return &models.CreateArticleResult{Success: true, Message: "article published", ID: row.ID}
}

func displayName(p *models.Profile) string {
	if p == nil {
		return ""
	}
	if p.FullName != nil && *p.FullName != "" {
		return *p.FullName
	}
	if p.Username != nil {
		return *p.Username
	}
	return ""
}

package service

import (
	"context"
	"time"

	"github.com/journey-feed-api/internal/config"
	"github.com/journey-feed-api/internal/metrics"
	"github.com/journey-feed-api/internal/models"
	"github.com/journey-feed-api/internal/repository"
	"github.com/journey-feed-api/internal/validation"
	"github.com/rs/zerolog"
)

// articleService is the concrete implementation of ArticleService
type articleService struct {
	articles  repository.ArticleRepository
	profiles  repository.ProfileRepository
	validator *validation.Validator
	feed      config.FeedConfig
	log       zerolog.Logger
}

// newArticleService creates a new ArticleService
func newArticleService(repos *repository.Repositories, v *validation.Validator, feed config.FeedConfig, log zerolog.Logger) *articleService {
	return &articleService{
		articles:  repos.Article,
		profiles:  repos.Profile,
		validator: v,
		feed:      feed,
		log:       log.With().Str("service", "article").Logger(),
	}
}

// GetAll returns every article, latest event first
func (s *articleService) GetAll(ctx context.Context) []models.Article {
	return s.list(ctx, "get_all", repository.ArticleQuery{
		OrderBy: repository.OrderByEventDate,
	})
}

// GetByAuthor returns an author's articles in journey order, oldest event first
func (s *articleService) GetByAuthor(ctx context.Context, authorID string) []models.Article {
	if authorID == "" {
		return []models.Article{}
	}
	return s.list(ctx, "get_by_author", repository.ArticleQuery{
		AuthorID:  authorID,
		OrderBy:   repository.OrderByEventDate,
		Ascending: true,
	})
}

// GetPublished returns published articles, newest first
func (s *articleService) GetPublished(ctx context.Context) []models.Article {
	return s.list(ctx, "get_published", repository.ArticleQuery{
		PublishedOnly: true,
		OrderBy:       repository.OrderByCreatedAt,
	})
}

// GetTrending returns the most liked published articles
func (s *articleService) GetTrending(ctx context.Context, limit int) []models.Article {
	return s.list(ctx, "get_trending", repository.ArticleQuery{
		PublishedOnly: true,
		OrderBy:       repository.OrderByLikes,
		Limit:         s.feed.ClampLimit(limit, s.feed.TrendingLimit),
	})
}

// GetLatest returns the most recently created published articles
func (s *articleService) GetLatest(ctx context.Context, limit int) []models.Article {
	return s.list(ctx, "get_latest", repository.ArticleQuery{
		PublishedOnly: true,
		OrderBy:       repository.OrderByCreatedAt,
		Limit:         s.feed.ClampLimit(limit, s.feed.LatestLimit),
	})
}

// GetPopular returns the most liked published articles. It shares
// GetTrending's query today but is a separate capability for its callers.
func (s *articleService) GetPopular(ctx context.Context, limit int) []models.Article {
	return s.list(ctx, "get_popular", repository.ArticleQuery{
		PublishedOnly: true,
		OrderBy:       repository.OrderByLikes,
		Limit:         s.feed.ClampLimit(limit, s.feed.PopularLimit),
	})
}

// GetAllIDs returns every article id
func (s *articleService) GetAllIDs(ctx context.Context) []string {
	ids, err := s.articles.GetAllIDs(ctx)
	if err != nil {
		s.degrade("get_all_ids", err)
		return []string{}
	}
	if ids == nil {
		return []string{}
	}
	return ids
}

// GetByID returns the article with its author's profile, or nil. The joined
// fetch is tried first; if it fails the article and profile are fetched one
// after the other.
func (s *articleService) GetByID(ctx context.Context, id string) *models.ArticleWithProfile {
	row, profile, err := s.articles.GetByIDWithProfile(ctx, id)
	if err != nil {
		s.log.Warn().Err(err).Str("article_id", id).Msg("Joined article fetch failed, fetching sequentially")

		row, err = s.articles.GetByID(ctx, id)
		if err != nil {
			s.degrade("get_by_id", err)
			return nil
		}
		profile = nil
		if row != nil && row.AuthorID != nil {
			profile, err = s.profiles.GetByID(ctx, *row.AuthorID)
			if err != nil {
				s.log.Warn().Err(err).Str("author_id", *row.AuthorID).Msg("Author profile fetch failed")
				profile = nil
			}
		}
	}
	if row == nil {
		return nil
	}

	return &models.ArticleWithProfile{
		Article:       models.MapArticle(row, profile.Fragment()),
		AuthorProfile: models.NewProfileDetails(profile, time.Now()),
	}
}

// list fetches rows, then resolves their authors in one batch
func (s *articleService) list(ctx context.Context, op string, q repository.ArticleQuery) []models.Article {
	rows, err := s.articles.List(ctx, q)
	if err != nil {
		s.degrade(op, err)
		return []models.Article{}
	}
	return s.resolveAuthors(ctx, op, rows)
}

// resolveAuthors batch-loads the distinct author profiles of rows and maps
// every row. A failed profile batch leaves the denormalized author names.
func (s *articleService) resolveAuthors(ctx context.Context, op string, rows []*models.ArticleRow) []models.Article {
	seen := make(map[string]bool)
	var ids []string
	for _, r := range rows {
		if r.AuthorID != nil && *r.AuthorID != "" && !seen[*r.AuthorID] {
			seen[*r.AuthorID] = true
			ids = append(ids, *r.AuthorID)
		}
	}

	authors := make(map[string]*models.AuthorFragment, len(ids))
	if len(ids) > 0 {
		profiles, err := s.profiles.GetByIDs(ctx, ids)
		if err != nil {
			metrics.ObserveQueryFailure(op + "_profiles")
			s.log.Warn().Err(err).Str("operation", op).Int("authors", len(ids)).Msg("Author batch fetch failed, using stored author names")
		}
		for _, p := range profiles {
			authors[p.ID] = p.Fragment()
		}
	}

	return models.MapArticles(rows, authors)
}

// degrade records a read failure that is being hidden from the caller
func (s *articleService) degrade(op string, err error) {
	metrics.ObserveQueryFailure(op)
	s.log.Error().Err(err).Str("operation", op).Msg("Article query failed, returning empty result")
}

package service

import (
	"context"
	"sort"

	"github.com/journey-feed-api/internal/metrics"
	"github.com/journey-feed-api/internal/models"
	"github.com/journey-feed-api/internal/repository"
)

// GetRelated returns up to limit other articles sharing the source's phase,
// its outcome, or at least one category. Candidates are ordered by display
// date, newest first; the result is never padded.
func (s *articleService) GetRelated(ctx context.Context, id string, limit int) []models.Article {
	if limit <= 0 {
		limit = s.feed.RelatedLimit
	}
	limit = s.feed.ClampLimit(limit, s.feed.RelatedLimit)

	src, err := s.articles.GetByID(ctx, id)
	if err != nil {
		s.degrade("get_related", err)
		return []models.Article{}
	}
	if src == nil {
		return []models.Article{}
	}

	perQuery := limit * 2
	var queries []repository.ArticleQuery
	if src.Phase != "" {
		queries = append(queries, repository.ArticleQuery{Phase: models.Phase(src.Phase), ExcludeID: id, Limit: perQuery})
	}
	if src.Outcome != "" {
		queries = append(queries, repository.ArticleQuery{Outcome: models.Outcome(src.Outcome), ExcludeID: id, Limit: perQuery})
	}
	if len(src.Categories) > 0 {
		cats := make([]models.Category, len(src.Categories))
		for i, c := range src.Categories {
			cats[i] = models.Category(c)
		}
		queries = append(queries, repository.ArticleQuery{CategoriesOverlap: cats, ExcludeID: id, Limit: perQuery})
	}

	seen := map[string]bool{id: true}
	var candidates []*models.ArticleRow
	for _, q := range queries {
		rows, err := s.articles.List(ctx, q)
		if err != nil {
			metrics.ObserveQueryFailure("get_related_candidates")
			s.log.Warn().Err(err).Str("article_id", id).Msg("Related candidate query failed")
			continue
		}
		for _, r := range rows {
			if seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			candidates = append(candidates, r)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Date.After(candidates[j].Date)
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return s.resolveAuthors(ctx, "get_related", candidates)
}

package service

import (
	"context"

	"github.com/journey-feed-api/internal/models"
)

// GetTimeline places currentID within the author's journey. When the
// article is not one of the author's, Index stays 0 and Found is false.
func (s *articleService) GetTimeline(ctx context.Context, authorID, currentID string) models.Timeline {
	list := s.GetByAuthor(ctx, authorID)

	t := models.Timeline{Total: len(list)}
	if len(list) == 0 {
		return t
	}

	for i := range list {
		if list[i].ID == currentID {
			t.Index = i
			t.Found = true
			break
		}
	}
	if !t.Found {
		s.log.Warn().
			Str("author_id", authorID).
			Str("article_id", currentID).
			Msg("Article not in author timeline, defaulting to first position")
	}

	if t.Index > 0 {
		prev := list[t.Index-1]
		t.Previous = &prev
	}
	if t.Index+1 < len(list) {
		next := list[t.Index+1]
		t.Next = &next
	}
	first := list[0].PreferredEventDate()
	t.FirstEventDate = &first
	return t
}

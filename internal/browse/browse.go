// Package browse filters and sorts an already loaded article list. It does
// no I/O and never mutates its input, so it can run on every keystroke.
package browse

import (
	"sort"
	"strings"

	"github.com/journey-feed-api/internal/models"
)

// SortKey selects one ordering
type SortKey string

const (
	// SortNone is the unset key; it sorts like SortNewest
	SortNone SortKey = ""
	// SortPopular orders by likes, most first
	SortPopular SortKey = "popular"
	// SortDate orders by preferred event date, newest first
	SortDate SortKey = "date"
	// SortNewest orders by publish date, newest first
	SortNewest SortKey = "newest"
)

// ParseSortKey accepts a sort key or one of its aliases
func ParseSortKey(s string) (SortKey, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return SortNone, true
	case "popular", "likes":
		return SortPopular, true
	case "date", "actual_event_date":
		return SortDate, true
	case "newest":
		return SortNewest, true
	}
	return SortNone, false
}

// FilterState is the browsing surface's current selection. Zero fields do
// not constrain.
type FilterState struct {
	Phase      models.Phase
	Outcome    models.Outcome
	Categories []models.Category
	Keyword    string
	SortBy     SortKey
}

// IsZero reports whether the state filters nothing and uses the default sort
func (f FilterState) IsZero() bool {
	return f.Phase == "" && f.Outcome == "" && len(f.Categories) == 0 &&
		strings.TrimSpace(f.Keyword) == "" && f.SortBy == SortNone
}

// Apply returns the articles matching every filter in f, ordered by f.SortBy
// (publish date, newest first, when unset). The input slice is left
// untouched.
func Apply(articles []models.Article, f FilterState) []models.Article {
	keyword := strings.ToLower(strings.TrimSpace(f.Keyword))

	out := make([]models.Article, 0, len(articles))
	for i := range articles {
		a := &articles[i]
		if f.Phase != "" && a.Phase != f.Phase {
			continue
		}
		if f.Outcome != "" && a.Outcome != f.Outcome {
			continue
		}
		if len(f.Categories) > 0 && !hasAnyCategory(a, f.Categories) {
			continue
		}
		if keyword != "" && !matchesKeyword(a, keyword) {
			continue
		}
		out = append(out, copyArticle(a))
	}

	switch f.SortBy {
	case SortPopular:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Likes > out[j].Likes })
	case SortDate:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].PreferredEventDate().After(out[j].PreferredEventDate())
		})
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	}
	return out
}

func hasAnyCategory(a *models.Article, want []models.Category) bool {
	for _, c := range want {
		if a.HasCategory(c) {
			return true
		}
	}
	return false
}

func matchesKeyword(a *models.Article, keyword string) bool {
	return strings.Contains(strings.ToLower(a.Title), keyword) ||
		strings.Contains(strings.ToLower(a.Summary), keyword) ||
		strings.Contains(strings.ToLower(a.Author), keyword)
}

// copyArticle detaches the category slice so callers cannot reach the input
func copyArticle(a *models.Article) models.Article {
	c := *a
	if a.Categories != nil {
		c.Categories = make([]models.Category, len(a.Categories))
		copy(c.Categories, a.Categories)
	}
	return c
}

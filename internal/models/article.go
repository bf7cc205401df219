package models

import (
	"time"
)

// AnonymousAuthor is shown when neither a profile nor the denormalized author name is available
const AnonymousAuthor = "匿名"

// Article is the resolved article returned to callers
type Article struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Summary         string     `json:"summary"`
	Content         string     `json:"content"`
	Author          string     `json:"author"`
	AuthorID        *string    `json:"author_id"`
	AuthorAvatarURL *string    `json:"author_avatar_url,omitempty"`
	AuthorUsername  *string    `json:"author_username,omitempty"`
	Likes           int        `json:"likes"`
	Phase           Phase      `json:"phase"`
	Outcome         Outcome    `json:"outcome"`
	Categories      []Category `json:"categories"`
	Date            time.Time  `json:"date"`
	EventDate       *time.Time `json:"event_date"`
	ActualEventDate *time.Time `json:"actual_event_date"`
	ImageURL        *string    `json:"image_url"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at"`
	IsPublished     *bool      `json:"is_published,omitempty"`
}

// PreferredEventDate returns actual_event_date, then the legacy event_date, then date
func (a *Article) PreferredEventDate() time.Time {
	switch {
	case a.ActualEventDate != nil:
		return *a.ActualEventDate
	case a.EventDate != nil:
		return *a.EventDate
	default:
		return a.Date
	}
}

// HasCategory reports whether the article is tagged with c
func (a *Article) HasCategory(c Category) bool {
	for _, v := range a.Categories {
		if v == c {
			return true
		}
	}
	return false
}

// ArticleWithProfile is an article joined with its author's full profile
type ArticleWithProfile struct {
	Article
	AuthorProfile *ProfileDetails `json:"author_profile,omitempty"`
}

// ArticleRow is the raw storage record. Likes and event dates exist under
// both legacy and current column names while the schema migrates.
type ArticleRow struct {
	ID              string     `db:"id"`
	Title           string     `db:"title"`
	Summary         string     `db:"summary"`
	Content         string     `db:"content"`
	Author          *string    `db:"author"`
	AuthorID        *string    `db:"author_id"`
	Likes           *int       `db:"likes"`
	LikesCount      *int       `db:"likes_count"`
	Phase           string     `db:"phase"`
	Outcome         string     `db:"outcome"`
	Categories      []string   `db:"categories"`
	Date            time.Time  `db:"date"`
	EventDate       *time.Time `db:"event_date"`
	ActualEventDate *time.Time `db:"actual_event_date"`
	ImageURL        *string    `db:"image_url"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       *time.Time `db:"updated_at"`
	IsPublished     *bool      `db:"is_published"`
}

// ArticleExport is the flat record written by the export stream
type ArticleExport struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Summary         string     `json:"summary"`
	AuthorID        *string    `json:"author_id"`
	Phase           string     `json:"phase"`
	Outcome         string     `json:"outcome"`
	Categories      []string   `json:"categories"`
	Likes           int        `json:"likes"`
	Date            time.Time  `json:"date"`
	ActualEventDate *time.Time `json:"actual_event_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// CreateArticleRequest is the authoring form payload
type CreateArticleRequest struct {
	Title           string   `json:"title" form:"title"`
	Summary         string   `json:"summary" form:"summary"`
	Content         string   `json:"content" form:"content"`
	ActualEventDate string   `json:"actual_event_date" form:"actual_event_date"`
	Phase           string   `json:"phase" form:"phase"`
	Outcome         string   `json:"outcome" form:"outcome"`
	Categories      []string `json:"categories" form:"categories"`
	ImageURL        string   `json:"image_url" form:"image_url"`
	Publish         *bool    `json:"publish" form:"publish"`
}

// CreateArticleResult is returned to the authoring form; failures are
// reported here rather than as errors so they can be rendered inline
type CreateArticleResult struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	ID      string            `json:"id,omitempty"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single field validation failure
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

package repository

import (
	"context"
	"errors"

	"github.com/journey-feed-api/internal/database"
	"github.com/journey-feed-api/internal/models"
)

// ErrUsernameTaken is returned by ProfileRepository.Upsert when another
// profile already owns the username
var ErrUsernameTaken = errors.New("username already taken")

// ArticleOrder selects the ORDER BY expression of an article listing
type ArticleOrder int

const (
	// OrderNone leaves rows in storage order
	OrderNone ArticleOrder = iota
	// OrderByEventDate orders by actual_event_date, then event_date, then date
	OrderByEventDate
	// OrderByCreatedAt orders by created_at
	OrderByCreatedAt
	// OrderByLikes orders by likes_count, then likes
	OrderByLikes
	// OrderByDate orders by the display date
	OrderByDate
)

// ArticleQuery declares the filter, order and limit of an article listing.
// Zero values mean "no constraint".
type ArticleQuery struct {
	AuthorID          string
	PublishedOnly     bool
	Phase             models.Phase
	Outcome           models.Outcome
	CategoriesOverlap []models.Category
	ExcludeID         string
	OrderBy           ArticleOrder
	Ascending         bool
	Limit             int
}

// ArticleRepository defines the interface for article data operations
type ArticleRepository interface {
	List(ctx context.Context, q ArticleQuery) ([]*models.ArticleRow, error)
	GetByID(ctx context.Context, id string) (*models.ArticleRow, error)
	// GetByIDWithProfile fetches the article and its author's profile in one
	// joined statement; the profile is nil when unresolvable
	GetByIDWithProfile(ctx context.Context, id string) (*models.ArticleRow, *models.Profile, error)
	GetAllIDs(ctx context.Context) ([]string, error)
	Create(ctx context.Context, row *models.ArticleRow) error
	Count(ctx context.Context) (int, error)
	StreamPublished(ctx context.Context, callback func(*models.ArticleRow) error) error
}

// ProfileRepository defines the interface for profile data operations
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.Profile, error)
	Upsert(ctx context.Context, profile *models.Profile) error
	Count(ctx context.Context) (int, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Article ArticleRepository
	Profile ProfileRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Article: NewArticleRepo(db),
		Profile: NewProfileRepo(db),
	}
}

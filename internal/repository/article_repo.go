package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/journey-feed-api/internal/database"
	"github.com/journey-feed-api/internal/models"
	"github.com/lib/pq"
)

// articleColumns is the scan order of every article SELECT
var articleColumns = []string{
	"id", "title", "summary", "content", "author", "author_id",
	"likes", "likes_count", "phase", "outcome", "categories", "date",
	"event_date", "actual_event_date", "image_url", "created_at", "updated_at", "is_published",
}

// Columns that older deployments may lack. The schema before author
// profiles has none of author_id, likes_count, actual_event_date or
// is_published.
var optionalArticleColumns = []string{
	"author_id", "likes", "likes_count", "event_date", "actual_event_date", "is_published",
}

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	db     *database.DB
	schema *schemaCache
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *database.DB) ArticleRepository {
	return &articleRepo{
		db:     db,
		schema: newSchemaCache(db, "articles", optionalArticleColumns...),
	}
}

// List returns the rows matching q
func (r *articleRepo) List(ctx context.Context, q ArticleQuery) ([]*models.ArticleRow, error) {
	var out []*models.ArticleRow
	err := r.schema.retry(ctx, func() error {
		query, args := r.buildList(q)
		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = out[:0]
		for rows.Next() {
			row, err := scanArticle(rows)
			if err != nil {
				return err
			}
			out = append(out, row)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	return out, nil
}

func (r *articleRepo) buildList(q ArticleQuery) (string, []interface{}) {
	var (
		where []string
		args  []interface{}
	)
	arg := func(cond string, v interface{}) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if q.AuthorID != "" {
		if r.schema.has("author_id") {
			arg("a.author_id = $%d", q.AuthorID)
		} else {
			// no article can belong to a profile yet
			where = append(where, "FALSE")
		}
	}
	if q.PublishedOnly && r.schema.has("is_published") {
		where = append(where, "a.is_published = true")
	}
	if q.Phase != "" {
		arg("a.phase = $%d", string(q.Phase))
	}
	if q.Outcome != "" {
		arg("a.outcome = $%d", string(q.Outcome))
	}
	if len(q.CategoriesOverlap) > 0 {
		cats := make([]string, len(q.CategoriesOverlap))
		for i, c := range q.CategoriesOverlap {
			cats[i] = string(c)
		}
		arg("a.categories && $%d", pq.Array(cats))
	}
	if q.ExcludeID != "" {
		arg("a.id <> $%d", q.ExcludeID)
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(r.schema.selectList("a", articleColumns))
	b.WriteString(" FROM articles a")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	if expr := r.orderExpr(q.OrderBy); expr != "" {
		dir := "DESC"
		if q.Ascending {
			dir = "ASC"
		}
		fmt.Fprintf(&b, " ORDER BY %s %s, a.id", expr, dir)
	}
	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	return b.String(), args
}

func (r *articleRepo) orderExpr(o ArticleOrder) string {
	switch o {
	case OrderByEventDate:
		return r.schema.coalesce("a", []string{"actual_event_date", "event_date"}, "a.date")
	case OrderByCreatedAt:
		return "a.created_at"
	case OrderByLikes:
		return r.schema.coalesce("a", []string{"likes_count", "likes"}, "0")
	case OrderByDate:
		return "a.date"
	default:
		return ""
	}
}

// GetByID retrieves an article by ID
func (r *articleRepo) GetByID(ctx context.Context, id string) (*models.ArticleRow, error) {
	var row *models.ArticleRow
	err := r.schema.retry(ctx, func() error {
		query := "SELECT " + r.schema.selectList("a", articleColumns) + " FROM articles a WHERE a.id = $1"
		var err error
		row, err = scanArticle(r.db.QueryRowContext(ctx, query, id))
		return err
	})
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article %s: %w", id, err)
	}
	return row, nil
}

// GetByIDWithProfile retrieves an article joined with its author's profile
func (r *articleRepo) GetByIDWithProfile(ctx context.Context, id string) (*models.ArticleRow, *models.Profile, error) {
	var (
		row     *models.ArticleRow
		profile *models.Profile
	)
	err := r.schema.retry(ctx, func() error {
		profile = nil
		if !r.schema.has("author_id") {
			query := "SELECT " + r.schema.selectList("a", articleColumns) + " FROM articles a WHERE a.id = $1"
			var err error
			row, err = scanArticle(r.db.QueryRowContext(ctx, query, id))
			return err
		}

		query := "SELECT " + r.schema.selectList("a", articleColumns) + ", " +
			qualifiedList("p", profileColumns) +
			" FROM articles a LEFT JOIN profiles p ON p.id = a.author_id WHERE a.id = $1"

		row = &models.ArticleRow{}
		var pr nullableProfile
		dest := append(articleDest(row), pr.dest()...)
		if err := r.db.QueryRowContext(ctx, query, id).Scan(dest...); err != nil {
			return err
		}
		profile = pr.profile()
		return nil
	})
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get article %s with profile: %w", id, err)
	}
	return row, profile, nil
}

// GetAllIDs retrieves all article IDs
func (r *articleRepo) GetAllIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id FROM articles")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Create inserts a new article. The event date goes to actual_event_date, or
// to the legacy event_date column when the former does not exist.
func (r *articleRepo) Create(ctx context.Context, row *models.ArticleRow) error {
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	if row.Categories == nil {
		row.Categories = []string{}
	}

	err := r.schema.retry(ctx, func() error {
		cols := []string{"id", "title", "summary", "content", "author", "phase", "outcome", "categories", "date", "image_url", "created_at"}
		args := []interface{}{
			row.ID, row.Title, row.Summary, row.Content, row.Author,
			row.Phase, row.Outcome, pq.Array(row.Categories), row.Date, row.ImageURL, row.CreatedAt,
		}
		if r.schema.has("author_id") {
			cols = append(cols, "author_id")
			args = append(args, row.AuthorID)
		}

		eventDate := row.ActualEventDate
		if eventDate == nil {
			eventDate = row.EventDate
		}
		if eventDate != nil {
			switch {
			case r.schema.has("actual_event_date"):
				cols = append(cols, "actual_event_date")
				args = append(args, *eventDate)
			case r.schema.has("event_date"):
				cols = append(cols, "event_date")
				args = append(args, *eventDate)
			}
		}
		if row.IsPublished != nil && r.schema.has("is_published") {
			cols = append(cols, "is_published")
			args = append(args, *row.IsPublished)
		}

		placeholders := make([]string, len(cols))
		for i := range cols {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
		}
		query := fmt.Sprintf("INSERT INTO articles (%s) VALUES (%s)",
			strings.Join(cols, ", "), strings.Join(placeholders, ", "))
		_, err := r.db.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create article: %w", err)
	}
	return nil
}

// Count returns the total number of articles
func (r *articleRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count)
	return count, err
}

// StreamPublished streams published articles oldest first for export
func (r *articleRepo) StreamPublished(ctx context.Context, callback func(*models.ArticleRow) error) error {
	return r.schema.retry(ctx, func() error {
		query := "SELECT " + r.schema.selectList("a", articleColumns) + " FROM articles a"
		if r.schema.has("is_published") {
			query += " WHERE a.is_published = true"
		}
		query += " ORDER BY a.created_at, a.id"

		rows, err := r.db.QueryContext(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			row, err := scanArticle(rows)
			if err != nil {
				return err
			}
			if err := callback(row); err != nil {
				return err
			}
		}
		return rows.Err()
	})
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(s rowScanner) (*models.ArticleRow, error) {
	row := &models.ArticleRow{}
	if err := s.Scan(articleDest(row)...); err != nil {
		return nil, err
	}
	return row, nil
}

// articleDest matches articleColumns
func articleDest(row *models.ArticleRow) []interface{} {
	return []interface{}{
		&row.ID, &row.Title, &row.Summary, &row.Content, &row.Author, &row.AuthorID,
		&row.Likes, &row.LikesCount, &row.Phase, &row.Outcome, pq.Array(&row.Categories), &row.Date,
		&row.EventDate, &row.ActualEventDate, &row.ImageURL, &row.CreatedAt, &row.UpdatedAt, &row.IsPublished,
	}
}

func qualifiedList(alias string, columns []string) string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = qualify(alias, c)
	}
	return strings.Join(out, ", ")
}

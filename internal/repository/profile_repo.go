package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/journey-feed-api/internal/database"
	"github.com/journey-feed-api/internal/models"
	"github.com/lib/pq"
)

const usernameConstraint = "profiles_username_key"

// profileColumns is the scan order of every profile SELECT
var profileColumns = []string{
	"id", "username", "full_name", "avatar_url", "website", "age", "career", "bio",
	"consideration_start_date", "entrepreneurship_start_date", "created_at", "updated_at",
}

var profileSelect = "SELECT " + qualifiedList("", profileColumns) + " FROM profiles"

// profileRepo is the concrete implementation of ProfileRepository
type profileRepo struct {
	db *database.DB
}

// NewProfileRepo creates a new profile repository
func NewProfileRepo(db *database.DB) ProfileRepository {
	return &profileRepo{db: db}
}

// GetByID retrieves a profile by ID
func (r *profileRepo) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	p := &models.Profile{}
	err := r.db.QueryRowContext(ctx, profileSelect+" WHERE id = $1", id).Scan(profileDest(p)...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile %s: %w", id, err)
	}
	return p, nil
}

// GetByIDs retrieves every profile whose id is in ids, in one round trip
func (r *profileRepo) GetByIDs(ctx context.Context, ids []string) ([]*models.Profile, error) {
	if len(ids) == 0 {
		return []*models.Profile{}, nil
	}

	rows, err := r.db.QueryContext(ctx, profileSelect+" WHERE id = ANY($1)", pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]*models.Profile, 0, len(ids))
	for rows.Next() {
		p := &models.Profile{}
		if err := rows.Scan(profileDest(p)...); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// Upsert inserts or updates a profile by id
func (r *profileRepo) Upsert(ctx context.Context, p *models.Profile) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	now := time.Now()
	p.UpdatedAt = &now

	query := `
		INSERT INTO profiles (id, username, full_name, avatar_url, website, age, career, bio,
			consideration_start_date, entrepreneurship_start_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			full_name = EXCLUDED.full_name,
			avatar_url = EXCLUDED.avatar_url,
			website = EXCLUDED.website,
			age = EXCLUDED.age,
			career = EXCLUDED.career,
			bio = EXCLUDED.bio,
			consideration_start_date = EXCLUDED.consideration_start_date,
			entrepreneurship_start_date = EXCLUDED.entrepreneurship_start_date,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Username, p.FullName, p.AvatarURL, p.Website, p.Age, p.Career, p.Bio,
		p.ConsiderationStartDate, p.EntrepreneurshipStartDate, p.CreatedAt, p.UpdatedAt,
	)
	if isUniqueViolation(err, usernameConstraint) {
		return ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("failed to upsert profile %s: %w", p.ID, err)
	}
	return nil
}

// Count returns the total number of profiles
func (r *profileRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM profiles").Scan(&count)
	return count, err
}

// profileDest matches profileColumns
func profileDest(p *models.Profile) []interface{} {
	return []interface{}{
		&p.ID, &p.Username, &p.FullName, &p.AvatarURL, &p.Website, &p.Age, &p.Career, &p.Bio,
		&p.ConsiderationStartDate, &p.EntrepreneurshipStartDate, &p.CreatedAt, &p.UpdatedAt,
	}
}

// nullableProfile receives the right side of a LEFT JOIN, where every
// column may be NULL
type nullableProfile struct {
	id        sql.NullString
	createdAt sql.NullTime
	p         models.Profile
}

func (n *nullableProfile) dest() []interface{} {
	return []interface{}{
		&n.id, &n.p.Username, &n.p.FullName, &n.p.AvatarURL, &n.p.Website, &n.p.Age, &n.p.Career, &n.p.Bio,
		&n.p.ConsiderationStartDate, &n.p.EntrepreneurshipStartDate, &n.createdAt, &n.p.UpdatedAt,
	}
}

func (n *nullableProfile) profile() *models.Profile {
	if !n.id.Valid {
		return nil
	}
	p := n.p
	p.ID = n.id.String
	if n.createdAt.Valid {
		p.CreatedAt = n.createdAt.Time
	}
	return &p
}

// IsUsernameTaken reports whether err came from a username collision
func IsUsernameTaken(err error) bool {
	return errors.Is(err, ErrUsernameTaken)
}

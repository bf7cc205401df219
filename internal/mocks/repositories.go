package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/journey-feed-api/internal/models"
	"github.com/journey-feed-api/internal/repository"
)

// Compile-time interface compliance checks
var (
	_ repository.ArticleRepository = (*MockArticleRepository)(nil)
	_ repository.ProfileRepository = (*MockProfileRepository)(nil)
)

// MockArticleRepository is a mock implementation of ArticleRepository. It
// evaluates ArticleQuery in memory the way the SQL implementation does.
type MockArticleRepository struct {
	mu       sync.Mutex
	Articles map[string]*models.ArticleRow
	order    []string

	// Profiles backs GetByIDWithProfile when set
	Profiles *MockProfileRepository

	ListError        error
	ListFunc         func(ctx context.Context, q repository.ArticleQuery) ([]*models.ArticleRow, error)
	GetError         error
	JoinError        error
	InsertError      error
	CountError       error
	ListCalls        []repository.ArticleQuery
	GetByIDCalls     int
	JoinedFetchCalls int
}

func NewMockArticleRepository() *MockArticleRepository {
	return &MockArticleRepository{
		Articles: make(map[string]*models.ArticleRow),
	}
}

// Seed stores rows without going through Create
func (m *MockArticleRepository) Seed(rows ...*models.ArticleRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		if _, ok := m.Articles[r.ID]; !ok {
			m.order = append(m.order, r.ID)
		}
		m.Articles[r.ID] = r
	}
}

func (m *MockArticleRepository) List(ctx context.Context, q repository.ArticleQuery) ([]*models.ArticleRow, error) {
	m.mu.Lock()
	m.ListCalls = append(m.ListCalls, q)
	m.mu.Unlock()

	if m.ListFunc != nil {
		return m.ListFunc(ctx, q)
	}
	if m.ListError != nil {
		return nil, m.ListError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.ArticleRow
	for _, id := range m.order {
		r := m.Articles[id]
		if matches(r, q) {
			out = append(out, r)
		}
	}
	sortRows(out, q)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *MockArticleRepository) GetByID(ctx context.Context, id string) (*models.ArticleRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetByIDCalls++
	if m.GetError != nil {
		return nil, m.GetError
	}
	return m.Articles[id], nil
}

func (m *MockArticleRepository) GetByIDWithProfile(ctx context.Context, id string) (*models.ArticleRow, *models.Profile, error) {
	m.mu.Lock()
	m.JoinedFetchCalls++
	if m.JoinError != nil {
		defer m.mu.Unlock()
		return nil, nil, m.JoinError
	}
	if m.GetError != nil {
		defer m.mu.Unlock()
		return nil, nil, m.GetError
	}
	row := m.Articles[id]
	m.mu.Unlock()

	if row == nil {
		return nil, nil, nil
	}
	var profile *models.Profile
	if m.Profiles != nil && row.AuthorID != nil {
		profile, _ = m.Profiles.GetByID(ctx, *row.AuthorID)
	}
	return row, profile, nil
}

func (m *MockArticleRepository) GetAllIDs(ctx context.Context) ([]string, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.order...), nil
}

func (m *MockArticleRepository) Create(ctx context.Context, row *models.ArticleRow) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	m.Seed(row)
	return nil
}

func (m *MockArticleRepository) Count(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Articles), nil
}

func (m *MockArticleRepository) StreamPublished(ctx context.Context, callback func(*models.ArticleRow) error) error {
	rows, err := m.List(ctx, repository.ArticleQuery{PublishedOnly: true, OrderBy: repository.OrderByCreatedAt, Ascending: true})
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := callback(r); err != nil {
			return err
		}
	}
	return nil
}

func matches(r *models.ArticleRow, q repository.ArticleQuery) bool {
	if q.AuthorID != "" && (r.AuthorID == nil || *r.AuthorID != q.AuthorID) {
		return false
	}
	if q.PublishedOnly && (r.IsPublished == nil || !*r.IsPublished) {
		return false
	}
	if q.Phase != "" && r.Phase != string(q.Phase) {
		return false
	}
	if q.Outcome != "" && r.Outcome != string(q.Outcome) {
		return false
	}
	if q.ExcludeID != "" && r.ID == q.ExcludeID {
		return false
	}
	if len(q.CategoriesOverlap) > 0 {
		found := false
		for _, want := range q.CategoriesOverlap {
			for _, c := range r.Categories {
				if c == string(want) {
					found = true
				}
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func sortRows(rows []*models.ArticleRow, q repository.ArticleQuery) {
	if q.OrderBy == repository.OrderNone {
		return
	}
	less := func(a, b *models.ArticleRow) int {
		switch q.OrderBy {
		case repository.OrderByEventDate:
			return eventDate(a).Compare(eventDate(b))
		case repository.OrderByCreatedAt:
			return a.CreatedAt.Compare(b.CreatedAt)
		case repository.OrderByLikes:
			return likes(a) - likes(b)
		default:
			return a.Date.Compare(b.Date)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		c := less(rows[i], rows[j])
		if c == 0 {
			return rows[i].ID < rows[j].ID
		}
		if q.Ascending {
			return c < 0
		}
		return c > 0
	})
}

func eventDate(r *models.ArticleRow) time.Time {
	switch {
	case r.ActualEventDate != nil:
		return *r.ActualEventDate
	case r.EventDate != nil:
		return *r.EventDate
	default:
		return r.Date
	}
}

func likes(r *models.ArticleRow) int {
	switch {
	case r.LikesCount != nil:
		return *r.LikesCount
	case r.Likes != nil:
		return *r.Likes
	default:
		return 0
	}
}

// MockProfileRepository is a mock implementation of ProfileRepository
type MockProfileRepository struct {
	mu       sync.Mutex
	Profiles map[string]*models.Profile

	GetError      error
	UpsertError   error
	GetByIDsCalls int
}

func NewMockProfileRepository() *MockProfileRepository {
	return &MockProfileRepository{
		Profiles: make(map[string]*models.Profile),
	}
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	return m.Profiles[id], nil
}

func (m *MockProfileRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetByIDsCalls++
	if m.GetError != nil {
		return nil, m.GetError
	}
	out := make([]*models.Profile, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.Profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockProfileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertError != nil {
		return m.UpsertError
	}
	if profile.Username != nil {
		for id, existing := range m.Profiles {
			if id != profile.ID && existing.Username != nil && *existing.Username == *profile.Username {
				return repository.ErrUsernameTaken
			}
		}
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now()
	}
	m.Profiles[profile.ID] = profile
	return nil
}

func (m *MockProfileRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Profiles), nil
}

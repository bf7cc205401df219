package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func TestMapArticle_AuthorResolution(t *testing.T) {
	row := &ArticleRow{ID: "a1", Author: strPtr("Denormalized")}

	assert.Equal(t, "Full Name", MapArticle(row, &AuthorFragment{FullName: strPtr("Full Name")}).Author)
	assert.Equal(t, "Denormalized", MapArticle(row, &AuthorFragment{FullName: strPtr("")}).Author)
	assert.Equal(t, "Denormalized", MapArticle(row, nil).Author)
	assert.Equal(t, AnonymousAuthor, MapArticle(&ArticleRow{ID: "a2", Author: strPtr("")}, nil).Author)
	assert.Equal(t, AnonymousAuthor, MapArticle(&ArticleRow{ID: "a3"}, nil).Author)
}

func TestMapArticle_Likes(t *testing.T) {
	tests := []struct {
		name string
		row  ArticleRow
		want int
	}{
		{"current column wins", ArticleRow{Likes: intPtr(3), LikesCount: intPtr(9)}, 9},
		{"legacy column", ArticleRow{Likes: intPtr(3)}, 3},
		{"neither", ArticleRow{}, 0},
		{"current zero is still current", ArticleRow{Likes: intPtr(3), LikesCount: intPtr(0)}, 0},
		{"negative clamps", ArticleRow{LikesCount: intPtr(-4)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapArticle(&tt.row, nil).Likes)
		})
	}
}

func TestMapArticle_PassThroughAndIdempotence(t *testing.T) {
	event := time.Date(2023, 5, 1, 10, 0, 0, 0, time.FixedZone("JST", 9*3600))
	row := &ArticleRow{
		ID:              "a1",
		Categories:      []string{"sales", "marketing"},
		ActualEventDate: &event,
		Phase:           "launching",
	}
	frag := &AuthorFragment{AvatarURL: strPtr("https://cdn/a.png"), Username: strPtr("taro")}

	first := MapArticle(row, frag)
	second := MapArticle(row, frag)

	assert.Equal(t, first, second)
	assert.Equal(t, []Category{CategorySales, CategoryMarketing}, first.Categories)
	assert.Same(t, &event, first.ActualEventDate)
	assert.Equal(t, "taro", *first.AuthorUsername)
	assert.Equal(t, PhaseLaunching, first.Phase)
}

func TestMapArticle_NilCategoriesBecomeEmpty(t *testing.T) {
	a := MapArticle(&ArticleRow{ID: "a1"}, nil)
	assert.NotNil(t, a.Categories)
	assert.Empty(t, a.Categories)
}

func TestMapArticles_UsesAuthorLookup(t *testing.T) {
	rows := []*ArticleRow{
		{ID: "a1", AuthorID: strPtr("u1")},
		{ID: "a2", AuthorID: strPtr("u2"), Author: strPtr("Fallback")},
		{ID: "a3"},
	}
	authors := map[string]*AuthorFragment{"u1": {FullName: strPtr("One")}}

	got := MapArticles(rows, authors)

	assert.Equal(t, "One", got[0].Author)
	assert.Equal(t, "Fallback", got[1].Author)
	assert.Equal(t, AnonymousAuthor, got[2].Author)
}

func TestPreferredEventDate(t *testing.T) {
	date := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	legacy := date.AddDate(0, 0, -1)
	actual := date.AddDate(0, 0, -2)

	a := Article{Date: date}
	assert.Equal(t, date, a.PreferredEventDate())
	a.EventDate = &legacy
	assert.Equal(t, legacy, a.PreferredEventDate())
	a.ActualEventDate = &actual
	assert.Equal(t, actual, a.PreferredEventDate())
}

func TestDaysSince(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysSince(now, now))
	assert.Equal(t, 1, DaysSince(now.Add(-time.Hour), now))
	assert.Equal(t, 10, DaysSince(now.AddDate(0, 0, -10), now))
	assert.Equal(t, 0, DaysSince(now.AddDate(0, 0, 3), now), "future start floors at zero")
}

func TestNewProfileDetails(t *testing.T) {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	start := now.AddDate(0, 0, -30)

	d := NewProfileDetails(&Profile{ID: "u1", ConsiderationStartDate: &start}, now)

	assert.Equal(t, 30, *d.DaysSinceConsideration)
	assert.Nil(t, d.DaysSinceEntrepreneurship)
	assert.Nil(t, NewProfileDetails(nil, now))
	assert.Nil(t, (*Profile)(nil).Fragment())
}

func TestParseEnums(t *testing.T) {
	p, ok := ParsePhase("成長期")
	assert.True(t, ok)
	assert.Equal(t, PhaseGrowthStage, p)

	p, ok = ParsePhase("early_stage")
	assert.True(t, ok)
	assert.Equal(t, 2, p.Order())

	_, ok = ParsePhase("scaling")
	assert.False(t, ok)

	o, ok := ParseOutcome("失敗体験")
	assert.True(t, ok)
	assert.Equal(t, OutcomeFailure, o)

	c, ok := ParseCategory("マーケティング")
	assert.True(t, ok)
	assert.Equal(t, CategoryMarketing, c)
	assert.Equal(t, "経理", CategoryAccounting.Label())
}

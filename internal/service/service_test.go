package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/journey-feed-api/internal/config"
	"github.com/journey-feed-api/internal/metrics"
	"github.com/journey-feed-api/internal/mocks"
	"github.com/journey-feed-api/internal/models"
	"github.com/journey-feed-api/internal/repository"
	"github.com/journey-feed-api/internal/seed"
	"github.com/journey-feed-api/internal/service"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	articles *mocks.MockArticleRepository
	profiles *mocks.MockProfileRepository
	store    *mocks.MockObjectStore
	services *service.Services
}

func testConfig() *config.Config {
	return &config.Config{
		Feed: config.FeedConfig{
			RelatedLimit:  3,
			TrendingLimit: 4,
			LatestLimit:   4,
			PopularLimit:  4,
			MaxLimit:      10,
		},
		Upload: config.UploadConfig{
			MaxSize:      5 * 1024 * 1024,
			AllowedTypes: []string{"image/jpeg", "image/jpg", "image/png", "image/webp"},
		},
	}
}

func newHarness(t *testing.T, seeded bool) *harness {
	t.Helper()

	profiles := mocks.NewMockProfileRepository()
	articles := mocks.NewMockArticleRepository()
	articles.Profiles = profiles
	store := mocks.NewMockObjectStore()

	if seeded {
		require.NoError(t, seed.Load(context.Background(), articles, profiles))
	}

	repos := &repository.Repositories{Article: articles, Profile: profiles}
	return &harness{
		articles: articles,
		profiles: profiles,
		store:    store,
		services: service.NewServices(repos, store, testConfig(), zerolog.Nop()),
	}
}

func ids(articles []models.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.ID
	}
	return out
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestArticleService_GetAll(t *testing.T) {
	h := newHarness(t, true)

	all := h.services.Article.GetAll(context.Background())
	require.Len(t, all, 6)

	// Latest event first; the fintech row only has the legacy event_date
	assert.Equal(t, []string{
		seed.ArticleMarketingID,
		seed.ArticleDraftID,
		seed.ArticleFintechID,
		seed.ArticleResignID,
		seed.ArticleDecisionID,
		seed.ArticleLegacyID,
	}, ids(all))
}

func TestArticleService_AuthorResolution(t *testing.T) {
	h := newHarness(t, true)

	all := h.services.Article.GetAll(context.Background())
	byID := make(map[string]models.Article)
	for _, a := range all {
		byID[a.ID] = a
	}

	taro := byID[seed.ArticleDecisionID]
	assert.Equal(t, "山田太郎", taro.Author)
	require.NotNil(t, taro.AuthorAvatarURL)
	assert.Equal(t, "https://cdn.example.com/avatars/taro.png", *taro.AuthorAvatarURL)

	// No profile: the denormalized name is kept
	assert.Equal(t, "Legacy Writer", byID[seed.ArticleLegacyID].Author)
	assert.Nil(t, byID[seed.ArticleLegacyID].AuthorAvatarURL)

	// Legacy likes column resolves when likes_count is absent
	assert.Equal(t, 20, byID[seed.ArticleFintechID].Likes)

	// Profiles are fetched in one batch per listing
	assert.Equal(t, 1, h.profiles.GetByIDsCalls)
}

func TestArticleService_ProfileBatchFailureKeepsStoredNames(t *testing.T) {
	h := newHarness(t, true)
	h.profiles.GetError = errors.New("connection reset")

	all := h.services.Article.GetAll(context.Background())
	require.Len(t, all, 6)
	for _, a := range all {
		assert.NotEmpty(t, a.Author)
		assert.Nil(t, a.AuthorAvatarURL)
	}
}

func TestArticleService_GetByAuthor(t *testing.T) {
	h := newHarness(t, true)

	list := h.services.Article.GetByAuthor(context.Background(), seed.ProfileTaroID)
	assert.Equal(t, []string{seed.ArticleDecisionID, seed.ArticleResignID, seed.ArticleMarketingID}, ids(list))

	assert.Empty(t, h.services.Article.GetByAuthor(context.Background(), ""))
	assert.NotNil(t, h.services.Article.GetByAuthor(context.Background(), ""))
}

func TestArticleService_GetPublished(t *testing.T) {
	h := newHarness(t, true)

	list := h.services.Article.GetPublished(context.Background())
	assert.Equal(t, []string{
		seed.ArticleMarketingID,
		seed.ArticleFintechID,
		seed.ArticleResignID,
		seed.ArticleDecisionID,
	}, ids(list))
}

func TestArticleService_GetTrending(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	trending := h.services.Article.GetTrending(ctx, 0)
	assert.Equal(t, []string{
		seed.ArticleResignID,
		seed.ArticleFintechID,
		seed.ArticleDecisionID,
		seed.ArticleMarketingID,
	}, ids(trending))

	assert.Equal(t, []string{seed.ArticleResignID, seed.ArticleFintechID}, ids(h.services.Article.GetTrending(ctx, 2)))

	h.services.Article.GetTrending(ctx, 500)
	last := h.articles.ListCalls[len(h.articles.ListCalls)-1]
	assert.Equal(t, 10, last.Limit)
	assert.True(t, last.PublishedOnly)
	assert.Equal(t, repository.OrderByLikes, last.OrderBy)
}

func TestArticleService_GetLatestAndPopular(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	latest := h.services.Article.GetLatest(ctx, 2)
	assert.Equal(t, []string{seed.ArticleMarketingID, seed.ArticleFintechID}, ids(latest))

	popular := h.services.Article.GetPopular(ctx, 1)
	assert.Equal(t, []string{seed.ArticleResignID}, ids(popular))
}

func TestArticleService_GetAllIDs(t *testing.T) {
	h := newHarness(t, true)

	got := h.services.Article.GetAllIDs(context.Background())
	assert.Len(t, got, 6)
	assert.Contains(t, got, seed.ArticleLegacyID)
}

func TestArticleService_SoftDegrade(t *testing.T) {
	h := newHarness(t, true)
	h.articles.ListError = errors.New("relation \"articles\" does not exist")
	h.articles.GetError = errors.New("relation \"articles\" does not exist")
	ctx := context.Background()

	before := testutil.ToFloat64(metrics.StoreQueryFailures.WithLabelValues("get_all"))

	for name, list := range map[string][]models.Article{
		"all":       h.services.Article.GetAll(ctx),
		"author":    h.services.Article.GetByAuthor(ctx, seed.ProfileTaroID),
		"published": h.services.Article.GetPublished(ctx),
		"trending":  h.services.Article.GetTrending(ctx, 4),
		"latest":    h.services.Article.GetLatest(ctx, 4),
		"popular":   h.services.Article.GetPopular(ctx, 4),
		"related":   h.services.Article.GetRelated(ctx, seed.ArticleMarketingID, 3),
	} {
		assert.NotNil(t, list, name)
		assert.Empty(t, list, name)
	}

	allIDs := h.services.Article.GetAllIDs(ctx)
	assert.NotNil(t, allIDs)
	assert.Empty(t, allIDs)

	assert.Nil(t, h.services.Article.GetByID(ctx, seed.ArticleDecisionID))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.StoreQueryFailures.WithLabelValues("get_all")))
}

func TestArticleService_GetByID(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	got := h.services.Article.GetByID(ctx, seed.ArticleResignID)
	require.NotNil(t, got)
	assert.Equal(t, "山田太郎", got.Author)
	require.NotNil(t, got.AuthorProfile)
	assert.Equal(t, seed.ProfileTaroID, got.AuthorProfile.ID)
	assert.NotNil(t, got.AuthorProfile.DaysSinceConsideration)
	assert.Equal(t, 1, h.articles.JoinedFetchCalls)
	assert.Equal(t, 0, h.articles.GetByIDCalls)

	assert.Nil(t, h.services.Article.GetByID(ctx, "missing"))
}

func TestArticleService_GetByID_JoinFallback(t *testing.T) {
	h := newHarness(t, true)
	h.articles.JoinError = errors.New("could not find a relationship between articles and profiles")

	got := h.services.Article.GetByID(context.Background(), seed.ArticleFintechID)
	require.NotNil(t, got)
	assert.Equal(t, "佐藤花子", got.Author)
	require.NotNil(t, got.AuthorProfile)
	assert.Equal(t, seed.ProfileHanakoID, got.AuthorProfile.ID)
	assert.Equal(t, 1, h.articles.GetByIDCalls)
}

func TestArticleService_GetByID_NoProfile(t *testing.T) {
	h := newHarness(t, true)

	got := h.services.Article.GetByID(context.Background(), seed.ArticleLegacyID)
	require.NotNil(t, got)
	assert.Equal(t, "Legacy Writer", got.Author)
	assert.Nil(t, got.AuthorProfile)
}

func TestArticleService_GetRelated(t *testing.T) {
	h := newHarness(t, false)
	h.articles.Seed(
		&models.ArticleRow{
			ID: "source", Phase: "growth_stage", Outcome: "failure",
			Categories: []string{"marketing"}, Date: *day(2023, 9, 10),
		},
		&models.ArticleRow{
			ID: "phase-only", Phase: "growth_stage", Outcome: "success",
			Categories: []string{"accounting"}, Date: *day(2023, 5, 1),
		},
		&models.ArticleRow{
			ID: "category-only", Phase: "launching", Outcome: "other",
			Categories: []string{"marketing", "sales"}, Date: *day(2023, 8, 1),
		},
		&models.ArticleRow{
			ID: "unrelated", Phase: "considering", Outcome: "success",
			Categories: []string{"development"}, Date: *day(2023, 12, 1),
		},
	)

	related := h.services.Article.GetRelated(context.Background(), "source", 3)
	assert.Equal(t, []string{"category-only", "phase-only"}, ids(related))

	// Each candidate query excludes the source and asks for twice the limit
	require.Len(t, h.articles.ListCalls, 3)
	for _, q := range h.articles.ListCalls {
		assert.Equal(t, "source", q.ExcludeID)
		assert.Equal(t, 6, q.Limit)
	}
}

func TestArticleService_GetRelated_Seeded(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	// Only the growth-stage sales draft shares anything with the marketing article
	related := h.services.Article.GetRelated(ctx, seed.ArticleMarketingID, 0)
	assert.Equal(t, []string{seed.ArticleDraftID}, ids(related))

	related = h.services.Article.GetRelated(ctx, seed.ArticleResignID, 1)
	require.Len(t, related, 1)
	assert.NotEqual(t, seed.ArticleResignID, related[0].ID)

	missing := h.services.Article.GetRelated(ctx, "missing", 3)
	assert.NotNil(t, missing)
	assert.Empty(t, missing)
}

func TestArticleService_GetRelated_Dedupes(t *testing.T) {
	h := newHarness(t, false)
	h.articles.Seed(
		&models.ArticleRow{ID: "source", Phase: "launching", Outcome: "success", Categories: []string{"sales"}, Date: *day(2023, 1, 1)},
		&models.ArticleRow{ID: "everything", Phase: "launching", Outcome: "success", Categories: []string{"sales"}, Date: *day(2023, 2, 1)},
	)

	related := h.services.Article.GetRelated(context.Background(), "source", 3)
	assert.Equal(t, []string{"everything"}, ids(related))
}

func TestArticleService_GetTimeline(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	tl := h.services.Article.GetTimeline(ctx, seed.ProfileTaroID, seed.ArticleResignID)
	assert.True(t, tl.Found)
	assert.Equal(t, 1, tl.Index)
	assert.Equal(t, 3, tl.Total)
	require.NotNil(t, tl.Previous)
	require.NotNil(t, tl.Next)
	assert.Equal(t, seed.ArticleDecisionID, tl.Previous.ID)
	assert.Equal(t, seed.ArticleMarketingID, tl.Next.ID)
	require.NotNil(t, tl.FirstEventDate)
	assert.Equal(t, *day(2023, 1, 10), *tl.FirstEventDate)

	first := h.services.Article.GetTimeline(ctx, seed.ProfileTaroID, seed.ArticleDecisionID)
	assert.Nil(t, first.Previous)
	assert.Equal(t, seed.ArticleResignID, first.Next.ID)

	last := h.services.Article.GetTimeline(ctx, seed.ProfileTaroID, seed.ArticleMarketingID)
	assert.Equal(t, 2, last.Index)
	assert.Nil(t, last.Next)
}

func TestArticleService_GetTimeline_Missing(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	tl := h.services.Article.GetTimeline(ctx, seed.ProfileTaroID, seed.ArticleFintechID)
	assert.False(t, tl.Found)
	assert.Equal(t, 0, tl.Index)
	assert.Nil(t, tl.Previous)
	require.NotNil(t, tl.Next)
	assert.Equal(t, seed.ArticleResignID, tl.Next.ID)

	empty := h.services.Article.GetTimeline(ctx, "nobody", "x")
	assert.Equal(t, 0, empty.Total)
	assert.Nil(t, empty.FirstEventDate)
	assert.Nil(t, empty.Previous)
	assert.Nil(t, empty.Next)
}

func TestArticleService_Create(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	res := h.services.Article.Create(ctx, seed.ProfileHanakoID, &models.CreateArticleRequest{
		Title:           "<b>初めての資金調達</b>",
		Summary:         "シードラウンドの話",
		Content:         "<p>投資家との面談を二十回<script>alert(1)</script></p>",
		ActualEventDate: "2024-01-15",
		Phase:           "開始期",
		Outcome:         "success",
		Categories:      []string{"経理", "accounting", "sales"},
	})
	require.True(t, res.Success, res.Message)
	require.NotEmpty(t, res.ID)

	row := h.articles.Articles[res.ID]
	require.NotNil(t, row)
	assert.Equal(t, "初めての資金調達", row.Title)
	assert.NotContains(t, row.Content, "<script>")
	assert.Equal(t, "early_stage", row.Phase)
	assert.Equal(t, []string{"accounting", "sales"}, row.Categories)
	require.NotNil(t, row.Author)
	assert.Equal(t, "佐藤花子", *row.Author)
	require.NotNil(t, row.ActualEventDate)
	assert.Equal(t, *day(2024, 1, 15), *row.ActualEventDate)
	require.NotNil(t, row.IsPublished)
	assert.True(t, *row.IsPublished)

	// The new article joins the author's timeline
	list := h.services.Article.GetByAuthor(ctx, seed.ProfileHanakoID)
	assert.Equal(t, res.ID, list[len(list)-1].ID)
}

func TestArticleService_Create_Validation(t *testing.T) {
	h := newHarness(t, true)
	before := testutil.ToFloat64(metrics.ArticlesCreated.WithLabelValues("invalid"))

	res := h.services.Article.Create(context.Background(), seed.ProfileHanakoID, &models.CreateArticleRequest{
		Title:      "  ",
		Phase:      "unknown",
		Categories: []string{"cooking"},
	})
	assert.False(t, res.Success)
	assert.Empty(t, res.ID)

	fields := make(map[string]bool)
	for _, e := range res.Errors {
		fields[e.Field] = true
	}
	for _, f := range []string{"title", "content", "actual_event_date", "phase", "categories"} {
		assert.True(t, fields[f], f)
	}
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ArticlesCreated.WithLabelValues("invalid")))
	assert.Len(t, h.articles.Articles, 6)
}

func TestArticleService_Create_StoreFailure(t *testing.T) {
	h := newHarness(t, true)
	h.articles.InsertError = errors.New("connection refused")

	res := h.services.Article.Create(context.Background(), seed.ProfileTaroID, &models.CreateArticleRequest{
		Title:           "title",
		Content:         "content",
		ActualEventDate: "2024-02-01",
		Phase:           "considering",
	})
	assert.False(t, res.Success)
	assert.Empty(t, res.Errors)
}

func TestArticleService_Create_Unpublished(t *testing.T) {
	h := newHarness(t, false)
	publish := false

	res := h.services.Article.Create(context.Background(), "33333333-3333-4333-8333-333333333333", &models.CreateArticleRequest{
		Title:           "draft",
		Content:         "content",
		ActualEventDate: "2024-02-01T09:00:00Z",
		Phase:           "launching",
		Publish:         &publish,
	})
	require.True(t, res.Success)

	row := h.articles.Articles[res.ID]
	assert.False(t, *row.IsPublished)
	// No profile yet
	assert.Nil(t, row.Author)
	assert.Empty(t, h.services.Article.GetPublished(context.Background()))
}

func TestProfileService_Get(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	p := h.services.Profile.Get(ctx, seed.ProfileTaroID)
	require.NotNil(t, p)
	assert.Equal(t, "taro", *p.Username)
	require.NotNil(t, p.DaysSinceConsideration)
	require.NotNil(t, p.DaysSinceEntrepreneurship)
	assert.Greater(t, *p.DaysSinceConsideration, *p.DaysSinceEntrepreneurship)

	hanako := h.services.Profile.Get(ctx, seed.ProfileHanakoID)
	require.NotNil(t, hanako)
	assert.Nil(t, hanako.DaysSinceEntrepreneurship)

	assert.Nil(t, h.services.Profile.Get(ctx, "missing"))

	h.profiles.GetError = errors.New("timeout")
	assert.Nil(t, h.services.Profile.Get(ctx, seed.ProfileTaroID))
}

func TestProfileService_Upsert(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	id := "33333333-3333-4333-8333-333333333333"

	res := h.services.Profile.Upsert(ctx, id, &models.UpsertProfileRequest{
		Username:               "jiro_2024",
		FullName:               " 鈴木次郎 ",
		Career:                 "エンジニア",
		Website:                "https://example.com",
		ConsiderationStartDate: "2024-01-01",
	})
	require.True(t, res.Success, res.Message)
	require.NotNil(t, res.Profile)
	assert.Equal(t, "鈴木次郎", *res.Profile.FullName)
	assert.Nil(t, res.Profile.Bio)
	require.NotNil(t, res.Profile.ConsiderationStartDate)
	assert.Equal(t, *day(2024, 1, 1), *res.Profile.ConsiderationStartDate)

	stored := h.profiles.Profiles[id]
	require.NotNil(t, stored)
	assert.Equal(t, "jiro_2024", *stored.Username)
}

func TestProfileService_Upsert_UsernameTaken(t *testing.T) {
	h := newHarness(t, true)

	res := h.services.Profile.Upsert(context.Background(), "33333333-3333-4333-8333-333333333333", &models.UpsertProfileRequest{
		Username:               "taro",
		FullName:               "別の太郎",
		ConsiderationStartDate: "2024-01-01",
	})
	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "username", res.Errors[0].Field)
	assert.Equal(t, "this username is already taken", res.Message)
}

func TestProfileService_Upsert_KeepsOwnUsername(t *testing.T) {
	h := newHarness(t, true)

	res := h.services.Profile.Upsert(context.Background(), seed.ProfileTaroID, &models.UpsertProfileRequest{
		Username:               "taro",
		FullName:               "山田太郎",
		Bio:                    "更新しました",
		ConsiderationStartDate: "2022-12-01",
	})
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "更新しました", *h.profiles.Profiles[seed.ProfileTaroID].Bio)
	// created_at survives the edit
	assert.Equal(t, *day(2022, 12, 1), h.profiles.Profiles[seed.ProfileTaroID].CreatedAt)
}

func TestProfileService_Upsert_Validation(t *testing.T) {
	h := newHarness(t, false)
	age := 200

	res := h.services.Profile.Upsert(context.Background(), "33333333-3333-4333-8333-333333333333", &models.UpsertProfileRequest{
		Username: "no spaces allowed",
		Age:      &age,
		Website:  "not a url",
	})
	assert.False(t, res.Success)

	fields := make(map[string]bool)
	for _, e := range res.Errors {
		fields[e.Field] = true
	}
	for _, f := range []string{"username", "full_name", "age", "website", "consideration_start_date"} {
		assert.True(t, fields[f], f)
	}
	assert.Empty(t, h.profiles.Profiles)
}

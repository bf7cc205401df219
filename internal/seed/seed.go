// Package seed holds fixture profiles and articles. It is imported by tests
// only; production code never reads these values.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/journey-feed-api/internal/models"
)

// Fixture ids
const (
	ProfileTaroID   = "11111111-1111-4111-8111-111111111111"
	ProfileHanakoID = "22222222-2222-4222-8222-222222222222"

	ArticleDecisionID  = "a0000000-0000-4000-8000-000000000001"
	ArticleResignID    = "a0000000-0000-4000-8000-000000000002"
	ArticleMarketingID = "a0000000-0000-4000-8000-000000000003"
	ArticleFintechID   = "a0000000-0000-4000-8000-000000000004"
	ArticleDraftID     = "a0000000-0000-4000-8000-000000000005"
	ArticleLegacyID    = "a0000000-0000-4000-8000-000000000006"
)

// ArticleWriter persists article rows
type ArticleWriter interface {
	Create(ctx context.Context, row *models.ArticleRow) error
}

// ProfileWriter persists profiles
type ProfileWriter interface {
	Upsert(ctx context.Context, profile *models.Profile) error
}

// Load writes every fixture profile, then every fixture article
func Load(ctx context.Context, articles ArticleWriter, profiles ProfileWriter) error {
	for _, p := range Profiles() {
		if err := profiles.Upsert(ctx, p); err != nil {
			return fmt.Errorf("seed profile %s: %w", p.ID, err)
		}
	}
	for _, a := range Articles() {
		if err := articles.Create(ctx, a); err != nil {
			return fmt.Errorf("seed article %s: %w", a.ID, err)
		}
	}
	return nil
}

// Profiles returns fresh copies of the fixture profiles
func Profiles() []*models.Profile {
	return []*models.Profile{
		{
			ID:                        ProfileTaroID,
			Username:                  str("taro"),
			FullName:                  str("山田太郎"),
			AvatarURL:                 str("https://cdn.example.com/avatars/taro.png"),
			Career:                    str("食品メーカー営業 15年"),
			Bio:                       str("会社員から食品スタートアップを立ち上げました。"),
			Age:                       num(41),
			ConsiderationStartDate:    date(2022, 12, 1),
			EntrepreneurshipStartDate: date(2023, 4, 1),
			CreatedAt:                 *date(2022, 12, 1),
		},
		{
			ID:                     ProfileHanakoID,
			Username:               str("hanako"),
			FullName:               str("佐藤花子"),
			Career:                 str("銀行員"),
			ConsiderationStartDate: date(2023, 3, 1),
			CreatedAt:              *date(2023, 3, 1),
		},
	}
}

// Articles returns fresh copies of the fixture rows. Likes are
// [10, 50, 5, 20, 1, 0] in id order; the fintech row uses the legacy
// columns and the last row has no author profile.
func Articles() []*models.ArticleRow {
	return []*models.ArticleRow{
		{
			ID:              ArticleDecisionID,
			Title:           "起業を考え始めた日：安定を捨てる決断の裏側",
			Summary:         "家族会議で起業を切り出した日のこと。",
			Content:         "十五年勤めた会社を辞めるかどうか、半年悩みました。",
			Author:          str("山田太郎"),
			AuthorID:        str(ProfileTaroID),
			LikesCount:      num(10),
			Phase:           string(models.PhaseConsidering),
			Outcome:         string(models.OutcomeOther),
			Categories:      []string{string(models.CategoryBusinessPlanning)},
			Date:            *date(2023, 2, 1),
			ActualEventDate: date(2023, 1, 10),
			CreatedAt:       *date(2023, 2, 1),
			IsPublished:     flag(true),
		},
		{
			ID:              ArticleResignID,
			Title:           "退職届を出した日：15年間の会社員生活に別れを告げる",
			Summary:         "上司の反応と引き継ぎの段取り。",
			Content:         "退職届を出す前に、最初の顧客候補と話をつけておきました。",
			Author:          str("山田太郎"),
			AuthorID:        str(ProfileTaroID),
			LikesCount:      num(50),
			Phase:           string(models.PhaseLaunching),
			Outcome:         string(models.OutcomeSuccess),
			Categories:      []string{string(models.CategoryMisc)},
			Date:            *date(2023, 4, 15),
			ActualEventDate: date(2023, 4, 1),
			CreatedAt:       *date(2023, 4, 15),
			IsPublished:     flag(true),
		},
		{
			ID:              ArticleMarketingID,
			Title:           "大手メーカーから食品スタートアップへ：失敗から学んだマーケティング戦略",
			Summary:         "広告費を溶かした三か月。",
			Content:         "ターゲットを絞らずに出稿した結果、獲得単価が想定の五倍になりました。",
			Author:          str("山田太郎"),
			AuthorID:        str(ProfileTaroID),
			LikesCount:      num(5),
			Phase:           string(models.PhaseGrowthStage),
			Outcome:         string(models.OutcomeFailure),
			Categories:      []string{string(models.CategoryMarketing), string(models.CategorySales)},
			Date:            *date(2023, 9, 10),
			ActualEventDate: date(2023, 9, 1),
			CreatedAt:       *date(2023, 9, 10),
			IsPublished:     flag(true),
		},
		{
			ID:          ArticleFintechID,
			Title:       "銀行員からフィンテック創業：金融業界の常識を覆す挑戦",
			Summary:     "規制対応と開発を並行させた話。",
			Content:     "ライセンス取得までの一年、開発チームは三人でした。",
			Author:      str("佐藤花子"),
			AuthorID:    str(ProfileHanakoID),
			Likes:       num(20),
			Phase:       string(models.PhaseEarlyStage),
			Outcome:     string(models.OutcomeSuccess),
			Categories:  []string{string(models.CategoryDevelopment), string(models.CategoryAccounting)},
			Date:        *date(2023, 7, 1),
			EventDate:   date(2023, 6, 1),
			CreatedAt:   *date(2023, 7, 1),
			IsPublished: flag(true),
		},
		{
			ID:          ArticleDraftID,
			Title:       "コンサル出身者が語る：戦略立案スキルを活かした教育事業の立ち上げ",
			Summary:     "下書き",
			Content:     "まだ書きかけです。",
			Author:      str("佐藤花子"),
			AuthorID:    str(ProfileHanakoID),
			LikesCount:  num(1),
			Phase:       string(models.PhaseGrowthStage),
			Outcome:     string(models.OutcomeOther),
			Categories:  []string{string(models.CategorySales)},
			Date:        *date(2023, 8, 1),
			CreatedAt:   *date(2023, 8, 1),
			IsPublished: flag(false),
		},
		{
			ID:         ArticleLegacyID,
			Title:      "商社マンから農業テック：地方創生を目指す新規事業への挑戦",
			Summary:    "移行前に書かれた記事。",
			Content:    "プロフィール機能ができる前の投稿です。",
			Author:     str("Legacy Writer"),
			Phase:      string(models.PhaseConsidering),
			Outcome:    string(models.OutcomeOther),
			Categories: []string{string(models.CategoryAccounting)},
			Date:       *date(2022, 11, 1),
			CreatedAt:  *date(2022, 11, 1),
		},
	}
}

// MappedArticles returns Articles resolved against Profiles
func MappedArticles() []models.Article {
	authors := make(map[string]*models.AuthorFragment)
	for _, p := range Profiles() {
		authors[p.ID] = p.Fragment()
	}
	return models.MapArticles(Articles(), authors)
}

func str(s string) *string { return &s }

func num(n int) *int { return &n }

func flag(b bool) *bool { return &b }

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

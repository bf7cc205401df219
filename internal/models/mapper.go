package models

// MapArticle converts a raw row into an Article, resolving the display author
// from the joined profile fragment when one is present.
func MapArticle(row *ArticleRow, author *AuthorFragment) Article {
	a := Article{
		ID:              row.ID,
		Title:           row.Title,
		Summary:         row.Summary,
		Content:         row.Content,
		Author:          resolveAuthorName(row, author),
		AuthorID:        row.AuthorID,
		Likes:           resolveLikes(row),
		Phase:           Phase(row.Phase),
		Outcome:         Outcome(row.Outcome),
		Categories:      make([]Category, 0, len(row.Categories)),
		Date:            row.Date,
		EventDate:       row.EventDate,
		ActualEventDate: row.ActualEventDate,
		ImageURL:        row.ImageURL,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
		IsPublished:     row.IsPublished,
	}
	for _, c := range row.Categories {
		a.Categories = append(a.Categories, Category(c))
	}
	if author != nil {
		a.AuthorAvatarURL = author.AvatarURL
		a.AuthorUsername = author.Username
	}
	return a
}

// MapArticles maps rows using an author_id -> fragment lookup
func MapArticles(rows []*ArticleRow, authors map[string]*AuthorFragment) []Article {
	out := make([]Article, 0, len(rows))
	for _, row := range rows {
		var frag *AuthorFragment
		if row.AuthorID != nil {
			frag = authors[*row.AuthorID]
		}
		out = append(out, MapArticle(row, frag))
	}
	return out
}

func resolveAuthorName(row *ArticleRow, author *AuthorFragment) string {
	if author != nil && author.FullName != nil && *author.FullName != "" {
		return *author.FullName
	}
	if row.Author != nil && *row.Author != "" {
		return *row.Author
	}
	return AnonymousAuthor
}

// likes_count wins over the legacy likes column
func resolveLikes(row *ArticleRow) int {
	n := 0
	switch {
	case row.LikesCount != nil:
		n = *row.LikesCount
	case row.Likes != nil:
		n = *row.Likes
	}
	if n < 0 {
		return 0
	}
	return n
}

package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/journey-feed-api/internal/metrics"
	"github.com/journey-feed-api/internal/models"
	"github.com/journey-feed-api/internal/repository"
	"github.com/rs/zerolog"
)

// flushEvery is how many records are written between flushes
const flushEvery = 100

// exportService is the concrete implementation of ExportService
type exportService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(repos *repository.Repositories, log zerolog.Logger) *exportService {
	return &exportService{
		repos: repos,
		log:   log.With().Str("service", "export").Logger(),
	}
}

// StreamArticles streams published articles in the specified format
func (s *exportService) StreamArticles(ctx context.Context, w http.ResponseWriter, format string) error {
	s.log.Info().Str("format", format).Msg("Starting articles export")

	var write func(context.Context, http.ResponseWriter) (int, error)
	switch format {
	case "ndjson":
		write = s.streamNDJSON
	case "json":
		write = s.streamJSON
	case "csv":
		write = s.streamCSV
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}

	start := time.Now()
	count, err := write(ctx, w)
	result := "success"
	if err != nil {
		result = "error"
		s.log.Error().Err(err).Str("format", format).Int("count", count).Msg("Articles export failed")
	} else {
		s.log.Info().Str("format", format).Int("count", count).Msg("Articles export completed")
	}
	metrics.ObserveExport(format, result, time.Since(start).Seconds(), count)
	return err
}

func (s *exportService) streamNDJSON(ctx context.Context, w http.ResponseWriter) (int, error) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Content-Disposition", "attachment; filename=articles.ndjson")

	flusher, _ := w.(http.Flusher)
	count := 0

	err := s.repos.Article.StreamPublished(ctx, func(row *models.ArticleRow) error {
		data, err := json.Marshal(toExport(row))
		if err != nil {
			return err
		}
		w.Write(data)
		w.Write([]byte("\n"))
		count++

		if count%flushEvery == 0 && flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	return count, err
}

func (s *exportService) streamJSON(ctx context.Context, w http.ResponseWriter) (int, error) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=articles.json")

	w.Write([]byte("["))
	count := 0

	err := s.repos.Article.StreamPublished(ctx, func(row *models.ArticleRow) error {
		if count > 0 {
			w.Write([]byte(","))
		}
		data, err := json.Marshal(toExport(row))
		if err != nil {
			return err
		}
		w.Write(data)
		count++
		return nil
	})

	w.Write([]byte("]"))
	return count, err
}

func (s *exportService) streamCSV(ctx context.Context, w http.ResponseWriter) (int, error) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=articles.csv")

	writer := csv.NewWriter(w)
	defer writer.Flush()

	writer.Write([]string{"id", "title", "summary", "author_id", "phase", "outcome", "categories", "likes", "date", "actual_event_date", "created_at"})

	count := 0
	err := s.repos.Article.StreamPublished(ctx, func(row *models.ArticleRow) error {
		e := toExport(row)
		authorID := ""
		if e.AuthorID != nil {
			authorID = *e.AuthorID
		}
		eventDate := ""
		if e.ActualEventDate != nil {
			eventDate = e.ActualEventDate.Format(time.RFC3339)
		}
		count++
		return writer.Write([]string{
			e.ID,
			e.Title,
			e.Summary,
			authorID,
			e.Phase,
			e.Outcome,
			strings.Join(e.Categories, ";"),
			strconv.Itoa(e.Likes),
			e.Date.Format(time.RFC3339),
			eventDate,
			e.CreatedAt.Format(time.RFC3339),
		})
	})
	if err != nil {
		return count, err
	}
	writer.Flush()
	return count, writer.Error()
}

// toExport flattens a row, resolving likes and the event date the same way
// the feed does
func toExport(row *models.ArticleRow) models.ArticleExport {
	a := models.MapArticle(row, nil)
	e := models.ArticleExport{
		ID:         a.ID,
		Title:      a.Title,
		Summary:    a.Summary,
		AuthorID:   a.AuthorID,
		Phase:      string(a.Phase),
		Outcome:    string(a.Outcome),
		Categories: make([]string, 0, len(a.Categories)),
		Likes:      a.Likes,
		Date:       a.Date,
		CreatedAt:  a.CreatedAt,
	}
	for _, c := range a.Categories {
		e.Categories = append(e.Categories, string(c))
	}
	if a.ActualEventDate != nil || a.EventDate != nil {
		d := a.PreferredEventDate()
		e.ActualEventDate = &d
	}
	return e
}

// GetCount returns count for a resource
func (s *exportService) GetCount(ctx context.Context, resource string) (int, error) {
	switch resource {
	case "articles":
		return s.repos.Article.Count(ctx)
	case "profiles":
		return s.repos.Profile.Count(ctx)
	default:
		return 0, fmt.Errorf("unknown resource: %s", resource)
	}
}

package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/journey-feed-api/internal/browse"
	"github.com/journey-feed-api/internal/config"
	"github.com/journey-feed-api/internal/models"
	"github.com/journey-feed-api/internal/service"
	"github.com/rs/zerolog"
)

// ArticleHandler handles article feed endpoints
type ArticleHandler struct {
	services *service.Services
	timeout  time.Duration
	log      zerolog.Logger
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *ArticleHandler {
	return &ArticleHandler{
		services: services,
		timeout:  cfg.Server.RequestTimeout,
		log:      log.With().Str("handler", "article").Logger(),
	}
}

// List handles GET /v1/articles?phase=&outcome=&category=&q=&sort=
func (h *ArticleHandler) List(c *gin.Context) {
	state, msg := parseFilterState(c)
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	all := h.services.Article.GetAll(ctx)
	out := browse.Apply(all, state)
	c.JSON(http.StatusOK, gin.H{
		"articles": out,
		"total":    len(all),
		"count":    len(out),
	})
}

// IDs handles GET /v1/articles/ids
func (h *ArticleHandler) IDs(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	c.JSON(http.StatusOK, gin.H{"ids": h.services.Article.GetAllIDs(ctx)})
}

// Published handles GET /v1/articles/published
func (h *ArticleHandler) Published(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	c.JSON(http.StatusOK, gin.H{"articles": h.services.Article.GetPublished(ctx)})
}

// Trending handles GET /v1/articles/trending?limit=
func (h *ArticleHandler) Trending(c *gin.Context) {
	h.limited(c, h.services.Article.GetTrending)
}

// Latest handles GET /v1/articles/latest?limit=
func (h *ArticleHandler) Latest(c *gin.Context) {
	h.limited(c, h.services.Article.GetLatest)
}

// Popular handles GET /v1/articles/popular?limit=
func (h *ArticleHandler) Popular(c *gin.Context) {
	h.limited(c, h.services.Article.GetPopular)
}

func (h *ArticleHandler) limited(c *gin.Context, fetch func(ctx context.Context, limit int) []models.Article) {
	limit, ok := parseLimit(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}

	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	c.JSON(http.StatusOK, gin.H{"articles": fetch(ctx, limit)})
}

// Get handles GET /v1/articles/:id
func (h *ArticleHandler) Get(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	article := h.services.Article.GetByID(ctx, c.Param("id"))
	if article == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	c.JSON(http.StatusOK, article)
}

// Related handles GET /v1/articles/:id/related?limit=
func (h *ArticleHandler) Related(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}

	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	c.JSON(http.StatusOK, gin.H{"articles": h.services.Article.GetRelated(ctx, c.Param("id"), limit)})
}

// Timeline handles GET /v1/articles/:id/timeline
func (h *ArticleHandler) Timeline(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	id := c.Param("id")
	article := h.services.Article.GetByID(ctx, id)
	if article == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}

	resp := models.TimelineResponse{}
	if article.AuthorID != nil {
		resp.Timeline = h.services.Article.GetTimeline(ctx, *article.AuthorID, id)
	}
	if resp.FirstEventDate != nil {
		resp.DaysSinceStart = models.DaysSince(*resp.FirstEventDate, time.Now())
	}
	c.JSON(http.StatusOK, resp)
}

// ByAuthor handles GET /v1/authors/:id/articles. An id that is not a uuid
// cannot own articles.
func (h *ArticleHandler) ByAuthor(c *gin.Context) {
	if _, err := uuid.Parse(c.Param("id")); err != nil {
		c.JSON(http.StatusOK, gin.H{"articles": []models.Article{}})
		return
	}

	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	c.JSON(http.StatusOK, gin.H{"articles": h.services.Article.GetByAuthor(ctx, c.Param("id"))})
}

// Create handles POST /v1/articles (JSON or form body)
func (h *ArticleHandler) Create(c *gin.Context) {
	var req models.CreateArticleRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.Categories = splitValues(req.Categories)

	res := h.services.Article.Create(c.Request.Context(), currentUser(c), &req)
	switch {
	case res.Success:
		c.JSON(http.StatusCreated, res)
	case len(res.Errors) > 0:
		c.JSON(http.StatusUnprocessableEntity, res)
	default:
		c.JSON(http.StatusInternalServerError, res)
	}
}

// parseFilterState reads the browse selection from the query string.
// Unknown enum values are rejected.
func parseFilterState(c *gin.Context) (browse.FilterState, string) {
	var f browse.FilterState

	if v := c.Query("phase"); v != "" {
		p, ok := models.ParsePhase(v)
		if !ok {
			return f, "unknown phase: " + v
		}
		f.Phase = p
	}
	if v := c.Query("outcome"); v != "" {
		o, ok := models.ParseOutcome(v)
		if !ok {
			return f, "unknown outcome: " + v
		}
		f.Outcome = o
	}
	for _, v := range splitValues(c.QueryArray("category")) {
		cat, ok := models.ParseCategory(v)
		if !ok {
			return f, "unknown category: " + v
		}
		f.Categories = append(f.Categories, cat)
	}

	sortKey, ok := browse.ParseSortKey(c.Query("sort"))
	if !ok {
		return f, "sort must be one of: popular, date, newest"
	}
	f.SortBy = sortKey
	f.Keyword = c.Query("q")
	return f, ""
}

// parseLimit returns 0 when no limit was given
func parseLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// splitValues accepts repeated values and comma separated lists
func splitValues(in []string) []string {
	var out []string
	for _, v := range in {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

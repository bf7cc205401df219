package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/journey-feed-api/internal/config"
	"github.com/journey-feed-api/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// HealthChecker reports whether the backing store is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, health HealthChecker, log zerolog.Logger) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(requestIDMiddleware())
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(metricsMiddleware())
	router.Use(corsMiddleware())

	// Handlers
	articleHandler := NewArticleHandler(services, cfg, log)
	profileHandler := NewProfileHandler(services, cfg, log)
	uploadHandler := NewUploadHandler(services, cfg, log)
	exportHandler := NewExportHandler(services, log)

	articleID := requireUUIDParam("id", "article not found")

	// Health check
	router.GET("/health", healthCheck(health))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1
	v1 := router.Group("/v1")
	{
		v1.GET("/stats", statsHandler(services))

		articles := v1.Group("/articles")
		{
			articles.GET("", articleHandler.List)
			articles.POST("", requireUser(), articleHandler.Create)
			articles.GET("/ids", articleHandler.IDs)
			articles.GET("/published", articleHandler.Published)
			articles.GET("/trending", articleHandler.Trending)
			articles.GET("/latest", articleHandler.Latest)
			articles.GET("/popular", articleHandler.Popular)
			articles.GET("/export", exportHandler.StreamExport)
			articles.GET("/:id", articleID, articleHandler.Get)
			articles.GET("/:id/related", articleID, articleHandler.Related)
			articles.GET("/:id/timeline", articleID, articleHandler.Timeline)
		}

		v1.GET("/authors/:id/articles", articleHandler.ByAuthor)

		profiles := v1.Group("/profiles")
		{
			profiles.GET("/me", requireUser(), profileHandler.GetMe)
			profiles.PUT("/me", requireUser(), profileHandler.UpsertMe)
			profiles.GET("/:id", requireUUIDParam("id", "profile not found"), profileHandler.Get)
		}

		v1.POST("/uploads/:kind", requireUser(), uploadHandler.Upload)
	}

	return router
}

// healthCheck returns the health status, including a database ping
func healthCheck(health HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{
			"status":    "healthy",
			"database":  "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "journey-feed-api",
		}

		if health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := health.HealthCheck(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "unhealthy"
				body["database"] = err.Error()
			}
		}

		c.JSON(status, body)
	}
}

// statsHandler returns row counts per resource
func statsHandler(services *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		articlesCount, _ := services.Export.GetCount(ctx, "articles")
		profilesCount, _ := services.Export.GetCount(ctx, "profiles")

		c.JSON(http.StatusOK, gin.H{
			"database": gin.H{
				"articles": articlesCount,
				"profiles": profilesCount,
			},
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// contextWithTimeout creates a context with timeout for handlers
func contextWithTimeout(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}

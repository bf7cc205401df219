package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/journey-feed-api/internal/config"
	"github.com/journey-feed-api/internal/models"
	"github.com/journey-feed-api/internal/service"
	"github.com/rs/zerolog"
)

// ProfileHandler handles profile endpoints
type ProfileHandler struct {
	services *service.Services
	timeout  time.Duration
	log      zerolog.Logger
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		services: services,
		timeout:  cfg.Server.RequestTimeout,
		log:      log.With().Str("handler", "profile").Logger(),
	}
}

// Get handles GET /v1/profiles/:id
func (h *ProfileHandler) Get(c *gin.Context) {
	h.respond(c, c.Param("id"))
}

// GetMe handles GET /v1/profiles/me. A 404 tells the client to send the
// user to account setup.
func (h *ProfileHandler) GetMe(c *gin.Context) {
	h.respond(c, currentUser(c))
}

func (h *ProfileHandler) respond(c *gin.Context, id string) {
	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	profile := h.services.Profile.Get(ctx, id)
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpsertMe handles PUT /v1/profiles/me
func (h *ProfileHandler) UpsertMe(c *gin.Context) {
	var req models.UpsertProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res := h.services.Profile.Upsert(c.Request.Context(), currentUser(c), &req)
	switch {
	case res.Success:
		c.JSON(http.StatusOK, res)
	case len(res.Errors) > 0:
		c.JSON(http.StatusUnprocessableEntity, res)
	default:
		c.JSON(http.StatusInternalServerError, res)
	}
}

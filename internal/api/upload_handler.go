package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/journey-feed-api/internal/config"
	"github.com/journey-feed-api/internal/models"
	"github.com/journey-feed-api/internal/service"
	"github.com/rs/zerolog"
)

// multipartOverhead is allowed on top of the file size for form fields and boundaries
const multipartOverhead = 1 << 20

// UploadHandler handles image uploads
type UploadHandler struct {
	services *service.Services
	cfg      config.UploadConfig
	log      zerolog.Logger
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		services: services,
		cfg:      cfg.Upload,
		log:      log.With().Str("handler", "upload").Logger(),
	}
}

// Upload handles POST /v1/uploads/:kind with a multipart "file" field
func (h *UploadHandler) Upload(c *gin.Context) {
	kind, ok := models.ParseUploadKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "upload kind must be one of: avatars, articles"})
		return
	}

	// Limit request body size
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxSize+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, &models.UploadResult{
			Success: false,
			Message: "no file selected",
			Error:   "file is required",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to open uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
		return
	}
	defer file.Close()

	res := h.services.Upload.Upload(c.Request.Context(), currentUser(c), kind, &models.UploadFile{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Body:        file,
	})

	switch {
	case res.Success:
		c.JSON(http.StatusCreated, res)
	case res.StoreFailed:
		c.JSON(http.StatusInternalServerError, res)
	default:
		c.JSON(http.StatusUnprocessableEntity, res)
	}
}

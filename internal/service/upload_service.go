package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/journey-feed-api/internal/config"
	"github.com/journey-feed-api/internal/metrics"
	"github.com/journey-feed-api/internal/models"
	"github.com/journey-feed-api/internal/storage"
	"github.com/rs/zerolog"
)

const (
	defaultImageExt = "jpg"
	// sniffLen is how much of the body is read to detect the real type
	sniffLen = 512
)

// uploadService is the concrete implementation of UploadService
type uploadService struct {
	store storage.ObjectStore
	cfg   config.UploadConfig
	log   zerolog.Logger
}

func newUploadService(store storage.ObjectStore, cfg config.UploadConfig, log zerolog.Logger) *uploadService {
	return &uploadService{
		store: store,
		cfg:   cfg,
		log:   log.With().Str("service", "upload").Logger(),
	}
}

// Upload checks the image and stores it under {kind}/{userID}/
func (s *uploadService) Upload(ctx context.Context, userID string, kind models.UploadKind, file *models.UploadFile) *models.UploadResult {
	if res := s.check(userID, file); res != nil {
		metrics.UploadsTotal.WithLabelValues(string(kind), "rejected").Inc()
		return res
	}

	contentType, body, res := s.sniff(file)
	if res != nil {
		metrics.UploadsTotal.WithLabelValues(string(kind), "rejected").Inc()
		return res
	}

	key := objectKey(kind, userID, file.Filename, time.Now())
	if err := s.store.Put(ctx, key, contentType, body, file.Size); err != nil {
		metrics.UploadsTotal.WithLabelValues(string(kind), "error").Inc()
		s.log.Error().Err(err).Str("key", key).Msg("Failed to store image")
		return &models.UploadResult{
			Success:     false,
			Message:     "failed to upload the image",
			Error:       err.Error(),
			StoreFailed: true,
		}
	}

	metrics.UploadsTotal.WithLabelValues(string(kind), "success").Inc()
	s.log.Info().Str("key", key).Int64("size", file.Size).Msg("Image uploaded")
	return &models.UploadResult{
		Success: true,
		URL:     s.store.PublicURL(key),
		Key:     key,
		Message: "image uploaded",
	}
}

func (s *uploadService) check(userID string, file *models.UploadFile) *models.UploadResult {
	fail := func(msg string) *models.UploadResult {
		return &models.UploadResult{Success: false, Message: msg, Error: msg}
	}

	switch {
	case userID == "":
		return fail("login required")
	case file == nil || file.Body == nil || file.Size == 0:
		return fail("no file selected")
	case file.Size > s.cfg.MaxSize:
		return fail(fmt.Sprintf("file size must be %dMB or less", s.cfg.MaxSize/(1024*1024)))
	case !s.allowed(file.ContentType):
		return fail("only JPEG, PNG and WebP images can be uploaded")
	}
	return nil
}

// sniff detects the type from the first bytes of the body instead of
// trusting the multipart header. The returned reader replays those bytes.
func (s *uploadService) sniff(file *models.UploadFile) (string, io.Reader, *models.UploadResult) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		s.log.Warn().Err(err).Msg("Failed to read uploaded image")
		msg := "failed to read the image"
		return "", nil, &models.UploadResult{Success: false, Message: msg, Error: msg}
	}
	head = head[:n]

	detected := mimetype.Detect(head)
	for _, t := range s.cfg.AllowedTypes {
		if detected.Is(t) {
			return detected.String(), io.MultiReader(bytes.NewReader(head), file.Body), nil
		}
	}

	s.log.Info().Str("declared", file.ContentType).Str("detected", detected.String()).Msg("Upload content does not match an allowed image type")
	msg := "only JPEG, PNG and WebP images can be uploaded"
	return "", nil, &models.UploadResult{Success: false, Message: msg, Error: msg}
}

func (s *uploadService) allowed(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	for _, t := range s.cfg.AllowedTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// objectKey builds {kind}/{userID}/{unixMillis}-{uuid}.{ext}
func objectKey(kind models.UploadKind, userID, filename string, now time.Time) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		ext = defaultImageExt
	}
	return fmt.Sprintf("%s/%s/%d-%s.%s", kind, userID, now.UnixMilli(), uuid.NewString(), ext)
}

package storage

import (
	"context"
	"testing"

	"github.com/journey-feed-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicBase(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com",
		PublicBase(config.StorageConfig{PublicBaseURL: "https://cdn.example.com/", Endpoint: "http://minio:9000", Bucket: "b"}))
	assert.Equal(t, "http://minio:9000/images",
		PublicBase(config.StorageConfig{Endpoint: "http://minio:9000/", Bucket: "images"}))
	assert.Equal(t, "https://images.s3.ap-northeast-1.amazonaws.com",
		PublicBase(config.StorageConfig{Bucket: "images", Region: "ap-northeast-1"}))
}

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "https://cdn/avatars/u1/1700000000000-abc.png", JoinURL("https://cdn", "avatars/u1/1700000000000-abc.png"))
	assert.Equal(t, "https://cdn/articles/u%201/x.webp", JoinURL("https://cdn", "/articles/u 1/x.webp"))
}

func TestNewS3Store_StaticCredentials(t *testing.T) {
	store, err := NewS3Store(context.Background(), config.StorageConfig{
		Bucket:          "images",
		Region:          "us-east-1",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		UsePathStyle:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/images/avatars/u1/a.png", store.PublicURL("avatars/u1/a.png"))
}

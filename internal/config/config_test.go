package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "journey_feed", cfg.Database.Name)
	assert.Equal(t, 3, cfg.Feed.RelatedLimit)
	assert.Equal(t, int64(5*1024*1024), cfg.Upload.MaxSize)
	assert.Contains(t, cfg.Upload.AllowedTypes, "image/webp")
	assert.Equal(t, 10*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, uint(0), cfg.Database.MigrationVersion)
	assert.Equal(t, 5, cfg.Database.ConnectRetries)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("PORT", "9090")
	t.Setenv("FEED_RELATED_LIMIT", "5")
	t.Setenv("UPLOAD_ALLOWED_TYPES", "image/png, image/gif ,")
	t.Setenv("STORAGE_USE_PATH_STYLE", "true")
	t.Setenv("DB_MAX_LIFETIME", "90s")
	t.Setenv("DB_MIGRATION_VERSION", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 5, cfg.Feed.RelatedLimit)
	assert.Equal(t, []string{"image/png", "image/gif"}, cfg.Upload.AllowedTypes)
	assert.True(t, cfg.Storage.UsePathStyle)
	assert.Equal(t, 90*time.Second, cfg.Database.MaxLifetime)
	assert.Equal(t, uint(2), cfg.Database.MigrationVersion)
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("STORAGE_BUCKET=from-dotenv\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	// godotenv does not override variables already present
	t.Setenv("STORAGE_BUCKET", "")
	os.Unsetenv("STORAGE_BUCKET")
	t.Cleanup(func() { os.Unsetenv("STORAGE_BUCKET") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Storage.Bucket)
}

func TestValidate(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	cfg, err := Load()
	require.NoError(t, err)

	bad := *cfg
	bad.Database.Host = ""
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.Feed.TrendingLimit = bad.Feed.MaxLimit + 1
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.Database.ConnectRetries = 0
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.Upload.MaxSize = 0
	assert.Error(t, bad.Validate())
}

func TestFeedConfig_ClampLimit(t *testing.T) {
	f := FeedConfig{MaxLimit: 10}

	assert.Equal(t, 4, f.ClampLimit(0, 4))
	assert.Equal(t, 4, f.ClampLimit(-3, 4))
	assert.Equal(t, 7, f.ClampLimit(7, 4))
	assert.Equal(t, 10, f.ClampLimit(500, 4))
}

func TestGetDSN(t *testing.T) {
	db := DatabaseConfig{Host: "h", Port: "1", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=h port=1 user=u password=p dbname=n sslmode=disable", db.GetDSN())
}

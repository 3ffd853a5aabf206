package config

import (
	"os"
	"path/filepath"
	"testing"

	"fitpro-backend/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "APP_ENV", "DATABASE_URL", "PROFILE_COLLECTION", "PROFILE_BUCKET",
		"GEMINI_API_KEY", "GEMINI_MODEL", "STORAGE_TYPE", "STORAGE_LOCAL_PATH",
		"STORAGE_PUBLIC_URL", "AWS_S3_BUCKET", "AWS_REGION", "AWS_S3_ENDPOINT",
		"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "profiles", cfg.ProfileCollection)
	assert.Equal(t, "profile-pictures", cfg.ProfileBucket)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Empty(t, cfg.GeminiAPIKey)
	assert.Equal(t, storage.StorageTypeLocal, cfg.Storage.Type)
	assert.Equal(t, "us-east-1", cfg.Storage.S3Region)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORAGE_TYPE", "s3")
	t.Setenv("AWS_S3_BUCKET", "avatars")
	t.Setenv("GEMINI_API_KEY", "k")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, storage.StorageTypeS3, cfg.Storage.Type)
	assert.Equal(t, "avatars", cfg.Storage.S3Bucket)
	assert.Equal(t, "k", cfg.GeminiAPIKey)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides variables that are already present
	require.NoError(t, os.Unsetenv("GEMINI_MODEL"))
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("GEMINI_MODEL=gemini-test\n"), 0o600))

	assert.False(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
	assert.True(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "gemini-test", Load().GeminiModel)
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("MAX_UPLOAD_SIZE", "")

	cfg := Load()

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, 30*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, StorageLocal, cfg.StorageDriver)
	assert.Equal(t, int64(1<<20), cfg.MaxUploadSize)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9090")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("APP_ENV", EnvProduction)

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.Minio.UseSSL)
	assert.True(t, cfg.IsProduction())
}

func TestValidate(t *testing.T) {
	base := Config{
		JWTSecret:     "x",
		StoreDriver:   StoreMemory,
		StorageDriver: StorageLocal,
		TokenTTL:      time.Hour,
		MaxUploadSize: 10,
	}
	require.NoError(t, base.Validate())

	noSecret := base
	noSecret.JWTSecret = ""
	assert.Error(t, noSecret.Validate())

	badStore := base
	badStore.StoreDriver = "postgres"
	assert.Error(t, badStore.Validate())

	badStorage := base
	badStorage.StorageDriver = "ftp"
	assert.Error(t, badStorage.Validate())
}

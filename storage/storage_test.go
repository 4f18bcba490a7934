package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-storefront/config"
)

func TestValidateImage(t *testing.T) {
	assert.NoError(t, ValidateImage("photo.JPG", 10, 100))
	assert.ErrorIs(t, ValidateImage("notes.txt", 10, 100), ErrUnsupportedType)
	assert.ErrorIs(t, ValidateImage("photo.png", 101, 100), ErrTooLarge)
}

func TestLocalStoreSaveDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/uploads/")
	require.NoError(t, err)

	ref, err := store.Save(context.Background(), "lamp.png", strings.NewReader("png-bytes"), 9, "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "/uploads/"))
	assert.True(t, strings.HasSuffix(ref, ".png"))

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(ref, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, store.Delete(context.Background(), ref))
	require.NoError(t, store.Delete(context.Background(), ref), "deleting twice is harmless")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNewDefaultsToLocal(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	store, err := New(context.Background(), config.Config{StorageDriver: config.StorageLocal, UploadDir: dir})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, store)
	assert.DirExists(t, dir)
}

func TestNewMinioStoreRequiresConfig(t *testing.T) {
	_, err := NewMinioStore(config.MinioConfig{})
	assert.Error(t, err)

	store, err := NewMinioStore(config.MinioConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b", Bucket: "imgs"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/imgs/key.png", store.urlFor("key.png"))
}

func TestNewGCSStoreRequiresBucket(t *testing.T) {
	_, err := NewGCSStore(context.Background(), config.GCSConfig{})
	assert.Error(t, err)
}

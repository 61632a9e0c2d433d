package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/mrstore-pos/internal/adapters/storage"
	"github.com/ammerola/mrstore-pos/test/helpers"
)

func TestLocalStorage_UploadAndExists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := storage.NewLocalStorage(dir, helpers.TestLogger())

	exists, err := store.Exists(ctx, "closings/2024/01/02.xlsx")
	require.NoError(t, err)
	assert.False(t, exists)

	location, err := store.Upload(ctx, "closings/2024/01/02.xlsx", strings.NewReader("workbook"), "", nil)
	require.NoError(t, err)
	assert.Equal(t, "file://"+filepath.Join(dir, "closings/2024/01/02.xlsx"), location)

	data, err := os.ReadFile(filepath.Join(dir, "closings", "2024", "01", "02.xlsx"))
	require.NoError(t, err)
	assert.Equal(t, "workbook", string(data))

	exists, err = store.Exists(ctx, "closings/2024/01/02.xlsx")
	require.NoError(t, err)
	assert.True(t, exists)

	url, err := store.GetPresignedURL(ctx, "closings/2024/01/02.xlsx", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, location, url)
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	store := storage.NewLocalStorage(t.TempDir(), helpers.TestLogger())

	_, err := store.Upload(context.Background(), "../escape.xlsx", strings.NewReader("x"), "", nil)
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("none", func(t *testing.T) {
		archives, err := storage.New(ctx, storage.Options{Backend: storage.BackendNone}, helpers.TestLogger())
		require.NoError(t, err)
		assert.Nil(t, archives)
	})

	t.Run("local", func(t *testing.T) {
		archives, err := storage.New(ctx, storage.Options{Backend: storage.BackendLocal, Dir: t.TempDir()}, helpers.TestLogger())
		require.NoError(t, err)
		assert.IsType(t, &storage.LocalStorage{}, archives)
	})

	t.Run("s3_without_config", func(t *testing.T) {
		_, err := storage.New(ctx, storage.Options{Backend: storage.BackendS3}, helpers.TestLogger())
		assert.Error(t, err)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := storage.New(ctx, storage.Options{Backend: "ftp"}, helpers.TestLogger())
		assert.ErrorContains(t, err, "unknown archive backend")
	})
}

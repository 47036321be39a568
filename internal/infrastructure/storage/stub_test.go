package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubObjectStorage_UploadAndExists(t *testing.T) {
	storage := NewStubObjectStorage()
	ctx := context.Background()

	t.Run("uploaded object exists", func(t *testing.T) {
		err := storage.Upload(ctx, "tenants/acme/documents/report.pdf", []byte("pdf-bytes"), "application/pdf")
		require.NoError(t, err)

		exists, err := storage.ObjectExists(ctx, "tenants/acme/documents/report.pdf")
		require.NoError(t, err)
		assert.True(t, exists)

		data, contentType, ok := storage.Object("tenants/acme/documents/report.pdf")
		require.True(t, ok)
		assert.Equal(t, []byte("pdf-bytes"), data)
		assert.Equal(t, "application/pdf", contentType)
	})

	t.Run("missing object does not exist", func(t *testing.T) {
		exists, err := storage.ObjectExists(ctx, "missing-key")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("empty key is rejected", func(t *testing.T) {
		err := storage.Upload(ctx, "", []byte("x"), "text/plain")
		assert.Error(t, err)

		_, err = storage.ObjectExists(ctx, "")
		assert.Error(t, err)
	})
}

func TestStubObjectStorage_DeleteObject(t *testing.T) {
	storage := NewStubObjectStorage()
	ctx := context.Background()

	require.NoError(t, storage.Upload(ctx, "key", []byte("data"), "text/plain"))

	err := storage.DeleteObject(ctx, "key")
	require.NoError(t, err)

	exists, err := storage.ObjectExists(ctx, "key")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStubObjectStorage_GenerateDownloadURL(t *testing.T) {
	storage := NewStubObjectStorage()
	ctx := context.Background()

	url, expiresAt, err := storage.GenerateDownloadURL(ctx, "key", 15*time.Minute)

	require.NoError(t, err)
	assert.Contains(t, url, "/download/key")
	assert.True(t, expiresAt.After(time.Now()))
}

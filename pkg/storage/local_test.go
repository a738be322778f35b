package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("upload, download and delete", func(t *testing.T) {
		store, err := NewLocalStorage(t.TempDir())
		require.NoError(t, err)

		info, err := store.Upload(ctx, "../roster:4月.pdf", "application/pdf", strings.NewReader("%PDF-1.4"))
		require.NoError(t, err)
		assert.Equal(t, int64(8), info.Size)
		assert.Equal(t, store.basePath, filepath.Dir(info.Path))
		assert.True(t, strings.HasSuffix(info.Path, "__roster_4月.pdf"))
		assert.FileExists(t, info.Path)

		rc, got, err := store.Download(ctx, info.ID)
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, rc.Close())
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4", string(data))
		assert.Equal(t, info.ID, got.ID)

		require.NoError(t, store.Delete(ctx, info.ID))
		assert.NoFileExists(t, info.Path)

		_, err = store.GetInfo(ctx, info.ID)
		assert.ErrorIs(t, err, ErrFileNotFound)
	})

	t.Run("delete unknown file", func(t *testing.T) {
		store, err := NewLocalStorage(t.TempDir())
		require.NoError(t, err)

		err = store.Delete(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrFileNotFound)
	})

	t.Run("purge removes only old files", func(t *testing.T) {
		store, err := NewLocalStorage(t.TempDir())
		require.NoError(t, err)

		old, err := store.Upload(ctx, "old.pdf", "application/pdf", strings.NewReader("a"))
		require.NoError(t, err)
		old.CreatedAt = time.Now().Add(-2 * time.Hour)
		require.NoError(t, store.saveMetadata(old))

		fresh, err := store.Upload(ctx, "new.pdf", "application/pdf", strings.NewReader("b"))
		require.NoError(t, err)

		removed, err := store.Purge(ctx, time.Now().Add(-time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 1, removed)

		files, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, fresh.ID, files[0].ID)

		_, err = os.Stat(old.Path)
		assert.True(t, os.IsNotExist(err))
	})
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "_etc_passwd", sanitizeFilename("/etc/passwd"))
	assert.Equal(t, "a_b_c.pdf", sanitizeFilename("a:b*c.pdf"))
}

package blob

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/revomotors/api-leads/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesystemStore_RoundTrip(t *testing.T) {
	store, err := NewFilesystemStore(filepath.Join(t.TempDir(), "docs"))
	require.NoError(t, err)
	ctx := context.Background()

	key := "dealers/7/license.pdf"
	require.NoError(t, store.Put(ctx, key, "application/pdf", []byte("%PDF-1.4")))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(got))

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting twice is fine
	assert.NoError(t, store.Delete(ctx, key))
}

func TestFilesystemStore_KeysStayInsideRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "docs")
	store, err := NewFilesystemStore(root)
	require.NoError(t, err)

	p, err := store.pathFor("../../etc/passwd")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p, root))

	_, err = store.pathFor("  ")
	assert.Error(t, err)
}

func TestDocumentKey(t *testing.T) {
	k1 := DocumentKey(3, "Dealer License.PDF")
	k2 := DocumentKey(3, "Dealer License.PDF")
	assert.NotEqual(t, k1, k2)
	assert.True(t, strings.HasPrefix(k1, "dealers/3/"))
	assert.True(t, strings.HasSuffix(k1, ".pdf"))
	assert.False(t, strings.Contains(DocumentKey(3, `C:\tmp\..\x`), ".."))
}

func TestNewFromConfig(t *testing.T) {
	s, err := NewFromConfig(context.Background(), &config.Config{BlobBackend: "filesystem", BlobFSRoot: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FilesystemStore{}, s)

	_, err = NewFromConfig(context.Background(), &config.Config{BlobBackend: "ftp"})
	assert.Error(t, err)

	_, err = NewFromConfig(context.Background(), &config.Config{BlobBackend: "s3"})
	assert.Error(t, err)
}

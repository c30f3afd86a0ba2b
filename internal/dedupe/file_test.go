package dedupe

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreMissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CHECKED_COMMENTS.txt")
	store, err := NewFileStore(path, false, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())
	assert.False(t, store.Contains("abc"))
}

func TestFileStoreUnreadableFileStartsEmpty(t *testing.T) {
	// A directory in place of the file cannot be read line by line.
	path := t.TempDir()
	store, err := NewFileStore(path, false, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestFileStoreLoadsAndTrims(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checked.txt")
	require.NoError(t, os.WriteFile(path, []byte("abc\n  SUBMISSION_abc \n\nabc\n"), 0o644))

	store, err := NewFileStore(path, false, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())
	assert.True(t, store.Contains("abc"))
	assert.True(t, store.Contains("SUBMISSION_abc"))
}

func TestFileStoreKeepsEntriesAroundOversizedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checked.txt")
	long := strings.Repeat("x", 2*1024*1024)
	require.NoError(t, os.WriteFile(path, []byte("first\n"+long+"\nlast"), 0o644))

	store, err := NewFileStore(path, false, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, store.Len())
	assert.True(t, store.Contains("first"))
	assert.True(t, store.Contains("last"))

	store.Add("new")
	require.NoError(t, store.Save(context.Background()))
	reopened, err := NewFileStore(path, false, nil)
	require.NoError(t, err)
	assert.True(t, reopened.Contains("first"))
	assert.True(t, reopened.Contains("last"))
	assert.True(t, reopened.Contains("new"))
}

func TestFileStoreAddIsIdempotentAndImmediate(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "checked.txt"), false, nil)
	require.NoError(t, err)

	store.Add("c1")
	store.Add("c1")
	store.Add("")
	assert.True(t, store.Contains("c1"))
	assert.Equal(t, 1, store.Len())
}

func TestFileStoreSaveRoundTripKeepsPriorEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checked.txt")
	require.NoError(t, os.WriteFile(path, []byte("old1\nold2\n"), 0o644))

	store, err := NewFileStore(path, false, nil)
	require.NoError(t, err)
	store.Add("new1")
	store.Add(SubmissionKey("new1"))
	require.NoError(t, store.Save(context.Background()))
	require.NoError(t, store.Save(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old1\nold2\nnew1\nSUBMISSION_new1\n", string(data))

	reloaded, err := NewFileStore(path, false, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, reloaded.Len())

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches, "temp files must not be left behind")
}

func TestFileStoreDryRunNeverWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checked.txt")
	require.NoError(t, os.WriteFile(path, []byte("keep\n"), 0o644))

	store, err := NewFileStore(path, true, nil)
	require.NoError(t, err)
	store.Add("dry")
	assert.True(t, store.Contains("dry"))
	require.NoError(t, store.Save(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep\n", string(data))
}

func TestFileStoreSaveFailureIsReturned(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	// The parent of the target is a regular file, so the directory cannot be created.
	store, err := NewFileStore(filepath.Join(blocker, "checked.txt"), false, nil)
	require.NoError(t, err)
	store.Add("x")
	assert.Error(t, store.Save(context.Background()))
	assert.True(t, store.Contains("x"))
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), "redis", "x", false, nil)
	assert.Error(t, err)
}

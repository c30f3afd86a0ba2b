package dedupe

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgerStoreSavePersistsPending(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "checked")
	store, err := NewBadgerStore(dir, false, nil)
	require.NoError(t, err)

	store.Add("c1")
	store.Add(SubmissionKey("s1"))
	store.Add("c1")
	assert.Equal(t, 2, store.Len())
	require.NoError(t, store.Save(context.Background()))
	require.NoError(t, store.Close())

	reopened, err := NewBadgerStore(dir, false, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	assert.True(t, reopened.Contains("c1"))
	assert.True(t, reopened.Contains("SUBMISSION_s1"))
	assert.False(t, reopened.Contains("s1"))
	assert.Equal(t, 2, reopened.Len())
}

func TestBadgerStoreDryRunNeverWrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "checked")
	store, err := NewBadgerStore(dir, true, nil)
	require.NoError(t, err)

	store.Add("c1")
	require.NoError(t, store.Save(context.Background()))
	require.NoError(t, store.Close())

	reopened, err := NewBadgerStore(dir, false, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	assert.Equal(t, 0, reopened.Len())
}

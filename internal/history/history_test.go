package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sub", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	clock := time.Unix(1700000000, 0)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, "input", "/tmp/a.txt"))
	require.NoError(t, s.Record(ctx, "input", "/tmp/b.txt"))
	require.NoError(t, s.Record(ctx, "output", "/tmp/out.bin"))
	require.NoError(t, s.Record(ctx, "input", "/tmp/a.txt"))

	entries, err := s.Recent(ctx, "input", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "/tmp/a.txt", entries[0].Path, "most recently used first")
	assert.Equal(t, 2, entries[0].Uses)
	assert.Equal(t, "/tmp/b.txt", entries[1].Path)

	paths, err := s.Paths(ctx, "output", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"/tmp/out.bin"}, paths)
}

func TestRecentLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, p := range []string{"/a", "/b", "/c", "/d"} {
		require.NoError(t, s.Record(ctx, "input", p))
	}

	paths, err := s.Paths(ctx, "input", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"/d", "/c"}, paths)
}

func TestRecordIgnoresEmpty(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, "input", "   "))

	paths, err := s.Paths(ctx, "input", 10)
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestForget(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, "input", "/a"))
	require.NoError(t, s.Record(ctx, "input", "/b"))
	require.NoError(t, s.Forget(ctx, "input", "/a"))

	paths, err := s.Paths(ctx, "input", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"/b"}, paths)
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(ctx, "input", "/kept"))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	paths, err := s.Paths(ctx, "input", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"/kept"}, paths)
}

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sample(hash string) Artifact {
	return Artifact{
		SourceHash:    hash,
		SourcePath:    "lib/main.src",
		SchemaVersion: "1",
		RunID:         "run-" + hash,
		IRJSON:        []byte(`{"schemaVersion":"1"}`),
		Lua:           "local x = 1\n",
	}
}

func TestPutAndGet(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, sample("aaa")))

	got, err := s.Get(ctx, "aaa")
	require.NoError(t, err)
	assert.Equal(t, "aaa", got.SourceHash)
	assert.Equal(t, "lib/main.src", got.SourcePath)
	assert.Equal(t, "1", got.SchemaVersion)
	assert.Equal(t, "run-aaa", got.RunID)
	assert.Equal(t, []byte(`{"schemaVersion":"1"}`), got.IRJSON)
	assert.Equal(t, "local x = 1\n", got.Lua)
	assert.NotEmpty(t, got.CreatedAt)
}

func TestGetMissing(t *testing.T) {
	s := openTemp(t)
	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPutOverwrites(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, sample("aaa")))

	updated := sample("aaa")
	updated.Lua = "local y = 2\n"
	updated.RunID = "run-later"
	require.NoError(t, s.Put(ctx, updated))

	got, err := s.Get(ctx, "aaa")
	require.NoError(t, err)
	assert.Equal(t, "local y = 2\n", got.Lua)
	assert.Equal(t, "run-later", got.RunID)

	entries, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPutRejectsEmptyHash(t *testing.T) {
	s := openTemp(t)
	err := s.Put(context.Background(), Artifact{})
	assert.Error(t, err)
}

func TestListOrder(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	// Same created_at resolution is likely for back-to-back writes; the
	// hash tiebreaker keeps the listing deterministic either way.
	require.NoError(t, s.Put(ctx, sample("bbb")))
	require.NoError(t, s.Put(ctx, sample("aaa")))
	require.NoError(t, s.Put(ctx, sample("ccc")))

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	seen := map[string]bool{}
	for _, e := range entries {
		seen[e.SourceHash] = true
	}
	assert.True(t, seen["aaa"] && seen["bbb"] && seen["ccc"])
}

func TestDelete(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, sample("aaa")))
	require.NoError(t, s.Delete(ctx, "aaa"))

	_, err := s.Get(ctx, "aaa")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent hash is not an error.
	assert.NoError(t, s.Delete(ctx, "aaa"))
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, sample("aaa")))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, "aaa")
	require.NoError(t, err)
	assert.Equal(t, "aaa", got.SourceHash)
}

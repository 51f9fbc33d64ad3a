package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/todoauth/internal/config"
	"github.com/dmitrijs2005/todoauth/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Memory(t *testing.T) {
	cfg := &config.Config{StoreDriver: config.DriverMemory}

	s, err := Open(context.Background(), cfg, logging.NewDiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, ok := s.Repository.(*MemoryRepository)
	assert.True(t, ok)
}

func TestOpen_SQLite_CreatesFileUnderDataDir(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{StoreDriver: config.DriverSQLite, DataDir: dir, StoreDSN: "auth.db"}
	ctx := context.Background()

	s, err := Open(ctx, cfg, logging.NewDiscardLogger())
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	require.NoError(t, s.Close())
	assert.FileExists(t, filepath.Join(dir, "auth.db"))

	s, err = Open(ctx, cfg, logging.NewDiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{StoreDriver: "redis"}, logging.NewDiscardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store driver")
}

func TestSqliteDSN(t *testing.T) {
	got, err := sqliteDSN(t.TempDir(), ":memory:")
	require.NoError(t, err)
	assert.Equal(t, ":memory:", got)

	got, err = sqliteDSN(t.TempDir(), "file:x?mode=memory")
	require.NoError(t, err)
	assert.Equal(t, "file:x?mode=memory", got)

	dir := t.TempDir()
	got, err = sqliteDSN(dir, "a.db")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.db"), got)
}

func TestStore_CloseWithoutCloser(t *testing.T) {
	s := &Store{Repository: NewMemoryRepository()}
	assert.NoError(t, s.Close())
}

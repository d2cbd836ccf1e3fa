package index

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/seekframe/indexd/config"
)

func TestOpen_Memory(t *testing.T) {
	cfg := config.DefaultStoreConfig()

	store, err := Open(&cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	assert.Equal(t, "memory", store.Name())
	assert.IsType(t, &MemoryStore{}, store)
}

func TestOpen_Sqlite(t *testing.T) {
	cfg := config.DefaultStoreConfig()
	cfg.Backend = "sqlite"
	cfg.Database.Name = filepath.Join(t.TempDir(), "indexd.db")
	cfg.Database.AutoMigrate = true

	store, err := Open(&cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	assert.Equal(t, "sqlite", store.Name())
	assert.IsType(t, &SQLStore{}, store)
}

func TestOpen_UnknownBackend(t *testing.T) {
	cfg := config.DefaultStoreConfig()
	cfg.Backend = "bogus"

	store, err := Open(&cfg, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Nil(t, store)
	assert.Contains(t, err.Error(), "unknown store backend")
}

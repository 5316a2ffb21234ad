package app

import (
	"path/filepath"
	"testing"

	"github.com/UkralStul/halalyelp-service/internal/config"
	"github.com/UkralStul/halalyelp-service/internal/storage/gormstore"
	"github.com/UkralStul/halalyelp-service/internal/storage/inmemory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore(t *testing.T) {
	store, closeStore, err := OpenStore(&config.Config{Storage: config.StorageInMemory})
	require.NoError(t, err)
	assert.IsType(t, &inmemory.Store{}, store)
	assert.NoError(t, closeStore())

	store, closeStore, err = OpenStore(&config.Config{
		Storage:    config.StorageSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "app.db"),
	})
	require.NoError(t, err)
	assert.IsType(t, &gormstore.Store{}, store)
	assert.NoError(t, closeStore())

	_, closeStore, err = OpenStore(&config.Config{Storage: "mongo"})
	assert.Error(t, err)
	assert.NotNil(t, closeStore)
}

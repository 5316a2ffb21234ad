package app

import (
	"fmt"

	"github.com/UkralStul/halalyelp-service/internal/config"
	"github.com/UkralStul/halalyelp-service/internal/storage"
	"github.com/UkralStul/halalyelp-service/internal/storage/gormstore"
	"github.com/UkralStul/halalyelp-service/internal/storage/inmemory"
)

// OpenStore выбирает хранилище по конфигурации. Функция закрытия всегда не nil.
func OpenStore(cfg *config.Config) (storage.Storage, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Storage {
	case config.StoragePostgres:
		s, err := gormstore.NewPostgres(cfg.DatabaseURL, cfg.DBDebug)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return s, s.Close, nil
	case config.StorageSQLite:
		s, err := gormstore.NewSQLite(cfg.SQLitePath, cfg.DBDebug)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open sqlite %s: %w", cfg.SQLitePath, err)
		}
		return s, s.Close, nil
	case config.StorageInMemory:
		return inmemory.New(), noop, nil
	}
	return nil, noop, fmt.Errorf("unknown storage type %q", cfg.Storage)
}

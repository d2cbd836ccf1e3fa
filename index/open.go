package index

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/seekframe/indexd/config"
)

// Open constructs the store selected by cfg.Backend.
func Open(cfg *config.StoreConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(logger), nil
	case "sqlite", "mysql", "postgres":
		s, err := OpenSQL(cfg, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "redis":
		s, err := OpenRedis(&cfg.Redis, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "mongo":
		s, err := OpenMongo(&cfg.Mongo, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

package session

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/config"
	apperrors "github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/errors"
)

// Open returns the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig, log logr.Logger) (Store, error) {
	log = log.WithName("session")
	var (
		store Store
		err   error
	)
	switch cfg.Driver {
	case config.DriverMemory:
		log.Info("Using in-memory session store; history will not survive restarts")
		return NewMemoryStore(), nil
	case config.DriverSQLite:
		log.Info("Opening sqlite session store", "path", cfg.DSN)
		store, err = OpenSQLite(cfg.DSN)
	case config.DriverPostgres:
		log.Info("Opening postgres session store")
		store, err = OpenPostgres(cfg.DSN)
	case config.DriverRedis:
		log.Info("Opening redis session store", "prefix", cfg.KeyPrefix)
		store, err = OpenRedis(ctx, cfg.DSN, cfg.KeyPrefix)
	default:
		return nil, apperrors.New(apperrors.ErrCodeConfigInvalid,
			fmt.Sprintf("unsupported store driver %q", cfg.Driver), nil)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/clipguard/clipguard/internal/config"
)

// Store is the persistent key/value collaborator. Values are JSON documents.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

var (
	ErrInvalidHost = errors.New("invalid hostname")
	ErrDuplicate   = errors.New("already present")
	ErrNotFound    = errors.New("not found")
)

func Open(cfg *config.Config) (Store, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	switch cfg.Store.Driver {
	case "", config.StoreMemory:
		return NewMemory(), nil
	case config.StoreFile:
		return OpenFile(cfg.ResolvePath(cfg.Store.Path))
	case config.StoreSQLite:
		return OpenSQLite(cfg.ResolvePath(cfg.Store.Path))
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

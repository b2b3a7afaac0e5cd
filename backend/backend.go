// Package backend opens the wide-column store selected by configuration.
package backend

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/viant/colindex/coladmin"
	"github.com/viant/colindex/column"
	"github.com/viant/colindex/column/memstore"
	"github.com/viant/colindex/column/pebblestore"
	"github.com/viant/colindex/config"
	"github.com/viant/colindex/engine"
)

// Open returns the store named by cfg.Driver. Closing the returned store
// releases everything Open acquired.
func Open(ctx context.Context, cfg config.StoreConfig) (column.ProvisioningStore, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		return openSQLite(ctx, cfg)
	case config.DriverPebble:
		return pebblestore.Open(cfg.Path, cfg.NamespaceCacheSize)
	case config.DriverMemory:
		return memstore.New(), nil
	}
	return nil, fmt.Errorf("backend: unsupported driver %q", cfg.Driver)
}

type sqliteStore struct {
	*column.SQLiteStore
	db *sql.DB
}

func (s *sqliteStore) Close() error { return s.db.Close() }

func openSQLite(ctx context.Context, cfg config.StoreConfig) (column.ProvisioningStore, error) {
	if err := engine.RegisterKeyFunctions(nil); err != nil {
		return nil, fmt.Errorf("backend: register key functions: %w", err)
	}
	dsn := cfg.DSN
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := engine.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("backend: open sqlite: %w", err)
	}
	if err := coladmin.Register(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("backend: register admin module: %w", err)
	}
	store, err := column.NewSQLiteStore(ctx, db, cfg.NamespaceCacheSize)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &sqliteStore{SQLiteStore: store, db: db}, nil
}

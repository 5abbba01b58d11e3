package db

import (
	"fmt"

	"gorm.io/gorm"

	"target-shooting/internal/config"
	"target-shooting/internal/store"
)

// OpenGateway builds the games gateway for cfg.StorageDriver. The returned
// connection is nil unless the backend is relational; relational schemas are
// auto-migrated before use.
func OpenGateway(cfg config.Config) (store.Gateway, *gorm.DB, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return store.NewMemory(), nil, nil
	case config.DriverFile:
		gw, err := store.OpenFile(cfg.DataFile)
		if err != nil {
			return nil, nil, err
		}
		return gw, nil, nil
	case config.DriverPostgres, config.DriverMySQL, config.DriverSQLite:
		conn, err := Open(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("open %s: %w", cfg.StorageDriver, err)
		}
		if err := Migrate(conn); err != nil {
			return nil, nil, err
		}
		return NewGateway(conn, cfg.StorageDriver), conn, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

// Close releases the pool behind conn, if any.
func Close(conn *gorm.DB) error {
	if conn == nil {
		return nil
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

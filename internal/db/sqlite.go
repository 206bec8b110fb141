package db

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OpenSQLite opens (creating if needed) the database file and brings its
// schema up to date.
func OpenSQLite(dbPath string, logger *zap.Logger) (*gorm.DB, error) {
	database, err := connectSQLite(dbPath, logger)
	if err != nil {
		return nil, err
	}
	if err := migrate(database, logger); err != nil {
		return nil, err
	}
	return database, nil
}

func connectSQLite(dbPath string, logger *zap.Logger) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbPath)
	database, err := gorm.Open(sqlite.Open(dsn), newGormConfig(logger))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return database, nil
}

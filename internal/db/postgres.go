package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// OpenPostgres opens the main Postgres store and applies migrations.
func OpenPostgres(dsn string, logger *zap.Logger) (*gorm.DB, error) {
	database, err := openPostgresPool(dsn, logger)
	if err != nil {
		return nil, err
	}
	if err := migrate(database, logger); err != nil {
		return nil, err
	}
	return database, nil
}

// OpenPostgresIntake opens a second pool for the public lead intake
// credential. The schema belongs to the main connection, so no migrations
// run here.
func OpenPostgresIntake(dsn string, logger *zap.Logger) (*gorm.DB, error) {
	return openPostgresPool(dsn, logger)
}

func openPostgresPool(dsn string, logger *zap.Logger) (*gorm.DB, error) {
	database, err := gorm.Open(postgres.Open(dsn), newGormConfig(logger))
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return database, nil
}

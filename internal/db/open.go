package db

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Options struct {
	Driver string
	Path   string
	DSN    string
}

// Open connects and brings the schema up to date.
func Open(options Options, logger *zap.Logger) (*gorm.DB, error) {
	database, err := Connect(options, logger)
	if err != nil {
		return nil, err
	}
	if err := migrate(database, logger); err != nil {
		return nil, err
	}
	return database, nil
}

// Connect opens the configured store without touching its schema.
func Connect(options Options, logger *zap.Logger) (*gorm.DB, error) {
	switch options.Driver {
	case DriverPostgres:
		return openPostgresPool(options.DSN, logger)
	case DriverSQLite, "":
		return connectSQLite(options.Path, logger)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", options.Driver)
	}
}

func newGormConfig(logger *zap.Logger) *gorm.Config {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &gorm.Config{
		Logger: gormlogger.New(
			zap.NewStdLog(logger.Named("gorm")),
			gormlogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	}
}

func migrate(database *gorm.DB, logger *zap.Logger) error {
	applied, err := ApplyMigrations(context.Background(), database)
	if err != nil {
		return fmt.Errorf("apply embedded migrations: %w", err)
	}
	if logger != nil {
		for _, name := range applied {
			logger.Info("migration applied", zap.String("migration", name))
		}
	}
	return nil
}

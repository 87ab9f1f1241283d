package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

// NewDatabase opens the configured database and migrates the schema.
func NewDatabase(cfg config.Database) (*Database, error) {
	dialector, target, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Printf("Database initialized successfully (%s: %s)", cfg.Driver, target)

	return &Database{DB: db}, nil
}

func dialectorFor(cfg config.Database) (gorm.Dialector, string, error) {
	switch cfg.Driver {
	case config.DatabaseDriverSQLite, "":
		return sqlite.Open(cfg.Path), cfg.Path, nil
	case config.DatabaseDriverPostgres:
		if cfg.DSN == "" {
			return nil, "", errors.New("DATABASE_DSN is required for the postgres driver")
		}
		return postgres.Open(cfg.DSN), "dsn", nil
	default:
		return nil, "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Migrate creates or updates the tables for all entities.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entities.User{},
		&entities.Author{},
		&entities.Genre{},
		&entities.Book{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Ping checks the connection is alive.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

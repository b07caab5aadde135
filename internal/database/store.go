package database

import (
	"fmt"

	"learning-api/internal/models"
	"learning-api/pkg/logging"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// Store is the explicitly owned storage handle. It is opened once in main and
// passed to the components that need it; nothing references it as ambient
// state.
type Store struct {
	db *gorm.DB
}

// Open connects to the configured database. PostgreSQL when databaseURL is
// set, SQLite otherwise (development fallback). Migrates the schema and seeds
// default data.
func Open(databaseURL string) (*Store, error) {
	if databaseURL == "" {
		logging.Infof("Database URL not set, using SQLite for development")
		return openWith(sqlite.Open("learning-api.db"))
	}
	return openWith(postgres.Open(databaseURL))
}

// OpenSQLite opens a store backed by the given SQLite DSN. Used by tests and
// local tooling.
func OpenSQLite(dsn string) (*Store, error) {
	return openWith(sqlite.Open(dsn))
}

func openWith(dialector gorm.Dialector) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite cannot serve concurrent writers; a single connection also keeps
	// in-memory test databases alive for the store's lifetime.
	if dialector.Name() == "sqlite" {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}

	store := &Store{db: db}

	if err := store.autoMigrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := store.seedCatalog(); err != nil {
		return nil, fmt.Errorf("failed to seed catalog: %w", err)
	}

	logging.Infof("Database connected successfully")
	return store, nil
}

func (s *Store) autoMigrate() error {
	return s.db.AutoMigrate(
		&models.Transaction{},
		&models.UserSubscription{},
		&models.UserPurchase{},
		&models.UserItemProgress{},
		&models.UserLessonProgress{},
		&models.UserStats{},
		&models.Lesson{},
		&models.LessonItem{},
		&models.WebhookFailure{},
	)
}

// DB exposes the underlying handle for callers with one-off query needs.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		logging.Errorf("Failed to close database: %v", err)
		return err
	}
	return nil
}

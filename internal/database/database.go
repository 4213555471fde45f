package database

import (
	"log"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"vehiclerent/internal/domain"
)

type Options struct {
	LogLevel logger.LogLevel
}

func Connect(dsn string) (*gorm.DB, error) {
	return ConnectWith(dsn, Options{LogLevel: logger.Warn})
}

func ConnectWith(dsn string, opts Options) (*gorm.DB, error) {
	// errors stay untranslated so unique violations keep their constraint name
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(opts.LogLevel),
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		log.Println("Connecting to PostgreSQL...")
		return gorm.Open(postgres.Open(dsn), cfg)
	}

	log.Println("Using SQLite for local development:", dsn)

	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		cfg,
	)
	if err != nil {
		return nil, err
	}

	// sqlite allows a single writer, and every ":memory:" connection is its own database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Vehicle{},
		&domain.Booking{},
		&domain.Alert{},
		&domain.Review{},
		&domain.Counter{},
	)
}

package configs

import (
	"database/sql"
	"fmt"
	"strings"

	"littlelemon/entity"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectionDB opens the database named by cfg.DBDriver. Postgres goes through
// pgx; sqlite is the local default and the test backend.
func ConnectionDB(cfg *Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}

	switch cfg.DBDriver {
	case "postgres", "postgresql":
		db, err := gorm.Open(postgres.Open(cfg.DBSource), gcfg)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return db, nil
	case "sqlite", "sqlite3", "":
		db, err := gorm.Open(sqlite.Open(SQLiteDSN(cfg.DBSource)), gcfg)
		if err != nil {
			return nil, fmt.Errorf("connect sqlite: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// one writer at a time; sqlite locks the whole file anyway
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// SQLiteDSN turns foreign keys on and sets a busy timeout unless the source
// already carries query parameters.
func SQLiteDSN(source string) string {
	if strings.Contains(source, "?") {
		return source
	}
	if !strings.HasPrefix(source, "file:") {
		source = "file:" + source
	}
	return source + "?_foreign_keys=on&_busy_timeout=5000"
}

// CheckoutTxOptions is the isolation used around checkout. Postgres runs it
// SERIALIZABLE; sqlite serialises writers on its own.
func CheckoutTxOptions(cfg *Config) *sql.TxOptions {
	switch cfg.DBDriver {
	case "postgres", "postgresql":
		return &sql.TxOptions{Isolation: sql.LevelSerializable}
	default:
		return nil
	}
}

// SetupDatabase migrates the schema.
func SetupDatabase(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Group{},
		&entity.User{},
		&entity.Category{},
		&entity.MenuItem{},
		&entity.CartLine{},
		&entity.Order{},
		&entity.OrderItem{},
	)
}

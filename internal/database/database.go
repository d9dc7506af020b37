package database

import (
	"context"
	"flowdata/internal/config"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know about.
	sqlx.BindDriver(config.DriverSQLite, sqlx.QUESTION)
}

// Open connects to the configured database and verifies the connection.
func Open(cfg *config.Config) (*sqlx.DB, error) {
	return Connect(cfg.DBDriver, cfg.GetDSN(), cfg)
}

func Connect(driver, dsn string, cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	// Connection pool settings
	if cfg != nil {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
		db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	}
	if driver == config.DriverSQLite {
		// sqlite serialises writers; a single connection keeps the
		// import transaction and its reads on the same handle.
		db.SetMaxOpenConns(1)
	}

	return db, nil
}

// OpenSQLite opens (creating if needed) a sqlite database file and brings
// its schema up to date.
func OpenSQLite(ctx context.Context, path string) (*sqlx.DB, error) {
	db, err := Connect(config.DriverSQLite, config.SQLiteDSN(path), nil)
	if err != nil {
		return nil, err
	}
	if _, err := Migrate(ctx, db, config.DriverSQLite); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"boletera-api/internal/config"
)

// Supported drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DB struct {
	*sqlx.DB
	dialect string
}

type Config struct {
	Driver string // postgres or sqlite
	DSN    string
}

func NewConnection(config Config) (*DB, error) {
	switch config.Driver {
	case DriverPostgres:
		return openPostgres(config.DSN)
	case DriverSQLite:
		return openSQLite(config.DSN)
	default:
		return nil, errors.Errorf("unsupported database driver %q", config.Driver)
	}
}

// Open connects to the database described by the application configuration
func Open(cfg config.DatabaseConfig) (*DB, error) {
	return NewConnection(Config{Driver: cfg.Driver, DSN: cfg.DSN()})
}

func openPostgres(dsn string) (*DB, error) {
	db, err := sqlx.Open(DriverPostgres, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)                 // Maximum number of open connections
	db.SetMaxIdleConns(5)                  // Maximum number of idle connections
	db.SetConnMaxLifetime(5 * time.Minute) // Maximum lifetime of a connection

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	return &DB{DB: db, dialect: DriverPostgres}, nil
}

// openSQLite uses a single long-lived connection: SQLite serializes writers
// anyway and an in-memory database lives only as long as its connection.
func openSQLite(path string) (*DB, error) {
	if path == "" {
		path = ":memory:"
	}

	db, err := sqlx.Open(sqliteDriverName, path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "failed to apply %s", pragma)
		}
	}

	return &DB{DB: db, dialect: DriverSQLite}, nil
}

// Dialect returns the driver family, postgres or sqlite
func (db *DB) Dialect() string {
	return db.dialect
}

// Ping checks the database is reachable
func (db *DB) Ping(ctx context.Context) error {
	return db.DB.PingContext(ctx)
}

func (db *DB) Close() error {
	return db.DB.Close()
}

// RunMigrations runs all pending database migrations
func (db *DB) RunMigrations() error {
	migrator := NewMigrator(db)
	return migrator.RunMigrations()
}

// GetMigrationStatus reports every known migration and whether it has been applied
func (db *DB) GetMigrationStatus() ([]MigrationStatus, error) {
	migrator := NewMigrator(db)
	return migrator.GetMigrationStatus()
}

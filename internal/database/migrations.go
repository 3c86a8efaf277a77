package database

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationFiles embed.FS

type Migration struct {
	Version int
	Name    string
	SQL     string
}

// MigrationStatus pairs a migration with whether it has been applied
type MigrationStatus struct {
	Migration
	Applied bool
}

type Migrator struct {
	db *DB
}

func NewMigrator(db *DB) *Migrator {
	return &Migrator{db: db}
}

// CreateMigrationsTable creates the migrations tracking table
func (m *Migrator) CreateMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`
	_, err := m.db.Exec(query)
	return err
}

// GetAppliedMigrations returns a list of applied migration versions
func (m *Migrator) GetAppliedMigrations() (map[int]bool, error) {
	applied := make(map[int]bool)

	var versions []int
	if err := m.db.Select(&versions, "SELECT version FROM schema_migrations ORDER BY version"); err != nil {
		return applied, err
	}

	for _, version := range versions {
		applied[version] = true
	}

	return applied, nil
}

// LoadMigrations loads the migration files of the connection's dialect
func (m *Migrator) LoadMigrations() ([]Migration, error) {
	return loadMigrations(migrationFiles, "migrations/"+m.db.Dialect())
}

func loadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	var migrations []Migration

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read migrations directory")
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		// Parse version from filename (e.g., "001_create_usuarios.sql")
		parts := strings.SplitN(entry.Name(), "_", 2)
		if len(parts) != 2 {
			continue
		}

		var version int
		if _, err := fmt.Sscanf(parts[0], "%d", &version); err != nil {
			continue
		}

		content, err := fs.ReadFile(fsys, dir+"/"+entry.Name())
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read migration %s", entry.Name())
		}

		migrations = append(migrations, Migration{
			Version: version,
			Name:    strings.TrimSuffix(parts[1], ".sql"),
			SQL:     string(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// RunMigrations executes all pending migrations, each in its own transaction
func (m *Migrator) RunMigrations() error {
	if err := m.CreateMigrationsTable(); err != nil {
		return errors.Wrap(err, "failed to create migrations table")
	}

	applied, err := m.GetAppliedMigrations()
	if err != nil {
		return errors.Wrap(err, "failed to get applied migrations")
	}

	migrations, err := m.LoadMigrations()
	if err != nil {
		return errors.Wrap(err, "failed to load migrations")
	}

	for _, migration := range migrations {
		if applied[migration.Version] {
			continue
		}

		tx, err := m.db.Beginx()
		if err != nil {
			return errors.Wrapf(err, "failed to start transaction for migration %d", migration.Version)
		}

		if _, err := tx.Exec(migration.SQL); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "failed to execute migration %d", migration.Version)
		}

		if _, err := tx.Exec(tx.Rebind("INSERT INTO schema_migrations (version, name) VALUES (?, ?)"), migration.Version, migration.Name); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "failed to record migration %d", migration.Version)
		}

		if err := tx.Commit(); err != nil {
			return errors.Wrapf(err, "failed to commit migration %d", migration.Version)
		}
	}

	return nil
}

// GetMigrationStatus returns the current migration status
func (m *Migrator) GetMigrationStatus() ([]MigrationStatus, error) {
	if err := m.CreateMigrationsTable(); err != nil {
		return nil, errors.Wrap(err, "failed to create migrations table")
	}

	applied, err := m.GetAppliedMigrations()
	if err != nil {
		return nil, err
	}

	migrations, err := m.LoadMigrations()
	if err != nil {
		return nil, err
	}

	statuses := make([]MigrationStatus, len(migrations))
	for i, migration := range migrations {
		statuses[i] = MigrationStatus{Migration: migration, Applied: applied[migration.Version]}
	}

	return statuses, nil
}

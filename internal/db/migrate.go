// Package db provides database migration functionality.
package db

import (
	"context"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Migration represents a single database migration.
type Migration struct {
	Version     int
	Description string
	UpSQL       string
	DownSQL     string
}

// migrationFilePattern matches migration filenames like "001_initial_schema.up.sql"
var migrationFilePattern = regexp.MustCompile(`^(\d+)_(.+)\.(up|down)\.sql$`)

// loadMigrations reads all migrations from the embedded filesystem.
func loadMigrations() ([]Migration, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	type migrationFiles struct {
		version     int
		description string
		upFile      string
		downFile    string
	}
	filesByVersion := make(map[int]*migrationFiles)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		matches := migrationFilePattern.FindStringSubmatch(entry.Name())
		if matches == nil {
			continue
		}

		version, _ := strconv.Atoi(matches[1])
		description := strings.ReplaceAll(matches[2], "_", " ")
		direction := matches[3]

		if filesByVersion[version] == nil {
			filesByVersion[version] = &migrationFiles{
				version:     version,
				description: description,
			}
		}

		if direction == "up" {
			filesByVersion[version].upFile = entry.Name()
		} else {
			filesByVersion[version].downFile = entry.Name()
		}
	}

	var migrations []Migration
	for _, files := range filesByVersion {
		m := Migration{
			Version:     files.version,
			Description: files.description,
		}

		if files.upFile != "" {
			content, err := fs.ReadFile(migrationsFS, "migrations/"+files.upFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", files.upFile, err)
			}
			m.UpSQL = string(content)
		}

		if files.downFile != "" {
			content, err := fs.ReadFile(migrationsFS, "migrations/"+files.downFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", files.downFile, err)
			}
			m.DownSQL = string(content)
		}

		migrations = append(migrations, m)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// MigrateUp applies all pending migrations.
func (db *DB) MigrateUp(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.ensureSchemaVersionTable(ctx); err != nil {
		return 0, err
	}

	migrations, err := loadMigrations()
	if err != nil {
		return 0, err
	}

	currentVersion, err := db.getCurrentVersion(ctx)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, m := range migrations {
		if m.Version <= currentVersion {
			continue
		}

		if m.UpSQL == "" {
			return applied, fmt.Errorf("migration %d has no up SQL", m.Version)
		}

		if err := db.applyMigrationTx(ctx, m.Version, m.Description, m.UpSQL); err != nil {
			return applied, fmt.Errorf("migration %d failed: %w", m.Version, err)
		}

		db.logger.Info().
			Int("version", m.Version).
			Str("description", m.Description).
			Msg("applied migration")
		applied++
	}

	return applied, nil
}

// MigrateDown rolls back the last n migrations.
func (db *DB) MigrateDown(ctx context.Context, steps int) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.ensureSchemaVersionTable(ctx); err != nil {
		return 0, err
	}

	migrations, err := loadMigrations()
	if err != nil {
		return 0, err
	}

	currentVersion, err := db.getCurrentVersion(ctx)
	if err != nil {
		return 0, err
	}

	if currentVersion == 0 {
		return 0, nil // Nothing to roll back
	}

	var toRollback []Migration
	for i := len(migrations) - 1; i >= 0 && len(toRollback) < steps; i-- {
		if migrations[i].Version <= currentVersion {
			toRollback = append(toRollback, migrations[i])
		}
	}

	rolledBack := 0
	for _, m := range toRollback {
		if m.DownSQL == "" {
			return rolledBack, fmt.Errorf("migration %d has no down SQL", m.Version)
		}

		if err := db.rollbackMigrationTx(ctx, m.Version, m.DownSQL); err != nil {
			return rolledBack, fmt.Errorf("rollback of migration %d failed: %w", m.Version, err)
		}

		db.logger.Info().
			Int("version", m.Version).
			Str("description", m.Description).
			Msg("rolled back migration")
		rolledBack++
	}

	return rolledBack, nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if err := db.ensureSchemaVersionTable(ctx); err != nil {
		return 0, err
	}
	return db.getCurrentVersion(ctx)
}

func (db *DB) ensureSchemaVersionTable(ctx context.Context) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

func (db *DB) getCurrentVersion(ctx context.Context) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

func (db *DB) applyMigrationTx(ctx context.Context, version int, description, upSQL string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, upSQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_version (version, description, applied_at) VALUES (?, ?, ?)",
		version, description, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return err
	}

	return tx.Commit()
}

func (db *DB) rollbackMigrationTx(ctx context.Context, version int, downSQL string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, downSQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM schema_version WHERE version = ?", version,
	); err != nil {
		return err
	}

	return tx.Commit()
}

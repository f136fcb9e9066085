package database

import (
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// DefaultMigrationsPath is the default directory holding schema migrations.
// Migrations run only from the migrate CLI subcommand at deploy time;
// request handlers never create or alter schema.
const DefaultMigrationsPath = "migrations"

// sourceURL builds the file source URL for golang-migrate.
func sourceURL(migrationsPath string) string {
	if migrationsPath == "" {
		migrationsPath = DefaultMigrationsPath
	}
	return "file://" + migrationsPath
}

// RunMigrations applies all pending database migrations against dbURL.
func RunMigrations(dbURL, migrationsPath string) error {
	if dbURL == "" {
		return fmt.Errorf("database URL not set")
	}

	log.Println("Initializing database migrations...")

	// Create migration instance
	m, err := migrate.New(sourceURL(migrationsPath), dbURL)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	defer m.Close()

	// Get current version
	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		log.Printf("Could not get migration version: %v", err)
	}

	// Handle dirty state
	if dirty {
		log.Printf("Database in dirty state at version %d, forcing clean...", version)
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force version: %w", err)
		}
		log.Printf("Database cleaned, forced to version %d", version)
	}

	// Run all pending migrations
	log.Println("Applying pending migrations...")
	err = m.Up()
	if err != nil {
		if err == migrate.ErrNoChange {
			log.Println("Database is up to date (no migrations needed)")
			version, _, _ := m.Version()
			log.Printf("Current migration version: %d", version)
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Get final version
	version, _, _ = m.Version()
	log.Printf("Migrations complete! Current version: %d", version)

	return nil
}

// GetMigrationVersion returns the current migration version.
func GetMigrationVersion(dbURL, migrationsPath string) (uint, bool, error) {
	if dbURL == "" {
		return 0, false, fmt.Errorf("database URL not set")
	}

	m, err := migrate.New(sourceURL(migrationsPath), dbURL)
	if err != nil {
		return 0, false, err
	}
	defer m.Close()

	return m.Version()
}

// RollbackMigration rolls back the last migration.
func RollbackMigration(dbURL, migrationsPath string) error {
	if dbURL == "" {
		return fmt.Errorf("database URL not set")
	}

	m, err := migrate.New(sourceURL(migrationsPath), dbURL)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	defer m.Close()

	if err := m.Steps(-1); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	version, _, _ := m.Version()
	log.Printf("Rolled back to version: %d", version)
	return nil
}

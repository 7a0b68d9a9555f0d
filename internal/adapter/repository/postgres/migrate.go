package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/V4T54L/rentwise/migrations"
)

// Migrator applies the embedded schema migrations.
type Migrator struct {
	m      *migrate.Migrate
	logger *slog.Logger
}

// MigrationSource returns the embedded migrations as a golang-migrate source.
func MigrationSource() (source.Driver, error) {
	return iofs.New(migrations.FS, ".")
}

// NewMigrator binds the embedded migrations to db.
func NewMigrator(db *sql.DB, logger *slog.Logger) (*Migrator, error) {
	src, err := MigrationSource()
	if err != nil {
		return nil, fmt.Errorf("open migration source: %w", err)
	}
	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return nil, fmt.Errorf("open migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("init migrator: %w", err)
	}
	return &Migrator{m: m, logger: logger.With("component", "migrator")}, nil
}

// Up applies all pending migrations. Being up to date is not an error.
func (mg *Migrator) Up() error {
	return mg.run("up", mg.m.Up)
}

// Down rolls back n migrations.
func (mg *Migrator) Down(n int) error {
	if n <= 0 {
		return errors.New("down: step count must be positive")
	}
	return mg.run("down", func() error { return mg.m.Steps(-n) })
}

// Version reports the current schema version.
func (mg *Migrator) Version() (version uint, dirty bool, err error) {
	version, dirty, err = mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (mg *Migrator) run(name string, fn func() error) error {
	err := fn()
	if errors.Is(err, migrate.ErrNoChange) {
		mg.logger.Info("schema already up to date", "direction", name)
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", name, err)
	}
	v, dirty, _ := mg.Version()
	mg.logger.Info("migration applied", "direction", name, "version", v, "dirty", dirty)
	return nil
}

// Close releases the migration source and database driver.
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}

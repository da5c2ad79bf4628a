package repository

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// NewDB opens a connection pool for the given driver and verifies it with a
// ping. For sqlite, dsn is a file path; its parent directory is created.
func NewDB(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverPostgres:
		return openAndPing("postgres", dsn)
	case DriverSQLite:
		if dir := filepath.Dir(dsn); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
			}
		}
		return openAndPing("sqlite", sqliteDSN(dsn))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func sqliteDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
}

func openAndPing(driverName, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Migrate creates the katas table and its index if they do not exist.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	ddl, err := schemaFS.ReadFile("schema/" + driver + ".sql")
	if err != nil {
		return fmt.Errorf("no schema for driver %q: %w", driver, err)
	}
	if _, err := db.ExecContext(ctx, string(ddl)); err != nil {
		return fmt.Errorf("failed to apply %s schema: %w", driver, err)
	}
	return nil
}

// NewKataRepository returns the store implementation for driver.
func NewKataRepository(driver string, db *sql.DB) (KataRepository, error) {
	switch driver {
	case DriverPostgres:
		return NewPostgresKata(db), nil
	case DriverSQLite:
		return NewSQLiteKata(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

type scannable interface {
	Scan(dest ...any) error
}

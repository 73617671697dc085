// Package sqlite provides a SQLite implementation of the map
// registry store.
//
// Every method executes a single SQL statement, so each call is
// atomic on its own under SQLite's autocommit behaviour; there is no
// multi-statement write in this store and therefore no transaction
// plumbing. The database is opened in WAL mode so readers never
// block the (manager-serialised) writer.
//
// All queries use prepared statements: the SQL is parsed and planned
// once at Open, and every call reuses the compiled statement.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/frobware/go-bpfarray/interpreter/store"
)

// msec formats a duration as milliseconds with 3 decimal places.
func msec(d time.Duration) string {
	return fmt.Sprintf("%.3f", float64(d.Microseconds())/1000)
}

//go:embed schema.sql
var schemaSQL string

// sqliteStore implements store.Store using SQLite.
type sqliteStore struct {
	db     *sql.DB
	logger *slog.Logger

	stmtSaveMap   *sql.Stmt
	stmtGetMap    *sql.Stmt
	stmtListMaps  *sql.Stmt
	stmtDeleteMap *sql.Stmt
}

// New creates a new SQLite store at the given path.
func New(ctx context.Context, dbPath string, logger *slog.Logger) (store.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "store", "db", dbPath)

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open(driverName, dsn(dbPath, [][2]string{{"journal_mode", "WAL"}, {"foreign_keys", "1"}}))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &sqliteStore{db: db, logger: logger}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	logger.Info("opened database", "path", dbPath)
	return s, nil
}

// migrate applies the embedded schema. All statements are
// IF NOT EXISTS, so this is idempotent.
func (s *sqliteStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Close closes the prepared statements and the database.
func (s *sqliteStore) Close() error {
	for _, stmt := range []*sql.Stmt{s.stmtSaveMap, s.stmtGetMap, s.stmtListMaps, s.stmtDeleteMap} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return s.db.Close()
}

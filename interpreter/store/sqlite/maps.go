package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/frobware/go-bpfarray/interpreter/store"
)

// SaveMap creates or updates a map record keyed by name.
func (s *sqliteStore) SaveMap(ctx context.Context, rec store.MapRecord) error {
	start := time.Now()
	result, err := s.stmtSaveMap.ExecContext(ctx,
		rec.Name, rec.KernelID, rec.TypeTag, rec.KeySize, rec.ValueSize,
		rec.MaxEntries, rec.Flags, rec.Pinning, rec.PinPath,
		rec.CreatedAt.Format(time.RFC3339))
	if err != nil {
		s.logger.Debug("sql", "stmt", "SaveMap", "args", []any{rec.Name, rec.KernelID}, "duration_ms", msec(time.Since(start)), "error", err)
		return fmt.Errorf("save map %q: %w", rec.Name, err)
	}
	rows, _ := result.RowsAffected()
	s.logger.Debug("sql", "stmt", "SaveMap", "args", []any{rec.Name, rec.KernelID}, "duration_ms", msec(time.Since(start)), "rows_affected", rows)
	return nil
}

// GetMap retrieves a map record by name.
func (s *sqliteStore) GetMap(ctx context.Context, name string) (store.MapRecord, error) {
	start := time.Now()
	row := s.stmtGetMap.QueryRowContext(ctx, name)

	rec, err := scanMapRecord(row.Scan)
	if err == sql.ErrNoRows {
		s.logger.Debug("sql", "stmt", "GetMap", "args", []any{name}, "duration_ms", msec(time.Since(start)), "rows", 0)
		return store.MapRecord{}, fmt.Errorf("map %q: %w", name, store.ErrNotFound)
	}
	if err != nil {
		s.logger.Debug("sql", "stmt", "GetMap", "args", []any{name}, "duration_ms", msec(time.Since(start)), "error", err)
		return store.MapRecord{}, err
	}

	s.logger.Debug("sql", "stmt", "GetMap", "args", []any{name}, "duration_ms", msec(time.Since(start)), "rows", 1)
	return rec, nil
}

// ListMaps returns all map records ordered by name.
func (s *sqliteStore) ListMaps(ctx context.Context) ([]store.MapRecord, error) {
	start := time.Now()
	rows, err := s.stmtListMaps.QueryContext(ctx)
	if err != nil {
		s.logger.Debug("sql", "stmt", "ListMaps", "duration_ms", msec(time.Since(start)), "error", err)
		return nil, err
	}
	defer rows.Close()

	var result []store.MapRecord
	for rows.Next() {
		rec, err := scanMapRecord(rows.Scan)
		if err != nil {
			s.logger.Debug("sql", "stmt", "ListMaps", "duration_ms", msec(time.Since(start)), "error", err)
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		s.logger.Debug("sql", "stmt", "ListMaps", "duration_ms", msec(time.Since(start)), "error", err)
		return nil, err
	}

	s.logger.Debug("sql", "stmt", "ListMaps", "duration_ms", msec(time.Since(start)), "rows", len(result))
	return result, nil
}

// DeleteMap removes a map record by name.
func (s *sqliteStore) DeleteMap(ctx context.Context, name string) error {
	start := time.Now()
	result, err := s.stmtDeleteMap.ExecContext(ctx, name)
	if err != nil {
		s.logger.Debug("sql", "stmt", "DeleteMap", "args", []any{name}, "duration_ms", msec(time.Since(start)), "error", err)
		return fmt.Errorf("delete map %q: %w", name, err)
	}

	rows, _ := result.RowsAffected()
	s.logger.Debug("sql", "stmt", "DeleteMap", "args", []any{name}, "duration_ms", msec(time.Since(start)), "rows_affected", rows)
	if rows == 0 {
		return fmt.Errorf("map %q: %w", name, store.ErrNotFound)
	}
	return nil
}

// scanMapRecord reads one managed_maps row via the given Scan
// function, converting the stored timestamp back to time.Time.
func scanMapRecord(scan func(dest ...any) error) (store.MapRecord, error) {
	var rec store.MapRecord
	var createdAt string

	if err := scan(&rec.Name, &rec.KernelID, &rec.TypeTag, &rec.KeySize, &rec.ValueSize,
		&rec.MaxEntries, &rec.Flags, &rec.Pinning, &rec.PinPath, &createdAt); err != nil {
		return store.MapRecord{}, err
	}

	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return store.MapRecord{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	rec.CreatedAt = t
	return rec, nil
}

package sqlite

import "fmt"

// prepareStatements prepares all SQL statements used by the store.
func (s *sqliteStore) prepareStatements() error {
	var err error

	const sqlSaveMap = `
		INSERT INTO managed_maps
		(name, kernel_id, type_tag, key_size, value_size, max_entries, flags, pinning, pin_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
		  kernel_id = excluded.kernel_id,
		  type_tag = excluded.type_tag,
		  key_size = excluded.key_size,
		  value_size = excluded.value_size,
		  max_entries = excluded.max_entries,
		  flags = excluded.flags,
		  pinning = excluded.pinning,
		  pin_path = excluded.pin_path,
		  created_at = excluded.created_at`
	if s.stmtSaveMap, err = s.db.Prepare(sqlSaveMap); err != nil {
		return fmt.Errorf("prepare SaveMap: %w", err)
	}

	const sqlGetMap = `
		SELECT name, kernel_id, type_tag, key_size, value_size, max_entries, flags, pinning, pin_path, created_at
		FROM managed_maps
		WHERE name = ?`
	if s.stmtGetMap, err = s.db.Prepare(sqlGetMap); err != nil {
		return fmt.Errorf("prepare GetMap: %w", err)
	}

	const sqlListMaps = `
		SELECT name, kernel_id, type_tag, key_size, value_size, max_entries, flags, pinning, pin_path, created_at
		FROM managed_maps
		ORDER BY name`
	if s.stmtListMaps, err = s.db.Prepare(sqlListMaps); err != nil {
		return fmt.Errorf("prepare ListMaps: %w", err)
	}

	const sqlDeleteMap = "DELETE FROM managed_maps WHERE name = ?"
	if s.stmtDeleteMap, err = s.db.Prepare(sqlDeleteMap); err != nil {
		return fmt.Errorf("prepare DeleteMap: %w", err)
	}

	return nil
}

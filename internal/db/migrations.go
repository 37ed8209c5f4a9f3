package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS breaks (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			air_time   TEXT NOT NULL,
			zone       TEXT NOT NULL DEFAULT 'day',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS spots (
			id               TEXT PRIMARY KEY,
			break_id         INTEGER NOT NULL REFERENCES breaks(id),
			air_date         TEXT NOT NULL,
			position         INTEGER NOT NULL,
			client_code      TEXT NOT NULL DEFAULT '',
			client_name      TEXT NOT NULL DEFAULT '',
			message          TEXT NOT NULL DEFAULT '',
			duration_seconds INTEGER NOT NULL CHECK(duration_seconds >= 0),
			spot_type        TEXT NOT NULL DEFAULT '',
			contract         TEXT NOT NULL DEFAULT '',
			flow_tag         TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_spots_cell ON spots(air_date, break_id, position);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating schedule tables: %w", err)
	}

	return nil
}

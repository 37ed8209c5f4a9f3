// Package db provides SQLite storage implementation.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/spotgrid/internal/schedule"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// SQLite implements schedule.Repository using SQLite.
type SQLite struct {
	db *sql.DB
}

var _ schedule.Repository = (*SQLite)(nil)

// New creates a new SQLite repository and runs migrations.
func New(dsn string) (*SQLite, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// ListBreaks returns every break ordered by time of day.
func (s *SQLite) ListBreaks(ctx context.Context) ([]schedule.BreakSlot, error) {
	query := `SELECT id, air_time, zone FROM breaks ORDER BY air_time, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying breaks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var breaks []schedule.BreakSlot
	for rows.Next() {
		var (
			b    schedule.BreakSlot
			zone string
		)
		if err := rows.Scan(&b.ID, &b.Time, &zone); err != nil {
			return nil, fmt.Errorf("scanning break: %w", err)
		}
		b.Zone = schedule.Zone(zone)
		breaks = append(breaks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating breaks: %w", err)
	}

	return breaks, nil
}

// CreateBreak adds a break and sets its ID.
func (s *SQLite) CreateBreak(ctx context.Context, b *schedule.BreakSlot) error {
	if !schedule.ValidTime(b.Time) {
		return fmt.Errorf("%w: %q", schedule.ErrInvalidTimeFormat, b.Time)
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO breaks (air_time, zone) VALUES (?, ?)`,
		b.Time, string(b.Zone),
	)
	if err != nil {
		return fmt.Errorf("inserting break: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	b.ID = id

	return nil
}

// LoadCells returns the non-empty cells dated within [from, to].
func (s *SQLite) LoadCells(ctx context.Context, from, to schedule.Date) (map[schedule.Key]schedule.CellData, error) {
	query := `
		SELECT s.break_id, s.air_date, s.id, s.client_code, s.client_name, s.message,
		       s.duration_seconds, s.spot_type, s.contract, s.flow_tag, b.zone
		FROM spots s
		JOIN breaks b ON b.id = s.break_id
		WHERE s.air_date >= ? AND s.air_date <= ?
		ORDER BY s.air_date, s.break_id, s.position
	`

	rows, err := s.db.QueryContext(ctx, query, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("querying spots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cells := make(map[schedule.Key]schedule.CellData)
	for rows.Next() {
		var (
			breakID int64
			airDate string
			zone    string
			it      schedule.CommercialItem
		)
		err := rows.Scan(
			&breakID,
			&airDate,
			&it.ID,
			&it.ClientCode,
			&it.ClientName,
			&it.Message,
			&it.DurationSeconds,
			&it.Type,
			&it.Contract,
			&it.FlowTag,
			&zone,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning spot: %w", err)
		}

		date, err := parseDate(airDate)
		if err != nil {
			return nil, fmt.Errorf("parsing air date: %w", err)
		}

		key := schedule.Key{BreakID: breakID, Date: date}
		c := cells[key]
		c.Items = append(c.Items, it)
		c.SpotCount = len(c.Items)
		c.TotalDurationSeconds += it.DurationSeconds
		c.ZoneColor = schedule.Zone(zone).Color()
		cells[key] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating spots: %w", err)
	}

	return cells, nil
}

// SaveCells replaces the spots of each given key in one transaction.
// An empty CellData clears the key.
func (s *SQLite) SaveCells(ctx context.Context, cells map[schedule.Key]schedule.CellData) error {
	if len(cells) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	del, err := tx.PrepareContext(ctx, `DELETE FROM spots WHERE break_id = ? AND air_date = ?`)
	if err != nil {
		return fmt.Errorf("preparing delete: %w", err)
	}
	defer func() { _ = del.Close() }()

	ins, err := tx.PrepareContext(ctx, `
		INSERT INTO spots (
			id, break_id, air_date, position, client_code, client_name, message,
			duration_seconds, spot_type, contract, flow_tag
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer func() { _ = ins.Close() }()

	keys := make([]schedule.Key, 0, len(cells))
	for k := range cells {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, schedule.CompareKeys)

	for _, key := range keys {
		if _, err := del.ExecContext(ctx, key.BreakID, key.Date.String()); err != nil {
			return fmt.Errorf("clearing cell %s: %w", key, err)
		}
		for pos, it := range cells[key].Items {
			_, err := ins.ExecContext(ctx,
				it.ID,
				key.BreakID,
				key.Date.String(),
				pos,
				it.ClientCode,
				it.ClientName,
				it.Message,
				it.DurationSeconds,
				it.Type,
				it.Contract,
				it.FlowTag,
			)
			if err != nil {
				return fmt.Errorf("inserting spot %q: %w", it.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// parseDate parses a date string in the formats SQLite might return.
func parseDate(s string) (schedule.Date, error) {
	// Date columns can come back as "2006-01-02T00:00:00Z".
	if len(s) == 20 && s[10] == 'T' && s[19] == 'Z' {
		s = s[:10]
	}
	return schedule.ParseDate(s)
}

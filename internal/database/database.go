package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite" // CGO-free SQLite

	"github.com/vincentbai/browsetrace-sessions/internal/models"
)

type Database struct {
	db              *sql.DB
	validEventTypes map[string]bool
}

type Option func(*Database)

// WithEventTypes restricts inserts to the given event types. Without it any
// type, including the empty one, is accepted.
func WithEventTypes(types ...string) Option {
	return func(d *Database) {
		for _, eventType := range types {
			d.validEventTypes[eventType] = true
		}
	}
}

func NewDatabase(databasePath string, opts ...Option) (*Database, error) {
	// WAL + busy timeout to avoid "database is locked"
	db, err := sql.Open("sqlite", databasePath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	d := &Database{
		db:              db,
		validEventTypes: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS events(
	  id        INTEGER PRIMARY KEY,
	  user_id   TEXT    NOT NULL,
	  ts        INTEGER NOT NULL,
	  type      TEXT    NOT NULL,
	  meta_json TEXT    NOT NULL CHECK (json_valid(meta_json))
	);
	CREATE INDEX IF NOT EXISTS idx_events_user_ts ON events(user_id, ts);
	CREATE INDEX IF NOT EXISTS idx_events_ts      ON events(ts);
	CREATE INDEX IF NOT EXISTS idx_events_type    ON events(type);
	`)
	if err != nil {
		return fmt.Errorf("failed to create database tables: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) ValidateEvent(event models.Event) error {
	if len(d.validEventTypes) > 0 && !d.validEventTypes[event.Type] {
		return fmt.Errorf("invalid event type: %q", event.Type)
	}
	return nil
}

// InsertEvents stores events in one transaction. Nothing is stored if any
// event is rejected.
func (d *Database) InsertEvents(events []models.Event) error {
	transaction, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	statement, err := transaction.Prepare(`INSERT INTO events(user_id, ts, type, meta_json) VALUES(?,?,?,json(?))`)
	if err != nil {
		_ = transaction.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer statement.Close()

	for _, event := range events {
		if err := d.ValidateEvent(event); err != nil {
			_ = transaction.Rollback()
			return fmt.Errorf("invalid event: %w", err)
		}

		jsonData, err := json.Marshal(event.Meta)
		if err != nil {
			_ = transaction.Rollback()
			return fmt.Errorf("failed to marshal event meta: %w", err)
		}
		if _, err := statement.Exec(event.UserID, event.TS, event.Type, string(jsonData)); err != nil {
			_ = transaction.Rollback()
			return fmt.Errorf("failed to execute statement: %w", err)
		}
	}
	if err := transaction.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LoadEvents returns every stored event in insertion order.
func (d *Database) LoadEvents(ctx context.Context) ([]models.Event, error) {
	return d.queryEvents(ctx, `SELECT user_id, ts, type, meta_json FROM events ORDER BY id`)
}

// LoadUserEvents returns one user's events in insertion order.
func (d *Database) LoadUserEvents(ctx context.Context, userID string) ([]models.Event, error) {
	return d.queryEvents(ctx, `SELECT user_id, ts, type, meta_json FROM events WHERE user_id = ? ORDER BY id`, userID)
}

func (d *Database) CountEvents(ctx context.Context) (int, error) {
	var count int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

func (d *Database) queryEvents(ctx context.Context, query string, args ...any) ([]models.Event, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var (
			event    models.Event
			metaJSON string
		)
		if err := rows.Scan(&event.UserID, &event.TS, &event.Type, &metaJSON); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if event.Meta, err = models.DecodeMeta([]byte(metaJSON)); err != nil {
			return nil, fmt.Errorf("failed to decode event meta: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	return events, nil
}

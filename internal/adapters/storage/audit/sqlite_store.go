package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/mergington/activities/internal/adapters/storage"
	domain "github.com/mergington/activities/internal/domain/audit"
)

const timeLayout = "2006-01-02T15:04:05.999999999Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists an audit event.
// PRE: event has a unique ID
// POST: Event is persisted
func (s *SQLiteStore) Save(ctx context.Context, e domain.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO roster_audit (id, timestamp, action, activity_name, email)
		 VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Timestamp.UTC().Format(timeLayout), string(e.Action), e.Activity, e.Email)
	if err != nil {
		return fmt.Errorf("save audit event: %w", err)
	}
	return nil
}

// List returns the most recent audit events.
// PRE: limit > 0
// POST: Returns events ordered by timestamp desc
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, action, activity_name, email
		 FROM roster_audit ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		var ts, action string
		if err := rows.Scan(&e.ID, &ts, &action, &e.Activity, &e.Email); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		parsed, err := time.Parse(timeLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("parse audit timestamp: %w", err)
		}
		e.Timestamp = parsed
		e.Action = domain.Action(action)
		events = append(events, e)
	}
	return events, rows.Err()
}

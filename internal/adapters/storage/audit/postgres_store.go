package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/mergington/activities/internal/domain/audit"
)

// PostgresStore implements Store using a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Ensure PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Save persists an audit event.
// PRE: event has a unique ID
// POST: Event is persisted
func (s *PostgresStore) Save(ctx context.Context, e domain.Event) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO roster_audit (id, timestamp, action, activity_name, email)
		 VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.Timestamp.UTC(), string(e.Action), e.Activity, e.Email)
	if err != nil {
		return fmt.Errorf("save audit event: %w", err)
	}
	return nil
}

// List returns the most recent audit events.
// PRE: limit > 0
// POST: Returns events ordered by timestamp desc
func (s *PostgresStore) List(ctx context.Context, limit int) ([]domain.Event, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, timestamp, action, activity_name, email
		 FROM roster_audit ORDER BY timestamp DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		var action string
		if err := rows.Scan(&e.ID, &e.Timestamp, &action, &e.Activity, &e.Email); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = domain.Action(action)
		events = append(events, e)
	}
	return events, rows.Err()
}

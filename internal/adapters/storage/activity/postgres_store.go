package activity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/mergington/activities/internal/domain/activity"
)

// PostgresStore implements Store using a pgx connection pool.
// Selected when MERGINGTON_DATABASE_URL points at a PostgreSQL database.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Ensure PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// InitPostgresSchema creates the activity tables if they do not exist.
// PRE: pool is connected
// POST: Schema is in place; safe to run repeatedly
func InitPostgresSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS activity (
		name TEXT PRIMARY KEY,
		description TEXT NOT NULL,
		schedule TEXT NOT NULL,
		max_participants INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS participant (
		activity_name TEXT NOT NULL REFERENCES activity(name) ON DELETE CASCADE,
		email TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (activity_name, email)
	);

	CREATE TABLE IF NOT EXISTS roster_audit (
		id TEXT PRIMARY KEY,
		timestamp TIMESTAMPTZ NOT NULL,
		action TEXT NOT NULL,
		activity_name TEXT NOT NULL,
		email TEXT NOT NULL
	);`)
	if err != nil {
		return fmt.Errorf("init postgres schema: %w", err)
	}
	return nil
}

// GetByName retrieves an activity by name.
// PRE: name is non-empty
// POST: Returns the entity or domain.ErrActivityNotFound
func (s *PostgresStore) GetByName(ctx context.Context, name string) (domain.Activity, error) {
	var a domain.Activity
	err := s.pool.QueryRow(ctx,
		`SELECT name, description, schedule, max_participants FROM activity WHERE name = $1`, name).
		Scan(&a.Name, &a.Description, &a.Schedule, &a.MaxParticipants)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Activity{}, domain.ErrActivityNotFound
	}
	if err != nil {
		return domain.Activity{}, fmt.Errorf("get activity: %w", err)
	}

	participants, err := s.loadParticipants(ctx, name)
	if err != nil {
		return domain.Activity{}, err
	}
	a.Participants = participants
	return a, nil
}

// Save inserts or updates an activity and rewrites its roster inside a transaction.
// PRE: entity has been validated
// POST: Entity and its roster are persisted in order
func (s *PostgresStore) Save(ctx context.Context, a domain.Activity) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO activity (name, description, schedule, max_participants)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (name) DO UPDATE SET
		   description = EXCLUDED.description, schedule = EXCLUDED.schedule,
		   max_participants = EXCLUDED.max_participants`,
		a.Name, a.Description, a.Schedule, a.MaxParticipants)
	if err != nil {
		return fmt.Errorf("save activity: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM participant WHERE activity_name = $1`, a.Name); err != nil {
		return fmt.Errorf("clear roster: %w", err)
	}
	for i, email := range a.Participants {
		_, err := tx.Exec(ctx,
			`INSERT INTO participant (activity_name, email, position) VALUES ($1, $2, $3)`,
			a.Name, email, i)
		if err != nil {
			return fmt.Errorf("save roster entry: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// List returns all activities in name order with rosters in signup order.
func (s *PostgresStore) List(ctx context.Context) ([]domain.Activity, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name, description, schedule, max_participants FROM activity ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var activities []domain.Activity
	for rows.Next() {
		var a domain.Activity
		if err := rows.Scan(&a.Name, &a.Description, &a.Schedule, &a.MaxParticipants); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range activities {
		participants, err := s.loadParticipants(ctx, activities[i].Name)
		if err != nil {
			return nil, err
		}
		activities[i].Participants = participants
	}
	return activities, nil
}

// Count returns the number of stored activities.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM activity`).Scan(&n)
	return n, err
}

// loadParticipants returns the roster for one activity in signup order.
func (s *PostgresStore) loadParticipants(ctx context.Context, name string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT email FROM participant WHERE activity_name = $1 ORDER BY position`, name)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	defer rows.Close()

	var participants []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan roster entry: %w", err)
		}
		participants = append(participants, email)
	}
	return participants, rows.Err()
}

package activity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mergington/activities/internal/adapters/storage"
	domain "github.com/mergington/activities/internal/domain/activity"
)

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

// GetByName retrieves an activity by name.
// PRE: name is non-empty
// POST: Returns the entity or domain.ErrActivityNotFound
func (s *SQLiteStore) GetByName(ctx context.Context, name string) (domain.Activity, error) {
	var a domain.Activity
	err := s.db.QueryRowContext(ctx,
		`SELECT name, description, schedule, max_participants FROM activity WHERE name = ?`, name).
		Scan(&a.Name, &a.Description, &a.Schedule, &a.MaxParticipants)
	if errors.Is(err, sql.ErrNoRows) {
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

// Save inserts or updates an activity and rewrites its roster.
// PRE: entity has been validated
// POST: Entity and its roster are persisted in order
func (s *SQLiteStore) Save(ctx context.Context, a domain.Activity) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO activity (name, description, schedule, max_participants)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   description=excluded.description, schedule=excluded.schedule,
		   max_participants=excluded.max_participants`,
		a.Name, a.Description, a.Schedule, a.MaxParticipants)
	if err != nil {
		return fmt.Errorf("save activity: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM participant WHERE activity_name = ?`, a.Name); err != nil {
		return fmt.Errorf("clear roster: %w", err)
	}
	for i, email := range a.Participants {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO participant (activity_name, email, position) VALUES (?, ?, ?)`,
			a.Name, email, i)
		if err != nil {
			return fmt.Errorf("save roster entry: %w", err)
		}
	}

	return tx.Commit()
}

// List returns all activities in name order with rosters in signup order.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Activity, error) {
	rows, err := s.db.QueryContext(ctx,
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
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM activity`).Scan(&n)
	return n, err
}

// loadParticipants returns the roster for one activity in signup order.
func (s *SQLiteStore) loadParticipants(ctx context.Context, name string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT email FROM participant WHERE activity_name = ? ORDER BY position`, name)
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

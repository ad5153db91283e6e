package activity

import (
	"context"

	domain "github.com/mergington/activities/internal/domain/activity"
)

// Store persists Activity state.
type Store interface {
	// GetByName retrieves an activity and its ordered roster.
	// PRE: name is non-empty
	// POST: Returns the entity or domain.ErrActivityNotFound
	GetByName(ctx context.Context, name string) (domain.Activity, error)

	// Save inserts or updates an activity, rewriting its roster in order.
	// PRE: entity has been validated
	// POST: Entity is persisted (insert or update)
	Save(ctx context.Context, value domain.Activity) error

	// List returns all activities in name order, rosters in signup order.
	List(ctx context.Context) ([]domain.Activity, error)

	// Count returns the number of stored activities.
	Count(ctx context.Context) (int, error)
}

package audit

import (
	"context"

	domain "github.com/mergington/activities/internal/domain/audit"
)

// Store defines the interface for roster audit persistence.
type Store interface {
	// Save persists an audit event.
	// PRE: event has a unique ID
	// POST: Event is persisted
	Save(ctx context.Context, event domain.Event) error

	// List returns recent audit events.
	// PRE: limit > 0
	// POST: Returns events ordered by timestamp desc
	List(ctx context.Context, limit int) ([]domain.Event, error)
}

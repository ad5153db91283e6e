package audit

import (
	"time"
)

// Action represents the roster mutation that occurred.
type Action string

const (
	ActionSignUp     Action = "signup"
	ActionUnregister Action = "unregister"
)

// Event represents a single entry in the roster audit trail.
// The trail is append-only; events are never edited or deleted.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	Activity  string    `json:"activity"`
	Email     string    `json:"email"`
}

// NewEvent creates an audit event for a roster mutation.
// PRE: id, activityName and email are non-empty
// POST: Returns an Event stamped with now
func NewEvent(id string, action Action, activityName, email string, now time.Time) Event {
	return Event{
		ID:        id,
		Timestamp: now,
		Action:    action,
		Activity:  activityName,
		Email:     email,
	}
}

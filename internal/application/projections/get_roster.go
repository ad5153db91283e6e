package projections

import (
	"context"

	activityDomain "github.com/mergington/activities/internal/domain/activity"
)

// RosterActivityStore defines the store interface needed by the roster projection.
type RosterActivityStore interface {
	List(ctx context.Context) ([]activityDomain.Activity, error)
}

// GetRosterDeps holds dependencies for the roster projection.
type GetRosterDeps struct {
	ActivityStore RosterActivityStore
}

// RosterActivityResult is one activity prepared for display or serialization.
type RosterActivityResult struct {
	Name            string
	Description     string
	Schedule        string
	MaxParticipants int
	SpotsLeft       int // computed, may be negative
	Participants    []string
}

// RosterResult carries the output of the roster projection.
type RosterResult struct {
	Activities []RosterActivityResult // stable name order
}

// QueryGetRoster returns every activity with its computed spots left.
// PRE: ActivityStore is wired
// POST: Activities are in stable name order; rosters in signup order
func QueryGetRoster(ctx context.Context, deps GetRosterDeps) (RosterResult, error) {
	activities, err := deps.ActivityStore.List(ctx)
	if err != nil {
		return RosterResult{}, err
	}

	result := RosterResult{Activities: make([]RosterActivityResult, 0, len(activities))}
	for i := range activities {
		a := &activities[i]
		result.Activities = append(result.Activities, RosterActivityResult{
			Name:            a.Name,
			Description:     a.Description,
			Schedule:        a.Schedule,
			MaxParticipants: a.MaxParticipants,
			SpotsLeft:       a.SpotsLeft(),
			Participants:    a.Participants,
		})
	}
	return result, nil
}

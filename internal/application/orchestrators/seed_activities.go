package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	activityDomain "github.com/mergington/activities/internal/domain/activity"
)

// SeedActivityStore defines the store interface needed by the seeder.
type SeedActivityStore interface {
	Count(ctx context.Context) (int, error)
	Save(ctx context.Context, a activityDomain.Activity) error
}

// SeedActivitiesDeps holds dependencies for SeedActivities.
type SeedActivitiesDeps struct {
	ActivityStore SeedActivityStore
}

// defaultActivities is the Mergington High School extracurricular catalogue.
var defaultActivities = []activityDomain.Activity{
	{
		Name:            "Chess Club",
		Description:     "Learn strategies and compete in chess tournaments",
		Schedule:        "Fridays, 3:30 PM - 5:00 PM",
		MaxParticipants: 12,
		Participants:    []string{"michael@mergington.edu", "daniel@mergington.edu"},
	},
	{
		Name:            "Programming Class",
		Description:     "Learn programming fundamentals and build software projects",
		Schedule:        "Tuesdays and Thursdays, 3:30 PM - 4:30 PM",
		MaxParticipants: 20,
		Participants:    []string{"emma@mergington.edu", "sophia@mergington.edu"},
	},
	{
		Name:            "Gym Class",
		Description:     "Physical education and sports activities",
		Schedule:        "Mondays, Wednesdays, Fridays, 2:00 PM - 3:00 PM",
		MaxParticipants: 30,
		Participants:    []string{"john@mergington.edu", "olivia@mergington.edu"},
	},
	{
		Name:            "Soccer Club",
		Description:     "Practice soccer skills and compete in friendly matches",
		Schedule:        "Tuesdays and Thursdays, 4:00 PM - 5:30 PM",
		MaxParticipants: 22,
		Participants:    []string{"liam@mergington.edu", "noah@mergington.edu"},
	},
	{
		Name:            "Basketball Team",
		Description:     "Practice and play basketball with the school team",
		Schedule:        "Wednesdays and Fridays, 3:30 PM - 5:00 PM",
		MaxParticipants: 15,
		Participants:    []string{"ava@mergington.edu", "mia@mergington.edu"},
	},
	{
		Name:            "Drama Club",
		Description:     "Act, direct, and produce plays and performances",
		Schedule:        "Mondays and Wednesdays, 4:00 PM - 5:30 PM",
		MaxParticipants: 20,
		Participants:    []string{"ella@mergington.edu", "scarlett@mergington.edu"},
	},
	{
		Name:            "Art Club",
		Description:     "Explore your creativity through painting and drawing",
		Schedule:        "Thursdays, 3:30 PM - 5:00 PM",
		MaxParticipants: 15,
		Participants:    []string{"amelia@mergington.edu", "harper@mergington.edu"},
	},
	{
		Name:            "Debate Team",
		Description:     "Develop public speaking and argumentation skills",
		Schedule:        "Fridays, 4:00 PM - 5:30 PM",
		MaxParticipants: 12,
		Participants:    []string{"charlotte@mergington.edu", "henry@mergington.edu"},
	},
	{
		Name:            "Math Club",
		Description:     "Solve challenging problems and prepare for math competitions",
		Schedule:        "Tuesdays, 3:30 PM - 4:30 PM",
		MaxParticipants: 10,
		Participants:    []string{"james@mergington.edu", "benjamin@mergington.edu"},
	},
}

// ExecuteSeedActivities loads the default catalogue into an empty store.
// Idempotent: a store that already holds activities is left untouched.
// PRE: ActivityStore is wired
// POST: Store holds the default catalogue if it was empty
func ExecuteSeedActivities(ctx context.Context, deps SeedActivitiesDeps) error {
	n, err := deps.ActivityStore.Count(ctx)
	if err != nil {
		return fmt.Errorf("count activities: %w", err)
	}
	if n > 0 {
		return nil
	}

	for _, a := range defaultActivities {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("seed activity %q: %w", a.Name, err)
		}
		if err := deps.ActivityStore.Save(ctx, a); err != nil {
			return fmt.Errorf("seed activity %q: %w", a.Name, err)
		}
	}

	slog.Info("roster_event", "event", "activities_seeded", "count", len(defaultActivities))
	return nil
}

package orchestrators_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mergington/activities/internal/adapters/email"
	"github.com/mergington/activities/internal/application/orchestrators"
	activityDomain "github.com/mergington/activities/internal/domain/activity"
	auditDomain "github.com/mergington/activities/internal/domain/audit"
)

type mockActivityStore struct {
	activities map[string]activityDomain.Activity
	saveErr    error
}

func (m *mockActivityStore) GetByName(_ context.Context, name string) (activityDomain.Activity, error) {
	if a, ok := m.activities[name]; ok {
		return a, nil
	}
	return activityDomain.Activity{}, activityDomain.ErrActivityNotFound
}

func (m *mockActivityStore) Save(_ context.Context, a activityDomain.Activity) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.activities[a.Name] = a
	return nil
}

func (m *mockActivityStore) Count(_ context.Context) (int, error) {
	return len(m.activities), nil
}

type mockAuditStore struct {
	events []auditDomain.Event
}

func (m *mockAuditStore) Save(_ context.Context, e auditDomain.Event) error {
	m.events = append(m.events, e)
	return nil
}

type mockSender struct {
	sent []email.SendRequest
	err  error
}

func (m *mockSender) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	if m.err != nil {
		return email.SendResult{}, m.err
	}
	m.sent = append(m.sent, req)
	return email.SendResult{MessageID: "test-1", SentAt: time.Now()}, nil
}

func testDeps(store *mockActivityStore, audit *mockAuditStore, sender email.Sender) orchestrators.SignUpDeps {
	deps := orchestrators.SignUpDeps{
		ActivityStore: store,
		EmailSender:   sender,
		EmailFrom:     "Mergington High School <noreply@mergington.edu>",
		GenerateID:    func() string { return "id-1" },
		Now:           func() time.Time { return time.Date(2026, 3, 1, 15, 30, 0, 0, time.UTC) },
	}
	// Leave the interface field unset for a nil mock: a typed-nil pointer
	// stored in the interface would defeat the orchestrator's nil check.
	if audit != nil {
		deps.AuditStore = audit
	}
	return deps
}

// TestExecuteSignUp tests the signup orchestrator.
func TestExecuteSignUp(t *testing.T) {
	ctx := context.Background()

	t.Run("signs up and records audit and email", func(t *testing.T) {
		store := &mockActivityStore{activities: map[string]activityDomain.Activity{
			"Chess Club": {Name: "Chess Club", Schedule: "Fridays", MaxParticipants: 12,
				Participants: []string{"michael@mergington.edu"}},
		}}
		audit := &mockAuditStore{}
		sender := &mockSender{}

		result, err := orchestrators.ExecuteSignUp(ctx,
			orchestrators.SignUpInput{Activity: "Chess Club", Email: "new@mergington.edu"},
			testDeps(store, audit, sender))
		if err != nil {
			t.Fatalf("ExecuteSignUp() unexpected error: %v", err)
		}
		if !strings.Contains(result.Message, "new@mergington.edu") || !strings.Contains(result.Message, "Chess Club") {
			t.Errorf("message should name student and activity, got %q", result.Message)
		}
		saved := store.activities["Chess Club"]
		if len(saved.Participants) != 2 || saved.Participants[1] != "new@mergington.edu" {
			t.Errorf("expected roster appended, got %v", saved.Participants)
		}
		if len(audit.events) != 1 || audit.events[0].Action != auditDomain.ActionSignUp {
			t.Errorf("expected one signup audit event, got %+v", audit.events)
		}
		if len(sender.sent) != 1 || sender.sent[0].To[0] != "new@mergington.edu" {
			t.Errorf("expected confirmation email to student, got %+v", sender.sent)
		}
	})

	t.Run("unknown activity", func(t *testing.T) {
		store := &mockActivityStore{activities: map[string]activityDomain.Activity{}}
		_, err := orchestrators.ExecuteSignUp(ctx,
			orchestrators.SignUpInput{Activity: "NonExistent Club", Email: "a@mergington.edu"},
			testDeps(store, nil, nil))
		if !errors.Is(err, activityDomain.ErrActivityNotFound) {
			t.Errorf("error = %v, want ErrActivityNotFound", err)
		}
	})

	t.Run("duplicate student", func(t *testing.T) {
		store := &mockActivityStore{activities: map[string]activityDomain.Activity{
			"Drama Club": {Name: "Drama Club", MaxParticipants: 20, Participants: []string{"dup@mergington.edu"}},
		}}
		_, err := orchestrators.ExecuteSignUp(ctx,
			orchestrators.SignUpInput{Activity: "Drama Club", Email: "dup@mergington.edu"},
			testDeps(store, nil, nil))
		if !errors.Is(err, activityDomain.ErrAlreadySignedUp) {
			t.Errorf("error = %v, want ErrAlreadySignedUp", err)
		}
	})

	t.Run("full activity", func(t *testing.T) {
		store := &mockActivityStore{activities: map[string]activityDomain.Activity{
			"Math Club": {Name: "Math Club", MaxParticipants: 1, Participants: []string{"a@mergington.edu"}},
		}}
		_, err := orchestrators.ExecuteSignUp(ctx,
			orchestrators.SignUpInput{Activity: "Math Club", Email: "b@mergington.edu"},
			testDeps(store, nil, nil))
		if !errors.Is(err, activityDomain.ErrActivityFull) {
			t.Errorf("error = %v, want ErrActivityFull", err)
		}
	})

	t.Run("succeeds without an audit store", func(t *testing.T) {
		store := &mockActivityStore{activities: map[string]activityDomain.Activity{
			"Debate Team": {Name: "Debate Team", MaxParticipants: 12},
		}}
		result, err := orchestrators.ExecuteSignUp(ctx,
			orchestrators.SignUpInput{Activity: "Debate Team", Email: "a@mergington.edu"},
			testDeps(store, nil, nil))
		if err != nil {
			t.Fatalf("ExecuteSignUp() should skip the audit step when unset, got %v", err)
		}
		if !strings.Contains(result.Message, "Debate Team") {
			t.Errorf("unexpected message %q", result.Message)
		}
	})

	t.Run("email failure does not fail the signup", func(t *testing.T) {
		store := &mockActivityStore{activities: map[string]activityDomain.Activity{
			"Art Club": {Name: "Art Club", MaxParticipants: 15},
		}}
		sender := &mockSender{err: errors.New("provider down")}
		_, err := orchestrators.ExecuteSignUp(ctx,
			orchestrators.SignUpInput{Activity: "Art Club", Email: "a@mergington.edu"},
			testDeps(store, nil, sender))
		if err != nil {
			t.Errorf("ExecuteSignUp() should succeed despite email failure, got %v", err)
		}
	})
}

// TestExecuteUnregister tests the removal orchestrator.
func TestExecuteUnregister(t *testing.T) {
	ctx := context.Background()

	t.Run("removes and records audit", func(t *testing.T) {
		store := &mockActivityStore{activities: map[string]activityDomain.Activity{
			"Gym Class": {Name: "Gym Class", MaxParticipants: 30,
				Participants: []string{"a@mergington.edu", "b@mergington.edu"}},
		}}
		audit := &mockAuditStore{}
		deps := orchestrators.UnregisterDeps{
			ActivityStore: store,
			AuditStore:    audit,
			GenerateID:    func() string { return "id-2" },
			Now:           time.Now,
		}

		result, err := orchestrators.ExecuteUnregister(ctx,
			orchestrators.UnregisterInput{Activity: "Gym Class", Email: "a@mergington.edu"}, deps)
		if err != nil {
			t.Fatalf("ExecuteUnregister() unexpected error: %v", err)
		}
		if !strings.Contains(result.Message, "a@mergington.edu") {
			t.Errorf("message should name the student, got %q", result.Message)
		}
		saved := store.activities["Gym Class"]
		if len(saved.Participants) != 1 || saved.Participants[0] != "b@mergington.edu" {
			t.Errorf("expected roster [b@mergington.edu], got %v", saved.Participants)
		}
		if len(audit.events) != 1 || audit.events[0].Action != auditDomain.ActionUnregister {
			t.Errorf("expected one unregister audit event, got %+v", audit.events)
		}
	})

	t.Run("not signed up", func(t *testing.T) {
		store := &mockActivityStore{activities: map[string]activityDomain.Activity{
			"Basketball Team": {Name: "Basketball Team", MaxParticipants: 15},
		}}
		deps := orchestrators.UnregisterDeps{ActivityStore: store, GenerateID: func() string { return "x" }, Now: time.Now}
		_, err := orchestrators.ExecuteUnregister(ctx,
			orchestrators.UnregisterInput{Activity: "Basketball Team", Email: "ghost@mergington.edu"}, deps)
		if !errors.Is(err, activityDomain.ErrNotSignedUp) {
			t.Errorf("error = %v, want ErrNotSignedUp", err)
		}
	})
}

// TestExecuteSeedActivities tests catalogue seeding.
func TestExecuteSeedActivities(t *testing.T) {
	ctx := context.Background()

	t.Run("seeds empty store", func(t *testing.T) {
		store := &mockActivityStore{activities: map[string]activityDomain.Activity{}}
		if err := orchestrators.ExecuteSeedActivities(ctx, orchestrators.SeedActivitiesDeps{ActivityStore: store}); err != nil {
			t.Fatalf("ExecuteSeedActivities() error: %v", err)
		}
		for _, want := range []string{"Chess Club", "Programming Class", "Basketball Team", "Gym Class"} {
			if _, ok := store.activities[want]; !ok {
				t.Errorf("expected %q seeded", want)
			}
		}
		chess := store.activities["Chess Club"]
		if chess.MaxParticipants != 12 || len(chess.Participants) != 2 {
			t.Errorf("Chess Club seed data wrong: %+v", chess)
		}
	})

	t.Run("leaves populated store untouched", func(t *testing.T) {
		store := &mockActivityStore{activities: map[string]activityDomain.Activity{
			"Custom Club": {Name: "Custom Club", MaxParticipants: 5},
		}}
		if err := orchestrators.ExecuteSeedActivities(ctx, orchestrators.SeedActivitiesDeps{ActivityStore: store}); err != nil {
			t.Fatalf("ExecuteSeedActivities() error: %v", err)
		}
		if len(store.activities) != 1 {
			t.Errorf("expected store untouched, got %d activities", len(store.activities))
		}
	})
}

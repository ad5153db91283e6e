// Package rosterview implements the signup page controller. It loads the
// activity collection through the activities API client, rebuilds the page
// model from scratch on every load, and owns the transient status message
// shown after each action.
package rosterview

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/mergington/activities/internal/adapters/api"
)

// Message kinds
const (
	MessageSuccess = "success"
	MessageError   = "error"
)

// DefaultHideDelay is how long a status message stays visible.
const DefaultHideDelay = 5 * time.Second

// User-facing texts
const (
	LoadFailureText         = "Failed to load activities. Please try again later."
	SignupTransportText     = "Failed to sign up. Please try again."
	UnregisterTransportText = "Failed to unregister. Please try again."
	FallbackErrorText       = "An error occurred"
	EmptyRosterText         = "No participants yet"
)

// Message is the transient status shown after an action. It auto-hides
// five seconds after being shown.
type Message struct {
	Text    string
	Kind    string // success or error
	Visible bool
}

// ParticipantRow is one roster entry with the data its removal control is
// tagged with.
type ParticipantRow struct {
	Activity string
	Email    string
}

// Card is the display model for one activity.
type Card struct {
	Name         string
	Description  string
	Schedule     string
	SpotsLeft    int // may be negative
	Participants []ParticipantRow
}

// Page is a snapshot of everything the roster page renders. A fresh
// snapshot is built per load; nothing is carried over between renders
// except the selector options after a failed load.
type Page struct {
	Cards        []Card
	Options      []string
	LoadFailed   bool
	Message      Message
	FormEmail    string
	FormActivity string
}

// Client is the slice of the activities API the view needs.
type Client interface {
	List(ctx context.Context) (map[string]api.ActivityDetails, error)
	SignUp(ctx context.Context, activityName, email string) (string, error)
	Unregister(ctx context.Context, activityName, email string) (string, error)
}

// Confirmer asks the user to confirm removing email from activityName.
// A nil Confirmer means the confirmation already happened upstream (the
// page's own dialog) and removal proceeds.
type Confirmer func(activityName, email string) bool

// Option configures a View.
type Option func(*View)

// WithHideDelay overrides the message auto-hide delay. Tests use short
// delays; production keeps the default five seconds.
func WithHideDelay(d time.Duration) Option {
	return func(v *View) { v.hideDelay = d }
}

// View is the roster page controller.
//
// Overlapping actions are not serialized: if two mutations race, the
// later-completing reload wins, matching the page's interactive, single-
// user contention profile. The mutex only keeps the snapshot and message
// internally consistent.
type View struct {
	client  Client
	confirm Confirmer

	mu        sync.Mutex
	cards     []Card
	options   []string
	failed    bool
	msg       Message
	msgGen    uint64
	hideTimer *time.Timer
	hideDelay time.Duration

	formEmail    string
	formActivity string
}

// New creates a View backed by client.
// PRE: client is non-nil
// POST: Returns a View with an empty page; call Load to populate it
func New(client Client, confirm Confirmer, opts ...Option) *View {
	v := &View{
		client:    client,
		confirm:   confirm,
		hideDelay: DefaultHideDelay,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Load fetches the full activity collection and rebuilds the card region
// and selector options. On failure the card region becomes the static
// failure notice; the selector options and the message area are left
// untouched. Safe to call repeatedly.
func (v *View) Load(ctx context.Context) {
	activities, err := v.client.List(ctx)
	if err != nil {
		slog.Error("roster_event", "event", "load_failed", "error", err.Error())
		v.mu.Lock()
		v.failed = true
		v.cards = nil
		v.mu.Unlock()
		return
	}

	names := make([]string, 0, len(activities))
	for name := range activities {
		names = append(names, name)
	}
	sort.Strings(names)

	cards := make([]Card, 0, len(names))
	for _, name := range names {
		d := activities[name]
		card := Card{
			Name:        name,
			Description: d.Description,
			Schedule:    d.Schedule,
			SpotsLeft:   d.MaxParticipants - len(d.Participants),
		}
		for _, email := range d.Participants {
			card.Participants = append(card.Participants, ParticipantRow{Activity: name, Email: email})
		}
		cards = append(cards, card)
	}

	v.mu.Lock()
	v.failed = false
	v.cards = cards
	v.options = names
	v.mu.Unlock()
}

// SubmitSignup handles the signup form: it signs email up for
// activityName, shows the outcome message, and on success resets the form
// and reloads. On failure the form fields are retained and nothing is
// reloaded.
func (v *View) SubmitSignup(ctx context.Context, email, activityName string) {
	v.mu.Lock()
	v.formEmail = email
	v.formActivity = activityName
	v.mu.Unlock()

	message, err := v.client.SignUp(ctx, activityName, email)
	if err != nil {
		v.showMessage(mutationErrorText(err, SignupTransportText), MessageError)
		slog.Error("roster_event", "event", "signup_failed", "activity", activityName, "error", err.Error())
		return
	}

	v.mu.Lock()
	v.formEmail = ""
	v.formActivity = ""
	v.mu.Unlock()
	v.showMessage(message, MessageSuccess)
	v.Load(ctx)
}

// RemoveParticipant handles a removal control: it confirms, unregisters
// email from activityName, shows the outcome message, and on success
// reloads. Declining the confirmation issues no request and changes
// nothing.
func (v *View) RemoveParticipant(ctx context.Context, activityName, email string) {
	if v.confirm != nil && !v.confirm(activityName, email) {
		return
	}

	message, err := v.client.Unregister(ctx, activityName, email)
	if err != nil {
		v.showMessage(mutationErrorText(err, UnregisterTransportText), MessageError)
		slog.Error("roster_event", "event", "unregister_failed", "activity", activityName, "error", err.Error())
		return
	}

	v.showMessage(message, MessageSuccess)
	v.Load(ctx)
}

// Page returns the current render snapshot.
func (v *View) Page() Page {
	v.mu.Lock()
	defer v.mu.Unlock()
	page := Page{
		Cards:        append([]Card(nil), v.cards...),
		Options:      append([]string(nil), v.options...),
		LoadFailed:   v.failed,
		Message:      v.msg,
		FormEmail:    v.formEmail,
		FormActivity: v.formActivity,
	}
	return page
}

// showMessage replaces the status message and restarts the auto-hide.
// The view owns a single hide timer: scheduling a new message cancels any
// pending hide first, so an older timer can never hide a newer message.
func (v *View) showMessage(text, kind string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.hideTimer != nil {
		v.hideTimer.Stop()
	}
	v.msgGen++
	gen := v.msgGen
	v.msg = Message{Text: text, Kind: kind, Visible: true}
	v.hideTimer = time.AfterFunc(v.hideDelay, func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		// A newer message may have raced the Stop; leave it alone.
		if v.msgGen == gen {
			v.msg.Visible = false
		}
	})
}

// mutationErrorText picks the text for a failed mutation: the server's
// detail when it supplied one, the generic fallback when it did not, and
// the action-specific transport text otherwise.
func mutationErrorText(err error, transportText string) string {
	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		if statusErr.Detail != "" {
			return statusErr.Detail
		}
		return FallbackErrorText
	}
	return transportText
}

package activity

import (
	"errors"
	"strings"
)

// Domain errors
var (
	ErrEmptyName        = errors.New("activity name cannot be empty")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrInvalidEmail     = errors.New("email must contain @")
	ErrInvalidCapacity  = errors.New("max participants cannot be negative")
	ErrAlreadySignedUp  = errors.New("student already signed up for this activity")
	ErrNotSignedUp      = errors.New("student is not signed up for this activity")
	ErrActivityFull     = errors.New("activity is full")
	ErrActivityNotFound = errors.New("activity not found")
)

// Activity represents a signup-able extracurricular offering.
// It is identified by its name; participants are ordered student emails.
type Activity struct {
	Name            string
	Description     string // Markdown content
	Schedule        string
	MaxParticipants int
	Participants    []string // ordered, first signup first
}

// SpotsLeft returns capacity minus current enrolment.
// The value may be negative when the roster exceeds capacity; callers
// display it as-is rather than clamping.
func (a *Activity) SpotsLeft() int {
	return a.MaxParticipants - len(a.Participants)
}

// IsFull reports whether the activity has no spots left.
func (a *Activity) IsFull() bool {
	return len(a.Participants) >= a.MaxParticipants
}

// HasParticipant reports whether email is already on the roster.
func (a *Activity) HasParticipant(email string) bool {
	for _, p := range a.Participants {
		if p == email {
			return true
		}
	}
	return false
}

// SignUp appends email to the roster.
// PRE: email is a validated student email
// POST: email is the last roster entry, or an error and no change
func (a *Activity) SignUp(email string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if a.HasParticipant(email) {
		return ErrAlreadySignedUp
	}
	if a.IsFull() {
		return ErrActivityFull
	}
	a.Participants = append(a.Participants, email)
	return nil
}

// Unregister removes email from the roster.
// PRE: email is non-empty
// POST: email is absent from the roster and the order of the remaining
// participants is unchanged, or an error and no change
func (a *Activity) Unregister(email string) error {
	for i, p := range a.Participants {
		if p == email {
			a.Participants = append(a.Participants[:i], a.Participants[i+1:]...)
			return nil
		}
	}
	return ErrNotSignedUp
}

// Validate checks if the Activity has valid data.
// PRE: Activity struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Activity) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if a.MaxParticipants < 0 {
		return ErrInvalidCapacity
	}
	for _, p := range a.Participants {
		if err := ValidateEmail(p); err != nil {
			return err
		}
	}
	return nil
}

// ValidateEmail applies the minimal well-formedness check the roster
// requires of a participant identifier.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmptyEmail
	}
	if !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	return nil
}

package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mergington/activities/internal/adapters/email"
	activityDomain "github.com/mergington/activities/internal/domain/activity"
	auditDomain "github.com/mergington/activities/internal/domain/audit"
)

// ActivityStoreForOrchestrator defines the store interface needed by roster orchestrators.
type ActivityStoreForOrchestrator interface {
	GetByName(ctx context.Context, name string) (activityDomain.Activity, error)
	Save(ctx context.Context, a activityDomain.Activity) error
}

// AuditStoreForOrchestrator defines the audit store interface needed by roster orchestrators.
type AuditStoreForOrchestrator interface {
	Save(ctx context.Context, e auditDomain.Event) error
}

// --- Sign up ---

// SignUpInput carries input for the signup orchestrator.
type SignUpInput struct {
	Activity string
	Email    string
}

// SignUpDeps holds dependencies for SignUp.
// AuditStore and EmailSender are optional; nil skips the corresponding step.
type SignUpDeps struct {
	ActivityStore ActivityStoreForOrchestrator
	AuditStore    AuditStoreForOrchestrator
	EmailSender   email.Sender
	EmailFrom     string
	EmailReplyTo  string
	GenerateID    func() string
	Now           func() time.Time
}

// SignUpResult carries the output of a successful signup.
type SignUpResult struct {
	Message string
}

// ExecuteSignUp adds a student to an activity's roster.
// PRE: Activity and Email are non-empty
// POST: Email is the last roster entry and the change is persisted, or a
// domain error (not found, duplicate, full) and no change
func ExecuteSignUp(ctx context.Context, input SignUpInput, deps SignUpDeps) (SignUpResult, error) {
	a, err := deps.ActivityStore.GetByName(ctx, input.Activity)
	if err != nil {
		return SignUpResult{}, err
	}

	if err := a.SignUp(input.Email); err != nil {
		return SignUpResult{}, err
	}

	if err := deps.ActivityStore.Save(ctx, a); err != nil {
		return SignUpResult{}, err
	}

	recordAudit(ctx, deps.AuditStore, deps.GenerateID, deps.Now, auditDomain.ActionSignUp, a.Name, input.Email)

	// Confirmation email is best-effort: a delivery failure never fails the signup.
	if deps.EmailSender != nil {
		req := email.SendRequest{
			To:      []string{input.Email},
			From:    deps.EmailFrom,
			ReplyTo: deps.EmailReplyTo,
			Subject: fmt.Sprintf("You're signed up for %s", a.Name),
			HTML: fmt.Sprintf("<p>Hi,</p><p>You are now signed up for <strong>%s</strong> (%s).</p>",
				a.Name, a.Schedule),
		}
		if _, err := deps.EmailSender.Send(ctx, req); err != nil {
			slog.Warn("signup_confirmation_email_failed", "error", err, "email", input.Email, "activity", a.Name)
		}
	}

	slog.Info("signup_event", "event", "signed_up", "activity", a.Name, "email", input.Email, "spots_left", a.SpotsLeft())
	return SignUpResult{
		Message: fmt.Sprintf("Signed up %s for %s", input.Email, a.Name),
	}, nil
}

// recordAudit appends a roster mutation to the audit trail.
// Best-effort: audit failure is logged, never surfaced.
func recordAudit(ctx context.Context, store AuditStoreForOrchestrator, generateID func() string, now func() time.Time, action auditDomain.Action, activityName, studentEmail string) {
	if store == nil {
		return
	}
	e := auditDomain.NewEvent(generateID(), action, activityName, studentEmail, now())
	if err := store.Save(ctx, e); err != nil {
		slog.Warn("audit_write_failed", "error", err, "action", string(action), "activity", activityName)
	}
}

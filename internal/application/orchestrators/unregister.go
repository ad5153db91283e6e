package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	auditDomain "github.com/mergington/activities/internal/domain/audit"
)

// UnregisterInput carries input for the unregister orchestrator.
type UnregisterInput struct {
	Activity string
	Email    string
}

// UnregisterDeps holds dependencies for Unregister.
// AuditStore is optional; nil skips the audit step.
type UnregisterDeps struct {
	ActivityStore ActivityStoreForOrchestrator
	AuditStore    AuditStoreForOrchestrator
	GenerateID    func() string
	Now           func() time.Time
}

// UnregisterResult carries the output of a successful removal.
type UnregisterResult struct {
	Message string
}

// ExecuteUnregister removes a student from an activity's roster.
// PRE: Activity and Email are non-empty
// POST: Email is absent from the roster and the change is persisted, or a
// domain error (not found, not signed up) and no change
func ExecuteUnregister(ctx context.Context, input UnregisterInput, deps UnregisterDeps) (UnregisterResult, error) {
	a, err := deps.ActivityStore.GetByName(ctx, input.Activity)
	if err != nil {
		return UnregisterResult{}, err
	}

	if err := a.Unregister(input.Email); err != nil {
		return UnregisterResult{}, err
	}

	if err := deps.ActivityStore.Save(ctx, a); err != nil {
		return UnregisterResult{}, err
	}

	recordAudit(ctx, deps.AuditStore, deps.GenerateID, deps.Now, auditDomain.ActionUnregister, a.Name, input.Email)

	slog.Info("signup_event", "event", "unregistered", "activity", a.Name, "email", input.Email, "spots_left", a.SpotsLeft())
	return UnregisterResult{
		Message: fmt.Sprintf("Unregistered %s from %s", input.Email, a.Name),
	}, nil
}

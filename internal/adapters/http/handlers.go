package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"github.com/mergington/activities/internal/application/orchestrators"
	"github.com/mergington/activities/internal/application/projections"
	activityDomain "github.com/mergington/activities/internal/domain/activity"
	"github.com/mergington/activities/internal/rosterview"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

//go:embed templates/*.html
var templateFS embed.FS

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// activityPayload is the wire shape of one activity in the list response.
type activityPayload struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDetail writes the API error shape: {"detail": ...}.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeDetail(w, http.StatusInternalServerError, "Internal server error")
}

// handleListActivities handles GET /activities.
// The response is the full name-to-details mapping and is never cached.
func handleListActivities(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetRoster(r.Context(), projections.GetRosterDeps{
		ActivityStore: stores.ActivityStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	payload := make(map[string]activityPayload, len(result.Activities))
	for _, a := range result.Activities {
		participants := a.Participants
		if participants == nil {
			participants = []string{}
		}
		payload[a.Name] = activityPayload{
			Description:     a.Description,
			Schedule:        a.Schedule,
			MaxParticipants: a.MaxParticipants,
			Participants:    participants,
		}
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, payload)
}

// handleSignup handles POST /activities/{activityName}/signup?email=.
func handleSignup(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "activityName")
	studentEmail := r.URL.Query().Get("email")
	if studentEmail == "" {
		writeDetail(w, http.StatusBadRequest, "Email is required")
		return
	}

	deps := orchestrators.SignUpDeps{
		ActivityStore: stores.ActivityStore,
		AuditStore:    stores.AuditStore,
		EmailSender:   emailSender,
		EmailFrom:     emailFromAddress,
		EmailReplyTo:  emailReplyTo,
		GenerateID:    generateID,
		Now:           timeNow,
	}
	result, err := orchestrators.ExecuteSignUp(r.Context(),
		orchestrators.SignUpInput{Activity: name, Email: studentEmail}, deps)
	if err != nil {
		writeMutationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": result.Message})
}

// handleUnregister handles DELETE /activities/{activityName}/unregister?email=.
func handleUnregister(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "activityName")
	studentEmail := r.URL.Query().Get("email")
	if studentEmail == "" {
		writeDetail(w, http.StatusBadRequest, "Email is required")
		return
	}

	deps := orchestrators.UnregisterDeps{
		ActivityStore: stores.ActivityStore,
		AuditStore:    stores.AuditStore,
		GenerateID:    generateID,
		Now:           timeNow,
	}
	result, err := orchestrators.ExecuteUnregister(r.Context(),
		orchestrators.UnregisterInput{Activity: name, Email: studentEmail}, deps)
	if err != nil {
		writeMutationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": result.Message})
}

// writeMutationError maps domain errors onto the API's status and detail
// contract.
func writeMutationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, activityDomain.ErrActivityNotFound):
		writeDetail(w, http.StatusNotFound, "Activity not found")
	case errors.Is(err, activityDomain.ErrAlreadySignedUp):
		writeDetail(w, http.StatusBadRequest, "Student already signed up for this activity")
	case errors.Is(err, activityDomain.ErrActivityFull):
		writeDetail(w, http.StatusBadRequest, "Activity full")
	case errors.Is(err, activityDomain.ErrNotSignedUp):
		writeDetail(w, http.StatusBadRequest, "Student is not signed up for this activity")
	case errors.Is(err, activityDomain.ErrEmptyEmail), errors.Is(err, activityDomain.ErrInvalidEmail):
		writeDetail(w, http.StatusBadRequest, "Invalid email address")
	default:
		internalError(w, err)
	}
}

// renderTemplate renders a page template inside the layout.
func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	funcMap := template.FuncMap{
		"csrfToken": func() string { return csrf.Token(r) },
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS,
		"templates/layout.html", "templates/"+templateName)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.Execute(w, data); err != nil {
		http.Error(w, "Render error: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// handleRosterPage handles GET /: load the collection and render the page.
func handleRosterPage(w http.ResponseWriter, r *http.Request) {
	view.Load(r.Context())
	page := view.Page()

	renderTemplate(w, r, "roster.html", map[string]any{
		"Page":            page,
		"LoadFailureText": rosterview.LoadFailureText,
		"EmptyRosterText": rosterview.EmptyRosterText,
	})
}

// handleSignupForm handles POST /signup from the signup form and redirects
// back to the roster page, which re-renders from the latest state.
func handleSignupForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	view.SubmitSignup(r.Context(), r.FormValue("email"), r.FormValue("activity"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleUnregisterForm handles POST /unregister from a removal control.
// The browser's own confirm dialog runs before this request is sent.
func handleUnregisterForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	view.RemoveParticipant(r.Context(), r.FormValue("activity"), r.FormValue("email"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

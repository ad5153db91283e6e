package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mergington/activities/internal/adapters/email"
	"github.com/mergington/activities/internal/adapters/http/middleware"
	activityStore "github.com/mergington/activities/internal/adapters/storage/activity"
	auditStore "github.com/mergington/activities/internal/adapters/storage/audit"
	"github.com/mergington/activities/internal/rosterview"
)

// Stores holds all storage dependencies.
type Stores struct {
	ActivityStore activityStore.Store
	AuditStore    auditStore.Store
}

// loadCSRFKey reads the CSRF secret from MERGINGTON_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("MERGINGTON_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("MERGINGTON_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("MERGINGTON_ENV") == "production" {
		log.Fatal("MERGINGTON_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (tokens won't survive restart). Set MERGINGTON_CSRF_KEY for production.")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global roster view instance (set by NewMux)
var view *rosterview.View

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// Email configuration
var emailFromAddress string
var emailReplyTo string

// SetEmailSender sets the global email sender for the application.
func SetEmailSender(sender email.Sender, from, replyTo string) {
	emailSender = sender
	emailFromAddress = from
	emailReplyTo = replyTo
}

// NewMux wires HTTP handlers for the app.
// staticDir serves /static/; v drives the HTML pages.
func NewMux(staticDir string, s *Stores, v *rosterview.View) http.Handler {
	stores = s
	view = v

	adminHash := os.Getenv("MERGINGTON_ADMIN_PASSWORD_HASH")
	adminGate := middleware.AdminAuth("admin", adminHash)

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)

	// JSON API consumed by the roster view (and any other client)
	r.Get("/activities", handleListActivities)
	r.Post("/activities/{activityName}/signup", handleSignup)
	r.With(adminGate).
		Delete("/activities/{activityName}/unregister", handleUnregister)

	// Admin surface
	r.With(adminGate).Get("/admin/audit", handleAdminAudit)

	// Server-rendered roster page
	r.Get("/", handleRosterPage)
	r.Post("/signup", handleSignupForm)
	r.Post("/unregister", handleUnregisterForm)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))

	// CSRF key: 32-byte hex-encoded secret from env var
	csrfKey := loadCSRFKey()

	// Rate limiter: configurable requests per second per IP
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: SecurityHeaders -> CSRF -> RateLimit -> Router
	return middleware.Chain(r,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.RateLimit(limiter),
	)
}

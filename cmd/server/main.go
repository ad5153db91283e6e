package main

import (
	"context"
	"database/sql"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"

	emailPkg "github.com/mergington/activities/internal/adapters/email"
	"github.com/mergington/activities/internal/adapters/api"
	web "github.com/mergington/activities/internal/adapters/http"
	"github.com/mergington/activities/internal/adapters/storage"
	activityStore "github.com/mergington/activities/internal/adapters/storage/activity"
	auditStore "github.com/mergington/activities/internal/adapters/storage/audit"
	"github.com/mergington/activities/internal/application/orchestrators"
	"github.com/mergington/activities/internal/commands"
	"github.com/mergington/activities/internal/rosterview"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "hash-password" {
		commands.HashPassword(os.Args[2:])
		return
	}

	ctx := context.Background()

	stores, cleanup := openStores(ctx)
	defer cleanup()

	// Seed the activity catalogue on first boot
	seedDeps := orchestrators.SeedActivitiesDeps{ActivityStore: stores.ActivityStore}
	if err := orchestrators.ExecuteSeedActivities(ctx, seedDeps); err != nil {
		log.Fatalf("failed to seed activities: %v", err)
	}

	// Configure email sender
	resendKey := os.Getenv("MERGINGTON_RESEND_KEY")
	emailFrom := envOrDefault("MERGINGTON_EMAIL_FROM", "Mergington High School <noreply@mergington.edu>")
	emailReply := envOrDefault("MERGINGTON_REPLY_TO", "activities@mergington.edu")
	if resendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(resendKey, emailFrom), emailFrom, emailReply)
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender(), emailFrom, emailReply)
		if os.Getenv("MERGINGTON_ENV") == "production" {
			log.Println("WARNING: MERGINGTON_RESEND_KEY is not set — email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set MERGINGTON_RESEND_KEY for real delivery)")
		}
	}

	addr := envOrDefault("MERGINGTON_ADDR", ":8080")

	// The roster page talks to the activities API the same way any other
	// client would, over HTTP against this server's own listener.
	apiURL := envOrDefault("MERGINGTON_API_URL", loopbackURL(addr))
	view := rosterview.New(api.NewClient(apiURL), nil)

	staticDir := envOrDefault("MERGINGTON_STATIC_DIR", "web/static")
	mux := web.NewMux(staticDir, stores, view)

	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Mergington activities %s starting on %s (env=%s)", version, addr, envOrDefault("MERGINGTON_ENV", "development"))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
	log.Println("server stopped")
}

// openStores connects storage: PostgreSQL when MERGINGTON_DATABASE_URL is
// set, an embedded SQLite file otherwise.
func openStores(ctx context.Context) (*web.Stores, func()) {
	if databaseURL := os.Getenv("MERGINGTON_DATABASE_URL"); databaseURL != "" {
		pool, err := pgxpool.New(ctx, databaseURL)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		if err := pool.Ping(ctx); err != nil {
			log.Fatalf("postgres unreachable: %v", err)
		}
		if err := activityStore.InitPostgresSchema(ctx, pool); err != nil {
			log.Fatalf("failed to initialize postgres schema: %v", err)
		}
		log.Println("Database initialized (PostgreSQL)")

		return &web.Stores{
			ActivityStore: activityStore.NewPostgresStore(pool),
			AuditStore:    auditStore.NewPostgresStore(pool),
		}, pool.Close
	}

	// SQLite with WAL mode, foreign keys, and busy timeout
	dbPath := envOrDefault("MERGINGTON_DB", "activities.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	log.Println("Database initialized (SQLite)")

	// Wrap with slow-query instrumentation
	timedDB := storage.NewTimedDB(db)

	return &web.Stores{
		ActivityStore: activityStore.NewSQLiteStore(timedDB),
		AuditStore:    auditStore.NewSQLiteStore(timedDB),
	}, func() { db.Close() }
}

// loopbackURL turns a listen address into the base URL the roster page
// uses to reach this server's own API.
func loopbackURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://127.0.0.1:8080"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mergington/activities/internal/adapters/api"
)

// TestClient_List tests list fetching and cache bypass.
func TestClient_List(t *testing.T) {
	t.Run("decodes the mapping and disables caching", func(t *testing.T) {
		var gotCacheControl string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/activities" || r.Method != http.MethodGet {
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
			gotCacheControl = r.Header.Get("Cache-Control")
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"Chess Club":{"description":"d","schedule":"s","max_participants":10,"participants":["a@x.com"]}}`))
		}))
		defer srv.Close()

		client := api.NewClient(srv.URL)
		activities, err := client.List(context.Background())
		if err != nil {
			t.Fatalf("List() error: %v", err)
		}
		if gotCacheControl != "no-cache" {
			t.Errorf("Cache-Control header = %q, want no-cache", gotCacheControl)
		}
		chess, ok := activities["Chess Club"]
		if !ok {
			t.Fatalf("expected Chess Club in response, got %v", activities)
		}
		if chess.MaxParticipants != 10 || len(chess.Participants) != 1 || chess.Participants[0] != "a@x.com" {
			t.Errorf("Chess Club = %+v", chess)
		}
	})

	t.Run("malformed body is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}))
		defer srv.Close()

		if _, err := api.NewClient(srv.URL).List(context.Background()); err == nil {
			t.Error("List() should fail on malformed body")
		}
	})

	t.Run("transport failure is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // refuse connections

		if _, err := api.NewClient(srv.URL).List(context.Background()); err == nil {
			t.Error("List() should fail when the server is unreachable")
		}
	})
}

// TestClient_SignUp tests the signup call.
func TestClient_SignUp(t *testing.T) {
	t.Run("percent-encodes path and query", func(t *testing.T) {
		var gotPath, gotEmail string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.EscapedPath()
			gotEmail = r.URL.Query().Get("email")
			w.Write([]byte(`{"message":"Signed up new+student@mergington.edu for Chess Club"}`))
		}))
		defer srv.Close()

		msg, err := api.NewClient(srv.URL).SignUp(context.Background(), "Chess Club", "new+student@mergington.edu")
		if err != nil {
			t.Fatalf("SignUp() error: %v", err)
		}
		if gotPath != "/activities/Chess%20Club/signup" {
			t.Errorf("path = %q, want /activities/Chess%%20Club/signup", gotPath)
		}
		if gotEmail != "new+student@mergington.edu" {
			t.Errorf("email query = %q", gotEmail)
		}
		if msg == "" {
			t.Error("expected server message")
		}
	})

	t.Run("rejection carries status and detail", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"detail":"Activity full"}`))
		}))
		defer srv.Close()

		_, err := api.NewClient(srv.URL).SignUp(context.Background(), "Chess Club", "a@mergington.edu")
		var statusErr *api.StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("error = %v, want *StatusError", err)
		}
		if statusErr.StatusCode != http.StatusBadRequest || statusErr.Detail != "Activity full" {
			t.Errorf("StatusError = %+v", statusErr)
		}
	})

	t.Run("rejection without detail has empty detail", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := api.NewClient(srv.URL).SignUp(context.Background(), "Chess Club", "a@mergington.edu")
		var statusErr *api.StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("error = %v, want *StatusError", err)
		}
		if statusErr.Detail != "" {
			t.Errorf("Detail = %q, want empty", statusErr.Detail)
		}
	})
}

// TestClient_Unregister tests the removal call.
func TestClient_Unregister(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.EscapedPath()
		w.Write([]byte(`{"message":"Unregistered a@x.com from Drama Club"}`))
	}))
	defer srv.Close()

	msg, err := api.NewClient(srv.URL).Unregister(context.Background(), "Drama Club", "a@x.com")
	if err != nil {
		t.Fatalf("Unregister() error: %v", err)
	}
	if gotMethod != http.MethodDelete {
		t.Errorf("method = %s, want DELETE", gotMethod)
	}
	if gotPath != "/activities/Drama%20Club/unregister" {
		t.Errorf("path = %q", gotPath)
	}
	if msg != "Unregistered a@x.com from Drama Club" {
		t.Errorf("message = %q", msg)
	}
}

// Package testutil provides a fake work order backend for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/blackenaxe/icom/internal/model"
)

// Backend is an in-memory stand-in for the REST backend. Fields may be
// adjusted between requests to simulate failures.
type Backend struct {
	mu sync.Mutex

	// Accepted credentials and the token issued for them.
	Username string
	Password string
	Token    string
	User     model.User

	Notifications []model.Notification
	Orders        []model.WorkOrder

	// FailNotifications makes the feed endpoints return 500.
	FailNotifications bool
	// FailMarkRead makes only the mark-read endpoint return 500.
	FailMarkRead bool
	// FailFeedOnly makes the feed fetch return 500 while mark-read
	// still succeeds.
	FailFeedOnly bool
	// RejectAll makes every authenticated endpoint return 401.
	RejectAll bool

	NotificationCalls int
}

// NewBackend returns a backend with one valid account.
func NewBackend() *Backend {
	return &Backend{
		Username: "alice",
		Password: "secret",
		Token:    "token-alice",
		User:     model.User{ID: 1, Username: "alice", Email: "alice@example.com"},
		Notifications: []model.Notification{
			{ID: 42, Message: "You were assigned a work order", Read: false, UserID: 1, CreatedAt: time.Now().UTC()},
			{ID: 43, Message: "Status changed", Read: true, UserID: 1, CreatedAt: time.Now().UTC()},
		},
	}
}

// Server starts an httptest server for this backend and closes it when
// the test completes.
func (b *Backend) Server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(b.handle))
	t.Cleanup(srv.Close)
	return srv
}

func (b *Backend) handle(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if r.Method == http.MethodPost && r.URL.Path == "/api/login" {
		b.handleLogin(w, r)
		return
	}

	if !b.authorized(r) {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/users/me":
		writeJSON(w, http.StatusOK, b.User)

	case r.Method == http.MethodGet && r.URL.Path == "/api/notifications":
		b.NotificationCalls++
		if b.FailNotifications || b.FailFeedOnly {
			writeDetail(w, http.StatusInternalServerError, "feed unavailable")
			return
		}
		writeJSON(w, http.StatusOK, b.Notifications)

	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/api/notifications/"):
		if b.FailNotifications || b.FailMarkRead {
			writeDetail(w, http.StatusInternalServerError, "feed unavailable")
			return
		}
		id, _ := strconv.Atoi(strings.TrimSuffix(
			strings.TrimPrefix(r.URL.Path, "/api/notifications/"), "/read"))
		for i := range b.Notifications {
			if b.Notifications[i].ID == id {
				b.Notifications[i].Read = true
				writeJSON(w, http.StatusOK, b.Notifications[i])
				return
			}
		}
		writeDetail(w, http.StatusNotFound, "notification not found")

	case r.Method == http.MethodGet && r.URL.Path == "/api/emirler":
		writeJSON(w, http.StatusOK, b.Orders)

	default:
		writeDetail(w, http.StatusNotFound, fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path))
	}
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed form")
		return
	}
	if r.PostFormValue("username") != b.Username || r.PostFormValue("password") != b.Password {
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": b.Token})
}

func (b *Backend) authorized(r *http.Request) bool {
	if b.RejectAll {
		return false
	}
	return r.Header.Get("Authorization") == "Bearer "+b.Token
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

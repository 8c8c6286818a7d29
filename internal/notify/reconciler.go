// Package notify reconciles the polled notification feed against the
// local snapshot. The snapshot is replaced wholesale on every poll;
// there is no client-side merge and no background timer, navigation is
// the sole polling trigger.
package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/blackenaxe/icom/internal/api"
	"github.com/blackenaxe/icom/internal/model"
	"github.com/blackenaxe/icom/internal/session"
)

// Reconciler holds the latest notification snapshot for the logged-in
// user.
type Reconciler struct {
	client  *api.Client
	session *session.Controller
	logger  *slog.Logger

	mu      sync.Mutex
	entries []model.Notification
}

// New creates a reconciler over the given gateway and session.
func New(client *api.Client, sess *session.Controller, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reconciler{
		client:  client,
		session: sess,
		logger:  logger,
	}
}

// Poll fetches the full current feed and replaces the local snapshot.
// While anonymous it is a no-op, not an error: no network call is made
// and the snapshot is left unchanged. Poll failures never touch the
// session; notification unavailability is not an authentication
// rejection.
func (r *Reconciler) Poll(ctx context.Context) ([]model.Notification, error) {
	if !r.session.LoggedIn() {
		return r.Entries(), nil
	}

	entries, err := r.client.Notifications(ctx)
	if err != nil {
		r.logger.Warn("notification poll failed", "error", err)
		return nil, err
	}

	r.mu.Lock()
	r.entries = entries
	r.mu.Unlock()

	return entries, nil
}

// MarkRead asks the backend to flip one entry to read, then re-fetches
// the feed to stay consistent with server truth. The flag is never
// flipped locally: if the write failed, the following poll restores
// what the server actually holds.
func (r *Reconciler) MarkRead(ctx context.Context, id int) error {
	if err := r.client.MarkNotificationRead(ctx, id); err != nil {
		r.logger.Warn("marking notification read failed", "id", id, "error", err)
		// Resynchronize regardless; the server may or may not have
		// applied the write.
		if _, pollErr := r.Poll(ctx); pollErr != nil {
			r.logger.Warn("resync after failed mark-read", "error", pollErr)
		}
		return err
	}

	_, err := r.Poll(ctx)
	return err
}

// Entries returns a copy of the current snapshot.
func (r *Reconciler) Entries() []model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Notification, len(r.entries))
	copy(out, r.entries)
	return out
}

// UnreadCount derives the number of unseen entries from the snapshot.
// It is never stored independently.
func (r *Reconciler) UnreadCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.entries {
		if !n.Read {
			count++
		}
	}
	return count
}

// Reset discards the local snapshot. Called on logout so a following
// login does not briefly show the previous user's feed.
func (r *Reconciler) Reset() {
	r.mu.Lock()
	r.entries = nil
	r.mu.Unlock()
}

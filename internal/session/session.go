// Package session owns the single source of truth for "who is logged
// in". It derives the session from the credential store at startup and
// after every login or logout, and treats authentication rejections
// surfaced by the gateway as equivalent to an explicit logout.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/blackenaxe/icom/internal/api"
	"github.com/blackenaxe/icom/internal/model"
	"github.com/blackenaxe/icom/internal/storage"
)

// Controller manages the current session state.
type Controller struct {
	client *api.Client
	creds  storage.Store
	logger *slog.Logger

	mu   sync.Mutex
	user *model.User
}

// New creates a session controller over the given gateway and
// credential store.
func New(client *api.Client, creds storage.Store, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		client: client,
		creds:  creds,
		logger: logger,
	}
}

// User returns the current user profile, or nil when anonymous.
func (c *Controller) User() *model.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// LoggedIn reports whether a user profile is present.
func (c *Controller) LoggedIn() bool {
	return c.User() != nil
}

// Restore derives the session from the credential store at startup.
// A missing or malformed stored profile is treated as absent, never as
// an error; no network round trip is made. A stored token that has
// already expired is tolerated until the next authenticated request
// fails.
func (c *Controller) Restore() *model.User {
	raw, ok, err := c.creds.Get(storage.KeyUser)
	if err != nil {
		c.logger.Warn("reading stored profile", "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		c.logger.Warn("stored profile malformed, treating as absent", "error", err)
		return nil
	}

	c.logTokenExpiry()

	c.mu.Lock()
	c.user = &user
	c.mu.Unlock()

	c.logger.Info("session restored", "username", user.Username)
	return &user
}

// Login exchanges credentials for a token, fetches the profile with
// that token, and persists both. The two round trips run in sequence;
// if either fails, nothing is persisted and the session is unchanged.
// A token without a profile must never reach the credential store.
func (c *Controller) Login(ctx context.Context, username, password string) (*model.User, error) {
	token, err := c.client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	user, err := c.client.Me(ctx, token)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("encoding profile: %w", err)
	}

	if err := c.creds.Set(storage.KeyToken, token); err != nil {
		return nil, fmt.Errorf("persisting token: %w", err)
	}
	if err := c.creds.Set(storage.KeyUser, string(raw)); err != nil {
		// Keep the invariant: never one entry without the other.
		if rmErr := c.creds.Remove(storage.KeyToken); rmErr != nil {
			c.logger.Error("rolling back token", "error", rmErr)
		}
		return nil, fmt.Errorf("persisting profile: %w", err)
	}

	c.mu.Lock()
	c.user = user
	c.mu.Unlock()

	c.logger.Info("logged in", "username", user.Username)
	return user, nil
}

// Logout clears both credential entries and resets the session to
// anonymous. It is idempotent: logging out while anonymous is a no-op.
func (c *Controller) Logout() error {
	if err := c.creds.Remove(storage.KeyToken); err != nil {
		return fmt.Errorf("clearing token: %w", err)
	}
	if err := c.creds.Remove(storage.KeyUser); err != nil {
		return fmt.Errorf("clearing user: %w", err)
	}

	c.mu.Lock()
	wasLoggedIn := c.user != nil
	c.user = nil
	c.mu.Unlock()

	if wasLoggedIn {
		c.logger.Info("logged out")
	}
	return nil
}

// HandleAuthError resets the session when err is an authentication
// rejection and reports whether it did so. The gateway has already
// cleared the stored credentials at this point; the reset here keeps
// the in-memory session consistent with them.
func (c *Controller) HandleAuthError(err error) bool {
	if err == nil || !api.IsAuthError(err) {
		return false
	}
	if logoutErr := c.Logout(); logoutErr != nil {
		c.logger.Error("forced logout", "error", logoutErr)
	}
	return true
}

// logTokenExpiry inspects the stored token's exp claim without
// verifying the signature. Informational only: expiry is enforced by
// the backend, not the client.
func (c *Controller) logTokenExpiry() {
	raw, ok, err := c.creds.Get(storage.KeyToken)
	if err != nil || !ok {
		return
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return
	}
	if exp.Before(time.Now()) {
		c.logger.Info("stored token already expired", "expired_at", exp.Time)
	}
}

package session_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackenaxe/icom/internal/api"
	"github.com/blackenaxe/icom/internal/session"
	"github.com/blackenaxe/icom/internal/storage"
	"github.com/blackenaxe/icom/tests/testutil"
)

func newController(t *testing.T, backend *testutil.Backend, creds storage.Store) *session.Controller {
	t.Helper()
	srv := backend.Server(t)
	client := api.NewClient(srv.URL, creds, 5*time.Second, nil)
	return session.New(client, creds, nil)
}

func TestLoginPersistsTokenAndProfileTogether(t *testing.T) {
	backend := testutil.NewBackend()
	creds := storage.NewMemoryStore()
	ctrl := newController(t, backend, creds)

	user, err := ctrl.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)
	assert.True(t, ctrl.LoggedIn())

	token, ok, err := creds.Get(storage.KeyToken)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, backend.Token, token)

	_, ok, err = creds.Get(storage.KeyUser)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoginRejectedPersistsNothing(t *testing.T) {
	backend := testutil.NewBackend()
	creds := storage.NewMemoryStore()
	ctrl := newController(t, backend, creds)

	user, err := ctrl.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)
	assert.Nil(t, user)
	assert.EqualError(t, err, "Incorrect username or password")
	assert.True(t, api.IsAuthError(err))
	assert.False(t, ctrl.LoggedIn())

	_, ok, getErr := creds.Get(storage.KeyToken)
	require.NoError(t, getErr)
	assert.False(t, ok)
}

func TestLoginProfileFetchFailurePersistsNothing(t *testing.T) {
	backend := testutil.NewBackend()
	// The token exchange succeeds but the profile fetch is rejected.
	backend.RejectAll = true
	creds := storage.NewMemoryStore()
	ctrl := newController(t, backend, creds)

	user, err := ctrl.Login(context.Background(), "alice", "secret")
	require.Error(t, err)
	assert.Nil(t, user)
	assert.False(t, ctrl.LoggedIn())

	_, ok, getErr := creds.Get(storage.KeyToken)
	require.NoError(t, getErr)
	assert.False(t, ok, "a token without a profile must never be persisted")

	_, ok, getErr = creds.Get(storage.KeyUser)
	require.NoError(t, getErr)
	assert.False(t, ok)
}

func TestRestoreReproducesPersistedSession(t *testing.T) {
	backend := testutil.NewBackend()
	creds := storage.NewMemoryStore()

	first := newController(t, backend, creds)
	_, err := first.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	// A fresh controller over the same store, as after a restart.
	second := session.New(nil, creds, nil)
	user := second.Restore()
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)
	assert.True(t, second.LoggedIn())
}

func TestRestoreWithEmptyStoreIsAnonymous(t *testing.T) {
	ctrl := session.New(nil, storage.NewMemoryStore(), nil)
	assert.Nil(t, ctrl.Restore())
	assert.False(t, ctrl.LoggedIn())
}

func TestRestoreWithMalformedProfileIsAnonymous(t *testing.T) {
	creds := storage.NewMemoryStore()
	require.NoError(t, creds.Set(storage.KeyToken, "tok"))
	require.NoError(t, creds.Set(storage.KeyUser, "{not json"))

	ctrl := session.New(nil, creds, nil)
	assert.Nil(t, ctrl.Restore())
	assert.False(t, ctrl.LoggedIn())
}

func TestLogoutClearsEverythingAndIsIdempotent(t *testing.T) {
	backend := testutil.NewBackend()
	creds := storage.NewMemoryStore()
	ctrl := newController(t, backend, creds)

	_, err := ctrl.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	require.NoError(t, ctrl.Logout())
	assert.False(t, ctrl.LoggedIn())

	_, ok, getErr := creds.Get(storage.KeyToken)
	require.NoError(t, getErr)
	assert.False(t, ok)
	_, ok, getErr = creds.Get(storage.KeyUser)
	require.NoError(t, getErr)
	assert.False(t, ok)

	// Logging out while anonymous is a no-op.
	require.NoError(t, ctrl.Logout())
}

func TestHandleAuthErrorResetsSessionOnlyFor401(t *testing.T) {
	backend := testutil.NewBackend()
	creds := storage.NewMemoryStore()
	ctrl := newController(t, backend, creds)

	_, err := ctrl.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	handled := ctrl.HandleAuthError(&api.DisplayError{
		Status:  http.StatusInternalServerError,
		Message: "database is down",
	})
	assert.False(t, handled)
	assert.True(t, ctrl.LoggedIn(), "a plain failure must not end the session")

	handled = ctrl.HandleAuthError(&api.DisplayError{
		Status:  http.StatusUnauthorized,
		Message: "Could not validate credentials",
	})
	assert.True(t, handled)
	assert.False(t, ctrl.LoggedIn())
}

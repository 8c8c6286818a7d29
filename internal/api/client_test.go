package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackenaxe/icom/internal/api"
	"github.com/blackenaxe/icom/internal/model"
	"github.com/blackenaxe/icom/internal/storage"
)

func newClient(t *testing.T, handler http.HandlerFunc, creds storage.Store) *api.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return api.NewClient(srv.URL, creds, 5*time.Second, nil)
}

func TestBearerAttachedWhenTokenStored(t *testing.T) {
	creds := storage.NewMemoryStore()
	require.NoError(t, creds.Set(storage.KeyToken, "stored-token"))

	var gotAuth string
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}, creds)

	_, err := client.Notifications(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer stored-token", gotAuth)
}

func TestNoBearerWhenAnonymous(t *testing.T) {
	var gotAuth string
	var hasRequestID bool
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		hasRequestID = r.Header.Get("X-Request-ID") != ""
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}, storage.NewMemoryStore())

	_, err := client.Notifications(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
	assert.True(t, hasRequestID)
}

func TestUnauthorizedClearsBothCredentials(t *testing.T) {
	creds := storage.NewMemoryStore()
	require.NoError(t, creds.Set(storage.KeyToken, "stale"))
	require.NoError(t, creds.Set(storage.KeyUser, `{"id":1}`))

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Could not validate credentials"}`))
	}, creds)

	_, err := client.Notifications(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsAuthError(err))
	assert.EqualError(t, err, "Could not validate credentials")

	_, ok, getErr := creds.Get(storage.KeyToken)
	require.NoError(t, getErr)
	assert.False(t, ok, "token must be cleared after a 401")

	_, ok, getErr = creds.Get(storage.KeyUser)
	require.NoError(t, getErr)
	assert.False(t, ok, "user must be cleared after a 401")
}

func TestServerErrorLeavesCredentialsAlone(t *testing.T) {
	creds := storage.NewMemoryStore()
	require.NoError(t, creds.Set(storage.KeyToken, "still-good"))
	require.NoError(t, creds.Set(storage.KeyUser, `{"id":1}`))

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail": "database is down"}`))
	}, creds)

	_, err := client.Notifications(context.Background())
	require.Error(t, err)
	assert.False(t, api.IsAuthError(err))
	assert.EqualError(t, err, "database is down")

	value, ok, getErr := creds.Get(storage.KeyToken)
	require.NoError(t, getErr)
	require.True(t, ok)
	assert.Equal(t, "still-good", value)
}

func TestLoginSendsFormEncodedBody(t *testing.T) {
	var gotContentType, gotUsername, gotPassword string
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseForm())
		gotUsername = r.PostFormValue("username")
		gotPassword = r.PostFormValue("password")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token": "tok"}`))
	}, storage.NewMemoryStore())

	token, err := client.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Equal(t, "alice", gotUsername)
	assert.Equal(t, "secret", gotPassword)
}

func TestMeUsesExplicitTokenOverStoredOne(t *testing.T) {
	creds := storage.NewMemoryStore()
	require.NoError(t, creds.Set(storage.KeyToken, "old-token"))

	var gotAuth string
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 7, "username": "alice", "email": "a@example.com"}`))
	}, creds)

	user, err := client.Me(context.Background(), "fresh-token")
	require.NoError(t, err)
	assert.Equal(t, "Bearer fresh-token", gotAuth)
	assert.Equal(t, &model.User{ID: 7, Username: "alice", Email: "a@example.com"}, user)
}

func TestRequestTimeoutIsBounded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL, storage.NewMemoryStore(), 50*time.Millisecond, nil)

	start := time.Now()
	_, err := client.Notifications(context.Background())
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second, "request must give up at the timeout")
}

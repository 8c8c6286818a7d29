package app

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackenaxe/icom/internal/api"
	"github.com/blackenaxe/icom/internal/notify"
	"github.com/blackenaxe/icom/internal/session"
	"github.com/blackenaxe/icom/internal/storage"
	"github.com/blackenaxe/icom/internal/ui"
	"github.com/blackenaxe/icom/internal/ui/orderform"
	"github.com/blackenaxe/icom/tests/testutil"
)

// newModel builds a root model over a fake backend. With loggedIn the
// credential store is seeded so the startup restore finds a session.
func newModel(t *testing.T, backend *testutil.Backend, loggedIn bool) (Model, *session.Controller) {
	t.Helper()
	srv := backend.Server(t)
	creds := storage.NewMemoryStore()

	if loggedIn {
		raw, err := json.Marshal(backend.User)
		require.NoError(t, err)
		require.NoError(t, creds.Set(storage.KeyToken, backend.Token))
		require.NoError(t, creds.Set(storage.KeyUser, string(raw)))
	}

	client := api.NewClient(srv.URL, creds, 5*time.Second, nil)
	sess := session.New(client, creds, nil)
	rec := notify.New(client, sess, nil)
	return New(client, sess, rec), sess
}

func TestStartupLandsOnDashboardWhenSessionRestored(t *testing.T) {
	m, sess := newModel(t, testutil.NewBackend(), true)
	assert.Equal(t, ui.ScreenDashboard, m.screen)
	assert.True(t, sess.LoggedIn())
}

func TestStartupLandsOnLoginWhenAnonymous(t *testing.T) {
	m, sess := newModel(t, testutil.NewBackend(), false)
	assert.Equal(t, ui.ScreenLogin, m.screen)
	assert.False(t, sess.LoggedIn())
}

func TestNavigateToEditWithoutContextRedirectsToList(t *testing.T) {
	m, _ := newModel(t, testutil.NewBackend(), true)

	m.navigate(ui.ScreenWorkOrderEdit, 0)

	assert.Equal(t, ui.ScreenWorkOrderList, m.screen)
	assert.Equal(t, 0, m.contextID)
	assert.Equal(t, "Select a work order first.", m.toast)
	assert.False(t, m.toastErr)
}

func TestNavigateToDetailWithoutContextRedirectsToList(t *testing.T) {
	m, _ := newModel(t, testutil.NewBackend(), true)

	m.navigate(ui.ScreenWorkOrderDetail, 0)

	assert.Equal(t, ui.ScreenWorkOrderList, m.screen)
	assert.Equal(t, "Select a work order first.", m.toast)
}

func TestNavigateToDetailWithContextSucceeds(t *testing.T) {
	m, _ := newModel(t, testutil.NewBackend(), true)

	m.navigate(ui.ScreenWorkOrderDetail, 7)

	assert.Equal(t, ui.ScreenWorkOrderDetail, m.screen)
	assert.Equal(t, 7, m.contextID)
}

func TestNavigateToLoginClearsContext(t *testing.T) {
	m, _ := newModel(t, testutil.NewBackend(), true)
	m.navigate(ui.ScreenWorkOrderDetail, 7)

	m.navigate(ui.ScreenLogin, 0)

	assert.Equal(t, ui.ScreenLogin, m.screen)
	assert.Equal(t, 0, m.contextID)
}

func TestLogoutReturnsToLoginAndClearsEverything(t *testing.T) {
	backend := testutil.NewBackend()
	m, sess := newModel(t, backend, true)

	_, err := m.reconciler.Poll(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, m.reconciler.Entries())

	m.logout()

	assert.Equal(t, ui.ScreenLogin, m.screen)
	assert.False(t, sess.LoggedIn())
	assert.Empty(t, m.reconciler.Entries())
	assert.Equal(t, "Signed out.", m.toast)

	// A second logout while anonymous must not fail or change state.
	m.logout()
	assert.Equal(t, ui.ScreenLogin, m.screen)
}

func TestAuthRejectionForcesLogout(t *testing.T) {
	m, sess := newModel(t, testutil.NewBackend(), true)
	require.True(t, sess.LoggedIn())

	updated, _ := m.Update(ui.RequestFailedMsg{Err: &api.DisplayError{
		Status:  http.StatusUnauthorized,
		Message: "Could not validate credentials",
	}})

	root := updated.(Model)
	assert.Equal(t, ui.ScreenLogin, root.screen)
	assert.False(t, sess.LoggedIn())
	assert.Equal(t, "Could not validate credentials", root.toast)
	assert.True(t, root.toastErr)
}

func TestPlainFailureKeepsSessionAndScreen(t *testing.T) {
	m, sess := newModel(t, testutil.NewBackend(), true)
	m.navigate(ui.ScreenWorkOrderList, 0)

	updated, _ := m.Update(ui.RequestFailedMsg{Err: &api.DisplayError{
		Status:  http.StatusInternalServerError,
		Message: "database is down",
	}})

	root := updated.(Model)
	assert.Equal(t, ui.ScreenWorkOrderList, root.screen)
	assert.True(t, sess.LoggedIn())
	assert.Equal(t, "database is down", root.toast)
}

func TestCreateFormLoadFailureIsRecoverable(t *testing.T) {
	m, sess := newModel(t, testutil.NewBackend(), true)
	m.navigate(ui.ScreenWorkOrderCreate, 0)

	updated, cmd := m.Update(ui.RequestFailedMsg{Err: &api.DisplayError{
		Status:  http.StatusInternalServerError,
		Message: "database is down",
	}})
	require.NotNil(t, cmd)
	root := updated.(Model)
	assert.Equal(t, "database is down", root.toast)

	// The form view asks to leave because it never got its options;
	// the root routes that back to the list.
	updated, _ = root.Update(orderform.CancelMsg{})
	root = updated.(Model)
	assert.Equal(t, ui.ScreenWorkOrderList, root.screen)
	assert.True(t, sess.LoggedIn())
}

func TestBrokenFeedNeverEndsSession(t *testing.T) {
	m, sess := newModel(t, testutil.NewBackend(), true)

	updated, _ := m.Update(notificationsMsg{err: &api.DisplayError{
		Status:  http.StatusInternalServerError,
		Message: "feed unavailable",
	}})

	root := updated.(Model)
	assert.True(t, sess.LoggedIn())
	assert.Equal(t, ui.ScreenDashboard, root.screen)
	assert.Equal(t, "Notifications are unavailable.", root.toast)
}

func TestToastExpiryIgnoresStaleSequence(t *testing.T) {
	m, _ := newModel(t, testutil.NewBackend(), true)

	m.setToast("first", false)
	staleSeq := m.toastSeq
	m.setToast("second", false)

	updated, _ := m.Update(toastExpiredMsg{seq: staleSeq})
	root := updated.(Model)
	assert.Equal(t, "second", root.toast, "an older expiry must not clear a newer toast")

	updated, _ = root.Update(toastExpiredMsg{seq: root.toastSeq})
	root = updated.(Model)
	assert.Empty(t, root.toast)
}

func TestRegisterKeyOpensRegisterScreenFromLogin(t *testing.T) {
	m, _ := newModel(t, testutil.NewBackend(), false)
	require.Equal(t, ui.ScreenLogin, m.screen)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, cmd)

	root := updated.(Model)
	assert.Equal(t, ui.ScreenRegister, root.screen)
}

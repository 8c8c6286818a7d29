package orderform

import (
	"net/http"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackenaxe/icom/internal/api"
	"github.com/blackenaxe/icom/internal/model"
	"github.com/blackenaxe/icom/internal/ui"
)

func TestLoadFailureBeforeFormBuiltCancelsOut(t *testing.T) {
	m := New(nil, 80, 24)

	// The options fetch failed and no form exists yet; the view must
	// hand control back instead of swallowing everything.
	updated, cmd := m.Update(ui.RequestFailedMsg{Err: &api.DisplayError{
		Status:  http.StatusInternalServerError,
		Message: "database is down",
	}})
	require.NotNil(t, cmd)
	assert.Equal(t, CancelMsg{}, cmd())

	// Esc while still waiting for the options must also back out.
	_, cmd = updated.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, CancelMsg{}, cmd())
}

func TestLoadFailureAfterFormBuiltKeepsForm(t *testing.T) {
	m := New(nil, 80, 24)
	m.StartCreate([]model.User{{ID: 1, Username: "alice"}})

	// A failure reported after the form exists (a rejected save) must
	// not cancel the form; the user corrects and resubmits.
	updated, cmd := m.Update(ui.RequestFailedMsg{Err: &api.DisplayError{
		Status:  http.StatusUnprocessableEntity,
		Message: "field required",
	}})
	assert.Nil(t, cmd)
	assert.NotNil(t, updated.form)
}

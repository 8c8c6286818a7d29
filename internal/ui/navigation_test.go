package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNeedsContext(t *testing.T) {
	withContext := map[Screen]bool{
		ScreenLogin:           false,
		ScreenRegister:        false,
		ScreenDashboard:       false,
		ScreenWorkOrderList:   false,
		ScreenWorkOrderCreate: false,
		ScreenWorkOrderEdit:   true,
		ScreenWorkOrderDetail: true,
	}
	for screen, want := range withContext {
		assert.Equal(t, want, screen.NeedsContext(), screen.String())
	}
}

func TestNavigateCommandCarriesContext(t *testing.T) {
	msg := Navigate(ScreenWorkOrderDetail, 12)()
	assert.Equal(t, NavigateMsg{Screen: ScreenWorkOrderDetail, ContextID: 12}, msg)
}

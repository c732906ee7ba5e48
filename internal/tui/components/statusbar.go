package components

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/pablasso/orca/internal/tui/styles"
)

// StatusBar renders a bottom help bar for the active key bindings.
type StatusBar struct {
	help help.Model
}

// NewStatusBar creates a new StatusBar instance.
func NewStatusBar() StatusBar {
	return StatusBar{help: help.New()}
}

// Render returns the status bar string for the given width and bindings.
// Disabled bindings are left out.
func (s StatusBar) Render(width int, bindings []key.Binding) string {
	s.help.Width = width
	return styles.StatusBarStyle.Width(width).Render(s.help.ShortHelpView(bindings))
}

package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mvberg/serialgw/internal/tui/colors"
)

var (
	// TitleStyle renders the REPL's start-up banner.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Mauve).
			Background(colors.Surface0).
			Padding(0, 1)

	// StatusConnectedStyle renders the acknowledgment of a successful
	// admission.
	StatusConnectedStyle = lipgloss.NewStyle().
				Foreground(colors.Green).
				Bold(true)

	// StatusDisconnectedStyle renders the report of a failed admission.
	StatusDisconnectedStyle = lipgloss.NewStyle().
				Foreground(colors.Red).
				Bold(true)

	// ErrorStyle renders REPL-level failures (unknown command, device
	// not found, port listing failure).
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Red)

	// InfoStyle renders REPL acknowledgments.
	InfoStyle = lipgloss.NewStyle().
			Foreground(colors.Mauve)
)

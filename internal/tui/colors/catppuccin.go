package colors

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha color palette, trimmed to the entries the REPL's
// styles package actually reaches for (title background, status, and
// error/info accents).
var (
	Surface0 = lipgloss.Color("#313244") // Surface colors
	Green    = lipgloss.Color("#a6e3a1") // Green
	Red      = lipgloss.Color("#f38ba8") // Red
	Mauve    = lipgloss.Color("#cba6f7") // Purple
)

package ui

import (
	"os"
	"strings"

	"github.com/adriangreen/tm-list/internal/config"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Fallback colors when the theme leaves one empty
const (
	ColorBorder    = "#555555"
	ColorText      = "#FFFFFF"
	ColorSubtle    = "#666666"
	ColorHighlight = "#00FFFF"
)

// Styles contains all the lipgloss styles for the TUI
type Styles struct {
	// Layout styles
	Header    lipgloss.Style
	StatusBar lipgloss.Style
	Panel     lipgloss.Style

	// Row styles
	Row         lipgloss.Style
	RowCursor   lipgloss.Style
	RowSelected lipgloss.Style
	RowDone     lipgloss.Style
	RowEditing  lipgloss.Style
	Checkbox    lipgloss.Style
	Affordance  lipgloss.Style
	Danger      lipgloss.Style

	// Controls
	Button lipgloss.Style
	Input  lipgloss.Style

	// Help styles
	Help    lipgloss.Style
	HelpKey lipgloss.Style

	// Text styles
	Title   lipgloss.Style
	Subtle  lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
}

// NewStyles builds styles from the configured theme
func NewStyles(theme config.ThemeConfig) *Styles {
	primary := pick(theme.PrimaryColor, "#7d56f4")
	accent := pick(theme.AccentColor, ColorHighlight)
	done := pick(theme.DoneColor, "#32CD32")
	errColor := pick(theme.ErrorColor, "#EF4146")
	subtle := pick(theme.SubtleColor, ColorSubtle)

	return &Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorText)).
			Background(lipgloss.Color(primary)).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(lipgloss.Color(subtle)).
			Padding(0, 1),

		Panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorBorder)).
			Padding(0, 1),

		Row: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorText)),

		RowCursor: lipgloss.NewStyle().
			Foreground(lipgloss.Color(accent)).
			Bold(true),

		RowSelected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorText)).
			Background(lipgloss.Color("#3a2f6b")),

		RowDone: lipgloss.NewStyle().
			Foreground(lipgloss.Color(subtle)).
			Strikethrough(true),

		RowEditing: lipgloss.NewStyle().
			Foreground(lipgloss.Color(accent)).
			Underline(true),

		Checkbox: lipgloss.NewStyle().
			Foreground(lipgloss.Color(done)),

		Affordance: lipgloss.NewStyle().
			Foreground(lipgloss.Color(subtle)),

		Danger: lipgloss.NewStyle().
			Foreground(lipgloss.Color(errColor)).
			Bold(true),

		Button: lipgloss.NewStyle().
			Foreground(lipgloss.Color(accent)).
			Background(lipgloss.Color("#222222")).
			Padding(0, 1),

		Input: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color(primary)),

		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color(subtle)),

		HelpKey: lipgloss.NewStyle().
			Foreground(lipgloss.Color(accent)),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(accent)),

		Subtle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(subtle)),

		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(errColor)).
			Bold(true),

		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color(done)),
	}
}

func pick(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// ApplyColorProfile sets the lipgloss color profile for the interactive TUI.
// NO_COLOR disables colors; otherwise termenv's detection is trusted, bumped
// to 256 colors when TERM says the terminal can do it.
func ApplyColorProfile() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()
	if strings.Contains(strings.ToLower(os.Getenv("TERM")), "256color") && profile == termenv.ANSI {
		profile = termenv.ANSI256
	}
	lipgloss.SetColorProfile(profile)
}

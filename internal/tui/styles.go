// Package tui renders the suggestion popup as a terminal card.
package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the palette the card is drawn with.
type Theme struct {
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Error      lipgloss.Color
	IsDark     bool
}

func LightTheme() Theme {
	return Theme{
		Foreground: lipgloss.Color("#1f2937"),
		Primary:    lipgloss.Color("#4285f4"),
		Muted:      lipgloss.Color("#6b7280"),
		Border:     lipgloss.Color("#d1d5db"),
		Error:      lipgloss.Color("#d93025"),
	}
}

func DarkTheme() Theme {
	return Theme{
		Foreground: lipgloss.Color("#f3f4f6"),
		Primary:    lipgloss.Color("#8ab4f8"),
		Muted:      lipgloss.Color("#9ca3af"),
		Border:     lipgloss.Color("#374151"),
		Error:      lipgloss.Color("#f28b82"),
		IsDark:     true,
	}
}

// DetectTheme picks dark mode from COLORFGBG ("fg;bg"), where background
// indexes 0-6 and 8 are dark.
func DetectTheme() Theme {
	parts := strings.Split(os.Getenv("COLORFGBG"), ";")
	if len(parts) >= 2 {
		if bg, err := strconv.Atoi(parts[len(parts)-1]); err == nil && (bg <= 6 || bg == 8) {
			return DarkTheme()
		}
	}
	return LightTheme()
}

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Theme       Theme
	Card        lipgloss.Style
	Header      lipgloss.Style
	Question    lipgloss.Style
	Answer      lipgloss.Style
	Confidence  lipgloss.Style
	Explanation lipgloss.Style
	Error       lipgloss.Style
	Footer      lipgloss.Style
	Spinner     lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Theme: t,
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1).
			Width(52),
		Header:      lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Question:    lipgloss.NewStyle().Foreground(t.Foreground),
		Answer:      lipgloss.NewStyle().Bold(true).Foreground(t.Foreground),
		Confidence:  lipgloss.NewStyle().Foreground(t.Primary),
		Explanation: lipgloss.NewStyle().Italic(true).Foreground(t.Muted),
		Error:       lipgloss.NewStyle().Foreground(t.Error),
		Footer:      lipgloss.NewStyle().Foreground(t.Muted),
		Spinner:     lipgloss.NewStyle().Foreground(t.Primary),
	}
}

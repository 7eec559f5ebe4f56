package tui

import "github.com/charmbracelet/lipgloss"

// Theme holds every style the calendar view renders with.
type Theme struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Weekday  lipgloss.Style
	Help     lipgloss.Style

	Day      lipgloss.Style
	Outside  lipgloss.Style
	Holiday  lipgloss.Style
	Short    lipgloss.Style
	Today    lipgloss.Style
	Selected lipgloss.Style
	Cursor   lipgloss.Style

	// Toast colours run from transparent to opaque.
	Toast []lipgloss.Color
}

func DefaultTheme() Theme {
	return Theme{
		Title:    lipgloss.NewStyle().Bold(true),
		Subtitle: lipgloss.NewStyle().Faint(true),
		Weekday:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Help:     lipgloss.NewStyle().Faint(true),

		Day:      lipgloss.NewStyle(),
		Outside:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Holiday:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Short:    lipgloss.NewStyle().Foreground(lipgloss.Color("215")),
		Today:    lipgloss.NewStyle().Bold(true).Underline(true),
		Selected: lipgloss.NewStyle().Reverse(true),
		Cursor:   lipgloss.NewStyle().Background(lipgloss.Color("63")).Foreground(lipgloss.Color("230")),

		Toast: []lipgloss.Color{"236", "239", "243", "247", "251", "255"},
	}
}

// toastStyle picks the toast colour for an opacity in [0, 1].
func (t Theme) toastStyle(alpha float64) lipgloss.Style {
	if len(t.Toast) == 0 {
		return lipgloss.NewStyle()
	}
	i := int(alpha*float64(len(t.Toast)-1) + 0.5)
	if i < 0 {
		i = 0
	}
	if i >= len(t.Toast) {
		i = len(t.Toast) - 1
	}
	return lipgloss.NewStyle().Foreground(t.Toast[i])
}

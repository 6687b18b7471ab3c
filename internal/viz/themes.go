package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the live view. Curve tints the potential and particles,
// Good/Warn/Bad colour the run status and the drift sparkline.
type Theme struct {
	Name                  string
	Primary, Curve, Chart lipgloss.Color
	Text, Muted           lipgloss.Color
	Good, Warn, Bad       lipgloss.Color
}

func theme(name string, colors ...string) Theme {
	c := make([]lipgloss.Color, len(colors))
	for i, s := range colors {
		c[i] = lipgloss.Color(s)
	}
	return Theme{Name: name, Primary: c[0], Curve: c[1], Chart: c[2], Text: c[3], Muted: c[4], Good: c[5], Warn: c[6], Bad: c[7]}
}

// Themes in the order the t key cycles through them.
var Themes = []Theme{
	//              primary    curve      chart      text       muted      good       warn       bad
	theme("well", "#7dd3fc", "#38bdf8", "#fbbf24", "#f1f5f9", "#64748b", "#4ade80", "#fb923c", "#f87171"),
	theme("phosphor", "#33ff66", "#22cc55", "#aaffbb", "#33ff66", "#116633", "#aaffbb", "#ffee55", "#ff5544"),
	theme("mono", "#ffffff", "#bbbbbb", "#ffffff", "#eeeeee", "#777777", "#dddddd", "#aaaaaa", "#ffffff"),
}

// GetTheme returns a theme by name, falling back to the first theme.
func GetTheme(name string) Theme {
	return Themes[themeIndex(name)]
}

// NextTheme returns the theme after the named one, wrapping around.
func NextTheme(name string) Theme {
	return Themes[(themeIndex(name)+1)%len(Themes)]
}

func themeIndex(name string) int {
	for i, t := range Themes {
		if t.Name == name {
			return i
		}
	}
	return 0
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

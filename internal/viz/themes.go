package viz

import "github.com/charmbracelet/lipgloss"

// Theme colors the replay view.
type Theme struct {
	Name      string
	Particles lipgloss.Color
	Mesh      lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
}

var Themes = []Theme{
	{
		Name:      "ocean",
		Particles: lipgloss.Color("#00a8cc"),
		Mesh:      lipgloss.Color("#4488aa"),
		Accent:    lipgloss.Color("#ffd700"),
		Text:      lipgloss.Color("#e0f0ff"),
		Muted:     lipgloss.Color("#4488aa"),
	},
	{
		Name:      "retro",
		Particles: lipgloss.Color("#00ff00"),
		Mesh:      lipgloss.Color("#005500"),
		Accent:    lipgloss.Color("#88ff88"),
		Text:      lipgloss.Color("#00ff00"),
		Muted:     lipgloss.Color("#005500"),
	},
	{
		Name:      "minimal",
		Particles: lipgloss.Color("#ffffff"),
		Mesh:      lipgloss.Color("#888888"),
		Accent:    lipgloss.Color("#0088ff"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#888888"),
	},
	{
		Name:      "sunset",
		Particles: lipgloss.Color("#ff6b6b"),
		Mesh:      lipgloss.Color("#8b6b8c"),
		Accent:    lipgloss.Color("#feca57"),
		Text:      lipgloss.Color("#fff5f5"),
		Muted:     lipgloss.Color("#8b6b8c"),
	},
}

// ThemeIndex returns the position of the named theme, or 0.
func ThemeIndex(name string) int {
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

package charts

import "github.com/charmbracelet/lipgloss"

// Theme names accepted by ParseTheme. Anything else is treated as light.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Palette holds the colors a chart is drawn with.
type Palette struct {
	Name     string
	Text     lipgloss.Color
	Grid     lipgloss.Color
	Line     lipgloss.Color
	Fill     lipgloss.Color
	Negative lipgloss.Color
	Segments []lipgloss.Color
}

// LightPalette is used on light backgrounds.
func LightPalette() Palette {
	return Palette{
		Name:     ThemeLight,
		Text:     lipgloss.Color("#101F38"),
		Grid:     lipgloss.Color("#dce0e5"),
		Line:     lipgloss.Color("#36a2eb"),
		Fill:     lipgloss.Color("#9ad0f5"),
		Negative: lipgloss.Color("#e53935"),
		Segments: []lipgloss.Color{"#ff6384", "#ff9f40", "#ffcd56", "#4bc0c0", "#36a2eb"},
	}
}

// DarkPalette is used on dark backgrounds.
func DarkPalette() Palette {
	return Palette{
		Name:     ThemeDark,
		Text:     lipgloss.Color("#f2f2f2"),
		Grid:     lipgloss.Color("#2a3850"),
		Line:     lipgloss.Color("#64d2ff"),
		Fill:     lipgloss.Color("#8BC34A"),
		Negative: lipgloss.Color("#ff6384"),
		Segments: []lipgloss.Color{"#ff6384", "#ff9f40", "#ffcd56", "#64d2ff", "#bf5af2"},
	}
}

// ParseTheme maps an opaque theme attribute to a palette.
func ParseTheme(name string) Palette {
	if name == ThemeDark {
		return DarkPalette()
	}
	return LightPalette()
}

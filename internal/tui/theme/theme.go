package theme

import (
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme defines the color palette for the dashboard
type Theme struct {
	// Base colors
	Base     lipgloss.Color // Background
	Surface0 lipgloss.Color // Panel border
	Surface1 lipgloss.Color // Panel border highlight
	Surface2 lipgloss.Color // Dividers

	// Text colors
	Text    lipgloss.Color // Primary text
	Subtext lipgloss.Color // Secondary text
	Overlay lipgloss.Color // Dimmed text

	// Accents
	Mauve lipgloss.Color
	Peach lipgloss.Color
	Teal  lipgloss.Color

	// Semantic colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Info      lipgloss.Color
}

// Catppuccin Mocha - the default dark theme
var CatppuccinMocha = Theme{
	Base:     lipgloss.Color("#1e1e2e"),
	Surface0: lipgloss.Color("#313244"),
	Surface1: lipgloss.Color("#45475a"),
	Surface2: lipgloss.Color("#585b70"),

	Text:    lipgloss.Color("#cdd6f4"),
	Subtext: lipgloss.Color("#a6adc8"),
	Overlay: lipgloss.Color("#6c7086"),

	Mauve: lipgloss.Color("#cba6f7"),
	Peach: lipgloss.Color("#fab387"),
	Teal:  lipgloss.Color("#94e2d5"),

	Primary:   lipgloss.Color("#89b4fa"), // Blue
	Secondary: lipgloss.Color("#cba6f7"), // Mauve
	Success:   lipgloss.Color("#a6e3a1"), // Green
	Warning:   lipgloss.Color("#f9e2af"), // Yellow
	Error:     lipgloss.Color("#f38ba8"), // Red
	Info:      lipgloss.Color("#89dceb"), // Sky
}

// Catppuccin Latte - light theme for light terminals
var CatppuccinLatte = Theme{
	Base:     lipgloss.Color("#eff1f5"),
	Surface0: lipgloss.Color("#ccd0da"),
	Surface1: lipgloss.Color("#bcc0cc"),
	Surface2: lipgloss.Color("#acb0be"),

	Text:    lipgloss.Color("#4c4f69"),
	Subtext: lipgloss.Color("#6c6f85"),
	Overlay: lipgloss.Color("#9ca0b0"),

	Mauve: lipgloss.Color("#8839ef"),
	Peach: lipgloss.Color("#fe640b"),
	Teal:  lipgloss.Color("#179299"),

	Primary:   lipgloss.Color("#1e66f5"),
	Secondary: lipgloss.Color("#8839ef"),
	Success:   lipgloss.Color("#40a02b"),
	Warning:   lipgloss.Color("#df8e1d"),
	Error:     lipgloss.Color("#d20f39"),
	Info:      lipgloss.Color("#04a5e5"),
}

// Nord - arctic, north-bluish palette
var Nord = Theme{
	Base:     lipgloss.Color("#2e3440"),
	Surface0: lipgloss.Color("#3b4252"),
	Surface1: lipgloss.Color("#434c5e"),
	Surface2: lipgloss.Color("#4c566a"),

	Text:    lipgloss.Color("#eceff4"),
	Subtext: lipgloss.Color("#e5e9f0"),
	Overlay: lipgloss.Color("#d8dee9"),

	Mauve: lipgloss.Color("#b48ead"),
	Peach: lipgloss.Color("#d08770"),
	Teal:  lipgloss.Color("#8fbcbb"),

	Primary:   lipgloss.Color("#88c0d0"),
	Secondary: lipgloss.Color("#81a1c1"),
	Success:   lipgloss.Color("#a3be8c"),
	Warning:   lipgloss.Color("#ebcb8b"),
	Error:     lipgloss.Color("#bf616a"),
	Info:      lipgloss.Color("#5e81ac"),
}

// Plain is a no-color theme. Empty colors mean terminal default.
// Used when NO_COLOR is set.
var Plain = Theme{}

// NoColorEnabled reports whether colors are disabled.
//   - NO_COLOR set to any value disables colors (https://no-color.org)
//   - SHOKODASH_NO_COLOR=1 also disables colors
//   - SHOKODASH_NO_COLOR=0 forces colors on, overriding NO_COLOR
func NoColorEnabled() bool {
	override := strings.TrimSpace(os.Getenv("SHOKODASH_NO_COLOR"))
	switch strings.ToLower(override) {
	case "0", "false", "no", "off":
		return false
	case "":
	default:
		return true
	}
	_, set := os.LookupEnv("NO_COLOR")
	return set
}

// FromName returns the theme with the given name. Unknown names and "auto"
// detect the terminal background.
func FromName(name string) Theme {
	if NoColorEnabled() {
		return Plain
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mocha", "dark":
		return CatppuccinMocha
	case "latte", "light":
		return CatppuccinLatte
	case "nord":
		return Nord
	case "plain", "none", "no-color":
		return Plain
	default:
		return autoTheme()
	}
}

// Resolve picks the theme for the dashboard. SHOKODASH_THEME wins over the
// configured name.
func Resolve(configured string) Theme {
	if env := os.Getenv("SHOKODASH_THEME"); env != "" {
		return FromName(env)
	}
	return FromName(configured)
}

// detectDarkBackground is swapped in tests.
var detectDarkBackground = func() bool {
	output := termenv.NewOutput(os.Stdout)
	return output.HasDarkBackground()
}

var (
	cachedAutoTheme Theme
	autoThemeOnce   sync.Once
)

var resetAutoTheme = func() {
	autoThemeOnce = sync.Once{}
	cachedAutoTheme = Theme{}
}

func autoTheme() Theme {
	autoThemeOnce.Do(func() {
		cachedAutoTheme = CatppuccinMocha

		defer func() {
			if recover() != nil {
				cachedAutoTheme = CatppuccinMocha
			}
		}()

		if !detectDarkBackground() {
			cachedAutoTheme = CatppuccinLatte
		}
	})
	return cachedAutoTheme
}

// Styles contains pre-built lipgloss styles for the dashboard
type Styles struct {
	Header lipgloss.Style
	Title  lipgloss.Style

	Normal lipgloss.Style
	Bold   lipgloss.Style
	Dim    lipgloss.Style

	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	// Panel frames
	Panel        lipgloss.Style
	PanelFocused lipgloss.Style
	PanelEditing lipgloss.Style
	PanelTitle   lipgloss.Style

	Toast lipgloss.Style

	Help      lipgloss.Style
	StatusBar lipgloss.Style
}

// NewStyles creates a Styles instance from a theme
func NewStyles(t Theme) Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary).
			Padding(0, 1),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Text),

		Normal: lipgloss.NewStyle().Foreground(t.Text),
		Bold:   lipgloss.NewStyle().Bold(true).Foreground(t.Text),
		Dim:    lipgloss.NewStyle().Foreground(t.Overlay),

		Success: lipgloss.NewStyle().Bold(true).Foreground(t.Success),
		Warning: lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(t.Error),
		Info:    lipgloss.NewStyle().Bold(true).Foreground(t.Info),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Surface1),
		PanelFocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary),
		PanelEditing: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(t.Peach),
		PanelTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Mauve),

		Toast: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Info).
			Padding(0, 1),

		Help: lipgloss.NewStyle().Foreground(t.Overlay),
		StatusBar: lipgloss.NewStyle().
			Foreground(t.Subtext).
			Background(t.Surface0).
			Padding(0, 1),
	}
}

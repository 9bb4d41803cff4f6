package ui

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme represents the current color scheme
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// currentTheme holds the active theme (set at init)
var currentTheme Theme = ThemeDark

// Dark Theme - Tokyo Night
var darkColors = struct {
	Bg, Text, TextDim, Accent, Yellow, Comment lipgloss.Color
}{
	Bg:      lipgloss.Color("#1a1b26"),
	Text:    lipgloss.Color("#c0caf5"),
	TextDim: lipgloss.Color("#787fa0"),
	Accent:  lipgloss.Color("#7aa2f7"),
	Yellow:  lipgloss.Color("#e0af68"),
	Comment: lipgloss.Color("#787fa0"),
}

// Light Theme - Tokyo Night Light variant
var lightColors = struct {
	Bg, Text, TextDim, Accent, Yellow, Comment lipgloss.Color
}{
	Bg:      lipgloss.Color("#d5d6db"),
	Text:    lipgloss.Color("#343b58"),
	TextDim: lipgloss.Color("#6a6d7c"),
	Accent:  lipgloss.Color("#34548a"),
	Yellow:  lipgloss.Color("#8f5e15"),
	Comment: lipgloss.Color("#6a6d7c"),
}

// Active color variables (set by InitTheme)
var (
	ColorBg      lipgloss.Color
	ColorText    lipgloss.Color
	ColorTextDim lipgloss.Color
	ColorAccent  lipgloss.Color
	ColorYellow  lipgloss.Color
	ColorComment lipgloss.Color
)

// Picker styles. The selected row inverts foreground and background;
// the matched query segment keeps its yellow foreground on either
// background.
var (
	PromptStyle        lipgloss.Style
	RowStyle           lipgloss.Style
	SelectedRowStyle   lipgloss.Style
	MatchStyle         lipgloss.Style
	SelectedMatchStyle lipgloss.Style
)

// themeMu protects global color/style variables during theme switches.
var themeMu sync.Mutex

// InitTheme sets the active color palette based on theme name
// Must be called before any UI rendering
func InitTheme(theme string) {
	themeMu.Lock()
	defer themeMu.Unlock()
	if theme == "light" {
		currentTheme = ThemeLight
		ColorBg = lightColors.Bg
		ColorText = lightColors.Text
		ColorTextDim = lightColors.TextDim
		ColorAccent = lightColors.Accent
		ColorYellow = lightColors.Yellow
		ColorComment = lightColors.Comment
	} else {
		currentTheme = ThemeDark
		ColorBg = darkColors.Bg
		ColorText = darkColors.Text
		ColorTextDim = darkColors.TextDim
		ColorAccent = darkColors.Accent
		ColorYellow = darkColors.Yellow
		ColorComment = darkColors.Comment
	}
	initStyles()
}

// GetCurrentTheme returns the active theme
func GetCurrentTheme() Theme {
	return currentTheme
}

func init() {
	// Default to dark theme at package init
	InitTheme("dark")
}

// initStyles initializes all style variables with current theme colors
// Called by InitTheme after color variables are set
func initStyles() {
	PromptStyle = lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true)

	RowStyle = lipgloss.NewStyle().
		Foreground(ColorText)

	SelectedRowStyle = lipgloss.NewStyle().
		Foreground(ColorBg).
		Background(ColorText)

	MatchStyle = lipgloss.NewStyle().
		Foreground(ColorYellow)

	SelectedMatchStyle = lipgloss.NewStyle().
		Foreground(ColorYellow).
		Background(ColorText)
}

package ui

import (
	"testing"
)

func TestInitThemeLight(t *testing.T) {
	t.Cleanup(func() { InitTheme("dark") })

	InitTheme("light")

	if GetCurrentTheme() != ThemeLight {
		t.Errorf("theme = %q, want %q", GetCurrentTheme(), ThemeLight)
	}
	if ColorBg != lightColors.Bg {
		t.Errorf("ColorBg = %q, want %q", ColorBg, lightColors.Bg)
	}
	if ColorYellow != lightColors.Yellow {
		t.Errorf("ColorYellow = %q, want %q", ColorYellow, lightColors.Yellow)
	}
}

func TestInitThemeUnknownFallsBackToDark(t *testing.T) {
	t.Cleanup(func() { InitTheme("dark") })

	InitTheme("solarized")

	if GetCurrentTheme() != ThemeDark {
		t.Errorf("theme = %q, want %q", GetCurrentTheme(), ThemeDark)
	}
	if ColorText != darkColors.Text {
		t.Errorf("ColorText = %q, want %q", ColorText, darkColors.Text)
	}
}

func TestStylesTrackTheme(t *testing.T) {
	t.Cleanup(func() { InitTheme("dark") })

	InitTheme("light")

	if got := MatchStyle.GetForeground(); got != lightColors.Yellow {
		t.Errorf("match foreground = %v, want %v", got, lightColors.Yellow)
	}
	if got := SelectedRowStyle.GetBackground(); got != lightColors.Text {
		t.Errorf("selected background = %v, want %v", got, lightColors.Text)
	}
}

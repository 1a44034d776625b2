package theme

import "testing"

func withDetector(t *testing.T, detector func() bool) {
	original := detectDarkBackground
	detectDarkBackground = detector
	resetAutoTheme()
	t.Cleanup(func() {
		detectDarkBackground = original
		resetAutoTheme()
	})
}

func clearColorEnv(t *testing.T) {
	t.Setenv("SHOKODASH_NO_COLOR", "0")
	t.Setenv("SHOKODASH_THEME", "")
}

func TestAutoUsesLightThemeOnLightBackground(t *testing.T) {
	clearColorEnv(t)
	withDetector(t, func() bool { return false })

	if got := FromName("auto"); got.Base != CatppuccinLatte.Base {
		t.Fatalf("expected Latte for light background, got base %s", got.Base)
	}
}

func TestAutoUsesDarkThemeOnDarkBackground(t *testing.T) {
	clearColorEnv(t)
	withDetector(t, func() bool { return true })

	if got := FromName(""); got.Base != CatppuccinMocha.Base {
		t.Fatalf("expected Mocha for dark background, got base %s", got.Base)
	}
}

func TestFromNameExplicit(t *testing.T) {
	clearColorEnv(t)
	withDetector(t, func() bool { return true })

	tests := []struct {
		name string
		want Theme
	}{
		{"mocha", CatppuccinMocha},
		{"latte", CatppuccinLatte},
		{"LIGHT", CatppuccinLatte},
		{"nord", Nord},
		{"plain", Plain},
		{"bogus", CatppuccinMocha},
	}
	for _, tt := range tests {
		if got := FromName(tt.name); got != tt.want {
			t.Errorf("FromName(%q) = base %q, want base %q", tt.name, got.Base, tt.want.Base)
		}
	}
}

func TestResolveEnvOverridesConfig(t *testing.T) {
	clearColorEnv(t)
	t.Setenv("SHOKODASH_THEME", "nord")
	withDetector(t, func() bool { return true })

	if got := Resolve("latte"); got != Nord {
		t.Fatalf("expected Nord from SHOKODASH_THEME, got base %s", got.Base)
	}
}

func TestNoColor(t *testing.T) {
	clearColorEnv(t)
	t.Setenv("SHOKODASH_NO_COLOR", "")
	t.Setenv("NO_COLOR", "1")

	if !NoColorEnabled() {
		t.Fatal("NO_COLOR should disable colors")
	}
	if got := FromName("mocha"); got != Plain {
		t.Fatalf("expected Plain with NO_COLOR, got base %s", got.Base)
	}

	t.Setenv("SHOKODASH_NO_COLOR", "0")
	if NoColorEnabled() {
		t.Fatal("SHOKODASH_NO_COLOR=0 should force colors on")
	}
}

func TestNewStyles(t *testing.T) {
	s := NewStyles(CatppuccinMocha)
	if s.PanelFocused.GetBorderTopForeground() != CatppuccinMocha.Primary {
		t.Errorf("focused border = %v, want primary", s.PanelFocused.GetBorderTopForeground())
	}
	if s.PanelEditing.GetBorderTopForeground() != CatppuccinMocha.Peach {
		t.Errorf("editing border = %v, want peach", s.PanelEditing.GetBorderTopForeground())
	}
	if !s.Title.GetBold() {
		t.Error("title should be bold")
	}
}

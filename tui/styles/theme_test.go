package styles

import (
	"testing"
)

func TestGetThemeByName(t *testing.T) {
	theme := GetThemeByName("solarized-dark")
	if theme == nil {
		t.Fatal("GetThemeByName('solarized-dark') returned nil")
	}
	if theme.Name != "Solarized Dark" {
		t.Errorf("expected name 'Solarized Dark', got %q", theme.Name)
	}
}

func TestGetThemeByNameMissing(t *testing.T) {
	theme := GetThemeByName("nonexistent")
	if theme != nil {
		t.Error("expected nil for nonexistent theme")
	}
}

func TestResolveFallsBack(t *testing.T) {
	if got := Resolve("nonexistent").Name; got != "Solarized Dark" {
		t.Errorf("expected fallback to Solarized Dark, got %q", got)
	}
	if got := Resolve("nord").Name; got != "Nord" {
		t.Errorf("expected Nord, got %q", got)
	}
}

func TestListThemes(t *testing.T) {
	themes := ListThemes()
	if len(themes) < 20 {
		t.Errorf("expected at least 20 themes, got %d", len(themes))
	}
	for i := 1; i < len(themes); i++ {
		if themes[i-1] >= themes[i] {
			t.Fatalf("themes not sorted at %d: %q >= %q", i, themes[i-1], themes[i])
		}
	}
}

func TestThemesHaveAllColors(t *testing.T) {
	for slug, th := range Themes {
		colors := []string{
			string(th.Base00), string(th.Base05), string(th.Base08), string(th.Base0A),
			string(th.Base0B), string(th.Base0D), string(th.Base0F),
		}
		for _, c := range colors {
			if len(c) != 7 || c[0] != '#' {
				t.Errorf("%s: bad color %q", slug, c)
			}
		}
	}
}

func TestNextWraps(t *testing.T) {
	slugs := ListThemes()
	if got := Next(slugs[len(slugs)-1]); got != slugs[0] {
		t.Errorf("expected wrap to %q, got %q", slugs[0], got)
	}
	if got := Next("nonexistent"); got != DefaultSlug {
		t.Errorf("expected default for unknown slug, got %q", got)
	}
}

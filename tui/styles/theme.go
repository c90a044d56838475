package styles

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// DefaultSlug names the theme used when none is configured.
const DefaultSlug = "solarized-dark"

// Theme represents a Base16 color scheme.
type Theme struct {
	Name   string
	Base00 lipgloss.Color // Background
	Base01 lipgloss.Color // Lighter background
	Base02 lipgloss.Color // Selection
	Base03 lipgloss.Color // Comments / dim
	Base04 lipgloss.Color // Light foreground
	Base05 lipgloss.Color // Foreground
	Base06 lipgloss.Color // Light foreground
	Base07 lipgloss.Color // Light background
	Base08 lipgloss.Color // Red
	Base09 lipgloss.Color // Orange
	Base0A lipgloss.Color // Yellow
	Base0B lipgloss.Color // Green
	Base0C lipgloss.Color // Cyan
	Base0D lipgloss.Color // Blue
	Base0E lipgloss.Color // Magenta
	Base0F lipgloss.Color // Brown
}

var sortedSlugs []string

func init() {
	sortedSlugs = make([]string, 0, len(Themes))
	for slug := range Themes {
		sortedSlugs = append(sortedSlugs, slug)
	}
	sort.Strings(sortedSlugs)
}

// GetThemeByName returns a theme by its slug, or nil if not found.
func GetThemeByName(name string) *Theme {
	t, ok := Themes[name]
	if !ok {
		return nil
	}
	return &t
}

// Resolve returns the theme for slug, falling back to the default theme.
func Resolve(slug string) Theme {
	if t := GetThemeByName(slug); t != nil {
		return *t
	}
	return Themes[DefaultSlug]
}

// ListThemes returns sorted theme slugs.
func ListThemes() []string {
	return sortedSlugs
}

// Next returns the slug after slug in sorted order, wrapping around.
func Next(slug string) string {
	for i, s := range sortedSlugs {
		if s == slug {
			return sortedSlugs[(i+1)%len(sortedSlugs)]
		}
	}
	return DefaultSlug
}

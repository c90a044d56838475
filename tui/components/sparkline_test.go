package components

import (
	"strings"
	"testing"
)

func TestSparkline(t *testing.T) {
	data := []float64{0, 25, 50, 75, 100, 50, 25, 0}
	result := Sparkline(data, 8, 0)
	if len([]rune(result)) != 8 {
		t.Errorf("expected 8 chars, got %d", len([]rune(result)))
	}
}

func TestSparklineEmpty(t *testing.T) {
	result := Sparkline(nil, 8, 100)
	if result != "        " {
		t.Errorf("expected 8 spaces for empty data, got %q", result)
	}
}

func TestSparklineSingleValue(t *testing.T) {
	result := Sparkline([]float64{50}, 4, 0)
	if len([]rune(result)) != 4 {
		t.Errorf("expected 4 chars, got %d", len([]rune(result)))
	}
	if !strings.HasPrefix(result, "   ") {
		t.Errorf("expected left padding, got %q", result)
	}
}

func TestSparklineFixedCeiling(t *testing.T) {
	result := []rune(Sparkline([]float64{0, 100}, 2, 100))
	if result[0] != '▁' || result[1] != '█' {
		t.Errorf("expected lowest and highest blocks, got %q", string(result))
	}

	// With a ceiling, equal values do not stretch to the top.
	low := []rune(Sparkline([]float64{10, 10}, 2, 100))
	if low[0] != '▁' {
		t.Errorf("expected low block for 10%%, got %q", string(low))
	}
}

func TestSparklineKeepsNewest(t *testing.T) {
	result := []rune(Sparkline([]float64{100, 100, 0}, 1, 100))
	if len(result) != 1 || result[0] != '▁' {
		t.Errorf("expected only the newest value, got %q", string(result))
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		v        float64
		expected string
	}{
		{0, "0.0%"},
		{42.25, "42.2%"},
		{99.94, "99.9%"},
		{99.96, "100%"},
		{100, "100%"},
	}
	for _, tt := range tests {
		got := FormatPercent(tt.v)
		if got != tt.expected {
			t.Errorf("FormatPercent(%f) = %q, want %q", tt.v, got, tt.expected)
		}
	}
}

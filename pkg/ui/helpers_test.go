package ui

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"Rumi", 18, "Rumi"},
		{"Jalal al-Din Rumi", 10, "Jalal al-…"},
		{"Ghazali", 0, ""},
		{"", 5, ""},
		{"ab", 1, "…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 5); got != "ab   " {
		t.Errorf("padRight = %q", got)
	}
	if got := padRight("abcdef", 3); got != "abcdef" {
		t.Errorf("padRight should not truncate, got %q", got)
	}
}

func TestFormatEra(t *testing.T) {
	tests := []struct {
		era, born, died string
		want            string
	}{
		{"1207–1273 CE", "1207", "1273", "1207–1273 CE"},
		{"", "1207", "1273", "1207 – 1273"},
		{"", "1207", "", "b. 1207"},
		{"", "", "1273", "d. 1273"},
		{"", "", "", ""},
	}
	for _, tt := range tests {
		if got := formatEra(tt.era, tt.born, tt.died); got != tt.want {
			t.Errorf("formatEra(%q, %q, %q) = %q, want %q", tt.era, tt.born, tt.died, got, tt.want)
		}
	}
}

func TestFormatRelation(t *testing.T) {
	if got := formatRelation("rumi", "rumi", "masnavi", "wrote"); got != "wrote → masnavi" {
		t.Errorf("outgoing = %q", got)
	}
	if got := formatRelation("rumi", "shams_tabrizi", "rumi", "influenced"); got != "influenced ← shams_tabrizi" {
		t.Errorf("incoming = %q", got)
	}
	if got := formatRelation("fiqh", "fiqh", "medina", "concept_in"); got != "concept in → medina" {
		t.Errorf("underscore label = %q", got)
	}
}

package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// truncateRunesHelper truncates a string to max visual width (cells),
// adding suffix if needed. Uses go-runewidth so wide characters and the
// Arabic honorifics in entity names measure correctly.
func truncateRunesHelper(s string, maxWidth int, suffix string) string {
	if maxWidth <= 0 {
		return ""
	}

	width := runewidth.StringWidth(s)
	if width <= maxWidth {
		return s
	}

	suffixWidth := runewidth.StringWidth(suffix)
	if suffixWidth > maxWidth {
		return runewidth.Truncate(suffix, maxWidth, "")
	}

	return runewidth.Truncate(s, maxWidth-suffixWidth, "") + suffix
}

// truncate truncates string s to maxWidth cells with an ellipsis.
func truncate(s string, maxWidth int) string {
	return truncateRunesHelper(s, maxWidth, "…")
}

// padRight pads string s with spaces on the right to length width.
func padRight(s string, width int) string {
	runeCount := utf8.RuneCountInString(s)
	if runeCount >= width {
		return s
	}
	return s + strings.Repeat(" ", width-runeCount)
}

// formatEra renders the lifespan line for an entity header. Era wins when
// set; otherwise born/died are combined as available.
func formatEra(era, born, died string) string {
	if era != "" {
		return era
	}
	switch {
	case born != "" && died != "":
		return fmt.Sprintf("%s – %s", born, died)
	case born != "":
		return fmt.Sprintf("b. %s", born)
	case died != "":
		return fmt.Sprintf("d. %s", died)
	default:
		return ""
	}
}

// formatRelation renders a relation label for the connections list,
// directional from the perspective of viewing entity from.
func formatRelation(from, source, target string, typ string) string {
	label := strings.ReplaceAll(typ, "_", " ")
	if source == from {
		return fmt.Sprintf("%s → %s", label, target)
	}
	return fmt.Sprintf("%s ← %s", label, source)
}

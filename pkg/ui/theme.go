package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/silsila/pkg/model"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeFg returns the light/dark hex pair for ANSI256 and TrueColor
// terminals and the given basic ANSI color for anything weaker, where
// lipgloss's hex down-conversion can land on unreadable palette slots.
func ThemeFg(light, dark string, fallback lipgloss.ANSIColor) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return fallback
	}
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

type Theme struct {
	Renderer *lipgloss.Renderer

	// Colors
	Primary   lipgloss.TerminalColor
	Secondary lipgloss.TerminalColor
	Subtext   lipgloss.TerminalColor

	// Categories
	Scholar  lipgloss.TerminalColor
	Text     lipgloss.TerminalColor
	Concept  lipgloss.TerminalColor
	Practice lipgloss.TerminalColor
	Place    lipgloss.TerminalColor
	Event    lipgloss.TerminalColor

	// UI Elements
	Border    lipgloss.TerminalColor
	Highlight lipgloss.TerminalColor
	Muted     lipgloss.TerminalColor

	// Styles
	Base   lipgloss.Style
	Header lipgloss.Style

	// Pre-computed node styles, created once at startup instead of
	// per-frame for every visible node.
	NodeIdle    lipgloss.Style
	NodeHover   lipgloss.Style
	NodePinned  lipgloss.Style
	NodeDragged lipgloss.Style
	NodeDimmed  lipgloss.Style
	Edge        lipgloss.Style
	EdgeLit     lipgloss.Style
	MutedText   lipgloss.Style
	StatusText  lipgloss.Style
	PrimaryBold lipgloss.Style
}

// DefaultTheme returns the standard Dracula-inspired theme, degraded per
// the detected color profile.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   ThemeFg("#6B47D9", "#BD93F9", 5), // Purple
		Secondary: ThemeFg("#555555", "#6272A4", 8), // Gray
		Subtext:   ThemeFg("#666666", "#BFBFBF", 7), // Dim

		Scholar:  ThemeFg("#007700", "#50FA7B", 2), // Green
		Text:     ThemeFg("#006080", "#8BE9FD", 6), // Cyan
		Concept:  ThemeFg("#6B47D9", "#BD93F9", 5), // Purple
		Practice: ThemeFg("#B06800", "#FFB86C", 3), // Orange
		Place:    ThemeFg("#0066CC", "#6699FF", 4), // Blue
		Event:    ThemeFg("#CC0000", "#FF5555", 1), // Red

		Border:    ThemeFg("#AAAAAA", "#44475A", 8),
		Highlight: ThemeFg("#E0E0E0", "#44475A", 8),
		Muted:     ThemeFg("#555555", "#6272A4", 8),
	}

	t.Base = r.NewStyle().Foreground(ThemeFg("#000000", "#F8F8F2", 7))

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(ThemeFg("#FFFFFF", "#282A36", 0)).
		Bold(true).
		Padding(0, 1)

	t.NodeIdle = t.Base
	t.NodeHover = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.NodePinned = r.NewStyle().Foreground(t.Primary).Bold(true).Underline(true)
	t.NodeDragged = r.NewStyle().Foreground(t.Primary).Bold(true).Reverse(true)
	t.NodeDimmed = r.NewStyle().Foreground(t.Muted)
	t.Edge = r.NewStyle().Foreground(t.Border)
	t.EdgeLit = r.NewStyle().Foreground(t.Secondary)
	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.StatusText = r.NewStyle().Foreground(t.Subtext)
	t.PrimaryBold = r.NewStyle().Foreground(t.Primary).Bold(true)

	return t
}

// CategoryColor maps an entity category to its theme color.
func (t Theme) CategoryColor(c model.Category) lipgloss.TerminalColor {
	switch c {
	case model.CategoryScholar:
		return t.Scholar
	case model.CategoryText:
		return t.Text
	case model.CategoryConcept:
		return t.Concept
	case model.CategoryPractice:
		return t.Practice
	case model.CategoryPlace:
		return t.Place
	case model.CategoryEvent:
		return t.Event
	default:
		return t.Subtext
	}
}

// CategoryGlyph returns the one-cell marker drawn for an entity node plus
// its color. All glyphs are exactly 1 cell wide for alignment.
func (t Theme) CategoryGlyph(c model.Category) (string, lipgloss.TerminalColor) {
	switch c {
	case model.CategoryScholar:
		return "●", t.Scholar
	case model.CategoryText:
		return "▣", t.Text
	case model.CategoryConcept:
		return "◆", t.Concept
	case model.CategoryPractice:
		return "▲", t.Practice
	case model.CategoryPlace:
		return "◎", t.Place
	case model.CategoryEvent:
		return "✦", t.Event
	default:
		return "·", t.Subtext
	}
}

// TestTheme returns a theme suitable for use in tests (stdout renderer).
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}

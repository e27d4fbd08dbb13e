package ui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/silsila/pkg/model"
)

const maxSearchResults = 8

// SearchOverlay is the incremental entity finder opened with "/". Typing
// filters by name and ID substring; enter jumps the view to the selected
// entity once the layout is calm.
type SearchOverlay struct {
	theme    Theme
	input    textinput.Model
	entities []model.Entity

	results  []string // entity IDs, ranked
	selected int
	active   bool
}

// NewSearchOverlay builds the overlay over a fixed entity list. The list
// is replaced on dataset reload via SetEntities.
func NewSearchOverlay(theme Theme, entities []model.Entity) *SearchOverlay {
	ti := textinput.New()
	ti.Placeholder = "search entities"
	ti.Prompt = "/ "
	ti.CharLimit = 64
	return &SearchOverlay{theme: theme, input: ti, entities: entities}
}

// SetEntities swaps the searchable list, used after a dataset reload.
func (s *SearchOverlay) SetEntities(entities []model.Entity) {
	s.entities = entities
	s.refilter()
}

// Active reports whether the overlay is open and capturing keys.
func (s *SearchOverlay) Active() bool { return s.active }

// Open activates the overlay with an empty query.
func (s *SearchOverlay) Open() tea.Cmd {
	s.active = true
	s.input.SetValue("")
	s.selected = 0
	s.refilter()
	return s.input.Focus()
}

// Close deactivates the overlay.
func (s *SearchOverlay) Close() {
	s.active = false
	s.input.Blur()
}

// Update feeds a key event to the overlay. It returns the chosen entity
// ID when the user confirmed a selection, otherwise "".
func (s *SearchOverlay) Update(msg tea.KeyMsg) (string, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.Close()
		return "", nil
	case "enter":
		if len(s.results) == 0 {
			s.Close()
			return "", nil
		}
		chosen := s.results[s.selected]
		s.Close()
		return chosen, nil
	case "up", "ctrl+p":
		if s.selected > 0 {
			s.selected--
		}
		return "", nil
	case "down", "ctrl+n":
		if s.selected < len(s.results)-1 {
			s.selected++
		}
		return "", nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	s.selected = 0
	s.refilter()
	return "", cmd
}

// refilter ranks entities for the current query: name-prefix matches
// first, then name substrings, then ID substrings.
func (s *SearchOverlay) refilter() {
	q := strings.ToLower(strings.TrimSpace(s.input.Value()))
	s.results = s.results[:0]
	if q == "" {
		return
	}

	type scored struct {
		id    string
		score int
		name  string
	}
	var hits []scored
	for _, e := range s.entities {
		name := strings.ToLower(e.Name)
		switch {
		case strings.HasPrefix(name, q):
			hits = append(hits, scored{e.ID, 0, name})
		case strings.Contains(name, q):
			hits = append(hits, scored{e.ID, 1, name})
		case strings.Contains(strings.ToLower(e.ID), q):
			hits = append(hits, scored{e.ID, 2, name})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score < hits[j].score
		}
		return hits[i].name < hits[j].name
	})
	for i, h := range hits {
		if i == maxSearchResults {
			break
		}
		s.results = append(s.results, h.id)
	}
	if s.selected >= len(s.results) {
		s.selected = 0
	}
}

// View renders the overlay box.
func (s *SearchOverlay) View(entities map[string]*model.Entity) string {
	var b strings.Builder
	b.WriteString(s.input.View())
	b.WriteByte('\n')
	for i, id := range s.results {
		e, ok := entities[id]
		if !ok {
			continue
		}
		line := truncate(e.Name, 30) + " " + string(e.Category)
		if i == s.selected {
			b.WriteString(s.theme.PrimaryBold.Background(s.theme.Highlight).Render("> " + line))
		} else {
			b.WriteString(s.theme.StatusText.Render("  " + line))
		}
		b.WriteByte('\n')
	}
	if len(s.results) == 0 && s.input.Value() != "" {
		b.WriteString(s.theme.MutedText.Render("  no matches"))
	}
	return s.theme.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.theme.Border).
		Padding(0, 1).
		Render(b.String())
}

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"

	"github.com/vanderheijden86/silsila/pkg/graph"
	"github.com/vanderheijden86/silsila/pkg/model"
	"github.com/vanderheijden86/silsila/pkg/store"
)

// DetailPanel is the sidebar showing the focused entity: name, era,
// rendered markdown description, quotes, and its connections. Hover
// populates it transiently; a click pins it until unpinned.
type DetailPanel struct {
	theme    Theme
	viewport viewport.Model
	renderer *glamour.TermRenderer

	entityID string
	pinned   bool
	width    int
}

// NewDetailPanel builds the panel. Glamour renderer construction can fail
// on odd style configurations; the panel degrades to raw markdown then.
func NewDetailPanel(theme Theme, width, height int) *DetailPanel {
	p := &DetailPanel{
		theme:    theme,
		viewport: viewport.New(width, height),
		width:    width,
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-2),
	)
	if err == nil {
		p.renderer = r
	}
	return p
}

// SetSize resizes the panel and its viewport.
func (p *DetailPanel) SetSize(width, height int) {
	p.width = width
	p.viewport.Width = width
	p.viewport.Height = height
	if r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-2),
	); err == nil {
		p.renderer = r
	}
}

// EntityID returns the entity currently shown, or "".
func (p *DetailPanel) EntityID() string { return p.entityID }

// Pinned reports whether the shown entity is click-pinned.
func (p *DetailPanel) Pinned() bool { return p.pinned }

// ShowEntity fills the panel for one entity. The pinned flag selects the
// header badge; hover and click share this one entry point so the two
// paths cannot drift apart.
func (p *DetailPanel) ShowEntity(e *model.Entity, idx *graph.Index, entities map[string]*model.Entity, relations []model.Relation, pinned bool) {
	if e == nil {
		p.ShowDefault()
		return
	}
	p.entityID = e.ID
	p.pinned = pinned

	var b strings.Builder

	badge := "hover"
	if pinned {
		badge = "pinned"
	}
	header := p.theme.Header.Render(truncate(e.Name, p.width-10)) +
		" " + p.theme.MutedText.Render(badge)
	b.WriteString(header)
	b.WriteByte('\n')

	catColor := p.theme.CategoryColor(e.Category)
	b.WriteString(p.theme.Renderer.NewStyle().Foreground(catColor).Render(string(e.Category)))
	if era := formatEra(e.Era, e.Born, e.Died); era != "" {
		b.WriteString(p.theme.MutedText.Render("  " + era))
	}
	b.WriteString("\n\n")

	if e.Description != "" {
		b.WriteString(p.renderMarkdown(e.Description))
		b.WriteByte('\n')
	}

	if len(e.Quotes) > 0 {
		b.WriteString(p.theme.PrimaryBold.Render("Quotes"))
		b.WriteByte('\n')
		for _, q := range e.Quotes {
			b.WriteString(p.theme.StatusText.Render("“" + q + "”"))
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}

	if len(e.Facts) > 0 {
		for _, f := range e.Facts {
			b.WriteString("• " + f)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}

	b.WriteString(p.theme.PrimaryBold.Render(fmt.Sprintf("Connections (%d)", idx.Degree(e.ID))))
	b.WriteByte('\n')
	for _, rel := range relations {
		if rel.Source != e.ID && rel.Target != e.ID {
			continue
		}
		from := relName(entities, e.ID)
		b.WriteString("  " + truncate(formatRelation(from, relName(entities, rel.Source), relName(entities, rel.Target), string(rel.Type)), p.width-4))
		b.WriteByte('\n')
	}

	p.viewport.SetContent(b.String())
	p.viewport.GotoTop()
}

func relName(entities map[string]*model.Entity, id string) string {
	if e, ok := entities[id]; ok {
		return e.Name
	}
	return id
}

// ShowDefault restores the idle help content.
func (p *DetailPanel) ShowDefault() {
	p.entityID = ""
	p.pinned = false
	var b strings.Builder
	b.WriteString(p.theme.Header.Render("silsila"))
	b.WriteString("\n\n")
	b.WriteString(p.theme.StatusText.Render("Hover a node to preview it."))
	b.WriteByte('\n')
	b.WriteString(p.theme.StatusText.Render("Click to pin, drag to rearrange."))
	b.WriteString("\n\n")
	b.WriteString(p.theme.MutedText.Render("/  search    esc  reset"))
	b.WriteByte('\n')
	b.WriteString(p.theme.MutedText.Render("y  copy id   r    recent"))
	b.WriteByte('\n')
	b.WriteString(p.theme.MutedText.Render("o  settings  s    snapshot"))
	b.WriteByte('\n')
	b.WriteString(p.theme.MutedText.Render("q  quit"))
	p.viewport.SetContent(b.String())
	p.viewport.GotoTop()
}

// ShowRecent lists the visit history, newest first. Entities that left
// the dataset since they were visited fall back to their raw ID.
func (p *DetailPanel) ShowRecent(visits []store.Visit, entities map[string]*model.Entity) {
	p.entityID = ""
	p.pinned = false
	var b strings.Builder
	b.WriteString(p.theme.Header.Render("Recently visited"))
	b.WriteString("\n\n")
	if len(visits) == 0 {
		b.WriteString(p.theme.StatusText.Render("Nothing visited yet."))
		b.WriteByte('\n')
		b.WriteString(p.theme.StatusText.Render("Click a node to pin it."))
	}
	for _, v := range visits {
		name := v.EntityID
		if e, ok := entities[v.EntityID]; ok {
			name = e.Name
		}
		b.WriteString(truncate(name, p.width-8))
		b.WriteString(p.theme.MutedText.Render(fmt.Sprintf("  ×%d", v.Count)))
		b.WriteByte('\n')
		b.WriteString(p.theme.MutedText.Render("  " + v.LastSeen.Local().Format("Jan 2 15:04")))
		b.WriteByte('\n')
	}
	p.viewport.SetContent(b.String())
	p.viewport.GotoTop()
}

func (p *DetailPanel) renderMarkdown(md string) string {
	if p.renderer == nil {
		return md
	}
	out, err := p.renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n") + "\n"
}

// ScrollDown moves the viewport content down.
func (p *DetailPanel) ScrollDown(lines int) { p.viewport.LineDown(lines) }

// ScrollUp moves the viewport content up.
func (p *DetailPanel) ScrollUp(lines int) { p.viewport.LineUp(lines) }

// View renders the panel.
func (p *DetailPanel) View() string {
	return p.viewport.View()
}

package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/silsila/pkg/graph"
	"github.com/vanderheijden86/silsila/pkg/model"
)

const (
	// Terminal cells are roughly twice as tall as wide; the vertical scale
	// is halved so world-space circles look round on screen.
	cellAspect = 0.5

	minZoom = 0.2
	maxZoom = 8.0

	// Horizontal slack for hit tests next to a node glyph.
	hitSlackX = 2
)

// focusState tells the canvas which entities get emphasis styling.
type focusState struct {
	Hovered string
	Pinned  string
	Dragged string
}

// nodeSpan records where a node landed on screen so pointer events can be
// resolved back to entities.
type nodeSpan struct {
	id       string
	row      int
	colStart int // glyph cell
	colEnd   int // last label cell, inclusive
}

// Canvas projects world-space simulation positions onto a cell grid and
// renders the graph. It owns the camera (center + zoom) and remembers the
// node spans of the last render for hit testing.
type Canvas struct {
	theme  Theme
	width  int
	height int

	center r2.Vec  // world point at the viewport center
	zoom   float64 // horizontal cells per world unit

	showLabels bool

	spans []nodeSpan
}

// NewCanvas returns a canvas with the default camera and labels on.
func NewCanvas(theme Theme) *Canvas {
	return &Canvas{theme: theme, zoom: 1, showLabels: true}
}

// SetShowLabels toggles node name labels. With labels off only the glyph
// cell is drawn and hit-testable.
func (c *Canvas) SetShowLabels(show bool) {
	c.showLabels = show
}

// SetSize resizes the viewport.
func (c *Canvas) SetSize(width, height int) {
	c.width = width
	c.height = height
}

// Zoom returns the current zoom factor.
func (c *Canvas) Zoom() float64 { return c.zoom }

// Center returns the world point at the viewport center.
func (c *Canvas) Center() r2.Vec { return c.center }

// CenterOn moves the camera so pos sits at the viewport center.
func (c *Canvas) CenterOn(pos r2.Vec) { c.center = pos }

// Pan shifts the camera by a cell delta, converted to world units at the
// current zoom. Dragging the background calls this with the inverse of
// the pointer motion.
func (c *Canvas) Pan(dcols, drows int) {
	if c.zoom == 0 {
		return
	}
	c.center.X += float64(dcols) / c.zoom
	c.center.Y += float64(drows) / (c.zoom * cellAspect)
}

// ZoomAt scales the zoom by factor, anchored so the world point under the
// given cell stays under it. Wheel events call this with the pointer cell.
func (c *Canvas) ZoomAt(factor float64, col, row int) {
	anchor := c.Unproject(col, row)
	z := c.zoom * factor
	if z < minZoom {
		z = minZoom
	}
	if z > maxZoom {
		z = maxZoom
	}
	c.zoom = z
	after := c.Unproject(col, row)
	c.center.X += anchor.X - after.X
	c.center.Y += anchor.Y - after.Y
}

// ResetView restores the default camera.
func (c *Canvas) ResetView() {
	c.center = r2.Vec{}
	c.zoom = 1
}

// Project maps a world position to a cell. The bool reports whether the
// cell lies inside the viewport.
func (c *Canvas) Project(pos r2.Vec) (col, row int, visible bool) {
	col = c.width/2 + int(math.Floor((pos.X-c.center.X)*c.zoom+0.5))
	row = c.height/2 + int(math.Floor((pos.Y-c.center.Y)*c.zoom*cellAspect+0.5))
	visible = col >= 0 && col < c.width && row >= 0 && row < c.height
	return col, row, visible
}

// Unproject maps a cell back to world space.
func (c *Canvas) Unproject(col, row int) r2.Vec {
	return r2.Vec{
		X: c.center.X + float64(col-c.width/2)/c.zoom,
		Y: c.center.Y + float64(row-c.height/2)/(c.zoom*cellAspect),
	}
}

// HitTest resolves a pointer cell to the entity rendered there, using the
// spans of the last Render. A miss on the exact span falls back to the
// nearest glyph within a small slack so clicking just beside a node still
// lands.
func (c *Canvas) HitTest(col, row int) (string, bool) {
	for _, s := range c.spans {
		if s.row == row && col >= s.colStart && col <= s.colEnd {
			return s.id, true
		}
	}
	best := ""
	bestDist := hitSlackX + 1
	for _, s := range c.spans {
		if s.row != row {
			continue
		}
		d := s.colStart - col
		if d < 0 {
			d = col - s.colEnd
		}
		if d >= 0 && d < bestDist {
			best, bestDist = s.id, d
		}
	}
	return best, best != ""
}

type cell struct {
	ch    rune
	style *lipgloss.Style
}

// Render draws edges, then nodes with their labels, into a styled string.
// Positions come from the simulation; entities supply names and categories;
// idx lights up the edges and neighbors of the focused entity.
func (c *Canvas) Render(positions map[string]r2.Vec, entities map[string]*model.Entity, idx *graph.Index, relations []model.Relation, focus focusState) string {
	if c.width <= 0 || c.height <= 0 {
		return ""
	}

	grid := make([][]cell, c.height)
	for i := range grid {
		grid[i] = make([]cell, c.width)
		for j := range grid[i] {
			grid[i][j] = cell{ch: ' '}
		}
	}
	c.spans = c.spans[:0]

	// Which entity, if any, drives emphasis. Drag wins over pin wins over
	// hover when several are set.
	active := focus.Hovered
	if focus.Pinned != "" {
		active = focus.Pinned
	}
	if focus.Dragged != "" {
		active = focus.Dragged
	}

	// Edges first so nodes draw over them.
	for _, rel := range relations {
		pa, oka := positions[rel.Source]
		pb, okb := positions[rel.Target]
		if !oka || !okb {
			continue
		}
		lit := active != "" && (rel.Source == active || rel.Target == active)
		style := &c.theme.Edge
		if lit {
			style = &c.theme.EdgeLit
		}
		c.drawEdge(grid, pa, pb, style)
	}

	// Nodes over edges, dimming non-neighbors when something is active.
	for id, pos := range positions {
		e, ok := entities[id]
		if !ok {
			continue
		}
		col, row, visible := c.Project(pos)
		if !visible {
			continue
		}

		glyph, catColor := c.theme.CategoryGlyph(e.Category)
		glyphStyle := c.theme.Renderer.NewStyle().Foreground(catColor)
		labelStyle := c.theme.NodeIdle

		switch {
		case id == focus.Dragged:
			labelStyle = c.theme.NodeDragged
		case id == focus.Pinned:
			labelStyle = c.theme.NodePinned
		case id == focus.Hovered:
			labelStyle = c.theme.NodeHover
		case active != "" && id != active && !idx.Connected(active, id):
			glyphStyle = c.theme.NodeDimmed
			labelStyle = c.theme.NodeDimmed
		}

		label := ""
		if c.showLabels {
			label = truncate(e.Name, 18)
		}
		c.drawNode(grid, col, row, []rune(glyph)[0], label, &glyphStyle, &labelStyle)
		end := col
		if label != "" {
			end = col + 1 + len([]rune(label))
			if end >= c.width {
				end = c.width - 1
			}
		}
		c.spans = append(c.spans, nodeSpan{id: id, row: row, colStart: col, colEnd: end})
	}

	return c.flatten(grid)
}

// drawEdge steps along the projected segment writing line runes into
// empty cells only, so crossing edges and nodes stay readable.
func (c *Canvas) drawEdge(grid [][]cell, a, b r2.Vec, style *lipgloss.Style) {
	ca, ra, _ := c.Project(a)
	cb, rb, _ := c.Project(b)

	dc, dr := cb-ca, rb-ra
	steps := abs(dc)
	if abs(dr) > steps {
		steps = abs(dr)
	}
	if steps == 0 {
		return
	}

	ch := edgeRune(dc, dr)
	for i := 1; i < steps; i++ {
		col := ca + dc*i/steps
		row := ra + dr*i/steps
		if col < 0 || col >= c.width || row < 0 || row >= c.height {
			continue
		}
		if grid[row][col].ch == ' ' {
			grid[row][col] = cell{ch: ch, style: style}
		}
	}
}

func edgeRune(dc, dr int) rune {
	switch {
	case dr == 0:
		return '─'
	case dc == 0:
		return '│'
	case (dc > 0) == (dr > 0):
		return '╲'
	default:
		return '╱'
	}
}

func (c *Canvas) drawNode(grid [][]cell, col, row int, glyph rune, label string, glyphStyle, labelStyle *lipgloss.Style) {
	if col >= 0 && col < c.width {
		grid[row][col] = cell{ch: glyph, style: glyphStyle}
	}
	for i, r := range []rune(label) {
		x := col + 2 + i
		if x < 0 || x >= c.width {
			continue
		}
		grid[row][x] = cell{ch: r, style: labelStyle}
	}
}

// flatten assembles the grid into output, batching runs of cells that
// share a style so each row costs a handful of Render calls, not one per
// cell.
func (c *Canvas) flatten(grid [][]cell) string {
	var out strings.Builder
	var run strings.Builder
	for row := 0; row < c.height; row++ {
		if row > 0 {
			out.WriteByte('\n')
		}
		var cur *lipgloss.Style
		run.Reset()
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if cur != nil {
				out.WriteString(cur.Render(run.String()))
			} else {
				out.WriteString(run.String())
			}
			run.Reset()
		}
		for col := 0; col < c.width; col++ {
			cl := grid[row][col]
			if cl.style != cur {
				flush()
				cur = cl.style
			}
			run.WriteRune(cl.ch)
		}
		flush()
	}
	return out.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

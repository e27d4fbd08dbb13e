// Package export renders static snapshots of the current graph layout.
// The TUI draws a coarse cell-grid approximation; exports re-render the
// same positions at full resolution as SVG and PNG for sharing.
package export

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/silsila/pkg/model"
)

const (
	canvasWidth  = 1280
	canvasHeight = 860
	padding      = 60.0
	headerHeight = 56.0

	minRadius = 6.0
	maxRadius = 22.0
)

var (
	colorBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorHeaderBG = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	colorStroke   = color.RGBA{0x22, 0x22, 0x22, 0xff}
	colorEdge     = color.RGBA{0x9a, 0xa4, 0xb8, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
)

func categoryColor(c model.Category) color.RGBA {
	switch c {
	case model.CategoryScholar:
		return color.RGBA{0x50, 0xb8, 0x6c, 0xff}
	case model.CategoryText:
		return color.RGBA{0x4c, 0x9a, 0xff, 0xff}
	case model.CategoryConcept:
		return color.RGBA{0x90, 0x4e, 0xe2, 0xff}
	case model.CategoryPractice:
		return color.RGBA{0xff, 0xb8, 0x6c, 0xff}
	case model.CategoryPlace:
		return color.RGBA{0x00, 0xce, 0xd1, 0xff}
	case model.CategoryEvent:
		return color.RGBA{0xe5, 0x49, 0x3a, 0xff}
	default:
		return color.RGBA{0xaa, 0xaa, 0xaa, 0xff}
	}
}

type layoutNode struct {
	ID       string
	Name     string
	Category model.Category
	X, Y     float64
	Radius   float64
	Rank     float64
}

type layoutEdge struct {
	X1, Y1, X2, Y2 float64
}

type layout struct {
	Nodes []layoutNode
	Edges []layoutEdge
}

// WriteSnapshot renders positions to <dir>/silsila-<timestamp>.svg and
// .png and returns the common base path without extension.
func WriteSnapshot(dir string, positions map[string]r2.Vec, entities map[string]*model.Entity, relations []model.Relation, rank map[string]float64) (string, error) {
	if len(positions) == 0 {
		return "", fmt.Errorf("nothing to export")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	l := buildLayout(positions, entities, relations, rank)
	base := filepath.Join(dir, "silsila-"+time.Now().Format("20060102-150405"))

	if err := writeSVG(base+".svg", l); err != nil {
		return "", err
	}
	if err := writePNG(base+".png", l); err != nil {
		return "", err
	}
	return base, nil
}

// buildLayout fits world coordinates into the fixed canvas, preserving
// aspect ratio, and sizes each node by its PageRank share.
func buildLayout(positions map[string]r2.Vec, entities map[string]*model.Entity, relations []model.Relation, rank map[string]float64) layout {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range positions {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	spanX := maxX - minX
	spanY := maxY - minY
	if spanX < 1 {
		spanX = 1
	}
	if spanY < 1 {
		spanY = 1
	}
	scale := math.Min(
		(canvasWidth-2*padding)/spanX,
		(canvasHeight-headerHeight-2*padding)/spanY,
	)
	place := func(p r2.Vec) (float64, float64) {
		return padding + (p.X-minX)*scale,
			headerHeight + padding + (p.Y-minY)*scale
	}

	maxRank := 0.0
	for _, v := range rank {
		maxRank = math.Max(maxRank, v)
	}

	var l layout
	for id, p := range positions {
		e, ok := entities[id]
		if !ok {
			continue
		}
		x, y := place(p)
		r := minRadius
		if maxRank > 0 {
			r += (maxRadius - minRadius) * rank[id] / maxRank
		}
		l.Nodes = append(l.Nodes, layoutNode{
			ID:       id,
			Name:     e.Name,
			Category: e.Category,
			X:        x,
			Y:        y,
			Radius:   r,
			Rank:     rank[id],
		})
	}
	// Deterministic draw order, biggest nodes on top.
	sort.Slice(l.Nodes, func(i, j int) bool {
		if l.Nodes[i].Radius != l.Nodes[j].Radius {
			return l.Nodes[i].Radius < l.Nodes[j].Radius
		}
		return l.Nodes[i].ID < l.Nodes[j].ID
	})

	for _, rel := range relations {
		pa, oka := positions[rel.Source]
		pb, okb := positions[rel.Target]
		if !oka || !okb {
			continue
		}
		x1, y1 := place(pa)
		x2, y2 := place(pb)
		l.Edges = append(l.Edges, layoutEdge{x1, y1, x2, y2})
	}
	return l
}

func writeSVG(path string, l layout) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return renderSVG(file, l)
}

func renderSVG(w io.Writer, l layout) error {
	canvas := svg.New(w)
	canvas.Start(canvasWidth, canvasHeight)
	canvas.Rect(0, 0, canvasWidth, canvasHeight, "fill:"+css(colorBackdrop))
	canvas.Rect(0, 0, canvasWidth, int(headerHeight), "fill:"+css(colorHeaderBG))
	canvas.Text(24, 36, fmt.Sprintf("silsila — %d entities, %d relations", len(l.Nodes), len(l.Edges)),
		fmt.Sprintf("fill:%s;font-size:18px;font-family:monospace;font-weight:bold", css(colorText)))

	for _, e := range l.Edges {
		canvas.Line(int(e.X1), int(e.Y1), int(e.X2), int(e.Y2),
			fmt.Sprintf("stroke:%s;stroke-width:1.2", css(colorEdge)))
	}

	for _, n := range l.Nodes {
		canvas.Circle(int(n.X), int(n.Y), int(n.Radius),
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(categoryColor(n.Category)), css(colorStroke)))
		canvas.Text(int(n.X+n.Radius+4), int(n.Y+4), n.Name,
			fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))
	}

	canvas.End()
	return nil
}

func writePNG(path string, l layout) error {
	dc := gg.NewContext(canvasWidth, canvasHeight)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRectangle(0, 0, canvasWidth, headerHeight)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(colorText)
	dc.DrawStringAnchored(fmt.Sprintf("silsila — %d entities, %d relations", len(l.Nodes), len(l.Edges)), 24, 32, 0, 0.5)

	dc.SetColor(colorEdge)
	dc.SetLineWidth(1.2)
	for _, e := range l.Edges {
		dc.DrawLine(e.X1, e.Y1, e.X2, e.Y2)
		dc.Stroke()
	}

	for _, n := range l.Nodes {
		dc.SetColor(categoryColor(n.Category))
		dc.DrawCircle(n.X, n.Y, n.Radius)
		dc.Fill()
		dc.SetColor(colorStroke)
		dc.SetLineWidth(1)
		dc.DrawCircle(n.X, n.Y, n.Radius)
		dc.Stroke()

		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(n.Name, n.X+n.Radius+4, n.Y, 0, 0.5)
	}

	return dc.SavePNG(path)
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

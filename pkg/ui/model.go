package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/silsila/pkg/config"
	"github.com/vanderheijden86/silsila/pkg/debug"
	"github.com/vanderheijden86/silsila/pkg/export"
	"github.com/vanderheijden86/silsila/pkg/graph"
	"github.com/vanderheijden86/silsila/pkg/interaction"
	"github.com/vanderheijden86/silsila/pkg/model"
	"github.com/vanderheijden86/silsila/pkg/sim"
	"github.com/vanderheijden86/silsila/pkg/store"
)

const (
	detailWidth = 38
	headerRows  = 1
	statusRows  = 1

	// Pointer travel in cells before a press turns into a drag instead of
	// a click.
	dragThreshold = 2

	statusLinger = 3 * time.Second
	zoomStep     = 1.2
)

// Model is the bubbletea root: it owns the event loop wiring between
// pointer events, the interaction state machine, the simulation, and the
// panels. All mutation happens on the bubbletea goroutine.
type Model struct {
	theme Theme
	cfg   *config.Config

	dataset   *model.Dataset
	entities  map[string]*model.Entity
	idx       *graph.Index
	rank      map[string]float64
	eng       *sim.Engine
	inter     *interaction.Manager
	coupler   *interaction.Coupler
	canvas    *Canvas
	detail    *DetailPanel
	search    *SearchOverlay
	settings  *SettingsOverlay
	visits    *store.Store // nil when state dir is unavailable
	exportDir string

	width  int
	height int

	// Pending press, resolved into a click or a drag on later events.
	pressEntity string
	pressCol    int
	pressRow    int
	pressLive   bool
	panning     bool
	lastCol     int
	lastRow     int

	status    string
	statusGen uint64

	err error
}

// New assembles the full UI over a loaded dataset. visits may be nil;
// visit history is then simply not recorded.
func New(cfg *config.Config, ds *model.Dataset, visits *store.Store, exportDir string) Model {
	theme := DefaultTheme(lipgloss.NewRenderer(os.Stdout))

	eng := sim.New(sim.Config{
		SpringLength: cfg.Sim.SpringLength,
		Repulsion:    cfg.Sim.Repulsion,
		Gravity:      cfg.Sim.Gravity,
	})
	coupler := interaction.NewCoupler(eng, interaction.CouplingConfig{
		DragAlphaTarget: cfg.DragAlphaTarget,
		SettleThreshold: cfg.SettleAlpha,
		ReleaseGrace:    cfg.ReleaseGrace.Std(),
	})

	m := Model{
		theme:     theme,
		cfg:       cfg,
		eng:       eng,
		inter:     interaction.New(),
		coupler:   coupler,
		canvas:    NewCanvas(theme),
		detail:    NewDetailPanel(theme, detailWidth, 20),
		search:    NewSearchOverlay(theme, nil),
		settings:  &SettingsOverlay{},
		visits:    visits,
		exportDir: exportDir,
	}
	m.canvas.SetShowLabels(cfg.ShowLabels)
	m.installDataset(ds)
	m.detail.ShowDefault()
	if visits != nil {
		// Reopen on the entity the last session left pinned, as a preview.
		if id, err := visits.Get("last_pinned"); err == nil && id != "" {
			if e, ok := m.entities[id]; ok {
				m.detail.ShowEntity(e, m.idx, m.entities, ds.Relations, false)
			}
		}
	}
	return m
}

// installDataset points every component at a dataset. Bodies that exist
// in both the old and new data keep their positions so a live reload does
// not scramble the layout.
func (m *Model) installDataset(ds *model.Dataset) {
	prev := m.eng.Positions()

	m.dataset = ds
	m.entities = ds.EntityMap()
	m.idx = graph.BuildIndex(ds.Entities, ds.Relations)
	m.rank = graph.PageRank(ds.Entities, ds.Relations)
	m.search.SetEntities(ds.Entities)

	m.eng.Clear()
	for _, e := range ds.Entities {
		m.eng.AddBody(e.ID, prev[e.ID])
	}
	for _, r := range ds.Relations {
		m.eng.AddLink(r.Source, r.Target)
	}
}

func (m Model) Init() tea.Cmd {
	return frameTick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The settings form needs every message type while it is open.
	if m.settings.Active() {
		done, cmd := m.settings.Update(msg, m.cfg)
		if done {
			m.coupler = interaction.NewCoupler(m.eng, interaction.CouplingConfig{
				DragAlphaTarget: m.cfg.DragAlphaTarget,
				SettleThreshold: m.cfg.SettleAlpha,
				ReleaseGrace:    m.cfg.ReleaseGrace.Std(),
			})
			m.canvas.SetShowLabels(m.cfg.ShowLabels)
			if err := config.Save(*m.cfg); err != nil {
				debug.Log("settings save failed: %v", err)
			}
		}
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		body := m.height - headerRows - statusRows
		if body < 1 {
			body = 1
		}
		canvasWidth := m.width - detailWidth - 1
		if canvasWidth < 1 {
			canvasWidth = 1
		}
		m.canvas.SetSize(canvasWidth, body)
		m.detail.SetSize(detailWidth, body)
		return m, nil

	case frameTickMsg:
		m.eng.Step()
		return m, frameTick()

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case hoverExpireMsg:
		if m.inter.ExpireHover(msg.gen) && !m.detail.Pinned() {
			m.detail.ShowDefault()
		}
		return m, nil

	case suppressExpireMsg:
		m.inter.DiscardSuppress(msg.gen)
		return m, nil

	case releasePinMsg:
		m.coupler.ReleasePin(msg.gen)
		return m, nil

	case centerRetryMsg:
		pos, ok, again := m.coupler.TryCenter(msg.gen)
		if ok {
			m.canvas.CenterOn(pos)
		}
		if again {
			return m, after(m.coupler.Config().CenterRetry, centerRetryMsg{gen: msg.gen})
		}
		return m, nil

	case statusExpireMsg:
		if msg.gen == m.statusGen {
			m.status = ""
		}
		return m, nil

	case DatasetReloadedMsg:
		if msg.Err != nil {
			return m.withStatus(fmt.Sprintf("reload failed: %v", msg.Err))
		}
		m.inter.ForceReset()
		m.coupler.Reset()
		m.installDataset(msg.Dataset)
		m.eng.SetAlpha(0.6) // reheat so new nodes find their place
		if !m.detail.Pinned() {
			m.detail.ShowDefault()
		}
		return m.withStatus(fmt.Sprintf("dataset reloaded: %d entities", len(msg.Dataset.Entities)))
	}

	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	col, row := msg.X, msg.Y-headerRows

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.canvas.ZoomAt(zoomStep, col, row)
		return m, nil
	case msg.Button == tea.MouseButtonWheelDown:
		m.canvas.ZoomAt(1/zoomStep, col, row)
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		id, hit := m.canvas.HitTest(col, row)
		m.pressLive = true
		m.pressEntity = ""
		m.panning = !hit
		if hit {
			m.pressEntity = id
		}
		m.pressCol, m.pressRow = col, row
		m.lastCol, m.lastRow = col, row
		return m, nil

	case tea.MouseActionMotion:
		if m.pressLive {
			return m.handleDragMotion(col, row)
		}
		return m.handleHoverMotion(col, row)

	case tea.MouseActionRelease:
		return m.handleRelease(col, row)
	}

	return m, nil
}

// handleDragMotion runs while a button is held: pan the background, or
// promote the press into a node drag once the pointer has travelled far
// enough, then keep the pin under the pointer.
func (m Model) handleDragMotion(col, row int) (tea.Model, tea.Cmd) {
	if m.panning {
		m.canvas.Pan(m.lastCol-col, m.lastRow-row)
		m.lastCol, m.lastRow = col, row
		return m, nil
	}

	if m.inter.State() != interaction.Dragging {
		if abs(col-m.pressCol) < dragThreshold && abs(row-m.pressRow) < dragThreshold {
			return m, nil
		}
		id := m.pressEntity
		if id == "" || !m.inter.StartDrag(id, nil) {
			return m, nil
		}
		m.coupler.BeginDrag(id, m.canvas.Unproject(col, row))
		return m, nil
	}

	m.coupler.DragTo(m.inter.Entity(), m.canvas.Unproject(col, row))
	m.lastCol, m.lastRow = col, row
	return m, nil
}

// handleHoverMotion runs while no button is held: start or continue a
// hover over a node, or schedule the linger-out when the pointer leaves.
func (m Model) handleHoverMotion(col, row int) (tea.Model, tea.Cmd) {
	id, hit := m.canvas.HitTest(col, row)

	if hit {
		m.inter.StartHover(id,
			func(entityID string) {
				m.detail.ShowEntity(m.entities[entityID], m.idx, m.entities, m.dataset.Relations, false)
			},
			func(string) {},
		)
		return m, nil
	}

	if m.inter.State() == interaction.Hovering {
		gen := m.inter.ScheduleHoverEnd()
		if gen != 0 {
			return m, after(m.cfg.HoverLinger.Std(), hoverExpireMsg{gen: gen})
		}
	}
	return m, nil
}

func (m Model) handleRelease(col, row int) (tea.Model, tea.Cmd) {
	wasPanning := m.panning
	pressEntity := m.pressEntity
	m.pressLive = false
	m.panning = false
	m.pressEntity = ""

	if m.inter.State() == interaction.Dragging {
		var cmds []tea.Cmd
		dragged := m.inter.Entity()
		m.inter.EndDrag(func(entityID string) {
			if gen := m.coupler.EndDrag(entityID); gen != 0 {
				cmds = append(cmds, after(m.coupler.Config().ReleaseGrace, releasePinMsg{gen: gen}))
			}
		})
		if gen := m.inter.SuppressGen(); gen != 0 {
			cmds = append(cmds, after(frameInterval, suppressExpireMsg{gen: gen}))
		}
		// The pointer-up also surfaces as a click on the dragged node;
		// route it through the state machine so the suppression flag can
		// swallow it.
		m.handleClick(dragged)
		// A drag that started from ClickedPinned lands in Idle, so the
		// panel must stop claiming a pin the machine no longer holds.
		if m.inter.State() != interaction.ClickedPinned && m.detail.Pinned() {
			if e, ok := m.entities[m.detail.EntityID()]; ok {
				m.detail.ShowEntity(e, m.idx, m.entities, m.dataset.Relations, false)
			} else {
				m.detail.ShowDefault()
			}
		}
		return m, tea.Batch(cmds...)
	}

	if pressEntity != "" {
		if id, hit := m.canvas.HitTest(col, row); hit && id == pressEntity {
			cmd := m.handleClick(id)
			return m, cmd
		}
		return m, nil
	}

	// Background click: unpin the focus. Real pans moved the pointer, so
	// the threshold tells a pan release apart from a deliberate click.
	if wasPanning && abs(col-m.pressCol) < dragThreshold && abs(row-m.pressRow) < dragThreshold {
		if m.inter.State() == interaction.ClickedPinned {
			m.inter.Unpin()
			m.detail.ShowDefault()
		}
	}
	return m, nil
}

// handleClick routes a click through the state machine and, when it is
// accepted, pins the detail panel and centers the view once the layout
// settles.
func (m *Model) handleClick(id string) tea.Cmd {
	var cmds []tea.Cmd
	accepted := m.inter.HandleClick(id, func(entityID string) {
		m.detail.ShowEntity(m.entities[entityID], m.idx, m.entities, m.dataset.Relations, true)
		if m.visits != nil {
			if err := m.visits.RecordVisit(entityID); err != nil {
				debug.Log("visit record failed: %v", err)
			}
			if err := m.visits.Set("last_pinned", entityID); err != nil {
				debug.Log("last_pinned save failed: %v", err)
			}
			if n, err := m.visits.VisitCount(entityID); err == nil && n > 1 {
				name := entityID
				if e, ok := m.entities[entityID]; ok {
					name = e.Name
				}
				m.status = fmt.Sprintf("%s · visit %d", name, n)
				m.statusGen++
				cmds = append(cmds, after(statusLinger, statusExpireMsg{gen: m.statusGen}))
			}
		}
		if pos, ok, gen := m.coupler.RequestCenter(entityID); ok {
			m.canvas.CenterOn(pos)
		} else if gen != 0 {
			cmds = append(cmds, after(m.coupler.Config().CenterRetry, centerRetryMsg{gen: gen}))
		}
	})
	debug.LogIf(!accepted, "click on %s rejected in state %s", id, m.inter.State())
	return tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.search.Active() {
		chosen, cmd := m.search.Update(msg)
		if chosen != "" {
			clickCmd := m.handleClick(chosen)
			return m, tea.Batch(cmd, clickCmd)
		}
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		if m.visits != nil {
			_ = m.visits.Close()
		}
		return m, tea.Quit

	case "esc":
		m.inter.ForceReset()
		m.coupler.Reset()
		m.canvas.ResetView()
		m.detail.ShowDefault()
		return m, nil

	case "/":
		return m, m.search.Open()

	case "o":
		return m, m.settings.Open(m.cfg)

	case "r":
		return m.showRecent()

	case "y":
		id := m.inter.Entity()
		if id == "" {
			return m.withStatus("nothing focused to copy")
		}
		if err := clipboard.WriteAll(id); err != nil {
			return m.withStatus(fmt.Sprintf("clipboard: %v", err))
		}
		return m.withStatus("copied " + id)

	case "s":
		return m.exportSnapshot()

	case "j", "down":
		m.detail.ScrollDown(1)
		return m, nil
	case "k", "up":
		m.detail.ScrollUp(1)
		return m, nil

	case "+", "=":
		m.canvas.ZoomAt(zoomStep, m.canvas.width/2, m.canvas.height/2)
		return m, nil
	case "-":
		m.canvas.ZoomAt(1/zoomStep, m.canvas.width/2, m.canvas.height/2)
		return m, nil

	case "left":
		m.canvas.Pan(-4, 0)
		return m, nil
	case "right":
		m.canvas.Pan(4, 0)
		return m, nil
	}

	return m, nil
}

// showRecent swaps the detail panel for the persisted visit history.
func (m Model) showRecent() (tea.Model, tea.Cmd) {
	if m.visits == nil {
		return m.withStatus("visit history unavailable")
	}
	visits, err := m.visits.Recent(10)
	if err != nil {
		return m.withStatus(fmt.Sprintf("visit history: %v", err))
	}
	m.detail.ShowRecent(visits, m.entities)
	return m, nil
}

// exportSnapshot writes SVG and PNG renderings of the current layout.
// Export waits for a settled layout; a half-converged graph makes a
// misleading picture.
func (m Model) exportSnapshot() (tea.Model, tea.Cmd) {
	if !m.eng.Settled() {
		return m.withStatus("layout still settling, try again shortly")
	}
	base, err := export.WriteSnapshot(m.exportDir, m.eng.Positions(), m.entities, m.dataset.Relations, m.rank)
	if err != nil {
		return m.withStatus(fmt.Sprintf("export failed: %v", err))
	}
	return m.withStatus("exported " + filepath.Base(base) + ".{svg,png}")
}

func (m Model) withStatus(s string) (tea.Model, tea.Cmd) {
	m.status = s
	m.statusGen++
	return m, after(statusLinger, statusExpireMsg{gen: m.statusGen})
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}

	header := m.theme.Header.Render("silsila") + " " +
		m.theme.MutedText.Render(fmt.Sprintf("%d entities · %d relations", len(m.dataset.Entities), len(m.dataset.Relations)))

	focus := focusState{}
	switch m.inter.State() {
	case interaction.Hovering:
		focus.Hovered = m.inter.Entity()
	case interaction.Dragging:
		focus.Dragged = m.inter.Entity()
	case interaction.ClickedPinned:
		focus.Pinned = m.inter.Entity()
	}

	canvasView := m.canvas.Render(m.eng.Positions(), m.entities, m.idx, m.dataset.Relations, focus)
	body := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, " ", m.detail.View())

	status := m.status
	if status == "" {
		status = m.statusLine()
	}

	view := header + "\n" + body + "\n" + m.theme.StatusText.Render(truncate(status, m.width))

	if m.search.Active() {
		overlay := m.search.View(m.entities)
		view = lipgloss.JoinVertical(lipgloss.Left, header, overlay, body)
	}
	if m.settings.Active() {
		view = header + "\n" + m.settings.View()
	}
	return view
}

func (m Model) statusLine() string {
	state := m.inter.State().String()
	if id := m.inter.Entity(); id != "" {
		if e, ok := m.entities[id]; ok {
			state += " " + e.Name
		}
	}
	energy := ""
	if !m.eng.Settled() {
		energy = fmt.Sprintf("  α %.2f", m.eng.Alpha())
	}
	return fmt.Sprintf("%s%s  ·  / search  o settings  s snapshot  q quit", state, energy)
}

package ui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/silsila/pkg/config"
	"github.com/vanderheijden86/silsila/pkg/interaction"
	"github.com/vanderheijden86/silsila/pkg/model"
	"github.com/vanderheijden86/silsila/pkg/store"
)

func testDataset() *model.Dataset {
	return &model.Dataset{
		Entities: []model.Entity{
			{ID: "rumi", Name: "Rumi", Category: model.CategoryScholar},
			{ID: "masnavi", Name: "Masnavi", Category: model.CategoryText},
			{ID: "konya", Name: "Konya", Category: model.CategoryPlace},
		},
		Relations: []model.Relation{
			{Source: "rumi", Target: "masnavi", Type: model.RelationWrote},
			{Source: "rumi", Target: "konya", Type: model.RelationLivedIn},
		},
	}
}

// newTestModel builds a model with three nodes at known world positions
// and a rendered frame, so pointer cells resolve deterministically.
// rumi sits at the viewport center.
func newTestModel(t *testing.T) Model {
	return newTestModelWith(t, nil)
}

func newTestModelWith(t *testing.T, visits *store.Store) Model {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.HoverLinger = config.Duration(time.Millisecond)
	cfg.ReleaseGrace = config.Duration(time.Millisecond)

	m := New(&cfg, testDataset(), visits, t.TempDir())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = next.(Model)

	m.eng.AddBody("rumi", r2.Vec{X: 0, Y: 0})
	m.eng.AddBody("masnavi", r2.Vec{X: 20, Y: 0})
	m.eng.AddBody("konya", r2.Vec{X: -20, Y: 10})
	m.View()
	return m
}

func newVisitStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "visits.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// rumiCell returns the mouse coordinates over the rumi glyph. The canvas
// is 61x28 after the 100x30 window carves out the detail panel, header,
// and status line; (0,0) world projects to its middle.
func rumiCell() (x, y int) { return 30, 14 + headerRows }

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestHoverShowsDetail(t *testing.T) {
	m := newTestModel(t)
	x, y := rumiCell()

	m, _ = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})

	if m.inter.State() != interaction.Hovering {
		t.Fatalf("state = %s, want Hovering", m.inter.State())
	}
	if m.detail.EntityID() != "rumi" {
		t.Errorf("detail shows %q, want rumi", m.detail.EntityID())
	}
	if m.detail.Pinned() {
		t.Error("hover must not pin the detail panel")
	}
}

func TestHoverLingerThenExpire(t *testing.T) {
	m := newTestModel(t)
	x, y := rumiCell()

	m, _ = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})
	m, cmd := update(t, m, tea.MouseMsg{X: 2, Y: 2, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})
	if cmd == nil {
		t.Fatal("leaving a hovered node should arm the linger timer")
	}

	// The hover survives until the timer message lands.
	if m.inter.State() != interaction.Hovering {
		t.Fatalf("state = %s before expiry, want Hovering", m.inter.State())
	}

	m, _ = update(t, m, cmd()) // cmd sleeps ~1ms, then yields hoverExpireMsg
	if m.inter.State() != interaction.Idle {
		t.Errorf("state = %s after expiry, want Idle", m.inter.State())
	}
	if m.detail.EntityID() != "" {
		t.Errorf("detail still shows %q", m.detail.EntityID())
	}
}

func TestHoverReentryCancelsExpiry(t *testing.T) {
	m := newTestModel(t)
	x, y := rumiCell()

	m, _ = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})
	m, cmd := update(t, m, tea.MouseMsg{X: 2, Y: 2, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})
	m, _ = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})

	// The timer fires anyway; its token is stale now.
	m, _ = update(t, m, cmd())
	if m.inter.State() != interaction.Hovering {
		t.Errorf("state = %s, want Hovering to survive the stale expiry", m.inter.State())
	}
}

func TestClickPinsEntity(t *testing.T) {
	m := newTestModel(t)
	x, y := rumiCell()

	m, _ = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m, _ = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	if m.inter.State() != interaction.ClickedPinned {
		t.Fatalf("state = %s, want ClickedPinned", m.inter.State())
	}
	if !m.detail.Pinned() || m.detail.EntityID() != "rumi" {
		t.Errorf("detail = %q pinned=%v", m.detail.EntityID(), m.detail.Pinned())
	}
}

func TestDragDoesNotPin(t *testing.T) {
	m := newTestModel(t)
	x, y := rumiCell()

	m, _ = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m, _ = update(t, m, tea.MouseMsg{X: x + 5, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})

	if m.inter.State() != interaction.Dragging {
		t.Fatalf("state = %s, want Dragging after threshold travel", m.inter.State())
	}
	if m.coupler.Dragging() != "rumi" {
		t.Errorf("coupler dragging %q", m.coupler.Dragging())
	}
	if m.eng.Pinned("rumi") == nil {
		t.Error("dragged body should be pinned to the pointer")
	}

	// The release doubles as a click; suppression must swallow it.
	m, _ = update(t, m, tea.MouseMsg{X: x + 5, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	if m.inter.State() != interaction.Idle {
		t.Errorf("state = %s after drag release, want Idle", m.inter.State())
	}
	if m.detail.Pinned() {
		t.Error("a drag must not pin the detail panel")
	}
}

func TestDragOfPinnedNodeReleasesPanelPin(t *testing.T) {
	m := newTestModel(t)
	x, y := rumiCell()

	m, _ = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m, _ = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	if !m.detail.Pinned() {
		t.Fatal("click should pin the panel")
	}

	m, _ = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m, _ = update(t, m, tea.MouseMsg{X: x + 5, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m, _ = update(t, m, tea.MouseMsg{X: x + 5, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	if m.inter.State() != interaction.Idle {
		t.Fatalf("state = %s after the drag, want Idle", m.inter.State())
	}
	if m.detail.Pinned() {
		t.Error("panel still claims a pin the state machine released")
	}
	if m.detail.EntityID() != "rumi" {
		t.Errorf("panel shows %q, want the dragged entity as a preview", m.detail.EntityID())
	}
}

func TestViewHonorsShowLabels(t *testing.T) {
	m := newTestModel(t)
	if !strings.Contains(m.View(), "Rumi") {
		t.Fatal("labels should render by default")
	}

	cfg := config.DefaultConfig()
	cfg.ShowLabels = false
	m2 := New(&cfg, testDataset(), nil, t.TempDir())
	next, _ := m2.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m2 = next.(Model)
	m2.eng.AddBody("rumi", r2.Vec{X: 0, Y: 0})

	if strings.Contains(m2.View(), "Rumi") {
		t.Error("node label rendered despite labels being off")
	}
}

func TestRecentKeyShowsHistory(t *testing.T) {
	s := newVisitStore(t)
	if err := s.RecordVisit("rumi"); err != nil {
		t.Fatalf("RecordVisit: %v", err)
	}
	m := newTestModelWith(t, s)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})

	if !strings.Contains(m.detail.View(), "Rumi") {
		t.Error("history view should list the visited entity")
	}
	if m.detail.Pinned() || m.detail.EntityID() != "" {
		t.Error("history view is not an entity pin")
	}
}

func TestLastPinnedRestoredOnStartup(t *testing.T) {
	s := newVisitStore(t)
	if err := s.Set("last_pinned", "rumi"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	m := newTestModelWith(t, s)

	if m.detail.EntityID() != "rumi" {
		t.Errorf("detail shows %q, want the last pinned entity", m.detail.EntityID())
	}
	if m.detail.Pinned() {
		t.Error("a restored entity is a preview, not a pin")
	}
}

func TestRepeatVisitSurfacesCount(t *testing.T) {
	s := newVisitStore(t)
	if err := s.RecordVisit("rumi"); err != nil {
		t.Fatalf("RecordVisit: %v", err)
	}
	m := newTestModelWith(t, s)
	x, y := rumiCell()

	m, _ = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m, _ = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	if !strings.Contains(m.status, "visit 2") {
		t.Errorf("status = %q, want the repeat-visit count", m.status)
	}
}

func TestSmallJitterStillClicks(t *testing.T) {
	m := newTestModel(t)
	x, y := rumiCell()

	m, _ = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m, _ = update(t, m, tea.MouseMsg{X: x + 1, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})

	if m.inter.State() == interaction.Dragging {
		t.Fatal("sub-threshold travel must not promote to a drag")
	}

	m, _ = update(t, m, tea.MouseMsg{X: x + 1, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	if m.inter.State() != interaction.ClickedPinned {
		t.Errorf("state = %s, want ClickedPinned", m.inter.State())
	}
}

func TestBackgroundClickUnpins(t *testing.T) {
	m := newTestModel(t)
	x, y := rumiCell()

	m, _ = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m, _ = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	m, _ = update(t, m, tea.MouseMsg{X: 3, Y: 3, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m, _ = update(t, m, tea.MouseMsg{X: 3, Y: 3, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	if m.inter.State() != interaction.Idle {
		t.Errorf("state = %s, want Idle after a background click", m.inter.State())
	}
	if m.detail.Pinned() {
		t.Error("background click should release the detail pin")
	}
}

func TestBackgroundDragPansWithoutUnpinning(t *testing.T) {
	m := newTestModel(t)
	x, y := rumiCell()

	m, _ = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m, _ = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	before := m.canvas.Center()
	m, _ = update(t, m, tea.MouseMsg{X: 3, Y: 3, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m, _ = update(t, m, tea.MouseMsg{X: 10, Y: 6, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m, _ = update(t, m, tea.MouseMsg{X: 10, Y: 6, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	if m.canvas.Center() == before {
		t.Error("background drag should pan the camera")
	}
	if m.inter.State() != interaction.ClickedPinned {
		t.Errorf("state = %s, a pan must not disturb the pin", m.inter.State())
	}
}

func TestWheelZooms(t *testing.T) {
	m := newTestModel(t)

	before := m.canvas.Zoom()
	m, _ = update(t, m, tea.MouseMsg{X: 30, Y: 15, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	if m.canvas.Zoom() <= before {
		t.Errorf("zoom = %v after wheel up, was %v", m.canvas.Zoom(), before)
	}
}

func TestEscResetsEverything(t *testing.T) {
	m := newTestModel(t)
	x, y := rumiCell()

	m, _ = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m, _ = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	m.canvas.ZoomAt(2, 10, 10)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	if m.inter.State() != interaction.Idle {
		t.Errorf("state = %s after esc, want Idle", m.inter.State())
	}
	if m.canvas.Zoom() != 1 {
		t.Errorf("zoom = %v after esc, want 1", m.canvas.Zoom())
	}
}

func TestFrameTickAdvancesSimulation(t *testing.T) {
	m := newTestModel(t)
	m.eng.SetAlpha(1)
	before := m.eng.Alpha()

	m, cmd := update(t, m, frameTickMsg(time.Now()))
	if m.eng.Alpha() >= before {
		t.Errorf("alpha = %v, want cooling below %v", m.eng.Alpha(), before)
	}
	if cmd == nil {
		t.Error("frame tick must schedule the next frame")
	}
}

func TestDatasetReloadKeepsPositions(t *testing.T) {
	m := newTestModel(t)
	// Move rumi off the origin: a zero vector reads as "seed me" on reload.
	m.eng.AddBody("rumi", r2.Vec{X: 3, Y: -2})
	before, _ := m.eng.Position("rumi")

	ds := &model.Dataset{
		Entities: []model.Entity{
			{ID: "rumi", Name: "Rumi", Category: model.CategoryScholar},
			{ID: "shams_tabrizi", Name: "Shams of Tabriz", Category: model.CategoryScholar},
		},
		Relations: []model.Relation{
			{Source: "shams_tabrizi", Target: "rumi", Type: model.RelationInfluenced},
		},
	}
	m, _ = update(t, m, DatasetReloadedMsg{Dataset: ds})

	after, ok := m.eng.Position("rumi")
	if !ok || after != before {
		t.Errorf("rumi moved from %+v to %+v across a reload", before, after)
	}
	if m.eng.Len() != 2 {
		t.Errorf("engine has %d bodies, want 2", m.eng.Len())
	}
	if _, ok := m.entities["konya"]; ok {
		t.Error("dropped entity should be gone after reload")
	}
}

func TestDatasetReloadErrorKeepsOldData(t *testing.T) {
	m := newTestModel(t)

	m, _ = update(t, m, DatasetReloadedMsg{Err: errReload})
	if m.eng.Len() != 3 {
		t.Errorf("engine has %d bodies, want the old 3", m.eng.Len())
	}
	if m.status == "" {
		t.Error("a failed reload should surface in the status line")
	}
}

var errReload = &reloadError{}

type reloadError struct{}

func (*reloadError) Error() string { return "bad dataset" }

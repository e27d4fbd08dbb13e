package sim

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func newTestEngine() *Engine {
	cfg := DefaultConfig()
	cfg.Seed = 42
	return New(cfg)
}

func TestStepEmptyEngine(t *testing.T) {
	e := newTestEngine()
	// Must not panic with no bodies.
	for i := 0; i < 10; i++ {
		e.Step()
	}
}

func TestAlphaDecaysTowardTarget(t *testing.T) {
	e := newTestEngine()
	e.AddBody("a", r2.Vec{X: 1, Y: 1})

	start := e.Alpha()
	e.Step()
	if e.Alpha() >= start {
		t.Errorf("alpha should decay: %f -> %f", start, e.Alpha())
	}

	for i := 0; i < 500; i++ {
		e.Step()
	}
	if !e.Settled() {
		t.Errorf("engine should settle, alpha=%f", e.Alpha())
	}

	e.SetAlphaTarget(0.3)
	for i := 0; i < 200; i++ {
		e.Step()
	}
	if e.Settled() {
		t.Error("engine must stay warm while the target is elevated")
	}
	if math.Abs(e.Alpha()-0.3) > 0.05 {
		t.Errorf("alpha should approach target 0.3, got %f", e.Alpha())
	}
}

func TestPinnedBodyStaysPut(t *testing.T) {
	e := newTestEngine()
	e.AddBody("a", r2.Vec{X: 5, Y: 5})
	e.AddBody("b", r2.Vec{X: 5.5, Y: 5}) // close neighbor pushes hard
	pin := r2.Vec{X: 5, Y: 5}
	e.SetPinned("a", &pin)

	for i := 0; i < 50; i++ {
		e.Step()
	}

	pos, _ := e.Position("a")
	if pos != pin {
		t.Errorf("pinned body moved to %v", pos)
	}

	e.SetPinned("a", nil)
	e.SetAlpha(1)
	for i := 0; i < 20; i++ {
		e.Step()
	}
	pos, _ = e.Position("a")
	if pos == pin {
		t.Error("released body should move under repulsion")
	}
}

func TestSpringPullsLinkedBodiesTogether(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 7
	cfg.Repulsion = 0.5 // keep repulsion from dominating
	e := New(cfg)
	e.AddBody("a", r2.Vec{X: -40, Y: 0})
	e.AddBody("b", r2.Vec{X: 40, Y: 0})
	e.AddLink("a", "b")

	before := dist(e, "a", "b")
	for i := 0; i < 100; i++ {
		e.Step()
	}
	after := dist(e, "a", "b")

	if after >= before {
		t.Errorf("linked bodies should approach: %f -> %f", before, after)
	}
}

func TestAddLinkUnknownBodyDropped(t *testing.T) {
	e := newTestEngine()
	e.AddBody("a", r2.Vec{X: 1, Y: 0})
	e.AddLink("a", "ghost")
	e.AddLink("a", "a")
	if len(e.links) != 0 {
		t.Errorf("expected no links, got %d", len(e.links))
	}
}

func TestOnTickReportsPositions(t *testing.T) {
	e := newTestEngine()
	e.AddBody("a", r2.Vec{X: 1, Y: 2})

	var got map[string]r2.Vec
	e.OnTick(func(p map[string]r2.Vec) { got = p })
	e.Step()

	if got == nil {
		t.Fatal("tick callback not invoked")
	}
	if _, ok := got["a"]; !ok {
		t.Error("positions missing body a")
	}
}

func TestClearResetsEnergy(t *testing.T) {
	e := newTestEngine()
	e.AddBody("a", r2.Vec{X: 1, Y: 1})
	for i := 0; i < 500; i++ {
		e.Step()
	}
	e.Clear()
	if e.Len() != 0 {
		t.Error("bodies should be gone after Clear")
	}
	if e.Alpha() != 1 {
		t.Errorf("alpha should reset to 1, got %f", e.Alpha())
	}
}

func dist(e *Engine, a, b string) float64 {
	pa, _ := e.Position(a)
	pb, _ := e.Position(b)
	return math.Hypot(pa.X-pb.X, pa.Y-pb.Y)
}

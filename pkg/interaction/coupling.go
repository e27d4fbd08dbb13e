package interaction

import (
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/silsila/pkg/debug"
	"github.com/vanderheijden86/silsila/pkg/sim"
)

// CouplingConfig tunes how interaction feeds the simulation.
type CouplingConfig struct {
	// DragAlphaTarget is the energy target held while a drag is active so
	// the layout keeps reacting to the moving body.
	DragAlphaTarget float64
	// SettleThreshold is the alpha below which the layout is considered
	// calm enough to run a deferred centering move.
	SettleThreshold float64
	// ReleaseGrace is how long a released body stays pinned before the
	// integrator takes it back, letting the layout absorb the drop.
	ReleaseGrace time.Duration
	// CenterRetry is the re-check interval for a centering request that
	// found the simulation still too energetic.
	CenterRetry time.Duration
}

// DefaultCouplingConfig returns the tuning used by the TUI.
func DefaultCouplingConfig() CouplingConfig {
	return CouplingConfig{
		DragAlphaTarget: 0.3,
		SettleThreshold: 0.05,
		ReleaseGrace:    300 * time.Millisecond,
		CenterRetry:     120 * time.Millisecond,
	}
}

// Coupler mediates between the interaction state machine and the
// simulation engine: dragging pins a body and keeps the simulation warm,
// releasing schedules an unpin after a grace period, and view centering
// on an entity is deferred until the layout has calmed down so the camera
// does not chase a moving target.
//
// Like the manager, the coupler is single-threaded by contract.
type Coupler struct {
	eng *sim.Engine
	cfg CouplingConfig

	dragging string // ID of the body being dragged, "" when none
	// prevPin remembers the pin state the dragged body had before the
	// drag, so a focus-pinned body returns to its pinned spot semantics
	// rather than being silently freed.
	prevPin    *r2.Vec
	prevTarget float64

	releaseID    string
	releaseTimer Timer

	centerID    string
	centerTimer Timer
}

// NewCoupler wires a coupler to an engine.
func NewCoupler(eng *sim.Engine, cfg CouplingConfig) *Coupler {
	d := DefaultCouplingConfig()
	if cfg.DragAlphaTarget == 0 {
		cfg.DragAlphaTarget = d.DragAlphaTarget
	}
	if cfg.SettleThreshold == 0 {
		cfg.SettleThreshold = d.SettleThreshold
	}
	if cfg.ReleaseGrace == 0 {
		cfg.ReleaseGrace = d.ReleaseGrace
	}
	if cfg.CenterRetry == 0 {
		cfg.CenterRetry = d.CenterRetry
	}
	return &Coupler{eng: eng, cfg: cfg}
}

// Config returns the active tuning.
func (c *Coupler) Config() CouplingConfig { return c.cfg }

// BeginDrag pins the body at its grab point and elevates the simulation
// energy target so the rest of the layout keeps responding. The elevation
// sets the target to DragAlphaTarget rather than adding to it, so nested
// or repeated begin calls cannot ratchet the energy upward.
func (c *Coupler) BeginDrag(id string, at r2.Vec) {
	if c.dragging == id {
		// Same drag restarted; just follow the pointer.
		c.eng.SetPinned(id, &at)
		return
	}
	debug.Assert(c.dragging == "", "drag of "+id+" while "+c.dragging+" is held")

	// A pending release of this same body is superseded by the new grab.
	if c.releaseID == id {
		c.releaseTimer.Cancel()
		c.releaseID = ""
	}

	c.dragging = id
	c.prevPin = c.eng.Pinned(id)
	c.prevTarget = c.eng.AlphaTarget()
	c.eng.SetPinned(id, &at)
	if c.eng.AlphaTarget() < c.cfg.DragAlphaTarget {
		c.eng.SetAlphaTarget(c.cfg.DragAlphaTarget)
	}
}

// DragTo moves the pin of the active drag. No-op for any other body.
func (c *Coupler) DragTo(id string, at r2.Vec) {
	if c.dragging != id {
		return
	}
	c.eng.SetPinned(id, &at)
}

// EndDrag lowers the energy target back to its pre-drag value and arms
// the release-grace timer; the caller schedules ReleasePin with the
// returned token. The body stays pinned at its drop point until then.
// Returns 0 if id is not the active drag.
func (c *Coupler) EndDrag(id string) uint64 {
	if c.dragging != id {
		return 0
	}
	c.dragging = ""
	c.eng.SetAlphaTarget(c.prevTarget)
	c.prevTarget = 0

	if c.prevPin != nil {
		// The body was pinned before the drag; re-pin it where it was
		// dropped and skip the grace release entirely.
		pos, _ := c.eng.Position(id)
		c.eng.SetPinned(id, &pos)
		c.prevPin = nil
		return 0
	}

	c.releaseID = id
	return c.releaseTimer.Arm()
}

// ReleasePin frees the dropped body if gen still identifies the pending
// grace wait. A re-grab in the meantime invalidated the token, so a stale
// release can never unpin a body that is being dragged again.
func (c *Coupler) ReleasePin(gen uint64) bool {
	if !c.releaseTimer.Fire(gen) {
		return false
	}
	id := c.releaseID
	c.releaseID = ""
	c.eng.SetPinned(id, nil)
	return true
}

// Dragging returns the ID of the body currently held, or "".
func (c *Coupler) Dragging() string { return c.dragging }

// RequestCenter asks for the view to center on id once the layout is calm.
// If the simulation is already below the settle threshold the position is
// returned immediately with ok=true and gen=0. Otherwise the request is
// armed and the caller schedules TryCenter with the returned token; a
// newer request supersedes any pending one.
func (c *Coupler) RequestCenter(id string) (pos r2.Vec, ok bool, gen uint64) {
	p, found := c.eng.Position(id)
	if !found {
		return r2.Vec{}, false, 0
	}
	if c.eng.Alpha() <= c.cfg.SettleThreshold {
		return p, true, 0
	}
	c.centerID = id
	return r2.Vec{}, false, c.centerTimer.Arm()
}

// TryCenter re-checks a deferred centering request. It returns the
// position with ok=true at most once per request; again=true means the
// layout is still energetic and the caller should schedule another
// TryCenter with the same token after the retry interval.
func (c *Coupler) TryCenter(gen uint64) (pos r2.Vec, ok bool, again bool) {
	if !c.centerTimer.Live(gen) {
		return r2.Vec{}, false, false
	}
	if c.eng.Alpha() > c.cfg.SettleThreshold {
		return r2.Vec{}, false, true
	}
	c.centerTimer.Fire(gen)
	id := c.centerID
	c.centerID = ""
	p, found := c.eng.Position(id)
	return p, found, false
}

// Reset abandons any drag, pending release, and pending centering,
// restoring the pre-drag pin and energy target. Paired with
// Manager.ForceReset.
func (c *Coupler) Reset() {
	if c.dragging != "" {
		c.eng.SetPinned(c.dragging, c.prevPin)
		c.eng.SetAlphaTarget(c.prevTarget)
		c.dragging = ""
		c.prevPin = nil
		c.prevTarget = 0
	}
	if c.releaseTimer.Pending() {
		c.releaseTimer.Cancel()
		c.eng.SetPinned(c.releaseID, nil)
		c.releaseID = ""
	}
	c.centerTimer.Cancel()
	c.centerID = ""
}

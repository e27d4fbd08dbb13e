package interaction

import (
	"fmt"

	"github.com/vanderheijden86/silsila/pkg/debug"
)

// State is the interaction lifecycle. Exactly one state is active at any
// instant; this is the central invariant the manager protects.
type State int

const (
	Idle State = iota
	Hovering
	Dragging
	ClickedPinned
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Hovering:
		return "hovering"
	case Dragging:
		return "dragging"
	case ClickedPinned:
		return "pinned"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Callback receives the entity ID a transition concerns.
type Callback func(entityID string)

// Manager is the interaction state machine. It is single-threaded by
// contract: all methods must be called from the same event loop, and only
// the manager ever writes the state. Invalid transitions are rejected with
// a false return, never an error — pointer events are best-effort and the
// caller simply suppresses the visual effect.
type Manager struct {
	state  State
	entity string

	// hoverEnd is the stored end callback for the active hover pair. It is
	// non-nil exactly while an onStart has fired without its paired onEnd;
	// that is the double-invocation guard.
	hoverEnd   Callback
	hoverTimer Timer

	// suppressClick is armed by EndDrag and consumed by exactly one
	// subsequent click attempt (or discarded after one event-loop tick).
	suppressClick Timer
}

// New returns a manager in the Idle state.
func New() *Manager {
	return &Manager{}
}

// State returns the current interaction state. Read-only.
func (m *Manager) State() State { return m.state }

// Entity returns the entity the current state concerns, or "" in Idle.
func (m *Manager) Entity() string {
	if m.state == Idle {
		return ""
	}
	return m.entity
}

// StartHover attempts to begin hovering entityID. It is valid from Idle
// and from Hovering: hovering a different entity silently ends the
// previous hover (firing its onEnd) before onStart fires for the new one,
// and re-hovering the same entity is an idempotent no-op so per-frame
// pointer motion causes no callback churn. Dragging and ClickedPinned
// block hover entirely.
//
// On success onStart fires exactly once and onEnd is retained for the
// matching end — explicit, timer-driven, pre-empted, or forced.
func (m *Manager) StartHover(entityID string, onStart, onEnd Callback) bool {
	switch m.state {
	case Dragging, ClickedPinned:
		return false
	case Hovering:
		if m.entity == entityID {
			// Re-entry cancels a pending linger-out so rapid out/in on the
			// same entity coalesces into nothing.
			m.hoverTimer.Cancel()
			return true
		}
		m.finishHover()
	}

	debug.Assert(m.hoverEnd == nil, "hover onStart without prior onEnd for "+entityID)

	m.state = Hovering
	m.entity = entityID
	m.hoverEnd = onEnd
	if onStart != nil {
		onStart(entityID)
	}
	return true
}

// ScheduleHoverEnd arms the hover linger timer: the pointer has left the
// entity, and unless the hover is re-entered or ended first, the UI should
// call ExpireHover with the returned generation after the linger delay.
// Returns 0 when not hovering.
func (m *Manager) ScheduleHoverEnd() uint64 {
	if m.state != Hovering {
		return 0
	}
	return m.hoverTimer.Arm()
}

// ExpireHover is the timer path of hover teardown. It validates that gen
// still identifies the pending linger wait — a reset, re-entry, drag, or
// explicit end in the meantime makes the expiry a stale no-op.
func (m *Manager) ExpireHover(gen uint64) bool {
	if !m.hoverTimer.Fire(gen) {
		return false
	}
	if m.state != Hovering {
		// A live token implies Hovering; anything else is a state leak.
		debug.Assert(false, "hover timer fired in state "+m.state.String())
		return false
	}
	m.finishHover()
	m.state = Idle
	m.entity = ""
	return true
}

// EndHover explicitly ends the active hover: cancels any pending linger
// timer, fires the stored onEnd exactly once, and returns to Idle. No-op
// from any other state.
func (m *Manager) EndHover() {
	if m.state != Hovering {
		return
	}
	m.finishHover()
	m.state = Idle
	m.entity = ""
}

// finishHover fires and clears the stored hover end callback. The caller
// decides the successor state.
func (m *Manager) finishHover() {
	m.hoverTimer.Cancel()
	end := m.hoverEnd
	m.hoverEnd = nil
	if end != nil {
		end(m.entity)
	}
}

// StartDrag attempts to begin dragging entityID. Drag always wins over
// hover: an active hover is force-terminated (its onEnd fires) before the
// drag's onStart. Dragging from ClickedPinned is allowed without
// unpinning. The only rejection is a drag already in progress on a
// different entity, which prevents multi-pointer drag races; re-starting
// the drag on the same entity is an idempotent no-op.
func (m *Manager) StartDrag(entityID string, onStart Callback) bool {
	switch m.state {
	case Dragging:
		return m.entity == entityID
	case Hovering:
		m.finishHover()
	}

	m.state = Dragging
	m.entity = entityID
	if onStart != nil {
		onStart(entityID)
	}
	return true
}

// EndDrag finishes the active drag: onEnd fires exactly once with the
// dragged entity (callers use it to release pinning and lower simulation
// energy), the click-suppression flag is armed for the pointer-up's
// synthesized click, and the state returns to Idle. No-op from any other
// state — a racing pointer-up after a rejected second drag lands here
// harmlessly.
func (m *Manager) EndDrag(onEnd Callback) {
	if m.state != Dragging {
		return
	}
	entity := m.entity
	m.state = Idle
	m.entity = ""
	m.suppressClick.Arm()
	if onEnd != nil {
		onEnd(entity)
	}
}

// SuppressGen returns the token of the pending click suppression so the
// UI can schedule its one-tick discard. Zero when nothing is pending.
func (m *Manager) SuppressGen() uint64 {
	if !m.suppressClick.Pending() {
		return 0
	}
	return m.suppressClick.gen
}

// DiscardSuppress drops the click-suppression flag if gen is still the
// pending one. The UI calls this one event-loop tick after EndDrag so a
// stale flag cannot swallow an unrelated later click.
func (m *Manager) DiscardSuppress(gen uint64) {
	m.suppressClick.Fire(gen)
}

// HandleClick attempts to focus-pin entityID. Valid from Idle, Hovering
// (the hover pair is silently closed first), and ClickedPinned; rejected
// while Dragging and rejected once immediately after a drag release via
// the suppression flag — that pointer-up was a drag, not a click.
//
// Clicking the already-pinned entity is an idempotent no-op returning
// true; clicking a different entity re-pins, with the same onClick
// contract handling the implicit unpin of the old entity.
func (m *Manager) HandleClick(entityID string, onClick Callback) bool {
	if m.suppressClick.Pending() {
		// Consume: the flag suppresses exactly one click attempt.
		m.suppressClick.Cancel()
		return false
	}

	switch m.state {
	case Dragging:
		return false
	case ClickedPinned:
		if m.entity == entityID {
			return true
		}
	case Hovering:
		m.finishHover()
	}

	m.state = ClickedPinned
	m.entity = entityID
	if onClick != nil {
		onClick(entityID)
	}
	return true
}

// Unpin releases a ClickedPinned focus without going through a new click.
// Used for background clicks. No-op in any other state.
func (m *Manager) Unpin() {
	if m.state != ClickedPinned {
		return
	}
	m.state = Idle
	m.entity = ""
}

// ForceReset unconditionally returns to Idle from any state, firing the
// pending hover end callback if one exists (best effort) and cancelling
// every pending timer so no scheduled expiry can act afterwards. Used for
// escape-key handling and page-level resets.
func (m *Manager) ForceReset() {
	if m.state == Hovering {
		m.finishHover()
	}
	m.hoverTimer.Cancel()
	m.suppressClick.Cancel()
	m.state = Idle
	m.entity = ""
}

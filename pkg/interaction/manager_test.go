package interaction

import (
	"reflect"
	"testing"
)

// recorder collects callback invocations in order so tests can assert on
// exact sequencing, not just counts.
type recorder struct {
	calls []string
}

func (r *recorder) cb(tag string) Callback {
	return func(id string) {
		r.calls = append(r.calls, tag+":"+id)
	}
}

func (r *recorder) want(t *testing.T, calls ...string) {
	t.Helper()
	if calls == nil {
		calls = []string{}
	}
	if r.calls == nil {
		r.calls = []string{}
	}
	if !reflect.DeepEqual(r.calls, calls) {
		t.Errorf("call order mismatch\n got: %v\nwant: %v", r.calls, calls)
	}
}

func TestHoverStartEndPair(t *testing.T) {
	m := New()
	var rec recorder

	if !m.StartHover("rumi", rec.cb("hs"), rec.cb("he")) {
		t.Fatal("hover from idle should be accepted")
	}
	if m.State() != Hovering || m.Entity() != "rumi" {
		t.Errorf("state = %v/%q", m.State(), m.Entity())
	}

	m.EndHover()
	if m.State() != Idle || m.Entity() != "" {
		t.Errorf("state after end = %v/%q", m.State(), m.Entity())
	}
	rec.want(t, "hs:rumi", "he:rumi")
}

func TestHoverSameEntityIsNoop(t *testing.T) {
	m := New()
	var rec recorder

	m.StartHover("ghazali", rec.cb("hs"), rec.cb("he"))
	for i := 0; i < 5; i++ {
		if !m.StartHover("ghazali", rec.cb("hs"), rec.cb("he")) {
			t.Fatal("re-hover of the same entity should report success")
		}
	}
	rec.want(t, "hs:ghazali")
}

func TestHoverSwitchEndsFirst(t *testing.T) {
	m := New()
	var rec recorder

	m.StartHover("rumi", rec.cb("hs"), rec.cb("he"))
	m.StartHover("ghazali", rec.cb("hs"), rec.cb("he"))

	// The old pair closes before the new one opens.
	rec.want(t, "hs:rumi", "he:rumi", "hs:ghazali")
	if m.Entity() != "ghazali" {
		t.Errorf("entity = %q", m.Entity())
	}
}

func TestHoverLingerTimerExpires(t *testing.T) {
	m := New()
	var rec recorder

	m.StartHover("ibn_sina", rec.cb("hs"), rec.cb("he"))
	gen := m.ScheduleHoverEnd()
	if gen == 0 {
		t.Fatal("expected a live generation token")
	}
	if !m.ExpireHover(gen) {
		t.Fatal("expiry with a live token should tear the hover down")
	}
	if m.State() != Idle {
		t.Errorf("state = %v", m.State())
	}
	rec.want(t, "hs:ibn_sina", "he:ibn_sina")
}

func TestHoverReentryCoalescesPendingEnd(t *testing.T) {
	m := New()
	var rec recorder

	// Pointer leaves and comes back before the linger expires: the stale
	// expiry must be a no-op and the hover pair must stay open.
	m.StartHover("imam_ali", rec.cb("hs"), rec.cb("he"))
	gen := m.ScheduleHoverEnd()
	m.StartHover("imam_ali", rec.cb("hs"), rec.cb("he"))

	if m.ExpireHover(gen) {
		t.Error("stale expiry acted after re-entry")
	}
	if m.State() != Hovering || m.Entity() != "imam_ali" {
		t.Errorf("state = %v/%q", m.State(), m.Entity())
	}
	rec.want(t, "hs:imam_ali")
}

func TestStaleExpiryAfterSwitch(t *testing.T) {
	m := New()
	var rec recorder

	m.StartHover("rumi", rec.cb("hs"), rec.cb("he"))
	gen := m.ScheduleHoverEnd()
	m.StartHover("hafez", rec.cb("hs"), rec.cb("he"))

	if m.ExpireHover(gen) {
		t.Error("expiry for the old hover acted after a switch")
	}
	if m.Entity() != "hafez" {
		t.Errorf("entity = %q", m.Entity())
	}
	rec.want(t, "hs:rumi", "he:rumi", "hs:hafez")
}

func TestDragPreemptsHover(t *testing.T) {
	m := New()
	var rec recorder

	m.StartHover("rumi", rec.cb("hs"), rec.cb("he"))
	m.ScheduleHoverEnd()
	if !m.StartDrag("rumi", rec.cb("ds")) {
		t.Fatal("drag should pre-empt hover")
	}

	// Hover closes before the drag opens, and the linger timer is dead.
	rec.want(t, "hs:rumi", "he:rumi", "ds:rumi")
	if m.State() != Dragging {
		t.Errorf("state = %v", m.State())
	}

	m.EndDrag(rec.cb("de"))
	rec.want(t, "hs:rumi", "he:rumi", "ds:rumi", "de:rumi")
	if m.State() != Idle {
		t.Errorf("state = %v", m.State())
	}
}

func TestHoverRejectedWhileDragging(t *testing.T) {
	m := New()
	var rec recorder

	m.StartDrag("rumi", rec.cb("ds"))
	if m.StartHover("ghazali", rec.cb("hs"), rec.cb("he")) {
		t.Error("hover must be rejected during a drag")
	}
	rec.want(t, "ds:rumi")
}

func TestSecondPointerDragRejected(t *testing.T) {
	m := New()
	var rec recorder

	m.StartDrag("rumi", rec.cb("ds"))
	if m.StartDrag("ghazali", rec.cb("ds")) {
		t.Error("a second concurrent drag must be rejected")
	}
	// Restarting the same drag is tolerated without a second callback.
	if !m.StartDrag("rumi", rec.cb("ds")) {
		t.Error("same-entity drag restart should be tolerated")
	}
	rec.want(t, "ds:rumi")
	if m.Entity() != "rumi" {
		t.Errorf("entity = %q", m.Entity())
	}
}

func TestClickSuppressedAfterDrag(t *testing.T) {
	m := New()
	var rec recorder

	m.StartDrag("rumi", rec.cb("ds"))
	m.EndDrag(rec.cb("de"))

	// The pointer-up that ended the drag synthesizes a click; it must be
	// swallowed exactly once.
	if m.HandleClick("rumi", rec.cb("ck")) {
		t.Error("the drag-release click must be suppressed")
	}
	if !m.HandleClick("rumi", rec.cb("ck")) {
		t.Error("a later click must go through")
	}
	rec.want(t, "ds:rumi", "de:rumi", "ck:rumi")
}

func TestSuppressFlagDiscardedAfterTick(t *testing.T) {
	m := New()
	var rec recorder

	m.StartDrag("rumi", rec.cb("ds"))
	m.EndDrag(rec.cb("de"))

	gen := m.SuppressGen()
	if gen == 0 {
		t.Fatal("expected a pending suppression")
	}
	m.DiscardSuppress(gen)

	if !m.HandleClick("rumi", rec.cb("ck")) {
		t.Error("click after the discard tick must go through")
	}
	rec.want(t, "ds:rumi", "de:rumi", "ck:rumi")
}

func TestClickPinsAndRepins(t *testing.T) {
	m := New()
	var rec recorder

	if !m.HandleClick("rumi", rec.cb("ck")) {
		t.Fatal("click from idle should be accepted")
	}
	if m.State() != ClickedPinned || m.Entity() != "rumi" {
		t.Errorf("state = %v/%q", m.State(), m.Entity())
	}

	// Same entity: idempotent, no second callback.
	if !m.HandleClick("rumi", rec.cb("ck")) {
		t.Error("re-click of the pinned entity should report success")
	}

	// Different entity: re-pin with a fresh callback.
	if !m.HandleClick("ghazali", rec.cb("ck")) {
		t.Error("click on a different entity should re-pin")
	}
	rec.want(t, "ck:rumi", "ck:ghazali")
	if m.Entity() != "ghazali" {
		t.Errorf("entity = %q", m.Entity())
	}
}

func TestClickFromHoverClosesPairFirst(t *testing.T) {
	m := New()
	var rec recorder

	m.StartHover("rumi", rec.cb("hs"), rec.cb("he"))
	m.HandleClick("rumi", rec.cb("ck"))

	rec.want(t, "hs:rumi", "he:rumi", "ck:rumi")
	if m.State() != ClickedPinned {
		t.Errorf("state = %v", m.State())
	}
}

func TestHoverRejectedWhilePinned(t *testing.T) {
	m := New()
	var rec recorder

	m.HandleClick("rumi", rec.cb("ck"))
	if m.StartHover("ghazali", rec.cb("hs"), rec.cb("he")) {
		t.Error("hover must be rejected while focus-pinned")
	}
	rec.want(t, "ck:rumi")
}

func TestDragAllowedFromPinned(t *testing.T) {
	m := New()
	var rec recorder

	m.HandleClick("rumi", rec.cb("ck"))
	if !m.StartDrag("rumi", rec.cb("ds")) {
		t.Error("dragging the pinned entity should be allowed")
	}
	rec.want(t, "ck:rumi", "ds:rumi")
}

func TestUnpin(t *testing.T) {
	m := New()
	m.HandleClick("rumi", nil)
	m.Unpin()
	if m.State() != Idle {
		t.Errorf("state = %v", m.State())
	}
	// Unpin outside ClickedPinned does nothing.
	m.StartHover("rumi", nil, nil)
	m.Unpin()
	if m.State() != Hovering {
		t.Errorf("state = %v", m.State())
	}
}

func TestForceResetFromEveryState(t *testing.T) {
	t.Run("idle", func(t *testing.T) {
		m := New()
		m.ForceReset()
		if m.State() != Idle {
			t.Errorf("state = %v", m.State())
		}
	})

	t.Run("hovering", func(t *testing.T) {
		m := New()
		var rec recorder
		m.StartHover("rumi", rec.cb("hs"), rec.cb("he"))
		gen := m.ScheduleHoverEnd()
		m.ForceReset()
		if m.State() != Idle {
			t.Errorf("state = %v", m.State())
		}
		// The pending end fires during the reset, not again on expiry.
		rec.want(t, "hs:rumi", "he:rumi")
		if m.ExpireHover(gen) {
			t.Error("expiry acted after a reset")
		}
	})

	t.Run("dragging", func(t *testing.T) {
		m := New()
		var rec recorder
		m.StartDrag("rumi", rec.cb("ds"))
		m.ForceReset()
		if m.State() != Idle {
			t.Errorf("state = %v", m.State())
		}
		// No suppression was armed; the next click goes through.
		if !m.HandleClick("rumi", rec.cb("ck")) {
			t.Error("click after reset must go through")
		}
		rec.want(t, "ds:rumi", "ck:rumi")
	})

	t.Run("pinned", func(t *testing.T) {
		m := New()
		m.HandleClick("rumi", nil)
		m.ForceReset()
		if m.State() != Idle || m.Entity() != "" {
			t.Errorf("state = %v/%q", m.State(), m.Entity())
		}
	})
}

func TestEndDragOutsideDragIsNoop(t *testing.T) {
	m := New()
	var rec recorder
	m.EndDrag(rec.cb("de"))
	rec.want(t)
	if m.SuppressGen() != 0 {
		t.Error("no suppression should be armed by a no-op end")
	}
}

func TestScheduleHoverEndOutsideHover(t *testing.T) {
	m := New()
	if gen := m.ScheduleHoverEnd(); gen != 0 {
		t.Errorf("gen = %d, want 0", gen)
	}
}

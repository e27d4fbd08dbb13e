package interaction

// Timer is a cancellable logical timer. Arm returns a generation token;
// the holder schedules a wakeup however it likes (the TUI uses tea.Tick)
// and calls Fire with the token when the wakeup arrives. Arming again or
// cancelling invalidates all earlier tokens, so overlapping waits for the
// same logical purpose collapse to the newest one and a callback can never
// act on behalf of a cancelled wait.
type Timer struct {
	gen   uint64
	armed bool
}

// Arm starts (or restarts) the timer and returns the token identifying
// this arming. Any previously issued token is invalidated.
func (t *Timer) Arm() uint64 {
	t.gen++
	t.armed = true
	return t.gen
}

// Cancel invalidates the pending arming, if any.
func (t *Timer) Cancel() {
	t.armed = false
}

// Live reports whether gen identifies the current pending arming.
func (t *Timer) Live(gen uint64) bool {
	return t.armed && gen == t.gen
}

// Fire consumes the pending arming if gen is current. It returns true
// exactly once per arming: for stale tokens, cancelled timers, and
// repeated fires it returns false.
func (t *Timer) Fire(gen uint64) bool {
	if !t.Live(gen) {
		return false
	}
	t.armed = false
	return true
}

// Pending reports whether the timer has an un-fired arming.
func (t *Timer) Pending() bool {
	return t.armed
}

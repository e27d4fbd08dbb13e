// Package interaction is the single authority over hover, drag, and click
// on the live graph. It owns the one process-wide interaction state and
// arbitrates which pointer source may act at any instant; every other
// component reads the state through accessors and never mutates it.
//
// The package is deliberately free of rendering and event-loop concerns:
// visual effects happen through callbacks supplied per transition, and
// time is modeled as generation-token timers (see Timer) that the UI maps
// onto its own tick scheduling. A timer expiry that arrives after the
// state moved on — a reset, a newer hover, a pre-empting drag — validates
// its generation and becomes a no-op instead of firing a stale callback.
package interaction

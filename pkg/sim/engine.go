// Package sim implements the force-directed layout engine: spring forces
// along relations, pairwise repulsion, center gravity, and d3-style alpha
// cooling. The engine owns body positions; callers may pin individual
// bodies, which overrides the integrator for that body only.
package sim

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// Config tunes the force model. Zero values are replaced by defaults in New.
type Config struct {
	SpringLength   float64 // rest length of relation springs
	SpringStrength float64
	Repulsion      float64 // many-body repulsion constant
	Gravity        float64 // pull toward the layout center
	VelocityDecay  float64 // per-step velocity damping, 0..1
	AlphaDecay     float64 // per-step blend toward the alpha target
	AlphaMin       float64 // below this (with a zero target) the sim is settled
	Width, Height  float64 // layout extent used for seeding positions
	Seed           int64   // position seeding; 0 picks a fixed default
}

// DefaultConfig returns the tuning used by the TUI.
func DefaultConfig() Config {
	return Config{
		SpringLength:   6,
		SpringStrength: 0.08,
		Repulsion:      24,
		Gravity:        0.015,
		VelocityDecay:  0.6,
		AlphaDecay:     0.05,
		AlphaMin:       0.005,
		Width:          120,
		Height:         80,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.SpringLength == 0 {
		c.SpringLength = d.SpringLength
	}
	if c.SpringStrength == 0 {
		c.SpringStrength = d.SpringStrength
	}
	if c.Repulsion == 0 {
		c.Repulsion = d.Repulsion
	}
	if c.Gravity == 0 {
		c.Gravity = d.Gravity
	}
	if c.VelocityDecay == 0 {
		c.VelocityDecay = d.VelocityDecay
	}
	if c.AlphaDecay == 0 {
		c.AlphaDecay = d.AlphaDecay
	}
	if c.AlphaMin == 0 {
		c.AlphaMin = d.AlphaMin
	}
	if c.Width == 0 {
		c.Width = d.Width
	}
	if c.Height == 0 {
		c.Height = d.Height
	}
}

// Body is a simulated node. Pos is authoritative; when pinned is non-nil
// the integrator copies it over Pos every step instead of integrating.
type Body struct {
	ID     string
	Pos    r2.Vec
	Vel    r2.Vec
	pinned *r2.Vec
}

// Link is a spring between two bodies.
type Link struct {
	Source, Target string
}

// Engine advances the simulation one Step at a time. It is not safe for
// concurrent use; the UI drives it from a single event loop.
type Engine struct {
	cfg    Config
	bodies map[string]*Body
	order  []string // deterministic iteration order
	links  []Link
	rng    *rand.Rand

	alpha       float64
	alphaTarget float64

	onTick func(positions map[string]r2.Vec)
}

// New creates an engine with no bodies and full initial energy.
func New(cfg Config) *Engine {
	cfg.applyDefaults()
	seed := cfg.Seed
	if seed == 0 {
		seed = 1
	}
	return &Engine{
		cfg:    cfg,
		bodies: make(map[string]*Body),
		rng:    rand.New(rand.NewSource(seed)),
		alpha:  1,
	}
}

// AddBody registers a body. A zero position seeds a random spot inside the
// layout extent so a fresh graph does not start collapsed at the origin.
// Adding an existing ID moves the body instead of duplicating it.
func (e *Engine) AddBody(id string, pos r2.Vec) {
	if b, ok := e.bodies[id]; ok {
		b.Pos = pos
		return
	}
	if pos.X == 0 && pos.Y == 0 {
		pos = r2.Vec{
			X: (e.rng.Float64() - 0.5) * e.cfg.Width,
			Y: (e.rng.Float64() - 0.5) * e.cfg.Height,
		}
	}
	e.bodies[id] = &Body{ID: id, Pos: pos}
	e.order = append(e.order, id)
}

// AddLink registers a spring. Links naming unknown bodies are dropped.
func (e *Engine) AddLink(source, target string) {
	if _, ok := e.bodies[source]; !ok {
		return
	}
	if _, ok := e.bodies[target]; !ok {
		return
	}
	if source == target {
		return
	}
	e.links = append(e.links, Link{Source: source, Target: target})
}

// Clear removes all bodies and links and restores full energy. Used when
// the dataset is reloaded.
func (e *Engine) Clear() {
	e.bodies = make(map[string]*Body)
	e.order = nil
	e.links = nil
	e.alpha = 1
	e.alphaTarget = 0
}

// SetPinned overrides the computed position for one body. Passing nil
// releases the pin and lets the integrator take over again.
func (e *Engine) SetPinned(id string, pos *r2.Vec) {
	b, ok := e.bodies[id]
	if !ok {
		return
	}
	if pos == nil {
		b.pinned = nil
		return
	}
	p := *pos
	b.pinned = &p
	b.Pos = p
	b.Vel = r2.Vec{}
}

// Pinned returns the pin override for id, or nil if the body is free.
func (e *Engine) Pinned(id string) *r2.Vec {
	b, ok := e.bodies[id]
	if !ok || b.pinned == nil {
		return nil
	}
	p := *b.pinned
	return &p
}

// Alpha reports the current simulation energy. Near zero means settled.
func (e *Engine) Alpha() float64 { return e.alpha }

// SetAlpha sets the energy directly. Mostly useful for reheating after a
// dataset change and for tests.
func (e *Engine) SetAlpha(a float64) { e.alpha = clamp01(a) }

// AlphaTarget reports the value alpha decays toward.
func (e *Engine) AlphaTarget() float64 { return e.alphaTarget }

// SetAlphaTarget changes the value alpha decays toward. A positive target
// keeps the simulation warm (used while dragging); zero lets it settle.
func (e *Engine) SetAlphaTarget(t float64) { e.alphaTarget = clamp01(t) }

// Settled reports whether energy has fallen below min with no elevation
// requested.
func (e *Engine) Settled() bool {
	return e.alphaTarget < e.cfg.AlphaMin && e.alpha < e.cfg.AlphaMin
}

// OnTick registers the per-frame callback invoked after each Step with the
// updated positions. Only one callback is kept.
func (e *Engine) OnTick(fn func(positions map[string]r2.Vec)) {
	e.onTick = fn
}

// Position returns the current position of a body.
func (e *Engine) Position(id string) (r2.Vec, bool) {
	b, ok := e.bodies[id]
	if !ok {
		return r2.Vec{}, false
	}
	return b.Pos, true
}

// Positions returns a snapshot of all body positions.
func (e *Engine) Positions() map[string]r2.Vec {
	out := make(map[string]r2.Vec, len(e.bodies))
	for id, b := range e.bodies {
		out[id] = b.Pos
	}
	return out
}

// Len returns the number of bodies.
func (e *Engine) Len() int { return len(e.bodies) }

// Step advances the simulation one frame: cool alpha toward its target,
// accumulate forces scaled by alpha, integrate, and copy pins over their
// bodies. Settled simulations return immediately so an idle UI costs
// nothing per frame.
func (e *Engine) Step() {
	e.alpha += (e.alphaTarget - e.alpha) * e.cfg.AlphaDecay
	if e.Settled() {
		e.alpha = 0
		e.notify()
		return
	}

	forces := make(map[string]r2.Vec, len(e.bodies))

	// Pairwise repulsion.
	for i := 0; i < len(e.order); i++ {
		a := e.bodies[e.order[i]]
		for j := i + 1; j < len(e.order); j++ {
			b := e.bodies[e.order[j]]
			d := r2.Sub(a.Pos, b.Pos)
			dist := math.Hypot(d.X, d.Y)
			if dist < 0.01 {
				// Coincident bodies get a deterministic nudge.
				d = r2.Vec{X: 0.01 * float64(i-j), Y: 0.01}
				dist = 0.015
			}
			f := r2.Scale(e.cfg.Repulsion/(dist*dist), r2.Scale(1/dist, d))
			forces[a.ID] = r2.Add(forces[a.ID], f)
			forces[b.ID] = r2.Sub(forces[b.ID], f)
		}
	}

	// Spring attraction along links.
	for _, l := range e.links {
		a := e.bodies[l.Source]
		b := e.bodies[l.Target]
		d := r2.Sub(b.Pos, a.Pos)
		dist := math.Hypot(d.X, d.Y)
		if dist < 0.01 {
			continue
		}
		stretch := dist - e.cfg.SpringLength
		f := r2.Scale(e.cfg.SpringStrength*stretch/dist, d)
		forces[a.ID] = r2.Add(forces[a.ID], f)
		forces[b.ID] = r2.Sub(forces[b.ID], f)
	}

	// Center gravity and integration.
	for _, id := range e.order {
		b := e.bodies[id]
		if b.pinned != nil {
			b.Pos = *b.pinned
			b.Vel = r2.Vec{}
			continue
		}
		f := r2.Sub(forces[id], r2.Scale(e.cfg.Gravity, b.Pos))
		b.Vel = r2.Scale(e.cfg.VelocityDecay, r2.Add(b.Vel, r2.Scale(e.alpha, f)))
		b.Pos = r2.Add(b.Pos, b.Vel)
	}

	e.notify()
}

func (e *Engine) notify() {
	if e.onTick != nil {
		e.onTick(e.Positions())
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

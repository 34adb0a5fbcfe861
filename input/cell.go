// Package input carries pointer samples from the input sampler to the update
// step.
package input

import "github.com/jakecoffman/cp"

// Cell is a latest-value cell. The input sampler writes the most recent pointer
// position; the update step reads it once per frame. Older samples are
// overwritten, never queued. Both sides run on the game loop, so no locking.
type Cell struct {
	pos cp.Vector
	set bool
}

func (c *Cell) Store(x, y float64) {
	c.pos = cp.Vector{X: x, Y: y}
	c.set = true
}

// Load returns the latest position, or fallback when nothing was stored yet.
func (c *Cell) Load(fallback cp.Vector) cp.Vector {
	if c == nil || !c.set {
		return fallback
	}
	return c.pos
}

func (c *Cell) HasValue() bool {
	return c != nil && c.set
}

// Sampler turns polled cursor positions into move events: a sample is stored
// only when it differs from the previous poll. The first poll only primes the
// sampler, so a cursor parked at the window origin does not count as movement.
type Sampler struct {
	cell   *Cell
	lastX  int
	lastY  int
	primed bool
}

func NewSampler(cell *Cell) *Sampler {
	return &Sampler{cell: cell}
}

// Sample records (x, y) and reports whether it was a move.
func (s *Sampler) Sample(x, y int) bool {
	if !s.primed {
		s.lastX, s.lastY = x, y
		s.primed = true
		return false
	}
	if x == s.lastX && y == s.lastY {
		return false
	}
	s.lastX, s.lastY = x, y
	s.cell.Store(float64(x), float64(y))
	return true
}

// Package motion turns pointer movement into a smoothed speed and a frame index.
package motion

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/flashlight/common"
	"github.com/milk9111/flashlight/tuning"
)

// State is a read-only snapshot handed to the draw phase.
type State struct {
	Smoothed     cp.Vector
	Speed        float64
	Displacement float64
	FrameCount   int
	Index        int
	DriftOffset  float64
}

// Model owns all per-session motion state. Only Update mutates it.
type Model struct {
	cfg    tuning.MotionSpec
	frames int
	drift  Drift

	smoothed     cp.Vector
	speed        float64
	displacement float64
	frameCount   int
	index        int
	driftOffset  float64
}

// NewModel starts a session with the smoothed pointer at center and zero speed.
// A nil drift behaves like FreezeDrift.
func NewModel(cfg tuning.MotionSpec, frames int, center cp.Vector, drift Drift) *Model {
	if drift == nil {
		drift = FreezeDrift{}
	}
	return &Model{
		cfg:      cfg,
		frames:   frames,
		drift:    drift,
		smoothed: center,
	}
}

// Update advances one frame toward target.
func (m *Model) Update(target cp.Vector) {
	if !finite(target) {
		target = m.smoothed
	}

	prev := m.smoothed
	m.smoothed = prev.Lerp(target, m.cfg.SmoothFactor)
	m.displacement = m.smoothed.Distance(prev)
	m.speed = Step(m.cfg, m.speed, m.displacement)
	m.frameCount++

	base := baseIndex(m.cfg, m.frames, m.speed)
	m.driftOffset = m.drift.Offset(m.frameCount, m.speed)
	if math.IsNaN(m.driftOffset) || math.IsInf(m.driftOffset, 0) {
		m.driftOffset = 0
	}
	m.index = common.ClampInt(int(math.Floor(base+m.driftOffset)), 0, m.frames-1)
}

// Retune swaps the motion constants and drift policy without touching state.
func (m *Model) Retune(cfg tuning.MotionSpec, drift Drift) {
	if drift == nil {
		drift = FreezeDrift{}
	}
	m.cfg = cfg
	m.drift = drift
}

func (m *Model) Snapshot() State {
	return State{
		Smoothed:     m.smoothed,
		Speed:        m.speed,
		Displacement: m.displacement,
		FrameCount:   m.frameCount,
		Index:        m.index,
		DriftOffset:  m.driftOffset,
	}
}

func (m *Model) Speed() float64 { return m.speed }

func (m *Model) Index() int { return m.index }

// Step applies the asymmetric speed policy for one displacement sample.
// Below the stop epsilon speed is frozen; rising motion uses the attack
// factor, falling motion the much slower decay factor.
func Step(cfg tuning.MotionSpec, speed, displacement float64) float64 {
	if displacement < cfg.StopEpsilon {
		return speed
	}
	if displacement > speed {
		return common.Lerp(speed, displacement, cfg.AttackFactor)
	}
	return common.Lerp(speed, displacement, cfg.DecayFactor)
}

// IndexFor maps speed onto [0, frames-1] with no drift applied.
func IndexFor(cfg tuning.MotionSpec, frames int, speed float64) int {
	return common.ClampInt(int(math.Floor(baseIndex(cfg, frames, speed))), 0, frames-1)
}

func baseIndex(cfg tuning.MotionSpec, frames int, speed float64) float64 {
	if frames <= 1 || cfg.MaxSpeed <= 0 || math.IsNaN(speed) {
		return 0
	}
	ratio := common.Clamp(speed/cfg.MaxSpeed, 0, 1)
	eased := math.Pow(ratio, cfg.EaseExponent)
	return math.Floor(eased * float64(frames-1))
}

func finite(v cp.Vector) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

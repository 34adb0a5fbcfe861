package motion

import (
	"fmt"
	"log"
	"math"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/flashlight/tuning"
)

// Drift adds an index offset that can move the frame while the pointer rests.
type Drift interface {
	Offset(frame int, speed float64) float64
}

// FreezeDrift keeps the index where speed put it.
type FreezeDrift struct{}

func (FreezeDrift) Offset(int, float64) float64 { return 0 }

// BreathingDrift sways through the first few frames on a slow sine.
type BreathingDrift struct {
	Rate      float64
	Amplitude float64
}

func (b BreathingDrift) Offset(frame int, _ float64) float64 {
	return math.Abs(math.Sin(float64(frame)*b.Rate)) * b.Amplitude
}

// ScriptDrift evaluates a tengo script every frame. The script sees frame,
// speed and frames and must assign offset.
type ScriptDrift struct {
	compiled *tengo.Compiled
	failed   bool
}

func NewScriptDrift(src []byte, frames int) (*ScriptDrift, error) {
	script := tengo.NewScript(src)
	_ = script.Add("frame", 0)
	_ = script.Add("speed", 0.0)
	_ = script.Add("frames", frames)
	_ = script.Add("offset", 0.0)
	script.SetImports(stdlib.GetModuleMap("math"))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("motion: compile drift script: %w", err)
	}
	return &ScriptDrift{compiled: compiled}, nil
}

// Offset runs the script. A runtime error is logged once and the drift falls
// back to zero for the rest of the session.
func (s *ScriptDrift) Offset(frame int, speed float64) float64 {
	if s == nil || s.failed {
		return 0
	}
	if err := s.run(frame, speed); err != nil {
		log.Printf("motion: drift script: %v", err)
		s.failed = true
		return 0
	}
	return s.compiled.Get("offset").Float()
}

func (s *ScriptDrift) run(frame int, speed float64) error {
	if err := s.compiled.Set("frame", frame); err != nil {
		return err
	}
	if err := s.compiled.Set("speed", speed); err != nil {
		return err
	}
	return s.compiled.Run()
}

// NewDrift builds the drift policy named by cfg.IdleDrift.
func NewDrift(cfg tuning.MotionSpec, frames int) (Drift, error) {
	switch cfg.IdleDrift {
	case tuning.DriftBreathing:
		return BreathingDrift{Rate: cfg.BreathingRate, Amplitude: cfg.BreathingAmplitude}, nil
	case tuning.DriftScript:
		src, err := tuning.LoadScript(cfg.DriftScript)
		if err != nil {
			return nil, fmt.Errorf("motion: load drift script %s: %w", cfg.DriftScript, err)
		}
		return NewScriptDrift(src, frames)
	case tuning.DriftFreeze, "":
		return FreezeDrift{}, nil
	default:
		return nil, fmt.Errorf("motion: unknown idle drift %q", cfg.IdleDrift)
	}
}

package motion

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/flashlight/tuning"
)

func TestBreathingDrift(t *testing.T) {
	b := BreathingDrift{Rate: 0.02, Amplitude: 12}
	cases := []struct {
		frame int
		want  float64
	}{
		{0, 0},
		{25, math.Abs(math.Sin(0.5)) * 12},
		{79, math.Abs(math.Sin(1.58)) * 12},
		{200, math.Abs(math.Sin(4)) * 12},
	}
	for _, c := range cases {
		if got := b.Offset(c.frame, 0); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("Offset(%d) = %v, want %v", c.frame, got, c.want)
		}
		if got := b.Offset(c.frame, 0); got < 0 || got > 12 {
			t.Fatalf("Offset(%d) = %v out of [0,12]", c.frame, got)
		}
	}
}

func TestModelAppliesDriftAndClamps(t *testing.T) {
	c := cfg()
	m := NewModel(c, frames, cp.Vector{}, BreathingDrift{Rate: 0.02, Amplitude: 12})
	for i := 0; i < 79; i++ {
		m.Update(cp.Vector{})
	}
	s := m.Snapshot()
	if s.Index != int(math.Floor(s.DriftOffset)) || s.Index == 0 {
		t.Fatalf("expected drift to move resting index, got %+v", s)
	}

	huge := NewModel(c, frames, cp.Vector{}, BreathingDrift{Rate: 1, Amplitude: 1e6})
	huge.Update(cp.Vector{})
	if got := huge.Index(); got != frames-1 {
		t.Fatalf("drift beyond range should clamp to %d, got %d", frames-1, got)
	}
}

func TestScriptDrift(t *testing.T) {
	src := []byte(`offset = frame * 0.5 + speed`)
	d, err := NewScriptDrift(src, frames)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if got := d.Offset(4, 1.5); got != 3.5 {
		t.Fatalf("expected 3.5, got %v", got)
	}
	if got := d.Offset(10, 0); got != 5 {
		t.Fatalf("expected 5, got %v", got)
	}
}

func TestScriptDriftCompileError(t *testing.T) {
	if _, err := NewScriptDrift([]byte(`offset = = 1`), frames); err == nil {
		t.Fatalf("expected compile error")
	}
}

func TestScriptDriftRuntimeErrorFallsBackToZero(t *testing.T) {
	d, err := NewScriptDrift([]byte(`offset = "drift" - frame`), frames)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if got := d.Offset(3, 0); got != 0 {
		t.Fatalf("runtime error should yield 0, got %v", got)
	}
	if got := d.Offset(4, 0); got != 0 {
		t.Fatalf("failed script should stay disabled, got %v", got)
	}
}

func TestNewDriftPolicies(t *testing.T) {
	c := cfg()

	cases := []struct {
		policy tuning.DriftPolicy
		check  func(t *testing.T, d Drift)
	}{
		{tuning.DriftFreeze, func(t *testing.T, d Drift) {
			if _, ok := d.(FreezeDrift); !ok {
				t.Fatalf("expected FreezeDrift, got %T", d)
			}
		}},
		{tuning.DriftBreathing, func(t *testing.T, d Drift) {
			b, ok := d.(BreathingDrift)
			if !ok || b.Rate != 0.02 || b.Amplitude != 12 {
				t.Fatalf("expected default BreathingDrift, got %#v", d)
			}
		}},
		{tuning.DriftScript, func(t *testing.T, d Drift) {
			if _, ok := d.(*ScriptDrift); !ok {
				t.Fatalf("expected *ScriptDrift, got %T", d)
			}
			// the bundled script is calm-only: fast motion yields no drift
			if got := d.Offset(79, 50); got != 0 {
				t.Fatalf("bundled script should not drift at speed 50, got %v", got)
			}
			if got := d.Offset(79, 0); got <= 0 {
				t.Fatalf("bundled script should drift at rest, got %v", got)
			}
		}},
	}

	for _, tc := range cases {
		t.Run(string(tc.policy), func(t *testing.T) {
			c.IdleDrift = tc.policy
			d, err := NewDrift(c, frames)
			if err != nil {
				t.Fatalf("NewDrift(%s): %v", tc.policy, err)
			}
			tc.check(t, d)
		})
	}

	c.IdleDrift = "wobble"
	if _, err := NewDrift(c, frames); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}

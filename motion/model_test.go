package motion

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/flashlight/tuning"
)

const frames = 96

func cfg() tuning.MotionSpec {
	return tuning.Default().Motion
}

func TestIndexAlwaysInRange(t *testing.T) {
	c := cfg()
	for speed := 0.0; speed <= 500; speed += 0.25 {
		idx := IndexFor(c, frames, speed)
		if idx < 0 || idx > frames-1 {
			t.Fatalf("speed %v produced out-of-range index %d", speed, idx)
		}
	}
	if got := IndexFor(c, frames, math.Inf(1)); got != frames-1 {
		t.Fatalf("infinite speed should pin to last frame, got %d", got)
	}
	if got := IndexFor(c, 1, 30); got != 0 {
		t.Fatalf("single frame set should always select 0, got %d", got)
	}
}

func TestIndexMonotonicInSpeed(t *testing.T) {
	c := cfg()
	prev := IndexFor(c, frames, 0)
	for speed := 0.1; speed <= c.MaxSpeed; speed += 0.1 {
		idx := IndexFor(c, frames, speed)
		if idx < prev {
			t.Fatalf("index decreased from %d to %d at speed %v", prev, idx, speed)
		}
		prev = idx
	}
}

func TestIndexScenarios(t *testing.T) {
	c := cfg()
	cases := []struct {
		name  string
		speed float64
		want  int
	}{
		{"rest", 0, 0},
		{"max_speed", 50, 95},
		{"beyond_max", 80, 95},
		{"half", 25, int(math.Floor(math.Pow(0.5, 1.1) * 95))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IndexFor(c, frames, tc.speed); got != tc.want {
				t.Fatalf("IndexFor(%v) = %d, want %d", tc.speed, got, tc.want)
			}
		})
	}
}

func TestStepFreezesBelowEpsilon(t *testing.T) {
	c := cfg()
	speed := 10.0
	for i, d := range []float64{0, 0, 0} {
		speed = Step(c, speed, d)
		if speed != 10 {
			t.Fatalf("update %d: speed changed to %v under freeze", i, speed)
		}
	}
	if got := Step(c, 10, 0.49); got != 10 {
		t.Fatalf("displacement just below epsilon should freeze, got %v", got)
	}
}

func TestStepAttackFasterThanDecay(t *testing.T) {
	c := cfg()

	const burst = 20.0
	risen := Step(c, 0, burst)
	if want := 0.15 * burst; math.Abs(risen-want) > 1e-9 {
		t.Fatalf("attack step: got %v, want %v", risen, want)
	}

	const calm = 1.0
	fallen := Step(c, risen, calm)
	if fallen >= risen {
		t.Fatalf("decay step should lower speed, %v -> %v", risen, fallen)
	}

	riseFraction := risen / burst
	fallFraction := (risen - fallen) / (risen - calm)
	if riseFraction <= fallFraction {
		t.Fatalf("attack covered %.3f of its gap, decay %.3f; attack must be faster", riseFraction, fallFraction)
	}
}

func TestStepNeverNegative(t *testing.T) {
	c := cfg()
	speed := 0.0
	for _, d := range []float64{3, 40, 0.6, 0.7, 100, 0.51, 0, 2} {
		speed = Step(c, speed, d)
		if speed < 0 {
			t.Fatalf("speed went negative: %v", speed)
		}
	}
}

func TestModelStartsAtCenter(t *testing.T) {
	center := cp.Vector{X: 640, Y: 360}
	m := NewModel(cfg(), frames, center, nil)
	m.Update(center)

	s := m.Snapshot()
	if !near(s.Smoothed, center) {
		t.Fatalf("expected smoothed at center, got %v", s.Smoothed)
	}
	if s.Speed != 0 || s.Index != 0 || s.FrameCount != 1 {
		t.Fatalf("unexpected state after idle frame: %+v", s)
	}
}

func TestModelSmoothsTowardTarget(t *testing.T) {
	m := NewModel(cfg(), frames, cp.Vector{}, nil)
	m.Update(cp.Vector{X: 100, Y: 0})

	s := m.Snapshot()
	if math.Abs(s.Smoothed.X-8) > 1e-9 || s.Smoothed.Y != 0 {
		t.Fatalf("expected smoothed (8,0), got %v", s.Smoothed)
	}
	if math.Abs(s.Displacement-8) > 1e-9 {
		t.Fatalf("expected displacement 8, got %v", s.Displacement)
	}
	if want := 0.15 * 8; math.Abs(s.Speed-want) > 1e-9 {
		t.Fatalf("expected attack speed %v, got %v", want, s.Speed)
	}
}

func TestModelIgnoresNaNTarget(t *testing.T) {
	center := cp.Vector{X: 50, Y: 50}
	m := NewModel(cfg(), frames, center, nil)
	m.Update(cp.Vector{X: math.NaN(), Y: 10})

	s := m.Snapshot()
	if !near(s.Smoothed, center) || s.Speed != 0 {
		t.Fatalf("NaN target must not move state, got %+v", s)
	}
}

func TestModelLingersAfterFastMotion(t *testing.T) {
	m := NewModel(cfg(), frames, cp.Vector{}, nil)
	for i := 0; i < 30; i++ {
		m.Update(cp.Vector{X: float64(i+1) * 400})
	}
	peak := m.Index()
	if peak == 0 {
		t.Fatalf("expected fast motion to raise index")
	}

	// pointer stops; smoothing keeps drifting so displacement stays above
	// the freeze threshold for a while and speed decays slowly
	target := cp.Vector{X: 30 * 400}
	for i := 0; i < 5; i++ {
		m.Update(target)
	}
	if m.Index() < peak/2 {
		t.Fatalf("index fell from %d to %d within 5 frames; decay should linger", peak, m.Index())
	}
}

func TestModelFrameCountMonotonic(t *testing.T) {
	m := NewModel(cfg(), frames, cp.Vector{}, nil)
	for i := 1; i <= 10; i++ {
		m.Update(cp.Vector{})
		if got := m.Snapshot().FrameCount; got != i {
			t.Fatalf("frame count %d after %d updates", got, i)
		}
	}
}

func near(a, b cp.Vector) bool {
	return a.Distance(b) < 1e-9
}

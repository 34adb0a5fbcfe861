package tuning

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type FitPolicy string

const (
	FitCover   FitPolicy = "cover"
	FitStretch FitPolicy = "stretch"
)

type DriftPolicy string

const (
	DriftFreeze    DriftPolicy = "freeze"
	DriftBreathing DriftPolicy = "breathing"
	DriftScript    DriftPolicy = "script"
)

type GhostBlend string

const (
	BlendScreen  GhostBlend = "screen"
	BlendLighter GhostBlend = "lighter"
)

// Tuning is the full set of config-time constants for one session.
type Tuning struct {
	Frames     FramesSpec     `yaml:"frames"`
	Motion     MotionSpec     `yaml:"motion"`
	Compositor CompositorSpec `yaml:"compositor"`
	Loading    LoadingSpec    `yaml:"loading"`
	Window     WindowSpec     `yaml:"window"`
}

type FramesSpec struct {
	Count             int    `yaml:"count"`
	Dir               string `yaml:"dir"`
	Pattern           string `yaml:"pattern"`
	MaxWidth          int    `yaml:"max_width"`
	Concurrency       int    `yaml:"concurrency"`
	PlaceholderWidth  int    `yaml:"placeholder_width"`
	PlaceholderHeight int    `yaml:"placeholder_height"`
}

type MotionSpec struct {
	SmoothFactor       float64     `yaml:"smooth_factor"`
	AttackFactor       float64     `yaml:"attack_factor"`
	DecayFactor        float64     `yaml:"decay_factor"`
	StopEpsilon        float64     `yaml:"stop_epsilon"`
	MaxSpeed           float64     `yaml:"max_speed"`
	EaseExponent       float64     `yaml:"ease_exponent"`
	IdleDrift          DriftPolicy `yaml:"idle_drift"`
	BreathingRate      float64     `yaml:"breathing_rate"`
	BreathingAmplitude float64     `yaml:"breathing_amplitude"`
	DriftScript        string      `yaml:"drift_script"`
}

type CompositorSpec struct {
	Fit              FitPolicy  `yaml:"fit"`
	JitterScale      float64    `yaml:"jitter_scale"`
	GhostThreshold   float64    `yaml:"ghost_threshold"`
	SplitMultiplier  float64    `yaml:"split_multiplier"`
	GhostAlpha       float64    `yaml:"ghost_alpha"`
	GhostBlend       GhostBlend `yaml:"ghost_blend"`
	BaseRadius       float64    `yaml:"base_radius"`
	RadiusSpeedGain  float64    `yaml:"radius_speed_gain"`
	FlickerThreshold float64    `yaml:"flicker_threshold"`
	FlickerAmplitude float64    `yaml:"flicker_amplitude"`
	MaskMidStop      float64    `yaml:"mask_mid_stop"`
	MaskMidAlpha     float64    `yaml:"mask_mid_alpha"`
	MaskExtent       float64    `yaml:"mask_extent"`
}

type LoadingSpec struct {
	Text     string    `yaml:"text"`
	Color    YAMLColor `yaml:"color"`
	FontSize float64   `yaml:"font_size"`
}

type WindowSpec struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
}

// Default returns the reference tuning. tuning.yaml mirrors these values.
func Default() *Tuning {
	return &Tuning{
		Frames: FramesSpec{
			Count:             96,
			Dir:               "assets",
			Pattern:           "img_%d.jpg",
			MaxWidth:          1920,
			Concurrency:       8,
			PlaceholderWidth:  640,
			PlaceholderHeight: 360,
		},
		Motion: MotionSpec{
			SmoothFactor:       0.08,
			AttackFactor:       0.15,
			DecayFactor:        0.02,
			StopEpsilon:        0.5,
			MaxSpeed:           50,
			EaseExponent:       1.1,
			IdleDrift:          DriftFreeze,
			BreathingRate:      0.02,
			BreathingAmplitude: 12,
			DriftScript:        "scripts/drift.tengo",
		},
		Compositor: CompositorSpec{
			Fit:              FitCover,
			JitterScale:      0.5,
			GhostThreshold:   5,
			SplitMultiplier:  1.5,
			GhostAlpha:       0.5,
			GhostBlend:       BlendScreen,
			BaseRadius:       200,
			RadiusSpeedGain:  0.8,
			FlickerThreshold: 40,
			FlickerAmplitude: 10,
			MaskMidStop:      0.4,
			MaskMidAlpha:     0.9,
			MaskExtent:       1.5,
		},
		Loading: LoadingSpec{
			Text:     "OPTIMIZING MEMORIES...",
			Color:    YAMLColor{Color: color.NRGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xff}},
			FontSize: 20,
		},
		Window: WindowSpec{
			Title:  "temporal flashlight",
			Width:  1280,
			Height: 720,
		},
	}
}

// Parse decodes a tuning document over the defaults, so a file only needs the
// fields it changes.
func Parse(data []byte) (*Tuning, error) {
	t := Default()
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("tuning: unmarshal: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadTuning reads and parses the tuning document at path.
func LoadTuning(path string) (*Tuning, error) {
	data, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("tuning: load %s: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("tuning: parse %s: %w", path, err)
	}
	return t, nil
}

// Marshal renders the tuning back to YAML.
func (t *Tuning) Marshal() ([]byte, error) {
	return yaml.Marshal(t)
}

func (t *Tuning) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("tuning: "+format, args...))
		}
	}
	unit := func(name string, v float64) {
		check(v > 0 && v <= 1, "%s must be in (0,1], got %v", name, v)
	}

	f := t.Frames
	check(f.Count >= 1, "frames.count must be >= 1, got %d", f.Count)
	check(strings.Contains(f.Pattern, "%d"), "frames.pattern must contain %%d, got %q", f.Pattern)
	check(f.MaxWidth >= 0, "frames.max_width must be >= 0, got %d", f.MaxWidth)
	check(f.PlaceholderWidth > 0 && f.PlaceholderHeight > 0, "frames placeholder size must be positive")

	m := t.Motion
	unit("motion.smooth_factor", m.SmoothFactor)
	unit("motion.attack_factor", m.AttackFactor)
	unit("motion.decay_factor", m.DecayFactor)
	check(m.StopEpsilon >= 0, "motion.stop_epsilon must be >= 0, got %v", m.StopEpsilon)
	check(m.MaxSpeed > 0, "motion.max_speed must be > 0, got %v", m.MaxSpeed)
	check(m.EaseExponent > 0, "motion.ease_exponent must be > 0, got %v", m.EaseExponent)
	switch m.IdleDrift {
	case DriftFreeze, DriftBreathing:
	case DriftScript:
		check(m.DriftScript != "", "motion.drift_script is required when idle_drift is script")
	default:
		check(false, "motion.idle_drift must be freeze, breathing or script, got %q", m.IdleDrift)
	}

	c := t.Compositor
	check(c.Fit == FitCover || c.Fit == FitStretch, "compositor.fit must be cover or stretch, got %q", c.Fit)
	check(c.GhostBlend == BlendScreen || c.GhostBlend == BlendLighter, "compositor.ghost_blend must be screen or lighter, got %q", c.GhostBlend)
	check(c.JitterScale >= 0, "compositor.jitter_scale must be >= 0, got %v", c.JitterScale)
	check(c.GhostAlpha >= 0 && c.GhostAlpha <= 1, "compositor.ghost_alpha must be in [0,1], got %v", c.GhostAlpha)
	check(c.BaseRadius > 0, "compositor.base_radius must be > 0, got %v", c.BaseRadius)
	check(c.RadiusSpeedGain >= 0, "compositor.radius_speed_gain must be >= 0, got %v", c.RadiusSpeedGain)
	check(c.FlickerAmplitude >= 0 && c.FlickerAmplitude < c.BaseRadius, "compositor.flicker_amplitude must be in [0, base_radius), got %v", c.FlickerAmplitude)
	check(c.MaskMidStop > 0 && c.MaskMidStop < 1, "compositor.mask_mid_stop must be in (0,1), got %v", c.MaskMidStop)
	check(c.MaskMidAlpha >= 0 && c.MaskMidAlpha <= 1, "compositor.mask_mid_alpha must be in [0,1], got %v", c.MaskMidAlpha)
	check(c.MaskExtent >= 1, "compositor.mask_extent must be >= 1, got %v", c.MaskExtent)

	check(t.Loading.FontSize > 0, "loading.font_size must be > 0, got %v", t.Loading.FontSize)
	check(t.Loading.Color.Color != nil, "loading.color is required")

	return errors.Join(errs...)
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	// #rgb shorthand
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}

func (c YAMLColor) MarshalYAML() (any, error) {
	if c.Color == nil {
		return "", nil
	}
	n := color.NRGBAModel.Convert(c.Color).(color.NRGBA)
	if n.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B), nil
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A), nil
}

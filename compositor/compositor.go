// Package compositor decides what one frame looks like: where the selected
// image goes, how it shakes, whether ghosts appear and how large the
// flashlight is. It does not draw; the render package executes a Frame.
package compositor

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/flashlight/tuning"
)

type Size struct {
	W, H float64
}

type Rect struct {
	X, Y, W, H float64
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

// Input is everything a frame depends on besides randomness.
type Input struct {
	Ready   bool
	Loaded  int
	Total   int
	Surface Size
	Image   Size
	Pointer cp.Vector
	Speed   float64
}

// Layer is one draw of the selected image. An empty Blend means normal
// source-over drawing.
type Layer struct {
	Dest  Rect
	Alpha float64
	Blend tuning.GhostBlend
}

type Stop struct {
	Offset float64
	Alpha  float64
}

// Mask is the flashlight: a radial gradient applied destination-in over a disc
// of Radius*Extent.
type Mask struct {
	Center cp.Vector
	Radius float64
	Extent float64
	Stops  []Stop
}

// Outer is the radius of the disc the gradient is drawn over.
func (m Mask) Outer() float64 {
	return m.Radius * m.Extent
}

type Readout struct {
	Text    string
	Percent int
	Center  cp.Vector
}

// Frame is the plan for one redraw. Exactly one of Loading or Layers is set.
type Frame struct {
	Loading *Readout
	Layers  []Layer
	Mask    Mask
	Ghosts  bool
}

type Compositor struct {
	cfg     tuning.CompositorSpec
	loading string
	rnd     func() float64
}

// New builds a compositor. rnd supplies values in [0,1); nil uses math/rand.
func New(cfg tuning.CompositorSpec, loadingText string, rnd func() float64) *Compositor {
	if rnd == nil {
		rnd = rand.Float64
	}
	return &Compositor{cfg: cfg, loading: loadingText, rnd: rnd}
}

// Retune swaps the constants used for later frames.
func (c *Compositor) Retune(cfg tuning.CompositorSpec, loadingText string) {
	c.cfg = cfg
	c.loading = loadingText
}

func (c *Compositor) Config() tuning.CompositorSpec { return c.cfg }

// Plan lays out one frame. Randomness is drawn in a fixed order: jitter x,
// jitter y, then radius flicker.
func (c *Compositor) Plan(in Input) Frame {
	if !in.Ready {
		pct := Percent(in.Loaded, in.Total)
		return Frame{Loading: &Readout{
			Text:    ReadoutText(c.loading, pct),
			Percent: pct,
			Center:  cp.Vector{X: in.Surface.W / 2, Y: in.Surface.H / 2},
		}}
	}

	dest := Fit(c.cfg.Fit, in.Image, in.Surface)
	jx, jy := c.jitter(in.Speed)
	main := dest.Translate(jx, jy)

	f := Frame{Layers: []Layer{{Dest: main, Alpha: 1}}}
	if GhostsActive(c.cfg, in.Speed) {
		split := in.Speed * c.cfg.SplitMultiplier
		f.Ghosts = true
		f.Layers = append(f.Layers,
			Layer{Dest: main.Translate(-split, 0), Alpha: c.cfg.GhostAlpha, Blend: c.cfg.GhostBlend},
			Layer{Dest: main.Translate(split, 0), Alpha: c.cfg.GhostAlpha, Blend: c.cfg.GhostBlend},
		)
	}

	f.Mask = Mask{
		Center: in.Pointer,
		Radius: c.radius(in.Speed),
		Extent: c.cfg.MaskExtent,
		Stops:  Stops(c.cfg),
	}
	return f
}

func (c *Compositor) jitter(speed float64) (float64, float64) {
	amount := speed * c.cfg.JitterScale
	jx := (c.rnd() - 0.5) * amount
	jy := (c.rnd() - 0.5) * amount
	return jx, jy
}

func (c *Compositor) radius(speed float64) float64 {
	r := BaseRadius(c.cfg, speed)
	if speed > c.cfg.FlickerThreshold {
		r += (c.rnd()*2 - 1) * c.cfg.FlickerAmplitude
	}
	return r
}

// GhostsActive reports whether speed is strictly above the ghost threshold.
func GhostsActive(cfg tuning.CompositorSpec, speed float64) bool {
	return speed > cfg.GhostThreshold
}

// BaseRadius is the flashlight radius without flicker.
func BaseRadius(cfg tuning.CompositorSpec, speed float64) float64 {
	return cfg.BaseRadius + speed*cfg.RadiusSpeedGain
}

func Stops(cfg tuning.CompositorSpec) []Stop {
	return []Stop{
		{Offset: 0, Alpha: 1},
		{Offset: cfg.MaskMidStop, Alpha: cfg.MaskMidAlpha},
		{Offset: 1, Alpha: 0},
	}
}

// Fit places an image on the surface. Cover keeps the aspect ratio and centers
// the overflow; stretch fills the surface from the top-left corner.
func Fit(policy tuning.FitPolicy, img, surface Size) Rect {
	if policy == tuning.FitStretch || img.W <= 0 || img.H <= 0 || surface.H <= 0 {
		return Rect{W: surface.W, H: surface.H}
	}

	// surface is wider than the image (in aspect terms): match widths
	if surface.W*img.H > img.W*surface.H {
		h := surface.W * img.H / img.W
		return Rect{X: 0, Y: (surface.H - h) / 2, W: surface.W, H: h}
	}
	w := surface.H * img.W / img.H
	return Rect{X: (surface.W - w) / 2, Y: 0, W: w, H: surface.H}
}

// Percent is loaded/total as a rounded percentage.
func Percent(loaded, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(loaded) / float64(total) * 100))
}

func ReadoutText(prefix string, percent int) string {
	if prefix == "" {
		return fmt.Sprintf("%d%%", percent)
	}
	return fmt.Sprintf("%s %d%%", prefix, percent)
}

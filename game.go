package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/flashlight/assets"
	"github.com/milk9111/flashlight/common"
	"github.com/milk9111/flashlight/compositor"
	"github.com/milk9111/flashlight/input"
	"github.com/milk9111/flashlight/motion"
	"github.com/milk9111/flashlight/render"
	"github.com/milk9111/flashlight/tuning"
)

type Options struct {
	TuningPath string
	AssetDir   string
	Debug      bool
	Fit        string
	Drift      string
}

// Game is the whole session. Update owns every mutation; Draw only reads a
// motion snapshot and plans the frame from it.
type Game struct {
	opts   Options
	tuning *tuning.Tuning

	loader *assets.Loader
	frames []*ebiten.Image
	ready  bool

	cell    input.Cell
	sampler *input.Sampler
	model   *motion.Model
	drift   motion.Drift
	comp    *compositor.Compositor
	render  *render.Renderer

	width  float64
	height float64

	debug *debugTools
}

func NewGame(opts Options) (*Game, error) {
	t, err := loadTuning(opts)
	if err != nil {
		return nil, err
	}

	g := &Game{
		opts:   opts,
		tuning: t,
		comp:   compositor.New(t.Compositor, t.Loading.Text, nil),
		render: render.New(t),
		width:  float64(common.BaseWidth),
		height: float64(common.BaseHeight),
	}
	g.sampler = input.NewSampler(&g.cell)

	drift, err := motion.NewDrift(t.Motion, t.Frames.Count)
	if err != nil {
		return nil, err
	}
	g.drift = drift

	dir := opts.AssetDir
	if dir == "" {
		dir = t.Frames.Dir
	}
	if _, err := os.Stat(dir); err != nil {
		log.Printf("assets: %s unavailable (%v), frames will be placeholders", dir, err)
	}
	g.loader = assets.NewLoader(os.DirFS(dir), assets.Options{
		Pattern:           t.Frames.Pattern,
		Count:             t.Frames.Count,
		MaxWidth:          t.Frames.MaxWidth,
		Concurrency:       t.Frames.Concurrency,
		PlaceholderWidth:  t.Frames.PlaceholderWidth,
		PlaceholderHeight: t.Frames.PlaceholderHeight,
		Hooks: assets.Hooks{
			OnComplete: func() {
				log.Printf("assets: attempted all %d frames from %s", t.Frames.Count, dir)
			},
		},
	})
	g.loader.Start(context.Background())

	if opts.Debug {
		g.debug = newDebugTools(g)
	}
	return g, nil
}

func loadTuning(opts Options) (*tuning.Tuning, error) {
	t, err := tuning.LoadTuning(opts.TuningPath)
	if err != nil {
		return nil, err
	}
	if opts.Fit != "" {
		t.Compositor.Fit = tuning.FitPolicy(opts.Fit)
	}
	if opts.Drift != "" {
		t.Motion.IdleDrift = tuning.DriftPolicy(opts.Drift)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("tuning: %w", err)
	}
	return t, nil
}

func (g *Game) Update() error {
	// pointer samples land in the cell in every phase; only the interactive
	// phase consumes them
	x, y := ebiten.CursorPosition()
	g.sampler.Sample(x, y)

	if g.debug != nil {
		g.debug.Update()
	}

	if !g.ready {
		if !g.loader.Ready() {
			return nil
		}
		g.startSession()
	}

	g.model.Update(g.cell.Load(g.center()))
	return nil
}

// startSession converts the decoded frames into GPU images and places the
// smoothed pointer at the viewport center.
func (g *Game) startSession() {
	decoded := g.loader.Frames()
	g.frames = make([]*ebiten.Image, len(decoded))
	for i, img := range decoded {
		g.frames[i] = ebiten.NewImageFromImage(img)
	}
	if failed := g.loader.Failed(); len(failed) > 0 {
		log.Printf("assets: %d of %d frames replaced by placeholders: %v", len(failed), len(decoded), failed)
	}

	g.model = motion.NewModel(g.tuning.Motion, len(g.frames), g.center(), g.drift)
	g.ready = true
}

func (g *Game) Draw(screen *ebiten.Image) {
	in := compositor.Input{
		Ready:   g.ready,
		Loaded:  g.loader.Loaded(),
		Total:   g.loader.Total(),
		Surface: compositor.Size{W: g.width, H: g.height},
	}

	var img *ebiten.Image
	if g.ready {
		s := g.model.Snapshot()
		img = g.frames[common.ClampInt(s.Index, 0, len(g.frames)-1)]
		b := img.Bounds()
		in.Image = compositor.Size{W: float64(b.Dx()), H: float64(b.Dy())}
		in.Pointer = s.Smoothed
		in.Speed = s.Speed
	}

	f := g.comp.Plan(in)
	g.render.Draw(screen, f, img)

	if g.debug != nil {
		g.debug.Draw(screen, f)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

func (g *Game) center() cp.Vector {
	return cp.Vector{X: g.width / 2, Y: g.height / 2}
}

// retune swaps in a reloaded tuning document between frames. The frame count
// is fixed for the session.
func (g *Game) retune(t *tuning.Tuning) error {
	if t.Frames.Count != g.tuning.Frames.Count {
		return fmt.Errorf("frames.count changed from %d to %d; restart to apply", g.tuning.Frames.Count, t.Frames.Count)
	}
	drift, err := motion.NewDrift(t.Motion, t.Frames.Count)
	if err != nil {
		return err
	}
	g.tuning = t
	g.drift = drift
	if g.model != nil {
		g.model.Retune(t.Motion, drift)
	}
	g.comp.Retune(t.Compositor, t.Loading.Text)
	g.render.Retune(t)
	return nil
}

func sameFile(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	if err1 != nil || err2 != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return aa == bb
}

// Command flipbook plays the frame set in index order, to check that every
// frame loads and the sequence reads from calm to intense.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/flashlight/assets"
	"github.com/milk9111/flashlight/compositor"
	"github.com/milk9111/flashlight/render"
	"github.com/milk9111/flashlight/tuning"
)

type flipbook struct {
	tuning   *tuning.Tuning
	loader   *assets.Loader
	renderer *render.Renderer

	frames      []*ebiten.Image
	current     int
	tick        int
	ticksPerFrm int
	paused      bool

	width, height float64
}

func (g *flipbook) Update() error {
	if g.frames == nil {
		if !g.loader.Ready() {
			return nil
		}
		for _, img := range g.loader.Frames() {
			g.frames = append(g.frames, ebiten.NewImageFromImage(img))
		}
	}
	if len(g.frames) == 0 {
		return nil
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
		g.step(1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) {
		g.step(-1)
	}
	if g.paused {
		return nil
	}

	g.tick++
	if g.tick >= g.ticksPerFrm {
		g.tick = 0
		g.step(1)
	}
	return nil
}

func (g *flipbook) step(delta int) {
	n := len(g.frames)
	g.current = ((g.current+delta)%n + n) % n
}

func (g *flipbook) Draw(screen *ebiten.Image) {
	if g.frames == nil {
		pct := compositor.Percent(g.loader.Loaded(), g.loader.Total())
		g.renderer.Draw(screen, compositor.Frame{Loading: &compositor.Readout{
			Text:   compositor.ReadoutText(g.tuning.Loading.Text, pct),
			Center: cp.Vector{X: g.width / 2, Y: g.height / 2},
		}}, nil)
		return
	}
	if len(g.frames) == 0 {
		return
	}

	img := g.frames[g.current]
	b := img.Bounds()
	dest := compositor.Fit(g.tuning.Compositor.Fit,
		compositor.Size{W: float64(b.Dx()), H: float64(b.Dy())},
		compositor.Size{W: g.width, H: g.height})

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(dest.W/float64(b.Dx()), dest.H/float64(b.Dy()))
	op.GeoM.Translate(dest.X, dest.Y)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(img, op)

	ebitenutil.DebugPrint(screen, g.loader.Name(g.current))
}

func (g *flipbook) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = float64(outsideWidth), float64(outsideHeight)
	return outsideWidth, outsideHeight
}

func main() {
	tuningPath := flag.String("tuning", "", "tuning yaml")
	assetDir := flag.String("assets", "", "frame directory (overrides frames.dir)")
	fps := flag.Int("fps", 12, "frames shown per second")
	flag.Parse()

	t, err := tuning.LoadTuning(*tuningPath)
	if err != nil {
		log.Fatal(err)
	}
	dir := *assetDir
	if dir == "" {
		dir = t.Frames.Dir
	}

	loader := assets.NewLoader(os.DirFS(dir), assets.Options{
		Pattern:           t.Frames.Pattern,
		Count:             t.Frames.Count,
		MaxWidth:          t.Frames.MaxWidth,
		Concurrency:       t.Frames.Concurrency,
		PlaceholderWidth:  t.Frames.PlaceholderWidth,
		PlaceholderHeight: t.Frames.PlaceholderHeight,
		Hooks: assets.Hooks{
			OnProgress: func(count int) {
				if count%16 == 0 {
					log.Printf("flipbook: %d/%d frames", count, t.Frames.Count)
				}
			},
		},
	})
	loader.Start(context.Background())

	ticks := 1
	if *fps > 0 {
		ticks = max(60 / *fps, 1)
	}

	g := &flipbook{
		tuning:      t,
		loader:      loader,
		renderer:    render.New(t),
		ticksPerFrm: ticks,
		width:       float64(t.Window.Width),
		height:      float64(t.Window.Height),
	}
	ebiten.SetWindowSize(t.Window.Width, t.Window.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowTitle("flipbook")
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/flashlight/compositor"
	"github.com/milk9111/flashlight/render"
	"github.com/milk9111/flashlight/tuning"
	"golang.design/x/clipboard"
	"gopkg.in/yaml.v3"
)

const messageFrames = 180

// debugTools are only built with -debug: the stats HUD (F1), copying the live
// tuning to the clipboard (C) and hot reload of the tuning file.
type debugTools struct {
	g       *Game
	hud     *render.HUD
	show    bool
	watcher *tuning.Watcher
	clip    bool

	message    string
	messageTTL int
}

type debugSnapshot struct {
	Frame    int            `yaml:"frame"`
	Speed    float64        `yaml:"speed"`
	Index    int            `yaml:"index"`
	PointerX float64        `yaml:"pointer_x"`
	PointerY float64        `yaml:"pointer_y"`
	Tuning   *tuning.Tuning `yaml:"tuning"`
}

func newDebugTools(g *Game) *debugTools {
	d := &debugTools{g: g, hud: render.NewHUD(), show: true}

	if err := clipboard.Init(); err != nil {
		log.Printf("debug: clipboard unavailable: %v", err)
	} else {
		d.clip = true
	}

	var paths []string
	for _, p := range []string{d.tuningPath(), g.tuning.Motion.DriftScript} {
		if _, err := os.Stat(p); err == nil {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		log.Printf("debug: no tuning file on disk, hot reload off")
		return d
	}
	w, err := tuning.NewWatcher(paths...)
	if err != nil {
		log.Printf("debug: watch %v: %v", paths, err)
		return d
	}
	d.watcher = w
	return d
}

func (d *debugTools) tuningPath() string {
	if d.g.opts.TuningPath != "" {
		return d.g.opts.TuningPath
	}
	return tuning.DefaultFile
}

func (d *debugTools) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		d.show = !d.show
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		d.copySnapshot()
	}
	d.pollWatcher()

	if d.messageTTL > 0 {
		d.messageTTL--
		if d.messageTTL == 0 {
			d.message = ""
		}
	}
	if d.show {
		d.hud.Update(d.stats())
	}
}

func (d *debugTools) Draw(screen *ebiten.Image, f compositor.Frame) {
	if !d.show {
		return
	}
	if f.Loading == nil {
		render.DrawMaskOutline(screen, f.Mask)
	}
	d.hud.Draw(screen)
	ebitenutil.DebugPrintAt(screen, "F1 hud   C copy tuning", 12, int(d.g.height)-24)
}

func (d *debugTools) stats() render.Stats {
	g := d.g
	t := g.tuning
	s := render.Stats{
		FPS:     ebiten.ActualFPS(),
		Frames:  t.Frames.Count,
		Drift:   string(t.Motion.IdleDrift),
		Fit:     string(t.Compositor.Fit),
		Failed:  len(g.loader.Failed()),
		Message: d.message,
		Radius:  compositor.BaseRadius(t.Compositor, 0),
	}
	if !g.ready {
		return s
	}
	snap := g.model.Snapshot()
	s.Frame = snap.FrameCount
	s.Speed = snap.Speed
	s.Index = snap.Index
	s.Offset = snap.DriftOffset
	s.Radius = compositor.BaseRadius(t.Compositor, snap.Speed)
	s.Ghosts = compositor.GhostsActive(t.Compositor, snap.Speed)
	return s
}

func (d *debugTools) say(format string, args ...any) {
	log.Printf(format, args...)
	d.message = fmt.Sprintf(format, args...)
	d.messageTTL = messageFrames
}

func (d *debugTools) copySnapshot() {
	if !d.clip {
		d.say("debug: clipboard unavailable")
		return
	}
	snap := debugSnapshot{Tuning: d.g.tuning}
	if d.g.ready {
		s := d.g.model.Snapshot()
		snap.Frame, snap.Speed, snap.Index = s.FrameCount, s.Speed, s.Index
		snap.PointerX, snap.PointerY = s.Smoothed.X, s.Smoothed.Y
	}
	data, err := yaml.Marshal(snap)
	if err != nil {
		d.say("debug: marshal snapshot: %v", err)
		return
	}
	clipboard.Write(clipboard.FmtText, data)
	d.say("debug: copied snapshot (%d bytes)", len(data))
}

func (d *debugTools) pollWatcher() {
	if d.watcher == nil {
		return
	}
	select {
	case err := <-d.watcher.Errors:
		log.Printf("debug: watcher: %v", err)
	default:
	}

	for _, path := range d.watcher.Poll() {
		switch {
		case tuning.IsTuningFile(path) && sameFile(path, d.tuningPath()):
			d.reload()
		case tuning.IsScriptFile(path) && d.g.tuning.Motion.IdleDrift == tuning.DriftScript &&
			sameFile(path, d.g.tuning.Motion.DriftScript):
			d.reload()
		}
	}
}

func (d *debugTools) reload() {
	t, err := loadTuning(d.g.opts)
	if err != nil {
		d.say("tuning: reload: %v", err)
		return
	}
	if err := d.g.retune(t); err != nil {
		d.say("tuning: reload rejected: %v", err)
		return
	}
	d.say("tuning: reloaded %s", d.tuningPath())
}

package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	tuningPath := flag.String("tuning", "", "tuning yaml (defaults to tuning.yaml on disk, then the built-in copy)")
	assetDir := flag.String("assets", "", "frame directory (overrides frames.dir)")
	debug := flag.Bool("debug", false, "enable debug HUD, clipboard snapshot and tuning hot reload")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	fit := flag.String("fit", "", "image fit policy: cover or stretch")
	drift := flag.String("drift", "", "idle drift policy: freeze, breathing or script")
	flag.Parse()

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	game, err := NewGame(Options{
		TuningPath: *tuningPath,
		AssetDir:   *assetDir,
		Debug:      *debug,
		Fit:        *fit,
		Drift:      *drift,
	})
	if err != nil {
		log.Fatal(err)
	}

	w := game.tuning.Window
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(w.Width, w.Height)
	ebiten.SetWindowTitle(w.Title)
	ebiten.SetFullscreen(w.Fullscreen)
	// one Update per rendered frame
	ebiten.SetTPS(ebiten.SyncWithFPS)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}

package assets

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"reflect"
	"sync"
	"testing"
	"testing/fstest"
	"time"
)

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func waitDone(t *testing.T, l *Loader) {
	t.Helper()
	select {
	case <-l.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("loader did not complete, loaded %d of %d", l.Loaded(), l.Total())
	}
}

func TestLoaderCompletesWithFailures(t *testing.T) {
	fsys := fstest.MapFS{
		"img_0.png": {Data: pngBytes(t, 8, 4, color.White)},
		"img_2.png": {Data: []byte("not an image")},
		"img_3.png": {Data: pngBytes(t, 8, 4, color.Black)},
	}

	var (
		mu        sync.Mutex
		progress  []int
		completes int
	)
	l := NewLoader(fsys, Options{
		Pattern:           "img_%d.png",
		Count:             4,
		Concurrency:       2,
		PlaceholderWidth:  16,
		PlaceholderHeight: 9,
		Hooks: Hooks{
			OnProgress: func(count int) {
				mu.Lock()
				progress = append(progress, count)
				mu.Unlock()
			},
			OnComplete: func() {
				mu.Lock()
				completes++
				mu.Unlock()
			},
		},
	})

	if l.Ready() || l.Frames() != nil {
		t.Fatalf("loader should not be ready before Start")
	}
	l.Start(context.Background())
	l.Start(context.Background())
	waitDone(t, l)

	if l.Loaded() != 4 {
		t.Fatalf("expected 4 attempted frames, got %d", l.Loaded())
	}
	if got := l.Failed(); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Fatalf("expected failed frames [1 2], got %v", got)
	}

	frames := l.Frames()
	if len(frames) != 4 {
		t.Fatalf("expected 4 frames, got %d", len(frames))
	}
	for i, f := range frames {
		if f == nil {
			t.Fatalf("frame %d is nil", i)
		}
	}
	if b := frames[0].Bounds(); b.Dx() != 8 || b.Dy() != 4 {
		t.Fatalf("frame 0 should keep its size, got %v", b)
	}
	if b := frames[1].Bounds(); b.Dx() != 16 || b.Dy() != 9 {
		t.Fatalf("missing frame should be a 16x9 placeholder, got %v", b)
	}

	// OnComplete runs right after Done is closed; give it a moment.
	deadline := time.Now().Add(time.Second)
	for {
		mu.Lock()
		c := completes
		mu.Unlock()
		if c == 1 || time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if !reflect.DeepEqual(progress, []int{1, 2, 3, 4}) {
		t.Fatalf("expected progress 1..4, got %v", progress)
	}
	if completes != 1 {
		t.Fatalf("expected exactly one completion, got %d", completes)
	}
}

func TestLoaderCancelledContextStillCompletes(t *testing.T) {
	fsys := fstest.MapFS{
		"f0.png": {Data: pngBytes(t, 2, 2, color.White)},
		"f1.png": {Data: pngBytes(t, 2, 2, color.White)},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := NewLoader(fsys, Options{Pattern: "f%d.png", Count: 2, PlaceholderWidth: 4, PlaceholderHeight: 4})
	l.Start(ctx)
	waitDone(t, l)

	if got := l.Failed(); len(got) != 2 {
		t.Fatalf("cancelled load should mark every frame failed, got %v", got)
	}
}

func TestLoaderZeroCount(t *testing.T) {
	l := NewLoader(fstest.MapFS{}, Options{Pattern: "img_%d.jpg"})
	l.Start(context.Background())
	waitDone(t, l)
	if l.Total() != 0 || len(l.Frames()) != 0 {
		t.Fatalf("empty loader should complete with no frames")
	}
}

func TestLoaderDownscales(t *testing.T) {
	fsys := fstest.MapFS{"big_0.png": {Data: pngBytes(t, 40, 20, color.White)}}
	l := NewLoader(fsys, Options{Pattern: "big_%d.png", Count: 1, MaxWidth: 10})
	l.Start(context.Background())
	waitDone(t, l)

	if b := l.Frames()[0].Bounds(); b.Dx() != 10 || b.Dy() != 5 {
		t.Fatalf("expected 10x5 after downscale, got %v", b)
	}
}

func TestDownscaleLeavesSmallImages(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 30, 10))
	if got := Downscale(img, 30); got != image.Image(img) {
		t.Fatalf("image at max width should be returned unchanged")
	}
	if got := Downscale(img, 0); got != image.Image(img) {
		t.Fatalf("max width 0 should disable downscaling")
	}
}

func TestPlaceholder(t *testing.T) {
	img := Placeholder(48, 96, 320, 180)
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 180 {
		t.Fatalf("unexpected placeholder bounds %v", b)
	}
	want := PlaceholderColor(48, 96)
	if got := img.RGBAAt(0, 0); got != want {
		t.Fatalf("corner should carry the background hue %v, got %v", want, got)
	}
	if PlaceholderColor(0, 96) == PlaceholderColor(48, 96) {
		t.Fatalf("placeholders should sweep hue")
	}
	if got := PlaceholderColor(0, 96); got.R <= got.G || got.R <= got.B {
		t.Fatalf("frame 0 should be red dominant, got %v", got)
	}

	white := false
	for y := 0; y < 180 && !white; y++ {
		for x := 0; x < 320; x++ {
			if c := img.RGBAAt(x, y); c.R > 240 && c.G > 240 && c.B > 240 {
				white = true
				break
			}
		}
	}
	if !white {
		t.Fatalf("expected the index numeral drawn in white")
	}
}

// Package assets loads the ordered frame set the effect selects from.
package assets

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"log"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// Hooks observe loading. Both run on the loader's collector goroutine, one
// call at a time: OnProgress once per attempted frame with a strictly
// increasing count, OnComplete exactly once after the last one.
type Hooks struct {
	OnProgress func(count int)
	OnComplete func()
}

type Options struct {
	// Pattern names frame i via fmt.Sprintf(Pattern, i).
	Pattern     string
	Count       int
	MaxWidth    int
	Concurrency int

	PlaceholderWidth  int
	PlaceholderHeight int

	Hooks Hooks
}

// Loader decodes Count frames concurrently. A frame that fails to load is
// logged and replaced by a placeholder, and still counts toward completion, so
// completion always fires once every frame has been attempted.
type Loader struct {
	fsys fs.FS
	opts Options

	loaded atomic.Int64
	done   chan struct{}
	start  sync.Once

	mu     sync.Mutex
	frames []image.Image
	failed []int
}

type result struct {
	index int
	img   image.Image
	err   error
}

func NewLoader(fsys fs.FS, opts Options) *Loader {
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.NumCPU()
	}
	if opts.PlaceholderWidth <= 0 || opts.PlaceholderHeight <= 0 {
		opts.PlaceholderWidth, opts.PlaceholderHeight = 640, 360
	}
	count := max(opts.Count, 0)
	return &Loader{
		fsys:   fsys,
		opts:   opts,
		done:   make(chan struct{}),
		frames: make([]image.Image, count),
	}
}

// Start begins loading in the background. Later calls do nothing.
func (l *Loader) Start(ctx context.Context) {
	l.start.Do(func() {
		go l.run(ctx)
	})
}

// Loaded is the number of frames attempted so far.
func (l *Loader) Loaded() int {
	return int(l.loaded.Load())
}

func (l *Loader) Total() int {
	return len(l.frames)
}

// Done is closed once every frame has been attempted.
func (l *Loader) Done() <-chan struct{} {
	return l.done
}

func (l *Loader) Ready() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

// Frames returns the frame set once loading is done, nil before.
func (l *Loader) Frames() []image.Image {
	if !l.Ready() {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]image.Image(nil), l.frames...)
}

// Failed lists the indices that were replaced by placeholders.
func (l *Loader) Failed() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := append([]int(nil), l.failed...)
	sort.Ints(out)
	return out
}

// Name is the resource name of frame i.
func (l *Loader) Name(i int) string {
	return fmt.Sprintf(l.opts.Pattern, i)
}

func (l *Loader) run(ctx context.Context) {
	n := len(l.frames)
	results := make(chan result, n)
	go l.dispatch(ctx, results)

	for range n {
		r := <-results
		l.store(r)
		count := int(l.loaded.Add(1))
		if l.opts.Hooks.OnProgress != nil {
			l.opts.Hooks.OnProgress(count)
		}
	}

	close(l.done)
	if l.opts.Hooks.OnComplete != nil {
		l.opts.Hooks.OnComplete()
	}
}

func (l *Loader) dispatch(ctx context.Context, results chan<- result) {
	var g errgroup.Group
	g.SetLimit(l.opts.Concurrency)
	for i := range l.frames {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results <- result{index: i, err: err}
				return nil
			}
			img, err := l.decode(i)
			results <- result{index: i, img: img, err: err}
			return nil
		})
	}
	_ = g.Wait()
}

func (l *Loader) store(r result) {
	img := r.img
	if r.err != nil {
		log.Printf("assets: load %s: %v", l.Name(r.index), r.err)
		img = Placeholder(r.index, len(l.frames), l.opts.PlaceholderWidth, l.opts.PlaceholderHeight)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.frames[r.index] = img
	if r.err != nil {
		l.failed = append(l.failed, r.index)
	}
}

func (l *Loader) decode(i int) (image.Image, error) {
	b, err := fs.ReadFile(l.fsys, l.Name(i))
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return Downscale(img, l.opts.MaxWidth), nil
}

// Downscale shrinks img to maxWidth keeping its aspect ratio. Images that
// already fit, or a maxWidth <= 0, are returned unchanged.
func Downscale(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return img
	}
	h := max(b.Dy()*maxWidth/b.Dx(), 1)
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

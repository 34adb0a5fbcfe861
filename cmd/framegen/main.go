// Command framegen prepares the frame directory: placeholder generation,
// importing a folder of photos, and downscaling oversized frames.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/milk9111/flashlight/assets"
	"github.com/milk9111/flashlight/tuning"
	"golang.org/x/sync/errgroup"
)

const (
	generateQuality = 80
	optimizeQuality = 85
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: framegen <generate|import|optimize> [flags]")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	defaults := tuning.Default().Frames

	switch os.Args[1] {
	case "generate":
		fs := flag.NewFlagSet("generate", flag.ExitOnError)
		out := fs.String("out", defaults.Dir, "output directory")
		n := fs.Int("n", defaults.Count, "number of frames")
		w := fs.Int("w", 1920, "frame width")
		h := fs.Int("h", 1080, "frame height")
		pattern := fs.String("pattern", defaults.Pattern, "frame file name pattern")
		fs.Parse(os.Args[2:])

		log.Printf("framegen: generating %d frames in %s", *n, *out)
		if err := generate(*out, *pattern, *n, *w, *h); err != nil {
			log.Fatal(err)
		}
	case "import":
		fs := flag.NewFlagSet("import", flag.ExitOnError)
		src := fs.String("src", "Images", "source directory of jpg/jpeg photos")
		out := fs.String("out", defaults.Dir, "output directory")
		n := fs.Int("n", defaults.Count, "maximum number of frames")
		pattern := fs.String("pattern", defaults.Pattern, "frame file name pattern")
		fs.Parse(os.Args[2:])

		copied, err := importFrames(*src, *out, *pattern, *n)
		if err != nil {
			log.Fatal(err)
		}
		if copied < *n {
			log.Printf("framegen: only %d of %d frames imported; the rest will load as placeholders", copied, *n)
		}
	case "optimize":
		fs := flag.NewFlagSet("optimize", flag.ExitOnError)
		dir := fs.String("dir", defaults.Dir, "frame directory")
		maxWidth := fs.Int("max-width", defaults.MaxWidth, "maximum frame width")
		fs.Parse(os.Args[2:])

		resized, err := optimize(*dir, *maxWidth)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("framegen: optimization complete, %d resized", resized)
	default:
		usage()
	}
}

// generate writes n placeholder frames named by pattern into out.
func generate(out, pattern string, n, w, h int) error {
	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("framegen: mkdir %s: %w", out, err)
	}
	var g errgroup.Group
	g.SetLimit(8)
	for i := range n {
		g.Go(func() error {
			path := filepath.Join(out, fmt.Sprintf(pattern, i))
			return writeJPEG(path, assets.Placeholder(i, n, w, h), generateQuality)
		})
	}
	return g.Wait()
}

// importFrames copies the first n jpg/jpeg files of src, in name order, to
// out under pattern names. It returns how many were copied.
func importFrames(src, out, pattern string, n int) (int, error) {
	files, err := jpegFiles(src)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, fmt.Errorf("framegen: no images found in %s", src)
	}
	log.Printf("framegen: found %d images in %s", len(files), src)

	if err := os.MkdirAll(out, 0o755); err != nil {
		return 0, fmt.Errorf("framegen: mkdir %s: %w", out, err)
	}
	count := min(len(files), n)
	for i := range count {
		dst := filepath.Join(out, fmt.Sprintf(pattern, i))
		if err := copyFile(files[i], dst); err != nil {
			return i, err
		}
		log.Printf("framegen: copied %s -> %s", files[i], dst)
	}
	return count, nil
}

// optimize downscales every jpg/jpeg in dir wider than maxWidth, rewriting
// it in place. Files that fail to decode are logged and skipped.
func optimize(dir string, maxWidth int) (int, error) {
	files, err := jpegFiles(dir)
	if err != nil {
		return 0, err
	}
	log.Printf("framegen: found %d images to optimize", len(files))

	resized := 0
	for _, path := range files {
		img, err := readImage(path)
		if err != nil {
			log.Printf("framegen: %s: %v", path, err)
			continue
		}
		b := img.Bounds()
		if maxWidth <= 0 || b.Dx() <= maxWidth {
			continue
		}
		small := assets.Downscale(img, maxWidth)
		if err := writeJPEG(path, small, optimizeQuality); err != nil {
			log.Printf("framegen: %s: %v", path, err)
			continue
		}
		sb := small.Bounds()
		log.Printf("framegen: resized %s: %dx%d -> %dx%d", filepath.Base(path), b.Dx(), b.Dy(), sb.Dx(), sb.Dy())
		resized++
	}
	return resized, nil
}

func jpegFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("framegen: read %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}

func readImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

func writeJPEG(path string, img image.Image, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("framegen: create %s: %w", path, err)
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		f.Close()
		return fmt.Errorf("framegen: encode %s: %w", path, err)
	}
	return f.Close()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("framegen: open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("framegen: create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("framegen: copy %s: %w", src, err)
	}
	return out.Close()
}

package assets

import (
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

var (
	numeralFont     *sfnt.Font
	numeralFontErr  error
	numeralFontOnce sync.Once
)

// PlaceholderColor is the background of placeholder frame i of n: a hue sweep
// from red at 0 around the wheel.
func PlaceholderColor(i, n int) color.RGBA {
	hue := 0.0
	if n > 0 {
		hue = float64(i) / float64(n) * 360
	}
	r, g, b := colorful.Hsv(hue, 0.8, 0.8).RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// Placeholder renders frame i of n as a flat hue with its index in white.
func Placeholder(i, n, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(PlaceholderColor(i, n)), image.Point{}, draw.Src)

	face, err := numeralFace(float64(h) * 0.28)
	if err != nil {
		return img
	}
	defer face.Close()

	label := strconv.Itoa(i)
	d := &font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: face,
	}
	textW := d.MeasureString(label).Round()
	capH := face.Metrics().CapHeight.Round()
	d.Dot = fixed.P((w-textW)/2, (h+capH)/2)
	d.DrawString(label)
	return img
}

func numeralFace(size float64) (font.Face, error) {
	numeralFontOnce.Do(func() {
		numeralFont, numeralFontErr = opentype.Parse(goregular.TTF)
	})
	if numeralFontErr != nil {
		return nil, numeralFontErr
	}
	return opentype.NewFace(numeralFont, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

package compositor

import (
	"image"
	"image/color"
	"math"

	"github.com/milk9111/flashlight/common"
)

// MaskAlpha evaluates the gradient at t, the distance from the center in units
// of the radius. Stops must be sorted by offset.
func MaskAlpha(stops []Stop, t float64) float64 {
	if len(stops) == 0 {
		return 0
	}
	if t <= stops[0].Offset {
		return stops[0].Alpha
	}
	for i := 1; i < len(stops); i++ {
		a, b := stops[i-1], stops[i]
		if t > b.Offset {
			continue
		}
		span := b.Offset - a.Offset
		if span <= 0 {
			return b.Alpha
		}
		return common.Lerp(a.Alpha, b.Alpha, (t-a.Offset)/span)
	}
	return stops[len(stops)-1].Alpha
}

// GradientImage renders the mask into a size x size texture covering a disc of
// radius extent (in units of the gradient radius). Pixels are black; only alpha
// carries the mask. Scaling the texture to 2*Outer() pixels reproduces the mask.
func GradientImage(size int, stops []Stop, extent float64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	if size <= 0 || extent <= 0 {
		return img
	}

	half := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - half
			dy := float64(y) + 0.5 - half
			d := math.Hypot(dx, dy) / half
			if d > 1 {
				continue
			}
			a := MaskAlpha(stops, d*extent)
			img.SetNRGBA(x, y, color.NRGBA{A: uint8(math.Round(common.Clamp(a, 0, 1) * 255))})
		}
	}
	return img
}

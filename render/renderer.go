// Package render executes compositor frames on ebiten images.
package render

import (
	"bytes"
	_ "embed"
	"image/color"
	"log"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/milk9111/flashlight/compositor"
	"github.com/milk9111/flashlight/tuning"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/gofont/gomono"
)

//go:embed shaders/mask.kage
var maskShaderSrc []byte

// maskTextureSize is the resolution of the fallback gradient texture.
const maskTextureSize = 512

// screenBlend is the canvas "screen" operator on premultiplied colors:
// src + dst*(1-src).
var screenBlend = ebiten.Blend{
	BlendFactorSourceRGB:        ebiten.BlendFactorOne,
	BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
	BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
	BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
	BlendOperationRGB:           ebiten.BlendOperationAdd,
	BlendOperationAlpha:         ebiten.BlendOperationAdd,
}

type Renderer struct {
	scene     *ebiten.Image
	maskLayer *ebiten.Image
	shader    *ebiten.Shader
	maskTex   *ebiten.Image
	texStops  []compositor.Stop
	texExtent float64

	faceSource   *text.GoTextFaceSource
	face         text.Face
	loadingColor color.Color
}

// New prepares a renderer. If the mask shader does not compile the renderer
// falls back to a prebuilt gradient texture.
func New(t *tuning.Tuning) *Renderer {
	r := &Renderer{}

	if sh, err := ebiten.NewShader(maskShaderSrc); err == nil {
		r.shader = sh
	} else {
		log.Printf("render: mask shader compile error, using gradient texture: %v", err)
	}

	src, err := text.NewGoTextFaceSource(bytes.NewReader(gomono.TTF))
	if err != nil {
		log.Printf("render: load readout font: %v", err)
	}
	r.faceSource = src
	r.Retune(t)
	return r
}

// Retune picks up readout styling changes. The fallback texture is rebuilt
// lazily when the gradient stops change.
func (r *Renderer) Retune(t *tuning.Tuning) {
	r.loadingColor = t.Loading.Color.Color
	if r.loadingColor == nil {
		r.loadingColor = colornames.Dimgray
	}
	if r.faceSource != nil {
		r.face = &text.GoTextFace{Source: r.faceSource, Size: t.Loading.FontSize}
	}
}

// Draw renders f onto screen. img is the selected frame and may be nil while
// loading.
func (r *Renderer) Draw(screen *ebiten.Image, f compositor.Frame, img *ebiten.Image) {
	if r == nil || screen == nil {
		return
	}

	screen.Fill(color.Black)
	if f.Loading != nil {
		r.DrawReadout(screen, f.Loading)
		return
	}
	if img == nil {
		return
	}

	b := screen.Bounds()
	r.scene = ensureImage(r.scene, b.Dx(), b.Dy())
	r.scene.Fill(color.Black)

	for _, layer := range f.Layers {
		r.drawLayer(r.scene, img, layer)
	}

	r.applyMask(r.scene, f.Mask)
	screen.DrawImage(r.scene, nil)
}

// DrawReadout draws the loading text centered on its anchor.
func (r *Renderer) DrawReadout(screen *ebiten.Image, ro *compositor.Readout) {
	if r.face == nil || ro == nil {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(ro.Center.X, ro.Center.Y)
	op.PrimaryAlign = text.AlignCenter
	op.SecondaryAlign = text.AlignCenter
	op.ColorScale.ScaleWithColor(r.loadingColor)
	text.Draw(screen, ro.Text, r.face, op)
}

func (r *Renderer) drawLayer(dst, img *ebiten.Image, layer compositor.Layer) {
	ib := img.Bounds()
	if ib.Dx() == 0 || ib.Dy() == 0 {
		return
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(layer.Dest.W/float64(ib.Dx()), layer.Dest.H/float64(ib.Dy()))
	op.GeoM.Translate(layer.Dest.X, layer.Dest.Y)
	op.Filter = ebiten.FilterLinear
	if layer.Alpha < 1 {
		op.ColorScale.ScaleAlpha(float32(layer.Alpha))
	}
	op.Blend = blendFor(layer.Blend)
	dst.DrawImage(img, op)
}

func blendFor(b tuning.GhostBlend) ebiten.Blend {
	switch b {
	case tuning.BlendScreen:
		return screenBlend
	case tuning.BlendLighter:
		return ebiten.BlendLighter
	default:
		return ebiten.BlendSourceOver
	}
}

func (r *Renderer) applyMask(scene *ebiten.Image, m compositor.Mask) {
	if m.Radius <= 0 {
		scene.Clear()
		return
	}

	midStop, midAlpha := 0.4, 0.9
	if len(m.Stops) == 3 {
		midStop, midAlpha = m.Stops[1].Offset, m.Stops[1].Alpha
	}

	b := scene.Bounds()
	if r.shader != nil {
		op := &ebiten.DrawRectShaderOptions{
			Uniforms: map[string]any{
				"Center":   []float32{float32(m.Center.X), float32(m.Center.Y)},
				"Radius":   float32(m.Radius),
				"Outer":    float32(m.Outer()),
				"MidStop":  float32(midStop),
				"MidAlpha": float32(midAlpha),
			},
			Blend: ebiten.BlendDestinationIn,
		}
		scene.DrawRectShader(b.Dx(), b.Dy(), r.shader, op)
		return
	}

	// Texture path: paint the gradient disc onto a transparent layer the size
	// of the scene, then keep only the scene pixels under it.
	tex := r.gradientTexture(m)
	r.maskLayer = ensureImage(r.maskLayer, b.Dx(), b.Dy())
	r.maskLayer.Clear()

	outer := m.Outer()
	tb := tex.Bounds()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(2*outer/float64(tb.Dx()), 2*outer/float64(tb.Dy()))
	op.GeoM.Translate(m.Center.X-outer, m.Center.Y-outer)
	op.Filter = ebiten.FilterLinear
	r.maskLayer.DrawImage(tex, op)

	scene.DrawImage(r.maskLayer, &ebiten.DrawImageOptions{Blend: ebiten.BlendDestinationIn})
}

func (r *Renderer) gradientTexture(m compositor.Mask) *ebiten.Image {
	if r.maskTex != nil && r.texExtent == m.Extent && slices.Equal(r.texStops, m.Stops) {
		return r.maskTex
	}
	if r.maskTex != nil {
		r.maskTex.Deallocate()
	}
	r.maskTex = ebiten.NewImageFromImage(compositor.GradientImage(maskTextureSize, m.Stops, m.Extent))
	r.texStops = append([]compositor.Stop(nil), m.Stops...)
	r.texExtent = m.Extent
	return r.maskTex
}

// ensureImage returns img if it already has size w x h, otherwise a fresh
// image. Resizing the window lands here on the next frame.
func ensureImage(img *ebiten.Image, w, h int) *ebiten.Image {
	w, h = max(w, 1), max(h, 1)
	if img != nil {
		if b := img.Bounds(); b.Dx() == w && b.Dy() == h {
			return img
		}
		img.Deallocate()
	}
	return ebiten.NewImage(w, h)
}

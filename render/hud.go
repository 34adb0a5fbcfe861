package render

import (
	"fmt"
	"image/color"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/flashlight/compositor"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"
)

// Stats is what the debug HUD shows for the current frame.
type Stats struct {
	FPS     float64
	Speed   float64
	Index   int
	Frames  int
	Radius  float64
	Ghosts  bool
	Drift   string
	Offset  float64
	Fit     string
	Frame   int
	Failed  int
	Message string
}

func (s Stats) String() string {
	ghosts := "off"
	if s.Ghosts {
		ghosts = "on"
	}
	out := fmt.Sprintf(
		"fps    %6.1f\nframe  %6d\nspeed  %6.2f\nindex  %3d/%d\nradius %6.1f\nghosts %s\ndrift  %s %+.2f\nfit    %s\nfailed %d",
		s.FPS, s.Frame, s.Speed, s.Index, s.Frames-1, s.Radius, ghosts, s.Drift, s.Offset, s.Fit, s.Failed,
	)
	if s.Message != "" {
		out += "\n" + s.Message
	}
	return out
}

// HUD is the debug overlay: a translucent panel in the top-left corner.
type HUD struct {
	ui    *ebitenui.UI
	label *widget.Text
}

func NewHUD() *HUD {
	panelImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 180})

	goFace := ebtext.NewGoXFace(basicfont.Face7x13)
	var face ebtext.Face = goFace

	label := widget.NewText(
		widget.TextOpts.Text(Stats{}.String(), &face, color.NRGBA{R: 0x9f, G: 0xff, B: 0x9f, A: 0xff}),
	)

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 8, Bottom: 8, Left: 10, Right: 10}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionStart,
				VerticalPosition:   widget.AnchorLayoutPositionStart,
			}),
		),
	)
	panel.AddChild(label)

	root := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout(
			widget.AnchorLayoutOpts.Padding(&widget.Insets{Top: 12, Bottom: 12, Left: 12, Right: 12}),
		)),
	)
	root.AddChild(panel)

	return &HUD{
		ui:    &ebitenui.UI{Container: root},
		label: label,
	}
}

func (h *HUD) Update(s Stats) {
	if h == nil {
		return
	}
	h.label.Label = s.String()
	h.ui.Update()
}

func (h *HUD) Draw(screen *ebiten.Image) {
	if h == nil {
		return
	}
	h.ui.Draw(screen)
}

// DrawMaskOutline strokes every non-center gradient stop and the outer
// edge of the mask.
func DrawMaskOutline(screen *ebiten.Image, m compositor.Mask) {
	if m.Radius <= 0 {
		return
	}
	cx, cy := float32(m.Center.X), float32(m.Center.Y)
	for _, s := range m.Stops {
		if s.Offset <= 0 {
			continue
		}
		vector.StrokeCircle(screen, cx, cy, float32(m.Radius*s.Offset), 1, colornames.Lightgrey, true)
	}
	vector.StrokeCircle(screen, cx, cy, float32(m.Outer()), 1, colornames.Orangered, true)
}

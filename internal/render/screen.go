// SPDX-License-Identifier: MIT
package render

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"ringviz/internal/engine"
)

var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

// Screen draws engine frames onto an ebiten image. Bind must be called with
// the frame's target before the engine renders into it.
type Screen struct {
	target  *ebiten.Image
	overlay *ebiten.Image

	segments []segment
	vertices []ebiten.Vertex
	indices  []uint16
}

var _ engine.Canvas = (*Screen)(nil)

// NewScreen returns a screen that composites overlay, which may be nil.
func NewScreen(overlay *ebiten.Image) *Screen {
	return &Screen{overlay: overlay}
}

// LoadOverlay reads a PNG overlay from path.
func LoadOverlay(path string) (*ebiten.Image, error) {
	img, _, err := ebitenutil.NewImageFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("render: failed to load overlay %q: %w", path, err)
	}
	return img, nil
}

func (s *Screen) Bind(target *ebiten.Image) {
	s.target = target
}

func (s *Screen) Wash(c color.Color) {
	b := s.target.Bounds()
	vector.DrawFilledRect(s.target, float32(b.Min.X), float32(b.Min.Y), float32(b.Dx()), float32(b.Dy()), c, false)
}

func (s *Screen) Circle(cx, cy, r float64, fill, stroke color.Color, strokeWidth float64) {
	vector.DrawFilledCircle(s.target, float32(cx), float32(cy), float32(r), fill, true)
	if strokeWidth > 0 {
		vector.StrokeCircle(s.target, float32(cx), float32(cy), float32(r), float32(strokeWidth), stroke, true)
	}
}

func (s *Screen) Curve(points []engine.Point, stroke color.Color, width float64) {
	s.segments = catmullRom(points, s.segments)
	if len(s.segments) == 0 {
		return
	}

	var path vector.Path
	path.MoveTo(float32(points[0].X), float32(points[0].Y))
	for _, seg := range s.segments {
		path.CubicTo(
			float32(seg.c1.X), float32(seg.c1.Y),
			float32(seg.c2.X), float32(seg.c2.Y),
			float32(seg.end.X), float32(seg.end.Y),
		)
	}

	s.vertices, s.indices = path.AppendVerticesAndIndicesForStroke(s.vertices[:0], s.indices[:0], &vector.StrokeOptions{
		Width:    float32(width),
		LineJoin: vector.LineJoinRound,
		LineCap:  vector.LineCapRound,
	})

	r, g, b, a := stroke.RGBA()
	for i := range s.vertices {
		s.vertices[i].SrcX = 1
		s.vertices[i].SrcY = 1
		s.vertices[i].ColorR = float32(r) / 0xffff
		s.vertices[i].ColorG = float32(g) / 0xffff
		s.vertices[i].ColorB = float32(b) / 0xffff
		s.vertices[i].ColorA = float32(a) / 0xffff
	}

	op := &ebiten.DrawTrianglesOptions{}
	op.AntiAlias = true
	op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	s.target.DrawTriangles(s.vertices, s.indices, whiteSubImage, op)
}

func (s *Screen) Overlay(cx, cy, scale float64) {
	if s.overlay == nil {
		return
	}
	b := s.overlay.Bounds()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-float64(b.Dx())/2, -float64(b.Dy())/2)
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(cx, cy)
	op.Filter = ebiten.FilterLinear
	s.target.DrawImage(s.overlay, op)
}

func (s *Screen) Text(str string, x, y int) {
	ebitenutil.DebugPrintAt(s.target, str, x, y)
}

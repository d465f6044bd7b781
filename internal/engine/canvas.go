// SPDX-License-Identifier: MIT
package engine

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Point is a position in canvas pixels.
type Point struct {
	X, Y float64
}

// Canvas is the set of draw primitives the renderer needs. Implementations
// do not own any engine state and are called once per frame.
type Canvas interface {
	// Wash paints c over the whole surface, blending with what is there.
	Wash(c color.Color)
	// Circle draws a filled circle with an outline.
	Circle(cx, cy, r float64, fill, stroke color.Color, strokeWidth float64)
	// Curve strokes a single smooth curve through points.
	Curve(points []Point, stroke color.Color, width float64)
	// Overlay composites the static overlay image centred on (cx, cy).
	Overlay(cx, cy, scale float64)
	// Text prints a line of status text at (x, y).
	Text(s string, x, y int)
}

// hsva converts HSV (hue: 0-360, saturation: 0-1, value: 0-1) plus an alpha
// in 0-1 to a non-premultiplied colour. Hue wraps in both directions.
func hsva(h, s, v, a float64) color.NRGBA {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	r, g, b := colorful.Hsv(h, clamp01(s), clamp01(v)).RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(clamp01(a) * 255))}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

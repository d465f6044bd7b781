// SPDX-License-Identifier: MIT
package engine

import (
	"image/color"

	"ringviz/internal/config"
)

// Renderer turns the engine state into draw calls. It never writes to the
// state it is given.
type Renderer struct {
	width, height float64

	wash         color.NRGBA
	ringAlpha    float64
	outline      color.NRGBA
	outlineWidth float64

	stride     int
	amplitude  float64
	curve      color.NRGBA
	curveWidth float64

	overlay      bool
	overlayScale float64
	showStatus   bool

	points []Point // scratch, reused across frames
}

// NewRenderer builds a renderer from the visual config.
func NewRenderer(vc config.VisualConfig) *Renderer {
	st := vc.Style
	return &Renderer{
		width:        float64(vc.Width),
		height:       float64(vc.Height),
		wash:         color.NRGBA{A: uint8(st.WashAlpha)},
		ringAlpha:    st.RingAlpha,
		outline:      hsva(0, 0, 0, st.OutlineAlpha),
		outlineWidth: st.OutlineWidth,
		stride:       vc.Waveform.Stride,
		amplitude:    vc.Waveform.Amplitude,
		curve:        hsva(st.CurveHue, st.CurveSaturation, 1, st.CurveAlpha),
		curveWidth:   st.CurveWidth,
		overlay:      st.Overlay != "",
		overlayScale: st.OverlayScale,
		showStatus:   st.ShowStatus,
	}
}

// Render draws one frame: the fading wash, the rings newest first, the
// smoothed waveform, the overlay and the status line.
func (r *Renderer) Render(c Canvas, rings []Ring, wave []Sample, status string) {
	// The translucent wash, rather than a clear, is what leaves trails.
	c.Wash(r.wash)

	for i := len(rings) - 1; i >= 0; i-- {
		ring := rings[i]
		fill := hsva(ring.Hue, 1, 1, r.ringAlpha)
		c.Circle(ring.X, ring.Y, ring.Radius, fill, r.outline, r.outlineWidth)
	}

	if pts := r.curvePoints(wave); len(pts) > 0 {
		c.Curve(pts, r.curve, r.curveWidth)
	}

	if r.overlay {
		c.Overlay(r.width/2, r.height/2, r.overlayScale)
	}

	if r.showStatus && status != "" {
		c.Text(status, 12, 12)
	}
}

// curvePoints samples every stride-th smoothed value and maps it onto the
// canvas: index to x across the full width, amplitude to a vertical offset
// around the centre line. Both ends are pinned to the centre line.
func (r *Renderer) curvePoints(wave []Sample) []Point {
	n := len(wave)
	if n == 0 {
		return nil
	}
	cy := r.height / 2
	stride := max(r.stride, 1)

	pts := r.points[:0]
	pts = append(pts, Point{X: 0, Y: cy})
	for i := 0; i < n; i += stride {
		x := 0.0
		if n > 1 {
			x = float64(i) / float64(n-1) * r.width
		}
		pts = append(pts, Point{X: x, Y: cy - wave[i].Value*r.amplitude})
	}
	pts = append(pts, Point{X: r.width, Y: cy})
	r.points = pts
	return pts
}

// SPDX-License-Identifier: MIT
package render

import "ringviz/internal/engine"

// segment is one cubic Bezier piece of a curve, starting where the previous
// piece ended.
type segment struct {
	c1, c2, end engine.Point
}

// catmullRom converts a Catmull-Rom spline through points into cubic Bezier
// segments. The end points are duplicated so the curve passes through every
// point, including the first and last.
func catmullRom(points []engine.Point, dst []segment) []segment {
	dst = dst[:0]
	n := len(points)
	if n < 2 {
		return dst
	}
	for i := 0; i < n-1; i++ {
		p0 := points[max(i-1, 0)]
		p1 := points[i]
		p2 := points[i+1]
		p3 := points[min(i+2, n-1)]
		dst = append(dst, segment{
			c1:  engine.Point{X: p1.X + (p2.X-p0.X)/6, Y: p1.Y + (p2.Y-p0.Y)/6},
			c2:  engine.Point{X: p2.X - (p3.X-p1.X)/6, Y: p2.Y - (p3.Y-p1.Y)/6},
			end: p2,
		})
	}
	return dst
}

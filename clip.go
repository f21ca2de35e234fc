/*
Copyright © 2024 the InMAP authors.
This file is part of tpoint.

tpoint is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

tpoint is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with tpoint.  If not, see <http://www.gnu.org/licenses/>.
*/

package tpoint

// Region codes of a point relative to a box.
const (
	codeLeft = 1 << iota
	codeRight
	codeBottom
	codeTop
	codeFront
	codeBack
)

// Codes of the maximum borders a point lies on.
const (
	borderXmax = 1 << iota
	borderYmax
	borderZmax
)

// computeCode returns the region code of p relative to box. Z is only
// considered if hasZ is true.
func computeCode(p Point, hasZ bool, box STBox) int {
	var code int
	if p.X < box.Xmin {
		code |= codeLeft
	} else if p.X > box.Xmax {
		code |= codeRight
	}
	if p.Y < box.Ymin {
		code |= codeBottom
	} else if p.Y > box.Ymax {
		code |= codeTop
	}
	if hasZ {
		if p.Z < box.Zmin {
			code |= codeFront
		} else if p.Z > box.Zmax {
			code |= codeBack
		}
	}
	return code
}

// computeMaxBorderCode returns the maximum borders of box that p, which is
// not outside box, lies on within epsilon.
func (k Kernel) computeMaxBorderCode(p Point, hasZ bool, box STBox) int {
	var code int
	if box.Xmax-p.X < k.Epsilon {
		code |= borderXmax
	}
	if box.Ymax-p.Y < k.Epsilon {
		code |= borderYmax
	}
	if hasZ && box.Zmax-p.Z < k.Epsilon {
		code |= borderZmax
	}
	return code
}

// clipSegment clips the segment from p1 to p2 to box using the
// Cohen-Sutherland algorithm extended to three dimensions. It returns the
// clipped endpoints and whether the segment intersects the box at all.
//
// If borderInc is false, the maximum borders of the box are outside it:
// a segment lying entirely on them is rejected, and inc1 and inc2 report
// whether each clipped endpoint is off them. Otherwise inc1 and inc2 are
// true.
func (k Kernel) clipSegment(p1, p2 Point, box STBox, hasZ, borderInc bool) (q1, q2 Point, inc1, inc2, ok bool) {
	code1 := computeCode(p1, hasZ, box)
	code2 := computeCode(p2, hasZ, box)
	for {
		if code1|code2 == 0 {
			break
		}
		if code1&code2 != 0 {
			return Point{}, Point{}, false, false, false
		}
		out := code1
		if out == 0 {
			out = code2
		}
		var p Point
		switch {
		case out&codeLeft != 0:
			p = alongX(p1, p2, box.Xmin, hasZ)
		case out&codeRight != 0:
			p = alongX(p1, p2, box.Xmax, hasZ)
		case out&codeBottom != 0:
			p = alongY(p1, p2, box.Ymin, hasZ)
		case out&codeTop != 0:
			p = alongY(p1, p2, box.Ymax, hasZ)
		case out&codeFront != 0:
			p = alongZ(p1, p2, box.Zmin)
		case out&codeBack != 0:
			p = alongZ(p1, p2, box.Zmax)
		}
		if out == code1 {
			p1, code1 = p, computeCode(p, hasZ, box)
		} else {
			p2, code2 = p, computeCode(p, hasZ, box)
		}
	}
	inc1, inc2 = true, true
	if !borderInc {
		max1 := k.computeMaxBorderCode(p1, hasZ, box)
		max2 := k.computeMaxBorderCode(p2, hasZ, box)
		if max1&max2 != 0 {
			return Point{}, Point{}, false, false, false
		}
		inc1, inc2 = max1 == 0, max2 == 0
	}
	return p1, p2, inc1, inc2, true
}

// alongX returns the point of the line through p1 and p2 at X = x.
func alongX(p1, p2 Point, x float64, hasZ bool) Point {
	f := (x - p1.X) / (p2.X - p1.X)
	p := Point{X: x, Y: p1.Y + (p2.Y-p1.Y)*f}
	if hasZ {
		p.Z = p1.Z + (p2.Z-p1.Z)*f
	}
	return p
}

func alongY(p1, p2 Point, y float64, hasZ bool) Point {
	f := (y - p1.Y) / (p2.Y - p1.Y)
	p := Point{X: p1.X + (p2.X-p1.X)*f, Y: y}
	if hasZ {
		p.Z = p1.Z + (p2.Z-p1.Z)*f
	}
	return p
}

func alongZ(p1, p2 Point, z float64) Point {
	f := (z - p1.Z) / (p2.Z - p1.Z)
	return Point{X: p1.X + (p2.X-p1.X)*f, Y: p1.Y + (p2.Y-p1.Y)*f, Z: z}
}

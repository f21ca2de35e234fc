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

import (
	"math"

	"github.com/ctessum/geom"
	"gonum.org/v1/gonum/floats"
)

// DefaultEpsilon is the tolerance used when no other is configured.
const DefaultEpsilon = 1e-6

// SegInter is the kind of intersection between two segments.
type SegInter int

const (
	// SegNoIntersection means the segments share no point.
	SegNoIntersection SegInter = iota
	// SegOverlap means the segments are collinear and share more than one
	// point.
	SegOverlap
	// SegCross means the segments cross at a point interior to both.
	SegCross
	// SegTouchEnd means the segments share an endpoint.
	SegTouchEnd
	// SegTouch means an endpoint of one segment lies in the interior of
	// the other.
	SegTouch
)

func (s SegInter) String() string {
	switch s {
	case SegNoIntersection:
		return "NoIntersection"
	case SegOverlap:
		return "Overlap"
	case SegCross:
		return "Cross"
	case SegTouchEnd:
		return "TouchEnd"
	case SegTouch:
		return "Touch"
	}
	return "SegInter(?)"
}

// Kernel holds the planar segment predicates.
type Kernel struct {
	// Epsilon is the tolerance under which a cross product is treated as
	// zero.
	Epsilon float64
}

// Side returns -1 if q is left of the line from p1 to p2, 1 if it is to the
// right, and 0 if it is on the line.
func (k Kernel) Side(p1, p2, q geom.Point) int {
	side := (q.X-p1.X)*(p2.Y-p1.Y) - (p2.X-p1.X)*(q.Y-p1.Y)
	if math.Abs(side) < k.Epsilon {
		return 0
	}
	if side < 0 {
		return -1
	}
	return 1
}

// segmentsInteract returns false if the bounding boxes of segments p and q
// are disjoint.
func (k Kernel) segmentsInteract(p1, p2, q1, q2 geom.Point) bool {
	if !k.rangesInteract(p1.X, p2.X, q1.X, q2.X) {
		return false
	}
	return k.rangesInteract(p1.Y, p2.Y, q1.Y, q2.Y)
}

func (k Kernel) rangesInteract(p1, p2, q1, q2 float64) bool {
	pr := []float64{p1, p2}
	qr := []float64{q1, q2}
	minp, maxp := floats.Min(pr), floats.Max(pr)
	minq, maxq := floats.Min(qr), floats.Max(qr)
	if minp > maxq && !floats.EqualWithinAbs(minp, maxq, k.Epsilon) {
		return false
	}
	if maxp < minq && !floats.EqualWithinAbs(maxp, minq, k.Epsilon) {
		return false
	}
	return true
}

// SegmentIntersection classifies the intersection of the closed segments
// ab and cd. The returned point is set only for SegTouchEnd.
func (k Kernel) SegmentIntersection(a, b, c, d geom.Point) (SegInter, geom.Point) {
	if !k.segmentsInteract(a, b, c, d) {
		return SegNoIntersection, geom.Point{}
	}
	pq1, pq2 := k.Side(a, b, c), k.Side(a, b, d)
	if pq1 != 0 && pq1 == pq2 {
		return SegNoIntersection, geom.Point{}
	}
	qp1, qp2 := k.Side(c, d, a), k.Side(c, d, b)
	if qp1 != 0 && qp1 == qp2 {
		return SegNoIntersection, geom.Point{}
	}
	if pq1 == 0 && pq2 == 0 && qp1 == 0 && qp2 == 0 {
		return collinearIntersection(a, b, c, d)
	}
	if pq1 == 0 || pq2 == 0 || qp1 == 0 || qp2 == 0 {
		if p, ok := sharedEndpoint(a, b, c, d); ok {
			return SegTouchEnd, p
		}
		return SegTouch, geom.Point{}
	}
	return SegCross, geom.Point{}
}

// collinearIntersection classifies collinear segments whose boxes
// interact.
func collinearIntersection(a, b, c, d geom.Point) (SegInter, geom.Point) {
	xmin := math.Max(math.Min(a.X, b.X), math.Min(c.X, d.X))
	xmax := math.Min(math.Max(a.X, b.X), math.Max(c.X, d.X))
	ymin := math.Max(math.Min(a.Y, b.Y), math.Min(c.Y, d.Y))
	ymax := math.Min(math.Max(a.Y, b.Y), math.Max(c.Y, d.Y))
	if xmin < xmax || ymin < ymax {
		return SegOverlap, geom.Point{}
	}
	if p, ok := sharedEndpoint(a, b, c, d); ok {
		return SegTouchEnd, p
	}
	return SegNoIntersection, geom.Point{}
}

// sharedEndpoint returns an endpoint of ab that is exactly equal to an
// endpoint of cd, testing b first.
func sharedEndpoint(a, b, c, d geom.Point) (geom.Point, bool) {
	if b == c || b == d {
		return b, true
	}
	if a == c || a == d {
		return a, true
	}
	return geom.Point{}, false
}

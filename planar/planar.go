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

// Package planar intersects paths with planar geometries.
package planar

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ctessum/geom"
	"gonum.org/v1/gonum/floats"
)

// ErrUnsupportedType is returned for geometries that are not made of
// points, lines and polygons.
var ErrUnsupportedType = errors.New("planar: unsupported geometry type")

// Planar computes intersections between paths and geometries, treating
// points closer than Epsilon as equal.
type Planar struct {
	Epsilon float64
}

// New returns a Planar with the given tolerance.
func New(epsilon float64) *Planar {
	return &Planar{Epsilon: epsilon}
}

// Intersects returns whether p is within g or on its boundary.
func (pl *Planar) Intersects(p geom.Point, g geom.Geom) (bool, error) {
	t, err := pl.prepare(g)
	if err != nil {
		return false, err
	}
	return t.covers(p), nil
}

// Intersection returns the parts of path that are within g or on its
// boundary: a geom.Point, geom.LineString, geom.MultiPoint,
// geom.MultiLineString or a geom.GeometryCollection of points and lines.
// It returns nil if path and g do not intersect.
func (pl *Planar) Intersection(path geom.LineString, g geom.Geom) (geom.Geom, error) {
	t, err := pl.prepare(g)
	if err != nil {
		return nil, err
	}
	if len(path) == 0 {
		return nil, nil
	}
	if len(path) == 1 {
		if t.covers(path[0]) {
			return path[0], nil
		}
		return nil, nil
	}
	events := t.events(path)

	var lines []geom.LineString
	var points []geom.Point
	var cur geom.LineString
	prevInside := false
	for k, s := range events {
		p := at(path, s)
		nextInside := k+1 < len(events) && t.covers(at(path, (s+events[k+1])/2))
		switch {
		case prevInside:
			cur = appendPoint(cur, p)
			if !nextInside {
				lines = append(lines, cur)
				cur = nil
			}
		case nextInside:
			cur = geom.LineString{p}
		case t.covers(p):
			points = append(points, p)
		}
		prevInside = nextInside
	}

	switch {
	case len(lines) == 0 && len(points) == 0:
		return nil, nil
	case len(lines) == 0 && len(points) == 1:
		return points[0], nil
	case len(lines) == 0:
		return geom.MultiPoint(points), nil
	case len(points) == 0 && len(lines) == 1:
		return lines[0], nil
	case len(points) == 0:
		return geom.MultiLineString(lines), nil
	}
	gc := make(geom.GeometryCollection, 0, len(lines)+len(points))
	for _, l := range lines {
		gc = append(gc, l)
	}
	for _, p := range points {
		gc = append(gc, p)
	}
	return gc, nil
}

func appendPoint(l geom.LineString, p geom.Point) geom.LineString {
	if len(l) > 0 && l[len(l)-1] == p {
		return l
	}
	return append(l, p)
}

// at returns the point of path at position s, where the integer part of s
// is the segment index and the fractional part the position within it.
func at(path geom.LineString, s float64) geom.Point {
	i := int(math.Floor(s))
	if i >= len(path)-1 {
		return path[len(path)-1]
	}
	if i < 0 {
		return path[0]
	}
	f := s - float64(i)
	if f == 0 {
		return path[i]
	}
	a, b := path[i], path[i+1]
	return geom.Point{X: a.X + (b.X-a.X)*f, Y: a.Y + (b.Y-a.Y)*f}
}

// target is a geometry broken down into the parts used for intersection.
type target struct {
	eps    float64
	polys  []geom.Polygonal
	edges  [][2]geom.Point
	points []geom.Point
}

func (pl *Planar) prepare(g geom.Geom) (*target, error) {
	t := &target{eps: pl.Epsilon}
	if err := t.add(g); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *target) add(g geom.Geom) error {
	switch g := g.(type) {
	case geom.Point:
		t.points = append(t.points, g)
	case geom.MultiPoint:
		t.points = append(t.points, g...)
	case geom.LineString:
		for i := 1; i < len(g); i++ {
			t.edges = append(t.edges, [2]geom.Point{g[i-1], g[i]})
		}
		if len(g) == 1 {
			t.points = append(t.points, g[0])
		}
	case geom.MultiLineString:
		for _, l := range g {
			if err := t.add(l); err != nil {
				return err
			}
		}
	case geom.Polygon:
		t.polys = append(t.polys, g)
		t.addRings(g)
	case geom.MultiPolygon:
		t.polys = append(t.polys, g)
		for _, p := range g {
			t.addRings(p)
		}
	case geom.GeometryCollection:
		for _, gg := range g {
			if err := t.add(gg); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedType, g)
	}
	return nil
}

func (t *target) addRings(p geom.Polygon) {
	for _, ring := range p {
		n := len(ring)
		for i := 1; i < n; i++ {
			t.edges = append(t.edges, [2]geom.Point{ring[i-1], ring[i]})
		}
		if n > 1 && ring[n-1] != ring[0] {
			t.edges = append(t.edges, [2]geom.Point{ring[n-1], ring[0]})
		}
	}
}

// covers returns whether p is within the geometry or within epsilon of
// its boundary.
func (t *target) covers(p geom.Point) bool {
	for _, poly := range t.polys {
		if p.Within(poly) != geom.Outside {
			return true
		}
	}
	for _, e := range t.edges {
		if distToSegment(p, e[0], e[1]) < t.eps {
			return true
		}
	}
	for _, q := range t.points {
		if math.Hypot(p.X-q.X, p.Y-q.Y) < t.eps {
			return true
		}
	}
	return false
}

// events returns the sorted positions along path at which it may enter or
// leave the geometry. Every vertex of path is an event.
func (t *target) events(path geom.LineString) []float64 {
	var s []float64
	for i := 1; i < len(path); i++ {
		a, b := path[i-1], path[i]
		base := float64(i - 1)
		s = append(s, base)
		for _, f := range t.segmentParams(a, b) {
			if f > 0 && f < 1 {
				s = append(s, base+f)
			}
		}
	}
	s = append(s, float64(len(path)-1))
	sort.Float64s(s)

	// Drop events at the same point, keeping vertices.
	out := s[:1]
	for _, v := range s[1:] {
		last := out[len(out)-1]
		p, q := at(path, last), at(path, v)
		if math.Hypot(p.X-q.X, p.Y-q.Y) >= t.eps {
			out = append(out, v)
			continue
		}
		if v == math.Trunc(v) {
			out[len(out)-1] = v
		}
	}
	return out
}

// segmentParams returns the fractions along the segment from a to b at
// which it meets the boundary or points of the geometry.
func (t *target) segmentParams(a, b geom.Point) []float64 {
	r := geom.Point{X: b.X - a.X, Y: b.Y - a.Y}
	rlen := math.Hypot(r.X, r.Y)
	if rlen == 0 {
		return nil
	}
	var out []float64
	project := func(p geom.Point) {
		f := ((p.X-a.X)*r.X + (p.Y-a.Y)*r.Y) / (rlen * rlen)
		f = clamp(f)
		q := geom.Point{X: a.X + r.X*f, Y: a.Y + r.Y*f}
		if math.Hypot(p.X-q.X, p.Y-q.Y) < t.eps {
			out = append(out, f)
		}
	}
	for _, q := range t.points {
		project(q)
	}
	for _, e := range t.edges {
		c, d := e[0], e[1]
		s := geom.Point{X: d.X - c.X, Y: d.Y - c.Y}
		slen := math.Hypot(s.X, s.Y)
		if slen == 0 {
			project(c)
			continue
		}
		denom := cross(r, s)
		qp := geom.Point{X: c.X - a.X, Y: c.Y - a.Y}
		if math.Abs(denom) <= t.eps*rlen*slen {
			// Parallel: only collinear edges meet the segment.
			project(c)
			project(d)
			continue
		}
		f := cross(qp, s) / denom
		u := cross(qp, r) / denom
		if within(f, t.eps/rlen) && within(u, t.eps/slen) {
			out = append(out, clamp(f))
		}
	}
	return out
}

func cross(p, q geom.Point) float64 { return p.X*q.Y - p.Y*q.X }

// within returns whether f is in [0, 1] with tolerance tol.
func within(f, tol float64) bool {
	return (f >= 0 || floats.EqualWithinAbs(f, 0, tol)) &&
		(f <= 1 || floats.EqualWithinAbs(f, 1, tol))
}

func clamp(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}

func distToSegment(p, a, b geom.Point) float64 {
	r := geom.Point{X: b.X - a.X, Y: b.Y - a.Y}
	l2 := r.X*r.X + r.Y*r.Y
	if l2 == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	f := clamp(((p.X-a.X)*r.X + (p.Y-a.Y)*r.Y) / l2)
	return math.Hypot(p.X-(a.X+r.X*f), p.Y-(a.Y+r.Y*f))
}

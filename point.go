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
	"fmt"
	"math"
	"time"

	"github.com/ctessum/geom"
)

// Point is a 2D or 3D position. Z is ignored unless the Ref of the
// trajectory holding the point has HasZ set.
type Point struct {
	X, Y, Z float64
}

// XY returns the planar projection of p.
func (p Point) XY() geom.Point {
	return geom.Point{X: p.X, Y: p.Y}
}

// eq returns whether p and q are exactly equal, considering Z only when
// hasZ is true.
func (p Point) eq(q Point, hasZ bool) bool {
	if p.X != q.X || p.Y != q.Y {
		return false
	}
	return !hasZ || p.Z == q.Z
}

func (p Point) finite() bool {
	for _, v := range [3]float64{p.X, p.Y, p.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (p Point) String() string {
	return fmt.Sprintf("POINT(%g %g %g)", p.X, p.Y, p.Z)
}

// Ref is the spatial reference carried by a trajectory.
type Ref struct {
	// SRID is the spatial reference identifier.
	SRID int

	// HasZ is whether the positions have a Z coordinate.
	HasZ bool

	// Geodetic is whether the coordinates are longitude/latitude on a
	// spheroid rather than planar.
	Geodetic bool
}

// Instant is a position at a timestamp.
type Instant struct {
	Value Point
	T     time.Time
}

func (inst Instant) String() string {
	return fmt.Sprintf("%s@%s", inst.Value, inst.T.Format(time.RFC3339Nano))
}

// Interp is the interpolation between consecutive instants of a sequence.
type Interp int

const (
	// Discrete sequences are defined only at their instants.
	Discrete Interp = iota
	// Step sequences hold each value until the next instant.
	Step
	// Linear sequences move in a straight line between instants.
	Linear
)

func (i Interp) String() string {
	switch i {
	case Discrete:
		return "Discrete"
	case Step:
		return "Step"
	case Linear:
		return "Linear"
	}
	return fmt.Sprintf("Interp(%d)", int(i))
}

// ParseInterp returns the interpolation named by s.
func ParseInterp(s string) (Interp, error) {
	for _, i := range []Interp{Discrete, Step, Linear} {
		if i.String() == s {
			return i, nil
		}
	}
	return 0, invalidArgf("ParseInterp", "unknown interpolation %q", s)
}

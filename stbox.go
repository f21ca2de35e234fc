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

	"github.com/ctessum/geom"
	"github.com/spatialmodel/tpoint/span"
)

// STBox is an axis-aligned spatiotemporal box. Dimensions whose Has flag
// is false are unconstrained.
type STBox struct {
	HasX, HasZ, HasT bool

	Xmin, Xmax float64
	Ymin, Ymax float64
	Zmin, Zmax float64

	Period span.Period

	SRID     int
	Geodetic bool
}

func (b STBox) validate() error {
	if !b.HasX && !b.HasT {
		return fmt.Errorf("box has neither a spatial nor a time dimension")
	}
	if b.HasZ && !b.HasX {
		return fmt.Errorf("box has a Z dimension but no X dimension")
	}
	if b.HasX && (b.Xmin > b.Xmax || b.Ymin > b.Ymax) {
		return fmt.Errorf("box minimum is greater than its maximum")
	}
	if b.HasZ && b.Zmin > b.Zmax {
		return fmt.Errorf("box Z minimum is greater than its maximum")
	}
	if b.HasT {
		if _, err := span.NewPeriod(b.Period.Lower, b.Period.Upper, b.Period.LowerInc, b.Period.UpperInc); err != nil {
			return err
		}
	}
	return nil
}

// Overlaps returns whether b and o share at least one point in every
// dimension that both of them have.
func (b STBox) Overlaps(o STBox) bool {
	if b.HasX && o.HasX {
		if b.Xmin > o.Xmax || o.Xmin > b.Xmax || b.Ymin > o.Ymax || o.Ymin > b.Ymax {
			return false
		}
	}
	if b.HasZ && o.HasZ {
		if b.Zmin > o.Zmax || o.Zmin > b.Zmax {
			return false
		}
	}
	if b.HasT && o.HasT {
		if !b.Period.Overlaps(o.Period) {
			return false
		}
	}
	return true
}

// Bounds returns the planar extent of b.
func (b STBox) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: b.Xmin, Y: b.Ymin},
		Max: geom.Point{X: b.Xmax, Y: b.Ymax},
	}
}

// Expand enlarges b so it contains o.
func (b *STBox) Expand(o STBox) {
	if o.HasX {
		if b.HasX {
			b.Xmin, b.Xmax = min(b.Xmin, o.Xmin), max(b.Xmax, o.Xmax)
			b.Ymin, b.Ymax = min(b.Ymin, o.Ymin), max(b.Ymax, o.Ymax)
		} else {
			b.HasX = true
			b.Xmin, b.Xmax, b.Ymin, b.Ymax = o.Xmin, o.Xmax, o.Ymin, o.Ymax
		}
	}
	if o.HasZ {
		if b.HasZ {
			b.Zmin, b.Zmax = min(b.Zmin, o.Zmin), max(b.Zmax, o.Zmax)
		} else {
			b.HasZ = true
			b.Zmin, b.Zmax = o.Zmin, o.Zmax
		}
	}
	if o.HasT {
		if b.HasT {
			ps := span.Normalize([]span.Period{b.Period, o.Period})
			b.Period, _ = ps.Span()
		} else {
			b.HasT = true
			b.Period = o.Period
		}
	}
}

func (b STBox) String() string {
	s := "STBOX"
	if b.HasX {
		if b.HasZ {
			s += fmt.Sprintf(" X[%g, %g] Y[%g, %g] Z[%g, %g]", b.Xmin, b.Xmax, b.Ymin, b.Ymax, b.Zmin, b.Zmax)
		} else {
			s += fmt.Sprintf(" X[%g, %g] Y[%g, %g]", b.Xmin, b.Xmax, b.Ymin, b.Ymax)
		}
	}
	if b.HasT {
		s += " T" + b.Period.String()
	}
	return s
}

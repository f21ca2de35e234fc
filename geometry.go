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
	"github.com/ctessum/geom"
)

// Geometry is a planar region that a moving point can be restricted to.
type Geometry struct {
	Geom     geom.Geom
	SRID     int
	Geodetic bool
}

// Empty returns whether g has no points.
func (g Geometry) Empty() bool {
	if g.Geom == nil {
		return true
	}
	b := g.Geom.Bounds()
	return b == nil || b.Empty()
}

// BBox returns the spatial box of g.
func (g Geometry) BBox() STBox {
	b := g.Geom.Bounds()
	return STBox{
		HasX: true,
		Xmin: b.Min.X, Xmax: b.Max.X,
		Ymin: b.Min.Y, Ymax: b.Max.Y,
		SRID:     g.SRID,
		Geodetic: g.Geodetic,
	}
}

// Planar computes planar intersections between trajectories and
// geometries.
type Planar interface {
	// Intersects returns whether p is within or on the boundary of g.
	Intersects(p geom.Point, g geom.Geom) (bool, error)

	// Intersection returns the part of path that lies within or on the
	// boundary of g, made of points and lines. It returns nil if there is
	// none.
	Intersection(path geom.LineString, g geom.Geom) (geom.Geom, error)
}

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

// Package tpoint restricts moving points to regions of space and time and
// splits their trajectories into pieces that do not cross themselves.
//
// A moving point is a Temporal value: a single TInstant, a TSequence of
// instants joined by discrete, step, or linear interpolation, or a
// TSequenceSet of sequences separated by gaps in time. The Engine type holds
// the operations on them.
package tpoint

import (
	"time"

	"github.com/spatialmodel/tpoint/span"
)

// Version gives the version of tpoint.
const Version = "0.1.0"

// Temporal is a moving point. It is implemented by *TInstant, *TSequence
// and *TSequenceSet only. Values are never modified after they are created.
type Temporal interface {
	// Ref returns the spatial reference of the positions.
	Ref() Ref

	// Interp returns the interpolation between instants. Instants
	// report Discrete.
	Interp() Interp

	// BBox returns the bounding box of the positions and timestamps.
	BBox() STBox

	// Time returns the timestamps at which the point is defined.
	Time() span.PeriodSet

	StartTimestamp() time.Time
	EndTimestamp() time.Time

	// NumInstants returns the number of stored instants.
	NumInstants() int

	clone() Temporal
}

// TInstant is a moving point defined at a single timestamp.
type TInstant struct {
	inst Instant
	ref  Ref
}

// NewTInstant returns a moving point defined only at inst.T.
func NewTInstant(inst Instant, ref Ref) (*TInstant, error) {
	if !inst.Value.finite() {
		return nil, invalidArgf("NewTInstant", "non-finite coordinates in %s", inst.Value)
	}
	if !ref.HasZ {
		inst.Value.Z = 0
	}
	return &TInstant{inst: inst, ref: ref}, nil
}

// Instant returns the position and timestamp of t.
func (t *TInstant) Instant() Instant { return t.inst }

func (t *TInstant) Ref() Ref                  { return t.ref }
func (t *TInstant) Interp() Interp            { return Discrete }
func (t *TInstant) StartTimestamp() time.Time { return t.inst.T }
func (t *TInstant) EndTimestamp() time.Time   { return t.inst.T }
func (t *TInstant) NumInstants() int          { return 1 }

func (t *TInstant) BBox() STBox {
	return boxOfInstants([]Instant{t.inst}, span.At(t.inst.T), t.ref)
}

func (t *TInstant) Time() span.PeriodSet {
	return span.PeriodSet{span.At(t.inst.T)}
}

func (t *TInstant) clone() Temporal {
	c := *t
	return &c
}

// boxOfInstants returns the box of the given instants over period p.
func boxOfInstants(instants []Instant, p span.Period, ref Ref) STBox {
	b := STBox{
		HasX: true, HasZ: ref.HasZ, HasT: true,
		Xmin: instants[0].Value.X, Xmax: instants[0].Value.X,
		Ymin: instants[0].Value.Y, Ymax: instants[0].Value.Y,
		Period:   p,
		SRID:     ref.SRID,
		Geodetic: ref.Geodetic,
	}
	if ref.HasZ {
		b.Zmin, b.Zmax = instants[0].Value.Z, instants[0].Value.Z
	}
	for _, inst := range instants[1:] {
		v := inst.Value
		b.Xmin = min(b.Xmin, v.X)
		b.Xmax = max(b.Xmax, v.X)
		b.Ymin = min(b.Ymin, v.Y)
		b.Ymax = max(b.Ymax, v.Y)
		if ref.HasZ {
			b.Zmin = min(b.Zmin, v.Z)
			b.Zmax = max(b.Zmax, v.Z)
		}
	}
	return b
}

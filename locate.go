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
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

func vec(p Point, hasZ bool) mgl64.Vec3 {
	if !hasZ {
		return mgl64.Vec3{p.X, p.Y, 0}
	}
	return mgl64.Vec3{p.X, p.Y, p.Z}
}

// locatePoint returns the fraction along the segment from a to b of the
// point of the segment closest to p, and the distance between them.
func locatePoint(a, b, p mgl64.Vec3) (fraction, dist float64) {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return 0, p.Sub(a).Len()
	}
	fraction = p.Sub(a).Dot(ab) / l2
	if fraction < 0 {
		fraction = 0
	} else if fraction > 1 {
		fraction = 1
	}
	closest := a.Add(ab.Mul(fraction))
	return fraction, p.Sub(closest).Len()
}

// timestampAtValue returns the timestamp at which the linear segment from
// inst1 to inst2 passes through value. ok is false if value is not within
// epsilon of the segment. The result may be at either end of the segment.
func timestampAtValue(epsilon float64, inst1, inst2 Instant, value Point, hasZ bool) (t time.Time, ok bool) {
	// Exact matches keep the stored timestamps.
	if inst1.Value.eq(value, hasZ) {
		return inst1.T, true
	}
	if inst2.Value.eq(value, hasZ) {
		return inst2.T, true
	}
	fraction, dist := locatePoint(vec(inst1.Value, hasZ), vec(inst2.Value, hasZ), vec(value, hasZ))
	if dist >= epsilon {
		return time.Time{}, false
	}
	d := inst2.T.Sub(inst1.T)
	return inst1.T.Add(time.Duration(fraction * float64(d))), true
}

// seqTimestampAtValue returns the first timestamp at which a simple linear
// sequence passes through value.
func seqTimestampAtValue(epsilon float64, seq *TSequence, value Point, hasZ bool) (time.Time, error) {
	for i := 1; i < len(seq.instants); i++ {
		if t, ok := timestampAtValue(epsilon, seq.instants[i-1], seq.instants[i], value, hasZ); ok {
			return t, nil
		}
	}
	return time.Time{}, internalf("timestampAtValue",
		"%s is not on the trajectory between %s and %s", value,
		seq.StartTimestamp().Format(time.RFC3339Nano), seq.EndTimestamp().Format(time.RFC3339Nano))
}

// valueAtTimestamp returns the position between inst1 and inst2 at t,
// where inst1.T <= t <= inst2.T.
func valueAtTimestamp(inst1, inst2 Instant, interp Interp, t time.Time) Point {
	if inst1.Value == inst2.Value || t.Equal(inst1.T) ||
		(interp != Linear && t.Before(inst2.T)) {
		return inst1.Value
	}
	if t.Equal(inst2.T) {
		return inst2.Value
	}
	ratio := float64(t.Sub(inst1.T)) / float64(inst2.T.Sub(inst1.T))
	v1 := vec(inst1.Value, true)
	v := v1.Add(vec(inst2.Value, true).Sub(v1).Mul(ratio))
	return Point{X: v.X(), Y: v.Y(), Z: v.Z()}
}

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
	"github.com/sirupsen/logrus"
)

// AtBox returns the part of temp within box.
func (e *Engine) AtBox(temp Temporal, box STBox, borderInc bool) (Temporal, error) {
	return e.RestrictBox(temp, box, borderInc, At)
}

// MinusBox returns the part of temp outside box.
func (e *Engine) MinusBox(temp Temporal, box STBox, borderInc bool) (Temporal, error) {
	return e.RestrictBox(temp, box, borderInc, Minus)
}

// RestrictBox restricts temp to the instants at which it is within
// (At) or outside (Minus) box. If borderInc is false, points on the
// maximum X, Y or Z border of the box are outside it; points on the
// minimum borders are always inside.
//
// The Z dimension is only considered when both temp and box have it.
// A box with a time dimension but no spatial dimension restricts temp to
// its period.
//
// If the bounding boxes of temp and box do not overlap, Minus returns an
// unmodified copy of temp, in the result shape described on Engine: a step
// or linear *TSequence comes back as a *TSequenceSet holding one sequence.
func (e *Engine) RestrictBox(temp Temporal, box STBox, borderInc bool, mode Mode) (Temporal, error) {
	const op = "RestrictBox"
	if temp == nil {
		return nil, invalidArgf(op, "nil moving point")
	}
	if err := box.validate(); err != nil {
		return nil, &Error{Kind: InvalidArgument, Op: op, Err: err}
	}
	if box.HasT && !box.HasX {
		return e.RestrictPeriod(temp, box.Period, mode), nil
	}
	ref := temp.Ref()
	if err := sameRef(op, ref, box.SRID, box.Geodetic); err != nil {
		return nil, err
	}
	if !temp.BBox().Overlaps(box) {
		e.debugMiss(op, temp, box)
		return miss(temp, mode), nil
	}

	r := &boxRestriction{
		Engine:    e,
		box:       box,
		borderInc: borderInc,
		hasZ:      ref.HasZ && box.HasZ,
	}
	switch t := temp.(type) {
	case *TInstant:
		if r.contains(t.inst) != (mode == At) {
			return nil, nil
		}
		return t.clone(), nil
	case *TSequence:
		if t.interp == Discrete {
			var instants []Instant
			for _, inst := range t.instants {
				if r.contains(inst) == (mode == At) {
					instants = append(instants, inst)
				}
			}
			if len(instants) == 0 {
				return nil, nil
			}
			return newSeq(instants, Discrete, true, true, t.ref), nil
		}
		seqs, err := r.continuous(t, mode)
		return seqSetOrNil(seqs), err
	case *TSequenceSet:
		return restrictSeqSet(t, box.Bounds(), box, mode, r.continuous)
	}
	return nil, invalidArgf(op, "unknown moving point type %T", temp)
}

// boxRestriction holds the arguments of a box restriction.
type boxRestriction struct {
	*Engine
	box       STBox
	borderInc bool
	hasZ      bool
}

// contains returns whether inst is within the box.
func (r *boxRestriction) contains(inst Instant) bool {
	if r.box.HasT && !r.box.Period.Contains(inst.T) {
		return false
	}
	return r.containsXYZ(inst.Value)
}

func (r *boxRestriction) containsXYZ(p Point) bool {
	code := computeCode(p, r.hasZ, r.box)
	if !r.borderInc {
		code |= r.kernel().computeMaxBorderCode(p, r.hasZ, r.box)
	}
	return code == 0
}

// continuous restricts a step or linear sequence.
func (r *boxRestriction) continuous(seq *TSequence, mode Mode) ([]*TSequence, error) {
	if len(seq.instants) == 1 {
		if r.contains(seq.instants[0]) != (mode == At) {
			return nil, nil
		}
		return []*TSequence{seq.clone().(*TSequence)}, nil
	}
	s := seq
	if r.box.HasT {
		if s = seq.AtPeriod(r.box.Period); s == nil {
			if mode == At {
				return nil, nil
			}
			return complement(seq, nil), nil
		}
	}
	var at []*TSequence
	var err error
	if seq.interp == Step {
		at, err = stepRuns(s, func(inst Instant) (bool, error) {
			return r.containsXYZ(inst.Value), nil
		})
	} else {
		at, err = r.linearAt(s)
	}
	if err != nil {
		return nil, err
	}
	if mode == At {
		return at, nil
	}
	return complement(seq, at), nil
}

// linearAt clips each segment of a linear sequence to the spatial
// dimensions of the box.
func (r *boxRestriction) linearAt(seq *TSequence) ([]*TSequence, error) {
	n := len(seq.instants)
	if n == 1 {
		if !r.containsXYZ(seq.instants[0].Value) {
			return nil, nil
		}
		return []*TSequence{seq.clone().(*TSequence)}, nil
	}
	k := r.kernel()
	var frags []*TSequence
	lowerInc := seq.lowerInc
	for i := 1; i < n; i++ {
		inst1, inst2 := seq.instants[i-1], seq.instants[i]
		upperInc := i == n-1 && seq.upperInc
		frag, err := r.clipInstants(k, inst1, inst2, lowerInc, upperInc, seq.ref)
		if err != nil {
			return nil, err
		}
		if frag != nil {
			frags = append(frags, frag)
		}
		lowerInc = true
	}
	set := joinSequences(frags)
	if set == nil {
		return nil, nil
	}
	r.log().WithFields(logrus.Fields{
		"segments":  n - 1,
		"fragments": len(set.seqs),
	}).Debug("tpoint: clipped linear sequence to box")
	return set.seqs, nil
}

// clipInstants returns the part of the segment from inst1 to inst2 within
// the box, or nil. lowerInc and upperInc are whether the segment includes
// its endpoints.
func (r *boxRestriction) clipInstants(k Kernel, inst1, inst2 Instant, lowerInc, upperInc bool, ref Ref) (*TSequence, error) {
	if inst1.Value.eq(inst2.Value, r.hasZ) {
		if !r.containsXYZ(inst1.Value) {
			return nil, nil
		}
		return newSeq([]Instant{inst1, inst2}, Linear, lowerInc, upperInc, ref), nil
	}
	q1, q2, inc1, inc2, ok := k.clipSegment(inst1.Value, inst2.Value, r.box, r.hasZ, r.borderInc)
	if !ok {
		return nil, nil
	}
	t1, ok1 := timestampAtValue(k.Epsilon, inst1, inst2, q1, r.hasZ)
	t2, ok2 := timestampAtValue(k.Epsilon, inst1, inst2, q2, r.hasZ)
	if !ok1 || !ok2 {
		err := internalf("RestrictBox", "clipped point is not on the segment from %s to %s", inst1, inst2)
		r.log().WithFields(logrus.Fields{"clip1": q1, "clip2": q2}).Error(err)
		return nil, err
	}
	// The bounds of the segment only apply at its own instants.
	if t1.Equal(inst1.T) {
		lowerInc = lowerInc && inc1
	} else {
		lowerInc = inc1
	}
	if t2.Equal(inst2.T) {
		upperInc = upperInc && inc2
	} else {
		upperInc = inc2
	}
	// Positions are recomputed from the timestamps.
	v1, v2 := inst1.Value, inst2.Value
	if !t1.Equal(inst1.T) {
		v1 = valueAtTimestamp(inst1, inst2, Linear, t1)
	}
	if !t2.Equal(inst2.T) {
		v2 = valueAtTimestamp(inst1, inst2, Linear, t2)
	}
	if !t1.Before(t2) || v1.eq(v2, ref.HasZ) {
		// The segment only touches the box. A single instant at an
		// excluded end of the segment is dropped.
		if (t1.Equal(inst2.T) && !upperInc) || (t1.Equal(inst1.T) && !lowerInc) {
			return nil, nil
		}
		return newSeq([]Instant{{Value: v1, T: t1}}, Linear, true, true, ref), nil
	}
	return newSeq([]Instant{{Value: v1, T: t1}, {Value: v2, T: t2}}, Linear, lowerInc, upperInc, ref), nil
}

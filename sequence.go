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

	"github.com/spatialmodel/tpoint/span"
)

// TSequence is a moving point defined by instants with strictly increasing
// timestamps and one interpolation between them.
type TSequence struct {
	instants           []Instant
	interp             Interp
	lowerInc, upperInc bool
	ref                Ref
	box                STBox
}

// NewTSequence returns a new sequence holding a copy of instants.
// lowerInc and upperInc state whether the first and last timestamps
// belong to the sequence.
func NewTSequence(instants []Instant, interp Interp, lowerInc, upperInc bool, ref Ref) (*TSequence, error) {
	const op = "NewTSequence"
	if len(instants) == 0 {
		return nil, invalidArgf(op, "no instants")
	}
	if interp < Discrete || interp > Linear {
		return nil, invalidArgf(op, "invalid interpolation %v", interp)
	}
	for i, inst := range instants {
		if !inst.Value.finite() {
			return nil, invalidArgf(op, "non-finite coordinates in instant %d", i)
		}
		if i > 0 && !instants[i-1].T.Before(inst.T) {
			return nil, invalidArgf(op, "timestamps are not strictly increasing at instant %d", i)
		}
	}
	if interp == Discrete && !(lowerInc && upperInc) {
		return nil, invalidArgf(op, "discrete sequences must have inclusive bounds")
	}
	if len(instants) == 1 && !(lowerInc && upperInc) {
		return nil, invalidArgf(op, "instantaneous sequences must have inclusive bounds")
	}
	n := len(instants)
	if interp == Step && !upperInc && n > 1 &&
		!instants[n-2].Value.eq(instants[n-1].Value, ref.HasZ) {
		return nil, invalidArgf(op, "the last two values of a step sequence with an exclusive upper bound must be equal")
	}
	c := make([]Instant, n)
	copy(c, instants)
	if !ref.HasZ {
		for i := range c {
			c[i].Value.Z = 0
		}
	}
	return newSeq(c, interp, lowerInc, upperInc, ref), nil
}

// newSeq creates a sequence that takes ownership of instants without
// checking them.
func newSeq(instants []Instant, interp Interp, lowerInc, upperInc bool, ref Ref) *TSequence {
	if len(instants) == 1 {
		lowerInc, upperInc = true, true
	}
	s := &TSequence{
		instants: instants,
		interp:   interp,
		lowerInc: lowerInc,
		upperInc: upperInc,
		ref:      ref,
	}
	s.box = boxOfInstants(instants, s.Period(), ref)
	return s
}

// Instants returns a copy of the instants of s.
func (s *TSequence) Instants() []Instant {
	c := make([]Instant, len(s.instants))
	copy(c, s.instants)
	return c
}

// InstantN returns the i-th instant of s.
func (s *TSequence) InstantN(i int) Instant { return s.instants[i] }

func (s *TSequence) LowerInc() bool            { return s.lowerInc }
func (s *TSequence) UpperInc() bool            { return s.upperInc }
func (s *TSequence) Ref() Ref                  { return s.ref }
func (s *TSequence) Interp() Interp            { return s.interp }
func (s *TSequence) BBox() STBox               { return s.box }
func (s *TSequence) NumInstants() int          { return len(s.instants) }
func (s *TSequence) StartTimestamp() time.Time { return s.instants[0].T }
func (s *TSequence) EndTimestamp() time.Time   { return s.instants[len(s.instants)-1].T }

// Period returns the time span of s.
func (s *TSequence) Period() span.Period {
	return span.Period{
		Lower: s.StartTimestamp(), Upper: s.EndTimestamp(),
		LowerInc: s.lowerInc, UpperInc: s.upperInc,
	}
}

// Time returns the period of a continuous sequence, or the set of
// timestamps of a discrete one.
func (s *TSequence) Time() span.PeriodSet {
	if s.interp != Discrete {
		return span.PeriodSet{s.Period()}
	}
	ps := make(span.PeriodSet, len(s.instants))
	for i, inst := range s.instants {
		ps[i] = span.At(inst.T)
	}
	return ps
}

func (s *TSequence) clone() Temporal {
	return newSeq(s.Instants(), s.interp, s.lowerInc, s.upperInc, s.ref)
}

// sub returns a new sequence made of copies of instants [from, to].
func (s *TSequence) sub(from, to int, lowerInc, upperInc bool) *TSequence {
	c := make([]Instant, to-from+1)
	copy(c, s.instants[from:to+1])
	return newSeq(c, s.interp, lowerInc, upperInc, s.ref)
}

// valueAt returns the position of a continuous sequence at t, which must
// be within the span of its instants.
func (s *TSequence) valueAt(t time.Time) Point {
	n := len(s.instants)
	if !t.After(s.instants[0].T) {
		return s.instants[0].Value
	}
	if !t.Before(s.instants[n-1].T) {
		return s.instants[n-1].Value
	}
	i := s.segmentAt(t)
	return valueAtTimestamp(s.instants[i], s.instants[i+1], s.interp, t)
}

// segmentAt returns the index i of the segment such that
// instants[i].T <= t < instants[i+1].T.
func (s *TSequence) segmentAt(t time.Time) int {
	lo, hi := 0, len(s.instants)-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if s.instants[mid].T.After(t) {
			hi = mid
		} else {
			lo = mid
		}
	}
	return lo
}

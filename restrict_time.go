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
	"github.com/spatialmodel/tpoint/span"
)

// AtPeriod returns the part of s within p, or nil if there is none.
// Step sequences cut by an exclusive upper bound hold their last value up
// to the bound.
func (s *TSequence) AtPeriod(p span.Period) *TSequence {
	if s.interp == Discrete {
		return s.filterInstants(span.PeriodSet{p}, At)
	}
	inter, ok := s.Period().Intersection(p)
	if !ok {
		return nil
	}
	if len(s.instants) == 1 {
		return s.clone().(*TSequence)
	}
	if inter.IsInstant() {
		inst := Instant{Value: s.valueAt(inter.Lower), T: inter.Lower}
		return newSeq([]Instant{inst}, s.interp, true, true, s.ref)
	}
	instants := []Instant{{Value: s.valueAt(inter.Lower), T: inter.Lower}}
	for _, inst := range s.instants {
		if inst.T.After(inter.Lower) && inst.T.Before(inter.Upper) {
			instants = append(instants, inst)
		}
	}
	last := instants[len(instants)-1].Value
	if s.interp == Linear || inter.UpperInc {
		last = s.valueAt(inter.Upper)
	}
	instants = append(instants, Instant{Value: last, T: inter.Upper})
	return newSeq(instants, s.interp, inter.LowerInc, inter.UpperInc, s.ref)
}

// filterInstants returns the instants of a discrete sequence that are
// (At) or are not (Minus) within ps.
func (s *TSequence) filterInstants(ps span.PeriodSet, mode Mode) *TSequence {
	var instants []Instant
	for _, inst := range s.instants {
		if ps.Contains(inst.T) == (mode == At) {
			instants = append(instants, inst)
		}
	}
	if len(instants) == 0 {
		return nil
	}
	return newSeq(instants, Discrete, true, true, s.ref)
}

// restrictPeriodSet returns the pieces of a continuous sequence within
// (At) or outside (Minus) ps.
func (s *TSequence) restrictPeriodSet(ps span.PeriodSet, mode Mode) []*TSequence {
	var periods span.PeriodSet
	if mode == At {
		periods = ps.IntersectPeriod(s.Period())
	} else {
		periods = span.Complement(s.Period(), ps)
	}
	var out []*TSequence
	for _, p := range periods {
		if r := s.AtPeriod(p); r != nil {
			out = append(out, r)
		}
	}
	return out
}

func restrictPeriodSet(temp Temporal, ps span.PeriodSet, mode Mode) Temporal {
	switch t := temp.(type) {
	case *TInstant:
		if ps.Contains(t.inst.T) == (mode == At) {
			return t.clone()
		}
		return nil
	case *TSequence:
		if t.interp == Discrete {
			if r := t.filterInstants(ps, mode); r != nil {
				return r
			}
			return nil
		}
		return seqSetOrNil(t.restrictPeriodSet(ps, mode))
	case *TSequenceSet:
		var seqs []*TSequence
		for _, s := range t.seqs {
			seqs = append(seqs, s.restrictPeriodSet(ps, mode)...)
		}
		return seqSetOrNil(seqs)
	}
	return nil
}

// seqSetOrNil returns a set of seqs, or a nil Temporal if seqs is empty.
func seqSetOrNil(seqs []*TSequence) Temporal {
	if len(seqs) == 0 {
		return nil
	}
	return newSeqSet(seqs)
}

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
	"sort"
	"sync"
	"time"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"github.com/spatialmodel/tpoint/span"
)

// TSequenceSet is a moving point made of step or linear sequences that
// are ordered and disjoint in time.
type TSequenceSet struct {
	seqs []*TSequence
	box  STBox

	indexOnce sync.Once
	index     *rtree.Rtree
}

// NewTSequenceSet returns a new set of the given sequences.
func NewTSequenceSet(seqs []*TSequence) (*TSequenceSet, error) {
	const op = "NewTSequenceSet"
	if len(seqs) == 0 {
		return nil, invalidArgf(op, "no sequences")
	}
	for i, s := range seqs {
		if s == nil {
			return nil, invalidArgf(op, "sequence %d is nil", i)
		}
		if s.interp == Discrete {
			return nil, invalidArgf(op, "sequence %d has discrete interpolation", i)
		}
		if i == 0 {
			continue
		}
		prev := seqs[i-1]
		if s.interp != prev.interp {
			return nil, invalidArgf(op, "sequence %d has interpolation %v, not %v", i, s.interp, prev.interp)
		}
		if s.ref != prev.ref {
			return nil, invalidArgf(op, "sequence %d has spatial reference %+v, not %+v", i, s.ref, prev.ref)
		}
		if !precedes(prev, s) {
			return nil, invalidArgf(op, "sequence %d overlaps or precedes sequence %d", i, i-1)
		}
	}
	c := make([]*TSequence, len(seqs))
	copy(c, seqs)
	return newSeqSet(c), nil
}

// precedes returns whether a ends before b starts.
func precedes(a, b *TSequence) bool {
	ae, bs := a.EndTimestamp(), b.StartTimestamp()
	if ae.Before(bs) {
		return true
	}
	return ae.Equal(bs) && !(a.upperInc && b.lowerInc)
}

// newSeqSet creates a set that takes ownership of seqs without checking
// them.
func newSeqSet(seqs []*TSequence) *TSequenceSet {
	ss := &TSequenceSet{seqs: seqs, box: seqs[0].box}
	for _, s := range seqs[1:] {
		ss.box.Expand(s.box)
	}
	return ss
}

// intersecting returns the indices, in time order, of the sequences whose
// planar bounds intersect b. The spatial index is built on first use.
func (ss *TSequenceSet) intersecting(b *geom.Bounds) []int {
	ss.indexOnce.Do(func() {
		ss.index = rtree.NewTree(25, 50)
		for i, s := range ss.seqs {
			ss.index.Insert(newSeqEntry(i, s.box.Bounds()))
		}
	})
	var out []int
	for _, c := range ss.index.SearchIntersect(b) {
		out = append(out, c.(*seqEntry).i)
	}
	sort.Ints(out)
	return out
}

// seqEntry is a sequence of a set held in a spatial index, stored as
// the rectangle of its planar bounds.
type seqEntry struct {
	geom.Polygon
	i int
}

func newSeqEntry(i int, b *geom.Bounds) *seqEntry {
	return &seqEntry{
		i: i,
		Polygon: geom.Polygon{{
			{X: b.Min.X, Y: b.Min.Y}, {X: b.Max.X, Y: b.Min.Y},
			{X: b.Max.X, Y: b.Max.Y}, {X: b.Min.X, Y: b.Max.Y},
			{X: b.Min.X, Y: b.Min.Y},
		}},
	}
}

// Sequences returns the sequences of ss.
func (ss *TSequenceSet) Sequences() []*TSequence {
	c := make([]*TSequence, len(ss.seqs))
	copy(c, ss.seqs)
	return c
}

// SequenceN returns the i-th sequence of ss.
func (ss *TSequenceSet) SequenceN(i int) *TSequence { return ss.seqs[i] }

// NumSequences returns the number of sequences in ss.
func (ss *TSequenceSet) NumSequences() int { return len(ss.seqs) }

func (ss *TSequenceSet) Ref() Ref                  { return ss.seqs[0].ref }
func (ss *TSequenceSet) Interp() Interp            { return ss.seqs[0].interp }
func (ss *TSequenceSet) BBox() STBox               { return ss.box }
func (ss *TSequenceSet) StartTimestamp() time.Time { return ss.seqs[0].StartTimestamp() }
func (ss *TSequenceSet) EndTimestamp() time.Time   { return ss.seqs[len(ss.seqs)-1].EndTimestamp() }

func (ss *TSequenceSet) NumInstants() int {
	var n int
	for _, s := range ss.seqs {
		n += len(s.instants)
	}
	return n
}

func (ss *TSequenceSet) Time() span.PeriodSet {
	ps := make(span.PeriodSet, len(ss.seqs))
	for i, s := range ss.seqs {
		ps[i] = s.Period()
	}
	return span.Normalize(ps)
}

func (ss *TSequenceSet) clone() Temporal {
	seqs := make([]*TSequence, len(ss.seqs))
	for i, s := range ss.seqs {
		seqs[i] = s.clone().(*TSequence)
	}
	return newSeqSet(seqs)
}

// joinSequences assembles ordered, disjoint sequences into a set, joining
// neighbors that meet at a shared timestamp with the same position.
// It returns nil if seqs is empty.
func joinSequences(seqs []*TSequence) *TSequenceSet {
	if len(seqs) == 0 {
		return nil
	}
	out := []*TSequence{seqs[0]}
	for _, s := range seqs[1:] {
		last := out[len(out)-1]
		if j := join(last, s); j != nil {
			out[len(out)-1] = j
			continue
		}
		out = append(out, s)
	}
	return newSeqSet(out)
}

// join returns a and b as a single sequence, or nil if they cannot be
// joined.
func join(a, b *TSequence) *TSequence {
	if !a.EndTimestamp().Equal(b.StartTimestamp()) || !(a.upperInc || b.lowerInc) {
		return nil
	}
	na := len(a.instants)
	last, first := a.instants[na-1], b.instants[0]
	var instants []Instant
	switch {
	case a.interp == Step && !a.upperInc:
		// The last instant of a only repeats the value before it.
		instants = append(instants, a.instants[:na-1]...)
		instants = append(instants, b.instants...)
	case last.Value.eq(first.Value, a.ref.HasZ):
		instants = append(instants, a.instants...)
		instants = append(instants, b.instants[1:]...)
	default:
		return nil
	}
	if len(instants) == 1 {
		return newSeq(instants, a.interp, true, true, a.ref)
	}
	lowerInc := a.lowerInc
	if len(a.instants) == 1 {
		lowerInc = true
	}
	upperInc := b.upperInc
	if len(b.instants) == 1 {
		upperInc = true
	}
	return newSeq(instants, a.interp, lowerInc, upperInc, a.ref)
}

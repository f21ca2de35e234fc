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

// A moving point is simple when its trajectory does not cross itself.
// Instants are simple. Discrete sequences are simple when no position is
// visited twice, and step sequences when no position is returned to after
// leaving it. Linear sequences are simple when no two segments intersect
// other than consecutive segments at their shared instant, and no segment
// is stationary. Sequence sets are simple when each of their sequences is.

// findSplitsDiscStep returns the instants at which a discrete or step
// sequence must be cut so that no fragment visits a position twice, and
// the number of cuts.
func findSplitsDiscStep(seq *TSequence) ([]bool, int) {
	n := len(seq.instants)
	splits := make([]bool, n)
	// For step sequences only the first instant of a run of equal
	// positions is considered.
	idx := make([]int, 0, n)
	for i, inst := range seq.instants {
		if seq.interp == Step && i > 0 &&
			inst.Value.eq(seq.instants[i-1].Value, seq.ref.HasZ) {
			continue
		}
		idx = append(idx, i)
	}
	value := func(k int) Point { return seq.instants[idx[k]].Value }

	var count int
	start, end := 0, len(idx)-1
	for start < end {
		j, k := start, start+1
		for k <= end {
			if value(j).eq(value(k), seq.ref.HasZ) {
				splits[idx[k]] = true
				count++
				start = k
				break
			}
			if j < k-1 {
				j++
			} else {
				k++
				j = start
			}
		}
		if k > end {
			break
		}
	}
	return splits, count
}

// findSplitsLinear returns the instants at which a linear sequence must be
// cut so that no fragment intersects itself, and the number of cuts.
// Only X and Y are considered.
func findSplitsLinear(k Kernel, seq *TSequence) ([]bool, int) {
	n := len(seq.instants)
	points := make([]geom.Point, n)
	splits := make([]bool, n)
	var count int
	points[0] = seq.instants[0].Value.XY()
	for i := 1; i < n; i++ {
		points[i] = seq.instants[i].Value.XY()
		// A stationary segment becomes a fragment of its own.
		if points[i-1] == points[i] {
			if i > 1 && !splits[i-1] {
				splits[i-1] = true
				count++
			}
			if i < n-1 {
				splits[i] = true
				count++
			}
		}
	}

	start := 0
	for start < n-2 {
		end := start + 1
		for end < n-1 && !splits[end] {
			end++
		}
		if end == start+1 {
			start = end
			continue
		}
		i, j := start, start+1
		for j < end {
			inter, p := k.SegmentIntersection(points[i], points[i+1], points[j], points[j+1])
			// Consecutive segments always touch at their shared point.
			corner := inter == SegTouchEnd && j == i+1 && p == points[j]
			if inter != SegNoIntersection && !corner {
				end = j
				splits[end] = true
				count++
				break
			}
			if i < j-1 {
				i++
			} else {
				j++
				i = start
			}
		}
		start = end
	}
	return splits, count
}

// alwaysSimple returns whether seq is too short to intersect itself.
func alwaysSimple(seq *TSequence) bool {
	n := len(seq.instants)
	return n == 1 || (seq.interp != Discrete && n == 2)
}

func (k Kernel) seqIsSimple(seq *TSequence) bool {
	if alwaysSimple(seq) {
		return true
	}
	var count int
	if seq.interp == Linear {
		_, count = findSplitsLinear(k, seq)
	} else {
		_, count = findSplitsDiscStep(seq)
	}
	return count == 0
}

func (k Kernel) isSimple(temp Temporal) bool {
	switch t := temp.(type) {
	case *TInstant:
		return true
	case *TSequence:
		return k.seqIsSimple(t)
	case *TSequenceSet:
		for _, s := range t.seqs {
			if !k.seqIsSimple(s) {
				return false
			}
		}
		return true
	}
	return false
}

// makeSimpleSeq splits seq into simple fragments.
func (k Kernel) makeSimpleSeq(seq *TSequence) []*TSequence {
	if alwaysSimple(seq) {
		return []*TSequence{seq.clone().(*TSequence)}
	}
	var splits []bool
	var count int
	if seq.interp == Linear {
		splits, count = findSplitsLinear(k, seq)
	} else {
		splits, count = findSplitsDiscStep(seq)
	}
	if count == 0 {
		return []*TSequence{seq.clone().(*TSequence)}
	}
	if seq.interp == Discrete {
		return splitDiscrete(seq, splits, count)
	}
	return splitContinuous(seq, splits, count)
}

func splitDiscrete(seq *TSequence, splits []bool, count int) []*TSequence {
	n := len(seq.instants)
	out := make([]*TSequence, 0, count+1)
	for start := 0; start < n; {
		end := start + 1
		for end < n && !splits[end] {
			end++
		}
		out = append(out, seq.sub(start, end-1, true, true))
		start = end
	}
	return out
}

// splitContinuous cuts a step or linear sequence at the given instants.
// Neighboring fragments share the instant at the cut. Step fragments
// hold their last value up to the cut with an exclusive upper bound.
func splitContinuous(seq *TSequence, splits []bool, count int) []*TSequence {
	n := len(seq.instants)
	out := make([]*TSequence, 0, count+1)
	start := 0
	for start < n-1 {
		end := start + 1
		for end < n-1 && !splits[end] {
			end++
		}
		lowerInc := true
		if start == 0 {
			lowerInc = seq.lowerInc
		}
		upperInc := true
		if end == n-1 {
			upperInc = seq.upperInc && !splits[n-1]
		}
		frag := make([]Instant, end-start+1)
		copy(frag, seq.instants[start:end+1])
		last := len(frag) - 1
		if seq.interp == Step && (end < n-1 || splits[n-1]) {
			frag[last] = Instant{Value: frag[last-1].Value, T: frag[last].T}
			upperInc = false
		}
		out = append(out, newSeq(frag, seq.interp, lowerInc, upperInc, seq.ref))
		start = end
	}
	if len(out) < count+1 && seq.upperInc {
		// The last instant starts a fragment of its own.
		out = append(out, seq.sub(n-1, n-1, true, true))
	}
	return out
}

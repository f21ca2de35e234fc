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

package span

import (
	"sort"
	"strings"
	"time"
)

// PeriodSet is an ordered set of periods that neither overlap nor touch.
// Use Normalize to create one from arbitrary periods.
type PeriodSet []Period

// Normalize sorts the given periods and merges the ones that overlap or are
// adjacent. The input slice is not modified.
func Normalize(periods []Period) PeriodSet {
	if len(periods) == 0 {
		return nil
	}
	sorted := make([]Period, len(periods))
	copy(sorted, periods)
	sort.SliceStable(sorted, func(i, j int) bool {
		return cmpLower(sorted[i].Lower, sorted[i].LowerInc,
			sorted[j].Lower, sorted[j].LowerInc) < 0
	})
	o := PeriodSet{sorted[0]}
	for _, p := range sorted[1:] {
		last := &o[len(o)-1]
		if mergeable(*last, p) {
			if cmpUpper(p.Upper, p.UpperInc, last.Upper, last.UpperInc) > 0 {
				last.Upper, last.UpperInc = p.Upper, p.UpperInc
			}
			continue
		}
		o = append(o, p)
	}
	return o
}

// mergeable returns whether b, which does not start before a, overlaps or
// touches a.
func mergeable(a, b Period) bool {
	if b.Lower.Before(a.Upper) {
		return true
	}
	return b.Lower.Equal(a.Upper) && (a.UpperInc || b.LowerInc)
}

// Contains returns whether t is within one of the periods in s.
func (s PeriodSet) Contains(t time.Time) bool {
	i := sort.Search(len(s), func(i int) bool { return !s[i].Upper.Before(t) })
	for ; i < len(s) && !s[i].Lower.After(t); i++ {
		if s[i].Contains(t) {
			return true
		}
	}
	return false
}

// Span returns the smallest period containing all of s. ok is false if s
// is empty.
func (s PeriodSet) Span() (p Period, ok bool) {
	if len(s) == 0 {
		return Period{}, false
	}
	return Period{
		Lower: s[0].Lower, LowerInc: s[0].LowerInc,
		Upper: s[len(s)-1].Upper, UpperInc: s[len(s)-1].UpperInc,
	}, true
}

// Duration returns the total length of the periods in s.
func (s PeriodSet) Duration() time.Duration {
	var d time.Duration
	for _, p := range s {
		d += p.Duration()
	}
	return d
}

// Union returns the timestamps that are in either s or o.
func (s PeriodSet) Union(o PeriodSet) PeriodSet {
	all := make([]Period, 0, len(s)+len(o))
	all = append(all, s...)
	all = append(all, o...)
	return Normalize(all)
}

// Intersection returns the timestamps that are in both s and o.
func (s PeriodSet) Intersection(o PeriodSet) PeriodSet {
	var r PeriodSet
	i, j := 0, 0
	for i < len(s) && j < len(o) {
		if inter, ok := s[i].Intersection(o[j]); ok {
			r = append(r, inter)
		}
		if cmpUpper(s[i].Upper, s[i].UpperInc, o[j].Upper, o[j].UpperInc) < 0 {
			i++
		} else {
			j++
		}
	}
	return r
}

// IntersectPeriod returns the timestamps of s that are within p.
func (s PeriodSet) IntersectPeriod(p Period) PeriodSet {
	return s.Intersection(PeriodSet{p})
}

// Minus returns the timestamps of s that are not in o.
func (s PeriodSet) Minus(o PeriodSet) PeriodSet {
	var r PeriodSet
	for _, p := range s {
		r = append(r, Complement(p, o)...)
	}
	return r
}

// Complement returns the timestamps of p that are not in s.
func Complement(p Period, s PeriodSet) PeriodSet {
	var r PeriodSet
	lower, lowerInc := p.Lower, p.LowerInc
	for _, q := range s.IntersectPeriod(p) {
		piece := Period{Lower: lower, LowerInc: lowerInc, Upper: q.Lower, UpperInc: !q.LowerInc}
		if piece.valid() {
			r = append(r, piece)
		}
		lower, lowerInc = q.Upper, !q.UpperInc
	}
	piece := Period{Lower: lower, LowerInc: lowerInc, Upper: p.Upper, UpperInc: p.UpperInc}
	if piece.valid() {
		r = append(r, piece)
	}
	return r
}

func (s PeriodSet) String() string {
	parts := make([]string, len(s))
	for i, p := range s {
		parts[i] = p.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

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

// Package span holds one-dimensional intervals with inclusive or exclusive
// bounds: time periods, sets of time periods, and spans of float values.
package span

import (
	"fmt"
	"time"
)

// Period is an interval of time. Either bound may be inclusive or exclusive.
// A period where Lower equals Upper must have both bounds inclusive.
type Period struct {
	Lower, Upper       time.Time
	LowerInc, UpperInc bool
}

// NewPeriod returns a new period, checking that the bounds are valid.
func NewPeriod(lower, upper time.Time, lowerInc, upperInc bool) (Period, error) {
	p := Period{Lower: lower, Upper: upper, LowerInc: lowerInc, UpperInc: upperInc}
	if !p.valid() {
		return Period{}, fmt.Errorf("span: invalid period %s", p)
	}
	return p, nil
}

// At returns the period that contains only t.
func At(t time.Time) Period {
	return Period{Lower: t, Upper: t, LowerInc: true, UpperInc: true}
}

func (p Period) valid() bool {
	if p.Lower.Before(p.Upper) {
		return true
	}
	return p.Lower.Equal(p.Upper) && p.LowerInc && p.UpperInc
}

// IsInstant returns whether p contains a single timestamp.
func (p Period) IsInstant() bool {
	return p.Lower.Equal(p.Upper)
}

// Duration returns the length of p.
func (p Period) Duration() time.Duration {
	return p.Upper.Sub(p.Lower)
}

// Contains returns whether t is within p.
func (p Period) Contains(t time.Time) bool {
	if t.Before(p.Lower) || t.After(p.Upper) {
		return false
	}
	if t.Equal(p.Lower) && !p.LowerInc {
		return false
	}
	if t.Equal(p.Upper) && !p.UpperInc {
		return false
	}
	return true
}

// Overlaps returns whether p and q share at least one timestamp.
func (p Period) Overlaps(q Period) bool {
	_, ok := p.Intersection(q)
	return ok
}

// Intersection returns the timestamps shared by p and q. ok is false
// if there are none.
func (p Period) Intersection(q Period) (r Period, ok bool) {
	r.Lower, r.LowerInc = maxLower(p.Lower, p.LowerInc, q.Lower, q.LowerInc)
	r.Upper, r.UpperInc = minUpper(p.Upper, p.UpperInc, q.Upper, q.UpperInc)
	if !r.valid() {
		return Period{}, false
	}
	return r, true
}

// Adjacent returns whether p and q do not overlap but together form
// a single contiguous period.
func (p Period) Adjacent(q Period) bool {
	if p.Upper.Equal(q.Lower) {
		return p.UpperInc != q.LowerInc
	}
	if q.Upper.Equal(p.Lower) {
		return q.UpperInc != p.LowerInc
	}
	return false
}

func (p Period) String() string {
	l, u := "(", ")"
	if p.LowerInc {
		l = "["
	}
	if p.UpperInc {
		u = "]"
	}
	return fmt.Sprintf("%s%s, %s%s", l, p.Lower.Format(time.RFC3339Nano),
		p.Upper.Format(time.RFC3339Nano), u)
}

// cmpLower orders two lower bounds. An inclusive bound comes before an
// exclusive one at the same timestamp.
func cmpLower(t1 time.Time, inc1 bool, t2 time.Time, inc2 bool) int {
	switch {
	case t1.Before(t2):
		return -1
	case t1.After(t2):
		return 1
	case inc1 == inc2:
		return 0
	case inc1:
		return -1
	}
	return 1
}

// cmpUpper orders two upper bounds. An exclusive bound comes before an
// inclusive one at the same timestamp.
func cmpUpper(t1 time.Time, inc1 bool, t2 time.Time, inc2 bool) int {
	switch {
	case t1.Before(t2):
		return -1
	case t1.After(t2):
		return 1
	case inc1 == inc2:
		return 0
	case inc1:
		return 1
	}
	return -1
}

func maxLower(t1 time.Time, inc1 bool, t2 time.Time, inc2 bool) (time.Time, bool) {
	if cmpLower(t1, inc1, t2, inc2) >= 0 {
		return t1, inc1
	}
	return t2, inc2
}

func minUpper(t1 time.Time, inc1 bool, t2 time.Time, inc2 bool) (time.Time, bool) {
	if cmpUpper(t1, inc1, t2, inc2) <= 0 {
		return t1, inc1
	}
	return t2, inc2
}

// FloatSpan is an interval of float values, used for example to restrict
// the Z coordinate of a moving point.
type FloatSpan struct {
	Lower, Upper       float64
	LowerInc, UpperInc bool
}

// NewFloatSpan returns a new span, checking that the bounds are valid.
func NewFloatSpan(lower, upper float64, lowerInc, upperInc bool) (FloatSpan, error) {
	s := FloatSpan{Lower: lower, Upper: upper, LowerInc: lowerInc, UpperInc: upperInc}
	if lower > upper || (lower == upper && !(lowerInc && upperInc)) {
		return FloatSpan{}, fmt.Errorf("span: invalid float span %s", s)
	}
	return s, nil
}

// Contains returns whether v is within s.
func (s FloatSpan) Contains(v float64) bool {
	if v < s.Lower || v > s.Upper {
		return false
	}
	if v == s.Lower && !s.LowerInc {
		return false
	}
	if v == s.Upper && !s.UpperInc {
		return false
	}
	return true
}

// Overlaps returns whether s and o share at least one value.
func (s FloatSpan) Overlaps(o FloatSpan) bool {
	lower, lowerInc := s.Lower, s.LowerInc
	if o.Lower > lower || (o.Lower == lower && !o.LowerInc) {
		lower, lowerInc = o.Lower, o.LowerInc
	}
	upper, upperInc := s.Upper, s.UpperInc
	if o.Upper < upper || (o.Upper == upper && !o.UpperInc) {
		upper, upperInc = o.Upper, o.UpperInc
	}
	return lower < upper || (lower == upper && lowerInc && upperInc)
}

func (s FloatSpan) String() string {
	l, u := "(", ")"
	if s.LowerInc {
		l = "["
	}
	if s.UpperInc {
		u = "]"
	}
	return fmt.Sprintf("%s%g, %g%s", l, s.Lower, s.Upper, u)
}

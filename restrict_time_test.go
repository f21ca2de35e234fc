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
	"testing"

	"github.com/spatialmodel/tpoint/span"
)

func TestAtPeriod(t *testing.T) {
	lin := linear(t, inst(0, 0, 0), inst(10, 0, 10))
	step := mustSeq(t, Step, true, true, ref2D, inst(0, 0, 0), inst(1, 0, 4), inst(2, 0, 8))
	for _, test := range []struct {
		name string
		seq  *TSequence
		p    span.Period
		want []seqView
	}{
		{
			name: "linear",
			seq:  lin, p: per(2, 5, true, false),
			want: []seqView{{Instants: []Instant{inst(2, 0, 2), inst(5, 0, 5)}, Interp: Linear, LowerInc: true, UpperInc: false}},
		},
		{
			name: "linear instant",
			seq:  lin, p: per(3, 3, true, true),
			want: []seqView{{Instants: []Instant{inst(3, 0, 3)}, Interp: Linear, LowerInc: true, UpperInc: true}},
		},
		{
			name: "linear beyond",
			seq:  lin, p: per(5, 20, false, true),
			want: []seqView{{Instants: []Instant{inst(5, 0, 5), inst(10, 0, 10)}, Interp: Linear, LowerInc: false, UpperInc: true}},
		},
		{
			name: "linear outside",
			seq:  lin, p: per(11, 20, true, true),
		},
		{
			name: "step exclusive",
			seq:  step, p: per(1, 6, true, false),
			want: []seqView{{Instants: []Instant{inst(0, 0, 1), inst(1, 0, 4), inst(1, 0, 6)}, Interp: Step, LowerInc: true, UpperInc: false}},
		},
		{
			name: "step inclusive",
			seq:  step, p: per(1, 8, true, true),
			want: []seqView{{Instants: []Instant{inst(0, 0, 1), inst(1, 0, 4), inst(2, 0, 8)}, Interp: Step, LowerInc: true, UpperInc: true}},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			var got Temporal
			if r := test.seq.AtPeriod(test.p); r != nil {
				got = r
			}
			if d := diff(test.want, got); d != "" {
				t.Errorf("(-want +got)\n%s", d)
			}
		})
	}
}

func TestRestrictPeriodPartition(t *testing.T) {
	e := NewEngine()
	lin := linear(t, inst(0, 0, 0), inst(10, 0, 10), inst(10, 10, 20))
	step := mustSeq(t, Step, true, false, ref2D, inst(0, 0, 0), inst(1, 0, 4), inst(1, 0, 8))
	disc := mustSeq(t, Discrete, true, true, ref2D, inst(0, 0, 0), inst(1, 0, 4), inst(2, 0, 8))
	a := linear(t, inst(0, 0, 0), inst(1, 0, 1))
	b := mustSeq(t, Linear, false, true, ref2D, inst(1, 0, 1), inst(1, 1, 3))
	ss, err := NewTSequenceSet([]*TSequence{a, b})
	if err != nil {
		t.Fatal(err)
	}
	ti, err := NewTInstant(inst(1, 1, 4), ref2D)
	if err != nil {
		t.Fatal(err)
	}
	periods := []span.Period{
		per(2, 5, true, false),
		per(4, 4, true, true),
		per(-5, 0, true, true),
		per(0, 1, false, false),
		per(30, 40, true, true),
	}
	for _, temp := range []Temporal{lin, step, disc, ss, ti} {
		for _, p := range periods {
			at := e.RestrictPeriod(temp, p, At)
			minus := e.RestrictPeriod(temp, p, Minus)
			checkPartition(t, temp, at, minus)
			if at != nil {
				if out := at.Time().Minus(span.PeriodSet{p}); len(out) != 0 {
					t.Errorf("%v at %s is outside the period at %s", temp.Interp(), p, out)
				}
			}
		}
	}
}

func TestRestrictPeriodMinus(t *testing.T) {
	e := NewEngine()
	lin := linear(t, inst(0, 0, 0), inst(10, 0, 10))
	got := e.RestrictPeriod(lin, per(2, 5, true, false), Minus)
	want := []seqView{
		{Instants: []Instant{inst(0, 0, 0), inst(2, 0, 2)}, Interp: Linear, LowerInc: true, UpperInc: false},
		{Instants: []Instant{inst(5, 0, 5), inst(10, 0, 10)}, Interp: Linear, LowerInc: true, UpperInc: true},
	}
	if d := diff(want, got); d != "" {
		t.Errorf("(-want +got)\n%s", d)
	}
	if _, ok := got.(*TSequenceSet); !ok {
		t.Errorf("want a sequence set, got %T", got)
	}
}

func TestRestrictPeriodSetDiscrete(t *testing.T) {
	e := NewEngine()
	disc := mustSeq(t, Discrete, true, true, ref2D, inst(0, 0, 0), inst(1, 0, 4), inst(2, 0, 8))
	ps := span.Normalize([]span.Period{per(3, 5, true, true), per(7, 9, true, true)})
	got := e.RestrictPeriodSet(disc, ps, At)
	want := []seqView{{Instants: []Instant{inst(1, 0, 4), inst(2, 0, 8)}, Interp: Discrete, LowerInc: true, UpperInc: true}}
	if d := diff(want, got); d != "" {
		t.Errorf("(-want +got)\n%s", d)
	}
	if got := e.RestrictPeriodSet(disc, span.PeriodSet{per(20, 30, true, true)}, At); got != nil {
		t.Errorf("want nil, got %v", view(got))
	}
	if got := e.RestrictPeriodSet(nil, ps, At); got != nil {
		t.Errorf("want nil, got %v", got)
	}
}

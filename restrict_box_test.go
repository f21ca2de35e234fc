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
	"errors"
	"testing"
)

func TestAtBoxLinearDiagonal(t *testing.T) {
	e := NewEngine()
	seq := linear(t, inst(0, 0, 0), inst(10, 10, 10))
	box := box2D(2, 2, 8, 8)

	got, err := e.AtBox(seq, box, true)
	if err != nil {
		t.Fatal(err)
	}
	want := []seqView{{Instants: []Instant{inst(2, 2, 2), inst(8, 8, 8)}, Interp: Linear, LowerInc: true, UpperInc: true}}
	if d := diff(want, got); d != "" {
		t.Errorf("border inclusive (-want +got)\n%s", d)
	}

	got, err = e.AtBox(seq, box, false)
	if err != nil {
		t.Fatal(err)
	}
	want[0].UpperInc = false
	if d := diff(want, got); d != "" {
		t.Errorf("border exclusive (-want +got)\n%s", d)
	}

	got, err = e.MinusBox(seq, box, true)
	if err != nil {
		t.Fatal(err)
	}
	want = []seqView{
		{Instants: []Instant{inst(0, 0, 0), inst(2, 2, 2)}, Interp: Linear, LowerInc: true, UpperInc: false},
		{Instants: []Instant{inst(8, 8, 8), inst(10, 10, 10)}, Interp: Linear, LowerInc: false, UpperInc: true},
	}
	if d := diff(want, got); d != "" {
		t.Errorf("minus (-want +got)\n%s", d)
	}
}

func TestAtBoxBorder(t *testing.T) {
	e := NewEngine()
	box := box2D(2, 2, 8, 8)
	for _, test := range []struct {
		name      string
		p         Point
		borderInc bool
		want      bool
	}{
		{"max inclusive", pt(8, 5), true, true},
		{"max exclusive", pt(8, 5), false, false},
		{"max Y exclusive", pt(5, 8), false, false},
		{"min inclusive", pt(2, 5), true, true},
		{"min exclusive", pt(2, 2), false, true},
		{"inside", pt(5, 5), false, true},
		{"outside", pt(9, 5), true, false},
	} {
		t.Run(test.name, func(t *testing.T) {
			ti, err := NewTInstant(Instant{Value: test.p, T: ts(0)}, ref2D)
			if err != nil {
				t.Fatal(err)
			}
			at, err := e.AtBox(ti, box, test.borderInc)
			if err != nil {
				t.Fatal(err)
			}
			if (at != nil) != test.want {
				t.Errorf("at: got %v, want %v", at != nil, test.want)
			}
			minus, err := e.MinusBox(ti, box, test.borderInc)
			if err != nil {
				t.Fatal(err)
			}
			if (minus != nil) == test.want {
				t.Errorf("minus: got %v, want %v", minus != nil, !test.want)
			}
		})
	}
}

// A segment that only touches the box at one instant.
func TestAtBoxTouch(t *testing.T) {
	e := NewEngine()
	box := box2D(0, 0, 5, 5)

	seq := linear(t, inst(0, 10, 0), inst(10, 0, 10))
	got, err := e.AtBox(seq, box, true)
	if err != nil {
		t.Fatal(err)
	}
	want := []seqView{{Instants: []Instant{inst(5, 5, 5)}, Interp: Linear, LowerInc: true, UpperInc: true}}
	if d := diff(want, got); d != "" {
		t.Errorf("corner (-want +got)\n%s", d)
	}
	if got, err = e.AtBox(seq, box, false); err != nil || got != nil {
		t.Errorf("excluded corner: got %v, %v", view(got), err)
	}
}

// A segment that meets the box only at an endpoint that is excluded from
// the sequence gives nothing.
func TestAtBoxTouchExcludedEnd(t *testing.T) {
	e := NewEngine()
	box := box2D(0, 0, 5, 5)

	upper := mustSeq(t, Linear, true, false, ref2D, inst(8, 8, 0), inst(5, 5, 10))
	got, err := e.AtBox(upper, box, true)
	if err != nil || got != nil {
		t.Errorf("exclusive upper bound: got %v, %v", view(got), err)
	}
	minus, err := e.MinusBox(upper, box, true)
	if err != nil {
		t.Fatal(err)
	}
	checkPartition(t, upper, got, minus)

	lower := mustSeq(t, Linear, false, true, ref2D, inst(5, 5, 0), inst(8, 8, 10))
	got, err = e.AtBox(lower, box, true)
	if err != nil || got != nil {
		t.Errorf("exclusive lower bound: got %v, %v", view(got), err)
	}

	incl := linear(t, inst(8, 8, 0), inst(5, 5, 10))
	got, err = e.AtBox(incl, box, true)
	if err != nil {
		t.Fatal(err)
	}
	want := []seqView{{Instants: []Instant{inst(5, 5, 10)}, Interp: Linear, LowerInc: true, UpperInc: true}}
	if d := diff(want, got); d != "" {
		t.Errorf("inclusive upper bound (-want +got)\n%s", d)
	}
}

// A touch at the start of a segment joins the fragment of the previous
// segment.
func TestAtBoxTouchJoins(t *testing.T) {
	e := NewEngine()
	seq := linear(t, inst(2, 2, 0), inst(5, 5, 3), inst(8, 8, 6))
	got, err := e.AtBox(seq, box2D(0, 0, 5, 5), true)
	if err != nil {
		t.Fatal(err)
	}
	want := []seqView{{Instants: []Instant{inst(2, 2, 0), inst(5, 5, 3)}, Interp: Linear, LowerInc: true, UpperInc: true}}
	if d := diff(want, got); d != "" {
		t.Errorf("(-want +got)\n%s", d)
	}
}

func TestAtBoxStep(t *testing.T) {
	e := NewEngine()
	seq := mustSeq(t, Step, true, true, ref2D, inst(1, 1, 0), inst(9, 9, 5), inst(3, 3, 10))
	got, err := e.AtBox(seq, box2D(0, 0, 5, 5), true)
	if err != nil {
		t.Fatal(err)
	}
	want := []seqView{
		{Instants: []Instant{inst(1, 1, 0), inst(1, 1, 5)}, Interp: Step, LowerInc: true, UpperInc: false},
		{Instants: []Instant{inst(3, 3, 10)}, Interp: Step, LowerInc: true, UpperInc: true},
	}
	if d := diff(want, got); d != "" {
		t.Errorf("(-want +got)\n%s", d)
	}
}

func TestAtBoxZ(t *testing.T) {
	e := NewEngine()
	ref := Ref{HasZ: true}
	seq := mustSeq(t, Linear, true, true, ref,
		Instant{Value: Point{0, 0, 0}, T: ts(0)},
		Instant{Value: Point{0, 0, 10}, T: ts(10)})

	box := box2D(-1, -1, 1, 1)
	box.HasZ, box.Zmin, box.Zmax = true, 2, 4
	got, err := e.AtBox(seq, box, true)
	if err != nil {
		t.Fatal(err)
	}
	want := []seqView{{
		Instants: []Instant{{Value: Point{0, 0, 2}, T: ts(2)}, {Value: Point{0, 0, 4}, T: ts(4)}},
		Interp:   Linear, LowerInc: true, UpperInc: true,
	}}
	if d := diff(want, got); d != "" {
		t.Errorf("3D box (-want +got)\n%s", d)
	}

	// Only X and Y change matter to a 2D box.
	got, err = e.AtBox(seq, box2D(-1, -1, 1, 1), true)
	if err != nil {
		t.Fatal(err)
	}
	if d := diff(view(seq), got); d != "" {
		t.Errorf("2D box (-want +got)\n%s", d)
	}
}

func TestAtBoxPeriod(t *testing.T) {
	e := NewEngine()
	seq := linear(t, inst(0, 0, 0), inst(10, 10, 10))

	box := box2D(2, 2, 8, 8)
	box.HasT, box.Period = true, per(0, 5, true, true)
	got, err := e.AtBox(seq, box, true)
	if err != nil {
		t.Fatal(err)
	}
	want := []seqView{{Instants: []Instant{inst(2, 2, 2), inst(5, 5, 5)}, Interp: Linear, LowerInc: true, UpperInc: true}}
	if d := diff(want, got); d != "" {
		t.Errorf("space and time (-want +got)\n%s", d)
	}
	minus, err := e.MinusBox(seq, box, true)
	if err != nil {
		t.Fatal(err)
	}
	checkPartition(t, seq, got, minus)

	timeOnly := STBox{HasT: true, Period: per(3, 4, true, false)}
	got, err = e.AtBox(seq, timeOnly, true)
	if err != nil {
		t.Fatal(err)
	}
	want = []seqView{{Instants: []Instant{inst(3, 3, 3), inst(4, 4, 4)}, Interp: Linear, LowerInc: true, UpperInc: false}}
	if d := diff(want, got); d != "" {
		t.Errorf("time only (-want +got)\n%s", d)
	}
}

func TestRestrictBoxErrors(t *testing.T) {
	e := NewEngine()
	seq := linear(t, inst(0, 0, 0), inst(10, 10, 10))
	other := box2D(0, 0, 1, 1)
	other.SRID = 4326
	geodetic := box2D(0, 0, 1, 1)
	geodetic.Geodetic = true
	for _, test := range []struct {
		name string
		temp Temporal
		box  STBox
	}{
		{"nil", nil, box2D(0, 0, 1, 1)},
		{"srid", seq, other},
		{"geodetic", seq, geodetic},
		{"reversed", seq, box2D(1, 0, 0, 1)},
		{"no dimension", seq, STBox{}},
		{"Z without X", seq, STBox{HasZ: true, HasT: true, Period: per(0, 1, true, true)}},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := e.RestrictBox(test.temp, test.box, true, At)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("want an invalid argument error, got %v", err)
			}
		})
	}
}

func TestRestrictBoxMiss(t *testing.T) {
	e := NewEngine()
	seq := linear(t, inst(0, 0, 0), inst(1, 1, 10))
	box := box2D(5, 5, 6, 6)
	at, err := e.AtBox(seq, box, true)
	if err != nil || at != nil {
		t.Errorf("at: got %v, %v", view(at), err)
	}
	minus, err := e.MinusBox(seq, box, true)
	if err != nil {
		t.Fatal(err)
	}
	if d := diff(view(seq), minus); d != "" {
		t.Errorf("minus (-want +got)\n%s", d)
	}
	if _, ok := minus.(*TSequenceSet); !ok {
		t.Errorf("minus: got %T, want *TSequenceSet", minus)
	}
}

func TestRestrictBoxPartition(t *testing.T) {
	e := NewEngine()
	lin := linear(t, inst(0, 0, 0), inst(10, 10, 10), inst(10, 0, 20), inst(0, 10, 30))
	step := mustSeq(t, Step, false, false, ref2D, inst(0, 0, 0), inst(5, 5, 10), inst(9, 1, 20), inst(9, 1, 30))
	disc := mustSeq(t, Discrete, true, true, ref2D, inst(0, 0, 0), inst(5, 5, 10), inst(8, 5, 20))
	a := linear(t, inst(0, 0, 0), inst(4, 4, 4))
	b := linear(t, inst(20, 20, 10), inst(21, 21, 11))
	c := linear(t, inst(6, 6, 20), inst(3, 5, 25))
	ss, err := NewTSequenceSet([]*TSequence{a, b, c})
	if err != nil {
		t.Fatal(err)
	}
	withT := box2D(2, 2, 8, 8)
	withT.HasT, withT.Period = true, per(5, 22, false, true)
	boxes := []STBox{
		box2D(2, 2, 8, 8),
		box2D(0, 0, 5, 5),
		box2D(5, 5, 5, 5),
		box2D(-1, 4, 11, 6),
		withT,
	}
	for _, temp := range []Temporal{lin, step, disc, ss} {
		for _, box := range boxes {
			for _, borderInc := range []bool{true, false} {
				at, err := e.AtBox(temp, box, borderInc)
				if err != nil {
					t.Fatal(err)
				}
				minus, err := e.MinusBox(temp, box, borderInc)
				if err != nil {
					t.Fatal(err)
				}
				checkPartition(t, temp, at, minus)
			}
		}
	}
}

func TestAtBoxSequenceSet(t *testing.T) {
	e := NewEngine()
	a := linear(t, inst(0, 0, 0), inst(4, 4, 4))
	b := linear(t, inst(20, 20, 10), inst(21, 21, 11))
	c := linear(t, inst(6, 6, 20), inst(3, 3, 23))
	ss, err := NewTSequenceSet([]*TSequence{a, b, c})
	if err != nil {
		t.Fatal(err)
	}
	got, err := e.AtBox(ss, box2D(2, 2, 5, 5), true)
	if err != nil {
		t.Fatal(err)
	}
	want := []seqView{
		{Instants: []Instant{inst(2, 2, 2), inst(4, 4, 4)}, Interp: Linear, LowerInc: true, UpperInc: true},
		{Instants: []Instant{inst(5, 5, 21), inst(3, 3, 23)}, Interp: Linear, LowerInc: true, UpperInc: true},
	}
	if d := diff(want, got); d != "" {
		t.Errorf("(-want +got)\n%s", d)
	}
	minus, err := e.MinusBox(ss, box2D(2, 2, 5, 5), true)
	if err != nil {
		t.Fatal(err)
	}
	checkPartition(t, ss, got, minus)

	// c is within the box in space but not in time.
	tbox := box2D(2, 2, 5, 5)
	tbox.HasT, tbox.Period = true, per(0, 3, true, false)
	got, err = e.AtBox(ss, tbox, true)
	if err != nil {
		t.Fatal(err)
	}
	want = []seqView{{Instants: []Instant{inst(2, 2, 2), inst(3, 3, 3)}, Interp: Linear, LowerInc: true, UpperInc: false}}
	if d := diff(want, got); d != "" {
		t.Errorf("period (-want +got)\n%s", d)
	}
	minus, err = e.MinusBox(ss, tbox, true)
	if err != nil {
		t.Fatal(err)
	}
	checkPartition(t, ss, got, minus)
}

func TestAtBoxDiscrete(t *testing.T) {
	e := NewEngine()
	disc := mustSeq(t, Discrete, true, true, ref2D, inst(0, 0, 0), inst(5, 5, 10), inst(8, 5, 20))
	got, err := e.AtBox(disc, box2D(2, 2, 8, 8), false)
	if err != nil {
		t.Fatal(err)
	}
	want := []seqView{{Instants: []Instant{inst(5, 5, 10)}, Interp: Discrete, LowerInc: true, UpperInc: true}}
	if d := diff(want, got); d != "" {
		t.Errorf("(-want +got)\n%s", d)
	}
}

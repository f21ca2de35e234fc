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
	"fmt"
	"testing"

	"github.com/ctessum/geom"
	"github.com/spatialmodel/tpoint/planar"
	"github.com/spatialmodel/tpoint/span"
)

func square(x0, y0, x1, y1 float64) Geometry {
	return Geometry{Geom: geom.Polygon{{
		{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}, {X: x0, Y: y0},
	}}}
}

func TestAtGeometryStep(t *testing.T) {
	e := NewEngine()
	seq := mustSeq(t, Step, true, false, ref2D, inst(1, 1, 0), inst(20, 20, 5), inst(20, 20, 10))
	got, err := e.AtGeometry(seq, square(0, 0, 2, 2), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []seqView{{Instants: []Instant{inst(1, 1, 0), inst(1, 1, 5)}, Interp: Step, LowerInc: true, UpperInc: false}}
	if d := diff(want, got); d != "" {
		t.Errorf("(-want +got)\n%s", d)
	}
	minus, err := e.MinusGeometry(seq, square(0, 0, 2, 2), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	want = []seqView{{Instants: []Instant{inst(20, 20, 5), inst(20, 20, 10)}, Interp: Step, LowerInc: true, UpperInc: false}}
	if d := diff(want, minus); d != "" {
		t.Errorf("minus (-want +got)\n%s", d)
	}
}

func TestAtGeometryLinearCross(t *testing.T) {
	e := NewEngine()
	seq := linear(t, inst(-5, 1, 0), inst(5, 1, 10))
	g := square(0, 0, 2, 2)
	got, err := e.AtGeometry(seq, g, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []seqView{{Instants: []Instant{inst(0, 1, 5), inst(2, 1, 7)}, Interp: Linear, LowerInc: true, UpperInc: true}}
	if d := diff(want, got); d != "" {
		t.Errorf("(-want +got)\n%s", d)
	}
	minus, err := e.MinusGeometry(seq, g, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	want = []seqView{
		{Instants: []Instant{inst(-5, 1, 0), inst(0, 1, 5)}, Interp: Linear, LowerInc: true, UpperInc: false},
		{Instants: []Instant{inst(2, 1, 7), inst(5, 1, 10)}, Interp: Linear, LowerInc: false, UpperInc: true},
	}
	if d := diff(want, minus); d != "" {
		t.Errorf("minus (-want +got)\n%s", d)
	}
}

func TestAtGeometryTouchVertex(t *testing.T) {
	e := NewEngine()
	seq := linear(t, inst(0, 4, 0), inst(4, 0, 4))
	got, err := e.AtGeometry(seq, square(0, 0, 2, 2), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []seqView{{Instants: []Instant{inst(2, 2, 2)}, Interp: Linear, LowerInc: true, UpperInc: true}}
	if d := diff(want, got); d != "" {
		t.Errorf("(-want +got)\n%s", d)
	}
}

func TestAtGeometryLine(t *testing.T) {
	e := NewEngine()
	seq := linear(t, inst(0, 0, 0), inst(4, 0, 4))

	cross := Geometry{Geom: geom.LineString{{X: 2, Y: -1}, {X: 2, Y: 1}}}
	got, err := e.AtGeometry(seq, cross, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []seqView{{Instants: []Instant{inst(2, 0, 2)}, Interp: Linear, LowerInc: true, UpperInc: true}}
	if d := diff(want, got); d != "" {
		t.Errorf("crossing line (-want +got)\n%s", d)
	}

	along := Geometry{Geom: geom.LineString{{X: 1, Y: 0}, {X: 3, Y: 0}}}
	got, err = e.AtGeometry(seq, along, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	want = []seqView{{Instants: []Instant{inst(1, 0, 1), inst(3, 0, 3)}, Interp: Linear, LowerInc: true, UpperInc: true}}
	if d := diff(want, got); d != "" {
		t.Errorf("overlapping line (-want +got)\n%s", d)
	}
}

// A path that crosses itself is split before it is intersected.
func TestAtGeometrySelfIntersecting(t *testing.T) {
	e := NewEngine()
	seq := linear(t, inst(-1, 1, 0), inst(3, 1, 4), inst(1, -1, 6), inst(1, 3, 10))
	if e.IsSimple(seq) {
		t.Fatal("test path should cross itself")
	}
	got, err := e.AtGeometry(seq, square(0, 0, 2, 2), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []seqView{
		{Instants: []Instant{inst(0, 1, 1), inst(2, 1, 3)}, Interp: Linear, LowerInc: true, UpperInc: true},
		{Instants: []Instant{inst(2, 0, 5)}, Interp: Linear, LowerInc: true, UpperInc: true},
		{Instants: []Instant{inst(1, 0, 7), inst(1, 2, 9)}, Interp: Linear, LowerInc: true, UpperInc: true},
	}
	if d := diff(want, got); d != "" {
		t.Errorf("(-want +got)\n%s", d)
	}
	minus, err := e.MinusGeometry(seq, square(0, 0, 2, 2), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	checkPartition(t, seq, got, minus)
}

func TestAtGeometryZSpan(t *testing.T) {
	e := NewEngine()
	seq := mustSeq(t, Linear, true, true, Ref{HasZ: true},
		Instant{Value: Point{0, 0, 0}, T: ts(0)},
		Instant{Value: Point{10, 0, 10}, T: ts(10)})
	z := &span.FloatSpan{Lower: 2, Upper: 4, LowerInc: true, UpperInc: true}
	got, err := e.AtGeometry(seq, square(-1, -1, 11, 1), z, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []seqView{{
		Instants: []Instant{{Value: Point{2, 0, 2}, T: ts(2)}, {Value: Point{4, 0, 4}, T: ts(4)}},
		Interp:   Linear, LowerInc: true, UpperInc: true,
	}}
	if d := diff(want, got); d != "" {
		t.Errorf("(-want +got)\n%s", d)
	}

	step := mustSeq(t, Step, true, true, Ref{HasZ: true},
		Instant{Value: Point{0, 0, 0}, T: ts(0)},
		Instant{Value: Point{1, 0, 3}, T: ts(5)},
		Instant{Value: Point{2, 0, 5}, T: ts(10)})
	got, err = e.AtGeometry(step, square(-1, -1, 11, 1), z, nil)
	if err != nil {
		t.Fatal(err)
	}
	want = []seqView{{
		Instants: []Instant{{Value: Point{1, 0, 3}, T: ts(5)}, {Value: Point{1, 0, 3}, T: ts(10)}},
		Interp:   Step, LowerInc: true, UpperInc: false,
	}}
	if d := diff(want, got); d != "" {
		t.Errorf("step (-want +got)\n%s", d)
	}
}

func TestAtGeometryPeriod(t *testing.T) {
	e := NewEngine()
	seq := linear(t, inst(-5, 1, 0), inst(5, 1, 10))
	p := per(0, 6, true, false)
	got, err := e.AtGeometry(seq, square(0, 0, 2, 2), nil, &p)
	if err != nil {
		t.Fatal(err)
	}
	want := []seqView{{Instants: []Instant{inst(0, 1, 5), inst(1, 1, 6)}, Interp: Linear, LowerInc: true, UpperInc: false}}
	if d := diff(want, got); d != "" {
		t.Errorf("(-want +got)\n%s", d)
	}
	minus, err := e.MinusGeometry(seq, square(0, 0, 2, 2), nil, &p)
	if err != nil {
		t.Fatal(err)
	}
	checkPartition(t, seq, got, minus)

	late := per(20, 30, true, true)
	got, err = e.AtGeometry(seq, square(0, 0, 2, 2), nil, &late)
	if err != nil || got != nil {
		t.Errorf("period after the sequence: got %v, %v", view(got), err)
	}
}

func TestAtGeometryDiscreteAndInstant(t *testing.T) {
	e := NewEngine()
	g := square(0, 0, 2, 2)
	disc := mustSeq(t, Discrete, true, true, ref2D, inst(1, 1, 0), inst(5, 5, 1), inst(2, 1.5, 2))
	got, err := e.AtGeometry(disc, g, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []seqView{{Instants: []Instant{inst(1, 1, 0), inst(2, 1.5, 2)}, Interp: Discrete, LowerInc: true, UpperInc: true}}
	if d := diff(want, got); d != "" {
		t.Errorf("discrete (-want +got)\n%s", d)
	}

	ti, err := NewTInstant(inst(1, 1, 0), ref2D)
	if err != nil {
		t.Fatal(err)
	}
	got, err = e.AtGeometry(ti, g, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got.(*TInstant); !ok {
		t.Errorf("want an instant, got %T", got)
	}
	if got, err = e.MinusGeometry(ti, g, nil, nil); err != nil || got != nil {
		t.Errorf("minus: got %v, %v", view(got), err)
	}
}

func TestAtGeometrySequenceSet(t *testing.T) {
	e := NewEngine()
	a := linear(t, inst(-5, 1, 0), inst(5, 1, 10))
	b := linear(t, inst(50, 50, 20), inst(60, 60, 30))
	c := linear(t, inst(1, 5, 40), inst(1, -5, 50))
	ss, err := NewTSequenceSet([]*TSequence{a, b, c})
	if err != nil {
		t.Fatal(err)
	}
	g := square(0, 0, 2, 2)
	got, err := e.AtGeometry(ss, g, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []seqView{
		{Instants: []Instant{inst(0, 1, 5), inst(2, 1, 7)}, Interp: Linear, LowerInc: true, UpperInc: true},
		{Instants: []Instant{inst(1, 2, 43), inst(1, 0, 45)}, Interp: Linear, LowerInc: true, UpperInc: true},
	}
	if d := diff(want, got); d != "" {
		t.Errorf("(-want +got)\n%s", d)
	}
	minus, err := e.MinusGeometry(ss, g, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	checkPartition(t, ss, got, minus)
}

func inst3(x, y, z, s float64) Instant {
	return Instant{Value: Point{X: x, Y: y, Z: z}, T: ts(s)}
}

func TestRestrictGeometryPartition(t *testing.T) {
	e := NewEngine()
	ref3D := Ref{HasZ: true}
	lin := linear(t, inst(-1, 1, 0), inst(3, 1, 4), inst(1, -1, 6), inst(1, 3, 10), inst(1, 3, 12), inst(5, 5, 14))
	step := mustSeq(t, Step, false, true, ref2D, inst(1, 1, 0), inst(5, 5, 2), inst(1, 1, 4), inst(2, 2, 6))
	disc := mustSeq(t, Discrete, true, true, ref2D, inst(1, 1, 0), inst(5, 5, 2), inst(2, 2, 6))
	lin3 := mustSeq(t, Linear, true, false, ref3D,
		inst3(-1, 1, 0, 0), inst3(3, 1, 4, 4), inst3(1, -1, 2, 6), inst3(1, 3, 2, 10), inst3(5, 5, 0, 14))
	step3 := mustSeq(t, Step, true, true, ref3D,
		inst3(1, 1, 0, 0), inst3(1, 1.5, 2, 2), inst3(5, 5, 2, 4), inst3(1, 0.5, 3, 6), inst3(1, 1, 1, 8))
	disc3 := mustSeq(t, Discrete, true, true, ref3D,
		inst3(1, 1, 0, 0), inst3(1, 1.5, 2, 2), inst3(1, 0.5, 3, 6))
	ring := Geometry{Geom: geom.Polygon{
		{{X: -2, Y: -2}, {X: 4, Y: -2}, {X: 4, Y: 4}, {X: -2, Y: 4}, {X: -2, Y: -2}},
		{{X: 0, Y: 0}, {X: 0, Y: 2}, {X: 2, Y: 2}, {X: 2, Y: 0}, {X: 0, Y: 0}},
	}}
	geoms := []Geometry{
		square(0, 0, 2, 2),
		ring,
		{Geom: geom.LineString{{X: 0, Y: 0}, {X: 2, Y: 2}}},
		{Geom: geom.MultiPoint{{X: 1, Y: 1}, {X: 1, Y: 2}}},
	}
	periods := []*span.Period{
		nil,
		{Lower: ts(1), Upper: ts(9), LowerInc: true, UpperInc: true},
		{Lower: ts(2), Upper: ts(6), LowerInc: false, UpperInc: false},
	}
	zspans := []*span.FloatSpan{
		{Lower: 1, Upper: 3, LowerInc: true, UpperInc: true},
		{Lower: 2, Upper: 3, LowerInc: false, UpperInc: false},
	}
	check := func(t *testing.T, temp Temporal, g Geometry, z *span.FloatSpan, p *span.Period) {
		at, err := e.AtGeometry(temp, g, z, p)
		if err != nil {
			t.Fatal(err)
		}
		minus, err := e.MinusGeometry(temp, g, z, p)
		if err != nil {
			t.Fatal(err)
		}
		checkPartition(t, temp, at, minus)
	}
	for _, temp := range []Temporal{lin, step, disc, lin3, step3, disc3} {
		for i, g := range geoms {
			for j, p := range periods {
				t.Run(fmt.Sprintf("%v_%v_%d_p%d", temp.Interp(), temp.Ref().HasZ, i, j), func(t *testing.T) {
					check(t, temp, g, nil, p)
				})
				if !temp.Ref().HasZ {
					continue
				}
				for k, z := range zspans {
					t.Run(fmt.Sprintf("%v_z_%d_p%d_z%d", temp.Interp(), i, j, k), func(t *testing.T) {
						check(t, temp, g, z, p)
					})
				}
			}
		}
	}
}

func TestRestrictGeometryErrors(t *testing.T) {
	e := NewEngine()
	seq := linear(t, inst(0, 0, 0), inst(1, 1, 1))
	other := square(0, 0, 1, 1)
	other.SRID = 4326
	geodetic := square(0, 0, 1, 1)
	geodetic.Geodetic = true
	z := &span.FloatSpan{Lower: 0, Upper: 1, LowerInc: true, UpperInc: true}
	for _, test := range []struct {
		name  string
		temp  Temporal
		g     Geometry
		zspan *span.FloatSpan
	}{
		{name: "nil", g: square(0, 0, 1, 1)},
		{name: "empty", temp: seq},
		{name: "srid", temp: seq, g: other},
		{name: "geodetic", temp: seq, g: geodetic},
		{name: "Z span without Z", temp: seq, g: square(0, 0, 1, 1), zspan: z},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := e.RestrictGeometry(test.temp, test.g, test.zspan, nil, At)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("want an invalid argument error, got %v", err)
			}
		})
	}
}

func TestRestrictGeometryMiss(t *testing.T) {
	e := NewEngine()
	seq := linear(t, inst(10, 10, 0), inst(11, 11, 1))
	at, err := e.AtGeometry(seq, square(0, 0, 2, 2), nil, nil)
	if err != nil || at != nil {
		t.Errorf("at: got %v, %v", view(at), err)
	}
	minus, err := e.MinusGeometry(seq, square(0, 0, 2, 2), nil, nil)
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

func TestEnginePlanarEpsilon(t *testing.T) {
	e := NewEngine()
	line := geom.LineString{{X: 0, Y: 0}, {X: 2, Y: 0}}
	near := geom.Point{X: 1, Y: 1e-4}
	ok, err := e.planar().Intersects(near, line)
	if err != nil || ok {
		t.Errorf("default tolerance: got %v, %v", ok, err)
	}
	e.Epsilon = 1e-3
	ok, err = e.planar().Intersects(near, line)
	if err != nil || !ok {
		t.Errorf("larger tolerance: got %v, %v", ok, err)
	}
	if p, isPlanar := e.planar().(*planar.Planar); !isPlanar || p.Epsilon != e.Epsilon {
		t.Errorf("planar tolerance should follow Epsilon, got %#v", e.planar())
	}
}

// fakePlanar returns fixed results.
type fakePlanar struct {
	inter geom.Geom
	err   error
}

func (f fakePlanar) Intersects(geom.Point, geom.Geom) (bool, error) { return true, f.err }

func (f fakePlanar) Intersection(geom.LineString, geom.Geom) (geom.Geom, error) {
	return f.inter, f.err
}

func TestRestrictGeometryUnsupported(t *testing.T) {
	seq := linear(t, inst(0, 0, 0), inst(1, 1, 1))
	g := square(0, 0, 2, 2)

	e := &Engine{Planar: fakePlanar{inter: g.Geom}}
	if _, err := e.AtGeometry(seq, g, nil, nil); !errors.Is(err, ErrUnsupportedGeometry) {
		t.Errorf("polygon intersection: want an unsupported geometry error, got %v", err)
	}

	e = &Engine{Planar: fakePlanar{err: fmt.Errorf("wrapped: %w", planar.ErrUnsupportedType)}}
	_, err := e.AtGeometry(seq, g, nil, nil)
	if !errors.Is(err, ErrUnsupportedGeometry) || !errors.Is(err, planar.ErrUnsupportedType) {
		t.Errorf("planar error: want an unsupported geometry error, got %v", err)
	}

	e = &Engine{Planar: fakePlanar{inter: geom.Point{X: 50, Y: 50}}}
	if _, err := e.AtGeometry(seq, g, nil, nil); !errors.Is(err, ErrInternal) {
		t.Errorf("point off the path: want an internal error, got %v", err)
	}
}

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
	"fmt"
	"time"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/tpoint/span"
)

// AtGeometry returns the part of temp that is within g, and also within
// zspan and period when they are not nil.
func (e *Engine) AtGeometry(temp Temporal, g Geometry, zspan *span.FloatSpan, period *span.Period) (Temporal, error) {
	return e.RestrictGeometry(temp, g, zspan, period, At)
}

// MinusGeometry returns the part of temp that AtGeometry leaves out.
func (e *Engine) MinusGeometry(temp Temporal, g Geometry, zspan *span.FloatSpan, period *span.Period) (Temporal, error) {
	return e.RestrictGeometry(temp, g, zspan, period, Minus)
}

// RestrictGeometry restricts temp to the instants at which it is within
// g, its Z coordinate is within zspan, and its timestamp is within period.
// zspan and period may be nil. With mode Minus the result is the time
// complement of the At result.
//
// g must not be empty and must have the same spatial reference as temp.
// zspan requires temp to have Z coordinates.
//
// If the bounding boxes of temp and the restriction do not overlap, Minus
// returns an unmodified copy of temp, in the result shape described on
// Engine: a step or linear *TSequence comes back as a *TSequenceSet
// holding one sequence.
func (e *Engine) RestrictGeometry(temp Temporal, g Geometry, zspan *span.FloatSpan,
	period *span.Period, mode Mode) (Temporal, error) {
	const op = "RestrictGeometry"
	if temp == nil {
		return nil, invalidArgf(op, "nil moving point")
	}
	if g.Empty() {
		return nil, invalidArgf(op, "empty geometry")
	}
	ref := temp.Ref()
	if err := sameRef(op, ref, g.SRID, g.Geodetic); err != nil {
		return nil, err
	}
	if zspan != nil && !ref.HasZ {
		return nil, invalidArgf(op, "a Z span requires Z coordinates")
	}

	box := g.BBox()
	if zspan != nil {
		box.HasZ, box.Zmin, box.Zmax = true, zspan.Lower, zspan.Upper
	}
	if period != nil {
		box.HasT, box.Period = true, *period
	}
	if !temp.BBox().Overlaps(box) {
		e.debugMiss(op, temp, box)
		return miss(temp, mode), nil
	}

	r := &geomRestriction{
		Engine: e,
		g:      g,
		gbox:   g.BBox(),
		zspan:  zspan,
		period: period,
	}
	switch t := temp.(type) {
	case *TInstant:
		ok, err := r.matches(t.inst)
		if err != nil || ok != (mode == At) {
			return nil, err
		}
		return t.clone(), nil
	case *TSequence:
		if t.interp == Discrete {
			return r.discrete(t, mode)
		}
		seqs, err := r.continuous(t, mode)
		return seqSetOrNil(seqs), err
	case *TSequenceSet:
		return restrictSeqSet(t, g.Geom.Bounds(), box, mode, r.continuous)
	}
	return nil, invalidArgf(op, "unknown moving point type %T", temp)
}

// geomRestriction holds the arguments of a geometry restriction.
type geomRestriction struct {
	*Engine
	g      Geometry
	gbox   STBox
	zspan  *span.FloatSpan
	period *span.Period
}

// matches returns whether inst is within the period, Z span and geometry.
func (r *geomRestriction) matches(inst Instant) (bool, error) {
	if r.period != nil && !r.period.Contains(inst.T) {
		return false, nil
	}
	return r.matchesXYZ(inst)
}

// matchesXYZ is matches without the period.
func (r *geomRestriction) matchesXYZ(inst Instant) (bool, error) {
	if r.zspan != nil && !r.zspan.Contains(inst.Value.Z) {
		return false, nil
	}
	ok, err := r.planar().Intersects(inst.Value.XY(), r.g.Geom)
	if err != nil {
		return false, r.planarErr("Intersects", err)
	}
	return ok, nil
}

func (r *geomRestriction) discrete(seq *TSequence, mode Mode) (Temporal, error) {
	var instants []Instant
	for _, inst := range seq.instants {
		ok, err := r.matches(inst)
		if err != nil {
			return nil, err
		}
		if ok == (mode == At) {
			instants = append(instants, inst)
		}
	}
	if len(instants) == 0 {
		return nil, nil
	}
	return newSeq(instants, Discrete, true, true, seq.ref), nil
}

// continuous restricts a step or linear sequence.
func (r *geomRestriction) continuous(seq *TSequence, mode Mode) ([]*TSequence, error) {
	if len(seq.instants) == 1 {
		ok, err := r.matches(seq.instants[0])
		if err != nil || ok != (mode == At) {
			return nil, err
		}
		return []*TSequence{seq.clone().(*TSequence)}, nil
	}
	s := seq
	if r.period != nil {
		if s = seq.AtPeriod(*r.period); s == nil {
			if mode == At {
				return nil, nil
			}
			return complement(seq, nil), nil
		}
	}
	var at []*TSequence
	var err error
	if seq.interp == Step {
		at, err = stepRuns(s, r.matchesXYZ)
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

// stepRuns returns the runs of consecutive instants of a step sequence
// that pass. A run followed by an instant that does not pass holds its
// last value up to that instant's timestamp.
func stepRuns(seq *TSequence, pass func(Instant) (bool, error)) ([]*TSequence, error) {
	var out []*TSequence
	var run []Instant
	lowerInc := func() bool {
		if run[0].T.Equal(seq.StartTimestamp()) {
			return seq.lowerInc
		}
		return true
	}
	for _, inst := range seq.instants {
		ok, err := pass(inst)
		if err != nil {
			return nil, err
		}
		if ok {
			run = append(run, inst)
			continue
		}
		if len(run) == 0 {
			continue
		}
		li := lowerInc()
		run = append(run, Instant{Value: run[len(run)-1].Value, T: inst.T})
		out = append(out, newSeq(run, Step, li, false, seq.ref))
		run = nil
	}
	if len(run) > 0 && (len(run) > 1 || seq.upperInc) {
		out = append(out, newSeq(run, Step, lowerInc(), seq.upperInc, seq.ref))
	}
	return out, nil
}

// linearAt returns the pieces of a linear sequence within the geometry
// and Z span.
func (r *geomRestriction) linearAt(seq *TSequence) ([]*TSequence, error) {
	if len(seq.instants) == 1 {
		ok, err := r.matchesXYZ(seq.instants[0])
		if err != nil || !ok {
			return nil, err
		}
		return []*TSequence{seq.clone().(*TSequence)}, nil
	}
	at, err := r.linearAtGeom(seq)
	if err != nil || len(at) == 0 || r.zspan == nil {
		return at, err
	}
	zps := zPeriods(at, *r.zspan)
	var out []*TSequence
	for _, s := range at {
		out = append(out, s.restrictPeriodSet(zps, At)...)
	}
	return out, nil
}

// linearAtGeom returns the pieces of a linear sequence whose planar
// projection is within the geometry. Z values are kept.
func (r *geomRestriction) linearAtGeom(seq *TSequence) ([]*TSequence, error) {
	if !seq.box.Overlaps(r.gbox) {
		return nil, nil
	}
	frags := r.kernel().makeSimpleSeq(force2D(seq))
	var periods []span.Period
	for _, frag := range frags {
		path := make(geom.LineString, len(frag.instants))
		for i, inst := range frag.instants {
			path[i] = inst.Value.XY()
		}
		inter, err := r.planar().Intersection(path, r.g.Geom)
		if err != nil {
			return nil, r.planarErr("Intersection", err)
		}
		if inter == nil {
			continue
		}
		ps, err := r.interPeriods(frag, inter)
		if err != nil {
			return nil, err
		}
		periods = append(periods, ps...)
	}
	r.log().WithFields(logrus.Fields{
		"fragments": len(frags),
		"periods":   len(periods),
	}).Debug("tpoint: intersected simple fragments with geometry")
	if len(periods) == 0 {
		return nil, nil
	}
	return seq.restrictPeriodSet(span.Normalize(periods), At), nil
}

// interPeriods returns the periods during which the simple 2D fragment
// frag is on inter, which is part of its intersection with the geometry.
func (r *geomRestriction) interPeriods(frag *TSequence, inter geom.Geom) ([]span.Period, error) {
	first, last := frag.instants[0], frag.instants[len(frag.instants)-1]
	if len(frag.instants) == 2 && first.Value == last.Value {
		return []span.Period{frag.Period()}, nil
	}
	eps := r.epsilon()
	locate := func(p geom.Point) (time.Time, error) {
		return seqTimestampAtValue(eps, frag, Point{X: p.X, Y: p.Y}, false)
	}
	// instant returns the period holding only t, unless t is an exclusive
	// bound of frag.
	instant := func(t time.Time) []span.Period {
		if (!frag.lowerInc && t.Equal(first.T)) || (!frag.upperInc && t.Equal(last.T)) {
			return nil
		}
		return []span.Period{span.At(t)}
	}

	var out []span.Period
	var walk func(g geom.Geom) error
	walk = func(g geom.Geom) error {
		switch g := g.(type) {
		case geom.Point:
			t, err := locate(g)
			if err != nil {
				return err
			}
			out = append(out, instant(t)...)
		case geom.MultiPoint:
			for _, p := range g {
				if err := walk(p); err != nil {
					return err
				}
			}
		case geom.LineString:
			if len(g) == 0 {
				return nil
			}
			t1, err := locate(g[0])
			if err != nil {
				return err
			}
			t2, err := locate(g[len(g)-1])
			if err != nil {
				return err
			}
			if t1.Equal(t2) {
				out = append(out, instant(t1)...)
				return nil
			}
			if t2.Before(t1) {
				t1, t2 = t2, t1
			}
			p := span.Period{Lower: t1, Upper: t2, LowerInc: true, UpperInc: true}
			if t1.Equal(first.T) {
				p.LowerInc = frag.lowerInc
			}
			if t2.Equal(last.T) {
				p.UpperInc = frag.upperInc
			}
			out = append(out, p)
		case geom.MultiLineString:
			for _, l := range g {
				if err := walk(l); err != nil {
					return err
				}
			}
		case geom.GeometryCollection:
			for _, gg := range g {
				if err := walk(gg); err != nil {
					return err
				}
			}
		default:
			return &Error{Kind: UnsupportedGeometry, Op: "Intersection",
				Err: fmt.Errorf("intersection of type %T", g)}
		}
		return nil
	}
	if err := walk(inter); err != nil {
		return nil, err
	}
	return out, nil
}

// force2D returns a copy of seq without Z coordinates.
func force2D(seq *TSequence) *TSequence {
	if !seq.ref.HasZ {
		return seq
	}
	instants := seq.Instants()
	for i := range instants {
		instants[i].Value.Z = 0
	}
	ref := seq.ref
	ref.HasZ = false
	return newSeq(instants, seq.interp, seq.lowerInc, seq.upperInc, ref)
}

// zPeriods returns the times at which the Z coordinate of the linear
// sequences seqs is within z.
func zPeriods(seqs []*TSequence, z span.FloatSpan) span.PeriodSet {
	var periods []span.Period
	for _, s := range seqs {
		n := len(s.instants)
		if n == 1 {
			if z.Contains(s.instants[0].Value.Z) {
				periods = append(periods, span.At(s.instants[0].T))
			}
			continue
		}
		for i := 1; i < n; i++ {
			lowerInc := i > 1 || s.lowerInc
			upperInc := i < n-1 || s.upperInc
			if p, ok := zSegmentPeriod(s.instants[i-1], s.instants[i], lowerInc, upperInc, z); ok {
				periods = append(periods, p)
			}
		}
	}
	return span.Normalize(periods)
}

// zSegmentPeriod returns the period during which the Z coordinate of a
// linear segment is within z.
func zSegmentPeriod(inst1, inst2 Instant, lowerInc, upperInc bool, z span.FloatSpan) (span.Period, bool) {
	z1, z2 := inst1.Value.Z, inst2.Value.Z
	if z1 == z2 {
		if !z.Contains(z1) {
			return span.Period{}, false
		}
		return span.Period{Lower: inst1.T, Upper: inst2.T, LowerInc: lowerInc, UpperInc: upperInc}, true
	}
	// Fractions along the segment at which Z reaches the bounds of z.
	fLow, fHigh := (z.Lower-z1)/(z2-z1), (z.Upper-z1)/(z2-z1)
	incLow, incHigh := z.LowerInc, z.UpperInc
	if fLow > fHigh {
		fLow, fHigh = fHigh, fLow
		incLow, incHigh = incHigh, incLow
	}
	if fLow <= 0 {
		fLow, incLow = 0, lowerInc
		if z.Lower == z1 || z.Upper == z1 {
			incLow = lowerInc && z.Contains(z1)
		}
	}
	if fHigh >= 1 {
		fHigh, incHigh = 1, upperInc
		if z.Lower == z2 || z.Upper == z2 {
			incHigh = upperInc && z.Contains(z2)
		}
	}
	if fLow > fHigh {
		return span.Period{}, false
	}
	at := func(f float64) time.Time {
		switch f {
		case 0:
			return inst1.T
		case 1:
			return inst2.T
		}
		return inst1.T.Add(time.Duration(f * float64(inst2.T.Sub(inst1.T))))
	}
	p := span.Period{Lower: at(fLow), Upper: at(fHigh), LowerInc: incLow, UpperInc: incHigh}
	if p.Lower.After(p.Upper) || (p.Lower.Equal(p.Upper) && !(p.LowerInc && p.UpperInc)) {
		return span.Period{}, false
	}
	return p, true
}

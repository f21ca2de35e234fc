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

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/tpoint/planar"
	"github.com/spatialmodel/tpoint/span"
)

// Mode selects whether a restriction keeps the part of a moving point that
// is within a region (At) or the part that is not (Minus).
type Mode int

const (
	At Mode = iota
	Minus
)

func (m Mode) String() string {
	if m == Minus {
		return "minus"
	}
	return "at"
}

// ParseMode returns the mode named by s, which must be "at" or "minus".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "at":
		return At, nil
	case "minus":
		return Minus, nil
	}
	return 0, invalidArgf("ParseMode", "unknown mode %q", s)
}

// Engine restricts moving points to geometries, boxes and periods, and
// splits them into simple fragments. An Engine is not modified by its
// methods and may be used from multiple goroutines.
//
// Results are freshly allocated and never share memory with the inputs.
// Restricting an instant returns a *TInstant, a discrete sequence a
// *TSequence, and a step or linear sequence or a sequence set a
// *TSequenceSet. An empty result is returned as a nil Temporal.
type Engine struct {
	// Epsilon is the tolerance for collinearity and for locating a
	// computed point on a segment. DefaultEpsilon is used if it is zero.
	Epsilon float64

	// Log receives debugging information. The standard logger is used if
	// it is nil.
	Log logrus.FieldLogger

	// Planar computes point containment and path intersections.
	// If it is nil, a planar.Planar with the engine's Epsilon is used, so
	// it follows later changes to Epsilon. A Planar that is set should use
	// the same tolerance as Epsilon.
	Planar Planar
}

// NewEngine returns an engine with the default tolerance and logger.
// Planar operations use the engine's Epsilon.
func NewEngine() *Engine {
	return &Engine{
		Epsilon: DefaultEpsilon,
		Log:     logrus.StandardLogger(),
	}
}

func (e *Engine) epsilon() float64 {
	if e.Epsilon <= 0 {
		return DefaultEpsilon
	}
	return e.Epsilon
}

func (e *Engine) kernel() Kernel { return Kernel{Epsilon: e.epsilon()} }

func (e *Engine) log() logrus.FieldLogger {
	if e.Log == nil {
		return logrus.StandardLogger()
	}
	return e.Log
}

func (e *Engine) planar() Planar {
	if e.Planar == nil {
		return planar.New(e.epsilon())
	}
	return e.Planar
}

// planarErr converts an error from the Planar collaborator.
func (e *Engine) planarErr(op string, err error) error {
	if errors.Is(err, planar.ErrUnsupportedType) {
		return &Error{Kind: UnsupportedGeometry, Op: op, Err: err}
	}
	if kindOf(err) != 0 {
		return err
	}
	return &Error{Kind: InvalidArgument, Op: op, Err: err}
}

// IsSimple returns whether temp does not intersect itself. Only X and Y
// are considered for linear interpolation.
func (e *Engine) IsSimple(temp Temporal) bool {
	if temp == nil {
		return true
	}
	return e.kernel().isSimple(temp)
}

// MakeSimple splits temp into simple fragments. An instant is returned as
// a single copy of itself. Sequences and sequence sets are returned as
// *TSequence fragments in time order. Concatenating the fragments
// reconstructs the time extent of temp.
func (e *Engine) MakeSimple(temp Temporal) []Temporal {
	k := e.kernel()
	var frags []*TSequence
	switch t := temp.(type) {
	case *TInstant:
		return []Temporal{t.clone()}
	case *TSequence:
		frags = k.makeSimpleSeq(t)
	case *TSequenceSet:
		for _, s := range t.seqs {
			frags = append(frags, k.makeSimpleSeq(s)...)
		}
	default:
		return nil
	}
	e.log().WithFields(logrus.Fields{
		"instants":  temp.NumInstants(),
		"fragments": len(frags),
	}).Debug("tpoint: split into simple fragments")
	out := make([]Temporal, len(frags))
	for i, f := range frags {
		out[i] = f
	}
	return out
}

// RestrictPeriod returns the part of temp within (At) or outside (Minus) p.
func (e *Engine) RestrictPeriod(temp Temporal, p span.Period, mode Mode) Temporal {
	return e.RestrictPeriodSet(temp, span.PeriodSet{p}, mode)
}

// RestrictPeriodSet returns the part of temp within (At) or outside
// (Minus) ps, which must be normalized.
func (e *Engine) RestrictPeriodSet(temp Temporal, ps span.PeriodSet, mode Mode) Temporal {
	if temp == nil {
		return nil
	}
	return restrictPeriodSet(temp, ps, mode)
}

// miss is the result of a restriction whose region cannot intersect
// temp.
func miss(temp Temporal, mode Mode) Temporal {
	if mode == At {
		return nil
	}
	if s, ok := temp.(*TSequence); ok && s.interp != Discrete {
		return newSeqSet([]*TSequence{s.clone().(*TSequence)})
	}
	return temp.clone()
}

// sameRef checks the spatial reference of a region against that of a
// moving point.
func sameRef(op string, ref Ref, srid int, geodetic bool) error {
	if ref.SRID != srid {
		return invalidArgf(op, "spatial reference %d does not match %d", srid, ref.SRID)
	}
	if ref.Geodetic != geodetic {
		return invalidArgf(op, "mixing geodetic and planar coordinates")
	}
	return nil
}

// seqRestrictor restricts one continuous sequence, returning its
// resulting pieces.
type seqRestrictor func(seq *TSequence, mode Mode) ([]*TSequence, error)

// restrictSeqSet restricts each sequence of ss. Only the sequences whose
// planar bounds intersect region and whose box overlaps zt in Z and T are
// passed to f. The others are wholly outside the restriction.
func restrictSeqSet(ss *TSequenceSet, region *geom.Bounds, zt STBox, mode Mode, f seqRestrictor) (Temporal, error) {
	zt.HasX = false
	candidates := make([]bool, len(ss.seqs))
	for _, i := range ss.intersecting(region) {
		candidates[i] = ss.seqs[i].box.Overlaps(zt)
	}
	var out []*TSequence
	for i, s := range ss.seqs {
		if !candidates[i] {
			if mode == Minus {
				out = append(out, s.clone().(*TSequence))
			}
			continue
		}
		r, err := f(s, mode)
		if err != nil {
			return nil, err
		}
		out = append(out, r...)
	}
	return seqSetOrNil(out), nil
}

// complement returns the pieces of seq outside the time extent of at.
func complement(seq *TSequence, at []*TSequence) []*TSequence {
	if len(at) == 0 {
		return []*TSequence{seq.clone().(*TSequence)}
	}
	return seq.restrictPeriodSet(timeOf(at), Minus)
}

func timeOf(seqs []*TSequence) span.PeriodSet {
	ps := make([]span.Period, len(seqs))
	for i, s := range seqs {
		ps[i] = s.Period()
	}
	return span.Normalize(ps)
}

func (e *Engine) debugMiss(op string, temp Temporal, region fmt.Stringer) {
	e.log().WithFields(logrus.Fields{
		"op":     op,
		"region": region.String(),
		"start":  temp.StartTimestamp(),
	}).Debug("tpoint: bounding boxes do not overlap")
}

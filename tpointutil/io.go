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

package tpointutil

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spatialmodel/tpoint"
)

// Moving point file types.
const (
	typeInstant     = "instant"
	typeSequence    = "sequence"
	typeSequenceSet = "sequenceset"
)

// temporalJSON is the file representation of a moving point. Instants
// use the Instant field and sequences and sequence sets use Sequences.
type temporalJSON struct {
	Type      string         `json:"type"`
	SRID      int            `json:"srid,omitempty"`
	HasZ      bool           `json:"hasZ,omitempty"`
	Geodetic  bool           `json:"geodetic,omitempty"`
	Interp    string         `json:"interp,omitempty"`
	Instant   *instantJSON   `json:"instant,omitempty"`
	Sequences []sequenceJSON `json:"sequences,omitempty"`
}

type sequenceJSON struct {
	LowerInc bool          `json:"lowerInc"`
	UpperInc bool          `json:"upperInc"`
	Instants []instantJSON `json:"instants"`
}

type instantJSON struct {
	X float64   `json:"x"`
	Y float64   `json:"y"`
	Z float64   `json:"z,omitempty"`
	T time.Time `json:"t"`
}

// ReadTemporal reads a moving point from the JSON file at path.
// Environment variables in path are expanded.
func ReadTemporal(path string) (tpoint.Temporal, error) {
	if path == "" {
		return nil, fmt.Errorf("tpoint: you need to specify a moving point file in the 'Trajectory' configuration variable")
	}
	f, err := os.Open(os.ExpandEnv(path))
	if err != nil {
		return nil, fmt.Errorf("tpoint: opening moving point file: %w", err)
	}
	defer f.Close()
	t, err := DecodeTemporal(f)
	if err != nil {
		return nil, fmt.Errorf("tpoint: reading moving point file %s: %w", path, err)
	}
	return t, nil
}

// DecodeTemporal decodes a moving point from JSON.
func DecodeTemporal(r io.Reader) (tpoint.Temporal, error) {
	var j temporalJSON
	if err := json.NewDecoder(r).Decode(&j); err != nil {
		return nil, err
	}
	return j.temporal()
}

// EncodeTemporal writes temp to w as JSON. A nil moving point is written
// as null.
func EncodeTemporal(w io.Writer, temp tpoint.Temporal) error {
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(toJSON(temp))
}

func (j *temporalJSON) temporal() (tpoint.Temporal, error) {
	ref := tpoint.Ref{SRID: j.SRID, HasZ: j.HasZ, Geodetic: j.Geodetic}
	switch j.Type {
	case typeInstant:
		if j.Instant == nil {
			return nil, fmt.Errorf("instant is missing")
		}
		t, err := tpoint.NewTInstant(j.Instant.instant(), ref)
		if err != nil {
			return nil, err
		}
		return t, nil
	case typeSequence, typeSequenceSet:
	default:
		return nil, fmt.Errorf("invalid moving point type %q", j.Type)
	}
	interp, err := tpoint.ParseInterp(j.Interp)
	if err != nil {
		return nil, err
	}
	if j.Type == typeSequence {
		if len(j.Sequences) != 1 {
			return nil, fmt.Errorf("a sequence needs exactly one element in 'sequences' but there are %d", len(j.Sequences))
		}
		s, err := j.Sequences[0].sequence(interp, ref)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	seqs := make([]*tpoint.TSequence, len(j.Sequences))
	for i, sj := range j.Sequences {
		if seqs[i], err = sj.sequence(interp, ref); err != nil {
			return nil, fmt.Errorf("sequence %d: %w", i, err)
		}
	}
	ss, err := tpoint.NewTSequenceSet(seqs)
	if err != nil {
		return nil, err
	}
	return ss, nil
}

func (sj sequenceJSON) sequence(interp tpoint.Interp, ref tpoint.Ref) (*tpoint.TSequence, error) {
	instants := make([]tpoint.Instant, len(sj.Instants))
	for i, ij := range sj.Instants {
		instants[i] = ij.instant()
	}
	return tpoint.NewTSequence(instants, interp, sj.LowerInc, sj.UpperInc, ref)
}

func (ij instantJSON) instant() tpoint.Instant {
	return tpoint.Instant{Value: tpoint.Point{X: ij.X, Y: ij.Y, Z: ij.Z}, T: ij.T}
}

func toJSON(temp tpoint.Temporal) *temporalJSON {
	if temp == nil {
		return nil
	}
	ref := temp.Ref()
	j := &temporalJSON{SRID: ref.SRID, HasZ: ref.HasZ, Geodetic: ref.Geodetic}
	switch t := temp.(type) {
	case *tpoint.TInstant:
		j.Type = typeInstant
		ij := instantToJSON(t.Instant())
		j.Instant = &ij
		return j
	case *tpoint.TSequence:
		j.Type = typeSequence
		j.Sequences = []sequenceJSON{sequenceToJSON(t)}
	case *tpoint.TSequenceSet:
		j.Type = typeSequenceSet
		for _, s := range t.Sequences() {
			j.Sequences = append(j.Sequences, sequenceToJSON(s))
		}
	}
	j.Interp = temp.Interp().String()
	return j
}

func sequenceToJSON(s *tpoint.TSequence) sequenceJSON {
	sj := sequenceJSON{LowerInc: s.LowerInc(), UpperInc: s.UpperInc()}
	for _, inst := range s.Instants() {
		sj.Instants = append(sj.Instants, instantToJSON(inst))
	}
	return sj
}

func instantToJSON(inst tpoint.Instant) instantJSON {
	return instantJSON{X: inst.Value.X, Y: inst.Value.Y, Z: inst.Value.Z, T: inst.T}
}

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
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/tpoint"
	"github.com/spatialmodel/tpoint/planar"
	"github.com/spatialmodel/tpoint/span"
	"github.com/spf13/cast"
)

// parseRegion returns the region represented by the given GeoJSON file.
// Besides the geometry types handled by the geojson package, the file may
// hold a multi-part geometry, a geometry collection, a feature or a feature
// collection.
func parseRegion(regionGeoJSONFile string, srid int, geodetic bool) (tpoint.Geometry, error) {
	if regionGeoJSONFile == "" {
		return tpoint.Geometry{}, fmt.Errorf("tpoint: you need to specify a GeoJSON file in the 'Region' configuration variable")
	}
	f, err := os.Open(os.ExpandEnv(regionGeoJSONFile))
	if err != nil {
		return tpoint.Geometry{}, fmt.Errorf("opening region file: %w", err)
	}
	defer f.Close()
	b, err := ioutil.ReadAll(f)
	if err != nil {
		return tpoint.Geometry{}, fmt.Errorf("reading region file: %w", err)
	}
	g, err := decodeRegion(b)
	if err != nil {
		return tpoint.Geometry{}, fmt.Errorf("decoding region: %w", err)
	}
	return tpoint.Geometry{Geom: g, SRID: srid, Geodetic: geodetic}, nil
}

// geoJSONObject holds the members of any GeoJSON object.
type geoJSONObject struct {
	Type        string            `json:"type"`
	Coordinates interface{}       `json:"coordinates"`
	Geometries  []json.RawMessage `json:"geometries"`
	Geometry    json.RawMessage   `json:"geometry"`
	Features    []json.RawMessage `json:"features"`
}

func decodeRegion(b []byte) (geom.Geom, error) {
	var o geoJSONObject
	if err := json.Unmarshal(b, &o); err != nil {
		return nil, err
	}
	switch o.Type {
	case "Point", "LineString", "Polygon":
		return geojson.FromGeoJSON(&geojson.Geometry{Type: o.Type, Coordinates: o.Coordinates})
	case "MultiPoint":
		var mp geom.MultiPoint
		err := eachPart(o, "Point", func(g geom.Geom) { mp = append(mp, g.(geom.Point)) })
		return mp, err
	case "MultiLineString":
		var ml geom.MultiLineString
		err := eachPart(o, "LineString", func(g geom.Geom) { ml = append(ml, g.(geom.LineString)) })
		return ml, err
	case "MultiPolygon":
		var mp geom.MultiPolygon
		err := eachPart(o, "Polygon", func(g geom.Geom) { mp = append(mp, g.(geom.Polygon)) })
		return mp, err
	case "GeometryCollection":
		return decodeCollection(o.Geometries)
	case "Feature":
		if len(o.Geometry) == 0 || string(o.Geometry) == "null" {
			return nil, fmt.Errorf("feature has no geometry")
		}
		return decodeRegion(o.Geometry)
	case "FeatureCollection":
		return decodeCollection(o.Features)
	}
	return nil, geojson.UnsupportedGeometryError{Type: o.Type}
}

// eachPart decodes each part of a multi-part geometry as a geometry of
// type partType.
func eachPart(o geoJSONObject, partType string, f func(geom.Geom)) error {
	parts, ok := o.Coordinates.([]interface{})
	if !ok {
		return geojson.InvalidGeometryError{}
	}
	for _, c := range parts {
		g, err := geojson.FromGeoJSON(&geojson.Geometry{Type: partType, Coordinates: c})
		if err != nil {
			return err
		}
		f(g)
	}
	return nil
}

func decodeCollection(members []json.RawMessage) (geom.Geom, error) {
	var gc geom.GeometryCollection
	for i, m := range members {
		g, err := decodeRegion(m)
		if err != nil {
			return nil, fmt.Errorf("member %d: %w", i, err)
		}
		gc = append(gc, g)
	}
	if len(gc) == 1 {
		return gc[0], nil
	}
	return gc, nil
}

// optionSet returns whether the option varName has a value. Options
// without a default are empty strings when they come from flags.
func optionSet(cfg *viper.Viper, varName string) bool {
	switch v := cfg.Get(varName).(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	}
	return true
}

// getFloat returns the value of the float option varName.
func getFloat(cfg *viper.Viper, varName string) (float64, error) {
	v, err := cast.ToFloat64E(cfg.Get(varName))
	if err != nil {
		return 0, fmt.Errorf("tpoint: invalid value for %s: %w", varName, err)
	}
	return v, nil
}

// getBool returns the value of the bool option varName, or def if it has
// not been given.
func getBool(cfg *viper.Viper, varName string, def bool) (bool, error) {
	i := cfg.Get(varName)
	if i == nil {
		return def, nil
	}
	v, err := cast.ToBoolE(i)
	if err != nil {
		return false, fmt.Errorf("tpoint: invalid value for %s: %w", varName, err)
	}
	return v, nil
}

// getTime returns the value of the timestamp option varName.
func getTime(cfg *viper.Viper, varName string) (time.Time, error) {
	i := cfg.Get(varName)
	if s, ok := i.(string); ok {
		i = os.ExpandEnv(strings.TrimSpace(s))
	}
	t, err := cast.ToTimeE(i)
	if err != nil {
		return time.Time{}, fmt.Errorf("tpoint: invalid value for %s: %w", varName, err)
	}
	return t, nil
}

// parsePeriod returns the period given by the PeriodStart and PeriodEnd
// options, or nil if neither is given.
func parsePeriod(cfg *viper.Viper) (*span.Period, error) {
	start, end := optionSet(cfg, "PeriodStart"), optionSet(cfg, "PeriodEnd")
	if !start && !end {
		return nil, nil
	}
	if !start || !end {
		return nil, fmt.Errorf("tpoint: PeriodStart and PeriodEnd need to be specified together")
	}
	lower, err := getTime(cfg, "PeriodStart")
	if err != nil {
		return nil, err
	}
	upper, err := getTime(cfg, "PeriodEnd")
	if err != nil {
		return nil, err
	}
	lowerInc, err := getBool(cfg, "PeriodLowerInc", true)
	if err != nil {
		return nil, err
	}
	upperInc, err := getBool(cfg, "PeriodUpperInc", true)
	if err != nil {
		return nil, err
	}
	p, err := span.NewPeriod(lower, upper, lowerInc, upperInc)
	if err != nil {
		return nil, fmt.Errorf("tpoint: %w", err)
	}
	return &p, nil
}

// parseZSpan returns the inclusive Z range given by the ZMin and ZMax
// options, or nil if neither is given.
func parseZSpan(cfg *viper.Viper) (*span.FloatSpan, error) {
	lo, hi := optionSet(cfg, "ZMin"), optionSet(cfg, "ZMax")
	if !lo && !hi {
		return nil, nil
	}
	if !lo || !hi {
		return nil, fmt.Errorf("tpoint: ZMin and ZMax need to be specified together")
	}
	zmin, err := getFloat(cfg, "ZMin")
	if err != nil {
		return nil, err
	}
	zmax, err := getFloat(cfg, "ZMax")
	if err != nil {
		return nil, err
	}
	s, err := span.NewFloatSpan(zmin, zmax, true, true)
	if err != nil {
		return nil, fmt.Errorf("tpoint: %w", err)
	}
	return &s, nil
}

var boxXYOptions = []string{"Box.Xmin", "Box.Xmax", "Box.Ymin", "Box.Ymax"}

// parseBox returns the box given by the Box.* options, the period options
// and the spatial reference options.
func parseBox(cfg *viper.Viper) (tpoint.STBox, error) {
	var b tpoint.STBox
	var n int
	for _, name := range boxXYOptions {
		if optionSet(cfg, name) {
			n++
		}
	}
	switch n {
	case 0:
	case len(boxXYOptions):
		b.HasX = true
		for i, v := range []*float64{&b.Xmin, &b.Xmax, &b.Ymin, &b.Ymax} {
			var err error
			if *v, err = getFloat(cfg, boxXYOptions[i]); err != nil {
				return b, err
			}
		}
	default:
		return b, fmt.Errorf("tpoint: Box.Xmin, Box.Xmax, Box.Ymin and Box.Ymax need to be specified together")
	}
	zspan, err := parseBoxZ(cfg)
	if err != nil {
		return b, err
	}
	if zspan != nil {
		if !b.HasX {
			return b, fmt.Errorf("tpoint: a box with a Z range also needs an X and Y range")
		}
		b.HasZ = true
		b.Zmin, b.Zmax = zspan[0], zspan[1]
	}
	p, err := parsePeriod(cfg)
	if err != nil {
		return b, err
	}
	if p != nil {
		b.HasT = true
		b.Period = *p
	}
	if !b.HasX && !b.HasT {
		return b, fmt.Errorf("tpoint: the box needs the Box.* options, a period, or both")
	}
	b.SRID, b.Geodetic, err = parseRef(cfg)
	return b, err
}

// parseRef returns the spatial reference of regions given by the SRID and
// Geodetic options.
func parseRef(cfg *viper.Viper) (srid int, geodetic bool, err error) {
	if srid, err = cast.ToIntE(cfg.Get("SRID")); err != nil {
		return 0, false, fmt.Errorf("tpoint: invalid value for SRID: %w", err)
	}
	geodetic, err = getBool(cfg, "Geodetic", false)
	return srid, geodetic, err
}

func parseBoxZ(cfg *viper.Viper) ([]float64, error) {
	lo, hi := optionSet(cfg, "Box.Zmin"), optionSet(cfg, "Box.Zmax")
	if !lo && !hi {
		return nil, nil
	}
	if !lo || !hi {
		return nil, fmt.Errorf("tpoint: Box.Zmin and Box.Zmax need to be specified together")
	}
	zmin, err := getFloat(cfg, "Box.Zmin")
	if err != nil {
		return nil, err
	}
	zmax, err := getFloat(cfg, "Box.Zmax")
	if err != nil {
		return nil, err
	}
	return []float64{zmin, zmax}, nil
}

// parseMode returns the restriction mode given by the Mode option.
func parseMode(cfg *viper.Viper) (tpoint.Mode, error) {
	m := cast.ToString(cfg.Get("Mode"))
	if m == "" {
		return tpoint.At, nil
	}
	return tpoint.ParseMode(strings.ToLower(m))
}

// newLogger returns a logger writing to w at the level given by the
// LogLevel option.
func newLogger(cfg *viper.Viper, w io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	log.Out = w
	log.Formatter = &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	}
	if l := cast.ToString(cfg.Get("LogLevel")); l != "" {
		level, err := logrus.ParseLevel(l)
		if err != nil {
			return nil, fmt.Errorf("tpoint: invalid value for LogLevel: %w", err)
		}
		log.Level = level
	}
	return log, nil
}

// newEngine returns an engine configured by the Epsilon option, logging
// to w.
func newEngine(cfg *viper.Viper, w io.Writer) (*tpoint.Engine, error) {
	var eps float64
	if optionSet(cfg, "Epsilon") {
		var err error
		if eps, err = getFloat(cfg, "Epsilon"); err != nil {
			return nil, err
		}
	}
	if eps < 0 {
		return nil, fmt.Errorf("tpoint: Epsilon must not be negative but is %g", eps)
	}
	if eps == 0 {
		eps = tpoint.DefaultEpsilon
	}
	log, err := newLogger(cfg, w)
	if err != nil {
		return nil, err
	}
	return &tpoint.Engine{
		Epsilon: eps,
		Log:     log,
		Planar:  planar.New(eps),
	}, nil
}

// checkOutputFile makes sure that the output file directory exists, and
// expands any environment variables. An empty file name means standard
// output.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return f, nil
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("tpoint: the Output directory doesn't exist: %w", err)
	}
	return f, nil
}

// writeOutput calls write with the file given by the Output option, or
// with stdout if there is none.
func writeOutput(cfg *viper.Viper, stdout io.Writer, write func(io.Writer) error) error {
	f, err := checkOutputFile(cast.ToString(cfg.Get("Output")))
	if err != nil {
		return err
	}
	if f == "" {
		return write(stdout)
	}
	w, err := os.Create(f)
	if err != nil {
		return fmt.Errorf("tpoint: creating output file: %w", err)
	}
	if err := write(w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

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

// Package tpointutil contains the command-line interface and configuration
// handling for tpoint.
package tpointutil

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/tpoint"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to tpoint.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Epsilon",
			usage: `
              Epsilon is the tolerance used to decide whether points are
              collinear and whether a computed point lies on a segment.`,
			defaultVal: tpoint.DefaultEpsilon,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the minimum level of log messages to print:
              debug, info, warning, error, fatal or panic.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Trajectory",
			usage: `
              Trajectory is the path to the JSON file holding the moving
              point. It can include environment variables.`,
			shorthand:  "t",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Output",
			usage: `
              Output is the path of the JSON file the result is written
              to. The result is written to standard output if it is empty.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Mode",
			usage: `
              Mode is "at" to keep the part of the moving point within the
              region, or "minus" to keep the part outside of it.`,
			defaultVal: "at",
			flagsets:   []*pflag.FlagSet{restrictCmd.PersistentFlags()},
		},
		{
			name: "PeriodStart",
			usage: `
              PeriodStart is the start of the time period to restrict the
              moving point to, for example 2006-01-02T15:04:05Z.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{restrictCmd.PersistentFlags()},
		},
		{
			name: "PeriodEnd",
			usage: `
              PeriodEnd is the end of the time period to restrict the
              moving point to.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{restrictCmd.PersistentFlags()},
		},
		{
			name: "PeriodLowerInc",
			usage: `
              PeriodLowerInc specifies whether PeriodStart is part of the
              period.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{restrictCmd.PersistentFlags()},
		},
		{
			name: "PeriodUpperInc",
			usage: `
              PeriodUpperInc specifies whether PeriodEnd is part of the
              period.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{restrictCmd.PersistentFlags()},
		},
		{
			name: "SRID",
			usage: `
              SRID is the spatial reference identifier of the region. It
              must match that of the moving point.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{restrictGeomCmd.Flags(), restrictBoxCmd.Flags()},
		},
		{
			name: "Geodetic",
			usage: `
              Geodetic specifies whether the region coordinates are
              longitude and latitude. It must match the moving point.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{restrictGeomCmd.Flags(), restrictBoxCmd.Flags()},
		},
		{
			name: "Region",
			usage: `
              Region is the path to a GeoJSON file holding the geometry to
              restrict the moving point to. It can include environment
              variables.`,
			shorthand:  "r",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{restrictGeomCmd.Flags()},
		},
		{
			name: "ZMin",
			usage: `
              ZMin is the lower end of the Z range to restrict the moving
              point to. It is only used together with ZMax.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{restrictGeomCmd.Flags()},
		},
		{
			name: "ZMax",
			usage: `
              ZMax is the upper end of the Z range to restrict the moving
              point to.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{restrictGeomCmd.Flags()},
		},
		{
			name: "Box.Xmin",
			usage: `
              Box.Xmin is the minimum X coordinate of the box.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{restrictBoxCmd.Flags()},
		},
		{
			name: "Box.Xmax",
			usage: `
              Box.Xmax is the maximum X coordinate of the box.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{restrictBoxCmd.Flags()},
		},
		{
			name: "Box.Ymin",
			usage: `
              Box.Ymin is the minimum Y coordinate of the box.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{restrictBoxCmd.Flags()},
		},
		{
			name: "Box.Ymax",
			usage: `
              Box.Ymax is the maximum Y coordinate of the box.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{restrictBoxCmd.Flags()},
		},
		{
			name: "Box.Zmin",
			usage: `
              Box.Zmin is the minimum Z coordinate of the box. The box has
              no Z dimension if Box.Zmin and Box.Zmax are empty.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{restrictBoxCmd.Flags()},
		},
		{
			name: "Box.Zmax",
			usage: `
              Box.Zmax is the maximum Z coordinate of the box.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{restrictBoxCmd.Flags()},
		},
		{
			name: "BorderInclusive",
			usage: `
              BorderInclusive specifies whether points on the maximum
              borders of the box are within it. Points on the minimum
              borders always are.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{restrictBoxCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("TPOINT")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
		}
		// Flags shared between commands are bound once, to the first set.
		Cfg.BindPFlag(option.name, option.flagsets[0].Lookup(option.name))
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(simpleCmd)
	Root.AddCommand(restrictCmd)
	restrictCmd.AddCommand(restrictGeomCmd)
	restrictCmd.AddCommand(restrictBoxCmd)
	restrictCmd.AddCommand(restrictPeriodCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("tpoint: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "tpoint",
	Short: "Restrict and simplify moving points.",
	Long: `tpoint restricts moving points to geometries, spatiotemporal boxes and
time periods, and splits their trajectories into pieces that do not cross
themselves. Use the subcommands specified below to access the functionality.

Moving points are read from and written to JSON files. Refer to the subcommand
documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'TPOINT_var' where 'var' is the
name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of tpoint.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tpoint v%s\n", tpoint.Version)
	},
	DisableAutoGenTag: true,
}

var simpleCmd = &cobra.Command{
	Use:   "simple",
	Short: "Split a moving point into simple fragments.",
	Long: `simple reports whether the trajectory of a moving point crosses itself
and splits it into fragments that do not. The output is a JSON object with
a "simple" field and a "fragments" list.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSimple(Cfg, cmd.OutOrStdout(), os.Stderr)
	},
	DisableAutoGenTag: true,
}

var restrictCmd = &cobra.Command{
	Use:   "restrict",
	Short: "Restrict a moving point to a region.",
	Long: `restrict keeps the part of a moving point that is within a region
(--Mode=at) or outside of it (--Mode=minus). Use the subcommands specified
below to choose the kind of region. The result is a moving point, or null if
nothing is left.`,
	DisableAutoGenTag: true,
}

var restrictGeomCmd = &cobra.Command{
	Use:   "geometry",
	Short: "Restrict a moving point to a geometry.",
	Long: `geometry restricts a moving point to the planar geometry in the GeoJSON
file given by --Region, and optionally to a Z range (--ZMin, --ZMax) and a
time period (--PeriodStart, --PeriodEnd).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRestrictGeometry(Cfg, cmd.OutOrStdout(), os.Stderr)
	},
	DisableAutoGenTag: true,
}

var restrictBoxCmd = &cobra.Command{
	Use:   "box",
	Short: "Restrict a moving point to a spatiotemporal box.",
	Long: `box restricts a moving point to the box given by the Box.* options
and the time period given by --PeriodStart and --PeriodEnd. Either may be
left out, but not both.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRestrictBox(Cfg, cmd.OutOrStdout(), os.Stderr)
	},
	DisableAutoGenTag: true,
}

var restrictPeriodCmd = &cobra.Command{
	Use:   "period",
	Short: "Restrict a moving point to a time period.",
	Long: `period restricts a moving point to the time period given by
--PeriodStart and --PeriodEnd.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRestrictPeriod(Cfg, cmd.OutOrStdout(), os.Stderr)
	},
	DisableAutoGenTag: true,
}

// setup returns the engine and the moving point given by cfg.
func setup(cfg *viper.Viper, logw io.Writer) (*tpoint.Engine, tpoint.Temporal, error) {
	e, err := newEngine(cfg, logw)
	if err != nil {
		return nil, nil, err
	}
	temp, err := ReadTemporal(cast.ToString(cfg.Get("Trajectory")))
	if err != nil {
		return nil, nil, err
	}
	e.Log.WithFields(logrus.Fields{
		"instants": temp.NumInstants(),
		"interp":   temp.Interp(),
		"srid":     temp.Ref().SRID,
	}).Info("tpoint: read moving point")
	return e, temp, nil
}

// writeResult writes the result of a restriction.
func writeResult(cfg *viper.Viper, stdout io.Writer, e *tpoint.Engine, result tpoint.Temporal) error {
	fields := logrus.Fields{"empty": result == nil}
	if result != nil {
		fields["instants"] = result.NumInstants()
		fields["duration"] = result.Time().Duration()
	}
	e.Log.WithFields(fields).Info("tpoint: restricted moving point")
	return writeOutput(cfg, stdout, func(w io.Writer) error {
		return EncodeTemporal(w, result)
	})
}

// runSimple splits the moving point given by cfg into simple fragments.
func runSimple(cfg *viper.Viper, stdout, logw io.Writer) error {
	e, temp, err := setup(cfg, logw)
	if err != nil {
		return err
	}
	out := struct {
		Simple    bool            `json:"simple"`
		Fragments []*temporalJSON `json:"fragments"`
	}{Simple: e.IsSimple(temp)}
	for _, f := range e.MakeSimple(temp) {
		out.Fragments = append(out.Fragments, toJSON(f))
	}
	e.Log.WithFields(logrus.Fields{
		"simple":    out.Simple,
		"fragments": len(out.Fragments),
	}).Info("tpoint: split moving point")
	return writeOutput(cfg, stdout, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	})
}

// runRestrictGeometry restricts the moving point given by cfg to the
// region, Z range and period given by cfg.
func runRestrictGeometry(cfg *viper.Viper, stdout, logw io.Writer) error {
	e, temp, err := setup(cfg, logw)
	if err != nil {
		return err
	}
	srid, geodetic, err := parseRef(cfg)
	if err != nil {
		return err
	}
	region, err := parseRegion(cast.ToString(cfg.Get("Region")), srid, geodetic)
	if err != nil {
		return err
	}
	zspan, err := parseZSpan(cfg)
	if err != nil {
		return err
	}
	period, err := parsePeriod(cfg)
	if err != nil {
		return err
	}
	mode, err := parseMode(cfg)
	if err != nil {
		return err
	}
	result, err := e.RestrictGeometry(temp, region, zspan, period, mode)
	if err != nil {
		return err
	}
	return writeResult(cfg, stdout, e, result)
}

// runRestrictBox restricts the moving point given by cfg to the box given
// by cfg.
func runRestrictBox(cfg *viper.Viper, stdout, logw io.Writer) error {
	e, temp, err := setup(cfg, logw)
	if err != nil {
		return err
	}
	box, err := parseBox(cfg)
	if err != nil {
		return err
	}
	borderInc, err := getBool(cfg, "BorderInclusive", true)
	if err != nil {
		return err
	}
	mode, err := parseMode(cfg)
	if err != nil {
		return err
	}
	result, err := e.RestrictBox(temp, box, borderInc, mode)
	if err != nil {
		return err
	}
	return writeResult(cfg, stdout, e, result)
}

// runRestrictPeriod restricts the moving point given by cfg to the period
// given by cfg.
func runRestrictPeriod(cfg *viper.Viper, stdout, logw io.Writer) error {
	e, temp, err := setup(cfg, logw)
	if err != nil {
		return err
	}
	period, err := parsePeriod(cfg)
	if err != nil {
		return err
	}
	if period == nil {
		return fmt.Errorf("tpoint: you need to specify PeriodStart and PeriodEnd")
	}
	mode, err := parseMode(cfg)
	if err != nil {
		return err
	}
	return writeResult(cfg, stdout, e, e.RestrictPeriod(temp, *period, mode))
}

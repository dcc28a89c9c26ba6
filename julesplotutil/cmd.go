/*
Copyright © 2024 the julesplot authors.
This file is part of julesplot.

julesplot is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

julesplot is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with julesplot.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package julesplotutil provides the julesplot command-line interface.
package julesplotutil

import (
	"fmt"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/skratchdot/open-golang/open"
	"github.com/spatialmodel/julesplot"
	"github.com/spatialmodel/julesplot/render"
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
	keys := render.DefaultKeys()
	figureSets := []*pflag.FlagSet{batchCmd.Flags(), fluxCmd.Flags()}

	// Options are the configuration options available to julesplot.
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
			name: "LogLevel",
			usage: `
              LogLevel sets the level of messages to print: one of
              debug, info, warning or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "ObsDir",
			usage: `
              ObsDir is the folder holding the flux tower observation files.
              Site keys are the part of each file name before the first
              underscore, with dashes replaced by underscores.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{batchCmd.Flags()},
		},
		{
			name: "RunDirs",
			usage: `
              RunDirs are the folders holding the model output, one per model run.
              Site keys are the part of each file name before the first dash.
              Only sites present in every folder are plotted.`,
			shorthand:  "r",
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{batchCmd.Flags()},
		},
		{
			name: "OutputDir",
			usage: `
              OutputDir is the folder to write the figures and the batch report to.
              Figures for each site are written to a subfolder named after the site.`,
			defaultVal: "flux_figures",
			flagsets:   []*pflag.FlagSet{batchCmd.Flags()},
		},
		{
			name: "Ext",
			usage: `
              Ext is the file name extension of the dataset files.`,
			defaultVal: ".nc",
			flagsets:   []*pflag.FlagSet{batchCmd.Flags()},
		},
		{
			name: "FailFast",
			usage: `
              FailFast stops the batch at the first site that fails.
              By default failures are logged and the remaining sites are processed.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{batchCmd.Flags()},
		},
		{
			name: "Years",
			usage: `
              Years is the length of the overlapping sub-periods that
              periods longer than Years are additionally plotted for.`,
			defaultVal: 3,
			flagsets:   []*pflag.FlagSet{batchCmd.Flags()},
		},
		{
			name: "ObsFile",
			usage: `
              ObsFile is the flux tower observation file to plot. If it is
              empty only the model runs are plotted.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{fluxCmd.Flags()},
		},
		{
			name: "RunFiles",
			usage: `
              RunFiles are the model output files to plot, one per model run.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{fluxCmd.Flags()},
		},
		{
			name: "Open",
			usage: `
              Open specifies whether to open the figure in the default
              viewer after it is saved.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{fluxCmd.Flags()},
		},
		{
			name: "InputFile",
			usage: `
              InputFile is the dataset to aggregate.`,
			shorthand:  "i",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{dailyCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the file to write. For the flux command it is a
              figure whose format is chosen by the extension (.png, .svg, .pdf, .eps).
              For the daily command, files ending in .xlsx are written as
              spreadsheets and anything else as netCDF.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{fluxCmd.Flags(), dailyCmd.Flags()},
		},
		{
			name: "Reducer",
			usage: `
              Reducer is the daily aggregation: one of total, mean, median,
              max, min, std, or qNN for the NNth percentile.`,
			defaultVal: "mean",
			flagsets:   []*pflag.FlagSet{dailyCmd.Flags()},
		},
		{
			name: "Variables",
			usage: `
              Variables are the variables to aggregate. All variables are
              aggregated if none are given.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{dailyCmd.Flags()},
		},
		{
			name: "PFT",
			usage: `
              PFT reduces the plant functional type dimension before aggregating:
              mean, sum, or none to keep it.`,
			defaultVal: "none",
			flagsets:   []*pflag.FlagSet{dailyCmd.Flags()},
		},
		{
			name: "Labels",
			usage: `
              Labels are the legend labels for the model runs.`,
			defaultVal: []string{},
			flagsets:   figureSets,
		},
		{
			name: "Colors",
			usage: `
              Colors are the line colors for the model runs, given as single
              letter codes, tab:name codes, color names or #rrggbb values.`,
			defaultVal: []string{},
			flagsets:   figureSets,
		},
		{
			name: "Stress",
			usage: `
              Stress gives the water stress indicators plotted for each model run:
              wp for leaf and root zone water potential, beta for the soil moisture
              stress factor, beta&wp for both, or none.`,
			defaultVal: []string{},
			flagsets:   figureSets,
		},
		{
			name: "Title",
			usage: `
              Title is the figure title. The batch command uses the site
              key when Title is empty.`,
			defaultVal: "",
			flagsets:   figureSets,
		},
		{
			name: "Legend",
			usage: `
              Legend specifies whether to draw legends.`,
			defaultVal: false,
			flagsets:   figureSets,
		},
		{
			name: "ObsLabel",
			usage: `
              ObsLabel is the legend label for the observations.`,
			defaultVal: "Observations",
			flagsets:   figureSets,
		},
		{
			name: "ObsColor",
			usage: `
              ObsColor is the line color for the observations.`,
			defaultVal: "k",
			flagsets:   figureSets,
		},
		{
			name: "ObsLineStyle",
			usage: `
              ObsLineStyle is the line style for the observations: -, --, : or -.`,
			defaultVal: "-",
			flagsets:   figureSets,
		},
		{
			name: "ObsLineWidth",
			usage: `
              ObsLineWidth is the observation line width in points.`,
			defaultVal: 1.0,
			flagsets:   figureSets,
		},
		{
			name: "LineWidth",
			usage: `
              LineWidth is the model run line width in points.`,
			defaultVal: 1.0,
			flagsets:   figureSets,
		},
		{
			name: "Smoothing.Mode",
			usage: `
              Smoothing.Mode is the rolling window smoothing applied to the
              daily series: none, mean or median.`,
			defaultVal: "none",
			flagsets:   figureSets,
		},
		{
			name: "Smoothing.Window",
			usage: `
              Smoothing.Window is the rolling window length in days.`,
			defaultVal: 1,
			flagsets:   figureSets,
		},
		{
			name: "Smoothing.Percentiles",
			usage: `
              Smoothing.Percentiles are the lower and upper percentiles of the
              shaded band drawn around median smoothed series. No band is
              drawn if they are not given.`,
			defaultVal: []string{},
			flagsets:   figureSets,
		},
		{
			name: "SoilMoistureRange",
			usage: `
              SoilMoistureRange is the y axis range for the soil moisture stress factor.`,
			defaultVal: []string{"0", "1.05"},
			flagsets:   figureSets,
		},
		{
			name: "FigureWidth",
			usage: `
              FigureWidth is the figure width in inches.`,
			defaultVal: 8.0,
			flagsets:   figureSets,
		},
		{
			name: "FigureHeight",
			usage: `
              FigureHeight is the figure height in inches.`,
			defaultVal: 5.0,
			flagsets:   figureSets,
		},
		{
			name: "Keys.GPP",
			usage: `
              Keys.GPP is the model gross primary productivity variable.`,
			defaultVal: keys.GPP,
			flagsets:   figureSets,
		},
		{
			name: "Keys.LatentHeat",
			usage: `
              Keys.LatentHeat is the model latent heat flux variable.`,
			defaultVal: keys.LatentHeat,
			flagsets:   figureSets,
		},
		{
			name: "Keys.RootPotential",
			usage: `
              Keys.RootPotential is the model root zone water potential variable.`,
			defaultVal: keys.RootPotential,
			flagsets:   figureSets,
		},
		{
			name: "Keys.LeafPotential",
			usage: `
              Keys.LeafPotential is the model leaf water potential variable.`,
			defaultVal: keys.LeafPotential,
			flagsets:   figureSets,
		},
		{
			name: "Keys.SoilStress",
			usage: `
              Keys.SoilStress is the model soil moisture stress factor variable.`,
			defaultVal: keys.SoilStress,
			flagsets:   figureSets,
		},
		{
			name: "Keys.ObsGPP",
			usage: `
              Keys.ObsGPP is the observed gross primary productivity variable.`,
			defaultVal: keys.ObsGPP,
			flagsets:   figureSets,
		},
		{
			name: "Keys.ObsLatentHeat",
			usage: `
              Keys.ObsLatentHeat is the observed latent heat flux variable.`,
			defaultVal: keys.ObsLatentHeat,
			flagsets:   figureSets,
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("JULESPLOT")
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
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
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
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(batchCmd)
	Root.AddCommand(fluxCmd)
	Root.AddCommand(dailyCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets up logging.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(expandPath(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("julesplot: problem reading configuration file: %v", err)
		}
	}
	level, err := logrus.ParseLevel(Cfg.GetString("LogLevel"))
	if err != nil {
		return fmt.Errorf("julesplot: LogLevel: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "julesplot",
	Short: "Plot JULES land surface model output against flux tower observations.",
	Long: `julesplot aggregates output from the JULES land surface model and flux tower
observations to daily values and plots them against each other.
Use the subcommands specified below to access the functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'JULESPLOT_var' where 'var' is the
name of the variable to be set. File and folder paths may contain environment variables.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of julesplot.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("julesplot v%s\n", julesplot.Version)
	},
	DisableAutoGenTag: true,
}

// batchCmd plots every site shared by an observation folder and a
// set of model run folders.
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Plot flux comparisons for many sites.",
	Long: `batch matches the observation files in ObsDir with the model output files
in each of RunDirs by site, and for each site present in all of them plots the
daily gross primary productivity, latent heat flux and water stress indicators
of each model run against the observations. Figures are written to a folder for
each site inside OutputDir, together with a report of the batch.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := fluxOptions(Cfg)
		if err != nil {
			return err
		}
		obsDir, err := checkInputDir(Cfg.GetString("ObsDir"), "ObsDir")
		if err != nil {
			return err
		}
		runDirs := expandStringSlice(Cfg.GetStringSlice("RunDirs"))
		if len(runDirs) == 0 {
			return fmt.Errorf("julesplot: RunDirs: at least one model run folder must be specified: %w",
				julesplot.ErrConfiguration)
		}
		for _, d := range runDirs {
			if _, err := checkInputDir(d, "RunDirs"); err != nil {
				return err
			}
		}
		return Batch(obsDir, runDirs, expandPath(Cfg.GetString("OutputDir")),
			Cfg.GetString("Ext"), Cfg.GetInt("Years"), Cfg.GetBool("FailFast"), o)
	},
	DisableAutoGenTag: true,
}

// fluxCmd plots a single site from explicitly given files.
var fluxCmd = &cobra.Command{
	Use:   "flux",
	Short: "Plot a flux comparison for one site.",
	Long: `flux plots the daily gross primary productivity, latent heat flux and
water stress indicators of the model output in RunFiles against the observations
in ObsFile and saves the figure to OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := fluxOptions(Cfg)
		if err != nil {
			return err
		}
		out, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		err = Flux(expandPath(Cfg.GetString("ObsFile")),
			expandStringSlice(Cfg.GetStringSlice("RunFiles")), out, o)
		if err != nil || !Cfg.GetBool("Open") {
			return err
		}
		if err := open.Run(out); err != nil {
			return fmt.Errorf("julesplot: opening %s: %v", out, err)
		}
		return nil
	},
	DisableAutoGenTag: true,
}

// dailyCmd aggregates a dataset to daily values.
var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Aggregate a dataset to daily values.",
	Long: `daily aggregates the variables in InputFile to daily values using Reducer and
writes the result to OutputFile, as a spreadsheet if OutputFile ends in .xlsx
and as netCDF otherwise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := julesplot.ParseReducer(Cfg.GetString("Reducer"))
		if err != nil {
			return err
		}
		pft, err := checkPFT(Cfg.GetString("PFT"))
		if err != nil {
			return err
		}
		out, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		return Daily(expandPath(Cfg.GetString("InputFile")), out, r, pft,
			Cfg.GetStringSlice("Variables"))
	},
	DisableAutoGenTag: true,
}

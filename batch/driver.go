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

package batch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/julesplot"
	"github.com/spatialmodel/julesplot/internal/hash"
	"github.com/spatialmodel/julesplot/render"
)

// ReportFile is the name of the batch report written to the output folder.
const ReportFile = "flux_report.toml"

// Driver renders flux comparison figures for every site found in
// an observation folder and a set of model run folders.
type Driver struct {
	// Log receives progress messages. If nil, the standard
	// logrus logger is used.
	Log logrus.FieldLogger

	// FailFast stops the batch at the first site that fails.
	// Otherwise failures are logged and recorded in the report
	// and the remaining sites are processed.
	FailFast bool

	// Options configure the figures. Options.Title is replaced with
	// the site key when empty.
	Options render.FluxOptions

	// Ext is the dataset file extension. DefaultExt is used if empty.
	Ext string

	// Years is the length of the sub-windows that long periods are
	// split into. SubWindowYears is used if zero.
	Years int
}

func (d *Driver) log() logrus.FieldLogger {
	if d.Log == nil {
		return logrus.StandardLogger()
	}
	return d.Log
}

func (d *Driver) ext() string {
	if d.Ext == "" {
		return DefaultExt
	}
	return d.Ext
}

func (d *Driver) years() int {
	if d.Years == 0 {
		return SubWindowYears
	}
	return d.Years
}

// Run renders the figures for each site matched between obsDir and
// runDirs into a folder named after the site in outDir and writes a
// report of the batch to outDir. The returned error is non-nil only if
// the batch as a whole could not run, or, when FailFast is set, a
// site failed.
func (d *Driver) Run(obsDir string, runDirs []string, outDir string) (*Report, error) {
	log := d.log()
	if n := len(runDirs); len(d.Options.Labels) != n || len(d.Options.Colors) != n || len(d.Options.Stress) != n {
		return nil, fmt.Errorf("batch: %d model run folders but %d labels, %d colors and %d stress indicators: %w",
			n, len(d.Options.Labels), len(d.Options.Colors), len(d.Options.Stress), julesplot.ErrInvalidArgument)
	}
	sites, dropped, err := Match(obsDir, runDirs, d.ext())
	if err != nil {
		return nil, err
	}
	for _, k := range dropped {
		log.WithField("site", k).Warn("batch: site missing from at least one model run folder; skipping")
	}
	log.WithFields(logrus.Fields{
		"sites":     len(sites),
		"unmatched": len(dropped),
	}).Info("batch: matched sites")

	r := &Report{
		Version:     julesplot.Version,
		Options:     hash.Hash(d.Options),
		Observation: obsDir,
		Runs:        runDirs,
		Output:      outDir,
		Unmatched:   dropped,
	}
	for _, s := range sites {
		res, err := d.site(s, outDir)
		if err != nil {
			log.WithFields(logrus.Fields{
				"site":  s.Key,
				"error": err,
			}).Error("batch: site failed")
			res.Error = err.Error()
			r.Failed++
			r.Sites = append(r.Sites, res)
			if d.FailFast {
				return r, fmt.Errorf("batch: site %s: %w", s.Key, err)
			}
			continue
		}
		log.WithFields(logrus.Fields{
			"site":    s.Key,
			"window":  fmt.Sprintf("%d-%d", res.Start.Year(), res.End.Year()),
			"figures": len(res.Figures),
		}).Info("batch: site complete")
		r.Sites = append(r.Sites, res)
	}

	if err := os.MkdirAll(outDir, os.ModePerm); err != nil {
		return r, fmt.Errorf("batch: creating output folder: %v", err)
	}
	if err := r.Write(filepath.Join(outDir, ReportFile)); err != nil {
		return r, err
	}
	return r, nil
}

// FigurePath returns the path of the figure for site key covering w,
// or the whole period if w is nil.
func FigurePath(outDir, key string, w *Window) string {
	name := key + "_flux_data"
	if w != nil {
		name += fmt.Sprintf("_%d_%d", w.Start.Year(), w.End.Year())
	}
	return filepath.Join(outDir, key, name+".png")
}

// site loads and renders the data for one site.
func (d *Driver) site(s Site, outDir string) (SiteResult, error) {
	res := SiteResult{Key: s.Key, Observation: s.Observation, Runs: s.Runs}
	log := d.log().WithField("site", s.Key)

	obs, err := julesplot.Open(s.Observation)
	if err != nil {
		return res, err
	}
	runs := make([]*julesplot.Dataset, len(s.Runs))
	for i, p := range s.Runs {
		if runs[i], err = julesplot.Open(p); err != nil {
			return res, err
		}
	}
	log.WithField("files", 1+len(runs)).Debug("batch: loaded datasets")

	w, err := TimeWindow(append([]*julesplot.Dataset{obs}, runs...)...)
	if err != nil {
		return res, err
	}
	res.Start, res.End = w.Start, w.End

	o := d.Options
	if o.Title == "" {
		o.Title = s.Key
	}
	f, err := render.PlotFluxData(runs, obs, o)
	if err != nil {
		return res, err
	}
	if err := os.MkdirAll(filepath.Join(outDir, s.Key), os.ModePerm); err != nil {
		return res, fmt.Errorf("batch: creating site folder: %v", err)
	}

	save := func(win Window, path string) error {
		f.SetXRange(win.Start, win.End)
		if err := f.Save(path); err != nil {
			return err
		}
		res.Figures = append(res.Figures, path)
		log.WithField("file", path).Debug("batch: saved figure")
		return nil
	}
	if err := save(w, FigurePath(outDir, s.Key, nil)); err != nil {
		return res, err
	}
	for _, sw := range w.SubWindows(d.years()) {
		if err := save(sw, FigurePath(outDir, s.Key, &sw)); err != nil {
			return res, err
		}
	}

	res.Stats = compareRuns(runs, obs, o, log)
	return res, nil
}

// compareRuns calculates statistics of the daily carbon and latent
// heat fluxes of each run against the observations.
func compareRuns(runs []*julesplot.Dataset, obs *julesplot.Dataset, o render.FluxOptions, log logrus.FieldLogger) []RunStats {
	type flux struct {
		name               string
		model, observed    string
		r                  julesplot.Reducer
		modelConv, obsConv julesplot.Converter
	}
	fluxes := []flux{
		{"GPP", o.Keys.GPP, o.Keys.ObsGPP, julesplot.Total, julesplot.NormalizeModelCarbon, julesplot.NormalizeObservedCarbon},
		{"latent heat", o.Keys.LatentHeat, o.Keys.ObsLatentHeat, julesplot.Mean, nil, nil},
	}
	var out []RunStats
	for _, fl := range fluxes {
		observed, err := julesplot.DailySeries(obs, fl.observed, fl.r, fl.obsConv)
		if err != nil {
			log.WithField("variable", fl.observed).Warn("batch: no observations to compare with: ", err)
			continue
		}
		for i, run := range runs {
			ms, err := julesplot.DailySeries(run, fl.model, fl.r, fl.modelConv)
			if err == nil {
				var st julesplot.Stats
				if st, err = julesplot.Compare(ms, observed); err == nil {
					out = append(out, RunStats{Run: o.Labels[i], Variable: fl.name, Stats: st})
					continue
				}
			}
			entry := log.WithFields(logrus.Fields{"run": o.Labels[i], "variable": fl.model})
			if errors.Is(err, julesplot.ErrInsufficientData) {
				entry.Debug("batch: too few shared days for statistics")
			} else {
				entry.Warn("batch: comparing with observations: ", err)
			}
		}
	}
	return out
}

// Report summarizes a batch run.
type Report struct {
	Version string

	// Options is a fingerprint of the figure options.
	Options string

	Observation string
	Runs        []string
	Output      string

	// Failed is the number of sites that could not be rendered.
	Failed int

	// Unmatched holds the keys of observation sites missing from
	// at least one model run folder.
	Unmatched []string

	Sites []SiteResult
}

// SiteResult describes the outcome for one site.
type SiteResult struct {
	Key         string
	Observation string
	Runs        []string
	Start, End  time.Time
	Figures     []string
	Error       string `toml:",omitempty"`
	Stats       []RunStats
}

// RunStats holds comparison statistics of one model run against the
// observations.
type RunStats struct {
	Run      string
	Variable string
	Stats    julesplot.Stats
}

// Write writes r to path in TOML format.
func (r *Report) Write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("batch: writing report: %v", err)
	}
	if err := toml.NewEncoder(f).Encode(r); err != nil {
		f.Close()
		return fmt.Errorf("batch: encoding report: %v", err)
	}
	return f.Close()
}

// ReadReport reads a report written by Report.Write.
func ReadReport(path string) (*Report, error) {
	r := new(Report)
	if _, err := toml.DecodeFile(path, r); err != nil {
		return nil, fmt.Errorf("batch: reading report: %v", err)
	}
	return r, nil
}

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

package julesplotutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/julesplot"
	"github.com/spatialmodel/julesplot/batch"
	"github.com/spatialmodel/julesplot/render"
)

// Batch plots the flux comparison for each site shared by the
// observation files in obsDir and the model run files in runDirs.
// ext is the dataset file extension and years the length of the
// sub-periods long records are split into.
func Batch(obsDir string, runDirs []string, outDir, ext string, years int, failFast bool, o render.FluxOptions) error {
	d := &batch.Driver{
		Log:      logrus.StandardLogger(),
		FailFast: failFast,
		Options:  o,
		Ext:      ext,
		Years:    years,
	}
	r, err := d.Run(obsDir, runDirs, outDir)
	if err != nil {
		return err
	}
	var figures int
	for _, s := range r.Sites {
		figures += len(s.Figures)
	}
	entry := logrus.WithFields(logrus.Fields{
		"sites":     len(r.Sites),
		"failed":    r.Failed,
		"unmatched": len(r.Unmatched),
		"figures":   figures,
		"report":    filepath.Join(outDir, batch.ReportFile),
	})
	if r.Failed > 0 {
		entry.Warn("julesplot: batch finished with failures")
	} else {
		entry.Info("julesplot: batch finished")
	}
	return nil
}

// Flux plots the model runs in runFiles against the observations in
// obsFile and saves the figure to outFile. The runs are plotted alone if
// obsFile is empty.
func Flux(obsFile string, runFiles []string, outFile string, o render.FluxOptions) error {
	var obs *julesplot.Dataset
	var err error
	if obsFile != "" {
		if obs, err = julesplot.Open(obsFile); err != nil {
			return err
		}
	}
	runs := make([]*julesplot.Dataset, len(runFiles))
	for i, f := range runFiles {
		if runs[i], err = julesplot.Open(f); err != nil {
			return err
		}
	}
	f, err := render.PlotFluxData(runs, obs, o)
	if err != nil {
		return err
	}
	if err := f.Save(outFile); err != nil {
		return err
	}
	start, end := f.XRange()
	logrus.WithFields(logrus.Fields{
		"file":  outFile,
		"runs":  len(runs),
		"start": start.Format(render.DateFormat),
		"end":   end.Format(render.DateFormat),
	}).Info("julesplot: saved figure")
	return nil
}

// Daily aggregates the variables in inFile to daily values with r and
// writes them to outFile. If pft is not nil it is applied to each
// variable first. Only the named variables are kept if vars is not empty.
func Daily(inFile, outFile string, r julesplot.Reducer, pft julesplot.Converter, vars []string) error {
	d, err := julesplot.Open(inFile)
	if err != nil {
		return err
	}
	if len(vars) > 0 {
		if d, err = d.Select(vars...); err != nil {
			return err
		}
	}
	if pft != nil {
		for _, name := range d.Names() {
			if d, err = pft(d, name); err != nil {
				return err
			}
		}
	}
	daily, err := julesplot.Daily(d, r)
	if err != nil {
		return err
	}

	if strings.EqualFold(filepath.Ext(outFile), ".xlsx") {
		err = julesplot.WriteXLSX(outFile, daily)
	} else {
		err = writeDataset(outFile, daily)
	}
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"file":      outFile,
		"reducer":   r.String(),
		"days":      len(daily.Time),
		"variables": len(daily.Vars),
	}).Info("julesplot: saved daily values")
	return nil
}

func writeDataset(path string, d *julesplot.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("julesplot: creating output file: %v", err)
	}
	if err := julesplot.Write(f, d); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

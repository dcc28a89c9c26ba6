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

// Package batch matches flux tower observation files with JULES model
// output for the same sites and renders comparison figures for each site.
package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spatialmodel/julesplot"
)

// DefaultExt is the extension of the dataset files that are matched.
const DefaultExt = ".nc"

// Site holds the files for one site found in the observation folder
// and in every model run folder.
type Site struct {
	Key         string
	Observation string

	// Runs holds one file for each model run folder, in folder order.
	Runs []string
}

// Discover returns the sorted names of the regular files in dir whose
// names end in ext.
func Discover(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("batch: listing %s: %v", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// ObservationKey returns the site key of an observation file name
// (without extension): the text before the first underscore, with
// hyphens replaced by underscores.
func ObservationKey(name string) string {
	if i := strings.Index(name, "_"); i >= 0 {
		name = name[:i]
	}
	return strings.ReplaceAll(name, "-", "_")
}

// ModelKey returns the site key of a model output file name
// (without extension): the text before the first hyphen.
func ModelKey(name string) string {
	if i := strings.Index(name, "-"); i >= 0 {
		name = name[:i]
	}
	return name
}

// Match finds the sites that have an observation file in obsDir and a
// model output file in every one of runDirs. It returns the matched sites
// in observation file order and the keys of the observation files that
// were missing from at least one model run folder. If a folder holds more
// than one file for a site, the first in sorted order is used.
func Match(obsDir string, runDirs []string, ext string) ([]Site, []string, error) {
	if len(runDirs) == 0 {
		return nil, nil, fmt.Errorf("batch: no model run folders: %w", julesplot.ErrInvalidArgument)
	}
	obsFiles, err := Discover(obsDir, ext)
	if err != nil {
		return nil, nil, err
	}
	runs := make([]map[string]string, len(runDirs))
	for i, dir := range runDirs {
		files, err := Discover(dir, ext)
		if err != nil {
			return nil, nil, err
		}
		runs[i] = make(map[string]string, len(files))
		for _, f := range files {
			k := ModelKey(strings.TrimSuffix(f, ext))
			if _, ok := runs[i][k]; !ok {
				runs[i][k] = filepath.Join(dir, f)
			}
		}
	}

	var sites []Site
	var dropped []string
	seen := make(map[string]bool)
	for _, f := range obsFiles {
		k := ObservationKey(strings.TrimSuffix(f, ext))
		if seen[k] {
			continue
		}
		seen[k] = true
		s := Site{Key: k, Observation: filepath.Join(obsDir, f), Runs: make([]string, 0, len(runDirs))}
		for _, r := range runs {
			p, ok := r[k]
			if !ok {
				break
			}
			s.Runs = append(s.Runs, p)
		}
		if len(s.Runs) != len(runDirs) {
			dropped = append(dropped, k)
			continue
		}
		sites = append(sites, s)
	}
	return sites, dropped, nil
}

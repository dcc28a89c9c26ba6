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
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ctessum/sparse"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/julesplot"
	"github.com/spatialmodel/julesplot/batch"
	"github.com/tealeg/xlsx"
)

var start = time.Date(2012, time.June, 1, 0, 0, 0, 0, time.UTC)

// modelRun returns hourly model output covering the given number of days.
func modelRun(days int) *julesplot.Dataset {
	n := days * 24
	d := &julesplot.Dataset{Vars: make(map[string]*julesplot.Variable)}
	gpp := sparse.ZerosDense(n)
	le := sparse.ZerosDense(n)
	fsmc := sparse.ZerosDense(n)
	root := sparse.ZerosDense(n, 2)
	leaf := sparse.ZerosDense(n, 2)
	for i := 0; i < n; i++ {
		d.Time = append(d.Time, start.Add(time.Duration(i)*time.Hour))
		gpp.Elements[i] = 1
		le.Elements[i] = 50
		fsmc.Elements[i] = 0.9
		root.Set(-0.5, i, 0)
		root.Set(-1, i, 1)
		leaf.Set(-1, i, 0)
		leaf.Set(-2, i, 1)
	}
	tm := []string{julesplot.TimeDim}
	tp := []string{julesplot.TimeDim, julesplot.PFTDim}
	d.Vars["gpp_gb"] = &julesplot.Variable{Dims: tm, Units: "kg m-2 s-1", Data: gpp}
	d.Vars["latent_heat"] = &julesplot.Variable{Dims: tm, Units: "W m-2", Data: le}
	d.Vars["fsmc_gb"] = &julesplot.Variable{Dims: tm, Data: fsmc}
	d.Vars["psi_root_zone_pft"] = &julesplot.Variable{Dims: tp, Units: "MPa", Data: root}
	d.Vars["psi_leaf_pft"] = &julesplot.Variable{Dims: tp, Units: "MPa", Data: leaf}
	return d
}

// observations returns half-hourly flux tower data covering the given
// number of days.
func observations(days int) *julesplot.Dataset {
	s := julesplot.Series{}
	for i := 0; i < days*48; i++ {
		s.Time = append(s.Time, start.Add(time.Duration(i)*30*time.Minute))
		s.Values = append(s.Values, 3)
	}
	d := julesplot.FromSeries("GPP", "umol m-2 s-1", s)
	d.Vars["Qle"] = julesplot.FromSeries("Qle", "W m-2", s).Vars["Qle"]
	return d
}

func writeFile(t *testing.T, path string, d *julesplot.Dataset) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		t.Fatal(err)
	}
	if err := writeDataset(path, d); err != nil {
		t.Fatal(err)
	}
	return path
}

func isPNG(t *testing.T, path string) {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(b, []byte("\x89PNG")) {
		t.Errorf("%s is not a PNG image", path)
	}
}

// resetConfig discards configuration values set by earlier tests.
func resetConfig() {
	Cfg = viper.New()
	Cfg.SetEnvPrefix("JULESPLOT")
	Cfg.AutomaticEnv()
	for _, option := range options {
		Cfg.BindPFlag(option.name, option.flagsets[0].Lookup(option.name))
	}
}

func setFigureConfig() {
	resetConfig()
	Cfg.Set("Labels", []string{"control", "stressed"})
	Cfg.Set("Colors", []string{"tab:blue", "#ff7f0e"})
	Cfg.Set("Stress", []string{"wp", "beta&wp"})
	Cfg.Set("Legend", true)
	Cfg.Set("Smoothing.Mode", "median")
	Cfg.Set("Smoothing.Window", 3)
	Cfg.Set("Smoothing.Percentiles", []interface{}{16, 84.0})
}

func TestVersion(t *testing.T) {
	buf := new(bytes.Buffer)
	Root.SetOut(buf)
	defer Root.SetOut(nil)
	Root.SetArgs([]string{"version"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if want := fmt.Sprintf("julesplot v%s\n", julesplot.Version); buf.String() != want {
		t.Errorf("version = %q, want %q", buf.String(), want)
	}
}

func TestDaily(t *testing.T) {
	dir := t.TempDir()
	resetConfig()
	Cfg.Set("InputFile", writeFile(t, filepath.Join(dir, "run.nc"), modelRun(3)))
	Cfg.Set("Reducer", "total")
	Cfg.Set("PFT", "sum")
	Cfg.Set("Variables", []string{"gpp_gb", "psi_leaf_pft"})

	t.Run("netcdf", func(t *testing.T) {
		out := filepath.Join(dir, "daily.nc")
		Cfg.Set("OutputFile", out)
		Root.SetArgs([]string{"daily"})
		if err := Root.Execute(); err != nil {
			t.Fatal(err)
		}
		d, err := julesplot.Open(out)
		if err != nil {
			t.Fatal(err)
		}
		if len(d.Time) != 3 {
			t.Fatalf("%d days, want 3", len(d.Time))
		}
		if names := strings.Join(d.Names(), ","); names != "gpp_gb,psi_leaf_pft" {
			t.Errorf("variables = %s", names)
		}
		leaf, err := d.Series("psi_leaf_pft")
		if err != nil {
			t.Fatal(err)
		}
		for i, v := range leaf.Values {
			if v != -72 {
				t.Errorf("leaf[%d] = %g, want -72", i, v)
			}
		}
	})
	t.Run("xlsx", func(t *testing.T) {
		out := filepath.Join(dir, "daily.xlsx")
		Cfg.Set("OutputFile", out)
		Root.SetArgs([]string{"daily"})
		if err := Root.Execute(); err != nil {
			t.Fatal(err)
		}
		f, err := xlsx.OpenFile(out)
		if err != nil {
			t.Fatal(err)
		}
		if len(f.Sheets) != 2 {
			t.Errorf("%d sheets, want 2", len(f.Sheets))
		}
		if v, err := f.Sheet["gpp_gb"].Rows[1].Cells[1].Float(); err != nil || v != 24 {
			t.Errorf("gpp_gb on the first day = %g (%v), want 24", v, err)
		}
	})
}

func TestDailyConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "run.nc"), modelRun(2))
	out := filepath.Join(dir, "daily_max.nc")
	cfgFile := filepath.Join(dir, "config.toml")
	os.Setenv("JULESPLOT_TEST_DIR", dir)
	defer os.Unsetenv("JULESPLOT_TEST_DIR")
	config := `InputFile = "${JULESPLOT_TEST_DIR}/run.nc"
Reducer = "max"
Variables = ["latent_heat"]
PFT = "none"
`
	if err := os.WriteFile(cfgFile, []byte(config), 0644); err != nil {
		t.Fatal(err)
	}
	resetConfig()
	Cfg.Set("config", cfgFile)
	Cfg.Set("OutputFile", out)
	Root.SetArgs([]string{"daily"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	d, err := julesplot.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	if names := d.Names(); len(names) != 1 || names[0] != "latent_heat" {
		t.Errorf("variables = %v", names)
	}
}

func TestEnv(t *testing.T) {
	os.Setenv("JULESPLOT_REDUCER", "q90")
	defer os.Unsetenv("JULESPLOT_REDUCER")
	resetConfig()
	if r := Cfg.GetString("Reducer"); r != "q90" {
		t.Errorf("Reducer = %q, want q90", r)
	}
	Cfg.Set("Reducer", "min")
	if r := Cfg.GetString("Reducer"); r != "min" {
		t.Errorf("Reducer = %q, want min", r)
	}
}

func TestDailyErrors(t *testing.T) {
	dir := t.TempDir()
	resetConfig()
	Cfg.Set("InputFile", writeFile(t, filepath.Join(dir, "run.nc"), modelRun(1)))
	Cfg.Set("Variables", []string{})
	Cfg.Set("OutputFile", filepath.Join(dir, "out.nc"))
	for _, test := range []struct {
		key, val string
		err      error
	}{
		{"PFT", "max", julesplot.ErrConfiguration},
		{"Reducer", "mode", julesplot.ErrInvalidArgument},
	} {
		Cfg.Set("PFT", "none")
		Cfg.Set("Reducer", "mean")
		Cfg.Set(test.key, test.val)
		if err := dailyCmd.RunE(dailyCmd, nil); !errors.Is(err, test.err) {
			t.Errorf("%s=%s: err = %v, want %v", test.key, test.val, err, test.err)
		}
	}
	Cfg.Set("Reducer", "mean")
	Cfg.Set("OutputFile", filepath.Join(dir, "missing", "out.nc"))
	if err := dailyCmd.RunE(dailyCmd, nil); err == nil {
		t.Error("expected an error for a missing output folder")
	}
}

func TestFlux(t *testing.T) {
	dir := t.TempDir()
	setFigureConfig()
	Cfg.Set("ObsFile", writeFile(t, filepath.Join(dir, "site_obs.nc"), observations(20)))
	Cfg.Set("RunFiles", []string{
		writeFile(t, filepath.Join(dir, "site-control.nc"), modelRun(20)),
		writeFile(t, filepath.Join(dir, "site-stressed.nc"), modelRun(20)),
	})
	out := filepath.Join(dir, "site.png")
	Cfg.Set("OutputFile", out)
	Root.SetArgs([]string{"flux"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	isPNG(t, out)
}

func TestFluxWithoutObservations(t *testing.T) {
	dir := t.TempDir()
	setFigureConfig()
	Cfg.Set("RunFiles", []string{
		writeFile(t, filepath.Join(dir, "site-control.nc"), modelRun(20)),
		writeFile(t, filepath.Join(dir, "site-stressed.nc"), modelRun(20)),
	})
	out := filepath.Join(dir, "site.png")
	Cfg.Set("OutputFile", out)
	Root.SetArgs([]string{"flux"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	isPNG(t, out)
}

func TestBatch(t *testing.T) {
	dir := t.TempDir()
	setFigureConfig()
	obs := filepath.Join(dir, "obs")
	runs := []string{filepath.Join(dir, "control"), filepath.Join(dir, "stressed")}
	writeFile(t, filepath.Join(obs, "AU-How_2012_obs.nc"), observations(30))
	writeFile(t, filepath.Join(obs, "US-Ha1_2012_obs.nc"), observations(30))
	writeFile(t, filepath.Join(runs[0], "AU_How-control.nc"), modelRun(30))
	writeFile(t, filepath.Join(runs[1], "AU_How-stressed.nc"), modelRun(30))
	out := filepath.Join(dir, "figures")
	Cfg.Set("ObsDir", obs)
	Cfg.Set("RunDirs", runs)
	Cfg.Set("OutputDir", out)
	Root.SetArgs([]string{"batch"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	isPNG(t, batch.FigurePath(out, "AU_How", nil))
	r, err := batch.ReadReport(filepath.Join(out, batch.ReportFile))
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Sites) != 1 || len(r.Unmatched) != 1 || r.Unmatched[0] != "US_Ha1" {
		t.Errorf("sites = %d, unmatched = %v", len(r.Sites), r.Unmatched)
	}
}

func TestBatchMissingRunDirs(t *testing.T) {
	setFigureConfig()
	Cfg.Set("ObsDir", t.TempDir())
	Cfg.Set("RunDirs", []string{})
	if err := batchCmd.RunE(batchCmd, nil); !errors.Is(err, julesplot.ErrConfiguration) {
		t.Errorf("err = %v, want ErrConfiguration", err)
	}
}

/*
 * report_test.go, part of zopt.
 *
 * Copyright 2026 The zopt Authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmera/zopt"
	v3 "github.com/rmera/zopt/v3"
	"github.com/rmera/zopt/zmat"
)

func writeRotated(Te *testing.T, path, content string) {
	require.NoError(Te, RenameExisting(path))
	require.NoError(Te, os.WriteFile(path, []byte(content), 0o644))
}

func read(Te *testing.T, path string) string {
	b, err := os.ReadFile(path)
	require.NoError(Te, err)
	return string(b)
}

func TestRenameExisting(Te *testing.T) {
	p := filepath.Join(Te.TempDir(), "water.md")
	writeRotated(Te, p, "first")
	writeRotated(Te, p, "second")
	writeRotated(Te, p, "third")
	assert.Equal(Te, "third", read(Te, p))
	assert.Equal(Te, "second", read(Te, p+"_1"))
	assert.Equal(Te, "first", read(Te, p+"_2"))
	_, err := os.Stat(p + "_3")
	assert.True(Te, errors.Is(err, os.ErrNotExist))
}

func TestRenameExhausted(Te *testing.T) {
	p := filepath.Join(Te.TempDir(), "water.md")
	for _, n := range []string{p, p + "_1", p + "_2"} {
		require.NoError(Te, os.WriteFile(n, []byte(n), 0o644))
	}
	err := RenameExisting(p, 2)
	if !errors.Is(err, zopt.ErrOutputPathExhausted) {
		Te.Fatalf("expected ErrOutputPathExhausted, got %v", err)
	}
	assert.Equal(Te, p, read(Te, p))
	assert.Equal(Te, p+"_2", read(Te, p+"_2"))
	assert.NoError(Te, RenameExisting(filepath.Join(Te.TempDir(), "nothing")))
}

func TestPaths(Te *testing.T) {
	p := DefaultPaths("runs/water.zmat")
	assert.Equal(Te, filepath.Join("runs", "water.md"), p.Report)
	assert.Equal(Te, filepath.Join("runs", "water.molden"), p.Trajectory)
	assert.Equal(Te, filepath.Join("runs", "water_el_calcs", "water.inp"), p.Input)
	assert.Equal(Te, filepath.Join("runs", "water_el_calcs"), p.InputDir())

	dir := Te.TempDir()
	p = DefaultPaths(filepath.Join(dir, "water"))
	require.NoError(Te, os.MkdirAll(p.InputDir(), 0o755))
	require.NoError(Te, os.WriteFile(p.Report, []byte("old"), 0o644))
	require.NoError(Te, p.Rotate())
	assert.Equal(Te, "old", read(Te, p.Report+"_1"))
	st, err := os.Stat(p.InputDir() + "_1")
	require.NoError(Te, err)
	assert.True(Te, st.IsDir())
}

func TestTable(Te *testing.T) {
	h := TableHeader()
	r := TableRow(1, -1.0, 0, 1e-7)
	fmt.Print(h, r)
	lines := strings.Split(strings.TrimSpace(h), "\n")
	require.Len(Te, lines, 2)
	assert.Equal(Te, len(lines[0]), len(lines[1]))
	assert.Equal(Te, len(lines[0]), len(strings.TrimSpace(r)))
	assert.Contains(Te, lines[0], gradTitle)
	assert.Equal(Te, "|   2|    -1.0000000001 |    -0.0000000001 |                  0.0000001000 |\n", TableRow(2, -1.0000000001, -1e-10, 1e-7))
	assert.Equal(Te, "3:04:05", elapsed(3*time.Hour+4*time.Minute+5900*time.Millisecond))
	assert.Equal(Te, "0:00:00", elapsed(300*time.Millisecond))
	assert.Equal(Te, "2026-10-14T09:08:07", isoTime(time.Date(2026, 10, 14, 9, 8, 7, 123456789, time.UTC)))
}

func peroxide(Te *testing.T) *zmat.Structure {
	s, err := zmat.New([]zmat.Atom{
		{Symbol: "O"},
		{Symbol: "O", BondRef: 0, Bond: 1.45},
		{Symbol: "H", BondRef: 0, Bond: 0.97, AngleRef: 1, Angle: 100},
		{Symbol: "H", BondRef: 1, Bond: 0.97, AngleRef: 0, Angle: 100, DihedralRef: 2, Dihedral: 115},
	})
	require.NoError(Te, err)
	return s
}

func points(Te *testing.T, energies ...float64) []*zopt.Point {
	s := peroxide(Te)
	c, err := s.Cartesian()
	require.NoError(Te, err)
	ret := make([]*zopt.Point, len(energies))
	for i, e := range energies {
		g := v3.Zeros(s.Len())
		g.Set(3, 1, 0.001*float64(i+1))
		ret[i] = &zopt.Point{Structure: s, Cartesian: c, Energy: e, CartGrad: g, IntGrad: make([]float64, 12)}
	}
	return ret
}

func TestTables(Te *testing.T) {
	s := peroxide(Te)
	t := ZmatTable(s)
	fmt.Println(t)
	assert.Contains(Te, t, "dihedral")
	assert.Contains(Te, t, "115.000000")
	assert.Len(Te, strings.Split(strings.TrimSpace(t), "\n"), 6) //header, separator and 4 atoms
	c, err := s.Cartesian()
	require.NoError(Te, err)
	assert.Contains(Te, CartesianTable(s.Symbols(), c), "1.450000")
}

func TestMolden(Te *testing.T) {
	pts := points(Te, -151.1, -151.2)
	var buf bytes.Buffer
	require.NoError(Te, WriteMolden(&buf, pts))
	out := buf.String()
	assert.True(Te, strings.HasPrefix(out, "[MOLDEN FORMAT]\n[N_GEO]\n2\n[GEOCONV]\nenergy\n-151.100000000000\n"))
	assert.Contains(Te, out, "max-force\n0.001000000000\n0.002000000000\n")
	assert.Equal(Te, 2, strings.Count(out, "\n4\n"))
	assert.Error(Te, WriteMolden(&buf, nil))

	name := filepath.Join(Te.TempDir(), "h2o2.molden.zst")
	require.NoError(Te, WriteTrajectory(name, pts))
	f, err := os.Open(name)
	require.NoError(Te, err)
	defer f.Close()
	dec, err := zstd.NewReader(f)
	require.NoError(Te, err)
	defer dec.Close()
	b, err := io.ReadAll(dec)
	require.NoError(Te, err)
	assert.Equal(Te, out, string(b))
}

func TestPlot(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "energies.png")
	require.NoError(Te, PlotEnergies(name, "peroxide", points(Te, -151.1, -151.2, -151.21)))
	st, err := os.Stat(name)
	require.NoError(Te, err)
	assert.Greater(Te, st.Size(), int64(0))
}

func TestSession(Te *testing.T) {
	dir := Te.TempDir()
	paths := DefaultPaths(filepath.Join(dir, "h2o2"))
	paths.Plot = filepath.Join(dir, "h2o2.svg")
	start := time.Date(2026, 10, 14, 9, 0, 0, 0, time.Local)
	setup := zopt.Setup{Title: "peroxide", Backend: "xtb", RunID: "test-run", Start: start}
	setup.Calc.Method = "gfn2"
	setup.Calc.Multi = 1
	for round := 0; round < 2; round++ {
		S := NewSession(paths, nil)
		require.NoError(Te, S.Begin(setup, peroxide(Te)))
		pts := points(Te, -10, -10.5)
		for i, p := range pts {
			d := 0.0
			if i > 0 {
				d = p.Energy - pts[i-1].Energy
			}
			require.NoError(Te, S.Iteration(i+1, p, d))
		}
		res := &zopt.Result{Setup: setup, Points: pts, Converged: true, End: start.Add(65*time.Second + 300*time.Millisecond)}
		require.NoError(Te, S.Finish(res))
	}
	md := read(Te, paths.Report)
	fmt.Println(md)
	assert.Contains(Te, md, "# This is zopt "+zopt.Version)
	assert.Contains(Te, md, "| Backend")
	assert.Contains(Te, md, "gfn2")
	assert.Contains(Te, md, "Starting 2026-10-14T09:00:00\n")
	assert.Contains(Te, md, "|   2|   -10.5000000000 |    -0.5000000000 |")
	assert.Contains(Te, md, "## Optimised Structures")
	assert.Contains(Te, md, "Structures were written to "+paths.Trajectory)
	assert.Contains(Te, md, "and needed: 0:01:05.")
	for _, p := range []string{paths.Report + "_1", paths.Trajectory + "_1", paths.Plot + "_1", paths.Trajectory, paths.Plot} {
		_, err := os.Stat(p)
		assert.NoError(Te, err, p)
	}
}

func TestSessionError(Te *testing.T) {
	dir := Te.TempDir()
	paths := Paths{Report: filepath.Join(dir, "fail.md")}
	S := NewSession(paths, nil)
	setup := zopt.Setup{Start: time.Now()}
	require.NoError(Te, S.Begin(setup, peroxide(Te)))
	res := &zopt.Result{Setup: setup, End: time.Now(), Err: zopt.NewError(zopt.ErrEvaluationFailed, "xtb crashed", nil)}
	require.NoError(Te, S.Finish(res))
	md := read(Te, paths.Report)
	assert.Contains(Te, md, "**ERROR**")
	assert.Contains(Te, md, "xtb crashed")
	assert.NotContains(Te, md, "Optimised Structures")
}

func TestSessionBadStart(Te *testing.T) {
	s, err := zmat.New([]zmat.Atom{
		{Symbol: "C"},
		{Symbol: "C", BondRef: 0, Bond: 1.2},
		{Symbol: "H", BondRef: 1, Bond: 1.0, AngleRef: 0, Angle: 180},
		{Symbol: "H", BondRef: 2, Bond: 1.0, AngleRef: 1, Angle: 90, DihedralRef: 0, Dihedral: 0},
	})
	require.NoError(Te, err)
	paths := Paths{Report: filepath.Join(Te.TempDir(), "linear.md")}
	S := NewSession(paths, nil)
	assert.Error(Te, S.Begin(zopt.Setup{Start: time.Now()}, s))
	assert.Nil(Te, S.f)
	//nothing is written once the header failed
	require.NoError(Te, S.Iteration(1, &zopt.Point{Energy: -1, CartGrad: v3.Zeros(4)}, 0))
	assert.Empty(Te, read(Te, paths.Report))
}

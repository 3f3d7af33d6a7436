/*
 * session.go, part of zopt.
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
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/rmera/zopt"
	"github.com/rmera/zopt/zmat"
)

// Session writes the report of one optimization. It implements zopt.Reporter:
// the header is written when the optimization begins, one row per iteration,
// and the footer, trajectory and plot when it finishes. The report file is
// synced after every row, so a crash leaves the finished iterations on disk.
type Session struct {
	paths Paths
	f     *os.File
	log   *zap.Logger
}

// NewSession returns a Session that writes to the given paths. The paths are
// rotated when the optimization begins. A nil logger disables logging.
func NewSession(paths Paths, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{paths: paths, log: log}
}

// Paths returns the outputs of the session.
func (S *Session) Paths() Paths {
	return S.paths
}

func (S *Session) write(s string) error {
	if S.f == nil {
		return nil
	}
	if _, err := S.f.WriteString(s); err != nil {
		return zopt.NewError(nil, "writing report", err)
	}
	return nil
}

// Begin rotates the outputs, creates the report and writes its header.
func (S *Session) Begin(setup zopt.Setup, start *zmat.Structure) error {
	if err := S.paths.Rotate(); err != nil {
		return err
	}
	if S.paths.Report == "" {
		return nil
	}
	f, err := os.Create(S.paths.Report)
	if err != nil {
		return zopt.NewError(nil, "creating report", err)
	}
	S.f = f
	h, err := Header(setup, start)
	if err != nil {
		S.f.Close()
		S.f = nil
		return err
	}
	S.log.Debug("report started", zap.String("path", S.paths.Report))
	return S.write(h)
}

// Iteration appends the row of the nth iteration to the report.
func (S *Session) Iteration(n int, p *zopt.Point, delta float64) error {
	if err := S.write(TableRow(n, p.Energy, delta, p.GradMax())); err != nil {
		return err
	}
	if S.f != nil {
		return S.f.Sync()
	}
	return nil
}

// Finish writes the trajectory, the plot and the footer, and closes the report.
// Failures writing the trajectory or the plot are logged and noted in the
// report, but they don't stop the footer from being written.
func (S *Session) Finish(res *zopt.Result) error {
	var notes []string
	if S.paths.Trajectory != "" && len(res.Points) > 0 {
		if err := WriteTrajectory(S.paths.Trajectory, res.Points); err != nil {
			S.log.Warn("could not write trajectory", zap.Error(err))
			notes = append(notes, "The trajectory could not be written: "+err.Error())
		}
	}
	if S.paths.Plot != "" && len(res.Points) > 0 {
		if err := PlotEnergies(S.paths.Plot, res.Setup.Title, res.Points); err != nil {
			S.log.Warn("could not plot energies", zap.Error(err))
			notes = append(notes, "The energy plot could not be written: "+err.Error())
		}
	}
	if S.f == nil {
		return nil
	}
	footer, err := Footer(res, S.paths, notes)
	if err == nil {
		err = S.write(footer)
	}
	cerr := S.f.Close()
	S.f = nil
	if err != nil {
		return err
	}
	if cerr != nil {
		return zopt.NewError(nil, "closing report", cerr)
	}
	return nil
}

// Header returns the header of the report, up to the iteration table header.
func Header(setup zopt.Setup, start *zmat.Structure) (string, error) {
	c, err := start.Cartesian()
	if err != nil {
		return "", zopt.NewError(nil, "starting structure", err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# This is zopt %s optimising a molecule in internal coordinates.\n\n", zopt.Version)
	if setup.Title != "" {
		fmt.Fprintf(&b, "%s\n\n", setup.Title)
	}
	fmt.Fprintf(&b, "Run %s\n\n", setup.RunID)
	b.WriteString("## Starting Structures\n### Starting structure as Zmatrix\n\n")
	b.WriteString(ZmatTable(start) + "\n\n")
	b.WriteString("### Starting structure in cartesian coordinates\n\n")
	b.WriteString(CartesianTable(start.Symbols(), c) + "\n\n")
	b.WriteString("## Setup for the electronic calculations\n")
	b.WriteString(setupTable(setup) + "\n\n")
	fmt.Fprintf(&b, "## Iterations\nStarting %s\n\n", isoTime(setup.Start))
	b.WriteString(TableHeader())
	return b.String(), nil
}

func setupTable(setup zopt.Setup) string {
	backend := setup.Backend
	if backend == "" {
		backend = "unknown"
	}
	Q := setup.Calc
	rows := [][]string{
		{"Hamiltonian", Q.Method},
		{"Basis", Q.Basis},
		{"Charge", strconv.Itoa(Q.Charge)},
		{"Multiplicity", strconv.Itoa(Q.Multi)},
	}
	return markdown([]string{"Backend", backend}, rows)
}

// Footer returns the closing part of the report for the result res.
func Footer(res *zopt.Result, paths Paths, notes []string) (string, error) {
	var b strings.Builder
	last := res.Last()
	if last != nil {
		c := last.Cartesian
		title := "Optimised"
		if !res.Converged {
			title = "Last"
		}
		fmt.Fprintf(&b, "\n## %s Structures\n### %s structure as Zmatrix\n\n", title, title)
		b.WriteString(ZmatTable(last.Structure) + "\n\n\n")
		fmt.Fprintf(&b, "### %s structure in cartesian coordinates\n\n", title)
		b.WriteString(CartesianTable(last.Structure.Symbols(), c) + "\n")
	}
	b.WriteString("\n## Closing\n\n")
	if paths.Trajectory != "" && last != nil {
		fmt.Fprintf(&b, "Structures were written to %s.\n\n", paths.Trajectory)
	}
	for _, n := range notes {
		b.WriteString(n + "\n\n")
	}
	took := elapsed(res.End.Sub(res.Setup.Start))
	if res.Err != nil {
		fmt.Fprintf(&b, "**ERROR** The calculation stopped after %d evaluations: %s\n", len(res.Points), res.Err.Error())
		fmt.Fprintf(&b, "It stopped at: %s\nand needed: %s.\n", isoTime(res.End), took)
		return b.String(), nil
	}
	fmt.Fprintf(&b, "The calculation finished successfully at: %s\nand needed: %s.\n", isoTime(res.End), took)
	return b.String(), nil
}

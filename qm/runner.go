/*
 * runner.go, part of zopt.
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

package qm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	v3 "github.com/rmera/zopt/v3"
)

// Runner is an Evaluator that runs a Handle once per evaluation. The inputs
// and outputs of every calculation are kept in one directory, numbered in
// the order in which they were run.
type Runner struct {
	handle Handle
	dir    string
	stem   string
	calls  int
	log    *zap.Logger
}

// NewRunner returns a Runner for the Handle h. input is the path of the input
// file without numbering, for instance "water_el_calcs/water.inp": the
// directory keeps the calculations and the base name, minus extension, names
// them. A nil logger disables logging.
func NewRunner(h Handle, input string, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	dir, base := splitName(input)
	return &Runner{
		handle: h,
		dir:    filepath.Clean(dir),
		stem:   strings.TrimSuffix(base, filepath.Ext(base)),
		log:    log,
	}
}

// Calls returns the number of evaluations attempted so far.
func (R *Runner) Calls() int {
	return R.calls
}

// Dir returns the directory where the calculations are kept.
func (R *Runner) Dir() string {
	return R.dir
}

// Evaluate prepares, runs and reads a calculation for the given coordinates.
// It doesn't retry failed calculations.
func (R *Runner) Evaluate(ctx context.Context, coords *v3.Matrix, atoms Atomer, Q *Calc) (*Result, error) {
	if err := os.MkdirAll(R.dir, 0o755); err != nil {
		return nil, Error{ErrCantInput, "", R.dir, err.Error(), []string{"os.MkdirAll", "Evaluate"}, true}
	}
	R.calls++
	name := filepath.Join(R.dir, fmt.Sprintf("%s_%03d", R.stem, R.calls))
	R.handle.SetName(name)
	if err := R.handle.BuildInput(coords, atoms, Q); err != nil {
		return nil, errDecorate(err, "Evaluate")
	}
	start := time.Now()
	R.log.Debug("running calculation", zap.String("name", name))
	if err := R.handle.Run(ctx); err != nil {
		return nil, errDecorate(err, "Evaluate")
	}
	energy, err := R.handle.Energy()
	if err != nil {
		return nil, errDecorate(err, "Evaluate")
	}
	grad, err := R.handle.Gradient()
	if err != nil {
		return nil, errDecorate(err, "Evaluate")
	}
	if grad.NVecs() != atoms.Len() {
		return nil, Error{ErrNoGradient, "", name, fmt.Sprintf("gradient for %d atoms, expected %d", grad.NVecs(), atoms.Len()), []string{"Evaluate"}, true}
	}
	eu, lu := R.handle.Units()
	R.log.Debug("calculation finished", zap.String("name", name), zap.Float64("energy", energy), zap.Duration("took", time.Since(start)))
	return &Result{Energy: energy, Gradient: grad, EnergyUnit: eu, LengthUnit: lu}, nil
}

/*
 * options.go, part of zopt.
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

package zopt

import "go.uber.org/zap"

// DefaultMaxIter is the default maximum number of evaluations in an optimization.
const DefaultMaxIter = 200

// Options contains the settings of an optimization that don't
// concern the electronic-structure calculations.
type Options struct {
	energyTol  float64
	gradTol    float64
	maxIter    int
	fixLeading bool
	stepper    Stepper
	log        *zap.Logger
	reporter   Reporter
	recorder   Recorder
}

// DefaultOptions returns the default tolerances (DefaultEnergyTol and
// DefaultGradientTol), DefaultMaxIter, a BFGS Stepper, no logging, no report
// and no metrics.
func DefaultOptions() *Options {
	r := new(Options)
	r.energyTol = DefaultEnergyTol
	r.gradTol = DefaultGradientTol
	r.maxIter = DefaultMaxIter
	r.log = zap.NewNop()
	return r
}

// EnergyTol returns the energy convergence tolerance, in Hartree,
// and sets it to a new value, if given.
func (O *Options) EnergyTol(tol ...float64) float64 {
	if len(tol) > 0 && tol[0] > 0 {
		O.energyTol = tol[0]
	}
	return O.energyTol
}

// GradientTol returns the tolerance for the largest Cartesian gradient component, in
// Hartree/Angstrom, and sets it to a new value, if given.
func (O *Options) GradientTol(tol ...float64) float64 {
	if len(tol) > 0 && tol[0] > 0 {
		O.gradTol = tol[0]
	}
	return O.gradTol
}

// MaxIter returns the maximum number of evaluations,
// and sets it to a new value, if given.
func (O *Options) MaxIter(n ...int) int {
	if len(n) > 0 && n[0] > 0 {
		O.maxIter = n[0]
	}
	return O.maxIter
}

// FixLeadingAtoms returns whether the internal coordinates of the first three atoms
// are kept fixed, and sets it to a new value, if given.
// Even when false, the coordinates that only describe the overall
// orientation of the molecule are never optimized.
func (O *Options) FixLeadingAtoms(fix ...bool) bool {
	if len(fix) > 0 {
		O.fixLeading = fix[0]
	}
	return O.fixLeading
}

// Stepper returns the step generator and sets it to a new value, if given.
// If none is set, each optimization uses a new BFGS Stepper.
func (O *Options) Stepper(s ...Stepper) Stepper {
	if len(s) > 0 && s[0] != nil {
		O.stepper = s[0]
	}
	return O.stepper
}

// Logger returns the logger and sets it to a new value, if given.
func (O *Options) Logger(l ...*zap.Logger) *zap.Logger {
	if len(l) > 0 && l[0] != nil {
		O.log = l[0]
	}
	return O.log
}

// Reporter returns the progress report, if any, and sets it to a new value, if given.
func (O *Options) Reporter(r ...Reporter) Reporter {
	if len(r) > 0 && r[0] != nil {
		O.reporter = r[0]
	}
	return O.reporter
}

// Recorder returns the metrics recorder, if any, and sets it to a new value, if given.
func (O *Options) Recorder(r ...Recorder) Recorder {
	if len(r) > 0 && r[0] != nil {
		O.recorder = r[0]
	}
	return O.recorder
}

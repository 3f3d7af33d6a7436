/*
 * converge.go, part of zopt.
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

import (
	"math"

	v3 "github.com/rmera/zopt/v3"
)

// Default convergence tolerances, in Hartree and Hartree/Angstrom.
const (
	DefaultEnergyTol   = 1e-8
	DefaultGradientTol = 1e-5
)

// Converged returns true if the optimization is converged. It needs at least
// two energies (in Hartree): the last energy change must be smaller than the energy
// tolerance and the largest absolute component of the Cartesian gradient cartGrad
// (Hartree/Angstrom) must be smaller than the gradient tolerance.
// The tolerances can be given, in that order, and otherwise
// DefaultEnergyTol and DefaultGradientTol are used.
func Converged(energies []float64, cartGrad *v3.Matrix, tol ...float64) bool {
	etol, gtol := DefaultEnergyTol, DefaultGradientTol
	if len(tol) > 0 {
		etol = tol[0]
	}
	if len(tol) > 1 {
		gtol = tol[1]
	}
	n := len(energies)
	if n < 2 || cartGrad == nil {
		return false
	}
	return math.Abs(energies[n-1]-energies[n-2]) < etol && cartGrad.MaxAbs() < gtol
}

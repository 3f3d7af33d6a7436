/*
 * transform.go, part of zopt.
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
	"gonum.org/v1/gonum/mat"

	v3 "github.com/rmera/zopt/v3"
)

// InternalGradient contracts the Cartesian gradient cartGrad (one row per atom)
// with the Jacobian J of the Cartesian coordinates with respect to the internal
// ones (see zmat.Structure.Jacobian), and returns the internal gradient:
// three entries (bond, angle, dihedral) per atom. The gauge entries of the result
// are zero (see GaugeFix). It panics if the dimensions don't match.
func InternalGradient(cartGrad *v3.Matrix, J *mat.Dense) []float64 {
	r, c := J.Dims()
	if r != 3*cartGrad.NVecs() || c != r {
		panic(ErrShape)
	}
	gx := mat.NewVecDense(r, cartGrad.Flat())
	gq := mat.NewVecDense(c, nil)
	gq.MulVec(J.T(), gx)
	ret := gq.RawVector().Data
	GaugeFix(ret)
	return ret
}

// GaugeFix zeroes, in place, the entries of the internal vector q that
// correspond to overall translations and rotations: for each of the first
// three atoms i, the components from i on (the bond, angle and dihedral of
// the first atom, the angle and dihedral of the second, and the dihedral of
// the third).
func GaugeFix(q []float64) {
	n := len(q) / 3
	for i := 0; i < min(3, n); i++ {
		for j := i; j < 3; j++ {
			q[3*i+j] = 0
		}
	}
}

// GaugeEntries returns the number of entries GaugeFix zeroes for n atoms.
func GaugeEntries(n int) int {
	ret := 0
	for i := 0; i < min(3, n); i++ {
		ret += 3 - i
	}
	return ret
}

// FreeCoords returns the number of internal coordinates that are optimized
// for a structure with n atoms.
func FreeCoords(n int) int {
	return 3*n - GaugeEntries(n)
}

// freezeLeading zeroes all entries of the first three atoms in q.
func freezeLeading(q []float64) {
	for i := 0; i < min(9, len(q)); i++ {
		q[i] = 0
	}
}

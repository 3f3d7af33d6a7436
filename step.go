/*
 * step.go, part of zopt.
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
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/rmera/zopt/zmat"
)

// Stepper produces the next displacement in internal coordinates from the
// history of internal gradients, ordered previous, current. The displacement
// has the layout of the gradients: bonds in Angstrom, angles and dihedrals in radians.
type Stepper interface {
	Step(history [][]float64) ([]float64, error)
}

// Model force constants used to build the initial Hessian, in Hartree/Angstrom^2
// for bonds and Hartree/radian^2 for angles and dihedrals.
const (
	BondForceConstant     = 0.5
	AngleForceConstant    = 0.2
	DihedralForceConstant = 0.1
)

// DefaultMaxStep is the default largest absolute component allowed in a step.
const DefaultMaxStep = 0.3

// sLimit is the smallest s·y for which the Hessian is updated.
const sLimit = 1e-12

func checkHistory(history [][]float64) error {
	if len(history) != 2 {
		return Error{fmt.Sprintf("got %d gradients", len(history)), ErrInvalidHistoryLength, nil, []string{"checkHistory"}, true}
	}
	if len(history[0]) != len(history[1]) || len(history[1]) == 0 {
		return Error{fmt.Sprintf("gradients of lengths %d and %d", len(history[0]), len(history[1])), ErrInvalidHistoryLength, nil, []string{"checkHistory"}, true}
	}
	return nil
}

// modelInverse returns the inverse of the model force constant for the
// internal coordinate with flat index i.
func modelInverse(i int) float64 {
	switch i % 3 {
	case zmat.BondKind:
		return 1 / BondForceConstant
	case zmat.AngleKind:
		return 1 / AngleForceConstant
	}
	return 1 / DihedralForceConstant
}

// capStep scales step so its largest absolute component is at most max.
func capStep(step []float64, max float64) {
	if max <= 0 {
		return
	}
	m := floats.Norm(step, math.Inf(1))
	if m > max {
		floats.Scale(max/m, step)
	}
}

// BFGS is a quasi-Newton Stepper that keeps an approximation to the inverse
// Hessian. It starts from a diagonal model Hessian, so the first step is a
// scaled steepest-descent step, and updates it with the BFGS formula, using
// Powell's damping when the curvature condition is not fulfilled.
// Its state belongs to one optimization; Optimizer.Run resets it at the start.
type BFGS struct {
	maxStep float64
	hinv    *mat.SymDense
	last    []float64
	skipped int
}

// NewBFGS returns a BFGS Stepper with steps capped at maxStep, if given, or
// DefaultMaxStep otherwise.
func NewBFGS(maxStep ...float64) *BFGS {
	B := &BFGS{maxStep: DefaultMaxStep}
	if len(maxStep) > 0 && maxStep[0] > 0 {
		B.maxStep = maxStep[0]
	}
	return B
}

// Reset discards the Hessian approximation and the last step, so the next
// Step starts from the model Hessian.
func (B *BFGS) Reset() {
	B.hinv = nil
	B.last = nil
	B.skipped = 0
}

// Skipped returns the number of updates skipped because the curvature was too small.
func (B *BFGS) Skipped() int {
	return B.skipped
}

// InverseHessian returns a copy of the current inverse Hessian approximation, or nil
// if no step has been taken.
func (B *BFGS) InverseHessian() *mat.SymDense {
	if B.hinv == nil {
		return nil
	}
	return mat.NewSymDense(B.hinv.SymmetricDim(), append([]float64(nil), B.hinv.RawSymmetric().Data...))
}

// Step returns the next displacement. The first call, or any call with
// gradients of a different length than the previous one, starts from the
// model Hessian and takes no account of the previous gradient.
func (B *BFGS) Step(history [][]float64) ([]float64, error) {
	if err := checkHistory(history); err != nil {
		return nil, errDecorate(err, "BFGS.Step")
	}
	prev, cur := history[0], history[1]
	n := len(cur)
	if B.hinv == nil || B.hinv.SymmetricDim() != n {
		B.hinv = mat.NewSymDense(n, nil)
		for i := 0; i < n; i++ {
			B.hinv.SetSym(i, i, modelInverse(i))
		}
		B.last = nil
	}
	if B.last != nil {
		y := make([]float64, n)
		floats.SubTo(y, cur, prev)
		B.update(B.last, y)
	}
	g := mat.NewVecDense(n, append([]float64(nil), cur...))
	step := mat.NewVecDense(n, nil)
	step.MulVec(B.hinv, g)
	ret := step.RawVector().Data
	floats.Scale(-1, ret)
	capStep(ret, B.maxStep)
	B.last = append([]float64(nil), ret...)
	return ret, nil
}

// update applies the damped BFGS update of the inverse Hessian for the step s
// and the gradient change y.
func (B *BFGS) update(s, y []float64) {
	n := len(s)
	sv := mat.NewVecDense(n, append([]float64(nil), s...))
	yv := mat.NewVecDense(n, y)
	hy := mat.NewVecDense(n, nil)
	hy.MulVec(B.hinv, yv)
	sy := mat.Dot(sv, yv)
	yhy := mat.Dot(yv, hy)
	if yhy > 0 && sy < 0.2*yhy {
		theta := 0.8 * yhy / (yhy - sy)
		sv.ScaleVec(theta, sv)
		sv.AddScaledVec(sv, 1-theta, hy)
		sy = mat.Dot(sv, yv)
	}
	if sy <= sLimit {
		B.skipped++
		return
	}
	B.hinv.SymRankOne(B.hinv, (sy+yhy)/(sy*sy), sv)
	B.hinv.RankTwo(B.hinv, -1/sy, hy, sv)
}

// SteepestDescent is a Stepper that moves along the negative internal gradient,
// scaled by the inverse model force constants.
type SteepestDescent struct {
	MaxStep float64
}

// Step returns the steepest-descent displacement for the current gradient.
func (S SteepestDescent) Step(history [][]float64) ([]float64, error) {
	if err := checkHistory(history); err != nil {
		return nil, errDecorate(err, "SteepestDescent.Step")
	}
	cur := history[1]
	ret := make([]float64, len(cur))
	for i, g := range cur {
		ret[i] = -modelInverse(i) * g
	}
	max := S.MaxStep
	if max == 0 {
		max = DefaultMaxStep
	}
	capStep(ret, max)
	return ret, nil
}

// ApplyStep returns a new structure displaced by d from s. The gauge entries
// of d are ignored, and so are all the entries of the first three atoms if
// fixLeading is true. s is not modified.
func ApplyStep(s *zmat.Structure, d []float64, fixLeading bool) (*zmat.Structure, error) {
	if len(d) != 3*s.Len() {
		return nil, Error{fmt.Sprintf("step of length %d for %d atoms", len(d), s.Len()), ErrShape, nil, []string{"ApplyStep"}, true}
	}
	m := append([]float64(nil), d...)
	GaugeFix(m)
	if fixLeading {
		freezeLeading(m)
	}
	r, err := s.Displace(m)
	if err != nil {
		return nil, Error{"", nil, err, []string{"ApplyStep"}, true}
	}
	return r, nil
}

/*
 * evaluate.go, part of zopt.
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
	"context"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/rmera/zopt/qm"
	"github.com/rmera/zopt/units"
	v3 "github.com/rmera/zopt/v3"
	"github.com/rmera/zopt/zmat"
)

// Point is an evaluated structure.
type Point struct {
	Structure *zmat.Structure
	Cartesian *v3.Matrix //Angstrom
	Energy    float64    //Hartree
	CartGrad  *v3.Matrix //Hartree/Angstrom
	IntGrad   []float64  //Hartree/Angstrom for bonds, Hartree/radian for angles
}

// GradMax returns the largest absolute component of the Cartesian gradient.
func (P *Point) GradMax() float64 {
	return P.CartGrad.MaxAbs()
}

// Finite returns true if the energy and both gradients are finite numbers.
func (P *Point) Finite() bool {
	if math.IsNaN(P.Energy) || math.IsInf(P.Energy, 0) || !P.CartGrad.Finite() {
		return false
	}
	return !floats.HasNaN(P.IntGrad) && !math.IsInf(floats.Norm(P.IntGrad, math.Inf(1)), 0)
}

// Adapter evaluates structures with an external program and converts the
// results to the units and coordinates used in the package.
type Adapter struct {
	eval qm.Evaluator
	calc qm.Calc
}

// NewAdapter returns an Adapter that evaluates with eval, using the settings in calc.
func NewAdapter(eval qm.Evaluator, calc qm.Calc) *Adapter {
	return &Adapter{eval: eval, calc: calc}
}

// Evaluate gets the energy and gradient of s. Results without units are taken
// to be in Hartree and Angstrom. Every failure, including a result that can't be
// converted, returns an error of kind ErrEvaluationFailed. There are no retries.
func (A *Adapter) Evaluate(ctx context.Context, s *zmat.Structure) (*Point, error) {
	coords, err := s.Cartesian()
	if err != nil {
		return nil, Error{"building Cartesian coordinates", ErrEvaluationFailed, err, []string{"Adapter.Evaluate"}, true}
	}
	calc := A.calc
	res, err := A.eval.Evaluate(ctx, coords, s, &calc)
	if err != nil {
		return nil, Error{"", ErrEvaluationFailed, err, []string{"Adapter.Evaluate"}, true}
	}
	if res == nil || res.Gradient == nil || res.Gradient.NVecs() != s.Len() {
		return nil, Error{"malformed result", ErrEvaluationFailed, nil, []string{"Adapter.Evaluate"}, true}
	}
	eu, lu := res.EnergyUnit, res.LengthUnit
	if eu == "" {
		eu = units.Hartree
	}
	if lu == "" {
		lu = units.Angstrom
	}
	energy, err := units.ConvertEnergy(res.Energy, eu, units.Hartree)
	if err != nil {
		return nil, Error{"", ErrEvaluationFailed, err, []string{"Adapter.Evaluate"}, true}
	}
	factor, err := units.GradientFactor(eu, lu, units.Hartree, units.Angstrom)
	if err != nil {
		return nil, Error{"", ErrEvaluationFailed, err, []string{"Adapter.Evaluate"}, true}
	}
	gx := res.Gradient.Clone()
	gx.Scale(factor, gx.Dense)
	J, err := s.Jacobian()
	if err != nil {
		return nil, Error{"building the Jacobian", ErrEvaluationFailed, err, []string{"Adapter.Evaluate"}, true}
	}
	return &Point{
		Structure: s,
		Cartesian: coords,
		Energy:    energy,
		CartGrad:  gx,
		IntGrad:   InternalGradient(gx, J),
	}, nil
}

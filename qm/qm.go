/*
 * qm.go, part of zopt.
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

	"github.com/rmera/zopt/units"
	v3 "github.com/rmera/zopt/v3"
)

// Atomer is the information about atoms that a QM program needs besides
// the coordinates.
type Atomer interface {
	Len() int
	Symbol(i int) string
}

// Handle allows to set QM calculations using different programs.
// Every calculation requests the energy and its gradient.
type Handle interface {

	//Sets the name for the job, used for input
	//and output files. The directory part of the name, if any, is
	//the working directory of the calculation.
	//The extentions will depend on the program.
	SetName(name string)

	//BuildInput builds an input for the QM program based int the data in
	//atoms, coords (in Angstrom) and Q. returns only error.
	BuildInput(coords *v3.Matrix, atoms Atomer, Q *Calc) error

	//Run runs the QM program for a calculation previously set,
	//and waits for it to finish, or for ctx to be done.
	Run(ctx context.Context) error

	//Energy gets the energy of the last calculation, in the
	//program's units.
	Energy() (float64, error)

	//Gradient gets the Cartesian energy gradient of the last calculation,
	//in the program's units.
	Gradient() (*v3.Matrix, error)

	//Units returns the energy and length units used by the program.
	Units() (units.Energy, units.Length)
}

// Calc contains the settings for a calculation.
type Calc struct {
	Method     string
	Basis      string
	Charge     int
	Multi      int
	Dielectric float64
	RI         bool   //resolution of identity, for the programs that support it
	Dispersion string //D2, D3, etc.
	Others     string //other keywords, added verbatim
	Memory     int    //Max memory to be used in MB (the effect depends on the QM program)
}

// SetDefaults sets the multiplicity to singlet if it is not set.
func (Q *Calc) SetDefaults() {
	if Q.Multi == 0 {
		Q.Multi = 1
	}
}

// Result is what an evaluation produces: the energy and the Cartesian
// gradient, in the units given.
type Result struct {
	Energy     float64
	Gradient   *v3.Matrix
	EnergyUnit units.Energy
	LengthUnit units.Length
}

// Evaluator obtains energies and gradients for a set of coordinates.
type Evaluator interface {
	Evaluate(ctx context.Context, coords *v3.Matrix, atoms Atomer, Q *Calc) (*Result, error)
}

// EvaluatorFunc allows the use of a function as an Evaluator.
type EvaluatorFunc func(ctx context.Context, coords *v3.Matrix, atoms Atomer, Q *Calc) (*Result, error)

// Evaluate calls F.
func (F EvaluatorFunc) Evaluate(ctx context.Context, coords *v3.Matrix, atoms Atomer, Q *Calc) (*Result, error) {
	return F(ctx, coords, atoms, Q)
}

// NewHandle returns a Handle for the program with the given name,
// "xtb" or "orca".
func NewHandle(program string) (Handle, error) {
	switch program {
	case "xtb":
		return NewXTBHandle(), nil
	case "orca":
		return NewOrcaHandle(), nil
	}
	return nil, Error{fmt.Sprintf("qm: unknown program %q", program), "", "", "", []string{"NewHandle"}, true}
}

// isInString returns true if test is in container, false otherwise.
func isInString(container []string, test string) bool {
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}

/*
 * units.go, part of zopt.
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

//Package units provides the conversion factors between the energy and length
//units used by the different electronic structure programs and the units
//used internally by zopt (Hartree, Angstrom, radians).
package units

import (
	"fmt"
	"math"
	"strings"
)

//Conversions
const (
	Deg2Rad = math.Pi / 180
	Rad2Deg = 180 / math.Pi
	H2Kcal  = 627.509474 //Hartree 2 Kcal/mol
	Kcal2H  = 1 / H2Kcal
	H2eV    = 27.211386245988
	EV2H    = 1 / H2eV
	H2KJ    = 2625.499639
	KJ2H    = 1 / H2KJ
	KJ2Kcal = 1 / 4.184
	Kcal2KJ = 4.184
	A2Bohr  = 1 / Bohr2A
	Bohr2A  = 0.529177210903
)

// Energy is the name of an energy unit.
type Energy string

// Length is the name of a length unit.
type Length string

const (
	Hartree Energy = "hartree"
	EV      Energy = "eV"
	KcalMol Energy = "kcal/mol"
	KJMol   Energy = "kJ/mol"

	Angstrom Length = "angstrom"
	Bohr     Length = "bohr"
)

// How many Hartree is one of each unit.
var inHartree = map[Energy]float64{
	Hartree: 1,
	EV:      EV2H,
	KcalMol: Kcal2H,
	KJMol:   KJ2H,
}

// How many Angstrom is one of each unit.
var inAngstrom = map[Length]float64{
	Angstrom: 1,
	Bohr:     Bohr2A,
}

func energyFactor(u Energy) (float64, error) {
	for k, v := range inHartree {
		if strings.EqualFold(string(k), string(u)) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("units: unknown energy unit %q", u)
}

func lengthFactor(u Length) (float64, error) {
	for k, v := range inAngstrom {
		if strings.EqualFold(string(k), string(u)) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("units: unknown length unit %q", u)
}

// ConvertEnergy converts the value v from the unit from to the unit to.
func ConvertEnergy(v float64, from, to Energy) (float64, error) {
	f, err := energyFactor(from)
	if err != nil {
		return 0, err
	}
	t, err := energyFactor(to)
	if err != nil {
		return 0, err
	}
	return v * f / t, nil
}

// ConvertLength converts the value v from the unit from to the unit to.
func ConvertLength(v float64, from, to Length) (float64, error) {
	f, err := lengthFactor(from)
	if err != nil {
		return 0, err
	}
	t, err := lengthFactor(to)
	if err != nil {
		return 0, err
	}
	return v * f / t, nil
}

// GradientFactor returns the factor that takes a gradient from fromE/fromL to toE/toL.
func GradientFactor(fromE Energy, fromL Length, toE Energy, toL Length) (float64, error) {
	e, err := ConvertEnergy(1, fromE, toE)
	if err != nil {
		return 0, err
	}
	l, err := ConvertLength(1, fromL, toL)
	if err != nil {
		return 0, err
	}
	return e / l, nil
}

/*
 * zmat.go, part of zopt.
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

/*Package zmat implements molecular structures in internal coordinates (Z-matrices).

Each atom after the first is placed relative to previously placed atoms: a bond
length to one of them, an angle with a second one and, from the fourth atom on,
a dihedral with a third one. Bonds are in Angstrom, angles and dihedrals in degrees.
A Structure is never modified after creation. Operations that change coordinates
return a new Structure.
*/
package zmat

import (
	"fmt"
	"math"
)

// None marks an undefined reference.
const None = -1

// Kinds of internal coordinates, in the order they are stored for each atom.
const (
	BondKind = iota
	AngleKind
	DihedralKind
)

// Atom is one row of a Z-matrix. Refs are 0-based indexes of earlier atoms,
// or None if the atom doesn't have that coordinate.
type Atom struct {
	Symbol      string
	BondRef     int
	Bond        float64
	AngleRef    int
	Angle       float64
	DihedralRef int
	Dihedral    float64
}

// Refs returns the bond, angle and dihedral references of the atom.
func (A Atom) Refs() [3]int {
	return [3]int{A.BondRef, A.AngleRef, A.DihedralRef}
}

// Value returns the value of the internal coordinate of the given kind.
func (A Atom) Value(kind int) float64 {
	switch kind {
	case BondKind:
		return A.Bond
	case AngleKind:
		return A.Angle
	case DihedralKind:
		return A.Dihedral
	}
	panic(fmt.Sprintf("zmat: invalid coordinate kind %d", kind))
}

func (A *Atom) set(kind int, v float64) {
	switch kind {
	case BondKind:
		A.Bond = v
	case AngleKind:
		A.Angle = v
	case DihedralKind:
		A.Dihedral = v
	default:
		panic(fmt.Sprintf("zmat: invalid coordinate kind %d", kind))
	}
}

// Defined returns true if the atom with index i has an internal coordinate of the given kind.
// Atom 0 has none, atom 1 only a bond, atom 2 a bond and an angle.
func Defined(i, kind int) bool {
	return kind < i
}

// Structure is an immutable Z-matrix.
type Structure struct {
	atoms []Atom
}

// New checks the given atoms and returns a Structure with a copy of them.
func New(atoms []Atom) (*Structure, error) {
	if len(atoms) == 0 {
		return nil, Error{"No atoms given", []string{"New"}, true}
	}
	s := &Structure{atoms: make([]Atom, len(atoms))}
	copy(s.atoms, atoms)
	for i := range s.atoms {
		//Undefined coordinates are normalized so they never carry garbage.
		for k := 0; k < 3; k++ {
			if !Defined(i, k) {
				s.atoms[i].setRef(k, None)
				s.atoms[i].set(k, 0)
			}
		}
	}
	if err := s.validate(); err != nil {
		return nil, errDecorate(err, "New")
	}
	return s, nil
}

func (A *Atom) setRef(kind, ref int) {
	switch kind {
	case BondKind:
		A.BondRef = ref
	case AngleKind:
		A.AngleRef = ref
	case DihedralKind:
		A.DihedralRef = ref
	}
}

// validate checks that every reference points to a distinct, earlier atom, which
// also guarantees that the references never form a cycle.
func (S *Structure) validate() error {
	for i, a := range S.atoms {
		refs := a.Refs()
		for k := 0; k < 3 && Defined(i, k); k++ {
			r := refs[k]
			if r < 0 || r >= i {
				return Error{fmt.Sprintf("atom %d (%s): reference %d of kind %d must be an earlier atom", i+1, a.Symbol, r+1, k), []string{"validate"}, true}
			}
			for j := 0; j < k; j++ {
				if refs[j] == r {
					return Error{fmt.Sprintf("atom %d (%s): repeated reference %d", i+1, a.Symbol, r+1), []string{"validate"}, true}
				}
			}
		}
		if i > 0 && !(a.Bond > 0) {
			return Error{fmt.Sprintf("atom %d (%s): bond length %g must be positive", i+1, a.Symbol, a.Bond), []string{"validate"}, true}
		}
		for k := 0; k < 3; k++ {
			if v := a.Value(k); math.IsNaN(v) || math.IsInf(v, 0) {
				return Error{fmt.Sprintf("atom %d (%s): non-finite coordinate", i+1, a.Symbol), []string{"validate"}, true}
			}
		}
	}
	return nil
}

// Len returns the number of atoms in the structure.
func (S *Structure) Len() int {
	return len(S.atoms)
}

// Atom returns a copy of the ith atom. Panics if out of range.
func (S *Structure) Atom(i int) Atom {
	return S.atoms[i]
}

// Symbol returns the element symbol of the ith atom.
func (S *Structure) Symbol(i int) string {
	return S.atoms[i].Symbol
}

// Symbols returns the element symbols of all atoms.
func (S *Structure) Symbols() []string {
	ret := make([]string, len(S.atoms))
	for i, a := range S.atoms {
		ret[i] = a.Symbol
	}
	return ret
}

// Copy returns a deep copy of the structure.
func (S *Structure) Copy() *Structure {
	r := &Structure{atoms: make([]Atom, len(S.atoms))}
	copy(r.atoms, S.atoms)
	return r
}

// Values returns the internal coordinates as a flat slice, three values per atom
// (bond, angle, dihedral) with angles in degrees. Undefined coordinates are zero.
func (S *Structure) Values() []float64 {
	ret := make([]float64, 0, 3*len(S.atoms))
	for _, a := range S.atoms {
		ret = append(ret, a.Bond, a.Angle, a.Dihedral)
	}
	return ret
}

// Displace returns a new Structure with the flat displacement d added to the
// internal coordinates of S. d follows the layout of Values, but the angle and
// dihedral components are in radians. Components for undefined coordinates are
// ignored, and coordinates with a zero displacement are left exactly as they were.
func (S *Structure) Displace(d []float64) (*Structure, error) {
	if len(d) != 3*len(S.atoms) {
		return nil, Error{fmt.Sprintf("displacement of length %d for %d atoms", len(d), len(S.atoms)), []string{"Displace"}, true}
	}
	r := S.Copy()
	for i := range r.atoms {
		a := &r.atoms[i]
		for k := 0; k < 3; k++ {
			dv := d[3*i+k]
			if dv == 0 || !Defined(i, k) {
				continue
			}
			if k == BondKind {
				a.Bond += dv
				continue
			}
			a.set(k, a.Value(k)+dv*180/math.Pi)
		}
		if d[3*i+AngleKind] != 0 && Defined(i, AngleKind) {
			foldAngle(a, Defined(i, DihedralKind))
		}
		if d[3*i+DihedralKind] != 0 && Defined(i, DihedralKind) {
			a.Dihedral = wrapDihedral(a.Dihedral)
		}
	}
	if err := r.validate(); err != nil {
		return nil, errDecorate(err, "Displace")
	}
	return r, nil
}

// foldAngle brings an angle back to [0,180]. Going through 0 or 180 is the
// same as keeping the angle in range and turning the dihedral by half a turn.
func foldAngle(a *Atom, hasDihedral bool) {
	for a.Angle < 0 || a.Angle > 180 {
		if a.Angle < 0 {
			a.Angle = -a.Angle
		} else {
			a.Angle = 360 - a.Angle
		}
		if hasDihedral {
			a.Dihedral = wrapDihedral(a.Dihedral + 180)
		}
	}
}

// wrapDihedral returns the equivalent angle in (-180,180].
func wrapDihedral(d float64) float64 {
	d = math.Mod(d, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}

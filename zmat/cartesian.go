/*
 * cartesian.go, part of zopt.
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

package zmat

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	v3 "github.com/rmera/zopt/v3"
)

// Finite-difference steps for the Jacobian, in Angstrom and radians.
const (
	bondDelta  = 1e-5
	angleDelta = 1e-5
)

// parallelTol is the smallest norm of a cross product for which two
// directions are still considered non-parallel.
const parallelTol = 1e-8

// Cartesian returns the Cartesian coordinates, in Angstrom, of the structure.
// The first atom is placed at the origin, the second on the positive x axis and
// the third on the xy plane. An error is returned if the reference atoms of some
// atom with a dihedral are collinear.
func (S *Structure) Cartesian() (*v3.Matrix, error) {
	c, err := cartesian(S.atoms)
	if err != nil {
		return nil, errDecorate(err, "Cartesian")
	}
	return c, nil
}

func cartesian(atoms []Atom) (*v3.Matrix, error) {
	ret := v3.Zeros(len(atoms))
	for i, a := range atoms {
		var p [3]float64
		var err error
		switch i {
		case 0:
		case 1:
			p = [3]float64{a.Bond, 0, 0}
		case 2:
			p, err = placeThird(ret.Vec(a.BondRef), ret.Vec(a.AngleRef), a.Bond, a.Angle*math.Pi/180)
		default:
			p, err = place(ret.Vec(a.BondRef), ret.Vec(a.AngleRef), ret.Vec(a.DihedralRef), a.Bond, a.Angle*math.Pi/180, a.Dihedral*math.Pi/180)
		}
		if err != nil {
			return nil, Error{fmt.Sprintf("atom %d (%s): %s", i+1, a.Symbol, err.Error()), []string{"cartesian"}, true}
		}
		ret.SetVec(i, p)
	}
	return ret, nil
}

// place returns the position of an atom at distance bond from p3, making the
// angle ang with p2 and the dihedral dih with p1 (angles in radians).
func place(p3, p2, p1 [3]float64, bond, ang, dih float64) ([3]float64, error) {
	bc := v3.Unit(v3.Sub(p3, p2))
	nn := v3.Cross(v3.Sub(p2, p1), bc)
	if v3.Norm(nn) < parallelTol || v3.Norm(v3.Sub(p3, p2)) < parallelTol {
		return [3]float64{}, fmt.Errorf("collinear reference atoms")
	}
	n := v3.Unit(nn)
	m := v3.Cross(n, bc)
	dx := -bond * math.Cos(ang)
	dy := bond * math.Sin(ang) * math.Cos(dih)
	dz := bond * math.Sin(ang) * math.Sin(dih)
	ret := v3.Add(p3, v3.Scale(dx, bc))
	ret = v3.Add(ret, v3.Scale(dy, m))
	ret = v3.Add(ret, v3.Scale(dz, n))
	return ret, nil
}

// placeThird places the third atom using a virtual dihedral reference one
// Angstrom away from p2 along y (or z, if y is parallel to the p2-p3 axis), with
// a dihedral of zero. For a structure built from the origin this leaves the atom
// in the xy plane.
func placeThird(p3, p2 [3]float64, bond, ang float64) ([3]float64, error) {
	axis := v3.Sub(p3, p2)
	virtual := v3.Add(p2, [3]float64{0, 1, 0})
	if v3.Norm(v3.Cross(v3.Unit(axis), [3]float64{0, 1, 0})) < parallelTol {
		virtual = v3.Add(p2, [3]float64{0, 0, 1})
	}
	return place(p3, p2, virtual, bond, ang, 0)
}

// Jacobian returns the derivatives of the Cartesian coordinates with respect to the
// internal coordinates, obtained by central differences. The element (3*j+c, 3*i+k)
// is the derivative of the component c of atom j with respect to the coordinate
// of kind k of atom i, in Angstrom per Angstrom or Angstrom per radian.
// Columns of undefined coordinates are zero.
func (S *Structure) Jacobian() (*mat.Dense, error) {
	n := len(S.atoms)
	J := mat.NewDense(3*n, 3*n, nil)
	work := make([]Atom, n)
	for i := range S.atoms {
		for k := 0; k < 3 && Defined(i, k); k++ {
			delta := bondDelta
			scale := 1.0
			if k != BondKind {
				delta = angleDelta
				scale = 180 / math.Pi
			}
			copy(work, S.atoms)
			work[i].set(k, S.atoms[i].Value(k)+delta*scale)
			plus, err := cartesian(work)
			if err != nil {
				return nil, errDecorate(err, "Jacobian")
			}
			work[i].set(k, S.atoms[i].Value(k)-delta*scale)
			minus, err := cartesian(work)
			if err != nil {
				return nil, errDecorate(err, "Jacobian")
			}
			pf, mf := plus.Flat(), minus.Flat()
			for r := range pf {
				J.Set(r, 3*i+k, (pf[r]-mf[r])/(2*delta))
			}
		}
	}
	return J, nil
}

// FromCartesian builds a Structure from Cartesian coordinates and the reference
// atoms (bond, angle, dihedral) for each atom. refs may be nil, in which case
// ChainRefs is used.
func FromCartesian(symbols []string, coords *v3.Matrix, refs [][3]int) (*Structure, error) {
	n := coords.NVecs()
	if len(symbols) != n {
		return nil, Error{fmt.Sprintf("%d symbols for %d atoms", len(symbols), n), []string{"FromCartesian"}, true}
	}
	if refs == nil {
		refs = ChainRefs(n)
	}
	if len(refs) != n {
		return nil, Error{fmt.Sprintf("%d reference sets for %d atoms", len(refs), n), []string{"FromCartesian"}, true}
	}
	atoms := make([]Atom, n)
	for i := range atoms {
		r := refs[i]
		atoms[i] = Atom{Symbol: symbols[i], BondRef: None, AngleRef: None, DihedralRef: None}
		for k := 0; k < 3 && Defined(i, k); k++ {
			if r[k] < 0 || r[k] >= i {
				return nil, Error{fmt.Sprintf("atom %d (%s): invalid reference %d", i+1, symbols[i], r[k]+1), []string{"FromCartesian"}, true}
			}
		}
		p := coords.Vec(i)
		if i >= 1 {
			atoms[i].BondRef = r[0]
			atoms[i].Bond = v3.Distance(p, coords.Vec(r[0]))
		}
		if i >= 2 {
			atoms[i].AngleRef = r[1]
			atoms[i].Angle = Angle(p, coords.Vec(r[0]), coords.Vec(r[1])) * 180 / math.Pi
		}
		if i >= 3 {
			atoms[i].DihedralRef = r[2]
			atoms[i].Dihedral = Dihedral(coords.Vec(r[2]), coords.Vec(r[1]), coords.Vec(r[0]), p) * 180 / math.Pi
		}
	}
	s, err := New(atoms)
	if err != nil {
		return nil, errDecorate(err, "FromCartesian")
	}
	return s, nil
}

// ChainRefs returns references where each atom is bonded to the previous one,
// makes an angle with the one before and a dihedral with the one before that.
func ChainRefs(n int) [][3]int {
	ret := make([][3]int, n)
	for i := range ret {
		ret[i] = [3]int{i - 1, i - 2, i - 3}
		for k := range ret[i] {
			if ret[i][k] < 0 {
				ret[i][k] = None
			}
		}
	}
	return ret
}

// Angle returns the angle a-b-c, with b as the vertex, in radians.
func Angle(a, b, c [3]float64) float64 {
	u := v3.Sub(a, b)
	w := v3.Sub(c, b)
	cos := v3.Dot(u, w) / (v3.Norm(u) * v3.Norm(w))
	return math.Acos(math.Max(-1, math.Min(1, cos)))
}

// Dihedral returns the dihedral angle a-b-c-d, in radians, in (-pi, pi].
func Dihedral(a, b, c, d [3]float64) float64 {
	b1 := v3.Sub(b, a)
	b2 := v3.Sub(c, b)
	b3 := v3.Sub(d, c)
	n1 := v3.Cross(b1, b2)
	n2 := v3.Cross(b2, b3)
	return math.Atan2(v3.Norm(b2)*v3.Dot(b1, n2), v3.Dot(n1, n2))
}

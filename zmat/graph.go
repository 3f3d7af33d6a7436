/*
 * graph.go, part of zopt.
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
	"sort"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	v3 "github.com/rmera/zopt/v3"
)

// Covalent radii, in Angstrom, from Cordero et al., 2008 (DOI:10.1039/B801115J).
// H is a bit longer than the tabulated 0.31.
var covRad = map[string]float64{
	"H":  0.4,
	"B":  0.84,
	"C":  0.76,
	"N":  0.71,
	"O":  0.66,
	"F":  0.57,
	"Na": 1.66,
	"Mg": 1.41,
	"Si": 1.11,
	"P":  1.07,
	"S":  1.05,
	"Cl": 1.02,
	"K":  2.03,
	"Ca": 1.76,
	"Cr": 1.39,
	"Mn": 1.61,
	"Fe": 1.52,
	"Co": 1.5,
	"Cu": 1.32,
	"Zn": 1.22,
	"Se": 1.2,
	"Br": 1.2,
	"I":  1.39,
}

const (
	bondTol  = 0.45 //added to the sum of covalent radii
	tooClose = 0.63 //shorter distances are not bonds
	linear   = 5 * math.Pi / 180
)

// BondGraph returns an undirected graph with a node per atom, with the atom index
// as ID, and an edge for each pair of atoms closer than the sum of their covalent
// radii plus a tolerance.
func BondGraph(symbols []string, coords *v3.Matrix) (*simple.UndirectedGraph, error) {
	n := coords.NVecs()
	if len(symbols) != n {
		return nil, Error{fmt.Sprintf("%d symbols for %d atoms", len(symbols), n), []string{"BondGraph"}, true}
	}
	g := simple.NewUndirectedGraph()
	rad := make([]float64, n)
	for i, s := range symbols {
		r, ok := covRad[s]
		if !ok {
			return nil, Error{fmt.Sprintf("no covalent radius for %s %d", s, i+1), []string{"BondGraph"}, true}
		}
		rad[i] = r
		g.AddNode(simple.Node(i))
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := v3.Distance(coords.Vec(i), coords.Vec(j))
			if d > tooClose && d < rad[i]+rad[j]+bondTol {
				g.SetEdge(simple.Edge{F: simple.Node(i), T: simple.Node(j)})
			}
		}
	}
	return g, nil
}

// BondedRefs returns Z-matrix references for the atoms, in the given order, that
// follow the bonds of the molecule where possible. The bond reference of each
// atom is the earlier atom closest to it through bonds (ties broken by distance),
// the angle reference the one closest to the bond reference, and the dihedral
// reference the one closest to the angle reference. Nearly linear reference
// triads are avoided when there is an alternative.
func BondedRefs(symbols []string, coords *v3.Matrix) ([][3]int, error) {
	g, err := BondGraph(symbols, coords)
	if err != nil {
		return nil, errDecorate(err, "BondedRefs")
	}
	hops := path.DijkstraAllPaths(g)
	n := coords.NVecs()
	refs := ChainRefs(n)
	//pick returns the earlier atom nearest to from, preferring those for which ok is true.
	pick := func(i, from int, exclude []int, ok func(j int) bool) int {
		cands := make([]int, 0, i)
	cand:
		for j := 0; j < i; j++ {
			for _, e := range exclude {
				if j == e {
					continue cand
				}
			}
			cands = append(cands, j)
		}
		sort.SliceStable(cands, func(a, b int) bool {
			ha, hb := hops.Weight(int64(from), int64(cands[a])), hops.Weight(int64(from), int64(cands[b]))
			if ha != hb {
				return ha < hb
			}
			p := coords.Vec(from)
			return v3.Distance(p, coords.Vec(cands[a])) < v3.Distance(p, coords.Vec(cands[b]))
		})
		for _, j := range cands {
			if ok == nil || ok(j) {
				return j
			}
		}
		return cands[0]
	}
	notLinear := func(a, b, c int) bool {
		t := Angle(coords.Vec(a), coords.Vec(b), coords.Vec(c))
		return t > linear && t < math.Pi-linear
	}
	for i := 1; i < n; i++ {
		b := pick(i, i, nil, nil)
		refs[i][0] = b
		if i < 2 {
			continue
		}
		a := pick(i, b, []int{b}, func(j int) bool { return notLinear(i, b, j) })
		refs[i][1] = a
		if i < 3 {
			continue
		}
		refs[i][2] = pick(i, a, []int{b, a}, func(j int) bool { return notLinear(b, a, j) })
	}
	return refs, nil
}

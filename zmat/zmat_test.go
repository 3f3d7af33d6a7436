/*
 * zmat_test.go, part of zopt.
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
	"bytes"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v3 "github.com/rmera/zopt/v3"
)

func TestReadWater(Te *testing.T) {
	s, err := ReadFile("testdata/water.zmat")
	require.NoError(Te, err)
	if s.Len() != 3 {
		Te.Fatalf("expected 3 atoms, got %d", s.Len())
	}
	c, err := s.Cartesian()
	require.NoError(Te, err)
	fmt.Println(c)
	assert.InDelta(Te, 0.96, v3.Distance(c.Vec(0), c.Vec(1)), 1e-10)
	assert.InDelta(Te, 0.96, v3.Distance(c.Vec(0), c.Vec(2)), 1e-10)
	assert.InDelta(Te, 104.5, Angle(c.Vec(2), c.Vec(0), c.Vec(1))*180/math.Pi, 1e-8)
	for i := 0; i < 3; i++ {
		assert.InDelta(Te, 0, c.Vec(i)[2], 1e-12, "atom %d out of the xy plane", i)
	}
}

func TestPeroxideRoundTrip(Te *testing.T) {
	s, err := ReadFile("testdata/h2o2.zmat")
	require.NoError(Te, err)
	c, err := s.Cartesian()
	require.NoError(Te, err)
	assert.InDelta(Te, 115.0, Dihedral(c.Vec(2), c.Vec(0), c.Vec(1), c.Vec(3))*180/math.Pi, 1e-8)
	refs := make([][3]int, s.Len())
	for i := range refs {
		refs[i] = s.Atom(i).Refs()
	}
	back, err := FromCartesian(s.Symbols(), c, refs)
	require.NoError(Te, err)
	assert.InDeltaSlice(Te, s.Values(), back.Values(), 1e-8)
}

func TestWriteRead(Te *testing.T) {
	s, err := ReadFile("testdata/h2o2.zmat")
	require.NoError(Te, err)
	var buf bytes.Buffer
	require.NoError(Te, s.Write(&buf))
	fmt.Print(buf.String())
	back, err := Read(&buf)
	require.NoError(Te, err)
	assert.InDeltaSlice(Te, s.Values(), back.Values(), 1e-8)
	assert.Equal(Te, s.Symbols(), back.Symbols())
	var xyz bytes.Buffer
	require.NoError(Te, s.WriteXYZ(&xyz, "peroxide"))
	assert.Contains(Te, xyz.String(), "4\nperoxide\n")
}

func TestInvalid(Te *testing.T) {
	cases := map[string][]Atom{
		"empty":         {},
		"forward ref":   {{Symbol: "H"}, {Symbol: "H", BondRef: 1, Bond: 1}},
		"repeated ref":  {{Symbol: "O"}, {Symbol: "H", BondRef: 0, Bond: 1}, {Symbol: "H", BondRef: 0, Bond: 1, AngleRef: 0, Angle: 100}},
		"negative bond": {{Symbol: "H"}, {Symbol: "H", BondRef: 0, Bond: -0.7}},
	}
	for name, atoms := range cases {
		if _, err := New(atoms); err == nil {
			Te.Errorf("%s: expected an error", name)
		}
	}
}

func TestDisplace(Te *testing.T) {
	s, err := ReadFile("testdata/h2o2.zmat")
	require.NoError(Te, err)
	z, err := s.Displace(make([]float64, 3*s.Len()))
	require.NoError(Te, err)
	if !assert.Equal(Te, s.Values(), z.Values()) {
		Te.Error("zero displacement changed the structure")
	}
	d := make([]float64, 3*s.Len())
	d[3*3+BondKind] = 0.01
	d[3*3+AngleKind] = math.Pi / 180
	d[3*3+DihedralKind] = 70 * math.Pi / 180
	d[0] = 5 //undefined, must be ignored
	m, err := s.Displace(d)
	require.NoError(Te, err)
	a := m.Atom(3)
	assert.InDelta(Te, 0.98, a.Bond, 1e-12)
	assert.InDelta(Te, 101.0, a.Angle, 1e-10)
	assert.InDelta(Te, -175.0, a.Dihedral, 1e-10)
	assert.Equal(Te, s.Atom(0), m.Atom(0))
	//the original is untouched
	assert.InDelta(Te, 0.97, s.Atom(3).Bond, 1e-12)
	d = make([]float64, 3*s.Len())
	d[3*1+BondKind] = -2
	if _, err := s.Displace(d); err == nil {
		Te.Error("expected an error for a negative bond")
	}
}

func TestFoldAngle(Te *testing.T) {
	a := Atom{Angle: 190, Dihedral: 10}
	foldAngle(&a, true)
	assert.InDelta(Te, 170, a.Angle, 1e-12)
	assert.InDelta(Te, -170, a.Dihedral, 1e-12)
	assert.InDelta(Te, 180, wrapDihedral(-180), 1e-12)
	assert.InDelta(Te, -90, wrapDihedral(270), 1e-12)
}

func TestJacobianDiatomic(Te *testing.T) {
	s, err := New([]Atom{{Symbol: "H"}, {Symbol: "H", BondRef: 0, Bond: 0.74}})
	require.NoError(Te, err)
	J, err := s.Jacobian()
	require.NoError(Te, err)
	r, c := J.Dims()
	assert.Equal(Te, 6, r)
	assert.Equal(Te, 6, c)
	//only x of the second atom moves with the bond.
	for i := 0; i < 6; i++ {
		want := 0.0
		if i == 3 {
			want = 1
		}
		assert.InDelta(Te, want, J.At(i, 3*1+BondKind), 1e-8)
	}
}

func TestJacobianNumeric(Te *testing.T) {
	s, err := ReadFile("testdata/h2o2.zmat")
	require.NoError(Te, err)
	J, err := s.Jacobian()
	require.NoError(Te, err)
	c0, err := s.Cartesian()
	require.NoError(Te, err)
	//a small dihedral change should move the Cartesians by about J*d.
	d := make([]float64, 3*s.Len())
	d[3*3+DihedralKind] = 1e-4
	m, err := s.Displace(d)
	require.NoError(Te, err)
	c1, err := m.Cartesian()
	require.NoError(Te, err)
	f0, f1 := c0.Flat(), c1.Flat()
	for r := range f0 {
		assert.InDelta(Te, J.At(r, 3*3+DihedralKind)*1e-4, f1[r]-f0[r], 1e-8)
	}
	//the radius of the rotation is the distance to the O-O axis.
	col := 0.0
	for r := 9; r < 12; r++ {
		col += J.At(r, 3*3+DihedralKind) * J.At(r, 3*3+DihedralKind)
	}
	assert.InDelta(Te, 0.97*math.Sin(100*math.Pi/180), math.Sqrt(col), 1e-6)
}

func TestCollinear(Te *testing.T) {
	s, err := New([]Atom{
		{Symbol: "C"},
		{Symbol: "C", BondRef: 0, Bond: 1.2},
		{Symbol: "H", BondRef: 1, Bond: 1.0, AngleRef: 0, Angle: 180},
		{Symbol: "H", BondRef: 2, Bond: 1.0, AngleRef: 1, Angle: 90, DihedralRef: 0, Dihedral: 0},
	})
	require.NoError(Te, err)
	if _, err := s.Cartesian(); err == nil {
		Te.Error("expected an error for collinear references")
	}
}

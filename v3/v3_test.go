/*
 * v3_test.go, part of zopt.
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

package v3

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMatrix(Te *testing.T) {
	a := []float64{1.0, 2.0, 3, 4, 5, 6, 7, 8, 9}
	A, err := NewMatrix(a)
	if err != nil {
		Te.Error(err)
	}
	if A.NVecs() != 3 {
		Te.Errorf("expected 3 vectors, got %d", A.NVecs())
	}
	View := A.VecView(1)
	View.Set(0, 0, 100)
	if A.At(1, 0) != 100 {
		Te.Error("changes in a VecView should be reflected in the original matrix")
	}
	fmt.Println("View\n", A, "\n", View)
	if _, err := NewMatrix([]float64{1, 2}); err == nil {
		Te.Error("a slice not divisible by 3 should give an error")
	}
}

func TestFlatAndStats(Te *testing.T) {
	A, err := NewMatrix([]float64{1, -7, 3, 4, 5, 6})
	if err != nil {
		Te.Fatal(err)
	}
	assert.Equal(Te, []float64{1, -7, 3, 4, 5, 6}, A.Flat())
	assert.Equal(Te, 7.0, A.MaxAbs())
	assert.InDelta(Te, math.Sqrt((1+49+9+16+25+36)/6.0), A.RMS(), 1e-12)
	assert.True(Te, A.Finite())
	B := A.Clone()
	B.Set(0, 0, math.NaN())
	assert.False(Te, B.Finite())
	assert.True(Te, A.Finite(), "Clone must not share storage")
}

func TestVecOps(Te *testing.T) {
	x := [3]float64{1, 0, 0}
	y := [3]float64{0, 1, 0}
	assert.Equal(Te, [3]float64{0, 0, 1}, Cross(x, y))
	assert.Equal(Te, 0.0, Dot(x, y))
	assert.InDelta(Te, math.Sqrt2, Distance(x, y), 1e-12)
	assert.InDelta(Te, 1.0, Norm(Unit([3]float64{3, 4, 12})), 1e-12)
	assert.Equal(Te, [3]float64{0, 0, 0}, Unit([3]float64{}))
}

/*
 * units_test.go, part of zopt.
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

package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnergy(Te *testing.T) {
	h, err := ConvertEnergy(H2eV, EV, Hartree)
	require.NoError(Te, err)
	assert.InDelta(Te, 1.0, h, 1e-12)
	k, err := ConvertEnergy(1, Hartree, KcalMol)
	require.NoError(Te, err)
	assert.InDelta(Te, H2Kcal, k, 1e-9)
	kj, err := ConvertEnergy(1, KcalMol, KJMol)
	require.NoError(Te, err)
	assert.InDelta(Te, Kcal2KJ, kj, 1e-3)
	if _, err := ConvertEnergy(1, "rydberg", Hartree); err == nil {
		Te.Error("unknown units should give an error")
	}
	//case doesn't matter
	e, err := ConvertEnergy(1, "HARTREE", "ev")
	require.NoError(Te, err)
	assert.InDelta(Te, H2eV, e, 1e-9)
}

func TestGradient(Te *testing.T) {
	//Hartree/Bohr to Hartree/Angstrom means dividing by the Bohr radius in Angstrom.
	f, err := GradientFactor(Hartree, Bohr, Hartree, Angstrom)
	require.NoError(Te, err)
	assert.InDelta(Te, 1/Bohr2A, f, 1e-9)
	f, err = GradientFactor(EV, Angstrom, Hartree, Angstrom)
	require.NoError(Te, err)
	assert.InDelta(Te, EV2H, f, 1e-12)
	_, err = GradientFactor(Hartree, "furlong", Hartree, Angstrom)
	assert.Error(Te, err)
}

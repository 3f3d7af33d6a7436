/*
 * config_test.go, part of zopt.
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

package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmera/zopt"
)

func TestDefault(Te *testing.T) {
	c := Default()
	require.NoError(Te, c.Validate())
	assert.Equal(Te, "xtb", c.Backend)
	assert.Equal(Te, zopt.DefaultEnergyTol, c.Optimizer.EnergyTol)
	assert.Equal(Te, zopt.DefaultGradientTol, c.Optimizer.GradientTol)
	_, bfgs := c.Stepper().(*zopt.BFGS)
	assert.True(Te, bfgs)
	p := c.Paths("molecules/water.zmat")
	assert.Equal(Te, "water.md", p.Report)
	assert.Equal(Te, "water.molden", p.Trajectory)
	assert.Equal(Te, filepath.Join("water_el_calcs", "water.inp"), p.Input)
	assert.Empty(Te, p.Plot)
}

func TestLoad(Te *testing.T) {
	c, err := Load("testdata/orca.yaml")
	require.NoError(Te, err)
	assert.Equal(Te, "orca", c.Backend)
	assert.Equal(Te, "hydrogen peroxide, PBE0", c.Title)
	assert.Equal(Te, 4, c.CPUs)
	assert.Equal(Te, 1e-7, c.Optimizer.EnergyTol)
	assert.Equal(Te, zopt.DefaultGradientTol, c.Optimizer.GradientTol) //not in the file
	assert.Equal(Te, 50, c.Optimizer.MaxIter)
	sd, ok := c.Stepper().(zopt.SteepestDescent)
	require.True(Te, ok)
	assert.Equal(Te, 0.2, sd.MaxStep)

	Q := c.Calc()
	assert.Equal(Te, "PBE0", Q.Method)
	assert.Equal(Te, "def2-SVP", Q.Basis)
	assert.Equal(Te, "D3", Q.Dispersion)
	assert.Equal(Te, 1, Q.Multi)
	assert.Equal(Te, "orca", c.Setup().Backend)

	p := c.Paths("ignored.zmat")
	assert.Equal(Te, filepath.Join("runs", "h2o2.md"), p.Report)
	assert.Equal(Te, filepath.Join("runs", "h2o2_el_calcs", "h2o2.inp"), p.Input)
	assert.Equal(Te, filepath.Join("runs", "h2o2.png"), p.Plot)

	o := c.Options(nil)
	assert.Equal(Te, 1e-7, o.EnergyTol())
	assert.Equal(Te, 50, o.MaxIter())
}

func TestEnvironment(Te *testing.T) {
	Te.Setenv("ZOPT_CHARGE", "-1")
	Te.Setenv("ZOPT_MULTIPLICITY", "2")
	Te.Setenv("ZOPT_OPT_MAX_ITER", "7")
	Te.Setenv("ZOPT_OUTPUT_TRAJECTORY", "traj.molden.zst")
	c, err := Load("testdata/orca.yaml")
	require.NoError(Te, err)
	assert.Equal(Te, -1, c.Charge)
	assert.Equal(Te, 2, c.Multiplicity)
	assert.Equal(Te, 7, c.Optimizer.MaxIter)
	assert.Equal(Te, 1e-7, c.Optimizer.EnergyTol) //the environment only overrides what it sets
	assert.Equal(Te, "traj.molden.zst", c.Paths("x.zmat").Trajectory)
}

func TestInvalid(Te *testing.T) {
	_, err := Load("testdata/bad.yaml")
	require.Error(Te, err)
	assert.Contains(Te, err.Error(), "Backend")
	assert.Contains(Te, err.Error(), "Multiplicity")

	_, err = Load("testdata/unknown.yaml")
	assert.Error(Te, err)

	_, err = Load("testdata/missing.yaml")
	assert.Error(Te, err)

	Te.Setenv("ZOPT_CPUS", "many")
	_, err = Load("")
	assert.Error(Te, err)
}

func TestLogger(Te *testing.T) {
	for _, format := range []string{"json", "console"} {
		c := Default()
		c.Logging.Format = format
		c.Logging.Level = "warn"
		l, err := c.Logger()
		require.NoError(Te, err, format)
		assert.False(Te, l.Core().Enabled(-1)) //debug
		assert.True(Te, l.Core().Enabled(2))   //error
	}
	c := Default()
	c.Logging.Level = "chatty"
	_, err := c.Logger()
	assert.Error(Te, err)
}

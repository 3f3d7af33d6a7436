/*
 * main_test.go, part of zopt.
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

package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmera/zopt"
	"github.com/rmera/zopt/qm"
	"github.com/rmera/zopt/zmat"
)

func TestCartesianCmd(Te *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"cartesian", "../../zmat/testdata/water.zmat", "--comment", "water"})
	require.NoError(Te, root.Execute())
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(Te, lines, 5)
	assert.Equal(Te, "3", strings.TrimSpace(lines[0]))
	assert.Equal(Te, "water", lines[1])
	assert.True(Te, strings.HasPrefix(strings.TrimSpace(lines[2]), "O"))
}

func TestSettings(Te *testing.T) {
	Te.Setenv("ZOPT_CHARGE", "1")
	cmd, f := optimizeCommand()
	require.NoError(Te, cmd.ParseFlags([]string{"--multiplicity", "2", "--max-iter", "10", "-o", "out/w"}))
	c, err := settings(cmd, f)
	require.NoError(Te, err)
	assert.Equal(Te, 1, c.Charge)
	assert.Equal(Te, 2, c.Multiplicity)
	assert.Equal(Te, 10, c.Optimizer.MaxIter)
	assert.Equal(Te, "xtb", c.Backend)
	assert.Equal(Te, "out/w.md", c.Paths("water.zmat").Report)

	cmd, f = optimizeCommand()
	require.NoError(Te, cmd.ParseFlags([]string{"--backend", "gaussian"}))
	_, err = settings(cmd, f)
	assert.Error(Te, err)
}

func TestNewHandle(Te *testing.T) {
	cmd, f := optimizeCommand()
	c, err := settings(cmd, f)
	require.NoError(Te, err)
	c.Command = "/opt/xtb/bin/xtb"
	h, err := newHandle(c)
	require.NoError(Te, err)
	x, ok := h.(*qm.XTBHandle)
	require.True(Te, ok)
	assert.Equal(Te, "/opt/xtb/bin/xtb", x.Command())
	c.Backend = "turbomole"
	_, err = newHandle(c)
	assert.Error(Te, err)
}

func TestExitCode(Te *testing.T) {
	assert.Equal(Te, exitCanceled, exitCode(zopt.NewError(zopt.ErrCanceled, "", nil)))
	assert.Equal(Te, exitNotConv, exitCode(zopt.NewError(zopt.ErrMaxIterations, "", nil)))
	assert.Equal(Te, exitEvalFail, exitCode(fmt.Errorf("run: %w", zopt.ErrEvaluationFailed)))
	assert.Equal(Te, exitError, exitCode(fmt.Errorf("no such file")))
}

func TestOptimizeMissingInput(Te *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"optimize", Te.TempDir() + "/none.zmat"})
	assert.Error(Te, root.Execute())
}

func TestZmatrixCmd(Te *testing.T) {
	var xyz bytes.Buffer
	root := newRootCmd()
	root.SetOut(&xyz)
	root.SetArgs([]string{"cartesian", "../../zmat/testdata/h2o2.zmat"})
	require.NoError(Te, root.Execute())
	name := Te.TempDir() + "/h2o2.xyz"
	require.NoError(Te, os.WriteFile(name, xyz.Bytes(), 0644))

	var out bytes.Buffer
	root = newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"zmatrix", name})
	require.NoError(Te, root.Execute())
	s, err := zmat.Read(&out)
	require.NoError(Te, err)
	assert.Equal(Te, [3]int{1, 0, 2}, s.Atom(3).Refs())
	assert.InDelta(Te, 115.0, s.Atom(3).Dihedral, 1e-4)
}

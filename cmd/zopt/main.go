/*
 * main.go, part of zopt.
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

//zopt optimizes the geometry of a molecule given as a Z-matrix, using xtb or ORCA
//for the energies and gradients.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rmera/zopt"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "zopt",
		Short:         "Geometry optimization in internal coordinates",
		Long:          `zopt optimizes molecular geometries in Z-matrix coordinates, with energies and gradients from an external electronic-structure program (xtb or ORCA).`,
		Version:       zopt.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newOptimizeCmd(), newCartesianCmd(), newZmatrixCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "zopt:", err)
		os.Exit(exitCode(err))
	}
}

/*
 * zmatrix.go, part of zopt.
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
	"github.com/spf13/cobra"

	"github.com/rmera/zopt/zmat"
)

func newZmatrixCmd() *cobra.Command {
	var chain bool
	cmd := &cobra.Command{
		Use:   "zmatrix [xyz file]",
		Short: "Builds a Z-matrix from Cartesian coordinates",
		Long: `Reads the first structure of an XYZ file and prints it as a Z-matrix. The
references follow the bonds of the molecule, unless --chain is given, in which case
each atom refers to the three atoms before it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbols, coords, err := zmat.ReadXYZFile(args[0])
			if err != nil {
				return err
			}
			var refs [][3]int
			if !chain {
				if refs, err = zmat.BondedRefs(symbols, coords); err != nil {
					return err
				}
			}
			s, err := zmat.FromCartesian(symbols, coords, refs)
			if err != nil {
				return err
			}
			return s.Write(cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&chain, "chain", false, "refer each atom to the three previous ones")
	return cmd
}

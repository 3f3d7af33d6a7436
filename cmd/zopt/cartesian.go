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

package main

import (
	"github.com/spf13/cobra"

	"github.com/rmera/zopt/zmat"
)

func newCartesianCmd() *cobra.Command {
	var comment string
	cmd := &cobra.Command{
		Use:   "cartesian [zmatrix file]",
		Short: "Prints the Cartesian coordinates of a Z-matrix in XYZ format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := zmat.ReadFile(args[0])
			if err != nil {
				return err
			}
			if comment == "" {
				comment = args[0]
			}
			return s.WriteXYZ(cmd.OutOrStdout(), comment)
		},
	}
	cmd.Flags().StringVar(&comment, "comment", "", "comment line of the XYZ output")
	return cmd
}

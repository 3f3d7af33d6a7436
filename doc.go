/*
 * doc.go, part of zopt.
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

/*
Package zopt optimizes molecular geometries in internal coordinates.

A Z-matrix structure is repeatedly evaluated by an external electronic-structure
program (see the qm package), which returns an energy and a Cartesian gradient.
The gradient is transformed to internal coordinates through the geometry Jacobian,
and a quasi-Newton step generator uses the last two internal gradients to produce
the next structure, until the energy change and the largest Cartesian gradient
component fall below their tolerances.

The units used throughout the package are Hartree for energies, Angstrom for
lengths and radians for angular displacements and gradients. Z-matrix angles
themselves are stored in degrees.
*/
package zopt

// Version of the library, written in reports.
const Version = "0.1.0"

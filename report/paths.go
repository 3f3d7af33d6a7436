/*
 * paths.go, part of zopt.
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

package report

import (
	"path/filepath"
	"strings"
)

// Paths are the outputs of an optimization. Empty paths are not written.
type Paths struct {
	Report     string //markdown progress report
	Trajectory string //Molden trajectory, compressed with zstd if it ends in ".zst"
	Input      string //inputs of the evaluations; its directory keeps all of them
	Plot       string //energy profile, in a format given by the extension
}

// DefaultPaths returns the outputs for the base name base: base.md, base.molden and
// base_el_calcs/base.inp, with no plot. Any extension in base is removed.
func DefaultPaths(base string) Paths {
	dir, name := filepath.Split(base)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	b := filepath.Join(dir, name)
	return Paths{
		Report:     b + ".md",
		Trajectory: b + ".molden",
		Input:      filepath.Join(b+"_el_calcs", name+".inp"),
	}
}

// InputDir returns the directory where the evaluation inputs are kept, or
// an empty string if there is no Input path.
func (P Paths) InputDir() string {
	if P.Input == "" {
		return ""
	}
	return filepath.Dir(P.Input)
}

// Rotate renames the existing outputs out of the way, see RenameExisting.
// For the inputs, the whole directory is renamed, unless it is the current one.
func (P Paths) Rotate() error {
	targets := []string{P.Report, P.Trajectory, P.Plot}
	if d := P.InputDir(); d != "" && d != "." {
		targets = append(targets, d)
	}
	for _, t := range targets {
		if t == "" {
			continue
		}
		if err := RenameExisting(t); err != nil {
			return err
		}
	}
	return nil
}

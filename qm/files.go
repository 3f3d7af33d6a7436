/*
 * files.go, part of zopt.
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

package qm

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	v3 "github.com/rmera/zopt/v3"
)

// writeXYZ writes coords (in Angstrom) and the symbols of atoms to the file name.
func writeXYZ(name string, coords *v3.Matrix, atoms Atomer) error {
	if coords.NVecs() != atoms.Len() {
		return fmt.Errorf("%d coordinates for %d atoms", coords.NVecs(), atoms.Len())
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "%d\n\n", atoms.Len())
	for i := 0; i < atoms.Len(); i++ {
		c := coords.Vec(i)
		fmt.Fprintf(w, "%-2s %14.8f %14.8f %14.8f\n", atoms.Symbol(i), c[0], c[1], c[2])
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// lastLineWith returns the last line of the file filename that contains str,
// or an empty string.
func lastLineWith(str, filename string) string {
	f, err := os.Open(filename)
	if err != nil {
		return ""
	}
	defer f.Close()
	ret := ""
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if strings.Contains(sc.Text(), str) {
			ret = sc.Text()
		}
	}
	return ret
}

// splitName returns the working directory and the base name for a
// job called name.
func splitName(name string) (string, string) {
	dir, base := filepath.Split(name)
	if dir == "" {
		dir = "."
	}
	return dir, base
}

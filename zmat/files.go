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

package zmat

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	v3 "github.com/rmera/zopt/v3"
)

// Read reads a Z-matrix in text form. Each non-empty line not starting with '#'
// is an atom:
//
//	symbol [bondref bond [angleref angle [dihedralref dihedral]]]
//
// with 1-based references, the bond in Angstrom and the angles in degrees.
// The nth atom (0-based) must have exactly n coordinates, up to 3.
func Read(r io.Reader) (*Structure, error) {
	sc := bufio.NewScanner(r)
	atoms := make([]Atom, 0, 10)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		i := len(atoms)
		ncoords := min(i, 3)
		if len(fields) != 1+2*ncoords {
			return nil, Error{fmt.Sprintf("line %d: atom %d needs %d fields, got %d", lineno, i+1, 1+2*ncoords, len(fields)), []string{"Read"}, true}
		}
		at := Atom{Symbol: fields[0], BondRef: None, AngleRef: None, DihedralRef: None}
		for k := 0; k < ncoords; k++ {
			ref, err := strconv.Atoi(fields[1+2*k])
			if err != nil {
				return nil, Error{fmt.Sprintf("line %d: bad reference %q", lineno, fields[1+2*k]), []string{"Read"}, true}
			}
			val, err := strconv.ParseFloat(fields[2+2*k], 64)
			if err != nil {
				return nil, Error{fmt.Sprintf("line %d: bad value %q", lineno, fields[2+2*k]), []string{"Read"}, true}
			}
			at.setRef(k, ref-1)
			at.set(k, val)
		}
		atoms = append(atoms, at)
	}
	if err := sc.Err(); err != nil {
		return nil, Error{err.Error(), []string{"Read"}, true}
	}
	s, err := New(atoms)
	if err != nil {
		return nil, errDecorate(err, "Read")
	}
	return s, nil
}

// ReadFile reads a Z-matrix from the file name.
func ReadFile(name string) (*Structure, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, Error{err.Error(), []string{"ReadFile"}, true}
	}
	defer f.Close()
	s, err := Read(f)
	if err != nil {
		return nil, errDecorate(err, "ReadFile")
	}
	return s, nil
}

// Write writes the structure to w in the format read by Read.
func (S *Structure) Write(w io.Writer) error {
	for i, a := range S.atoms {
		line := fmt.Sprintf("%-3s", a.Symbol)
		refs := a.Refs()
		for k := 0; k < 3 && Defined(i, k); k++ {
			line += fmt.Sprintf(" %4d %14.8f", refs[k]+1, a.Value(k))
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return Error{err.Error(), []string{"Write"}, true}
		}
	}
	return nil
}

// WriteFile writes the structure in a new file called name. An existing file
// will be overwritten.
func (S *Structure) WriteFile(name string) error {
	f, err := os.Create(name)
	if err != nil {
		return Error{err.Error(), []string{"WriteFile"}, true}
	}
	if err := S.Write(f); err != nil {
		f.Close()
		return errDecorate(err, "WriteFile")
	}
	return f.Close()
}

// ReadXYZ reads the first structure of an XYZ file, returning the symbols and the
// coordinates, in Angstrom.
func ReadXYZ(r io.Reader) ([]string, *v3.Matrix, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		return nil, nil, Error{"empty XYZ input", []string{"ReadXYZ"}, true}
	}
	n, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
	if err != nil || n <= 0 {
		return nil, nil, Error{fmt.Sprintf("bad number of atoms %q", sc.Text()), []string{"ReadXYZ"}, true}
	}
	sc.Scan() //comment
	symbols := make([]string, 0, n)
	coords := v3.Zeros(n)
	for i := 0; i < n; i++ {
		if !sc.Scan() {
			return nil, nil, Error{fmt.Sprintf("expected %d atoms, found %d", n, i), []string{"ReadXYZ"}, true}
		}
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 {
			return nil, nil, Error{fmt.Sprintf("atom %d: expected a symbol and 3 coordinates", i+1), []string{"ReadXYZ"}, true}
		}
		var c [3]float64
		for j := range c {
			c[j], err = strconv.ParseFloat(fields[j+1], 64)
			if err != nil {
				return nil, nil, Error{fmt.Sprintf("atom %d: bad coordinate %q", i+1, fields[j+1]), []string{"ReadXYZ"}, true}
			}
		}
		symbols = append(symbols, fields[0])
		coords.SetVec(i, c)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, Error{err.Error(), []string{"ReadXYZ"}, true}
	}
	return symbols, coords, nil
}

// ReadXYZFile reads the first structure of the XYZ file name.
func ReadXYZFile(name string) ([]string, *v3.Matrix, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, Error{err.Error(), []string{"ReadXYZFile"}, true}
	}
	defer f.Close()
	symbols, coords, err := ReadXYZ(f)
	if err != nil {
		return nil, nil, errDecorate(err, "ReadXYZFile")
	}
	return symbols, coords, nil
}

// WriteXYZ writes the given coordinates, in Angstrom, in XYZ format with the
// given comment line.
func WriteXYZ(w io.Writer, symbols []string, coords *v3.Matrix, comment string) error {
	if len(symbols) != coords.NVecs() {
		return Error{fmt.Sprintf("%d symbols for %d atoms", len(symbols), coords.NVecs()), []string{"WriteXYZ"}, true}
	}
	comment = strings.ReplaceAll(comment, "\n", " ")
	if _, err := fmt.Fprintf(w, "%d\n%s\n", len(symbols), comment); err != nil {
		return Error{err.Error(), []string{"WriteXYZ"}, true}
	}
	for i, s := range symbols {
		c := coords.Vec(i)
		if _, err := fmt.Fprintf(w, "%-2s %14.8f %14.8f %14.8f\n", s, c[0], c[1], c[2]); err != nil {
			return Error{err.Error(), []string{"WriteXYZ"}, true}
		}
	}
	return nil
}

// WriteXYZ writes the Cartesian form of the structure in XYZ format.
func (S *Structure) WriteXYZ(w io.Writer, comment string) error {
	c, err := S.Cartesian()
	if err != nil {
		return errDecorate(err, "WriteXYZ")
	}
	return WriteXYZ(w, S.Symbols(), c, comment)
}

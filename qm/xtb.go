/*
 * xtb.go, part of zopt.
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

//In order to use this part of the library you need the xtb program, which must be obtained from Prof. Stefan Grimme's group.
//Please cite the the xtb references if you used the program.

package qm

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/rmera/zopt/units"
	v3 "github.com/rmera/zopt/v3"
)

// Note that the default methods and basis vary with each program, and even
// for a given program they are NOT considered part of the API, so they can always change.
type XTBHandle struct {
	command   string
	inputname string
	nCPU      int
	options   []string
	natoms    int
}

// NewXTBHandle returns an XTBHandle with the default settings.
func NewXTBHandle() *XTBHandle {
	run := new(XTBHandle)
	run.SetDefaults()
	return run
}

//XTBHandle methods

// SetnCPU sets the number of CPU to be used
func (O *XTBHandle) SetnCPU(cpu int) {
	O.nCPU = cpu
}

// Command returns the xtb executable to be used.
func (O *XTBHandle) Command() string {
	return O.command
}

// SetName sets the name of the job.
func (O *XTBHandle) SetName(name string) {
	O.inputname = name
}

// SetCommand sets the xtb executable to be used.
func (O *XTBHandle) SetCommand(name string) {
	O.command = name
}

// SetDefaults sets the command to "xtb" and the number of CPU to half of the available.
func (O *XTBHandle) SetDefaults() {
	O.command = "xtb"
	cpu := runtime.NumCPU() / 2
	O.nCPU = cpu
}

// Units returns Hartree and Bohr, the units of xtb's gradient file.
func (O *XTBHandle) Units() (units.Energy, units.Length) {
	return units.Hartree, units.Bohr
}

// BuildInput writes the coordinates for an xtb gradient calculation and
// prepares the command line options.
func (O *XTBHandle) BuildInput(coords *v3.Matrix, atoms Atomer, Q *Calc) error {
	if O.inputname == "" {
		O.inputname = "zopt"
	}
	if atoms == nil || coords == nil {
		return Error{ErrMissingCharges, XTB, O.inputname, "", []string{"BuildInput"}, true}
	}
	Q.SetDefaults()
	err := writeXYZ(O.inputname+".xyz", coords, atoms)
	if err != nil {
		return Error{ErrCantInput, XTB, O.inputname, err.Error(), []string{"BuildInput"}, true}
	}
	O.natoms = atoms.Len()
	_, base := splitName(O.inputname)
	O.options = make([]string, 0, 12)
	O.options = append(O.options, base+".xyz", "--grad")
	O.options = append(O.options, "-c", strconv.Itoa(Q.Charge))
	O.options = append(O.options, "-u", strconv.Itoa(Q.Multi-1))
	if O.nCPU > 1 {
		O.options = append(O.options, "-P", strconv.Itoa(O.nCPU))
	}
	switch {
	case Q.Method == "gfnff":
		O.options = append(O.options, "--gfnff")
	case isInString([]string{"gfn0", "gfn1", "gfn2"}, Q.Method):
		O.options = append(O.options, "--gfn", strings.TrimPrefix(Q.Method, "gfn"))
	default:
		O.options = append(O.options, "--gfn", "2") //default method
	}
	if Q.Dielectric > 0 && Q.Method != "gfn0" { //as of the current version, gfn0 doesn't support implicit solvation
		solvent, ok := dielectric2Solvent[int(Q.Dielectric)]
		if ok {
			O.options = append(O.options, "--alpb", solvent)
		}
	}
	if Q.Others != "" {
		O.options = append(O.options, strings.Fields(Q.Others)...)
	}
	O.options = append(O.options, "--namespace", base)
	return nil
}

// Options returns the command line options prepared by the last BuildInput.
func (O *XTBHandle) Options() []string {
	return O.options
}

// Run runs xtb in the directory of the job, writing its standard output to
// name.out, and waits for it to finish.
func (O *XTBHandle) Run(ctx context.Context) error {
	if O.options == nil {
		return Error{ErrNotRunning, XTB, O.inputname, "no input built", []string{"Run"}, true}
	}
	dir, _ := splitName(O.inputname)
	out, err := os.Create(O.inputname + ".out")
	if err != nil {
		return Error{ErrNotRunning, XTB, O.inputname, err.Error(), []string{"os.Create", "Run"}, true}
	}
	defer out.Close()
	command := exec.CommandContext(ctx, O.command, O.options...)
	command.Dir = dir
	command.Stdout = out
	command.Stderr = out
	if err = command.Run(); err != nil {
		return Error{ErrNotRunning, XTB, O.inputname, err.Error(), []string{"exec.Run", "Run"}, true}
	}
	os.Remove(filepath.Join(dir, "xtbrestart"))
	if !O.normalTermination() {
		return Error{ErrProbableProblem, XTB, O.inputname, "Calculation didn't end normally", []string{"Run"}, true}
	}
	return nil
}

// This checks that an xtb calculation has terminated normally
func (O *XTBHandle) normalTermination() bool {
	name := O.inputname + ".out"
	return lastLineWith("normal termination of x", name) != "" && lastLineWith("abnormal termination of x", name) == ""
}

// Energy returns the energy, in Hartree, from the gradient file of the last calculation.
func (O *XTBHandle) Energy() (float64, error) {
	e, _, err := O.readGradient()
	if err != nil {
		return 0, errDecorate(err, "Energy")
	}
	return e, nil
}

// Gradient returns the gradient, in Hartree/Bohr, from the gradient file of the last calculation.
func (O *XTBHandle) Gradient() (*v3.Matrix, error) {
	_, g, err := O.readGradient()
	if err != nil {
		return nil, errDecorate(err, "Gradient")
	}
	return g, nil
}

// readGradient parses the file name.gradient, which uses the Turbomole format:
// a cycle line with the energy, then natoms coordinate lines and natoms gradient lines.
func (O *XTBHandle) readGradient() (float64, *v3.Matrix, error) {
	name := O.inputname + ".gradient"
	f, err := os.Open(name)
	if err != nil {
		return 0, nil, Error{ErrNoGradient, XTB, O.inputname, err.Error(), []string{"os.Open", "readGradient"}, true}
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	var energy float64
	var lines []string
	found := false
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "cycle") {
			//only the last cycle counts.
			i := strings.Index(line, "energy =")
			if i < 0 {
				return 0, nil, Error{ErrNoEnergy, XTB, O.inputname, line, []string{"readGradient"}, true}
			}
			fields := strings.Fields(line[i+len("energy ="):])
			if len(fields) == 0 {
				return 0, nil, Error{ErrNoEnergy, XTB, O.inputname, line, []string{"readGradient"}, true}
			}
			energy, err = strconv.ParseFloat(fields[0], 64)
			if err != nil {
				return 0, nil, Error{ErrNoEnergy, XTB, O.inputname, err.Error(), []string{"strconv.ParseFloat", "readGradient"}, true}
			}
			found = true
			lines = lines[:0]
			continue
		}
		if strings.HasPrefix(line, "$") || !found {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return 0, nil, Error{ErrNoGradient, XTB, O.inputname, err.Error(), []string{"readGradient"}, true}
	}
	if !found {
		return 0, nil, Error{ErrNoEnergy, XTB, O.inputname, "", []string{"readGradient"}, true}
	}
	natoms := len(lines) / 2
	if O.natoms != 0 && natoms != O.natoms || len(lines)%2 != 0 || natoms == 0 {
		return 0, nil, Error{ErrNoGradient, XTB, O.inputname, fmt.Sprintf("%d lines for %d atoms", len(lines), O.natoms), []string{"readGradient"}, true}
	}
	data := make([]float64, 0, 3*natoms)
	for _, l := range lines[natoms:] {
		fields := strings.Fields(l)
		if len(fields) != 3 {
			return 0, nil, Error{ErrNoGradient, XTB, O.inputname, l, []string{"readGradient"}, true}
		}
		for _, s := range fields {
			v, err := strconv.ParseFloat(strings.Replace(s, "D", "E", 1), 64)
			if err != nil {
				return 0, nil, Error{ErrNoGradient, XTB, O.inputname, err.Error(), []string{"strconv.ParseFloat", "readGradient"}, true}
			}
			data = append(data, v)
		}
	}
	g, err := v3.NewMatrix(data)
	if err != nil {
		return 0, nil, Error{ErrNoGradient, XTB, O.inputname, err.Error(), []string{"readGradient"}, true}
	}
	return energy, g, nil
}

var dielectric2Solvent = map[int]string{
	80: "h2o",
	5:  "chcl3",
	9:  "ch2cl2",
	21: "acetone",
	37: "acetonitrile",
	33: "methanol",
	2:  "toluene",
	7:  "thf",
	47: "dmso",
	38: "dmf",
}

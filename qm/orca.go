/*
 * orca.go, part of zopt.
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
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/rmera/zopt/units"
	v3 "github.com/rmera/zopt/v3"
)

// Note that the default methods and basis vary with each program, and even
// for a given program they are NOT considered part of the API, so they can always change.
type OrcaHandle struct {
	defmethod string
	defbasis  string
	command   string
	inputname string
	nCPU      int
	natoms    int
}

// NewOrcaHandle returns an OrcaHandle with the default settings.
func NewOrcaHandle() *OrcaHandle {
	run := new(OrcaHandle)
	run.SetDefaults()
	return run
}

//OrcaHandle methods

// SetnCPU sets the number of CPU to be used
func (O *OrcaHandle) SetnCPU(cpu int) {
	O.nCPU = cpu
}

// SetName sets the name of the job.
func (O *OrcaHandle) SetName(name string) {
	O.inputname = name
}

// SetCommand sets the ORCA executable to be used.
func (O *OrcaHandle) SetCommand(name string) {
	O.command = name
}

/*SetDefaults sets defaults for ORCA calculation. Default is a gradient at
revPBE/def2-SVP with RI, and all the available CPU. The ORCA command is
set to $ORCA_PATH/orca, at least in unix.*/
func (O *OrcaHandle) SetDefaults() {
	O.defmethod = "revPBE"
	O.defbasis = "def2-SVP"
	O.command = os.ExpandEnv("${ORCA_PATH}/orca")
	if O.command == "/orca" { //if ORCA_PATH was not defined
		O.command = "orca"
	}
	O.nCPU = runtime.NumCPU()
}

// Units returns Hartree and Bohr, the units of ORCA's engrad file.
func (O *OrcaHandle) Units() (units.Energy, units.Length) {
	return units.Hartree, units.Bohr
}

// BuildInput builds an input for an ORCA energy and gradient (EnGrad) calculation
// based int the data in atoms, coords and Q. returns only error.
func (O *OrcaHandle) BuildInput(coords *v3.Matrix, atoms Atomer, Q *Calc) error {
	if O.inputname == "" {
		O.inputname = "zopt"
	}
	if atoms == nil || coords == nil {
		return Error{ErrMissingCharges, Orca, O.inputname, "", []string{"BuildInput"}, true}
	}
	if coords.NVecs() != atoms.Len() {
		return Error{ErrCantInput, Orca, O.inputname, fmt.Sprintf("%d coordinates for %d atoms", coords.NVecs(), atoms.Len()), []string{"BuildInput"}, true}
	}
	Q.SetDefaults()
	method, basis := Q.Method, Q.Basis
	if method == "" {
		method = O.defmethod
	}
	if basis == "" {
		basis = O.defbasis
	}
	ri := ""
	if Q.RI {
		ri = "RI " + basis + "/J"
	}
	disp := ""
	if Q.Dispersion != "" {
		disp = orcaDisp[Q.Dispersion]
	}
	hfuhf := "RHF"
	if Q.Multi != 1 {
		hfuhf = "UHF"
	}
	if method == "HF-3c" { //This method includes its own basis sets and corrections, so previous choices are overwritten.
		basis, ri, disp = "", "", ""
	}
	mainline := strings.Join(strings.Fields(strings.Join([]string{"!", hfuhf, method, basis, ri, disp, "TightSCF", "EnGrad", Q.Others}, " ")), " ")
	file, err := os.Create(O.inputname + ".inp")
	if err != nil {
		return Error{ErrCantInput, Orca, O.inputname, err.Error(), []string{"os.Create", "BuildInput"}, true}
	}
	w := bufio.NewWriter(file)
	fmt.Fprintln(w, mainline)
	if O.nCPU > 1 {
		fmt.Fprintf(w, "%%pal nprocs %d\n   end\n", O.nCPU)
	}
	if Q.Memory != 0 {
		fmt.Fprintf(w, "%%MaxCore %d\n", Q.Memory)
	}
	if Q.Dielectric > 0 {
		fmt.Fprintf(w, "%%cpcm epsilon %1.0f\n        refrac 1.30\n        end\n", Q.Dielectric)
	}
	fmt.Fprintf(w, "\n* xyz %d %d\n", Q.Charge, Q.Multi)
	for i := 0; i < atoms.Len(); i++ {
		c := coords.Vec(i)
		fmt.Fprintf(w, "%-2s  %14.8f %14.8f %14.8f\n", atoms.Symbol(i), c[0], c[1], c[2])
	}
	fmt.Fprint(w, "*\n")
	if err := w.Flush(); err != nil {
		file.Close()
		return Error{ErrCantInput, Orca, O.inputname, err.Error(), []string{"BuildInput"}, true}
	}
	O.natoms = atoms.Len()
	return file.Close()
}

// Run runs ORCA in the directory of the job, writing its output to
// name.out, and waits for it to finish.
func (O *OrcaHandle) Run(ctx context.Context) error {
	dir, base := splitName(O.inputname)
	out, err := os.Create(O.inputname + ".out")
	if err != nil {
		return Error{ErrNotRunning, Orca, O.inputname, err.Error(), []string{"os.Create", "Run"}, true}
	}
	defer out.Close()
	command := exec.CommandContext(ctx, O.command, base+".inp")
	command.Dir = dir
	command.Stdout = out
	command.Stderr = out
	if err = command.Run(); err != nil {
		return Error{ErrNotRunning, Orca, O.inputname, err.Error(), []string{"exec.Run", "Run"}, true}
	}
	if !O.orcaNormalTermination() {
		return Error{ErrProbableProblem, Orca, O.inputname, "Calculation didn't end normally", []string{"Run"}, true}
	}
	return nil
}

// This checks that an ORCA calculation has terminated normally
func (O *OrcaHandle) orcaNormalTermination() bool {
	return lastLineWith("**ORCA TERMINATED NORMALLY**", O.inputname+".out") != ""
}

// Energy returns the energy, in Hartree, from the engrad file of the last calculation.
func (O *OrcaHandle) Energy() (float64, error) {
	e, _, err := O.readEngrad()
	if err != nil {
		return 0, errDecorate(err, "Energy")
	}
	return e, nil
}

// Gradient returns the gradient, in Hartree/Bohr, from the engrad file of the last calculation.
func (O *OrcaHandle) Gradient() (*v3.Matrix, error) {
	_, g, err := O.readEngrad()
	if err != nil {
		return nil, errDecorate(err, "Gradient")
	}
	return g, nil
}

// readEngrad parses name.engrad: after the comment lines come the number of atoms,
// the energy and the 3N gradient components, one value per line.
func (O *OrcaHandle) readEngrad() (float64, *v3.Matrix, error) {
	f, err := os.Open(O.inputname + ".engrad")
	if err != nil {
		return 0, nil, Error{ErrNoGradient, Orca, O.inputname, err.Error(), []string{"os.Open", "readEngrad"}, true}
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	values := make([]string, 0, 32)
	natoms := -1
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if natoms < 0 {
			natoms, err = strconv.Atoi(line)
			if err != nil || natoms <= 0 {
				return 0, nil, Error{ErrNoGradient, Orca, O.inputname, "bad atom number " + line, []string{"readEngrad"}, true}
			}
			continue
		}
		values = append(values, line)
		if len(values) == 1+3*natoms {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return 0, nil, Error{ErrNoGradient, Orca, O.inputname, err.Error(), []string{"readEngrad"}, true}
	}
	if natoms < 0 || len(values) == 0 {
		return 0, nil, Error{ErrNoEnergy, Orca, O.inputname, "", []string{"readEngrad"}, true}
	}
	energy, err := strconv.ParseFloat(values[0], 64)
	if err != nil {
		return 0, nil, Error{ErrNoEnergy, Orca, O.inputname, err.Error(), []string{"strconv.ParseFloat", "readEngrad"}, true}
	}
	if len(values) != 1+3*natoms || (O.natoms != 0 && O.natoms != natoms) {
		return 0, nil, Error{ErrNoGradient, Orca, O.inputname, fmt.Sprintf("%d gradient values for %d atoms", len(values)-1, natoms), []string{"readEngrad"}, true}
	}
	data := make([]float64, 3*natoms)
	for i, s := range values[1:] {
		data[i], err = strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, nil, Error{ErrNoGradient, Orca, O.inputname, err.Error(), []string{"strconv.ParseFloat", "readEngrad"}, true}
		}
	}
	g, err := v3.NewMatrix(data)
	if err != nil {
		return 0, nil, Error{ErrNoGradient, Orca, O.inputname, err.Error(), []string{"readEngrad"}, true}
	}
	return energy, g, nil
}

var orcaDisp = map[string]string{
	"nodisp": "",
	"D2":     "D2",
	"D3BJ":   "D3BJ",
	"D3bj":   "D3BJ",
	"D3":     "D3ZERO",
	"D3ZERO": "D3ZERO",
	"D3Zero": "D3ZERO",
	"D3zero": "D3ZERO",
	"D4":     "D4",
	"VV10":   "NL", //for these methods only the default integration grid is supported.
	"NL":     "NL",
}

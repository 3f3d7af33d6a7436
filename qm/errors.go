/*
 * errors.go, part of zopt.
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
	"fmt"
	"strings"
)

// Names of the supported programs, as found in errors.
const (
	XTB  = "XTB"
	Orca = "Orca"
)

// Error is the general structure for errors in the package. It carries
// the program and the input name involved, when available.
type Error struct {
	message    string
	code       string //the name of the QM program giving the problem, or empty string if none
	inputname  string //the input file that has problems, or empty string if none.
	additional string
	deco       []string
	critical   bool
}

func (err Error) Error() string {
	ret := fmt.Sprintf("%s (%s/%s)", err.message, err.code, err.inputname)
	if err.additional != "" {
		ret += " Message: " + err.additional
	}
	if len(err.deco) > 0 {
		ret += " [" + strings.Join(err.deco, " < ") + "]"
	}
	return ret
}

// Code returns the name of the program that ran/was meant to run the
// calculation that caused the error.
func (err Error) Code() string { return err.code }

// InputName returns the name of the input file which processing caused the error
func (err Error) InputName() string { return err.inputname }

// Decorate adds new information to the error
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

// Messages used in errors.
const (
	ErrProbableProblem = "qm: Probable problem with calculations"
	ErrMissingCharges  = "qm: Missing charges or coordinates"
	ErrNoEnergy        = "qm: No energy in output"
	ErrNoGradient      = "qm: No gradient in output"
	ErrNotRunning      = "qm: Couldn't run calculation"
	ErrCantInput       = "qm: Can't build input file"
)

func errDecorate(err error, caller string) error {
	if e, ok := err.(Error); ok {
		e.deco = e.Decorate(caller)
		return e
	}
	return err
}

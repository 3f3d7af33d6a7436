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

package zopt

import (
	"errors"
	"fmt"
	"strings"
)

// Kinds of errors. Errors returned by the package wrap one of these,
// so they can be checked with errors.Is.
var (
	// The external evaluation did not return a usable energy and gradient.
	ErrEvaluationFailed = errors.New("evaluation failed")
	// A step was requested with a gradient history of size other than 2.
	ErrInvalidHistoryLength = errors.New("gradient history must contain exactly 2 gradients")
	// No free numbered name was found to back up an existing output file.
	ErrOutputPathExhausted = errors.New("no free backup name for output path")
	// The optimization did not converge within the maximum number of iterations.
	ErrMaxIterations = errors.New("maximum number of iterations reached")
	// The optimization was canceled.
	ErrCanceled = errors.New("optimization canceled")
)

// Error is the general structure for errors in the package. It carries
// the kind of the error, the error that caused it, if any, a slice with
// the names of the functions it went through, and whether it is critical.
type Error struct {
	message  string
	kind     error
	cause    error
	deco     []string
	critical bool
}

// NewError returns a critical Error of the given kind.
func NewError(kind error, message string, cause error) Error {
	return Error{message: message, kind: kind, cause: cause, critical: true}
}

func (err Error) Error() string {
	var b strings.Builder
	b.WriteString("zopt: ")
	if err.kind != nil {
		b.WriteString(err.kind.Error())
	}
	if err.message != "" {
		b.WriteString(": " + err.message)
	}
	if err.cause != nil {
		b.WriteString(": " + err.cause.Error())
	}
	if len(err.deco) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(err.deco, " < "))
	}
	return b.String()
}

// Unwrap returns the kind and the cause of the error.
func (err Error) Unwrap() []error {
	ret := make([]error, 0, 2)
	if err.kind != nil {
		ret = append(ret, err.kind)
	}
	if err.cause != nil {
		ret = append(ret, err.cause)
	}
	return ret
}

// Decorate adds new information to the error
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

// Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

func errDecorate(err error, caller string) error {
	if e, ok := err.(Error); ok {
		e.deco = e.Decorate(caller)
		return e
	}
	return err
}

// PanicMsg is a message used for panics, even though it does satisfy the error interface.
// for errors use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const ErrShape = PanicMsg("zopt: Dimension mismatch")

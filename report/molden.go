/*
 * molden.go, part of zopt.
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
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/rmera/zopt"
	"github.com/rmera/zopt/zmat"
)

// WriteMolden writes the points, in order, as a Molden geometry
// sequence. The convergence section has the energy in Hartree and the
// largest and root-mean-square Cartesian gradient components in Hartree/Angstrom.
func WriteMolden(w io.Writer, points []*zopt.Point) error {
	if len(points) == 0 {
		return zopt.NewError(nil, "no structures to write", nil)
	}
	b := bufio.NewWriter(w)
	fmt.Fprintf(b, "[MOLDEN FORMAT]\n[N_GEO]\n%d\n[GEOCONV]\nenergy\n", len(points))
	for _, p := range points {
		fmt.Fprintf(b, "%.12f\n", p.Energy)
	}
	fmt.Fprintln(b, "max-force")
	for _, p := range points {
		fmt.Fprintf(b, "%.12f\n", p.CartGrad.MaxAbs())
	}
	fmt.Fprintln(b, "rms-force")
	for _, p := range points {
		fmt.Fprintf(b, "%.12f\n", p.CartGrad.RMS())
	}
	fmt.Fprintln(b, "[GEOMETRIES] (XYZ)")
	for i, p := range points {
		if err := zmat.WriteXYZ(b, p.Structure.Symbols(), p.Cartesian, fmt.Sprintf("%d energy %.10f", i+1, p.Energy)); err != nil {
			return err
		}
	}
	return b.Flush()
}

// WriteTrajectory writes the points to a Molden file called name, compressed
// with zstd if the name ends in ".zst". An existing file is overwritten.
func WriteTrajectory(name string, points []*zopt.Point) error {
	f, err := os.Create(name)
	if err != nil {
		return zopt.NewError(nil, "creating trajectory", err)
	}
	var w io.WriteCloser = nopCloser{f}
	if strings.HasSuffix(name, ".zst") {
		w, err = zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if err != nil {
			f.Close()
			return zopt.NewError(nil, "compressing trajectory", err)
		}
	}
	if err := WriteMolden(w, points); err != nil {
		w.Close()
		f.Close()
		return err
	}
	if err := w.Close(); err != nil {
		f.Close()
		return zopt.NewError(nil, "compressing trajectory", err)
	}
	return f.Close()
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

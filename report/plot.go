/*
 * plot.go, part of zopt.
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
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/rmera/zopt"
	"github.com/rmera/zopt/units"
)

// PlotEnergies saves a plot of the energy of each point, relative to the first one
// and in kcal/mol, against the iteration number. The format is given by the
// extension of name (png, svg, pdf...).
func PlotEnergies(name, title string, points []*zopt.Point) error {
	if len(points) == 0 {
		return zopt.NewError(nil, "no energies to plot", nil)
	}
	p := plot.New()
	p.Title.Text = title
	p.Title.Padding = 3 * vg.Millimeter
	p.X.Label.Text = "Iteration"
	p.Y.Label.Text = "Relative energy (kcal/mol)"
	p.Add(plotter.NewGrid())
	pts := make(plotter.XYs, len(points))
	for i, pt := range points {
		pts[i].X = float64(i + 1)
		pts[i].Y = (pt.Energy - points[0].Energy) * units.H2Kcal
	}
	l, s, err := plotter.NewLinePoints(pts)
	if err != nil {
		return zopt.NewError(nil, "plotting energies", err)
	}
	s.Shape = draw.CircleGlyph{}
	p.Add(l, s)
	if err := p.Save(6*vg.Inch, 4*vg.Inch, name); err != nil {
		return zopt.NewError(nil, "saving plot", err)
	}
	return nil
}

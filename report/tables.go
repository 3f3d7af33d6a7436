/*
 * tables.go, part of zopt.
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
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	v3 "github.com/rmera/zopt/v3"
	"github.com/rmera/zopt/zmat"
)

// markdown renders a pipe table.
func markdown(headers []string, rows [][]string) string {
	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.MarkdownBorder()).
		BorderTop(false).
		BorderBottom(false).
		StyleFunc(func(row, col int) lipgloss.Style { return cell }).
		Headers(headers...).
		Rows(rows...)
	return t.String()
}

func ref(r int) string {
	if r == zmat.None {
		return ""
	}
	return strconv.Itoa(r + 1)
}

func value(v float64, defined bool) string {
	if !defined {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// ZmatTable returns the structure s as a markdown table, with 1-based references.
func ZmatTable(s *zmat.Structure) string {
	rows := make([][]string, s.Len())
	for i := range rows {
		a := s.Atom(i)
		rows[i] = []string{
			strconv.Itoa(i + 1), a.Symbol,
			ref(a.BondRef), value(a.Bond, zmat.Defined(i, zmat.BondKind)),
			ref(a.AngleRef), value(a.Angle, zmat.Defined(i, zmat.AngleKind)),
			ref(a.DihedralRef), value(a.Dihedral, zmat.Defined(i, zmat.DihedralKind)),
		}
	}
	return markdown([]string{"", "atom", "b", "bond", "a", "angle", "d", "dihedral"}, rows)
}

// CartesianTable returns the coordinates in coords, with the symbols given, as a
// markdown table.
func CartesianTable(symbols []string, coords *v3.Matrix) string {
	rows := make([][]string, coords.NVecs())
	for i := range rows {
		c := coords.Vec(i)
		rows[i] = []string{strconv.Itoa(i + 1), symbols[i], value(c[0], true), value(c[1], true), value(c[2], true)}
	}
	return markdown([]string{"", "atom", "x", "y", "z"}, rows)
}

// iteration table layout; the last column is as wide as its header.
const (
	rowFormat = "|%4d| %16.10f | %16.10f | %29.10f |\n"
	gradTitle = "grad_X_max [Hartree/Angstrom]"
)

func center(s string, w int) string {
	if len(s) >= w {
		return s[:w]
	}
	left := (w - len(s)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", w-len(s)-left)
}

// TableHeader returns the header of the iteration table.
func TableHeader() string {
	head := fmt.Sprintf("|%4s| %s | %s | %s |\n", "n", center("energy [Hartree]", 16), center("delta [Hartree]", 16), center(gradTitle, 29))
	sep := fmt.Sprintf("|%s| %s | %s | %s |\n", strings.Repeat("-", 4), strings.Repeat("-", 16), strings.Repeat("-", 16), strings.Repeat("-", 29))
	return head + sep
}

// TableRow returns the row of the iteration table for the nth iteration.
func TableRow(n int, energy, delta, gradMax float64) string {
	return fmt.Sprintf(rowFormat, n, energy, delta, gradMax)
}

// isoTime formats t without fractions of a second.
func isoTime(t time.Time) string {
	return t.Format("2006-01-02T15:04:05")
}

// elapsed formats d as H:MM:SS, truncated to whole seconds.
func elapsed(d time.Duration) string {
	s := int64(d.Truncate(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", s/3600, (s/60)%60, s%60)
}

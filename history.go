/*
 * history.go, part of zopt.
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

// GradHistory keeps the last two internal gradients, the previous and the current one.
type GradHistory struct {
	ring [2][]float64
	head int //index of the previous gradient
}

// NewGradHistory returns a history filled with two zero gradients of length n.
func NewGradHistory(n int) *GradHistory {
	return &GradHistory{ring: [2][]float64{make([]float64, n), make([]float64, n)}}
}

// Push adds g as the current gradient, discarding the previous one. The
// slice is kept, not copied.
func (H *GradHistory) Push(g []float64) {
	H.ring[H.head] = g
	H.head = 1 - H.head
}

// Window returns the gradients in the order previous, current.
func (H *GradHistory) Window() [][]float64 {
	return [][]float64{H.ring[H.head], H.ring[1-H.head]}
}

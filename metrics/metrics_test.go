/*
 * metrics_test.go, part of zopt.
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

package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmera/zopt"
	v3 "github.com/rmera/zopt/v3"
)

func point(Te *testing.T, e float64, grad ...float64) *zopt.Point {
	g, err := v3.NewMatrix(grad)
	require.NoError(Te, err)
	return &zopt.Point{Energy: e, CartGrad: g}
}

func TestRecorder(Te *testing.T) {
	R := NewRecorder()
	R.Evaluation(2*time.Second, nil)
	R.Iteration(point(Te, -76.1, 0.01, -0.03, 0, 0, 0.02, 0), 0)
	R.Evaluation(3*time.Second, nil)
	R.Iteration(point(Te, -76.2, 0.001, 0, 0, 0, -0.002, 0), -0.1)
	R.Evaluation(time.Second, fmt.Errorf("xtb died"))

	assert.Equal(Te, 2.0, testutil.ToFloat64(R.evaluations.WithLabelValues("ok")))
	assert.Equal(Te, 1.0, testutil.ToFloat64(R.evaluations.WithLabelValues("failed")))
	assert.Equal(Te, 2.0, testutil.ToFloat64(R.iterations))
	assert.Equal(Te, -76.2, testutil.ToFloat64(R.energy))
	assert.InDelta(Te, -0.1, testutil.ToFloat64(R.delta), 1e-12)
	assert.Equal(Te, 0.002, testutil.ToFloat64(R.gradMax))
	assert.Equal(Te, 1, testutil.CollectAndCount(R.duration))

	R.Finish(&zopt.Result{Converged: true, Points: make([]*zopt.Point, 2)})
	assert.Equal(Te, 1.0, testutil.ToFloat64(R.converged))
	assert.Equal(Te, 1.0, testutil.ToFloat64(R.runs.WithLabelValues("converged")))
}

func TestOutcome(Te *testing.T) {
	cases := map[string]*zopt.Result{
		"converged":         {Converged: true},
		"canceled":          {Err: fmt.Errorf("stopping: %w", zopt.ErrCanceled)},
		"max_iterations":    {Err: zopt.NewError(zopt.ErrMaxIterations, "200 evaluations", nil)},
		"evaluation_failed": {Err: zopt.NewError(zopt.ErrEvaluationFailed, "no gradient", nil)},
		"error":             {Err: fmt.Errorf("disk full")},
	}
	for want, res := range cases {
		assert.Equal(Te, want, Outcome(res))
	}
}

func TestTextfile(Te *testing.T) {
	R := NewRecorder()
	R.Evaluation(time.Second, nil)
	R.Iteration(point(Te, -1.5, 0, 0, 0.5), 0)
	R.Finish(&zopt.Result{Err: zopt.ErrMaxIterations, Points: make([]*zopt.Point, 1)})
	name := filepath.Join(Te.TempDir(), "zopt.prom")
	require.NoError(Te, R.WriteTextfile(name))
	b, err := os.ReadFile(name)
	require.NoError(Te, err)
	text := string(b)
	for _, m := range []string{"zopt_energy_hartree -1.5", "zopt_converged 0", `zopt_optimizations_total{outcome="max_iterations"} 1`, "zopt_evaluation_duration_seconds_count 1"} {
		assert.True(Te, strings.Contains(text, m), m)
	}
}

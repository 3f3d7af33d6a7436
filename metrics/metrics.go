/*
 * metrics.go, part of zopt.
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

//Package metrics collects Prometheus metrics of optimizations. Optimizations are
//batch jobs, so the metrics are usually dumped to a textfile for the node exporter
//once the run is over.

package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rmera/zopt"
)

const namespace = "zopt"

// Recorder implements zopt.Recorder on its own Prometheus registry.
type Recorder struct {
	reg         *prometheus.Registry
	evaluations *prometheus.CounterVec
	duration    prometheus.Histogram
	iterations  prometheus.Gauge
	energy      prometheus.Gauge
	delta       prometheus.Gauge
	gradMax     prometheus.Gauge
	converged   prometheus.Gauge
	runs        *prometheus.CounterVec
}

// NewRecorder returns a Recorder with a new registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	R := &Recorder{reg: reg}
	R.evaluations = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "evaluations_total",
		Help:      "Electronic-structure evaluations, by status",
	}, []string{"status"})
	R.duration = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "evaluation_duration_seconds",
		Help:      "Wall time of each electronic-structure evaluation",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900, 3600},
	})
	R.iterations = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "iterations",
		Help:      "Successful evaluations of the current optimization",
	})
	R.energy = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "energy_hartree",
		Help:      "Energy of the last evaluated structure",
	})
	R.delta = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "energy_delta_hartree",
		Help:      "Energy change of the last evaluated structure",
	})
	R.gradMax = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "gradient_max_hartree_per_angstrom",
		Help:      "Largest absolute Cartesian gradient component of the last evaluated structure",
	})
	R.converged = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "converged",
		Help:      "1 if the last optimization converged, 0 otherwise",
	})
	R.runs = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "optimizations_total",
		Help:      "Finished optimizations, by outcome",
	}, []string{"outcome"})
	return R
}

// Registry returns the registry with the metrics, for serving or gathering.
func (R *Recorder) Registry() *prometheus.Registry {
	return R.reg
}

// Evaluation records an evaluation that took the given time and failed if err is not nil.
func (R *Recorder) Evaluation(took time.Duration, err error) {
	R.duration.Observe(took.Seconds())
	status := "ok"
	if err != nil {
		status = "failed"
	}
	R.evaluations.WithLabelValues(status).Inc()
}

// Iteration records a successful evaluation.
func (R *Recorder) Iteration(p *zopt.Point, delta float64) {
	R.iterations.Inc()
	R.energy.Set(p.Energy)
	R.delta.Set(delta)
	R.gradMax.Set(p.GradMax())
}

// Finish records the outcome of an optimization.
func (R *Recorder) Finish(res *zopt.Result) {
	R.iterations.Set(float64(len(res.Points)))
	if res.Converged {
		R.converged.Set(1)
	} else {
		R.converged.Set(0)
	}
	R.runs.WithLabelValues(Outcome(res)).Inc()
}

// Outcome classifies the result of an optimization as "converged", "canceled",
// "max_iterations", "evaluation_failed" or "error".
func Outcome(res *zopt.Result) string {
	switch {
	case res.Converged:
		return "converged"
	case errors.Is(res.Err, zopt.ErrCanceled):
		return "canceled"
	case errors.Is(res.Err, zopt.ErrMaxIterations):
		return "max_iterations"
	case errors.Is(res.Err, zopt.ErrEvaluationFailed):
		return "evaluation_failed"
	default:
		return "error"
	}
}

// WriteTextfile writes the metrics to path in the text exposition format.
func (R *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, R.reg)
}

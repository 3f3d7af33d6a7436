/*
 * optimize.go, part of zopt.
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
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rmera/zopt/qm"
	"github.com/rmera/zopt/zmat"
)

// State is a state of an optimization.
type State int

const (
	Init State = iota
	Evaluating
	ConvergenceCheck
	Stepping
	Done
)

func (s State) String() string {
	switch s {
	case Init:
		return "init"
	case Evaluating:
		return "evaluating"
	case ConvergenceCheck:
		return "convergence-check"
	case Stepping:
		return "stepping"
	case Done:
		return "done"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Setup describes an optimization, for reports.
type Setup struct {
	Title   string
	Backend string
	Calc    qm.Calc
	RunID   string    //a new one is generated if empty
	Start   time.Time //set when the optimization starts
}

// Result is the outcome of an optimization.
type Result struct {
	Setup     Setup
	Points    []*Point //every evaluated structure, in order
	Converged bool
	End       time.Time
	Err       error //why the optimization stopped before converging, if it did
}

// Last returns the last evaluated point, or nil if there is none.
func (R *Result) Last() *Point {
	if len(R.Points) == 0 {
		return nil
	}
	return R.Points[len(R.Points)-1]
}

// Energies returns the energies of all points, in Hartree.
func (R *Result) Energies() []float64 {
	ret := make([]float64, len(R.Points))
	for i, p := range R.Points {
		ret[i] = p.Energy
	}
	return ret
}

// Delta returns the energy change of the ith point with respect to the previous one,
// or 0 for the first one.
func (R *Result) Delta(i int) float64 {
	if i == 0 {
		return 0
	}
	return R.Points[i].Energy - R.Points[i-1].Energy
}

// Reporter writes the progress of an optimization.
type Reporter interface {
	// Begin is called before the first evaluation.
	Begin(setup Setup, start *zmat.Structure) error
	// Iteration is called after each successful evaluation; n starts at 1.
	Iteration(n int, p *Point, delta float64) error
	// Finish is called once at the end, whether the optimization converged or not.
	Finish(res *Result) error
}

// Recorder collects metrics of an optimization.
type Recorder interface {
	Evaluation(took time.Duration, err error)
	Iteration(p *Point, delta float64)
	Finish(res *Result)
}

// Optimizer runs an optimization, going through the states Init, Evaluating,
// ConvergenceCheck, Stepping (and back to Evaluating) and Done.
// An Optimizer is not safe for concurrent use.
type Optimizer struct {
	adapter *Adapter
	setup   Setup
	opts    *Options
	state   State
}

// NewOptimizer returns an Optimizer that evaluates structures with eval. A nil opts
// means DefaultOptions.
func NewOptimizer(eval qm.Evaluator, setup Setup, opts *Options) *Optimizer {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Optimizer{adapter: NewAdapter(eval, setup.Calc), setup: setup, opts: opts}
}

// State returns the current state of the optimization.
func (O *Optimizer) State() State {
	return O.state
}

func (O *Optimizer) enter(s State, log *zap.Logger) {
	log.Debug("state transition", zap.Stringer("from", O.state), zap.Stringer("to", s))
	O.state = s
}

// Run optimizes start until convergence. ctx is checked before each
// evaluation. When the optimization fails, the error is of kind ErrEvaluationFailed,
// ErrCanceled or ErrMaxIterations, and the returned result contains the points
// evaluated so far. The report, if any, is finished in every case.
func (O *Optimizer) Run(ctx context.Context, start *zmat.Structure) (*Result, error) {
	O.state = Init
	setup := O.setup
	if setup.RunID == "" {
		setup.RunID = uuid.NewString()
	}
	setup.Start = time.Now()
	log := O.opts.Logger().With(zap.String("run", setup.RunID))
	res := &Result{Setup: setup}
	reporter, recorder := O.opts.Reporter(), O.opts.Recorder()
	if reporter != nil {
		if err := reporter.Begin(setup, start); err != nil {
			O.enter(Done, log)
			res.End = time.Now()
			res.Err = errDecorate(err, "Run")
			log.Error("could not start the report", zap.Error(err))
			return res, res.Err
		}
	}
	stepper := O.opts.Stepper()
	if stepper == nil {
		stepper = NewBFGS()
	}
	if r, ok := stepper.(interface{ Reset() }); ok {
		r.Reset()
	}
	fix := O.opts.FixLeadingAtoms()
	hist := NewGradHistory(3 * start.Len())
	energies := make([]float64, 0, 16)
	cur := start
	var err error
	for {
		O.enter(Evaluating, log)
		if ctx.Err() != nil {
			err = Error{"", ErrCanceled, ctx.Err(), []string{"Run"}, true}
			break
		}
		if len(res.Points) >= O.opts.MaxIter() {
			err = Error{fmt.Sprintf("%d evaluations", len(res.Points)), ErrMaxIterations, nil, []string{"Run"}, true}
			break
		}
		t := time.Now()
		var p *Point
		p, err = O.adapter.Evaluate(ctx, cur)
		if err == nil && !p.Finite() {
			err = Error{"non-finite energy or gradient", ErrEvaluationFailed, nil, []string{"Run"}, true}
		}
		if recorder != nil {
			recorder.Evaluation(time.Since(t), err)
		}
		if err != nil {
			if ctx.Err() != nil {
				err = Error{"", ErrCanceled, err, []string{"Run"}, true}
			}
			err = errDecorate(err, "Run")
			break
		}
		if fix {
			freezeLeading(p.IntGrad)
		}
		res.Points = append(res.Points, p)
		energies = append(energies, p.Energy)
		hist.Push(p.IntGrad)
		n := len(res.Points)
		delta := res.Delta(n - 1)
		log.Info("iteration", zap.Int("n", n), zap.Float64("energy", p.Energy), zap.Float64("delta", delta), zap.Float64("grad_max", p.GradMax()))
		if recorder != nil {
			recorder.Iteration(p, delta)
		}
		if reporter != nil {
			if err = reporter.Iteration(n, p, delta); err != nil {
				err = errDecorate(err, "Run")
				break
			}
		}
		O.enter(ConvergenceCheck, log)
		if Converged(energies, p.CartGrad, O.opts.EnergyTol(), O.opts.GradientTol()) {
			res.Converged = true
			break
		}
		O.enter(Stepping, log)
		var d []float64
		d, err = stepper.Step(hist.Window())
		if err != nil {
			err = errDecorate(err, "Run")
			break
		}
		cur, err = ApplyStep(cur, d, fix)
		if err != nil {
			err = errDecorate(err, "Run")
			break
		}
	}
	O.enter(Done, log)
	res.End = time.Now()
	res.Err = err
	if recorder != nil {
		recorder.Finish(res)
	}
	if reporter != nil {
		if rerr := reporter.Finish(res); rerr != nil {
			log.Warn("could not finish the report", zap.Error(rerr))
			if err == nil {
				err = errDecorate(rerr, "Run")
			}
		}
	}
	if err != nil {
		log.Error("optimization stopped", zap.Error(err), zap.Int("evaluations", len(res.Points)))
		return res, err
	}
	log.Info("optimization converged", zap.Int("evaluations", len(res.Points)), zap.Float64("energy", res.Last().Energy))
	return res, nil
}

// Optimize is a shortcut for NewOptimizer(eval, setup, opts).Run(ctx, start).
func Optimize(ctx context.Context, start *zmat.Structure, eval qm.Evaluator, setup Setup, opts *Options) (*Result, error) {
	return NewOptimizer(eval, setup, opts).Run(ctx, start)
}

// IsCanceled reports whether err comes from a canceled optimization.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

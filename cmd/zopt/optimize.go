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

package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rmera/zopt"
	"github.com/rmera/zopt/config"
	"github.com/rmera/zopt/metrics"
	"github.com/rmera/zopt/qm"
	"github.com/rmera/zopt/report"
	"github.com/rmera/zopt/zmat"
)

// Exit codes of the optimize command.
const (
	exitError    = 1
	exitNotConv  = 2 //stopped at the iteration limit
	exitEvalFail = 3
	exitCanceled = 130
)

func exitCode(err error) int {
	switch {
	case errors.Is(err, zopt.ErrCanceled):
		return exitCanceled
	case errors.Is(err, zopt.ErrMaxIterations):
		return exitNotConv
	case errors.Is(err, zopt.ErrEvaluationFailed):
		return exitEvalFail
	}
	return exitError
}

type optimizeFlags struct {
	config       string
	backend      string
	command      string
	hamiltonian  string
	charge       int
	multiplicity int
	cpus         int
	maxIter      int
	output       string
	metrics      string
	logLevel     string
}

func newOptimizeCmd() *cobra.Command {
	cmd, _ := optimizeCommand()
	return cmd
}

// optimizeCommand returns the optimize command and the variables its flags are bound to.
func optimizeCommand() (*cobra.Command, *optimizeFlags) {
	f := new(optimizeFlags)
	cmd := &cobra.Command{
		Use:   "optimize [zmatrix file]",
		Short: "Optimizes the geometry of a molecule",
		Long: `Reads a Z-matrix, optimizes it and writes a markdown report, a Molden trajectory
and, optionally, an energy plot. Settings come from the YAML file given with --config,
ZOPT_* environment variables and the flags, in increasing order of precedence.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptimize(cmd, f, args[0])
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.config, "config", "c", "", "YAML settings file")
	fl.StringVar(&f.backend, "backend", "", "electronic-structure program (xtb or orca)")
	fl.StringVar(&f.command, "command", "", "executable of the program")
	fl.StringVar(&f.hamiltonian, "hamiltonian", "", "method, e.g. gfn2 or PBE0")
	fl.IntVar(&f.charge, "charge", 0, "total charge")
	fl.IntVar(&f.multiplicity, "multiplicity", 1, "spin multiplicity")
	fl.IntVar(&f.cpus, "cpus", 0, "CPUs for the program (0 lets it decide)")
	fl.IntVar(&f.maxIter, "max-iter", zopt.DefaultMaxIter, "maximum number of evaluations")
	fl.StringVarP(&f.output, "output", "o", "", "base name of the outputs")
	fl.StringVar(&f.metrics, "metrics", "", "write Prometheus metrics to this textfile")
	fl.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	return cmd, f
}

// settings loads the configuration and applies the flags the user set.
func settings(cmd *cobra.Command, f *optimizeFlags) (*config.Config, error) {
	c, err := config.Load(f.config)
	if err != nil {
		return nil, err
	}
	fl := cmd.Flags()
	if fl.Changed("backend") {
		c.Backend = f.backend
	}
	if fl.Changed("command") {
		c.Command = f.command
	}
	if fl.Changed("hamiltonian") {
		c.Hamiltonian = f.hamiltonian
	}
	if fl.Changed("charge") {
		c.Charge = f.charge
	}
	if fl.Changed("multiplicity") {
		c.Multiplicity = f.multiplicity
	}
	if fl.Changed("cpus") {
		c.CPUs = f.cpus
	}
	if fl.Changed("max-iter") {
		c.Optimizer.MaxIter = f.maxIter
	}
	if fl.Changed("output") {
		c.Output.Base = f.output
	}
	if fl.Changed("metrics") {
		c.Output.Metrics = f.metrics
	}
	if fl.Changed("log-level") {
		c.Logging.Level = f.logLevel
	}
	return c, c.Validate()
}

// newHandle returns the program handle for the settings.
func newHandle(c *config.Config) (qm.Handle, error) {
	h, err := qm.NewHandle(c.Backend)
	if err != nil {
		return nil, err
	}
	type configurable interface {
		SetCommand(string)
		SetnCPU(int)
	}
	if ch, ok := h.(configurable); ok {
		if c.Command != "" {
			ch.SetCommand(c.Command)
		}
		if c.CPUs > 0 {
			ch.SetnCPU(c.CPUs)
		}
	}
	return h, nil
}

func runOptimize(cmd *cobra.Command, f *optimizeFlags, input string) error {
	c, err := settings(cmd, f)
	if err != nil {
		return err
	}
	log, err := c.Logger()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck
	start, err := zmat.ReadFile(input)
	if err != nil {
		return err
	}
	h, err := newHandle(c)
	if err != nil {
		return err
	}
	paths := c.Paths(input)
	runner := qm.NewRunner(h, paths.Input, log)
	opts := c.Options(log)
	opts.Reporter(report.NewSession(paths, log))
	var rec *metrics.Recorder
	if c.Output.Metrics != "" {
		rec = metrics.NewRecorder()
		opts.Recorder(rec)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log.Info("starting optimization", zap.String("input", input), zap.String("backend", c.Backend),
		zap.Int("atoms", start.Len()), zap.String("report", paths.Report))
	res, err := zopt.Optimize(ctx, start, runner, c.Setup(), opts)
	if rec != nil {
		if merr := rec.WriteTextfile(c.Output.Metrics); merr != nil {
			log.Warn("writing metrics", zap.Error(merr))
		}
	}
	if res != nil {
		log.Info("optimization finished", zap.Bool("converged", res.Converged),
			zap.Int("evaluations", len(res.Points)), zap.Int("program_calls", runner.Calls()))
		if last := res.Last(); last != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d evaluations, final energy %.10f Hartree, converged: %t\n",
				paths.Report, len(res.Points), last.Energy, res.Converged)
		}
	}
	return err
}

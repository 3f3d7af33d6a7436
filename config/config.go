/*
 * config.go, part of zopt.
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

//Package config loads the settings of an optimization from a YAML file,
//with overrides from ZOPT_* environment variables.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/rmera/zopt"
	"github.com/rmera/zopt/qm"
	"github.com/rmera/zopt/report"
)

// EnvPrefix is the prefix of the environment variables read by Load.
const EnvPrefix = "ZOPT_"

// Config holds all the settings of an optimization.
type Config struct {
	Title        string  `yaml:"title" env:"TITLE"`
	Backend      string  `yaml:"backend" env:"BACKEND" validate:"oneof=xtb orca"`
	Command      string  `yaml:"command" env:"COMMAND"` //executable of the backend, if not the default one
	Hamiltonian  string  `yaml:"hamiltonian" env:"HAMILTONIAN"`
	Basis        string  `yaml:"basis" env:"BASIS"`
	Charge       int     `yaml:"charge" env:"CHARGE"`
	Multiplicity int     `yaml:"multiplicity" env:"MULTIPLICITY" validate:"gte=1"`
	Dielectric   float64 `yaml:"dielectric" env:"DIELECTRIC" validate:"gte=0"`
	RI           bool    `yaml:"ri" env:"RI"`
	Dispersion   string  `yaml:"dispersion" env:"DISPERSION"`
	Others       string  `yaml:"others" env:"OTHERS"`
	Memory       int     `yaml:"memory" env:"MEMORY" validate:"gte=0"`
	CPUs         int     `yaml:"cpus" env:"CPUS" validate:"gte=0"`

	Optimizer struct {
		EnergyTol       float64 `yaml:"energy_tol" env:"ENERGY_TOL" validate:"gt=0"`
		GradientTol     float64 `yaml:"gradient_tol" env:"GRADIENT_TOL" validate:"gt=0"`
		MaxIter         int     `yaml:"max_iter" env:"MAX_ITER" validate:"gt=0"`
		MaxStep         float64 `yaml:"max_step" env:"MAX_STEP" validate:"gt=0"`
		Stepper         string  `yaml:"stepper" env:"STEPPER" validate:"oneof=bfgs sd"`
		FixLeadingAtoms bool    `yaml:"fix_leading_atoms" env:"FIX_LEADING_ATOMS"`
	} `yaml:"optimizer" envPrefix:"OPT_"`

	Output struct {
		Base       string `yaml:"base" env:"BASE"`
		Report     string `yaml:"report" env:"REPORT"`
		Trajectory string `yaml:"trajectory" env:"TRAJECTORY"`
		Input      string `yaml:"input" env:"INPUT"`
		Plot       string `yaml:"plot" env:"PLOT"`
		Metrics    string `yaml:"metrics" env:"METRICS"` //prometheus textfile
	} `yaml:"output" envPrefix:"OUTPUT_"`

	Logging struct {
		Level  string `yaml:"level" env:"LEVEL" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" env:"FORMAT" validate:"oneof=json console"`
		Output string `yaml:"output" env:"OUTPUT" validate:"required"`
	} `yaml:"logging" envPrefix:"LOG_"`
}

// Default returns the default settings: GFN2-xTB, neutral singlet, the default
// tolerances and a BFGS optimizer.
func Default() *Config {
	c := &Config{
		Title:        "zopt optimization",
		Backend:      "xtb",
		Hamiltonian:  "gfn2",
		Multiplicity: 1,
	}
	c.Optimizer.EnergyTol = zopt.DefaultEnergyTol
	c.Optimizer.GradientTol = zopt.DefaultGradientTol
	c.Optimizer.MaxIter = zopt.DefaultMaxIter
	c.Optimizer.MaxStep = zopt.DefaultMaxStep
	c.Optimizer.Stepper = "bfgs"
	c.Logging.Level = "info"
	c.Logging.Format = "console"
	c.Logging.Output = "stderr"
	return c
}

// Load returns the default settings, overridden by those in the YAML file path,
// if path is not empty, and then by the environment. The result is validated.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the settings.
func (C *Config) Validate() error {
	if err := validate.Struct(C); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, v := range verrs {
				msgs[i] = fmt.Sprintf("%s fails %q (got %v)", v.Namespace(), v.Tag(), v.Value())
			}
			return fmt.Errorf("config: invalid settings: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Calc returns the settings for the electronic-structure calculations.
func (C *Config) Calc() qm.Calc {
	return qm.Calc{
		Method:     C.Hamiltonian,
		Basis:      C.Basis,
		Charge:     C.Charge,
		Multi:      C.Multiplicity,
		Dielectric: C.Dielectric,
		RI:         C.RI,
		Dispersion: C.Dispersion,
		Others:     C.Others,
		Memory:     C.Memory,
	}
}

// Setup returns the description of the optimization for reports.
func (C *Config) Setup() zopt.Setup {
	return zopt.Setup{Title: C.Title, Backend: C.Backend, Calc: C.Calc()}
}

// Paths returns the outputs. Paths not given explicitly are derived from the
// base name, which defaults to the name of the input file without its extension.
func (C *Config) Paths(input string) report.Paths {
	base := C.Output.Base
	if base == "" {
		base = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}
	p := report.DefaultPaths(base)
	if C.Output.Report != "" {
		p.Report = C.Output.Report
	}
	if C.Output.Trajectory != "" {
		p.Trajectory = C.Output.Trajectory
	}
	if C.Output.Input != "" {
		p.Input = C.Output.Input
	}
	p.Plot = C.Output.Plot
	return p
}

// Stepper returns a new step generator for one optimization.
func (C *Config) Stepper() zopt.Stepper {
	if C.Optimizer.Stepper == "sd" {
		return zopt.SteepestDescent{MaxStep: C.Optimizer.MaxStep}
	}
	return zopt.NewBFGS(C.Optimizer.MaxStep)
}

// Options returns the optimization options, with a new Stepper and the given logger.
func (C *Config) Options(log *zap.Logger) *zopt.Options {
	o := zopt.DefaultOptions()
	o.EnergyTol(C.Optimizer.EnergyTol)
	o.GradientTol(C.Optimizer.GradientTol)
	o.MaxIter(C.Optimizer.MaxIter)
	o.FixLeadingAtoms(C.Optimizer.FixLeadingAtoms)
	o.Stepper(C.Stepper())
	o.Logger(log)
	return o
}

// Logger builds a zap logger from the logging settings.
func (C *Config) Logger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(C.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	zc := zap.NewProductionConfig()
	if C.Logging.Format == "console" {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	zc.Level = level
	zc.OutputPaths = []string{C.Logging.Output}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}

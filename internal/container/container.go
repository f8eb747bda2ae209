package container

import (
	"statcalc/adapters/excel"
	"statcalc/adapters/stats/dist"
	"statcalc/app"
	"statcalc/internal"
	"statcalc/internal/config"
	"statcalc/internal/solver"
	"statcalc/ports"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Numerics
	Distributions ports.DistributionProvider
	Solver        *solver.Solver

	// Output
	Plotter ports.Plotter

	// Services
	Calculators *app.CalculatorService
}

// New wires the dependency graph for cfg.
func New(cfg *config.Config, logger *internal.Logger) *Container {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	c := &Container{Config: cfg, Logger: logger}

	c.Distributions = dist.NewProvider()
	c.Solver = solver.New(c.Distributions, solver.Options{
		Tolerance:     cfg.Numeric.PowerTolerance,
		MaxIterations: cfg.Numeric.MaxIterations,
		MaxSampleSize: cfg.Numeric.MaxSampleSize,
		ExactLimit:    cfg.Numeric.ExactLimit,
	})
	c.Plotter = excel.NewChartPlotter(cfg.Output.GraphDir, logger)
	c.Calculators = app.NewCalculatorService(c.Solver, c.Plotter, logger)

	logger.Debug("container ready (exact limit %d, graph dir %s)", cfg.Numeric.ExactLimit, cfg.Output.GraphDir)
	return c
}

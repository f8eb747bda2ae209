package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"statcalc/adapters/excel"
	"statcalc/domain/core"
	"statcalc/domain/formula"
	"statcalc/internal"
	"statcalc/internal/errors"
	"statcalc/internal/parse"
	"statcalc/internal/selector"
	"statcalc/internal/solver"
	"statcalc/ports"
)

// CalculatorService runs one calculator invocation end to end: parse,
// load tabular data, select the formula family, solve and plot.
type CalculatorService struct {
	solver  *solver.Solver
	plotter ports.Plotter
	logger  *internal.Logger
}

// Invocation is one request to a calculator.
type Invocation struct {
	Calculator string
	Args       []string
	// Graph asks for the point sequence to be handed to the plotter.
	Graph bool
	// Remote invocations may not read files from the local disk.
	Remote bool
}

// Outcome is the solved invocation plus what the service did around it.
type Outcome struct {
	ID        core.InvocationID
	Result    formula.Result
	Ignored   []string
	Graph     string
	RuntimeMs int64
}

// NewCalculatorService creates a service. plotter may be nil when graphs
// are not supported by the caller.
func NewCalculatorService(s *solver.Solver, plotter ports.Plotter, logger *internal.Logger) *CalculatorService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &CalculatorService{solver: s, plotter: plotter, logger: logger}
}

// Run executes inv. Every failure is returned before any result exists.
func (s *CalculatorService) Run(ctx context.Context, inv Invocation) (*Outcome, error) {
	startTime := time.Now()
	id := core.NewInvocationID()
	log := s.logger.With("invocation", id.String())

	info, err := LookupCalculator(inv.Calculator)
	if err != nil {
		return nil, err
	}
	log.Debug("calculator %s with %d arguments", info.Name, len(inv.Args))

	req, ignored, err := parse.Args(info.Name, inv.Args)
	if err != nil {
		return nil, err
	}
	req.Graph = inv.Graph
	for _, arg := range ignored {
		log.Warn("ignoring unknown argument %q for %s", arg, info.Name)
	}

	if req.File != "" && inv.Remote {
		return nil, errors.InvalidInput("file arguments are only accepted on the command line")
	}
	if req.File != "" {
		if req, err = s.loadColumns(req, log); err != nil {
			return nil, err
		}
	}

	req, warnings, err := selector.Normalize(req)
	if err != nil {
		return nil, err
	}

	family, err := selector.Select(req)
	if err != nil {
		return nil, err
	}
	log.Debug("selected family %s", family)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := s.solver.Solve(family, req)
	if err != nil {
		log.Debug("solve failed: %v", err)
		return nil, err
	}
	res.Warnings = append(warnings, res.Warnings...)

	outcome := &Outcome{ID: id, Result: res, Ignored: ignored}

	if inv.Graph {
		path, err := s.plot(ctx, info, res)
		if err != nil {
			return nil, err
		}
		outcome.Graph = path
	}

	outcome.RuntimeMs = time.Since(startTime).Milliseconds()
	log.Debug("finished in %dms", outcome.RuntimeMs)
	return outcome, nil
}

// loadColumns fills the data series of req from its file.
func (s *CalculatorService) loadColumns(req formula.Request, log *internal.Logger) (formula.Request, error) {
	refs := columnRefs(req)
	series, err := excel.LoadColumns(req.File, log, refs...)
	if err != nil {
		return req, err
	}

	req.X = series[0].Values
	if len(series) > 1 {
		req.Y = series[1].Values
	}
	log.Debug("loaded %d rows from %s (%s)", len(req.X), req.File, seriesNames(series))
	return req, nil
}

// columnRefs defaults to the first column, or the first two for correlation.
func columnRefs(req formula.Request) []string {
	want := 1
	if req.Calculator == formula.CalcCorrelation {
		want = 2
	}
	refs := make([]string, want)
	for i := range refs {
		refs[i] = fmt.Sprint(i)
		if i < len(req.Columns) && strings.TrimSpace(req.Columns[i]) != "" {
			refs[i] = req.Columns[i]
		}
	}
	return refs
}

func seriesNames(series []excel.Series) string {
	names := make([]string, len(series))
	for i, s := range series {
		names[i] = s.Name
	}
	return strings.Join(names, ", ")
}

func (s *CalculatorService) plot(ctx context.Context, info CalculatorInfo, res formula.Result) (string, error) {
	if !info.Plottable || res.Points == nil {
		return "", errors.InvalidInput(fmt.Sprintf("%s has no distribution to plot", info.Name))
	}
	if s.plotter == nil {
		return "", errors.InternalError("no plotter configured")
	}

	highlight := 0
	if k, ok := res.Vars.Number(formula.SymK); ok {
		if v, isInt := k.Int64(); isInt {
			highlight = int(v)
		}
	}
	return s.plotter.Plot(ctx, ports.PlotRequest{
		Title:     plotTitle(res),
		Name:      string(info.Name),
		Points:    res.Points,
		Highlight: highlight,
	})
}

func plotTitle(res formula.Result) string {
	var parts []string
	for _, sym := range res.Family.Symbols() {
		if sym == formula.SymK {
			continue
		}
		if n, ok := res.Vars.Number(sym); ok {
			parts = append(parts, fmt.Sprintf("%s=%s", sym, n))
		}
	}
	return fmt.Sprintf("%s(%s)", res.Calculator, strings.Join(parts, ", "))
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"statcalc/app"
	"statcalc/internal"
	"statcalc/internal/api"
	"statcalc/internal/config"
	"statcalc/internal/container"
	"statcalc/internal/errors"
	"statcalc/internal/report"

	"github.com/spf13/cobra"
)

// cli carries what the persistent pre-run sets up for every subcommand.
type cli struct {
	format  string
	verbose bool

	container *container.Container
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Fehler: %v\n", err)
		return errors.ExitCode(err)
	}
	return 0
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "statcalc",
		Short: "Statistical calculators with exact arithmetic",
		Long: `statcalc solves the classic one-sample formulas for whichever value is missing.

Arguments are order-independent key=value tokens. A value of "-" marks the
unknown to solve for; numbers may be integers, decimals or fractions (1/3).

Numeric settings are read from the environment (or a .env file):
- STATCALC_POWER_TOLERANCE, STATCALC_MAX_ITERATIONS, STATCALC_MAX_SAMPLE_SIZE
- STATCALC_EXACT_LIMIT, STATCALC_GRAPH_DIR, STATCALC_REPORT_FORMAT
- LOG_LEVEL (ERROR|WARN|INFO|DEBUG|TRACE)`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.container != nil {
				_ = c.container.Logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&c.format, "format", "f", "", "Report format: text, markdown, html or json (default from STATCALC_REPORT_FORMAT)")
	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")

	for _, info := range app.ListCalculators() {
		rootCmd.AddCommand(c.newCalculatorCmd(info))
	}
	rootCmd.AddCommand(newListCmd(), c.newServeCmd())

	return rootCmd
}

func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level := internal.ParseLogLevel(os.Getenv("LOG_LEVEL"), internal.LogLevelWarn)
	if c.verbose {
		level = internal.LogLevelDebug
	}
	logger := internal.NewLoggerTo(cmd.ErrOrStderr(), level)

	c.container = container.New(cfg, logger)
	return nil
}

func (c *cli) newCalculatorCmd(info app.CalculatorInfo) *cobra.Command {
	var graph bool

	cmd := &cobra.Command{
		Use:     string(info.Name) + " key=value...",
		Aliases: info.Aliases,
		Short:   info.Description,
		Example: "  statcalc " + info.Usage,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := c.reportFormat()
			if err != nil {
				return err
			}

			out, err := c.container.Calculators.Run(cmd.Context(), app.Invocation{
				Calculator: string(info.Name),
				Args:       args,
				Graph:      graph,
			})
			if err != nil {
				return err
			}

			return report.Render(cmd.OutOrStdout(), format, report.Report{
				ID:     out.ID,
				Result: out.Result,
				Graph:  out.Graph,
			})
		},
	}

	if info.Plottable {
		cmd.Flags().BoolVarP(&graph, "graph", "g", false, "Write the distribution table and charts to an .xlsx workbook")
	}
	return cmd
}

func (c *cli) reportFormat() (report.Format, error) {
	if c.format != "" {
		return report.ParseFormat(c.format)
	}
	return report.ParseFormat(c.container.Config.Output.ReportFormat)
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the calculators and their usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, info := range app.ListCalculators() {
				fmt.Fprintf(w, "%s\t%s\n", info.Name, info.Description)
				fmt.Fprintf(w, "\t  %s\n", strings.TrimSpace(info.Usage))
			}
			return w.Flush()
		},
	}
}

func (c *cli) newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculators as a JSON API",
		Long: `Start an HTTP server exposing every calculator:

  GET  /api/v1/calculators
  POST /api/v1/calculators/:name   {"args": ["x=85", "mu=100", "sigma=15"]}

The number of calculations in flight is capped by MAX_CONCURRENT_CALCS.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.container.Config
			if port == "" {
				port = cfg.Server.Port
			}

			handler := api.NewCalculatorHandler(c.container.Calculators, cfg.Server.MaxConcurrentCalcs, c.container.Logger)
			server := api.NewServer(handler, cfg.Server.GinMode, c.container.Logger)
			return server.Start(cmd.Context(), ":"+port)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (default from PORT)")
	return cmd
}

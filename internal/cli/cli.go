// Package cli provides the cobra command tree for contract-desk.
//
// With no subcommand the root command starts the terminal UI. Every other
// subcommand is headless: it builds the same service the TUI and API use and
// runs operations through the command executor, printing results to stdout
// and notices to stderr.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dpshade/contract-desk/internal/commands"
	"github.com/dpshade/contract-desk/internal/config"
	"github.com/dpshade/contract-desk/internal/errors"
	"github.com/dpshade/contract-desk/internal/library"
	"github.com/dpshade/contract-desk/internal/logging"
	"github.com/dpshade/contract-desk/internal/metrics"
	"github.com/dpshade/contract-desk/internal/service"
)

// mode decides how the service and logger are built for a subcommand
type mode int

const (
	modeOneShot mode = iota // simulated delays off, console logs on stderr
	modeTUI                 // configured delays, file logs
	modeServe               // configured delays, JSON logs on stderr, metrics
)

const modeAnnotation = "contract-desk/mode"

// TUIRunner starts the interactive interface
type TUIRunner func(ctx context.Context, svc *service.Service, logger *zap.Logger) error

// CLI holds the state shared by every subcommand
type CLI struct {
	version string
	runTUI  TUIRunner
	out     io.Writer
	errOut  io.Writer

	verbose    bool
	port       int
	libraryDir string

	cfg      *config.Config
	logger   *zap.Logger
	metrics  *metrics.Metrics
	service  *service.Service
	executor *commands.CommandExecutor
	errors   *errors.CLIErrorHandler
}

// Option customizes a CLI
type Option func(*CLI)

// WithOutput redirects stdout and stderr, mainly for tests
func WithOutput(out, errOut io.Writer) Option {
	return func(c *CLI) {
		c.out = out
		c.errOut = errOut
	}
}

// NewRootCommand builds the command tree. runTUI may be nil when no terminal UI is linked.
func NewRootCommand(version string, runTUI TUIRunner, opts ...Option) *cobra.Command {
	c := &CLI{
		version: version,
		runTUI:  runTUI,
		out:     os.Stdout,
		errOut:  os.Stderr,
	}
	for _, opt := range opts {
		opt(c)
	}

	root := &cobra.Command{
		Use:   "contract-desk",
		Short: "Draft contracts, check readiness and review risk",
		Long: `contract-desk drafts contracts from templates and a clause library,
checks matter readiness against playbook guardrails and produces a risk
report for uploaded contracts.

Run without a command to open the interactive desk.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		Annotations:       map[string]string{modeAnnotation: "tui"},
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.runTUI == nil {
				return cmd.Help()
			}
			return c.runTUI(cmd.Context(), c.service, c.logger)
		},
	}
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	flags := root.PersistentFlags()
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Log at debug level and show error details")
	flags.IntVar(&c.port, "port", 0, "HTTP port (overrides config and "+config.EnvPort+")")
	flags.StringVar(&c.libraryDir, "library", "", "Directory of library overrides")

	root.AddCommand(
		c.draftCommand(),
		c.draftsCommand(),
		c.clausesCommand(),
		c.readinessCommand(),
		c.reviewCommand(),
		c.positionCommand(),
		c.serveCommand(),
		c.versionCommand(),
	)
	return root
}

// Execute runs the root command and reports errors through the CLI error handler
func Execute(ctx context.Context, version string, runTUI TUIRunner) int {
	c := &CLI{}
	root := NewRootCommand(version, runTUI, func(cli *CLI) { c = cli })
	if err := root.ExecuteContext(ctx); err != nil {
		handler := c.errors
		if handler == nil {
			handler = errors.NewCLIErrorHandler(c.verbose, c.logger)
		}
		fmt.Fprintln(c.errOut, handler.HandleError(err))
		return 1
	}
	return 0
}

func commandMode(cmd *cobra.Command) mode {
	for cur := cmd; cur != nil; cur = cur.Parent() {
		switch cur.Annotations[modeAnnotation] {
		case "tui":
			if cur == cmd {
				return modeTUI
			}
		case "serve":
			return modeServe
		}
	}
	return modeOneShot
}

// setup loads configuration, then builds the logger and the service
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" || cmd.Name() == "help" {
		return nil
	}

	cfg, err := config.Load("")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidInput, "Failed to load configuration")
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = c.port
	}
	if cmd.Flags().Changed("library") {
		cfg.LibraryDir = c.libraryDir
	}
	c.cfg = cfg

	m := commandMode(cmd)
	var logger *zap.Logger
	switch m {
	case modeTUI:
		logger, err = logging.ForTUI(cfg.LogDir(), cfg.LogLevel, c.verbose)
	case modeServe:
		logger, err = logging.New(logging.Options{Level: cfg.LogLevel, Verbose: c.verbose})
	default:
		logger, err = logging.New(logging.Options{Level: cfg.LogLevel, Verbose: c.verbose, Dev: true})
	}
	if err != nil {
		return err
	}
	c.logger = logger
	c.errors = errors.NewCLIErrorHandler(c.verbose, logger)

	lib, err := c.loadLibrary()
	if err != nil {
		return err
	}

	opts := service.Options{
		Library:            lib,
		Logger:             logger,
		DraftDelay:         cfg.Delays.Draft,
		AnalysisDelay:      cfg.Delays.Analysis,
		DefaultRiskProfile: cfg.DefaultRiskProfile,
	}
	if m == modeOneShot {
		opts.DraftDelay, opts.AnalysisDelay = -1, -1
	}
	if m == modeServe {
		c.metrics = metrics.New()
		opts.Metrics = c.metrics
	}

	svc, err := service.NewService(opts)
	if err != nil {
		return err
	}
	c.service = svc
	c.executor = commands.NewCommandExecutor(svc)
	return nil
}

func (c *CLI) loadLibrary() (*library.Library, error) {
	dir := c.cfg.ResolvedLibraryDir()
	if dir == "" {
		lib, err := library.Default()
		if err != nil {
			return nil, errors.LibraryError("load", err)
		}
		return lib, nil
	}
	lib, err := library.LoadWithOverrides(dir)
	if err != nil {
		return nil, errors.LibraryError("load "+dir, err)
	}
	c.logger.Debug("library loaded", zap.String("dir", dir), zap.Int("clauses", len(lib.Clauses)))
	return lib, nil
}

// run executes a command and converts a failed result into an error
func (c *CLI) run(ctx context.Context, name string, params map[string]any) (*commands.CommandResult, error) {
	result, err := c.executor.Execute(ctx, name, params)
	if err != nil {
		return nil, errors.CancelledError(name, err)
	}
	if !result.Success {
		if result.Error != nil {
			return nil, result.Error.AppError()
		}
		return nil, errors.InternalError(name + " failed")
	}
	return result, nil
}

// notify prints a command notice to stderr
func (c *CLI) notify(result *commands.CommandResult) {
	if result.Message == "" {
		return
	}
	fmt.Fprintln(c.errOut, noticeStyle(result.Notice).Render(result.Message))
}

func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(c.out, "contract-desk version %s\n", c.version)
		},
	}
}

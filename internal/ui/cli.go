package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/spotgrid/internal/config"
	"github.com/javiermolinar/spotgrid/internal/db"
	"github.com/javiermolinar/spotgrid/internal/report"
	"github.com/javiermolinar/spotgrid/internal/schedule"
	"github.com/javiermolinar/spotgrid/internal/tui"
)

const appName = "spotgrid"

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	repo       schedule.Repository
	ownsRepo   bool
	config     *config.Config
	configPath string
	logger     *runtimeLogger
	root       *cobra.Command
	stdout     io.Writer
	stderr     io.Writer
	now        func() time.Time

	// flags
	debug bool
	dsn   string
	month string
}

// NewApp creates the CLI application. A nil repo opens the database named
// by the config on first use.
func NewApp(repo schedule.Repository, cfg *config.Config) *App {
	a := &App{
		repo:       repo,
		config:     cfg,
		configPath: config.DefaultConfigPath(),
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		now:        time.Now,
	}

	a.root = &cobra.Command{
		Use:   appName,
		Short: "Commercial break scheduling for broadcast traffic",
		Long: `spotgrid schedules commercial spots into a month of breaks.

The scheduler grid shows every break of the month, one column per day.
Open a break to edit its spots, then export the day's Program Flow as a
PDF for playout.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runTUI(cmd.Context())
		},
	}

	flags := a.root.PersistentFlags()
	flags.BoolVar(&a.debug, "debug", false, "Write a debug event trace to "+tui.DebugLogPath)
	flags.StringVar(&a.dsn, "db", "", "SQLite database path (overrides storage.dsn)")
	flags.StringVar(&a.month, "month", "", "Month to open, YYYY-MM (overrides schedule.month)")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.serveCmd())
	a.root.AddCommand(a.reportCmd())
	a.root.AddCommand(a.showCmd())

	return a
}

// SetOutput redirects command output.
func (a *App) SetOutput(stdout, stderr io.Writer) {
	a.stdout = stdout
	a.stderr = stderr
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
}

// setup applies flag overrides and starts the runtime logger.
func (a *App) setup(cmd *cobra.Command) error {
	if a.dsn != "" {
		a.config.Storage.DSN = a.dsn
	}
	if a.month != "" {
		if _, err := schedule.ParseMonth(a.month); err != nil {
			return fmt.Errorf("--month: %w", err)
		}
		a.config.Schedule.Month = a.month
	}
	if a.logger != nil {
		return nil
	}
	logger, err := newRuntimeLogger(a.stderr, a.config.Logging)
	if err != nil {
		return fmt.Errorf("configure runtime logger: %w", err)
	}
	a.logger = logger
	a.logger.Debug("command start", "command", cmd.Name(), "dsn", a.config.Storage.DSN)
	return nil
}

// repository opens the configured database on first use.
func (a *App) repository() (schedule.Repository, error) {
	if a.repo != nil {
		return a.repo, nil
	}
	a.logger.Info("opening sqlite repository", "dsn", a.config.Storage.DSN)
	repo, err := db.New(a.config.Storage.DSN)
	if err != nil {
		a.logger.Error("sqlite open failed", "dsn", a.config.Storage.DSN, "err", err)
		return nil, fmt.Errorf("opening database: %w", err)
	}
	a.repo = repo
	a.ownsRepo = true
	return repo, nil
}

// reportService builds the report service for the configured mode. A
// non-empty serverURL forces the remote service.
func (a *App) reportService(serverURL string) (report.Service, error) {
	mode := a.config.Report.Mode
	if serverURL == "" {
		serverURL = a.config.Report.ServerURL
	} else {
		mode = config.ReportRemote
	}

	switch mode {
	case config.ReportLocal:
		return report.NewLocalService(report.PDFGenerator{Author: appName}, nil), nil
	case config.ReportRemote:
		svc, err := report.NewRemoteService(serverURL, nil)
		if err != nil {
			return nil, fmt.Errorf("report server %q: %w", serverURL, err)
		}
		return svc, nil
	default:
		return report.UnavailableService{}, nil
	}
}

func (a *App) runTUI(ctx context.Context) error {
	repo, err := a.repository()
	if err != nil {
		return err
	}
	svc, err := a.reportService("")
	if err != nil {
		return err
	}
	if !svc.Available(ctx) {
		a.logger.Warn("report service unavailable", "mode", a.config.Report.Mode)
	}

	// The TUI owns the terminal; only the file sink keeps logging.
	a.logger.SetConsoleEnabled(false)
	defer a.logger.SetConsoleEnabled(true)

	a.logger.Info("starting tui", "month", a.config.Month(), "theme", a.config.UI.Theme)
	return tui.RunWithDebug(repo, a.config, a.debug,
		tui.WithReportService(svc),
		tui.WithLogger(a.logger),
	)
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s (commit: %s)\n", appName, Version, Commit)
		},
	}
}

// Execute runs the CLI application.
func (a *App) Execute(ctx context.Context) error {
	return fang.Execute(ctx, a.root,
		fang.WithVersion(Version),
		fang.WithCommit(Commit),
	)
}

// Close releases the database and the log file.
func (a *App) Close() error {
	var err error
	if a.ownsRepo && a.repo != nil {
		err = a.repo.Close()
		a.repo = nil
	}
	if closeErr := a.logger.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

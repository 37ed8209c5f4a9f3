package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/spotgrid/internal/config"
	"github.com/javiermolinar/spotgrid/internal/tui/theme"
)

func (a *App) configCmd() *cobra.Command {
	var show bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Interactive configuration management.

If no config file exists, creates one with default values.
Otherwise, displays current config and allows editing.

Example:
  spotgrid config
  spotgrid config --show`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runConfigInteractive(cmd.InOrStdin(), cmd.OutOrStdout(), show)
		},
	}

	cmd.Flags().BoolVar(&show, "show", false, "Print the configuration without editing")
	return cmd
}

func (a *App) runConfigInteractive(in io.Reader, w io.Writer, showOnly bool) error {
	path := a.configPath
	_, _ = fmt.Fprintf(w, "Config file: %s\n\n", path)

	cfg, err := config.LoadFrom(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		_, _ = fmt.Fprintln(w, "No config file found. Creating with default values...")
		if err := cfg.SaveTo(path); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		_, _ = fmt.Fprintf(w, "Created %s\n\n", path)
	}

	printConfig(w, cfg)
	if showOnly {
		return nil
	}

	reader := bufio.NewReader(in)
	if !promptYesNo(reader, w, "\nWould you like to edit the configuration?") {
		return nil
	}

	cfg.Schedule.Month = promptValue(reader, w, "Month to open, YYYY-MM (empty for current)", cfg.Schedule.Month)
	cfg.Schedule.DefaultSpotSeconds = promptInt(reader, w, "Default spot length (seconds)", cfg.Schedule.DefaultSpotSeconds)
	cfg.Report.Mode = promptChoice(reader, w, "Report mode",
		[]string{config.ReportLocal, config.ReportRemote, config.ReportNone}, cfg.Report.Mode)
	if cfg.Report.Mode == config.ReportRemote {
		cfg.Report.ServerURL = promptValue(reader, w, "Report server", cfg.Report.ServerURL)
	}
	cfg.Report.OutputDir = promptValue(reader, w, "Report output directory", cfg.Report.OutputDir)
	cfg.Report.Title = promptValue(reader, w, "Report title", cfg.Report.Title)
	cfg.Report.LogoPath = promptValue(reader, w, "Report logo (empty for none)", cfg.Report.LogoPath)
	cfg.Storage.DSN = promptValue(reader, w, "Database path (:memory: for none)", cfg.Storage.DSN)
	cfg.Logging.Level = promptChoice(reader, w, "Log level",
		[]string{"debug", "info", "warn", "error"}, cfg.Logging.Level)
	cfg.UI.Theme = promptChoice(reader, w, "UI theme", theme.Available(), cfg.UI.Theme)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.SaveTo(path); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	_, _ = fmt.Fprintln(w, "\nConfiguration saved!")
	return nil
}

func printConfig(w io.Writer, cfg *config.Config) {
	month := cfg.Schedule.Month
	if month == "" {
		month = "(current)"
	}
	_, _ = fmt.Fprintln(w, "Current configuration:")
	_, _ = fmt.Fprintln(w, "──────────────────────")
	_, _ = fmt.Fprintln(w, "[schedule]")
	_, _ = fmt.Fprintf(w, "  month                = %s\n", month)
	_, _ = fmt.Fprintf(w, "  default_spot_seconds = %d\n", cfg.Schedule.DefaultSpotSeconds)
	breaks := make([]string, len(cfg.Schedule.Breaks))
	for i, b := range cfg.Schedule.Breaks {
		breaks[i] = b.Time + " " + b.Zone
	}
	_, _ = fmt.Fprintf(w, "  breaks               = %s\n", strings.Join(breaks, ", "))
	_, _ = fmt.Fprintln(w, "\n[report]")
	_, _ = fmt.Fprintf(w, "  mode                 = %s\n", cfg.Report.Mode)
	if cfg.Report.Mode == config.ReportRemote {
		_, _ = fmt.Fprintf(w, "  server_url           = %s\n", cfg.Report.ServerURL)
	}
	_, _ = fmt.Fprintf(w, "  output_dir           = %s\n", cfg.Report.OutputDir)
	_, _ = fmt.Fprintf(w, "  title                = %s\n", cfg.Report.Title)
	if cfg.Report.LogoPath != "" {
		_, _ = fmt.Fprintf(w, "  logo_path            = %s\n", cfg.Report.LogoPath)
	}
	_, _ = fmt.Fprintln(w, "\n[server]")
	_, _ = fmt.Fprintf(w, "  bind                 = %s\n", cfg.Server.Bind)
	_, _ = fmt.Fprintln(w, "\n[storage]")
	_, _ = fmt.Fprintf(w, "  dsn                  = %s\n", cfg.Storage.DSN)
	_, _ = fmt.Fprintln(w, "\n[logging]")
	_, _ = fmt.Fprintf(w, "  level                = %s\n", cfg.Logging.Level)
	if cfg.Logging.File != "" {
		_, _ = fmt.Fprintf(w, "  file                 = %s\n", cfg.Logging.File)
	}
	_, _ = fmt.Fprintln(w, "\n[ui]")
	_, _ = fmt.Fprintf(w, "  theme                = %s\n", cfg.UI.Theme)
}

func promptYesNo(reader *bufio.Reader, w io.Writer, question string) bool {
	_, _ = fmt.Fprintf(w, "%s [y/N]: ", question)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func promptValue(reader *bufio.Reader, w io.Writer, label, current string) string {
	if current == "" {
		_, _ = fmt.Fprintf(w, "  %s: ", label)
	} else {
		_, _ = fmt.Fprintf(w, "  %s [%s]: ", label, current)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

func promptInt(reader *bufio.Reader, w io.Writer, label string, current int) int {
	for {
		value := promptValue(reader, w, label, strconv.Itoa(current))
		n, err := strconv.Atoi(value)
		if err == nil && n > 0 {
			return n
		}
		_, _ = fmt.Fprintf(w, "  Invalid number %q.\n", value)
		if _, err := reader.Peek(1); err != nil {
			return current
		}
	}
}

func promptChoice(reader *bufio.Reader, w io.Writer, label string, options []string, current string) string {
	list := strings.Join(options, ", ")
	full := fmt.Sprintf("%s (%s)", label, list)
	for {
		value := strings.ToLower(promptValue(reader, w, full, current))
		for _, o := range options {
			if value == o {
				return value
			}
		}
		_, _ = fmt.Fprintf(w, "  Invalid choice %q. Available: %s\n", value, list)
		// Out of input: keep what we had.
		if _, err := reader.Peek(1); err != nil {
			return current
		}
	}
}

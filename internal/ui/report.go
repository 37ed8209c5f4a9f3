package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/spotgrid/internal/report"
	"github.com/javiermolinar/spotgrid/internal/schedule"
)

// Report output formats.
const (
	formatPDF  = "pdf"
	formatText = "text"
)

func (a *App) reportCmd() *cobra.Command {
	var (
		dateFlag  string
		out       string
		serverURL string
		format    string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export the Program Flow of a day",
		Long: `Build the Program Flow of a day and export it as a PDF.

The PDF is rendered locally unless report.mode is "remote" or --server
names a report server. Use --format text to print the flow instead.

Example:
  spotgrid report --date 2025-12-24 --out ~/flow.pdf`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			date, err := a.parseDate(dateFlag)
			if err != nil {
				return err
			}
			switch format {
			case formatPDF, formatText:
			default:
				return fmt.Errorf("--format must be %s or %s, got %q", formatPDF, formatText, format)
			}

			ctx := cmd.Context()
			store, err := a.loadDay(ctx, date)
			if err != nil {
				return err
			}
			data := report.NewFactory(a.config.Report.Title, a.config.Report.EmptyTimeIndicator).ProgramFlow(store, date)

			if format == formatText {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), report.Text(data))
				return nil
			}

			svc, err := a.reportService(serverURL)
			if err != nil {
				return err
			}
			dest := out
			if dest == "" {
				dest = filepath.Join(a.config.Report.OutputDir,
					report.FileName("program-flow-"+date.String(), data, a.now()))
			}
			res := a.exportReport(ctx, svc, data, dest)
			if !res.OK() {
				return resultError(res)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatStats("✓"), res.Message)
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Broadcast day, YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default <report.output_dir>/program-flow-<date>.pdf)")
	cmd.Flags().StringVar(&serverURL, "server", "", "Render on this report server (host:port or URL)")
	cmd.Flags().StringVar(&format, "format", formatPDF, "Output format: pdf or text")
	return cmd
}

// exportReport runs the export as a cancellable job so an interrupt
// abandons the render.
func (a *App) exportReport(ctx context.Context, svc report.Service, data report.Data, dest string) report.Result {
	opts := report.Options{
		FileName:    filepath.Base(dest),
		LogoPath:    a.config.Report.LogoPath,
		Destination: dest,
	}
	runner := report.NewRunner(a.logger)
	h, err := runner.Start(ctx, "export", func(ctx context.Context) report.Result {
		return svc.Export(ctx, data, opts)
	})
	if err != nil {
		return report.Failure("Could not start the report", err)
	}
	res := h.Wait()
	a.logger.Info("report finished", "status", res.Status, "path", res.FilePath)
	return res
}

// loadDay opens the repository, seeds the default breaks and loads the
// month holding date.
func (a *App) loadDay(ctx context.Context, date schedule.Date) (*schedule.Store, error) {
	repo, err := a.repository()
	if err != nil {
		return nil, err
	}
	if _, err := schedule.EnsureBreaks(ctx, repo, a.config.DefaultBreaks()); err != nil {
		return nil, fmt.Errorf("seeding breaks: %w", err)
	}
	return schedule.LoadMonth(ctx, repo, schedule.MonthOf(date))
}

func resultError(res report.Result) error {
	if res.Err != nil {
		return fmt.Errorf("%s: %w", res.Message, res.Err)
	}
	return errors.New(res.Message)
}

package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/spotgrid/internal/schedule"
)

func (a *App) showCmd() *cobra.Command {
	var (
		dateFlag  string
		verbose   bool
		showEmpty bool
		noColor   bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the breaks of a day",
		Long: `Display the breaks of a day with their spot counts and airtime.

Use --verbose to list every spot with its air time. Use 'spotgrid report'
for the printable Program Flow.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if noColor {
				DisableColor()
			}
			date, err := a.parseDate(dateFlag)
			if err != nil {
				return err
			}
			store, err := a.loadDay(cmd.Context(), date)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "=== %s ===\n\n", formatHeader(date.Time().Format("Monday, January 2, 2006")))

			stats := PrintDay(w, store, date, PrintOpts{Verbose: verbose, ShowEmpty: showEmpty})
			if stats.Booked == 0 {
				_, _ = fmt.Fprintln(w, "No spots booked for this day.")
				return nil
			}

			_, _ = fmt.Fprintln(w)
			PrintStats(w, stats)
			_, _ = fmt.Fprintf(w, "Fill: %s %d%%\n", FillBar(stats.Booked, stats.Breaks, 20), stats.FillPercent())
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Day to show, YYYY-MM-DD (default today)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List the spots of every break")
	cmd.Flags().BoolVar(&showEmpty, "all", false, "Include breaks without spots")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable color output")
	return cmd
}

// parseDate parses a YYYY-MM-DD flag value; empty means today.
func (a *App) parseDate(value string) (schedule.Date, error) {
	if value == "" {
		return schedule.DateOf(a.now()), nil
	}
	d, err := schedule.ParseDate(value)
	if err != nil {
		return schedule.Date{}, fmt.Errorf("--date: %w", err)
	}
	return d, nil
}

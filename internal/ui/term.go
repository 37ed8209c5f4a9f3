package ui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/javiermolinar/spotgrid/internal/schedule"
)

// Color definitions for consistent styling across the CLI.
var (
	// Headers: bold
	colorHeader = color.New(color.Bold)

	// Totals: green
	colorStats = color.New(color.FgGreen)

	// Muted: for empty breaks and secondary information
	colorMuted = color.New(color.FgWhite, color.Faint)

	// Failures and warnings
	colorWarn = color.New(color.FgYellow, color.Bold)

	zoneColors = map[schedule.Zone]*color.Color{
		schedule.ZoneMorning: color.New(color.FgYellow),
		schedule.ZoneDay:     color.New(color.FgCyan),
		schedule.ZonePrime:   color.New(color.FgMagenta, color.Bold),
		schedule.ZoneNight:   color.New(color.FgBlue),
	}
)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

// EnableColor enables color output (if terminal supports it).
func EnableColor() {
	color.NoColor = false
}

func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

func formatStats(s string) string {
	return colorStats.Sprint(s)
}

func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}

func formatWarn(s string) string {
	return colorWarn.Sprint(s)
}

// formatZone colors s with the daypart's color.
func formatZone(z schedule.Zone, s string) string {
	if c, ok := zoneColors[z]; ok {
		return c.Sprint(s)
	}
	return s
}

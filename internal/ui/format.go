package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/spotgrid/internal/schedule"
)

// DayStats holds aggregated statistics for the breaks of one day.
type DayStats struct {
	Breaks  int
	Booked  int // breaks with at least one spot
	Spots   int
	Seconds int
	Zones   map[schedule.Zone]schedule.Totals
}

// FillPercent returns the share of breaks that carry spots.
func (s DayStats) FillPercent() int {
	if s.Breaks == 0 {
		return 0
	}
	return s.Booked * 100 / s.Breaks
}

// BusiestZone returns the daypart with the most airtime.
func (s DayStats) BusiestZone() (zone schedule.Zone, seconds int) {
	for _, z := range []schedule.Zone{schedule.ZoneMorning, schedule.ZoneDay, schedule.ZonePrime, schedule.ZoneNight} {
		if t := s.Zones[z]; t.Seconds > seconds {
			zone, seconds = z, t.Seconds
		}
	}
	return zone, seconds
}

// AccumulateStats adds one break cell to stats.
func AccumulateStats(stats *DayStats, b schedule.BreakSlot, cell schedule.CellData) {
	stats.Breaks++
	if cell.Empty() {
		return
	}
	stats.Booked++
	stats.Spots += cell.SpotCount
	stats.Seconds += cell.TotalDurationSeconds

	if stats.Zones == nil {
		stats.Zones = make(map[schedule.Zone]schedule.Totals)
	}
	t := stats.Zones[b.Zone]
	t.Spots += cell.SpotCount
	t.Seconds += cell.TotalDurationSeconds
	stats.Zones[b.Zone] = t
}

// PrintOpts configures break printing.
type PrintOpts struct {
	Verbose         bool // List the spots of every break
	ShowEmpty       bool // Print breaks without spots
	MaxMessageWidth int  // Maximum message width (0 = auto)
}

// CalcMaxMessageWidth calculates the message column width for the terminal.
func (o PrintOpts) CalcMaxMessageWidth(defaultWidth int) int {
	if o.MaxMessageWidth > 0 {
		return o.MaxMessageWidth
	}
	// "      HH:MM:SS  " before, "  M:SS  client" after
	available := termWidth() - 16 - 30
	if available > defaultWidth {
		return available
	}
	return defaultWidth
}

// PrintBreakRow prints one break line: time, zone, spot count and length.
func PrintBreakRow(w io.Writer, b schedule.BreakSlot, cell schedule.CellData) {
	zone := formatZone(b.Zone, fmt.Sprintf("%-8s", b.Zone.Label()))
	if cell.Empty() {
		_, _ = fmt.Fprintf(w, "  %s  %s  %s\n", b.Time, zone, formatMuted("no spots"))
		return
	}
	_, _ = fmt.Fprintf(w, "  %s  %s  %2d %-5s  %s\n",
		formatHeader(b.Time), zone, cell.SpotCount, plural(cell.SpotCount, "spot", "spots"),
		formatStats(schedule.FormatDuration(cell.TotalDurationSeconds)))
}

// PrintSpotRows prints the spots of a break with their air times.
func PrintSpotRows(w io.Writer, b schedule.BreakSlot, cell schedule.CellData, maxWidth int) {
	offset := 0
	for _, it := range cell.Items {
		msg := ansi.Truncate(it.Message, maxWidth, "…")
		_, _ = fmt.Fprintf(w, "      %s  %s  %6s  %s\n",
			formatMuted(schedule.AirTime(b.Time, offset)),
			padRight(msg, maxWidth),
			schedule.FormatDuration(it.DurationSeconds),
			formatMuted(it.ClientName))
		offset += it.DurationSeconds
	}
}

// PrintStats prints the day summary lines.
func PrintStats(w io.Writer, stats DayStats) {
	_, _ = fmt.Fprintf(w, "%s | %s | Breaks booked: %d/%d\n",
		formatStats(fmt.Sprintf("Spots: %d", stats.Spots)),
		formatStats("Airtime: "+schedule.FormatDuration(stats.Seconds)),
		stats.Booked, stats.Breaks)

	if zone, seconds := stats.BusiestZone(); seconds > 0 {
		_, _ = fmt.Fprintf(w, "Busiest daypart: %s (%s)\n",
			formatZone(zone, zone.Label()), schedule.FormatDuration(seconds))
	}
}

// PrintDay prints every break of date from store.
func PrintDay(w io.Writer, store *schedule.Store, date schedule.Date, opts PrintOpts) DayStats {
	var stats DayStats
	width := opts.CalcMaxMessageWidth(32)
	for _, b := range store.Breaks() {
		cell := store.Cell(schedule.Key{BreakID: b.ID, Date: date})
		AccumulateStats(&stats, b, cell)
		if cell.Empty() && !opts.ShowEmpty {
			continue
		}
		PrintBreakRow(w, b, cell)
		if opts.Verbose {
			PrintSpotRows(w, b, cell, width)
		}
	}
	return stats
}

// FillBar creates a visual bar of booked breaks.
func FillBar(booked, total, width int) string {
	if total == 0 {
		return strings.Repeat("░", width)
	}
	filled := booked * width / total
	return formatStats(strings.Repeat("█", filled)) + strings.Repeat("░", width-filled)
}

func padRight(s string, width int) string {
	if gap := width - ansi.StringWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

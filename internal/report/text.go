package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// textMessageWidth is the display width of the message column.
const textMessageWidth = 30

// Text renders the report as plain text for the clipboard and the CLI.
func Text(data Data) string {
	var b strings.Builder
	b.WriteString(data.Title)
	b.WriteString("\n")
	b.WriteString(data.Date)
	b.WriteString("\n")

	totalSpots := 0
	for _, g := range data.TimeSlotGroups {
		totalSpots += g.SpotCount
		fmt.Fprintf(&b, "\n%s  (%d spots, %s)\n", g.TimeLabel, g.SpotCount, g.TotalDuration)
		if len(g.Items) == 0 {
			fmt.Fprintf(&b, "  %s\n", data.EmptyTimeIndicator)
			continue
		}
		for _, it := range g.Items {
			line := fmt.Sprintf("  %s  %s %7s", it.Time, padWidth(it.Message, textMessageWidth), it.Duration)
			if it.Program != "" {
				line += "  " + it.Program
			}
			if it.Notes != "" {
				line += "  [" + it.Notes + "]"
			}
			b.WriteString(strings.TrimRight(line, " "))
			b.WriteString("\n")
		}
	}
	fmt.Fprintf(&b, "\nTotal: %d spots in %d breaks\n", totalSpots, len(data.TimeSlotGroups))
	return b.String()
}

// padWidth pads s with spaces to width terminal cells. Wider text is kept
// whole.
func padWidth(s string, width int) string {
	if w := ansi.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

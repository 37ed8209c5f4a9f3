package tui

import (
	"fmt"
	"strings"

	"github.com/javiermolinar/spotgrid/internal/grid"
	"github.com/javiermolinar/spotgrid/internal/schedule"
	"github.com/javiermolinar/spotgrid/internal/tui/theme"
)

// Scheduler column ids. Day columns use dayColumnPrefix + the date.
const (
	colTime         = "time"
	colZone         = "zone"
	colTotal        = "total"
	dayColumnPrefix = "d"

	dayColumnWidth = 9
)

// schedulerGrid is the breaks-by-days grid of one month.
type schedulerGrid struct {
	state *grid.State[schedule.BreakSlot]
	store *schedule.Store
	month schedule.Month
	days  []schedule.Date
	vp    grid.Viewport
}

func dayColumnID(d schedule.Date) string {
	return dayColumnPrefix + d.String()
}

// newSchedulerGrid lays out store's breaks against the days of month.
func newSchedulerGrid(store *schedule.Store, month schedule.Month, palette *theme.Palette, opts grid.Options) *schedulerGrid {
	g := &schedulerGrid{store: store, month: month, days: month.Days()}

	zoneBg := func(b schedule.BreakSlot) string {
		return string(palette.Zone(string(b.Zone), b.Zone.Color()).Muted)
	}

	columns := []grid.Column[schedule.BreakSlot]{
		{
			ID:       colTime,
			Header:   "Time",
			Width:    6,
			MinWidth: 6,
			MaxWidth: 8,
			Frozen:   grid.FrozenLeft,
			Sortable: true,
			Value:    func(b schedule.BreakSlot) string { return b.Time },
			Compare: func(a, b schedule.BreakSlot) int {
				return schedule.TimeToMinutes(a.Time) - schedule.TimeToMinutes(b.Time)
			},
			Bold: func(schedule.BreakSlot) bool { return true },
		},
		{
			ID:         colZone,
			Header:     "Zone",
			Width:      8,
			MinWidth:   3,
			MaxWidth:   10,
			Resizable:  true,
			Frozen:     grid.FrozenLeft,
			Sortable:   true,
			Value:      func(b schedule.BreakSlot) string { return b.Zone.Label() },
			Background: zoneBg,
		},
	}

	today := schedule.Today()
	for _, day := range g.days {
		columns = append(columns, grid.Column[schedule.BreakSlot]{
			ID:        dayColumnID(day),
			Header:    dayHeader(day, today),
			Width:     dayColumnWidth,
			MinWidth:  6,
			MaxWidth:  16,
			Resizable: true,
			Value: func(b schedule.BreakSlot) string {
				return cellSummary(store.Cell(schedule.Key{BreakID: b.ID, Date: day}))
			},
			Background: func(b schedule.BreakSlot) string {
				if store.Cell(schedule.Key{BreakID: b.ID, Date: day}).Empty() {
					return ""
				}
				return string(palette.Zone(string(b.Zone), b.Zone.Color()).Bg)
			},
			Foreground: func(b schedule.BreakSlot) string {
				key := schedule.Key{BreakID: b.ID, Date: day}
				if store.Cell(key).Empty() {
					return string(palette.FgMuted)
				}
				return string(palette.Zone(string(b.Zone), b.Zone.Color()).Text)
			},
			Render: func(b schedule.BreakSlot, width int) string {
				key := schedule.Key{BreakID: b.ID, Date: day}
				text := cellSummary(store.Cell(key))
				if store.IsModified(key) {
					text = "*" + text
				}
				return text
			},
		})
	}

	columns = append(columns, grid.Column[schedule.BreakSlot]{
		ID:       colTotal,
		Header:   "Month",
		Width:    10,
		MinWidth: 8,
		MaxWidth: 12,
		Frozen:   grid.FrozenRight,
		Value: func(b schedule.BreakSlot) string {
			t := store.BreakTotals(b.ID, month)
			return fmt.Sprintf("%d/%s", t.Spots, schedule.FormatDuration(t.Seconds))
		},
		Bold: func(schedule.BreakSlot) bool { return true },
	})

	g.state = grid.New(columns, opts)
	g.state.SetRowKey(func(b schedule.BreakSlot) string { return fmt.Sprint(b.ID) })
	g.state.SetItems(store.Breaks())
	return g
}

// dayHeader labels a day column, marking today.
func dayHeader(d, today schedule.Date) string {
	label := d.Weekday().String()[:2] + " " + fmt.Sprintf("%02d", d.Day)
	if d == today {
		return label + "•"
	}
	return label
}

// cellSummary is the short text of a cell: spot count and total length.
func cellSummary(c schedule.CellData) string {
	if c.Empty() {
		return "·"
	}
	return fmt.Sprintf("%d·%s", c.SpotCount, schedule.FormatDuration(c.TotalDurationSeconds))
}

// refresh re-reads breaks and cell values after a store mutation.
func (g *schedulerGrid) refresh() {
	g.state.SetItems(g.store.Breaks())
}

// dateOf maps a day column id to its date.
func (g *schedulerGrid) dateOf(columnID string) (schedule.Date, bool) {
	if !strings.HasPrefix(columnID, dayColumnPrefix) {
		return schedule.Date{}, false
	}
	d, err := schedule.ParseDate(strings.TrimPrefix(columnID, dayColumnPrefix))
	if err != nil {
		return schedule.Date{}, false
	}
	return d, true
}

// keyAt returns the cell key at a sorted row and column id.
func (g *schedulerGrid) keyAt(row int, columnID string) (schedule.Key, bool) {
	b, ok := g.state.Item(row)
	if !ok {
		return schedule.Key{}, false
	}
	d, ok := g.dateOf(columnID)
	if !ok {
		return schedule.Key{}, false
	}
	return schedule.Key{BreakID: b.ID, Date: d}, true
}

// focusedKey returns the key of the focused cell when it is a day cell.
func (g *schedulerGrid) focusedKey() (schedule.Key, bool) {
	row, _ := g.state.Focus()
	return g.keyAt(row, g.state.FocusedColumnID())
}

// focusedDate returns the date of the focused day column.
func (g *schedulerGrid) focusedDate() (schedule.Date, bool) {
	return g.dateOf(g.state.FocusedColumnID())
}

// focusDate moves focus onto a day column, keeping the row.
func (g *schedulerGrid) focusDate(d schedule.Date) {
	flat := g.state.Layout().FlatIndex(dayColumnID(d))
	if flat < 0 {
		return
	}
	row, _ := g.state.Focus()
	g.state.SetFocus(max(row, 0), flat)
}

// cellDescription is the clipboard text of a cell.
func (g *schedulerGrid) cellDescription(key schedule.Key) string {
	b, _ := g.store.Break(key.BreakID)
	c := g.store.Cell(key)
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s %s: %d spots, %s\n", key.Date, b.Time, b.Zone.Label(), c.SpotCount, schedule.FormatDuration(c.TotalDurationSeconds))
	for i, it := range c.Items {
		fmt.Fprintf(&sb, "%2d. %s (%s)\n", i+1, it.Message, schedule.FormatDuration(it.DurationSeconds))
	}
	return sb.String()
}

package tui

import (
	"errors"
	"slices"
	"strings"

	"github.com/javiermolinar/spotgrid/internal/grid"
	"github.com/javiermolinar/spotgrid/internal/schedule"
)

// Break detail column ids.
const (
	colAir      = "air"
	colClient   = "client"
	colCode     = "code"
	colMessage  = "message"
	colType     = "type"
	colContract = "contract"
	colFlow     = "flow"
	colDuration = "duration"
)

// breakDetail lists the spots of one (break, date) cell. Every edit goes
// through the store so the cell is marked modified.
type breakDetail struct {
	state *grid.State[schedule.CommercialItem]
	store *schedule.Store
	key   schedule.Key
	brk   schedule.BreakSlot
	vp    grid.Viewport
	err   error
}

func newBreakDetail(store *schedule.Store, key schedule.Key, opts grid.Options) *breakDetail {
	d := &breakDetail{store: store, key: key}
	d.brk, _ = store.Break(key.BreakID)

	opts.ShowRowNumbers = true
	opts.FreezeRowNumbers = true

	columns := []grid.Column[schedule.CommercialItem]{
		{
			ID:       colAir,
			Header:   "Air",
			Width:    9,
			MinWidth: 9,
			MaxWidth: 9,
			Frozen:   grid.FrozenLeft,
			Value:    d.airTime,
		},
		{
			ID:          colClient,
			Header:      "Client",
			Width:       18,
			MinWidth:    8,
			MaxWidth:    40,
			Resizable:   true,
			Reorderable: true,
			Sortable:    true,
			Value:       func(it schedule.CommercialItem) string { return it.ClientName },
		},
		{
			ID:          colCode,
			Header:      "Code",
			Width:       8,
			MinWidth:    4,
			MaxWidth:    16,
			Resizable:   true,
			Reorderable: true,
			Sortable:    true,
			Value:       func(it schedule.CommercialItem) string { return it.ClientCode },
		},
		{
			ID:          colMessage,
			Header:      "Message",
			Width:       28,
			MinWidth:    10,
			MaxWidth:    60,
			Resizable:   true,
			Reorderable: true,
			Sortable:    true,
			Editable:    true,
			Value:       func(it schedule.CommercialItem) string { return it.Message },
			Validate: func(_ schedule.CommercialItem, v string) error {
				if strings.TrimSpace(v) == "" {
					return schedule.ErrEmptyMessage
				}
				return nil
			},
			Bold: func(schedule.CommercialItem) bool { return true },
		},
		{
			ID:          colType,
			Header:      "Type",
			Width:       8,
			MinWidth:    4,
			MaxWidth:    16,
			Resizable:   true,
			Reorderable: true,
			Value:       func(it schedule.CommercialItem) string { return it.Type },
		},
		{
			ID:          colContract,
			Header:      "Contract",
			Width:       10,
			MinWidth:    4,
			MaxWidth:    20,
			Resizable:   true,
			Reorderable: true,
			Value:       func(it schedule.CommercialItem) string { return it.Contract },
		},
		{
			ID:          colFlow,
			Header:      "Flow",
			Width:       8,
			MinWidth:    4,
			MaxWidth:    16,
			Resizable:   true,
			Reorderable: true,
			Value:       func(it schedule.CommercialItem) string { return it.FlowTag },
		},
		{
			ID:       colDuration,
			Header:   "Length",
			Width:    8,
			MinWidth: 8,
			MaxWidth: 10,
			Frozen:   grid.FrozenRight,
			Sortable: true,
			Editable: true,
			Value: func(it schedule.CommercialItem) string {
				return schedule.FormatDuration(it.DurationSeconds)
			},
			Compare: func(a, b schedule.CommercialItem) int {
				return a.DurationSeconds - b.DurationSeconds
			},
			Validate: func(_ schedule.CommercialItem, v string) error {
				_, err := schedule.ParseDuration(v)
				return err
			},
		},
	}

	d.state = grid.New(columns, opts)
	d.state.SetRowKey(func(it schedule.CommercialItem) string { return it.ID })
	d.state.OnValueChange(d.applyEdit)
	d.state.OnRowReorder(d.applyReorder)
	d.refresh()
	return d
}

// refresh reloads the spots of the cell from the store.
func (d *breakDetail) refresh() {
	d.state.SetItems(d.store.Cell(d.key).Items)
}

// indexOf finds an item by id in the store's order.
func (d *breakDetail) indexOf(id string) int {
	for i, it := range d.store.Cell(d.key).Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// airTime is the scheduled start of a spot: the break time plus the
// length of every spot before it.
func (d *breakDetail) airTime(it schedule.CommercialItem) string {
	offset := 0
	for _, other := range d.store.Cell(d.key).Items {
		if other.ID == it.ID {
			break
		}
		offset += other.DurationSeconds
	}
	return schedule.AirTime(d.brk.Time, offset)
}

func (d *breakDetail) applyEdit(item schedule.CommercialItem, columnID, _, value string) {
	idx := d.indexOf(item.ID)
	err := d.store.UpdateSpot(d.key, idx, func(it *schedule.CommercialItem) {
		switch columnID {
		case colMessage:
			it.Message = strings.TrimSpace(value)
		case colDuration:
			if sec, err := schedule.ParseDuration(value); err == nil {
				it.DurationSeconds = sec
			}
		}
	})
	d.err = err
	d.refresh()
}

func (d *breakDetail) applyReorder(from, to int) {
	d.err = d.store.ReorderSpot(d.key, from, to)
	d.refresh()
}

// addSpot appends a spot and focuses it.
func (d *breakDetail) addSpot(seconds int) error {
	if _, err := d.store.AddSpot(d.key, schedule.NewSpot(seconds)); err != nil {
		return err
	}
	d.refresh()
	_, col := d.state.Focus()
	d.state.Click(d.state.RowCount()-1, max(col, 0), grid.Modifiers{})
	return nil
}

// deleteFocused removes the selected spots, or the focused spot when
// nothing is selected. It returns how many spots went.
func (d *breakDetail) deleteFocused() (int, error) {
	rows := d.state.Selected()
	if len(rows) == 0 {
		row, _ := d.state.Focus()
		rows = []int{row}
	}
	var idx []int
	for _, r := range rows {
		if it, ok := d.state.Item(r); ok {
			idx = append(idx, d.indexOf(it.ID))
		}
	}
	if len(idx) == 0 {
		return 0, errNoFocus
	}
	// Highest store index first so earlier indexes stay valid.
	slices.Sort(idx)
	slices.Reverse(idx)
	for _, i := range idx {
		if err := d.store.DeleteSpot(d.key, i); err != nil {
			d.refresh()
			return 0, err
		}
	}
	d.state.ClearSelection()
	d.refresh()
	return len(idx), nil
}

// moveFocused shifts the focused spot by delta rows.
func (d *breakDetail) moveFocused(delta int) error {
	if _, dir := d.state.Sort(); dir != grid.SortNone {
		return grid.ErrSortedRows
	}
	row, _ := d.state.Focus()
	to := row + delta
	if row < 0 || to < 0 || to >= d.state.RowCount() {
		return nil
	}
	d.state.MoveRow(row, to)
	return d.takeErr()
}

// takeErr returns and clears the last store error raised by a callback.
func (d *breakDetail) takeErr() error {
	err := d.err
	d.err = nil
	return err
}

var errNoFocus = errors.New("no spot selected")

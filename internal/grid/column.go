// Package grid implements a headless, virtualized data grid engine: column
// model, sorting, selection, keyboard navigation, inline editing, frozen
// column layout and drag-reorder. Rendering is left to the caller.
package grid

import "strings"

// Frozen pins a column to one side of the scrollable region.
type Frozen int

const (
	FrozenNone Frozen = iota
	FrozenLeft
	FrozenRight
)

// SortDirection is the current sort order of the sort column.
type SortDirection int

const (
	SortNone SortDirection = iota
	SortAscending
	SortDescending
)

// String returns a short label used by renderers.
func (d SortDirection) String() string {
	switch d {
	case SortAscending:
		return "asc"
	case SortDescending:
		return "desc"
	default:
		return "none"
	}
}

// Column describes one grid column. Value must be pure and total over
// every item ever given to the grid.
type Column[T any] struct {
	ID       string
	Header   string
	Width    int
	MinWidth int
	MaxWidth int

	Resizable   bool
	Reorderable bool
	Sortable    bool
	Frozen      Frozen

	Value   func(T) string
	Compare func(a, b T) int // Optional; falls back to Value ordering

	// Optional per-item styling hooks.
	Background func(T) string
	Foreground func(T) string
	Bold       func(T) bool

	// Render replaces the default text cell when set.
	Render func(item T, width int) string

	Editable bool
	Validate func(item T, value string) error
}

// ColumnState is the mutable runtime state of a column.
type ColumnState struct {
	ID      string
	Width   int
	Order   int
	Visible bool
}

// clampWidth keeps a width inside the column bounds and never below zero.
func (c Column[T]) clampWidth(w int) int {
	lo := max(c.MinWidth, 0)
	hi := c.MaxWidth
	if hi <= 0 {
		hi = int(^uint(0) >> 1)
	}
	if hi < lo {
		hi = lo
	}
	return min(max(w, lo), hi)
}

// compare orders two items ascending by this column.
func (c Column[T]) compare(a, b T) int {
	if c.Compare != nil {
		return c.Compare(a, b)
	}
	return strings.Compare(c.Value(a), c.Value(b))
}

// Text returns the display text of an item for this column.
func (c Column[T]) Text(item T) string {
	if c.Value == nil {
		return ""
	}
	return c.Value(item)
}

package grid

import (
	"math"
	"slices"
	"time"
)

// DragConfig holds the drag-reorder thresholds.
type DragConfig struct {
	LongPress       time.Duration // Press duration that starts a drag
	Slop            float64       // Movement that cancels a pending long press
	RowHeight       float64       // Pointer units per row
	ColumnThreshold float64       // Fraction of a neighbour's width a column drag must cross
}

// DefaultDragConfig returns the stock thresholds.
func DefaultDragConfig() DragConfig {
	return DragConfig{
		LongPress:       400 * time.Millisecond,
		Slop:            15,
		RowHeight:       1,
		ColumnThreshold: 0.5,
	}
}

// RowDrag is an active row drag session.
type RowDrag struct {
	From   int
	Offset float64
	Target int
}

// ColumnDrag is an active column drag session.
type ColumnDrag struct {
	ColumnID string
	Offset   float64
	TargetID string
}

// Dragging reports whether a row or column drag is active.
func (s *State[T]) Dragging() bool {
	return s.rowDrag != nil || s.colDrag != nil
}

// RowDrag returns the active row drag session.
func (s *State[T]) RowDrag() (RowDrag, bool) {
	if s.rowDrag == nil {
		return RowDrag{}, false
	}
	return *s.rowDrag, true
}

// StartRowDrag begins dragging the row at index.
func (s *State[T]) StartRowDrag(index int) error {
	if s.Dragging() {
		return ErrDragInProgress
	}
	if index < 0 || index >= len(s.items) {
		return ErrRowOutOfRange
	}
	if s.sortDir != SortNone {
		return ErrSortedRows
	}
	s.editing = nil
	s.rowDrag = &RowDrag{From: index, Target: index}
	return nil
}

// DragRowBy accumulates vertical movement and recomputes the target.
func (s *State[T]) DragRowBy(dy float64) error {
	if s.rowDrag == nil {
		return ErrNoDrag
	}
	d := s.rowDrag
	d.Offset += dy
	h := s.opts.Drag.RowHeight
	if h <= 0 {
		h = 1
	}
	target := d.From + int(math.Round(d.Offset/h))
	d.Target = min(max(target, 0), len(s.items)-1)
	return nil
}

// EndRowDrag commits the drag. A changed target fires the reorder callback
// and remaps selection; an unchanged target is discarded.
func (s *State[T]) EndRowDrag() (from, to int, moved bool) {
	if s.rowDrag == nil {
		return 0, 0, false
	}
	d := *s.rowDrag
	s.rowDrag = nil
	if d.Target == d.From {
		return d.From, d.Target, false
	}
	s.MoveRow(d.From, d.Target)
	return d.From, d.Target, true
}

// CancelRowDrag discards the drag session.
func (s *State[T]) CancelRowDrag() {
	s.rowDrag = nil
}

// MoveRow commits a row move from one index to another, as a completed
// drag would. The rows and selection are moved here first; the owner
// applies the move to its data through the reorder callback.
func (s *State[T]) MoveRow(from, to int) {
	n := len(s.items)
	if from == to || from < 0 || to < 0 || from >= n || to >= n {
		return
	}
	s.editing = nil
	if s.sortDir == SortNone {
		item := s.items[from]
		s.items = slices.Insert(slices.Delete(s.items, from, from+1), to, item)
		s.sortedValid = false
	}
	s.UpdateSelectionAfterReorder(from, to)
	if s.onRowReorder != nil {
		s.onRowReorder(from, to)
	}
}

// ColumnDrag returns the active column drag session.
func (s *State[T]) ColumnDrag() (ColumnDrag, bool) {
	if s.colDrag == nil {
		return ColumnDrag{}, false
	}
	return *s.colDrag, true
}

// StartColumnDrag begins dragging a header.
func (s *State[T]) StartColumnDrag(id string) error {
	if s.Dragging() {
		return ErrDragInProgress
	}
	col, ok := s.Column(id)
	if !ok {
		return ErrUnknownColumn
	}
	if !col.Reorderable {
		return ErrNotReorderable
	}
	s.colDrag = &ColumnDrag{ColumnID: id, TargetID: id}
	return nil
}

// DragColumnBy accumulates horizontal movement. The target walks over
// neighbours in the dragged column's region, crossing one when the
// remaining offset is strictly greater than the threshold fraction of
// its width.
func (s *State[T]) DragColumnBy(dx float64) error {
	if s.colDrag == nil {
		return ErrNoDrag
	}
	d := s.colDrag
	d.Offset += dx
	d.TargetID = d.ColumnID

	region := s.regionColumns(d.ColumnID)
	pos := -1
	for i, c := range region {
		if c.ID == d.ColumnID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return nil
	}

	threshold := s.opts.Drag.ColumnThreshold
	remaining := math.Abs(d.Offset)
	step := 1
	if d.Offset < 0 {
		step = -1
	}
	for i := pos + step; i >= 0 && i < len(region); i += step {
		next := region[i]
		if c, ok := s.Column(next.ID); !ok || !c.Reorderable {
			break
		}
		w := float64(next.Width)
		if remaining <= w*threshold {
			break
		}
		d.TargetID = next.ID
		remaining -= w
	}
	return nil
}

// EndColumnDrag swaps the dragged column with its target.
func (s *State[T]) EndColumnDrag() (from, to string, moved bool) {
	if s.colDrag == nil {
		return "", "", false
	}
	d := *s.colDrag
	s.colDrag = nil
	if d.TargetID == d.ColumnID {
		return d.ColumnID, d.TargetID, false
	}
	_ = s.SwapColumns(d.ColumnID, d.TargetID)
	s.clampFocus()
	return d.ColumnID, d.TargetID, true
}

// CancelColumnDrag discards the drag session.
func (s *State[T]) CancelColumnDrag() {
	s.colDrag = nil
}

// regionColumns returns the layout region holding a column.
func (s *State[T]) regionColumns(id string) []LayoutColumn {
	l := s.Layout()
	for _, region := range [][]LayoutColumn{l.Left, l.Middle, l.Right} {
		for _, c := range region {
			if c.ID == id {
				return region
			}
		}
	}
	return nil
}

package grid

import (
	"slices"
)

// SelectionMode controls how clicks and keys change the row selection.
type SelectionMode int

const (
	SelectionNone SelectionMode = iota
	SelectionSingle
	SelectionMultiple
)

// Modifiers are the keyboard modifiers held during a click.
type Modifiers struct {
	Ctrl  bool
	Shift bool
}

// Selected returns the selected row indices in ascending order.
func (s *State[T]) Selected() []int {
	out := make([]int, 0, len(s.selected))
	for row := range s.selected {
		out = append(out, row)
	}
	slices.Sort(out)
	return out
}

// IsSelected reports whether a row is selected.
func (s *State[T]) IsSelected(row int) bool {
	_, ok := s.selected[row]
	return ok
}

// Focus returns the focused row and flat column index (-1 = none).
func (s *State[T]) Focus() (row, col int) {
	return s.focusRow, s.focusCol
}

// FocusedColumnID returns the id of the focused column, "" when none.
func (s *State[T]) FocusedColumnID() string {
	flat := s.Layout().Flat()
	if s.focusCol < 0 || s.focusCol >= len(flat) {
		return ""
	}
	return flat[s.focusCol].ID
}

// SetFocus moves focus, clamped to the grid bounds.
func (s *State[T]) SetFocus(row, col int) {
	s.moveFocus(row, col)
}

// Click applies a primary click on a cell.
func (s *State[T]) Click(row, col int, mods Modifiers) {
	if row < 0 || row >= len(s.items) {
		return
	}
	s.cancelEditOffRow(row)

	switch s.opts.Selection {
	case SelectionNone:
		// Focus still follows the pointer so cells stay editable.
	case SelectionSingle:
		s.replaceSelection(row)
	case SelectionMultiple:
		switch {
		case mods.Ctrl:
			s.toggleRow(row)
		case mods.Shift && s.focusRow >= 0:
			lo, hi := min(s.focusRow, row), max(s.focusRow, row)
			s.clearSelection()
			for r := lo; r <= hi; r++ {
				s.selected[r] = struct{}{}
			}
		default:
			s.replaceSelection(row)
		}
	}
	s.focusRow = row
	if col >= 0 {
		s.focusCol = col
	}
	s.clampFocus()
}

// SelectAll selects every row in multiple-selection mode.
func (s *State[T]) SelectAll() {
	if s.opts.Selection != SelectionMultiple {
		return
	}
	for r := range s.items {
		s.selected[r] = struct{}{}
	}
}

// ClearSelection empties the selection.
func (s *State[T]) ClearSelection() {
	s.clearSelection()
}

func (s *State[T]) clearSelection() {
	clear(s.selected)
}

func (s *State[T]) replaceSelection(row int) {
	s.clearSelection()
	s.selected[row] = struct{}{}
}

func (s *State[T]) toggleRow(row int) {
	if _, ok := s.selected[row]; ok {
		delete(s.selected, row)
		return
	}
	s.selected[row] = struct{}{}
}

// moveFocus sets focus to the clamped position and, in single mode,
// makes the selection follow it.
func (s *State[T]) moveFocus(row, col int) {
	rows := len(s.items)
	cols := len(s.Layout().Flat())
	if rows == 0 {
		s.focusRow = -1
	} else {
		s.focusRow = min(max(row, 0), rows-1)
	}
	if cols == 0 {
		s.focusCol = -1
	} else {
		s.focusCol = min(max(col, 0), cols-1)
	}
	s.cancelEditOffRow(s.focusRow)
	if s.opts.Selection == SelectionSingle && s.focusRow >= 0 {
		s.replaceSelection(s.focusRow)
	}
}

// cancelEditOffRow silently drops an edit that is not on row.
func (s *State[T]) cancelEditOffRow(row int) {
	if s.editing != nil && s.editing.Row != row {
		s.editing = nil
	}
}

// UpdateSelectionAfterReorder remaps selection and focus after the row at
// from moved to to. The moved index becomes to; indices between the two
// shift one step towards the vacated slot; the rest are unchanged.
func (s *State[T]) UpdateSelectionAfterReorder(from, to int) {
	if from == to {
		return
	}
	remapped := make(map[int]struct{}, len(s.selected))
	for row := range s.selected {
		remapped[reorderIndex(row, from, to)] = struct{}{}
	}
	s.selected = remapped
	if s.focusRow >= 0 {
		s.focusRow = reorderIndex(s.focusRow, from, to)
	}
}

// reorderIndex returns where index i ends up after moving from to to.
func reorderIndex(i, from, to int) int {
	switch {
	case i == from:
		return to
	case from < to && i > from && i <= to:
		return i - 1
	case from > to && i >= to && i < from:
		return i + 1
	default:
		return i
	}
}

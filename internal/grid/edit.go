package grid

import "fmt"

// Editing returns the active edit session.
func (s *State[T]) Editing() (EditingCell, bool) {
	if s.editing == nil {
		return EditingCell{}, false
	}
	return *s.editing, true
}

// IsEditing reports whether the given cell is in edit mode.
func (s *State[T]) IsEditing(row int, columnID string) bool {
	return s.editing != nil && s.editing.Row == row && s.editing.ColumnID == columnID
}

// StartEdit opens an edit session on a cell, seeding it with the column's
// current text. An edit on another row is cancelled without committing.
func (s *State[T]) StartEdit(row int, columnID string) error {
	col, ok := s.Column(columnID)
	if !ok {
		return ErrUnknownColumn
	}
	if !col.Editable {
		return ErrNotEditable
	}
	item, ok := s.Item(row)
	if !ok {
		return ErrRowOutOfRange
	}
	if s.editing != nil {
		if s.editing.Row == row {
			return ErrEditInProgress
		}
		s.editing = nil
	}

	value := col.Text(item)
	s.editing = &EditingCell{
		Row:      row,
		ColumnID: columnID,
		Original: value,
		Current:  value,
	}
	s.focusRow = row
	if flat := s.Layout().FlatIndex(columnID); flat >= 0 {
		s.focusCol = flat
	}
	return nil
}

// SetEditValue replaces the in-progress value.
func (s *State[T]) SetEditValue(value string) error {
	if s.editing == nil {
		return ErrNotEditing
	}
	s.editing.Current = value
	return nil
}

// CancelEdit discards the session. No callback fires.
func (s *State[T]) CancelEdit() {
	s.editing = nil
}

// CommitEdit ends the session and reports the change when the value
// differs from the original. A validator rejection keeps the session open.
func (s *State[T]) CommitEdit() error {
	if s.editing == nil {
		return ErrNotEditing
	}
	ed := *s.editing
	col, _ := s.Column(ed.ColumnID)
	item, ok := s.Item(ed.Row)
	if !ok {
		s.editing = nil
		return ErrRowOutOfRange
	}
	if col.Validate != nil && ed.Current != ed.Original {
		if err := col.Validate(item, ed.Current); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
	}

	s.editing = nil
	s.focusRow = ed.Row
	if ed.Current != ed.Original && s.onValueChange != nil {
		s.onValueChange(item, ed.ColumnID, ed.Original, ed.Current)
	}
	return nil
}

// commitAndAdvance commits and opens the next editable column to the
// right in flat display order. Without one, editing just ends.
func (s *State[T]) commitAndAdvance() error {
	ed := *s.editing
	if err := s.CommitEdit(); err != nil {
		return err
	}
	next := s.nextEditableColumn(ed.ColumnID)
	if next == "" {
		return nil
	}
	// Focus follows the committed item when a re-sort moved it.
	row, _ := s.Focus()
	return s.StartEdit(row, next)
}

func (s *State[T]) nextEditableColumn(after string) string {
	flat := s.Layout().Flat()
	start := -1
	for i, c := range flat {
		if c.ID == after {
			start = i
			break
		}
	}
	for _, c := range flat[start+1:] {
		if c.RowNumber {
			continue
		}
		if col, ok := s.Column(c.ID); ok && col.Editable {
			return c.ID
		}
	}
	return ""
}

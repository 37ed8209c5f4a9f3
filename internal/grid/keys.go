package grid

// Key is a toolkit-independent key code understood by the grid.
type Key int

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyEnter
	KeyTab
	KeyEscape
	KeyF2
	KeySpace
	KeyA
)

// KeyEvent is one key press with modifiers.
type KeyEvent struct {
	Key   Key
	Ctrl  bool
	Shift bool
}

// HandleKey routes a key press. While a cell is being edited every key
// goes to the edit session. It reports whether the key was consumed.
func (s *State[T]) HandleKey(ev KeyEvent) (bool, error) {
	if s.editing != nil {
		return s.handleEditKey(ev)
	}

	row, col := s.focusRow, s.focusCol
	switch ev.Key {
	case KeyUp:
		s.moveFocus(row-1, max(col, 0))
	case KeyDown:
		s.moveFocus(row+1, max(col, 0))
	case KeyLeft:
		s.moveFocus(max(row, 0), col-1)
	case KeyRight:
		s.moveFocus(max(row, 0), col+1)
	case KeyHome:
		s.moveFocus(0, 0)
	case KeyEnd:
		s.moveFocus(len(s.items)-1, len(s.Layout().Flat())-1)
	case KeyPageUp:
		s.moveFocus(row-s.opts.PageSize, max(col, 0))
	case KeyPageDown:
		s.moveFocus(row+s.opts.PageSize, max(col, 0))
	case KeySpace:
		if s.opts.Selection != SelectionMultiple || row < 0 {
			return false, nil
		}
		s.toggleRow(row)
	case KeyA:
		if !ev.Ctrl || s.opts.Selection != SelectionMultiple {
			return false, nil
		}
		s.SelectAll()
	case KeyF2, KeyEnter:
		id := s.FocusedColumnID()
		if c, ok := s.Column(id); !ok || !c.Editable || row < 0 {
			return false, nil
		}
		return true, s.StartEdit(row, id)
	default:
		return false, nil
	}
	return true, nil
}

func (s *State[T]) handleEditKey(ev KeyEvent) (bool, error) {
	switch ev.Key {
	case KeyEscape:
		s.CancelEdit()
	case KeyEnter:
		return true, s.CommitEdit()
	case KeyTab:
		return true, s.commitAndAdvance()
	}
	// Other keys belong to the editor widget.
	return true, nil
}

package grid

import (
	"errors"
	"testing"
)

type valueChange struct {
	item          row
	column        string
	before, after string
}

func newEditState(t *testing.T, items []row) (*State[row], *[]valueChange) {
	t.Helper()
	s := New(testColumns(), DefaultOptions())
	s.SetItems(items)
	var changes []valueChange
	s.OnValueChange(func(item row, columnID, oldValue, newValue string) {
		changes = append(changes, valueChange{item, columnID, oldValue, newValue})
	})
	return s, &changes
}

func TestEdit_EscapeCancels(t *testing.T) {
	s, changes := newEditState(t, []row{{id: "1", name: "X"}})

	if err := s.StartEdit(0, "name"); err != nil {
		t.Fatalf("StartEdit: %v", err)
	}
	_ = s.SetEditValue("Y")
	if ok, err := s.HandleKey(KeyEvent{Key: KeyEscape}); !ok || err != nil {
		t.Fatalf("HandleKey(Escape) = %v, %v", ok, err)
	}

	if _, ok := s.Editing(); ok {
		t.Error("edit session should be closed")
	}
	if len(*changes) != 0 {
		t.Errorf("callbacks = %d, want 0", len(*changes))
	}
}

func TestEdit_EnterCommitsOnce(t *testing.T) {
	s, changes := newEditState(t, []row{{id: "1", name: "X"}})

	if _, err := s.HandleKey(KeyEvent{Key: KeyHome}); err != nil {
		t.Fatalf("HandleKey(Home): %v", err)
	}
	if ok, err := s.HandleKey(KeyEvent{Key: KeyF2}); !ok || err != nil {
		t.Fatalf("HandleKey(F2) = %v, %v", ok, err)
	}
	ed, ok := s.Editing()
	if !ok || ed.Original != "X" || ed.ColumnID != "name" {
		t.Fatalf("editing = %+v, %v", ed, ok)
	}

	_ = s.SetEditValue("Y")
	if ok, err := s.HandleKey(KeyEvent{Key: KeyEnter}); !ok || err != nil {
		t.Fatalf("HandleKey(Enter) = %v, %v", ok, err)
	}

	if len(*changes) != 1 {
		t.Fatalf("callbacks = %d, want 1", len(*changes))
	}
	got := (*changes)[0]
	if got.item.id != "1" || got.column != "name" || got.before != "X" || got.after != "Y" {
		t.Errorf("change = %+v", got)
	}
	if row, _ := s.Focus(); row != 0 {
		t.Errorf("focus row = %d, want 0", row)
	}
}

func TestEdit_UnchangedCommitIsSilent(t *testing.T) {
	s, changes := newEditState(t, []row{{id: "1", name: "X"}})
	_ = s.StartEdit(0, "name")
	if err := s.CommitEdit(); err != nil {
		t.Fatalf("CommitEdit: %v", err)
	}
	if len(*changes) != 0 {
		t.Errorf("callbacks = %d, want 0", len(*changes))
	}
}

func TestEdit_TabAdvances(t *testing.T) {
	s, changes := newEditState(t, []row{{id: "1", name: "X", score: 4}})

	_ = s.StartEdit(0, "name")
	_ = s.SetEditValue("Z")
	if _, err := s.HandleKey(KeyEvent{Key: KeyTab}); err != nil {
		t.Fatalf("HandleKey(Tab): %v", err)
	}
	ed, ok := s.Editing()
	if !ok || ed.ColumnID != "score" || ed.Original != "4" {
		t.Fatalf("editing = %+v, %v; want score", ed, ok)
	}
	if len(*changes) != 1 {
		t.Errorf("callbacks = %d, want 1", len(*changes))
	}

	// No editable column right of score: editing just ends.
	if _, err := s.HandleKey(KeyEvent{Key: KeyTab}); err != nil {
		t.Fatalf("HandleKey(Tab): %v", err)
	}
	if _, ok := s.Editing(); ok {
		t.Error("editing should end after the last editable column")
	}
}

func TestEdit_ValidatorRejects(t *testing.T) {
	cols := testColumns()
	cols[0].Validate = func(_ row, v string) error {
		if v == "" {
			return errors.New("name is required")
		}
		return nil
	}
	s := New(cols, DefaultOptions())
	s.SetItems([]row{{id: "1", name: "X"}})

	_ = s.StartEdit(0, "name")
	_ = s.SetEditValue("")
	err := s.CommitEdit()
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("CommitEdit err = %v, want ErrInvalidValue", err)
	}
	if _, ok := s.Editing(); !ok {
		t.Error("session should stay open after a rejected value")
	}
}

func TestEdit_StartErrors(t *testing.T) {
	s, _ := newEditState(t, testRows())

	tests := []struct {
		name   string
		row    int
		column string
		want   error
	}{
		{"unknown column", 0, "nope", ErrUnknownColumn},
		{"not editable", 0, "id", ErrNotEditable},
		{"row out of range", 9, "name", ErrRowOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.StartEdit(tt.row, tt.column); !errors.Is(err, tt.want) {
				t.Errorf("StartEdit err = %v, want %v", err, tt.want)
			}
		})
	}

	_ = s.StartEdit(1, "name")
	if err := s.StartEdit(1, "score"); !errors.Is(err, ErrEditInProgress) {
		t.Errorf("second edit on same row err = %v, want ErrEditInProgress", err)
	}
}

func TestEdit_ClickOtherRowCancels(t *testing.T) {
	s, changes := newEditState(t, testRows())
	_ = s.StartEdit(0, "name")
	_ = s.SetEditValue("changed")

	s.Click(2, 0, Modifiers{})

	if _, ok := s.Editing(); ok {
		t.Error("edit should be cancelled by selecting another row")
	}
	if len(*changes) != 0 {
		t.Errorf("callbacks = %d, want 0", len(*changes))
	}
}

func TestHandleKey_Navigation(t *testing.T) {
	s := newTestState(SelectionSingle)

	steps := []struct {
		key      KeyEvent
		row, col int
	}{
		{KeyEvent{Key: KeyDown}, 0, 0},
		{KeyEvent{Key: KeyDown}, 1, 0},
		{KeyEvent{Key: KeyRight}, 1, 1},
		{KeyEvent{Key: KeyEnd}, 3, 2},
		{KeyEvent{Key: KeyDown}, 3, 2},
		{KeyEvent{Key: KeyPageUp}, 0, 2},
		{KeyEvent{Key: KeyLeft}, 0, 1},
		{KeyEvent{Key: KeyHome}, 0, 0},
	}
	for i, step := range steps {
		if ok, err := s.HandleKey(step.key); !ok || err != nil {
			t.Fatalf("step %d: HandleKey = %v, %v", i, ok, err)
		}
		row, col := s.Focus()
		if row != step.row || col != step.col {
			t.Errorf("step %d: focus = (%d, %d), want (%d, %d)", i, row, col, step.row, step.col)
		}
	}
	if got := s.Selected(); len(got) != 1 || got[0] != 0 {
		t.Errorf("single selection should follow focus, got %v", got)
	}
}

func TestHandleKey_EnterOnReadOnlyPassesThrough(t *testing.T) {
	s := newTestState(SelectionSingle)
	s.SetFocus(0, 2)
	if ok, _ := s.HandleKey(KeyEvent{Key: KeyEnter}); ok {
		t.Error("Enter on a read-only cell should not be consumed")
	}
}

func TestHandleKey_SpaceAndCtrlA(t *testing.T) {
	s := newTestState(SelectionMultiple)
	s.SetFocus(2, 0)
	_, _ = s.HandleKey(KeyEvent{Key: KeySpace})
	if !s.IsSelected(2) {
		t.Error("space should select the focused row")
	}
	_, _ = s.HandleKey(KeyEvent{Key: KeyA, Ctrl: true})
	if len(s.Selected()) != 4 {
		t.Errorf("ctrl+a selected %d rows, want 4", len(s.Selected()))
	}
	if ok, _ := s.HandleKey(KeyEvent{Key: KeyA}); ok {
		t.Error("plain a should not be consumed")
	}
}

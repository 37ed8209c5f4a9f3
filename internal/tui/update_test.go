package tui

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/javiermolinar/spotgrid/internal/grid"
	"github.com/javiermolinar/spotgrid/internal/schedule"
	"github.com/javiermolinar/spotgrid/internal/tui/commands"
)

func TestScheduler_AddDeleteRevert(t *testing.T) {
	env := newTestEnv(t)

	env.press("a", "a")
	c := env.store.Cell(todayKey)
	if c.SpotCount != 2 || c.TotalDurationSeconds != 60 {
		t.Fatalf("cell = %d spots / %ds, want 2 / 60s", c.SpotCount, c.TotalDurationSeconds)
	}
	if !env.store.IsModified(todayKey) {
		t.Error("expected the cell to be modified")
	}
	if !strings.HasPrefix(env.m.statusMsg, "Added spot to 07:30") {
		t.Errorf("status = %q", env.m.statusMsg)
	}

	env.press("x")
	if got := env.store.Cell(todayKey).SpotCount; got != 1 {
		t.Errorf("after delete: %d spots, want 1", got)
	}

	env.press("r")
	if !env.store.Cell(todayKey).Empty() || env.store.IsModified(todayKey) {
		t.Error("expected revert to restore the empty cell")
	}

	env.press("x")
	if env.m.statusMsg != "No spots to delete" {
		t.Errorf("status = %q, want %q", env.m.statusMsg, "No spots to delete")
	}
}

func TestScheduler_Navigation(t *testing.T) {
	env := newTestEnv(t)

	env.press("j", "l")
	k, ok := env.m.sched.focusedKey()
	if !ok {
		t.Fatal("expected a day cell")
	}
	want := schedule.Key{BreakID: 2, Date: today.AddDays(1)}
	if k != want {
		t.Errorf("focused %v, want %v", k, want)
	}
}

func TestScheduler_RevertAll(t *testing.T) {
	env := newTestEnv(t)

	env.press("a", "l", "a")
	if n := len(env.store.Modified()); n != 2 {
		t.Fatalf("modified = %d, want 2", n)
	}
	env.press("R")
	if env.store.HasChanges() {
		t.Error("expected no changes after revert all")
	}
	if env.m.statusMsg != "Reverted 2 cells" {
		t.Errorf("status = %q", env.m.statusMsg)
	}
}

func TestSave_MarksStoreSaved(t *testing.T) {
	env := newTestEnv(t)

	env.press("a")
	cmd := env.send(keyMsg("s"))
	if cmd == nil {
		t.Fatal("expected a save command")
	}
	msg := cmd()
	saved, ok := msg.(commands.SavedMsg)
	if !ok {
		t.Fatalf("expected SavedMsg, got %T", msg)
	}
	if len(env.repo.saved) != 1 {
		t.Errorf("repo saved %d cells, want 1", len(env.repo.saved))
	}

	env.send(saved)
	if env.store.HasChanges() {
		t.Error("expected the store to be clean after saving")
	}
	if env.m.statusMsg != "Saved 1 cell" {
		t.Errorf("status = %q", env.m.statusMsg)
	}
}

func TestSave_NothingToSave(t *testing.T) {
	env := newTestEnv(t)

	env.press("s")
	if env.m.statusMsg != "Nothing to save" {
		t.Errorf("status = %q", env.m.statusMsg)
	}
}

func TestChangeMonth(t *testing.T) {
	t.Run("blocked by unsaved changes", func(t *testing.T) {
		env := newTestEnv(t)
		env.press("a", "]")
		if env.m.month != december {
			t.Errorf("month = %s, want %s", env.m.month, december)
		}
		if !strings.Contains(env.m.statusMsg, "Save or revert") {
			t.Errorf("status = %q", env.m.statusMsg)
		}
	})

	t.Run("failed load keeps the month on screen", func(t *testing.T) {
		env := newTestEnv(t)
		env.repo.loadErr = errors.New("database locked")

		cmd := env.send(keyMsg("]"))
		if cmd == nil {
			t.Fatal("expected a load command")
		}
		if env.m.month != december {
			t.Errorf("month = %s before the load finished, want %s", env.m.month, december)
		}
		env.send(cmd())

		if env.m.month != december {
			t.Errorf("month = %s after a failed load, want %s", env.m.month, december)
		}
		if env.m.loading || !env.m.statusError {
			t.Error("expected the load error on screen")
		}
		if got := env.m.reportDate(); !december.Contains(got) {
			t.Errorf("reportDate = %v, want a day of %s", got, december)
		}
	})

	t.Run("loads the next month", func(t *testing.T) {
		env := newTestEnv(t)
		cmd := env.send(keyMsg("]"))
		if cmd == nil || !env.m.loading {
			t.Fatal("expected a load command")
		}
		env.send(cmd())
		if want := december.Next(); env.m.month != want {
			t.Errorf("month = %s, want %s", env.m.month, want)
		}
		if env.m.loading || env.m.sched == nil {
			t.Error("expected the new month to be on screen")
		}
	})
}

func TestDetail_OpenAndClose(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, todayKey, "A", "B")

	env.press("enter")
	if env.m.mode != ModeDetail || env.m.detail == nil {
		t.Fatalf("mode = %s, want detail", env.m.mode)
	}
	if env.m.detail.key != todayKey {
		t.Errorf("detail key = %v, want %v", env.m.detail.key, todayKey)
	}
	if got := env.m.detail.state.FocusedColumnID(); got != colMessage {
		t.Errorf("focused column = %q, want %q", got, colMessage)
	}

	env.press("esc")
	if env.m.mode != ModeNormal || env.m.detail != nil {
		t.Errorf("mode = %s, want normal", env.m.mode)
	}
}

func TestDetail_OpenRequiresDayCell(t *testing.T) {
	env := newTestEnv(t)

	env.m.sched.state.SetFocus(0, 0)
	env.press("enter")
	if env.m.mode != ModeNormal {
		t.Errorf("mode = %s, want normal", env.m.mode)
	}
}

func TestDetail_EditMessage(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, todayKey, "A")
	env.press("enter", "enter")

	if env.m.mode != ModeEdit {
		t.Fatalf("mode = %s, want edit", env.m.mode)
	}
	if env.m.editor.Value() != "A" {
		t.Errorf("editor = %q, want %q", env.m.editor.Value(), "A")
	}

	env.m.editor.SetValue("Summer campaign")
	env.press("enter")

	if env.m.mode != ModeDetail {
		t.Errorf("mode = %s, want detail", env.m.mode)
	}
	if got := messages(env.store.Cell(todayKey)); !slices.Equal(got, []string{"Summer campaign"}) {
		t.Errorf("messages = %v", got)
	}
	if !env.store.IsModified(todayKey) {
		t.Error("expected the edit to mark the cell modified")
	}
}

func TestDetail_EditRejectsInvalidValue(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, todayKey, "A")
	env.press("enter", "enter")

	env.m.editor.SetValue("   ")
	env.press("enter")

	if env.m.mode != ModeEdit {
		t.Errorf("mode = %s, want edit to stay open", env.m.mode)
	}
	if !env.m.statusError {
		t.Error("expected an error status")
	}
	if got := messages(env.store.Cell(todayKey)); !slices.Equal(got, []string{"A"}) {
		t.Errorf("messages = %v, want unchanged", got)
	}

	env.press("esc")
	if env.m.mode != ModeDetail {
		t.Errorf("mode = %s, want detail after cancel", env.m.mode)
	}
}

func TestDetail_TabMovesToLength(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, todayKey, "A")
	env.press("enter", "enter", "tab")

	editing, ok := env.m.detail.state.Editing()
	if !ok || editing.ColumnID != colDuration {
		t.Fatalf("editing %+v, want the length column", editing)
	}
	env.m.editor.SetValue("0:45")
	env.press("enter")

	if got := env.store.Cell(todayKey).TotalDurationSeconds; got != 45 {
		t.Errorf("total = %ds, want 45s", got)
	}
}

func TestDetail_ReadOnlyColumnRefusesEdit(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, todayKey, "A")
	env.press("enter")

	env.m.detail.state.SetFocus(0, env.m.detail.state.Layout().FlatIndex(colClient))
	env.press("f2")
	if env.m.mode != ModeDetail {
		t.Errorf("mode = %s, want detail", env.m.mode)
	}
}

func TestDetail_MoveAndSort(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, todayKey, "C", "A", "B")
	env.press("enter")

	env.press("J")
	if got := messages(env.store.Cell(todayKey)); !slices.Equal(got, []string{"A", "C", "B"}) {
		t.Fatalf("after move down: %v", got)
	}
	if row, _ := env.m.detail.state.Focus(); row != 1 {
		t.Errorf("focus row = %d, want 1", row)
	}

	env.press("o")
	if id, dir := env.m.detail.state.Sort(); id != colMessage || dir != grid.SortAscending {
		t.Fatalf("sort = %s %s", id, dir)
	}
	env.press("K")
	if env.m.statusMsg != "Clear the sort to reorder spots" {
		t.Errorf("status = %q", env.m.statusMsg)
	}
	if got := messages(env.store.Cell(todayKey)); !slices.Equal(got, []string{"A", "C", "B"}) {
		t.Errorf("sorting must not reorder the store: %v", got)
	}
}

func TestDetail_DeleteSelected(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, todayKey, "A", "B", "C")
	env.press("enter")

	s := env.m.detail.state
	s.Click(0, s.Layout().FlatIndex(colMessage), grid.Modifiers{})
	s.Click(2, s.Layout().FlatIndex(colMessage), grid.Modifiers{Ctrl: true})
	env.press("x")

	if got := messages(env.store.Cell(todayKey)); !slices.Equal(got, []string{"B"}) {
		t.Errorf("messages = %v, want [B]", got)
	}
	if env.m.statusMsg != "Deleted 2 spots" {
		t.Errorf("status = %q", env.m.statusMsg)
	}
	if got := env.m.sched.state.RowCount(); got != 3 {
		t.Errorf("scheduler rows = %d, want 3", got)
	}
}

func TestDetail_EditUnderSortFollowsSpot(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, todayKey, "AB", "AC")
	env.press("enter")

	s := env.m.detail.state
	s.SetFocus(0, s.Layout().FlatIndex(colMessage))
	env.press("o")
	s.Click(1, s.Layout().FlatIndex(colMessage), grid.Modifiers{})
	s.Click(0, s.Layout().FlatIndex(colMessage), grid.Modifiers{Ctrl: true})
	env.press("enter", "backspace", "D", "enter")

	if got := messages(env.store.Cell(todayKey)); !slices.Equal(got, []string{"AD", "AC"}) {
		t.Fatalf("messages = %v, want [AD AC]", got)
	}
	if row, _ := s.Focus(); row != 1 {
		t.Errorf("focus row = %d, want 1", row)
	}
	if it, ok := s.Item(1); !ok || it.Message != "AD" {
		t.Errorf("row 1 = %+v, want the edited spot", it)
	}
	if got := s.Selected(); !slices.Equal(got, []int{0, 1}) {
		t.Errorf("selection = %v, want [0 1]", got)
	}
}

func TestDetail_MoveColumn(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, todayKey, "A")
	env.press("enter")

	env.press("H")
	l := env.m.detail.state.Layout()
	if l.FlatIndex(colMessage) >= l.FlatIndex(colCode) {
		t.Error("expected message to move before code")
	}
	if env.m.detail.state.FocusedColumnID() != colMessage {
		t.Error("expected focus to follow the moved column")
	}

	env.m.detail.state.SetFocus(0, l.FlatIndex(colAir))
	env.press("L")
	if env.m.statusMsg != "This column cannot be moved" {
		t.Errorf("status = %q", env.m.statusMsg)
	}
}

func TestErrMsgShowsError(t *testing.T) {
	env := newTestEnv(t)

	env.send(commands.ErrMsg{Err: schedule.ErrSpotOutOfRange})
	if !env.m.statusError || env.m.statusMsg != schedule.ErrSpotOutOfRange.Error() {
		t.Errorf("status = %q (error %v)", env.m.statusMsg, env.m.statusError)
	}
}

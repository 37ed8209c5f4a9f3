package grid

import (
	"slices"
	"strconv"
	"testing"
)

type row struct {
	id    string
	name  string
	score int
}

func testColumns() []Column[row] {
	return []Column[row]{
		{
			ID: "name", Header: "Name", Width: 20, MinWidth: 5, MaxWidth: 40,
			Resizable: true, Reorderable: true, Sortable: true, Editable: true,
			Value: func(r row) string { return r.name },
		},
		{
			ID: "score", Header: "Score", Width: 8, Sortable: true, Reorderable: true, Editable: true,
			Value:   func(r row) string { return strconv.Itoa(r.score) },
			Compare: func(a, b row) int { return a.score - b.score },
		},
		{
			ID: "id", Header: "ID", Width: 6,
			Value: func(r row) string { return r.id },
		},
	}
}

func testRows() []row {
	return []row{
		{id: "a", name: "alpha", score: 3},
		{id: "b", name: "bravo", score: 1},
		{id: "c", name: "charlie", score: 3},
		{id: "d", name: "delta", score: 2},
	}
}

func newTestState(mode SelectionMode) *State[row] {
	opts := DefaultOptions()
	opts.Selection = mode
	s := New(testColumns(), opts)
	s.SetItems(testRows())
	return s
}

func ids(items []row) []string {
	out := make([]string, len(items))
	for i, r := range items {
		out[i] = r.id
	}
	return out
}

func TestToggleSort_Cycle(t *testing.T) {
	s := newTestState(SelectionSingle)

	steps := []struct {
		column  string
		wantCol string
		wantDir SortDirection
		wantIDs []string
	}{
		{"score", "score", SortAscending, []string{"b", "d", "a", "c"}},
		{"score", "score", SortDescending, []string{"a", "c", "d", "b"}},
		{"score", "", SortNone, []string{"a", "b", "c", "d"}},
		{"name", "name", SortAscending, []string{"a", "b", "c", "d"}},
		{"score", "score", SortAscending, []string{"b", "d", "a", "c"}},
	}

	for i, step := range steps {
		if err := s.ToggleSort(step.column); err != nil {
			t.Fatalf("step %d: ToggleSort: %v", i, err)
		}
		col, dir := s.Sort()
		if col != step.wantCol || dir != step.wantDir {
			t.Errorf("step %d: sort = (%q, %v), want (%q, %v)", i, col, dir, step.wantCol, step.wantDir)
		}
		if got := ids(s.SortedItems()); !slices.Equal(got, step.wantIDs) {
			t.Errorf("step %d: order = %v, want %v", i, got, step.wantIDs)
		}
	}
}

func TestToggleSort_StableForEqualKeys(t *testing.T) {
	s := newTestState(SelectionSingle)
	_ = s.ToggleSort("score")
	_ = s.ToggleSort("score")

	// a and c share score 3 and keep their input order in both directions.
	got := ids(s.SortedItems())
	if got[0] != "a" || got[1] != "c" {
		t.Errorf("descending equal keys = %v, want a before c", got[:2])
	}
}

func TestToggleSort_NotSortable(t *testing.T) {
	s := newTestState(SelectionSingle)
	if err := s.ToggleSort("id"); err != nil {
		t.Fatalf("ToggleSort: %v", err)
	}
	if col, dir := s.Sort(); col != "" || dir != SortNone {
		t.Errorf("sort = (%q, %v), want none", col, dir)
	}
	if err := s.ToggleSort("missing"); err != ErrUnknownColumn {
		t.Errorf("unknown column err = %v, want ErrUnknownColumn", err)
	}
}

func TestToggleSort_ClearsSelection(t *testing.T) {
	s := newTestState(SelectionMultiple)
	s.Click(1, 0, Modifiers{})
	s.Click(2, 0, Modifiers{Ctrl: true})

	_ = s.ToggleSort("name")

	if len(s.Selected()) != 0 {
		t.Errorf("selection = %v, want empty", s.Selected())
	}
	if row, _ := s.Focus(); row != -1 {
		t.Errorf("focus row = %d, want -1", row)
	}
}

func TestUpdateColumnWidth(t *testing.T) {
	tests := []struct {
		name   string
		column string
		delta  int
		want   int
	}{
		{"grow", "name", 5, 25},
		{"shrink", "name", -5, 15},
		{"clamp max", "name", 100, 40},
		{"clamp min", "name", -100, 5},
		{"zero delta", "name", 0, 20},
		{"not resizable", "score", 10, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestState(SelectionSingle)
			if err := s.UpdateColumnWidth(tt.column, tt.delta); err != nil {
				t.Fatalf("UpdateColumnWidth: %v", err)
			}
			st, _ := s.ColumnState(tt.column)
			if st.Width != tt.want {
				t.Errorf("width = %d, want %d", st.Width, tt.want)
			}
		})
	}
}

func TestClampWidth_NeverNegative(t *testing.T) {
	c := Column[row]{MinWidth: -3}
	if got := c.clampWidth(-10); got != 0 {
		t.Errorf("clampWidth(-10) = %d, want 0", got)
	}
}

func TestSetItems_DropsOutOfRangeState(t *testing.T) {
	s := newTestState(SelectionMultiple)
	s.Click(0, 0, Modifiers{})
	s.Click(3, 0, Modifiers{Ctrl: true})
	if err := s.StartEdit(3, "name"); err != nil {
		t.Fatalf("StartEdit: %v", err)
	}

	s.SetItems(testRows()[:2])

	if got := s.Selected(); !slices.Equal(got, []int{0}) {
		t.Errorf("selection = %v, want [0]", got)
	}
	if row, _ := s.Focus(); row != 1 {
		t.Errorf("focus row = %d, want 1", row)
	}
	if _, ok := s.Editing(); ok {
		t.Error("edit on vanished row should be cancelled")
	}
}

func TestSetColumnVisible(t *testing.T) {
	s := newTestState(SelectionSingle)
	if err := s.SetColumnVisible("score", false); err != nil {
		t.Fatalf("SetColumnVisible: %v", err)
	}
	var got []string
	for _, c := range s.VisibleColumns() {
		got = append(got, c.ID)
	}
	if !slices.Equal(got, []string{"name", "id"}) {
		t.Errorf("visible = %v, want [name id]", got)
	}
	// Hiding must not disturb the definitions.
	if len(s.OrderedColumns()) != 3 {
		t.Errorf("ordered = %d columns, want 3", len(s.OrderedColumns()))
	}
}

func TestSwapColumns(t *testing.T) {
	s := newTestState(SelectionSingle)
	if err := s.SwapColumns("name", "id"); err != nil {
		t.Fatalf("SwapColumns: %v", err)
	}
	var got []string
	for _, c := range s.OrderedColumns() {
		got = append(got, c.ID)
	}
	if !slices.Equal(got, []string{"id", "score", "name"}) {
		t.Errorf("order = %v, want [id score name]", got)
	}
}

func rename(rows []row, id, name string) []row {
	out := slices.Clone(rows)
	for i := range out {
		if out[i].id == id {
			out[i].name = name
		}
	}
	return out
}

func TestSetItems_RowKeyKeepsStateOnItems(t *testing.T) {
	tests := []struct {
		name      string
		keyed     bool
		items     []row
		wantSel   []int
		wantFocus int
	}{
		// Sorted by name: alpha, charlie, delta, zulu.
		{"keyed re-sort", true, rename(testRows(), "b", "zulu"), []int{1, 3}, 1},
		// charlie is gone: bravo stays selected, focus keeps its index.
		{"keyed removal", true, slices.Delete(testRows(), 2, 3), []int{1}, 2},
		{"by index", false, rename(testRows(), "b", "zulu"), []int{1, 2}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestState(SelectionMultiple)
			if tt.keyed {
				s.SetRowKey(func(r row) string { return r.id })
			}
			_ = s.ToggleSort("name")
			s.Click(1, 0, Modifiers{})
			s.Click(2, 0, Modifiers{Ctrl: true})

			s.SetItems(tt.items)

			if got := s.Selected(); !slices.Equal(got, tt.wantSel) {
				t.Errorf("selection = %v, want %v", got, tt.wantSel)
			}
			if row, _ := s.Focus(); row != tt.wantFocus {
				t.Errorf("focus row = %d, want %d", row, tt.wantFocus)
			}
		})
	}
}

func TestSetItems_RowKeyMovesEditSession(t *testing.T) {
	s := newTestState(SelectionSingle)
	s.SetRowKey(func(r row) string { return r.id })
	_ = s.ToggleSort("score")
	// Ascending score: bravo, delta, alpha, charlie.
	if err := s.StartEdit(1, "name"); err != nil {
		t.Fatalf("StartEdit: %v", err)
	}

	items := testRows()
	items[3].score = 9
	s.SetItems(items)

	ed, ok := s.Editing()
	if !ok || ed.Row != 3 {
		t.Fatalf("editing = %+v (%v), want row 3", ed, ok)
	}
	if item, _ := s.Item(ed.Row); item.id != "d" {
		t.Errorf("edit session is on %q, want d", item.id)
	}

	s.SetItems(slices.Delete(testRows(), 3, 4))
	if _, ok := s.Editing(); ok {
		t.Error("an edit on a removed item must be cancelled")
	}
}

func TestRowKey(t *testing.T) {
	s := newTestState(SelectionSingle)
	if got := s.RowKey(row{id: "a"}); got != "" {
		t.Errorf("RowKey without a key function = %q", got)
	}
	s.SetRowKey(func(r row) string { return "row-" + r.id })
	if got := s.RowKey(row{id: "a"}); got != "row-a" {
		t.Errorf("RowKey = %q, want row-a", got)
	}
}

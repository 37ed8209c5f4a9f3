package grid

import (
	"errors"
	"slices"
)

// Grid state errors.
var (
	ErrUnknownColumn  = errors.New("unknown column")
	ErrRowOutOfRange  = errors.New("row index out of range")
	ErrNotEditable    = errors.New("column is not editable")
	ErrNotEditing     = errors.New("no cell is being edited")
	ErrEditInProgress = errors.New("another cell on this row is being edited")
	ErrInvalidValue   = errors.New("value rejected by column validator")
	ErrDragInProgress = errors.New("a drag session is already active")
	ErrNoDrag         = errors.New("no drag session is active")
	ErrNotReorderable = errors.New("column is not reorderable")
	ErrSortedRows     = errors.New("rows cannot be reordered while sorted")
)

// RowNumberColumnID identifies the row-number pseudo-column in layouts.
const RowNumberColumnID = "#"

const (
	defaultPageSize       = 10
	defaultRowNumberWidth = 4
)

// Options configures grid behavior.
type Options struct {
	Selection        SelectionMode
	ShowRowNumbers   bool
	FreezeRowNumbers bool
	RowNumberWidth   int
	PageSize         int
	Drag             DragConfig
}

// DefaultOptions returns the stock grid options.
func DefaultOptions() Options {
	return Options{
		Selection:      SelectionSingle,
		RowNumberWidth: defaultRowNumberWidth,
		PageSize:       defaultPageSize,
		Drag:           DefaultDragConfig(),
	}
}

// EditingCell is the active inline edit session.
type EditingCell struct {
	Row      int
	ColumnID string
	Original string
	Current  string
}

// State holds everything a grid instance mutates at runtime. All mutation
// goes through its methods so the invariants stay in one place.
type State[T any] struct {
	columns []Column[T]
	index   map[string]int
	states  map[string]*ColumnState
	opts    Options

	items       []T
	sorted      []T
	sortedValid bool
	rowKey      func(T) string

	sortColumn string
	sortDir    SortDirection

	selected map[int]struct{}
	focusRow int
	focusCol int

	editing *EditingCell
	rowDrag *RowDrag
	colDrag *ColumnDrag

	onValueChange func(item T, columnID, oldValue, newValue string)
	onRowReorder  func(from, to int)
}

// New creates grid state for the given columns. Column ids must be unique.
func New[T any](columns []Column[T], opts Options) *State[T] {
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.RowNumberWidth <= 0 {
		opts.RowNumberWidth = defaultRowNumberWidth
	}
	if opts.Drag == (DragConfig{}) {
		opts.Drag = DefaultDragConfig()
	}

	s := &State[T]{
		columns:  slices.Clone(columns),
		index:    make(map[string]int, len(columns)),
		states:   make(map[string]*ColumnState, len(columns)),
		opts:     opts,
		selected: make(map[int]struct{}),
		focusRow: -1,
		focusCol: -1,
	}
	for i, c := range s.columns {
		s.index[c.ID] = i
		s.states[c.ID] = &ColumnState{
			ID:      c.ID,
			Width:   c.clampWidth(c.Width),
			Order:   i,
			Visible: true,
		}
	}
	return s
}

// Options returns the grid options.
func (s *State[T]) Options() Options {
	return s.opts
}

// OnValueChange registers the callback fired by a committed edit whose
// value changed.
func (s *State[T]) OnValueChange(fn func(item T, columnID, oldValue, newValue string)) {
	s.onValueChange = fn
}

// OnRowReorder registers the callback fired when a row move is committed.
func (s *State[T]) OnRowReorder(fn func(from, to int)) {
	s.onRowReorder = fn
}

// SetRowKey sets the stable row identity function. With a key function,
// SetItems keeps focus, selection and the edit session on the same items
// wherever they land in the new list.
func (s *State[T]) SetRowKey(fn func(T) string) {
	s.rowKey = fn
}

// RowKey returns the identity of an item, or "" when no key function is set.
func (s *State[T]) RowKey(item T) string {
	if s.rowKey == nil {
		return ""
	}
	return s.rowKey(item)
}

// SetItems replaces the row items. Without a row key, selection and focus
// that fall outside the new row count are dropped and an edit on a vanished
// row is cancelled. With one, they follow their items by key.
func (s *State[T]) SetItems(items []T) {
	marks, keyed := s.markRows()
	s.items = slices.Clone(items)
	s.sortedValid = false
	if keyed {
		s.restoreRows(marks)
	}

	n := len(s.items)
	for row := range s.selected {
		if row >= n {
			delete(s.selected, row)
		}
	}
	if s.focusRow >= n {
		s.focusRow = n - 1
	}
	if s.editing != nil && s.editing.Row >= n {
		s.editing = nil
	}
	if s.rowDrag != nil && s.rowDrag.From >= n {
		s.rowDrag = nil
	}
}

// rowMarks records the keys of the rows that carry UI state.
type rowMarks struct {
	focus    string
	selected []string
	editing  string
}

func (s *State[T]) markRows() (rowMarks, bool) {
	if s.rowKey == nil {
		return rowMarks{}, false
	}
	sorted := s.SortedItems()
	key := func(row int) string {
		if row < 0 || row >= len(sorted) {
			return ""
		}
		return s.rowKey(sorted[row])
	}
	m := rowMarks{focus: key(s.focusRow)}
	for row := range s.selected {
		if k := key(row); k != "" {
			m.selected = append(m.selected, k)
		}
	}
	if s.editing != nil {
		m.editing = key(s.editing.Row)
	}
	return m, true
}

// restoreRows moves marked state onto the rows now holding the same keys.
// A focused item that vanished leaves focus at its old index.
func (s *State[T]) restoreRows(m rowMarks) {
	rows := make(map[string]int, len(s.items))
	for i, it := range s.SortedItems() {
		rows[s.rowKey(it)] = i
	}
	if r, ok := rows[m.focus]; ok && m.focus != "" {
		s.focusRow = r
	}
	clear(s.selected)
	for _, k := range m.selected {
		if r, ok := rows[k]; ok {
			s.selected[r] = struct{}{}
		}
	}
	if s.editing != nil {
		if r, ok := rows[m.editing]; ok && m.editing != "" {
			s.editing.Row = r
		} else {
			s.editing = nil
		}
	}
}

// RowCount returns the number of rows.
func (s *State[T]) RowCount() int {
	return len(s.items)
}

// Item returns the row at index i of the sorted list.
func (s *State[T]) Item(i int) (T, bool) {
	sorted := s.SortedItems()
	if i < 0 || i >= len(sorted) {
		var zero T
		return zero, false
	}
	return sorted[i], true
}

// Column returns the definition of a column.
func (s *State[T]) Column(id string) (Column[T], bool) {
	i, ok := s.index[id]
	if !ok {
		return Column[T]{}, false
	}
	return s.columns[i], true
}

// ColumnState returns a copy of the runtime state of a column.
func (s *State[T]) ColumnState(id string) (ColumnState, bool) {
	st, ok := s.states[id]
	if !ok {
		return ColumnState{}, false
	}
	return *st, true
}

// OrderedColumns returns every column in current display order.
func (s *State[T]) OrderedColumns() []Column[T] {
	out := slices.Clone(s.columns)
	slices.SortStableFunc(out, func(a, b Column[T]) int {
		return s.states[a.ID].Order - s.states[b.ID].Order
	})
	return out
}

// VisibleColumns returns visible columns in display order.
func (s *State[T]) VisibleColumns() []Column[T] {
	ordered := s.OrderedColumns()
	out := ordered[:0]
	for _, c := range ordered {
		if s.states[c.ID].Visible {
			out = append(out, c)
		}
	}
	return out
}

// UpdateColumnWidth applies delta to a resizable column and clamps the
// result into [MinWidth, MaxWidth].
func (s *State[T]) UpdateColumnWidth(id string, delta int) error {
	i, ok := s.index[id]
	if !ok {
		return ErrUnknownColumn
	}
	col := s.columns[i]
	if !col.Resizable || delta == 0 {
		return nil
	}
	st := s.states[id]
	st.Width = col.clampWidth(st.Width + delta)
	return nil
}

// SwapColumns exchanges the order indices of two columns. A non-adjacent
// swap moves each column straight into the other's slot.
func (s *State[T]) SwapColumns(a, b string) error {
	sa, ok := s.states[a]
	if !ok {
		return ErrUnknownColumn
	}
	sb, ok := s.states[b]
	if !ok {
		return ErrUnknownColumn
	}
	sa.Order, sb.Order = sb.Order, sa.Order
	return nil
}

// SetColumnVisible shows or hides a column.
func (s *State[T]) SetColumnVisible(id string, visible bool) error {
	st, ok := s.states[id]
	if !ok {
		return ErrUnknownColumn
	}
	if st.Visible == visible {
		return nil
	}
	st.Visible = visible
	if s.editing != nil && s.editing.ColumnID == id {
		s.editing = nil
	}
	s.clampFocus()
	return nil
}

// Sort returns the sort column and direction.
func (s *State[T]) Sort() (string, SortDirection) {
	return s.sortColumn, s.sortDir
}

// ToggleSort advances the sort state. The sorted column cycles
// ascending, descending, none; another column starts at ascending.
// Selection and focus row are cleared since they index the sorted list.
func (s *State[T]) ToggleSort(id string) error {
	col, ok := s.Column(id)
	if !ok {
		return ErrUnknownColumn
	}
	if !col.Sortable {
		return nil
	}

	if s.sortColumn == id {
		switch s.sortDir {
		case SortAscending:
			s.sortDir = SortDescending
		case SortDescending:
			s.sortDir = SortNone
			s.sortColumn = ""
		default:
			s.sortDir = SortAscending
		}
	} else {
		s.sortColumn = id
		s.sortDir = SortAscending
	}

	s.sortedValid = false
	s.editing = nil
	s.clearSelection()
	s.focusRow = -1
	return nil
}

// SortedItems returns the items in current sort order. The sort is stable;
// descending reverses the ascending comparator.
func (s *State[T]) SortedItems() []T {
	if s.sortedValid {
		return s.sorted
	}
	out := slices.Clone(s.items)
	if col, ok := s.Column(s.sortColumn); ok && s.sortDir != SortNone {
		cmp := col.compare
		if s.sortDir == SortDescending {
			cmp = func(a, b T) int { return col.compare(b, a) }
		}
		slices.SortStableFunc(out, cmp)
	}
	s.sorted = out
	s.sortedValid = true
	return s.sorted
}

// clampFocus keeps focus inside the current row and column counts.
func (s *State[T]) clampFocus() {
	if s.focusRow >= len(s.items) {
		s.focusRow = len(s.items) - 1
	}
	cols := len(s.Layout().Flat())
	if s.focusCol >= cols {
		s.focusCol = cols - 1
	}
}

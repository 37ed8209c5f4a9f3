package grid

// LayoutColumn is one column as placed by the layout partitioner.
type LayoutColumn struct {
	ID        string
	Width     int
	Frozen    Frozen
	RowNumber bool // The row-number pseudo-column
}

// Layout splits visible columns into frozen-left, scrollable middle and
// frozen-right regions.
type Layout struct {
	Left   []LayoutColumn
	Middle []LayoutColumn
	Right  []LayoutColumn
}

// Partition places ordered visible columns into the three regions. The
// row-number pseudo-column goes first in Left when frozen, otherwise
// first in Middle.
func Partition(columns []LayoutColumn, opts Options) Layout {
	var l Layout
	if opts.ShowRowNumbers {
		rn := LayoutColumn{ID: RowNumberColumnID, Width: opts.RowNumberWidth, RowNumber: true}
		if opts.FreezeRowNumbers {
			rn.Frozen = FrozenLeft
			l.Left = append(l.Left, rn)
		} else {
			l.Middle = append(l.Middle, rn)
		}
	}
	for _, c := range columns {
		switch c.Frozen {
		case FrozenLeft:
			l.Left = append(l.Left, c)
		case FrozenRight:
			l.Right = append(l.Right, c)
		default:
			l.Middle = append(l.Middle, c)
		}
	}
	return l
}

// Flat returns left ++ middle ++ right. Column focus indexes this list.
func (l Layout) Flat() []LayoutColumn {
	out := make([]LayoutColumn, 0, len(l.Left)+len(l.Middle)+len(l.Right))
	out = append(out, l.Left...)
	out = append(out, l.Middle...)
	return append(out, l.Right...)
}

// FrozenLeftWidth is the total width of the left region.
func (l Layout) FrozenLeftWidth() int {
	return totalWidth(l.Left)
}

// FrozenRightWidth is the total width of the right region.
func (l Layout) FrozenRightWidth() int {
	return totalWidth(l.Right)
}

// MiddleWidth is the unclipped width of the scrollable region.
func (l Layout) MiddleWidth() int {
	return totalWidth(l.Middle)
}

// FlatIndex returns the flat position of a column id, or -1.
func (l Layout) FlatIndex(id string) int {
	for i, c := range l.Flat() {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// RegionOf reports which region holds the column at a flat index.
func (l Layout) RegionOf(flat int) Frozen {
	switch {
	case flat < len(l.Left):
		return FrozenLeft
	case flat < len(l.Left)+len(l.Middle):
		return FrozenNone
	default:
		return FrozenRight
	}
}

func totalWidth(cols []LayoutColumn) int {
	w := 0
	for _, c := range cols {
		w += c.Width
	}
	return w
}

// Layout partitions the current visible columns.
func (s *State[T]) Layout() Layout {
	visible := s.VisibleColumns()
	cols := make([]LayoutColumn, 0, len(visible))
	for _, c := range visible {
		cols = append(cols, LayoutColumn{
			ID:     c.ID,
			Width:  s.states[c.ID].Width,
			Frozen: c.Frozen,
		})
	}
	return Partition(cols, s.opts)
}

// Viewport is the scroll state shared by all three regions. Every region
// renders rows [Top, Top+Rows); only the middle region uses HScroll.
type Viewport struct {
	Top     int
	Rows    int
	HScroll int
}

// SetRows sets how many rows fit on screen.
func (v *Viewport) SetRows(rows int) {
	v.Rows = max(rows, 0)
}

// VisibleRange returns the half-open row window for total rows.
func (v *Viewport) VisibleRange(total int) (start, end int) {
	v.clampTop(total)
	return v.Top, min(v.Top+v.Rows, total)
}

// EnsureVisible scrolls the minimum amount to show row.
func (v *Viewport) EnsureVisible(row, total int) {
	if row < 0 || v.Rows <= 0 {
		return
	}
	if row < v.Top {
		v.Top = row
	} else if row >= v.Top+v.Rows {
		v.Top = row - v.Rows + 1
	}
	v.clampTop(total)
}

// ScrollBy moves the vertical window by n rows.
func (v *Viewport) ScrollBy(n, total int) {
	v.Top += n
	v.clampTop(total)
}

func (v *Viewport) clampTop(total int) {
	maxTop := max(total-v.Rows, 0)
	v.Top = min(max(v.Top, 0), maxTop)
}

// ScrollHorizontal moves the middle region by delta cells.
func (v *Viewport) ScrollHorizontal(delta int, l Layout, available int) {
	maxScroll := max(l.MiddleWidth()-available, 0)
	v.HScroll = min(max(v.HScroll+delta, 0), maxScroll)
}

// EnsureColumnVisible scrolls the middle region so the middle column at
// flat index is fully shown. Frozen columns need no scrolling.
func (v *Viewport) EnsureColumnVisible(flat int, l Layout, available int) {
	if l.RegionOf(flat) != FrozenNone || available <= 0 {
		return
	}
	idx := flat - len(l.Left)
	x := totalWidth(l.Middle[:idx])
	w := l.Middle[idx].Width
	switch {
	case x < v.HScroll:
		v.HScroll = x
	case x+w > v.HScroll+available:
		v.HScroll = x + w - available
	}
	v.ScrollHorizontal(0, l, available)
}

// ClippedColumn is a middle column intersecting the horizontal window.
type ClippedColumn struct {
	LayoutColumn
	Skip    int // Cells hidden on the left
	Visible int // Cells shown
}

// VisibleMiddle returns the middle columns visible in a window of the
// given width at the current horizontal offset.
func (v *Viewport) VisibleMiddle(l Layout, available int) []ClippedColumn {
	var out []ClippedColumn
	lo, hi := v.HScroll, v.HScroll+available
	x := 0
	for _, c := range l.Middle {
		start, end := x, x+c.Width
		x = end
		if end <= lo || start >= hi {
			continue
		}
		from := max(start, lo)
		to := min(end, hi)
		out = append(out, ClippedColumn{LayoutColumn: c, Skip: from - start, Visible: to - from})
	}
	return out
}

// Area classifies a hit-test position.
type Area int

const (
	AreaNone Area = iota
	AreaHeader
	AreaBody
)

// Hit is the result of mapping a pointer position onto the grid.
type Hit struct {
	Area     Area
	Row      int // Sorted row index, -1 for the header
	Flat     int // Flat column index, -1 when outside any column
	ColumnID string
	Region   Frozen
}

// HitTest maps a pointer position relative to the grid origin. Line 0 is
// the header; each body row is rowHeight lines tall.
func HitTest(l Layout, v Viewport, width, rowHeight, total, x, y int) Hit {
	hit := Hit{Row: -1, Flat: -1}
	if x < 0 || y < 0 || x >= width {
		return hit
	}
	if rowHeight <= 0 {
		rowHeight = 1
	}

	leftW, rightW := l.FrozenLeftWidth(), l.FrozenRightWidth()
	var (
		region Frozen
		cols   []LayoutColumn
		base   int
		off    int
	)
	switch {
	case x < leftW:
		region, cols, base, off = FrozenLeft, l.Left, 0, x
	case x >= width-rightW:
		region, cols, base, off = FrozenRight, l.Right, len(l.Left)+len(l.Middle), x-(width-rightW)
	default:
		region, cols, base, off = FrozenNone, l.Middle, len(l.Left), x-leftW+v.HScroll
	}

	acc := 0
	for i, c := range cols {
		if off >= acc && off < acc+c.Width {
			hit.Flat = base + i
			hit.ColumnID = c.ID
			break
		}
		acc += c.Width
	}
	hit.Region = region

	if y == 0 {
		hit.Area = AreaHeader
		return hit
	}
	row := v.Top + (y-1)/rowHeight
	if row >= total || hit.Flat < 0 {
		hit.Area = AreaNone
		return hit
	}
	hit.Area = AreaBody
	hit.Row = row
	return hit
}

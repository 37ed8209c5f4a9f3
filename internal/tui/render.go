package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/spotgrid/internal/grid"
)

// gridView renders one grid.State through a shared viewport. Every region
// reads the same vertical window so frozen and scrolling rows line up.
type gridView[T any] struct {
	state  *grid.State[T]
	vp     *grid.Viewport
	styles *Styles
	width  int
	// editor is the rendered inline editor for the cell being edited.
	editor string
}

// middleWidth is the space left for the scrolling region.
func (g gridView[T]) middleWidth(l grid.Layout) int {
	return max(g.width-l.FrozenLeftWidth()-l.FrozenRightWidth(), 0)
}

// lines renders the header plus the visible body rows.
func (g gridView[T]) lines() []string {
	l := g.state.Layout()
	avail := g.middleWidth(l)
	middle := g.vp.VisibleMiddle(l, avail)

	total := g.state.RowCount()
	start, end := g.vp.VisibleRange(total)

	out := make([]string, 0, end-start+1)
	out = append(out, g.header(l, middle, avail))
	for row := start; row < end; row++ {
		out = append(out, g.row(l, middle, avail, row))
	}
	return out
}

func (g gridView[T]) header(l grid.Layout, middle []grid.ClippedColumn, avail int) string {
	sortID, sortDir := g.state.Sort()
	colDrag, dragging := g.state.ColumnDrag()

	cell := func(c grid.LayoutColumn) string {
		text := "#"
		if !c.RowNumber {
			col, _ := g.state.Column(c.ID)
			text = col.Header
			if c.ID == sortID {
				switch sortDir {
				case grid.SortAscending:
					text += " ▲"
				case grid.SortDescending:
					text += " ▼"
				}
			}
		}
		style := g.styles.HeaderStyle
		switch {
		case dragging && c.ID == colDrag.ColumnID:
			style = g.styles.HeaderDragStyle
		case dragging && c.ID == colDrag.TargetID:
			style = g.styles.HeaderTargetStyle
		case c.Frozen != grid.FrozenNone:
			style = g.styles.HeaderFrozenStyle
		}
		return style.Render(fit(text, c.Width))
	}
	return g.join(l, middle, avail, cell)
}

func (g gridView[T]) row(l grid.Layout, middle []grid.ClippedColumn, avail, row int) string {
	item, _ := g.state.Item(row)
	focusRow, _ := g.state.Focus()
	focusID := g.state.FocusedColumnID()
	selected := g.state.IsSelected(row)
	rowDrag, rowDragging := g.state.RowDrag()

	cell := func(c grid.LayoutColumn) string {
		if c.RowNumber {
			style := g.styles.RowNumberStyle
			text := fmt.Sprintf("%*d ", c.Width-1, row+1)
			if rowDragging && row == rowDrag.Target && rowDrag.Target != rowDrag.From {
				style = g.styles.DropTargetStyle
				text = fmt.Sprintf("%*s ", c.Width-1, "▸")
			}
			return style.Render(fit(text, c.Width))
		}
		col, _ := g.state.Column(c.ID)
		if g.state.IsEditing(row, c.ID) && g.editor != "" {
			return g.styles.EditStyle.Render(fit(g.editor, c.Width))
		}

		text := col.Text(item)
		if col.Render != nil {
			text = col.Render(item, c.Width)
		}
		style := g.cellStyle(col, item, c.Frozen != grid.FrozenNone)
		switch {
		case rowDragging && row == rowDrag.From:
			style = g.styles.DragRowStyle
		case row == focusRow && c.ID == focusID:
			style = g.styles.FocusStyle
		case selected:
			style = style.Background(g.styles.palette.BgSelection)
		}
		return style.Render(fit(" "+text, c.Width))
	}
	return g.join(l, middle, avail, cell)
}

// cellStyle applies a column's optional style functions.
func (g gridView[T]) cellStyle(col grid.Column[T], item T, frozen bool) lipgloss.Style {
	style := g.styles.CellStyle
	if frozen {
		style = g.styles.FrozenCellStyle
	}
	if col.Background != nil {
		if bg := col.Background(item); bg != "" {
			style = style.Background(lipgloss.Color(bg))
		}
	}
	if col.Foreground != nil {
		if fg := col.Foreground(item); fg != "" {
			style = style.Foreground(lipgloss.Color(fg))
		}
	}
	if col.Bold != nil && col.Bold(item) {
		style = style.Bold(true)
	}
	return style
}

// join lays out left, clipped middle and right cells into one line.
func (g gridView[T]) join(l grid.Layout, middle []grid.ClippedColumn, avail int, cell func(grid.LayoutColumn) string) string {
	var b strings.Builder
	for _, c := range l.Left {
		b.WriteString(cell(c))
	}
	used := 0
	for _, c := range middle {
		rendered := cell(c.LayoutColumn)
		b.WriteString(ansi.Cut(rendered, c.Skip, c.Skip+c.Visible))
		used += c.Visible
	}
	if used < avail {
		b.WriteString(g.styles.CellStyle.Render(strings.Repeat(" ", avail-used)))
	}
	for _, c := range l.Right {
		b.WriteString(cell(c))
	}
	return b.String()
}

// fit truncates or pads text to exactly width cells.
func fit(text string, width int) string {
	if width <= 0 {
		return ""
	}
	text = ansi.Truncate(text, width, "…")
	if w := ansi.StringWidth(text); w < width {
		text += strings.Repeat(" ", width-w)
	}
	return text
}

package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/spotgrid/internal/grid"
	"github.com/javiermolinar/spotgrid/internal/menu"
	"github.com/javiermolinar/spotgrid/internal/report"
	"github.com/javiermolinar/spotgrid/internal/tui/commands"
)

// menuAction is what a context menu item asks the model to do. Item
// actions only record it; the model runs it once the menu has closed.
type menuAction int

const (
	actionNone menuAction = iota
	actionOpen
	actionBack
	actionAddSpot
	actionDeleteSpot
	actionRevertCell
	actionRevertAll
	actionSave
	actionCopy
	actionCopyFlow
	actionExport
	actionPreview
	actionPrint
	actionCancelReport
	actionNarrow
	actionWiden
	actionToggleZone
	actionEditMessage
	actionEditLength
	actionMoveUp
	actionMoveDown
	actionSortClient
	actionSortMessage
	actionSortLength
	actionClearSort
)

// item builds a menu item that records a.
func (m Model) item(label, icon, shortcut string, enabled bool, a menuAction) menu.Item {
	pending := m.pending
	return menu.Item{
		Label:    label,
		Icon:     icon,
		Shortcut: shortcut,
		Enabled:  enabled,
		Action:   func() { *pending = a },
	}
}

func (m Model) reportEntries() []menu.Entry {
	busy := m.runner.Busy()
	enabled := m.canReport()
	return []menu.Entry{
		m.item("Export PDF...", "", "e", enabled, actionExport),
		m.item("Preview", "", "p", enabled, actionPreview),
		m.item("Print", "", "P", enabled, actionPrint),
		menu.Separator{},
		m.item("Copy program flow", "", "", true, actionCopyFlow),
		m.item("Cancel report", "", "ctrl+x", busy, actionCancelReport),
	}
}

func (m Model) schedulerMenu() []menu.Entry {
	k, onCell := m.sched.focusedKey()
	hasSpots, modified := false, false
	if onCell {
		hasSpots = !m.store.Cell(k).Empty()
		modified = m.store.IsModified(k)
	}
	resizable := false
	if col, ok := m.sched.state.Column(m.sched.state.FocusedColumnID()); ok {
		resizable = col.Resizable
	}
	zoneLabel := "Hide zone column"
	if st, ok := m.sched.state.ColumnState(colZone); ok && !st.Visible {
		zoneLabel = "Show zone column"
	}
	dirty := m.store.HasChanges()

	return []menu.Entry{
		m.item("Open break", "", "enter", onCell, actionOpen),
		m.item("Add spot", "+", "a", onCell, actionAddSpot),
		m.item("Delete last spot", "-", "x", hasSpots, actionDeleteSpot),
		m.item("Revert cell", "", "r", modified, actionRevertCell),
		menu.Separator{},
		menu.SubMenu{Label: "Report", Enabled: true, Children: m.reportEntries()},
		menu.SubMenu{Label: "Columns", Enabled: true, Children: []menu.Entry{
			m.item("Narrow column", "", "<", resizable, actionNarrow),
			m.item("Widen column", "", ">", resizable, actionWiden),
			menu.Separator{},
			m.item(zoneLabel, "", "", true, actionToggleZone),
		}},
		menu.Separator{},
		m.item("Copy cell", "", "y", onCell, actionCopy),
		m.item("Save changes", "", "s", dirty, actionSave),
		m.item("Revert all", "", "R", dirty, actionRevertAll),
	}
}

func (m Model) detailMenu() []menu.Entry {
	d := m.detail
	row, _ := d.state.Focus()
	_, onRow := d.state.Item(row)
	sortID, sortDir := d.state.Sort()
	sorted := sortDir != grid.SortNone
	last := d.state.RowCount() - 1

	deleteLabel := "Delete spot"
	if n := len(d.state.Selected()); n > 1 {
		deleteLabel = fmt.Sprintf("Delete %d spots", n)
	}
	sortLabel := func(label, id string) string {
		if id == sortID {
			return label + " (" + sortDir.String() + ")"
		}
		return label
	}

	return []menu.Entry{
		m.item("Edit message", "", "enter", onRow, actionEditMessage),
		m.item("Edit length", "", "", onRow, actionEditLength),
		menu.Separator{},
		m.item("Add spot", "+", "a", true, actionAddSpot),
		m.item(deleteLabel, "-", "x", onRow, actionDeleteSpot),
		m.item("Move up", "", "K", onRow && !sorted && row > 0, actionMoveUp),
		m.item("Move down", "", "J", onRow && !sorted && row < last, actionMoveDown),
		menu.Separator{},
		menu.SubMenu{Label: "Sort by", Enabled: d.state.RowCount() > 1, Children: []menu.Entry{
			m.item(sortLabel("Client", colClient), "", "", true, actionSortClient),
			m.item(sortLabel("Message", colMessage), "", "", true, actionSortMessage),
			m.item(sortLabel("Length", colDuration), "", "", true, actionSortLength),
			menu.Separator{},
			m.item("Clear sort", "", "", sorted, actionClearSort),
		}},
		menu.SubMenu{Label: "Report", Enabled: true, Children: m.reportEntries()},
		menu.Separator{},
		m.item("Copy spot", "", "y", onRow, actionCopy),
		m.item("Revert cell", "", "r", m.store.IsModified(d.key), actionRevertCell),
		m.item("Back to schedule", "", "esc", true, actionBack),
	}
}

// openMenuAtFocus opens the context menu under the focused cell.
func (m *Model) openMenuAtFocus() tea.Cmd {
	var x, y int
	if m.inDetail() {
		x, y = cellOrigin(m.detail.state, m.detail.vp, m.width)
	} else {
		x, y = cellOrigin(m.sched.state, m.sched.vp, m.width)
	}
	return m.openMenuAt(x, y+1)
}

// openMenuAt opens the context menu of the screen on display at (x, y).
func (m *Model) openMenuAt(x, y int) tea.Cmd {
	entries := m.schedulerMenu()
	if m.inDetail() {
		entries = m.detailMenu()
	}
	*m.pending = actionNone
	m.menu.Open(entries, x, y, m.width)
	if w := m.widestSubmenu(entries); w > 0 {
		m.menu.SubmenuWidth = w
	}
	m.pointer.reset()
	m.setMode(ModeMenu, "context menu")
	return nil
}

// cellOrigin returns the screen position of the focused cell.
func cellOrigin[T any](s *grid.State[T], vp grid.Viewport, width int) (x, y int) {
	row, col := s.Focus()
	y = gridTop + 1 + max(row-vp.Top, 0)
	l := s.Layout()
	if col < 0 {
		return 0, y
	}
	switch l.RegionOf(col) {
	case grid.FrozenLeft:
		x = sumWidths(l.Left[:col])
	case grid.FrozenRight:
		x = width - l.FrozenRightWidth() + sumWidths(l.Right[:col-len(l.Left)-len(l.Middle)])
	default:
		x = l.FrozenLeftWidth() + sumWidths(l.Middle[:col-len(l.Left)]) - vp.HScroll
		x = max(x, l.FrozenLeftWidth())
	}
	return x, y
}

func sumWidths(cols []grid.LayoutColumn) int {
	w := 0
	for _, c := range cols {
		w += c.Width
	}
	return w
}

// afterMenu runs the recorded action once the menu has closed.
func (m *Model) afterMenu() tea.Cmd {
	if m.menu.IsOpen() {
		return nil
	}
	m.restoreMode("menu closed")
	a := *m.pending
	*m.pending = actionNone
	return m.runAction(a)
}

func (m *Model) handleMenuKey(msg tea.KeyMsg) tea.Cmd {
	var k menu.Key
	switch msg.String() {
	case "up", "k":
		k = menu.KeyUp
	case "down", "j":
		k = menu.KeyDown
	case "left", "h":
		k = menu.KeyLeft
	case "right", "l":
		k = menu.KeyRight
	case "enter", " ":
		k = menu.KeyEnter
	case "esc":
		k = menu.KeyEscape
	case "m", "q":
		m.menu.Dismiss()
		return m.afterMenu()
	default:
		return nil
	}
	m.menu.HandleKey(k)
	return m.afterMenu()
}

func (m *Model) handleMenuMouse(msg tea.MouseMsg) tea.Cmd {
	p := m.pointer
	level, idx, inside := menuHit(m.menuBoxes(), msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionMotion:
		if !inside {
			if p.menuEntered {
				m.menu.PointerExit()
			}
			return m.afterMenu()
		}
		p.menuEntered = true
		if level == 0 && idx >= 0 && idx != p.menuHover {
			p.menuHover = idx
			m.menu.Hover(idx)
		}
		return nil

	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft && msg.Button != tea.MouseButtonRight {
			return nil
		}
		if !inside {
			m.menu.Dismiss()
			return m.afterMenu()
		}
		if idx < 0 || msg.Button != tea.MouseButtonLeft {
			return nil
		}
		path := append(m.menu.Expanded()[:level], idx)
		m.menu.Click(path)
		return m.afterMenu()
	}
	return nil
}

// runAction performs a menu action on the screen on display.
func (m *Model) runAction(a menuAction) tea.Cmd {
	if a == actionNone {
		return nil
	}
	detail := m.inDetail()
	switch a {
	case actionOpen:
		return m.openDetail()
	case actionBack:
		m.closeDetail()
	case actionAddSpot:
		if !detail {
			return m.addSpot()
		}
		if err := m.detail.addSpot(m.config.Schedule.DefaultSpotSeconds); err != nil {
			return m.setError("add spot", err)
		}
		m.afterDetailChange()
	case actionDeleteSpot:
		if detail {
			return m.deleteFocusedSpot()
		}
		return m.deleteLastSpot()
	case actionRevertCell:
		if !detail {
			return m.revertCell()
		}
		m.store.Revert(m.detail.key)
		m.afterDetailChange()
		return m.setStatus("Reverted " + m.cellLabel(m.detail.key))
	case actionRevertAll:
		return m.revertAll()
	case actionSave:
		return m.save()
	case actionCopy:
		if detail {
			return m.copySpot()
		}
		return m.copyCell()
	case actionCopyFlow:
		return m.copyProgramFlow()
	case actionExport:
		return m.promptExport()
	case actionPreview:
		return m.startReport(reportPreview, "")
	case actionPrint:
		return m.startReport(reportPrint, "")
	case actionCancelReport:
		return m.cancelReport()
	case actionNarrow:
		return m.resizeColumn(-1)
	case actionWiden:
		return m.resizeColumn(1)
	case actionToggleZone:
		st, _ := m.sched.state.ColumnState(colZone)
		if err := m.sched.state.SetColumnVisible(colZone, !st.Visible); err != nil {
			return m.setError("toggle zone column", err)
		}
		ensureFocusVisible(m.sched.state, &m.sched.vp, m.width)
	case actionEditMessage:
		row, _ := m.detail.state.Focus()
		return m.startEdit(row, colMessage)
	case actionEditLength:
		row, _ := m.detail.state.Focus()
		return m.startEdit(row, colDuration)
	case actionMoveUp:
		return m.moveSpot(-1)
	case actionMoveDown:
		return m.moveSpot(1)
	case actionSortClient:
		return m.sortDetail(colClient)
	case actionSortMessage:
		return m.sortDetail(colMessage)
	case actionSortLength:
		return m.sortDetail(colDuration)
	case actionClearSort:
		return m.sortDetail("")
	}
	return nil
}

// sortDetail sorts the detail ascending by id, or clears the sort when
// id is empty.
func (m *Model) sortDetail(id string) tea.Cmd {
	s := m.detail.state
	// ToggleSort cycles ascending, descending, none; at most three steps
	// reach any state.
	for range 3 {
		cur, dir := s.Sort()
		if id == "" && dir == grid.SortNone {
			return nil
		}
		if id != "" && cur == id && dir == grid.SortAscending {
			return nil
		}
		target := id
		if target == "" {
			target = cur
		}
		if err := s.ToggleSort(target); err != nil {
			return m.setError("sort", err)
		}
	}
	return nil
}

// copyProgramFlow copies the plain-text program flow of the report day.
func (m *Model) copyProgramFlow() tea.Cmd {
	date := m.reportDate()
	return commands.CopyToClipboard(report.Text(m.factory.ProgramFlow(m.store, date)), "program flow for "+date.String())
}

// menuBox is one rendered menu popup and its screen rectangle.
type menuBox struct {
	x, y, w, h int
	entries    int
	content    string
}

// menuBoxes lays out the open menu levels. A submenu opens beside its
// parent row, on the side SubmenuSide picks.
func (m Model) menuBoxes() []menuBox {
	levels := m.menu.Levels()
	if len(levels) == 0 {
		return nil
	}
	boxes := make([]menuBox, 0, len(levels))
	x, y := m.menu.Anchor()
	for i, lv := range levels {
		content := m.renderMenuLevel(lv)
		w, h := lipgloss.Width(content), lipgloss.Height(content)
		if i > 0 {
			parent := boxes[i-1]
			y = parent.y + levels[i-1].Expanded
			if m.menu.SubmenuSide(parent.x, parent.w) == menu.SideLeft {
				x = parent.x - w
			} else {
				x = parent.x + parent.w
			}
		}
		x = max(min(x, m.width-w), 0)
		y = max(min(y, m.height-h), 0)
		boxes = append(boxes, menuBox{x: x, y: y, w: w, h: h, entries: len(lv.Entries), content: content})
	}
	return boxes
}

// menuHit finds the menu entry under (x, y). idx is -1 on a border.
func menuHit(boxes []menuBox, x, y int) (level, idx int, inside bool) {
	for i := len(boxes) - 1; i >= 0; i-- {
		b := boxes[i]
		if x < b.x || x >= b.x+b.w || y < b.y || y >= b.y+b.h {
			continue
		}
		row := y - b.y - 1
		if row < 0 || row >= b.entries || x == b.x || x == b.x+b.w-1 {
			return i, -1, true
		}
		return i, row, true
	}
	return 0, -1, false
}

// widestSubmenu is the widest popup any submenu of entries renders to.
func (m Model) widestSubmenu(entries []menu.Entry) int {
	w := 0
	for _, e := range entries {
		sub, ok := e.(menu.SubMenu)
		if !ok {
			continue
		}
		lv := menu.Level{Entries: sub.Children, Cursor: -1, Expanded: -1}
		w = max(w, lipgloss.Width(m.renderMenuLevel(lv)), m.widestSubmenu(sub.Children))
	}
	return w
}

// renderMenuLevel renders one popup: label column, shortcut column and a
// marker for submenus.
func (m Model) renderMenuLevel(lv menu.Level) string {
	s := m.styles
	hasIcon := false
	for _, e := range lv.Entries {
		if entryIcon(e) != "" {
			hasIcon = true
			break
		}
	}
	labelW, rightW := 0, 0
	for _, e := range lv.Entries {
		labelW = max(labelW, ansi.StringWidth(entryText(e, hasIcon)))
		rightW = max(rightW, ansi.StringWidth(entryRight(e)))
	}
	inner := labelW + rightW + 4

	lines := make([]string, len(lv.Entries))
	for i, e := range lv.Entries {
		if _, ok := e.(menu.Separator); ok {
			lines[i] = s.MenuSeparator.Render(strings.Repeat("─", inner))
			continue
		}
		left := " " + fit(entryText(e, hasIcon), labelW) + "  "
		right := strings.Repeat(" ", rightW-ansi.StringWidth(entryRight(e))) + entryRight(e) + " "

		style, rightStyle := s.MenuItemStyle, s.MenuShortcutStyle
		switch {
		case !menu.Selectable(e):
			style, rightStyle = s.MenuDisabledStyle, s.MenuDisabledStyle
		case i == lv.Cursor || i == lv.Expanded:
			style, rightStyle = s.MenuActiveStyle, s.MenuActiveStyle
		}
		lines[i] = style.Render(left) + rightStyle.Render(right)
	}
	return s.MenuStyle.Render(strings.Join(lines, "\n"))
}

func entryIcon(e menu.Entry) string {
	switch v := e.(type) {
	case menu.Item:
		return v.Icon
	case menu.SubMenu:
		return v.Icon
	}
	return ""
}

func entryText(e menu.Entry, iconColumn bool) string {
	label := menu.Label(e)
	if !iconColumn {
		return label
	}
	icon := entryIcon(e)
	if icon == "" {
		icon = " "
	}
	return icon + " " + label
}

func entryRight(e menu.Entry) string {
	switch v := e.(type) {
	case menu.Item:
		return v.Shortcut
	case menu.SubMenu:
		return "›"
	}
	return ""
}

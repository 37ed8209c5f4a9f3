package tui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/spotgrid/internal/config"
	"github.com/javiermolinar/spotgrid/internal/grid"
	"github.com/javiermolinar/spotgrid/internal/tui/commands"
)

// Wheel steps in rows and cells.
const (
	wheelRows  = 3
	wheelCells = 4
)

// pointerState tracks the press being classified.
type pointerState struct {
	detector *grid.DragDetector

	// seq numbers presses so a stale long-press tick is ignored.
	seq int
	// press is the grid hit under the current primary press.
	press grid.Hit
	// pressX and pressY are the screen position of the press.
	pressX, pressY int
	// menuHover is the top-level menu row under the pointer, -1 for none.
	menuHover int
	// menuEntered is set once the pointer has been over the open menu.
	menuEntered bool
}

func newPointerState(cfg *config.Config) *pointerState {
	d := grid.NewDragDetector(cfg.DragConfig())
	d.Clicks.Timeout = cfg.DoubleClickTimeout()
	d.Clicks.Tolerance = cfg.Grid.DoubleClickDistance
	return &pointerState{detector: d, menuHover: -1}
}

// reset drops any gesture in progress.
func (p *pointerState) reset() {
	p.detector.Cancel()
	p.detector.Clicks.Reset()
	p.seq++
	p.menuHover = -1
	p.menuEntered = false
}

// handleMouse turns terminal mouse events into grid gestures.
func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.sched == nil {
		return nil
	}
	switch m.mode {
	case ModeMenu:
		return m.handleMenuMouse(msg)
	case ModePrompt:
		return nil
	case ModeEdit:
		if msg.Action != tea.MouseActionPress {
			return nil
		}
		if msg.Button != tea.MouseButtonLeft && msg.Button != tea.MouseButtonRight {
			return nil
		}
		// A press on another row drops the edit; anywhere else commits it.
		editing, _ := m.detail.state.Editing()
		if hit := m.hitAt(msg.X, msg.Y); hit.Area == grid.AreaBody && hit.Row != editing.Row {
			m.detail.state.CancelEdit()
			m.stopEditing("cancel")
		} else {
			cmd := m.handleEditKey(tea.KeyMsg{Type: tea.KeyEnter})
			if m.mode == ModeEdit {
				return cmd
			}
		}
	}

	if msg.Action == tea.MouseActionPress {
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.scroll(-wheelRows, 0, msg.Shift)
			return nil
		case tea.MouseButtonWheelDown:
			m.scroll(wheelRows, 0, msg.Shift)
			return nil
		case tea.MouseButtonWheelLeft:
			m.scroll(0, -wheelCells, false)
			return nil
		case tea.MouseButtonWheelRight:
			m.scroll(0, wheelCells, false)
			return nil
		}
	}

	ev, ok := pointerEvent(msg)
	if !ok {
		return nil
	}
	ev.Time = m.now()
	mods := grid.Modifiers{Ctrl: msg.Ctrl, Shift: msg.Shift}

	p := m.pointer
	var tick tea.Cmd
	if ev.Kind == grid.PointerPress && ev.Button == grid.ButtonPrimary {
		p.seq++
		p.press = m.hitAt(msg.X, msg.Y)
		p.pressX, p.pressY = msg.X, msg.Y
		tick = commands.LongPressTick(p.detector.LongPress, p.seq)
	}

	g := p.detector.Handle(ev)
	hit := m.hitAt(msg.X, msg.Y)
	cmd := m.applyGesture(g, hit, mods, msg.X, msg.Y)
	return tea.Batch(tick, cmd)
}

// pointerEvent converts a terminal mouse event. Terminals report button
// releases without the button, so every release is treated as primary.
func pointerEvent(msg tea.MouseMsg) (grid.PointerEvent, bool) {
	ev := grid.PointerEvent{X: float64(msg.X), Y: float64(msg.Y)}
	switch msg.Action {
	case tea.MouseActionPress:
		ev.Kind = grid.PointerPress
		switch msg.Button {
		case tea.MouseButtonLeft:
			ev.Button = grid.ButtonPrimary
		case tea.MouseButtonRight:
			ev.Button = grid.ButtonSecondary
		default:
			return ev, false
		}
	case tea.MouseActionRelease:
		ev.Kind = grid.PointerRelease
		ev.Button = grid.ButtonPrimary
	case tea.MouseActionMotion:
		ev.Kind = grid.PointerMove
	default:
		return ev, false
	}
	return ev, true
}

// longPressTick fires the long press when the press is still held.
func (m *Model) longPressTick(msg commands.LongPressTickMsg) tea.Cmd {
	p := m.pointer
	if msg.Seq != p.seq || m.sched == nil {
		return nil
	}
	g := p.detector.Tick(msg.Time)
	if g.Kind == grid.GestureNone {
		return nil
	}
	return m.applyGesture(g, p.press, grid.Modifiers{}, p.pressX, p.pressY)
}

// hitAt maps a screen position onto the grid on screen.
func (m Model) hitAt(x, y int) grid.Hit {
	if m.inDetail() {
		return hitGrid(m.detail.state, m.detail.vp, m.width, x, y-gridTop)
	}
	return hitGrid(m.sched.state, m.sched.vp, m.width, x, y-gridTop)
}

func hitGrid[T any](s *grid.State[T], vp grid.Viewport, width, x, y int) grid.Hit {
	return grid.HitTest(s.Layout(), vp, width, 1, s.RowCount(), x, y)
}

// scroll moves the viewport on screen. Shift turns vertical wheel motion
// into horizontal scrolling.
func (m *Model) scroll(rows, cells int, shift bool) {
	if shift {
		rows, cells = 0, rows*wheelCells/wheelRows
	}
	if m.inDetail() {
		scrollGrid(m.detail.state, &m.detail.vp, m.width, rows, cells)
		return
	}
	scrollGrid(m.sched.state, &m.sched.vp, m.width, rows, cells)
}

func scrollGrid[T any](s *grid.State[T], vp *grid.Viewport, width, rows, cells int) {
	if rows != 0 {
		vp.ScrollBy(rows, s.RowCount())
	}
	if cells != 0 {
		l := s.Layout()
		vp.ScrollHorizontal(cells, l, max(width-l.FrozenLeftWidth()-l.FrozenRightWidth(), 0))
	}
}

// applyGesture acts on a recognized gesture at hit.
func (m *Model) applyGesture(g grid.Gesture, hit grid.Hit, mods grid.Modifiers, x, y int) tea.Cmd {
	LogGesture(g, hit)
	switch g.Kind {
	case grid.GestureClick:
		return m.clickAt(hit, mods)
	case grid.GestureDoubleClick:
		return m.doubleClickAt(hit)
	case grid.GestureSecondaryClick:
		return m.contextClickAt(hit, x, y)
	case grid.GestureLongPress:
		return m.longPressAt(hit, x, y)
	case grid.GestureDragMove:
		m.dragBy(g.DX, g.DY)
	case grid.GestureDragEnd:
		return m.endDrag()
	}
	return nil
}

// clickAt focuses a body cell or toggles the sort of a header.
func (m *Model) clickAt(hit grid.Hit, mods grid.Modifiers) tea.Cmd {
	switch hit.Area {
	case grid.AreaHeader:
		if hit.ColumnID == "" || hit.ColumnID == grid.RowNumberColumnID {
			return nil
		}
		return m.toggleSort(hit.ColumnID)
	case grid.AreaBody:
		if m.inDetail() {
			m.detail.state.Click(hit.Row, hit.Flat, mods)
		} else {
			m.sched.state.Click(hit.Row, hit.Flat, mods)
		}
	}
	return nil
}

// doubleClickAt opens a scheduler cell or edits a detail cell.
func (m *Model) doubleClickAt(hit grid.Hit) tea.Cmd {
	if hit.Area != grid.AreaBody {
		return nil
	}
	if m.inDetail() {
		col, ok := m.detail.state.Column(hit.ColumnID)
		if !ok || !col.Editable {
			return nil
		}
		return m.startEdit(hit.Row, hit.ColumnID)
	}
	m.sched.state.Click(hit.Row, hit.Flat, grid.Modifiers{})
	return m.openDetail()
}

// contextClickAt focuses the clicked cell and opens the context menu at
// the pointer.
func (m *Model) contextClickAt(hit grid.Hit, x, y int) tea.Cmd {
	if hit.Area == grid.AreaNone {
		return nil
	}
	if hit.Area == grid.AreaBody {
		if m.inDetail() {
			if !m.detail.state.IsSelected(hit.Row) {
				m.detail.state.Click(hit.Row, hit.Flat, grid.Modifiers{})
			}
		} else {
			m.sched.state.Click(hit.Row, hit.Flat, grid.Modifiers{})
		}
	}
	return m.openMenuAt(x, y)
}

// longPressAt starts a row or column drag in the break detail. On the
// scheduler, where breaks and days have a fixed order, a long press opens
// the context menu instead.
func (m *Model) longPressAt(hit grid.Hit, x, y int) tea.Cmd {
	if !m.inDetail() {
		m.pointer.detector.Cancel()
		if hit.Area != grid.AreaBody {
			return nil
		}
		m.sched.state.Click(hit.Row, hit.Flat, grid.Modifiers{})
		return m.openMenuAt(x, y)
	}

	s := m.detail.state
	var err error
	switch hit.Area {
	case grid.AreaBody:
		s.Click(hit.Row, hit.Flat, grid.Modifiers{})
		err = s.StartRowDrag(hit.Row)
	case grid.AreaHeader:
		if hit.ColumnID == grid.RowNumberColumnID {
			err = grid.ErrNotReorderable
		} else {
			err = s.StartColumnDrag(hit.ColumnID)
		}
	default:
		m.pointer.detector.Cancel()
		return nil
	}
	if err != nil {
		m.pointer.detector.Cancel()
		switch {
		case errors.Is(err, grid.ErrSortedRows):
			return m.setStatus("Clear the sort to reorder spots")
		case errors.Is(err, grid.ErrNotReorderable):
			return m.setStatus("This column cannot be moved")
		}
		return m.setError("start drag", err)
	}
	return nil
}

func (m *Model) dragBy(dx, dy float64) {
	if !m.inDetail() {
		return
	}
	s := m.detail.state
	if _, ok := s.RowDrag(); ok {
		_ = s.DragRowBy(dy)
		if d, ok := s.RowDrag(); ok {
			m.detail.vp.EnsureVisible(d.Target, s.RowCount())
		}
		return
	}
	if _, ok := s.ColumnDrag(); ok {
		_ = s.DragColumnBy(dx)
	}
}

func (m *Model) endDrag() tea.Cmd {
	if !m.inDetail() {
		return nil
	}
	s := m.detail.state
	if _, ok := s.RowDrag(); ok {
		from, to, moved := s.EndRowDrag()
		if !moved {
			return nil
		}
		if err := m.detail.takeErr(); err != nil {
			return m.setError("move spot", err)
		}
		m.afterDetailChange()
		return m.setStatus(fmt.Sprintf("Moved spot %d to position %d", from+1, to+1))
	}
	if _, ok := s.ColumnDrag(); ok {
		from, to, moved := s.EndColumnDrag()
		if !moved {
			return nil
		}
		a, _ := s.Column(from)
		b, _ := s.Column(to)
		return m.setStatus(fmt.Sprintf("Swapped %s and %s", a.Header, b.Header))
	}
	return nil
}

// cancelDrag abandons an active drag session.
func (m *Model) cancelDrag() bool {
	if !m.inDetail() || !m.detail.state.Dragging() {
		return false
	}
	m.detail.state.CancelRowDrag()
	m.detail.state.CancelColumnDrag()
	m.pointer.reset()
	return true
}

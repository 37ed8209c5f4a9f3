package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/spotgrid/internal/grid"
	"github.com/javiermolinar/spotgrid/internal/schedule"
	"github.com/javiermolinar/spotgrid/internal/tui/commands"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layoutGrids()
		return m, nil

	case commands.StoreLoadedMsg:
		m.month = msg.Month
		m.err = nil
		m.setStore(msg.Store)
		m.setMode(ModeNormal, "month loaded")
		return m, nil

	case commands.SavedMsg:
		if m.store != nil {
			m.store.MarkSaved(msg.Cells)
			m.refreshGrids()
		}
		return m, m.setStatus(fmt.Sprintf("Saved %d %s", msg.Count, plural(msg.Count, "cell", "cells")))

	case commands.ErrMsg:
		m.loading = false
		m.err = msg.Err
		return m, m.setError("command", msg.Err)

	case commands.StatusMsgCmd:
		return m, m.setStatus(msg.Msg)

	case commands.ClearStatusMsg:
		if m.now().Sub(m.statusTime) >= statusDuration {
			m.statusMsg = ""
			m.statusError = false
		}
		return m, nil

	case commands.ReportsCheckedMsg:
		m.reportsAvailable = msg.Available
		return m, nil

	case commands.ReportDoneMsg:
		cmd := m.reportDone(msg)
		return m, cmd

	case commands.LongPressTickMsg:
		cmd := m.longPressTick(msg)
		return m, cmd

	case tea.KeyMsg:
		LogKeyPress(msg)
		cmd := m.handleKey(msg)
		return m, cmd

	case tea.MouseMsg:
		cmd := m.handleMouse(msg)
		return m, cmd
	}

	return m, nil
}

// handleKey routes a key press by mode.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}
	switch m.mode {
	case ModeMenu:
		return m.handleMenuKey(msg)
	case ModePrompt:
		return m.handlePromptKey(msg)
	case ModeEdit:
		return m.handleEditKey(msg)
	case ModeDetail:
		return m.handleDetailKey(msg)
	default:
		return m.handleSchedulerKey(msg)
	}
}

// handleGlobalKey handles the keys shared by both grid screens.
func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit, true
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layoutGrids()
		return nil, true
	case key.Matches(msg, m.keys.Save):
		return m.save(), true
	case key.Matches(msg, m.keys.Menu):
		return m.openMenuAtFocus(), true
	case key.Matches(msg, m.keys.Export):
		return m.promptExport(), true
	case key.Matches(msg, m.keys.Preview):
		return m.startReport(reportPreview, ""), true
	case key.Matches(msg, m.keys.Print):
		return m.startReport(reportPrint, ""), true
	case key.Matches(msg, m.keys.Cancel):
		return m.cancelReport(), true
	}
	return nil, false
}

func (m *Model) handleSchedulerKey(msg tea.KeyMsg) tea.Cmd {
	if m.sched == nil {
		if key.Matches(msg, m.keys.Quit) {
			return tea.Quit
		}
		return nil
	}
	if cmd, ok := m.handleGlobalKey(msg); ok {
		return cmd
	}

	switch {
	case key.Matches(msg, m.keys.Open):
		return m.openDetail()
	case key.Matches(msg, m.keys.AddSpot):
		return m.addSpot()
	case key.Matches(msg, m.keys.DeleteSpot):
		return m.deleteLastSpot()
	case key.Matches(msg, m.keys.Revert):
		return m.revertCell()
	case key.Matches(msg, m.keys.RevertAll):
		return m.revertAll()
	case key.Matches(msg, m.keys.PrevMonth):
		return m.changeMonth(m.month.Prev())
	case key.Matches(msg, m.keys.NextMonth):
		return m.changeMonth(m.month.Next())
	case key.Matches(msg, m.keys.Copy):
		return m.copyCell()
	case key.Matches(msg, m.keys.Narrow):
		return m.resizeColumn(-1)
	case key.Matches(msg, m.keys.Widen):
		return m.resizeColumn(1)
	}

	if ev, ok := m.gridKey(msg); ok {
		if _, err := m.sched.state.HandleKey(ev); err != nil {
			return m.setError("scheduler key", err)
		}
		ensureFocusVisible(m.sched.state, &m.sched.vp, m.width)
		row, col := m.sched.state.Focus()
		LogFocus("scheduler", row, col, m.sched.state.FocusedColumnID())
	}
	return nil
}

func (m *Model) handleDetailKey(msg tea.KeyMsg) tea.Cmd {
	d := m.detail
	if key.Matches(msg, m.keys.Back) {
		if m.cancelDrag() {
			return m.setStatus("Drag cancelled")
		}
		m.closeDetail()
		return nil
	}
	if cmd, ok := m.handleGlobalKey(msg); ok {
		return cmd
	}

	switch {
	case key.Matches(msg, m.keys.Edit):
		return m.startEdit(-1, "")
	case key.Matches(msg, m.keys.AddSpot):
		if err := d.addSpot(m.config.Schedule.DefaultSpotSeconds); err != nil {
			return m.setError("add spot", err)
		}
		m.afterDetailChange()
		return nil
	case key.Matches(msg, m.keys.DeleteSpot):
		return m.deleteFocusedSpot()
	case key.Matches(msg, m.keys.MoveUp):
		return m.moveSpot(-1)
	case key.Matches(msg, m.keys.MoveDown):
		return m.moveSpot(1)
	case key.Matches(msg, m.keys.ColLeft):
		return m.moveColumn(-1)
	case key.Matches(msg, m.keys.ColRight):
		return m.moveColumn(1)
	case key.Matches(msg, m.keys.Sort):
		return m.toggleSort(d.state.FocusedColumnID())
	case key.Matches(msg, m.keys.Narrow):
		return m.resizeColumn(-1)
	case key.Matches(msg, m.keys.Widen):
		return m.resizeColumn(1)
	case key.Matches(msg, m.keys.Revert):
		m.store.Revert(d.key)
		m.afterDetailChange()
		return m.setStatus("Reverted " + m.cellLabel(d.key))
	case key.Matches(msg, m.keys.Copy):
		return m.copySpot()
	}

	if ev, ok := m.gridKey(msg); ok {
		if _, err := d.state.HandleKey(ev); err != nil {
			return m.setError("detail key", err)
		}
		ensureFocusVisible(d.state, &d.vp, m.width)
		row, col := d.state.Focus()
		LogFocus("detail", row, col, d.state.FocusedColumnID())
	}
	return nil
}

// handleEditKey feeds the inline editor. Enter commits, Tab commits and
// moves to the next editable column, Escape cancels.
func (m *Model) handleEditKey(msg tea.KeyMsg) tea.Cmd {
	d := m.detail
	var ev grid.KeyEvent
	switch msg.Type {
	case tea.KeyEsc:
		ev.Key = grid.KeyEscape
	case tea.KeyEnter:
		ev.Key = grid.KeyEnter
	case tea.KeyTab:
		ev.Key = grid.KeyTab
	default:
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		_ = d.state.SetEditValue(m.editor.Value())
		return cmd
	}

	if ev.Key != grid.KeyEscape {
		_ = d.state.SetEditValue(m.editor.Value())
	}
	if _, err := d.state.HandleKey(ev); err != nil {
		if errors.Is(err, grid.ErrInvalidValue) {
			return m.setError("edit", err)
		}
		m.stopEditing("edit failed")
		return m.setError("edit", err)
	}
	if err := d.takeErr(); err != nil {
		m.stopEditing("store rejected edit")
		return m.setError("edit", err)
	}
	m.afterDetailChange()

	if editing, ok := d.state.Editing(); ok {
		m.editor.SetValue(editing.Current)
		m.editor.CursorEnd()
		return nil
	}
	reason := "commit"
	if ev.Key == grid.KeyEscape {
		reason = "cancel"
	}
	m.stopEditing(reason)
	return nil
}

// gridKey maps a key press onto grid navigation.
func (m Model) gridKey(msg tea.KeyMsg) (grid.KeyEvent, bool) {
	switch {
	case key.Matches(msg, m.keys.Up):
		return grid.KeyEvent{Key: grid.KeyUp}, true
	case key.Matches(msg, m.keys.Down):
		return grid.KeyEvent{Key: grid.KeyDown}, true
	case key.Matches(msg, m.keys.Left):
		return grid.KeyEvent{Key: grid.KeyLeft}, true
	case key.Matches(msg, m.keys.Right):
		return grid.KeyEvent{Key: grid.KeyRight}, true
	case key.Matches(msg, m.keys.Home):
		return grid.KeyEvent{Key: grid.KeyHome}, true
	case key.Matches(msg, m.keys.End):
		return grid.KeyEvent{Key: grid.KeyEnd}, true
	case key.Matches(msg, m.keys.PageUp):
		return grid.KeyEvent{Key: grid.KeyPageUp}, true
	case key.Matches(msg, m.keys.PageDown):
		return grid.KeyEvent{Key: grid.KeyPageDown}, true
	}
	switch msg.String() {
	case " ":
		return grid.KeyEvent{Key: grid.KeySpace}, true
	case "ctrl+a":
		return grid.KeyEvent{Key: grid.KeyA, Ctrl: true}, true
	}
	return grid.KeyEvent{}, false
}

// refreshGrids re-reads the store into both grids.
func (m *Model) refreshGrids() {
	if m.sched != nil {
		m.sched.refresh()
	}
	if m.detail != nil {
		m.detail.refresh()
	}
}

// afterDetailChange keeps the scheduler in step with detail edits.
func (m *Model) afterDetailChange() {
	m.sched.refresh()
	ensureFocusVisible(m.detail.state, &m.detail.vp, m.width)
}

// openDetail opens the break detail of the focused cell.
func (m *Model) openDetail() tea.Cmd {
	k, ok := m.sched.focusedKey()
	if !ok {
		return m.setStatus("Select a day cell to open its break")
	}
	opts := m.gridOptions()
	opts.Selection = grid.SelectionMultiple
	m.detail = newBreakDetail(m.store, k, opts)
	m.detail.vp.SetRows(m.bodyRows())
	if m.detail.state.RowCount() > 0 {
		m.detail.state.SetFocus(0, m.detail.state.Layout().FlatIndex(colMessage))
	}
	m.setMode(ModeDetail, "open break")
	m.layoutGrids()
	return nil
}

// closeDetail returns to the scheduler.
func (m *Model) closeDetail() {
	m.detail = nil
	m.pointer.reset()
	m.sched.refresh()
	m.setMode(ModeNormal, "close break")
	m.layoutGrids()
}

// startEdit opens the inline editor on a cell. A negative row edits the
// focused cell.
func (m *Model) startEdit(row int, columnID string) tea.Cmd {
	d := m.detail
	if row < 0 {
		row, _ = d.state.Focus()
		columnID = d.state.FocusedColumnID()
	}
	if err := d.state.StartEdit(row, columnID); err != nil {
		if errors.Is(err, grid.ErrNotEditable) {
			return m.setStatus("Only the message and length can be edited")
		}
		return m.setError("start edit", err)
	}
	editing, _ := d.state.Editing()
	m.editor.SetValue(editing.Current)
	m.editor.CursorEnd()
	m.setMode(ModeEdit, "edit "+columnID)
	return m.editor.Focus()
}

// stopEditing leaves the inline editor.
func (m *Model) stopEditing(reason string) {
	m.editor.Blur()
	m.editor.SetValue("")
	m.setMode(ModeDetail, reason)
}

func (m *Model) addSpot() tea.Cmd {
	k, ok := m.sched.focusedKey()
	if !ok {
		return m.setStatus("Select a day cell first")
	}
	if _, err := m.store.AddSpot(k, schedule.NewSpot(m.config.Schedule.DefaultSpotSeconds)); err != nil {
		return m.setError("add spot", err)
	}
	m.sched.refresh()
	return m.setStatus("Added spot to " + m.cellLabel(k))
}

func (m *Model) deleteLastSpot() tea.Cmd {
	k, ok := m.sched.focusedKey()
	if !ok {
		return m.setStatus("Select a day cell first")
	}
	if err := m.store.DeleteLastSpot(k); err != nil {
		if errors.Is(err, schedule.ErrSpotOutOfRange) {
			return m.setStatus("No spots to delete")
		}
		return m.setError("delete spot", err)
	}
	m.sched.refresh()
	return m.setStatus("Deleted last spot of " + m.cellLabel(k))
}

func (m *Model) deleteFocusedSpot() tea.Cmd {
	n, err := m.detail.deleteFocused()
	if err != nil {
		if errors.Is(err, errNoFocus) {
			return m.setStatus("No spot selected")
		}
		return m.setError("delete spot", err)
	}
	m.afterDetailChange()
	return m.setStatus(fmt.Sprintf("Deleted %d %s", n, plural(n, "spot", "spots")))
}

func (m *Model) moveSpot(delta int) tea.Cmd {
	if err := m.detail.moveFocused(delta); err != nil {
		if errors.Is(err, grid.ErrSortedRows) {
			return m.setStatus("Clear the sort to reorder spots")
		}
		return m.setError("move spot", err)
	}
	m.afterDetailChange()
	return nil
}

func (m *Model) revertCell() tea.Cmd {
	k, ok := m.sched.focusedKey()
	if !ok || !m.store.IsModified(k) {
		return m.setStatus("Nothing to revert")
	}
	m.store.Revert(k)
	m.sched.refresh()
	return m.setStatus("Reverted " + m.cellLabel(k))
}

func (m *Model) revertAll() tea.Cmd {
	if !m.store.HasChanges() {
		return m.setStatus("Nothing to revert")
	}
	n := len(m.store.Modified())
	m.store.RevertAll()
	m.refreshGrids()
	return m.setStatus(fmt.Sprintf("Reverted %d %s", n, plural(n, "cell", "cells")))
}

func (m *Model) save() tea.Cmd {
	if m.store == nil || !m.store.HasChanges() {
		return m.setStatus("Nothing to save")
	}
	m.statusMsg = "Saving..."
	m.statusError = false
	return commands.Save(m.repo, m.store)
}

// changeMonth loads another month. Unsaved changes block it since the
// store only covers the month on screen.
func (m *Model) changeMonth(to schedule.Month) tea.Cmd {
	if m.store != nil && m.store.HasChanges() {
		return m.setStatus("Save or revert changes before leaving " + m.month.Title())
	}
	if m.loading {
		return m.setStatus("Loading " + to.Title() + "...")
	}
	// m.month follows the store; it changes when the load arrives.
	m.loading = true
	return commands.LoadMonth(m.repo, m.config.DefaultBreaks(), to)
}

func (m *Model) copyCell() tea.Cmd {
	k, ok := m.sched.focusedKey()
	if !ok {
		return m.setStatus("Select a day cell first")
	}
	return commands.CopyToClipboard(m.sched.cellDescription(k), m.cellLabel(k))
}

func (m *Model) copySpot() tea.Cmd {
	d := m.detail
	row, _ := d.state.Focus()
	it, ok := d.state.Item(row)
	if !ok {
		return m.setStatus("No spot selected")
	}
	text := fmt.Sprintf("%s %s %s (%s)", d.airTime(it), it.ClientName, it.Message, schedule.FormatDuration(it.DurationSeconds))
	return commands.CopyToClipboard(text, "spot")
}

func (m *Model) resizeColumn(delta int) tea.Cmd {
	var err error
	if m.inDetail() {
		err = m.detail.state.UpdateColumnWidth(m.detail.state.FocusedColumnID(), delta)
		ensureFocusVisible(m.detail.state, &m.detail.vp, m.width)
	} else {
		err = m.sched.state.UpdateColumnWidth(m.sched.state.FocusedColumnID(), delta)
		ensureFocusVisible(m.sched.state, &m.sched.vp, m.width)
	}
	if err != nil {
		return m.setError("resize column", err)
	}
	return nil
}

func (m *Model) toggleSort(columnID string) tea.Cmd {
	var err error
	if m.inDetail() {
		err = m.detail.state.ToggleSort(columnID)
	} else {
		err = m.sched.state.ToggleSort(columnID)
	}
	if err != nil {
		return m.setError("sort", err)
	}
	return nil
}

// moveColumn swaps the focused detail column with its neighbour in the
// same region.
func (m *Model) moveColumn(delta int) tea.Cmd {
	s := m.detail.state
	id := s.FocusedColumnID()
	moved, err := swapWithNeighbour(s, id, delta)
	if err != nil {
		if errors.Is(err, grid.ErrNotReorderable) {
			return m.setStatus("This column cannot be moved")
		}
		return m.setError("move column", err)
	}
	if moved {
		row, _ := s.Focus()
		s.SetFocus(row, s.Layout().FlatIndex(id))
		ensureFocusVisible(s, &m.detail.vp, m.width)
	}
	return nil
}

// swapWithNeighbour swaps column id with the next column in its region.
func swapWithNeighbour[T any](s *grid.State[T], id string, delta int) (bool, error) {
	col, ok := s.Column(id)
	if !ok {
		return false, grid.ErrUnknownColumn
	}
	if !col.Reorderable {
		return false, grid.ErrNotReorderable
	}
	l := s.Layout()
	flat := l.FlatIndex(id)
	next := flat + delta
	all := l.Flat()
	if next < 0 || next >= len(all) || l.RegionOf(next) != l.RegionOf(flat) {
		return false, nil
	}
	other, ok := s.Column(all[next].ID)
	if !ok || !other.Reorderable {
		return false, nil
	}
	return true, s.SwapColumns(id, other.ID)
}

// cellLabel names a cell in status messages.
func (m Model) cellLabel(k schedule.Key) string {
	b, _ := m.store.Break(k.BreakID)
	return fmt.Sprintf("%s %s on %s", b.Time, b.Zone.Label(), k.Date)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

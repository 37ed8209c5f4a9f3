package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/spotgrid/internal/schedule"
)

// View renders the title bar, the grid on screen, the status line and
// help, then any open popup on top.
func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	if m.sched == nil {
		msg := "Loading " + m.month.Title() + "..."
		if m.err != nil {
			msg = m.styles.ErrorStyle.Render("Error: " + m.err.Error())
		}
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, msg)
	}

	lines := make([]string, 0, m.height)
	lines = append(lines, m.titleLine())
	lines = append(lines, m.gridLines()...)
	for len(lines) < m.height-m.helpHeight()-1 {
		lines = append(lines, "")
	}
	lines = append(lines, m.statusLine())
	lines = append(lines, m.helpLines()...)
	if len(lines) > m.height {
		lines = lines[:m.height]
	}
	base := strings.Join(lines, "\n")

	switch m.mode {
	case ModeMenu:
		for _, b := range m.menuBoxes() {
			base = m.overlay.Place(base, m.width, m.height, b.x, b.y, b.content)
		}
	case ModePrompt:
		base = m.overlay.Render(base, m.width, m.height, m.promptView())
	}
	return base
}

func (m Model) titleLine() string {
	s := m.styles
	left := s.TitleStyle.Render(" spotgrid ")
	var sub string
	if m.inDetail() {
		d := m.detail
		c := m.store.Cell(d.key)
		sub = fmt.Sprintf(" %s %s · %s · %d %s · %s",
			d.brk.Time, d.brk.Zone.Label(),
			d.key.Date.Time().Format("Mon 2 Jan 2006"),
			c.SpotCount, plural(c.SpotCount, "spot", "spots"),
			schedule.FormatDuration(c.TotalDurationSeconds))
	} else {
		sub = " " + m.month.Title()
		if d, ok := m.sched.focusedDate(); ok {
			t := m.store.DayTotals(d)
			sub += fmt.Sprintf(" · %s: %d %s, %s", d.Time().Format("Mon 2"),
				t.Spots, plural(t.Spots, "spot", "spots"), schedule.FormatDuration(t.Seconds))
		}
	}
	left += s.SubtitleStyle.Render(sub)

	var right []string
	if m.reportJob != "" {
		right = append(right, s.StatusStyle.Render(m.reportJob+"..."))
	}
	if n := len(m.store.Modified()); n > 0 {
		right = append(right, s.DirtyStyle.Render(fmt.Sprintf("● %d modified", n)))
	}
	r := strings.Join(right, "  ")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(r) - 1
	if gap < 1 {
		return fit(left, m.width)
	}
	return left + strings.Repeat(" ", gap) + r + " "
}

// gridLines renders the header and visible rows of the grid on screen.
func (m Model) gridLines() []string {
	if m.inDetail() {
		editor := ""
		if m.mode == ModeEdit || m.prevMode == ModeEdit && (m.mode == ModeMenu || m.mode == ModePrompt) {
			editor = m.editor.View()
		}
		return gridView[schedule.CommercialItem]{
			state:  m.detail.state,
			vp:     &m.detail.vp,
			styles: m.styles,
			width:  m.width,
			editor: editor,
		}.lines()
	}
	return gridView[schedule.BreakSlot]{
		state:  m.sched.state,
		vp:     &m.sched.vp,
		styles: m.styles,
		width:  m.width,
	}.lines()
}

func (m Model) statusLine() string {
	if m.statusMsg == "" {
		if m.mode == ModeEdit {
			return m.styles.HelpStyle.Render(" enter commit · tab next · esc cancel")
		}
		return ""
	}
	style := m.styles.StatusStyle
	if m.statusError {
		style = m.styles.ErrorStyle
	}
	return style.Render(fit(" "+m.statusMsg, m.width))
}

func (m Model) helpLines() []string {
	var v string
	if m.inDetail() {
		v = m.help.View(detailKeys{m.keys})
	} else {
		v = m.help.View(m.keys)
	}
	lines := strings.Split(v, "\n")
	for len(lines) < m.helpHeight() {
		lines = append(lines, "")
	}
	return lines
}

func (m Model) promptView() string {
	s := m.styles
	body := lipgloss.JoinVertical(lipgloss.Left,
		s.PromptTitleStyle.Render("Export Program Flow"),
		"",
		m.prompt.View(),
		"",
		s.PromptHintStyle.Render("enter save · esc cancel"),
	)
	return s.PromptStyle.Render(body)
}

package tui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/spotgrid/internal/report"
	"github.com/javiermolinar/spotgrid/internal/schedule"
	"github.com/javiermolinar/spotgrid/internal/tui/commands"
)

// reportAction is a way of delivering the Program Flow report.
type reportAction int

const (
	reportExport reportAction = iota
	reportPreview
	reportPrint
)

func (a reportAction) String() string {
	switch a {
	case reportExport:
		return "export"
	case reportPreview:
		return "preview"
	case reportPrint:
		return "print"
	default:
		return "unknown"
	}
}

// reportDate picks the day the report covers: the open break's date, the
// focused day column, today when it is in the month, or the first day.
func (m Model) reportDate() schedule.Date {
	if m.inDetail() {
		return m.detail.key.Date
	}
	if m.sched != nil {
		if d, ok := m.sched.focusedDate(); ok {
			return d
		}
	}
	if today := schedule.DateOf(m.now()); m.month.Contains(today) {
		return today
	}
	return m.month.First()
}

func (m Model) reportOptions(dest string) report.Options {
	return report.Options{
		FileName:    filepath.Base(dest),
		LogoPath:    m.config.Report.LogoPath,
		Destination: dest,
	}
}

// canReport reports whether export, preview and print are enabled.
func (m Model) canReport() bool {
	return m.reportsAvailable && !m.runner.Busy()
}

// reportBlocked explains why a report action cannot start.
func (m *Model) reportBlocked() tea.Cmd {
	if !m.reportsAvailable {
		return m.setStatus("Reports are not available")
	}
	return m.setStatus("A report is already running (ctrl+x cancels)")
}

// promptExport asks where the PDF goes.
func (m *Model) promptExport() tea.Cmd {
	if m.store == nil {
		return nil
	}
	if !m.canReport() {
		return m.reportBlocked()
	}
	date := m.reportDate()
	data := m.factory.ProgramFlow(m.store, date)
	name := report.FileName("program-flow-"+date.String(), data, m.now())

	m.prompt.SetValue(filepath.Join(m.config.Report.OutputDir, name))
	m.prompt.CursorEnd()
	if !m.overlay.Active() {
		m.overlay.Toggle()
	}
	m.pointer.reset()
	m.setMode(ModePrompt, "export prompt")
	return m.prompt.Focus()
}

func (m *Model) handlePromptKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.closePrompt()
		res := report.Cancelled()
		LogReport(reportExport.String(), &res)
		return m.setStatus(res.Message)
	case "enter":
		dest := strings.TrimSpace(m.prompt.Value())
		m.closePrompt()
		if dest == "" {
			res := report.Cancelled()
			LogReport(reportExport.String(), &res)
			return m.setStatus(res.Message)
		}
		return m.startReport(reportExport, dest)
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return cmd
}

func (m *Model) closePrompt() {
	m.prompt.Blur()
	m.overlay.Hide()
	m.restoreMode("export prompt closed")
}

// startReport builds the report data on the UI goroutine and hands
// delivery to the runner.
func (m *Model) startReport(action reportAction, dest string) tea.Cmd {
	if m.store == nil {
		return nil
	}
	if !m.reportsAvailable {
		return m.reportBlocked()
	}
	data := m.factory.ProgramFlow(m.store, m.reportDate())
	opts := m.reportOptions(dest)
	svc := m.reports

	job := func(ctx context.Context) report.Result {
		switch action {
		case reportExport:
			return svc.Export(ctx, data, opts)
		case reportPreview:
			return svc.Preview(ctx, data, opts)
		default:
			return svc.Print(ctx, data, opts)
		}
	}

	h, err := m.runner.Start(context.Background(), action.String(), job)
	if err != nil {
		if errors.Is(err, report.ErrBusy) {
			return m.setStatus("A report is already running (ctrl+x cancels)")
		}
		return m.setError("start report", err)
	}
	m.reportJob = action.String()
	LogReport(m.reportJob, nil)

	var progress tea.Cmd
	switch action {
	case reportExport:
		progress = m.setStatus("Exporting " + opts.FileName + "...")
	case reportPreview:
		progress = m.setStatus("Rendering preview...")
	default:
		progress = m.setStatus("Sending to printer...")
	}
	return tea.Batch(progress, commands.WaitReport(action.String(), h))
}

// reportDone shows the outcome of a report job.
func (m *Model) reportDone(msg commands.ReportDoneMsg) tea.Cmd {
	m.reportJob = ""
	res := msg.Result
	LogReport(msg.Name, &res)
	if res.Status == report.StatusError {
		err := res.Err
		if err == nil {
			err = errors.New(res.Message)
		}
		m.statusMsg = res.String()
		m.statusError = true
		m.statusTime = m.now()
		LogError("report "+msg.Name, err)
		return clearStatusAfter(statusDuration)
	}
	return m.setStatus(res.Message)
}

func (m *Model) cancelReport() tea.Cmd {
	if !m.runner.Cancel() {
		return m.setStatus("No report is running")
	}
	return m.setStatus("Cancelling " + m.reportJob + "...")
}

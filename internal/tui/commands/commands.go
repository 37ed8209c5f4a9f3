// Package commands provides TUI command constructors and message types.
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/spotgrid/internal/report"
	"github.com/javiermolinar/spotgrid/internal/schedule"
)

// StoreLoadedMsg is sent when a month has been loaded.
type StoreLoadedMsg struct {
	Month schedule.Month
	Store *schedule.Store
}

// SavedMsg is sent when pending changes were written to the repository.
// Cells is the snapshot that was written.
type SavedMsg struct {
	Count int
	Cells map[schedule.Key]schedule.CellData
}

// ErrMsg is sent when an error occurs.
type ErrMsg struct {
	Err error
}

// StatusMsgCmd is sent for temporary status messages.
type StatusMsgCmd struct {
	Msg string
}

// ClearStatusMsg is sent to clear the status message.
type ClearStatusMsg struct{}

// LongPressTickMsg fires once the long-press delay of a pointer press has
// elapsed. Seq identifies the press so stale ticks can be ignored.
type LongPressTickMsg struct {
	Seq  int
	Time time.Time
}

// ReportDoneMsg is sent when a report job resolves.
type ReportDoneMsg struct {
	Name   string
	Result report.Result
}

// ReportsCheckedMsg carries the answer of the report capability check.
type ReportsCheckedMsg struct {
	Available bool
}

// reportCheckTimeout bounds the capability check against a report server.
const reportCheckTimeout = 5 * time.Second

// clipboardWrite is swapped out in tests.
var clipboardWrite = clipboard.WriteAll

// LoadMonth seeds the default breaks when the repository has none and
// loads month into a fresh store.
func LoadMonth(repo schedule.Repository, defaults []schedule.BreakSlot, month schedule.Month) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if _, err := schedule.EnsureBreaks(ctx, repo, defaults); err != nil {
			return ErrMsg{Err: err}
		}
		store, err := schedule.LoadMonth(ctx, repo, month)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return StoreLoadedMsg{Month: month, Store: store}
	}
}

// Save writes a snapshot of the store's pending changes. The snapshot is
// taken on the caller's goroutine; the receiver marks it saved.
func Save(repo schedule.Repository, store *schedule.Store) tea.Cmd {
	changes := store.Changes()
	return func() tea.Msg {
		if err := repo.SaveCells(context.Background(), changes); err != nil {
			return ErrMsg{Err: fmt.Errorf("saving %d cells: %w", len(changes), err)}
		}
		return SavedMsg{Count: len(changes), Cells: changes}
	}
}

// LongPressTick schedules the long-press check for press seq.
func LongPressTick(after time.Duration, seq int) tea.Cmd {
	return tea.Tick(after, func(t time.Time) tea.Msg {
		return LongPressTickMsg{Seq: seq, Time: t}
	})
}

// WaitReport blocks on a running report job.
func WaitReport(name string, h *report.Handle) tea.Cmd {
	return func() tea.Msg {
		return ReportDoneMsg{Name: name, Result: h.Wait()}
	}
}

// CheckReports asks svc whether reports can be produced. A remote service
// answers over the network, so the check runs off the UI goroutine.
func CheckReports(svc report.Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), reportCheckTimeout)
		defer cancel()
		return ReportsCheckedMsg{Available: svc.Available(ctx)}
	}
}

// CopyToClipboard writes text to the system clipboard.
func CopyToClipboard(text, what string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboardWrite(text); err != nil {
			return ErrMsg{Err: fmt.Errorf("copying %s: %w", what, err)}
		}
		return StatusMsgCmd{Msg: "Copied " + what}
	}
}

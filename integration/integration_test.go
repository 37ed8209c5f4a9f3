package integration

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/javiermolinar/spotgrid/internal/config"
	"github.com/javiermolinar/spotgrid/internal/db"
	"github.com/javiermolinar/spotgrid/internal/report"
	"github.com/javiermolinar/spotgrid/internal/schedule"
	"github.com/javiermolinar/spotgrid/internal/server"
)

var december = schedule.Month{Year: 2025, Month: time.December}

// openRepo opens a file-backed repository in dir with automatic cleanup.
func openRepo(t *testing.T, dir string) *db.SQLite {
	t.Helper()
	repo, err := db.New(filepath.Join(dir, "spotgrid.db"))
	if err != nil {
		t.Fatalf("failed to open repo: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

// loadMonth seeds the default breaks and loads month.
func loadMonth(t *testing.T, repo schedule.Repository, month schedule.Month) *schedule.Store {
	t.Helper()
	ctx := context.Background()
	if _, err := schedule.EnsureBreaks(ctx, repo, config.Default().DefaultBreaks()); err != nil {
		t.Fatalf("EnsureBreaks: %v", err)
	}
	store, err := schedule.LoadMonth(ctx, repo, month)
	if err != nil {
		t.Fatalf("LoadMonth: %v", err)
	}
	return store
}

func mustParseDate(t *testing.T, s string) schedule.Date {
	t.Helper()
	d, err := schedule.ParseDate(s)
	if err != nil {
		t.Fatalf("failed to parse date %q: %v", s, err)
	}
	return d
}

// addSpot books a spot with the given message and length.
func addSpot(t *testing.T, store *schedule.Store, key schedule.Key, message string, seconds int) {
	t.Helper()
	spot := schedule.NewSpot(seconds)
	spot.Message = message
	spot.ClientName = "Acme"
	spot.ClientCode = "AC01"
	if _, err := store.AddSpot(key, spot); err != nil {
		t.Fatalf("AddSpot: %v", err)
	}
}

func messages(c schedule.CellData) []string {
	out := make([]string, len(c.Items))
	for i, it := range c.Items {
		out[i] = it.Message
	}
	return out
}

func TestSeedBreaksOnce(t *testing.T) {
	dir := t.TempDir()
	repo := openRepo(t, dir)

	first := loadMonth(t, repo, december).Breaks()
	second := loadMonth(t, repo, december).Breaks()

	if len(first) != len(config.Default().Schedule.Breaks) {
		t.Fatalf("breaks = %d, want the defaults", len(first))
	}
	if !slices.Equal(first, second) {
		t.Error("seeding twice must not add breaks")
	}
	for i := 1; i < len(first); i++ {
		if schedule.TimeToMinutes(first[i-1].Time) > schedule.TimeToMinutes(first[i].Time) {
			t.Errorf("breaks out of order: %s before %s", first[i-1].Time, first[i].Time)
		}
	}
}

func TestSaveAndReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	repo := openRepo(t, dir)
	store := loadMonth(t, repo, december)
	key := schedule.Key{BreakID: store.Breaks()[0].ID, Date: mustParseDate(t, "2025-12-24")}

	addSpot(t, store, key, "Holiday sale", 30)
	addSpot(t, store, key, "Gift cards", 20)
	addSpot(t, store, key, "Toy store", 15)
	if err := store.ReorderSpot(key, 2, 0); err != nil {
		t.Fatalf("ReorderSpot: %v", err)
	}
	if err := store.UpdateSpot(key, 1, func(it *schedule.CommercialItem) { it.DurationSeconds = 45 }); err != nil {
		t.Fatalf("UpdateSpot: %v", err)
	}

	n, err := schedule.Save(ctx, repo, store)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if n != 1 || store.HasChanges() {
		t.Errorf("saved %d cells, changes left = %v", n, store.HasChanges())
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := loadMonth(t, openRepo(t, dir), december)
	cell := reopened.Cell(key)
	if got := messages(cell); !slices.Equal(got, []string{"Toy store", "Holiday sale", "Gift cards"}) {
		t.Errorf("messages = %v", got)
	}
	if cell.SpotCount != 3 || cell.TotalDurationSeconds != 15+45+20 {
		t.Errorf("cell = %d spots, %ds", cell.SpotCount, cell.TotalDurationSeconds)
	}
	if cell.Items[0].ClientCode != "AC01" {
		t.Errorf("client code = %q", cell.Items[0].ClientCode)
	}
}

func TestClearCellPersists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	repo := openRepo(t, dir)
	store := loadMonth(t, repo, december)
	key := schedule.Key{BreakID: store.Breaks()[1].ID, Date: mustParseDate(t, "2025-12-02")}

	addSpot(t, store, key, "One", 30)
	if _, err := schedule.Save(ctx, repo, store); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.DeleteLastSpot(key); err != nil {
		t.Fatalf("DeleteLastSpot: %v", err)
	}
	if _, err := schedule.Save(ctx, repo, store); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if c := loadMonth(t, repo, december).Cell(key); !c.Empty() {
		t.Errorf("expected the cell to be cleared, got %v", messages(c))
	}
}

func TestRevertRestoresSaved(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	repo := openRepo(t, dir)
	store := loadMonth(t, repo, december)
	key := schedule.Key{BreakID: store.Breaks()[0].ID, Date: mustParseDate(t, "2025-12-10")}

	addSpot(t, store, key, "Saved", 30)
	if _, err := schedule.Save(ctx, repo, store); err != nil {
		t.Fatalf("Save: %v", err)
	}
	addSpot(t, store, key, "Draft", 30)
	if !store.IsModified(key) {
		t.Fatal("expected a modified cell")
	}

	store.Revert(key)
	if got := messages(store.Cell(key)); !slices.Equal(got, []string{"Saved"}) {
		t.Errorf("messages = %v, want [Saved]", got)
	}
	if store.IsModified(key) {
		t.Error("revert must clear the modified flag")
	}
}

func TestMonthBoundary(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	repo := openRepo(t, dir)
	store := loadMonth(t, repo, december)
	breakID := store.Breaks()[0].ID

	nye := schedule.Key{BreakID: breakID, Date: mustParseDate(t, "2025-12-31")}
	newYear := schedule.Key{BreakID: breakID, Date: mustParseDate(t, "2026-01-01")}
	addSpot(t, store, nye, "Countdown", 30)
	addSpot(t, store, newYear, "Resolutions", 30)
	if _, err := schedule.Save(ctx, repo, store); err != nil {
		t.Fatalf("Save: %v", err)
	}

	dec := loadMonth(t, repo, december)
	if dec.Cell(nye).Empty() || !dec.Cell(newYear).Empty() {
		t.Error("December holds only its own days")
	}
	jan := loadMonth(t, repo, december.Next())
	if !jan.Cell(nye).Empty() || jan.Cell(newYear).Empty() {
		t.Error("January holds only its own days")
	}
	if got := dec.BreakTotals(breakID, december); got.Spots != 1 {
		t.Errorf("December totals = %+v", got)
	}
}

// programFlow loads a booked day and builds its report data.
func programFlow(t *testing.T) report.Data {
	t.Helper()
	repo := openRepo(t, t.TempDir())
	store := loadMonth(t, repo, december)
	date := mustParseDate(t, "2025-12-24")
	key := schedule.Key{BreakID: store.Breaks()[4].ID, Date: date}
	addSpot(t, store, key, "Holiday sale", 30)
	addSpot(t, store, key, "Gift cards", 20)
	return report.NewFactory("Program Flow", "").ProgramFlow(store, date)
}

func TestProgramFlowFromStore(t *testing.T) {
	data := programFlow(t)

	if len(data.TimeSlotGroups) != 7 {
		t.Fatalf("groups = %d, want one per break", len(data.TimeSlotGroups))
	}
	prime := data.TimeSlotGroups[4]
	if prime.TimeLabel != "20:55 Prime" || prime.SpotCount != 2 || prime.TotalDuration != "0:50" {
		t.Errorf("prime group = %+v", prime)
	}
	if prime.Items[1].Time != "20:55:30" {
		t.Errorf("second air time = %q", prime.Items[1].Time)
	}
	if data.TimeSlotGroups[0].SpotCount != 0 {
		t.Error("unbooked breaks yield empty groups")
	}
}

func TestLocalExport(t *testing.T) {
	data := programFlow(t)
	dest := filepath.Join(t.TempDir(), "exports", "flow")

	svc := report.NewLocalService(report.PDFGenerator{Author: "spotgrid"}, nil)
	res := svc.Export(context.Background(), data, report.Options{Destination: dest})

	if !res.OK() {
		t.Fatalf("Export: %s", res)
	}
	if res.FilePath != dest+".pdf" {
		t.Errorf("path = %q", res.FilePath)
	}
	pdf, err := os.ReadFile(res.FilePath)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Error("expected a PDF")
	}
}

// recordingLauncher captures opened and printed files.
type recordingLauncher struct {
	mu      sync.Mutex
	opened  []string
	printed []string
}

func (l *recordingLauncher) Open(_ context.Context, path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.opened = append(l.opened, path)
	return nil
}

func (l *recordingLauncher) Print(_ context.Context, path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.printed = append(l.printed, path)
	return nil
}

func TestRemoteReportRoundTrip(t *testing.T) {
	data := programFlow(t)
	handler, _ := server.NewHandler(server.Config{Version: "test"}, report.PDFGenerator{}, nil)
	srv := httptest.NewServer(handler)
	defer srv.Close()

	launcher := &recordingLauncher{}
	svc, err := report.NewRemoteService(srv.URL, launcher)
	if err != nil {
		t.Fatalf("NewRemoteService: %v", err)
	}
	ctx := context.Background()

	if !svc.Available(ctx) {
		t.Fatal("expected the server to report a generator")
	}

	dest := filepath.Join(t.TempDir(), "remote.pdf")
	res := svc.Export(ctx, data, report.Options{FileName: "remote.pdf", Destination: dest})
	if !res.OK() {
		t.Fatalf("Export: %s", res)
	}
	pdf, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Error("expected a PDF from the server")
	}

	if res := svc.Preview(ctx, data, report.Options{FileName: "preview.pdf"}); !res.OK() {
		t.Fatalf("Preview: %s", res)
	}
	if res := svc.Print(ctx, data, report.Options{FileName: "print.pdf"}); !res.OK() {
		t.Fatalf("Print: %s", res)
	}
	if len(launcher.opened) != 1 || len(launcher.printed) != 1 {
		t.Errorf("opened %v, printed %v", launcher.opened, launcher.printed)
	}
	t.Cleanup(func() {
		for _, p := range append(launcher.opened, launcher.printed...) {
			_ = os.Remove(p)
		}
	})
}

func TestRemoteRejectsEmptyReport(t *testing.T) {
	handler, _ := server.NewHandler(server.Config{}, report.PDFGenerator{}, nil)
	srv := httptest.NewServer(handler)
	defer srv.Close()

	svc, err := report.NewRemoteService(srv.URL, &recordingLauncher{})
	if err != nil {
		t.Fatalf("NewRemoteService: %v", err)
	}
	res := svc.Export(context.Background(), report.Data{Title: "Empty"}, report.Options{
		Destination: filepath.Join(t.TempDir(), "empty.pdf"),
	})
	if res.OK() || res.Status != report.StatusError {
		t.Errorf("expected an error result, got %s", res)
	}
}

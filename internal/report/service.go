package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Service delivers reports. Every method resolves to a Result.
type Service interface {
	// Available reports whether reports can be produced here.
	Available(ctx context.Context) bool
	// Export writes the report to opts.Destination.
	Export(ctx context.Context, data Data, opts Options) Result
	// Preview writes the report to a temporary file and opens it.
	Preview(ctx context.Context, data Data, opts Options) Result
	// Print sends the report to the default printer.
	Print(ctx context.Context, data Data, opts Options) Result
}

// Launcher opens and prints files with the desktop's tools.
type Launcher interface {
	Open(ctx context.Context, path string) error
	Print(ctx context.Context, path string) error
}

// LocalService renders reports in-process.
type LocalService struct {
	generator Generator
	launcher  Launcher
	tempDir   string
}

var _ Service = (*LocalService)(nil)

// NewLocalService builds a local service. A nil launcher uses the system
// launcher.
func NewLocalService(generator Generator, launcher Launcher) *LocalService {
	if launcher == nil {
		launcher = SystemLauncher{}
	}
	return &LocalService{generator: generator, launcher: launcher, tempDir: os.TempDir()}
}

// Available is always true for the local service.
func (s *LocalService) Available(context.Context) bool {
	return s.generator != nil
}

// Export renders and writes to the destination.
func (s *LocalService) Export(ctx context.Context, data Data, opts Options) Result {
	dest := strings.TrimSpace(opts.Destination)
	if dest == "" {
		return Cancelled()
	}
	if filepath.Ext(dest) == "" {
		dest += ".pdf"
	}
	pdf, res, ok := s.render(ctx, data, opts)
	if !ok {
		return res
	}
	if err := writeFile(dest, pdf); err != nil {
		return Failure("Could not save the report", err)
	}
	return Success("Report saved to "+dest, dest)
}

// Preview renders to a temporary file and opens it.
func (s *LocalService) Preview(ctx context.Context, data Data, opts Options) Result {
	path, res, ok := s.renderTemp(ctx, data, opts)
	if !ok {
		return res
	}
	if err := s.launcher.Open(ctx, path); err != nil {
		return Failure("Could not open the report preview", err)
	}
	return Success("Preview opened", path)
}

// Print renders to a temporary file and sends it to the printer.
func (s *LocalService) Print(ctx context.Context, data Data, opts Options) Result {
	path, res, ok := s.renderTemp(ctx, data, opts)
	if !ok {
		return res
	}
	if err := s.launcher.Print(ctx, path); err != nil {
		return Failure("Could not print the report", err)
	}
	return Success("Report sent to printer", path)
}

func (s *LocalService) render(ctx context.Context, data Data, opts Options) ([]byte, Result, bool) {
	if s.generator == nil {
		return nil, Unavailable(), false
	}
	pdf, err := s.generator.Generate(ctx, data, opts)
	switch {
	case errors.Is(err, context.Canceled):
		return nil, Cancelled(), false
	case err != nil:
		return nil, Failure("Could not generate the report", err), false
	}
	return pdf, Result{}, true
}

func (s *LocalService) renderTemp(ctx context.Context, data Data, opts Options) (string, Result, bool) {
	pdf, res, ok := s.render(ctx, data, opts)
	if !ok {
		return "", res, false
	}
	path := filepath.Join(s.tempDir, FileName(opts.FileName, data, time.Now()))
	if err := writeFile(path, pdf); err != nil {
		return "", Failure("Could not write the temporary report", err), false
	}
	return path, Result{}, true
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// FileName returns the file name for a report: the explicit name when
// given, otherwise one derived from the title and the time.
func FileName(explicit string, data Data, now time.Time) string {
	name := strings.TrimSpace(explicit)
	if name == "" {
		slug := strings.ToLower(strings.Join(strings.Fields(data.Title), "-"))
		if slug == "" {
			slug = "report"
		}
		name = slug + "-" + now.Format("20060102-150405")
	}
	name = filepath.Base(name)
	if filepath.Ext(name) != ".pdf" {
		name += ".pdf"
	}
	return name
}

// UnavailableService is used where reports cannot be produced.
type UnavailableService struct{}

var _ Service = UnavailableService{}

// Unavailable is the fixed result of every UnavailableService call.
func Unavailable() Result {
	return Failure("Reports are not available: configure report.mode as local or remote", ErrUnavailable)
}

func (UnavailableService) Available(context.Context) bool { return false }

func (UnavailableService) Export(context.Context, Data, Options) Result { return Unavailable() }

func (UnavailableService) Preview(context.Context, Data, Options) Result { return Unavailable() }

func (UnavailableService) Print(context.Context, Data, Options) Result { return Unavailable() }

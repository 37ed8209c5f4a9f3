package report

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// SystemLauncher opens files with the platform opener and prints with lp.
type SystemLauncher struct{}

var _ Launcher = SystemLauncher{}

// Open shows path in the default viewer.
func (SystemLauncher) Open(_ context.Context, path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting viewer: %w", err)
	}
	// The viewer is not tied to the job context; reap it in the background.
	go func() { _ = cmd.Wait() }()
	return nil
}

// Print submits path to the default printer.
func (SystemLauncher) Print(ctx context.Context, path string) error {
	name := "lp"
	if runtime.GOOS == "windows" {
		return fmt.Errorf("printing is not supported on %s", runtime.GOOS)
	}
	out, err := exec.CommandContext(ctx, name, path).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, out)
	}
	return nil
}

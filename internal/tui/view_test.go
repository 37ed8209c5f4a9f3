package tui

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/javiermolinar/spotgrid/internal/config"
)

func useTrueColor(t *testing.T) {
	t.Helper()
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.TrueColor)
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })
}

func TestView_Scheduler(t *testing.T) {
	useTrueColor(t)
	env := newTestEnv(t)
	env.seed(t, todayKey, "A", "B")

	out := env.m.View()
	lines := strings.Split(out, "\n")
	if len(lines) != env.m.height {
		t.Fatalf("lines = %d, want %d", len(lines), env.m.height)
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w > env.m.width {
			t.Errorf("line %d is %d cells wide, max %d", i, w, env.m.width)
		}
	}

	plain := ansi.Strip(out)
	for _, want := range []string{"spotgrid", "December 2025", "07:30", "21:00", "Month", "2·1:00"} {
		if !strings.Contains(plain, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestView_ModifiedCount(t *testing.T) {
	env := newTestEnv(t)

	if strings.Contains(ansi.Strip(env.m.View()), "modified") {
		t.Error("a clean store shows no modified marker")
	}
	env.press("a")
	plain := ansi.Strip(env.m.View())
	if !strings.Contains(plain, "● 1 modified") {
		t.Error("expected the modified count in the title")
	}
	if !strings.Contains(plain, "*1·0:30") {
		t.Error("expected the modified cell to be marked")
	}
}

func TestView_Detail(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, todayKey, "Summer sale", "Winter sale")
	env.press("enter")

	plain := ansi.Strip(env.m.View())
	for _, want := range []string{"07:30 Morning", "2 spots", "Message", "Summer sale", "07:30:30", "Length"} {
		if !strings.Contains(plain, want) {
			t.Errorf("detail view missing %q", want)
		}
	}
}

func TestView_EditorReplacesCell(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, todayKey, "Summer sale")
	env.press("enter", "enter")
	env.m.editor.SetValue("Autumn")

	plain := ansi.Strip(env.m.View())
	if !strings.Contains(plain, "Autumn") {
		t.Error("expected the editor in the grid")
	}
	if !strings.Contains(plain, "enter commit") {
		t.Error("expected the edit hint")
	}
}

func TestView_MenuAndPrompt(t *testing.T) {
	env := newTestEnv(t, WithReportService(&fakeService{}))

	env.press("m")
	plain := ansi.Strip(env.m.View())
	for _, want := range []string{"Open break", "Add spot", "Report", "›", "Save changes"} {
		if !strings.Contains(plain, want) {
			t.Errorf("menu view missing %q", want)
		}
	}

	env.press("esc", "e")
	plain = ansi.Strip(env.m.View())
	if !strings.Contains(plain, "Export Program Flow") {
		t.Error("expected the export prompt")
	}
}

func TestView_StatusAndError(t *testing.T) {
	env := newTestEnv(t)

	env.m.setStatus("Saved 3 cells")
	if !strings.Contains(ansi.Strip(env.m.View()), "Saved 3 cells") {
		t.Error("expected the status line")
	}
	if got, want := env.m.statusLine(), env.m.styles.StatusStyle.Render(fit(" Saved 3 cells", env.m.width)); got != want {
		t.Error("status must use the status style")
	}

	env.m.setError("test", errors.New("disk full"))
	if got, want := env.m.statusLine(), env.m.styles.ErrorStyle.Render(fit(" disk full", env.m.width)); got != want {
		t.Error("errors must use the error style")
	}
}

func TestView_Loading(t *testing.T) {
	cfg := config.Default()
	cfg.Schedule.Month = "2025-12"
	m := New(&fakeRepo{}, cfg)
	m.width, m.height = 80, 10

	if !strings.Contains(m.View(), "Loading December 2025") {
		t.Error("expected a loading message")
	}
}

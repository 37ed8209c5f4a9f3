package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/javiermolinar/spotgrid/internal/config"
	"github.com/javiermolinar/spotgrid/internal/grid"
	"github.com/javiermolinar/spotgrid/internal/menu"
	"github.com/javiermolinar/spotgrid/internal/report"
	"github.com/javiermolinar/spotgrid/internal/schedule"
	"github.com/javiermolinar/spotgrid/internal/tui/commands"
	"github.com/javiermolinar/spotgrid/internal/tui/theme"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota // Scheduler grid
	ModeDetail             // Break detail grid
	ModeEdit               // Inline editor in the break detail
	ModeMenu               // Context menu open
	ModePrompt             // Export destination prompt
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeDetail:
		return "detail"
	case ModeEdit:
		return "edit"
	case ModeMenu:
		return "menu"
	case ModePrompt:
		return "prompt"
	default:
		return "unknown"
	}
}

// statusDuration is how long a status message stays on screen.
const statusDuration = 3 * time.Second

// gridTop is the screen line of the grid header; line 0 is the title.
const gridTop = 1

// Model is the main TUI model.
type Model struct {
	// Dependencies
	repo    schedule.Repository
	config  *config.Config
	reports report.Service
	runner  *report.Runner
	factory report.Factory
	logger  report.Logger

	// Theme and styles
	theme  *theme.Theme
	styles *Styles
	keys   keyMap
	help   help.Model

	// Schedule state
	month   schedule.Month
	store   *schedule.Store
	sched   *schedulerGrid
	detail  *breakDetail
	loading bool

	mode     Mode
	prevMode Mode // Screen to return to from the menu or prompt

	// Context menu
	menu    *menu.Menu
	pending *menuAction

	// Export prompt and inline editor
	overlay OverlayModel
	prompt  textinput.Model
	editor  textinput.Model

	// Report job in flight, "" when idle
	reportJob string
	// reportsAvailable is the answer of the capability check; report
	// actions stay disabled until it arrives.
	reportsAvailable bool

	pointer *pointerState

	width  int
	height int

	statusMsg   string
	statusError bool
	statusTime  time.Time

	err error
	now func() time.Time
}

// ModelOption configures optional model behavior.
type ModelOption func(*Model)

// WithReportService sets how reports are produced.
func WithReportService(svc report.Service) ModelOption {
	return func(m *Model) {
		m.reports = svc
	}
}

// WithLogger routes report job events to logger.
func WithLogger(logger report.Logger) ModelOption {
	return func(m *Model) {
		m.logger = logger
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ModelOption {
	return func(m *Model) {
		m.now = now
	}
}

// WithStore starts the model on an already loaded month.
func WithStore(month schedule.Month, store *schedule.Store) ModelOption {
	return func(m *Model) {
		m.month = month
		m.setStore(store)
	}
}

// New creates a new TUI model.
func New(repo schedule.Repository, cfg *config.Config, opts ...ModelOption) *Model {
	t, err := theme.Load(cfg.UI.Theme)
	if err != nil {
		t, _ = theme.Load("mocha")
	}
	styles := NewStyles(t)

	prompt := textinput.New()
	prompt.Placeholder = "program-flow.pdf"
	prompt.CharLimit = 512
	prompt.Width = 40
	prompt.TextStyle = styles.PromptTextStyle
	prompt.PromptStyle = styles.PromptTextStyle
	prompt.PlaceholderStyle = styles.PromptHintStyle

	editor := textinput.New()
	editor.Prompt = ""
	editor.CharLimit = 256

	h := help.New()
	h.Styles.ShortKey = styles.StatusStyle
	h.Styles.ShortDesc = styles.HelpStyle
	h.Styles.ShortSeparator = styles.HelpStyle
	h.Styles.FullKey = styles.StatusStyle
	h.Styles.FullDesc = styles.HelpStyle
	h.Styles.FullSeparator = styles.HelpStyle

	m := &Model{
		repo:    repo,
		config:  cfg,
		reports: report.UnavailableService{},
		factory: report.NewFactory(cfg.Report.Title, cfg.Report.EmptyTimeIndicator),
		theme:   t,
		styles:  styles,
		keys:    DefaultKeyMap(),
		help:    h,
		month:   cfg.Month(),
		loading: true,
		mode:    ModeNormal,
		menu:    menu.New(),
		pending: new(menuAction),
		overlay: NewOverlayModel(),
		prompt:  prompt,
		editor:  editor,
		now:     time.Now,
	}
	m.overlay.SetBackground(styles.ModalBgColor)

	for _, opt := range opts {
		opt(m)
	}

	m.runner = report.NewRunner(m.logger)
	m.pointer = newPointerState(cfg)
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	check := commands.CheckReports(m.reports)
	if m.store != nil {
		return check
	}
	return tea.Batch(commands.LoadMonth(m.repo, m.config.DefaultBreaks(), m.month), check)
}

// Run starts the TUI.
func Run(repo schedule.Repository, cfg *config.Config, opts ...ModelOption) error {
	return RunWithDebug(repo, cfg, false, opts...)
}

// RunWithDebug starts the TUI with optional debug logging.
func RunWithDebug(repo schedule.Repository, cfg *config.Config, debug bool, opts ...ModelOption) error {
	if err := InitDebugLogger(debug); err != nil {
		return err
	}
	defer CloseDebugLogger()

	// NO_COLOR and CLICOLOR_FORCE decide the palette depth.
	lipgloss.SetColorProfile(termenv.EnvColorProfile())

	model := New(repo, cfg, opts...)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion())
	finalModel, err := p.Run()
	if m, ok := finalModel.(Model); ok {
		m.runner.Cancel()
	}
	return err
}

// gridOptions returns the grid options shared by both screens.
func (m Model) gridOptions() grid.Options {
	opts := grid.DefaultOptions()
	opts.PageSize = m.config.Grid.PageSize
	opts.RowNumberWidth = m.config.Grid.RowNumberWidth
	opts.Drag = m.config.DragConfig()
	return opts
}

// setStore swaps in a loaded month and rebuilds the scheduler grid.
func (m *Model) setStore(store *schedule.Store) {
	m.store = store
	m.loading = false
	m.detail = nil
	m.sched = newSchedulerGrid(store, m.month, m.styles.Palette(), m.gridOptions())

	today := schedule.DateOf(m.now())
	if m.month.Contains(today) {
		m.sched.focusDate(today)
	} else {
		m.sched.focusDate(m.month.First())
	}
	m.layoutGrids()
}

// inDetail reports whether the break detail screen is showing, including
// while a menu or prompt is open over it.
func (m Model) inDetail() bool {
	return m.detail != nil
}

// setMode switches mode, remembering the screen to come back to.
func (m *Model) setMode(to Mode, reason string) {
	if m.mode == to {
		return
	}
	LogModeChange(m.mode, to, reason)
	if to == ModeMenu || to == ModePrompt {
		if m.mode != ModeMenu && m.mode != ModePrompt {
			m.prevMode = m.mode
		}
	}
	m.mode = to
}

// restoreMode returns from the menu or prompt to the underlying screen.
func (m *Model) restoreMode(reason string) {
	to := ModeNormal
	if m.inDetail() {
		to = ModeDetail
		if m.prevMode == ModeEdit {
			to = ModeEdit
		}
	}
	m.setMode(to, reason)
}

// chromeHeight is the number of lines around the grid: title, status and help.
func (m Model) chromeHeight() int {
	return gridTop + 1 + m.helpHeight()
}

func (m Model) helpHeight() int {
	if !m.help.ShowAll {
		return 1
	}
	groups := m.keys.FullHelp()
	if m.inDetail() {
		groups = detailKeys{m.keys}.FullHelp()
	}
	lines := 1
	for _, col := range groups {
		lines = max(lines, len(col))
	}
	return lines
}

// bodyRows is the number of grid body rows that fit on screen.
func (m Model) bodyRows() int {
	return max(m.height-m.chromeHeight()-1, 1)
}

// layoutGrids applies the window size to both viewports.
func (m *Model) layoutGrids() {
	rows := m.bodyRows()
	if m.sched != nil {
		m.sched.vp.SetRows(rows)
		ensureFocusVisible(m.sched.state, &m.sched.vp, m.width)
	}
	if m.detail != nil {
		m.detail.vp.SetRows(rows)
		ensureFocusVisible(m.detail.state, &m.detail.vp, m.width)
	}
	m.help.Width = m.width
	m.prompt.Width = min(max(m.width/2, 20), overlayMaxWidth-6)
}

// ensureFocusVisible scrolls a viewport onto the focused cell.
func ensureFocusVisible[T any](s *grid.State[T], vp *grid.Viewport, width int) {
	row, col := s.Focus()
	vp.EnsureVisible(row, s.RowCount())
	l := s.Layout()
	if col >= 0 {
		vp.EnsureColumnVisible(col, l, max(width-l.FrozenLeftWidth()-l.FrozenRightWidth(), 0))
	}
}

// setStatus shows a temporary status message.
func (m *Model) setStatus(msg string) tea.Cmd {
	m.statusMsg = msg
	m.statusError = false
	m.statusTime = m.now()
	return clearStatusAfter(statusDuration)
}

// setError shows err in the status line.
func (m *Model) setError(context string, err error) tea.Cmd {
	LogError(context, err)
	m.statusMsg = err.Error()
	m.statusError = true
	m.statusTime = m.now()
	return clearStatusAfter(statusDuration)
}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return commands.ClearStatusMsg{}
	})
}

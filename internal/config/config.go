// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/javiermolinar/spotgrid/internal/grid"
	"github.com/javiermolinar/spotgrid/internal/schedule"
)

// Config holds the application configuration.
type Config struct {
	Grid     GridConfig     `toml:"grid"`
	Schedule ScheduleConfig `toml:"schedule"`
	Report   ReportConfig   `toml:"report"`
	Server   ServerConfig   `toml:"server"`
	Storage  StorageConfig  `toml:"storage"`
	Logging  LoggingConfig  `toml:"logging"`
	UI       UIConfig       `toml:"ui"`
}

// GridConfig holds pointer and layout tuning for the grids.
type GridConfig struct {
	LongPressMS         int     `toml:"long_press_ms"`
	TouchSlop           float64 `toml:"touch_slop"`
	DoubleClickMS       int     `toml:"double_click_ms"`
	DoubleClickDistance float64 `toml:"double_click_distance"`
	PageSize            int     `toml:"page_size"`
	RowNumberWidth      int     `toml:"row_number_width"`
	DragThreshold       float64 `toml:"drag_threshold"` // fraction of the neighbour's width
}

// BreakConfig seeds one break into an empty store.
type BreakConfig struct {
	Time string `toml:"time"` // "HH:MM"
	Zone string `toml:"zone"` // morning, day, prime, night
}

// ScheduleConfig holds scheduler settings.
type ScheduleConfig struct {
	Month              string        `toml:"month"` // "YYYY-MM", empty for the current month
	Breaks             []BreakConfig `toml:"breaks"`
	DefaultSpotSeconds int           `toml:"default_spot_seconds"`
}

// ReportConfig holds report delivery settings.
type ReportConfig struct {
	Mode               string `toml:"mode"` // "local", "remote", "none"
	ServerURL          string `toml:"server_url"`
	OutputDir          string `toml:"output_dir"`
	Title              string `toml:"title"`
	LogoPath           string `toml:"logo_path"`
	EmptyTimeIndicator string `toml:"empty_time_indicator"`
}

// ServerConfig holds report server settings.
type ServerConfig struct {
	Bind string `toml:"bind"`
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DSN string `toml:"dsn"` // empty or ":memory:" keeps state in memory
}

// LoggingConfig holds log settings.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme string `toml:"theme"` // "mocha", "macchiato", "frappe", "latte", "light"
}

// Report modes.
const (
	ReportLocal  = "local"
	ReportRemote = "remote"
	ReportNone   = "none"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Grid: GridConfig{
			LongPressMS:         400,
			TouchSlop:           15,
			DoubleClickMS:       400,
			DoubleClickDistance: 50,
			PageSize:            10,
			RowNumberWidth:      4,
			DragThreshold:       0.5,
		},
		Schedule: ScheduleConfig{
			Month: "",
			Breaks: []BreakConfig{
				{Time: "07:30", Zone: "morning"},
				{Time: "09:15", Zone: "morning"},
				{Time: "12:45", Zone: "day"},
				{Time: "16:30", Zone: "day"},
				{Time: "20:55", Zone: "prime"},
				{Time: "21:40", Zone: "prime"},
				{Time: "23:50", Zone: "night"},
			},
			DefaultSpotSeconds: 30,
		},
		Report: ReportConfig{
			Mode:      ReportLocal,
			ServerURL: "127.0.0.1:8080",
			OutputDir: defaultOutputDir(),
			Title:     "Program Flow",
		},
		Server: ServerConfig{
			Bind: "127.0.0.1:8080",
		},
		Storage: StorageConfig{
			DSN: ":memory:",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		UI: UIConfig{
			Theme: "frappe",
		},
	}
}

// defaultOutputDir returns where exported reports are suggested.
func defaultOutputDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Documents")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "spotgrid", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Report.OutputDir = expandPath(cfg.Report.OutputDir)
	cfg.Report.LogoPath = expandPath(cfg.Report.LogoPath)
	cfg.Logging.File = expandPath(cfg.Logging.File)
	if cfg.Storage.DSN != ":memory:" {
		cfg.Storage.DSN = expandPath(cfg.Storage.DSN)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	// A file that lists breaks replaces the default list instead of merging.
	var raw struct {
		Schedule struct {
			Breaks []BreakConfig `toml:"breaks"`
		} `toml:"schedule"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	if raw.Schedule.Breaks != nil {
		cfg.Schedule.Breaks = nil
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// applyEnvOverrides applies SPOTGRID_* environment variables.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) error {
	strs := map[string]*string{
		"SPOTGRID_MONTH":                &cfg.Schedule.Month,
		"SPOTGRID_REPORT_MODE":          &cfg.Report.Mode,
		"SPOTGRID_REPORT_SERVER_URL":    &cfg.Report.ServerURL,
		"SPOTGRID_REPORT_OUTPUT_DIR":    &cfg.Report.OutputDir,
		"SPOTGRID_REPORT_TITLE":         &cfg.Report.Title,
		"SPOTGRID_REPORT_LOGO_PATH":     &cfg.Report.LogoPath,
		"SPOTGRID_SERVER_BIND":          &cfg.Server.Bind,
		"SPOTGRID_STORAGE_DSN":          &cfg.Storage.DSN,
		"SPOTGRID_LOG_LEVEL":            &cfg.Logging.Level,
		"SPOTGRID_LOG_FILE":             &cfg.Logging.File,
		"SPOTGRID_UI_THEME":             &cfg.UI.Theme,
		"SPOTGRID_EMPTY_TIME_INDICATOR": &cfg.Report.EmptyTimeIndicator,
	}
	for name, dst := range strs {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"SPOTGRID_LONG_PRESS_MS":        &cfg.Grid.LongPressMS,
		"SPOTGRID_DOUBLE_CLICK_MS":      &cfg.Grid.DoubleClickMS,
		"SPOTGRID_DEFAULT_SPOT_SECONDS": &cfg.Schedule.DefaultSpotSeconds,
	}
	for name, dst := range ints {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = n
	}
	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

var validThemes = map[string]bool{
	"mocha":     true,
	"macchiato": true,
	"frappe":    true,
	"latte":     true,
	"light":     true,
}

var validLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	g := c.Grid
	if g.LongPressMS <= 0 || g.DoubleClickMS <= 0 {
		return errors.New("long_press_ms and double_click_ms must be positive")
	}
	if g.TouchSlop < 0 || g.DoubleClickDistance < 0 {
		return errors.New("touch_slop and double_click_distance must not be negative")
	}
	if g.PageSize < 1 {
		return errors.New("page_size must be at least 1")
	}
	if g.RowNumberWidth < 0 {
		return errors.New("row_number_width must not be negative")
	}
	if g.DragThreshold <= 0 || g.DragThreshold >= 1 {
		return fmt.Errorf("drag_threshold must be between 0 and 1, got %v", g.DragThreshold)
	}

	if _, err := schedule.ParseMonth(c.Schedule.Month); err != nil {
		return fmt.Errorf("month: %w", err)
	}
	if c.Schedule.DefaultSpotSeconds <= 0 {
		return errors.New("default_spot_seconds must be positive")
	}
	seen := make(map[string]bool, len(c.Schedule.Breaks))
	for _, b := range c.Schedule.Breaks {
		if err := validateTime(b.Time, "breaks.time"); err != nil {
			return err
		}
		if seen[b.Time] {
			return fmt.Errorf("duplicate break at %s", b.Time)
		}
		seen[b.Time] = true
		if !isValidZone(b.Zone) {
			return fmt.Errorf("invalid zone %q for break %s", b.Zone, b.Time)
		}
	}

	switch c.Report.Mode {
	case ReportLocal, ReportNone:
	case ReportRemote:
		if strings.TrimSpace(c.Report.ServerURL) == "" {
			return errors.New("server_url must be set when report mode is remote")
		}
	default:
		return fmt.Errorf("invalid report mode: %s", c.Report.Mode)
	}

	if strings.TrimSpace(c.Server.Bind) == "" {
		return errors.New("server bind must be set")
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if !validThemes[c.UI.Theme] {
		return fmt.Errorf("invalid theme: %s", c.UI.Theme)
	}
	return nil
}

// validateTime checks if a time string is in HH:MM format.
func validateTime(t, field string) error {
	if !schedule.ValidTime(t) {
		return fmt.Errorf("%s must be in HH:MM format, got %q", field, t)
	}
	return nil
}

func isValidZone(z string) bool {
	switch schedule.Zone(z) {
	case schedule.ZoneMorning, schedule.ZoneDay, schedule.ZonePrime, schedule.ZoneNight:
		return true
	}
	return false
}

// DefaultBreaks returns the configured seed breaks.
func (c *Config) DefaultBreaks() []schedule.BreakSlot {
	out := make([]schedule.BreakSlot, 0, len(c.Schedule.Breaks))
	for _, b := range c.Schedule.Breaks {
		out = append(out, schedule.BreakSlot{Time: b.Time, Zone: schedule.Zone(b.Zone)})
	}
	return out
}

// Month returns the configured month, or the current one.
func (c *Config) Month() schedule.Month {
	m, err := schedule.ParseMonth(c.Schedule.Month)
	if err != nil {
		return schedule.MonthOf(schedule.Today())
	}
	return m
}

// DragConfig returns the grid drag settings.
func (c *Config) DragConfig() grid.DragConfig {
	d := grid.DefaultDragConfig()
	d.LongPress = time.Duration(c.Grid.LongPressMS) * time.Millisecond
	d.Slop = c.Grid.TouchSlop
	d.ColumnThreshold = c.Grid.DragThreshold
	return d
}

// DoubleClickTimeout returns the double-click window.
func (c *Config) DoubleClickTimeout() time.Duration {
	return time.Duration(c.Grid.DoubleClickMS) * time.Millisecond
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

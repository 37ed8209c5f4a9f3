// Package tui provides the terminal user interface for spotgrid.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/spotgrid/internal/tui/theme"
)

// Styles holds all lipgloss styles for the TUI, derived from a theme.
type Styles struct {
	palette *theme.Palette

	// Title bar
	TitleStyle    lipgloss.Style
	SubtitleStyle lipgloss.Style
	DirtyStyle    lipgloss.Style

	// Grid header
	HeaderStyle       lipgloss.Style
	HeaderFrozenStyle lipgloss.Style
	HeaderDragStyle   lipgloss.Style
	HeaderTargetStyle lipgloss.Style

	// Grid body
	CellStyle       lipgloss.Style
	FrozenCellStyle lipgloss.Style
	EmptyCellStyle  lipgloss.Style
	RowNumberStyle  lipgloss.Style
	SelectedStyle   lipgloss.Style
	FocusStyle      lipgloss.Style
	EditStyle       lipgloss.Style
	DragRowStyle    lipgloss.Style
	DropTargetStyle lipgloss.Style
	ModifiedStyle   lipgloss.Style

	// Footer
	StatusStyle lipgloss.Style
	ErrorStyle  lipgloss.Style
	HelpStyle   lipgloss.Style

	// Context menu
	MenuStyle         lipgloss.Style
	MenuItemStyle     lipgloss.Style
	MenuActiveStyle   lipgloss.Style
	MenuDisabledStyle lipgloss.Style
	MenuShortcutStyle lipgloss.Style
	MenuSeparator     lipgloss.Style

	// Prompt box
	PromptStyle      lipgloss.Style
	PromptTitleStyle lipgloss.Style
	PromptHintStyle  lipgloss.Style
	PromptTextStyle  lipgloss.Style
	ModalBgColor     lipgloss.Color
}

// NewStyles creates a new Styles instance from a theme.
func NewStyles(t *theme.Theme) *Styles {
	palette := theme.NewPalette(t)
	s := &Styles{palette: palette}

	s.TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(palette.Accent).
		Background(palette.Bg)

	s.SubtitleStyle = lipgloss.NewStyle().
		Foreground(palette.FgMuted).
		Background(palette.Bg)

	s.DirtyStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(palette.TextOnModified).
		Background(palette.Modified).
		Padding(0, 1)

	s.HeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(palette.Fg).
		Background(palette.Bg)

	s.HeaderFrozenStyle = s.HeaderStyle.
		Foreground(palette.Accent).
		Background(palette.BgHighlight)

	s.HeaderDragStyle = s.HeaderStyle.
		Foreground(palette.TextOnWarning).
		Background(palette.Warning)

	s.HeaderTargetStyle = s.HeaderStyle.
		Underline(true).
		Foreground(palette.Warning)

	s.CellStyle = lipgloss.NewStyle().
		Foreground(palette.Fg).
		Background(palette.Bg)

	s.FrozenCellStyle = s.CellStyle.
		Background(palette.BgHighlight)

	s.EmptyCellStyle = s.CellStyle.
		Foreground(palette.FgMuted)

	s.RowNumberStyle = s.FrozenCellStyle.
		Foreground(palette.FgMuted)

	s.SelectedStyle = s.CellStyle.
		Background(palette.BgSelection)

	// Focus keeps the cell text readable on top of any zone color.
	s.FocusStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(palette.TextOnAccent).
		Background(palette.Accent)

	s.EditStyle = lipgloss.NewStyle().
		Foreground(palette.Fg).
		Background(palette.BgSelection).
		Underline(true)

	s.DragRowStyle = lipgloss.NewStyle().
		Foreground(palette.TextOnWarning).
		Background(palette.Warning)

	s.DropTargetStyle = lipgloss.NewStyle().
		Foreground(palette.Warning).
		Background(palette.Bg).
		Bold(true)

	s.ModifiedStyle = lipgloss.NewStyle().
		Foreground(palette.Modified).
		Bold(true)

	s.StatusStyle = lipgloss.NewStyle().
		Foreground(palette.Accent).
		Background(palette.Bg).
		Bold(true)

	s.ErrorStyle = lipgloss.NewStyle().
		Foreground(palette.Warning).
		Background(palette.Bg).
		Bold(true)

	s.HelpStyle = lipgloss.NewStyle().
		Foreground(palette.FgMuted).
		Background(palette.Bg)

	modal := palette.Modal
	s.ModalBgColor = modal.Bg

	s.MenuStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(modal.Border).
		BorderBackground(modal.Bg).
		Background(modal.Bg)

	s.MenuItemStyle = lipgloss.NewStyle().
		Foreground(modal.Text).
		Background(modal.Bg)

	s.MenuActiveStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(modal.Text).
		Background(modal.Highlight)

	s.MenuDisabledStyle = lipgloss.NewStyle().
		Foreground(modal.Muted).
		Background(modal.Bg)

	s.MenuShortcutStyle = lipgloss.NewStyle().
		Foreground(modal.Muted).
		Background(modal.Bg)

	s.MenuSeparator = lipgloss.NewStyle().
		Foreground(modal.Muted).
		Background(modal.Bg)

	s.PromptStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(modal.Border).
		BorderBackground(modal.Bg).
		Background(modal.Bg).
		Foreground(modal.Text).
		Padding(0, 1)

	s.PromptTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(modal.Text).
		Background(modal.Bg)

	s.PromptHintStyle = lipgloss.NewStyle().
		Foreground(modal.Muted).
		Background(modal.Bg)

	s.PromptTextStyle = lipgloss.NewStyle().
		Foreground(modal.Text).
		Background(modal.Bg)

	return s
}

// Palette returns the color palette the styles were built from.
func (s *Styles) Palette() *theme.Palette {
	return s.palette
}

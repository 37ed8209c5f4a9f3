package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the keyboard bindings of the scheduler and detail screens.
type keyMap struct {
	// Global
	Quit key.Binding
	Help key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Home     key.Binding
	End      key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Scheduler
	AddSpot    key.Binding
	DeleteSpot key.Binding
	Open       key.Binding
	Revert     key.Binding
	RevertAll  key.Binding
	Save       key.Binding
	PrevMonth  key.Binding
	NextMonth  key.Binding
	Menu       key.Binding
	Copy       key.Binding
	Narrow     key.Binding
	Widen      key.Binding

	// Reports
	Export  key.Binding
	Preview key.Binding
	Print   key.Binding
	Cancel  key.Binding

	// Break detail
	Edit      key.Binding
	Sort      key.Binding
	MoveUp    key.Binding
	MoveDown  key.Binding
	ColLeft   key.Binding
	ColRight  key.Binding
	Back      key.Binding
	NextField key.Binding
	Confirm   key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),

		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Home:     key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("home", "first cell")),
		End:      key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("end", "last cell")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),

		AddSpot:    key.NewBinding(key.WithKeys("a", "insert"), key.WithHelp("a", "add spot")),
		DeleteSpot: key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "delete spot")),
		Open:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open break")),
		Revert:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "revert cell")),
		RevertAll:  key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "revert all")),
		Save:       key.NewBinding(key.WithKeys("s", "ctrl+s"), key.WithHelp("s", "save")),
		PrevMonth:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev month")),
		NextMonth:  key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next month")),
		Menu:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "menu")),
		Copy:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy")),
		Narrow:     key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "narrow column")),
		Widen:      key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "widen column")),

		Export:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export PDF")),
		Preview: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preview")),
		Print:   key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "print")),
		Cancel:  key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "cancel report")),

		Edit:      key.NewBinding(key.WithKeys("enter", "f2"), key.WithHelp("enter", "edit cell")),
		Sort:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sort column")),
		MoveUp:    key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "move spot up")),
		MoveDown:  key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "move spot down")),
		ColLeft:   key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "move column left")),
		ColRight:  key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "move column right")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		NextField: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Confirm:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.AddSpot, k.DeleteSpot, k.Open, k.Save, k.Menu, k.Export, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Home, k.End, k.PageUp, k.PageDown},
		{k.AddSpot, k.DeleteSpot, k.Open, k.Revert, k.RevertAll, k.Save},
		{k.PrevMonth, k.NextMonth, k.Menu, k.Copy, k.Narrow, k.Widen},
		{k.Export, k.Preview, k.Print, k.Cancel},
		{k.Help, k.Quit},
	}
}

// detailKeys is the help view of the break detail screen.
type detailKeys struct {
	keyMap
}

// ShortHelp returns key bindings for the short help view.
func (k detailKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Edit, k.AddSpot, k.DeleteSpot, k.MoveUp, k.MoveDown, k.Sort, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k detailKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Home, k.End},
		{k.Edit, k.NextField, k.AddSpot, k.DeleteSpot, k.Revert},
		{k.MoveUp, k.MoveDown, k.ColLeft, k.ColRight, k.Sort, k.Narrow, k.Widen},
		{k.Copy, k.Back, k.Quit},
	}
}

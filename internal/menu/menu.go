// Package menu implements a nested context menu: items, separators and
// submenus, with hover expansion at the top level, click expansion below
// it, and left/right flipping of submenu popups near the window edge.
package menu

// Entry is one menu row: an Item, a Separator or a SubMenu.
type Entry interface {
	entry()
}

// Item is an actionable entry.
type Item struct {
	Label    string
	Icon     string
	Shortcut string
	Enabled  bool
	Action   func()
}

// Separator is a divider line.
type Separator struct{}

// SubMenu opens a nested list of entries.
type SubMenu struct {
	Label    string
	Icon     string
	Enabled  bool
	Children []Entry
}

func (Item) entry()      {}
func (Separator) entry() {}
func (SubMenu) entry()   {}

// Selectable reports whether keyboard focus may land on an entry.
func Selectable(e Entry) bool {
	switch v := e.(type) {
	case Item:
		return v.Enabled
	case SubMenu:
		return v.Enabled
	default:
		return false
	}
}

// Label returns the display label of an entry, "" for separators.
func Label(e Entry) string {
	switch v := e.(type) {
	case Item:
		return v.Label
	case SubMenu:
		return v.Label
	default:
		return ""
	}
}

// Side is where a submenu popup opens relative to its anchor.
type Side int

const (
	SideRight Side = iota
	SideLeft
)

// DefaultSubmenuWidth is the estimated width of a submenu popup in cells.
const DefaultSubmenuWidth = 24

// Key is a navigation key understood by the menu.
type Key int

const (
	KeyUp Key = iota
	KeyDown
	KeyLeft
	KeyRight
	KeyEnter
	KeyEscape
)

// Menu is an open (or closed) context menu instance.
type Menu struct {
	// SubmenuWidth is the estimate used to decide the submenu side.
	SubmenuWidth int

	entries     []Entry
	open        bool
	anchorX     int
	anchorY     int
	windowWidth int

	// expanded is the index path of open submenus; expanded[0] is the
	// top-level submenu.
	expanded []int
	// cursor holds the keyboard position at each open level.
	cursor []int
}

// New returns a closed menu.
func New() *Menu {
	return &Menu{SubmenuWidth: DefaultSubmenuWidth}
}

// Open shows entries anchored at (x, y) in a window of the given width.
func (m *Menu) Open(entries []Entry, x, y, windowWidth int) {
	m.entries = entries
	m.open = true
	m.anchorX, m.anchorY = x, y
	m.windowWidth = windowWidth
	m.expanded = nil
	m.cursor = []int{firstSelectable(entries)}
}

// IsOpen reports whether the menu is shown.
func (m *Menu) IsOpen() bool {
	return m.open
}

// Anchor returns the anchor position.
func (m *Menu) Anchor() (x, y int) {
	return m.anchorX, m.anchorY
}

// Entries returns the top-level entries.
func (m *Menu) Entries() []Entry {
	return m.entries
}

// Expanded returns the path of open submenus.
func (m *Menu) Expanded() []int {
	return append([]int(nil), m.expanded...)
}

// Cursor returns the keyboard cursor path.
func (m *Menu) Cursor() []int {
	return append([]int(nil), m.cursor...)
}

// Dismiss closes the whole menu tree.
func (m *Menu) Dismiss() {
	m.open = false
	m.entries = nil
	m.expanded = nil
	m.cursor = nil
}

// Hover handles the pointer entering a top-level entry. Hovering an
// enabled submenu expands it and collapses any other; hovering anything
// else collapses.
func (m *Menu) Hover(index int) {
	if !m.open || index < 0 || index >= len(m.entries) {
		return
	}
	m.cursor = []int{index}
	if sub, ok := m.entries[index].(SubMenu); ok && sub.Enabled {
		m.expanded = []int{index}
		m.cursor = append(m.cursor, firstSelectable(sub.Children))
		return
	}
	m.expanded = nil
}

// Click handles a primary click on the entry at path. Submenus expand
// (or collapse when already open); items activate.
func (m *Menu) Click(path []int) bool {
	e, ok := m.resolve(path)
	if !ok {
		return false
	}
	switch v := e.(type) {
	case SubMenu:
		if !v.Enabled {
			return false
		}
		if isPrefix(path, m.expanded) && len(path) == len(m.expanded) {
			m.collapseTo(len(path) - 1)
			return true
		}
		m.expanded = append([]int(nil), path...)
		m.cursor = append(append([]int(nil), path...), firstSelectable(v.Children))
		return true
	case Item:
		return m.Activate(path)
	}
	return false
}

// PointerExit handles the pointer leaving the menu bounds. The menu is
// dismissed only when no submenu is expanded.
func (m *Menu) PointerExit() {
	if m.open && len(m.expanded) == 0 {
		m.Dismiss()
	}
}

// Activate runs the item at path. The menu is dismissed before the
// action runs. Disabled items and non-items do nothing.
func (m *Menu) Activate(path []int) bool {
	e, ok := m.resolve(path)
	if !ok {
		return false
	}
	item, ok := e.(Item)
	if !ok || !item.Enabled {
		return false
	}
	m.Dismiss()
	if item.Action != nil {
		item.Action()
	}
	return true
}

// SubmenuSide decides where a submenu anchored at anchorX opens. It flips
// left when the estimated popup would overflow the window.
func (m *Menu) SubmenuSide(anchorX, itemWidth int) Side {
	w := m.SubmenuWidth
	if w <= 0 {
		w = DefaultSubmenuWidth
	}
	if m.windowWidth > 0 && anchorX+itemWidth+w > m.windowWidth {
		return SideLeft
	}
	return SideRight
}

// HandleKey moves the keyboard cursor. Up and Down skip separators and
// disabled entries; Right and Enter open a submenu; Enter activates an
// item; Left closes one level; Escape closes one level or the menu.
func (m *Menu) HandleKey(k Key) bool {
	if !m.open || len(m.cursor) == 0 {
		return false
	}
	level := len(m.cursor) - 1
	entries := m.levelEntries(level)
	cur := m.cursor[level]

	switch k {
	case KeyUp:
		m.cursor[level] = step(entries, cur, -1)
	case KeyDown:
		m.cursor[level] = step(entries, cur, 1)
	case KeyRight, KeyEnter:
		if cur < 0 || cur >= len(entries) {
			return false
		}
		path := append([]int(nil), m.cursor...)
		switch v := entries[cur].(type) {
		case SubMenu:
			if !v.Enabled {
				return false
			}
			m.expanded = path
			m.cursor = append(append([]int(nil), path...), firstSelectable(v.Children))
		case Item:
			if k != KeyEnter {
				return false
			}
			return m.Activate(path)
		default:
			return false
		}
	case KeyLeft:
		if level == 0 {
			return false
		}
		m.collapseTo(level - 1)
	case KeyEscape:
		if level == 0 {
			m.Dismiss()
			return true
		}
		m.collapseTo(level - 1)
	default:
		return false
	}
	return true
}

// Level is one rendered popup of the menu tree.
type Level struct {
	Entries  []Entry
	Cursor   int
	Expanded int // Index of the open submenu at this level, -1 when none
}

// Levels returns the open popups from the top level down.
func (m *Menu) Levels() []Level {
	if !m.open {
		return nil
	}
	var out []Level
	entries := m.entries
	for depth := 0; ; depth++ {
		lv := Level{Entries: entries, Cursor: -1, Expanded: -1}
		if depth < len(m.cursor) {
			lv.Cursor = m.cursor[depth]
		}
		if depth < len(m.expanded) {
			lv.Expanded = m.expanded[depth]
		}
		out = append(out, lv)
		if lv.Expanded < 0 || lv.Expanded >= len(entries) {
			return out
		}
		sub, ok := entries[lv.Expanded].(SubMenu)
		if !ok {
			return out
		}
		entries = sub.Children
	}
}

func (m *Menu) collapseTo(level int) {
	if level < len(m.expanded) {
		m.expanded = m.expanded[:level]
	}
	if level+1 < len(m.cursor) {
		m.cursor = m.cursor[:level+1]
	}
}

func (m *Menu) levelEntries(level int) []Entry {
	entries := m.entries
	for i := 0; i < level && i < len(m.expanded); i++ {
		sub, ok := entries[m.expanded[i]].(SubMenu)
		if !ok {
			return nil
		}
		entries = sub.Children
	}
	return entries
}

func (m *Menu) resolve(path []int) (Entry, bool) {
	if !m.open || len(path) == 0 {
		return nil, false
	}
	entries := m.entries
	for i, idx := range path {
		if idx < 0 || idx >= len(entries) {
			return nil, false
		}
		if i == len(path)-1 {
			return entries[idx], true
		}
		sub, ok := entries[idx].(SubMenu)
		if !ok || !sub.Enabled {
			return nil, false
		}
		entries = sub.Children
	}
	return nil, false
}

func firstSelectable(entries []Entry) int {
	for i, e := range entries {
		if Selectable(e) {
			return i
		}
	}
	return -1
}

// step moves from cur in direction dir to the next selectable entry,
// wrapping at the ends.
func step(entries []Entry, cur, dir int) int {
	n := len(entries)
	if n == 0 {
		return -1
	}
	i := cur
	for range n {
		i = (i + dir + n) % n
		if Selectable(entries[i]) {
			return i
		}
	}
	return cur
}

func isPrefix(prefix, path []int) bool {
	if len(prefix) > len(path) {
		return false
	}
	for i := range prefix {
		if prefix[i] != path[i] {
			return false
		}
	}
	return true
}

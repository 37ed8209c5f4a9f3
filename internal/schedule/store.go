package schedule

import (
	"maps"
	"slices"
)

// Store holds the sparse cell map being edited, the snapshot it was
// loaded from, and the set of keys changed since that snapshot. A missing
// key is an empty cell.
type Store struct {
	breaks   []BreakSlot
	breakIdx map[int64]int

	cells    map[Key]CellData
	original map[Key]CellData
	modified map[Key]struct{}
}

// NewStore creates a store over breaks, seeded with saved cells.
func NewStore(breaks []BreakSlot, saved map[Key]CellData) *Store {
	s := &Store{
		cells:    make(map[Key]CellData, len(saved)),
		original: make(map[Key]CellData, len(saved)),
		modified: make(map[Key]struct{}),
	}
	s.SetBreaks(breaks)
	for k, c := range saved {
		if c.Empty() {
			continue
		}
		c = c.clone()
		c.recompute()
		s.cells[k] = c
		s.original[k] = c.clone()
	}
	return s
}

// SetBreaks replaces the break list, sorted by time of day.
func (s *Store) SetBreaks(breaks []BreakSlot) {
	s.breaks = slices.Clone(breaks)
	slices.SortStableFunc(s.breaks, func(a, b BreakSlot) int {
		return TimeToMinutes(a.Time) - TimeToMinutes(b.Time)
	})
	s.breakIdx = make(map[int64]int, len(s.breaks))
	for i, b := range s.breaks {
		s.breakIdx[b.ID] = i
	}
}

// Breaks returns the breaks ordered by time.
func (s *Store) Breaks() []BreakSlot {
	return slices.Clone(s.breaks)
}

// Break looks up a break by id.
func (s *Store) Break(id int64) (BreakSlot, bool) {
	i, ok := s.breakIdx[id]
	if !ok {
		return BreakSlot{}, false
	}
	return s.breaks[i], true
}

// Cell returns the cell at key. Empty cells carry their break's zone color.
func (s *Store) Cell(key Key) CellData {
	if c, ok := s.cells[key]; ok {
		return c.clone()
	}
	c := CellData{}
	if b, ok := s.Break(key.BreakID); ok {
		c.ZoneColor = b.Zone.Color()
	}
	return c
}

// Lookup returns the cell at key and whether it is present.
func (s *Store) Lookup(key Key) (CellData, bool) {
	c, ok := s.cells[key]
	if !ok {
		return CellData{}, false
	}
	return c.clone(), true
}

// Keys returns every non-empty key ordered by date then break.
func (s *Store) Keys() []Key {
	keys := slices.Collect(maps.Keys(s.cells))
	slices.SortFunc(keys, CompareKeys)
	return keys
}

// AddSpot appends an item to the cell at key.
func (s *Store) AddSpot(key Key, item CommercialItem) (CellData, error) {
	b, ok := s.Break(key.BreakID)
	if !ok {
		return CellData{}, ErrUnknownBreak
	}
	c := s.Cell(key)
	c.ZoneColor = b.Zone.Color()
	c.Items = append(c.Items, item)
	s.put(key, c)
	return c.clone(), nil
}

// DeleteSpot removes the item at index from the cell at key.
func (s *Store) DeleteSpot(key Key, index int) error {
	c, ok := s.cells[key]
	if !ok || index < 0 || index >= len(c.Items) {
		return ErrSpotOutOfRange
	}
	c = c.clone()
	c.Items = slices.Delete(c.Items, index, index+1)
	s.put(key, c)
	return nil
}

// DeleteLastSpot removes the last item of the cell at key.
func (s *Store) DeleteLastSpot(key Key) error {
	c, ok := s.cells[key]
	if !ok {
		return ErrSpotOutOfRange
	}
	return s.DeleteSpot(key, len(c.Items)-1)
}

// ReorderSpot moves the item at from to position to.
func (s *Store) ReorderSpot(key Key, from, to int) error {
	c, ok := s.cells[key]
	if !ok || from < 0 || to < 0 || from >= len(c.Items) || to >= len(c.Items) {
		return ErrSpotOutOfRange
	}
	if from == to {
		return nil
	}
	c = c.clone()
	item := c.Items[from]
	c.Items = slices.Delete(c.Items, from, from+1)
	c.Items = slices.Insert(c.Items, to, item)
	s.put(key, c)
	return nil
}

// UpdateSpot applies fn to the item at index.
func (s *Store) UpdateSpot(key Key, index int, fn func(*CommercialItem)) error {
	c, ok := s.cells[key]
	if !ok || index < 0 || index >= len(c.Items) {
		return ErrSpotOutOfRange
	}
	c = c.clone()
	fn(&c.Items[index])
	s.put(key, c)
	return nil
}

// put stores c at key, recomputing its counters and marking the key
// modified. A cell left without items is removed.
func (s *Store) put(key Key, c CellData) {
	c.recompute()
	if c.Empty() {
		delete(s.cells, key)
	} else {
		s.cells[key] = c
	}
	s.modified[key] = struct{}{}
}

// Revert restores the saved content of key, removing it when nothing was
// saved there, and clears its modified flag.
func (s *Store) Revert(key Key) {
	if c, ok := s.original[key]; ok {
		s.cells[key] = c.clone()
	} else {
		delete(s.cells, key)
	}
	delete(s.modified, key)
}

// RevertAll discards every unsaved change.
func (s *Store) RevertAll() {
	s.cells = cloneCells(s.original)
	clear(s.modified)
}

// Changes returns the current content of every modified key. An empty
// CellData means the key was cleared.
func (s *Store) Changes() map[Key]CellData {
	out := make(map[Key]CellData, len(s.modified))
	for k := range s.modified {
		out[k] = s.Cell(k)
	}
	return out
}

// Commit makes the current content the new saved snapshot.
func (s *Store) Commit() {
	s.original = cloneCells(s.cells)
	clear(s.modified)
}

// MarkSaved records cells as the saved content of their keys. A key stays
// modified when it was edited again after the snapshot was taken.
func (s *Store) MarkSaved(saved map[Key]CellData) {
	for k, c := range saved {
		if c.Empty() {
			delete(s.original, k)
		} else {
			s.original[k] = c.clone()
		}
		if slices.Equal(s.Cell(k).Items, c.Items) {
			delete(s.modified, k)
		}
	}
}

// IsModified reports whether key has unsaved changes.
func (s *Store) IsModified(key Key) bool {
	_, ok := s.modified[key]
	return ok
}

// Modified returns the modified keys in order.
func (s *Store) Modified() []Key {
	keys := slices.Collect(maps.Keys(s.modified))
	slices.SortFunc(keys, CompareKeys)
	return keys
}

// HasChanges reports whether any key is modified.
func (s *Store) HasChanges() bool {
	return len(s.modified) > 0
}

// Totals is an aggregate of spots and seconds.
type Totals struct {
	Spots   int
	Seconds int
}

// DayTotals sums every break on date.
func (s *Store) DayTotals(date Date) Totals {
	var t Totals
	for k, c := range s.cells {
		if k.Date == date {
			t.Spots += c.SpotCount
			t.Seconds += c.TotalDurationSeconds
		}
	}
	return t
}

// BreakTotals sums one break over the days of month.
func (s *Store) BreakTotals(breakID int64, month Month) Totals {
	var t Totals
	for k, c := range s.cells {
		if k.BreakID == breakID && month.Contains(k.Date) {
			t.Spots += c.SpotCount
			t.Seconds += c.TotalDurationSeconds
		}
	}
	return t
}

func cloneCells(in map[Key]CellData) map[Key]CellData {
	out := make(map[Key]CellData, len(in))
	for k, c := range in {
		out[k] = c.clone()
	}
	return out
}

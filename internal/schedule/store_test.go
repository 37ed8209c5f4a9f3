package schedule

import (
	"errors"
	"slices"
	"testing"
)

var (
	testDate = Date{Year: 2025, Month: 12, Day: 28}
	testKey  = Key{BreakID: 7, Date: testDate}
)

func testBreaks() []BreakSlot {
	return []BreakSlot{
		{ID: 9, Time: "21:15", Zone: ZonePrime},
		{ID: 7, Time: "08:30", Zone: ZoneMorning},
		{ID: 8, Time: "13:00", Zone: ZoneDay},
	}
}

func spot(id string, seconds int) CommercialItem {
	return CommercialItem{ID: id, Message: "msg " + id, DurationSeconds: seconds}
}

func itemIDs(c CellData) []string {
	out := make([]string, len(c.Items))
	for i, it := range c.Items {
		out[i] = it.ID
	}
	return out
}

func TestStore_AddThenRevertEmptyKey(t *testing.T) {
	s := NewStore(testBreaks(), nil)

	c, err := s.AddSpot(testKey, NewSpot(30))
	if err != nil {
		t.Fatalf("AddSpot: %v", err)
	}
	if c.SpotCount != 1 || len(c.Items) != 1 {
		t.Errorf("spot count = %d with %d items, want 1", c.SpotCount, len(c.Items))
	}
	if c.TotalDurationSeconds != 30 {
		t.Errorf("total = %d, want 30", c.TotalDurationSeconds)
	}
	if c.ZoneColor != ZoneMorning.Color() {
		t.Errorf("zone color = %q, want %q", c.ZoneColor, ZoneMorning.Color())
	}
	if !s.IsModified(testKey) {
		t.Error("key should be modified")
	}

	s.Revert(testKey)

	if _, ok := s.Lookup(testKey); ok {
		t.Error("key should be removed after revert")
	}
	if s.IsModified(testKey) {
		t.Error("modified flag should be cleared")
	}
}

func TestStore_RevertRestoresOriginal(t *testing.T) {
	saved := map[Key]CellData{
		testKey: {Items: []CommercialItem{spot("a", 20), spot("b", 40)}},
	}
	s := NewStore(testBreaks(), saved)

	if c := s.Cell(testKey); c.SpotCount != 2 || c.TotalDurationSeconds != 60 {
		t.Fatalf("loaded cell = %+v, want derived counts 2/60", c)
	}

	_ = s.DeleteSpot(testKey, 0)
	_, _ = s.AddSpot(testKey, spot("c", 15))
	if got := itemIDs(s.Cell(testKey)); !slices.Equal(got, []string{"b", "c"}) {
		t.Fatalf("items = %v, want [b c]", got)
	}

	s.Revert(testKey)

	c := s.Cell(testKey)
	if got := itemIDs(c); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("items = %v, want [a b]", got)
	}
	if c.TotalDurationSeconds != 60 {
		t.Errorf("total = %d, want 60", c.TotalDurationSeconds)
	}
}

func TestStore_SnapshotIsImmutable(t *testing.T) {
	saved := map[Key]CellData{testKey: {Items: []CommercialItem{spot("a", 20)}}}
	s := NewStore(testBreaks(), saved)

	_ = s.UpdateSpot(testKey, 0, func(it *CommercialItem) { it.Message = "edited" })
	saved[testKey].Items[0].Message = "mutated by caller"
	s.Revert(testKey)

	if got := s.Cell(testKey).Items[0].Message; got != "msg a" {
		t.Errorf("message = %q, want original", got)
	}
}

func TestStore_DeleteLastSpotEmptiesCell(t *testing.T) {
	s := NewStore(testBreaks(), map[Key]CellData{testKey: {Items: []CommercialItem{spot("a", 20)}}})

	if err := s.DeleteLastSpot(testKey); err != nil {
		t.Fatalf("DeleteLastSpot: %v", err)
	}
	if _, ok := s.Lookup(testKey); ok {
		t.Error("empty cell should be removed from the map")
	}
	if !s.IsModified(testKey) {
		t.Error("key should be modified")
	}
	if err := s.DeleteLastSpot(testKey); !errors.Is(err, ErrSpotOutOfRange) {
		t.Errorf("delete on empty err = %v, want ErrSpotOutOfRange", err)
	}

	changes := s.Changes()
	if c, ok := changes[testKey]; !ok || !c.Empty() {
		t.Errorf("changes = %+v, want cleared key", changes)
	}
}

func TestStore_ReorderSpot(t *testing.T) {
	s := NewStore(testBreaks(), map[Key]CellData{
		testKey: {Items: []CommercialItem{spot("a", 1), spot("b", 2), spot("c", 3)}},
	})

	tests := []struct {
		from, to int
		want     []string
	}{
		{0, 2, []string{"b", "c", "a"}},
		{2, 0, []string{"a", "b", "c"}},
		{1, 1, []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		if err := s.ReorderSpot(testKey, tt.from, tt.to); err != nil {
			t.Fatalf("ReorderSpot(%d, %d): %v", tt.from, tt.to, err)
		}
		if got := itemIDs(s.Cell(testKey)); !slices.Equal(got, tt.want) {
			t.Errorf("after %d->%d items = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
	if err := s.ReorderSpot(testKey, 0, 5); !errors.Is(err, ErrSpotOutOfRange) {
		t.Errorf("err = %v, want ErrSpotOutOfRange", err)
	}
}

func TestStore_CommitAndRevertAll(t *testing.T) {
	s := NewStore(testBreaks(), nil)
	other := Key{BreakID: 8, Date: testDate}

	_, _ = s.AddSpot(testKey, spot("a", 30))
	s.Commit()
	if s.HasChanges() {
		t.Fatal("commit should clear modified keys")
	}

	_, _ = s.AddSpot(other, spot("b", 15))
	_ = s.DeleteSpot(testKey, 0)
	if got := s.Modified(); !slices.Equal(got, []Key{testKey, other}) {
		t.Errorf("modified = %v, want [%v %v]", got, testKey, other)
	}

	s.RevertAll()

	if got := s.Keys(); !slices.Equal(got, []Key{testKey}) {
		t.Errorf("keys = %v, want [%v]", got, testKey)
	}
	if s.HasChanges() {
		t.Error("revert all should clear modified keys")
	}
}

func TestStore_MarkSaved(t *testing.T) {
	s := NewStore(testBreaks(), nil)
	other := Key{BreakID: 8, Date: testDate}
	_, _ = s.AddSpot(testKey, spot("a", 30))
	_, _ = s.AddSpot(other, spot("b", 15))

	snapshot := s.Changes()
	// Edited again after the snapshot was taken.
	_, _ = s.AddSpot(other, spot("c", 10))
	s.MarkSaved(snapshot)

	if s.IsModified(testKey) {
		t.Error("saved key should no longer be modified")
	}
	if !s.IsModified(other) {
		t.Error("key edited after the snapshot should stay modified")
	}

	s.Revert(other)
	if got := itemIDs(s.Cell(other)); !slices.Equal(got, []string{"b"}) {
		t.Errorf("revert after save = %v, want [b]", got)
	}
}

func TestStore_UnknownBreak(t *testing.T) {
	s := NewStore(testBreaks(), nil)
	_, err := s.AddSpot(Key{BreakID: 99, Date: testDate}, spot("x", 10))
	if !errors.Is(err, ErrUnknownBreak) {
		t.Errorf("err = %v, want ErrUnknownBreak", err)
	}
}

func TestStore_BreaksSortedByTime(t *testing.T) {
	s := NewStore(testBreaks(), nil)
	var got []int64
	for _, b := range s.Breaks() {
		got = append(got, b.ID)
	}
	if !slices.Equal(got, []int64{7, 8, 9}) {
		t.Errorf("break order = %v, want [7 8 9]", got)
	}
}

func TestStore_Totals(t *testing.T) {
	next := testDate.AddDays(1)
	saved := map[Key]CellData{}
	saved[testKey] = CellData{Items: []CommercialItem{spot("a", 30), spot("b", 15)}}
	saved[Key{BreakID: 8, Date: testDate}] = CellData{Items: []CommercialItem{spot("c", 20)}}
	saved[Key{BreakID: 7, Date: next}] = CellData{Items: []CommercialItem{spot("d", 10)}}
	saved[Key{BreakID: 7, Date: next.AddDays(10)}] = CellData{Items: []CommercialItem{spot("e", 60)}}
	s := NewStore(testBreaks(), saved)

	if got := s.DayTotals(testDate); got != (Totals{Spots: 3, Seconds: 65}) {
		t.Errorf("day totals = %+v", got)
	}
	dec := Month{Year: 2025, Month: 12}
	if got := s.BreakTotals(7, dec); got != (Totals{Spots: 3, Seconds: 55}) {
		t.Errorf("break totals = %+v", got)
	}
}

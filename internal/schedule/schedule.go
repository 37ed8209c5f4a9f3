// Package schedule defines the traffic scheduling domain: commercial breaks,
// the spots booked into them per day, and the editable store that tracks
// unsaved changes against the last saved snapshot.
package schedule

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Validation errors.
var (
	ErrInvalidTimeFormat = errors.New("time must be in HH:MM format")
	ErrInvalidDuration   = errors.New("duration must be seconds, M:SS or H:MM:SS")
	ErrEmptyMessage      = errors.New("message cannot be empty")
)

// Domain errors.
var (
	ErrUnknownBreak   = errors.New("unknown break")
	ErrSpotOutOfRange = errors.New("spot index out of range")
)

// Zone is the daypart a break belongs to. It drives the cell color.
type Zone string

const (
	ZoneMorning Zone = "morning"
	ZoneDay     Zone = "day"
	ZonePrime   Zone = "prime"
	ZoneNight   Zone = "night"
)

// Color returns the hex color used for cells of this zone.
func (z Zone) Color() string {
	switch z {
	case ZoneMorning:
		return "#f9e2af"
	case ZoneDay:
		return "#a6e3a1"
	case ZonePrime:
		return "#f38ba8"
	case ZoneNight:
		return "#89b4fa"
	default:
		return "#9399b2"
	}
}

// Label returns a short display label.
func (z Zone) Label() string {
	if z == "" {
		return "-"
	}
	return strings.ToUpper(string(z[:1])) + string(z[1:])
}

// BreakSlot is a commercial break at a fixed time of day.
type BreakSlot struct {
	ID   int64
	Time string // "HH:MM" format
	Zone Zone
}

// NewBreakSlot validates and creates a break.
func NewBreakSlot(id int64, at string, zone Zone) (BreakSlot, error) {
	if !ValidTime(at) {
		return BreakSlot{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, at)
	}
	return BreakSlot{ID: id, Time: at, Zone: zone}, nil
}

// Key addresses one cell: a break on a date.
type Key struct {
	BreakID int64
	Date    Date
}

func (k Key) String() string {
	return fmt.Sprintf("%d@%s", k.BreakID, k.Date)
}

// CompareKeys orders keys by date, then break id.
func CompareKeys(a, b Key) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	switch {
	case a.BreakID < b.BreakID:
		return -1
	case a.BreakID > b.BreakID:
		return 1
	}
	return 0
}

// CommercialItem is one spot booked into a break.
type CommercialItem struct {
	ID              string
	ClientCode      string
	ClientName      string
	Message         string
	DurationSeconds int
	Type            string
	Contract        string
	FlowTag         string
}

// DefaultSpotMessage is the message of a freshly added spot.
const DefaultSpotMessage = "New spot"

// NewSpot returns a placeholder spot with a fresh id.
func NewSpot(durationSeconds int) CommercialItem {
	return CommercialItem{
		ID:              uuid.NewString(),
		Message:         DefaultSpotMessage,
		DurationSeconds: durationSeconds,
		Type:            "spot",
	}
}

// CellData is the content of one (break, date) cell. SpotCount and
// TotalDurationSeconds are derived from Items.
type CellData struct {
	SpotCount            int
	TotalDurationSeconds int
	ZoneColor            string
	Items                []CommercialItem
}

// recompute refreshes the derived counters.
func (c *CellData) recompute() {
	c.SpotCount = len(c.Items)
	total := 0
	for _, it := range c.Items {
		total += it.DurationSeconds
	}
	c.TotalDurationSeconds = total
}

// clone returns a deep copy.
func (c CellData) clone() CellData {
	out := c
	out.Items = append([]CommercialItem(nil), c.Items...)
	return out
}

// Empty reports whether the cell holds no spots.
func (c CellData) Empty() bool {
	return len(c.Items) == 0
}

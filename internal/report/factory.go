package report

import (
	"strings"

	"github.com/javiermolinar/spotgrid/internal/schedule"
)

// Default report labels.
const (
	DefaultTitle              = "Program Flow"
	DefaultEmptyTimeIndicator = "No spots scheduled"
)

// Factory turns schedule state into report data.
type Factory struct {
	Title              string
	EmptyTimeIndicator string
}

// NewFactory returns a factory with the given labels, falling back to
// the defaults for empty ones.
func NewFactory(title, emptyIndicator string) Factory {
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}
	if strings.TrimSpace(emptyIndicator) == "" {
		emptyIndicator = DefaultEmptyTimeIndicator
	}
	return Factory{Title: title, EmptyTimeIndicator: emptyIndicator}
}

// ProgramFlow flattens every break of date into one group per break, in
// time order. Breaks without spots yield empty groups.
func (f Factory) ProgramFlow(store *schedule.Store, date schedule.Date) Data {
	data := Data{
		Title:              f.Title,
		Date:               date.Time().Format("Monday, 2 January 2006"),
		EmptyTimeIndicator: f.EmptyTimeIndicator,
	}
	for _, b := range store.Breaks() {
		cell := store.Cell(schedule.Key{BreakID: b.ID, Date: date})
		group := TimeSlotGroup{
			TimeLabel:     timeLabel(b),
			Items:         make([]Item, 0, len(cell.Items)),
			TotalDuration: schedule.FormatDuration(cell.TotalDurationSeconds),
			SpotCount:     cell.SpotCount,
		}
		offset := 0
		for _, it := range cell.Items {
			group.Items = append(group.Items, Item{
				Message:  it.Message,
				Time:     schedule.AirTime(b.Time, offset),
				Duration: schedule.FormatDuration(it.DurationSeconds),
				Program:  program(it),
				Notes:    notes(it),
			})
			offset += it.DurationSeconds
		}
		data.TimeSlotGroups = append(data.TimeSlotGroups, group)
	}
	return data
}

func timeLabel(b schedule.BreakSlot) string {
	if b.Zone == "" {
		return b.Time
	}
	return b.Time + " " + b.Zone.Label()
}

func program(it schedule.CommercialItem) string {
	switch {
	case it.ClientName != "" && it.ClientCode != "":
		return it.ClientCode + " " + it.ClientName
	case it.ClientName != "":
		return it.ClientName
	default:
		return it.ClientCode
	}
}

func notes(it schedule.CommercialItem) string {
	var parts []string
	for _, p := range []string{it.Type, it.Contract, it.FlowTag} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " / ")
}

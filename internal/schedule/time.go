package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

// Date is a civil calendar date. It is comparable and usable as a map key.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the local date.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a date in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("date must be in YYYY-MM-DD format: %q", s)
	}
	return DateOf(t), nil
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return d.Time().Format(dateLayout)
}

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Weekday returns the day of the week.
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// Compare returns -1, 0 or 1.
func (d Date) Compare(o Date) int {
	return d.Time().Compare(o.Time())
}

// Before reports whether d is before o.
func (d Date) Before(o Date) bool {
	return d.Compare(o) < 0
}

// Month is a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing d.
func MonthOf(d Date) Month {
	return Month{Year: d.Year, Month: d.Month}
}

// ParseMonth parses YYYY-MM. An empty string means the current month.
func ParseMonth(s string) (Month, error) {
	if strings.TrimSpace(s) == "" {
		return MonthOf(Today()), nil
	}
	t, err := time.Parse(monthLayout, strings.TrimSpace(s))
	if err != nil {
		return Month{}, fmt.Errorf("month must be in YYYY-MM format: %q", s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

func (m Month) String() string {
	return m.First().Time().Format(monthLayout)
}

// Title returns a display title like "December 2025".
func (m Month) Title() string {
	return m.First().Time().Format("January 2006")
}

// First returns the first day of the month.
func (m Month) First() Date {
	return Date{Year: m.Year, Month: m.Month, Day: 1}
}

// Last returns the last day of the month.
func (m Month) Last() Date {
	return m.Next().First().AddDays(-1)
}

// DaysIn returns the number of days in the month.
func (m Month) DaysIn() int {
	return m.Last().Day
}

// Days returns every date of the month in order.
func (m Month) Days() []Date {
	n := m.DaysIn()
	out := make([]Date, n)
	for i := range n {
		out[i] = Date{Year: m.Year, Month: m.Month, Day: i + 1}
	}
	return out
}

// Next returns the following month.
func (m Month) Next() Month {
	return MonthOf(DateOf(m.First().Time().AddDate(0, 1, 0)))
}

// Prev returns the preceding month.
func (m Month) Prev() Month {
	return MonthOf(DateOf(m.First().Time().AddDate(0, -1, 0)))
}

// Contains reports whether d falls in the month.
func (m Month) Contains(d Date) bool {
	return d.Year == m.Year && d.Month == m.Month
}

// ValidTime reports whether s is a valid "HH:MM" time of day.
func ValidTime(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	h, err := strconv.Atoi(s[:2])
	if err != nil || h < 0 || h > 23 {
		return false
	}
	m, err := strconv.Atoi(s[3:])
	return err == nil && m >= 0 && m <= 59
}

// TimeToMinutes converts "HH:MM" to minutes since midnight.
// Returns 0 for invalid input.
func TimeToMinutes(t string) int {
	if !ValidTime(t) {
		return 0
	}
	hours := int(t[0]-'0')*10 + int(t[1]-'0')
	mins := int(t[3]-'0')*10 + int(t[4]-'0')
	return hours*60 + mins
}

// MinutesToTime converts minutes since midnight to "HH:MM" format.
func MinutesToTime(m int) string {
	if m < 0 {
		m = 0
	}
	if m >= 24*60 {
		m = 24*60 - 1
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// AirTime is the HH:MM:SS on-air time of a spot offsetSeconds into a
// break starting at breakTime. It wraps past midnight.
func AirTime(breakTime string, offsetSeconds int) string {
	start := TimeToMinutes(breakTime)*60 + offsetSeconds
	return fmt.Sprintf("%02d:%02d:%02d", start/3600%24, start/60%60, start%60)
}

// FormatDuration renders seconds as M:SS, or H:MM:SS from one hour up.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, seconds/60%60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// ParseDuration accepts plain seconds ("30", "30s"), M:SS or H:MM:SS.
// The result must be positive.
func ParseDuration(s string) (int, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "s")
	if s == "" {
		return 0, ErrInvalidDuration
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, ErrInvalidDuration
	}
	total := 0
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, ErrInvalidDuration
		}
		if i > 0 && n > 59 {
			return 0, ErrInvalidDuration
		}
		total = total*60 + n
	}
	if total <= 0 {
		return 0, ErrInvalidDuration
	}
	return total, nil
}

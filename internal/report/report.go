// Package report builds the Program Flow report of a broadcast day and
// delivers it: exported to a file, opened for preview, or printed. Every
// delivery resolves to a Result; failures never escape as panics.
package report

import (
	"errors"
	"fmt"
)

// Report errors.
var (
	ErrUnavailable = errors.New("report generation is not available on this platform")
	ErrBusy        = errors.New("a report job is already running")
	ErrNoData      = errors.New("report has no time slot groups")
)

// Item is one spot line of the report.
type Item struct {
	Message  string `json:"message"`
	Time     string `json:"time"`
	Duration string `json:"duration"`
	Program  string `json:"program"`
	Notes    string `json:"notes"`
}

// TimeSlotGroup is one break with its spots and subtotals.
type TimeSlotGroup struct {
	TimeLabel     string `json:"timeLabel"`
	Items         []Item `json:"items"`
	TotalDuration string `json:"totalDuration"`
	SpotCount     int    `json:"spotCount"`
}

// Data is the flat reporting structure for one day.
type Data struct {
	Title              string          `json:"title"`
	Date               string          `json:"date"`
	EmptyTimeIndicator string          `json:"emptyTimeIndicator"`
	TimeSlotGroups     []TimeSlotGroup `json:"timeSlotGroups"`
}

// Validate checks the data can be rendered.
func (d Data) Validate() error {
	if len(d.TimeSlotGroups) == 0 {
		return ErrNoData
	}
	return nil
}

// Request is the body of the program flow HTTP endpoint.
type Request struct {
	Data
	FileName string `json:"fileName,omitempty"`
	LogoPath string `json:"logoPath,omitempty"`
}

// Options controls generation and delivery.
type Options struct {
	FileName string
	LogoPath string
	// Destination is the export path. An empty destination means the
	// user dismissed the save prompt.
	Destination string
}

// Status is the outcome kind of a report operation.
type Status int

const (
	StatusSuccess Status = iota
	StatusError
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	case StatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is the outcome of a report operation.
type Result struct {
	Status   Status
	Message  string
	FilePath string
	Err      error
}

// Success builds a successful result.
func Success(message, filePath string) Result {
	return Result{Status: StatusSuccess, Message: message, FilePath: filePath}
}

// Failure builds an error result.
func Failure(message string, err error) Result {
	return Result{Status: StatusError, Message: message, Err: err}
}

// Cancelled builds a cancellation result.
func Cancelled() Result {
	return Result{Status: StatusCancelled, Message: "Report cancelled"}
}

// OK reports whether the result is a success.
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

func (r Result) String() string {
	if r.Err != nil {
		return fmt.Sprintf("%s: %v", r.Message, r.Err)
	}
	return r.Message
}

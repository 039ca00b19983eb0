package domain

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of an action result.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFail    Status = "fail"
	StatusSkipped Status = "skipped"
	StatusInfo    Status = "info"
)

// Terminal reports whether s is a final status for a pass.
func (s Status) Terminal() bool {
	switch s {
	case StatusSuccess, StatusFail, StatusSkipped, StatusInfo:
		return true
	}
	return false
}

// Outcome is what a handler reports back to the runner.
type Outcome struct {
	Status  Status
	Message string
}

func Succeeded() Outcome { return Outcome{Status: StatusSuccess} }

func Failed(msg string) Outcome { return Outcome{Status: StatusFail, Message: msg} }

func Failedf(format string, args ...any) Outcome {
	return Outcome{Status: StatusFail, Message: fmt.Sprintf(format, args...)}
}

func Skipped(msg string) Outcome { return Outcome{Status: StatusSkipped, Message: msg} }

// Informed reports that the targeted cache system is not present. It is not
// a failure.
func Informed(msg string) Outcome { return Outcome{Status: StatusInfo, Message: msg} }

// FromError maps a nil error to success and anything else to a failure
// carrying the error text.
func FromError(err error) Outcome {
	if err == nil {
		return Succeeded()
	}
	return Failed(err.Error())
}

// Result is the persisted record of the latest run of one action.
type Result struct {
	Key          string     `json:"key"`
	Start        *time.Time `json:"start"`
	End          *time.Time `json:"end"`
	Status       Status     `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

// Elapsed returns End minus Start, or zero when either is unset.
func (r Result) Elapsed() time.Duration {
	if r.Start == nil || r.End == nil {
		return 0
	}
	return r.End.Sub(*r.Start)
}

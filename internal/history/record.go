package history

import "time"

// Trigger sources.
const (
	SourceCLI      = "cli"
	SourceHTTP     = "http"
	SourceSchedule = "schedule"
	SourceAPI      = "api"
)

// Entry is one recorded clearing pass.
type Entry struct {
	ID         int64     `json:"id"`
	RunID      string    `json:"run_id"`
	Timestamp  time.Time `json:"timestamp"`
	Source     string    `json:"source"`
	Subject    string    `json:"subject,omitempty"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
	Info       int       `json:"info"`
	FailedKeys string    `json:"failed_keys,omitempty"`
	DurationMs int64     `json:"duration_ms"`
}

// Outcome summarises the pass: "fail" when any action failed.
func (e Entry) Outcome() string {
	if e.Failed > 0 {
		return "fail"
	}
	return "success"
}

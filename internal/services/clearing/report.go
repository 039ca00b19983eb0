package clearing

import (
	"strings"
	"time"

	"nathanbeddoewebdev/ccev/internal/domain"
)

// DatetimeLayout formats the finish time shown next to single-action
// results, e.g. "March 4, 2026 at 2:15 pm".
const DatetimeLayout = "January 2, 2006 at 3:04 pm"

// RewriteRulesHint is appended to a rewrite rules failure in notices.
const RewriteRulesHint = "This happens sometimes. You can also flush rewrite rules by simply resaving your permalinks settings page"

// Report is the outcome of one full pass. Actions is in run order: the
// registry order with deferred actions moved, still in registry order, to
// the end.
type Report struct {
	RunID    string                   `json:"run_id"`
	Started  time.Time                `json:"started"`
	Finished time.Time                `json:"finished"`
	Actions  []domain.Action          `json:"actions"`
	Results  map[string]domain.Result `json:"results"`
}

// Count returns how many results ended with status.
func (r *Report) Count(status domain.Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// FailedKeys lists the keys that failed, in run order.
func (r *Report) FailedKeys() []string {
	var keys []string
	for _, a := range r.Actions {
		if r.Results[a.Key].Status == domain.StatusFail {
			keys = append(keys, a.Key)
		}
	}
	return keys
}

// Item is one line of a notice.
type Item struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	Message string `json:"message,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

// Summary groups a pass's results for display. Info results count as
// skipped.
type Summary struct {
	Success     []Item `json:"success"`
	Fail        []Item `json:"fail"`
	Skipped     []Item `json:"skipped"`
	ShowSkipped bool   `json:"show_skipped"`
}

// Empty reports whether the summary has nothing to show.
func (s Summary) Empty() bool {
	return len(s.Success) == 0 && len(s.Fail) == 0 && (!s.ShowSkipped || len(s.Skipped) == 0)
}

// Summarize sorts a report's results into success, fail and skipped lists
// in run order. siteURL, when set, makes the rewrite rules hint point at the
// permalinks page.
func Summarize(r *Report, siteURL string, showSkipped bool) Summary {
	s := Summary{ShowSkipped: showSkipped}
	for _, a := range r.Actions {
		res, ok := r.Results[a.Key]
		if !ok {
			continue
		}
		item := Item{Key: a.Key, Title: a.Title, Message: res.ErrorMessage}
		switch res.Status {
		case domain.StatusSuccess:
			item.Message = ""
			s.Success = append(s.Success, item)
		case domain.StatusFail:
			if a.Key == "rewrite_rules" {
				item.Hint = rewriteHint(siteURL)
			}
			s.Fail = append(s.Fail, item)
		default:
			s.Skipped = append(s.Skipped, item)
		}
	}
	return s
}

func rewriteHint(siteURL string) string {
	siteURL = strings.TrimRight(strings.TrimSpace(siteURL), "/")
	if siteURL == "" {
		return RewriteRulesHint + " (Settings > Permalinks)."
	}
	return RewriteRulesHint + ": " + siteURL + "/wp-admin/options-permalink.php"
}

// Payload is the response for single-action and deferred runs.
type Payload struct {
	Key          string        `json:"key"`
	Status       domain.Status `json:"status"`
	ErrorMessage *string       `json:"error_message"`
	Start        *time.Time    `json:"start"`
	End          *time.Time    `json:"end"`
	Datetime     string        `json:"datetime"`
}

// NewPayload converts a stored result. Datetime is rendered in loc, or the
// local zone when loc is nil.
func NewPayload(res domain.Result, loc *time.Location) Payload {
	if loc == nil {
		loc = time.Local
	}
	p := Payload{Key: res.Key, Status: res.Status, Start: res.Start, End: res.End}
	if res.ErrorMessage != "" {
		msg := res.ErrorMessage
		p.ErrorMessage = &msg
	}
	if res.End != nil {
		p.Datetime = res.End.In(loc).Format(DatetimeLayout)
	}
	return p
}

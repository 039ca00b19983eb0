package history

import (
	"net/url"
	"strings"
)

var sensitiveParams = map[string]struct{}{
	"_token": {},
	"token":  {},
}

// SanitizeURL redacts token query parameters so trigger links can be
// logged and stored.
func SanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	changed := false
	for name := range q {
		if _, ok := sensitiveParams[strings.ToLower(name)]; ok {
			q.Set(name, "<redacted>")
			changed = true
		}
	}
	if !changed {
		return raw
	}
	u.RawQuery = q.Encode()
	return u.String()
}

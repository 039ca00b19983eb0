package util

import (
	"fmt"
	"regexp"
)

// MaxSubjectLen bounds trigger subjects; they end up in option keys and
// cookie values.
const MaxSubjectLen = 64

var validSubjectChars = regexp.MustCompile(`^[a-zA-Z0-9._@\-]+$`)

// ValidateSubject checks a trigger link subject:
//   - 1 to MaxSubjectLen characters
//   - only a-z, A-Z, 0-9, '.', '_', '@' and '-'
//   - first character alphanumeric
func ValidateSubject(subject string) error {
	if subject == "" {
		return fmt.Errorf("subject must not be empty")
	}
	if len(subject) > MaxSubjectLen {
		return fmt.Errorf("subject must be at most %d characters, got %d", MaxSubjectLen, len(subject))
	}
	if !validSubjectChars.MatchString(subject) {
		return fmt.Errorf("subject %q contains invalid characters (only a-z, A-Z, 0-9, '.', '_', '@' and '-' are allowed)", subject)
	}
	if !isAlphanumeric(subject[0]) {
		return fmt.Errorf("subject must start with an alphanumeric character, got %q", string(subject[0]))
	}
	return nil
}

func isAlphanumeric(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

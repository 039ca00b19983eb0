package util

import (
	"strings"
	"testing"
)

func TestValidateSubject_Valid(t *testing.T) {
	valid := []string{
		"admin",
		"a",
		"ops@example.com",
		"deploy-bot",
		"ci.release_42",
		strings.Repeat("x", MaxSubjectLen),
	}
	for _, subject := range valid {
		t.Run(subject, func(t *testing.T) {
			if err := ValidateSubject(subject); err != nil {
				t.Errorf("expected %q to be valid, got error: %v", subject, err)
			}
		})
	}
}

func TestValidateSubject_Invalid(t *testing.T) {
	tests := []struct {
		subject string
		wantMsg string
	}{
		{"", "must not be empty"},
		{strings.Repeat("x", MaxSubjectLen+1), "at most 64 characters"},
		{"two words", "invalid characters"},
		{"semi;colon", "invalid characters"},
		{"a=b", "invalid characters"},
		{"-dash", "must start with an alphanumeric"},
		{"@host", "must start with an alphanumeric"},
	}
	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			err := ValidateSubject(tt.subject)
			if err == nil {
				t.Fatalf("expected %q to be invalid, got nil", tt.subject)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected error containing %q, got %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestNormalizeKey(t *testing.T) {
	if got := NormalizeKey("  Trigger-Secret "); got != "trigger-secret" {
		t.Errorf("NormalizeKey() = %q", got)
	}
}

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewWithOutput_Levels(t *testing.T) {
	tests := []struct {
		level   string
		want    logrus.Level
		wantErr bool
	}{
		{"", DefaultLevel, false},
		{"debug", logrus.DebugLevel, false},
		{" INFO ", logrus.InfoLevel, false},
		{"loud", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log, err := NewWithOutput(&bytes.Buffer{}, tt.level)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && log.GetLevel() != tt.want {
				t.Errorf("level = %v, want %v", log.GetLevel(), tt.want)
			}
		})
	}
}

func TestNewWithOutput_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithOutput(&buf, "info")
	if err != nil {
		t.Fatal(err)
	}
	log.WithField("action", "transients").Info("clear result")
	if !strings.Contains(buf.String(), "action=transients") {
		t.Errorf("output = %q", buf.String())
	}
}

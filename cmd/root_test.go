package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestRoot_RegistersCommands(t *testing.T) {
	root := rootCmd()
	want := []string{"clear", "actions", "results", "auth", "config", "history", "token", "serve"}
	for _, name := range want {
		found := false
		for _, c := range root.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestRoot_InvalidLogLevel(t *testing.T) {
	root := rootCmd()
	var outBuf, errBuf bytes.Buffer
	root.SetOut(&outBuf)
	root.SetErr(&errBuf)
	root.SetArgs([]string{"--log-level", "loud", "results"})

	if err := root.Execute(); err == nil {
		t.Fatal("expected error for an invalid log level")
	}
	if !strings.Contains(errBuf.String(), `invalid log level "loud"`) {
		t.Errorf("unexpected stderr: %s", errBuf.String())
	}
}

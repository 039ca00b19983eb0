package auth

import (
	"bytes"
	"strings"
	"testing"

	"nathanbeddoewebdev/ccev/internal/services/auth"

	"github.com/zalando/go-keyring"
)

func execAuth(t *testing.T, args ...string) (stdout, stderr string) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	cmd := NewCommand()
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	cmd.Execute()
	return outBuf.String(), errBuf.String()
}

func TestLogin_WithTokenFlag(t *testing.T) {
	keyring.MockInit()

	stdout, stderr := execAuth(t, "login", "Cloudflare", "--token", " cf-123 ")
	if stderr != "" {
		t.Fatalf("unexpected stderr: %s", stderr)
	}
	if !strings.Contains(stdout, "Saved cloudflare") {
		t.Errorf("unexpected stdout: %s", stdout)
	}

	got, err := auth.DefaultStore().GetToken(auth.EntryCloudflare)
	if err != nil || got != "cf-123" {
		t.Errorf("stored = %q, %v", got, err)
	}
}

func TestLogin_UnknownEntry(t *testing.T) {
	keyring.MockInit()

	_, stderr := execAuth(t, "login", "hetzner", "--token", "x")
	if !strings.Contains(stderr, `unknown entry "hetzner"`) {
		t.Errorf("expected unknown entry error, got: %s", stderr)
	}
}

func TestLogout(t *testing.T) {
	keyring.MockInit()
	if err := auth.DefaultStore().SetToken(auth.EntryTriggerSecret, "s3cret"); err != nil {
		t.Fatal(err)
	}

	stdout, _ := execAuth(t, "logout", "trigger-secret")
	if !strings.Contains(stdout, "Removed trigger-secret") {
		t.Errorf("unexpected stdout: %s", stdout)
	}

	stdout, _ = execAuth(t, "logout", "trigger-secret")
	if !strings.Contains(stdout, "was not set") {
		t.Errorf("unexpected stdout: %s", stdout)
	}
}

func TestStatus_NonInteractive(t *testing.T) {
	keyring.MockInit()
	if err := auth.DefaultStore().SetToken(auth.EntryCloudflare, "cf"); err != nil {
		t.Fatal(err)
	}

	stdout, _ := execAuth(t, "status")
	if !strings.Contains(stdout, "cloudflare: stored") {
		t.Errorf("expected cloudflare stored, got: %s", stdout)
	}
	if !strings.Contains(stdout, "trigger-secret: generated on first") {
		t.Errorf("expected trigger-secret missing, got: %s", stdout)
	}
}

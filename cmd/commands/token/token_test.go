package token

import (
	"bytes"
	"encoding/json"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"nathanbeddoewebdev/ccev/internal/config"
	"nathanbeddoewebdev/ccev/internal/services/auth"
	"nathanbeddoewebdev/ccev/internal/trigger"

	"github.com/zalando/go-keyring"
)

func setup(t *testing.T, cfg *config.Config) {
	t.Helper()
	keyring.MockInit()
	path := filepath.Join(t.TempDir(), "config.json")
	config.SetPath(path)
	t.Cleanup(config.ResetPath)
	if cfg != nil {
		if err := cfg.SaveTo(path); err != nil {
			t.Fatal(err)
		}
	}
}

func execToken(t *testing.T, args ...string) (stdout, stderr string) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	cmd := NewCommand()
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	cmd.Execute()
	return outBuf.String(), errBuf.String()
}

func verifier(t *testing.T) *trigger.Signer {
	t.Helper()
	s, err := trigger.FromStore(auth.DefaultStore())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestIssue_JSONWithSiteURL(t *testing.T) {
	setup(t, &config.Config{SiteURL: "https://example.com/"})

	stdout, stderr := execToken(t, "issue", "--subject", "ops@example.com", "-o", "json")
	if stderr != "" {
		t.Fatalf("unexpected stderr: %s", stderr)
	}

	var got issued
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("bad json: %v\n%s", err, stdout)
	}
	claims, err := verifier(t).Verify(got.Token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.Subject != "ops@example.com" {
		t.Errorf("subject = %q", claims.Subject)
	}

	u, err := url.Parse(got.Link)
	if err != nil {
		t.Fatal(err)
	}
	if u.Host != "example.com" || u.Query().Get(trigger.ParamToken) != got.Token || u.Query().Get(trigger.ParamClear) != "1" {
		t.Errorf("unexpected link %s", got.Link)
	}
}

func TestIssue_NoBaseURL(t *testing.T) {
	setup(t, nil)

	stdout, stderr := execToken(t, "issue")
	if !strings.Contains(stdout, "Token: ") || strings.Contains(stdout, "Link:") {
		t.Errorf("unexpected stdout: %s", stdout)
	}
	if !strings.Contains(stderr, "--base-url") {
		t.Errorf("expected base-url hint, got: %s", stderr)
	}
}

func TestIssue_BadSubject(t *testing.T) {
	setup(t, nil)

	_, stderr := execToken(t, "issue", "--subject", "a b")
	if !strings.Contains(stderr, "invalid characters") {
		t.Errorf("expected subject error, got: %s", stderr)
	}
}

func TestRotate_RevokesTokens(t *testing.T) {
	setup(t, nil)

	tok, err := verifier(t).Issue("admin", 0)
	if err != nil {
		t.Fatal(err)
	}

	stdout, _ := execToken(t, "rotate")
	if !strings.Contains(stdout, "Signing secret replaced") {
		t.Errorf("unexpected stdout: %s", stdout)
	}
	if _, err := verifier(t).Verify(tok); err == nil {
		t.Error("expected old token to be rejected after rotation")
	}
}

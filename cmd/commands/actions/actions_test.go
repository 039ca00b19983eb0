package actions

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"nathanbeddoewebdev/ccev/internal/clearers"
	"nathanbeddoewebdev/ccev/internal/config"
	"nathanbeddoewebdev/ccev/internal/database"
	"nathanbeddoewebdev/ccev/internal/domain"
	"nathanbeddoewebdev/ccev/internal/options"
	"nathanbeddoewebdev/ccev/internal/results"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func setup(t *testing.T, cfg *config.Config) {
	t.Helper()
	keyring.MockInit()
	clearers.Reset()
	clearers.RegisterBuiltins()
	t.Cleanup(clearers.Reset)

	dir := t.TempDir()
	config.SetPath(filepath.Join(dir, "config.json"))
	database.SetPath(filepath.Join(dir, "ccev.db"))
	t.Cleanup(func() {
		config.ResetPath()
		database.ResetPath()
	})
	if cfg != nil {
		require.NoError(t, cfg.Save())
	}
}

// seedResult stores one result the way the runner would.
func seedResult(t *testing.T, key string, status domain.Status, msg string) {
	t.Helper()
	repo, err := options.Open()
	require.NoError(t, err)
	defer repo.Close()

	now := time.Date(2026, 3, 4, 14, 15, 0, 0, time.Local)
	_, err = results.NewOptionStore(repo).Update(context.Background(), key, results.Patch{
		Start: &now, End: &now, Status: status, ErrorMessage: results.Message(msg),
	})
	require.NoError(t, err)
}

func exec(t *testing.T, cmdName string, args ...string) (stdout, stderr string) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	cmd := NewCommand()
	if cmdName == "results" {
		cmd = ResultsCommand()
	}
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	cmd.Execute()
	return outBuf.String(), errBuf.String()
}

func TestList_Table(t *testing.T) {
	cfg := &config.Config{}
	cfg.SetEnabled("transients", false)
	setup(t, cfg)
	seedResult(t, "rewrite_rules", domain.StatusSuccess, "")

	stdout, stderr := exec(t, "actions", "list", "--offline")
	require.Empty(t, stderr)

	lines := strings.Split(stdout, "\n")
	assert.Contains(t, lines[0], "KEY")
	var rewrite, transients string
	for _, l := range lines {
		switch {
		case strings.HasPrefix(l, "rewrite_rules "):
			rewrite = l
		case strings.HasPrefix(l, "transients "):
			transients = l
		}
	}
	assert.Contains(t, rewrite, "success")
	assert.Contains(t, transients, "no")
}

func TestList_JSON(t *testing.T) {
	setup(t, nil)

	stdout, _ := exec(t, "actions", "list", "--offline", "-o", "json")

	var rows []actionRow
	require.NoError(t, json.Unmarshal([]byte(stdout), &rows), stdout)
	require.NotEmpty(t, rows)
	assert.Equal(t, "rewrite_rules", rows[0].Key)
	assert.Equal(t, domain.ContextImmediate, rows[0].Context)

	byKey := make(map[string]actionRow, len(rows))
	for _, r := range rows {
		byKey[r.Key] = r
	}
	assert.Equal(t, domain.ContextDeferred, byKey["cookies"].Context)
	assert.True(t, byKey["cookies"].Enabled)
}

func TestResults(t *testing.T) {
	setup(t, nil)

	stdout, _ := exec(t, "results")
	assert.Contains(t, stdout, "No results recorded yet.")

	seedResult(t, "varnish", domain.StatusInfo, "Varnish not detected.")
	stdout, _ = exec(t, "results")
	assert.Contains(t, stdout, "varnish")
	assert.Contains(t, stdout, "Varnish not detected.")
	assert.Contains(t, stdout, "March 4, 2026 at 2:15 pm")

	stdout, _ = exec(t, "results", "-o", "json")
	assert.Contains(t, stdout, `"status": "info"`)
}

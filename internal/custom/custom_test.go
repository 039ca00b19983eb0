package custom

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"nathanbeddoewebdev/ccev/internal/config"
	"nathanbeddoewebdev/ccev/internal/domain"
	"nathanbeddoewebdev/ccev/internal/hooks"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
actions:
  - key: purge_cdn
    title: Purge CDN
    http:
      method: POST
      url: https://cdn.example.com/purge
      expect: [202]
  - key: rocket_preload
    title: Preload WP Rocket
    context: deferred
    default: false
    when: '"wp-rocket/wp-rocket.php" in plugins'
    command:
      argv: ["sh", "-c", "true"]
      timeout: 5s
overrides:
  transients:
    title: Expired Transients
    default: false
remove: [opcache_reset]
`

func builtins() []domain.Action {
	return []domain.Action{
		{Key: "transients", Title: "Transients", Context: domain.ContextImmediate, DefaultEnabled: true},
		{Key: "opcache_reset", Title: "PHP OPcache", Context: domain.ContextImmediate},
	}
}

func newFilter(t *testing.T, src string, cfg *config.Config) *Filter {
	t.Helper()
	f, err := Parse([]byte(src))
	require.NoError(t, err)
	log, _ := test.NewNullLogger()
	return NewFilter(f, func() *config.Config { return cfg }, nil, log)
}

func keys(actions []domain.Action) []string {
	out := make([]string, 0, len(actions))
	for _, a := range actions {
		out = append(out, a.Key)
	}
	return out
}

func TestParse_Valid(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	require.Len(t, f.Actions, 2)
	assert.Equal(t, "purge_cdn", f.Actions[0].Key)
	assert.Equal(t, []int{202}, f.Actions[0].HTTP.Expect)
	assert.Equal(t, []string{"opcache_reset"}, f.Remove)
	assert.Contains(t, f.conditions, "rocket_preload")
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{"unknown top-level key", "extras: 1\n", "failed validation"},
		{"bad key", "actions:\n  - key: Bad-Key\n    title: x\n    http: {url: 'https://x'}\n", "failed validation"},
		{"no executor", "actions:\n  - key: a\n    title: A\n", "failed validation"},
		{"both executors", "actions:\n  - key: a\n    title: A\n    http: {url: 'https://x'}\n    command: {argv: [x]}\n", "failed validation"},
		{"bad context", "overrides:\n  transients: {context: later}\n", "failed validation"},
		{"duplicate key", "actions:\n  - {key: a, title: A, http: {url: 'https://x'}}\n  - {key: a, title: B, http: {url: 'https://y'}}\n", "duplicate action key"},
		{"bad condition", "actions:\n  - {key: a, title: A, when: 'plugins +', http: {url: 'https://x'}}\n", "error parsing"},
		{"non-boolean condition", "actions:\n  - {key: a, title: A, when: 'size(plugins)', http: {url: 'https://x'}}\n", "must evaluate to a boolean"},
		{"not yaml", "actions: [\n", "invalid YAML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	f, err := Parse([]byte(""))
	require.NoError(t, err)
	assert.Empty(t, f.Actions)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestLoad_FromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, f.Actions, 2)
}

func TestFilter_RemoveOverrideAndCondition(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Skipping test on Windows")
	}
	fl := newFilter(t, sample, nil)

	got := fl.Apply(builtins(), hooks.FilterEnv{})
	assert.Equal(t, []string{"transients", "purge_cdn"}, keys(got))
	assert.Equal(t, "Expired Transients", got[0].Title)
	assert.False(t, got[0].DefaultEnabled)
	assert.Equal(t, domain.SectionCustom, got[1].Section)
	assert.True(t, got[1].DefaultEnabled)

	got = fl.Apply(builtins(), hooks.FilterEnv{ActivePlugins: []string{"wp-rocket/wp-rocket.php"}})
	require.Equal(t, []string{"transients", "purge_cdn", "rocket_preload"}, keys(got))
	rocket := got[2]
	assert.Equal(t, domain.ContextDeferred, rocket.Context)
	assert.False(t, rocket.DefaultEnabled)
	require.NotNil(t, rocket.Callback)
	assert.Equal(t, domain.StatusSuccess, rocket.Callback.Clear(context.Background()).Status)
}

func TestFilter_ConditionOnConfig(t *testing.T) {
	src := `
actions:
  - key: staging_only
    title: Staging
    when: 'has(config.site_url) && config.site_url.startsWith("https://staging.")'
    http: {url: "https://example.com"}
`
	fl := newFilter(t, src, &config.Config{SiteURL: "https://staging.example.com"})
	assert.Equal(t, []string{"staging_only"}, keys(fl.Apply(nil, hooks.FilterEnv{})))

	fl = newFilter(t, src, &config.Config{SiteURL: "https://example.com"})
	assert.Empty(t, fl.Apply(nil, hooks.FilterEnv{}))

	fl = newFilter(t, src, nil)
	assert.Empty(t, fl.Apply(nil, hooks.FilterEnv{}))
}

func TestFilter_MissingProgramIsNotCallable(t *testing.T) {
	src := `
actions:
  - key: ghost
    title: Ghost
    command: {argv: ["ccev-no-such-program-xyz"]}
`
	got := newFilter(t, src, nil).Apply(nil, hooks.FilterEnv{})
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Callback)
	assert.Error(t, got[0].CallbackErr)
	assert.True(t, got[0].HasCallback())
}

func TestHTTPHandler(t *testing.T) {
	var gotMethod, gotAuth, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		if r.URL.Path == "/reject" {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(srv.Close)

	h := httpHandler(&HTTPSpec{
		URL:     srv.URL + "/purge",
		Headers: map[string]string{"Authorization": "Bearer abc"},
		Body:    `{"all":true}`,
		Expect:  []int{202},
	}, srv.Client())
	out := h.Clear(context.Background())

	assert.Equal(t, domain.StatusSuccess, out.Status)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "Bearer abc", gotAuth)
	assert.Equal(t, `{"all":true}`, gotBody)

	h = httpHandler(&HTTPSpec{Method: "get", URL: srv.URL + "/reject"}, srv.Client())
	out = h.Clear(context.Background())
	assert.Equal(t, domain.Failed("Unexpected response code: 418"), out)
	assert.Equal(t, http.MethodGet, gotMethod)
}

func TestCommandHandler_Failure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Skipping test on Windows")
	}
	h, err := commandHandler(&CommandSpec{Argv: []string{"sh", "-c", "echo purge failed >&2; exit 2"}})
	require.NoError(t, err)

	out := h.Clear(context.Background())
	assert.Equal(t, domain.StatusFail, out.Status)
	assert.Contains(t, out.Message, "purge failed")

	_, err = commandHandler(&CommandSpec{Argv: []string{"sh"}, Timeout: "soon"})
	assert.ErrorContains(t, err, "timeout")
}

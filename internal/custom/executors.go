package custom

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"slices"
	"strings"
	"time"

	"nathanbeddoewebdev/ccev/internal/domain"
	"nathanbeddoewebdev/ccev/internal/wpcli"
)

// commandHandler builds the handler for a command action. It fails when the
// program cannot be found or the timeout does not parse.
func commandHandler(spec *CommandSpec) (domain.Handler, error) {
	if _, err := exec.LookPath(spec.Argv[0]); err != nil {
		return nil, fmt.Errorf("command %q: %w", spec.Argv[0], err)
	}
	timeout := wpcli.DefaultTimeout
	if spec.Timeout != "" {
		d, err := time.ParseDuration(spec.Timeout)
		if err != nil {
			return nil, fmt.Errorf("command timeout %q: %w", spec.Timeout, err)
		}
		timeout = d
	}

	return domain.HandlerFunc(func(ctx context.Context) domain.Outcome {
		_, err := wpcli.NewCommand(spec.Argv[0], spec.Argv[1:]...).
			WithWorkingDir(spec.Dir).
			WithEnvironment(spec.Env).
			WithTimeout(timeout).
			Run(ctx)
		return domain.FromError(err)
	}), nil
}

func httpHandler(spec *HTTPSpec, client *http.Client) domain.Handler {
	method := strings.ToUpper(strings.TrimSpace(spec.Method))
	if method == "" {
		method = http.MethodPost
	}

	return domain.HandlerFunc(func(ctx context.Context) domain.Outcome {
		var body io.Reader
		if spec.Body != "" {
			body = strings.NewReader(spec.Body)
		}
		req, err := http.NewRequestWithContext(ctx, method, spec.URL, body)
		if err != nil {
			return domain.Failed(err.Error())
		}
		for k, v := range spec.Headers {
			req.Header.Set(k, v)
		}

		resp, err := client.Do(req)
		if err != nil {
			return domain.Failed(err.Error())
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

		if !accepted(resp.StatusCode, spec.Expect) {
			return domain.Failedf("Unexpected response code: %d", resp.StatusCode)
		}
		return domain.Succeeded()
	})
}

func accepted(code int, expect []int) bool {
	if len(expect) == 0 {
		return code >= 200 && code < 300
	}
	return slices.Contains(expect, code)
}

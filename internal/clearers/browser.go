package clearers

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"nathanbeddoewebdev/ccev/internal/domain"
)

const loggedInCookiePrefix = "wordpress_logged_in_"

// Exchange is the request and response of the page load that triggered a
// clear. Deferred actions act on it. It wraps the response writer to know
// when headers have gone out.
type Exchange struct {
	Request *http.Request
	w       http.ResponseWriter
	sent    bool
}

// NewExchange wraps w. Handlers after the clear must write through the
// returned Exchange.
func NewExchange(w http.ResponseWriter, r *http.Request) *Exchange {
	return &Exchange{Request: r, w: w}
}

func (e *Exchange) Header() http.Header { return e.w.Header() }

func (e *Exchange) WriteHeader(code int) {
	e.sent = true
	e.w.WriteHeader(code)
}

func (e *Exchange) Write(b []byte) (int, error) {
	e.sent = true
	return e.w.Write(b)
}

// Flush implements http.Flusher when the wrapped writer does.
func (e *Exchange) Flush() {
	if f, ok := e.w.(http.Flusher); ok {
		e.sent = true
		f.Flush()
	}
}

// Hijack implements http.Hijacker when the wrapped writer does.
func (e *Exchange) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := e.w.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("clearers: response writer does not support hijacking")
	}
	e.sent = true
	return h.Hijack()
}

// HeadersSent reports whether the status line has been written.
func (e *Exchange) HeadersSent() bool { return e.sent }

type exchangeKey struct{}

// WithExchange attaches e to ctx for the deferred handlers.
func WithExchange(ctx context.Context, e *Exchange) context.Context {
	return context.WithValue(ctx, exchangeKey{}, e)
}

// ExchangeFrom returns the Exchange attached to ctx, if any.
func ExchangeFrom(ctx context.Context) (*Exchange, bool) {
	e, ok := ctx.Value(exchangeKey{}).(*Exchange)
	return e, ok && e != nil
}

const msgNoRequest = "No browser request to act on."

// cookies expires every cookie on the triggering request except the login
// cookie.
func cookies(d *Deps) domain.Handler {
	return domain.HandlerFunc(func(ctx context.Context) domain.Outcome {
		ex, ok := ExchangeFrom(ctx)
		if !ok || ex.Request == nil {
			return domain.Informed(msgNoRequest)
		}
		incoming := ex.Request.Cookies()
		if len(incoming) == 0 {
			return domain.Succeeded()
		}
		if ex.HeadersSent() {
			return domain.Failed("Headers already sent.")
		}

		expired := d.Now().Add(-time.Hour)
		for _, c := range incoming {
			if strings.HasPrefix(c.Name, loggedInCookiePrefix) {
				continue
			}
			http.SetCookie(ex, &http.Cookie{
				Name:    c.Name,
				Value:   "",
				Path:    "/",
				Expires: expired,
				MaxAge:  -1,
			})
		}
		return domain.Succeeded()
	})
}

func browserCache(d *Deps) domain.Handler {
	return domain.HandlerFunc(func(ctx context.Context) domain.Outcome {
		ex, ok := ExchangeFrom(ctx)
		if !ok {
			return domain.Informed(msgNoRequest)
		}
		if ex.HeadersSent() {
			return domain.Failed("Headers already sent.")
		}
		h := ex.Header()
		h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "0")
		return domain.Succeeded()
	})
}

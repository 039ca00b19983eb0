// Package httpapi serves the HTTP trigger surface: signed clear-cache links
// for browsers and a small JSON API for scripts.
package httpapi

import (
	"net/http"
	"time"

	"nathanbeddoewebdev/ccev/internal/services/clearing"
	"nathanbeddoewebdev/ccev/internal/trigger"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// Verifier checks trigger tokens. Issue signs the short-lived notice
// cookie so the landing page only shows a notice to its own subject.
type Verifier interface {
	Verify(raw string) (*trigger.Claims, error)
	Issue(subject string, ttl time.Duration) (string, error)
}

// Handler binds the HTTP routes to the clearing service.
type Handler struct {
	service  *clearing.Service
	verifier Verifier
	log      logrus.FieldLogger
}

// NewHandler constructs a Handler. Datetimes use the service's location.
func NewHandler(service *clearing.Service, verifier Verifier, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{service: service, verifier: verifier, log: log}
}

// NewRouter registers the routes and middleware stack.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(handler.recoverMiddleware)
	r.Use(handler.loggingMiddleware)
	r.Use(handler.triggerMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/", handler.landing)

	r.Route("/api", func(r chi.Router) {
		r.Use(handler.authMiddleware)
		r.Get("/actions", handler.listActions)
		r.Get("/results", handler.listResults)
		r.Get("/notice", handler.notice)
		r.Post("/clear", handler.clearAll)
		r.Post("/actions/run-deferred", handler.runDeferred)
		r.Post("/actions/{key}/run", handler.runAction)
	})

	return r
}

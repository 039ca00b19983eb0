package httpapi

import (
	"net/http"

	"nathanbeddoewebdev/ccev/internal/clearers"
	"nathanbeddoewebdev/ccev/internal/history"
	"nathanbeddoewebdev/ccev/internal/services/clearing"
	"nathanbeddoewebdev/ccev/internal/trigger"

	"github.com/sirupsen/logrus"
)

// NoticeCookie carries a signed token naming the subject whose notice the
// landing page shows.
const NoticeCookie = "ccev_notice"

// triggerMiddleware runs a full pass when a request carries
// clear-cache-now=1 and a valid token, then redirects to the same URL
// without the trigger parameters. Requests without the flag pass through.
func (h *Handler) triggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get(trigger.ParamClear) != "1" {
			next.ServeHTTP(w, r)
			return
		}
		log := h.log.WithFields(logrus.Fields{
			"url":        history.SanitizeURL(r.URL.String()),
			"request_id": requestIDFromContext(r.Context()),
		})

		claims, err := h.verifier.Verify(q.Get(trigger.ParamToken))
		if err != nil {
			log.WithError(err).Warn("rejected clear-cache trigger")
			status, code, msg := mapDomainError(err)
			writeError(w, status, code, msg)
			return
		}

		ex := clearers.NewExchange(w, r)
		ctx := history.WithTrigger(r.Context(), history.Trigger{Source: history.SourceHTTP, Subject: claims.Subject})
		ctx = clearers.WithExchange(ctx, ex)

		report := h.service.ClearAll(ctx)
		if err := h.service.SaveNotice(ctx, claims.Subject, h.service.Summarize(report)); err != nil {
			log.WithError(err).Warn("failed to save clear notice")
		}

		if ex.HeadersSent() {
			return
		}
		cookie, err := h.verifier.Issue(claims.Subject, clearing.NoticeTTL)
		if err != nil {
			log.WithError(err).Warn("failed to sign notice cookie")
			http.Redirect(ex, r, trigger.Strip(r.URL), http.StatusFound)
			return
		}
		http.SetCookie(ex, &http.Cookie{
			Name:     NoticeCookie,
			Value:    cookie,
			Path:     "/",
			MaxAge:   int(clearing.NoticeTTL.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(ex, r, trigger.Strip(r.URL), http.StatusFound)
	})
}

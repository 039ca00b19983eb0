package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"nathanbeddoewebdev/ccev/internal/clearers"
	"nathanbeddoewebdev/ccev/internal/domain"
	"nathanbeddoewebdev/ccev/internal/services/clearing"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ok")
}

// landing shows the notice left by the last trigger link, if any.
func (h *Handler) landing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c, err := r.Cookie(NoticeCookie)
	if err != nil || c.Value == "" {
		fmt.Fprintln(w, "ccev")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: NoticeCookie, Path: "/", MaxAge: -1})

	claims, err := h.verifier.Verify(c.Value)
	if err != nil {
		h.log.WithError(err).Debug("ignoring unsigned notice cookie")
		fmt.Fprintln(w, "ccev")
		return
	}
	sum, ok, err := h.service.TakeNotice(r.Context(), claims.Subject)
	if err != nil {
		h.log.WithError(err).Warn("failed to read clear notice")
	}
	if !ok || sum.Empty() {
		fmt.Fprintln(w, "ccev")
		return
	}
	fmt.Fprint(w, RenderNotice(sum))
}

type actionView struct {
	domain.Action
	LastStatus domain.Status `json:"last_status,omitempty"`
}

func (h *Handler) listActions(w http.ResponseWriter, r *http.Request) {
	last, err := h.service.Results(r.Context())
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	actions := h.service.Actions(r.Context())
	out := make([]actionView, 0, len(actions))
	for _, a := range actions {
		v := actionView{Action: a}
		if res, ok := last[a.Key]; ok {
			v.LastStatus = res.Status
		}
		out = append(out, v)
	}
	writeSuccess(w, http.StatusOK, out)
}

func (h *Handler) listResults(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.Results(r.Context())
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	out := make(map[string]clearing.Payload, len(all))
	for key, res := range all {
		out[key] = h.service.Payload(res)
	}
	writeSuccess(w, http.StatusOK, out)
}

func (h *Handler) notice(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFromContext(r.Context())
	sum, ok, err := h.service.TakeNotice(r.Context(), claims.Subject)
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	if !ok {
		status, code, msg := mapDomainError(domain.ErrNotFound)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, sum)
}

func (h *Handler) clearAll(w http.ResponseWriter, r *http.Request) {
	report := h.service.ClearAll(r.Context())
	results := make(map[string]clearing.Payload, len(report.Results))
	for key, res := range report.Results {
		results[key] = h.service.Payload(res)
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"run_id":  report.RunID,
		"summary": h.service.Summarize(report),
		"results": results,
	})
}

func (h *Handler) runAction(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	anyContext := strings.EqualFold(r.URL.Query().Get("scope"), "any")

	payload, err := h.service.RunAction(r.Context(), key, anyContext)
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, payload)
}

// runDeferred runs the deferred actions against this request, so cookie and
// cache headers land on the API response.
func (h *Handler) runDeferred(w http.ResponseWriter, r *http.Request) {
	ex := clearers.NewExchange(w, r)
	ctx := clearers.WithExchange(r.Context(), ex)
	writeSuccess(ex, http.StatusOK, h.service.RunDeferred(ctx))
}

// RenderNotice formats a summary as plain text.
func RenderNotice(sum clearing.Summary) string {
	var b strings.Builder
	if len(sum.Success) > 0 {
		b.WriteString("Cleared:\n")
		for _, it := range sum.Success {
			fmt.Fprintf(&b, "  - %s\n", it.Title)
		}
	}
	if len(sum.Fail) > 0 {
		b.WriteString("Failed:\n")
		for _, it := range sum.Fail {
			line := it.Title
			if it.Message != "" {
				line += ": " + it.Message
			}
			fmt.Fprintf(&b, "  - %s\n", line)
			if it.Hint != "" {
				fmt.Fprintf(&b, "    %s\n", it.Hint)
			}
		}
	}
	if sum.ShowSkipped && len(sum.Skipped) > 0 {
		skipped := make([]string, 0, len(sum.Skipped))
		for _, it := range sum.Skipped {
			skipped = append(skipped, it.Title)
		}
		fmt.Fprintf(&b, "Skipped: %s\n", strings.Join(skipped, ", "))
	}
	return b.String()
}

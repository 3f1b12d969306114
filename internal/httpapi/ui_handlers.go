package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"commandcenter/internal/action"
	"commandcenter/internal/domain"
	"commandcenter/internal/mode"
	"commandcenter/internal/poll"
	"commandcenter/internal/session"
	"commandcenter/internal/ui"
)

// UIHandler serves the HTML dashboard. Every form post redirects back to
// the page it came from, so the page works without client scripts.
type UIHandler struct {
	Mode       *mode.Holder
	Poller     *poll.Poller
	Dispatcher *action.Dispatcher
	Sessions   *session.Manager
	Logger     *zap.Logger
}

func (h UIHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		WriteError(w, r, http.StatusNotFound, "not_found", "not found")
		return
	}
	s := sessionFor(h.Sessions, w, r)
	m := h.Mode.Current()

	inflight := map[string]bool{}
	for _, id := range h.Dispatcher.InFlight() {
		inflight[id] = true
	}
	groups := make([]ui.ActionGroup, 0, len(action.Groups))
	for _, g := range action.Groups {
		if as := h.Dispatcher.Catalog.ByGroup(g); len(as) > 0 {
			groups = append(groups, ui.ActionGroup{Name: g, Actions: as})
		}
	}

	d := ui.DashboardData{
		Mode:     m,
		Panels:   h.Poller.Views(m),
		Groups:   groups,
		InFlight: inflight,
		Toasts:   s.Toasts.List(),
		Wizard:   s.Wizard.Snapshot(),
		Now:      time.Now().UTC(),
	}
	if o, ok := s.Overlay().(session.ActionModal); ok {
		if a, found := h.Dispatcher.Catalog.Lookup(o.ActionID); found {
			d.Overlay = &a
		}
	}
	templ.Handler(ui.Dashboard(d)).ServeHTTP(w, r)
}

func (h UIHandler) Wizard(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(h.Sessions, w, r)
	templ.Handler(ui.WizardPage(h.Mode.Current(), s.Wizard.Snapshot(), s.Toasts.List())).ServeHTTP(w, r)
}

func (h UIHandler) ToggleMode(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(h.Sessions, w, r)
	m, err := h.Mode.Toggle(r.Context())
	if err != nil {
		s.Toasts.Push(session.Toast{Level: session.LevelError, Message: "Could not switch mode: " + err.Error()})
	} else {
		s.Toasts.Push(session.Toast{Level: session.LevelSuccess, Message: "System switched to " + strings.ToUpper(string(m)) + " mode"})
	}
	redirectBack(w, r)
}

func (h UIHandler) RefreshQueries(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(h.Sessions, w, r)
	if failed := h.Poller.RefreshAll(r.Context()); failed > 0 {
		s.Toasts.Push(session.Toast{Level: session.LevelWarning, Message: fmt.Sprintf("%d panels failed to refresh", failed)})
	} else {
		s.Toasts.Push(session.Toast{Level: session.LevelSuccess, Message: "All panels refreshed"})
	}
	redirectBack(w, r)
}

// DispatchByPath handles /ui/actions/{id}.
func (h UIHandler) DispatchByPath(w http.ResponseWriter, r *http.Request) {
	parts := pathTail(r, "/ui/actions/")
	if len(parts) != 1 {
		WriteError(w, r, http.StatusNotFound, "unknown_action", "unknown action")
		return
	}
	a, ok := h.Dispatcher.Catalog.Lookup(parts[0])
	if !ok {
		WriteError(w, r, http.StatusNotFound, "unknown_action", "unknown action "+parts[0])
		return
	}
	if err := r.ParseForm(); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_form", err.Error())
		return
	}

	form := make(map[string]string, len(a.Fields))
	for _, f := range a.Fields {
		form[f.Name] = strings.TrimSpace(r.PostFormValue(f.Name))
	}
	s := sessionFor(h.Sessions, w, r)
	_, err := dispatch(h.Dispatcher, s, r, a.ID, action.Request{
		Confirmed: r.PostFormValue("confirmed") == "true",
		Typed:     r.PostFormValue("typed"),
		Form:      form,
	})
	if err != nil && !errors.Is(err, action.ErrInFlight) {
		h.Logger.Warn("ui dispatch failed", zap.String("action", a.ID), zap.Error(err))
	}
	redirectBack(w, r)
}

// OverlayByPath handles /ui/overlay/{id} and /ui/overlay/close.
func (h UIHandler) OverlayByPath(w http.ResponseWriter, r *http.Request) {
	parts := pathTail(r, "/ui/overlay/")
	s := sessionFor(h.Sessions, w, r)
	switch {
	case len(parts) == 1 && parts[0] == "close":
		s.Close()
	case len(parts) == 1:
		if _, ok := h.Dispatcher.Catalog.Lookup(parts[0]); !ok {
			WriteError(w, r, http.StatusNotFound, "unknown_action", "unknown action "+parts[0])
			return
		}
		s.Open(session.ActionModal{ActionID: parts[0]})
	default:
		WriteError(w, r, http.StatusNotFound, "not_found", "not found")
		return
	}
	redirectBack(w, r)
}

// DismissToastByPath handles /ui/toasts/{id}/dismiss.
func (h UIHandler) DismissToastByPath(w http.ResponseWriter, r *http.Request) {
	parts := pathTail(r, "/ui/toasts/")
	if len(parts) == 2 && parts[1] == "dismiss" {
		s := sessionFor(h.Sessions, w, r)
		s.Toasts.Dismiss(parts[0])
	}
	redirectBack(w, r)
}

func (h UIHandler) WizardTool(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(h.Sessions, w, r)
	if err := s.Wizard.SelectTool(domain.Tool(r.PostFormValue("tool"))); err != nil {
		s.Toasts.Push(session.Toast{Level: session.LevelError, Message: err.Error()})
	}
	redirectBack(w, r)
}

// WizardStart saves the posted filter form, then runs the scrape.
func (h UIHandler) WizardStart(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(h.Sessions, w, r)
	if err := r.ParseForm(); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_form", err.Error())
		return
	}

	snap := s.Wizard.Snapshot()
	if snap.Tool != "" {
		values := map[string]string{}
		for _, f := range snap.Fields[snap.Tool] {
			if _, ok := r.PostForm[f.Key]; ok {
				values[f.Key] = strings.TrimSpace(r.PostFormValue(f.Key))
			}
		}
		if err := s.Wizard.SetFilters(snap.Tool, values); err != nil {
			s.Toasts.Push(session.Toast{Level: session.LevelError, Message: err.Error()})
			redirectBack(w, r)
			return
		}
	}

	snap, err := s.Wizard.StartScraping(r.Context())
	switch {
	case err != nil:
		s.Toasts.Push(session.Toast{Level: session.LevelWarning, Message: err.Error()})
	case snap.Result != nil:
		s.Toasts.Push(session.Toast{Level: session.LevelSuccess, Message: fmt.Sprintf("Found %d leads", snap.Result.Count)})
	case snap.Error != "":
		s.Toasts.Push(session.Toast{Level: session.LevelError, Message: snap.Error})
	}
	redirectBack(w, r)
}

func (h UIHandler) WizardReset(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(h.Sessions, w, r)
	s.Wizard.Reset()
	redirectBack(w, r)
}

// redirectBack sends the browser to the page that posted the form. Only
// same-site paths are honoured.
func redirectBack(w http.ResponseWriter, r *http.Request) {
	target := "/"
	if ref, err := url.Parse(r.Header.Get("Referer")); err == nil && ref.Path == "/wizard" {
		target = "/wizard"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

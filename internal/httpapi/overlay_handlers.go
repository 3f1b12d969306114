package httpapi

import (
	"net/http"

	"commandcenter/internal/action"
	"commandcenter/internal/session"
)

type OverlayHandler struct {
	Catalog  *action.Catalog
	Sessions *session.Manager
}

func (h OverlayHandler) Get(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(h.Sessions, w, r)
	writeJSON(w, session.ViewOf(s.Overlay()))
}

func (h OverlayHandler) OpenByPath(w http.ResponseWriter, r *http.Request) {
	parts := pathTail(r, "/api/overlay/")
	if len(parts) != 1 {
		WriteError(w, r, http.StatusNotFound, "unknown_action", "unknown action")
		return
	}
	if _, ok := h.Catalog.Lookup(parts[0]); !ok {
		WriteError(w, r, http.StatusNotFound, "unknown_action", "unknown action "+parts[0])
		return
	}
	s := sessionFor(h.Sessions, w, r)
	s.Open(session.ActionModal{ActionID: parts[0]})
	writeJSON(w, session.ViewOf(s.Overlay()))
}

func (h OverlayHandler) Close(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(h.Sessions, w, r)
	s.Close()
	writeJSON(w, session.ViewOf(s.Overlay()))
}

type ToastHandler struct {
	Sessions *session.Manager
}

func (h ToastHandler) List(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(h.Sessions, w, r)
	writeJSON(w, s.Toasts.List())
}

func (h ToastHandler) DismissByPath(w http.ResponseWriter, r *http.Request) {
	parts := pathTail(r, "/api/toasts/")
	s := sessionFor(h.Sessions, w, r)
	if len(parts) != 1 || !s.Toasts.Dismiss(parts[0]) {
		WriteError(w, r, http.StatusNotFound, "not_found", "unknown toast")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package httpapi

import (
	"errors"
	"net/http"

	"commandcenter/internal/domain"
	"commandcenter/internal/mode"
	"commandcenter/internal/poll"
)

type QueryHandler struct {
	Poller *poll.Poller
	Mode   *mode.Holder
}

// modeFor honours ?mode= so the UI can peek at the other mode's cache.
func (h QueryHandler) modeFor(r *http.Request) (domain.SystemMode, error) {
	if v := r.URL.Query().Get("mode"); v != "" {
		return domain.ParseSystemMode(v)
	}
	return h.Mode.Current(), nil
}

func (h QueryHandler) List(w http.ResponseWriter, r *http.Request) {
	m, err := h.modeFor(r)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_mode", err.Error())
		return
	}
	writeJSON(w, map[string]any{"mode": m, "queries": h.Poller.Views(m)})
}

func (h QueryHandler) GetByPath(w http.ResponseWriter, r *http.Request) {
	parts := pathTail(r, "/api/queries/")
	if len(parts) != 1 {
		WriteError(w, r, http.StatusNotFound, "not_found", "unknown query")
		return
	}
	m, err := h.modeFor(r)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_mode", err.Error())
		return
	}
	v, err := h.Poller.View(parts[0], m)
	if errors.Is(err, poll.ErrUnknownQuery) {
		WriteError(w, r, http.StatusNotFound, "unknown_query", "unknown query "+parts[0])
		return
	}
	writeJSON(w, v)
}

func (h QueryHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	failed := h.Poller.RefreshAll(r.Context())
	writeJSON(w, map[string]any{"ok": failed == 0, "failed": failed})
}

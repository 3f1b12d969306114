package httpapi

import (
	"errors"
	"net/http"

	"commandcenter/internal/action"
	"commandcenter/internal/session"
)

type ActionHandler struct {
	Dispatcher *action.Dispatcher
	Sessions   *session.Manager
}

func (h ActionHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"actions":  h.Dispatcher.Catalog.All(),
		"groups":   action.Groups,
		"inFlight": h.Dispatcher.InFlight(),
	})
}

func (h ActionHandler) DispatchByPath(w http.ResponseWriter, r *http.Request) {
	parts := pathTail(r, "/api/actions/")
	if len(parts) != 1 {
		WriteError(w, r, http.StatusNotFound, "unknown_action", "unknown action")
		return
	}
	var req dispatchReq
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}

	s := sessionFor(h.Sessions, w, r)
	out, err := dispatch(h.Dispatcher, s, r, parts[0], action.Request{
		Confirmed: req.Confirmed,
		Typed:     req.Typed,
		Form:      req.Form,
	})
	switch {
	case errors.Is(err, action.ErrUnknownAction):
		WriteError(w, r, http.StatusNotFound, "unknown_action", err.Error())
	case errors.Is(err, action.ErrInFlight):
		WriteError(w, r, http.StatusConflict, "in_flight", out.Toast.Message)
	default:
		writeJSON(w, out)
	}
}

// dispatch runs an action on behalf of a session: the toast lands in the
// session queue and a successful submit closes the action's modal.
func dispatch(d *action.Dispatcher, s *session.Session, r *http.Request, id string, req action.Request) (action.Outcome, error) {
	req.RequestID = RequestIDFrom(r.Context())
	req.SessionID = s.ID

	out, err := d.Dispatch(r.Context(), id, req)
	if errors.Is(err, action.ErrUnknownAction) {
		return out, err
	}
	out.Toast = s.Toasts.Push(out.Toast)
	if out.Outcome == action.OutcomeSuccess {
		if m, ok := s.Overlay().(session.ActionModal); ok && m.ActionID == id {
			s.Close()
		}
	}
	return out, err
}

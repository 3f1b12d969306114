package httpapi

import (
	"net/http"

	"commandcenter/internal/domain"
	"commandcenter/internal/mode"
)

type ModeHandler struct {
	Mode *mode.Holder
}

func (h ModeHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, modeResp{Mode: h.Mode.Current()})
}

func (h ModeHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req modeReq
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}
	m, err := domain.ParseSystemMode(req.Mode)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_mode", err.Error())
		return
	}
	got, err := h.Mode.Set(r.Context(), m)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "mode_persist_failed", err.Error())
		return
	}
	writeJSON(w, modeResp{Mode: got})
}

func (h ModeHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	got, err := h.Mode.Toggle(r.Context())
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "mode_persist_failed", err.Error())
		return
	}
	writeJSON(w, modeResp{Mode: got})
}

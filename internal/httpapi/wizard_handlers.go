package httpapi

import (
	"errors"
	"net/http"

	"commandcenter/internal/domain"
	"commandcenter/internal/session"
	"commandcenter/internal/wizard"
)

type WizardHandler struct {
	Sessions *session.Manager
}

func (h WizardHandler) Get(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(h.Sessions, w, r)
	writeJSON(w, s.Wizard.Snapshot())
}

func (h WizardHandler) SelectTool(w http.ResponseWriter, r *http.Request) {
	var req selectToolReq
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}
	s := sessionFor(h.Sessions, w, r)
	if err := s.Wizard.SelectTool(domain.Tool(req.Tool)); err != nil {
		writeWizardError(w, r, err)
		return
	}
	writeJSON(w, s.Wizard.Snapshot())
}

func (h WizardHandler) SetFilters(w http.ResponseWriter, r *http.Request) {
	var req filtersReq
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}
	s := sessionFor(h.Sessions, w, r)
	tool := domain.Tool(req.Tool)
	if tool == "" {
		tool = s.Wizard.Snapshot().Tool
	}
	if tool == "" {
		WriteError(w, r, http.StatusBadRequest, "no_tool", "no tool selected")
		return
	}
	if err := s.Wizard.SetFilters(tool, req.Filters); err != nil {
		writeWizardError(w, r, err)
		return
	}
	writeJSON(w, s.Wizard.Snapshot())
}

// Start blocks until the scrape finishes. A failed scrape is still a 200:
// the snapshot carries the message on the filters step.
func (h WizardHandler) Start(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(h.Sessions, w, r)
	snap, err := s.Wizard.StartScraping(r.Context())
	if err != nil {
		writeWizardError(w, r, err)
		return
	}
	writeJSON(w, snap)
}

func (h WizardHandler) Reset(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(h.Sessions, w, r)
	s.Wizard.Reset()
	writeJSON(w, s.Wizard.Snapshot())
}

func writeWizardError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, wizard.ErrIllegalTransition):
		WriteError(w, r, http.StatusConflict, "illegal_transition", err.Error())
	case errors.Is(err, wizard.ErrBusy):
		WriteError(w, r, http.StatusConflict, "busy", err.Error())
	default:
		WriteError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
	}
}

package httpapi

import (
	"database/sql"
	"net/http"

	"commandcenter/internal/store"
)

type RunsHandler struct {
	DB *sql.DB
}

func (h RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	runs, err := store.ListRuns(r.Context(), h.DB, queryInt(r, "limit", 50))
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	writeJSON(w, runs)
}

// LeadsByPath serves /api/runs/{id}/leads.
func (h RunsHandler) LeadsByPath(w http.ResponseWriter, r *http.Request) {
	parts := pathTail(r, "/api/runs/")
	if len(parts) != 2 || parts[1] != "leads" {
		WriteError(w, r, http.StatusNotFound, "not_found", "not found")
		return
	}
	leads, err := store.LeadsForRun(r.Context(), h.DB, parts[0])
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	writeJSON(w, leads)
}

type AuditHandler struct {
	DB *sql.DB
}

func (h AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	recs, err := store.ListActionRecords(r.Context(), h.DB, r.URL.Query().Get("action"), queryInt(r, "limit", 100))
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	writeJSON(w, recs)
}

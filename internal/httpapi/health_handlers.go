package httpapi

import (
	"net/http"
	"time"

	"commandcenter/internal/mode"
)

type HealthHandler struct {
	Mode *mode.Holder
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"ok":   true,
		"time": time.Now().UTC().Format(time.RFC3339),
	}
	if h.Mode != nil {
		resp["mode"] = h.Mode.Current()
	}
	writeJSON(w, resp)
}

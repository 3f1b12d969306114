package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"commandcenter/internal/secrets"
)

// NewMux returns the raw mux so main() can still attach /shutdown (needs srv+token).
func NewMux(d Deps) *http.ServeMux {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.SetAPIKey == nil {
		d.SetAPIKey = secrets.SetBackendAPIKey
	}
	if d.DeleteAPIKey == nil {
		d.DeleteAPIKey = secrets.DeleteBackendAPIKey
	}
	mux := http.NewServeMux()

	hh := HealthHandler{Mode: d.Mode}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	// Mode
	mh := ModeHandler{Mode: d.Mode}
	mux.HandleFunc("/api/mode", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: mh.Get,
		http.MethodPut: mh.Put,
	}))
	mux.HandleFunc("/api/mode/toggle", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: mh.Toggle,
	}))

	// Polled queries
	qh := QueryHandler{Poller: d.Poller, Mode: d.Mode}
	mux.HandleFunc("/api/queries", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: qh.List,
	}))
	mux.HandleFunc("/api/queries/refresh", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: qh.Refresh,
	}))
	mux.HandleFunc("/api/queries/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: qh.GetByPath, // expects /api/queries/{key}
	}))

	// Actions
	ah := ActionHandler{Dispatcher: d.Dispatcher, Sessions: d.Sessions}
	mux.HandleFunc("/api/actions", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ah.List,
	}))
	mux.HandleFunc("/api/actions/", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ah.DispatchByPath, // expects /api/actions/{id}
	}))

	// Lead scraper wizard
	wh := WizardHandler{Sessions: d.Sessions}
	mux.HandleFunc("/api/wizard", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: wh.Get,
	}))
	mux.HandleFunc("/api/wizard/tool", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: wh.SelectTool,
	}))
	mux.HandleFunc("/api/wizard/filters", methodMux(map[string]http.HandlerFunc{
		http.MethodPut: wh.SetFilters,
	}))
	mux.HandleFunc("/api/wizard/start", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: wh.Start,
	}))
	mux.HandleFunc("/api/wizard/reset", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: wh.Reset,
	}))

	// Session overlay + toasts
	oh := OverlayHandler{Catalog: d.Dispatcher.Catalog, Sessions: d.Sessions}
	mux.HandleFunc("/api/overlay", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:    oh.Get,
		http.MethodDelete: oh.Close,
	}))
	mux.HandleFunc("/api/overlay/", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: oh.OpenByPath, // expects /api/overlay/{actionID}
	}))
	th := ToastHandler{Sessions: d.Sessions}
	mux.HandleFunc("/api/toasts", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: th.List,
	}))
	mux.HandleFunc("/api/toasts/", methodMux(map[string]http.HandlerFunc{
		http.MethodDelete: th.DismissByPath,
	}))

	// History
	rh := RunsHandler{DB: d.DB}
	mux.HandleFunc("/api/runs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.List,
	}))
	mux.HandleFunc("/api/runs/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.LeadsByPath, // expects /api/runs/{id}/leads
	}))
	audh := AuditHandler{DB: d.DB}
	mux.HandleFunc("/api/audit", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: audh.List,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
		OnReload:    d.OnConfigReload,
		Hub:         d.Hub,
		Logger:      d.Logger,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Secrets (use cfgVal, NOT a snapshot cfg)
	sh := SecretsHandler{CfgVal: d.CfgVal, Set: d.SetAPIKey, Delete: d.DeleteAPIKey}
	mux.HandleFunc("/api/secrets/backend", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.SetBackendKey,
	}))

	dbh := DBHandler{DB: d.DB}
	mux.HandleFunc("/db/checkpoint", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: dbh.Checkpoint,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	// HTML dashboard
	uh := UIHandler{
		Mode:       d.Mode,
		Poller:     d.Poller,
		Dispatcher: d.Dispatcher,
		Sessions:   d.Sessions,
		Logger:     d.Logger.Named("ui"),
	}
	mux.HandleFunc("/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: uh.Dashboard,
	}))
	mux.HandleFunc("/wizard", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: uh.Wizard,
	}))
	mux.HandleFunc("/ui/mode/toggle", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: uh.ToggleMode,
	}))
	mux.HandleFunc("/ui/queries/refresh", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: uh.RefreshQueries,
	}))
	mux.HandleFunc("/ui/actions/", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: uh.DispatchByPath,
	}))
	mux.HandleFunc("/ui/overlay/", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: uh.OverlayByPath,
	}))
	mux.HandleFunc("/ui/toasts/", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: uh.DismissToastByPath,
	}))
	mux.HandleFunc("/ui/wizard/tool", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: uh.WizardTool,
	}))
	mux.HandleFunc("/ui/wizard/start", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: uh.WizardStart,
	}))
	mux.HandleFunc("/ui/wizard/reset", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: uh.WizardReset,
	}))

	return mux
}

// Handler wraps the mux in the standard middleware chain.
func Handler(mux http.Handler, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Chain(mux, RequestID, Recover(logger), AccessLog(logger), Cors)
}

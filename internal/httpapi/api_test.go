package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commandcenter/internal/action"
	"commandcenter/internal/backend"
	"commandcenter/internal/config"
	"commandcenter/internal/domain"
	"commandcenter/internal/events"
	"commandcenter/internal/mode"
	"commandcenter/internal/poll"
	"commandcenter/internal/scrape"
	"commandcenter/internal/session"
	"commandcenter/internal/store"
	"commandcenter/internal/wizard"
)

// fakeBackend stands in for the CRM/automation service.
type fakeBackend struct {
	mu    sync.Mutex
	hits  map[string]int
	modes []string
}

func (f *fakeBackend) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.hits[r.URL.Path]++
	if r.Method == http.MethodGet {
		f.modes = append(f.modes, r.Header.Get(backend.HeaderSystemMode))
	}
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/api/scraping/apollo":
		var body struct {
			Filters map[string]string `json:"filters"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Filters["keywords"] == "fail" {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, `{"success":false,"error":"Apollo quota exceeded"}`)
			return
		}
		_, _ = io.WriteString(w, `{"success":true,"leads":[{"fullName":"Jane Doe","email":"jane@x.com","phone":"555","company":"Acme","title":"CEO","location":"NY"}],"count":1}`)
	case "/api/dashboard-metrics":
		_, _ = io.WriteString(w, `{"leads":12,"calls":3}`)
	case "/api/calls/active":
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":"dialer offline"}`)
	default:
		_, _ = io.WriteString(w, `{"success":true,"message":"ok"}`)
	}
}

type env struct {
	srv     *httptest.Server
	client  *http.Client
	backend *fakeBackend
	mode    *mode.Holder
	deps    Deps
	keys    map[string]string
}

func newEnv(t *testing.T) *env {
	t.Helper()

	fb := &fakeBackend{hits: map[string]int{}}
	bsrv := httptest.NewServer(fb)
	t.Cleanup(bsrv.Close)

	db, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	hub := events.NewHub()
	holder, err := mode.Load(context.Background(), db.Pool, hub, nil, domain.ModeTest)
	require.NoError(t, err)

	client := backend.New(backend.Options{BaseURL: bsrv.URL, Timeout: 5 * time.Second})

	reg, err := poll.NewRegistry([]config.QuerySpec{
		{Key: "dashboard-metrics", Title: "Metrics", Path: "/api/dashboard-metrics", IntervalSeconds: 30},
		{Key: "active-calls", Title: "Active calls", Path: "/api/calls/active", IntervalSeconds: 10},
	})
	require.NoError(t, err)
	poller := poll.New(reg, client, holder.Current, hub, nil)

	disp := action.NewDispatcher(action.DefaultCatalog(), client, holder.Current, db.Pool, hub, nil)

	scraper := scrape.Recorder{
		Next: scrape.BackendScraper{Backend: client},
		DB:   db.Pool,
		Hub:  hub,
		Mode: holder.Current,
	}
	sessions := session.NewManager(time.Hour, func() *wizard.Wizard { return wizard.New(scraper) }, nil)

	cfgPath := filepath.Join(t.TempDir(), "config.yml")
	cfg := config.Default()
	cfg.Backend.BaseURL = bsrv.URL
	require.NoError(t, config.SaveAtomic(cfgPath, cfg))
	var cfgVal atomic.Value
	cfgVal.Store(cfg)

	e := &env{backend: fb, mode: holder, keys: map[string]string{}}
	e.deps = Deps{
		DB:          db.Pool,
		Hub:         hub,
		CfgVal:      &cfgVal,
		UserCfgPath: cfgPath,
		LoadCfg:     func() (config.Config, error) { return config.Load(cfgPath) },
		Mode:        holder,
		Poller:      poller,
		Dispatcher:  disp,
		Sessions:    sessions,
		SetAPIKey: func(account, key string) error {
			e.keys[account] = key
			return nil
		},
		DeleteAPIKey: func(account string) error {
			delete(e.keys, account)
			return nil
		},
	}
	e.srv = httptest.NewServer(Handler(NewMux(e.deps), nil))
	t.Cleanup(e.srv.Close)

	jar, _ := cookiejar.New(nil)
	e.client = &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return e
}

func (e *env) do(t *testing.T, method, path string, body string) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := e.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func (e *env) post(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	res, err := e.client.PostForm(e.srv.URL+path, form)
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func decode[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))
	return v
}

func TestHealthAndRequestID(t *testing.T) {
	e := newEnv(t)
	res := e.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotEmpty(t, res.Header.Get("X-Request-ID"))
	body := decode[map[string]any](t, res)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "test", body["mode"])
}

func TestMethodNotAllowedUsesEnvelope(t *testing.T) {
	e := newEnv(t)
	res := e.do(t, http.MethodDelete, "/api/mode", "")
	require.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
	body := decode[APIError](t, res)
	assert.Equal(t, "method_not_allowed", body.Error.Code)
	assert.NotEmpty(t, body.Error.RequestID)
}

func TestModeEndpoints(t *testing.T) {
	e := newEnv(t)

	res := e.do(t, http.MethodPut, "/api/mode", `{"mode":"staging"}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = e.do(t, http.MethodPut, "/api/mode", `{"mode":"LIVE"}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, domain.ModeLive, decode[modeResp](t, res).Mode)

	res = e.do(t, http.MethodPost, "/api/mode/toggle", "")
	assert.Equal(t, domain.ModeTest, decode[modeResp](t, res).Mode)
	assert.Equal(t, domain.ModeTest, e.mode.Current())
}

func TestQueriesKeepFailuresPerPanel(t *testing.T) {
	e := newEnv(t)

	res := e.do(t, http.MethodPost, "/api/queries/refresh", "")
	body := decode[map[string]any](t, res)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, float64(1), body["failed"])

	res = e.do(t, http.MethodGet, "/api/queries/dashboard-metrics", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	v := decode[poll.View](t, res)
	assert.JSONEq(t, `{"leads":12,"calls":3}`, string(v.Entry.Data))

	res = e.do(t, http.MethodGet, "/api/queries/active-calls", "")
	v = decode[poll.View](t, res)
	assert.Equal(t, "dialer offline", v.Entry.LastError)

	res = e.do(t, http.MethodGet, "/api/queries/nope", "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	e.backend.mu.Lock()
	for _, m := range e.backend.modes {
		assert.Equal(t, "test", m)
	}
	e.backend.mu.Unlock()
}

func TestPurgeBlockedInTestMode(t *testing.T) {
	e := newEnv(t)

	res := e.do(t, http.MethodPost, "/api/actions/purge-knowledge-test-data", `{"typed":"delete"}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	out := decode[action.Outcome](t, res)
	assert.Equal(t, action.OutcomeBlocked, out.Outcome)
	assert.True(t, out.Toast.Blocking)
	assert.Equal(t, 0, e.backend.count("/api/knowledge/purge-test-data"))

	res = e.do(t, http.MethodGet, "/api/toasts", "")
	toasts := decode[[]session.Toast](t, res)
	require.Len(t, toasts, 1)
	assert.Equal(t, out.Toast.ID, toasts[0].ID)

	res = e.do(t, http.MethodDelete, "/api/toasts/"+toasts[0].ID, "")
	assert.Equal(t, http.StatusNoContent, res.StatusCode)

	res = e.do(t, http.MethodGet, "/api/audit?action=purge-knowledge-test-data", "")
	recs := decode[[]store.ActionRecord](t, res)
	require.Len(t, recs, 1)
	assert.Equal(t, action.OutcomeBlocked, recs[0].Outcome)
}

func TestDispatchClosesOverlay(t *testing.T) {
	e := newEnv(t)

	res := e.do(t, http.MethodPost, "/api/overlay/support-ticket", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, session.OverlayView{Kind: "action", ActionID: "support-ticket"}, decode[session.OverlayView](t, res))

	res = e.do(t, http.MethodPost, "/api/actions/support-ticket", `{"form":{"subject":"Help","description":"Broken"}}`)
	out := decode[action.Outcome](t, res)
	assert.Equal(t, action.OutcomeSuccess, out.Outcome)
	assert.Equal(t, 1, e.backend.count("/api/support/ticket"))

	res = e.do(t, http.MethodGet, "/api/overlay", "")
	assert.Equal(t, session.OverlayView{Kind: "none"}, decode[session.OverlayView](t, res))

	res = e.do(t, http.MethodPost, "/api/actions/nope", "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestWizardFlowOverAPI(t *testing.T) {
	e := newEnv(t)

	res := e.do(t, http.MethodPost, "/api/wizard/start", "")
	assert.Equal(t, http.StatusConflict, res.StatusCode)

	res = e.do(t, http.MethodPost, "/api/wizard/tool", `{"tool":"apollo"}`)
	require.Equal(t, http.StatusOK, res.StatusCode)

	res = e.do(t, http.MethodPut, "/api/wizard/filters", `{"filters":{"personTitles":"ceo"}}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	snap := decode[wizard.Snapshot](t, res)
	assert.Equal(t, "ceo", snap.Filters[domain.ToolApollo]["personTitles"])

	res = e.do(t, http.MethodPost, "/api/wizard/start", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	snap = decode[wizard.Snapshot](t, res)
	assert.Equal(t, wizard.StepResults, snap.Step)
	require.NotNil(t, snap.Result)
	require.Len(t, snap.Result.Leads, 1)
	assert.Equal(t, "Jane Doe", snap.Result.Leads[0].FullName)

	res = e.do(t, http.MethodGet, "/api/runs", "")
	runs := decode[[]store.Run](t, res)
	require.Len(t, runs, 1)
	assert.Equal(t, "apollo", runs[0].Tool)

	res = e.do(t, http.MethodGet, "/api/runs/"+runs[0].ID+"/leads", "")
	leads := decode[[]domain.Lead](t, res)
	require.Len(t, leads, 1)
	assert.Equal(t, "CEO at Acme", leads[0].Headline())

	res = e.do(t, http.MethodPost, "/api/wizard/reset", "")
	snap = decode[wizard.Snapshot](t, res)
	assert.Equal(t, wizard.StepToolSelection, snap.Step)
	assert.Equal(t, "ceo", snap.Filters[domain.ToolApollo]["personTitles"])
}

func TestWizardScrapeFailureStaysOnFilters(t *testing.T) {
	e := newEnv(t)
	e.do(t, http.MethodPost, "/api/wizard/tool", `{"tool":"apollo"}`)
	e.do(t, http.MethodPut, "/api/wizard/filters", `{"tool":"apollo","filters":{"keywords":"fail"}}`)

	res := e.do(t, http.MethodPost, "/api/wizard/start", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	snap := decode[wizard.Snapshot](t, res)
	assert.Equal(t, wizard.StepFilters, snap.Step)
	assert.Equal(t, "Apollo quota exceeded", snap.Error)
}

func TestDashboardFormFlow(t *testing.T) {
	e := newEnv(t)

	res := e.post(t, "/ui/wizard/tool", url.Values{"tool": {"apollo"}})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/", res.Header.Get("Location"))

	res = e.post(t, "/ui/wizard/start", url.Values{
		"tool":         {"apollo"},
		"personTitles": {"ceo"},
		"emailStatus":  {"verified"},
	})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)

	res = e.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Type"), "text/html")
	doc, err := goquery.NewDocumentFromReader(res.Body)
	require.NoError(t, err)

	cards := doc.Find(".lead-card")
	require.Equal(t, 1, cards.Length())
	assert.Contains(t, cards.Text(), "Jane Doe")
	assert.Contains(t, cards.Text(), "CEO at Acme")
	assert.Contains(t, doc.Find(".toast-success").Text(), "Found 1 leads")
	assert.Equal(t, 2, doc.Find(".panel").Length())
}

func TestDashboardActionModalAndGuards(t *testing.T) {
	e := newEnv(t)

	res := e.post(t, "/ui/overlay/voice-generate", nil)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)

	res = e.do(t, http.MethodGet, "/", "")
	doc, err := goquery.NewDocumentFromReader(res.Body)
	require.NoError(t, err)
	assert.Equal(t, "voice-generate", doc.Find(".overlay").AttrOr("data-overlay", ""))

	e.post(t, "/ui/actions/voice-generate", url.Values{"text": {"Hello there"}})
	assert.Equal(t, 1, e.backend.count("/api/voice/generate"))

	e.post(t, "/ui/actions/emergency-stop", url.Values{})
	assert.Equal(t, 0, e.backend.count("/api/system/emergency-stop"))
	e.post(t, "/ui/actions/emergency-stop", url.Values{"confirmed": {"true"}})
	assert.Equal(t, 1, e.backend.count("/api/system/emergency-stop"))

	res = e.do(t, http.MethodGet, "/", "")
	doc, err = goquery.NewDocumentFromReader(res.Body)
	require.NoError(t, err)
	assert.Equal(t, 0, doc.Find(".overlay").Length())
	assert.Equal(t, 3, doc.Find(".toast").Length())
}

func TestDashboardModeToggle(t *testing.T) {
	e := newEnv(t)
	req, _ := http.NewRequest(http.MethodPost, e.srv.URL+"/ui/mode/toggle", nil)
	req.Header.Set("Referer", e.srv.URL+"/wizard")
	res, err := e.client.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/wizard", res.Header.Get("Location"))
	assert.Equal(t, domain.ModeLive, e.mode.Current())
}

func TestConfigRoundTrip(t *testing.T) {
	e := newEnv(t)

	var reloaded atomic.Bool
	e.deps.OnConfigReload = func(config.Config) { reloaded.Store(true) }
	srv := httptest.NewServer(Handler(NewMux(e.deps), nil))
	defer srv.Close()

	res, err := http.Get(srv.URL + "/config")
	require.NoError(t, err)
	cfg := decode[config.Config](t, res)
	res.Body.Close()

	cfg.Backend.RatePerSecond = 2
	b, _ := json.Marshal(cfg)
	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/config", strings.NewReader(string(b)))
	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, reloaded.Load())
	assert.Equal(t, float64(2), e.deps.CfgVal.Load().(config.Config).Backend.RatePerSecond)

	cfg.Polling.Queries = append(cfg.Polling.Queries, cfg.Polling.Queries[0])
	b, _ = json.Marshal(cfg)
	req, _ = http.NewRequest(http.MethodPut, srv.URL+"/config", strings.NewReader(string(b)))
	res2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res2.StatusCode)
	vr := decode[config.Validation](t, res2)
	assert.NotEmpty(t, vr.Errors)
}

func TestSecretsEndpoint(t *testing.T) {
	e := newEnv(t)
	account := config.Default().Backend.KeyringAccount

	res := e.do(t, http.MethodPost, "/api/secrets/backend", `{"apiKey":" sk-123 "}`)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Equal(t, "sk-123", e.keys[account])

	res = e.do(t, http.MethodPost, "/api/secrets/backend", `{"apiKey":""}`)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	_, ok := e.keys[account]
	assert.False(t, ok)
}

func TestEventsStreamPing(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, e.srv.URL+"/events", nil)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))

	sc := bufio.NewScanner(res.Body)
	var data string
	for sc.Scan() {
		if line := sc.Text(); strings.HasPrefix(line, "data: ") {
			data = strings.TrimPrefix(line, "data: ")
			break
		}
	}
	var evt events.Event
	require.NoError(t, json.Unmarshal([]byte(data), &evt))
	assert.Equal(t, events.TypePing, evt.Type)
}

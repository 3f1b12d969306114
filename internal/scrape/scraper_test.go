package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commandcenter/internal/backend"
	"commandcenter/internal/config"
	"commandcenter/internal/domain"
	"commandcenter/internal/events"
	"commandcenter/internal/rank"
	"commandcenter/internal/store"
)

func fakeBackend(t *testing.T, h http.HandlerFunc) *backend.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return backend.New(backend.Options{BaseURL: srv.URL})
}

func TestBackendScraperApollo(t *testing.T) {
	var gotPath string
	var gotBody map[string]map[string]string
	c := fakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = io.WriteString(w, `{"success":true,"leads":[{"fullName":"Jane Doe","email":"jane@x.com","phone":"555","company":"Acme","title":"CEO","location":"NY"}],"count":1}`)
	})

	s := BackendScraper{Backend: c, Scorer: rank.YAMLScorer{Cfg: config.Default()}}
	filters := map[string]string{"personTitles": "ceo", "emailStatus": "verified"}
	res, err := s.Scrape(context.Background(), domain.ToolApollo, filters)
	require.NoError(t, err)

	assert.Equal(t, "/api/scraping/apollo", gotPath)
	assert.Equal(t, filters, gotBody["filters"])

	require.True(t, res.Success)
	require.Len(t, res.Leads, 1)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, "Jane Doe", res.Leads[0].FullName)
	assert.Equal(t, "CEO at Acme", res.Leads[0].Headline())
	require.NotNil(t, res.Leads[0].Score)
	assert.Equal(t, 40, *res.Leads[0].Score)
	assert.Equal(t, filters, res.Filters, "filter snapshot falls back to the request")
}

func TestBackendScraperCountFallsBackToLeads(t *testing.T) {
	c := fakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"leads":[{"fullName":"A","score":7},{"fullName":"B"}]}`)
	})
	res, err := BackendScraper{Backend: c}.Scrape(context.Background(), domain.ToolApify, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, 7, *res.Leads[0].Score)
	assert.Nil(t, res.Leads[1].Score)
}

func TestBackendScraperFailureMessage(t *testing.T) {
	c := fakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":false,"message":"X"}`)
	})
	_, err := BackendScraper{Backend: c}.Scrape(context.Background(), domain.ToolPhantombuster, map[string]string{})
	require.Error(t, err)
	assert.Equal(t, "X", err.Error())
}

func TestBackendScraperRequiresExplicitSuccess(t *testing.T) {
	c := fakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"leads":[],"count":0}`)
	})
	res, err := BackendScraper{Backend: c}.Scrape(context.Background(), domain.ToolApollo, nil)
	require.Error(t, err)
	var f *backend.Failure
	require.True(t, errors.As(err, &f))
	assert.Equal(t, http.StatusOK, f.Status)
	assert.Empty(t, f.Message)
	assert.False(t, res.Success)
}

func TestBackendScraperRejectsUnknownTool(t *testing.T) {
	_, err := BackendScraper{}.Scrape(context.Background(), domain.Tool("linkedin"), nil)
	assert.Error(t, err)
}

func TestNormalizeLead(t *testing.T) {
	l := NormalizeLead(domain.Lead{
		FullName: "  Jane  Doe ",
		Email:    " Jane@X.com",
		Location: "Austin, TX, tx ,",
	}, nil)
	assert.Equal(t, "Jane Doe", l.FullName)
	assert.Equal(t, "jane@x.com", l.Email)
	assert.Equal(t, "Austin, TX", l.Location)
	assert.Nil(t, l.Score)
}

type stubScraper struct {
	res domain.ScrapingResult
	err error
}

func (s stubScraper) Scrape(context.Context, domain.Tool, map[string]string) (domain.ScrapingResult, error) {
	return s.res, s.err
}

func TestRecorderPersistsRuns(t *testing.T) {
	db, err := store.Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	hub := events.NewHub()
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	rec := Recorder{
		Next: stubScraper{res: domain.ScrapingResult{Success: true, Count: 1, Leads: []domain.Lead{{FullName: "Jane Doe"}}}},
		DB:   db.Pool,
		Hub:  hub,
		Mode: func() domain.SystemMode { return domain.ModeLive },
	}
	_, err = rec.Scrape(context.Background(), domain.ToolApollo, map[string]string{"keywords": "saas"})
	require.NoError(t, err)

	rec.Next = stubScraper{err: &backend.Failure{Message: "quota exceeded"}}
	_, err = rec.Scrape(context.Background(), domain.ToolApify, nil)
	var f *backend.Failure
	require.True(t, errors.As(err, &f))

	runs, err := store.ListRuns(context.Background(), db.Pool, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	byTool := map[string]store.Run{}
	for _, r := range runs {
		byTool[r.Tool] = r
	}
	assert.True(t, byTool["apollo"].Success)
	assert.Equal(t, "live", byTool["apollo"].Mode)
	assert.Equal(t, "quota exceeded", byTool["apify"].Error)

	leads, err := store.LeadsForRun(context.Background(), db.Pool, byTool["apollo"].ID)
	require.NoError(t, err)
	require.Len(t, leads, 1)

	assert.Len(t, sub, 2)
}

type capturingScraper struct {
	got map[string]string
}

func (c *capturingScraper) Scrape(_ context.Context, _ domain.Tool, filters map[string]string) (domain.ScrapingResult, error) {
	c.got = filters
	return domain.ScrapingResult{Success: true}, nil
}

func TestRecorderDoesNotStoreSessionCookie(t *testing.T) {
	db, err := store.Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	next := &capturingScraper{}
	rec := Recorder{Next: next, DB: db.Pool, Hub: events.NewHub()}
	filters := map[string]string{"searchUrl": "https://www.linkedin.com/search/results/people/", "sessionCookie": "AQEDAR-secret"}
	_, err = rec.Scrape(context.Background(), domain.ToolPhantombuster, filters)
	require.NoError(t, err)

	assert.Equal(t, "AQEDAR-secret", next.got["sessionCookie"], "the backend still receives the cookie")

	runs, err := store.ListRuns(context.Background(), db.Pool, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.NotContains(t, runs[0].Filters, "sessionCookie")
	assert.Equal(t, filters["searchUrl"], runs[0].Filters["searchUrl"])
}

func TestBackendScraperResultOmitsSessionCookie(t *testing.T) {
	c := fakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"leads":[]}`)
	})
	res, err := BackendScraper{Backend: c}.Scrape(context.Background(), domain.ToolPhantombuster,
		map[string]string{"numberOfProfiles": "50", "sessionCookie": "AQEDAR-secret"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"numberOfProfiles": "50"}, res.Filters)
}

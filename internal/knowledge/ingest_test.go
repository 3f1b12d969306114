package knowledge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!doctype html>
<html><head><title> Refund   Policy </title><style>body{color:red}</style></head>
<body>
<nav><a href="/">Home</a> <a href="/pricing">Pricing</a></nav>
<main>
  <h1>Refunds</h1>
  <p>Customers may request a refund within&nbsp;30 days.</p>
  <ul><li>Annual plans are prorated.</li><li>Monthly plans are not refunded.</li></ul>
  <script>track("refund")</script>
</main>
<footer>© Acme</footer>
</body></html>`

func TestExtractDropsChrome(t *testing.T) {
	in := NewIngestor(nil)
	p, err := in.Extract(strings.NewReader(samplePage), "https://acme.example/refunds")
	require.NoError(t, err)

	assert.Equal(t, "Refund Policy", p.Title)
	assert.Equal(t, "https://acme.example/refunds", p.Source)
	assert.Equal(t, strings.Join([]string{
		"Refunds",
		"Customers may request a refund within 30 days.",
		"Annual plans are prorated.",
		"Monthly plans are not refunded.",
	}, "\n"), p.Content)
	assert.NotContains(t, p.Content, "Pricing")
	assert.NotContains(t, p.Content, "track")
	assert.NotContains(t, p.Content, "Acme")
}

func TestExtractEmptyPage(t *testing.T) {
	in := NewIngestor(nil)
	_, err := in.Extract(strings.NewReader(`<html><body><script>x()</script></body></html>`), "s")
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestExtractTruncates(t *testing.T) {
	in := NewIngestor(nil)
	in.MaxContent = 10
	p, err := in.Extract(strings.NewReader(`<p>héllo wörld and more</p>`), "s")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(p.Content), 10)
	assert.Equal(t, "s", p.Title)
}

func TestFromURLAndPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	in := NewIngestor(nil)
	in.HTTP = srv.Client()

	payload, err := in.Payload(context.Background(), map[string]string{"url": srv.URL + "/refunds"})
	require.NoError(t, err)
	assert.Equal(t, "Refund Policy", payload["title"])
	assert.Equal(t, srv.URL+"/refunds", payload["source"])
	assert.Contains(t, payload["content"], "prorated")

	payload, err = in.Payload(context.Background(), map[string]string{"url": srv.URL + "/refunds", "title": "Refunds FAQ"})
	require.NoError(t, err)
	assert.Equal(t, "Refunds FAQ", payload["title"])

	_, err = in.FromURL(context.Background(), srv.URL+"/missing")
	assert.Error(t, err)

	_, err = in.FromURL(context.Background(), "ftp://example.com/x")
	assert.Error(t, err)
}

package knowledge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"commandcenter/internal/backend"
)

// Page is the readable part of a fetched web page.
type Page struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Source  string `json:"source"`
}

const (
	defaultMaxBytes   = 2 << 20
	defaultMaxContent = 100_000
)

var ErrNoContent = errors.New("page has no readable text")

// Ingestor turns a URL into a knowledge upload payload.
type Ingestor struct {
	HTTP       *http.Client
	Limiter    *backend.HostLimiter
	Logger     *zap.Logger
	MaxBytes   int64
	MaxContent int
}

func NewIngestor(logger *zap.Logger) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{
		HTTP:    &http.Client{Timeout: 15 * time.Second},
		Limiter: backend.NewHostLimiter(1, 2),
		Logger:  logger,
	}
}

// FromURL fetches rawURL and extracts its title and text.
func (in *Ingestor) FromURL(ctx context.Context, rawURL string) (Page, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Page{}, fmt.Errorf("invalid page URL %q", rawURL)
	}
	if err := in.Limiter.WaitURL(ctx, u.String()); err != nil {
		return Page{}, err
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	req.Header.Set("User-Agent", "CommandCenter/1.0 (+local)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	hc := in.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	res, err := hc.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("fetch page: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return Page{}, fmt.Errorf("fetch page: status %d", res.StatusCode)
	}

	max := in.MaxBytes
	if max <= 0 {
		max = defaultMaxBytes
	}
	p, err := in.Extract(io.LimitReader(res.Body, max), u.String())
	if err != nil {
		return Page{}, err
	}
	in.logger().Info("page extracted",
		zap.String("source", p.Source),
		zap.String("title", p.Title),
		zap.Int("chars", len(p.Content)),
	)
	return p, nil
}

// Extract reads an HTML document. Scripts, styles and navigation chrome are
// dropped; block elements become separate lines.
func (in *Ingestor) Extract(r io.Reader, source string) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Page{}, fmt.Errorf("parse page: %w", err)
	}
	doc.Find("script, style, noscript, nav, header, footer, iframe, svg").Remove()

	title := cleanText(doc.Find("title").First().Text())
	if title == "" {
		title = cleanText(doc.Find("h1").First().Text())
	}

	root := doc.Find("main, article").First()
	if root.Length() == 0 {
		root = doc.Find("body")
	}

	var lines []string
	root.Find("h1, h2, h3, h4, p, li, pre, blockquote").Each(func(_ int, s *goquery.Selection) {
		// nested blocks are visited on their own
		if s.Find("p, li").Length() > 0 {
			return
		}
		if t := cleanText(s.Text()); t != "" {
			lines = append(lines, t)
		}
	})
	if len(lines) == 0 {
		if t := cleanText(root.Text()); t != "" {
			lines = append(lines, t)
		}
	}
	if len(lines) == 0 {
		return Page{}, ErrNoContent
	}

	if title == "" {
		title = source
	}
	content := strings.Join(lines, "\n")
	limit := in.MaxContent
	if limit <= 0 {
		limit = defaultMaxContent
	}
	if len(content) > limit {
		content = truncate(content, limit)
	}
	return Page{Title: title, Content: content, Source: source}, nil
}

// Payload builds the knowledge upload body from an action form with a "url"
// field.
func (in *Ingestor) Payload(ctx context.Context, form map[string]string) (map[string]any, error) {
	p, err := in.FromURL(ctx, form["url"])
	if err != nil {
		in.logger().Warn("page import failed", zap.String("url", form["url"]), zap.Error(err))
		return nil, fmt.Errorf("Could not import page: %v", err)
	}
	out := map[string]any{"title": p.Title, "content": p.Content, "source": p.Source}
	if t := strings.TrimSpace(form["title"]); t != "" {
		out["title"] = t
	}
	return out, nil
}

func (in *Ingestor) logger() *zap.Logger {
	if in.Logger == nil {
		return zap.NewNop()
	}
	return in.Logger
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts s to at most n bytes on a rune boundary.
func truncate(s string, n int) string {
	for n > 0 && n < len(s) && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

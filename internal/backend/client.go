package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"commandcenter/internal/domain"
)

const (
	HeaderSystemMode = "x-system-mode"
	maxBodyBytes     = 4 << 20
)

// Client talks JSON over HTTP to the CRM/automation backend.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Limiter *HostLimiter
	APIKey  func() string
	Logger  *zap.Logger
}

type Options struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	APIKey        func() string
	Logger        *zap.Logger
}

func New(o Options) *Client {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	var lim *HostLimiter
	if o.RatePerSecond > 0 {
		burst := o.Burst
		if burst <= 0 {
			burst = 1
		}
		lim = NewHostLimiter(o.RatePerSecond, burst)
	}
	return &Client{
		BaseURL: strings.TrimRight(o.BaseURL, "/"),
		HTTP:    &http.Client{Timeout: o.Timeout},
		Limiter: lim,
		APIKey:  o.APIKey,
		Logger:  o.Logger,
	}
}

// Result is the decoded reply of a write call.
type Result struct {
	Status  int             `json:"status"`
	OK      bool            `json:"ok"`
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
	Body    json.RawMessage `json:"body,omitempty"`
}

func (r Result) Succeeded() bool { return r.OK && r.Success }

type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

// GetJSON issues a read for path, tagged with the system mode header.
func (c *Client) GetJSON(ctx context.Context, path string, mode domain.SystemMode) (json.RawMessage, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(HeaderSystemMode, string(mode.Normalize()))

	status, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		env := decodeEnvelope(body)
		return nil, &Failure{Status: status, Message: env.text()}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(body) {
		return nil, &Failure{Status: status, Message: "backend returned invalid JSON for " + path}
	}
	return json.RawMessage(body), nil
}

// PostJSON sends payload to path. A nil error means the call succeeded; any
// failure is returned as *Failure alongside whatever Result was decoded.
func (c *Client) PostJSON(ctx context.Context, path string, payload any) (Result, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Result{}, fmt.Errorf("encode payload: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(b))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	status, body, err := c.do(req)
	if err != nil {
		return Result{}, err
	}

	env := decodeEnvelope(body)
	res := Result{
		Status:  status,
		OK:      status >= 200 && status <= 299,
		Message: env.Message,
		Error:   env.errorText(),
	}
	res.Success = res.OK && (env.Success == nil || *env.Success)
	if json.Valid(body) {
		res.Body = json.RawMessage(body)
	}

	if !res.Succeeded() {
		return res, &Failure{Status: status, Message: env.text()}
	}
	return res, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "CommandCenter/1.0 (+local)")
	if c.APIKey != nil {
		if key := c.APIKey(); key != "" {
			req.Header.Set("Authorization", "Bearer "+key)
		}
	}
	return req, nil
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	if err := c.Limiter.WaitURL(req.Context(), req.URL.String()); err != nil {
		return 0, nil, &Failure{Message: "Request cancelled", Err: err}
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.Logger.Warn("backend request failed",
			zap.String("method", req.Method), zap.String("path", req.URL.Path), zap.Error(err))
		return 0, nil, &Failure{Message: "Network error: could not reach backend", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, &Failure{Status: resp.StatusCode, Message: "Network error: truncated response", Err: err}
	}

	c.Logger.Debug("backend",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Int64("dur_ms", time.Since(start).Milliseconds()),
	)
	return resp.StatusCode, body, nil
}

func decodeEnvelope(body []byte) envelope {
	var env envelope
	_ = json.Unmarshal(body, &env)
	return env
}

// errorText flattens "error" which backends send as a string or an object
// with a message field.
func (e envelope) errorText() string {
	if len(e.Error) == 0 || string(e.Error) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Error, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(e.Error, &obj); err == nil {
		return obj.Message
	}
	return ""
}

// text is the user-facing failure text: error first, then message.
func (e envelope) text() string {
	if s := strings.TrimSpace(e.errorText()); s != "" {
		return s
	}
	return strings.TrimSpace(e.Message)
}

package config

import (
	"fmt"
	"net/url"
	"strings"

	"commandcenter/internal/domain"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy of cfg together with the
// problems found in it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Polling.Queries = append([]QuerySpec(nil), cfg.Polling.Queries...)
	out.Scoring.TitleRules = append([]Rule(nil), cfg.Scoring.TitleRules...)
	out.Scoring.Penalties = append([]Penalty(nil), cfg.Scoring.Penalties...)

	out.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(out.Backend.BaseURL), "/")
	out.App.DefaultMode = strings.ToLower(strings.TrimSpace(out.App.DefaultMode))

	// app
	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}
	if out.App.DefaultMode == "" {
		out.App.DefaultMode = string(domain.ModeTest)
	}
	if _, err := domain.ParseSystemMode(out.App.DefaultMode); err != nil {
		res.addErr("app.default_mode: %v", err)
	}
	if out.App.DefaultMode == string(domain.ModeLive) {
		res.addWarn("app.default_mode is live; destructive actions are armed on start-up.")
	}
	if out.App.SessionTTLMinutes <= 0 {
		res.addErr("app.session_ttl_minutes must be > 0")
	}

	// backend
	if out.Backend.BaseURL == "" {
		res.addErr("backend.base_url is required")
	} else if u, err := url.Parse(out.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		res.addErr("backend.base_url must be an absolute URL, got %q", out.Backend.BaseURL)
	}
	if out.Backend.TimeoutSeconds <= 0 {
		res.addErr("backend.timeout_seconds must be > 0")
	}
	if out.Backend.RatePerSecond <= 0 {
		res.addErr("backend.rate_per_second must be > 0")
	}
	if out.Backend.Burst <= 0 {
		res.addErr("backend.burst must be > 0")
	}

	// polling
	if len(out.Polling.Queries) == 0 {
		res.addWarn("polling.queries is empty; the dashboard will show no panels.")
	}
	keys := map[string]bool{}
	for i, q := range out.Polling.Queries {
		q.Key = strings.TrimSpace(q.Key)
		q.Path = strings.TrimSpace(q.Path)
		out.Polling.Queries[i] = q

		if q.Key == "" {
			res.addErr("polling.queries[%d].key is required", i)
		} else if keys[q.Key] {
			res.addErr("polling.queries[%d].key %q is duplicated", i, q.Key)
		}
		keys[q.Key] = true
		if !strings.HasPrefix(q.Path, "/") {
			res.addErr("polling.queries[%d].path must start with /", i)
		}
		if q.IntervalSeconds <= 0 {
			res.addErr("polling.queries[%d].interval_seconds must be > 0", i)
		} else if q.IntervalSeconds < 5 {
			res.addWarn("polling.queries[%d] (%s) polls every %ds and may hit backend rate limits.", i, q.Key, q.IntervalSeconds)
		}
	}

	// scoring
	for i, r := range out.Scoring.TitleRules {
		r.Any = trimList(r.Any)
		out.Scoring.TitleRules[i] = r
		if r.Tag == "" {
			res.addErr("scoring.title_rules[%d].tag is required", i)
		}
		if len(r.Any) == 0 {
			res.addErr("scoring.title_rules[%d].any must have at least 1 term", i)
		}
	}
	for i, p := range out.Scoring.Penalties {
		p.Any = trimList(p.Any)
		out.Scoring.Penalties[i] = p
		if p.Reason == "" {
			res.addErr("scoring.penalties[%d].reason is required", i)
		}
		if len(p.Any) == 0 {
			res.addErr("scoring.penalties[%d].any must have at least 1 term", i)
		}
	}

	// retention
	if out.Retention.RunsDays < 0 || out.Retention.AuditDays < 0 {
		res.addErr("retention days cannot be negative")
	}

	return out, res
}

// internal/config/config.go
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Rule struct {
	Tag    string   `yaml:"tag" json:"tag"`
	Weight int      `yaml:"weight" json:"weight"`
	Any    []string `yaml:"any" json:"any"`
}

type Penalty struct {
	Reason string   `yaml:"reason" json:"reason"`
	Weight int      `yaml:"weight" json:"weight"`
	Any    []string `yaml:"any" json:"any"`
}

// QuerySpec declares one polled read view.
type QuerySpec struct {
	Key             string `yaml:"key" json:"key"`
	Title           string `yaml:"title" json:"title"`
	Path            string `yaml:"path" json:"path"`
	IntervalSeconds int    `yaml:"interval_seconds" json:"interval_seconds"`
}

func (q QuerySpec) Interval() time.Duration {
	return time.Duration(q.IntervalSeconds) * time.Second
}

type Config struct {
	App struct {
		Port              int    `yaml:"port" json:"port"`
		DataDir           string `yaml:"data_dir" json:"data_dir"`
		DefaultMode       string `yaml:"default_mode" json:"default_mode"`
		SessionTTLMinutes int    `yaml:"session_ttl_minutes" json:"session_ttl_minutes"`
	} `yaml:"app" json:"app"`

	Backend struct {
		BaseURL        string  `yaml:"base_url" json:"base_url"`
		TimeoutSeconds int     `yaml:"timeout_seconds" json:"timeout_seconds"`
		RatePerSecond  float64 `yaml:"rate_per_second" json:"rate_per_second"`
		Burst          int     `yaml:"burst" json:"burst"`
		KeyringAccount string  `yaml:"keyring_account" json:"keyring_account"`
	} `yaml:"backend" json:"backend"`

	Polling struct {
		Queries []QuerySpec `yaml:"queries" json:"queries"`
	} `yaml:"polling" json:"polling"`

	Scoring struct {
		TitleRules []Rule    `yaml:"title_rules" json:"title_rules"`
		Penalties  []Penalty `yaml:"penalties" json:"penalties"`
	} `yaml:"scoring" json:"scoring"`

	Retention struct {
		RunsDays  int `yaml:"runs_days" json:"runs_days"`
		AuditDays int `yaml:"audit_days" json:"audit_days"`
	} `yaml:"retention" json:"retention"`
}

func (c Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.App.SessionTTLMinutes) * time.Minute
}

func DefaultQueries() []QuerySpec {
	return []QuerySpec{
		{Key: "dashboard-metrics", Title: "Dashboard Metrics", Path: "/api/dashboard-metrics", IntervalSeconds: 30},
		{Key: "automation-performance", Title: "Automation Performance", Path: "/api/automation-performance", IntervalSeconds: 60},
		{Key: "live-activity", Title: "Live Activity", Path: "/api/live-activity", IntervalSeconds: 15},
		{Key: "knowledge-stats", Title: "Knowledge Base", Path: "/api/knowledge/stats", IntervalSeconds: 60},
		{Key: "call-metrics", Title: "Call Metrics", Path: "/api/calls/metrics", IntervalSeconds: 30},
		{Key: "active-calls", Title: "Active Calls", Path: "/api/calls/active", IntervalSeconds: 10},
		{Key: "audit-log", Title: "Audit Log", Path: "/api/audit/log", IntervalSeconds: 60},
		{Key: "audit-health", Title: "System Health", Path: "/api/audit/health", IntervalSeconds: 120},
		{Key: "voice-personas", Title: "Voice Personas", Path: "/api/voice/personas", IntervalSeconds: 300},
	}
}

func Default() Config {
	var cfg Config
	cfg.App.Port = 38472
	cfg.App.DataDir = "."
	cfg.App.DefaultMode = "test"
	cfg.App.SessionTTLMinutes = 240

	cfg.Backend.BaseURL = "http://127.0.0.1:3000"
	cfg.Backend.TimeoutSeconds = 30
	cfg.Backend.RatePerSecond = 5
	cfg.Backend.Burst = 10
	cfg.Backend.KeyringAccount = "commandcenter:backend"

	cfg.Polling.Queries = DefaultQueries()

	cfg.Scoring.TitleRules = []Rule{
		{Tag: "executive", Weight: 40, Any: []string{"ceo", "founder", "owner", "president"}},
		{Tag: "leadership", Weight: 25, Any: []string{"vp", "vice president", "director", "head of"}},
		{Tag: "manager", Weight: 10, Any: []string{"manager", "lead"}},
	}
	cfg.Scoring.Penalties = []Penalty{
		{Reason: "junior", Weight: -15, Any: []string{"intern", "assistant", "junior"}},
	}

	cfg.Retention.RunsDays = 90
	cfg.Retention.AuditDays = 30
	return cfg
}

func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

// internal/config/overlay.go
package config

import (
	"os"
	"strings"
)

const (
	EnvDataDir    = "COMMANDCENTER_DATA_DIR"
	EnvBackendURL = "COMMANDCENTER_BACKEND_URL"
)

// OverlayEnv applies environment overrides on top of the file config.
func OverlayEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		cfg.App.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackendURL)); v != "" {
		cfg.Backend.BaseURL = v
	}
}

// Command commandcenter runs the local command center engine: the lead
// scraper wizard, polled dashboard panels and action dispatch over the
// CRM/automation backend.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"commandcenter/internal/config"
	"commandcenter/internal/logging"
)

var (
	dataDirFlag    string
	defaultCfgFlag string
	verboseFlag    bool
	devLogFlag     bool
)

var rootCmd = &cobra.Command{
	Use:           "commandcenter",
	Short:         "Local command center engine",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "data directory (env "+config.EnvDataDir+", default .)")
	rootCmd.PersistentFlags().StringVar(&defaultCfgFlag, "default-config", filepath.Join("config", "config.yml"), "config copied into the data dir on first run")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&devLogFlag, "dev", false, "human-readable console logs")

	rootCmd.AddCommand(serveCmd, modeCmd, secretsCmd, runsCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	return logging.New(verboseFlag, devLogFlag)
}

func dataDir() string {
	if dataDirFlag != "" {
		return dataDirFlag
	}
	if v := strings.TrimSpace(os.Getenv(config.EnvDataDir)); v != "" {
		return v
	}
	return "."
}

// loadConfig bootstraps <data-dir>/config.yml and returns it with env
// overrides applied and validation run.
func loadConfig() (config.Config, string, config.Validation, error) {
	dir := dataDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return config.Config{}, "", config.Validation{}, err
	}
	path, err := config.EnsureUserConfig(dir, defaultCfgFlag)
	if err != nil {
		return config.Config{}, "", config.Validation{}, fmt.Errorf("config bootstrap failed: %w", err)
	}
	cfg, err := readConfig(path)
	if err != nil {
		return config.Config{}, path, config.Validation{}, err
	}
	cfg, vr := config.NormalizeAndValidate(cfg)
	return cfg, path, vr, nil
}

func readConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	config.OverlayEnv(&cfg)
	if dataDirFlag != "" {
		cfg.App.DataDir = dataDirFlag
	}
	return cfg, nil
}

func dbPath(cfg config.Config) string {
	dir := cfg.App.DataDir
	if dir == "" || dir == "." {
		dir = dataDir()
	}
	return filepath.Join(dir, "commandcenter.db")
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"commandcenter/internal/domain"
)

var engineURLFlag string

// The mode lives in the running engine's memory, so these commands go
// through its API instead of the database.
var modeCmd = &cobra.Command{
	Use:   "mode",
	Short: "Show or change the system mode of a running engine",
}

var modeGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current system mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return callMode(cmd, http.MethodGet, "/api/mode", nil)
	},
}

var modeSetCmd = &cobra.Command{
	Use:   "set live|test",
	Short: "Set the system mode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := domain.ParseSystemMode(args[0])
		if err != nil {
			return err
		}
		return callMode(cmd, http.MethodPut, "/api/mode", map[string]string{"mode": string(m)})
	},
}

var modeToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Switch between live and test",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return callMode(cmd, http.MethodPost, "/api/mode/toggle", nil)
	},
}

func init() {
	modeCmd.PersistentFlags().StringVar(&engineURLFlag, "engine", "", "engine base URL (default http://127.0.0.1:<app.port>)")
	modeCmd.AddCommand(modeGetCmd, modeSetCmd, modeToggleCmd)
}

func engineURL() (string, error) {
	if engineURLFlag != "" {
		return engineURLFlag, nil
	}
	cfg, _, _, err := loadConfig()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("http://127.0.0.1:%d", cfg.App.Port), nil
}

func callMode(cmd *cobra.Command, method, path string, body any) error {
	base, err := engineURL()
	if err != nil {
		return err
	}

	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, method, base+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("engine not reachable at %s: %w", base, err)
	}
	defer res.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(res.Body, 1<<16))
	if res.StatusCode != http.StatusOK {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("engine: %s", apiErr.Error.Message)
		}
		return fmt.Errorf("engine: HTTP %d", res.StatusCode)
	}

	var out struct {
		Mode string `json:"mode"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("decode engine reply: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out.Mode)
	return nil
}

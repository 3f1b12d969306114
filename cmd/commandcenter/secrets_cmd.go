package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"commandcenter/internal/secrets"
)

var secretsCmd = &cobra.Command{
	Use:   "secrets",
	Short: "Manage credentials in the OS keychain",
}

var setAPIKeyCmd = &cobra.Command{
	Use:   "set-api-key [key]",
	Short: "Store the backend API key (reads stdin when no key is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, _, err := loadConfig()
		if err != nil {
			return err
		}
		key := ""
		if len(args) == 1 {
			key = args[0]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read key from stdin: %w", err)
			}
			key = line
		}
		if err := secrets.SetBackendAPIKey(cfg.Backend.KeyringAccount, strings.TrimSpace(key)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "stored API key for %s\n", cfg.Backend.KeyringAccount)
		return nil
	},
}

var deleteAPIKeyCmd = &cobra.Command{
	Use:   "delete-api-key",
	Short: "Remove the backend API key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, _, err := loadConfig()
		if err != nil {
			return err
		}
		return secrets.DeleteBackendAPIKey(cfg.Backend.KeyringAccount)
	},
}

func init() {
	secretsCmd.AddCommand(setAPIKeyCmd, deleteAPIKeyCmd)
}

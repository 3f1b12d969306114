package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Work with the engine config file",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the config for errors and warnings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, path, vr, err := loadConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, path)
		for _, w := range vr.Warnings {
			fmt.Fprintln(out, "warning:", w)
		}
		for _, e := range vr.Errors {
			fmt.Fprintln(out, "error:", e)
		}
		if !vr.OK() {
			return fmt.Errorf("%d config errors", len(vr.Errors))
		}
		fmt.Fprintln(out, "ok")
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, path, _, err := loadConfig()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd, configPathCmd)
}

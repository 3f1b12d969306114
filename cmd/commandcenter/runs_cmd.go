package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"commandcenter/internal/store"
)

var runsLimitFlag int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect lead scraper history",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent scrape runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, _, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := store.Open(dbPath(cfg))
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := store.ListRuns(cmd.Context(), db.Pool, runsLimitFlag)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "FINISHED\tTOOL\tMODE\tLEADS\tSTATUS\tID")
		for _, r := range runs {
			status := "ok"
			if !r.Success {
				status = "failed: " + r.Error
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
				r.FinishedAt.Local().Format(time.DateTime), r.Tool, r.Mode, r.LeadCount, status, r.ID)
		}
		return tw.Flush()
	},
}

func init() {
	runsListCmd.Flags().IntVarP(&runsLimitFlag, "limit", "n", 20, "number of runs to show")
	runsCmd.AddCommand(runsListCmd)
}

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dotmirror/dotmirror/pkg/engine"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: historyShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := engine.New(rootFlag)
			if err != nil {
				return err
			}
			defer eng.Close()

			recs, err := eng.History(limit)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no recorded sync runs")
				return nil
			}

			for _, rec := range recs {
				line := fmt.Sprintf("%s  synced %d, unchanged %d, skipped %d",
					rec.StartedAt.Local().Format(time.DateTime),
					rec.Synced, rec.Unchanged, rec.Skipped)
				if rec.Forced {
					line += "  (forced)"
				}
				if rec.Error != "" {
					line += "  last error: " + rec.Error
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dotmirror/dotmirror/pkg/engine"
	"github.com/dotmirror/dotmirror/pkg/types"
)

func newSyncCmd() *cobra.Command {
	var opts types.SyncOptions

	cmd := &cobra.Command{
		Use:   "sync [key...]",
		Short: syncShort,
		Long:  syncLong,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := engine.New(rootFlag)
			if err != nil {
				return err
			}
			defer eng.Close()

			summary, err := eng.Sync(args, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "synced %d, unchanged %d, skipped %d\n",
				summary.Synced, summary.Unchanged, summary.Skipped)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite system files with local edits (conflicts are still skipped)")
	cmd.Flags().BoolVar(&opts.NoBackup, "no-backup", false, "Skip the pre-overwrite backup snapshot")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Suppress per-entry skip warnings")
	return cmd
}

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dotmirror/dotmirror/pkg/engine"
	"github.com/dotmirror/dotmirror/pkg/status"
	"github.com/dotmirror/dotmirror/pkg/types"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: statusShort,
		Long:  statusLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := engine.New(rootFlag)
			if err != nil {
				return err
			}
			defer eng.Close()

			report, err := eng.Status()
			if err != nil {
				return err
			}
			renderReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
}

func renderReport(w io.Writer, report map[string]types.EntryStatus) {
	width := 0
	for key := range report {
		if len(key) > width {
			width = len(key)
		}
	}

	for _, key := range status.Keys(report) {
		entryStatus := report[key]
		marker := " "
		if entryStatus.UsedOverride {
			marker = "*"
		}
		fmt.Fprintf(w, "%-*s %s %-14s %s -> %s\n",
			width, key, marker, renderChange(entryStatus.Change),
			entryStatus.SourcePath, entryStatus.Entry.Target)
	}
	if len(report) == 0 {
		fmt.Fprintln(w, "no tracked entries")
	}
}

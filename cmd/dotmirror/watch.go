package main

import (
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/dotmirror/dotmirror/pkg/engine"
	"github.com/dotmirror/dotmirror/pkg/logging"
)

// debounce window for filesystem event bursts (editors write in flurries)
const watchSettle = 500 * time.Millisecond

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: watchShort,
		Long:  watchLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := engine.New(rootFlag)
			if err != nil {
				return err
			}
			defer eng.Close()

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return err
			}
			defer watcher.Close()

			if err := watchTree(watcher, eng.Paths().Root()); err != nil {
				return err
			}

			logger := logging.GetLogger("watch")
			out := cmd.OutOrStdout()
			printStatus := func() {
				report, err := eng.Status()
				if err != nil {
					logger.Error().Err(err).Msg("status failed")
					return
				}
				fmt.Fprintln(out, time.Now().Format(time.TimeOnly))
				renderReport(out, report)
				fmt.Fprintln(out)
			}
			printStatus()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

			settle := time.NewTimer(watchSettle)
			if !settle.Stop() {
				<-settle.C
			}

			for {
				select {
				case ev, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					// New directories need their own watch.
					if ev.Has(fsnotify.Create) {
						if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
							_ = watcher.Add(ev.Name)
						}
					}
					settle.Reset(watchSettle)

				case <-settle.C:
					printStatus()

				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					logger.Warn().Err(err).Msg("watch error")

				case <-sig:
					return nil
				}
			}
		},
	}
}

// watchTree registers every directory under root with the watcher
func watchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}

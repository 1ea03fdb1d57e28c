package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/javanhut/ivaldi-history/history"
	"github.com/javanhut/ivaldi-history/internal/colors"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Record every saved version of a file",
	Long: `Watch a file and record its contents each time it is written.

Bursts of writes within the debounce period become a single entry. Press
Ctrl-C to stop and print the recorded history. Nothing is written to disk.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, closeEngine, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer closeEngine()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := &lockedWriter{w: cmd.OutOrStdout()}
		if err := watchFile(ctx, h, args[0], out); err != nil {
			return err
		}

		h.Flush()
		s := newSession(h, out)
		s.printBranches()
		s.printLog()
		return nil
	},
}

// watchFile records path's contents on every write until ctx is done. The
// parent directory is watched so editors that save by rename are seen.
func watchFile(ctx context.Context, h *history.Engine[string], path string, out io.Writer) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	defer h.On(func(ev history.Event[string]) {
		if ev.Type == history.EventRecord {
			fmt.Fprintf(out, "%s %s %d bytes\n",
				colors.EventLabel(string(ev.Type)), colors.EntryID(ev.Entry.ID), len(ev.Entry.Data))
		}
	})()

	recordFile := func() {
		data, err := os.ReadFile(abs)
		if err != nil {
			log.Printf("Warning: failed to read %s: %v", path, err)
			return
		}
		if _, err := h.Record(string(data), history.WithMetadata(history.Metadata{"file": path})); err != nil {
			log.Printf("Warning: failed to record %s: %v", path, err)
		}
	}

	if _, err := os.Stat(abs); err == nil {
		recordFile()
		h.Flush()
	}
	fmt.Fprintf(out, "watching %s\n", path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if ev.Name != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				recordFile()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Printf("Warning: watcher error: %v", err)
		}
	}
}

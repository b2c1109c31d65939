package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"znkr.io/rundiff/mirror"
)

var watchCmd = &cobra.Command{
	Use:   "watch <src> <dst>",
	Short: "Watch src and keep dst in sync, writing only changed ranges",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, dst := args[0], args[1]

		state, err := os.ReadFile(src)
		if err != nil {
			return fmt.Errorf("reading %s: %v", src, err)
		}

		f, held, err := openTarget(dst, len(state))
		if err != nil {
			return err
		}
		defer f.Close()

		m := mirror.New(f, len(state))
		if err := m.Reset(held); err != nil {
			return fmt.Errorf("seeding mirror for %s: %v", dst, err)
		}
		if err := resync(m, src, dst); err != nil {
			return err
		}

		// Watch the containing directory rather than the file itself:
		// editors and atomic writers replace files, which would silently
		// drop a watch on the file.
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("starting watcher: %v", err)
		}
		defer watcher.Close()
		if err := watcher.Add(filepath.Dir(src)); err != nil {
			return fmt.Errorf("starting watch: %v", err)
		}
		log.Printf("Watching %s, press Ctrl-C to stop", src)

		// Setup signals to react to Ctrl-C.
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)

		for {
			select {
			case event := <-watcher.Events:
				// Absolutely no need to react to chmod.
				if event.Has(fsnotify.Chmod) {
					continue
				}
				if filepath.Clean(event.Name) != filepath.Clean(src) {
					continue
				}
				if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					// The file may reappear (atomic replace), keep watching.
					continue
				}
				if err := resync(m, src, dst); err != nil {
					log.Printf("failed to sync: %v", err)
					continue
				}
			case err := <-watcher.Errors:
				return fmt.Errorf("watching: %v", err)
			case <-sigint:
				fmt.Print("\r") // remove Ctrl-C output characters
				log.Printf("Received Ctrl-C, shutting down")
				return nil
			}
		}
	},
}

func resync(m *mirror.Mirror, src, dst string) error {
	state, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading %s: %v", src, err)
	}
	start := time.Now()
	written, err := m.Sync(state)
	if err != nil {
		return fmt.Errorf("syncing %s: %v", dst, err)
	}
	d := time.Since(start)
	log.Printf("Synced %s: wrote %s of %s (%v)",
		dst, humanize.IBytes(uint64(written)), humanize.IBytes(uint64(len(state))), d)
	return nil
}

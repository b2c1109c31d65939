package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"znkr.io/rundiff/mirror"
)

var syncProgress bool

func init() {
	syncCmd.Flags().BoolVar(&syncProgress, "progress", false, "show a progress bar while writing")
}

var syncCmd = &cobra.Command{
	Use:   "sync <src> <dst>",
	Short: "Update dst in place, writing only the ranges in which it differs from src",
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

		var w io.WriterAt = f
		var bar *progressbar.ProgressBar
		if syncProgress {
			bar = progressbar.NewOptions64(int64(len(state)),
				progressbar.OptionSetDescription("syncing"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowBytes(true),
				progressbar.OptionThrottle(120*time.Millisecond),
			)
			w = &progressWriter{w: f, bar: bar}
		}

		m := mirror.New(w, len(state))
		if err := m.Reset(held); err != nil {
			return fmt.Errorf("seeding mirror for %s: %v", dst, err)
		}

		start := time.Now()
		written, err := m.Sync(state)
		if bar != nil {
			bar.Finish()
			fmt.Fprintln(os.Stderr)
		}
		if err != nil {
			return fmt.Errorf("syncing %s: %v", dst, err)
		}
		log.Printf("Synced %s: wrote %s of %s (%v)",
			dst, humanize.IBytes(uint64(written)), humanize.IBytes(uint64(len(state))), time.Since(start))
		return nil
	},
}

// openTarget opens dst for in-place updates and returns its current contents,
// which must be exactly size bytes.
func openTarget(dst string, size int) (*os.File, []byte, error) {
	f, err := os.OpenFile(dst, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %v", dst, err)
	}
	held, err := io.ReadAll(f)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("reading %s: %v", dst, err)
	}
	if len(held) != size {
		f.Close()
		return nil, nil, fmt.Errorf("file sizes differ: source is %s, %s is %s",
			humanize.IBytes(uint64(size)), dst, humanize.IBytes(uint64(len(held))))
	}
	return f, held, nil
}

// progressWriter advances a progress bar by the number of bytes written.
type progressWriter struct {
	w   io.WriterAt
	bar *progressbar.ProgressBar
}

func (p *progressWriter) WriteAt(b []byte, off int64) (int, error) {
	n, err := p.w.WriteAt(b, off)
	p.bar.Add(n)
	return n, err
}

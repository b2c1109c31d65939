package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"znkr.io/rundiff"
)

var diffCmd = &cobra.Command{
	Use:   "diff <a> <b>",
	Short: "Show the byte ranges in which two equal-size files differ",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %v", args[0], err)
		}
		b, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("reading %s: %v", args[1], err)
		}
		if len(a) != len(b) {
			return fmt.Errorf("file sizes differ: %s is %s, %s is %s",
				args[0], humanize.IBytes(uint64(len(a))),
				args[1], humanize.IBytes(uint64(len(b))))
		}

		runs, changed := 0, 0
		rundiff.Diff(a, b, func(offset int, run []byte) {
			runs++
			changed += len(run)
			fmt.Printf("0x%08x  %-10s  %s\n", offset, humanize.IBytes(uint64(len(run))), preview(run))
		})
		fmt.Printf("%d ranges, %s of %s differ\n",
			runs, humanize.IBytes(uint64(changed)), humanize.IBytes(uint64(len(a))))
		return nil
	},
}

// preview renders the first bytes of a run as hex, eliding long runs.
func preview(run []byte) string {
	const max = 16
	if len(run) <= max {
		return hex.EncodeToString(run)
	}
	return hex.EncodeToString(run[:max]) + "..."
}

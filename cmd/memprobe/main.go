//go:build windows

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"memprobe/process_windows"
	"memprobe/repl"
	"memprobe/scan"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "memprobe [window-title]",
		Short: "Interactive memory scanner for a live Windows process",
		Long: `memprobe attaches to the process owning the named top-level window and
opens a scanning REPL: find addresses holding a typed value, narrow the
candidate set as the target mutates memory, dump typed values, and discover
pointer chains leading to an address of interest.

With no argument the window title is prompted for interactively.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			title := ""
			if len(args) == 1 {
				title = args[0]
			} else {
				var err error
				title, err = promptWindowName()
				if err != nil {
					return err
				}
			}

			target, err := process_windows.AttachWindow(title)
			if err != nil {
				return err
			}
			defer target.Close()

			return repl.New(scan.New(target)).Run()
		},
	}
}

func promptWindowName() (string, error) {
	fmt.Println("Enter window name:")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading window name: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

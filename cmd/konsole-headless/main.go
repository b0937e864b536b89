// Command konsole-headless is a thin demonstration host for the
// terminal-emulation core: it runs a child shell through a Session and
// mirrors the emulated screen onto the invoking terminal. It exists to
// exercise the core end-to-end from a real PTY; it is not the graphical
// Konsole frontend.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "konsole-headless",
		Short: "Headless Konsole terminal-emulation core host",
		SilenceUsage: true,
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newDumpSchemeCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

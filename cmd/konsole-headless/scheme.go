package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/konsolecore/termcore/internal/colorscheme"
)

func newDumpSchemeCmd() *cobra.Command {
	var legacy bool
	cmd := &cobra.Command{
		Use:   "dump-scheme <file>",
		Short: "Parse a color-scheme file and print its resolved palette",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			var s *colorscheme.Scheme
			if legacy {
				s, err = colorscheme.ParseKDE3(f)
			} else {
				s, err = colorscheme.Parse(f)
			}
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			fmt.Printf("Description: %s\nOpacity: %.2f\n", s.Description, s.Opacity)
			for i, e := range s.Table {
				fmt.Printf("  slot %2d: #%02x%02x%02x transparent=%v bold=%v\n",
					i, e.RGB.R, e.RGB.G, e.RGB.B, e.Transparent, e.Bold)
			}
			fg, bg := s.ColorFgBg()
			fmt.Printf("COLORFGBG=%d;%d\n", fg, bg)
			return nil
		},
	}
	cmd.Flags().BoolVar(&legacy, "kde3", false, "parse the legacy KDE3 flat format")
	return cmd
}

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/konsolecore/termcore"
	"github.com/konsolecore/termcore/internal/history"
	"github.com/konsolecore/termcore/internal/hostconfig"
	"github.com/konsolecore/termcore/internal/session"
)

func newRunCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "run [program [args...]]",
		Short: "Run a program inside the emulation core, mirroring it here",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(configPath, args)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "host defaults file (yaml)")
	return cmd
}

// stdoutDisplay repaints the whole emulated screen on the invoking
// terminal for every snapshot that differs from the last one painted.
// A real display computes deltas; full
// repaint keeps the demo honest about what the core hands over.
type stdoutDisplay struct {
	profile termenv.Profile
	table   termcore.ColorTable
	last    termcore.Snapshot
	painted bool
}

func (d *stdoutDisplay) SetImage(snap termcore.Snapshot) {
	if d.painted && snap.Equal(d.last) {
		return
	}
	d.last = snap
	d.painted = true

	var sb strings.Builder
	sb.WriteString("\x1b[H")
	for r := 0; r < snap.Rows; r++ {
		sb.WriteString("\x1b[K")
		for _, cell := range snap.Lines[r].Cells {
			if cell.Char == 0 {
				continue
			}
			d.renderCell(&sb, cell)
		}
		if r < snap.Rows-1 {
			sb.WriteString("\r\n")
		}
	}
	os.Stdout.WriteString(sb.String())
}

func (d *stdoutDisplay) renderCell(sb *strings.Builder, cell termcore.Cell) {
	fg := cell.Fg.Resolve(&d.table)
	bg := cell.Bg.Resolve(&d.table)
	st := termenv.String(string(cell.Char)).
		Foreground(d.profile.FromColor(fg)).
		Background(d.profile.FromColor(bg))
	if cell.HasFlag(termcore.RenditionBold) {
		st = st.Bold()
	}
	if cell.HasFlag(termcore.RenditionItalic) {
		st = st.Italic()
	}
	if cell.HasFlag(termcore.RenditionUnderline) {
		st = st.Underline()
	}
	if cell.HasFlag(termcore.RenditionReverse) {
		st = st.Reverse()
	}
	sb.WriteString(st.String())
}

func (d *stdoutDisplay) SetSelection(string) {}

func (d *stdoutDisplay) Bell(string) { os.Stdout.WriteString("\a") }

func (d *stdoutDisplay) Dead() bool { return false }

func runSession(configPath string, args []string) error {
	if configPath == "" {
		p, err := hostconfig.DefaultPath()
		if err != nil {
			return err
		}
		configPath = p
	}
	cfg, err := hostconfig.Load(configPath)
	if err != nil {
		return err
	}

	program := cfg.Shell
	var progArgs []string
	if len(args) > 0 {
		program = args[0]
		progArgs = args[1:]
	}

	rows, cols := cfg.Rows, cfg.Cols
	if rows == 0 || cols == 0 {
		if w, h, err := term.GetSize(int(os.Stdin.Fd())); err == nil {
			cols, rows = w, h
		} else {
			rows, cols = 24, 80
		}
	}

	var store termcore.HistoryStore
	switch cfg.HistoryMode {
	case "disabled":
		store = history.None{}
	case "unlimited":
		f, err := history.NewFile()
		if err != nil {
			return fmt.Errorf("open scrollback file: %w", err)
		}
		defer f.Close()
		store = f
	default:
		store = history.NewRing(cfg.HistorySize)
	}

	sess := session.New(session.Config{
		Program:      program,
		Args:         progArgs,
		Env:          os.Environ(),
		Rows:         rows,
		Cols:         cols,
		HistoryStore: store,
	})
	sess.OnTitleChanged = func(title string) {
		fmt.Fprintf(os.Stdout, "\x1b]2;%s\a", title)
	}

	display := &stdoutDisplay{
		profile: termenv.ColorProfile(),
		table:   termcore.DefaultColorTable(),
	}
	sess.AddDisplay(display)

	restore, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}
	defer term.Restore(int(os.Stdin.Fd()), restore)

	if err := sess.Run(); err != nil {
		return err
	}

	go func() {
		buf := make([]byte, 1024)
		for {
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				sess.SendText(buf[:n])
			}
			if err != nil {
				return
			}
		}
	}()

	<-sess.Done()
	// Give the final snapshot a chance to land before restoring the tty.
	time.Sleep(refreshGrace)
	if status := sess.ExitStatus(); status > 0 {
		os.Exit(status)
	}
	return nil
}

const refreshGrace = 50 * time.Millisecond

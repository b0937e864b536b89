// Package session ties the core together: a Session owns a PTY, a
// Decoder with its two Screens, and a set of attached displays, relaying
// bytes in both directions and tracking activity/silence/bell
// notifications and title changes.
package session

import (
	"fmt"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/konsolecore/termcore"
	"github.com/konsolecore/termcore/internal/decode"
	"github.com/konsolecore/termcore/internal/history"
	"github.com/konsolecore/termcore/internal/keytrans"
	"github.com/konsolecore/termcore/internal/ptyio"
	"github.com/konsolecore/termcore/internal/refresh"
)

// State is the session lifecycle: New -> Running -> Finished.
type State int

const (
	StateNew State = iota
	StateRunning
	StateFinished
)

// NotificationKind identifies a monitored condition.
type NotificationKind int

const (
	NotifyActivity NotificationKind = iota
	NotifySilence
	NotifyBell
)

// Display is the interface the Session pushes output to. A
// display that panics or misbehaves is the host's problem; a display
// whose Dead method reports true is dropped automatically.
type Display interface {
	SetImage(snap termcore.Snapshot)
	SetSelection(text string)
	Bell(message string)
	Dead() bool
}

// Config collects everything a Session needs before Run.
type Config struct {
	Program string
	Args    []string
	Env     []string

	Rows, Cols int

	// HistoryStore backs the primary screen's scrollback; nil disables
	// scrollback (equivalent to history.None).
	HistoryStore termcore.HistoryStore

	// Translator maps key events to bytes; nil selects the built-in
	// default table.
	Translator *keytrans.Translator

	// TabTitleFormat is the template the effective title composes in;
	// %w expands to the program-set window title, %n to the foreground
	// program name, %u to the user-set name.
	TabTitleFormat string

	// SilenceThreshold is how long without output counts as silence when
	// silence monitoring is on.
	SilenceThreshold time.Duration

	// Start launches the child; nil uses ptyio.Start. Tests substitute
	// an in-memory PTY here.
	Start func(program string, args []string, env []string, cols, rows int) (ptyio.Pty, error)
}

// Session owns one child process and its emulation state.
type Session struct {
	mu sync.Mutex

	cfg   Config
	state State

	id string

	pty     ptyio.Pty
	decoder *decode.Decoder
	primary *termcore.Screen
	alt     *termcore.Screen

	translator *keytrans.Translator
	scheduler  *refresh.Scheduler

	displays []Display

	// Title composition inputs: user-set name, program-set
	// title via OSC 0/2, the tab-format template, and the foreground
	// process name.
	userTitle    string
	programTitle string
	iconName     string
	fgProcess    string

	// Notification state: a flag set with edge-triggered change
	// callbacks.
	notifyFlags     map[NotificationKind]bool
	monitorActivity bool
	monitorSilence  bool
	activityTimer   *time.Timer
	silenceTimer    *time.Timer

	storageWarned bool
	lastTitle     string
	pending       []func()

	exitStatus int
	finishedCh chan struct{}
	finishOnce sync.Once

	// Observers, set at wiring time. Callbacks up to the Session's
	// owner are function references, not back-pointers, which keeps
	// ownership a strict tree.
	OnTitleChanged         func(title string)
	OnNotificationsChanged func(kind NotificationKind, enabled bool)
	OnFinished             func(exitStatus int)
	OnStorageWarning       func(err error)
	OnWorkingDirectory     func(url string)
	OnProfileChange        func(props string)
}

// New creates a detached session: configured but not yet started.
func New(cfg Config) *Session {
	if cfg.Rows <= 0 {
		cfg.Rows = 24
	}
	if cfg.Cols <= 0 {
		cfg.Cols = 80
	}
	if cfg.TabTitleFormat == "" {
		cfg.TabTitleFormat = "%w"
	}
	if cfg.SilenceThreshold <= 0 {
		cfg.SilenceThreshold = 10 * time.Second
	}
	if cfg.Translator == nil {
		cfg.Translator = keytrans.Default()
	}
	if cfg.Start == nil {
		cfg.Start = func(program string, args []string, env []string, cols, rows int) (ptyio.Pty, error) {
			return ptyio.Start(program, args, env, cols, rows)
		}
	}
	hist := cfg.HistoryStore
	if hist == nil {
		hist = history.None{}
	}

	s := &Session{
		cfg:         cfg,
		id:          strings.NewReplacer("-", "", "{", "", "}", "").Replace(uuid.New().String()),
		translator:  cfg.Translator,
		notifyFlags: map[NotificationKind]bool{},
		finishedCh:  make(chan struct{}),
	}
	s.primary = termcore.NewScreen(cfg.Rows, cfg.Cols, hist)
	s.alt = termcore.NewScreen(cfg.Rows, cfg.Cols, nil)
	s.decoder = decode.New(s.primary, s.alt, (*decoderHandler)(s))
	s.scheduler = refresh.New(s.takeSnapshot, s.pushSnapshot)
	return s
}

// ID returns the session's stable identifier, exported to the child as
// SHELL_SESSION_ID.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Decoder exposes the emulation state for tests and the host CLI.
func (s *Session) Decoder() *decode.Decoder { return s.decoder }

// Environment returns the child's environment: the configured base plus
// TERM, COLORFGBG and SHELL_SESSION_ID.
func (s *Session) Environment(fgIndex, bgIndex int) []string {
	env := append([]string(nil), s.cfg.Env...)
	env = append(env,
		"TERM=xterm",
		fmt.Sprintf("COLORFGBG=%d;%d", fgIndex, bgIndex),
		"SHELL_SESSION_ID="+s.id,
	)
	return env
}

// Run starts the child process and the PTY read loop. From any state
// other than New it is a no-op.
func (s *Session) Run() error {
	s.mu.Lock()
	if s.state != StateNew {
		s.mu.Unlock()
		return nil
	}
	cfg := s.cfg
	env := s.Environment(0, 15)
	pty, err := cfg.Start(cfg.Program, cfg.Args, env, cfg.Cols, cfg.Rows)
	if err != nil {
		s.state = StateFinished
		s.mu.Unlock()
		s.finish(-1)
		return fmt.Errorf("%w: %v", termcore.ErrChildStart, err)
	}
	s.pty = pty
	s.state = StateRunning
	s.mu.Unlock()

	go s.readLoop()
	return nil
}

// readLoop pumps PTY output into the decoder. Reads happen on this
// goroutine but decoding is serialized under the session lock, which
// also orders user input between reads.
func (s *Session) readLoop() {
	buf := make([]byte, 4096)
	for {
		n, err := s.pty.Read(buf)
		if n > 0 {
			s.feed(buf[:n])
		}
		if err != nil {
			break
		}
	}
	status := s.pty.Wait()
	s.finish(status)
}

func (s *Session) feed(p []byte) {
	s.mu.Lock()
	s.decoder.Write(p)
	var storageFailure bool
	if f, ok := s.primary.History().(*history.File); ok && f.Failed() {
		storageFailure = !s.storageWarned
	}
	s.mu.Unlock()
	s.drainPending()
	if storageFailure {
		s.reportStorageOrPtyError(termcore.ErrStorage)
	}
	s.scheduler.Notify()
	s.recordActivity()
}

// finish transitions to Finished exactly once, no matter how many of
// the exit paths race to it.
func (s *Session) finish(status int) {
	s.finishOnce.Do(func() {
		s.mu.Lock()
		s.state = StateFinished
		s.exitStatus = status
		cb := s.OnFinished
		s.mu.Unlock()

		s.scheduler.Stop()
		s.stopMonitorTimers()
		if cb != nil {
			cb(status)
		}
		close(s.finishedCh)
	})
}

// Done returns a channel closed when the session reaches Finished.
func (s *Session) Done() <-chan struct{} { return s.finishedCh }

// ExitStatus returns the child's exit code, or -1 if unknown. Valid
// after Done is closed.
func (s *Session) ExitStatus() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exitStatus
}

// CloseNormal asks the child to exit with SIGHUP. The caller may wait on
// Done with its own deadline before escalating to CloseForce; the core
// exposes the primitives but does not implement the timeout.
func (s *Session) CloseNormal() error {
	return s.signal(syscall.SIGHUP)
}

// CloseForce kills the child with SIGKILL.
func (s *Session) CloseForce() error {
	return s.signal(syscall.SIGKILL)
}

func (s *Session) signal(sig syscall.Signal) error {
	s.mu.Lock()
	pty := s.pty
	st := s.state
	s.mu.Unlock()
	if st != StateRunning || pty == nil {
		return nil
	}
	return pty.Kill(sig)
}

// --- display attachment ---

// AddDisplay attaches a display; it receives a snapshot immediately so
// it is not blank until the next output burst.
func (s *Session) AddDisplay(d Display) {
	s.mu.Lock()
	s.displays = append(s.displays, d)
	s.mu.Unlock()
	s.scheduler.Flush()
}

// RemoveDisplay detaches a display.
func (s *Session) RemoveDisplay(d Display) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, x := range s.displays {
		if x == d {
			s.displays = append(s.displays[:i], s.displays[i+1:]...)
			return
		}
	}
}

func (s *Session) takeSnapshot() termcore.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decoder.Active().TakeSnapshot()
}

// pushSnapshot fans a snapshot out to every live display, dropping dead
// ones along the way.
func (s *Session) pushSnapshot(snap termcore.Snapshot) {
	s.mu.Lock()
	live := s.displays[:0]
	for _, d := range s.displays {
		if !d.Dead() {
			live = append(live, d)
		}
	}
	s.displays = live
	targets := append([]Display(nil), live...)
	s.mu.Unlock()

	for _, d := range targets {
		d.SetImage(snap)
	}
}

// SelectionChanged exports the active screen's current selection text to
// every attached display (the host wires its copy buffer to this).
func (s *Session) SelectionChanged() {
	s.mu.Lock()
	text := s.decoder.Active().SelectedText()
	targets := append([]Display(nil), s.displays...)
	s.mu.Unlock()
	for _, d := range targets {
		d.SetSelection(text)
	}
}

// --- input path ---

// KeyPressed translates a key event and writes the result to the PTY.
// Abstract commands (scroll, lock toggling) are returned to the caller,
// which owns the viewport the commands act on.
func (s *Session) KeyPressed(key string, mods keytrans.Modifier, text string) keytrans.Command {
	state := s.translatorState()
	res := s.translator.Translate(key, mods, state, text)
	if res.IsCommand() {
		return res.Command
	}
	if len(res.Bytes) > 0 {
		s.writePty(res.Bytes)
	}
	return keytrans.CommandNone
}

// SendText writes raw bytes to the child as if typed, bypassing the key
// translator. Hosts that run the user's real terminal in raw mode relay
// its input here.
func (s *Session) SendText(p []byte) {
	s.writePty(p)
}

// Paste writes pasted text to the PTY, bracketing it when the
// application asked for bracketed paste (2004).
func (s *Session) Paste(text string) {
	s.mu.Lock()
	out := s.decoder.BracketPaste([]byte(text))
	s.mu.Unlock()
	s.writePty(out)
}

// MouseEvent encodes a display mouse event per the active tracking and
// encoding modes and writes it to the PTY; ignored when no tracking mode
// wants it.
func (s *Session) MouseEvent(button, col, row int, kind decode.MouseEventKind) {
	s.mu.Lock()
	out := s.decoder.EncodeMouse(button, col, row, kind)
	s.mu.Unlock()
	if out != nil {
		s.writePty(out)
	}
}

// FocusChanged reports a display focus transition to the application
// when focus reporting (1004) is on.
func (s *Session) FocusChanged(gained bool) {
	s.mu.Lock()
	out := s.decoder.EncodeFocus(gained)
	s.mu.Unlock()
	if out != nil {
		s.writePty(out)
	}
}

func (s *Session) translatorState() keytrans.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st keytrans.State
	st |= keytrans.StateAnsi
	if s.decoder.AppCursorKeys() {
		st |= keytrans.StateAppCursorKeys
	}
	if s.decoder.AppKeypad() {
		st |= keytrans.StateAppKeypad
	}
	if s.decoder.AltScreenActive() {
		st |= keytrans.StateAppScreen
	}
	if s.decoder.Active().HasMode(termcore.ModeNewLine) {
		st |= keytrans.StateNewLine
	}
	if s.decoder.VT52Active() {
		st &^= keytrans.StateAnsi
	}
	return st
}

// writePty sends bytes to the child, retrying a failed write exactly
// once.
func (s *Session) writePty(p []byte) {
	s.mu.Lock()
	pty := s.pty
	s.mu.Unlock()
	if pty == nil {
		return
	}
	if _, err := pty.Write(p); err != nil {
		if _, err := pty.Write(p); err != nil {
			s.reportStorageOrPtyError(fmt.Errorf("%w: write: %v", termcore.ErrPty, err))
		}
	}
}

// --- resize ---

// Resize validates and applies a new terminal size: the primary screen's
// history reflows, both screens resize, and the PTY is informed.
func (s *Session) Resize(rows, cols int) error {
	if rows <= 0 || cols <= 0 {
		return fmt.Errorf("%w: resize to %dx%d", termcore.ErrInvalidParameter, rows, cols)
	}
	s.mu.Lock()
	reflow := cols != s.primary.Cols()
	s.primary.Resize(rows, cols)
	if reflow {
		s.primary.ReflowHistory()
	}
	s.alt.Resize(rows, cols)
	pty := s.pty
	s.mu.Unlock()

	if pty != nil {
		if err := pty.Resize(cols, rows); err != nil {
			return fmt.Errorf("%w: resize: %v", termcore.ErrPty, err)
		}
	}
	s.scheduler.Flush()
	return nil
}

func (s *Session) reportStorageOrPtyError(err error) {
	s.mu.Lock()
	warned := s.storageWarned
	s.storageWarned = true
	cb := s.OnStorageWarning
	s.mu.Unlock()
	if !warned && cb != nil {
		cb(err)
	}
}

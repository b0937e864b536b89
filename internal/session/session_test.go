package session

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/konsolecore/termcore"
	"github.com/konsolecore/termcore/internal/history"
	"github.com/konsolecore/termcore/internal/keytrans"
	"github.com/konsolecore/termcore/internal/ptyio"
)

// fakePty is an in-memory stand-in for a child process on a PTY: Read
// drains what the test scripts via emit, Write captures what the session
// sends to the "child".
type fakePty struct {
	mu      sync.Mutex
	out     chan []byte
	written bytes.Buffer
	killed  []syscall.Signal
	status  int
}

var _ ptyio.Pty = (*fakePty)(nil)

func newFakePty() *fakePty {
	return &fakePty{out: make(chan []byte, 16)}
}

func (f *fakePty) emit(s string) { f.out <- []byte(s) }

func (f *fakePty) exit(status int) {
	f.mu.Lock()
	f.status = status
	f.mu.Unlock()
	close(f.out)
}

func (f *fakePty) Read(p []byte) (int, error) {
	chunk, ok := <-f.out
	if !ok {
		return 0, io.EOF
	}
	return copy(p, chunk), nil
}

func (f *fakePty) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written.Write(p)
	return len(p), nil
}

func (f *fakePty) Written() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.written.String()
}

func (f *fakePty) Resize(cols, rows int) error { return nil }

func (f *fakePty) Kill(sig syscall.Signal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.killed = append(f.killed, sig)
	return nil
}

func (f *fakePty) Wait() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

type fakeDisplay struct {
	mu    sync.Mutex
	snaps []termcore.Snapshot
	bells []string
	dead  bool
}

func (d *fakeDisplay) SetImage(s termcore.Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.snaps = append(d.snaps, s)
}
func (d *fakeDisplay) SetSelection(string) {}
func (d *fakeDisplay) Bell(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bells = append(d.bells, msg)
}
func (d *fakeDisplay) Dead() bool { return d.dead }

func newTestSession(t *testing.T) (*Session, *fakePty) {
	t.Helper()
	pty := newFakePty()
	s := New(Config{
		Program: "test-shell",
		Rows:    10,
		Cols:    40,
		HistoryStore: history.NewRing(100),
		Start: func(string, []string, []string, int, int) (ptyio.Pty, error) {
			return pty, nil
		},
	})
	return s, pty
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestLifecycleNewRunningFinished(t *testing.T) {
	s, pty := newTestSession(t)
	if s.State() != StateNew {
		t.Fatalf("initial state = %v, want New", s.State())
	}
	if err := s.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.State() != StateRunning {
		t.Fatalf("state after Run = %v, want Running", s.State())
	}
	// Run again is a no-op, not a second child.
	if err := s.Run(); err != nil {
		t.Fatalf("second Run errored: %v", err)
	}

	pty.exit(3)
	<-s.Done()
	if s.State() != StateFinished || s.ExitStatus() != 3 {
		t.Fatalf("state=%v status=%d, want Finished/3", s.State(), s.ExitStatus())
	}
}

func TestFinishedFiresExactlyOnce(t *testing.T) {
	s, pty := newTestSession(t)
	var count int
	var mu sync.Mutex
	s.OnFinished = func(int) {
		mu.Lock()
		count++
		mu.Unlock()
	}
	s.Run()
	pty.exit(0)
	<-s.Done()
	s.finish(0)
	s.finish(1)
	mu.Lock()
	defer mu.Unlock()
	if count != 1 {
		t.Fatalf("finished fired %d times, want 1", count)
	}
}

func TestChildStartFailure(t *testing.T) {
	s := New(Config{
		Program: "no-such-binary",
		Start: func(string, []string, []string, int, int) (ptyio.Pty, error) {
			return nil, errors.New("exec: not found")
		},
	})
	err := s.Run()
	if !errors.Is(err, termcore.ErrChildStart) {
		t.Fatalf("err = %v, want ErrChildStart", err)
	}
	if s.State() != StateFinished {
		t.Fatalf("state = %v, want Finished directly from New", s.State())
	}
}

func TestOutputReachesScreenAndDisplay(t *testing.T) {
	s, pty := newTestSession(t)
	d := &fakeDisplay{}
	s.AddDisplay(d)
	s.Run()

	pty.emit("hello")
	waitFor(t, "screen content", func() bool {
		return strings.HasPrefix(s.takeSnapshot().Lines[0].Text(), "hello")
	})
	waitFor(t, "display snapshot", func() bool {
		d.mu.Lock()
		defer d.mu.Unlock()
		for _, snap := range d.snaps {
			if strings.HasPrefix(snap.Lines[0].Text(), "hello") {
				return true
			}
		}
		return false
	})
	pty.exit(0)
}

func TestDecoderResponseGoesToPty(t *testing.T) {
	s, pty := newTestSession(t)
	s.Run()
	pty.emit("\x1b[6n")
	waitFor(t, "CPR response", func() bool {
		return pty.Written() == "\x1b[1;1R"
	})
	pty.exit(0)
}

func TestKeyPressWritesBytes(t *testing.T) {
	s, pty := newTestSession(t)
	s.Run()
	cmd := s.KeyPressed("Up", 0, "")
	if cmd != keytrans.CommandNone {
		t.Fatalf("Up produced command %v", cmd)
	}
	waitFor(t, "key bytes", func() bool { return pty.Written() == "\x1b[A" })
	pty.exit(0)
}

func TestKeyPressHonorsAppCursorMode(t *testing.T) {
	s, pty := newTestSession(t)
	s.Run()
	pty.emit("\x1b[?1h")
	waitFor(t, "app cursor mode", func() bool { return s.Decoder().AppCursorKeys() })
	s.KeyPressed("Up", 0, "")
	waitFor(t, "SS3 bytes", func() bool { return pty.Written() == "\x1bOA" })
	pty.exit(0)
}

func TestScrollCommandReturnedNotWritten(t *testing.T) {
	s, pty := newTestSession(t)
	s.Run()
	cmd := s.KeyPressed("PageUp", keytrans.ModShift, "")
	if cmd != keytrans.CommandScrollPageUp {
		t.Fatalf("Shift+PageUp = %v, want scroll command", cmd)
	}
	if pty.Written() != "" {
		t.Fatalf("scroll command leaked bytes to the child: %q", pty.Written())
	}
	pty.exit(0)
}

func TestTitleChangeNotification(t *testing.T) {
	s, pty := newTestSession(t)
	var titles []string
	var mu sync.Mutex
	s.OnTitleChanged = func(title string) {
		mu.Lock()
		titles = append(titles, title)
		mu.Unlock()
	}
	s.Run()
	pty.emit("\x1b]2;My Title\x07")
	waitFor(t, "title", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(titles) == 1 && titles[0] == "My Title"
	})
	if pty.Written() != "" {
		t.Fatalf("OSC title produced a PTY response: %q", pty.Written())
	}
	pty.exit(0)
}

func TestUserTitleWinsOverProgramTitle(t *testing.T) {
	s, pty := newTestSession(t)
	s.Run()
	pty.emit("\x1b]2;program\x07")
	waitFor(t, "program title", func() bool { return s.Title() == "program" })
	s.SetUserTitle("mine")
	if got := s.Title(); got != "mine" {
		t.Fatalf("title = %q, want user-set name to win", got)
	}
	pty.exit(0)
}

func TestBellNotificationEdgeTriggered(t *testing.T) {
	s, pty := newTestSession(t)
	var changes []bool
	var mu sync.Mutex
	s.OnNotificationsChanged = func(kind NotificationKind, on bool) {
		if kind != NotifyBell {
			return
		}
		mu.Lock()
		changes = append(changes, on)
		mu.Unlock()
	}
	d := &fakeDisplay{}
	s.AddDisplay(d)
	s.Run()

	pty.emit("\x07\x07") // two bells, one edge
	waitFor(t, "bell", func() bool { return s.NotificationActive(NotifyBell) })
	mu.Lock()
	if len(changes) != 1 || !changes[0] {
		mu.Unlock()
		t.Fatalf("bell changes = %v, want a single rising edge", changes)
	}
	mu.Unlock()

	s.ClearNotification(NotifyBell)
	mu.Lock()
	if len(changes) != 2 || changes[1] {
		mu.Unlock()
		t.Fatalf("bell changes = %v, want a falling edge after clear", changes)
	}
	mu.Unlock()
	pty.exit(0)
}

func TestSilenceNotification(t *testing.T) {
	pty := newFakePty()
	s := New(Config{
		Program:          "test-shell",
		Rows:             5,
		Cols:             20,
		SilenceThreshold: 30 * time.Millisecond,
		Start: func(string, []string, []string, int, int) (ptyio.Pty, error) {
			return pty, nil
		},
	})
	s.Run()
	s.SetMonitorSilence(true)
	pty.emit("busy")
	waitFor(t, "silence", func() bool { return s.NotificationActive(NotifySilence) })
	pty.exit(0)
}

func TestDeadDisplaysDropped(t *testing.T) {
	s, pty := newTestSession(t)
	alive := &fakeDisplay{}
	dying := &fakeDisplay{dead: true}
	s.AddDisplay(alive)
	s.AddDisplay(dying)
	s.Run()
	pty.emit("x")
	waitFor(t, "live display update", func() bool {
		alive.mu.Lock()
		defer alive.mu.Unlock()
		return len(alive.snaps) > 0
	})
	s.mu.Lock()
	n := len(s.displays)
	s.mu.Unlock()
	if n != 1 {
		t.Fatalf("displays = %d, want the dead one removed", n)
	}
	pty.exit(0)
}

func TestCloseSignals(t *testing.T) {
	s, pty := newTestSession(t)
	s.Run()
	s.CloseNormal()
	s.CloseForce()
	pty.mu.Lock()
	got := append([]syscall.Signal(nil), pty.killed...)
	pty.mu.Unlock()
	if len(got) != 2 || got[0] != syscall.SIGHUP || got[1] != syscall.SIGKILL {
		t.Fatalf("signals = %v, want [SIGHUP SIGKILL]", got)
	}
	pty.exit(0)
}

func TestResizeValidation(t *testing.T) {
	s, _ := newTestSession(t)
	err := s.Resize(0, 80)
	if !errors.Is(err, termcore.ErrInvalidParameter) {
		t.Fatalf("err = %v, want ErrInvalidParameter", err)
	}
	if s.primary.Rows() != 10 {
		t.Fatalf("failed resize changed state")
	}
	if err := s.Resize(30, 100); err != nil {
		t.Fatalf("valid resize: %v", err)
	}
	if s.primary.Rows() != 30 || s.alt.Cols() != 100 {
		t.Fatalf("resize not applied to both screens")
	}
}

func TestEnvironment(t *testing.T) {
	s, _ := newTestSession(t)
	env := s.Environment(0, 15)
	var hasTerm, hasFgBg, hasID bool
	for _, e := range env {
		switch {
		case e == "TERM=xterm":
			hasTerm = true
		case e == "COLORFGBG=0;15":
			hasFgBg = true
		case strings.HasPrefix(e, "SHELL_SESSION_ID="):
			id := strings.TrimPrefix(e, "SHELL_SESSION_ID=")
			hasID = len(id) == 32 && !strings.ContainsAny(id, "-{}")
		}
	}
	if !hasTerm || !hasFgBg || !hasID {
		t.Fatalf("environment incomplete: %v", env)
	}
}

func TestPasteBracketing(t *testing.T) {
	s, pty := newTestSession(t)
	s.Run()
	pty.emit("\x1b[?2004h")
	waitFor(t, "bracketed paste mode", func() bool { return s.Decoder().BracketedPaste() })
	s.Paste("data")
	waitFor(t, "bracketed bytes", func() bool {
		return pty.Written() == "\x1b[200~data\x1b[201~"
	})
	pty.exit(0)
}

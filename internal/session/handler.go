package session

import (
	"strings"

	"github.com/konsolecore/termcore/internal/decode"
)

// decoderHandler adapts a Session to the decode.Handler interface. Its
// methods run inside decoder.Write while the session lock is held, so
// they only mutate session state and enqueue observer callbacks; feed
// drains the queue after the lock is released. Responses to the PTY are
// the one exception: they are written synchronously so response bytes
// are not reordered around subsequent tokens in the same read.
type decoderHandler Session

var _ decode.Handler = (*decoderHandler)(nil)

func (h *decoderHandler) session() *Session { return (*Session)(h) }

func (h *decoderHandler) WriteResponse(p []byte) {
	s := h.session()
	if s.pty != nil {
		s.pty.Write(p)
	}
}

func (h *decoderHandler) TitleChanged(title string) {
	s := h.session()
	s.programTitle = title
	s.queueTitleUpdateLocked()
}

func (h *decoderHandler) IconNameChanged(name string) {
	s := h.session()
	s.iconName = name
}

func (h *decoderHandler) WorkingDirectoryChanged(url string) {
	s := h.session()
	if cb := s.OnWorkingDirectory; cb != nil {
		s.enqueue(func() { cb(url) })
	}
}

func (h *decoderHandler) PaletteColorChanged(index int, spec string) {
	// Palette updates land on the Core-owned color table via the host;
	// the core records nothing per-session for them.
	_ = index
	_ = spec
}

func (h *decoderHandler) ProfileChangeRequested(props string) {
	s := h.session()
	if cb := s.OnProfileChange; cb != nil {
		s.enqueue(func() { cb(props) })
	}
}

func (h *decoderHandler) Bell() {
	s := h.session()
	s.setNotificationLocked(NotifyBell, true)
	msg := "Bell in session '" + s.effectiveTitleLocked() + "'"
	targets := append([]Display(nil), s.displays...)
	s.enqueue(func() {
		for _, d := range targets {
			d.Bell(msg)
		}
	})
}

func (h *decoderHandler) DecodingError(detail string) {
	// Decoding errors stay in the decoder's diagnostic ring and are
	// never surfaced to the user.
	_ = detail
}

// enqueue defers an observer callback until the session lock is released.
func (s *Session) enqueue(f func()) {
	s.pending = append(s.pending, f)
}

// drainPending runs queued callbacks; called without the lock held.
func (s *Session) drainPending() {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, f := range pending {
		f()
	}
}

// queueTitleUpdateLocked recomputes the effective title and enqueues the
// change notification if it differs from the last one delivered.
func (s *Session) queueTitleUpdateLocked() {
	title := s.effectiveTitleLocked()
	if title == s.lastTitle {
		return
	}
	s.lastTitle = title
	if cb := s.OnTitleChanged; cb != nil {
		s.enqueue(func() { cb(title) })
	}
}

// effectiveTitleLocked composes the four title inputs: the
// tab-format template expands %w to the program-set title, %n to the
// foreground process name and %u to the user-set name; a user-set name
// wins outright when the template does not reference it.
func (s *Session) effectiveTitleLocked() string {
	if s.userTitle != "" && !strings.Contains(s.cfg.TabTitleFormat, "%u") {
		return s.userTitle
	}
	r := strings.NewReplacer(
		"%w", s.programTitle,
		"%n", s.fgProcess,
		"%u", s.userTitle,
	)
	title := r.Replace(s.cfg.TabTitleFormat)
	if strings.TrimSpace(title) == "" {
		title = s.cfg.Program
	}
	return title
}

// SetUserTitle records a user-chosen session name (one of the four title
// inputs) and recomputes the effective title.
func (s *Session) SetUserTitle(name string) {
	s.mu.Lock()
	s.userTitle = name
	s.queueTitleUpdateLocked()
	s.mu.Unlock()
	s.drainPending()
}

// SetForegroundProcess records the name of the child's current foreground
// process, supplied by the host's process inspection.
func (s *Session) SetForegroundProcess(name string) {
	s.mu.Lock()
	s.fgProcess = name
	s.queueTitleUpdateLocked()
	s.mu.Unlock()
	s.drainPending()
}

// Title returns the current effective title.
func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.effectiveTitleLocked()
}

// IconName returns the program-set icon name (OSC 0/1/32).
func (s *Session) IconName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.iconName
}

// Package decode implements a VT100/VT102/xterm byte-stream tokenizer
// and dispatcher. It holds the two Screens (primary and alternate), the
// terminal-mode vector that is not screen-local, and charset and
// saved-cursor bookkeeping, and turns decoded tokens into Screen
// mutations, PTY responses, or Handler callbacks (OSC-driven
// session-attribute updates, bell, decoding-error diagnostics).
//
// The tokenizer is a small state machine: a reassignable state function
// consumes one rune at a time, with a per-sequence accumulator for CSI
// parameters and OSC bodies.
package decode

// Mode is the fixed vector of boolean terminal flags the Decoder owns
// directly, as opposed to the Screen-local modes in
// termcore.ScreenModes: the five screen-local ones (origin/wrap/insert/
// reverse video/newline) live on termcore.Screen instead so
// Screen mutation logic need not reach back into the Decoder.
type Mode uint32

const (
	ModeAltScreen Mode = 1 << iota
	ModeCursorVisible
	ModeColumn132
	ModeAppCursorKeys
	ModeAppKeypad
	ModeBracketedPaste
	ModeMouseButtonPress
	ModeMouseHighlight
	ModeMouseButtonEvent
	ModeMouseAnyEvent
	ModeMouseUTF8
	ModeMouseSGR
	ModeMouseURXVT
	ModeFocusReporting
)

// modeVector tracks the live Mode bits plus the "saved" shadow slot
// used by the XTSAVE/XTRESTORE escape sequences.
type modeVector struct {
	bits  Mode
	saved Mode
}

func (m *modeVector) has(f Mode) bool { return m.bits&f != 0 }

func (m *modeVector) set(f Mode, on bool) {
	if on {
		m.bits |= f
	} else {
		m.bits &^= f
	}
}

func (m *modeVector) save() { m.saved = m.bits }

func (m *modeVector) restore() { m.bits = m.saved }

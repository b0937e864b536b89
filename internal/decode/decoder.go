package decode

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/konsolecore/termcore"
)

// Handler receives everything a decoded token produces besides a direct
// Screen mutation: PTY responses, OSC-driven session-attribute changes,
// bell notifications, and decoding-error diagnostics.
type Handler interface {
	WriteResponse(p []byte)
	TitleChanged(title string)
	IconNameChanged(name string)
	WorkingDirectoryChanged(url string)
	PaletteColorChanged(index int, spec string)
	ProfileChangeRequested(props string)
	Bell()
	DecodingError(detail string)
}

// errRingSize caps the in-memory diagnostic ring at the last 64 events.
const errRingSize = 64

// Decoder is a deterministic tokenizer plus dispatcher holding the
// primary and alternate Screens, the mode vector that is not
// screen-local, charset state, and saved-cursor bookkeeping for the
// implicit save/restore that alt-screen switches perform.
type Decoder struct {
	primary *termcore.Screen
	alt     *termcore.Screen
	active  *termcore.Screen

	modes   modeVector
	handler Handler

	state func(r rune)
	csi   csiAccumulator
	osc   oscAccumulator

	pendingCharsetIndex termcore.CharsetIndex

	vt52           bool
	vt52PendingRow int

	errRing []string
	decBuf  []byte

	// altSavedCursorValid records whether the primary screen's cursor was
	// saved on alt-screen entry, so a disable without a matching enable
	// (shouldn't happen, but inputs are adversarial) is a no-op restore.
	altSavedCursorValid bool
}

// New returns a Decoder dispatching into primary and alt (sized
// identically; the caller owns their construction, typically via
// termcore.NewScreen with a scrollback-backed primary and a bare
// alternate).
func New(primary, alt *termcore.Screen, h Handler) *Decoder {
	d := &Decoder{primary: primary, alt: alt, active: primary, handler: h}
	d.modes.set(ModeCursorVisible, true)
	d.state = d.ground
	return d
}

// Active returns whichever Screen currently receives printable output.
func (d *Decoder) Active() *termcore.Screen { return d.active }

// Primary returns the primary (scrollback-backed) Screen.
func (d *Decoder) Primary() *termcore.Screen { return d.primary }

// Alternate returns the alternate Screen.
func (d *Decoder) Alternate() *termcore.Screen { return d.alt }

// CursorVisible reports the Decoder-level DECTCEM state.
func (d *Decoder) CursorVisible() bool { return d.modes.has(ModeCursorVisible) }

// AltScreenActive reports whether the alternate screen is currently shown.
func (d *Decoder) AltScreenActive() bool { return d.modes.has(ModeAltScreen) }

// AppCursorKeys and AppKeypad expose the corresponding mode bits to the
// key translator's state snapshot.
func (d *Decoder) AppCursorKeys() bool { return d.modes.has(ModeAppCursorKeys) }
func (d *Decoder) AppKeypad() bool     { return d.modes.has(ModeAppKeypad) }

// BracketedPaste reports whether bracketed-paste mode (2004) is active.
func (d *Decoder) BracketedPaste() bool { return d.modes.has(ModeBracketedPaste) }

// Errors returns the diagnostic ring of the most recent decoding errors,
// oldest first. These are never surfaced to the user.
func (d *Decoder) Errors() []string {
	out := make([]string, len(d.errRing))
	copy(out, d.errRing)
	return out
}

func (d *Decoder) reportError(detail string) {
	d.errRing = append(d.errRing, detail)
	if len(d.errRing) > errRingSize {
		d.errRing = d.errRing[len(d.errRing)-errRingSize:]
	}
	if d.handler != nil {
		d.handler.DecodingError(detail)
	}
}

func (d *Decoder) writeResponse(s string) {
	if d.handler != nil {
		d.handler.WriteResponse([]byte(s))
	}
}

// Write feeds a chunk of PTY output into the decoder. A partial
// multi-byte UTF-8 sequence at the end of a chunk is buffered and
// completed by the next call.
func (d *Decoder) Write(p []byte) (int, error) {
	buf := p
	if len(d.decBuf) > 0 {
		buf = append(append([]byte(nil), d.decBuf...), p...)
	}
	i := 0
	for i < len(buf) {
		if !utf8.FullRune(buf[i:]) && len(buf)-i < utf8.UTFMax {
			break
		}
		r, size := utf8.DecodeRune(buf[i:])
		d.put(r)
		i += size
	}
	if i < len(buf) {
		d.decBuf = append(d.decBuf[:0], buf[i:]...)
	} else {
		d.decBuf = d.decBuf[:0]
	}
	return len(p), nil
}

func (d *Decoder) put(r rune) { d.state(r) }

// Reset performs a full terminal reset (RIS / ESC c): both Screens clear,
// charsets and modes return to defaults, margins reset, cursor style
// resets, and only the text codec and 132-column policy survive. It is
// idempotent: reset(reset(S)) == reset(S).
func (d *Decoder) Reset() {
	d.fullReset()
}

func (d *Decoder) fullReset() {
	d.modes = modeVector{}
	d.modes.set(ModeCursorVisible, true)
	d.active = d.primary
	for _, s := range []*termcore.Screen{d.primary, d.alt} {
		s.EraseInDisplay(termcore.ClearAll)
		s.MoveCursor(0, 0)
		s.SetCursorStyle(termcore.CursorStyleBlinkingBlock)
		s.SetDefaultRendition()
		s.SetMode(termcore.ModeOrigin, false)
		s.SetMode(termcore.ModeAutoWrap, true)
		s.SetMode(termcore.ModeInsert, false)
		s.SetMode(termcore.ModeNewLine, false)
		top, bottom := 0, s.Rows()-1
		s.SetMargins(top, bottom)
		s.SetCharset(termcore.CharsetIndexG0, termcore.CharsetASCII)
		s.SetCharset(termcore.CharsetIndexG1, termcore.CharsetASCII)
		s.SetCharset(termcore.CharsetIndexG2, termcore.CharsetASCII)
		s.SetCharset(termcore.CharsetIndexG3, termcore.CharsetASCII)
		s.SelectCharset(termcore.CharsetIndexG0)
		s.ClearSelection()
	}
	d.csi.reset()
	d.osc.reset()
	d.vt52 = false
	d.altSavedCursorValid = false
	d.state = d.ground
}

// --- tokenizer states ---

// VT52Active reports whether the legacy VT52 compatibility mode is on
// (entered via DECANM reset, left via ESC <).
func (d *Decoder) VT52Active() bool { return d.vt52 }

func (d *Decoder) ground(r rune) {
	switch {
	case r == 0x1b:
		if d.vt52 {
			d.state = d.escVT52
		} else {
			d.state = d.esc
		}
	case r < 0x20:
		d.executeC0(r)
	default:
		d.active.PutChar(r)
	}
}

func (d *Decoder) executeC0(r rune) {
	switch r {
	case 0x07: // BEL
		if d.handler != nil {
			d.handler.Bell()
		}
	case 0x08: // BS
		d.active.CursorLeft(1)
	case 0x09: // HT
		d.active.Tab()
	case 0x0a, 0x0b, 0x0c: // LF, VT, FF
		d.active.NewLine()
	case 0x0d: // CR
		d.active.Return()
	case 0x0e: // SO -> G1
		d.active.SelectCharset(termcore.CharsetIndexG1)
	case 0x0f: // SI -> G0
		d.active.SelectCharset(termcore.CharsetIndexG0)
	default:
		// NUL, DC1-4 and the rest are intentionally ignored.
	}
}

func (d *Decoder) esc(r rune) {
	switch r {
	case '[':
		d.csi.reset()
		d.state = d.csiState
	case ']':
		d.osc.reset()
		d.state = d.oscState
	case 'P', '^', '_', 'X':
		d.state = d.dcsSkip
	case '(', ')', '*', '+':
		d.pendingCharsetIndex = charsetIndexForIntro(r)
		d.state = d.charsetFinal
	case '#':
		d.state = d.hash
	case '7':
		d.active.SaveCursor()
		d.state = d.ground
	case '8':
		d.active.RestoreCursor()
		d.state = d.ground
	case '=':
		d.modes.set(ModeAppKeypad, true)
		d.state = d.ground
	case '>':
		d.modes.set(ModeAppKeypad, false)
		d.state = d.ground
	case 'D':
		d.active.Index()
		d.state = d.ground
	case 'E':
		d.active.NewLine()
		d.state = d.ground
	case 'H':
		d.active.SetTabStop(d.active.Cursor().Col)
		d.state = d.ground
	case 'M':
		d.active.ReverseIndex()
		d.state = d.ground
	case 'O':
		d.state = d.ss3
	case 'c':
		d.fullReset()
	default:
		if r == 0x18 || r == 0x1a { // CAN, SUB abort the sequence
			d.state = d.ground
			return
		}
		if r < 0x20 {
			d.executeC0(r)
			return
		}
		d.reportError("unknown ESC " + string(r))
		d.state = d.ground
	}
}

func (d *Decoder) csiState(r rune) {
	switch {
	case r == 0x18 || r == 0x1a: // CAN, SUB
		d.csi.reset()
		d.state = d.ground
	case r == 0x1b:
		d.csi.reset()
		d.state = d.esc
	case r < 0x20:
		d.executeC0(r)
	default:
		if r > 0xff {
			d.reportError("non-ASCII byte in CSI sequence")
			d.csi.reset()
			d.state = d.ground
			return
		}
		done := d.csi.put(byte(r))
		if d.csi.overflowed {
			d.reportError("CSI parameter overflow")
			d.csi.reset()
			d.state = d.ground
			return
		}
		if done {
			d.dispatchCSI()
			d.state = d.ground
		}
	}
}

func (d *Decoder) oscState(r rune) {
	switch r {
	case 0x07:
		d.dispatchOSC()
		d.state = d.ground
	case 0x1b:
		d.state = d.oscEsc
	case 0x18, 0x1a:
		d.osc.reset()
		d.state = d.ground
	default:
		d.osc.buf = utf8.AppendRune(d.osc.buf, r)
		if len(d.osc.buf) > 1<<16 {
			d.reportError("OSC body overflow")
			d.osc.reset()
			d.state = d.ground
		}
	}
}

func (d *Decoder) oscEsc(r rune) {
	if r == '\\' {
		d.dispatchOSC()
		d.state = d.ground
		return
	}
	d.dispatchOSC()
	d.esc(r)
}

func (d *Decoder) dcsSkip(r rune) {
	switch r {
	case 0x1b:
		d.state = d.dcsSkipEsc
	case 0x18, 0x1a:
		d.state = d.ground
	default:
		// DCS bodies are consumed and discarded.
	}
}

func (d *Decoder) dcsSkipEsc(r rune) {
	if r == '\\' {
		d.state = d.ground
		return
	}
	d.esc(r)
}

// ss3 handles ESC O finals: these are the sequences application-mode
// keys produce, and echoing them back (a program replaying its own
// input) must move the cursor the way the CSI equivalents do.
func (d *Decoder) ss3(r rune) {
	d.state = d.ground
	switch r {
	case 'A':
		d.active.CursorUp(1)
	case 'B':
		d.active.CursorDown(1)
	case 'C':
		d.active.CursorRight(1)
	case 'D':
		d.active.CursorLeft(1)
	case 'H':
		d.active.MoveCursor(0, 0)
	case 'F':
		d.active.MoveCursor(d.active.Rows()-1, 0)
	case 'P', 'Q', 'R', 'S':
		// Function-key echoes carry no screen semantics.
	default:
		if r < 0x20 {
			d.executeC0(r)
			return
		}
		d.reportError("unknown SS3 " + string(r))
	}
}

// escVT52 handles the small VT52 escape repertoire: only this subset of
// transitions is enabled while ANSI mode is off.
func (d *Decoder) escVT52(r rune) {
	d.state = d.ground
	switch r {
	case 'A':
		d.active.CursorUp(1)
	case 'B':
		d.active.CursorDown(1)
	case 'C':
		d.active.CursorRight(1)
	case 'D':
		d.active.CursorLeft(1)
	case 'F':
		d.active.SetCharset(termcore.CharsetIndexG0, termcore.CharsetLineDrawing)
	case 'G':
		d.active.SetCharset(termcore.CharsetIndexG0, termcore.CharsetASCII)
	case 'H':
		d.active.MoveCursor(0, 0)
	case 'I':
		d.active.ReverseIndex()
	case 'J':
		d.active.EraseInDisplay(termcore.ClearToEnd)
	case 'K':
		d.active.EraseInLine(termcore.ClearToEnd)
	case 'Y':
		d.state = d.vt52Row
	case 'Z':
		d.writeResponse("\x1b/Z")
	case '=':
		d.modes.set(ModeAppKeypad, true)
	case '>':
		d.modes.set(ModeAppKeypad, false)
	case '<':
		d.vt52 = false
	default:
		if r < 0x20 {
			d.executeC0(r)
			return
		}
		d.reportError("unknown VT52 ESC " + string(r))
	}
}

// vt52Row and vt52Col consume the two position bytes of ESC Y: each is
// the coordinate plus 0x20.
func (d *Decoder) vt52Row(r rune) {
	d.vt52PendingRow = int(r) - 0x20
	d.state = d.vt52Col
}

func (d *Decoder) vt52Col(r rune) {
	d.active.MoveCursor(d.vt52PendingRow, int(r)-0x20)
	d.state = d.ground
}

func (d *Decoder) charsetFinal(r rune) {
	d.active.SetCharset(d.pendingCharsetIndex, charsetFromFinal(r))
	d.state = d.ground
}

func (d *Decoder) hash(r rune) {
	if r == '8' {
		d.active.FillWithE()
	}
	d.state = d.ground
}

func charsetIndexForIntro(b rune) termcore.CharsetIndex {
	switch b {
	case '(':
		return termcore.CharsetIndexG0
	case ')':
		return termcore.CharsetIndexG1
	case '*':
		return termcore.CharsetIndexG2
	default:
		return termcore.CharsetIndexG3
	}
}

func charsetFromFinal(b rune) termcore.Charset {
	switch b {
	case '0':
		return termcore.CharsetLineDrawing
	case 'A':
		return termcore.CharsetUK
	default:
		return termcore.CharsetASCII
	}
}

// --- OSC dispatch ---

type oscAccumulator struct {
	buf []byte
}

func (o *oscAccumulator) reset() { o.buf = o.buf[:0] }

// dispatchOSC handles the recognised OSC session-attribute numbers:
// 0/1/2 (title/icon), 7 (cwd), 10/11 (fg/bg color), and the
// Konsole-specific 30/32/50 (session name/icon/profile-change).
func (d *Decoder) dispatchOSC() {
	body := string(d.osc.buf)
	d.osc.reset()

	semi := strings.IndexByte(body, ';')
	var ps, pt string
	if semi < 0 {
		ps, pt = body, ""
	} else {
		ps, pt = body[:semi], body[semi+1:]
	}
	n, err := strconv.Atoi(ps)
	if err != nil {
		d.reportError("malformed OSC Ps '" + ps + "'")
		return
	}
	if d.handler == nil {
		return
	}
	switch n {
	case 0:
		d.handler.TitleChanged(pt)
		d.handler.IconNameChanged(pt)
	case 1:
		d.handler.IconNameChanged(pt)
	case 2:
		d.handler.TitleChanged(pt)
	case 7:
		d.handler.WorkingDirectoryChanged(pt)
	case 10:
		d.handler.PaletteColorChanged(-1, pt) // -1: foreground
	case 11:
		d.handler.PaletteColorChanged(-2, pt) // -2: background
	case 30:
		d.handler.TitleChanged(pt)
	case 32:
		d.handler.IconNameChanged(pt)
	case 50:
		d.handler.ProfileChangeRequested(pt)
	default:
		// Other OSC numbers are intentionally ignored.
	}
}

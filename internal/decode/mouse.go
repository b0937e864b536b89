package decode

import (
	"fmt"
	"unicode/utf8"
)

// MouseEventKind distinguishes what the display observed.
type MouseEventKind int

const (
	MousePress MouseEventKind = iota
	MouseRelease
	MouseMove
)

// MouseReportWanted reports whether the current mode vector asks for this
// kind of event at all: press-only tracking drops moves, button-event
// tracking drops moves with no button held, any-event tracking takes
// everything.
func (d *Decoder) MouseReportWanted(button int, kind MouseEventKind) bool {
	switch {
	case d.modes.has(ModeMouseAnyEvent):
		return true
	case d.modes.has(ModeMouseButtonEvent):
		return kind != MouseMove || button >= 0
	case d.modes.has(ModeMouseButtonPress) || d.modes.has(ModeMouseHighlight):
		return kind != MouseMove
	default:
		return false
	}
}

// EncodeMouse renders a mouse event into the escape sequence the current
// mouse encoding mode selects (SGR, urxvt, UTF-8, or legacy X10), or nil
// when no tracking mode wants the event. button is 0/1/2 for
// left/middle/right, 64/65 for wheel up/down, -1 for "no button" moves;
// col and row are 0-based.
func (d *Decoder) EncodeMouse(button, col, row int, kind MouseEventKind) []byte {
	if !d.MouseReportWanted(button, kind) {
		return nil
	}
	cb := button
	if cb < 0 {
		cb = 3 // "no button" in the X10 encoding
	}
	if kind == MouseMove {
		cb += 32
	}

	switch {
	case d.modes.has(ModeMouseSGR):
		final := byte('M')
		if kind == MouseRelease {
			final = 'm'
		}
		return []byte(fmt.Sprintf("\x1b[<%d;%d;%d%c", cb, col+1, row+1, final))
	case d.modes.has(ModeMouseURXVT):
		if kind == MouseRelease {
			cb = 3
		}
		return []byte(fmt.Sprintf("\x1b[%d;%d;%dM", cb+32, col+1, row+1))
	case d.modes.has(ModeMouseUTF8):
		if kind == MouseRelease {
			cb = 3
		}
		out := []byte{0x1b, '[', 'M'}
		out = utf8.AppendRune(out, rune(cb+32))
		out = utf8.AppendRune(out, rune(col+1+32))
		out = utf8.AppendRune(out, rune(row+1+32))
		return out
	default:
		if kind == MouseRelease {
			cb = 3
		}
		// X10 encoding caps coordinates at 223 (255-32).
		c, r := col+1+32, row+1+32
		if c > 255 {
			c = 255
		}
		if r > 255 {
			r = 255
		}
		return []byte{0x1b, '[', 'M', byte(cb + 32), byte(c), byte(r)}
	}
}

// EncodeFocus renders a focus-in/out report when focus reporting (1004)
// is enabled, else nil.
func (d *Decoder) EncodeFocus(gained bool) []byte {
	if !d.modes.has(ModeFocusReporting) {
		return nil
	}
	if gained {
		return []byte("\x1b[I")
	}
	return []byte("\x1b[O")
}

// BracketPaste wraps pasted text in the bracketed-paste markers when mode
// 2004 is active, else returns the text unchanged.
func (d *Decoder) BracketPaste(text []byte) []byte {
	if !d.modes.has(ModeBracketedPaste) {
		return text
	}
	out := make([]byte, 0, len(text)+12)
	out = append(out, []byte("\x1b[200~")...)
	out = append(out, text...)
	out = append(out, []byte("\x1b[201~")...)
	return out
}

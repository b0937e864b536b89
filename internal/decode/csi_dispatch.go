package decode

import (
	"fmt"

	"github.com/konsolecore/termcore"
)

// dispatchCSI routes a completed control sequence to its handler:
// cursor movement, margins, modes, alternate screen, bracketed paste,
// mouse tracking, focus reporting, cursor style, and device/status
// reports.
func (d *Decoder) dispatchCSI() {
	c := &d.csi
	s := d.active

	if c.prefix == '?' {
		d.dispatchPrivateCSI()
		return
	}
	if c.prefix == '>' {
		// DA2: report terminal identity (vt220-class, firmware 1.0).
		if c.final == 'c' && c.arg(0, 0) == 0 {
			d.writeResponse("\x1b[>1;10;0c")
		}
		return
	}
	if c.prefix == '!' {
		// DECSTR: soft reset, same effect as RIS here since the core
		// keeps no printer/keyboard state that would distinguish them.
		if c.final == 'p' {
			d.fullReset()
		}
		return
	}
	if c.prefix != 0 {
		d.reportError(fmt.Sprintf("unhandled CSI prefix %q", c.prefix))
		return
	}

	switch c.final {
	case '@': // ICH
		s.InsertBlanks(c.argOrDefault1(0))
	case 'A': // CUU
		s.CursorUp(c.argOrDefault1(0))
	case 'B', 'e': // CUD, VPR
		s.CursorDown(c.argOrDefault1(0))
	case 'C', 'a': // CUF, HPR
		s.CursorRight(c.argOrDefault1(0))
	case 'D': // CUB
		s.CursorLeft(c.argOrDefault1(0))
	case 'E': // CNL
		s.CursorDown(c.argOrDefault1(0))
		s.Return()
	case 'F': // CPL
		s.CursorUp(c.argOrDefault1(0))
		s.Return()
	case 'G', '`': // CHA, HPA
		row := s.Cursor().Row
		s.MoveCursor(row, c.argOrDefault1(0)-1)
	case 'H', 'f': // CUP, HVP
		s.MoveCursor(c.argOrDefault1(0)-1, c.argOrDefault1(1)-1)
	case 'I': // CHT
		for i, n := 0, c.argOrDefault1(0); i < n; i++ {
			s.Tab()
		}
	case 'J': // ED
		s.EraseInDisplay(clearRegion(c.arg(0, 0)))
	case 'K': // EL
		s.EraseInLine(clearRegion(c.arg(0, 0)))
	case 'L': // IL
		s.InsertLines(c.argOrDefault1(0))
	case 'M': // DL
		s.DeleteLines(c.argOrDefault1(0))
	case 'P': // DCH
		s.DeleteChars(c.argOrDefault1(0))
	case 'S': // SU
		s.ScrollUp(c.argOrDefault1(0))
	case 'T': // SD
		s.ScrollDown(c.argOrDefault1(0))
	case 'X': // ECH
		s.EraseChars(c.argOrDefault1(0))
	case 'Z': // CBT
		for i, n := 0, c.argOrDefault1(0); i < n; i++ {
			s.BackTab()
		}
	case 'c': // DA - primary device attributes
		if c.arg(0, 0) == 0 {
			d.writeResponse("\x1b[?62;1;2;6c")
		}
	case 'd': // VPA
		col := s.Cursor().Col
		s.MoveCursor(c.argOrDefault1(0)-1, col)
	case 'g': // TBC
		switch c.arg(0, 0) {
		case 0:
			s.ClearTabStop(s.Cursor().Col)
		case 3:
			s.ClearAllTabStops()
		}
	case 'h': // SM
		d.setAnsiModes(c.allArgs(), true)
	case 'l': // RM
		d.setAnsiModes(c.allArgs(), false)
	case 'm': // SGR
		d.setAttr(c.allArgs())
	case 'n':
		switch c.arg(0, 0) {
		case 5: // DSR
			d.writeResponse("\x1b[0n")
		case 6: // CPR
			cur := s.Cursor()
			d.writeResponse(fmt.Sprintf("\x1b[%d;%dR", cur.Row+1, cur.Col+1))
		}
	case 'q': // DECSCUSR when intermediate is space
		if c.intermediate == ' ' {
			s.SetCursorStyle(cursorStyleFromParam(c.arg(0, 1)))
		}
	case 'r': // DECSTBM
		top := c.arg(0, 1) - 1
		bottom := c.arg(1, s.Rows()) - 1
		s.SetMargins(top, bottom)
	case 's': // DECSC (ANSI.SYS)
		s.SaveCursor()
	case 'u': // DECRC (ANSI.SYS)
		s.RestoreCursor()
	default:
		d.reportError(fmt.Sprintf("unhandled CSI final %q", c.final))
	}
}

func clearRegion(n int) termcore.ClearRegion {
	switch n {
	case 1:
		return termcore.ClearToStart
	case 2:
		return termcore.ClearAll
	default:
		return termcore.ClearToEnd
	}
}

func cursorStyleFromParam(n int) termcore.CursorStyle {
	switch n {
	case 0, 1:
		return termcore.CursorStyleBlinkingBlock
	case 2:
		return termcore.CursorStyleSteadyBlock
	case 3:
		return termcore.CursorStyleBlinkingUnderline
	case 4:
		return termcore.CursorStyleSteadyUnderline
	case 5:
		return termcore.CursorStyleBlinkingBar
	case 6:
		return termcore.CursorStyleSteadyBar
	default:
		return termcore.CursorStyleBlinkingBlock
	}
}

// setAnsiModes implements SM/RM (no private prefix): IRM (insert, 4),
// LNM (newline, 20); unrecognised numbers are ignored.
func (d *Decoder) setAnsiModes(args []int, set bool) {
	s := d.active
	for _, a := range args {
		switch a {
		case 4:
			s.SetMode(termcore.ModeInsert, set)
		case 20:
			s.SetMode(termcore.ModeNewLine, set)
		}
	}
}

// dispatchPrivateCSI implements DECSET/DECRST (CSI ? Ps h/l): origin,
// wrap, alt-screen, mouse tracking, bracketed paste, focus reporting,
// and the 132-column / reverse-video / cursor-visibility toggles.
func (d *Decoder) dispatchPrivateCSI() {
	c := &d.csi
	switch c.final {
	case 's': // XTSAVE: snapshot the mode vector's shadow slot
		d.modes.save()
		return
	case 'r': // XTRESTORE
		d.modes.restore()
		return
	case 'h', 'l':
	default:
		d.reportError(fmt.Sprintf("unhandled private CSI final %q", c.final))
		return
	}
	set := c.final == 'h'
	for _, a := range c.allArgs() {
		d.setPrivateMode(a, set)
	}
}

func (d *Decoder) setPrivateMode(a int, set bool) {
	s := d.active
	switch a {
	case 1: // DECCKM
		d.modes.set(ModeAppCursorKeys, set)
	case 2: // DECANM: resetting it drops into VT52 compatibility
		if !set {
			d.vt52 = true
		}
	case 3: // DECCOLM - 132/80 column switch
		d.modes.set(ModeColumn132, set)
	case 5: // DECSCNM - reverse video
		s.SetMode(termcore.ModeReverseVideo, set)
	case 6: // DECOM - origin
		s.SetMode(termcore.ModeOrigin, set)
		s.MoveCursor(0, 0)
	case 7: // DECAWM - auto wrap
		s.SetMode(termcore.ModeAutoWrap, set)
	case 9: // X10 mouse
		d.modes.set(ModeMouseButtonPress|ModeMouseHighlight|ModeMouseButtonEvent|ModeMouseAnyEvent, false)
		d.modes.set(ModeMouseButtonPress, set)
	case 25: // DECTCEM
		d.modes.set(ModeCursorVisible, set)
		s.SetCursorVisible(set)
	case 1000: // report button press
		d.modes.set(ModeMouseButtonPress|ModeMouseHighlight|ModeMouseButtonEvent|ModeMouseAnyEvent, false)
		d.modes.set(ModeMouseButtonPress, set)
	case 1001: // highlight mouse tracking
		d.modes.set(ModeMouseHighlight, set)
	case 1002: // button-event tracking
		d.modes.set(ModeMouseButtonPress|ModeMouseHighlight|ModeMouseButtonEvent|ModeMouseAnyEvent, false)
		d.modes.set(ModeMouseButtonEvent, set)
	case 1003: // any-event tracking
		d.modes.set(ModeMouseButtonPress|ModeMouseHighlight|ModeMouseButtonEvent|ModeMouseAnyEvent, false)
		d.modes.set(ModeMouseAnyEvent, set)
	case 1004: // focus reporting
		d.modes.set(ModeFocusReporting, set)
	case 1005: // utf8 mouse encoding
		d.modes.set(ModeMouseUTF8, set)
	case 1006: // SGR mouse encoding
		d.modes.set(ModeMouseSGR, set)
	case 1015: // urxvt mouse encoding
		d.modes.set(ModeMouseURXVT, set)
	case 1047: // alt screen, no cursor save
		d.setAltScreen(set, false)
	case 1048: // save/restore cursor only
		if set {
			s.SaveCursor()
		} else {
			s.RestoreCursor()
		}
	case 1049: // alt screen + save/restore cursor
		d.setAltScreen(set, true)
	case 2004: // bracketed paste
		d.modes.set(ModeBracketedPaste, set)
	default:
		// Unrecognised private modes (soft-scroll, LEDs, autorepeat, ...)
		// are intentionally ignored.
	}
}

// setAltScreen implements DECSET/DECRST 1047/1049: switching to the
// alternate screen saves cursor+charset state (when withCursor) and
// clears no primary-screen content; switching back restores it exactly.
// No primary-screen history entries are produced while alt is active
// because scroll-outs on the alt Screen target its own (nil) history.
func (d *Decoder) setAltScreen(enable, withCursor bool) {
	if enable == d.modes.has(ModeAltScreen) {
		return
	}
	if enable {
		if withCursor {
			d.primary.SaveCursor()
			d.altSavedCursorValid = true
		}
		d.active = d.alt
		d.alt.EraseInDisplay(termcore.ClearAll)
		d.alt.MoveCursor(0, 0)
		d.modes.set(ModeAltScreen, true)
	} else {
		d.active = d.primary
		if withCursor && d.altSavedCursorValid {
			d.primary.RestoreCursor()
			d.altSavedCursorValid = false
		}
		d.modes.set(ModeAltScreen, false)
	}
}

// setAttr implements SGR: it walks the parameter list, recognising the
// 38/48 ";2;r;g;b" and ";5;n" extended-color forms inline among
// ordinary attribute codes.
func (d *Decoder) setAttr(attrs []int) {
	s := d.active
	if len(attrs) == 0 {
		attrs = []int{0}
	}
	for i := 0; i < len(attrs); i++ {
		a := attrs[i]
		switch {
		case a == 0:
			s.SetDefaultRendition()
		case a == 1:
			s.SetRendition(termcore.RenditionBold)
		case a == 2:
			s.SetRendition(termcore.RenditionFaint)
		case a == 3:
			s.SetRendition(termcore.RenditionItalic)
		case a == 4:
			s.SetRendition(termcore.RenditionUnderline)
		case a == 5 || a == 6:
			s.SetRendition(termcore.RenditionBlink)
		case a == 7:
			s.SetRendition(termcore.RenditionReverse)
		case a == 8:
			s.SetRendition(termcore.RenditionConceal)
		case a == 9:
			s.SetRendition(termcore.RenditionStrikeout)
		case a == 21:
			s.ResetRendition(termcore.RenditionBold)
		case a == 22:
			s.ResetRendition(termcore.RenditionBold | termcore.RenditionFaint)
		case a == 23:
			s.ResetRendition(termcore.RenditionItalic)
		case a == 24:
			s.ResetRendition(termcore.RenditionUnderline)
		case a == 25:
			s.ResetRendition(termcore.RenditionBlink)
		case a == 27:
			s.ResetRendition(termcore.RenditionReverse)
		case a == 28:
			s.ResetRendition(termcore.RenditionConceal)
		case a == 29:
			s.ResetRendition(termcore.RenditionStrikeout)
		case a == 53:
			s.SetRendition(termcore.RenditionOverline)
		case a == 55:
			s.ResetRendition(termcore.RenditionOverline)
		case a >= 30 && a <= 37:
			s.SetFgColor(termcore.SystemColor(uint8(a-30), false))
		case a == 38:
			n := d.parseExtendedColor(attrs, &i)
			if n != nil {
				s.SetFgColor(*n)
			}
		case a == 39:
			s.SetFgColor(termcore.DefaultColor(termcore.ColorIndexForeground, false))
		case a >= 40 && a <= 47:
			s.SetBgColor(termcore.SystemColor(uint8(a-40), false))
		case a == 48:
			n := d.parseExtendedColor(attrs, &i)
			if n != nil {
				s.SetBgColor(*n)
			}
		case a == 49:
			s.SetBgColor(termcore.DefaultColor(termcore.ColorIndexBackground, false))
		case a >= 90 && a <= 97:
			s.SetFgColor(termcore.SystemColor(uint8(a-90), true))
		case a >= 100 && a <= 107:
			s.SetBgColor(termcore.SystemColor(uint8(a-100), true))
		default:
			// unrecognised SGR parameter: ignored, matching xterm's
			// tolerance for unknown codes.
		}
	}
}

// parseExtendedColor consumes the ";2;r;g;b" or ";5;n" tail following a
// 38/48 code, advancing *i past the consumed parameters, and returns the
// resulting color (or nil if the tail is malformed).
func (d *Decoder) parseExtendedColor(attrs []int, i *int) *termcore.CharacterColor {
	if *i+1 >= len(attrs) {
		return nil
	}
	switch attrs[*i+1] {
	case 2:
		if *i+4 >= len(attrs) {
			return nil
		}
		r, g, b := attrs[*i+2], attrs[*i+3], attrs[*i+4]
		*i += 4
		col := termcore.RGBColor(clampByte(r), clampByte(g), clampByte(b))
		return &col
	case 5:
		if *i+2 >= len(attrs) {
			return nil
		}
		n := attrs[*i+2]
		*i += 2
		col := termcore.IndexedColor(clampByte(n))
		return &col
	}
	return nil
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

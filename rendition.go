package termcore

// SetRendition turns on the given rendition bits in the current template,
// affecting subsequently printed characters (one clause of an SGR
// sequence).
func (s *Screen) SetRendition(bits RenditionFlags) { s.template.Flags |= bits }

// ResetRendition turns off the given rendition bits in the current template.
func (s *Screen) ResetRendition(bits RenditionFlags) { s.template.Flags &^= bits }

// SetFgColor replaces the foreground color applied to subsequently printed
// characters.
func (s *Screen) SetFgColor(c CharacterColor) { s.template.Fg = c }

// SetBgColor replaces the background color applied to subsequently printed
// characters.
func (s *Screen) SetBgColor(c CharacterColor) { s.template.Bg = c }

// SetDefaultRendition resets the current template to no rendition bits and
// the default foreground/background colors (SGR 0).
func (s *Screen) SetDefaultRendition() { s.template = NewCellTemplate() }

// SetMode sets or clears one of the screen-local VT modes (origin, wrap,
// insert, reverse video, new-line).
func (s *Screen) SetMode(m ScreenModes, on bool) { s.setMode(m, on) }

// HasMode reports whether the given screen-local VT mode is active.
func (s *Screen) HasMode(m ScreenModes) bool { return s.hasMode(m) }

// SetCharset designates charset as the G-set held in the given slot
// (ESC ( / ) / * / + <final>).
func (s *Screen) SetCharset(index CharsetIndex, cs Charset) {
	if index < 0 || int(index) >= len(s.charsets) {
		return
	}
	s.charsets[index] = cs
}

// SelectCharset selects which of the four designated G-sets is active as
// GL (SI/SO, or the equivalent xterm shift sequences).
func (s *Screen) SelectCharset(index CharsetIndex) {
	if index < 0 || int(index) >= len(s.charsets) {
		return
	}
	s.charsetIndex = index
}

// History returns the screen's attached scrollback store (noop if none
// was provided to NewScreen).
func (s *Screen) History() HistoryStore { return s.history }

// SetHistory replaces the screen's scrollback backend, migrating the
// existing content into it. Passing nil reverts to a discarding store.
func (s *Screen) SetHistory(h HistoryStore) {
	if h == nil {
		h = noopHistory{}
	}
	MigrateHistory(s.history, h)
	s.history = h
}

// ReflowHistory re-breaks the attached history store's content at the
// screen's current column width, returning the number of lines dropped
// from the front if the store is bounded. Callers invoke this after
// Resize when the screen being resized owns the scrollback (i.e. it is
// the primary screen).
func (s *Screen) ReflowHistory() int { return s.history.Reflow(s.cols) }

// SetCursorVisible sets the cursor's Visible flag (DECTCEM), consulted by
// snapshot export; the Decoder also mirrors this mode since it applies
// to both screens.
func (s *Screen) SetCursorVisible(v bool) { s.cursor.Visible = v }

// SetCursorStyle sets the cursor's rendering style (DECSCUSR).
func (s *Screen) SetCursorStyle(style CursorStyle) { s.cursor.Style = style }

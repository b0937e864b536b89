package termcore

// CursorStyle determines how the cursor is rendered.
type CursorStyle int

const (
	CursorStyleBlinkingBlock CursorStyle = iota
	CursorStyleSteadyBlock
	CursorStyleBlinkingUnderline
	CursorStyleSteadyUnderline
	CursorStyleBlinkingBar
	CursorStyleSteadyBar
)

// Cursor tracks the current position and rendering style (0-based
// coordinates, row/col relative to the whole screen, not the margins).
type Cursor struct {
	Row     int
	Col     int
	Style   CursorStyle
	Visible bool
	// Pending marks that the cursor has reached the right edge of the
	// line and the next printable character should wrap first (xterm's
	// deferred autowrap).
	Pending bool
}

// NewCursor creates a cursor at (0, 0) with blinking block style, visible.
func NewCursor() *Cursor {
	return &Cursor{Style: CursorStyleBlinkingBlock, Visible: true}
}

// SavedCursor stores cursor position, rendition template, origin mode and
// charset state, for DECSC/DECRC and for the implicit save/restore that
// happens when switching between the primary and alternate screens.
type SavedCursor struct {
	Row          int
	Col          int
	Template     CellTemplate
	OriginMode   bool
	CharsetIndex CharsetIndex
	Charsets     [4]Charset
}

// CellTemplate is the rendition and color state applied to the next
// printed character; SGR sequences mutate it, printing copies it onto a
// fresh Cell.
type CellTemplate struct {
	Fg    CharacterColor
	Bg    CharacterColor
	Flags RenditionFlags
}

// NewCellTemplate creates a template with the default colors and no
// rendition bits.
func NewCellTemplate() CellTemplate {
	return CellTemplate{
		Fg: DefaultColor(ColorIndexForeground, false),
		Bg: DefaultColor(ColorIndexBackground, false),
	}
}

// Apply stamps the template's style onto a cell holding ch.
func (t CellTemplate) Apply(ch rune) Cell {
	return Cell{Char: ch, Fg: t.Fg, Bg: t.Bg, Flags: t.Flags}
}

// Charset selects the character-set translation applied to bytes 0x20-0x7e
// while a given G-set is designated as GL.
type Charset int

const (
	CharsetASCII Charset = iota
	CharsetLineDrawing
	CharsetUK
)

// CharsetIndex selects one of four character-set slots (G0-G3).
type CharsetIndex int

const (
	CharsetIndexG0 CharsetIndex = iota
	CharsetIndexG1
	CharsetIndexG2
	CharsetIndexG3
)

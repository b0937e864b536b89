package termcore

// RenditionFlags is the bitmask of cell style attributes.
type RenditionFlags uint16

const (
	RenditionBold RenditionFlags = 1 << iota
	RenditionFaint
	RenditionItalic
	RenditionUnderline
	RenditionBlink
	RenditionReverse
	RenditionConceal
	RenditionStrikeout
	RenditionOverline
	// RenditionCursor marks the cell the cursor currently occupies. It is
	// ignored by Cell equality so a moving cursor never makes two
	// otherwise-identical frames compare unequal.
	RenditionCursor
)

// Cell is the atomic styled code point: a character plus its rendition bits
// and the foreground/background color values that apply to it.
type Cell struct {
	Char  rune
	Fg    CharacterColor
	Bg    CharacterColor
	Flags RenditionFlags
}

// NewCell returns a cell holding a space with the default foreground and
// background colors and no rendition bits.
func NewCell() Cell {
	return Cell{
		Char: ' ',
		Fg:   DefaultColor(ColorIndexForeground, false),
		Bg:   DefaultColor(ColorIndexBackground, false),
	}
}

// Reset restores the cell to the default blank state.
func (c *Cell) Reset() {
	*c = NewCell()
}

// HasFlag reports whether the given rendition bit is set.
func (c Cell) HasFlag(f RenditionFlags) bool { return c.Flags&f != 0 }

// SetFlag sets the given rendition bit without disturbing others.
func (c *Cell) SetFlag(f RenditionFlags) { c.Flags |= f }

// ClearFlag clears the given rendition bit without disturbing others.
func (c *Cell) ClearFlag(f RenditionFlags) { c.Flags &^= f }

// Equal compares every field except the cursor marker bit.
func (c Cell) Equal(other Cell) bool {
	const mask = ^RenditionCursor
	return c.Char == other.Char &&
		c.Fg == other.Fg &&
		c.Bg == other.Bg &&
		c.Flags&mask == other.Flags&mask
}

// DefaultCell is returned by out-of-range reads.
var DefaultCell = NewCell()

package termcore

import "image/color"

// ColorSpace identifies which of the five color representations a
// CharacterColor carries.
type ColorSpace uint8

const (
	// ColorSpaceUndefined is the zero value; Resolve returns a diagnostic
	// color for it so a forgotten initialization is visible rather than
	// silently rendering as black.
	ColorSpaceUndefined ColorSpace = iota
	// ColorSpaceDefault refers to the terminal's configured foreground or
	// background color (table slots 0/1, or 10/11 when intense).
	ColorSpaceDefault
	// ColorSpaceSystem refers to one of the eight ANSI base colors (table
	// slots 2-9, or 12-19 when intense).
	ColorSpaceSystem
	// ColorSpaceIndexed refers to one of the 256 indexed palette colors.
	ColorSpaceIndexed
	// ColorSpaceRGB is a 24-bit true color triple.
	ColorSpaceRGB
)

// Index values used with ColorSpaceDefault.
const (
	ColorIndexForeground uint8 = 0
	ColorIndexBackground uint8 = 1
)

// CharacterColor is a single cell's foreground or background color value.
// It carries enough information to defer resolution to a ColorTable so
// that switching color schemes re-colors already-written text instead of
// requiring a rewrite of the screen buffer.
type CharacterColor struct {
	Space   ColorSpace
	Value   uint8 // system/default index, or indexed-256 value
	Intense bool  // bold/intense variant of Default or System
	R, G, B uint8 // used only when Space == ColorSpaceRGB
}

// UndefinedColor returns the zero-value color.
func UndefinedColor() CharacterColor { return CharacterColor{} }

// DefaultColor returns a color bound to the foreground or background slot
// (index should be ColorIndexForeground or ColorIndexBackground).
func DefaultColor(index uint8, intense bool) CharacterColor {
	return CharacterColor{Space: ColorSpaceDefault, Value: index, Intense: intense}
}

// SystemColor returns one of the eight base ANSI colors (0-7).
func SystemColor(index uint8, intense bool) CharacterColor {
	return CharacterColor{Space: ColorSpaceSystem, Value: index & 0x7, Intense: intense}
}

// IndexedColor returns one of the 256 indexed palette colors.
func IndexedColor(n uint8) CharacterColor {
	return CharacterColor{Space: ColorSpaceIndexed, Value: n}
}

// RGBColor returns a 24-bit true color.
func RGBColor(r, g, b uint8) CharacterColor {
	return CharacterColor{Space: ColorSpaceRGB, R: r, G: g, B: b}
}

// IsDefault reports whether c refers to the default foreground/background
// slot; reverse-video and similar rendition logic treats it specially.
func (c CharacterColor) IsDefault() bool { return c.Space == ColorSpaceDefault }

// diagnosticColor is returned for a color that was never assigned a
// space, loud enough that a forgotten initialization shows up on screen.
var diagnosticColor = color.RGBA{R: 255, A: 255}

// BaseColors is the number of foreground/background + system color slots
// at one intensity level (2 + 8).
const BaseColors = 10

// Intensities is the number of intensity levels a base color can appear at.
const Intensities = 2

// TableColors is the total size of a ColorTable (BaseColors * Intensities).
const TableColors = BaseColors * Intensities

// ColorEntry is one slot of a ColorTable.
type ColorEntry struct {
	RGB         color.RGBA
	Transparent bool // true for the background slot, for hosts that support a see-through terminal
	Bold        bool // render text in this color with a bold font weight
}

// ColorTable is the 20-entry palette a CharacterColor resolves against:
// slots 0-1 are the non-intense foreground/background, 2-9 the eight
// non-intense system colors, 10-11 the intense foreground/background,
// 12-19 the eight intense system colors.
type ColorTable [TableColors]ColorEntry

// defaultSystemRGB are the classic ANSI 8 and their bold/bright variants.
var defaultSystemRGB = [Intensities][8]color.RGBA{
	{ // non-intense
		{R: 0, G: 0, B: 0, A: 255}, {R: 205, G: 0, B: 0, A: 255},
		{R: 0, G: 205, B: 0, A: 255}, {R: 205, G: 205, B: 0, A: 255},
		{R: 0, G: 0, B: 238, A: 255}, {R: 205, G: 0, B: 205, A: 255},
		{R: 0, G: 205, B: 205, A: 255}, {R: 229, G: 229, B: 229, A: 255},
	},
	{ // intense
		{R: 127, G: 127, B: 127, A: 255}, {R: 255, G: 0, B: 0, A: 255},
		{R: 0, G: 255, B: 0, A: 255}, {R: 255, G: 255, B: 0, A: 255},
		{R: 92, G: 92, B: 255, A: 255}, {R: 255, G: 0, B: 255, A: 255},
		{R: 0, G: 255, B: 255, A: 255}, {R: 255, G: 255, B: 255, A: 255},
	},
}

// DefaultColorTable returns the xterm-compatible default palette: black
// background, light grey foreground, and the classic 8/8 system colors.
func DefaultColorTable() ColorTable {
	var t ColorTable
	t[ColorIndexForeground] = ColorEntry{RGB: color.RGBA{R: 229, G: 229, B: 229, A: 255}}
	t[ColorIndexBackground] = ColorEntry{RGB: color.RGBA{A: 255}, Transparent: true}
	t[BaseColors+ColorIndexForeground] = ColorEntry{RGB: color.RGBA{R: 255, G: 255, B: 255, A: 255}}
	t[BaseColors+ColorIndexBackground] = ColorEntry{RGB: color.RGBA{R: 127, G: 127, B: 127, A: 255}}
	for intensity := 0; intensity < Intensities; intensity++ {
		for sys := 0; sys < 8; sys++ {
			t[sys+2+intensity*BaseColors] = ColorEntry{RGB: defaultSystemRGB[intensity][sys]}
		}
	}
	return t
}

// Resolve returns the concrete RGBA value of c against table.
func (c CharacterColor) Resolve(table *ColorTable) color.RGBA {
	switch c.Space {
	case ColorSpaceDefault:
		idx := int(c.Value)
		if c.Intense {
			idx += BaseColors
		}
		return table[idx].RGB
	case ColorSpaceSystem:
		idx := int(c.Value) + 2
		if c.Intense {
			idx += BaseColors
		}
		return table[idx].RGB
	case ColorSpaceIndexed:
		return resolveIndexed(c.Value, table)
	case ColorSpaceRGB:
		return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
	default:
		return diagnosticColor
	}
}

// resolveIndexed maps an xterm-256 palette index to a concrete color: the
// first 16 entries reuse the table's system-color slots (so recoloring a
// scheme also recolors indexed text that targeted 0-15), 16-231 form a
// 6x6x6 color cube, and 232-255 are a 24-step greyscale ramp.
func resolveIndexed(u uint8, table *ColorTable) color.RGBA {
	if u < 8 {
		return table[int(u)+2].RGB
	}
	u -= 8
	if u < 8 {
		return table[int(u)+2+BaseColors].RGB
	}
	u -= 8
	if u < 216 {
		r := 255 * ((int(u) / 36) % 6) / 5
		g := 255 * ((int(u) / 6) % 6) / 5
		b := 255 * (int(u) % 6) / 5
		return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}
	}
	u -= 216
	gray := uint8(int(u)*10 + 8)
	return color.RGBA{R: gray, G: gray, B: gray, A: 255}
}

package termcore

import (
	"image/color"
	"testing"
)

func TestColorResolution(t *testing.T) {
	table := DefaultColorTable()

	fg := DefaultColor(ColorIndexForeground, false)
	if got := fg.Resolve(&table); got != table[0].RGB {
		t.Fatalf("default fg = %v", got)
	}
	fgIntense := DefaultColor(ColorIndexForeground, true)
	if got := fgIntense.Resolve(&table); got != table[BaseColors].RGB {
		t.Fatalf("intense default fg = %v", got)
	}

	red := SystemColor(1, false)
	if got := red.Resolve(&table); got != table[3].RGB {
		t.Fatalf("system red = %v", got)
	}
	redIntense := SystemColor(1, true)
	if got := redIntense.Resolve(&table); got != table[13].RGB {
		t.Fatalf("intense system red = %v", got)
	}

	rgb := RGBColor(1, 2, 3)
	if got := rgb.Resolve(&table); got != (color.RGBA{R: 1, G: 2, B: 3, A: 255}) {
		t.Fatalf("rgb = %v", got)
	}
}

func TestColorResolutionFollowsPaletteChanges(t *testing.T) {
	// A cell written as System(1) must change color when the table does:
	// resolution is deferred, not baked in at write time.
	table := DefaultColorTable()
	c := SystemColor(1, false)
	before := c.Resolve(&table)
	table[3].RGB = color.RGBA{R: 1, G: 2, B: 3, A: 255}
	after := c.Resolve(&table)
	if before == after {
		t.Fatalf("palette change did not affect resolution")
	}
	if after != table[3].RGB {
		t.Fatalf("resolved = %v, want the new palette entry", after)
	}
}

func TestIndexedColorRanges(t *testing.T) {
	table := DefaultColorTable()

	// 0-7 reuse the non-intense system slots.
	if got := IndexedColor(1).Resolve(&table); got != table[3].RGB {
		t.Fatalf("indexed 1 = %v, want system slot", got)
	}
	// 8-15 reuse the intense system slots.
	if got := IndexedColor(9).Resolve(&table); got != table[13].RGB {
		t.Fatalf("indexed 9 = %v, want intense system slot", got)
	}
	// Color-cube corners.
	if got := IndexedColor(16).Resolve(&table); got != (color.RGBA{A: 255}) {
		t.Fatalf("indexed 16 = %v, want black", got)
	}
	if got := IndexedColor(231).Resolve(&table); got != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Fatalf("indexed 231 = %v, want white", got)
	}
	// Greyscale ramp endpoints.
	if got := IndexedColor(232).Resolve(&table); got.R != 8 || got.R != got.G || got.G != got.B {
		t.Fatalf("indexed 232 = %v, want dark grey", got)
	}
	if got := IndexedColor(255).Resolve(&table); got.R != 238 {
		t.Fatalf("indexed 255 = %v, want light grey", got)
	}
}

func TestUndefinedColorIsLoud(t *testing.T) {
	table := DefaultColorTable()
	if got := UndefinedColor().Resolve(&table); got != diagnosticColor {
		t.Fatalf("undefined color resolved to %v", got)
	}
}

func TestReflowLinesConservation(t *testing.T) {
	mk := func(text string, wrapped bool) ReflowLine {
		cells := make([]Cell, len(text))
		for i, r := range text {
			c := NewCell()
			c.Char = r
			cells[i] = c
		}
		return ReflowLine{Cells: cells, Wrapped: wrapped}
	}
	in := []ReflowLine{
		mk("aaaa", true),
		mk("bb", false),
		mk("cccccc", false),
		mk("", false),
	}
	out := ReflowLines(in, 3)

	var flat []rune
	for _, l := range out {
		if len(l.Cells) > 3 {
			t.Fatalf("segment longer than new width: %d", len(l.Cells))
		}
		for _, c := range l.Cells {
			flat = append(flat, c.Char)
		}
	}
	if string(flat) != "aaaabbcccccc" {
		t.Fatalf("content = %q, want concatenation preserved", string(flat))
	}
	// First logical line "aaaabb" breaks into "aaa"(w) "abb"(not).
	if !out[0].Wrapped || out[1].Wrapped {
		t.Fatalf("wrap flags: %v %v", out[0].Wrapped, out[1].Wrapped)
	}
	// The empty trailing line survives as an empty segment.
	last := out[len(out)-1]
	if len(last.Cells) != 0 {
		t.Fatalf("empty line lost in reflow")
	}
}

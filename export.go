package termcore

import (
	"fmt"
	"io"
	"strings"
)

// StreamDecoder converts a run of styled cells into bytes on a writer:
// it "decodes" the terminal's internal cell representation back into a
// byte stream. Two implementations exist: PlainTextDecoder discards
// styling, and HTMLDecoder emits span-wrapped markup.
type StreamDecoder interface {
	// BeginLine is called once per exported row before its cells.
	BeginLine(w io.Writer) error
	// DecodeLine writes the row's cells, resolving colors against table.
	DecodeLine(w io.Writer, cells []Cell, table *ColorTable) error
	// EndLine is called once per exported row after its cells. wrapped
	// reports the row's wrap flag so the exporter can decide whether a
	// line break belongs between this row and the next.
	EndLine(w io.Writer, wrapped bool) error
}

// PlainTextDecoder exports cell content as plain text, dropping all
// styling. Trailing blanks are trimmed per row; wrapped rows are joined
// without a newline so a copy-paste of wrapped output reproduces the
// logical line.
type PlainTextDecoder struct {
	TrimTrailingWhitespace bool
}

var _ StreamDecoder = (*PlainTextDecoder)(nil)

// NewPlainTextDecoder returns a plain-text exporter with trailing-blank
// trimming enabled.
func NewPlainTextDecoder() *PlainTextDecoder {
	return &PlainTextDecoder{TrimTrailingWhitespace: true}
}

func (p *PlainTextDecoder) BeginLine(io.Writer) error { return nil }

func (p *PlainTextDecoder) DecodeLine(w io.Writer, cells []Cell, _ *ColorTable) error {
	last := len(cells) - 1
	if p.TrimTrailingWhitespace {
		for last >= 0 {
			c := cells[last].Char
			if c != ' ' && c != 0 {
				break
			}
			last--
		}
	}
	var sb strings.Builder
	for i := 0; i <= last; i++ {
		ch := cells[i].Char
		if ch == 0 {
			continue // wide-character spacer
		}
		sb.WriteRune(ch)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func (p *PlainTextDecoder) EndLine(w io.Writer, wrapped bool) error {
	if wrapped {
		return nil
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// HTMLDecoder exports cells as HTML, opening a new <span> whenever the
// rendition or colors change between adjacent cells.
type HTMLDecoder struct {
	open bool
	last Cell
}

var _ StreamDecoder = (*HTMLDecoder)(nil)

// NewHTMLDecoder returns an HTML exporter.
func NewHTMLDecoder() *HTMLDecoder { return &HTMLDecoder{} }

func (h *HTMLDecoder) BeginLine(io.Writer) error {
	h.open = false
	return nil
}

func (h *HTMLDecoder) DecodeLine(w io.Writer, cells []Cell, table *ColorTable) error {
	for _, c := range cells {
		if c.Char == 0 {
			continue
		}
		if !h.open || !sameStyle(h.last, c) {
			if h.open {
				if _, err := io.WriteString(w, "</span>"); err != nil {
					return err
				}
			}
			if err := h.openSpan(w, c, table); err != nil {
				return err
			}
			h.open = true
			h.last = c
		}
		if _, err := io.WriteString(w, escapeHTMLRune(c.Char)); err != nil {
			return err
		}
	}
	return nil
}

func (h *HTMLDecoder) EndLine(w io.Writer, wrapped bool) error {
	if h.open {
		if _, err := io.WriteString(w, "</span>"); err != nil {
			return err
		}
		h.open = false
	}
	if wrapped {
		return nil
	}
	_, err := io.WriteString(w, "<br>\n")
	return err
}

func (h *HTMLDecoder) openSpan(w io.Writer, c Cell, table *ColorTable) error {
	fg := c.Fg.Resolve(table)
	bg := c.Bg.Resolve(table)
	if c.HasFlag(RenditionReverse) {
		fg, bg = bg, fg
	}
	var style strings.Builder
	fmt.Fprintf(&style, "color:#%02x%02x%02x;background-color:#%02x%02x%02x",
		fg.R, fg.G, fg.B, bg.R, bg.G, bg.B)
	if c.HasFlag(RenditionBold) {
		style.WriteString(";font-weight:bold")
	}
	if c.HasFlag(RenditionItalic) {
		style.WriteString(";font-style:italic")
	}
	if c.HasFlag(RenditionUnderline) {
		style.WriteString(";text-decoration:underline")
	}
	if c.HasFlag(RenditionStrikeout) {
		style.WriteString(";text-decoration:line-through")
	}
	_, err := fmt.Fprintf(w, `<span style="%s">`, style.String())
	return err
}

func sameStyle(a, b Cell) bool {
	const mask = ^RenditionCursor
	return a.Fg == b.Fg && a.Bg == b.Bg && a.Flags&mask == b.Flags&mask
}

func escapeHTMLRune(r rune) string {
	switch r {
	case '&':
		return "&amp;"
	case '<':
		return "&lt;"
	case '>':
		return "&gt;"
	case ' ':
		return "&nbsp;"
	default:
		return string(r)
	}
}

// WriteToStream exports rows [startLine, endLine] (0-based, inclusive) of
// the visible screen through the given decoder, resolving colors against
// table. Out-of-range bounds are clamped.
func (s *Screen) WriteToStream(w io.Writer, dec StreamDecoder, startLine, endLine int, table *ColorTable) error {
	startLine = clamp(startLine, 0, s.rows-1)
	endLine = clamp(endLine, 0, s.rows-1)
	for r := startLine; r <= endLine; r++ {
		line := s.lines[r]
		if err := dec.BeginLine(w); err != nil {
			return err
		}
		if err := dec.DecodeLine(w, line.Cells, table); err != nil {
			return err
		}
		if err := dec.EndLine(w, line.HasFlag(LineWrapped)); err != nil {
			return err
		}
	}
	return nil
}

package decode

import (
	"testing"

	"github.com/konsolecore/termcore"
	"github.com/konsolecore/termcore/internal/history"
)

type recordingHandler struct {
	responses []byte
	titles    []string
	bells     int
	errors    []string
}

func (h *recordingHandler) WriteResponse(p []byte)          { h.responses = append(h.responses, p...) }
func (h *recordingHandler) TitleChanged(title string)       { h.titles = append(h.titles, title) }
func (h *recordingHandler) IconNameChanged(string)          {}
func (h *recordingHandler) WorkingDirectoryChanged(string)  {}
func (h *recordingHandler) PaletteColorChanged(int, string) {}
func (h *recordingHandler) ProfileChangeRequested(string)   {}
func (h *recordingHandler) Bell()                           { h.bells++ }
func (h *recordingHandler) DecodingError(d string)          { h.errors = append(h.errors, d) }

func newTestDecoder(rows, cols int) (*Decoder, *recordingHandler) {
	h := &recordingHandler{}
	primary := termcore.NewScreen(rows, cols, history.NewRing(100))
	alt := termcore.NewScreen(rows, cols, nil)
	return New(primary, alt, h), h
}

func TestPlainEcho(t *testing.T) {
	d, _ := newTestDecoder(24, 80)
	d.Write([]byte("hello\r\n"))

	s := d.Active()
	want := "hello"
	for i, r := range want {
		if got := s.Cell(0, i).Char; got != r {
			t.Fatalf("cell (0,%d) = %q, want %q", i, got, r)
		}
	}
	cur := s.Cursor()
	if cur.Row != 1 || cur.Col != 0 {
		t.Fatalf("cursor = (%d,%d), want (1,0)", cur.Row, cur.Col)
	}
	if s.History().LineCount() != 0 {
		t.Fatalf("history should be empty, got %d lines", s.History().LineCount())
	}
	if s.Line(0).HasFlag(termcore.LineWrapped) {
		t.Fatalf("line 0 should not be marked wrapped")
	}
}

func TestSGRTrueColor(t *testing.T) {
	d, _ := newTestDecoder(24, 80)
	d.Write([]byte("\x1b[38;2;255;100;0;1mX"))

	s := d.Active()
	cell := s.Cell(0, 0)
	if cell.Char != 'X' {
		t.Fatalf("char = %q, want 'X'", cell.Char)
	}
	if cell.Fg.Space != termcore.ColorSpaceRGB || cell.Fg.R != 255 || cell.Fg.G != 100 || cell.Fg.B != 0 {
		t.Fatalf("fg = %+v, want RGB(255,100,0)", cell.Fg)
	}
	if !cell.HasFlag(termcore.RenditionBold) {
		t.Fatalf("expected bold rendition bit set")
	}
}

func TestAltScreenSaveRestore(t *testing.T) {
	d, _ := newTestDecoder(24, 80)
	s := d.Active()
	s.MoveCursor(5, 10)
	d.Write([]byte("ABC"))

	d.Write([]byte("\x1b[?1049h"))
	if !d.AltScreenActive() {
		t.Fatalf("expected alt screen active")
	}
	if cur := d.Active().Cursor(); cur.Row != 0 || cur.Col != 0 {
		t.Fatalf("alt cursor = (%d,%d), want (0,0)", cur.Row, cur.Col)
	}
	if got := d.Primary().Cell(5, 10).Char; got != 'A' {
		t.Fatalf("primary content disturbed: (5,10) = %q", got)
	}

	d.Write([]byte("DEF"))

	d.Write([]byte("\x1b[?1049l"))
	if d.AltScreenActive() {
		t.Fatalf("expected primary screen active")
	}
	cur := d.Active().Cursor()
	if cur.Row != 5 || cur.Col != 13 {
		t.Fatalf("cursor after restore = (%d,%d), want (5,13)", cur.Row, cur.Col)
	}
	for i, r := range "ABC" {
		if got := d.Primary().Cell(5, 10+i).Char; got != r {
			t.Fatalf("primary (5,%d) = %q, want %q", 10+i, got, r)
		}
	}
	if d.Primary().Cell(0, 0).Char == 'D' {
		t.Fatalf("alt-screen writes leaked onto primary")
	}
	if d.Primary().History().LineCount() != 0 {
		t.Fatalf("history should be untouched by alt-screen activity")
	}
}

func TestCursorPositionReport(t *testing.T) {
	d, h := newTestDecoder(24, 80)
	d.Active().MoveCursor(4, 2)
	d.Write([]byte("\x1b[6n"))

	want := "\x1b[5;3R"
	if string(h.responses) != want {
		t.Fatalf("response = %q, want %q", h.responses, want)
	}
}

func TestOSCTitle(t *testing.T) {
	d, h := newTestDecoder(24, 80)
	d.Write([]byte("\x1b]2;My Title\x07"))

	if len(h.titles) != 1 || h.titles[0] != "My Title" {
		t.Fatalf("titles = %v, want [\"My Title\"]", h.titles)
	}
	if len(h.responses) != 0 {
		t.Fatalf("expected no PTY response, got %q", h.responses)
	}
}

func TestResetIdempotent(t *testing.T) {
	d, _ := newTestDecoder(10, 20)
	d.Write([]byte("\x1b[31mhello\x1b[?1049h"))
	d.Reset()
	first := d.Primary().String()
	d.Reset()
	second := d.Primary().String()
	if first != second {
		t.Fatalf("reset is not idempotent:\n%q\nvs\n%q", first, second)
	}
	fresh := termcore.NewScreen(10, 20, nil)
	if first != fresh.String() {
		t.Fatalf("reset screen does not match a fresh screen")
	}
}

func TestUTF8SplitAcrossWrites(t *testing.T) {
	d, _ := newTestDecoder(5, 10)
	euro := []byte("€") // 3-byte UTF-8
	d.Write(euro[:1])
	d.Write(euro[1:])
	if got := d.Active().Cell(0, 0).Char; got != '€' {
		t.Fatalf("cell = %q, want euro sign", got)
	}
}

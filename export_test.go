package termcore

import (
	"strings"
	"testing"
)

func TestPlainTextExport(t *testing.T) {
	s := NewScreen(3, 10, nil)
	writeString(s, "one\ntwo")

	var sb strings.Builder
	if err := s.WriteToStream(&sb, NewPlainTextDecoder(), 0, 2, nil); err != nil {
		t.Fatalf("WriteToStream: %v", err)
	}
	if got := sb.String(); got != "one\ntwo\n\n" {
		t.Fatalf("export = %q", got)
	}
}

func TestPlainTextExportJoinsWrappedRows(t *testing.T) {
	s := NewScreen(2, 5, nil)
	writeString(s, "abcdefg")

	var sb strings.Builder
	if err := s.WriteToStream(&sb, NewPlainTextDecoder(), 0, 1, nil); err != nil {
		t.Fatalf("WriteToStream: %v", err)
	}
	if got := sb.String(); got != "abcdefg\n" {
		t.Fatalf("wrapped export = %q, want joined logical line", got)
	}
}

func TestHTMLExportStyles(t *testing.T) {
	s := NewScreen(1, 10, nil)
	s.SetRendition(RenditionBold)
	s.SetFgColor(RGBColor(255, 0, 0))
	writeString(s, "hi")

	table := DefaultColorTable()
	var sb strings.Builder
	if err := s.WriteToStream(&sb, NewHTMLDecoder(), 0, 0, &table); err != nil {
		t.Fatalf("WriteToStream: %v", err)
	}
	out := sb.String()
	if !strings.Contains(out, "font-weight:bold") {
		t.Fatalf("bold missing from %q", out)
	}
	if !strings.Contains(out, "color:#ff0000") {
		t.Fatalf("rgb foreground missing from %q", out)
	}
	if !strings.Contains(out, "hi") {
		t.Fatalf("text missing from %q", out)
	}
	if strings.Count(out, "<span") != strings.Count(out, "</span>") {
		t.Fatalf("unbalanced spans in %q", out)
	}
}

func TestHTMLExportEscapes(t *testing.T) {
	s := NewScreen(1, 10, nil)
	writeString(s, "a<b&c")

	table := DefaultColorTable()
	var sb strings.Builder
	if err := s.WriteToStream(&sb, NewHTMLDecoder(), 0, 0, &table); err != nil {
		t.Fatalf("WriteToStream: %v", err)
	}
	out := sb.String()
	if !strings.Contains(out, "a&lt;b&amp;c") {
		t.Fatalf("markup not escaped: %q", out)
	}
}

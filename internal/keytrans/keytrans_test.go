package keytrans

import (
	"bytes"
	"strings"
	"testing"
)

func TestDefaultArrowKeys(t *testing.T) {
	tr := Default()

	res, ok := tr.Lookup("Up", 0, 0)
	if !ok || string(res.Bytes) != "\x1b[A" {
		t.Fatalf("Up = %q, want CSI A", res.Bytes)
	}
	res, ok = tr.Lookup("Up", 0, StateAppCursorKeys)
	if !ok || string(res.Bytes) != "\x1bOA" {
		t.Fatalf("Up (app mode) = %q, want SS3 A", res.Bytes)
	}
}

func TestFirstMatchWins(t *testing.T) {
	tr := New()
	tr.Add(Entry{Key: "X", Result: Result{Bytes: []byte("first")}})
	tr.Add(Entry{Key: "X", Result: Result{Bytes: []byte("second")}})
	res, _ := tr.Lookup("X", 0, 0)
	if string(res.Bytes) != "first" {
		t.Fatalf("lookup = %q, want the earlier entry", res.Bytes)
	}
}

func TestLookupDeterminism(t *testing.T) {
	tr := Default()
	first := tr.Translate("PageUp", ModShift, 0, "")
	for i := 0; i < 100; i++ {
		again := tr.Translate("PageUp", ModShift, 0, "")
		if again.Command != first.Command || !bytes.Equal(again.Bytes, first.Bytes) {
			t.Fatalf("translate not deterministic on call %d", i)
		}
	}
	if first.Command != CommandScrollPageUp {
		t.Fatalf("Shift+PageUp = %v, want scroll-page-up", first.Command)
	}
}

func TestModifierFallbacks(t *testing.T) {
	tr := New()

	if got := tr.Translate("A", ModAlt, 0, "a"); string(got.Bytes) != "\x1ba" {
		t.Fatalf("Alt+a = %q, want ESC prefix", got.Bytes)
	}
	if got := tr.Translate("A", ModMeta, 0, "a"); string(got.Bytes) != "\x18@sa" {
		t.Fatalf("Meta+a = %q, want CAN @ s prefix", got.Bytes)
	}
	if got := tr.Translate("A", ModCtrl, 0, "a"); !bytes.Equal(got.Bytes, []byte{0x01}) {
		t.Fatalf("Ctrl+a = %q, want 0x01", got.Bytes)
	}
	if got := tr.Translate("BracketLeft", ModCtrl, 0, "["); !bytes.Equal(got.Bytes, []byte{0x1b}) {
		t.Fatalf("Ctrl+[ = %q, want ESC", got.Bytes)
	}
	if got := tr.Translate("A", 0, 0, "é"); string(got.Bytes) != "é" {
		t.Fatalf("plain text = %q, want UTF-8 passthrough", got.Bytes)
	}
}

func TestParseKeytabFile(t *testing.T) {
	src := `
# demo bindings
keyboard "Test"
key Up (+AppCursorKeys) : "\EOA"
key Up : "\E[A"
key PageUp + Shift : scroll-page-up
key Return (+NewLine) : "\r\n"
key Space + Ctrl : "\x00"
`
	tr, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	res, ok := tr.Lookup("Up", 0, StateAppCursorKeys)
	if !ok || string(res.Bytes) != "\x1bOA" {
		t.Fatalf("Up app = %q", res.Bytes)
	}
	res, ok = tr.Lookup("Up", 0, 0)
	if !ok || string(res.Bytes) != "\x1b[A" {
		t.Fatalf("Up normal = %q", res.Bytes)
	}
	res, ok = tr.Lookup("PageUp", ModShift, 0)
	if !ok || res.Command != CommandScrollPageUp {
		t.Fatalf("Shift+PageUp = %+v", res)
	}
	res, ok = tr.Lookup("Return", 0, StateNewLine)
	if !ok || string(res.Bytes) != "\r\n" {
		t.Fatalf("Return newline-mode = %q", res.Bytes)
	}
	res, ok = tr.Lookup("Space", ModCtrl, 0)
	if !ok || !bytes.Equal(res.Bytes, []byte{0}) {
		t.Fatalf("Ctrl+Space = %q", res.Bytes)
	}
}

func TestParseNegativeStateFlag(t *testing.T) {
	src := `key Home (-AppCursorKeys) : "\E[H"` + "\n"
	tr, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := tr.Lookup("Home", 0, StateAppCursorKeys); ok {
		t.Fatalf("entry with -AppCursorKeys must not match when the mode is on")
	}
	if _, ok := tr.Lookup("Home", 0, 0); !ok {
		t.Fatalf("entry should match when the mode is off")
	}
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{
		`key : "x"`,
		`key Up + Hyper : "x"`,
		`key Up : unknowncmd`,
		`key Up : "\q"`,
	} {
		if _, err := Parse(strings.NewReader(src)); err == nil {
			t.Fatalf("expected error for %q", src)
		}
	}
}

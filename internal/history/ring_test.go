package history

import (
	"strings"
	"testing"

	"github.com/konsolecore/termcore"
)

func cellsOf(text string) []termcore.Cell {
	out := make([]termcore.Cell, len(text))
	for i, r := range text {
		c := termcore.NewCell()
		c.Char = r
		out[i] = c
	}
	return out
}

func textOf(cells []termcore.Cell) string {
	var sb strings.Builder
	for _, c := range cells {
		sb.WriteRune(c.Char)
	}
	return sb.String()
}

func addLine(h termcore.HistoryStore, text string, wrapped bool) {
	h.AppendCells(cellsOf(text))
	h.FinalizeLine(wrapped)
}

func lineText(h termcore.HistoryStore, i int) string {
	return textOf(h.CellsAt(i, 0, h.LineLength(i)))
}

func TestRingFIFOEviction(t *testing.T) {
	r := NewRing(3)
	for _, s := range []string{"one", "two", "three", "four"} {
		addLine(r, s, false)
	}
	if r.LineCount() != 3 {
		t.Fatalf("count = %d, want 3", r.LineCount())
	}
	want := []string{"two", "three", "four"}
	for i, w := range want {
		if got := lineText(r, i); got != w {
			t.Fatalf("line %d = %q, want %q", i, got, w)
		}
	}
}

func TestRingIndexRebasing(t *testing.T) {
	// Line 0 must always mean "oldest still retained", even after many
	// evictions wrap the physical array several times.
	r := NewRing(4)
	for i := 0; i < 23; i++ {
		addLine(r, strings.Repeat("x", i+1), false)
	}
	for i := 0; i < 4; i++ {
		wantLen := 23 - 4 + i + 1
		if got := r.LineLength(i); got != wantLen {
			t.Fatalf("line %d length = %d, want %d", i, got, wantLen)
		}
	}
}

func TestRingOutOfRangeReadsYieldDefaults(t *testing.T) {
	r := NewRing(2)
	addLine(r, "ab", false)
	cells := r.CellsAt(0, 0, 5)
	if len(cells) != 5 {
		t.Fatalf("CellsAt returned %d cells, want exactly 5", len(cells))
	}
	for i := 2; i < 5; i++ {
		if !cells[i].Equal(termcore.DefaultCell) {
			t.Fatalf("cell %d = %+v, want default", i, cells[i])
		}
	}
	if cells := r.CellsAt(7, 0, 3); !cells[0].Equal(termcore.DefaultCell) {
		t.Fatalf("out-of-range line read should yield defaults")
	}
}

func TestRingSetMaxLinesShrink(t *testing.T) {
	r := NewRing(5)
	for _, s := range []string{"a", "b", "c", "d", "e"} {
		addLine(r, s, false)
	}
	r.SetMaxLines(2)
	if r.LineCount() != 2 {
		t.Fatalf("count after shrink = %d, want 2", r.LineCount())
	}
	if lineText(r, 0) != "d" || lineText(r, 1) != "e" {
		t.Fatalf("shrink kept %q,%q, want the newest lines", lineText(r, 0), lineText(r, 1))
	}
	// The ring must keep working after the resize.
	addLine(r, "f", false)
	if lineText(r, 0) != "e" || lineText(r, 1) != "f" {
		t.Fatalf("ring broken after shrink: %q,%q", lineText(r, 0), lineText(r, 1))
	}
}

func TestRingWrappedFlag(t *testing.T) {
	r := NewRing(4)
	addLine(r, "abcdefghij", true)
	addLine(r, "klm", false)
	if !r.IsWrapped(0) || r.IsWrapped(1) {
		t.Fatalf("wrapped flags = %v,%v, want true,false", r.IsWrapped(0), r.IsWrapped(1))
	}
}

// Three wrapped segments re-break cleanly at width 5.
func TestRingReflow(t *testing.T) {
	r := NewRing(10)
	addLine(r, "aaaaaaaaaa", true)
	addLine(r, "bbbbbbbbbb", true)
	addLine(r, "cccccccccc", false)

	dropped := r.Reflow(5)
	if dropped != 0 {
		t.Fatalf("dropped = %d, want 0", dropped)
	}
	if r.LineCount() != 6 {
		t.Fatalf("count after reflow = %d, want 6", r.LineCount())
	}
	var flat strings.Builder
	for i := 0; i < r.LineCount(); i++ {
		flat.WriteString(lineText(r, i))
		if r.LineLength(i) != 5 {
			t.Fatalf("line %d length = %d, want 5", i, r.LineLength(i))
		}
		if wrapped := r.IsWrapped(i); wrapped != (i < 5) {
			t.Fatalf("line %d wrapped = %v", i, wrapped)
		}
	}
	want := strings.Repeat("a", 10) + strings.Repeat("b", 10) + strings.Repeat("c", 10)
	if flat.String() != want {
		t.Fatalf("reflow lost content: %q", flat.String())
	}
}

func TestRingReflowDropsFromFront(t *testing.T) {
	r := NewRing(3)
	addLine(r, "aaaaaaaaaa", false)
	addLine(r, "bbbbbbbbbb", false)

	dropped := r.Reflow(5)
	// 4 segments into a 3-line ring: the oldest is dropped.
	if dropped != 1 {
		t.Fatalf("dropped = %d, want 1", dropped)
	}
	if got := lineText(r, 0); got != "aaaaa" {
		t.Fatalf("line 0 after reflow = %q, want %q", got, "aaaaa")
	}
}

func TestNoneRejectsEverything(t *testing.T) {
	var n None
	addLine(n, "hello", false)
	if n.LineCount() != 0 || n.MaxLines() != 0 {
		t.Fatalf("None must report zero lines and zero capacity")
	}
	cells := n.CellsAt(0, 0, 4)
	if len(cells) != 4 {
		t.Fatalf("CellsAt must still return exactly count cells")
	}
}

func TestBlockArrayBasics(t *testing.T) {
	b := NewBlockArray(2)
	for i := 0; i < 10; i++ {
		addLine(b, strings.Repeat("x", i+1), i%2 == 0)
	}
	if b.LineCount() != 10 {
		t.Fatalf("count = %d, want 10", b.LineCount())
	}
	if b.LineLength(3) != 4 {
		t.Fatalf("line 3 length = %d, want 4", b.LineLength(3))
	}
	if !b.IsWrapped(0) || b.IsWrapped(1) {
		t.Fatalf("wrap flags wrong")
	}
}

func TestBlockArrayEvictionRebasesIndices(t *testing.T) {
	b := NewBlockArray(1)
	total := blockArrayBlockSize + 10
	for i := 0; i < total; i++ {
		addLine(b, strings.Repeat("y", i%7+1), false)
	}
	if b.EvictedLines() == 0 {
		t.Fatalf("expected at least one evicted block")
	}
	// Line 0 is the oldest retained line, not the oldest ever written.
	first := b.EvictedLines()
	if got, want := b.LineLength(0), first%7+1; got != want {
		t.Fatalf("line 0 length = %d, want %d", got, want)
	}
}

func TestFileBackendRoundTrip(t *testing.T) {
	f, err := NewFile()
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	defer f.Close()

	addLine(f, "first line", true)
	addLine(f, "second", false)

	if f.LineCount() != 2 {
		t.Fatalf("count = %d, want 2", f.LineCount())
	}
	if got := lineText(f, 0); got != "first line" {
		t.Fatalf("line 0 = %q", got)
	}
	if !f.IsWrapped(0) || f.IsWrapped(1) {
		t.Fatalf("wrap flags lost in round trip")
	}
	if f.MaxLines() != 0 {
		t.Fatalf("file backend must report unbounded capacity")
	}
}

func TestFileBackendReflow(t *testing.T) {
	f, err := NewFile()
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	defer f.Close()

	addLine(f, strings.Repeat("z", 12), false)
	if dropped := f.Reflow(4); dropped != 0 {
		t.Fatalf("unbounded backend dropped %d lines", dropped)
	}
	if f.LineCount() != 3 {
		t.Fatalf("count after reflow = %d, want 3", f.LineCount())
	}
	if !f.IsWrapped(0) || !f.IsWrapped(1) || f.IsWrapped(2) {
		t.Fatalf("wrap flags after reflow wrong")
	}
}

func TestMigrationBetweenBackends(t *testing.T) {
	r := NewRing(10)
	for _, s := range []string{"one", "two", "three"} {
		addLine(r, s, false)
	}
	f, err := NewFile()
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	defer f.Close()

	termcore.MigrateHistory(r, f)
	if f.LineCount() != 3 {
		t.Fatalf("migrated count = %d, want 3", f.LineCount())
	}
	if got := lineText(f, 2); got != "three" {
		t.Fatalf("line 2 = %q, want %q", got, "three")
	}
}

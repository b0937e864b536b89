package history

import "github.com/konsolecore/termcore"

// Ring is a bounded in-memory scrollback: a fixed-size circular array
// of lines. Once full, each new line evicts the oldest by overwriting
// its slot; logical line numbers re-base on every eviction so that line
// 0 always means the oldest line still retained.
type Ring struct {
	lines      []line
	maxLines   int
	arrayIndex int // slot of the most recently finalized line
	count      int // number of valid slots (<= maxLines)
	pending    []termcore.Cell
}

type line struct {
	cells   []termcore.Cell
	wrapped bool
}

var _ termcore.HistoryStore = (*Ring)(nil)

// NewRing returns a ring buffer retaining at most maxLines scrollback
// lines. maxLines must be positive.
func NewRing(maxLines int) *Ring {
	if maxLines < 1 {
		maxLines = 1
	}
	return &Ring{lines: make([]line, maxLines), maxLines: maxLines}
}

// adjustLineNb maps a logical line number (0 = oldest) to its physical
// slot.
func (r *Ring) adjustLineNb(lineno int) int {
	return (r.arrayIndex + lineno - (r.count - 1) + r.maxLines) % r.maxLines
}

func (r *Ring) AppendCells(cells []termcore.Cell) {
	r.pending = append(r.pending, cells...)
}

func (r *Ring) FinalizeLine(wrapped bool) {
	cp := make([]termcore.Cell, len(r.pending))
	copy(cp, r.pending)
	r.pending = nil
	r.arrayIndex = (r.arrayIndex + 1) % r.maxLines
	r.lines[r.arrayIndex] = line{cells: cp, wrapped: wrapped}
	if r.count < r.maxLines {
		r.count++
	}
}

func (r *Ring) LineCount() int { return r.count }

func (r *Ring) LineLength(lineno int) int {
	if lineno < 0 || lineno >= r.count {
		return 0
	}
	return len(r.lines[r.adjustLineNb(lineno)].cells)
}

func (r *Ring) IsWrapped(lineno int) bool {
	if lineno < 0 || lineno >= r.count {
		return false
	}
	return r.lines[r.adjustLineNb(lineno)].wrapped
}

func (r *Ring) CellsAt(lineno, col, count int) []termcore.Cell {
	out := make([]termcore.Cell, count)
	var src []termcore.Cell
	if lineno >= 0 && lineno < r.count {
		src = r.lines[r.adjustLineNb(lineno)].cells
	}
	for i := 0; i < count; i++ {
		c := col + i
		if c >= 0 && c < len(src) {
			out[i] = src[c]
		} else {
			out[i] = termcore.DefaultCell
		}
	}
	return out
}

func (r *Ring) MaxLines() int { return r.maxLines }

// SetMaxLines resizes the ring, migrating the most recent min(count,n)
// lines into a freshly allocated array in logical order.
func (r *Ring) SetMaxLines(n int) {
	if n < 1 {
		n = 1
	}
	if n == r.maxLines {
		return
	}
	keep := r.count
	if keep > n {
		keep = n
	}
	newLines := make([]line, n)
	for i := 0; i < keep; i++ {
		logical := r.count - keep + i
		newLines[i] = r.lines[r.adjustLineNb(logical)]
	}
	r.lines = newLines
	r.maxLines = n
	r.count = keep
	r.arrayIndex = (keep - 1 + n) % n
}

func (r *Ring) Clear() {
	r.lines = make([]line, r.maxLines)
	r.arrayIndex = 0
	r.count = 0
	r.pending = nil
}

// Reflow re-breaks all stored lines at newColumns, dropping lines from
// the front if the rewrapped count exceeds maxLines, and returns how
// many were dropped.
func (r *Ring) Reflow(newColumns int) int {
	in := make([]termcore.ReflowLine, r.count)
	for i := 0; i < r.count; i++ {
		in[i] = termcore.ReflowLine{Cells: r.CellsAt(i, 0, r.LineLength(i)), Wrapped: r.IsWrapped(i)}
	}
	out := termcore.ReflowLines(in, newColumns)

	dropped := 0
	if len(out) > r.maxLines {
		dropped = len(out) - r.maxLines
		out = out[dropped:]
	}
	r.lines = make([]line, r.maxLines)
	r.arrayIndex = 0
	r.count = 0
	for _, l := range out {
		r.AppendCells(l.Cells)
		r.FinalizeLine(l.Wrapped)
	}
	return dropped
}

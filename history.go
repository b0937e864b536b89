package termcore

// HistoryStore is the pluggable scrollback backend. A Screen accumulates
// the cells of a row being scrolled off the top into the backend via
// AppendCells, then commits it with FinalizeLine; after that the line is
// immutable. Concrete backends (internal/history) range from a
// discarding sink to an unbounded disk-backed store.
type HistoryStore interface {
	// AppendCells accumulates cells onto the line currently being built.
	AppendCells(cells []Cell)
	// FinalizeLine commits the accumulated cells as one immutable
	// scrollback line. wrapped records whether the line continues from
	// screen overflow rather than an explicit newline.
	FinalizeLine(wrapped bool)
	// LineCount returns the number of committed lines currently stored.
	LineCount() int
	// LineLength returns the number of cells in the given line (0 is the
	// oldest line).
	LineLength(line int) int
	// CellsAt returns exactly count cells starting at col in the given
	// line; positions beyond the line's length yield DefaultCell.
	CellsAt(line, col, count int) []Cell
	// IsWrapped reports whether the given line continues onto the next
	// screen row rather than ending with a hard newline.
	IsWrapped(line int) bool
	// Reflow logically concatenates consecutive lines whose predecessor
	// is wrapped, then re-breaks them at newColumns, preserving the
	// wrapped flag on all but the last segment of each logical line. It
	// returns the number of lines dropped from the front when the store
	// is bounded and the new line count would exceed capacity.
	Reflow(newColumns int) int
	// MaxLines returns the configured retention limit, or 0 for unbounded.
	MaxLines() int
	// SetMaxLines changes the retention limit, evicting the oldest lines
	// immediately if the store now exceeds it.
	SetMaxLines(n int)
	// Clear discards all stored lines.
	Clear()
}

// MigrateHistory implements the swap_backend contract: lines are read
// from old in order and written to next, truncating from the front if
// next has a smaller bounded capacity than old held lines.
func MigrateHistory(old, next HistoryStore) {
	n := old.LineCount()
	start := 0
	if max := next.MaxLines(); max > 0 && n > max {
		start = n - max
	}
	for i := start; i < n; i++ {
		cells := old.CellsAt(i, 0, old.LineLength(i))
		next.AppendCells(cells)
		next.FinalizeLine(old.IsWrapped(i))
	}
}

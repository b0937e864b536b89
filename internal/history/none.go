// Package history implements the pluggable scrollback backends a Screen
// can use: a discarding sink, a bounded ring buffer, an unbounded
// disk-backed store, and a fixed-block array.
package history

import "github.com/konsolecore/termcore"

// None discards every line: scrollback is disabled entirely and
// LineCount always reports zero.
type None struct{}

var _ termcore.HistoryStore = None{}

func (None) AppendCells([]termcore.Cell)             {}
func (None) FinalizeLine(bool)                       {}
func (None) LineCount() int                          { return 0 }
func (None) LineLength(int) int                      { return 0 }
func (None) CellsAt(_, _, count int) []termcore.Cell {
	out := make([]termcore.Cell, count)
	for i := range out {
		out[i] = termcore.DefaultCell
	}
	return out
}
func (None) IsWrapped(int) bool                      { return false }
func (None) Reflow(int) int                          { return 0 }
func (None) MaxLines() int                           { return 0 }
func (None) SetMaxLines(int)                         {}
func (None) Clear()                                  {}

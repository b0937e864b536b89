package termcore

// Snapshot is a frame-like copy of the visible screen the refresh
// scheduler hands to attached displays: the cell grid, per-line flags,
// cursor state and the scrollback position it was taken at. The copy is
// deep, so the caller owns the storage and the live grid can keep
// mutating underneath it.
type Snapshot struct {
	Rows, Cols int
	Lines      []Line
	Cursor     Cursor
	// ScrollPosition is the number of history lines above the first
	// visible row at capture time.
	ScrollPosition int
}

// TakeSnapshot copies the screen's current visible state.
func (s *Screen) TakeSnapshot() Snapshot {
	lines := make([]Line, s.rows)
	for i := range s.lines {
		lines[i] = s.lines[i].Clone()
	}
	return Snapshot{
		Rows:           s.rows,
		Cols:           s.cols,
		Lines:          lines,
		Cursor:         s.cursor,
		ScrollPosition: s.history.LineCount(),
	}
}

// Equal reports whether two snapshots show the same content, used by
// displays to skip redundant repaints.
func (sn Snapshot) Equal(other Snapshot) bool {
	if sn.Rows != other.Rows || sn.Cols != other.Cols {
		return false
	}
	if sn.Cursor != other.Cursor || sn.ScrollPosition != other.ScrollPosition {
		return false
	}
	for i := range sn.Lines {
		if sn.Lines[i].Flags != other.Lines[i].Flags {
			return false
		}
		for j := range sn.Lines[i].Cells {
			if !sn.Lines[i].Cells[j].Equal(other.Lines[i].Cells[j]) {
				return false
			}
		}
	}
	return true
}

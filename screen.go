package termcore

// Screen is one of the terminal's two grids: its cells, cursor, scrolling
// margins, current rendition, tab stops and selection. A Session owns a
// primary Screen (with scrollback) and an alternate Screen (without), and
// switches which one is "active" when the application requests the
// alternate-screen DEC private mode.
type Screen struct {
	rows, cols int
	lines      []Line

	cursor      Cursor
	savedCursor SavedCursor

	template CellTemplate

	charsets     [4]Charset
	charsetIndex CharsetIndex

	marginTop    int
	marginBottom int

	tabStops []bool

	modes ScreenModes

	history HistoryStore

	// droppedLines counts scrollback lines evicted from the front of a
	// bounded history store, so absolute selection coordinates can tell
	// "scrolled into history" apart from "gone for good".
	droppedLines int

	selection Selection
}

// NewScreen allocates a blank rows x cols screen. history may be nil, in
// which case scrolled-off lines are simply discarded (equivalent to
// history.None).
func NewScreen(rows, cols int, history HistoryStore) *Screen {
	if history == nil {
		history = noopHistory{}
	}
	s := &Screen{
		rows:         rows,
		cols:         cols,
		lines:        make([]Line, rows),
		cursor:       *NewCursor(),
		template:     NewCellTemplate(),
		marginBottom: rows - 1,
		tabStops:     make([]bool, cols),
		modes:        ModeAutoWrap,
		history:      history,
	}
	for i := range s.lines {
		s.lines[i] = NewLine(cols)
	}
	s.resetTabStops()
	return s
}

type noopHistory struct{}

func (noopHistory) AppendCells([]Cell)             {}
func (noopHistory) FinalizeLine(bool)              {}
func (noopHistory) LineCount() int                 { return 0 }
func (noopHistory) LineLength(int) int             { return 0 }
func (noopHistory) CellsAt(_, _, count int) []Cell {
	out := make([]Cell, count)
	for i := range out {
		out[i] = DefaultCell
	}
	return out
}
func (noopHistory) IsWrapped(int) bool             { return false }
func (noopHistory) Reflow(int) int                 { return 0 }
func (noopHistory) MaxLines() int                  { return 0 }
func (noopHistory) SetMaxLines(int)                {}
func (noopHistory) Clear()                         {}

func (s *Screen) resetTabStops() {
	for i := range s.tabStops {
		s.tabStops[i] = i%8 == 0
	}
}

// Rows returns the screen height.
func (s *Screen) Rows() int { return s.rows }

// Cols returns the screen width.
func (s *Screen) Cols() int { return s.cols }

// Cursor returns a copy of the current cursor state.
func (s *Screen) Cursor() Cursor { return s.cursor }

// Line returns the line at the given row, or the zero Line if out of range.
func (s *Screen) Line(row int) Line {
	if row < 0 || row >= s.rows {
		return Line{}
	}
	return s.lines[row]
}

// Cell returns the cell at (row, col), or DefaultCell if out of range.
func (s *Screen) Cell(row, col int) Cell {
	if row < 0 || row >= s.rows || col < 0 || col >= s.cols {
		return DefaultCell
	}
	return s.lines[row].Cells[col]
}

func (s *Screen) setCell(row, col int, c Cell) {
	if row < 0 || row >= s.rows || col < 0 || col >= s.cols {
		return
	}
	s.lines[row].Cells[col] = c
}

// --- cursor motion ---

// top and bottom return the rows vertical cursor motion is clamped to:
// the scrolling margins when origin mode is active (DECOM semantics),
// otherwise the screen edges.
func (s *Screen) top() int {
	if s.hasMode(ModeOrigin) {
		return s.marginTop
	}
	return 0
}

func (s *Screen) bottom() int {
	if s.hasMode(ModeOrigin) {
		return s.marginBottom
	}
	return s.rows - 1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MoveCursor sets the cursor to (row, col), expressed relative to the
// origin region when origin mode is active, clamped to the screen.
func (s *Screen) MoveCursor(row, col int) {
	base := 0
	if s.hasMode(ModeOrigin) {
		base = s.marginTop
	}
	s.cursor.Row = clamp(base+row, 0, s.rows-1)
	s.cursor.Col = clamp(col, 0, s.cols-1)
	s.cursor.Pending = false
}

// CursorUp moves the cursor up n rows, stopping at the top margin when
// origin mode is active and at row 0 otherwise.
func (s *Screen) CursorUp(n int) {
	s.cursor.Row = clamp(s.cursor.Row-n, s.top(), s.rows-1)
	s.cursor.Pending = false
}

// CursorDown moves the cursor down n rows, stopping at the bottom margin
// when origin mode is active and at the last row otherwise.
func (s *Screen) CursorDown(n int) {
	s.cursor.Row = clamp(s.cursor.Row+n, 0, s.bottom())
	s.cursor.Pending = false
}

// CursorLeft moves the cursor left n columns, stopping at column 0.
func (s *Screen) CursorLeft(n int) {
	s.cursor.Col = clamp(s.cursor.Col-n, 0, s.cols-1)
	s.cursor.Pending = false
}

// CursorRight moves the cursor right n columns, stopping at the last column.
func (s *Screen) CursorRight(n int) {
	s.cursor.Col = clamp(s.cursor.Col+n, 0, s.cols-1)
	s.cursor.Pending = false
}

// SetMargins sets the scrolling region (0-based, inclusive). Invalid
// regions (top >= bottom, out of range) are ignored, as VT100 requires.
func (s *Screen) SetMargins(top, bottom int) {
	if top < 0 {
		top = 0
	}
	if bottom >= s.rows {
		bottom = s.rows - 1
	}
	if top >= bottom {
		return
	}
	s.marginTop = top
	s.marginBottom = bottom
	s.MoveCursor(0, 0)
}

// Margins returns the current scrolling region.
func (s *Screen) Margins() (top, bottom int) { return s.marginTop, s.marginBottom }

// --- line feed / scrolling ---

// NewLine moves the cursor down one row, scrolling the margin region if
// already at the bottom margin, and returns to column 0 if LNM is set.
func (s *Screen) NewLine() {
	s.Index()
	if s.hasMode(ModeNewLine) {
		s.cursor.Col = 0
	}
}

// Index moves the cursor down one row (IND), scrolling within the
// margins when the cursor sits on the bottom margin row.
func (s *Screen) Index() {
	if s.cursor.Row == s.marginBottom {
		s.ScrollUp(1)
		return
	}
	if s.cursor.Row < s.rows-1 {
		s.cursor.Row++
	}
	s.cursor.Pending = false
}

// ReverseIndex moves the cursor up one row (RI), scrolling down within
// the margins when the cursor sits on the top margin row.
func (s *Screen) ReverseIndex() {
	if s.cursor.Row == s.marginTop {
		s.ScrollDown(1)
		return
	}
	if s.cursor.Row > 0 {
		s.cursor.Row--
	}
	s.cursor.Pending = false
}

// Return moves the cursor to column 0 (CR).
func (s *Screen) Return() { s.cursor.Col = 0; s.cursor.Pending = false }

// ScrollUp shifts the margin region up by n rows, pushing evicted rows
// into history when the margin's top coincides with row 0, the only
// case in which evicted content is genuinely scrollback rather than a
// region-local shuffle.
func (s *Screen) ScrollUp(n int) {
	s.scroll(s.marginTop, s.marginBottom, n, true)
}

// ScrollDown shifts the margin region down by n rows.
func (s *Screen) ScrollDown(n int) {
	s.scroll(s.marginTop, s.marginBottom, n, false)
}

func (s *Screen) scroll(top, bottom, n int, up bool) {
	if n <= 0 || top > bottom || bottom >= s.rows {
		return
	}
	span := bottom - top + 1
	if n > span {
		n = span
	}
	if up {
		if top == 0 {
			before := s.history.LineCount()
			for i := 0; i < n; i++ {
				s.history.AppendCells(s.lines[i].Cells)
				s.history.FinalizeLine(s.lines[i].HasFlag(LineWrapped))
			}
			grew := s.history.LineCount() - before
			if grew < n {
				s.droppedLines += n - grew
			}
			s.collapseStaleSelection()
		}
		copy(s.lines[top:bottom+1-n], s.lines[top+n:bottom+1])
		for i := bottom + 1 - n; i <= bottom; i++ {
			s.lines[i] = NewLine(s.cols)
		}
	} else {
		copy(s.lines[top+n:bottom+1], s.lines[top:bottom+1-n])
		for i := top; i < top+n; i++ {
			s.lines[i] = NewLine(s.cols)
		}
	}
}

// InsertLines inserts n blank lines at the cursor row, shifting lines
// within [cursorRow, marginBottom] down. A no-op outside the margins.
func (s *Screen) InsertLines(n int) {
	if s.cursor.Row < s.marginTop || s.cursor.Row > s.marginBottom {
		return
	}
	s.scroll(s.cursor.Row, s.marginBottom, n, false)
}

// DeleteLines removes n lines at the cursor row, shifting lines within
// [cursorRow, marginBottom] up. A no-op outside the margins.
func (s *Screen) DeleteLines(n int) {
	if s.cursor.Row < s.marginTop || s.cursor.Row > s.marginBottom {
		return
	}
	top, bottom := s.cursor.Row, s.marginBottom
	if n <= 0 || top > bottom {
		return
	}
	span := bottom - top + 1
	if n > span {
		n = span
	}
	copy(s.lines[top:bottom+1-n], s.lines[top+n:bottom+1])
	for i := bottom + 1 - n; i <= bottom; i++ {
		s.lines[i] = NewLine(s.cols)
	}
}

// --- text output ---

// PutChar writes r at the cursor position using the current rendition
// template, advancing the cursor. Handles deferred autowrap: a printable
// character arriving when the cursor already sits past the last column
// wraps to the next line first.
func (s *Screen) PutChar(r rune) {
	r = translateChar(r, s.charsets[s.charsetIndex])
	width := runeWidth(r)
	if width == 0 {
		width = 1
	}

	if s.cursor.Pending && s.hasMode(ModeAutoWrap) {
		s.lines[s.cursor.Row].Flags |= LineWrapped
		s.NewLine()
		s.cursor.Col = 0
	}

	if s.cursor.Col+width > s.cols {
		if s.hasMode(ModeAutoWrap) {
			s.lines[s.cursor.Row].Flags |= LineWrapped
			s.NewLine()
			s.cursor.Col = 0
		} else {
			s.cursor.Col = s.cols - width
		}
	}

	if s.hasMode(ModeInsert) {
		s.InsertBlanks(width)
	}

	s.setCell(s.cursor.Row, s.cursor.Col, s.template.Apply(r))
	for i := 1; i < width; i++ {
		s.setCell(s.cursor.Row, s.cursor.Col+i, s.template.Apply(0))
	}

	if s.cursor.Col+width >= s.cols {
		s.cursor.Col = s.cols - 1
		s.cursor.Pending = true
	} else {
		s.cursor.Col += width
	}
}

// --- editing ---

// InsertBlanks inserts n blank cells at the cursor column, shifting the
// rest of the line right; cells pushed past the last column are lost.
func (s *Screen) InsertBlanks(n int) {
	row, col := s.cursor.Row, s.cursor.Col
	if row < 0 || row >= s.rows || n <= 0 {
		return
	}
	cells := s.lines[row].Cells
	for c := s.cols - 1; c >= col+n; c-- {
		cells[c] = cells[c-n]
	}
	for c := col; c < col+n && c < s.cols; c++ {
		cells[c] = s.template.Apply(' ')
	}
}

// DeleteChars removes n cells at the cursor column, shifting the rest of
// the line left and filling the vacated end with the current template.
func (s *Screen) DeleteChars(n int) {
	row, col := s.cursor.Row, s.cursor.Col
	if row < 0 || row >= s.rows || n <= 0 {
		return
	}
	cells := s.lines[row].Cells
	for c := col; c < s.cols-n; c++ {
		cells[c] = cells[c+n]
	}
	for c := s.cols - n; c < s.cols; c++ {
		if c >= 0 {
			cells[c] = s.template.Apply(' ')
		}
	}
}

// EraseChars blanks n cells starting at the cursor column, without
// shifting the rest of the line (ECH).
func (s *Screen) EraseChars(n int) {
	row, col := s.cursor.Row, s.cursor.Col
	if row < 0 || row >= s.rows {
		return
	}
	end := col + n
	if end > s.cols {
		end = s.cols
	}
	for c := col; c < end; c++ {
		s.lines[row].Cells[c] = s.template.Apply(' ')
	}
}

// ClearRegion describes which part of a line or screen an erase targets.
type ClearRegion int

const (
	ClearToEnd ClearRegion = iota
	ClearToStart
	ClearAll
)

// EraseInLine implements EL: clear from cursor to end of line, start of
// line to cursor, or the whole line.
func (s *Screen) EraseInLine(region ClearRegion) {
	row := s.cursor.Row
	if row < 0 || row >= s.rows {
		return
	}
	lo, hi := 0, s.cols
	switch region {
	case ClearToEnd:
		lo = s.cursor.Col
	case ClearToStart:
		hi = s.cursor.Col + 1
	case ClearAll:
	}
	for c := lo; c < hi; c++ {
		s.lines[row].Cells[c] = s.template.Apply(' ')
	}
}

// EraseInDisplay implements ED: clear from cursor to end of screen, start
// of screen to cursor, or the whole screen.
func (s *Screen) EraseInDisplay(region ClearRegion) {
	switch region {
	case ClearToEnd:
		s.EraseInLine(ClearToEnd)
		for r := s.cursor.Row + 1; r < s.rows; r++ {
			s.lines[r] = NewLine(s.cols)
		}
	case ClearToStart:
		s.EraseInLine(ClearToStart)
		for r := 0; r < s.cursor.Row; r++ {
			s.lines[r] = NewLine(s.cols)
		}
	case ClearAll:
		for r := 0; r < s.rows; r++ {
			s.lines[r] = NewLine(s.cols)
		}
	}
}

// FillWithE fills every cell with 'E', used by DECALN.
func (s *Screen) FillWithE() {
	for r := range s.lines {
		for c := range s.lines[r].Cells {
			s.lines[r].Cells[c] = Cell{Char: 'E', Fg: DefaultColor(ColorIndexForeground, false), Bg: DefaultColor(ColorIndexBackground, false)}
		}
	}
}

// --- tabs ---

func (s *Screen) SetTabStop(col int) {
	if col >= 0 && col < s.cols {
		s.tabStops[col] = true
	}
}

func (s *Screen) ClearTabStop(col int) {
	if col >= 0 && col < s.cols {
		s.tabStops[col] = false
	}
}

func (s *Screen) ClearAllTabStops() {
	for i := range s.tabStops {
		s.tabStops[i] = false
	}
}

// Tab advances the cursor to the next tab stop, or the last column if none.
func (s *Screen) Tab() {
	for c := s.cursor.Col + 1; c < s.cols; c++ {
		if s.tabStops[c] {
			s.cursor.Col = c
			return
		}
	}
	s.cursor.Col = s.cols - 1
}

// BackTab moves the cursor to the previous tab stop, or column 0 if none.
func (s *Screen) BackTab() {
	for c := s.cursor.Col - 1; c >= 0; c-- {
		if s.tabStops[c] {
			s.cursor.Col = c
			return
		}
	}
	s.cursor.Col = 0
}

// --- rendition template ---

// SetTemplate replaces the rendition/colors applied to subsequently
// printed characters (the effect of an SGR sequence).
func (s *Screen) SetTemplate(t CellTemplate) { s.template = t }

// Template returns the current rendition template.
func (s *Screen) Template() CellTemplate { return s.template }

// --- save/restore cursor (DECSC/DECRC) ---

func (s *Screen) SaveCursor() {
	s.savedCursor = SavedCursor{
		Row:          s.cursor.Row,
		Col:          s.cursor.Col,
		Template:     s.template,
		OriginMode:   s.hasMode(ModeOrigin),
		CharsetIndex: s.charsetIndex,
		Charsets:     s.charsets,
	}
}

func (s *Screen) RestoreCursor() {
	s.cursor.Row = clamp(s.savedCursor.Row, 0, s.rows-1)
	s.cursor.Col = clamp(s.savedCursor.Col, 0, s.cols-1)
	s.cursor.Pending = false
	s.template = s.savedCursor.Template
	s.setMode(ModeOrigin, s.savedCursor.OriginMode)
	s.charsetIndex = s.savedCursor.CharsetIndex
	s.charsets = s.savedCursor.Charsets
}

// --- resize ---

// Resize changes the screen's dimensions. Rows are preserved top-down;
// growing adds blank rows at the bottom, shrinking drops rows at the
// bottom, anchoring content at the top-left. Columns are
// truncated or padded per row without attempting to reflow wrapped text;
// the Session layer calls ReflowHistory separately after invoking this
// when a full reflow is desired.
func (s *Screen) Resize(rows, cols int) {
	if rows <= 0 || cols <= 0 {
		return
	}
	newLines := make([]Line, rows)
	for r := 0; r < rows; r++ {
		if r < len(s.lines) {
			newLines[r] = resizeLine(s.lines[r], cols)
		} else {
			newLines[r] = NewLine(cols)
		}
	}
	newTabStops := make([]bool, cols)
	copy(newTabStops, s.tabStops)
	for i := len(s.tabStops); i < cols; i += 8 {
		newTabStops[i] = true
	}

	s.lines = newLines
	s.tabStops = newTabStops
	s.rows = rows
	s.cols = cols
	s.marginTop = 0
	s.marginBottom = rows - 1
	s.cursor.Row = clamp(s.cursor.Row, 0, rows-1)
	s.cursor.Col = clamp(s.cursor.Col, 0, cols-1)
	s.cursor.Pending = false
}

func resizeLine(l Line, cols int) Line {
	cells := make([]Cell, cols)
	for i := range cells {
		if i < len(l.Cells) {
			cells[i] = l.Cells[i]
		} else {
			cells[i] = NewCell()
		}
	}
	return Line{Cells: cells, Flags: l.Flags}
}

// --- selection & export ---

// AbsoluteRow converts a visible row to its absolute (history-aware)
// line index: lines dropped from a bounded scrollback, then retained
// history, then the visible grid.
func (s *Screen) AbsoluteRow(visibleRow int) int {
	return s.droppedLines + s.history.LineCount() + visibleRow
}

// DroppedLines returns how many scrollback lines have been evicted from
// the front of the history store.
func (s *Screen) DroppedLines() int { return s.droppedLines }

// BeginSelection anchors a new selection at the given absolute
// coordinate; columnar selects a rectangular block instead of a linear
// reading-order span.
func (s *Screen) BeginSelection(absRow, col int, columnar bool) {
	p := Position{Row: absRow, Col: col}
	s.selection = Selection{Start: p, End: p, Active: true, Columnar: columnar}
}

// ExtendSelection moves the selection's free end to the given absolute
// coordinate, keeping Start before End in reading order.
func (s *Screen) ExtendSelection(absRow, col int) {
	if !s.selection.Active {
		s.BeginSelection(absRow, col, false)
		return
	}
	p := Position{Row: absRow, Col: col}
	if p.Before(s.selection.Start) {
		s.selection.End = s.selection.Start
		s.selection.Start = p
	} else {
		s.selection.End = p
	}
}

// ClearSelection deactivates the selection.
func (s *Screen) ClearSelection() { s.selection = Selection{} }

// GetSelection returns the current selection in absolute coordinates.
func (s *Screen) GetSelection() Selection { return s.selection }

// collapseStaleSelection clears a selection whose start has fallen below
// the retained history window.
func (s *Screen) collapseStaleSelection() {
	if s.selection.Active && s.selection.Start.Row < s.droppedLines {
		s.ClearSelection()
	}
}

// selectionLine fetches the cells and wrap flag of one absolute line,
// reading from history or the visible grid as appropriate. ok is false
// when the line is outside the retained window.
func (s *Screen) selectionLine(absRow int) (cells []Cell, wrapped, ok bool) {
	idx := absRow - s.droppedLines
	if idx < 0 {
		return nil, false, false
	}
	hist := s.history.LineCount()
	if idx < hist {
		return s.history.CellsAt(idx, 0, s.history.LineLength(idx)), s.history.IsWrapped(idx), true
	}
	vis := idx - hist
	if vis >= s.rows {
		return nil, false, false
	}
	return s.lines[vis].Cells, s.lines[vis].HasFlag(LineWrapped), true
}

// SelectedText returns the plain-text content of the active selection,
// reading scrolled-out rows from history, joining rows with newlines and
// honoring each line's wrapped flag (a wrapped line is joined without
// inserting a break).
func (s *Screen) SelectedText() string {
	if !s.selection.Active {
		return ""
	}
	var out []rune
	for r := s.selection.Start.Row; r <= s.selection.End.Row; r++ {
		cells, wrapped, ok := s.selectionLine(r)
		if !ok {
			continue
		}
		lo, hi := 0, len(cells)-1
		if !s.selection.Columnar {
			if r == s.selection.Start.Row {
				lo = s.selection.Start.Col
			}
			if r == s.selection.End.Row && s.selection.End.Col < hi {
				hi = s.selection.End.Col
			}
		} else {
			lo, hi = s.selection.Start.Col, s.selection.End.Col
			if lo > hi {
				lo, hi = hi, lo
			}
			if hi > len(cells)-1 {
				hi = len(cells) - 1
			}
		}
		for c := lo; c <= hi && c < len(cells); c++ {
			ch := cells[c].Char
			if ch == 0 {
				continue
			}
			out = append(out, ch)
		}
		if r < s.selection.End.Row && !wrapped {
			out = append(out, '\n')
		}
	}
	return string(out)
}

// LineText returns the trimmed plain-text content of a screen row.
func (s *Screen) LineText(row int) string { return s.Line(row).Text() }

// String renders the whole visible screen as plain text, one line per row.
func (s *Screen) String() string {
	var out []byte
	for r := 0; r < s.rows; r++ {
		if r > 0 {
			out = append(out, '\n')
		}
		out = append(out, []byte(s.lines[r].Text())...)
	}
	return string(out)
}

package history

import (
	"bytes"
	"encoding/gob"
	"io"
	"os"

	"github.com/konsolecore/termcore"
)

// File is the unbounded scrollback backend: line content is appended to
// a temporary on-disk file rather than kept resident, so scrollback size
// is bounded only by disk space. The file is unlinked immediately after
// opening; the descriptor stays valid for the life of the process but no
// directory entry survives a crash. A small in-memory index records the
// byte offset and wrap flag of each line.
type File struct {
	f       *os.File
	offset  int64
	index   []int64 // byte offset where each line's record starts
	wrap    []bool
	failed  bool // set once a write fails; further appends become no-ops
	pending []termcore.Cell
}

var _ termcore.HistoryStore = (*File)(nil)

// NewFile creates a file-backed store using a fresh temp file, unlinked
// immediately so its directory entry disappears even if the process is
// killed.
func NewFile() (*File, error) {
	f, err := os.CreateTemp("", "konsole-scrollback-*.bin")
	if err != nil {
		return nil, err
	}
	name := f.Name()
	if err := os.Remove(name); err != nil {
		f.Close()
		return nil, err
	}
	return &File{f: f}, nil
}

// Failed reports whether a prior write to the backing file failed (disk
// full, file vanished): once true, further appends are silent no-ops and
// the Session is expected to surface a one-time warning.
func (s *File) Failed() bool { return s.failed }

type fileRecord struct {
	Cells []termcore.Cell
}

func (s *File) AppendCells(cells []termcore.Cell) {
	if s.failed {
		return
	}
	s.pending = append(s.pending, cells...)
}

func (s *File) FinalizeLine(wrapped bool) {
	if s.failed {
		s.pending = nil
		return
	}
	cp := make([]termcore.Cell, len(s.pending))
	copy(cp, s.pending)
	s.pending = nil

	var buf bytes.Buffer
	rec := fileRecord{Cells: cp}
	if err := gob.NewEncoder(&buf).Encode(&rec); err != nil {
		s.failed = true
		return
	}
	n, err := s.f.WriteAt(buf.Bytes(), s.offset)
	if err != nil {
		s.failed = true
		return
	}
	s.index = append(s.index, s.offset)
	s.wrap = append(s.wrap, wrapped)
	s.offset += int64(n)
}

func (s *File) LineCount() int { return len(s.index) }

func (s *File) readLine(lineno int) []termcore.Cell {
	if lineno < 0 || lineno >= len(s.index) {
		return nil
	}
	start := s.index[lineno]
	var end int64
	if lineno+1 < len(s.index) {
		end = s.index[lineno+1]
	} else {
		end = s.offset
	}
	buf := make([]byte, end-start)
	if _, err := s.f.ReadAt(buf, start); err != nil && err != io.EOF {
		return nil
	}
	var rec fileRecord
	if err := gob.NewDecoder(bytes.NewReader(buf)).Decode(&rec); err != nil {
		return nil
	}
	return rec.Cells
}

func (s *File) LineLength(lineno int) int { return len(s.readLine(lineno)) }

func (s *File) IsWrapped(lineno int) bool {
	if lineno < 0 || lineno >= len(s.wrap) {
		return false
	}
	return s.wrap[lineno]
}

func (s *File) CellsAt(lineno, col, count int) []termcore.Cell {
	out := make([]termcore.Cell, count)
	src := s.readLine(lineno)
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

// MaxLines is always 0 (unbounded) for the file backend.
func (s *File) MaxLines() int { return 0 }

// SetMaxLines is a no-op; the file backend never evicts on its own.
func (s *File) SetMaxLines(int) {}

func (s *File) Clear() {
	s.index = nil
	s.wrap = nil
	s.offset = 0
	_ = s.f.Truncate(0)
}

// Reflow re-breaks all stored lines at newColumns; the file backend is
// unbounded so nothing is ever dropped from the front.
func (s *File) Reflow(newColumns int) int {
	n := s.LineCount()
	in := make([]termcore.ReflowLine, n)
	for i := 0; i < n; i++ {
		in[i] = termcore.ReflowLine{Cells: s.CellsAt(i, 0, s.LineLength(i)), Wrapped: s.IsWrapped(i)}
	}
	out := termcore.ReflowLines(in, newColumns)

	s.index = nil
	s.wrap = nil
	s.offset = 0
	_ = s.f.Truncate(0)
	for _, l := range out {
		s.AppendCells(l.Cells)
		s.FinalizeLine(l.Wrapped)
	}
	return 0
}

// Close removes the backing file descriptor. The directory entry is
// already gone (NewFile unlinks it on open); this only releases the fd.
func (s *File) Close() error {
	return s.f.Close()
}

package history

import "github.com/konsolecore/termcore"

const blockArrayBlockSize = 1024

// BlockArray stores scrollback lines in fixed-size blocks, evicting
// whole blocks once the configured block budget is exceeded rather than
// shuffling individual lines: bulk allocation/eviction trades a coarser
// eviction granularity for cheaper appends than a per-line ring.
type BlockArray struct {
	blocks      [][]line
	maxBlocks   int
	evictedLine int // logical index of the first line still stored
	pending     []termcore.Cell
}

var _ termcore.HistoryStore = (*BlockArray)(nil)

// NewBlockArray returns a block-array store that retains up to
// maxBlocks*blockSize lines before evicting the oldest block.
func NewBlockArray(maxBlocks int) *BlockArray {
	if maxBlocks < 1 {
		maxBlocks = 1
	}
	return &BlockArray{maxBlocks: maxBlocks}
}

func (b *BlockArray) AppendCells(cells []termcore.Cell) {
	b.pending = append(b.pending, cells...)
}

func (b *BlockArray) FinalizeLine(wrapped bool) {
	cp := make([]termcore.Cell, len(b.pending))
	copy(cp, b.pending)
	b.pending = nil
	if len(b.blocks) == 0 || len(b.blocks[len(b.blocks)-1]) >= blockArrayBlockSize {
		b.blocks = append(b.blocks, make([]line, 0, blockArrayBlockSize))
	}
	last := len(b.blocks) - 1
	b.blocks[last] = append(b.blocks[last], line{cells: cp, wrapped: wrapped})

	if len(b.blocks) > b.maxBlocks {
		b.evictedLine += len(b.blocks[0])
		b.blocks = b.blocks[1:]
	}
}

// resolve maps a logical line number (0 = oldest still retained; indices
// re-base when a block is evicted) to its block and in-block position.
func (b *BlockArray) resolve(lineno int) (int, int, bool) {
	idx := lineno
	if idx < 0 {
		return 0, 0, false
	}
	for bi, blk := range b.blocks {
		if idx < len(blk) {
			return bi, idx, true
		}
		idx -= len(blk)
	}
	return 0, 0, false
}

// EvictedLines returns how many lines have been dropped from the front
// since the store was created, letting absolute (history-aware) selection
// coordinates detect that they fell below the retained window.
func (b *BlockArray) EvictedLines() int { return b.evictedLine }

func (b *BlockArray) LineCount() int {
	n := 0
	for _, blk := range b.blocks {
		n += len(blk)
	}
	return n
}

func (b *BlockArray) LineLength(lineno int) int {
	bi, i, ok := b.resolve(lineno)
	if !ok {
		return 0
	}
	return len(b.blocks[bi][i].cells)
}

func (b *BlockArray) IsWrapped(lineno int) bool {
	bi, i, ok := b.resolve(lineno)
	if !ok {
		return false
	}
	return b.blocks[bi][i].wrapped
}

func (b *BlockArray) CellsAt(lineno, col, count int) []termcore.Cell {
	out := make([]termcore.Cell, count)
	var src []termcore.Cell
	if bi, i, ok := b.resolve(lineno); ok {
		src = b.blocks[bi][i].cells
	}
	for j := 0; j < count; j++ {
		c := col + j
		if c >= 0 && c < len(src) {
			out[j] = src[c]
		} else {
			out[j] = termcore.DefaultCell
		}
	}
	return out
}

func (b *BlockArray) MaxLines() int { return b.maxBlocks * blockArrayBlockSize }

func (b *BlockArray) SetMaxLines(n int) {
	if n < blockArrayBlockSize {
		n = blockArrayBlockSize
	}
	b.maxBlocks = n / blockArrayBlockSize
	for len(b.blocks) > b.maxBlocks {
		b.evictedLine += len(b.blocks[0])
		b.blocks = b.blocks[1:]
	}
}

func (b *BlockArray) Clear() {
	b.blocks = nil
	b.evictedLine = 0
	b.pending = nil
}

// Reflow re-breaks all stored lines at newColumns, dropping the excess
// lines from the front if the rewrapped count exceeds capacity.
func (b *BlockArray) Reflow(newColumns int) int {
	total := b.LineCount()
	in := make([]termcore.ReflowLine, total)
	for i := 0; i < total; i++ {
		in[i] = termcore.ReflowLine{Cells: b.CellsAt(i, 0, b.LineLength(i)), Wrapped: b.IsWrapped(i)}
	}
	out := termcore.ReflowLines(in, newColumns)

	maxLines := b.MaxLines()
	dropped := 0
	if len(out) > maxLines {
		dropped = len(out) - maxLines
		out = out[dropped:]
	}
	b.blocks = nil
	b.evictedLine = 0
	for _, l := range out {
		b.AppendCells(l.Cells)
		b.FinalizeLine(l.Wrapped)
	}
	return dropped
}

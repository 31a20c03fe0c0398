// Package completion tracks which target blocks the assembler has already
// filled, and turns the complement of that set into fetchable byte ranges.
package completion

import "github.com/keshon/zsync/internal/byterange"

// Map is a bit vector over the target's blocks plus a decrementing
// remaining counter. Filled is terminal: re-filling an already-filled block
// is always a no-op.
type Map struct {
	filled      []bool
	blockSize   int64
	length      int64
	numBlocks   int64
	remaining   int64
}

// New builds a Map for a target of length bytes split into blockSize
// blocks. All blocks start unfilled.
func New(length, blockSize int64) *Map {
	numBlocks := (length + blockSize - 1) / blockSize
	if length == 0 {
		numBlocks = 0
	}
	return &Map{
		filled:    make([]bool, numBlocks),
		blockSize: blockSize,
		length:    length,
		numBlocks: numBlocks,
		remaining: numBlocks,
	}
}

// NumBlocks returns the total number of blocks tracked.
func (m *Map) NumBlocks() int64 { return m.numBlocks }

// Remaining returns the number of blocks still unfilled.
func (m *Map) Remaining() int64 { return m.remaining }

// Done reports whether every block has been filled.
func (m *Map) Done() bool { return m.remaining == 0 }

// IsFilled reports whether block index pos has already been filled.
func (m *Map) IsFilled(pos int64) bool {
	if pos < 0 || pos >= m.numBlocks {
		return false
	}
	return m.filled[pos]
}

// Fill marks block pos filled, returning true if it was previously unfilled
// (i.e. this call actually changed state) and false on a redundant call.
func (m *Map) Fill(pos int64) bool {
	if pos < 0 || pos >= m.numBlocks {
		return false
	}
	if m.filled[pos] {
		return false
	}
	m.filled[pos] = true
	m.remaining--
	return true
}

// FillRange marks every block in [firstBlock, lastBlock] (inclusive) filled,
// returning the count of blocks newly filled by this call.
func (m *Map) FillRange(firstBlock, lastBlock int64) int {
	n := 0
	for b := firstBlock; b <= lastBlock; b++ {
		if m.Fill(b) {
			n++
		}
	}
	return n
}

// MissingRanges returns the ascending, non-overlapping byte ranges covering
// every unfilled block, coalescing contiguous runs. The final range is
// truncated to length-1 rather than extending to the nominal end of its
// block.
func (m *Map) MissingRanges() []byterange.Range {
	var out []byterange.Range
	var runStart int64 = -1

	flush := func(runEndBlock int64) {
		if runStart < 0 {
			return
		}
		first := runStart * m.blockSize
		last := (runEndBlock+1)*m.blockSize - 1
		if last > m.length-1 {
			last = m.length - 1
		}
		out = append(out, byterange.New(first, last))
		runStart = -1
	}

	for b := int64(0); b < m.numBlocks; b++ {
		if m.filled[b] {
			flush(b - 1)
			continue
		}
		if runStart < 0 {
			runStart = b
		}
	}
	flush(m.numBlocks - 1)
	return out
}

// BlockSize returns the target's nominal block size.
func (m *Map) BlockSize() int64 { return m.blockSize }

// LastBlockSize returns the effective size of the final block, which is
// shorter than blockSize unless length is an exact multiple of it.
func (m *Map) LastBlockSize() int64 {
	if m.numBlocks == 0 {
		return 0
	}
	rem := m.length % m.blockSize
	if rem == 0 {
		return m.blockSize
	}
	return rem
}

// BlockWidth returns the write width for block pos: blockSize for every
// block but the last, lastBlockSize for the last.
func (m *Map) BlockWidth(pos int64) int64 {
	if pos == m.numBlocks-1 {
		return m.LastBlockSize()
	}
	return m.blockSize
}

package controlfile

import "time"

// Header carries the textual metadata block of a control file.
type Header struct {
	Version   string // "zsync" key; format version, e.g. "0.6.2"
	Filename  string
	MTime     time.Time
	BlockSize int
	Length    int64

	// SequenceMatches is the first element of Hash-Lengths: a hint for how
	// many consecutive weak hits to require before trusting a match at
	// small block sizes. This implementation always strong-hash-gates
	// every weak hit regardless, so the field is retained only so headers
	// round-trip exactly.
	SequenceMatches int
	WeakLen         int // bytes of rolling checksum retained, 2..4
	StrongLen       int // bytes of MD4 retained, 1..16

	URL  string
	SHA1 string // 40 lowercase/uppercase hex characters
}

// NumBlocks returns ceil(Length / BlockSize), the number of BlockSum entries
// the block-sum table must contain.
func (h Header) NumBlocks() int64 {
	if h.BlockSize <= 0 {
		return 0
	}
	if h.Length == 0 {
		return 0
	}
	return (h.Length + int64(h.BlockSize) - 1) / int64(h.BlockSize)
}

// LastBlockSize returns the effective size of the final block, which is
// shorter than BlockSize unless Length is an exact multiple of it.
func (h Header) LastBlockSize() int {
	if h.Length == 0 || h.BlockSize <= 0 {
		return 0
	}
	rem := h.Length % int64(h.BlockSize)
	if rem == 0 {
		return h.BlockSize
	}
	return int(rem)
}

// BlockWidth returns the effective width of block index position pos: the
// configured block size for every block except the last, which is
// LastBlockSize.
func (h Header) BlockWidth(pos int64) int {
	if pos == h.NumBlocks()-1 {
		return h.LastBlockSize()
	}
	return h.BlockSize
}

package controlfile

import "bytes"

// BlockSum is the per-block record stored in the control file's binary
// table: a weak checksum (stored big-endian as weak_len bytes, the
// most-significant bytes of the full 32-bit rolling checksum — see
// internal/checksum.Truncate) and an opaque strong-hash byte string.
type BlockSum struct {
	Weak   uint32
	Strong []byte
}

// Equal compares two BlockSums pairwise over both fields.
func (b BlockSum) Equal(o BlockSum) bool {
	return b.Weak == o.Weak && bytes.Equal(b.Strong, o.Strong)
}

// ControlFile is the immutable aggregate of a Header plus its ordered
// block-sum table.
type ControlFile struct {
	Header Header
	Blocks []BlockSum
}

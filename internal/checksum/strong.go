package checksum

import (
	"bytes"

	"golang.org/x/crypto/md4"
)

// StrongFull computes the full 16-byte MD4 digest of window. If window is
// shorter than blockSize (the final, short block of the target), it is
// zero-padded up to blockSize before hashing, matching the padding the
// control file's producer applied when it hashed the same final block.
func StrongFull(window []byte, blockSize int) []byte {
	h := md4.New()
	h.Write(window)
	if pad := blockSize - len(window); pad > 0 {
		h.Write(make([]byte, pad))
	}
	return h.Sum(nil)
}

// Strong truncates a full MD4 digest to the declared strong_len.
func Strong(window []byte, blockSize, strongLen int) []byte {
	full := StrongFull(window, blockSize)
	if strongLen > len(full) {
		strongLen = len(full)
	}
	return full[:strongLen]
}

// EqualStrong reports whether a freshly computed strong hash matches a
// stored one. Both must already be truncated to the same length.
func EqualStrong(a, b []byte) bool {
	return bytes.Equal(a, b)
}

package match

import "github.com/keshon/zsync/internal/checksum"

// window is a fixed-size ring buffer of blockSize bytes backing the match
// engine's rolling checksum. It exposes its contents linearized on demand
// for strong hashing, which is the only place a copy is ever taken.
type window struct {
	buf       []byte
	size      int
	pos       int // index of the logically oldest byte
	filled    int
	weak      *checksum.Weak
}

func newWindow(size int) *window {
	return &window{buf: make([]byte, size), size: size}
}

// prime loads the first n bytes (n <= size) read directly from the input,
// replacing any prior contents, and (re)computes the weak checksum from
// scratch.
func (w *window) prime(data []byte) {
	n := copy(w.buf, data)
	w.pos = 0
	w.filled = n
	w.weak = checksum.NewWeak(w.buf[:n])
}

// full reports whether the window holds a complete blockSize of bytes.
func (w *window) full() bool { return w.filled == w.size }

// linearize returns the window's contents in logical order, oldest byte
// first. The returned slice may alias internal storage and must not be
// retained past the next call that mutates the window.
func (w *window) linearize() []byte {
	if w.pos == 0 {
		return w.buf[:w.filled]
	}
	out := make([]byte, w.filled)
	n := copy(out, w.buf[w.pos:])
	copy(out[n:], w.buf[:w.pos])
	return out
}

// roll drops the oldest byte and appends n, updating the weak checksum in
// O(1). The window must already be full.
func (w *window) roll(n byte) {
	old := w.buf[w.pos]
	w.buf[w.pos] = n
	w.pos = (w.pos + 1) % w.size
	w.weak.Roll(old, n)
}

// weakValue returns the window's current weak checksum.
func (w *window) weakValue() uint32 { return w.weak.Value() }

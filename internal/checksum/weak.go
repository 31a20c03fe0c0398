package checksum

// Weak is a rolling checksum over a sliding window of fixed size, modeled on
// the two-halves sum from the original zsync/rsync algorithm (itself an
// Adler-32 variant). Both halves wrap as unsigned 16-bit integers; the
// emitted value is the 32-bit concatenation (b<<16)|a.
//
// Update is O(1): dropping the tail byte and appending a new head byte never
// rescans the window.
type Weak struct {
	blockSize int
	a, b      uint16
}

// NewWeak computes the initial rolling checksum over window, which must be
// exactly blockSize bytes.
func NewWeak(window []byte) *Weak {
	w := &Weak{blockSize: len(window)}
	var a, b uint32
	n := len(window)
	for i, c := range window {
		a += uint32(c)
		b += uint32(n-i) * uint32(c)
	}
	w.a = uint16(a)
	w.b = uint16(b)
	return w
}

// Value returns the current 32-bit checksum (b<<16)|a.
func (w *Weak) Value() uint32 {
	return uint32(w.b)<<16 | uint32(w.a)
}

// Roll drops the old tail byte o and appends the new head byte n, updating
// both halves in place.
func (w *Weak) Roll(o, n byte) {
	w.a = w.a - uint16(o) + uint16(n)
	w.b = w.b - uint16(w.blockSize)*uint16(o) + w.a
}

// FromScratch recomputes a weak checksum over window without reusing any
// prior state. Used by tests to validate that the rolling update agrees
// with a from-scratch computation, and by the match engine whenever it
// refills the window outright (prime, or a skip-ahead after a confirmed
// dispatch).
func FromScratch(window []byte) uint32 {
	return NewWeak(window).Value()
}

// Truncate reduces a 32-bit weak checksum to its declared storage width in
// bytes (weak_len ∈ {2,3,4}) by keeping only the most-significant weakLen
// bytes, shifted down to the low end of the result. This matches how the
// control file stores the value on disk (the top weakLen bytes, big-endian)
// and lets a live checksum be compared directly against a decoded BlockSum's
// Weak field without either side needing to know the other's width.
func Truncate(v uint32, weakLen int) uint32 {
	shift := (4 - weakLen) * 8
	if shift <= 0 {
		return v
	}
	return v >> uint(shift)
}

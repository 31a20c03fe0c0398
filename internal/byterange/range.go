// Package byterange defines the inclusive byte extent shared by the output
// assembler and the range-fetch driver.
package byterange

import "fmt"

// Range is an inclusive byte extent [First, Last] of the target file.
type Range struct {
	First int64
	Last  int64

	// DeclaredTotal is the /total value a server reported in a
	// Content-Range response for this range, or -1 if none was parsed.
	// It is recorded, never enforced: a disagreement with Size() is a
	// known quirk of real zsync servers, not a protocol violation.
	DeclaredTotal int64
}

// New returns a Range with no declared total.
func New(first, last int64) Range {
	return Range{First: first, Last: last, DeclaredTotal: -1}
}

// Size returns the number of bytes spanned by the range.
func (r Range) Size() int64 {
	return r.Last - r.First + 1
}

// String renders the range as "a-b", the per-range form used inside a
// "bytes=" Range header value.
func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.First, r.Last)
}

// DisagreesWithDeclaredTotal reports whether a parsed /total disagrees with
// the range's own width. See the comment on the DeclaredTotal field.
func (r Range) DisagreesWithDeclaredTotal() bool {
	return r.DeclaredTotal >= 0 && r.DeclaredTotal != r.Size()
}

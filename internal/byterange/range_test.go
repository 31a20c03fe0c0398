package byterange_test

import (
	"testing"

	"github.com/keshon/zsync/internal/byterange"
)

func TestSizeAndString(t *testing.T) {
	r := byterange.New(10, 19)
	if r.Size() != 10 {
		t.Fatalf("expected size 10, got %d", r.Size())
	}
	if r.String() != "10-19" {
		t.Fatalf("unexpected string %q", r.String())
	}
}

func TestDisagreesWithDeclaredTotal(t *testing.T) {
	r := byterange.New(0, 9)
	r.DeclaredTotal = 100
	if !r.DisagreesWithDeclaredTotal() {
		t.Fatal("expected disagreement: size=10 total=100")
	}

	r2 := byterange.New(0, 9)
	r2.DeclaredTotal = 10
	if r2.DisagreesWithDeclaredTotal() {
		t.Fatal("expected no disagreement when total matches size")
	}

	r3 := byterange.New(0, 9) // DeclaredTotal == -1, unset
	if r3.DisagreesWithDeclaredTotal() {
		t.Fatal("expected no disagreement when total was never parsed")
	}
}

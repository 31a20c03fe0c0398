package checksum_test

import (
	"strings"
	"testing"

	"github.com/keshon/zsync/internal/checksum"
)

func TestWholeFileSHA1(t *testing.T) {
	got, err := checksum.WholeFileSHA1(strings.NewReader("hello world"))
	if err != nil {
		t.Fatal(err)
	}
	want := "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed"
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestEqualSHA1_CaseInsensitive(t *testing.T) {
	a := "2AAE6C35C94FCFB415DBE95F408B9CE91EE846ED"
	b := "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed"
	if !checksum.EqualSHA1(a, b) {
		t.Fatal("expected case-insensitive equality")
	}
}

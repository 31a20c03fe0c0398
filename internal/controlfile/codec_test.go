package controlfile_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/keshon/zsync/internal/controlfile"
)

func sampleControlFile() *controlfile.ControlFile {
	return &controlfile.ControlFile{
		Header: controlfile.Header{
			Version:         "0.6.2",
			Filename:        "archive.iso",
			MTime:           time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			BlockSize:       4,
			Length:          10,
			SequenceMatches: 1,
			WeakLen:         2,
			StrongLen:       4,
			URL:             "http://example.com/archive.iso",
			SHA1:            "da39a3ee5e6b4b0d3255bfef95601890afd80709",
		},
		Blocks: []controlfile.BlockSum{
			{Weak: 0x1234, Strong: []byte{1, 2, 3, 4}},
			{Weak: 0x5678, Strong: []byte{5, 6, 7, 8}},
			{Weak: 0x9abc, Strong: []byte{9, 10, 11, 12}},
		},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cf := sampleControlFile()

	var buf bytes.Buffer
	if err := controlfile.Encode(&buf, cf); err != nil {
		t.Fatal(err)
	}

	got, err := controlfile.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}

	if got.Header.Filename != cf.Header.Filename ||
		got.Header.BlockSize != cf.Header.BlockSize ||
		got.Header.Length != cf.Header.Length ||
		got.Header.WeakLen != cf.Header.WeakLen ||
		got.Header.StrongLen != cf.Header.StrongLen ||
		got.Header.SequenceMatches != cf.Header.SequenceMatches ||
		got.Header.URL != cf.Header.URL ||
		got.Header.SHA1 != cf.Header.SHA1 ||
		!got.Header.MTime.Equal(cf.Header.MTime) {
		t.Fatalf("header mismatch after round trip: got %+v, want %+v", got.Header, cf.Header)
	}

	if len(got.Blocks) != len(cf.Blocks) {
		t.Fatalf("block count mismatch: got %d, want %d", len(got.Blocks), len(cf.Blocks))
	}
	for i := range cf.Blocks {
		if !got.Blocks[i].Equal(cf.Blocks[i]) {
			t.Fatalf("block %d mismatch: got %+v, want %+v", i, got.Blocks[i], cf.Blocks[i])
		}
	}
}

func TestDecode_MissingHashLengths(t *testing.T) {
	raw := "zsync: 0.6.2\n" +
		"Filename: archive.iso\n" +
		"Blocksize: 4\n" +
		"Length: 10\n" +
		"SHA-1: da39a3ee5e6b4b0d3255bfef95601890afd80709\n" +
		"\n"
	if _, err := controlfile.Decode(bytes.NewBufferString(raw)); err == nil {
		t.Fatal("expected error for missing Hash-Lengths")
	}
}

func TestDecode_BadSHA1Length(t *testing.T) {
	raw := "Blocksize: 4\n" +
		"Length: 10\n" +
		"Hash-Lengths: 1,2,4\n" +
		"SHA-1: tooshort\n" +
		"\n"
	if _, err := controlfile.Decode(bytes.NewBufferString(raw)); err == nil {
		t.Fatal("expected error for malformed SHA-1")
	}
}

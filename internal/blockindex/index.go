// Package blockindex builds and queries the weak→strong→positions lookup
// table the match engine probes on every rolling-checksum hit.
package blockindex

import (
	"bytes"

	"github.com/keshon/zsync/internal/controlfile"
)

// Entry pairs a strong hash with every target block position that shares
// both it and the entry's weak checksum.
type Entry struct {
	Strong    []byte
	Positions []int64
}

// Index maps a weak checksum to the (deterministically first-occurrence
// ordered) list of strong-hash entries sharing it. Built once from a
// control file's block-sum table, then frozen — callers never mutate it.
type Index struct {
	table map[uint32][]Entry
}

// Build constructs an Index from blocks in target order. Two blocks with
// identical (weak, strong) contribute to the same Entry's Positions, in
// increasing position order — duplicate target blocks share one entry.
func Build(blocks []controlfile.BlockSum) *Index {
	idx := &Index{table: make(map[uint32][]Entry, len(blocks))}
	for pos, b := range blocks {
		entries := idx.table[b.Weak]
		found := false
		for i := range entries {
			if bytes.Equal(entries[i].Strong, b.Strong) {
				entries[i].Positions = append(entries[i].Positions, int64(pos))
				found = true
				break
			}
		}
		if !found {
			entries = append(entries, Entry{
				Strong:    b.Strong,
				Positions: []int64{int64(pos)},
			})
		}
		idx.table[b.Weak] = entries
	}
	return idx
}

// Lookup returns the strong-hash entries associated with weak, or nil if
// weak never occurs in the table. Callers must verify Strong against a
// freshly computed strong hash before dispatching to any Positions —
// a weak hit alone never implies a match.
func (idx *Index) Lookup(weak uint32) []Entry {
	return idx.table[weak]
}

// Len returns the number of distinct weak checksums indexed.
func (idx *Index) Len() int {
	return len(idx.table)
}

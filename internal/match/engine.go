// Package match implements the streaming scanner that turns one local
// candidate's bytes into block-aligned writes against the assembler.
package match

import (
	"io"

	"github.com/keshon/zsync/internal/blockindex"
	"github.com/keshon/zsync/internal/checksum"
	"github.com/keshon/zsync/internal/observer"
)

// Target receives the engine's confirmed block dispatches. internal/assembler
// satisfies this; it is an interface here so match never imports assembler
// (the orchestrator builds both and hands the assembler to the engine).
type Target interface {
	// IsFilled reports whether block pos has already been written.
	IsFilled(pos int64) bool
	// WriteBlock writes data as block pos, returning true if this call
	// actually filled a previously-unfilled block.
	WriteBlock(pos int64, data []byte) (bool, error)
	// Remaining returns the number of blocks still unfilled.
	Remaining() int64
}

// Engine scans one Input against a blockindex.Index, dispatching confirmed
// matches into a Target.
type Engine struct {
	index     *blockindex.Index
	target    Target
	blockSize int
	weakLen   int
	strongLen int
	obs       observer.Observer
}

// New builds an Engine for the given index and block parameters. weakLen and
// strongLen come from the control file's Header and determine how a live
// checksum is truncated before comparison against the index's stored
// values. A nil obs defaults to observer.NoOp{}, matching assembler.New.
func New(index *blockindex.Index, target Target, blockSize, weakLen, strongLen int, obs observer.Observer) *Engine {
	if obs == nil {
		obs = observer.NoOp{}
	}
	return &Engine{
		index:     index,
		target:    target,
		blockSize: blockSize,
		weakLen:   weakLen,
		strongLen: strongLen,
		obs:       obs,
	}
}

// Scan reads in from offset 0 and dispatches every confirmed match into the
// engine's Target, terminating at end of input or once the target reports
// no blocks remaining. resourceName identifies the candidate for the
// PhaseInputRead observer events (e.g. its path).
func (e *Engine) Scan(in Input, resourceName string) error {
	e.obs.PhaseStart(observer.PhaseInputRead, resourceName, in.Len())
	defer e.obs.PhaseComplete(observer.PhaseInputRead)

	if e.target.Remaining() == 0 {
		return nil
	}

	length := in.Len()
	if length < int64(e.blockSize) {
		return nil
	}

	w := newWindow(e.blockSize)
	buf := make([]byte, e.blockSize)

	if err := e.readFull(in, 0, buf); err != nil {
		return err
	}
	w.prime(buf)

	offset := int64(0)
	for {
		if e.target.Remaining() == 0 {
			return nil
		}

		matched, err := e.probe(w)
		if err != nil {
			return err
		}

		if matched {
			// Skip-ahead: the just-scanned window cannot also satisfy an
			// overlapping later target block at finer granularity.
			offset += int64(e.blockSize)
			if offset+int64(e.blockSize) > length {
				return nil
			}
			if err := e.readFull(in, offset, buf); err != nil {
				return err
			}
			w.prime(buf)
			continue
		}

		// Roll forward by one byte.
		next := offset + int64(e.blockSize)
		if next >= length {
			return nil
		}
		var b [1]byte
		if _, err := in.ReadAt(b[:], next); err != nil && err != io.EOF {
			return err
		}
		w.roll(b[0])
		offset++
	}
}

// probe checks the window's current weak checksum against the index and, on
// a hit, confirms with a strong hash and dispatches to every unfilled
// position sharing it. It returns true iff at least one block was newly
// filled, which governs the caller's skip-ahead decision.
func (e *Engine) probe(w *window) (bool, error) {
	live := checksum.Truncate(w.weakValue(), e.weakLen)
	entries := e.index.Lookup(live)
	if len(entries) == 0 {
		return false, nil
	}

	data := w.linearize()
	strong := checksum.Strong(data, e.blockSize, e.strongLen)

	filledAny := false
	for _, entry := range entries {
		if !checksum.EqualStrong(strong, entry.Strong) {
			continue
		}
		for _, pos := range entry.Positions {
			if e.target.IsFilled(pos) {
				continue
			}
			ok, err := e.target.WriteBlock(pos, data)
			if err != nil {
				return filledAny, err
			}
			if ok {
				filledAny = true
				e.obs.PhaseTransferred(observer.PhaseInputRead, int64(len(data)))
			}
		}
	}
	return filledAny, nil
}

func (e *Engine) readFull(in Input, off int64, buf []byte) error {
	n, err := in.ReadAt(buf, off)
	if err != nil && err != io.EOF {
		return err
	}
	if n < len(buf) {
		buf = buf[n:]
		for i := range buf {
			buf[i] = 0
		}
	}
	return nil
}

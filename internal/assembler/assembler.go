// Package assembler owns the temporary <target>.part file, accepting
// block-aligned writes from the match engine and range-aligned writes from
// the fetch driver, then finalizing the result into the target path.
package assembler

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/keshon/zsync/internal/byterange"
	"github.com/keshon/zsync/internal/checksum"
	"github.com/keshon/zsync/internal/completion"
	"github.com/keshon/zsync/internal/config"
	"github.com/keshon/zsync/internal/controlfile"
	"github.com/keshon/zsync/internal/fs"
	"github.com/keshon/zsync/internal/observer"
	"github.com/keshon/zsync/internal/zsyncerr"
)

// Assembler is the output-side state machine for one transfer: a completion
// bitmap over a temporary file, closed out by finalize into the real target.
type Assembler struct {
	filesys  fs.FS
	file     fs.File
	tempPath string
	destPath string

	blockSize int64
	length    int64
	sha1      string
	mtime     time.Time

	completed *completion.Map
	obs       observer.Observer
}

// New opens (creating if necessary) the temporary file alongside destPath
// and returns an Assembler ready to accept writes. The temp path is
// destPath + config.TempSuffix so a crash mid-transfer leaves an
// unambiguous, recognizable artifact behind.
func New(filesys fs.FS, destPath string, cf *controlfile.ControlFile, obs observer.Observer) (*Assembler, error) {
	if obs == nil {
		obs = observer.NoOp{}
	}

	tempPath := destPath + config.TempSuffix
	f, err := filesys.OpenFile(tempPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open temp file %q: %w", tempPath, zsyncerr.ErrIoError)
	}

	obs.PhaseStart(observer.PhaseOutputWrite, destPath, cf.Header.Length)

	return &Assembler{
		filesys:   filesys,
		file:      f,
		tempPath:  tempPath,
		destPath:  destPath,
		blockSize: int64(cf.Header.BlockSize),
		length:    cf.Header.Length,
		sha1:      cf.Header.SHA1,
		mtime:     cf.Header.MTime,
		completed: completion.New(cf.Header.Length, int64(cf.Header.BlockSize)),
		obs:       obs,
	}, nil
}

// Remaining returns the number of blocks still unfilled.
func (a *Assembler) Remaining() int64 { return a.completed.Remaining() }

// IsFilled reports whether block pos has already been written.
func (a *Assembler) IsFilled(pos int64) bool { return a.completed.IsFilled(pos) }

// WriteBlock writes data (exactly one block's worth, already at its natural
// width) as block pos. A redundant call against an already-filled block is
// a no-op returning (false, nil).
func (a *Assembler) WriteBlock(pos int64, data []byte) (bool, error) {
	if a.completed.IsFilled(pos) {
		return false, nil
	}

	width := a.completed.BlockWidth(pos)
	payload := data
	if int64(len(payload)) > width {
		payload = payload[:width]
	}

	off := pos * a.blockSize
	if _, err := a.file.WriteAt(payload, off); err != nil {
		return false, fmt.Errorf("write block %d: %w", pos, zsyncerr.ErrIoError)
	}

	filled := a.completed.Fill(pos)
	if filled {
		a.obs.PhaseTransferred(observer.PhaseOutputWrite, int64(len(payload)))
	}
	return filled, nil
}

// MissingRanges returns the byte ranges the fetch driver must retrieve to
// complete the target, derived from the complement of the completion map.
func (a *Assembler) MissingRanges() []byterange.Range {
	return a.completed.MissingRanges()
}

// ReceiveRange streams exactly r.Size() bytes from src into the temp file
// at r.First, then marks every block the range fully covers as filled. r
// must already be block-aligned; violating that is a caller bug, not a
// runtime condition, so it is reported as MalformedResponse rather than
// silently truncated.
func (a *Assembler) ReceiveRange(r byterange.Range, src io.Reader) error {
	if r.First%a.blockSize != 0 {
		return fmt.Errorf("range %s: first byte not block-aligned: %w", r, zsyncerr.ErrMalformedResponse)
	}
	if (r.Last+1)%a.blockSize != 0 && r.Last+1 != a.length {
		return fmt.Errorf("range %s: last byte not block-aligned: %w", r, zsyncerr.ErrMalformedResponse)
	}

	size := r.Size()
	buf := make([]byte, 32*1024)
	off := r.First
	var remaining int64 = size
	for remaining > 0 {
		chunk := buf
		if int64(len(chunk)) > remaining {
			chunk = chunk[:remaining]
		}
		n, err := io.ReadFull(src, chunk)
		if n > 0 {
			if _, werr := a.file.WriteAt(chunk[:n], off); werr != nil {
				return fmt.Errorf("write range %s: %w", r, zsyncerr.ErrIoError)
			}
			a.obs.PhaseTransferred(observer.PhaseOutputWrite, int64(n))
			off += int64(n)
			remaining -= int64(n)
		}
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				if remaining > 0 {
					return fmt.Errorf("range %s: short read: %w", r, zsyncerr.ErrIncompleteRangeResponse)
				}
				break
			}
			return fmt.Errorf("range %s: %w", r, zsyncerr.ErrTransportError)
		}
	}

	first := r.First / a.blockSize
	last := a.completed.NumBlocks() - 1
	if r.Last+1 != a.length {
		last = (r.Last+1)/a.blockSize - 1
	}
	a.completed.FillRange(first, last)
	return nil
}

// Finalize re-reads the assembled temp file, checks its whole-file SHA-1
// against the control file's declared digest, then atomically promotes it
// to destPath and restores the target mtime. On a checksum mismatch the
// temp file is deliberately left in place for diagnosis; on any other
// failure it is removed.
func (a *Assembler) Finalize() error {
	defer a.obs.PhaseComplete(observer.PhaseOutputWrite)

	got, err := checksum.WholeFileSHA1(io.NewSectionReader(a.file, 0, a.length))
	if err != nil {
		a.cleanupOnFailure()
		return fmt.Errorf("finalize: compute sha1: %w", zsyncerr.ErrIoError)
	}
	if !checksum.EqualSHA1(got, a.sha1) {
		// Temp file retained deliberately; no cleanup here.
		return fmt.Errorf("finalize: sha1 %s != expected %s: %w", got, a.sha1, zsyncerr.ErrChecksumMismatch)
	}

	if err := a.file.Close(); err != nil {
		a.cleanupOnFailure()
		return fmt.Errorf("finalize: close temp file: %w", zsyncerr.ErrIoError)
	}

	if err := a.filesys.Rename(a.tempPath, a.destPath); err != nil {
		a.cleanupOnFailure()
		return fmt.Errorf("finalize: rename into place: %w", zsyncerr.ErrIoError)
	}

	if err := restoreMTime(a.filesys, a.destPath, a.mtime); err != nil {
		return fmt.Errorf("finalize: restore mtime: %w", zsyncerr.ErrIoError)
	}

	return nil
}

func (a *Assembler) cleanupOnFailure() {
	a.file.Close()
	a.filesys.Remove(a.tempPath)
}

// restoreMTime sets destPath's modification time to mtime. fs.FS has no
// chtimes primitive of its own, so this falls through to os.Chtimes
// directly for the OS filesystem and is a no-op for anything else
// (MemoryFS tests don't assert on mtimes).
func restoreMTime(filesys fs.FS, path string, mtime time.Time) error {
	if _, ok := filesys.(*fs.OSFS); !ok {
		return nil
	}
	return os.Chtimes(path, mtime, mtime)
}

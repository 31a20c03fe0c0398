package match

import (
	"bytes"
	"io"
	"os"

	"golang.org/x/exp/mmap"

	"github.com/keshon/zsync/internal/fs"
)

// Input is the read-only, random-access source the engine scans. Local
// regular files opened against the real OS filesystem go through
// golang.org/x/exp/mmap for a zero-copy view over the mapped pages;
// anything else (an in-memory candidate, a sandboxed fs.FS in tests) falls
// back to a plain io.ReaderAt over the filesys abstraction, so a
// caller-supplied fs.FS is honored the same way it is for the assembler.
type Input interface {
	io.ReaderAt
	Len() int64
	Close() error
}

// OpenFile opens path as an Input through filesys, preferring a
// memory-mapped reader when filesys is the real OS filesystem and falling
// back to filesys.OpenFile otherwise (e.g. a MemoryFS in tests, or a path
// mmap couldn't map).
func OpenFile(filesys fs.FS, path string) (Input, error) {
	if _, ok := filesys.(*fs.OSFS); ok {
		if r, err := mmap.Open(path); err == nil {
			return &mmapInput{r}, nil
		}
	}

	fi, err := filesys.Stat(path)
	if err != nil {
		return nil, err
	}
	f, err := filesys.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	return &fsInput{f: f, size: fi.Size()}, nil
}

// NewBytes wraps an in-memory blob (test fixtures, small candidates already
// resident in memory) as an Input.
func NewBytes(data []byte) Input {
	return &bytesInput{r: bytes.NewReader(data)}
}

type mmapInput struct{ r *mmap.ReaderAt }

func (m *mmapInput) ReadAt(p []byte, off int64) (int, error) { return m.r.ReadAt(p, off) }
func (m *mmapInput) Len() int64                              { return int64(m.r.Len()) }
func (m *mmapInput) Close() error                             { return m.r.Close() }

type fsInput struct {
	f    fs.File
	size int64
}

func (f *fsInput) ReadAt(p []byte, off int64) (int, error) { return f.f.ReadAt(p, off) }
func (f *fsInput) Len() int64                              { return f.size }
func (f *fsInput) Close() error                            { return f.f.Close() }

type bytesInput struct{ r *bytes.Reader }

func (b *bytesInput) ReadAt(p []byte, off int64) (int, error) { return b.r.ReadAt(p, off) }
func (b *bytesInput) Len() int64                              { return b.r.Size() }
func (b *bytesInput) Close() error                            { return nil }

// Package fs abstracts the filesystem operations the assembler and match
// engine need, so both can run against an in-memory filesystem in tests
// without touching disk.
package fs

import (
	"io"
	"os"
)

// FS abstracts filesystem operations.
type FS interface {
	Open(path string) (io.ReadSeekCloser, error)
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm os.FileMode) error
	MkdirAll(path string, perm os.FileMode) error
	Remove(path string) error
	Rename(oldPath, newPath string) error
	Stat(path string) (os.FileInfo, error)
	ReadDir(path string) ([]os.DirEntry, error)
	CreateTempFile(dir, pattern string) (io.WriteCloser, string, error)

	// OpenFile opens path for random-access read/write, creating it with
	// perm if O_CREATE is set. The output assembler uses this for its
	// temporary <target>.part file: block writes land at arbitrary
	// offsets, and the final SHA-1 pass reads the whole thing back.
	OpenFile(path string, flag int, perm os.FileMode) (File, error)

	IsNotExist(err error) bool
	Exists(path string) bool
	IsDir(path string) bool
}

// File is a random-access handle returned by FS.OpenFile.
type File interface {
	io.ReaderAt
	io.WriterAt
	io.Closer
	Truncate(size int64) error
}

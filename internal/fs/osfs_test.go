package fs_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/keshon/zsync/internal/fs"
)

func TestOSFS_Open(t *testing.T) {
	orig := fs.GetOpen()
	defer fs.SetOpen(orig)

	called := false
	fs.SetOpen(func(path string) (*os.File, error) {
		called = true
		if path != "abc.txt" {
			t.Fatalf("expected path abc.txt, got %s", path)
		}
		return nil, errors.New("open-error")
	})

	o := fs.NewOSFS()
	_, err := o.Open("abc.txt")
	if !called {
		t.Fatal("hook not called")
	}
	if err == nil || err.Error() != "open-error" {
		t.Fatalf("expected open-error, got %v", err)
	}
}

func TestOSFS_Stat(t *testing.T) {
	orig := fs.GetStat()
	defer fs.SetStat(orig)

	called := false
	fs.SetStat(func(path string) (os.FileInfo, error) {
		called = true
		return nil, errors.New("stat-failed")
	})

	o := fs.NewOSFS()
	_, err := o.Stat("zzz")
	if !called {
		t.Fatal("expected stat hook to be called")
	}
	if err == nil || err.Error() != "stat-failed" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestOSFS_ReadFile(t *testing.T) {
	orig := fs.GetReadFile()
	defer fs.SetReadFile(orig)

	called := false
	fs.SetReadFile(func(path string) ([]byte, error) {
		called = true
		return []byte("hello"), nil
	})

	o := fs.NewOSFS()
	out, err := o.ReadFile("x")
	if err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Fatal("readFile hook not called")
	}
	if string(out) != "hello" {
		t.Fatalf("expected hello, got %s", out)
	}
}

func TestOSFS_WriteFile(t *testing.T) {
	orig := fs.GetWriteFile()
	defer fs.SetWriteFile(orig)

	called := false
	fs.SetWriteFile(func(path string, data []byte, perm os.FileMode) error {
		called = true
		if path != "aaa" || string(data) != "bbb" || perm != 0o644 {
			t.Fatalf("unexpected write args")
		}
		return nil
	})

	o := fs.NewOSFS()
	if err := o.WriteFile("aaa", []byte("bbb"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Fatal("writeFile hook not called")
	}
}

func TestOSFS_MkdirAll(t *testing.T) {
	orig := fs.GetMkdirAll()
	defer fs.SetMkdirAll(orig)

	called := false
	fs.SetMkdirAll(func(path string, perm os.FileMode) error {
		called = true
		if perm != 0o755 {
			t.Fatalf("unexpected perm")
		}
		return nil
	})

	o := fs.NewOSFS()
	if err := o.MkdirAll("dir123", 0o755); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Fatal("mkdirAll hook not called")
	}
}

func TestOSFS_Remove(t *testing.T) {
	orig := fs.GetRemove()
	defer fs.SetRemove(orig)

	called := false
	fs.SetRemove(func(path string) error {
		called = true
		return nil
	})

	o := fs.NewOSFS()
	if err := o.Remove("qqq"); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Fatal("remove hook not called")
	}
}

func TestOSFS_Rename(t *testing.T) {
	orig := fs.GetRename()
	defer fs.SetRename(orig)

	called := false
	fs.SetRename(func(old, newP string) error {
		called = true
		if old != "a" || newP != "b" {
			t.Fatalf("unexpected rename args")
		}
		return nil
	})

	o := fs.NewOSFS()
	if err := o.Rename("a", "b"); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Fatal("rename hook not called")
	}
}

func TestOSFS_CreateTempFile(t *testing.T) {
	orig := fs.GetCreateTemp()
	defer fs.SetCreateTemp(orig)

	called := false
	fs.SetCreateTemp(func(dir, pattern string) (*os.File, error) {
		called = true
		if dir != "tmp" || pattern != "x*" {
			t.Fatalf("unexpected CreateTemp args")
		}
		return nil, errors.New("tmp-failed")
	})

	o := fs.NewOSFS()
	_, _, err := o.CreateTempFile("tmp", "x*")
	if err == nil || err.Error() != "tmp-failed" {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("CreateTemp hook not called")
	}
}

func TestOSFS_OpenFile(t *testing.T) {
	orig := fs.GetOpenFile()
	defer fs.SetOpenFile(orig)

	called := false
	fs.SetOpenFile(func(path string, flag int, perm os.FileMode) (*os.File, error) {
		called = true
		if path != "part.tmp" {
			t.Fatalf("unexpected path %s", path)
		}
		return nil, errors.New("openfile-error")
	})

	o := fs.NewOSFS()
	_, err := o.OpenFile("part.tmp", os.O_CREATE|os.O_RDWR, 0o644)
	if !called {
		t.Fatal("openFile hook not called")
	}
	if err == nil || err.Error() != "openfile-error" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestOSFS_IsNotExist(t *testing.T) {
	orig := fs.GetIsNotExist()
	defer fs.SetIsNotExist(orig)

	called := false
	errFake := errors.New("nope")
	fs.SetIsNotExist(func(err error) bool {
		called = true
		return err == errFake
	})

	o := fs.NewOSFS()
	if !o.IsNotExist(errFake) {
		t.Fatal("expected true")
	}
	if !called {
		t.Fatal("isNotExist not called")
	}
}

func TestOSFS_IsDir(t *testing.T) {
	tmp := t.TempDir()
	o := fs.NewOSFS()
	if !o.IsDir(tmp) {
		t.Fatalf("expected %s to be a dir", tmp)
	}
}

func TestOSFS_Exists(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "x")
	os.WriteFile(tmpFile, []byte("1"), 0o644)

	o := fs.NewOSFS()
	if !o.Exists(tmpFile) {
		t.Fatalf("expected file to exist")
	}
}

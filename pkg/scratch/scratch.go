// Package scratch manages uniquely named temporary files with explicit,
// scoped cleanup.
//
// Every external codec round trip works through an Arena so that
// concurrent calls never collide on file names and tests can point the
// arena at a throwaway directory instead of the real temp dir.
package scratch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Arena hands out uniquely named files under a single directory. The
// zero value uses the system temp directory. Arena is safe for
// concurrent use.
type Arena struct {
	dir string
}

// New returns an Arena rooted at dir. An empty dir selects the system
// temp directory.
func New(dir string) *Arena {
	return &Arena{dir: dir}
}

// Dir returns the directory files are created in.
func (a *Arena) Dir() string {
	if a == nil || a.dir == "" {
		return os.TempDir()
	}
	return a.dir
}

// NewFile creates an empty uniquely named file with the given extension
// and returns a handle owning it. The caller must Remove the handle on
// every exit path.
func (a *Arena) NewFile(ext string) (*File, error) {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	path := filepath.Join(a.Dir(), uuid.NewString()+ext)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("scratch: create %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("scratch: create %s: %w", path, err)
	}
	return &File{path: path}, nil
}

// File is a handle to one scratch file.
type File struct {
	path string
}

// Path returns the file's location on disk.
func (f *File) Path() string { return f.path }

// Remove deletes the file. Removing an already deleted file is not an
// error, so Remove can sit safely in a defer alongside an explicit
// cleanup on the failure path.
func (f *File) Remove() error {
	if f == nil {
		return nil
	}
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("scratch: remove %s: %w", f.path, err)
	}
	return nil
}

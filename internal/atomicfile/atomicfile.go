// Package atomicfile writes files that appear complete or not at all and are
// never replaced once present.
package atomicfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrExists is returned when the destination already exists.
var ErrExists = os.ErrExist

// WriteOnce writes path through write. Content goes to a uniquely named
// temporary file in the same directory which is then linked into place, so
// readers never see a partial file and an existing path is never replaced.
// Returns an error wrapping ErrExists if path is already present.
func WriteOnce(path string, perm os.FileMode, write func(w io.Writer) error) error {
	if _, err := os.Lstat(path); err == nil {
		return fmt.Errorf("%s: %w", path, ErrExists)
	}

	tmpPath := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmpPath)

	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	return place(tmpPath, path)
}

// place moves tmpPath to path without replacing an existing file.
func place(tmpPath, path string) error {
	err := os.Link(tmpPath, path)
	if err == nil {
		return nil
	}
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("%s: %w", path, ErrExists)
	}

	// Filesystems without hard links: fall back to rename after a final check.
	if _, statErr := os.Lstat(path); statErr == nil {
		return fmt.Errorf("%s: %w", path, ErrExists)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// CopyOnce copies src to dest with WriteOnce semantics.
func CopyOnce(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	return WriteOnce(dest, info.Mode().Perm()|0200, func(w io.Writer) error {
		if _, err := io.Copy(w, in); err != nil {
			return fmt.Errorf("copying %s: %w", filepath.Base(src), err)
		}
		return nil
	})
}

package atomicfile

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "info.yaml")

	err := WriteOnce(path, 0644, func(w io.Writer) error {
		_, err := io.WriteString(w, "ref: a\n")
		return err
	})
	if err != nil {
		t.Fatalf("WriteOnce() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "ref: a\n" {
		t.Errorf("content = %q", data)
	}

	// Second write must not replace the file
	err = WriteOnce(path, 0644, func(w io.Writer) error {
		_, err := io.WriteString(w, "ref: b\n")
		return err
	})
	if !errors.Is(err, ErrExists) {
		t.Errorf("second WriteOnce() error = %v, want ErrExists", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "ref: a\n" {
		t.Errorf("content after second write = %q, want unchanged", data)
	}

	assertNoTempFiles(t, dir)
}

func TestWriteOnce_WriterError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "info.yaml")

	wantErr := errors.New("boom")
	err := WriteOnce(path, 0644, func(w io.Writer) error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Errorf("WriteOnce() error = %v, want %v", err, wantErr)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("destination should not exist after a failed write")
	}
	assertNoTempFiles(t, dir)
}

func TestCopyOnce(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.pdf")
	dest := filepath.Join(dir, "out", "paper.pdf")
	if err := os.WriteFile(src, []byte("%PDF-1.4 body"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		t.Fatal(err)
	}

	if err := CopyOnce(src, dest); err != nil {
		t.Fatalf("CopyOnce() error = %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "%PDF-1.4 body" {
		t.Errorf("copied content = %q", data)
	}

	if err := CopyOnce(src, dest); !errors.Is(err, ErrExists) {
		t.Errorf("second CopyOnce() error = %v, want ErrExists", err)
	}
}

func TestCopyOnce_MissingSource(t *testing.T) {
	dir := t.TempDir()
	err := CopyOnce(filepath.Join(dir, "missing.pdf"), filepath.Join(dir, "dest.pdf"))
	if err == nil {
		t.Fatal("CopyOnce() expected error for missing source")
	}
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

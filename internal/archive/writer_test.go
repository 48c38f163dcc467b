package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/matsen/zotero2papis/internal/reference"
)

func sampleRecord() reference.Record {
	return reference.Record{
		"ref":   "smith2020",
		"type":  "article",
		"title": "Deep Learning",
		"author_list": []reference.Creator{
			{GivenName: "Alan", Surname: "Turing"},
		},
		"files": []string{"paper.pdf"},
		"tags":  []string{},
	}
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter("", false, nil)

	got, err := w.Write(dir, sampleRecord())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got != Written {
		t.Fatalf("Write() = %v, want %v", got, Written)
	}

	data, err := os.ReadFile(filepath.Join(dir, "info.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("written document is not YAML: %v", err)
	}
	if decoded["ref"] != "smith2020" || decoded["title"] != "Deep Learning" {
		t.Errorf("decoded = %v", decoded)
	}
	if !strings.Contains(string(data), "given_name: Alan") {
		t.Errorf("creator list not encoded with papis keys:\n%s", data)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only info.yaml", len(entries))
	}
}

func TestWrite_NeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "info.yaml")
	if err := os.WriteFile(path, []byte("ref: edited\n"), 0644); err != nil {
		t.Fatal(err)
	}

	w := NewWriter("info.yaml", false, nil)
	got, err := w.Write(dir, sampleRecord())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got != SkippedExists {
		t.Errorf("Write() = %v, want %v", got, SkippedExists)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "ref: edited\n" {
		t.Errorf("existing record modified: %q", data)
	}
}

func TestWrite_NoDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	w := NewWriter("", false, nil)

	got, err := w.Write(dir, sampleRecord())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got != SkippedNoDir {
		t.Errorf("Write() = %v, want %v", got, SkippedNoDir)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("Write created the target directory")
	}
}

func TestWrite_DryRun(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter("", true, nil)

	got, err := w.Write(dir, sampleRecord())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got != Written {
		t.Errorf("Write() = %v, want %v", got, Written)
	}
	if _, err := os.Stat(filepath.Join(dir, "info.yaml")); !os.IsNotExist(err) {
		t.Errorf("dry run wrote a record")
	}
}

func TestOutcomeString(t *testing.T) {
	tests := map[Outcome]string{
		Written:       "written",
		SkippedExists: "skipped_exists",
		SkippedNoDir:  "skipped_no_dir",
	}
	for o, want := range tests {
		if got := o.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(o), got, want)
		}
	}
}

// Package integration runs the zotero2papis binary end to end.
package integration

import (
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/matsen/zotero2papis/internal/testutil"
)

var (
	binary     string
	binaryOnce sync.Once
	binaryErr  error
)

// getBinary builds the zotero2papis binary once and returns its path.
func getBinary(t *testing.T) string {
	t.Helper()
	binaryOnce.Do(func() {
		_, filename, _, ok := runtime.Caller(0)
		if !ok {
			binaryErr = os.ErrInvalid
			return
		}
		moduleRoot := filepath.Dir(filepath.Dir(filepath.Dir(filename)))

		tmpDir, err := os.MkdirTemp("", "zotero2papis-test-*")
		if err != nil {
			binaryErr = err
			return
		}
		binary = filepath.Join(tmpDir, "zotero2papis")

		cmd := exec.Command("go", "build", "-o", binary, "./cmd/zotero2papis")
		cmd.Dir = moduleRoot
		if output, err := cmd.CombinedOutput(); err != nil {
			binaryErr = &buildError{output: string(output), err: err}
		}
	})
	if binaryErr != nil {
		t.Fatalf("failed to build zotero2papis: %v", binaryErr)
	}
	return binary
}

type buildError struct {
	output string
	err    error
}

func (e *buildError) Error() string {
	return e.err.Error() + ": " + e.output
}

// run executes the binary in an empty working directory with an empty
// XDG_CONFIG_HOME and returns stdout, stderr and the exit code.
func run(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	work := t.TempDir()

	cmd := exec.Command(getBinary(t), args...)
	cmd.Dir = work
	cmd.Env = append(os.Environ(),
		"XDG_CONFIG_HOME="+filepath.Join(work, "config"),
		"ZOTERO_DIR=",
		"PAPIS_DIR=",
	)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	code := 0
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	} else if err != nil {
		t.Fatalf("running binary: %v", err)
	}
	return stdout.String(), stderr.String(), code
}

// setupZotero builds a library with one stored item, one legacy item,
// one item deleted at source and a note.
func setupZotero(t *testing.T) *testutil.ZoteroDir {
	t.Helper()
	z := testutil.NewZoteroDir(t)

	deep := z.AddItem("journalArticle", "DEEPLRN1", map[string]string{
		"title": "Deep Learning",
		"date":  "2016-05-01 2016-05-01",
	})
	z.AddCreator(deep, "author", "Yann", "LeCun", 0)
	z.AddAttachment(deep, "ATTDEEP1", "storage:paper.pdf", "application/pdf")
	z.WriteStorageFile("ATTDEEP1", "paper.pdf", "%PDF-1.4 fake")

	legacy := z.AddItem("book", "LEGACY01", map[string]string{
		"title": "Renamed",
		"extra": "Citation Key: doe2010",
	})
	z.AddAttachment(legacy, "ATTLEG01", "/lib/X/Doe2010/Doe-renamed.pdf", "application/pdf")
	z.WriteStorageFile("ATTLEG01", "Doe-renamed.pdf", "%PDF-1.4 legacy")

	gone := z.AddItem("book", "GONEBOOK", map[string]string{"title": "Vanished", "date": "2001"})
	z.AddAttachment(gone, "ATTGONE1", "storage:gone.pdf", "application/pdf")

	z.AddItem("note", "NOTE0001", nil)
	return z
}

type summary struct {
	Items         int `json:"items"`
	Written       int `json:"written"`
	SkippedExists int `json:"skipped_exists"`
	Deleted       int `json:"deleted"`
	FilesCopied   int `json:"files_copied"`
}

func TestMigrate(t *testing.T) {
	z := setupZotero(t)
	out := filepath.Join(t.TempDir(), "papers")

	stdout, stderr, code := run(t, "migrate", "--zotdir", z.Dir, "--outdir", out)
	if code != 0 {
		t.Fatalf("exit code %d\nstdout: %s\nstderr: %s", code, stdout, stderr)
	}

	var s summary
	if err := json.Unmarshal([]byte(stdout), &s); err != nil {
		t.Fatalf("parsing summary: %v\n%s", err, stdout)
	}
	if s.Items != 3 || s.Written != 2 || s.Deleted != 1 || s.FilesCopied != 2 {
		t.Errorf("summary = %+v", s)
	}

	for _, path := range []string{
		"2016_Deep Learning/info.yaml",
		"2016_Deep Learning/paper.pdf",
		"Doe2010/info.yaml",
		"Doe2010/Doe-renamed.pdf",
	} {
		if _, err := os.Stat(filepath.Join(out, path)); err != nil {
			t.Errorf("missing %s: %v", path, err)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "2001_Vanished")); !os.IsNotExist(err) {
		t.Error("output created for item deleted at source")
	}
	if !strings.Contains(stderr, "item deleted at source") {
		t.Errorf("no deletion notice in log:\n%s", stderr)
	}

	info, err := os.ReadFile(filepath.Join(out, "Doe2010", "info.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(info), "ref: doe2010") {
		t.Errorf("citation key not used as ref:\n%s", info)
	}

	// Second run changes nothing.
	stdout, _, code = run(t, "migrate", "--zotdir", z.Dir, "--outdir", out)
	if code != 0 {
		t.Fatalf("second run exit code %d", code)
	}
	s = summary{}
	if err := json.Unmarshal([]byte(stdout), &s); err != nil {
		t.Fatal(err)
	}
	if s.Written != 0 || s.FilesCopied != 0 || s.SkippedExists != 2 {
		t.Errorf("second run summary = %+v", s)
	}
}

func TestMigrate_Human(t *testing.T) {
	z := setupZotero(t)
	out := t.TempDir()

	stdout, _, code := run(t, "migrate", "-z", z.Dir, "-o", out, "--dry-run", "--human")
	if code != 0 {
		t.Fatalf("exit code %d", code)
	}
	if !strings.Contains(stdout, "Dry run") || !strings.Contains(stdout, "written:") {
		t.Errorf("unexpected output:\n%s", stdout)
	}
	entries, _ := os.ReadDir(out)
	if len(entries) != 0 {
		t.Errorf("dry run wrote %d entries", len(entries))
	}
}

func TestMigrate_ExitCodes(t *testing.T) {
	z := setupZotero(t)
	out := t.TempDir()

	t.Run("missing zotero dir", func(t *testing.T) {
		_, _, code := run(t, "migrate", "--outdir", out)
		if code != 2 {
			t.Errorf("exit code = %d, want 2", code)
		}
	})

	t.Run("no database", func(t *testing.T) {
		_, _, code := run(t, "migrate", "--zotdir", t.TempDir(), "--outdir", out)
		if code != 3 {
			t.Errorf("exit code = %d, want 3", code)
		}
	})

	t.Run("schema mismatch", func(t *testing.T) {
		z.Exec(`DROP TABLE collectionItems`)
		_, _, code := run(t, "migrate", "--zotdir", z.Dir, "--outdir", out)
		if code != 3 {
			t.Errorf("exit code = %d, want 3", code)
		}
	})
}

func TestCount(t *testing.T) {
	z := setupZotero(t)

	stdout, _, code := run(t, "count", "--zotdir", z.Dir)
	if code != 0 {
		t.Fatalf("exit code %d", code)
	}
	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal([]byte(stdout), &resp); err != nil {
		t.Fatalf("parsing: %v\n%s", err, stdout)
	}
	if resp.Count != 3 {
		t.Errorf("count = %d, want 3", resp.Count)
	}
}

func TestConfig_GlobalFile(t *testing.T) {
	work := t.TempDir()
	configDir := filepath.Join(work, "config", "zotero2papis")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	global := "papis_dir: /srv/papers\ntranslated_types:\n  conferencePaper: inproceedings\n"
	if err := os.WriteFile(filepath.Join(configDir, "config.yml"), []byte(global), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := exec.Command(getBinary(t), "config")
	cmd.Dir = work
	cmd.Env = append(os.Environ(), "XDG_CONFIG_HOME="+filepath.Join(work, "config"), "PAPIS_DIR=")
	output, err := cmd.Output()
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}

	var resp struct {
		PapisDir        string            `json:"papis_dir"`
		TranslatedTypes map[string]string `json:"translated_types"`
	}
	if err := json.Unmarshal(output, &resp); err != nil {
		t.Fatalf("parsing: %v\n%s", err, output)
	}
	if resp.PapisDir != "/srv/papers" {
		t.Errorf("papis_dir = %q", resp.PapisDir)
	}
	if resp.TranslatedTypes["conferencePaper"] != "inproceedings" || resp.TranslatedTypes["journalArticle"] != "article" {
		t.Errorf("translated_types = %v", resp.TranslatedTypes)
	}
}

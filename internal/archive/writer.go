// Package archive persists merged records into the papis directory tree.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/matsen/zotero2papis/internal/atomicfile"
	"github.com/matsen/zotero2papis/internal/config"
	"github.com/matsen/zotero2papis/internal/reference"
)

// Outcome is the result of one Write.
type Outcome int

const (
	// Written: the record document was created.
	Written Outcome = iota
	// SkippedExists: a record document was already present and is kept.
	SkippedExists
	// SkippedNoDir: the target directory does not exist.
	SkippedNoDir
)

func (o Outcome) String() string {
	switch o {
	case Written:
		return "written"
	case SkippedExists:
		return "skipped_exists"
	case SkippedNoDir:
		return "skipped_no_dir"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Writer writes each record once into its target directory.
type Writer struct {
	infoName string
	dryRun   bool
	logger   *slog.Logger
}

// NewWriter creates a Writer that names record documents infoName
// (config.DefaultInfoName when empty).
func NewWriter(infoName string, dryRun bool, logger *slog.Logger) *Writer {
	if infoName == "" {
		infoName = config.DefaultInfoName
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Writer{infoName: infoName, dryRun: dryRun, logger: logger}
}

// InfoPath returns where the record document for targetDir lives.
func (w *Writer) InfoPath(targetDir string) string {
	return filepath.Join(targetDir, w.infoName)
}

// Write persists rec as targetDir/info.yaml. The directory must already
// exist and an existing document is never replaced. In dry-run mode nothing
// is written and a missing directory is reported as Written.
func (w *Writer) Write(targetDir string, rec reference.Record) (Outcome, error) {
	path := w.InfoPath(targetDir)
	log := w.logger.With("target_dir", targetDir)

	if _, err := os.Stat(path); err == nil {
		log.Debug("record already present")
		return SkippedExists, nil
	}
	if w.dryRun {
		log.Debug("would write record", "file", path)
		return Written, nil
	}
	info, err := os.Stat(targetDir)
	if err != nil || !info.IsDir() {
		log.Debug("target directory missing; record not written")
		return SkippedNoDir, nil
	}

	data, err := Marshal(rec)
	if err != nil {
		return SkippedNoDir, err
	}

	err = atomicfile.WriteOnce(path, 0644, func(out io.Writer) error {
		_, err := out.Write(data)
		return err
	})
	if errors.Is(err, atomicfile.ErrExists) {
		return SkippedExists, nil
	}
	if err != nil {
		return SkippedNoDir, fmt.Errorf("writing %s: %w", path, err)
	}

	log.Debug("record written", "file", path)
	return Written, nil
}

// Marshal encodes a record as YAML with block-style sequences.
func Marshal(rec reference.Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]any(rec)); err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}
	return buf.Bytes(), nil
}

package migrate

import (
	"fmt"
	"sync"

	"github.com/matsen/zotero2papis/internal/archive"
)

// Outcome is the terminal state of one item.
type Outcome int

const (
	Written Outcome = iota
	SkippedExists
	SkippedNoDir
	Deleted
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Written:
		return "written"
	case SkippedExists:
		return "skipped_exists"
	case SkippedNoDir:
		return "skipped_no_dir"
	case Deleted:
		return "deleted"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

func fromArchive(o archive.Outcome) Outcome {
	switch o {
	case archive.Written:
		return Written
	case archive.SkippedExists:
		return SkippedExists
	default:
		return SkippedNoDir
	}
}

// Summary counts what a run did.
type Summary struct {
	Items         int  `json:"items"`
	Written       int  `json:"written"`
	SkippedExists int  `json:"skipped_exists"`
	SkippedNoDir  int  `json:"skipped_no_dir"`
	Deleted       int  `json:"deleted"`
	Failed        int  `json:"failed"`
	FilesCopied   int  `json:"files_copied"`
	FilesRetained int  `json:"files_retained"`
	FilesFailed   int  `json:"files_failed"`
	DOIsFound     int  `json:"dois_found"`
	DryRun        bool `json:"dry_run"`
}

// Count returns the number of items that ended in o.
func (s Summary) Count(o Outcome) int {
	switch o {
	case Written:
		return s.Written
	case SkippedExists:
		return s.SkippedExists
	case SkippedNoDir:
		return s.SkippedNoDir
	case Deleted:
		return s.Deleted
	case Failed:
		return s.Failed
	}
	return 0
}

// String renders a one-line summary.
func (s Summary) String() string {
	return fmt.Sprintf("%d items: %d written, %d already present, %d without directory, %d deleted, %d failed; %d files copied",
		s.Items, s.Written, s.SkippedExists, s.SkippedNoDir, s.Deleted, s.Failed, s.FilesCopied)
}

// ItemResult is what processing one item produced.
type ItemResult struct {
	Key       string
	TargetDir string
	Outcome   Outcome
	Files     []string
	Copied    int
	Failed    int
	DOIFound  bool
}

// tally accumulates item results from concurrent workers.
type tally struct {
	mu sync.Mutex
	s  Summary
}

func (t *tally) add(r ItemResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.s.Items++
	switch r.Outcome {
	case Written:
		t.s.Written++
	case SkippedExists:
		t.s.SkippedExists++
	case SkippedNoDir:
		t.s.SkippedNoDir++
	case Deleted:
		t.s.Deleted++
	case Failed:
		t.s.Failed++
	}
	t.s.FilesCopied += r.Copied
	t.s.FilesRetained += len(r.Files)
	t.s.FilesFailed += r.Failed
	if r.DOIFound {
		t.s.DOIsFound++
	}
}

func (t *tally) summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.s
}

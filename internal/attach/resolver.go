// Package attach locates Zotero attachment files, decides each item's target
// directory and copies the files into it.
package attach

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"

	"github.com/matsen/zotero2papis/internal/atomicfile"
	"github.com/matsen/zotero2papis/internal/reference"
)

// ErrDeletedAtSource means the primary attachment's storage directory is gone:
// the item was deleted in Zotero and must not be migrated.
var ErrDeletedAtSource = errors.New("item deleted at source")

// Decision is the outcome of comparing one source file with its destination.
type Decision int

const (
	// AlreadyMigrated: the destination holds the file; nothing to copy.
	AlreadyMigrated Decision = iota
	// Deleted: neither the source file nor its storage directory exists.
	Deleted
	// SourceMissing: the storage directory exists but the file does not.
	SourceMissing
	// Conflict: the destination exists with different content and is kept.
	Conflict
	// Copy: the source must be copied to the destination.
	Copy
)

func (d Decision) String() string {
	switch d {
	case AlreadyMigrated:
		return "already_migrated"
	case Deleted:
		return "deleted"
	case SourceMissing:
		return "source_missing"
	case Conflict:
		return "conflict"
	case Copy:
		return "copy"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

// Options configures a Resolver.
type Options struct {
	StorageRoot string // <zotero dir>/storage
	OutputRoot  string
	DryRun      bool
	Logger      *slog.Logger
}

// Resolver plans and applies attachment copies for one item at a time.
// A Resolver is safe for concurrent use on different target directories.
type Resolver struct {
	storageRoot string
	outputRoot  string
	dryRun      bool
	logger      *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(opts Options) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{
		storageRoot: opts.StorageRoot,
		outputRoot:  opts.OutputRoot,
		dryRun:      opts.DryRun,
		logger:      logger,
	}
}

// Result is what Apply retained for an item.
type Result struct {
	TargetDir string
	Files     []string // Retained file names, in primary-then-secondary order
	Primary   string   // Destination of the retained primary file, "" if none
	Copied    int
	Failed    int
}

// Resolve plans an item and applies the plan.
func (r *Resolver) Resolve(ctx context.Context, item reference.Item, fields reference.FieldMap, primaries, all []reference.Attachment) (Result, error) {
	return r.Apply(ctx, r.Plan(item, fields, primaries, all))
}

// Apply carries out a plan: the primary file first, then every secondary file.
// It returns ErrDeletedAtSource, before creating anything, when the primary's
// storage directory no longer exists. An item without a primary document has
// its target directory created up front. File-level problems are logged and the
// file is left out of Result.Files.
func (r *Resolver) Apply(ctx context.Context, plan Plan) (Result, error) {
	log := r.logger.With("item_key", plan.ItemKey, "target_dir", plan.TargetDir)
	res := Result{TargetDir: plan.TargetDir}

	if plan.Primary != nil {
		fp := plan.Primary
		decision, err := Decide(fp.Source, fp.Dest)
		if err != nil {
			log.Warn("cannot compare primary file", "file", fp.Name, "error", err)
		}
		if decision == Deleted {
			log.Info("item deleted at source", "source", fp.Source)
			return res, fmt.Errorf("%s: %w", plan.ItemKey, ErrDeletedAtSource)
		}
		if r.retain(log, &res, *fp, decision) {
			res.Primary = fp.Dest
		}
	} else {
		// No primary: the date/title directory is created up front.
		if err := r.mkdir(plan.TargetDir); err != nil {
			log.Error("creating target directory", "error", err)
		}
	}

	for _, fp := range plan.Secondary {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		decision, err := Decide(fp.Source, fp.Dest)
		if err != nil {
			log.Warn("cannot compare file", "file", fp.Name, "error", err)
		}
		r.retain(log, &res, fp, decision)
	}

	return res, nil
}

// retain acts on one decision and reports whether the file is kept.
func (r *Resolver) retain(log *slog.Logger, res *Result, fp FilePlan, decision Decision) bool {
	log = log.With("file", fp.Name, "attachment_key", fp.Attachment.Key)

	switch decision {
	case AlreadyMigrated:
		log.Debug("already migrated")
	case Conflict:
		log.Warn("destination differs from source; keeping existing file", "source", fp.Source)
	case Deleted, SourceMissing:
		log.Info("attachment file missing; skipping", "source", fp.Source, "reason", decision.String())
		return false
	case Copy:
		if r.dryRun {
			log.Debug("would copy", "source", fp.Source)
			break
		}
		if err := r.copy(fp); err != nil {
			log.Error("failed to copy attachment", "source", fp.Source, "error", err)
			res.Failed++
			return false
		}
		log.Debug("copied", "source", fp.Source)
		res.Copied++
	}

	res.Files = append(res.Files, fp.Name)
	return true
}

func (r *Resolver) copy(fp FilePlan) error {
	if err := r.mkdir(filepath.Dir(fp.Dest)); err != nil {
		return err
	}
	err := atomicfile.CopyOnce(fp.Source, fp.Dest)
	if errors.Is(err, atomicfile.ErrExists) {
		// Appeared since Decide ran: another attachment with the same name.
		return nil
	}
	return err
}

func (r *Resolver) mkdir(dir string) error {
	if r.dryRun {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return nil
}

// Decide classifies one source/destination pair. An existing destination is
// never scheduled for copying. A non-nil error reports a failed content
// comparison; the decision is then Conflict.
func Decide(source, dest string) (Decision, error) {
	destExists := exists(dest)
	srcExists := exists(source)

	switch {
	case destExists && !srcExists:
		return AlreadyMigrated, nil
	case !srcExists && !exists(filepath.Dir(source)):
		return Deleted, nil
	case !srcExists:
		return SourceMissing, nil
	case filepath.Clean(source) == filepath.Clean(dest):
		return AlreadyMigrated, nil
	case destExists:
		same, err := sameContent(source, dest)
		if err != nil {
			return Conflict, err
		}
		if same {
			return AlreadyMigrated, nil
		}
		return Conflict, nil
	default:
		return Copy, nil
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// sameContent compares two files by size and BLAKE2b-256 digest.
func sameContent(a, b string) (bool, error) {
	infoA, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	infoB, err := os.Stat(b)
	if err != nil {
		return false, err
	}
	if infoA.Size() != infoB.Size() {
		return false, nil
	}

	sumA, err := digest(a)
	if err != nil {
		return false, err
	}
	sumB, err := digest(b)
	if err != nil {
		return false, err
	}
	return sumA == sumB, nil
}

func digest(path string) ([blake2b.Size256]byte, error) {
	var sum [blake2b.Size256]byte

	f, err := os.Open(path)
	if err != nil {
		return sum, err
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return sum, err
	}
	if _, err := io.Copy(h, f); err != nil {
		return sum, fmt.Errorf("hashing %s: %w", path, err)
	}
	copy(sum[:], h.Sum(nil))
	return sum, nil
}

// Package migrate runs the per-item migration from a Zotero database into a
// papis library.
package migrate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"maps"
	"os"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/matsen/zotero2papis/internal/archive"
	"github.com/matsen/zotero2papis/internal/attach"
	"github.com/matsen/zotero2papis/internal/config"
	"github.com/matsen/zotero2papis/internal/normalize"
	"github.com/matsen/zotero2papis/internal/pdf"
	"github.com/matsen/zotero2papis/internal/record"
	"github.com/matsen/zotero2papis/internal/reference"
	"github.com/matsen/zotero2papis/internal/zotero"
)

// Source is the read side of a migration. *zotero.DB implements it.
type Source interface {
	Items(ctx context.Context, excluded []string) ([]reference.Item, error)
	Fields(ctx context.Context, itemID int64) ([]zotero.FieldRow, error)
	Creators(ctx context.Context, itemID int64) ([]zotero.CreatorRow, error)
	Tags(ctx context.Context, itemID int64) ([]string, error)
	Collections(ctx context.Context, itemID int64) ([]string, error)
	PrimaryAttachments(ctx context.Context, itemID int64, contentTypes []string) ([]reference.Attachment, error)
	Attachments(ctx context.Context, itemID int64) ([]reference.Attachment, error)
}

var _ Source = (*zotero.DB)(nil)

// Pipeline migrates every non-excluded item of a Source.
type Pipeline struct {
	src      Source
	cfg      config.Config
	tables   config.Tables
	resolver *attach.Resolver
	writer   *archive.Writer
	logger   *slog.Logger
	limiter  *rate.Limiter
	locks    *dirLocks

	// OnItem, when set, is called after each item finishes. It may be
	// called concurrently when more than one worker is configured.
	OnItem func(ItemResult)
}

// New creates a Pipeline reading from src and writing under cfg.OutputDir.
func New(src Source, cfg config.Config, tables config.Tables, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	var limiter *rate.Limiter
	if cfg.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Rate), 1)
	}

	return &Pipeline{
		src:    src,
		cfg:    cfg,
		tables: tables,
		resolver: attach.NewResolver(attach.Options{
			StorageRoot: config.StoragePath(cfg.ZoteroDir),
			OutputRoot:  cfg.OutputDir,
			DryRun:      cfg.DryRun,
			Logger:      logger,
		}),
		writer:  archive.NewWriter(cfg.InfoName, cfg.DryRun, logger),
		logger:  logger,
		limiter: limiter,
		locks:   newDirLocks(),
	}
}

// Run migrates all items. Per-item problems are logged and counted; the
// returned error is non-nil only for database failures or cancellation.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	var t tally
	t.s.DryRun = p.cfg.DryRun

	items, err := p.src.Items(ctx, p.tables.ExcludedTypes())
	if err != nil {
		return t.summary(), err
	}
	p.logger.Info("migrating items", "count", len(items), "workers", p.cfg.Workers, "dry_run", p.cfg.DryRun)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)

	for _, item := range items {
		if p.limiter != nil {
			if err := p.limiter.Wait(gctx); err != nil {
				break
			}
		}
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			res, err := p.Process(gctx, item)
			if err != nil {
				return err
			}
			t.add(res)
			if p.OnItem != nil {
				p.OnItem(res)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return t.summary(), err
	}
	if err := ctx.Err(); err != nil {
		return t.summary(), err
	}
	return t.summary(), nil
}

// Process carries one item through
// fields → attachments → record → write.
// Only database errors and cancellation are returned.
func (p *Pipeline) Process(ctx context.Context, item reference.Item) (ItemResult, error) {
	item = normalize.ItemType(item, p.tables)
	log := p.logger.With("item_key", item.Key)
	res := ItemResult{Key: item.Key}

	fieldRows, err := p.src.Fields(ctx, item.ID)
	if err != nil {
		return res, err
	}
	fields := normalize.Fields(fieldRows, p.tables)
	if fields.Title() == "" {
		log.Warn("item has no title", "type", item.Type)
	}

	primaries, err := p.src.PrimaryAttachments(ctx, item.ID, p.tables.ContentTypes())
	if err != nil {
		return res, err
	}
	all, err := p.src.Attachments(ctx, item.ID)
	if err != nil {
		return res, err
	}

	plan := p.resolver.Plan(item, fields, primaries, all)
	res.TargetDir = plan.TargetDir

	unlock := p.locks.lock(plan.TargetDir)
	defer unlock()

	resolved, err := p.resolver.Apply(ctx, plan)
	res.Copied, res.Failed = resolved.Copied, resolved.Failed
	switch {
	case errors.Is(err, attach.ErrDeletedAtSource):
		log.Info("item deleted at source; skipping")
		res.Outcome = Deleted
		return res, nil
	case err != nil:
		return res, err
	}
	res.Files = resolved.Files

	creatorRows, err := p.src.Creators(ctx, item.ID)
	if err != nil {
		return res, err
	}
	tags, err := p.src.Tags(ctx, item.ID)
	if err != nil {
		return res, err
	}
	collections, err := p.src.Collections(ctx, item.ID)
	if err != nil {
		return res, err
	}

	if p.cfg.DOIFromPDF {
		fields, res.DOIFound = p.backfillDOI(log, fields, resolved.Primary)
	}

	rec := record.Assemble(item, fields, normalize.Creators(creatorRows), tags, collections, resolved.Files)

	if p.cfg.IncludeEmpty && !p.cfg.DryRun {
		if err := os.MkdirAll(plan.TargetDir, 0755); err != nil {
			log.Error("creating target directory", "target_dir", plan.TargetDir, "error", err)
			res.Outcome = Failed
			return res, nil
		}
	}

	if p.cfg.DryRun && plan.Primary != nil && !p.cfg.IncludeEmpty && len(resolved.Files) == 0 && !isDir(plan.TargetDir) {
		res.Outcome = SkippedNoDir
		return res, nil
	}

	outcome, err := p.writer.Write(plan.TargetDir, rec)
	if err != nil {
		log.Error("writing record", "error", err)
		res.Outcome = Failed
		return res, nil
	}
	res.Outcome = fromArchive(outcome)
	if res.Outcome == SkippedNoDir {
		log.Info("no files retained; record not written", "target_dir", plan.TargetDir)
	}
	return res, nil
}

// backfillDOI returns fields with "doi" taken from the primary PDF when the
// item has none. fields is not modified.
func (p *Pipeline) backfillDOI(log *slog.Logger, fields reference.FieldMap, primary string) (reference.FieldMap, bool) {
	if fields["doi"] != "" || primary == "" || !pdf.IsPDF(primary) || p.cfg.DryRun {
		return fields, false
	}

	doi, err := pdf.ExtractDOI(primary, pdf.DefaultPages)
	if err != nil {
		log.Debug("cannot read primary pdf", "file", primary, "error", err)
		return fields, false
	}
	if doi == "" {
		return fields, false
	}

	log.Debug("doi found in pdf", "doi", doi)
	out := maps.Clone(fields)
	out["doi"] = doi
	return out, true
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matsen/zotero2papis/internal/config"
	"github.com/matsen/zotero2papis/internal/migrate"
	"github.com/matsen/zotero2papis/internal/zotero"
)

var (
	migrateDryRun       bool
	migrateIncludeEmpty bool
	migrateWorkers      int
	migrateRate         float64
	migrateDOIFromPDF   bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateDryRun, "dry-run", "n", false, "Plan the migration without copying or writing anything")
	migrateCmd.Flags().BoolVar(&migrateIncludeEmpty, "include-empty", false, "Write records for items without any attachment file")
	migrateCmd.Flags().IntVarP(&migrateWorkers, "workers", "j", 0, "Items processed in parallel (default 1)")
	migrateCmd.Flags().Float64Var(&migrateRate, "rate", 0, "Maximum items started per second (0 = unlimited)")
	migrateCmd.Flags().BoolVar(&migrateDOIFromPDF, "doi-from-pdf", false, "Fill a missing doi from the primary PDF")
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy every Zotero item into the papis library",
	Long: `Copy every Zotero item into the papis library.

Each item gets a directory named after its primary attachment's folder
(paths renamed by an external tool) or "{year}_{title}". The directory holds
the item's attachment files and an info.yaml record. Notes, attachments and
annotations are not migrated as items.

Examples:
  zotero2papis migrate -z ~/Zotero -o ~/papers
  zotero2papis migrate --dry-run --human
  zotero2papis migrate -j 4 --rate 20 --doi-from-pdf`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, tables := mustLoadConfig(config.Config{
		DryRun:       migrateDryRun,
		IncludeEmpty: migrateIncludeEmpty,
		Workers:      migrateWorkers,
		Rate:         migrateRate,
		DOIFromPDF:   migrateDOIFromPDF,
	})
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	logger := newLogger(cfg.Verbose)

	db, err := zotero.Open(config.DBPath(cfg.ZoteroDir))
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}
	defer db.Close()

	if !cfg.DryRun {
		if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
			exitWithError(ExitConfigError, "creating output directory: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := migrate.New(db, cfg, tables, logger).Run(ctx)
	if err != nil {
		db.Close()
		exitWithError(exitCodeFor(err), "migration stopped: %v", err)
	}

	if humanOutput {
		printSummaryHuman(summary)
		return nil
	}
	return outputJSON(summary)
}

func printSummaryHuman(s migrate.Summary) {
	if s.DryRun {
		outputHuman("Dry run: nothing was copied or written.\n")
	}
	outputHuman("Items:            %d\n", s.Items)
	for _, o := range []migrate.Outcome{migrate.Written, migrate.SkippedExists, migrate.SkippedNoDir, migrate.Deleted, migrate.Failed} {
		outputHuman("  %-15s %d\n", o.String()+":", s.Count(o))
	}
	outputHuman("Files copied:     %d\n", s.FilesCopied)
	outputHuman("Files retained:   %d\n", s.FilesRetained)
	if s.FilesFailed > 0 {
		outputHuman("Files failed:     %d\n", s.FilesFailed)
	}
	if s.DOIsFound > 0 {
		outputHuman("DOIs from PDFs:   %d\n", s.DOIsFound)
	}
}

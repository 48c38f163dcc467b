package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matsen/zotero2papis/internal/config"
	"github.com/matsen/zotero2papis/internal/zotero"
)

func init() {
	rootCmd.AddCommand(countCmd)
}

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Count the items a migration would process",
	Args:  cobra.NoArgs,
	RunE:  runCount,
}

func runCount(cmd *cobra.Command, args []string) error {
	cfg, tables := mustLoadConfig(config.Config{})
	if cfg.ZoteroDir == "" {
		exitWithError(ExitConfigError, "%v", config.ErrZoteroDirNotConfigured)
	}

	db, err := zotero.Open(config.DBPath(cfg.ZoteroDir))
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}
	defer db.Close()

	excluded := tables.ExcludedTypes()
	n, err := db.CountItems(context.Background(), excluded)
	if err != nil {
		db.Close()
		exitWithError(exitCodeFor(err), "%v", err)
	}

	if humanOutput {
		outputHuman("%d items\n", n)
		return nil
	}
	return outputJSON(CountResponse{Count: n, Excluded: excluded})
}

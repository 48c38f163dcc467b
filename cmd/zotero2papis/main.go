// Package main provides the zotero2papis CLI entry point.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matsen/zotero2papis/internal/config"
)

// Version is set at build time via ldflags
var Version = "dev"

// Persistent flags shared by all commands.
var (
	humanOutput bool
	zoteroDir   string
	outputDir   string
	verbose     bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors is set, so cobra's own errors are printed here
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "zotero2papis",
	Short: "Migrate a Zotero library into a papis library",
	Long: `zotero2papis reads a Zotero data directory (zotero.sqlite and storage/)
and writes one papis directory per item: the item's attachments plus an
info.yaml record.

Existing records and files are never overwritten, so a migration can be
re-run safely. Items deleted in Zotero (storage directory gone) are skipped.

Directories may also be given through ZOTERO_DIR and PAPIS_DIR (a .env file
in the current directory is read) or in ~/.config/zotero2papis/config.yml.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVarP(&zoteroDir, "zotdir", "z", "", "Zotero data directory containing zotero.sqlite (env ZOTERO_DIR)")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "outdir", "o", "", "papis library directory to write into (env PAPIS_DIR)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every attachment decision")
	rootCmd.Version = Version
}

// mustLoadConfig merges flags, environment and the global config file.
// base carries the command-specific flag values.
func mustLoadConfig(base config.Config) (config.Config, config.Tables) {
	// A missing .env is normal
	_ = godotenv.Load()

	global, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	cfg := base
	cfg.ZoteroDir = zoteroDir
	cfg.OutputDir = outputDir
	cfg.Verbose = verbose
	cfg.Resolve(os.Getenv, global)

	return cfg, global.Tables()
}

// newLogger returns the process logger: text on stderr, debug when verbose.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

package main

import (
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matsen/zotero2papis/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the effective configuration after merging flags, environment and
the global config file, together with the translation tables in use.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, tables := mustLoadConfig(config.Config{})

	contentTypes := make(map[string]string)
	for _, ct := range tables.ContentTypes() {
		ext, _ := tables.Extension(ct)
		contentTypes[ct] = ext
	}

	resp := ConfigResponse{
		ZoteroDir:        cfg.ZoteroDir,
		PapisDir:         cfg.OutputDir,
		InfoName:         cfg.InfoName,
		Workers:          cfg.Workers,
		GlobalConfig:     config.GlobalConfigPath(),
		TranslatedFields: tables.FieldTranslations(),
		TranslatedTypes:  tables.TypeTranslations(),
		ExcludedTypes:    tables.ExcludedTypes(),
		ContentTypes:     contentTypes,
	}

	if !humanOutput {
		return outputJSON(resp)
	}

	outputHuman("zotero-dir:    %s\n", resp.ZoteroDir)
	outputHuman("papis-dir:     %s\n", resp.PapisDir)
	outputHuman("info-name:     %s\n", resp.InfoName)
	outputHuman("workers:       %d\n", resp.Workers)
	outputHuman("global-config: %s\n", resp.GlobalConfig)
	printTable("translated fields", resp.TranslatedFields)
	printTable("translated types", resp.TranslatedTypes)
	printTable("content types", resp.ContentTypes)
	outputHuman("excluded types: %v\n", resp.ExcludedTypes)
	return nil
}

func printTable(title string, m map[string]string) {
	outputHuman("%s:\n", title)
	for _, k := range slices.Sorted(maps.Keys(m)) {
		outputHuman("  %-32s -> %s\n", k, m[k])
	}
}

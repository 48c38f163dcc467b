// Package config handles migration configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the settings for one migration run.
type Config struct {
	ZoteroDir    string  // Parent directory of zotero.sqlite and storage/
	OutputDir    string  // Root of the papis library being written
	InfoName     string  // Name of the per-item metadata document
	Verbose      bool    // Log per-attachment decisions
	DryRun       bool    // Plan only: no copies, no writes
	IncludeEmpty bool    // Write records for items without any retained file
	DOIFromPDF   bool    // Fill a missing doi from the primary PDF
	Workers      int     // Number of items processed concurrently
	Rate         float64 // Items started per second (0 = unlimited)
}

const (
	DBFile          = "zotero.sqlite"
	StorageDir      = "storage"
	DefaultInfoName = "info.yaml"

	// EnvZoteroDir and EnvOutputDir are consulted when the flags are empty.
	EnvZoteroDir = "ZOTERO_DIR"
	EnvOutputDir = "PAPIS_DIR"
)

var (
	// ErrZoteroDirNotConfigured is returned when no Zotero directory was given.
	ErrZoteroDirNotConfigured = errors.New("zotero directory not configured")

	// ErrOutputDirNotConfigured is returned when no output directory was given.
	ErrOutputDirNotConfigured = errors.New("output directory not configured")
)

// DBPath returns the path to zotero.sqlite inside a Zotero directory.
func DBPath(zoteroDir string) string {
	return filepath.Join(zoteroDir, DBFile)
}

// StoragePath returns the per-key attachment storage root.
func StoragePath(zoteroDir string) string {
	return filepath.Join(zoteroDir, StorageDir)
}

// Resolve fills empty settings from the environment and the global config,
// in that order, and applies defaults. Flags already set on c win.
func (c *Config) Resolve(getenv func(string) string, global *GlobalConfig) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if global == nil {
		global = &GlobalConfig{}
	}

	if c.ZoteroDir == "" {
		c.ZoteroDir = getenv(EnvZoteroDir)
	}
	if c.ZoteroDir == "" {
		c.ZoteroDir = global.ZoteroDir
	}
	if c.OutputDir == "" {
		c.OutputDir = getenv(EnvOutputDir)
	}
	if c.OutputDir == "" {
		c.OutputDir = global.PapisDir
	}
	if c.Workers <= 0 {
		c.Workers = global.Workers
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.InfoName == "" {
		c.InfoName = DefaultInfoName
	}

	c.ZoteroDir = ExpandPath(c.ZoteroDir)
	c.OutputDir = ExpandPath(c.OutputDir)
}

// Validate checks that the source directory exists and an output root is set.
// The output root itself is created on demand.
func (c *Config) Validate() error {
	if c.ZoteroDir == "" {
		return ErrZoteroDirNotConfigured
	}
	if err := ValidateDir(c.ZoteroDir); err != nil {
		return fmt.Errorf("zotero directory: %w", err)
	}
	if c.OutputDir == "" {
		return ErrOutputDirNotConfigured
	}
	if info, err := os.Stat(c.OutputDir); err == nil && !info.IsDir() {
		return fmt.Errorf("output directory: path is not a directory: %s", c.OutputDir)
	}
	if c.Rate < 0 {
		return fmt.Errorf("invalid rate: %v (must be >= 0)", c.Rate)
	}
	return nil
}

// ValidateDir checks that the path exists and is a directory.
func ValidateDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %s", path)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}

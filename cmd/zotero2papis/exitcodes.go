package main

import (
	"context"
	"errors"

	"github.com/matsen/zotero2papis/internal/config"
	"github.com/matsen/zotero2papis/internal/zotero"
)

// Exit codes. Per-item skips never change the exit code.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure, interrupted)
	ExitConfigError = 2 // Configuration error (missing or invalid directories)
	ExitDBError     = 3 // Zotero database missing, unreadable or of an unexpected schema
)

// exitCodeFor maps an error to the process exit code.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.Canceled):
		return ExitError
	case zotero.IsFatal(err):
		return ExitDBError
	case errors.Is(err, config.ErrZoteroDirNotConfigured), errors.Is(err, config.ErrOutputDirNotConfigured):
		return ExitConfigError
	default:
		return ExitError
	}
}

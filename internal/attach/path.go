package attach

import (
	"path/filepath"
	"strings"
)

// StoragePrefix marks a path relative to the attachment's storage directory.
const StoragePrefix = "storage:"

// Scheme tells how an attachment path must be resolved.
type Scheme int

const (
	// SchemeNone means the attachment has no file (e.g. a linked URL).
	SchemeNone Scheme = iota
	// SchemeStored is "storage:<name>", a file under storage/<key>/.
	SchemeStored
	// SchemeLegacy is a plain filesystem path, usually renamed by an
	// external tool. Its parent directory name names the item's target.
	SchemeLegacy
)

func (s Scheme) String() string {
	switch s {
	case SchemeStored:
		return "stored"
	case SchemeLegacy:
		return "legacy"
	default:
		return "none"
	}
}

// Path is a parsed attachment path. The scheme is decided once here.
type Path struct {
	Scheme Scheme
	Value  string // Relative name for SchemeStored, the original path for SchemeLegacy
}

// ParsePath classifies a raw itemAttachments.path value.
func ParsePath(raw string) Path {
	switch {
	case raw == "":
		return Path{Scheme: SchemeNone}
	case strings.HasPrefix(raw, StoragePrefix):
		name := strings.TrimPrefix(raw, StoragePrefix)
		if name == "" {
			return Path{Scheme: SchemeNone}
		}
		return Path{Scheme: SchemeStored, Value: name}
	default:
		return Path{Scheme: SchemeLegacy, Value: raw}
	}
}

// FileName returns the name of the file in storage and in the target directory.
func (p Path) FileName() string {
	switch p.Scheme {
	case SchemeStored:
		return p.Value
	case SchemeLegacy:
		return baseName(p.Value)
	default:
		return ""
	}
}

// Source returns where the file lives under storageRoot for attachment key.
// Both schemes resolve into storage/<key>/; a legacy path only contributes
// its base name.
func (p Path) Source(storageRoot, key string) string {
	if p.Scheme == SchemeNone {
		return ""
	}
	return filepath.Join(storageRoot, key, filepath.FromSlash(p.FileName()))
}

// ParentName returns the name of the directory containing a legacy path,
// or "" if the path has no usable parent directory.
func (p Path) ParentName() string {
	if p.Scheme != SchemeLegacy {
		return ""
	}
	dir := trimLastElem(p.Value)
	name := baseName(dir)
	switch name {
	case "", ".", "..", "/", `\`:
		return ""
	}
	if strings.HasSuffix(name, ":") {
		// Windows drive root such as "C:"
		return ""
	}
	return name
}

// isSep accepts both separators: legacy paths may come from Windows.
func isSep(r byte) bool {
	return r == '/' || r == '\\'
}

// baseName returns the last element of p, ignoring trailing separators.
func baseName(p string) string {
	for len(p) > 0 && isSep(p[len(p)-1]) {
		p = p[:len(p)-1]
	}
	i := len(p) - 1
	for i >= 0 && !isSep(p[i]) {
		i--
	}
	return p[i+1:]
}

// trimLastElem drops the last element of p.
func trimLastElem(p string) string {
	for len(p) > 0 && isSep(p[len(p)-1]) {
		p = p[:len(p)-1]
	}
	i := len(p) - 1
	for i >= 0 && !isSep(p[i]) {
		i--
	}
	if i < 0 {
		return ""
	}
	return p[:i]
}

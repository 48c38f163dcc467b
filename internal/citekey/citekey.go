// Package citekey extracts a Better BibTeX style citation key from an item's
// "extra" field.
package citekey

import "regexp"

// keyPattern matches a "Citation Key: <token>" line anywhere in the text.
// Keys may contain non-ASCII letters and digits.
var keyPattern = regexp.MustCompile(`Citation Key: ([\p{L}\p{N}_]+)`)

// Find returns the citation key embedded in extra, if any.
func Find(extra string) (string, bool) {
	m := keyPattern.FindStringSubmatch(extra)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Extract returns the citation key embedded in extra, or fallback when there is none.
func Extract(extra, fallback string) string {
	if key, ok := Find(extra); ok {
		return key
	}
	return fallback
}

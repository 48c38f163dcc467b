// Package pdf reads DOIs out of migrated PDF documents.
package pdf

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DefaultPages is how many leading pages are searched; the DOI is almost
// always on the first page.
const DefaultPages = 3

// 10.<registrant>/<suffix>
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// ExtractDOI returns the first DOI found in the first maxPages pages of the
// PDF at path, or "" if there is none. Malformed documents are reported as
// errors rather than crashing the caller.
func ExtractDOI(path string, maxPages int) (doi string, err error) {
	defer func() {
		if r := recover(); r != nil {
			doi, err = "", fmt.Errorf("reading %s: malformed pdf: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if maxPages <= 0 {
		maxPages = DefaultPages
	}
	maxPages = min(maxPages, r.NumPage())

	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if doi := FindDOI(text); doi != "" {
			return doi, nil
		}
	}
	return "", nil
}

// FindDOI returns the first plausible DOI in text.
func FindDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		if isValidDOI(match) {
			return match
		}
	}
	return ""
}

func isValidDOI(doi string) bool {
	if len(doi) < 10 || !strings.HasPrefix(doi, "10.") {
		return false
	}
	slash := strings.Index(doi, "/")
	return slash != -1 && slash < len(doi)-1
}

// IsPDF reports whether name looks like a PDF file.
func IsPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

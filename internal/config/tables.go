package config

import (
	"maps"
	"slices"
)

// Tables holds the fixed translation and filtering tables used during a run.
// A Tables value is built once and never modified afterwards; copies share
// the same read-only maps.
type Tables struct {
	fields     map[string]string
	types      map[string]string
	extensions map[string]string
	excluded   map[string]bool
	dateFields map[string]bool
}

var defaultFieldNames = map[string]string{
	"DOI": "doi",
}

var defaultTypeNames = map[string]string{
	"journalArticle": "article",
}

// Content types recognised as an item's primary document, mapped to their extension.
var defaultExtensions = map[string]string{
	"application/vnd.ms-htmlhelp": "chm",
	"image/vnd.djvu":              "djvu",
	"application/msword":          "doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
	"application/epub+zip":           "epub",
	"application/octet-stream":       "fb2",
	"application/x-mobipocket-ebook": "mobi",
	"application/pdf":                "pdf",
	"text/rtf":                       "rtf",
	"application/zip":                "zip",
}

// Item types that never produce a record.
var defaultExcluded = []string{"note", "attachment", "annotation"}

// Fields whose stored value is "YYYY-MM-DD original-text".
var defaultDateFields = []string{"date", "dateDecided", "dateEnacted", "filingDate", "issueDate"}

// DefaultTables returns the built-in tables.
func DefaultTables() Tables {
	return NewTables(nil, nil, nil)
}

// NewTables returns the built-in tables extended with extra field and type
// translations and extra excluded type names.
func NewTables(fields, types map[string]string, excluded []string) Tables {
	t := Tables{
		fields:     maps.Clone(defaultFieldNames),
		types:      maps.Clone(defaultTypeNames),
		extensions: maps.Clone(defaultExtensions),
		excluded:   make(map[string]bool),
		dateFields: make(map[string]bool),
	}
	maps.Copy(t.fields, fields)
	maps.Copy(t.types, types)
	for _, name := range defaultExcluded {
		t.excluded[name] = true
	}
	for _, name := range excluded {
		t.excluded[name] = true
	}
	for _, name := range defaultDateFields {
		t.dateFields[name] = true
	}
	return t
}

// TranslateField returns the canonical output name for a Zotero field name.
func (t Tables) TranslateField(name string) string {
	if out, ok := t.fields[name]; ok {
		return out
	}
	return name
}

// TranslateType returns the output type tag for a Zotero item type.
func (t Tables) TranslateType(name string) string {
	if out, ok := t.types[name]; ok {
		return out
	}
	return name
}

// Extension returns the file extension for a primary-document content type.
func (t Tables) Extension(contentType string) (string, bool) {
	ext, ok := t.extensions[contentType]
	return ext, ok
}

// ContentTypes returns the primary-document content types, sorted.
func (t Tables) ContentTypes() []string {
	return slices.Sorted(maps.Keys(t.extensions))
}

// ExcludedTypes returns the excluded item type names, sorted.
func (t Tables) ExcludedTypes() []string {
	return slices.Sorted(maps.Keys(t.excluded))
}

// IsExcluded reports whether items of the given type are skipped.
func (t Tables) IsExcluded(itemType string) bool {
	return t.excluded[itemType]
}

// IsDateField reports whether a field carries Zotero's two-part date encoding.
func (t Tables) IsDateField(name string) bool {
	return t.dateFields[name]
}

// FieldTranslations returns a copy of the field-name translation table.
func (t Tables) FieldTranslations() map[string]string {
	return maps.Clone(t.fields)
}

// TypeTranslations returns a copy of the type-name translation table.
func (t Tables) TypeTranslations() map[string]string {
	return maps.Clone(t.types)
}

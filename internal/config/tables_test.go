package config

import (
	"slices"
	"testing"
)

func TestDefaultTables(t *testing.T) {
	tables := DefaultTables()

	if got := tables.TranslateField("DOI"); got != "doi" {
		t.Errorf("TranslateField(DOI) = %q, want doi", got)
	}
	if got := tables.TranslateField("title"); got != "title" {
		t.Errorf("TranslateField(title) = %q, want title", got)
	}
	if got := tables.TranslateType("journalArticle"); got != "article" {
		t.Errorf("TranslateType(journalArticle) = %q, want article", got)
	}
	if got := tables.TranslateType("book"); got != "book" {
		t.Errorf("TranslateType(book) = %q, want book", got)
	}

	if ext, ok := tables.Extension("application/pdf"); !ok || ext != "pdf" {
		t.Errorf("Extension(application/pdf) = %q, %v", ext, ok)
	}
	if _, ok := tables.Extension("text/html"); ok {
		t.Error("Extension(text/html) should not be recognised")
	}
	if n := len(tables.ContentTypes()); n != 10 {
		t.Errorf("len(ContentTypes()) = %d, want 10", n)
	}
	if !slices.IsSorted(tables.ContentTypes()) {
		t.Error("ContentTypes() should be sorted")
	}

	for _, typ := range []string{"note", "attachment"} {
		if !tables.IsExcluded(typ) {
			t.Errorf("IsExcluded(%q) = false, want true", typ)
		}
	}
	if tables.IsExcluded("journalArticle") {
		t.Error("IsExcluded(journalArticle) = true, want false")
	}

	if !tables.IsDateField("date") {
		t.Error("IsDateField(date) = false, want true")
	}
	if tables.IsDateField("accessDate") {
		t.Error("IsDateField(accessDate) = true, want false")
	}
}

func TestNewTables_DoesNotMutateDefaults(t *testing.T) {
	_ = NewTables(map[string]string{"DOI": "identifier"}, nil, []string{"webpage"})

	tables := DefaultTables()
	if got := tables.TranslateField("DOI"); got != "doi" {
		t.Errorf("TranslateField(DOI) = %q after override elsewhere, want doi", got)
	}
	if tables.IsExcluded("webpage") {
		t.Error("IsExcluded(webpage) leaked into default tables")
	}
}

func TestTables_CopiesAreIndependent(t *testing.T) {
	tables := DefaultTables()
	fields := tables.FieldTranslations()
	fields["DOI"] = "changed"

	if got := tables.TranslateField("DOI"); got != "doi" {
		t.Errorf("TranslateField(DOI) = %q, want doi", got)
	}
}

package normalize

import (
	"reflect"
	"testing"

	"github.com/matsen/zotero2papis/internal/config"
	"github.com/matsen/zotero2papis/internal/reference"
	"github.com/matsen/zotero2papis/internal/zotero"
)

func TestFields(t *testing.T) {
	tables := config.DefaultTables()

	tests := []struct {
		name string
		rows []zotero.FieldRow
		want reference.FieldMap
	}{
		{
			name: "translates DOI",
			rows: []zotero.FieldRow{{Name: "title", Value: "Deep Learning"}, {Name: "DOI", Value: "10.1038/nature14539"}},
			want: reference.FieldMap{"title": "Deep Learning", "doi": "10.1038/nature14539"},
		},
		{
			name: "date reduced to first token",
			rows: []zotero.FieldRow{{Name: "date", Value: "2016-05-01 May 1, 2016"}},
			want: reference.FieldMap{"date": "2016-05-01"},
		},
		{
			name: "non-date fields keep spaces",
			rows: []zotero.FieldRow{{Name: "abstractNote", Value: "We study things."}},
			want: reference.FieldMap{"abstractNote": "We study things."},
		},
		{
			name: "last write wins on translated duplicates",
			rows: []zotero.FieldRow{{Name: "doi", Value: "first"}, {Name: "DOI", Value: "second"}},
			want: reference.FieldMap{"doi": "second"},
		},
		{
			name: "empty date",
			rows: []zotero.FieldRow{{Name: "date", Value: "   "}},
			want: reference.FieldMap{"date": ""},
		},
		{
			name: "no rows",
			rows: nil,
			want: reference.FieldMap{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fields(tt.rows, tables)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Fields() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCreators(t *testing.T) {
	rows := []zotero.CreatorRow{
		{Role: "author", GivenName: "Alan", Surname: "Turing"},
		{Role: "author", GivenName: "Alonzo", Surname: "Church"},
		{Role: "editor", GivenName: "", Surname: "ACM"},
	}

	got := Creators(rows)
	if len(got) != 2 {
		t.Fatalf("Creators() returned %d groups, want 2", len(got))
	}

	authors := roleGroup(got, "author")
	if authors == nil {
		t.Fatal("missing author group")
	}
	if authors.Joined != "Turing, Alan and Church, Alonzo" {
		t.Errorf("author joined = %q", authors.Joined)
	}
	wantList := []reference.Creator{
		{GivenName: "Alan", Surname: "Turing"},
		{GivenName: "Alonzo", Surname: "Church"},
	}
	if !reflect.DeepEqual(authors.Creators, wantList) {
		t.Errorf("author list = %+v, want %+v", authors.Creators, wantList)
	}

	editors := roleGroup(got, "editor")
	if editors == nil || editors.Joined != "ACM" {
		t.Errorf("editor group = %+v, want single-field name ACM", editors)
	}

	if roleGroup(got, "translator") != nil {
		t.Error("unexpected translator group")
	}
}

func roleGroup(m reference.CreatorMap, role string) *reference.CreatorGroup {
	for i := range m {
		if m[i].Role == role {
			return &m[i]
		}
	}
	return nil
}

func TestCreators_Empty(t *testing.T) {
	if got := Creators(nil); len(got) != 0 {
		t.Errorf("Creators(nil) = %v, want empty", got)
	}
}

func TestItemType(t *testing.T) {
	tables := config.DefaultTables()
	tests := []struct {
		raw  string
		want string
	}{
		{"journalArticle", "article"},
		{"book", "book"},
		{"conferencePaper", "conferencePaper"},
	}
	for _, tt := range tests {
		got := ItemType(reference.Item{Type: tt.raw}, tables)
		if got.Type != tt.want {
			t.Errorf("ItemType(%q) = %q, want %q", tt.raw, got.Type, tt.want)
		}
	}
}

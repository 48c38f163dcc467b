// Package record merges everything known about an item into one document.
package record

import (
	"github.com/matsen/zotero2papis/internal/citekey"
	"github.com/matsen/zotero2papis/internal/reference"
)

// Keys of the merged record that do not come from item fields.
const (
	KeyRef            = "ref"
	KeyType           = "type"
	KeyCreated        = "created"
	KeyModified       = "modified"
	KeyModifiedClient = "modified.client"
	KeyTags           = "tags"
	KeyProject        = "project"
	KeyFiles          = "files"

	// ListSuffix is appended to a creator role for its structured list.
	ListSuffix = "_list"
)

// Assemble builds the merged record for an item.
//
// Field values override the item attributes of the same name; creators,
// tags, collections and files override fields. The reference id is applied
// last so a field can never replace it. files is deduplicated by name,
// keeping first occurrences.
func Assemble(item reference.Item, fields reference.FieldMap, creators reference.CreatorMap,
	tags, collections, files []string) reference.Record {

	rec := reference.Record{
		KeyType:           item.Type,
		KeyCreated:        item.Created,
		KeyModified:       item.Modified,
		KeyModifiedClient: item.ClientModified,
	}

	for name, value := range fields {
		rec[name] = value
	}

	for _, group := range creators {
		rec[group.Role] = group.Joined
		list := make([]reference.Creator, len(group.Creators))
		copy(list, group.Creators)
		rec[group.Role+ListSuffix] = list
	}

	rec[KeyTags] = nonNil(tags)
	rec[KeyProject] = nonNil(collections)
	rec[KeyFiles] = Dedup(files)
	rec[KeyRef] = RefID(item, fields)

	return rec
}

// RefID returns the item's reference id: the citation key embedded in the
// "extra" field, or the item key.
func RefID(item reference.Item, fields reference.FieldMap) string {
	return citekey.Extract(fields["extra"], item.Key)
}

// Dedup returns names without repeats, in first-seen order. It never returns nil.
func Dedup(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

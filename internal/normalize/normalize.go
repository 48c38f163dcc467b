// Package normalize reshapes raw Zotero rows into the maps stored in a record.
package normalize

import (
	"strings"

	"github.com/matsen/zotero2papis/internal/config"
	"github.com/matsen/zotero2papis/internal/reference"
	"github.com/matsen/zotero2papis/internal/zotero"
)

// Fields builds a FieldMap from raw field rows. Names are translated through
// tables; a later row wins over an earlier one with the same output name.
// Date fields keep only their first whitespace-delimited token.
func Fields(rows []zotero.FieldRow, tables config.Tables) reference.FieldMap {
	fields := make(reference.FieldMap, len(rows))
	for _, row := range rows {
		value := row.Value
		if tables.IsDateField(row.Name) {
			value = firstToken(value)
		}
		fields[tables.TranslateField(row.Name)] = value
	}
	return fields
}

// firstToken returns the first whitespace-delimited token of s.
// Zotero stores dates as "2016-05-01 May 1, 2016".
func firstToken(s string) string {
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// Creators groups creator rows by role, preserving row order inside each role.
// Rows are expected grouped by role already, as zotero.DB.Creators returns them.
func Creators(rows []zotero.CreatorRow) reference.CreatorMap {
	var out reference.CreatorMap
	index := make(map[string]int)

	for _, row := range rows {
		i, ok := index[row.Role]
		if !ok {
			i = len(out)
			index[row.Role] = i
			out = append(out, reference.CreatorGroup{Role: row.Role})
		}
		group := &out[i]
		if group.Joined != "" {
			group.Joined += " and "
		}
		group.Joined += formatName(row.Surname, row.GivenName)
		group.Creators = append(group.Creators, reference.Creator{
			GivenName: row.GivenName,
			Surname:   row.Surname,
		})
	}
	return out
}

// formatName formats a creator as "Surname, Given". Single-field names
// (institutions) have no given name and are written as is.
func formatName(surname, given string) string {
	if given == "" {
		return surname
	}
	return surname + ", " + given
}

// ItemType translates the raw Zotero type name of item.
func ItemType(item reference.Item, tables config.Tables) reference.Item {
	item.Type = tables.TranslateType(item.Type)
	return item
}

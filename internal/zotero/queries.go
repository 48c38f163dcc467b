package zotero

import (
	"context"
	"database/sql"

	"github.com/matsen/zotero2papis/internal/reference"
)

// FieldRow is one (field name, value) pair of an item.
type FieldRow struct {
	Name  string
	Value string
}

// CreatorRow is one creator of an item with its role.
type CreatorRow struct {
	Role      string
	GivenName string
	Surname   string
}

// Timestamps are cast to TEXT so the driver returns Zotero's original
// "YYYY-MM-DD HH:MM:SS" strings instead of parsed times.
const selectItemFields = `items.itemID, itemTypes.typeName, items.key,
	CAST(items.dateAdded AS TEXT), CAST(items.dateModified AS TEXT),
	CAST(items.clientDateModified AS TEXT)`

// itemFilter builds the WHERE clause excluding the given type names.
func itemFilter(excluded []string) (string, []interface{}) {
	where := `itemTypes.itemTypeID = items.itemTypeID`
	if len(excluded) == 0 {
		return where, nil
	}
	return where + ` AND itemTypes.typeName NOT IN (` + placeholders(len(excluded)) + `)`, stringArgs(excluded)
}

// Items returns every item whose type is not excluded, ordered by itemID.
// The returned Type is Zotero's raw type name.
func (d *DB) Items(ctx context.Context, excluded []string) ([]reference.Item, error) {
	where, args := itemFilter(excluded)
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+selectItemFields+`
		FROM items, itemTypes
		WHERE `+where+`
		ORDER BY items.itemID`, args...)
	if err != nil {
		return nil, &QueryError{Query: "items", Err: err}
	}
	defer rows.Close()

	var items []reference.Item
	for rows.Next() {
		var item reference.Item
		var created, modified, clientModified sql.NullString
		if err := rows.Scan(&item.ID, &item.Type, &item.Key, &created, &modified, &clientModified); err != nil {
			return nil, &QueryError{Query: "items", Err: err}
		}
		item.Created = created.String
		item.Modified = modified.String
		item.ClientModified = clientModified.String
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Query: "items", Err: err}
	}
	return items, nil
}

// CountItems returns the number of items whose type is not excluded.
func (d *DB) CountItems(ctx context.Context, excluded []string) (int, error) {
	where, args := itemFilter(excluded)
	var count int
	err := d.db.QueryRowContext(ctx, `
		SELECT COUNT(items.itemID)
		FROM items, itemTypes
		WHERE `+where, args...).Scan(&count)
	if err != nil {
		return 0, &QueryError{Query: "item count", Err: err}
	}
	return count, nil
}

// Fields returns the raw (fieldName, value) pairs of an item.
func (d *DB) Fields(ctx context.Context, itemID int64) ([]FieldRow, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT fields.fieldName, itemDataValues.value
		FROM fields, itemData, itemDataValues
		WHERE itemData.itemID = ?
			AND fields.fieldID = itemData.fieldID
			AND itemDataValues.valueID = itemData.valueID
		ORDER BY itemData.fieldID`, itemID)
	if err != nil {
		return nil, &QueryError{Query: "fields", Err: err}
	}
	defer rows.Close()

	var out []FieldRow
	for rows.Next() {
		var name string
		var value sql.NullString
		if err := rows.Scan(&name, &value); err != nil {
			return nil, &QueryError{Query: "fields", Err: err}
		}
		out = append(out, FieldRow{Name: name, Value: value.String})
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Query: "fields", Err: err}
	}
	return out, nil
}

// Creators returns the creators of an item grouped by role name and ordered
// by their position within each role.
func (d *DB) Creators(ctx context.Context, itemID int64) ([]CreatorRow, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT creatorTypes.creatorType, creators.firstName, creators.lastName
		FROM creatorTypes, creators, itemCreators
		WHERE itemCreators.itemID = ?
			AND creatorTypes.creatorTypeID = itemCreators.creatorTypeID
			AND creators.creatorID = itemCreators.creatorID
		ORDER BY creatorTypes.creatorType, itemCreators.orderIndex`, itemID)
	if err != nil {
		return nil, &QueryError{Query: "creators", Err: err}
	}
	defer rows.Close()

	var out []CreatorRow
	for rows.Next() {
		var row CreatorRow
		var first, last sql.NullString
		if err := rows.Scan(&row.Role, &first, &last); err != nil {
			return nil, &QueryError{Query: "creators", Err: err}
		}
		row.GivenName = first.String
		row.Surname = last.String
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Query: "creators", Err: err}
	}
	return out, nil
}

// Tags returns the tag names of an item, ordered by name.
func (d *DB) Tags(ctx context.Context, itemID int64) ([]string, error) {
	return d.queryStrings(ctx, "tags", `
		SELECT tags.name
		FROM tags, itemTags
		WHERE itemTags.itemID = ? AND tags.tagID = itemTags.tagID
		ORDER BY tags.name`, itemID)
}

// Collections returns the names of the collections containing an item, ordered by name.
func (d *DB) Collections(ctx context.Context, itemID int64) ([]string, error) {
	return d.queryStrings(ctx, "collections", `
		SELECT collections.collectionName
		FROM collections, collectionItems
		WHERE collectionItems.itemID = ? AND collections.collectionID = collectionItems.collectionID
		ORDER BY collections.collectionName`, itemID)
}

// selectAttachmentFields joins the attachment row with its own items row for the key.
const selectAttachmentFields = `itemAttachments.itemID, items.key, itemAttachments.path,
	itemAttachments.contentType, itemAttachments.parentItemID`

// PrimaryAttachments returns the attachments directly under itemID whose
// content type is one of contentTypes, lowest attachment itemID first.
func (d *DB) PrimaryAttachments(ctx context.Context, itemID int64, contentTypes []string) ([]reference.Attachment, error) {
	if len(contentTypes) == 0 {
		return nil, nil
	}
	args := append([]interface{}{itemID}, stringArgs(contentTypes)...)
	return d.queryAttachments(ctx, "primary attachments", `
		SELECT `+selectAttachmentFields+`
		FROM itemAttachments, items
		WHERE itemAttachments.parentItemID = ?
			AND itemAttachments.contentType IN (`+placeholders(len(contentTypes))+`)
			AND items.itemID = itemAttachments.itemID
		ORDER BY itemAttachments.itemID`, args...)
}

// Attachments returns every attachment directly under itemID, lowest itemID first.
func (d *DB) Attachments(ctx context.Context, itemID int64) ([]reference.Attachment, error) {
	return d.queryAttachments(ctx, "attachments", `
		SELECT `+selectAttachmentFields+`
		FROM itemAttachments, items
		WHERE itemAttachments.parentItemID = ?
			AND items.itemID = itemAttachments.itemID
		ORDER BY itemAttachments.itemID`, itemID)
}

func (d *DB) queryAttachments(ctx context.Context, name, query string, args ...interface{}) ([]reference.Attachment, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &QueryError{Query: name, Err: err}
	}
	defer rows.Close()

	var out []reference.Attachment
	for rows.Next() {
		var att reference.Attachment
		var path, contentType sql.NullString
		var parent sql.NullInt64
		if err := rows.Scan(&att.ItemID, &att.Key, &path, &contentType, &parent); err != nil {
			return nil, &QueryError{Query: name, Err: err}
		}
		att.Path = path.String
		att.ContentType = contentType.String
		att.ParentItemID = parent.Int64
		out = append(out, att)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Query: name, Err: err}
	}
	return out, nil
}

func (d *DB) queryStrings(ctx context.Context, name, query string, args ...interface{}) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &QueryError{Query: name, Err: err}
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s sql.NullString
		if err := rows.Scan(&s); err != nil {
			return nil, &QueryError{Query: name, Err: err}
		}
		out = append(out, s.String)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Query: name, Err: err}
	}
	return out, nil
}

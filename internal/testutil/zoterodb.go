// Package testutil builds Zotero data directories for tests.
package testutil

import (
	"database/sql"
	_ "embed"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

//go:embed zotero_schema.sql
var zoteroSchema string

// Timestamps given to every fixture item.
const (
	DateAdded          = "2020-01-02 03:04:05"
	DateModified       = "2021-02-03 04:05:06"
	ClientDateModified = "2021-02-03 04:05:07"
)

// ZoteroDir is a temporary Zotero data directory with a writable zotero.sqlite
// and a storage/ tree.
type ZoteroDir struct {
	t    testing.TB
	Dir  string
	db   *sql.DB
	keys int
}

// NewZoteroDir creates an empty Zotero data directory. The database is closed
// when the test ends.
func NewZoteroDir(t testing.TB) *ZoteroDir {
	t.Helper()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "storage"), 0755); err != nil {
		t.Fatalf("create storage: %v", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "zotero.sqlite"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(zoteroSchema); err != nil {
		db.Close()
		t.Fatalf("apply schema: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return &ZoteroDir{t: t, Dir: dir, db: db}
}

// DBPath returns the path of zotero.sqlite.
func (z *ZoteroDir) DBPath() string {
	return filepath.Join(z.Dir, "zotero.sqlite")
}

// Exec runs a raw statement against the fixture database.
func (z *ZoteroDir) Exec(query string, args ...interface{}) {
	z.t.Helper()
	if _, err := z.db.Exec(query, args...); err != nil {
		z.t.Fatalf("exec %q: %v", query, err)
	}
}

// AddItem inserts an item of the given Zotero type with its fields and
// returns its itemID.
func (z *ZoteroDir) AddItem(typeName, key string, fields map[string]string) int64 {
	z.t.Helper()

	typeID := z.lookup("itemTypes", "itemTypeID", "typeName", typeName)
	res, err := z.db.Exec(`INSERT INTO items (itemTypeID, key, dateAdded, dateModified, clientDateModified)
		VALUES (?, ?, ?, ?, ?)`, typeID, key, DateAdded, DateModified, ClientDateModified)
	if err != nil {
		z.t.Fatalf("insert item %s: %v", key, err)
	}
	itemID, err := res.LastInsertId()
	if err != nil {
		z.t.Fatal(err)
	}

	for name, value := range fields {
		fieldID := z.lookup("fields", "fieldID", "fieldName", name)
		valueID := z.lookup("itemDataValues", "valueID", "value", value)
		z.Exec(`INSERT INTO itemData (itemID, fieldID, valueID) VALUES (?, ?, ?)`, itemID, fieldID, valueID)
	}
	return itemID
}

// AddCreator attaches a creator in role at position order.
func (z *ZoteroDir) AddCreator(itemID int64, role, firstName, lastName string, order int) {
	z.t.Helper()

	roleID := z.lookup("creatorTypes", "creatorTypeID", "creatorType", role)
	var creatorID int64
	err := z.db.QueryRow(`SELECT creatorID FROM creators WHERE firstName = ? AND lastName = ?`, firstName, lastName).Scan(&creatorID)
	if err == sql.ErrNoRows {
		res, err := z.db.Exec(`INSERT INTO creators (firstName, lastName, fieldMode) VALUES (?, ?, 0)`, firstName, lastName)
		if err != nil {
			z.t.Fatalf("insert creator: %v", err)
		}
		creatorID, _ = res.LastInsertId()
	} else if err != nil {
		z.t.Fatalf("select creator: %v", err)
	}
	z.Exec(`INSERT INTO itemCreators (itemID, creatorID, creatorTypeID, orderIndex) VALUES (?, ?, ?, ?)`,
		itemID, creatorID, roleID, order)
}

// AddTag tags an item.
func (z *ZoteroDir) AddTag(itemID int64, name string) {
	z.t.Helper()
	tagID := z.lookup("tags", "tagID", "name", name)
	z.Exec(`INSERT INTO itemTags (itemID, tagID, type) VALUES (?, ?, 0)`, itemID, tagID)
}

// AddToCollection puts an item into the named collection.
func (z *ZoteroDir) AddToCollection(itemID int64, name string) {
	z.t.Helper()
	collectionID := z.lookup("collections", "collectionID", "collectionName", name)
	z.Exec(`INSERT INTO collectionItems (collectionID, itemID) VALUES (?, ?)`, collectionID, itemID)
}

// AddAttachment inserts an attachment item under parentID and returns its itemID.
// An empty path is stored as NULL.
func (z *ZoteroDir) AddAttachment(parentID int64, key, path, contentType string) int64 {
	z.t.Helper()

	attID := z.AddItem("attachment", key, nil)
	var p interface{}
	if path != "" {
		p = path
	}
	z.Exec(`INSERT INTO itemAttachments (itemID, parentItemID, linkMode, contentType, path)
		VALUES (?, ?, 0, ?, ?)`, attID, parentID, contentType, p)
	return attID
}

// WriteStorageFile writes storage/<key>/<name> and returns its path.
func (z *ZoteroDir) WriteStorageFile(key, name, content string) string {
	z.t.Helper()

	dir := filepath.Join(z.Dir, "storage", key)
	if err := os.MkdirAll(dir, 0755); err != nil {
		z.t.Fatalf("create %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		z.t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// MakeStorageDir creates an empty storage/<key> directory.
func (z *ZoteroDir) MakeStorageDir(key string) {
	z.t.Helper()
	if err := os.MkdirAll(filepath.Join(z.Dir, "storage", key), 0755); err != nil {
		z.t.Fatal(err)
	}
}

// NextKey returns a fresh 8-character Zotero-style key.
func (z *ZoteroDir) NextKey() string {
	z.keys++
	const alphabet = "23456789ABCDEFGHIJKLMNPQRSTUVWXYZ"
	n := z.keys
	key := []byte("AAAAAAAA")
	for i := len(key) - 1; i >= 0 && n > 0; i-- {
		key[i] = alphabet[n%len(alphabet)]
		n /= len(alphabet)
	}
	return string(key)
}

// lookup returns the id of the row with col = value, inserting it if needed.
func (z *ZoteroDir) lookup(table, idCol, col string, value interface{}) int64 {
	z.t.Helper()

	var id int64
	err := z.db.QueryRow(`SELECT `+idCol+` FROM `+table+` WHERE `+col+` = ?`, value).Scan(&id)
	if err == nil {
		return id
	}
	if err != sql.ErrNoRows {
		z.t.Fatalf("select %s: %v", table, err)
	}
	res, err := z.db.Exec(`INSERT INTO `+table+` (`+col+`) VALUES (?)`, value)
	if err != nil {
		z.t.Fatalf("insert %s: %v", table, err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		z.t.Fatal(err)
	}
	return id
}

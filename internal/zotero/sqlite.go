// Package zotero reads items and their related rows from a Zotero SQLite database.
// The database is always opened read-only.
package zotero

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// DB wraps a read-only connection to zotero.sqlite.
type DB struct {
	db   *sql.DB
	path string
}

// requiredColumns lists every table and column the reader depends on.
var requiredColumns = map[string][]string{
	"items":           {"itemID", "itemTypeID", "key", "dateAdded", "dateModified", "clientDateModified"},
	"itemTypes":       {"itemTypeID", "typeName"},
	"fields":          {"fieldID", "fieldName"},
	"itemData":        {"itemID", "fieldID", "valueID"},
	"itemDataValues":  {"valueID", "value"},
	"creators":        {"creatorID", "firstName", "lastName"},
	"creatorTypes":    {"creatorTypeID", "creatorType"},
	"itemCreators":    {"itemID", "creatorID", "creatorTypeID", "orderIndex"},
	"tags":            {"tagID", "name"},
	"itemTags":        {"itemID", "tagID"},
	"collections":     {"collectionID", "collectionName"},
	"collectionItems": {"collectionID", "itemID"},
	"itemAttachments": {"itemID", "parentItemID", "contentType", "path"},
}

// Open opens the database file at path read-only and verifies its schema.
func Open(path string) (*DB, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &ConnectionError{Path: path, Err: err}
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, &ConnectionError{Path: abs, Err: err}
	}
	if info.IsDir() {
		return nil, &ConnectionError{Path: abs, Err: fmt.Errorf("is a directory")}
	}

	db, err := sql.Open("sqlite", readOnlyDSN(abs))
	if err != nil {
		return nil, &ConnectionError{Path: abs, Err: err}
	}

	// A single connection keeps per-item reads sequential.
	db.SetMaxOpenConns(1)

	// schema_version forces SQLite to read the header, which catches
	// non-database files and locked databases.
	var version int
	if err := db.QueryRow("PRAGMA schema_version").Scan(&version); err != nil {
		db.Close()
		return nil, &ConnectionError{Path: abs, Err: err}
	}

	d := &DB{db: db, path: abs}
	if err := d.checkSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Path returns the absolute path of the database file.
func (d *DB) Path() string {
	return d.path
}

// readOnlyDSN builds a SQLite URI that opens path read-only.
func readOnlyDSN(path string) string {
	u := url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(path),
		RawQuery: "mode=ro",
	}
	return u.String()
}

// checkSchema verifies that all required tables and columns exist.
func (d *DB) checkSchema() error {
	for table, cols := range requiredColumns {
		query := fmt.Sprintf("SELECT %s FROM %s LIMIT 0", strings.Join(cols, ", "), table)
		rows, err := d.db.Query(query)
		if err != nil {
			return &QueryError{Query: "schema of " + table, Err: err}
		}
		rows.Close()
	}
	return nil
}

// placeholders returns "?, ?, ?" for n parameters.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// stringArgs converts a string slice to query arguments.
func stringArgs(values []string) []interface{} {
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

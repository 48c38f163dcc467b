package zotero

import (
	"errors"
	"fmt"
)

// ConnectionError indicates the database could not be opened or read at all.
type ConnectionError struct {
	Path string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connecting to Zotero database %s: %v", e.Path, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// QueryError indicates the database does not have the expected Zotero schema
// or a read query failed.
type QueryError struct {
	Query string // Short description of the failing query
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("querying %s: %v", e.Query, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// IsConnectionError returns true if err is (or wraps) a ConnectionError.
func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}

// IsQueryError returns true if err is (or wraps) a QueryError.
func IsQueryError(err error) bool {
	var queryErr *QueryError
	return errors.As(err, &queryErr)
}

// IsFatal returns true for errors that must abort the whole run.
func IsFatal(err error) bool {
	return IsConnectionError(err) || IsQueryError(err)
}

// Package store defines the tabular store port the transaction engine
// writes through. The system of record is a remote spreadsheet-like
// service exposing four primitives per named collection: append a row,
// read all rows, update a single cell, and create a collection with a
// header. Everything else (key lookup, aggregation) is layered on top
// of ReadAll by the callers.
package store

import (
	"context"
	"errors"
	"strings"
)

// ErrCollectionNotFound is returned when a collection does not exist.
var ErrCollectionNotFound = errors.New("collection not found")

// ErrRowNotFound is returned by UpdateCell for an out-of-range row.
var ErrRowNotFound = errors.New("row not found")

// Record is one data row of a collection. Row is the 1-based index of
// the row among the collection's data rows (the header is not counted)
// and remains valid for UpdateCell because rows are never deleted; all
// collections are append+update only.
type Record struct {
	Row    int
	Fields map[string]string
}

// Get returns the named field, or "" when absent.
func (r Record) Get(column string) string {
	return r.Fields[column]
}

// Store is the remote tabular store port. All calls block on a network
// round-trip and must honor ctx cancellation and deadlines.
type Store interface {
	// EnsureCollection creates the collection with the given header row
	// if it does not exist. Existing collections are left untouched.
	EnsureCollection(ctx context.Context, name string, header []string) error

	// AppendRow appends one row. Values are positional against the
	// collection header; short rows are padded with empty cells.
	AppendRow(ctx context.Context, collection string, row []string) error

	// ReadAll returns every data row as a Record keyed by header.
	ReadAll(ctx context.Context, collection string) ([]Record, error)

	// UpdateCell overwrites a single cell addressed by data-row index
	// and header column name.
	UpdateCell(ctx context.Context, collection string, row int, column string, value string) error
}

// FindByKey scans records for the first row whose column matches key
// case-insensitively after trimming whitespace. This is the shared
// "find row by key" pattern every keyed collection uses.
func FindByKey(records []Record, column, key string) (Record, bool) {
	want := strings.TrimSpace(key)
	for _, rec := range records {
		if strings.EqualFold(strings.TrimSpace(rec.Get(column)), want) {
			return rec, true
		}
	}
	return Record{}, false
}

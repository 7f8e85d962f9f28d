// Package corpus models flat CSV corpora of time-stamped, optionally
// labeled records, and groups them into the two-level structure
// (time bin -> filtering label -> records) that pairing consumes.
//
// Key types are explicit rather than raw strings: a BinKey is either one
// concrete time bin or the single global bin used when binning is disabled,
// and a LabelKey is either one label value or the no-label marker. This
// keeps the optional-bin and optional-label cases visible at compile time.
package corpus

import (
	"errors"
	"fmt"
)

// ErrMissingField reports a configured column that is absent from a record's
// header. It indicates a schema/configuration mismatch and aborts the
// record's source file rather than skipping rows silently.
var ErrMissingField = errors.New("missing field")

// Header is the ordered column set shared by all records of one CSV source.
type Header struct {
	columns []string
	index   map[string]int
}

// NewHeader builds a header from an ordered list of column names.
func NewHeader(columns []string) *Header {
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		index[name] = i
	}
	return &Header{columns: columns, index: index}
}

// Columns returns the column names in file order.
func (h *Header) Columns() []string {
	return h.columns
}

// Has reports whether the header contains a column.
func (h *Header) Has(column string) bool {
	_, ok := h.index[column]
	return ok
}

// Record is a single CSV row. Records are immutable once read; the header is
// shared across all records of a source.
type Record struct {
	header *Header
	values []string
}

// NewRecord builds a record over a shared header. The value slice must have
// one entry per header column.
func NewRecord(header *Header, values []string) (*Record, error) {
	if len(values) != len(header.columns) {
		return nil, fmt.Errorf("record has %d values for %d columns", len(values), len(header.columns))
	}
	return &Record{header: header, values: values}, nil
}

// Header returns the record's shared header.
func (r *Record) Header() *Header {
	return r.header
}

// Values returns the record's field values in header order.
func (r *Record) Values() []string {
	return r.values
}

// Get returns the value of a named column, or ErrMissingField if the
// record's header has no such column.
func (r *Record) Get(column string) (string, error) {
	i, ok := r.header.index[column]
	if !ok {
		return "", fmt.Errorf("%w: column %q not in header", ErrMissingField, column)
	}
	return r.values[i], nil
}

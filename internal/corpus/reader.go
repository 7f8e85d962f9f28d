package corpus

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// Reader streams records from a CSV source with a header row.
// It is a forward-only, single-pass reader.
type Reader struct {
	csv    *csv.Reader
	header *Header
	closer io.Closer
	row    int
}

// NewReader wraps an io.Reader holding CSV data and consumes its header row.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	head, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	return &Reader{csv: cr, header: NewHeader(head)}, nil
}

// Open opens a CSV file and consumes its header row. The caller owns the
// returned reader and must Close it.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// Header returns the source's column set.
func (r *Reader) Header() *Header {
	return r.header
}

// Next returns the next record, or io.EOF when the source is exhausted.
func (r *Reader) Next() (*Record, error) {
	values, err := r.csv.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV row: %w", err)
	}
	r.row++

	// Short rows are padded so that sparse exports with trailing empty
	// fields still resolve every header column.
	if len(values) < len(r.header.columns) {
		padded := make([]string, len(r.header.columns))
		copy(padded, values)
		values = padded
	} else if len(values) > len(r.header.columns) {
		return nil, fmt.Errorf("row %d has %d values for %d columns", r.row, len(values), len(r.header.columns))
	}

	return &Record{header: r.header, values: values}, nil
}

// Close releases the underlying file, if the reader owns one.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

package pairing

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/corpuskit/corpuskey/internal/corpus"
)

// WriterOptions configures the paired-CSV output layout.
type WriterOptions struct {
	Corpora     [2]string // output column prefixes, study first
	IDColumn    string    // pair-id column name
	UseLabels   bool      // append a label column
	LabelColumn string    // label column name; elided from per-corpus columns
}

// Writer renders pairs as one flat CSV: all study columns (prefixed), all
// reference columns (prefixed), the pair id, then the label when labels are
// in use. Output goes to a temporary file and is renamed into place on
// Close, so a crashed run never leaves a half-written output behind.
type Writer struct {
	file    *os.File
	csv     *csv.Writer
	path    string
	tmpPath string
	generic []string // per-corpus column names, from the study header
	opts    WriterOptions
}

// NewWriter creates the output file and writes its header row. The
// per-corpus columns are taken from the study corpus header, with the label
// column removed when labels are in use.
func NewWriter(path string, studyHeader *corpus.Header, opts WriterOptions) (*Writer, error) {
	var generic []string
	for _, name := range studyHeader.Columns() {
		if opts.UseLabels && name == opts.LabelColumn {
			continue
		}
		generic = append(generic, name)
	}

	header := make([]string, 0, 2*len(generic)+2)
	for _, prefix := range opts.Corpora {
		for _, name := range generic {
			header = append(header, prefix+"_"+name)
		}
	}
	header = append(header, opts.IDColumn)
	if opts.UseLabels {
		header = append(header, opts.LabelColumn)
	}

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	w := &Writer{
		file:    f,
		csv:     csv.NewWriter(f),
		path:    path,
		tmpPath: tmpPath,
		generic: generic,
		opts:    opts,
	}
	if err := w.csv.Write(header); err != nil {
		w.Abort()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	return w, nil
}

// Write appends one pair. Both records must carry every per-corpus column.
func (w *Writer) Write(p Pair) error {
	row := make([]string, 0, 2*len(w.generic)+2)
	for _, rec := range []*corpus.Record{p.Study, p.Reference} {
		for _, name := range w.generic {
			value, err := rec.Get(name)
			if err != nil {
				return err
			}
			row = append(row, value)
		}
	}
	row = append(row, p.ID)
	if w.opts.UseLabels {
		row = append(row, p.Label.Value())
	}
	return w.csv.Write(row)
}

// Close flushes the output and renames it into place.
func (w *Writer) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.Abort()
		return fmt.Errorf("failed to flush output: %w", err)
	}
	if err := w.file.Close(); err != nil {
		os.Remove(w.tmpPath)
		return fmt.Errorf("failed to close output: %w", err)
	}
	if err := os.Rename(w.tmpPath, w.path); err != nil {
		os.Remove(w.tmpPath)
		return fmt.Errorf("failed to rename output: %w", err)
	}
	return nil
}

// Abort discards the partially written output.
func (w *Writer) Abort() {
	w.file.Close()
	os.Remove(w.tmpPath)
}

package wordcount

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// WriteCSV renders a table in the flattened layout: a word column followed
// by one "{group}{sep}{corpus}" column per cell, groups in output order.
func WriteCSV(w io.Writer, t *Table, sep string) error {
	cw := csv.NewWriter(w)

	groups := t.Groups()
	header := make([]string, 0, 1+len(groups)*len(t.corpora))
	header = append(header, "word")
	for _, group := range groups {
		for _, corpus := range t.corpora {
			header = append(header, group+sep+corpus)
		}
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for _, word := range t.Words() {
		row[0] = word
		i := 1
		for _, group := range groups {
			for _, corpus := range t.corpora {
				row[i] = strconv.Itoa(t.Count(word, group, corpus))
				i++
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the flattened table to a file, through a temporary
// name so a crashed run never leaves a half-written table behind.
func WriteCSVFile(path string, t *Table, sep string) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create count table: %w", err)
	}
	if err := WriteCSV(f, t, sep); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write count table: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close count table: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename count table: %w", err)
	}
	return nil
}

// ReadCSV parses a flattened table back into a Table. Column names split at
// the last separator into group and corpus; the derived group names are
// recognized by name, everything else is a bin group. Corpus order follows
// first appearance in the header.
func ReadCSV(r io.Reader, sep string) (*Table, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read count table header: %w", err)
	}
	if len(header) == 0 || header[0] != "word" {
		return nil, fmt.Errorf("count table must lead with a word column, got %q", strings.Join(header, ","))
	}

	type column struct {
		group  string
		corpus string
	}
	columns := make([]column, len(header))
	var corpora []string
	seen := make(map[string]bool)
	for i, name := range header[1:] {
		cut := strings.LastIndex(name, sep)
		if cut < 0 {
			return nil, fmt.Errorf("column %q has no %q separator", name, sep)
		}
		col := column{group: name[:cut], corpus: name[cut+len(sep):]}
		columns[i+1] = col
		if !seen[col.corpus] {
			seen[col.corpus] = true
			corpora = append(corpora, col.corpus)
		}
	}

	t := NewTable(corpora)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read count table row: %w", err)
		}
		word := row[0]
		for i, value := range row[1:] {
			col := columns[i+1]
			// Counts may round-trip through float formatting.
			n, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("bad count %q for %q in %s: %w", value, word, header[i+1], err)
			}
			if col.group == OverallGroup || col.group == BinCountGroup {
				t.AddDerived(word, col.group, col.corpus, int(n))
			} else {
				t.AddToBin(word, col.group, col.corpus, int(n))
			}
		}
	}
	return t, nil
}

// ReadCSVFile parses a flattened table from a file.
func ReadCSVFile(path string, sep string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f, sep)
}

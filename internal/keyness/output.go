package keyness

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/corpuskit/corpuskey/internal/wordcount"
)

// WriteOptions configures the scored-CSV layout.
type WriteOptions struct {
	Sep            string // separator in flattened column names; default "."
	Statistic      string // statistic name in score column headers; default "g"
	IncludePValues bool   // append a p-value column per group
}

// WriteCSV renders counts and scores as one CSV, sorted by the
// overall_count group's score, descending, with NaN scores last and ties
// broken by word. A binned table flattens each group's columns with the
// separator; an unbinned table writes bare corpus and score columns.
func WriteCSV(w io.Writer, t *wordcount.Table, scores map[string]map[string]float64, opts WriteOptions) error {
	if opts.Sep == "" {
		opts.Sep = "."
	}
	if opts.Statistic == "" {
		opts.Statistic = "g"
	}
	scoreCol := "keyness_" + opts.Statistic
	pCol := "p_value_" + opts.Statistic

	primary, ok := scores[wordcount.OverallGroup]
	if !ok {
		return fmt.Errorf("scores carry no %s group to sort by", wordcount.OverallGroup)
	}

	binned := len(t.Bins()) > 0
	prefix := func(group, name string) string {
		if binned {
			return group + opts.Sep + name
		}
		return name
	}

	header := []string{"word"}
	for _, group := range t.Groups() {
		for _, name := range t.Corpora() {
			header = append(header, prefix(group, name))
		}
		header = append(header, prefix(group, scoreCol))
		if opts.IncludePValues {
			header = append(header, prefix(group, pCol))
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}

	corpora := len(t.Corpora())
	row := make([]string, len(header))
	for _, word := range sortWords(t.Words(), primary) {
		row[0] = word
		i := 1
		for _, group := range t.Groups() {
			for _, name := range t.Corpora() {
				row[i] = strconv.Itoa(t.Count(word, group, name))
				i++
			}
			g := scores[group][word]
			row[i] = formatScore(g)
			i++
			if opts.IncludePValues {
				row[i] = formatScore(PValue(g, corpora))
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

// WriteCSVFile writes the scored CSV through a temporary name so a crashed
// run never leaves a half-written result behind.
func WriteCSVFile(path string, t *wordcount.Table, scores map[string]map[string]float64, opts WriteOptions) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create keyness output: %w", err)
	}
	if err := WriteCSV(f, t, scores, opts); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write keyness output: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close keyness output: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename keyness output: %w", err)
	}
	return nil
}

// sortWords orders words by score descending, NaN after every number, ties
// by word ascending.
func sortWords(words []string, scores map[string]float64) []string {
	sorted := make([]string, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := scores[sorted[i]], scores[sorted[j]]
		aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
		switch {
		case aNaN && bNaN:
			return sorted[i] < sorted[j]
		case aNaN:
			return false
		case bNaN:
			return true
		case a != b:
			return a > b
		}
		return sorted[i] < sorted[j]
	})
	return sorted
}

// formatScore renders a score, with NaN as an empty field.
func formatScore(g float64) string {
	if math.IsNaN(g) {
		return ""
	}
	return strconv.FormatFloat(g, 'g', -1, 64)
}

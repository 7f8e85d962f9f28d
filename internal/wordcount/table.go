// Package wordcount builds tables of per-word counts from paired corpora,
// broken down by corpus and, optionally, by a secondary time bin.
//
// A table's columns come in groups: one group per time bin (sorted by bin
// name, so ISO-named bins run chronologically) followed by derived groups —
// overall_count (the per-corpus sum across bins) and, when requested,
// bin_count (the number of bins a word appears in). Within every group there
// is one column per corpus. Missing (word, bin, corpus) combinations count
// as zero, never as missing values.
package wordcount

import (
	"sort"
)

// OverallGroup is the derived column group holding per-corpus totals across
// bins. It is also the sole group of an unbinned table.
const OverallGroup = "overall_count"

// BinCountGroup is the derived column group counting the bins each word
// occurs in.
const BinCountGroup = "bin_count"

// Key addresses one count column: a column group and a corpus within it.
type Key struct {
	Group  string
	Corpus string
}

// Table is a word-by-column count table.
type Table struct {
	corpora []string
	bins    []string // bin groups, kept sorted
	derived []string // derived groups, in creation order
	counts  map[string]map[Key]int
}

// NewTable returns an empty table over an ordered corpus set.
func NewTable(corpora []string) *Table {
	return &Table{
		corpora: corpora,
		counts:  make(map[string]map[Key]int),
	}
}

// Corpora returns the corpus column order within every group.
func (t *Table) Corpora() []string {
	return t.corpora
}

// Bins returns the bin groups in sorted order.
func (t *Table) Bins() []string {
	return t.bins
}

// Derived returns the derived groups in creation order.
func (t *Table) Derived() []string {
	return t.derived
}

// Groups returns every column group in output order: bins, then derived.
func (t *Table) Groups() []string {
	groups := make([]string, 0, len(t.bins)+len(t.derived))
	groups = append(groups, t.bins...)
	groups = append(groups, t.derived...)
	return groups
}

// Words returns the vocabulary in ascending order.
func (t *Table) Words() []string {
	words := make([]string, 0, len(t.counts))
	for word := range t.counts {
		words = append(words, word)
	}
	sort.Strings(words)
	return words
}

// Count returns a cell value, zero when the combination was never seen.
func (t *Table) Count(word, group, corpus string) int {
	return t.counts[word][Key{Group: group, Corpus: corpus}]
}

// AddToBin adds n to a word's count in a bin group, registering the group
// on first sight. Derived group names are reserved.
func (t *Table) AddToBin(word, bin, corpus string, n int) {
	t.registerBin(bin)
	t.add(word, Key{Group: bin, Corpus: corpus}, n)
}

// AddDerived adds n to a word's count in a derived group, registering the
// group on first sight.
func (t *Table) AddDerived(word, group, corpus string, n int) {
	t.registerDerived(group)
	t.add(word, Key{Group: group, Corpus: corpus}, n)
}

func (t *Table) add(word string, key Key, n int) {
	row, ok := t.counts[word]
	if !ok {
		row = make(map[Key]int)
		t.counts[word] = row
	}
	row[key] += n
}

func (t *Table) registerBin(bin string) {
	i := sort.SearchStrings(t.bins, bin)
	if i < len(t.bins) && t.bins[i] == bin {
		return
	}
	t.bins = append(t.bins, "")
	copy(t.bins[i+1:], t.bins[i:])
	t.bins[i] = bin
}

func (t *Table) registerDerived(group string) {
	for _, g := range t.derived {
		if g == group {
			return
		}
	}
	t.derived = append(t.derived, group)
}

// AddOverallCounts derives the overall_count group: each word's per-corpus
// total across all bin groups.
func (t *Table) AddOverallCounts() {
	for word, row := range t.counts {
		for _, corpus := range t.corpora {
			total := 0
			for _, bin := range t.bins {
				total += row[Key{Group: bin, Corpus: corpus}]
			}
			t.AddDerived(word, OverallGroup, corpus, total)
		}
	}
}

// AddBinCounts derives the bin_count group: the number of bin groups in
// which each word occurs at least once, per corpus.
func (t *Table) AddBinCounts() {
	for word, row := range t.counts {
		for _, corpus := range t.corpora {
			occupied := 0
			for _, bin := range t.bins {
				if row[Key{Group: bin, Corpus: corpus}] > 0 {
					occupied++
				}
			}
			t.AddDerived(word, BinCountGroup, corpus, occupied)
		}
	}
}

// ColumnTotals sums one group's columns across the whole vocabulary,
// in corpus order. These are the per-corpus totals a keyness contingency
// table needs.
func (t *Table) ColumnTotals(group string) []int {
	totals := make([]int, len(t.corpora))
	for _, row := range t.counts {
		for i, corpus := range t.corpora {
			totals[i] += row[Key{Group: group, Corpus: corpus}]
		}
	}
	return totals
}

// RowCounts returns one word's counts within a group, in corpus order.
func (t *Table) RowCounts(word, group string) []int {
	counts := make([]int, len(t.corpora))
	row := t.counts[word]
	for i, corpus := range t.corpora {
		counts[i] = row[Key{Group: group, Corpus: corpus}]
	}
	return counts
}

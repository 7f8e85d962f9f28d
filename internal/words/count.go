package words

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
)

// Counter accumulates word frequencies.
type Counter map[string]int

// AddText extracts the words of one text and counts them.
func (c Counter) AddText(s string, opts Options) {
	for _, word := range ExtractWith(s, opts) {
		c[word]++
	}
}

// Item is one (word, count) entry of a dumped counter.
type Item struct {
	Word  string
	Count int
}

// Items returns the counter's entries, sorted by descending count with
// alphabetical tie-breaks when byCount is set, else alphabetically.
func (c Counter) Items(byCount bool) []Item {
	items := make([]Item, 0, len(c))
	for word, count := range c {
		items = append(items, Item{Word: word, Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if byCount && items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Word < items[j].Word
	})
	return items
}

// DumpTSV writes the counter as tab-separated WORD/COUNT lines under a
// header row.
func (c Counter) DumpTSV(w io.Writer, byCount bool) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("WORD\tCOUNT"); err != nil {
		return err
	}
	for _, item := range c.Items(byCount) {
		if _, err := fmt.Fprintf(bw, "\n%s\t%d", item.Word, item.Count); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// DumpTSVFile writes the counter to a file, through a temporary name so a
// crashed run never leaves a half-written dump behind.
func (c Counter) DumpTSVFile(path string, byCount bool) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create word count dump: %w", err)
	}
	if err := c.DumpTSV(f, byCount); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write word count dump: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close word count dump: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename word count dump: %w", err)
	}
	return nil
}

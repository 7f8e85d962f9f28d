package keyness

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/corpuskit/corpuskey/internal/wordcount"
)

func writeScored(t *testing.T, table *wordcount.Table, s *Scorer, opts WriteOptions) [][]string {
	t.Helper()
	scores, err := s.ScoreAll(table)
	if err != nil {
		t.Fatalf("ScoreAll failed: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, table, scores, opts); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	return rows
}

func TestWriteBinnedLayout(t *testing.T) {
	s := NewScorer("study")
	s.NaNForZero = true
	rows := writeScored(t, buildTable(), s, WriteOptions{})

	wantHeader := []string{
		"word",
		"bin_2022-07-01T00:00:00Z.study", "bin_2022-07-01T00:00:00Z.reference", "bin_2022-07-01T00:00:00Z.keyness_g",
		"bin_2022-08-01T00:00:00Z.study", "bin_2022-08-01T00:00:00Z.reference", "bin_2022-08-01T00:00:00Z.keyness_g",
		"overall_count.study", "overall_count.reference", "overall_count.keyness_g",
	}
	if strings.Join(rows[0], "|") != strings.Join(wantHeader, "|") {
		t.Fatalf("header = %v, want %v", rows[0], wantHeader)
	}

	// Overall scores: hot is study-heavy, mild reference-heavy, cold
	// reference-only; descending order follows.
	wantOrder := []string{"hot", "mild", "cold"}
	for i, word := range wantOrder {
		if rows[i+1][0] != word {
			t.Errorf("row %d word = %q, want %q", i+1, rows[i+1][0], word)
		}
	}

	// cold in the August bin has zero counts everywhere: NaN serializes as
	// an empty field, counts as plain zeros.
	cold := rows[3]
	if cold[4] != "0" || cold[5] != "0" {
		t.Errorf("cold August counts = (%s, %s), want (0, 0)", cold[4], cold[5])
	}
	if cold[6] != "" {
		t.Errorf("cold August score = %q, want empty", cold[6])
	}
}

func TestWriteUnbinnedLayout(t *testing.T) {
	table := wordcount.NewTable([]string{"study", "reference"})
	table.AddDerived("hot", wordcount.OverallGroup, "study", 50)
	table.AddDerived("hot", wordcount.OverallGroup, "reference", 10)
	table.AddDerived("cold", wordcount.OverallGroup, "reference", 40)

	rows := writeScored(t, table, NewScorer("study"), WriteOptions{})
	wantHeader := []string{"word", "study", "reference", "keyness_g"}
	if strings.Join(rows[0], "|") != strings.Join(wantHeader, "|") {
		t.Fatalf("header = %v, want %v", rows[0], wantHeader)
	}
	if rows[1][0] != "hot" || rows[2][0] != "cold" {
		t.Errorf("order = %q, %q, want hot, cold", rows[1][0], rows[2][0])
	}
}

func TestWritePValues(t *testing.T) {
	table := wordcount.NewTable([]string{"study", "reference"})
	table.AddDerived("hot", wordcount.OverallGroup, "study", 50)
	table.AddDerived("hot", wordcount.OverallGroup, "reference", 10)

	rows := writeScored(t, table, NewScorer("study"), WriteOptions{IncludePValues: true})
	wantHeader := []string{"word", "study", "reference", "keyness_g", "p_value_g"}
	if strings.Join(rows[0], "|") != strings.Join(wantHeader, "|") {
		t.Fatalf("header = %v, want %v", rows[0], wantHeader)
	}
	if rows[1][4] == "" {
		t.Error("expected a p-value for a scored word")
	}
}

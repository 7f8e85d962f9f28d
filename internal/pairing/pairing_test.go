package pairing

import (
	"fmt"
	"testing"

	"github.com/corpuskit/corpuskey/internal/corpus"
)

var testHeader = corpus.NewHeader([]string{"id", "tweet.created_at", "label", "tweet.text"})

func record(t *testing.T, id, label string) *corpus.Record {
	t.Helper()
	rec, err := corpus.NewRecord(testHeader, []string{id, "2022-07-04T13:05:00Z", label, "some text"})
	if err != nil {
		t.Fatalf("NewRecord failed: %v", err)
	}
	return rec
}

// fill appends n records labeled label to a grouping bucket, with IDs
// prefix1..prefixN.
func fill(t *testing.T, g *corpus.Grouping, bin corpus.BinKey, label, prefix string, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		g.Add(bin, corpus.Label(label), record(t, fmt.Sprintf("%s%d", prefix, i), label))
	}
}

func drain(p *Pairer) []Pair {
	var pairs []Pair
	for {
		pair, ok := p.Next()
		if !ok {
			return pairs
		}
		pairs = append(pairs, pair)
	}
}

func id(t *testing.T, rec *corpus.Record) string {
	t.Helper()
	v, err := rec.Get("id")
	if err != nil {
		t.Fatalf("record has no id: %v", err)
	}
	return v
}

func TestPairSingleBucket(t *testing.T) {
	bin := corpus.TimeBin("2022-07-04T13:00:00Z")
	study := corpus.NewGrouping()
	reference := corpus.NewGrouping()
	fill(t, study, bin, "included", "s", 2)
	fill(t, reference, bin, "included", "r", 3)

	pairs := drain(NewPairer(study, reference, nil))
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}

	// Buckets behave as stacks: pairing order is the reverse of input order.
	if id(t, pairs[0].Study) != "s2" || id(t, pairs[0].Reference) != "r3" {
		t.Errorf("first pair = (%s, %s), want (s2, r3)", id(t, pairs[0].Study), id(t, pairs[0].Reference))
	}
	if id(t, pairs[1].Study) != "s1" || id(t, pairs[1].Reference) != "r2" {
		t.Errorf("second pair = (%s, %s), want (s1, r2)", id(t, pairs[1].Study), id(t, pairs[1].Reference))
	}

	// Pair IDs are bin start plus a 1-based sequence number.
	if pairs[0].ID != "2022-07-04T13:00:00Z_1" || pairs[1].ID != "2022-07-04T13:00:00Z_2" {
		t.Errorf("unexpected pair IDs: %s, %s", pairs[0].ID, pairs[1].ID)
	}
}

func TestBackfill(t *testing.T) {
	// Hierarchy low-filtering to high-filtering; the reference bucket for
	// "included" holds one record, "tweet-excluded" is empty, and
	// "user-excluded" holds plenty.
	hierarchy := []string{"included", "tweet-excluded", "user-excluded"}
	bin := corpus.TimeBin("2022-07-04T13:00:00Z")

	study := corpus.NewGrouping()
	reference := corpus.NewGrouping()
	fill(t, study, bin, "included", "s", 3)
	fill(t, reference, bin, "included", "ri", 1)
	fill(t, reference, bin, "user-excluded", "ru", 5)

	pairer := NewPairer(study, reference, hierarchy)
	pairs := drain(pairer)
	if len(pairs) != 3 {
		t.Fatalf("expected 3 pairs, got %d", len(pairs))
	}

	// First pair uses the one matching reference; the next two backfill
	// from user-excluded, skipping the empty tweet-excluded bucket.
	if id(t, pairs[0].Reference) != "ri1" {
		t.Errorf("pair 1 reference = %s, want ri1", id(t, pairs[0].Reference))
	}
	if id(t, pairs[1].Reference) != "ru5" || id(t, pairs[2].Reference) != "ru4" {
		t.Errorf("backfilled references = %s, %s, want ru5, ru4",
			id(t, pairs[1].Reference), id(t, pairs[2].Reference))
	}

	// The label on every pair is the study record's original label.
	for i, pair := range pairs {
		if pair.Label.Value() != "included" {
			t.Errorf("pair %d label = %q, want included", i+1, pair.Label.Value())
		}
	}

	if pairer.Report().Discarded != 0 {
		t.Errorf("expected no discards, got %d", pairer.Report().Discarded)
	}
}

func TestBackfillConsumesSharedBuckets(t *testing.T) {
	// A bucket drained by backfill is drained for its own label too.
	hierarchy := []string{"included", "user-excluded"}
	bin := corpus.TimeBin("2022-07-04T13:00:00Z")

	study := corpus.NewGrouping()
	reference := corpus.NewGrouping()
	fill(t, study, bin, "included", "si", 2)
	fill(t, study, bin, "user-excluded", "su", 2)
	fill(t, reference, bin, "user-excluded", "ru", 3)

	pairer := NewPairer(study, reference, hierarchy)
	pairs := drain(pairer)

	// Both included study records backfill from user-excluded, leaving one
	// reference for the two user-excluded study records.
	if len(pairs) != 3 {
		t.Fatalf("expected 3 pairs, got %d", len(pairs))
	}
	if got := pairer.Report().Discards(bin, corpus.Label("user-excluded")); got != 1 {
		t.Errorf("user-excluded discards = %d, want 1", got)
	}
}

func TestNoBackfillWithoutHierarchy(t *testing.T) {
	bin := corpus.TimeBin("2022-07-04T13:00:00Z")
	study := corpus.NewGrouping()
	reference := corpus.NewGrouping()
	fill(t, study, bin, "included", "s", 2)
	fill(t, reference, bin, "user-excluded", "r", 5)

	pairer := NewPairer(study, reference, nil)
	pairs := drain(pairer)
	if len(pairs) != 0 {
		t.Fatalf("expected no pairs without a hierarchy, got %d", len(pairs))
	}
	if got := pairer.Report().Discards(bin, corpus.Label("included")); got != 2 {
		t.Errorf("included discards = %d, want 2", got)
	}
}

func TestPairConservation(t *testing.T) {
	hierarchy := []string{"included", "tweet-excluded", "user-excluded"}
	bin1 := corpus.TimeBin("2022-07-04T13:00:00Z")
	bin2 := corpus.TimeBin("2022-07-04T14:00:00Z")

	study := corpus.NewGrouping()
	reference := corpus.NewGrouping()
	fill(t, study, bin1, "included", "a", 4)
	fill(t, study, bin1, "user-excluded", "b", 3)
	fill(t, study, bin2, "tweet-excluded", "c", 5)
	fill(t, reference, bin1, "included", "d", 2)
	fill(t, reference, bin2, "tweet-excluded", "e", 1)
	fill(t, reference, bin2, "user-excluded", "f", 2)

	pairer := NewPairer(study, reference, hierarchy)
	pairs := drain(pairer)

	report := pairer.Report()
	if len(pairs) != report.Paired {
		t.Errorf("report.Paired = %d, want %d", report.Paired, len(pairs))
	}
	if got := len(pairs) + report.Discarded; got != study.Len() {
		t.Errorf("pairs + discards = %d, want %d study records", got, study.Len())
	}
}

func TestPairDeterminism(t *testing.T) {
	hierarchy := []string{"included", "user-excluded"}
	build := func() (*corpus.Grouping, *corpus.Grouping) {
		bin := corpus.TimeBin("2022-07-04T13:00:00Z")
		study := corpus.NewGrouping()
		reference := corpus.NewGrouping()
		fill(t, study, bin, "included", "s", 5)
		fill(t, reference, bin, "included", "r", 3)
		fill(t, reference, bin, "user-excluded", "u", 4)
		return study, reference
	}

	s1, r1 := build()
	s2, r2 := build()
	first := drain(NewPairer(s1, r1, hierarchy))
	second := drain(NewPairer(s2, r2, hierarchy))

	if len(first) != len(second) {
		t.Fatalf("runs differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if id(t, first[i].Study) != id(t, second[i].Study) ||
			id(t, first[i].Reference) != id(t, second[i].Reference) ||
			first[i].ID != second[i].ID {
			t.Errorf("pair %d differs across identical runs", i)
		}
	}
}

func TestMissingReferenceBin(t *testing.T) {
	hierarchy := []string{"included"}
	bin := corpus.TimeBin("2022-07-04T13:00:00Z")
	study := corpus.NewGrouping()
	fill(t, study, bin, "included", "s", 3)

	pairer := NewPairer(study, corpus.NewGrouping(), hierarchy)
	pairs := drain(pairer)
	if len(pairs) != 0 {
		t.Fatalf("expected no pairs against an empty reference, got %d", len(pairs))
	}
	if pairer.Report().Discarded != 3 {
		t.Errorf("discards = %d, want 3", pairer.Report().Discarded)
	}
}

func TestHierarchyLabelAbsentFromBin(t *testing.T) {
	// A hierarchy label with no records anywhere is an empty bucket, not an
	// error; sequence numbers keep counting across labels.
	hierarchy := []string{"included", "tweet-excluded", "user-excluded"}
	bin := corpus.TimeBin("2022-07-04T13:00:00Z")

	study := corpus.NewGrouping()
	reference := corpus.NewGrouping()
	fill(t, study, bin, "included", "s", 1)
	fill(t, study, bin, "user-excluded", "u", 1)
	fill(t, reference, bin, "included", "r", 1)
	fill(t, reference, bin, "user-excluded", "v", 1)

	pairs := drain(NewPairer(study, reference, hierarchy))
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}
	if pairs[1].ID != "2022-07-04T13:00:00Z_2" {
		t.Errorf("second pair ID = %s, want sequence 2", pairs[1].ID)
	}
	if pairs[1].Label.Value() != "user-excluded" {
		t.Errorf("second pair label = %q, want user-excluded", pairs[1].Label.Value())
	}
}

// Package pairing aligns a study corpus with a reference corpus, bucket by
// bucket, so the two can be compared fairly.
//
// For each time bin of the study grouping, study records are matched against
// reference records with the same filtering label. When a label hierarchy is
// supplied (ordered least-filtered to most-filtered) and a label's reference
// bucket runs dry, the engine backfills from other filtering levels: a
// cursor walks onward from the label's own position in the hierarchy until
// it finds a non-empty reference bucket, and stays there for the rest of
// that label's study records. Study records with no reference available even
// after backfill are discarded and counted in the run's Report.
//
// The pair stream is lazy, forward-only, and single-pass; the caller drains
// it with Next until it reports no more pairs.
package pairing

import (
	"fmt"

	"github.com/corpuskit/corpuskey/internal/corpus"
)

// Pair is one matched (study, reference) record pair. The label is always
// the study record's original label, even when the reference was backfilled
// from a different bucket.
type Pair struct {
	Study     *corpus.Record
	Reference *corpus.Record
	ID        string // "{binStart}_{n}", n counting study pops within the bin from 1
	Label     corpus.LabelKey
}

// Pairer streams pairs from two groupings. It never mutates the groupings;
// consumption is tracked with cursors so reference buckets deplete across
// labels the way shared stacks would.
type Pairer struct {
	study     *corpus.Grouping
	reference *corpus.Grouping
	hierarchy []string
	report    *Report

	binIdx   int
	inBin    bool
	labels   []corpus.LabelKey
	labelIdx int
	seq      int

	inLabel   bool
	bucket    []*corpus.Record
	bucketPos int // study records consumed from the end of bucket
	refCursor int // sticky hierarchy index for reference lookup

	refUsed map[refKey]int // reference records consumed per (bin, label)
}

type refKey struct {
	bin   corpus.BinKey
	label corpus.LabelKey
}

// NewPairer prepares a pairing run. A nil or empty hierarchy disables
// backfill and iterates labels in each bin's discovery order.
func NewPairer(study, reference *corpus.Grouping, hierarchy []string) *Pairer {
	return &Pairer{
		study:     study,
		reference: reference,
		hierarchy: hierarchy,
		report:    NewReport(),
		refUsed:   make(map[refKey]int),
	}
}

// Report returns the run's diagnostics. Counts are complete only once the
// stream is drained.
func (p *Pairer) Report() *Report {
	return p.report
}

// Next returns the next pair, or ok=false when the stream is exhausted.
func (p *Pairer) Next() (Pair, bool) {
	for {
		bins := p.study.Bins()
		if p.binIdx >= len(bins) {
			return Pair{}, false
		}
		bin := bins[p.binIdx]

		if !p.inBin {
			p.labels = p.binLabels(bin)
			p.labelIdx = 0
			p.seq = 0
			p.inBin = true
		}

		if p.labelIdx >= len(p.labels) {
			p.binIdx++
			p.inBin = false
			continue
		}
		label := p.labels[p.labelIdx]

		if !p.inLabel {
			p.bucket = p.study.Bucket(bin, label)
			p.bucketPos = 0
			// The backfill cursor starts at the label's own hierarchy
			// position and only ever moves onward through the hierarchy.
			p.refCursor = p.labelIdx
			p.inLabel = true
		}

		if p.bucketPos >= len(p.bucket) {
			p.labelIdx++
			p.inLabel = false
			continue
		}

		// Pop one study record from the end of the bucket.
		study := p.bucket[len(p.bucket)-1-p.bucketPos]
		p.bucketPos++
		p.seq++
		id := fmt.Sprintf("%s_%d", bin.Start(), p.seq)

		ref := p.popReference(bin, label)
		if ref == nil {
			// Nothing left to pair against, even after backfill: this study
			// record and the rest of its label bucket are discarded.
			remaining := len(p.bucket) - p.bucketPos
			p.report.addDiscards(bin, label, 1+remaining)
			p.labelIdx++
			p.inLabel = false
			continue
		}

		p.report.Paired++
		return Pair{Study: study, Reference: ref, ID: id, Label: label}, true
	}
}

// binLabels determines the label iteration order for a bin: the hierarchy
// when one was supplied, else the labels discovered in the study bin.
func (p *Pairer) binLabels(bin corpus.BinKey) []corpus.LabelKey {
	if len(p.hierarchy) == 0 {
		return p.study.Labels(bin)
	}
	labels := make([]corpus.LabelKey, len(p.hierarchy))
	for i, name := range p.hierarchy {
		labels[i] = corpus.Label(name)
	}
	return labels
}

// popReference takes one reference record for the current label, walking the
// sticky backfill cursor onward through the hierarchy as buckets run dry.
// Returns nil when no reference is available anywhere from the label's
// position to the end of the hierarchy. Bins or labels absent from the
// reference grouping are simply empty buckets.
func (p *Pairer) popReference(bin corpus.BinKey, label corpus.LabelKey) *corpus.Record {
	if len(p.hierarchy) == 0 {
		return p.take(bin, label)
	}

	for {
		current := corpus.Label(p.hierarchy[p.refCursor])
		if rec := p.take(bin, current); rec != nil {
			return rec
		}
		if p.refCursor >= len(p.hierarchy)-1 {
			return nil
		}
		p.refCursor++
	}
}

// take pops one record from the end of a reference bucket, if any remain.
func (p *Pairer) take(bin corpus.BinKey, label corpus.LabelKey) *corpus.Record {
	bucket := p.reference.Bucket(bin, label)
	key := refKey{bin: bin, label: label}
	used := p.refUsed[key]
	if used >= len(bucket) {
		return nil
	}
	p.refUsed[key] = used + 1
	return bucket[len(bucket)-1-used]
}

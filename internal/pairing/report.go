package pairing

import (
	"github.com/corpuskit/corpuskey/internal/corpus"
	"github.com/corpuskit/corpuskey/internal/logger"
	"github.com/google/uuid"
)

// Report accumulates diagnostics for one pairing run. Discards are a counted
// condition, not an error: the operator needs to know how many study records
// went unmatched, and where.
type Report struct {
	RunID     string // identifies the run in log output
	Paired    int
	Discarded int

	counts map[discardKey]int
	order  []discardKey
}

type discardKey struct {
	bin   corpus.BinKey
	label corpus.LabelKey
}

// NewReport returns an empty report with a fresh run ID.
func NewReport() *Report {
	return &Report{
		RunID:  uuid.New().String(),
		counts: make(map[discardKey]int),
	}
}

func (r *Report) addDiscards(bin corpus.BinKey, label corpus.LabelKey, n int) {
	key := discardKey{bin: bin, label: label}
	if _, ok := r.counts[key]; !ok {
		r.order = append(r.order, key)
	}
	r.counts[key] += n
	r.Discarded += n
}

// Discards returns the number of study records dropped in one (bin, label)
// bucket.
func (r *Report) Discards(bin corpus.BinKey, label corpus.LabelKey) int {
	return r.counts[discardKey{bin: bin, label: label}]
}

// Log writes the run summary and any per-bucket discard counts, in the
// order the discards occurred.
func (r *Report) Log() {
	logger.Info("pairing run %s: %d pairs emitted, %d study records discarded", r.RunID, r.Paired, r.Discarded)
	for _, key := range r.order {
		logger.Warn("pairing run %s: discarded %d study records in bin %q label %q (no reference available)",
			r.RunID, r.counts[key], key.bin.Start(), key.label.Value())
	}
}

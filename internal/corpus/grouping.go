package corpus

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/corpuskit/corpuskey/internal/timebin"
)

// BinKey identifies a bucket's time bin: either the start timestamp of one
// concrete bin, or the single global bin used when binning is disabled.
type BinKey struct {
	start  string
	global bool
}

// GlobalBin returns the bin key shared by all records when binning is off.
func GlobalBin() BinKey {
	return BinKey{global: true}
}

// TimeBin returns the bin key for a bin start timestamp.
func TimeBin(start string) BinKey {
	return BinKey{start: start}
}

// Global reports whether this is the no-binning key.
func (k BinKey) Global() bool {
	return k.global
}

// Start returns the bin's start timestamp; empty for the global bin.
func (k BinKey) Start() string {
	return k.start
}

// LabelKey identifies a bucket's filtering label: either one label value, or
// the single no-label marker used when labels are disabled.
type LabelKey struct {
	label string
	none  bool
}

// NoLabel returns the label key shared by all records when labels are off.
func NoLabel() LabelKey {
	return LabelKey{none: true}
}

// Label returns the label key for a label value.
func Label(label string) LabelKey {
	return LabelKey{label: label}
}

// None reports whether this is the no-label key.
func (k LabelKey) None() bool {
	return k.none
}

// Value returns the label value; empty for the no-label key.
func (k LabelKey) Value() string {
	return k.label
}

// Grouping partitions a corpus into ordered buckets keyed by time bin and
// label. Bin order and per-bin label order are discovery order, so that
// iteration is deterministic for a given input; bucket contents are input
// order unless shuffled.
type Grouping struct {
	binOrder   []BinKey
	labelOrder map[BinKey][]LabelKey
	buckets    map[BinKey]map[LabelKey][]*Record
	total      int
}

// NewGrouping returns an empty grouping.
func NewGrouping() *Grouping {
	return &Grouping{
		labelOrder: make(map[BinKey][]LabelKey),
		buckets:    make(map[BinKey]map[LabelKey][]*Record),
	}
}

// Add appends a record to the (bin, label) bucket, creating it if needed.
func (g *Grouping) Add(bin BinKey, label LabelKey, rec *Record) {
	byLabel, ok := g.buckets[bin]
	if !ok {
		byLabel = make(map[LabelKey][]*Record)
		g.buckets[bin] = byLabel
		g.binOrder = append(g.binOrder, bin)
	}
	if _, ok := byLabel[label]; !ok {
		g.labelOrder[bin] = append(g.labelOrder[bin], label)
	}
	byLabel[label] = append(byLabel[label], rec)
	g.total++
}

// Bins returns the bin keys in discovery order.
func (g *Grouping) Bins() []BinKey {
	return g.binOrder
}

// Labels returns the labels discovered in a bin, in discovery order.
func (g *Grouping) Labels(bin BinKey) []LabelKey {
	return g.labelOrder[bin]
}

// Bucket returns the records of a (bin, label) bucket, or nil when the
// bucket does not exist. Absent buckets are simply empty, never an error.
func (g *Grouping) Bucket(bin BinKey, label LabelKey) []*Record {
	return g.buckets[bin][label]
}

// Len returns the total number of grouped records.
func (g *Grouping) Len() int {
	return g.total
}

// Shuffle permutes every bucket independently with the supplied random
// source. Buckets are visited in discovery order, so the same seed always
// yields the same permutations.
func (g *Grouping) Shuffle(rng *rand.Rand) {
	for _, bin := range g.binOrder {
		for _, label := range g.labelOrder[bin] {
			bucket := g.buckets[bin][label]
			rng.Shuffle(len(bucket), func(i, j int) {
				bucket[i], bucket[j] = bucket[j], bucket[i]
			})
		}
	}
}

// GroupOptions configures how a corpus is partitioned into a Grouping.
type GroupOptions struct {
	UseBins     bool         // group by time bin (else a single global bin)
	TimeColumn  string       // column holding ISO-8601 timestamps
	Interval    int          // bin width, in Units
	Unit        timebin.Unit // bin unit
	UseLabels   bool         // group by label within each bin
	LabelColumn string       // column holding filtering labels
	Shuffle     bool         // permute each bucket after grouping
	Rand        *rand.Rand   // seeded source for Shuffle; required if Shuffle
}

// Validate checks the option combination before any record is read.
func (o GroupOptions) Validate() error {
	if o.UseBins {
		if o.TimeColumn == "" {
			return fmt.Errorf("%w: time column must be named when binning", timebin.ErrInvalidConfiguration)
		}
		if _, err := timebin.Floor(timebin.MustParseISO("2000-01-01T00:00:00Z"), o.Interval, o.Unit); err != nil {
			return err
		}
	}
	if o.UseLabels && o.LabelColumn == "" {
		return fmt.Errorf("%w: label column must be named when labels are used", timebin.ErrInvalidConfiguration)
	}
	if o.Shuffle && o.Rand == nil {
		return fmt.Errorf("%w: shuffling requires a seeded random source", timebin.ErrInvalidConfiguration)
	}
	return nil
}

// Group reads every record from r and partitions it by time bin and label.
// Each input record lands in exactly one bucket. The reader is drained but
// not closed.
func Group(r *Reader, opts GroupOptions) (*Grouping, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	g := NewGrouping()
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		bin := GlobalBin()
		if opts.UseBins {
			raw, err := rec.Get(opts.TimeColumn)
			if err != nil {
				return nil, err
			}
			ts, err := timebin.ParseISO(raw)
			if err != nil {
				return nil, err
			}
			start, err := timebin.Start(ts, opts.Interval, opts.Unit)
			if err != nil {
				return nil, err
			}
			bin = TimeBin(start)
		}

		label := NoLabel()
		if opts.UseLabels {
			raw, err := rec.Get(opts.LabelColumn)
			if err != nil {
				return nil, err
			}
			label = Label(raw)
		}

		g.Add(bin, label, rec)
	}

	if opts.Shuffle {
		g.Shuffle(opts.Rand)
	}
	return g, nil
}

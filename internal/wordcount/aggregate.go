package wordcount

import (
	"errors"
	"fmt"
	"io"

	"github.com/corpuskit/corpuskey/internal/corpus"
	"github.com/corpuskit/corpuskey/internal/timebin"
)

// ErrInvalidConfiguration reports unusable aggregation options. It is
// returned before any records are processed.
var ErrInvalidConfiguration = errors.New("invalid wordcount configuration")

// Options configures count aggregation over a paired corpus file.
//
// Per-corpus columns are addressed as prefix, separator, suffix: with
// corpora ("study", "reference"), ColSep "_" and TextSuffix "tweet.text",
// the text columns are study_tweet.text and reference_tweet.text.
type Options struct {
	Corpora    []string // column prefixes, target corpus included
	ColSep     string   // separator between corpus prefix and column suffix
	TextSuffix string   // suffix of the text column
	TimeSuffix string   // suffix of the record-time column

	UseBins   bool
	Interval  int
	Unit      timebin.Unit
	BinLayout string // optional Go time layout naming bins; default "bin_{startISO}"

	// IncludeBinCounts derives the bin_count group after a binned pass.
	IncludeBinCounts bool

	LabelColumn string
	KeepLabels  []string // labels to keep; nil keeps everything

	ExcludeTerms []string // words dropped from counting, e.g. query terms

	Tokenizer func(string) []string
}

// Validate checks the options before a run.
func (o Options) Validate() error {
	if len(o.Corpora) == 0 {
		return fmt.Errorf("%w: no corpora named", ErrInvalidConfiguration)
	}
	if o.Tokenizer == nil {
		return fmt.Errorf("%w: no tokenizer supplied", ErrInvalidConfiguration)
	}
	if o.UseBins {
		if _, err := timebin.Floor(timebin.MustParseISO("2000-01-01T00:00:00Z"), o.Interval, o.Unit); err != nil {
			return err
		}
	}
	return nil
}

// Aggregate streams a paired corpus and builds its word count table. Every
// record contributes to each corpus's columns; with bins enabled each
// corpus's half of a record is binned by its own timestamp. After a binned
// pass the overall_count group is derived, plus bin_count when requested.
func Aggregate(r *corpus.Reader, opts Options) (*Table, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var keep map[string]bool
	if opts.KeepLabels != nil {
		keep = make(map[string]bool, len(opts.KeepLabels))
		for _, label := range opts.KeepLabels {
			keep[label] = true
		}
	}
	exclude := make(map[string]bool, len(opts.ExcludeTerms))
	for _, term := range opts.ExcludeTerms {
		exclude[term] = true
	}

	table := NewTable(opts.Corpora)
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if keep != nil {
			label, err := rec.Get(opts.LabelColumn)
			if err != nil {
				return nil, err
			}
			if !keep[label] {
				continue
			}
		}

		for _, name := range opts.Corpora {
			text, err := rec.Get(name + opts.ColSep + opts.TextSuffix)
			if err != nil {
				return nil, err
			}

			bin := OverallGroup
			if opts.UseBins {
				bin, err = binName(rec, name, opts)
				if err != nil {
					return nil, err
				}
			}

			for _, word := range opts.Tokenizer(text) {
				if exclude[word] {
					continue
				}
				if opts.UseBins {
					table.AddToBin(word, bin, name, 1)
				} else {
					table.AddDerived(word, bin, name, 1)
				}
			}
		}
	}

	if opts.UseBins {
		table.AddOverallCounts()
		if opts.IncludeBinCounts {
			table.AddBinCounts()
		}
	}
	return table, nil
}

// binName floors one corpus's timestamp on a record and renders the bin's
// column group name.
func binName(rec *corpus.Record, prefix string, opts Options) (string, error) {
	raw, err := rec.Get(prefix + opts.ColSep + opts.TimeSuffix)
	if err != nil {
		return "", err
	}
	ts, err := timebin.ParseISO(raw)
	if err != nil {
		return "", err
	}
	start, err := timebin.Floor(ts, opts.Interval, opts.Unit)
	if err != nil {
		return "", err
	}
	if opts.BinLayout != "" {
		return start.Format(opts.BinLayout), nil
	}
	return "bin_" + timebin.FormatISO(start), nil
}

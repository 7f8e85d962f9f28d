// Command align-corpora pairs a study corpus of records with a reference
// corpus, time bin by time bin, and writes the pairs as one flat CSV.
//
// The study corpus keeps its input order; the reference corpus is shuffled
// with a seeded source so pairing samples the reference pool reproducibly.
// Study records that cannot be paired, even after hierarchy backfill, are
// discarded and reported.
package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/spf13/pflag"

	"github.com/corpuskit/corpuskey/internal/config"
	"github.com/corpuskit/corpuskey/internal/corpus"
	"github.com/corpuskit/corpuskey/internal/logger"
	"github.com/corpuskit/corpuskey/internal/pairing"
	"github.com/corpuskit/corpuskey/internal/timebin"
)

func main() {
	flags := pflag.NewFlagSet("align-corpora", pflag.ExitOnError)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: align-corpora [flags] STUDY_CSV REFERENCE_CSV OUTPUT_CSV\n\n")
		flags.PrintDefaults()
	}

	configPath := flags.String("config", "", "Path to configuration file")
	timeColumn := flags.String("time-column", "", "Name of column where record times are stored")
	interval := flags.Int("timebin-interval", 0, "The timebin interval size (without units)")
	unitName := flags.String("timebin-unit", "", "The unit of the timebin interval (seconds, minutes, hours, days, weeks, months, years)")
	labelColumn := flags.String("label-column", "", "Name of column where record labels are stored")
	hierarchy := flags.StringSlice("label-hierarchy", nil, "Labels in backfill order, least-filtered first")
	unlabeled := flags.Bool("unlabeled", false, "Do not group records by label")
	idColumn := flags.String("id-column", "", "Name of column where pair IDs will be stored")
	seed := flags.Int64("seed", 0, "Random seed for reference shuffling")
	logLevel := flags.String("log-level", "", "Log level (debug, info, warn, error)")

	flags.Parse(os.Args[1:])
	if flags.NArg() != 3 {
		flags.Usage()
		os.Exit(2)
	}
	studyPath, referencePath, outputPath := flags.Arg(0), flags.Arg(1), flags.Arg(2)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyFlag(flags, "time-column", &cfg.Columns.Time, *timeColumn)
	applyFlag(flags, "label-column", &cfg.Columns.Label, *labelColumn)
	applyFlag(flags, "id-column", &cfg.Columns.PairID, *idColumn)
	applyFlag(flags, "timebin-unit", &cfg.Pairing.Unit, *unitName)
	applyFlag(flags, "log-level", &cfg.Logging.Level, *logLevel)
	if flags.Changed("timebin-interval") {
		cfg.Pairing.Interval = *interval
	}
	if flags.Changed("label-hierarchy") {
		cfg.Pairing.Hierarchy = *hierarchy
	}
	if flags.Changed("seed") {
		cfg.Pairing.Seed = *seed
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)

	unit, err := timebin.ParseUnit(cfg.Pairing.Unit)
	if err != nil {
		logger.Fatal("Invalid timebin unit: %v", err)
	}

	useLabels := !*unlabeled
	opts := corpus.GroupOptions{
		UseBins:     true,
		TimeColumn:  cfg.Columns.Time,
		Interval:    cfg.Pairing.Interval,
		Unit:        unit,
		UseLabels:   useLabels,
		LabelColumn: cfg.Columns.Label,
	}

	if useLabels && len(cfg.Pairing.Hierarchy) == 0 {
		logger.Warn("No label hierarchy given: labels pair in input discovery order and backfill is disabled")
	}

	study, studyHeader, err := groupFile(studyPath, opts)
	if err != nil {
		logger.Fatal("Failed to group study corpus: %v", err)
	}
	logger.Info("Grouped %d study records from %s into %d bins", study.Len(), studyPath, len(study.Bins()))

	opts.Shuffle = true
	opts.Rand = rand.New(rand.NewSource(cfg.Pairing.Seed))
	reference, _, err := groupFile(referencePath, opts)
	if err != nil {
		logger.Fatal("Failed to group reference corpus: %v", err)
	}
	logger.Info("Grouped %d reference records from %s into %d bins (seed %d)",
		reference.Len(), referencePath, len(reference.Bins()), cfg.Pairing.Seed)

	w, err := pairing.NewWriter(outputPath, studyHeader, pairing.WriterOptions{
		Corpora:     [2]string{cfg.Pairing.Corpora[0], cfg.Pairing.Corpora[1]},
		IDColumn:    cfg.Columns.PairID,
		UseLabels:   useLabels,
		LabelColumn: cfg.Columns.Label,
	})
	if err != nil {
		logger.Fatal("Failed to create output: %v", err)
	}

	var hier []string
	if useLabels {
		hier = cfg.Pairing.Hierarchy
	}
	pairer := pairing.NewPairer(study, reference, hier)
	for {
		pair, ok := pairer.Next()
		if !ok {
			break
		}
		if err := w.Write(pair); err != nil {
			w.Abort()
			logger.Fatal("Failed to write pair: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		logger.Fatal("Failed to finish output: %v", err)
	}

	pairer.Report().Log()
	logger.Info("Wrote paired corpus to %s", outputPath)
}

// groupFile opens one corpus CSV and groups it, returning its header for
// output layout.
func groupFile(path string, opts corpus.GroupOptions) (*corpus.Grouping, *corpus.Header, error) {
	r, err := corpus.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	g, err := corpus.Group(r, opts)
	if err != nil {
		return nil, nil, err
	}
	return g, r.Header(), nil
}

// applyFlag copies a string flag over its config field when it was set.
func applyFlag(flags *pflag.FlagSet, name string, dst *string, value string) {
	if flags.Changed(name) {
		*dst = value
	}
}

// Command keyness scores how characteristic each word is of the study
// corpus in a paired-corpus CSV, and writes a sorted score table.
//
// By default scores are computed across the whole corpus. With --use-bins
// the records are also binned by time and scored per bin, alongside the
// overall scores; --include-bin-counts adds an analysis over the number of
// bins each word occurs in.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/corpuskit/corpuskey/internal/config"
	"github.com/corpuskit/corpuskey/internal/corpus"
	"github.com/corpuskit/corpuskey/internal/keyness"
	"github.com/corpuskit/corpuskey/internal/logger"
	"github.com/corpuskit/corpuskey/internal/timebin"
	"github.com/corpuskit/corpuskey/internal/wordcount"
	"github.com/corpuskit/corpuskey/internal/words"
)

func main() {
	flags := pflag.NewFlagSet("keyness", pflag.ExitOnError)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: keyness [flags] INPUT_CSV OUTPUT_CSV\n\n")
		flags.PrintDefaults()
	}

	configPath := flags.String("config", "", "Path to configuration file")
	corpora := flags.StringSlice("corpus-names", nil, "Corpus names used as column prefixes in the input CSV, target first")
	target := flags.String("target-corpus", "", "Name of the target (study) corpus")
	colSep := flags.String("input-col-sep", "", "Separator between corpus prefixes and column suffixes")
	textSuffix := flags.String("text-col-suffix", "", "Suffix of the columns holding record text")
	timeSuffix := flags.String("time-col-suffix", "", "Suffix of the columns holding record times")
	labelColumn := flags.String("label-column", "", "Name of the pair label column")
	useBins := flags.Bool("use-bins", false, "Bin records by time and score keyness within each bin as well")
	unitName := flags.String("bin-time-unit", "", "Unit of the analysis bins (days, weeks, months, years)")
	interval := flags.Int("bin-time-interval", 0, "Size of the analysis bins (for months, must divide 12)")
	binLayout := flags.String("bin-format", "", "Go time layout naming analysis bins, e.g. 2006-01; default bin_{start}")
	keepLabels := flags.StringSlice("keep-labels", nil, "Only count pairs with these labels")
	excludePath := flags.String("exclude-terms-path", "", "Path to a TXT file of terms to exclude, one per line")
	includeBinCounts := flags.Bool("include-bin-counts", false, "Also score the number of bins each word occurs in")
	noSigning := flags.Bool("no-signing", false, "Do not negate scores of words underrepresented in the target corpus")
	cacheThreshold := flags.Int("cache-threshold", 0, "Memoize scores of words whose total count is at most this (negative disables)")
	nan := flags.Bool("nan", false, "Score words absent from every corpus as NaN instead of 0")
	pValues := flags.Bool("p-values", false, "Append chi-squared p-value columns")
	logLevel := flags.String("log-level", "", "Log level (debug, info, warn, error)")

	flags.Parse(os.Args[1:])
	if flags.NArg() != 2 {
		flags.Usage()
		os.Exit(2)
	}
	inputPath, outputPath := flags.Arg(0), flags.Arg(1)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if flags.Changed("corpus-names") {
		cfg.Pairing.Corpora = *corpora
	}
	if flags.Changed("target-corpus") {
		cfg.Keyness.Target = *target
	}
	if flags.Changed("input-col-sep") {
		cfg.Columns.Separator = *colSep
	}
	if flags.Changed("text-col-suffix") {
		cfg.Columns.TextSuffix = *textSuffix
	}
	if flags.Changed("time-col-suffix") {
		cfg.Columns.TimeSuffix = *timeSuffix
	}
	if flags.Changed("label-column") {
		cfg.Columns.Label = *labelColumn
	}
	if flags.Changed("bin-time-unit") {
		cfg.Keyness.Unit = *unitName
	}
	if flags.Changed("bin-time-interval") {
		cfg.Keyness.Interval = *interval
	}
	if flags.Changed("bin-format") {
		cfg.Keyness.BinLayout = *binLayout
	}
	if flags.Changed("include-bin-counts") {
		cfg.Keyness.IncludeBinCounts = *includeBinCounts
	}
	if flags.Changed("no-signing") {
		cfg.Keyness.Signed = !*noSigning
	}
	if flags.Changed("nan") {
		cfg.Keyness.NaNForZero = *nan
	}
	if flags.Changed("cache-threshold") {
		cfg.Keyness.CacheThreshold = *cacheThreshold
	}
	if flags.Changed("p-values") {
		cfg.Keyness.IncludePValues = *pValues
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)

	unit, err := timebin.ParseUnit(cfg.Keyness.Unit)
	if err != nil {
		logger.Fatal("Invalid bin unit: %v", err)
	}

	var exclude []string
	if *excludePath != "" {
		exclude, err = readLines(*excludePath)
		if err != nil {
			logger.Fatal("Failed to read exclude terms: %v", err)
		}
		logger.Info("Excluding %d terms from %s", len(exclude), *excludePath)
	}

	r, err := corpus.Open(inputPath)
	if err != nil {
		logger.Fatal("Failed to open input: %v", err)
	}
	defer r.Close()

	var keep []string
	if flags.Changed("keep-labels") {
		keep = *keepLabels
	}
	table, err := wordcount.Aggregate(r, wordcount.Options{
		Corpora:          cfg.Pairing.Corpora,
		ColSep:           cfg.Columns.Separator,
		TextSuffix:       cfg.Columns.TextSuffix,
		TimeSuffix:       cfg.Columns.TimeSuffix,
		UseBins:          *useBins,
		Interval:         cfg.Keyness.Interval,
		Unit:             unit,
		BinLayout:        cfg.Keyness.BinLayout,
		IncludeBinCounts: cfg.Keyness.IncludeBinCounts,
		LabelColumn:      cfg.Columns.Label,
		KeepLabels:       keep,
		ExcludeTerms:     exclude,
		Tokenizer:        words.Extract,
	})
	if err != nil {
		logger.Fatal("Failed to aggregate word counts: %v", err)
	}
	logger.Info("Counted %d distinct words across %d bins", len(table.Words()), len(table.Bins()))

	scorer := &keyness.Scorer{
		Target:         cfg.Keyness.Target,
		Signed:         cfg.Keyness.Signed,
		NaNForZero:     cfg.Keyness.NaNForZero,
		CacheThreshold: cfg.Keyness.CacheThreshold,
	}
	scores, err := scorer.ScoreAll(table)
	if err != nil {
		logger.Fatal("Failed to score keyness: %v", err)
	}
	hits, misses := scorer.CacheStats()
	logger.Debug("Score cache: %d hits, %d misses", hits, misses)

	err = keyness.WriteCSVFile(outputPath, table, scores, keyness.WriteOptions{
		Statistic:      cfg.Keyness.Statistic,
		IncludePValues: cfg.Keyness.IncludePValues,
	})
	if err != nil {
		logger.Fatal("Failed to write output: %v", err)
	}
	logger.Info("Wrote keyness scores to %s", outputPath)
}

// readLines loads a file as one trimmed entry per line.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

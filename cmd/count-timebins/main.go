// Command count-timebins bins the records of one or more CSV files by time
// and writes the per-bin counts as JSON, keyed by the "{start}_{end}" bin
// identity. Useful for comparing binning criteria before aligning corpora.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/pflag"

	"github.com/corpuskit/corpuskey/internal/config"
	"github.com/corpuskit/corpuskey/internal/corpus"
	"github.com/corpuskit/corpuskey/internal/logger"
	"github.com/corpuskit/corpuskey/internal/timebin"
)

func main() {
	flags := pflag.NewFlagSet("count-timebins", pflag.ExitOnError)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: count-timebins [flags] INPUT_CSV... OUTPUT_JSON\n\n")
		flags.PrintDefaults()
	}

	configPath := flags.String("config", "", "Path to configuration file")
	column := flags.String("column", "", "Name of column where timestamps are stored")
	interval := flags.Int("interval", 1, "The bin interval size (without units)")
	unitName := flags.String("unit", "days", "The unit of the bin interval (seconds, minutes, hours, days, weeks, months, years)")
	logLevel := flags.String("log-level", "", "Log level (debug, info, warn, error)")

	flags.Parse(os.Args[1:])
	if flags.NArg() < 2 {
		flags.Usage()
		os.Exit(2)
	}
	inputPaths := flags.Args()[:flags.NArg()-1]
	outputPath := flags.Arg(flags.NArg() - 1)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if flags.Changed("column") {
		cfg.Columns.Time = *column
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = *logLevel
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)

	unit, err := timebin.ParseUnit(*unitName)
	if err != nil {
		logger.Fatal("Invalid unit: %v", err)
	}
	if _, err := timebin.Floor(timebin.MustParseISO("2000-01-01T00:00:00Z"), *interval, unit); err != nil {
		logger.Fatal("Invalid bin configuration: %v", err)
	}

	counts := make(map[string]int)
	for _, path := range inputPaths {
		n, err := countFile(path, cfg.Columns.Time, *interval, unit, counts)
		if err != nil {
			logger.Fatal("Failed to count %s: %v", path, err)
		}
		logger.Info("Binned %d records from %s", n, path)
	}

	if err := dumpJSON(outputPath, counts); err != nil {
		logger.Fatal("Failed to write counts: %v", err)
	}
	logger.Info("Wrote %d bins to %s", len(counts), outputPath)
}

// countFile adds one file's per-bin record counts into counts.
func countFile(path, column string, interval int, unit timebin.Unit, counts map[string]int) (int, error) {
	r, err := corpus.Open(path)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	n := 0
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}

		raw, err := rec.Get(column)
		if err != nil {
			return n, err
		}
		ts, err := timebin.ParseISO(raw)
		if err != nil {
			return n, err
		}
		key, err := timebin.Key(ts, interval, unit)
		if err != nil {
			return n, err
		}
		counts[key]++
		n++
	}
}

// dumpJSON writes the counts through a temporary name so a crashed run
// never leaves a half-written file behind.
func dumpJSON(path string, counts map[string]int) error {
	data, err := json.MarshalIndent(counts, "", "    ")
	if err != nil {
		return err
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// Command count-words counts the normalized words of the text entries in a
// CSV file and writes a tab-separated WORD/COUNT frequency list.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/pflag"

	"github.com/corpuskit/corpuskey/internal/config"
	"github.com/corpuskit/corpuskey/internal/corpus"
	"github.com/corpuskit/corpuskey/internal/logger"
	"github.com/corpuskit/corpuskey/internal/words"
)

func main() {
	flags := pflag.NewFlagSet("count-words", pflag.ExitOnError)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: count-words [flags] INPUT_CSV OUTPUT_TSV\n\n")
		flags.PrintDefaults()
	}

	configPath := flags.String("config", "", "Path to configuration file")
	textColumn := flags.String("text-column", "text", "Name of column where entry text is stored")
	noEmoji := flags.Bool("no-emoji", false, "Exclude emoji from counts")
	sortAlpha := flags.Bool("sort-alpha", false, "Sort words alphabetically instead of by count")
	keepLinks := flags.Bool("keep-links", false, "Keep links in the text")
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
	if flags.Changed("log-level") {
		cfg.Logging.Level = *logLevel
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)

	r, err := corpus.Open(inputPath)
	if err != nil {
		logger.Fatal("Failed to open input: %v", err)
	}
	defer r.Close()

	opts := words.Options{IncludeEmoji: !*noEmoji, RemoveLinks: !*keepLinks}
	counter := make(words.Counter)
	entries := 0
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Fatal("Failed to read input: %v", err)
		}
		text, err := rec.Get(*textColumn)
		if err != nil {
			logger.Fatal("Failed to read entry text: %v", err)
		}
		counter.AddText(text, opts)
		entries++
	}
	logger.Info("Counted %d distinct words across %d entries", len(counter), entries)

	if err := counter.DumpTSVFile(outputPath, !*sortAlpha); err != nil {
		logger.Fatal("Failed to write counts: %v", err)
	}
	logger.Info("Wrote word counts to %s", outputPath)
}

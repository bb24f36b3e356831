package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/jamesainslie/go-rawtext/internal/bench"
	"github.com/jamesainslie/go-rawtext/internal/config"
	"github.com/jamesainslie/go-rawtext/internal/logging"
)

// Set by the build through -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	var (
		configPath = flag.String("config", "rawtext.yaml", "Path to configuration file")
		corpusDir  = flag.String("corpus", "", "Directory containing corpus documents (overrides config)")
		workers    = flag.Int("workers", 0, "Concurrent runners (overrides config)")
		tolerance  = flag.Int("tolerance", 3, "Byte tolerance for matching against reference breaks")
		wp         = flag.Float64("wp", 1.0, "Precision weight")
		wr         = flag.Float64("wr", 1.0, "Recall weight")
		sweepMin   = flag.Int("sweep-min", 0, "Smallest segment size; with -sweep-max, doubles up to it")
		sweepMax   = flag.Int("sweep-max", 0, "Largest segment size")
		showVer    = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVer {
		fmt.Printf("rawtext-bench %s (commit %s, built %s)\n", version, commit, date)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}
	if *corpusDir != "" {
		cfg.Bench.Corpus = *corpusDir
	}
	if *workers > 0 {
		cfg.Bench.Workers = *workers
	}
	if *sweepMax > 0 {
		cfg.Bench.Sizes = bench.SweepSizes(*sweepMin, *sweepMax)
	}

	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = closer.Close() }()

	// Load corpus
	docs, err := bench.LoadCorpus(cfg.Bench.Corpus)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading corpus: %v\n", err)
		os.Exit(1)
	}
	var total int
	for _, d := range docs {
		total += len(d.Text)
	}
	fmt.Printf("Loaded %d documents (%d bytes) from %s\n\n", len(docs), total, cfg.Bench.Corpus)

	evalCfg := bench.Config{
		Tolerance:       *tolerance,
		PrecisionWeight: *wp,
		RecallWeight:    *wr,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pool := bench.NewPool(cfg.Bench.Workers, logger)
	defer pool.Close()

	results, err := bench.Sweep(ctx, pool, docs, cfg.Bench.Sizes, evalCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error during sweep: %v\n", err)
		os.Exit(1)
	}

	printResults(results, evalCfg)
}

func printResults(results []bench.SweepResult, cfg bench.Config) {
	fmt.Printf("Segment Size Sweep (tolerance=%d, wp=%.1f, wr=%.1f)\n", cfg.Tolerance, cfg.PrecisionWeight, cfg.RecallWeight)
	fmt.Println(strings.Repeat("-", 72))
	fmt.Printf("%-8s %-10s %-10s %-8s %-8s %-10s %-8s\n", "Size", "Sents", "Consist", "Prec", "Rec", "Weighted", "MB/s")

	consistent := true
	for _, r := range results {
		size := fmt.Sprint(r.Size)
		if r.Size == 0 {
			size = "whole"
		}
		fmt.Printf("%-8s %-10d %-10.4f %-8.2f %-8.2f %-10.2f %-8.1f\n",
			size, r.Sentences, r.Consistency.F1,
			r.Accuracy.Precision, r.Accuracy.Recall, r.Accuracy.WeightedScore,
			r.Throughput())
		if r.Consistency.FalsePositives+r.Consistency.FalseNegatives > 0 {
			consistent = false
		}
	}

	fmt.Println(strings.Repeat("-", 72))
	if consistent {
		fmt.Println("All segment sizes reproduce the whole-document sentences.")
		return
	}
	fmt.Println("Some segment sizes diverge from the whole-document sentences.")
	os.Exit(2)
}

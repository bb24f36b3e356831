package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/jamesainslie/go-rawtext"
	"github.com/jamesainslie/go-rawtext/internal/bench"
	"github.com/jamesainslie/go-rawtext/internal/config"
	"github.com/jamesainslie/go-rawtext/internal/logging"
	"github.com/jamesainslie/go-rawtext/internal/wire"
	"github.com/jamesainslie/go-rawtext/marker"
)

// Set by the build through -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath  string
	markersPath string
	segment     int
	format      string
	locations   bool
	version     bool
	input       string
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("rawtext", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "rawtext.yaml", "Path to configuration file")
	fs.StringVar(&o.markersPath, "markers", "", "Path to YAML marker file with document positions")
	fs.IntVar(&o.segment, "segment", -1, "Segment size in bytes, 0 for whole input (overrides config)")
	fs.StringVar(&o.format, "format", "", "Output format: text, jsonl or proto (overrides config)")
	fs.BoolVar(&o.locations, "locations", false, "Prefix text output with file:line:column")
	fs.BoolVar(&o.version, "version", false, "Print version and exit")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: rawtext [OPTIONS] [FILE]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 1 {
		return options{}, errors.New("at most one input file")
	}
	o.input = fs.Arg(0)
	return o, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	if opts.version {
		_, err := fmt.Fprintf(stdout, "rawtext %s (commit %s, built %s)\n", version, commit, date)
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.segment >= 0 {
		cfg.Process.SegmentSize = opts.segment
	}
	if opts.format != "" {
		cfg.Output.Format = opts.format
	}
	if opts.locations {
		cfg.Output.Locations = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }() // Cleanup error ignored in CLI

	text, name, err := readInput(opts.input, stdin)
	if err != nil {
		return err
	}

	var ms []marker.Marker
	if opts.markersPath != "" {
		if ms, err = config.LoadMarkers(opts.markersPath); err != nil {
			return err
		}
	}

	streamOpts := []rawtext.Option{
		rawtext.WithLogger(logger),
		rawtext.WithOutputDivider(cfg.Process.Divider),
		rawtext.WithElidedPrefix(cfg.Process.ElidedPrefix),
	}
	if name != "" {
		streamOpts = append(streamOpts, rawtext.WithFileName(name))
	}
	stream := rawtext.NewStream(streamOpts...)

	out := bufio.NewWriter(stdout)
	defer out.Flush()
	emit, err := newEmitter(cfg.Output, stream.ID(), out)
	if err != nil {
		return err
	}

	ms = marker.Sort(ms)
	start := 0
	cuts := bench.Cuts(text, cfg.Process.SegmentSize)
	for i, end := range cuts {
		if err := ctx.Err(); err != nil {
			return err
		}
		sents, err := stream.Write(text[start:end], marker.Window(ms, start, end, i == len(cuts)-1))
		if err != nil {
			return err
		}
		if err := emit(sents); err != nil {
			return err
		}
		start = end
	}

	sents, anomalies, err := stream.Close()
	for _, a := range anomalies {
		logger.Warn("unclosed markup at end of input", "kind", a.Kind, "depth", a.Depth, "detail", a.Detail)
	}
	if err != nil {
		return err
	}
	if err := emit(sents); err != nil {
		return err
	}

	logger.Info("input processed",
		"stream", stream.ID(),
		"bytes", len(text),
		"segments", len(cuts),
		"anomalies", len(anomalies),
	)
	return out.Flush()
}

func readInput(path string, stdin io.Reader) (string, string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("read input: %w", err)
	}
	return string(data), filepath.Base(path), nil
}

// jsonSentence is the JSON lines form of a sentence.
type jsonSentence struct {
	Stream   string            `json:"stream"`
	Seq      uint64            `json:"seq"`
	Text     string            `json:"text"`
	Complete bool              `json:"complete"`
	Location string            `json:"location"`
	Start    int               `json:"start"`
	Boundary int               `json:"boundary"`
	Index    []int             `json:"original_index"`
	Segments map[int]string    `json:"segments,omitempty"`
	Tags     []rawtext.TagSpan `json:"tags,omitempty"`
}

type emitter func([]*rawtext.Sentence) error

func newEmitter(cfg config.OutputConfig, streamID string, w io.Writer) (emitter, error) {
	var seq uint64
	switch cfg.Format {
	case "text":
		return func(sents []*rawtext.Sentence) error {
			for _, s := range sents {
				var err error
				if cfg.Locations {
					_, err = fmt.Fprintf(w, "%s\t%s\n", s.Location(0), s.Text())
				} else {
					_, err = fmt.Fprintln(w, s.Text())
				}
				if err != nil {
					return err
				}
			}
			return nil
		}, nil
	case "jsonl":
		enc := json.NewEncoder(w)
		return func(sents []*rawtext.Sentence) error {
			for _, s := range sents {
				seq++
				err := enc.Encode(jsonSentence{
					Stream:   streamID,
					Seq:      seq,
					Text:     s.Text(),
					Complete: s.IsComplete(),
					Location: s.Location(0),
					Start:    s.Start(),
					Boundary: s.Boundary(),
					Index:    s.OriginalIndexes(),
					Segments: s.OriginalTextSegments(),
					Tags:     s.Tags(),
				})
				if err != nil {
					return err
				}
			}
			return nil
		}, nil
	case "proto":
		pw := wire.NewWriter(w)
		return func(sents []*rawtext.Sentence) error {
			for _, s := range sents {
				seq++
				if err := pw.Write(wire.FromSentence(streamID, seq, s)); err != nil {
					return err
				}
			}
			return nil
		}, nil
	}
	return nil, fmt.Errorf("unknown output format %q", cfg.Format)
}

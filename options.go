package rawtext

import (
	"crypto/rand"
	"log/slog"

	"github.com/oklog/ulid/v2"

	"github.com/jamesainslie/go-rawtext/marker"
)

// Option configures a Processor or Stream.
type Option func(*config)

// DefaultElidedPrefix bounds the skipped text kept ahead of the first byte
// an override lets through.
const DefaultElidedPrefix = 4096

type config struct {
	logger       *slog.Logger
	divider      string
	fileName     string
	streamID     string
	elidedPrefix int
	filters      []marker.Filter
}

func defaultConfig() config {
	return config{
		logger:       slog.Default(),
		elidedPrefix: DefaultElidedPrefix,
	}
}

func newConfig(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.streamID == "" {
		cfg.streamID = ulid.MustNew(ulid.Now(), rand.Reader).String()
	}
	return cfg
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithOutputDivider sets the text placed between two elided original text
// segments that land on the same processed offset (default: none).
func WithOutputDivider(d string) Option {
	return func(c *config) {
		c.divider = d
	}
}

// WithElidedPrefix sets how many skipped bytes are kept while nothing in a
// skip region has been emitted yet (default: DefaultElidedPrefix). Elided
// text recorded for the region starts at most n bytes before its first
// emitted byte. A value of zero or less keeps everything.
func WithElidedPrefix(n int) Option {
	return func(c *config) {
		c.elidedPrefix = n
	}
}

// WithFileName sets the name reported by sentences of the first file.
func WithFileName(name string) Option {
	return func(c *config) {
		c.fileName = name
	}
}

// WithStreamID sets the identifier attached to log records (default: a new
// ULID).
func WithStreamID(id string) Option {
	return func(c *config) {
		c.streamID = id
	}
}

// WithFilters sets filters a Stream runs over every segment it is given.
// Their markers are added to the markers passed to Write. Processors ignore
// this option.
func WithFilters(filters ...marker.Filter) Option {
	return func(c *config) {
		c.filters = append(c.filters, filters...)
	}
}

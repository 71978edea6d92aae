package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Format selects the logger output encoding.
type Format string

const (
	// FormatJSON emits structured records for log aggregation.
	FormatJSON Format = "json"
	// FormatText emits human-readable records for development.
	FormatText Format = "text"
)

// Config carries logger settings loadable from the environment.
type Config struct {
	Level  slog.Level `env:"LOG_LEVEL" envDefault:"info"`   // Level is the minimum record level emitted.
	Format Format     `env:"LOG_FORMAT" envDefault:"json"`  // Format is the output encoding, "json" or "text".
	Source bool       `env:"LOG_SOURCE" envDefault:"false"` // Source controls whether records carry source positions.
}

type options struct {
	level      slog.Level
	format     Format
	output     io.Writer
	addSource  bool
	attrs      []slog.Attr
	extractors []ContextExtractor
}

// Option configures logger creation.
type Option func(*options)

// WithLevel sets the minimum level.
func WithLevel(l slog.Level) Option {
	return func(o *options) { o.level = l }
}

// WithFormat sets the output encoding. Invalid formats panic so that a
// misconfigured service fails at startup rather than at first log call.
func WithFormat(f Format) Option {
	return func(o *options) {
		switch f {
		case FormatJSON, FormatText:
			o.format = f
		default:
			panic(fmt.Errorf("logger: invalid format %q, must be %q or %q", f, FormatJSON, FormatText))
		}
	}
}

// WithOutput redirects log output. Nil writers are ignored.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.output = w
		}
	}
}

// WithSource includes source file positions in records.
func WithSource() Option {
	return func(o *options) { o.addSource = true }
}

// WithAttrs attaches static attributes to every record.
func WithAttrs(attrs ...slog.Attr) Option {
	return func(o *options) {
		o.attrs = append(o.attrs, attrs...)
	}
}

// WithContextExtractors registers functions that pull request-scoped
// attributes out of the context at log time. Nil extractors are dropped.
func WithContextExtractors(extractors ...ContextExtractor) Option {
	return func(o *options) {
		for _, ex := range extractors {
			if ex != nil {
				o.extractors = append(o.extractors, ex)
			}
		}
	}
}

// New builds a slog.Logger from the supplied options.
func New(opts ...Option) *slog.Logger {
	o := &options{
		level:  slog.LevelInfo,
		format: FormatJSON,
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(o)
	}

	handlerOpts := &slog.HandlerOptions{Level: o.level, AddSource: o.addSource}

	var handler slog.Handler
	if o.format == FormatText {
		handler = slog.NewTextHandler(o.output, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(o.output, handlerOpts)
	}
	if len(o.attrs) > 0 {
		handler = handler.WithAttrs(o.attrs)
	}
	return slog.New(newContextHandler(handler, o.extractors))
}

// NewFromConfig builds a logger from environment-driven Config, naming the
// emitting service in every record.
func NewFromConfig(cfg Config, service string, opts ...Option) *slog.Logger {
	base := []Option{
		WithLevel(cfg.Level),
		WithFormat(cfg.Format),
	}
	if cfg.Source {
		base = append(base, WithSource())
	}
	if service != "" {
		base = append(base, WithAttrs(slog.String("service", service)))
	}
	return New(append(base, opts...)...)
}

// Error returns an attribute for err under the key "error", or an empty
// attribute when err is nil.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// ContextExtractor extracts one attribute from a context, reporting whether
// the attribute is present.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Config is read from LOG_LEVEL and LOG_FORMAT ("json" or "text").
type Config struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type Option func(*settings)

type settings struct {
	level      slog.Level
	text       bool
	output     io.Writer
	attrs      []slog.Attr
	extractors []ContextExtractor
}

// WithOutput redirects records, stdout by default. Nil is ignored.
func WithOutput(w io.Writer) Option {
	return func(s *settings) {
		if w != nil {
			s.output = w
		}
	}
}

func WithContextExtractors(extractors ...ContextExtractor) Option {
	return func(s *settings) {
		for _, ex := range extractors {
			if ex != nil {
				s.extractors = append(s.extractors, ex)
			}
		}
	}
}

// WithEnvironment tags records with service and env. Development logs text
// at debug; staging and production log JSON at info.
// Apply FromConfig after it to override level or format.
func WithEnvironment(env, service string) Option {
	return func(s *settings) {
		switch env {
		case EnvProduction, "prod":
			env, s.level, s.text = EnvProduction, slog.LevelInfo, false
		case EnvStaging, "stage":
			env, s.level, s.text = EnvStaging, slog.LevelInfo, false
		default:
			env, s.level, s.text = EnvDevelopment, slog.LevelDebug, true
		}
		if service != "" {
			s.attrs = append(s.attrs, slog.String("service", service))
		}
		s.attrs = append(s.attrs, slog.String("env", env))
	}
}

// FromConfig applies LOG_LEVEL and LOG_FORMAT. Unparseable values keep the
// current setting.
func FromConfig(cfg Config) Option {
	return func(s *settings) {
		var l slog.Level
		if err := l.UnmarshalText([]byte(strings.TrimSpace(cfg.Level))); err == nil {
			s.level = l
		}
		switch strings.ToLower(cfg.Format) {
		case "text":
			s.text = true
		case "json":
			s.text = false
		}
	}
}

// New builds a JSON logger at info level unless options say otherwise.
// Records pass through the context decorator.
func New(opts ...Option) *slog.Logger {
	s := &settings{level: slog.LevelInfo, output: os.Stdout}
	for _, opt := range opts {
		opt(s)
	}

	handlerOpts := &slog.HandlerOptions{Level: s.level}
	var h slog.Handler = slog.NewJSONHandler(s.output, handlerOpts)
	if s.text {
		h = slog.NewTextHandler(s.output, handlerOpts)
	}
	if len(s.attrs) > 0 {
		h = h.WithAttrs(s.attrs)
	}
	return slog.New(NewLogHandlerDecorator(h, s.extractors...))
}

// Discard is the default for components built without a logger.
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }

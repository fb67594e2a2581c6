package colonnade

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	slogformatter "github.com/samber/slog-formatter"
	slogmulti "github.com/samber/slog-multi"
	"gitlab.com/tozd/go/errors"
)

var levelColorNumbers = map[string]uint8{
	"TRACE":  7,
	"DEBUG":  6,
	"INFO":   2,
	"NOTICE": 4,
	"WARN":   3,
	"ERROR":  1,
	"FATAL":  9,
}

// HandlerOptions configures the columnar slog handler.
type HandlerOptions struct {
	// Level reports the minimum record level that will be logged.
	// Defaults to LevelInfo.
	Level slog.Leveler

	// Name is the logger name rendered into the {name} field.
	// Groups opened with WithGroup extend it dot-separated.
	Name string
}

// Handler is a slog.Handler that renders records through a Formatter
// into column-aligned text.
type Handler struct {
	formatter *Formatter
	opts      HandlerOptions

	mu    *sync.Mutex
	w     io.Writer
	name  string
	attrs []slog.Attr
}

// NewHandler wires a Formatter to a writer as a slog.Handler.
func NewHandler(w io.Writer, formatter *Formatter, opts *HandlerOptions) *Handler {
	h := &Handler{
		formatter: formatter,
		mu:        &sync.Mutex{},
		w:         w,
	}
	if opts != nil {
		h.opts = *opts
	}
	if h.opts.Level == nil {
		h.opts.Level = LevelInfo
	}
	h.name = h.opts.Name
	if h.name == "" {
		h.name = "root"
	}
	return h
}

func (h *Handler) clone() *Handler {
	c := *h
	c.attrs = append([]slog.Attr(nil), h.attrs...)
	return &c
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.clone()
	c.attrs = append(c.attrs, attrs...)
	return c
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := h.clone()
	c.name = c.name + "." + name
	return c
}

// Handle renders the record into the handler's columns and writes it,
// one formatted block per record.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	rec := Record{
		Time:  r.Time,
		Level: r.Level,
		Fields: map[string]string{
			"message": r.Message,
			"name":    h.name,
		},
	}
	if rec.Time.IsZero() {
		rec.Time = time.Now()
	}

	if r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		rec.Fields["funcName"] = shortFunctionName(frame.Function)
		rec.Fields["filename"] = shortFileName(frame.File)
	}

	var tail []string
	appendAttr := func(attr slog.Attr) {
		if attr.Equal(slog.Attr{}) {
			return
		}
		if err, ok := attr.Value.Resolve().Any().(error); ok {
			rec.Exception = Traceback(err)
			return
		}
		if _, ok := knownFields[attr.Key]; ok && attr.Key != "message" {
			rec.Fields[attr.Key] = attr.Value.String()
			return
		}
		tail = append(tail, attr.Key+"="+attr.Value.String())
	}
	for _, attr := range h.attrs {
		appendAttr(attr)
	}
	r.Attrs(func(attr slog.Attr) bool {
		appendAttr(attr)
		return true
	})
	if len(tail) > 0 {
		rec.Fields["message"] = rec.Fields["message"] + " " + strings.Join(tail, " ")
	}

	s, err := h.formatter.Format(rec)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, werr := io.WriteString(h.w, s+"\n")
	return werr
}

func shortFunctionName(function string) string {
	if idx := strings.LastIndex(function, "."); idx != -1 {
		return function[idx+1:]
	}
	return function
}

func shortFileName(file string) string {
	if idx := strings.LastIndex(file, "/"); idx != -1 {
		return file[idx+1:]
	}
	return file
}

// setupConfig collects the Setup options.
type setupConfig struct {
	style        Style
	palette      *Palette
	level        slog.Leveler
	stream       io.Writer
	file         io.Writer
	name         string
	forceColumns bool
}

// Option configures Setup.
type Option func(*setupConfig)

// WithStyle sets the style used for columnar console output.
func WithStyle(style Style) Option {
	return func(c *setupConfig) { c.style = style }
}

// WithPaletteOption sets the colour palette for columnar output.
func WithPaletteOption(p *Palette) Option {
	return func(c *setupConfig) { c.palette = p }
}

// WithLevel sets the minimum level for all configured handlers.
func WithLevel(level slog.Leveler) Option {
	return func(c *setupConfig) { c.level = level }
}

// WithStream directs console output to the given writer.
func WithStream(w io.Writer) Option {
	return func(c *setupConfig) { c.stream = w }
}

// WithFileWriter adds a second, plain (column- and escape-free) output,
// typically an opened log file.
func WithFileWriter(w io.Writer) Option {
	return func(c *setupConfig) { c.file = w }
}

// WithName sets the root logger name rendered into the {name} field.
func WithName(name string) Option {
	return func(c *setupConfig) { c.name = name }
}

// WithForceColumns uses columnar output even when the stream is not a
// terminal. Useful for tests and captured output.
func WithForceColumns() Option {
	return func(c *setupConfig) { c.forceColumns = true }
}

// Setup configures slog with colonnade output and installs the result
// as the default logger. On a terminal the console gets column-aligned,
// colourised output; otherwise it falls back to a plain handler. An
// optional file writer always receives the plain form.
func Setup(opts ...Option) (*slog.Logger, errors.E) {
	cfg := setupConfig{
		style:  DefaultStyle(),
		level:  LevelInfo,
		stream: os.Stdout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.palette == nil {
		cfg.palette = DefaultPalette()
	}

	isTerminal := writerIsTerminal(cfg.stream)
	color.NoColor = !isTerminal && !cfg.forceColumns

	var console slog.Handler
	if isTerminal || cfg.forceColumns {
		formatter, err := NewFormatter(cfg.style, WithPalette(cfg.palette))
		if err != nil {
			return nil, err
		}
		console = NewHandler(cfg.stream, formatter, &HandlerOptions{
			Level: cfg.level,
			Name:  cfg.name,
		})
	} else {
		console = plainHandler(cfg.stream, cfg.style, cfg.level)
	}

	if cfg.file != nil {
		console = slogmulti.Fanout(console, plainHandler(cfg.file, cfg.style, cfg.level))
	}

	logger := slog.New(console)
	slog.SetDefault(logger)
	return logger, nil
}

// plainHandler builds the non-columnar fallback: a tint handler without
// colour, wrapped in error and time formatting middleware.
func plainHandler(w io.Writer, style Style, level slog.Leveler) slog.Handler {
	handler := tint.NewHandler(w, &tint.Options{
		Level:       level,
		TimeFormat:  style.TimeFormat,
		NoColor:     true,
		ReplaceAttr: replaceLogLevel,
	})
	middleware := slogformatter.NewFormatterHandler(
		ErrorFormatter("error"),
		slogformatter.TimeFormatter(style.TimeFormat, time.Local),
	)
	return middleware(handler)
}

// replaceLogLevel customizes the display names for custom log levels.
func replaceLogLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		if val, ok := a.Value.Any().(slog.Level); ok {
			if name, exists := reverseLevelNames[val]; exists {
				a.Value = slog.StringValue(name)
				a = tint.Attr(levelColorNumbers[name], a)
			}
		}
	}
	return a
}

// writerIsTerminal reports whether w is an interactive terminal that
// can display colours.
func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) ||
		strings.Contains(os.Getenv("TERM"), "color")
}

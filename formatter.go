package colonnade

import (
	"log"
	"log/slog"
	"strings"
	"sync"
	"time"

	"gitlab.com/tozd/go/errors"

	"github.com/colonnade/colonnade/scrub"
)

// Record is the immutable data one logging call hands to the formatter.
// Fields maps record field names to their string values; asctime and
// levelname are derived from Time and Level by the formatter itself.
// Exception and Stack text, when present, are appended verbatim after
// the assembled block.
type Record struct {
	Time      time.Time
	Level     slog.Level
	Fields    map[string]string
	Exception string
	Stack     string
}

// dividerFlag marks a record whose message is replaced by a full-width
// horizontal rule. Emitted by LogHeader.
const dividerFlag = "c6c4f3e0-5bb6-4ae6-a4a3-fc358bd93f3d"

// Formatter renders log records into column-aligned, optionally
// colourised text. The parsed template and width allocation are cached
// and recomputed only when the target width changes, under a lock so
// concurrent format calls never observe a torn layout.
type Formatter struct {
	style   Style
	palette *Palette
	cleaner *scrub.Cleaner

	mu     sync.Mutex
	cached *layout
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithPalette sets the colour palette used when the style enables
// colourised levels.
func WithPalette(p *Palette) FormatterOption {
	return func(f *Formatter) {
		f.palette = p
	}
}

// NewFormatter builds a Formatter for the given style. Configuration
// errors, a malformed template or a width too small for the mandatory
// content, surface here, before any record is formatted.
func NewFormatter(style Style, opts ...FormatterOption) (*Formatter, errors.E) {
	if err := style.validate(); err != nil {
		return nil, err
	}
	f := &Formatter{style: style}
	for _, opt := range opts {
		opt(f)
	}
	if f.palette == nil && style.ColourLevels {
		f.palette = DefaultPalette()
	}
	var cleanerOpts []scrub.CleanerOption
	if style.MaskSecrets {
		cleanerOpts = append(cleanerOpts, scrub.WithSecretMasking())
	}
	f.cleaner = scrub.NewCleaner(cleanerOpts...)
	if _, err := f.layout(); err != nil {
		return nil, err
	}
	return f, nil
}

// Style returns the formatter's style value.
func (f *Formatter) Style() Style { return f.style }

// WithStyle returns a new Formatter for a different style, keeping the
// palette. The receiver is unchanged.
func (f *Formatter) WithStyle(style Style) (*Formatter, errors.E) {
	return NewFormatter(style, WithPalette(f.palette))
}

// layout returns the current cached layout, recomputing it when the
// target width has changed since the last call.
func (f *Formatter) layout() (*layout, errors.E) {
	f.mu.Lock()
	defer f.mu.Unlock()
	width := f.style.targetWidth()
	if f.cached != nil && f.cached.width == width {
		return f.cached, nil
	}
	lay, err := computeLayout(f.style, width, log.Printf)
	if err != nil {
		return nil, err
	}
	f.cached = lay
	return lay, nil
}

// Format renders one record into its final, possibly multi-line string.
func (f *Formatter) Format(rec Record) (string, errors.E) {
	lay, err := f.layout()
	if err != nil {
		return "", err
	}

	if rec.Fields["message"] == dividerFlag {
		return f.colourise(rec.Level, []string{strings.Repeat("-", lay.width)})[0], nil
	}

	values, err := f.recordValues(rec, lay)
	if err != nil {
		return "", err
	}

	columnLines := make([][]string, len(lay.columns))
	maxLines := 1
	for i, c := range lay.columns {
		lines := c.renderLines(values)
		columnLines[i] = lines
		if len(lines) > maxLines {
			maxLines = len(lines)
		}
	}
	for i, c := range lay.columns {
		for len(columnLines[i]) < maxLines {
			columnLines[i] = append(columnLines[i], c.emptyLine())
		}
	}

	lines := f.colourise(rec.Level, lay.assemble(columnLines, maxLines))
	s := strings.Join(lines, "\n")

	if rec.Exception != "" {
		if !strings.HasSuffix(s, "\n") {
			s += "\n"
		}
		s += rec.Exception
	}
	if rec.Stack != "" {
		if !strings.HasSuffix(s, "\n") {
			s += "\n"
		}
		s += rec.Stack
	}
	return s, nil
}

// recordValues resolves every field the layout references against the
// record. A referenced field missing from the record is fatal for this
// record: silently omitting it would silently corrupt the layout.
func (f *Formatter) recordValues(rec Record, lay *layout) (map[string]string, errors.E) {
	values := make(map[string]string, len(rec.Fields)+2)
	for k, v := range rec.Fields {
		values[k] = v
	}
	values["asctime"] = rec.Time.Format(f.style.TimeFormat)
	if f.style.ShortLevels {
		values["levelname"] = ShortLevelName(rec.Level)
	} else {
		values["levelname"] = LevelName(rec.Level)
	}
	if f.style.CleanOutput {
		if name, ok := values["name"]; ok {
			values["name"] = f.cleaner.Name(name)
		}
	}
	if f.style.MaskSecrets {
		if msg, ok := values["message"]; ok {
			values["message"] = f.cleaner.Message(msg)
		}
	}

	for _, c := range lay.columns {
		for _, field := range c.fields {
			if _, ok := values[field]; !ok {
				return nil, errors.WithDetails(
					errors.New("log record is missing a field referenced by the format"),
					"field", field)
			}
		}
	}
	return values, nil
}

func (f *Formatter) colourise(level slog.Level, lines []string) []string {
	if !f.style.ColourLevels || f.palette == nil {
		return lines
	}
	return f.palette.Render(level, lines)
}

// assemble zips the per-column line lists into final output lines by
// substituting each column's i-th line and each separator's rendering
// into the positional template.
func (lay *layout) assemble(columnLines [][]string, count int) []string {
	lines := make([]string, count)
	for i := 0; i < count; i++ {
		var b strings.Builder
		for _, tok := range lay.tokens {
			switch tok.kind {
			case tokenLiteral:
				b.WriteString(tok.literal)
			case tokenColumn:
				b.WriteString(columnLines[tok.index][i])
			case tokenSeparator:
				b.WriteString(lay.separators[tok.index].Line(i))
			}
		}
		lines[i] = b.String()
	}
	return lines
}

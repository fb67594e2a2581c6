package colonnade

import (
	"os"
	"strings"
	"time"

	"github.com/k0kubun/pp/v3"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/term"
)

// Justification positions a column's rendered content inside its
// reserved width.
type Justification int

const (
	JustifyRight Justification = iota
	JustifyLeft
	JustifyCenter
)

// ParseJustification accepts a one-letter or full name, e.g. "l" or "left".
func ParseJustification(name string) (Justification, errors.E) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "l", "left":
		return JustifyLeft, nil
	case "r", "right":
		return JustifyRight, nil
	case "c", "center", "centre":
		return JustifyCenter, nil
	}
	return 0, errors.Errorf("invalid justification %q: use l, r, c, left, right or center", name)
}

func (j Justification) String() string {
	switch j {
	case JustifyLeft:
		return "left"
	case JustifyCenter:
		return "center"
	default:
		return "right"
	}
}

// pad grows s from visible width to the target width with spaces.
func (j Justification) pad(s string, visible, width int) string {
	if visible >= width {
		return s
	}
	gap := width - visible
	switch j {
	case JustifyLeft:
		return s + strings.Repeat(" ", gap)
	case JustifyCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	default:
		return strings.Repeat(" ", gap) + s
	}
}

// Style is an immutable description of how log records are laid out.
// Reconfiguring means constructing a new value; a Style is never
// mutated once handed to a Formatter.
type Style struct {
	// Format is the column template. Field placeholders use
	// {field} or {field:spec}; the column escape introduces
	// separators, doubled for separators repeated on every
	// wrapped line.
	Format string

	// TimeFormat is the time layout used to render asctime.
	TimeFormat string

	// ColumnEscape marks column separators in Format.
	ColumnEscape string

	// DefaultJustify applies to columns without an override.
	DefaultJustify Justification

	// Justify overrides justification per field name. Justification
	// is contagious: one field's setting governs its whole column.
	Justify map[string]Justification

	// DefaultWeight and Weights control the share of adaptive width
	// each data-dependent field receives.
	DefaultWeight float64
	Weights       map[string]float64

	// TruncateFields lists fields whose columns are trimmed to a
	// single line instead of wrapping. Truncation keeps the tail of
	// the content and prepends TruncationMarker.
	TruncateFields   []string
	TruncationMarker string

	// Width is the total target line width. When FitToTerminal is
	// set the current terminal width is used instead, capped at
	// MaxWidth when MaxWidth is positive.
	Width         int
	MaxWidth      int
	FitToTerminal bool

	// ShortLevels abbreviates level names to one character.
	ShortLevels bool

	// ColourLevels enables palette colourisation per record level.
	ColourLevels bool

	// CleanOutput strips redundant logger-name prefixes.
	CleanOutput bool

	// MaskSecrets masks credential-like key=value pairs embedded in
	// messages, preserving their length.
	MaskSecrets bool
}

// DefaultStyle returns the default style.
func DefaultStyle() Style {
	return Style{
		Format:           "{asctime:u} _| {levelname} _| {name}.{funcName} __>> {message:>231}",
		TimeFormat:       "15:04:05",
		ColumnEscape:     "_",
		DefaultJustify:   JustifyRight,
		Justify:          map[string]Justification{"message": JustifyLeft},
		DefaultWeight:    1.0,
		Weights:          map[string]float64{"message": 6.0},
		TruncateFields:   []string{"funcName"},
		TruncationMarker: "…",
		Width:            100,
		MaxWidth:         160,
		ColourLevels:     true,
		CleanOutput:      true,
	}
}

// StylePreset returns one of the named preset styles: default,
// minimalist, compact, boxy or plain.
func StylePreset(name string) (Style, errors.E) {
	s := DefaultStyle()
	switch name {
	case "default":
	case "minimalist":
		// Only the time and message, good for verbose log messages.
		s.Format = "{asctime} _| {message}"
		s.Width = 80
	case "compact":
		// Lots of log record information in a small space.
		s.Format = "{asctime} _ {levelname} _ {name}.{funcName} _ {message:>231}"
		s.ShortLevels = true
		s.Width = 100
	case "boxy":
		// A detailed, boxy looking output fit to the terminal.
		s.Format = "__| {asctime:u} __| {levelname:u} __| {name} __| {funcName} __| {message:>231} __|"
		s.TruncateFields = nil
		s.FitToTerminal = true
		s.Weights = map[string]float64{"message": 5.0, "funcName": 1.5}
		s.MaxWidth = 0
		s.ShortLevels = true
	case "plain":
		// Emulates vanilla logging.
		s.Format = "{asctime} {name} > {message}"
		s.Width = 100
		s.MaxWidth = 200
		s.FitToTerminal = true
		s.DefaultJustify = JustifyLeft
		s.Justify = nil
		s.ColourLevels = false
		s.TruncateFields = nil
	default:
		return Style{}, errors.WithDetails(errors.New("unknown style preset"), "preset", name)
	}
	return s, nil
}

// StylePresets lists the available preset names.
func StylePresets() []string {
	return []string{"default", "minimalist", "compact", "boxy", "plain"}
}

// Describe returns a human-readable dump of the style settings.
func (s Style) Describe() string {
	return pp.Sprint(s)
}

// validate rejects configurations that can never lay out correctly.
func (s Style) validate() errors.E {
	if s.Format == "" {
		return errors.New("style format cannot be empty")
	}
	if s.TimeFormat == "" {
		return errors.New("style time format cannot be empty")
	}
	if len(s.ColumnEscape) != 1 {
		return errors.Errorf("column escape must be a single character, got %q", s.ColumnEscape)
	}
	if s.MaxWidth > 0 && s.MaxWidth < 40 {
		return errors.Errorf("max width %d is too low, must be at least 40", s.MaxWidth)
	}
	return nil
}

// fieldJustification resolves the justification for a column containing
// the given fields. Multiple overrides in one column warn once and the
// first declared wins.
func (s Style) fieldJustification(fields []string, warn func(format string, args ...any)) Justification {
	var matched []string
	for _, f := range fields {
		if _, ok := s.Justify[f]; ok {
			matched = append(matched, f)
		}
	}
	if len(matched) == 0 {
		return s.DefaultJustify
	}
	if len(matched) > 1 && warn != nil {
		warn("colonnade: multiple contagious justifications specified for fields %v, using %s", matched, matched[0])
	}
	return s.Justify[matched[0]]
}

// fieldWeight resolves the adaptive width weight for a field.
func (s Style) fieldWeight(field string) float64 {
	if w, ok := s.Weights[field]; ok {
		return w
	}
	return s.DefaultWeight
}

// truncates reports whether the field is registered for truncation.
func (s Style) truncates(field string) bool {
	for _, f := range s.TruncateFields {
		if f == field {
			return true
		}
	}
	return false
}

// levelNameLength is the fixed width reserved for the levelname field.
func (s Style) levelNameLength() int {
	if s.ShortLevels {
		return 1
	}
	return maxLevelNameLength()
}

// timeLength is the fixed width of a rendered timestamp. Layouts are
// assumed width-stable across record times.
func (s Style) timeLength() int {
	return len(time.Now().Format(s.TimeFormat))
}

// targetWidth resolves the total line width for the next layout pass.
func (s Style) targetWidth() int {
	if !s.FitToTerminal {
		return s.Width
	}
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return s.Width
	}
	if s.MaxWidth > 0 && w > s.MaxWidth {
		return s.MaxWidth
	}
	return w
}

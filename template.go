package colonnade

import (
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/colonnade/colonnade/ansi"
)

// Record fields a template may reference. Placeholders outside this set
// are a configuration error at parse time, not a runtime surprise.
var knownFields = map[string]struct{}{
	"asctime":     {},
	"levelname":   {},
	"name":        {},
	"funcName":    {},
	"message":     {},
	"threadName":  {},
	"filename":    {},
	"lineno":      {},
	"module":      {},
	"pathname":    {},
	"process":     {},
	"processName": {},
}

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z]+)(?::([^}]+))?\}`)

type tokenKind int

const (
	tokenLiteral tokenKind = iota
	tokenColumn
	tokenSeparator
)

// token is one positional slot of the reassembly template: a literal
// run, or a reference into the column or separator list.
type token struct {
	kind    tokenKind
	literal string
	index   int
}

// template is the parsed form of a style format: the positional token
// sequence plus the columns and separators it references.
type template struct {
	tokens     []token
	columns    []*Column
	separators []*Separator

	// outsideWidth is the visible width of literal characters that
	// belong to no column, connective punctuation included.
	outsideWidth int
}

// parseTemplate splits a format string into columns, separators and the
// positional template used to reassemble rendered lines.
func parseTemplate(style Style, warn func(format string, args ...any)) (*template, errors.E) {
	format := style.Format
	if strings.TrimSpace(format) == "" {
		return nil, errors.New("format template is empty")
	}

	// One or two escape characters optionally followed by a run of
	// non-whitespace glyphs mark a separator. Doubled escapes repeat
	// the separator on every wrapped line.
	esc := regexp.QuoteMeta(style.ColumnEscape)
	separatorPattern, err := regexp.Compile(esc + `{1,2}\S*`)
	if err != nil {
		return nil, errors.WithDetails(errors.WithStack(err), "escape", style.ColumnEscape)
	}

	t := &template{}
	pos := 0
	for _, match := range separatorPattern.FindAllStringIndex(format, -1) {
		if match[0] > pos {
			if e := t.addSegment(format[pos:match[0]], style, warn); e != nil {
				return nil, e
			}
		}
		sep := newSeparator(format[match[0]:match[1]], style.ColumnEscape)
		t.tokens = append(t.tokens, token{kind: tokenSeparator, index: len(t.separators)})
		t.separators = append(t.separators, sep)
		pos = match[1]
	}
	if pos < len(format) {
		if e := t.addSegment(format[pos:], style, warn); e != nil {
			return nil, e
		}
	}

	if len(t.columns) == 0 {
		return nil, errors.WithDetails(
			errors.New("format template contains no recognizable log record fields"),
			"format", format)
	}

	for _, tok := range t.tokens {
		if tok.kind == tokenLiteral {
			t.outsideWidth += ansi.Width(tok.literal)
		}
	}
	return t, nil
}

// addSegment classifies the text between separators. Segments holding
// at least one field placeholder become columns, with their surrounding
// whitespace kept as positional literals; field-free glue stays literal
// in full.
func (t *template) addSegment(segment string, style Style, warn func(format string, args ...any)) errors.E {
	trimmed := strings.TrimSpace(segment)
	if !placeholderPattern.MatchString(trimmed) {
		if segment != "" {
			t.tokens = append(t.tokens, token{kind: tokenLiteral, literal: segment})
		}
		return nil
	}

	lead := segment[:strings.Index(segment, trimmed)]
	trail := segment[len(lead)+len(trimmed):]

	if lead != "" {
		t.tokens = append(t.tokens, token{kind: tokenLiteral, literal: lead})
	}
	column, err := newColumn(trimmed, style, warn)
	if err != nil {
		return err
	}
	t.tokens = append(t.tokens, token{kind: tokenColumn, index: len(t.columns)})
	t.columns = append(t.columns, column)
	if trail != "" {
		t.tokens = append(t.tokens, token{kind: tokenLiteral, literal: trail})
	}
	return nil
}

// separatorWidth sums the visible widths of all separators.
func (t *template) separatorWidth() int {
	total := 0
	for _, s := range t.separators {
		total += s.length
	}
	return total
}

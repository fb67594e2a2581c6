package colonnade

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
	"gitlab.com/tozd/go/errors"

	"github.com/colonnade/colonnade/ansi"
)

// colSegment is one parsed piece of a column sub-template: either a
// literal run or a field placeholder with its resolved directives.
type colSegment struct {
	literal    string
	field      string
	directives []Directive
}

func (s colSegment) isField() bool { return s.field != "" }

// Column owns one segment of the format template. It knows its fixed
// width contribution ahead of time and fits record content into its
// reserved width once the allocator has topped that up with adaptive
// space.
type Column struct {
	format   string
	segments []colSegment

	fields         []string
	adaptiveFields []string

	// reserved is the total character width allotted to this column,
	// fixed for one layout pass over one target width.
	reserved int

	justify     Justification
	truncate    bool
	marker      string
	markerWidth int

	// multiline marks columns that may wrap over several lines:
	// those with adaptive fields not covered by truncation.
	multiline bool
}

// newColumn parses a trimmed column sub-template and precomputes its
// fixed width contribution.
func newColumn(format string, style Style, warn func(format string, args ...any)) (*Column, errors.E) {
	c := &Column{
		format:      format,
		marker:      style.TruncationMarker,
		markerWidth: ansi.Width(style.TruncationMarker),
	}

	pos := 0
	for _, m := range placeholderPattern.FindAllStringSubmatchIndex(format, -1) {
		if m[0] > pos {
			c.segments = append(c.segments, colSegment{literal: format[pos:m[0]]})
		}
		field := format[m[2]:m[3]]
		if _, ok := knownFields[field]; !ok {
			return nil, errors.WithDetails(
				errors.New("format references an unknown log record field"),
				"field", field, "column", format)
		}
		var directives []Directive
		if m[4] >= 0 {
			var err errors.E
			directives, err = ParseDirectives(format[m[4]:m[5]])
			if err != nil {
				return nil, errors.WithDetails(err, "field", field, "column", format)
			}
		}
		c.segments = append(c.segments, colSegment{field: field, directives: directives})
		c.fields = append(c.fields, field)
		pos = m[1]
	}
	if pos < len(format) {
		c.segments = append(c.segments, colSegment{literal: format[pos:]})
	}

	for _, f := range c.fields {
		switch f {
		case "asctime":
			c.reserved += style.timeLength()
		case "levelname":
			c.reserved += style.levelNameLength()
		default:
			c.adaptiveFields = append(c.adaptiveFields, f)
		}
		if style.truncates(f) {
			c.truncate = true
		}
	}
	for _, seg := range c.segments {
		if !seg.isField() {
			c.reserved += ansi.Width(seg.literal)
		}
	}

	c.justify = style.fieldJustification(c.fields, warn)
	c.multiline = len(c.adaptiveFields) > 0 && !c.truncate
	return c, nil
}

// Reserved is the width currently allotted to the column.
func (c *Column) Reserved() int { return c.reserved }

// Fields lists the record fields the column renders, in order.
func (c *Column) Fields() []string { return c.fields }

// emptyLine pads out a line on which this column has no content.
func (c *Column) emptyLine() string {
	return strings.Repeat(" ", c.reserved)
}

// renderBasic renders the column without any styling, which is what
// width decisions are measured against.
func (c *Column) renderBasic(values map[string]string) string {
	var b strings.Builder
	for _, seg := range c.segments {
		if seg.isField() {
			b.WriteString(values[seg.field])
		} else {
			b.WriteString(seg.literal)
		}
	}
	return b.String()
}

// renderStyled renders the column with each field wrapped in its
// directive escapes.
func (c *Column) renderStyled(values map[string]string) string {
	var b strings.Builder
	for _, seg := range c.segments {
		if seg.isField() {
			b.WriteString(RenderStyled(values[seg.field], seg.directives))
		} else {
			b.WriteString(seg.literal)
		}
	}
	return b.String()
}

// renderLines fits the record content for this column into its reserved
// width, producing one or more lines of exactly that visible width.
func (c *Column) renderLines(values map[string]string) []string {
	basic := c.renderBasic(values)
	length := ansi.Width(basic)

	switch {
	case length == c.reserved:
		return []string{c.renderStyled(values)}
	case length < c.reserved:
		return []string{c.justify.pad(c.renderStyled(values), length, c.reserved)}
	case c.truncate:
		return []string{c.renderTruncated(values)}
	default:
		return c.renderWrapped(values, basic)
	}
}

// renderTruncated trims the column to a single line. Content is walked
// from the end of the template backwards so the tail survives, which is
// what matters for paths, URLs and dotted call sites; the overflowing
// field keeps its trailing characters behind the truncation marker.
func (c *Column) renderTruncated(values map[string]string) string {
	allowed := c.reserved - c.markerWidth

	var pieces []string
	used := 0
	prepend := func(s string) { pieces = append([]string{s}, pieces...) }

	for si := len(c.segments) - 1; si >= 0; si-- {
		seg := c.segments[si]
		if !seg.isField() {
			w := runewidth.StringWidth(seg.literal)
			if used+w > allowed {
				kept := tailByWidth(seg.literal, allowed-used)
				prepend(c.marker + kept)
				return strings.Join(pieces, "")
			}
			prepend(seg.literal)
			used += w
			continue
		}

		content := values[seg.field]
		w := runewidth.StringWidth(content)
		if used+w < allowed {
			prepend(RenderStyled(content, seg.directives))
			used += w
			continue
		}

		// This field overflows: keep only its trailing characters
		// and prepend the marker, styled along with the content.
		partial := c.marker + tailByWidth(content, allowed-used)
		prepend(RenderStyled(partial, seg.directives))
		return strings.Join(pieces, "")
	}
	return strings.Join(pieces, "")
}

// taggedRune couples one content rune to the segment it came from, so
// wrapped lines can be re-styled after break points are decided on the
// unstyled text.
type taggedRune struct {
	r   rune
	seg int
}

// renderWrapped word-wraps the column over multiple lines. Break points
// are measured on the basic rendering, then the original segment stream
// is consumed to the same line lengths so styling never spans a break.
func (c *Column) renderWrapped(values map[string]string, basic string) []string {
	wrapped := wrapText(basic, c.reserved)

	var stream []taggedRune
	for si, seg := range c.segments {
		text := seg.literal
		if seg.isField() {
			text = values[seg.field]
		}
		for _, r := range text {
			stream = append(stream, taggedRune{r: r, seg: si})
		}
	}

	lines := make([]string, 0, len(wrapped))
	i := 0
	for _, measured := range wrapped {
		target := runewidth.StringWidth(measured)
		for i < len(stream) && unicode.IsSpace(stream[i].r) {
			i++
		}
		start := i
		w := 0
		for i < len(stream) && w < target {
			w += runewidth.RuneWidth(stream[i].r)
			i++
		}
		line := c.renderTagged(stream[start:i])
		lines = append(lines, c.justify.pad(line, w, c.reserved))
	}
	return lines
}

// renderTagged renders a run of tagged runes, applying each source
// segment's directives to its contiguous spans.
func (c *Column) renderTagged(group []taggedRune) string {
	var b strings.Builder
	for i := 0; i < len(group); {
		si := group[i].seg
		j := i
		var span strings.Builder
		for j < len(group) && group[j].seg == si {
			span.WriteRune(group[j].r)
			j++
		}
		seg := c.segments[si]
		if seg.isField() {
			b.WriteString(RenderStyled(span.String(), seg.directives))
		} else {
			b.WriteString(span.String())
		}
		i = j
	}
	return b.String()
}

// wrapText soft-wraps s to the given visible width: lines break on
// whitespace, tokens longer than the width break hard, and whitespace
// at break points is dropped.
func wrapText(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}
	runes := []rune(s)
	var lines []string
	i := 0
	for i < len(runes) {
		for i < len(runes) && unicode.IsSpace(runes[i]) {
			i++
		}
		if i >= len(runes) {
			break
		}

		j := i
		w := 0
		lastBreak := -1
		for j < len(runes) {
			rw := runewidth.RuneWidth(runes[j])
			if w+rw > width {
				break
			}
			if unicode.IsSpace(runes[j]) {
				lastBreak = j
			}
			w += rw
			j++
		}
		if j == i {
			// A single rune wider than the line; take it anyway
			// so consumption always advances.
			j++
		} else if j < len(runes) && !unicode.IsSpace(runes[j]) && lastBreak > i {
			j = lastBreak
		}

		end := j
		for end > i && unicode.IsSpace(runes[end-1]) {
			end--
		}
		lines = append(lines, string(runes[i:end]))
		i = j
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

// tailByWidth keeps the trailing runes of s fitting within the given
// visible width.
func tailByWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	w := 0
	i := len(runes)
	for i > 0 {
		rw := runewidth.RuneWidth(runes[i-1])
		if w+rw > width {
			break
		}
		w += rw
		i--
	}
	return string(runes[i:])
}
